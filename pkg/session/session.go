package session

import (
	"slices"
	"time"

	"github.com/dmitrymomot/navgate/pkg/menu"
)

// Session is the durable part of an access namespace: what survives a
// reload. Derived state (routes, the access-checked latch, the expired flag)
// is never persisted.
type Session struct {
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	AccessCodes  []string    `json:"access_codes,omitempty"`
	LoginTime    *time.Time  `json:"login_time,omitempty"`
	Menus        []menu.Node `json:"menus,omitempty"`
}

// NewSession creates a session for a freshly issued token logged in at loginTime.
func NewSession(token string, loginTime time.Time) *Session {
	return &Session{
		AccessToken: token,
		LoginTime:   &loginTime,
	}
}

// HasLoginTime reports whether a login timestamp was recorded.
func (s *Session) HasLoginTime() bool {
	return s != nil && s.LoginTime != nil
}

// ExpiredAt reports whether window has fully elapsed since login at now.
// A session without a login time never expires.
func (s *Session) ExpiredAt(now time.Time, window time.Duration) bool {
	if !s.HasLoginTime() {
		return false
	}
	return now.Sub(*s.LoginTime) >= window
}

// IsEmpty reports whether there is nothing worth persisting.
func (s *Session) IsEmpty() bool {
	return s == nil || (s.AccessToken == "" && s.RefreshToken == "" &&
		len(s.AccessCodes) == 0 && s.LoginTime == nil && len(s.Menus) == 0)
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.AccessCodes = slices.Clone(s.AccessCodes)
	if s.LoginTime != nil {
		t := *s.LoginTime
		c.LoginTime = &t
	}
	c.Menus = menu.Clone(s.Menus)
	return &c
}
