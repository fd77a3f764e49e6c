package guard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrymomot/navgate/pkg/routes"
)

// Location is a resolved navigation target.
type Location struct {
	Path   string            `json:"path"`
	Query  url.Values        `json:"query,omitempty"`
	Name   string            `json:"name,omitempty"`
	Meta   routes.Meta       `json:"meta"`
	Params map[string]string `json:"params,omitempty"`
	// Matched is false when no registered route covers Path.
	Matched bool `json:"matched"`
	// Loaded is true when Path was visited before.
	Loaded bool `json:"loaded"`

	redirect string
}

// FullPath renders path and query.
func (l Location) FullPath() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// ParseTarget splits a target into a clean path and its query.
func ParseTarget(target string) (string, url.Values, error) {
	if !strings.HasPrefix(target, "/") {
		return "", nil, errors.Join(ErrInvalidTarget, fmt.Errorf("%q", target))
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", nil, errors.Join(ErrInvalidTarget, err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path, u.Query(), nil
}

// Decision is what a guard wants to happen with a navigation.
type Decision struct {
	target  string
	replace bool
}

// Allow lets the navigation continue to the next guard.
func Allow() Decision { return Decision{} }

// Redirect sends the navigation to target as a new history entry.
func Redirect(target string) Decision { return Decision{target: target} }

// RedirectReplace sends the navigation to target, replacing the current
// history entry.
func RedirectReplace(target string) Decision { return Decision{target: target, replace: true} }

// IsRedirect reports whether the decision redirects.
func (d Decision) IsRedirect() bool { return d.target != "" }

// Target is the redirect target.
func (d Decision) Target() string { return d.target }

// Replace reports whether the redirect replaces the history entry.
func (d Decision) Replace() bool { return d.replace }

// loginTarget builds the login redirect preserving the intended location,
// which is omitted when it is the default home.
func loginTarget(login, intended, home string) string {
	if intended == "" || intended == home || intended == login {
		return login
	}
	return login + "?" + url.Values{"redirect": {intended}}.Encode()
}
