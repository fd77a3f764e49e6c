package identity

import (
	"slices"
	"strconv"
	"sync"
)

// Identity is the profile of the signed-in principal.
type Identity struct {
	ID       int64    `json:"id"`
	GroupID  int64    `json:"group_id,omitempty"`
	Username string   `json:"username"`
	Nickname string   `json:"nickname,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
	Email    string   `json:"email,omitempty"`
	Mobile   string   `json:"mobile,omitempty"`
	RoleList []string `json:"roles,omitempty"`
}

// Roles returns the explicit roles, or the group id as the only role when
// none were assigned.
func (i *Identity) Roles() []string {
	if i == nil {
		return nil
	}
	if len(i.RoleList) > 0 {
		return slices.Clone(i.RoleList)
	}
	if i.GroupID != 0 {
		return []string{strconv.FormatInt(i.GroupID, 10)}
	}
	return nil
}

// Clone returns a deep copy.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.RoleList = slices.Clone(i.RoleList)
	return &c
}

// Store keeps the identity of one namespace. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	identity *Identity
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns a copy of the stored identity, or nil.
func (s *Store) Get() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.Clone()
}

// Set replaces the stored identity.
func (s *Store) Set(id *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id.Clone()
}

// Reset forgets the identity.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
}
