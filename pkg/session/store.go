package session

import "context"

// Store persists sessions under opaque keys (one key per workspace and
// namespace). Implementations must return copies so callers can never mutate
// stored state in place.
type Store interface {
	// Load returns ErrSessionNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) (*Session, error)

	// Save replaces whatever is stored under key.
	Save(ctx context.Context, key string, session *Session) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
