package access

import (
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/navgate/pkg/session"
)

// ExpiryListener is called once each time the session turns expired.
type ExpiryListener func(namespace string)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for login timestamps and the expiry timer.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithExpiryWindow sets how long a login stays valid.
func WithExpiryWindow(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithSessionStore enables durable persistence of the session.
func WithSessionStore(store session.Store) Option {
	return func(s *Store) { s.durable = store }
}

// WithKey sets the key the session is persisted under. Defaults to the
// namespace.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithPersistMenus also persists the menu tree.
func WithPersistMenus() Option {
	return func(s *Store) { s.persistMenus = true }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithExpiryListener registers a callback for expiry transitions.
func WithExpiryListener(fn ExpiryListener) Option {
	return func(s *Store) {
		if fn != nil {
			s.listeners = append(s.listeners, fn)
		}
	}
}
