package auth

import "log/slog"

// ExpiredMode selects what happens when the server rejects the token.
type ExpiredMode string

const (
	// ExpiredModePage logs the client out and sends it to the login page.
	ExpiredModePage ExpiredMode = "page"
	// ExpiredModeModal keeps the page and raises the expired flag so the
	// client can prompt for credentials in place.
	ExpiredModeModal ExpiredMode = "modal"
)

// Option configures a Service.
type Option func(*Service)

// WithLoginPath sets where logout sends the client.
func WithLoginPath(p string) Option {
	return func(s *Service) {
		if p != "" {
			s.loginPath = p
		}
	}
}

// WithDefaultPath sets where a login without callback navigates.
func WithDefaultPath(p string) Option {
	return func(s *Service) {
		if p != "" {
			s.defaultPath = p
		}
	}
}

// WithExpiredMode selects the re-authentication behaviour.
func WithExpiredMode(m ExpiredMode) Option {
	return func(s *Service) {
		if m == ExpiredModeModal || m == ExpiredModePage {
			s.expiredMode = m
		}
	}
}

// WithNavigator sets the navigator used after login and logout.
func WithNavigator(n Navigator) Option {
	return func(s *Service) { s.nav = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}
