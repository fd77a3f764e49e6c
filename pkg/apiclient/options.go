package apiclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
)

// TokenSource supplies the credentials of one namespace. access.Store
// implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each HTTP round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokens sets where bearer and refresh tokens come from.
func WithTokens(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLocale sets the Accept-Language header.
func WithLocale(locale string) Option {
	return func(c *Client) { c.locale = locale }
}

// WithRefresh enables the single refresh-and-retry on 401.
func WithRefresh(enabled bool) Option {
	return func(c *Client) { c.refresh = enabled }
}

// WithBreaker enables a circuit breaker that opens after failures
// consecutive transport or server errors and probes again after recovery.
func WithBreaker(failures int, recovery time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.breaker = newBreaker(failures, recovery, c.clock)
		}
	}
}

// WithClock sets the clock of the circuit breaker. Pass it before
// WithBreaker.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

type requestOptions struct {
	bare  bool
	query map[string]string
}

// RequestOption tweaks a single call.
type RequestOption func(*requestOptions)

// Bare sends the request without 401 handling and without envelope code
// checks. Logout and token refresh use it.
func Bare() RequestOption {
	return func(o *requestOptions) { o.bare = true }
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = make(map[string]string)
		}
		o.query[key] = value
	}
}
