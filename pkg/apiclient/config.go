package apiclient

import "time"

// Config holds the backend connection settings.
type Config struct {
	BaseURL            string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	Timeout            time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	Locale             string        `env:"API_LOCALE" envDefault:"en-US"`
	EnableRefreshToken bool          `env:"API_ENABLE_REFRESH_TOKEN" envDefault:"false"`
	// LoginExpiredMode is "page" or "modal".
	LoginExpiredMode string `env:"LOGIN_EXPIRED_MODE" envDefault:"page"`

	BreakerFailures int           `env:"API_BREAKER_FAILURES" envDefault:"5"`
	BreakerRecovery time.Duration `env:"API_BREAKER_RECOVERY" envDefault:"30s"`
}
