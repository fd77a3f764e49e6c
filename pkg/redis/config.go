package redis

import "time"

// Config describes the Redis connection that backs durable sessions. An
// empty URL disables Redis.
type Config struct {
	URL            string        `env:"REDIS_URL"`
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"navgate:session:"`
	SessionTTL     time.Duration `env:"REDIS_SESSION_TTL" envDefault:"168h"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether a URL is configured.
func (c Config) Enabled() bool { return c.URL != "" }
