package gateway

import "time"

// Config is the environment of the gateway.
type Config struct {
	MaxWorkspaces  int           `env:"GATEWAY_MAX_WORKSPACES" envDefault:"1024"`
	RequestTimeout time.Duration `env:"GATEWAY_REQUEST_TIMEOUT" envDefault:"30s"`
	ReadyTimeout   time.Duration `env:"GATEWAY_READY_TIMEOUT" envDefault:"3s"`
}
