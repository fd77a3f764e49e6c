// Package config loads env-tagged structs (github.com/caarlos0/env) after
// reading an optional .env file (github.com/joho/godotenv).
//
// Every navgate package that needs settings exposes a Config struct with
// `env` / `envDefault` tags; cmd/navd loads them all through Load:
//
//	var (
//	    accessCfg access.Config
//	    redisCfg  redis.Config
//	)
//	config.MustLoad(&accessCfg)
//	config.MustLoad(&redisCfg)
//
// Parsed values are cached per type (and prefix), so repeated loads are cheap
// and always observe the same settings.
package config
