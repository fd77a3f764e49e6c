package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option tweaks a single Load call.
type Option func(*loadOptions)

type loadOptions struct {
	prefix string
}

// WithPrefix applies an env var prefix, e.g. "ADMIN_" turns
// ACCESS_LOGIN_EXPIRY into ADMIN_ACCESS_LOGIN_EXPIRY. Differently prefixed
// loads of the same type are cached separately.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

type configCache struct {
	mu     sync.Mutex
	values map[string]any
}

var (
	cache = &configCache{values: make(map[string]any)}

	dotenvOnce sync.Once
)

// Load parses environment variables into v using `env` struct tags.
//
// A .env file in the working directory is read once per process (missing
// files are ignored). Each (type, prefix) pair is parsed once; later calls get
// a copy of the cached value.
//
//	var cfg access.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	key := o.prefix + typeName[T]()

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cached, ok := cache.values[key]; ok {
		typed, ok := cached.(T)
		if !ok {
			return ErrInvalidConfigType
		}
		*v = typed
		return nil
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	cache.values[key] = *v
	return nil
}

// MustLoad works like Load but panics on failure. Use it for settings the
// process cannot start without.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("config: failed to load %s: %v", typeName[T](), err))
	}
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
