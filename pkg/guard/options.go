package guard

import (
	"log/slog"

	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

// Option configures the admin and user guards.
type Option func(*options)

type options struct {
	paths      Paths
	coreNames  []string
	filterOpts []routes.FilterOption
	registry   routes.Registry
	roles      []string
	log        *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		paths: DefaultPaths(),
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithPaths sets the well-known paths.
func WithPaths(p Paths) Option {
	return func(o *options) { o.paths = p }
}

// WithCoreRoutes names the routes that bypass permission checks.
func WithCoreRoutes(names ...string) Option {
	return func(o *options) { o.coreNames = append(o.coreNames, names...) }
}

// WithForbidden sets the component shown for routes visible in menus but
// not accessible.
func WithForbidden(c routes.Component) Option {
	return func(o *options) { o.filterOpts = append(o.filterOpts, routes.WithForbidden(c)) }
}

// WithRegistry sets the components backend routes resolve against.
func WithRegistry(reg routes.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithDefaultRoles sets the roles used when an identity carries none.
func WithDefaultRoles(roles ...string) Option {
	return func(o *options) { o.roles = roles }
}

// WithLogger sets the guard logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
