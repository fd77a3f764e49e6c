package guard

import (
	"context"

	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

// MenuAPI serves the route tree of the user shell.
type MenuAPI interface {
	AllRoutes(ctx context.Context) ([]routes.Record, error)
}

// UserGuard protects the user shell, the paths under the user prefix. It
// mirrors AdminGuard with its own namespace, except that the route tree is
// fetched from the menu API and resolved against the registry on the first
// navigation of a session. Menu API errors fail the navigation.
func UserGuard(svc *auth.Service, api MenuAPI, opts ...Option) Guard {
	o := newOptions(append([]Option{WithDefaultRoles("user")}, opts...))
	o.log = o.log.With(logger.Namespace(svc.Access().Namespace()))

	g := &namespaceGuard{
		svc:   svc,
		opts:  o,
		login: o.paths.UserLogin,
		home:  o.paths.UserHome,
		tree: func(ctx context.Context) ([]routes.Node, error) {
			records, err := api.AllRoutes(ctx)
			if err != nil {
				return nil, err
			}
			return routes.Build(records, o.registry, routes.WithLogger(o.log)), nil
		},
	}

	return func(ctx context.Context, to *Location, from Location) (Decision, error) {
		acc := svc.Access()
		token := acc.AccessToken()

		if to.Path == g.login {
			if token != "" {
				return g.redirectAfterLogin(to), nil
			}
			return Allow(), nil
		}
		if !o.paths.IsUserPath(to.Path) {
			return Allow(), nil
		}
		g.resumeExpiry()

		if token == "" {
			if to.Meta.IgnoreAccess {
				return Allow(), nil
			}
			return RedirectReplace(loginTarget(g.login, to.FullPath(), g.home)), nil
		}
		if acc.CheckLoginExpiry() {
			return g.expired(ctx, to), nil
		}
		return g.resolve(ctx, to, from)
	}
}
