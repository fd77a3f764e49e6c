package guard

import (
	"context"
	"slices"

	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

// AdminGuard protects the admin shell. Every path outside the user shell is
// in scope. Core routes bypass the checks, except that a signed-in client is
// sent away from the login page. Without a token only routes ignoring
// access are reachable. An expired login, or one whose identity cannot be
// loaded, is signed out and sent to the login page. On the first
// navigation of a session the identity is loaded, the static tree is
// filtered by its roles, menus are derived and everything is committed
// before the navigation is replayed with a replace.
func AdminGuard(svc *auth.Service, tree []routes.Node, opts ...Option) Guard {
	o := newOptions(opts)
	o.log = o.log.With(logger.Namespace(svc.Access().Namespace()))
	static := routes.Clone(tree)

	g := &namespaceGuard{
		svc:   svc,
		opts:  o,
		login: o.paths.AdminLogin,
		home:  o.paths.AdminHome,
		tree: func(context.Context) ([]routes.Node, error) {
			return static, nil
		},
	}

	return func(ctx context.Context, to *Location, from Location) (Decision, error) {
		if o.paths.IsUserPath(to.Path) {
			return Allow(), nil
		}
		g.resumeExpiry()

		acc := svc.Access()
		token := acc.AccessToken()

		if to.Name != "" && slices.Contains(o.coreNames, to.Name) {
			if to.Path == g.login && token != "" {
				return g.redirectAfterLogin(to), nil
			}
			return Allow(), nil
		}

		if token == "" {
			if to.Meta.IgnoreAccess || to.FullPath() == g.login {
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
