package guard

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/dmitrymomot/navgate/pkg/access"
	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/identity"
	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/menu"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

// treeFunc produces the unfiltered route tree of a namespace.
type treeFunc func(ctx context.Context) ([]routes.Node, error)

// namespaceGuard holds the checks shared by the admin and user guards.
type namespaceGuard struct {
	svc   *auth.Service
	opts  options
	login string
	home  string
	tree  treeFunc
}

func (g *namespaceGuard) access() *access.Store { return g.svc.Access() }

// resumeExpiry arms the expiry timer of a restored session that has none.
func (g *namespaceGuard) resumeExpiry() {
	acc := g.access()
	if acc.HasExpiryTimer() || acc.AccessToken() == "" {
		return
	}
	if _, ok := acc.LoginTime(); ok {
		acc.InitExpiryCheck()
	}
}

// redirectAfterLogin leaves the login page for an already signed-in client.
func (g *namespaceGuard) redirectAfterLogin(to *Location) Decision {
	return Redirect(cmp.Or(to.Query.Get("redirect"), g.home))
}

func (g *namespaceGuard) toLogin(intended string) Decision {
	return RedirectReplace(loginTarget(g.login, intended, ""))
}

// expired signs out a session whose login window elapsed.
func (g *namespaceGuard) expired(ctx context.Context, to *Location) Decision {
	g.opts.log.InfoContext(ctx, "login expired, signing out", logger.Path(to.FullPath()))
	g.access().SetLoginExpired(true)
	g.svc.Terminate(ctx)
	return g.toLogin(to.FullPath())
}

func (g *namespaceGuard) identity(ctx context.Context, to *Location) (*identity.Identity, *Decision, error) {
	if id := g.svc.Identities().Get(); id != nil {
		return id, nil, nil
	}
	id, err := g.svc.FetchIdentity(ctx)
	if err == nil {
		return id, nil, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}
	if errors.Is(err, access.ErrStaleSession) {
		d := g.toLogin(to.FullPath())
		return nil, &d, nil
	}
	// A token without an identity would bounce between the login page and
	// the target, so the session is signed out.
	g.opts.log.WarnContext(ctx, "cannot establish identity", logger.Error(err))
	g.svc.Terminate(ctx)
	d := g.toLogin(to.FullPath())
	return nil, &d, nil
}

func (g *namespaceGuard) roles(id *identity.Identity) []string {
	if roles := id.Roles(); len(roles) > 0 {
		return roles
	}
	return slices.Clone(g.opts.roles)
}

// generate computes menus and routes once per session, commits them with
// the latch and redirects to the intended location.
func (g *namespaceGuard) generate(ctx context.Context, to *Location, from Location, id *identity.Identity, generation uint64) (Decision, error) {
	acc := g.access()
	tree, err := g.tree(ctx)
	if err != nil {
		return Decision{}, err
	}
	visible := routes.Filter(tree, g.roles(id), g.opts.filterOpts...)
	menus := menu.Generate(visible)

	if err := acc.Commit(ctx, generation, menus, visible); err != nil {
		if errors.Is(err, access.ErrStaleSession) {
			g.opts.log.WarnContext(ctx, "session ended while resolving access")
			return g.toLogin(to.FullPath()), nil
		}
		g.opts.log.WarnContext(ctx, "access cache not persisted", logger.Error(err))
	}

	target := from.Query.Get("redirect")
	if target == "" {
		if to.Path == g.home {
			target = g.home
		} else {
			target = to.FullPath()
		}
	}
	return RedirectReplace(target), nil
}

// resolve runs the once-per-session resolution. The generation is read
// before the identity fetch so a logout racing any step is detected.
func (g *namespaceGuard) resolve(ctx context.Context, to *Location, from Location) (Decision, error) {
	acc := g.access()
	if acc.IsAccessChecked() {
		return Allow(), nil
	}
	generation := acc.Generation()
	id, redirect, err := g.identity(ctx, to)
	if err != nil {
		return Decision{}, err
	}
	if redirect != nil {
		return *redirect, nil
	}
	return g.generate(ctx, to, from, id, generation)
}
