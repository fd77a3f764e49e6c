package navgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/navgate/pkg/access"
	"github.com/dmitrymomot/navgate/pkg/apiclient"
	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/guard"
	"github.com/dmitrymomot/navgate/pkg/identity"
	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/routes"
	"github.com/dmitrymomot/navgate/pkg/session"
)

// Config is the environment of a workspace.
type Config struct {
	Access access.Config
	Paths  guard.Paths
	API    apiclient.Config
}

// Deps are the collaborators shared by every workspace of a process.
type Deps struct {
	Config Config

	// Sessions keeps sessions across restarts. Nil keeps them in memory
	// only.
	Sessions session.Store

	// CoreRoutes exist for every session: login pages, install wizard,
	// error pages.
	CoreRoutes []routes.Node
	// AdminRoutes is the static admin tree filtered by role on login.
	AdminRoutes []routes.Node
	// Registry resolves the component strings of the user tree.
	Registry routes.Registry
	// Forbidden replaces the component of routes shown despite missing
	// authority.
	Forbidden routes.Component

	Progress   guard.Progress
	Clock      clock.Clock
	HTTPClient *http.Client
	Logger     *slog.Logger

	// OnExpired is called when a namespace's login window elapses.
	OnExpired func(workspaceID, namespace string)
}

// Namespace is the signed-in state of one shell.
type Namespace struct {
	Access     *access.Store
	Identities *identity.Store
	Auth       *auth.Service
	Client     *apiclient.Client
}

// Workspace is the navigation pipeline of one client: a router guarded by
// the install, common, admin and user guards, over the admin and user
// namespaces.
type Workspace struct {
	id     string
	router *guard.Router
	admin  *Namespace
	user   *Namespace
	log    *slog.Logger
}

// NewWorkspace assembles a workspace and restores its durable sessions.
// Restored logins whose window elapsed are flagged expired; the others get
// an expiry timer for the rest of their window.
func NewWorkspace(ctx context.Context, id string, deps Deps) (*Workspace, error) {
	if id == "" {
		return nil, ErrInvalidWorkspaceID
	}
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.WorkspaceID(id))

	cfg := deps.Config
	paths := cfg.Paths
	if paths == (guard.Paths{}) {
		paths = guard.DefaultPaths()
	}

	w := &Workspace{id: id, log: log}
	w.admin = newNamespaceState(id, access.NamespaceAdmin, deps, log)
	w.user = newNamespaceState(id, access.NamespaceUser, deps, log, access.WithPersistMenus())

	router, err := guard.NewRouter(deps.CoreRoutes,
		guard.WithRouteSource(w.admin.Access),
		guard.WithRouteSource(w.user.Access),
		guard.WithRouterLogger(log),
	)
	if err != nil {
		return nil, errors.Join(ErrAssemble, err)
	}
	w.router = router

	if err := w.admin.connect(cfg.API, apiclient.PrefixAdmin, deps, log,
		auth.WithLoginPath(paths.AdminLogin),
		auth.WithDefaultPath(paths.AdminHome),
		auth.WithNavigator(router),
	); err != nil {
		return nil, err
	}
	if err := w.user.connect(cfg.API, apiclient.PrefixUser, deps, log,
		auth.WithLoginPath(paths.UserLogin),
		auth.WithDefaultPath(paths.UserHome),
		auth.WithNavigator(router),
	); err != nil {
		return nil, err
	}

	common := guard.NewCommon(deps.Progress)
	guardOpts := []guard.Option{
		guard.WithPaths(paths),
		guard.WithCoreRoutes(router.CoreNames()...),
		guard.WithRegistry(deps.Registry),
		guard.WithLogger(log),
	}
	if !deps.Forbidden.IsZero() {
		guardOpts = append(guardOpts, guard.WithForbidden(deps.Forbidden))
	}

	router.BeforeEach(guard.InstallGuard(apiclient.NewInstallAPI(w.admin.Client), paths))
	router.BeforeEach(common.Before)
	router.BeforeEach(guard.AdminGuard(w.admin.Auth, deps.AdminRoutes, guardOpts...))
	router.BeforeEach(guard.UserGuard(w.user.Auth, apiclient.NewMenuAPI(w.user.Client, apiclient.PrefixUser), guardOpts...))
	router.AfterEach(common.After)

	for _, ns := range []*Namespace{w.admin, w.user} {
		if err := ns.Access.Restore(ctx); err != nil {
			w.Close()
			return nil, errors.Join(ErrAssemble, err)
		}
		ns.Access.InitExpiryCheck()
	}
	return w, nil
}

func newNamespaceState(id, ns string, deps Deps, log *slog.Logger, extra ...access.Option) *Namespace {
	opts := []access.Option{
		access.WithClock(deps.Clock),
		access.WithExpiryWindow(deps.Config.Access.Window(ns)),
		access.WithKey(id + ":" + ns),
		access.WithLogger(log),
	}
	if deps.Sessions != nil {
		opts = append(opts, access.WithSessionStore(deps.Sessions))
	}
	if deps.OnExpired != nil {
		opts = append(opts, access.WithExpiryListener(func(namespace string) {
			deps.OnExpired(id, namespace)
		}))
	}
	return &Namespace{
		Access:     access.New(ns, append(opts, extra...)...),
		Identities: identity.NewStore(),
	}
}

// connect builds the namespace's backend client and auth service and binds
// them together.
func (n *Namespace) connect(cfg apiclient.Config, prefix string, deps Deps, log *slog.Logger, opts ...auth.Option) error {
	clientOpts := []apiclient.Option{
		apiclient.WithTokens(n.Access),
		apiclient.WithClock(deps.Clock),
		apiclient.WithLogger(log),
	}
	if deps.HTTPClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(deps.HTTPClient))
	}
	client, err := apiclient.NewFromConfig(cfg, clientOpts...)
	if err != nil {
		return errors.Join(ErrAssemble, err)
	}

	opts = append(opts,
		auth.WithExpiredMode(auth.ExpiredMode(cfg.LoginExpiredMode)),
		auth.WithLogger(log),
	)
	n.Client = client
	n.Auth = auth.NewService(apiclient.NewAuthAPI(client, prefix), n.Access, n.Identities, opts...)
	client.Bind(n.Auth)
	return nil
}

// ID returns the workspace id.
func (w *Workspace) ID() string { return w.id }

// Router returns the guarded router.
func (w *Workspace) Router() *guard.Router { return w.router }

// Admin returns the admin namespace.
func (w *Workspace) Admin() *Namespace { return w.admin }

// User returns the user namespace.
func (w *Workspace) User() *Namespace { return w.user }

// Namespace looks a namespace up by name.
func (w *Workspace) Namespace(name string) (*Namespace, bool) {
	switch name {
	case access.NamespaceAdmin:
		return w.admin, true
	case access.NamespaceUser:
		return w.user, true
	default:
		return nil, false
	}
}

// Navigate runs target through the guards. See guard.Router.Navigate.
func (w *Workspace) Navigate(ctx context.Context, target string, replace bool) (guard.Location, error) {
	return w.router.Navigate(ctx, target, replace)
}

// Close stops the expiry timers. Durable sessions are kept.
func (w *Workspace) Close() {
	w.admin.Access.Close()
	w.user.Access.Close()
	w.log.Debug("workspace closed")
}
