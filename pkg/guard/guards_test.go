package guard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/navgate/pkg/access"
	"github.com/dmitrymomot/navgate/pkg/auth"
	"github.com/dmitrymomot/navgate/pkg/guard"
	"github.com/dmitrymomot/navgate/pkg/identity"
	"github.com/dmitrymomot/navgate/pkg/routes"
)

type fakeAuthAPI struct {
	mu          sync.Mutex
	profile     *identity.Identity
	profileErr  error
	onProfile   func()
	profileHits int
	logoutHits  int
}

func (f *fakeAuthAPI) Login(context.Context, auth.Credentials) (auth.Token, error) {
	return auth.Token{AccessToken: "T1"}, nil
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutHits++
	return errors.New("logout endpoint down")
}

func (f *fakeAuthAPI) Profile(context.Context) (*identity.Identity, error) {
	f.mu.Lock()
	f.profileHits++
	hook := f.onProfile
	p, err := f.profile.Clone(), f.profileErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *fakeAuthAPI) AccessCodes(context.Context) ([]string, error) {
	return []string{"AC_1"}, nil
}

func (f *fakeAuthAPI) RefreshToken(context.Context) (string, error) { return "", nil }

type fakeMenuAPI struct {
	records []routes.Record
	err     error
	calls   int
}

func (f *fakeMenuAPI) AllRoutes(context.Context) ([]routes.Record, error) {
	f.calls++
	return f.records, f.err
}

type fakeInstallAPI struct {
	installed bool
	err       error
}

func (f fakeInstallAPI) CheckInstalled(context.Context) (bool, error) { return f.installed, f.err }

type countingProgress struct {
	mu            sync.Mutex
	starts, dones int
}

func (p *countingProgress) Start() { p.mu.Lock(); p.starts++; p.mu.Unlock() }
func (p *countingProgress) Done()  { p.mu.Lock(); p.dones++; p.mu.Unlock() }

var forbidden = routes.View("/_core/fallback/forbidden.vue")

func adminTree() []routes.Node {
	return []routes.Node{
		{Name: "Dashboard", Path: "/admin/dashboard", Children: []routes.Node{
			{Name: "Workspace", Path: "workspace", Component: routes.View("/dashboard/workspace/index.vue")},
		}},
		{Name: "System", Path: "/admin/system", Meta: routes.Meta{Access: routes.Restricted("super")}, Children: []routes.Node{
			{Name: "Admins", Path: "admins", Component: routes.View("/system/admins/index.vue")},
		}},
		{Name: "Plugins", Path: "/admin/plugins", Component: routes.View("/plugins/index.vue"),
			Meta: routes.Meta{Access: routes.VisibleForbidden("super")}},
		{Name: "Public", Path: "/admin/public", Meta: routes.Meta{IgnoreAccess: true}},
		{Name: "FallbackNotFound", Path: "/:path(.*)*", Meta: routes.Meta{HideInMenu: true}},
	}
}

type env struct {
	router    *guard.Router
	clock     *clock.Mock
	adminAPI  *fakeAuthAPI
	userAPI   *fakeAuthAPI
	menuAPI   *fakeMenuAPI
	adminAuth *auth.Service
	userAuth  *auth.Service
	progress  *countingProgress
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		clock:    clock.NewMock(),
		adminAPI: &fakeAuthAPI{profile: &identity.Identity{ID: 1, Username: "root", RoleList: []string{"super"}}},
		userAPI:  &fakeAuthAPI{profile: &identity.Identity{ID: 9, Username: "jane"}},
		menuAPI: &fakeMenuAPI{records: []routes.Record{
			{Name: "UserCenter", Path: "/user", Component: "UserBasicLayout", Children: []routes.Record{
				{Name: "UserHome", Path: "home", Component: "/views/user/home", Meta: routes.Meta{Title: "Home"}},
				{Name: "UserVIP", Path: "vip", Component: "/views/user/vip", Meta: routes.Meta{Access: routes.Restricted("vip")}},
			}},
		}},
		progress: &countingProgress{},
	}
	e.clock.Set(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	adminAcc := access.New(access.NamespaceAdmin, access.WithClock(e.clock), access.WithExpiryWindow(2*time.Hour))
	userAcc := access.New(access.NamespaceUser, access.WithClock(e.clock), access.WithExpiryWindow(72*time.Hour))
	t.Cleanup(adminAcc.Close)
	t.Cleanup(userAcc.Close)

	router, err := guard.NewRouter(coreRoutes(), guard.WithRouteSource(adminAcc), guard.WithRouteSource(userAcc))
	require.NoError(t, err)
	e.router = router

	paths := guard.DefaultPaths()
	e.adminAuth = auth.NewService(e.adminAPI, adminAcc, identity.NewStore(),
		auth.WithNavigator(router), auth.WithLoginPath(paths.AdminLogin), auth.WithDefaultPath(paths.AdminHome))
	e.userAuth = auth.NewService(e.userAPI, userAcc, identity.NewStore(),
		auth.WithNavigator(router), auth.WithLoginPath(paths.UserLogin), auth.WithDefaultPath(paths.UserHome))

	common := guard.NewCommon(e.progress)
	router.BeforeEach(guard.InstallGuard(fakeInstallAPI{installed: true}, paths))
	router.BeforeEach(common.Before)
	router.AfterEach(common.After)
	router.BeforeEach(guard.AdminGuard(e.adminAuth, adminTree(),
		guard.WithPaths(paths), guard.WithCoreRoutes(router.CoreNames()...), guard.WithForbidden(forbidden)))
	router.BeforeEach(guard.UserGuard(e.userAuth, e.menuAPI,
		guard.WithPaths(paths), guard.WithRegistry(routes.Registry{
			Layouts: map[string]routes.Component{"UserBasicLayout": routes.Layout("UserBasicLayout")},
			Pages:   routes.PagesOf("/user/home.vue", "/user/vip.vue"),
		})))
	return e
}

func (e *env) login(t *testing.T, svc *auth.Service) {
	t.Helper()
	_, err := svc.Login(context.Background(), auth.Credentials{Username: "u", Password: "p"}, func(context.Context) error { return nil })
	require.NoError(t, err)
}

func TestAdminGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous is sent to login with redirect", func(t *testing.T) {
		e := newEnv(t)
		loc, err := e.router.Navigate(ctx, "/admin/system/admins", false)
		require.NoError(t, err)
		assert.Equal(t, "/admin/login", loc.Path)
		assert.Equal(t, "/admin/system/admins", loc.Query.Get("redirect"))
	})

	t.Run("default path is not kept as redirect", func(t *testing.T) {
		e := newEnv(t)
		loc, err := e.router.Navigate(ctx, "/admin/dashboard/workspace", false)
		require.NoError(t, err)
		assert.Equal(t, "/admin/login", loc.FullPath())
	})

	t.Run("ignore-access route needs no token once registered", func(t *testing.T) {
		e := newEnv(t)
		loc, err := e.router.Navigate(ctx, "/user/register", false)
		require.NoError(t, err)
		assert.Equal(t, "/user/register", loc.Path)
	})

	t.Run("first navigation resolves access once then replays", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.router.Navigate(ctx, "/admin/system/admins", false)
		require.NoError(t, err)

		e.login(t, e.adminAuth)
		require.NoError(t, e.router.Push(ctx, "/admin/dashboard/workspace"))

		acc := e.adminAuth.Access()
		assert.True(t, acc.IsAccessChecked())
		loc := e.router.Current()
		assert.Equal(t, "/admin/system/admins", loc.Path, "redirect query of the login page wins")
		assert.Equal(t, "Admins", loc.Name)
		_, ok := acc.GetMenuByPath("/admin/system/admins")
		assert.True(t, ok)

		hits := e.adminAPI.profileHits
		require.NoError(t, e.router.Push(ctx, "/admin/plugins"))
		assert.Equal(t, hits, e.adminAPI.profileHits, "latched session does not refetch")
	})

	t.Run("signed-in client leaves the login page", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.adminAuth)

		loc, err := e.router.Navigate(ctx, "/admin/login?redirect=%2Fadmin%2Fplugins", false)
		require.NoError(t, err)
		assert.Equal(t, "/admin/plugins", loc.Path)
	})

	t.Run("forbidden substitution for visible routes", func(t *testing.T) {
		e := newEnv(t)
		e.adminAPI.profile = &identity.Identity{ID: 2, GroupID: 5}
		e.login(t, e.adminAuth)

		loc, err := e.router.Navigate(ctx, "/admin/plugins", false)
		require.NoError(t, err)
		assert.Equal(t, "Plugins", loc.Name)

		tree, _ := e.adminAuth.Access().RouteTree()
		plugins, ok := routes.Find(tree, "Plugins")
		require.True(t, ok)
		assert.Equal(t, forbidden, plugins.Component)
		_, ok = routes.Find(tree, "System")
		assert.False(t, ok)

		loc, err = e.router.Navigate(ctx, "/admin/system/admins", false)
		require.NoError(t, err)
		assert.Equal(t, "FallbackNotFound", loc.Name)
	})

	t.Run("expired login is signed out", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.adminAuth)
		require.NoError(t, e.router.Push(ctx, "/admin/plugins"))

		e.clock.Add(2 * time.Hour)
		loc, err := e.router.Navigate(ctx, "/admin/dashboard/workspace", false)
		require.NoError(t, err)
		assert.Equal(t, "/admin/login", loc.Path)
		assert.Equal(t, "/admin/dashboard/workspace", loc.Query.Get("redirect"))
		assert.Empty(t, e.adminAuth.Access().AccessToken())
		assert.False(t, e.adminAuth.Access().IsAccessChecked())
		assert.Equal(t, 1, e.adminAPI.logoutHits)
	})

	t.Run("identity failure signs out and redirects to login", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.adminAuth.Access().SetAccessToken(ctx, "restored"))
		e.adminAPI.profileErr = errors.New("401")

		loc, err := e.router.Navigate(ctx, "/admin/plugins", false)
		require.NoError(t, err)
		assert.Equal(t, "/admin/login", loc.Path)
		assert.Equal(t, "/admin/plugins", loc.Query.Get("redirect"))
		assert.Empty(t, e.adminAuth.Access().AccessToken())
	})

	t.Run("logout racing resolution cannot resurrect state", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.adminAuth.Access().SetAccessToken(ctx, "restored"))
		e.adminAPI.onProfile = func() { e.adminAuth.Terminate(ctx) }

		loc, err := e.router.Navigate(ctx, "/admin/plugins", false)
		require.NoError(t, err)
		assert.Equal(t, "/admin/login", loc.Path)

		acc := e.adminAuth.Access()
		assert.False(t, acc.IsAccessChecked())
		assert.Empty(t, acc.Menus())
		tree, _ := acc.RouteTree()
		assert.Empty(t, tree)
		assert.Nil(t, e.adminAuth.Identities().Get())
	})

	t.Run("login over a live session resolves access for the new roles", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.adminAuth)
		loc, err := e.router.Navigate(ctx, "/admin/system/admins", false)
		require.NoError(t, err)
		require.Equal(t, "Admins", loc.Name)

		e.adminAPI.mu.Lock()
		e.adminAPI.profile = &identity.Identity{ID: 2, Username: "basic", RoleList: []string{"basic"}}
		e.adminAPI.mu.Unlock()
		e.login(t, e.adminAuth)

		acc := e.adminAuth.Access()
		assert.False(t, acc.IsAccessChecked())
		assert.Empty(t, acc.Menus())

		loc, err = e.router.Navigate(ctx, "/admin/system/admins", false)
		require.NoError(t, err)
		assert.Equal(t, "FallbackNotFound", loc.Name)
		assert.True(t, acc.IsAccessChecked())
		_, ok := acc.GetMenuByPath("/admin/system")
		assert.False(t, ok)
		assert.Equal(t, "basic", e.adminAuth.Identities().Get().Username)
	})

	t.Run("logout drops committed routes from the router", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.adminAuth)
		require.NoError(t, e.router.Push(ctx, "/admin/system/admins"))
		assert.Equal(t, "Admins", e.router.Current().Name)

		require.NoError(t, e.adminAuth.Logout(ctx, true))
		loc := e.router.Current()
		assert.Equal(t, "/admin/login", loc.Path)
		assert.Equal(t, "/admin/system/admins", loc.Query.Get("redirect"))

		resolved, err := e.router.Resolve("/admin/system/admins")
		require.NoError(t, err)
		assert.False(t, resolved.Matched)
	})
}

func TestUserGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous user path goes to user login", func(t *testing.T) {
		e := newEnv(t)
		loc, err := e.router.Navigate(ctx, "/user/vip", false)
		require.NoError(t, err)
		assert.Equal(t, "/user/login", loc.Path)
		assert.Equal(t, "/user/vip", loc.Query.Get("redirect"))
	})

	t.Run("backend tree resolution", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.userAuth)

		loc, err := e.router.Navigate(ctx, "/user/home", false)
		require.NoError(t, err)
		assert.Equal(t, "UserHome", loc.Name)
		assert.Equal(t, 1, e.menuAPI.calls)

		acc := e.userAuth.Access()
		assert.True(t, acc.IsAccessChecked())
		m, ok := acc.GetMenuByPath("/user/home")
		require.True(t, ok)
		assert.Equal(t, "Home", m.Label)
		_, ok = acc.GetMenuByPath("/user/vip")
		assert.False(t, ok, "default user role has no vip access")

		tree, _ := acc.RouteTree()
		home, ok := routes.Find(tree, "UserHome")
		require.True(t, ok)
		assert.Equal(t, routes.View("/user/home.vue"), home.Component)

		assert.False(t, e.adminAuth.Access().IsAccessChecked(), "namespaces are independent")
	})

	t.Run("menu API failure fails the navigation", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.userAuth)
		e.menuAPI.err = errors.New("menu service down")

		_, err := e.router.Navigate(ctx, "/user/home", false)
		assert.EqualError(t, err, "menu service down")
		assert.False(t, e.userAuth.Access().IsAccessChecked())
	})

	t.Run("signed-in user leaves the login page", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, e.userAuth)

		loc, err := e.router.Navigate(ctx, "/user/login", false)
		require.NoError(t, err)
		assert.Equal(t, "/user/home", loc.Path)
	})

	t.Run("restored user session leaves the login page", func(t *testing.T) {
		e := newEnv(t)
		require.NoError(t, e.userAuth.Access().SetAccessToken(ctx, "restored"))
		require.Nil(t, e.userAuth.Identities().Get())

		loc, err := e.router.Navigate(ctx, "/user/login", false)
		require.NoError(t, err)
		assert.Equal(t, "/user/home", loc.Path)
		assert.Equal(t, "UserHome", loc.Name)
		assert.NotNil(t, e.userAuth.Identities().Get())
	})
}

func TestInstallGuard(t *testing.T) {
	ctx := context.Background()
	paths := guard.DefaultPaths()

	t.Run("installed redirects to root", func(t *testing.T) {
		g := guard.InstallGuard(fakeInstallAPI{installed: true}, paths)
		d, err := g(ctx, &guard.Location{Path: "/install/init"}, guard.Location{})
		require.NoError(t, err)
		assert.True(t, d.IsRedirect())
		assert.Equal(t, "/", d.Target())
	})

	t.Run("not installed allows the wizard", func(t *testing.T) {
		g := guard.InstallGuard(fakeInstallAPI{}, paths)
		d, err := g(ctx, &guard.Location{Path: "/install/init"}, guard.Location{})
		require.NoError(t, err)
		assert.False(t, d.IsRedirect())
	})

	t.Run("other paths skip the check", func(t *testing.T) {
		g := guard.InstallGuard(fakeInstallAPI{err: errors.New("unreachable")}, paths)
		d, err := g(ctx, &guard.Location{Path: "/admin/login"}, guard.Location{})
		require.NoError(t, err)
		assert.False(t, d.IsRedirect())
	})

	t.Run("check errors propagate", func(t *testing.T) {
		g := guard.InstallGuard(fakeInstallAPI{err: errors.New("unreachable")}, paths)
		_, err := g(ctx, &guard.Location{Path: "/install/init"}, guard.Location{})
		assert.Error(t, err)
	})
}

func TestCommonGuard(t *testing.T) {
	ctx := context.Background()
	progress := &countingProgress{}
	c := guard.NewCommon(progress)

	to := &guard.Location{Path: "/a"}
	_, err := c.Before(ctx, to, guard.Location{})
	require.NoError(t, err)
	assert.False(t, to.Loaded)
	c.After(*to, guard.Location{}, nil)

	again := &guard.Location{Path: "/a"}
	_, err = c.Before(ctx, again, guard.Location{})
	require.NoError(t, err)
	assert.True(t, again.Loaded)
	c.After(*again, guard.Location{}, nil)

	assert.Equal(t, 1, progress.starts)
	assert.Equal(t, 2, progress.dones)

	failed := &guard.Location{Path: "/b"}
	_, _ = c.Before(ctx, failed, guard.Location{})
	c.After(*failed, guard.Location{}, errors.New("x"))
	next := &guard.Location{Path: "/b"}
	_, _ = c.Before(ctx, next, guard.Location{})
	assert.False(t, next.Loaded, "failed navigations do not count as loaded")
}
