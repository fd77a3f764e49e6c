package access_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/navgate/pkg/access"
	"github.com/dmitrymomot/navgate/pkg/menu"
	"github.com/dmitrymomot/navgate/pkg/routes"
	"github.com/dmitrymomot/navgate/pkg/session"
)

const window = 2 * time.Hour

func newStore(t *testing.T, opts ...access.Option) (*access.Store, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	opts = append([]access.Option{access.WithClock(mock), access.WithExpiryWindow(window)}, opts...)
	s := access.New(access.NamespaceAdmin, opts...)
	t.Cleanup(s.Close)
	return s, mock
}

func TestLoginExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("no login time never expires", func(t *testing.T) {
		s, mock := newStore(t)
		mock.Add(100 * window)
		assert.False(t, s.CheckLoginExpiry())
		assert.False(t, s.HasExpiryTimer())
	})

	t.Run("login then immediate check", func(t *testing.T) {
		s, _ := newStore(t)
		require.NoError(t, s.SetAccessToken(ctx, "T1"))
		require.NoError(t, s.SetLoginTime(ctx))
		assert.False(t, s.CheckLoginExpiry())
		assert.Equal(t, "T1", s.AccessToken())
	})

	t.Run("monotonic until the window elapses", func(t *testing.T) {
		s, mock := newStore(t)
		require.NoError(t, s.SetLoginTime(ctx))

		mock.Add(window - time.Second)
		assert.False(t, s.CheckLoginExpiry())
		assert.False(t, s.LoginExpired())

		mock.Add(time.Second)
		assert.True(t, s.CheckLoginExpiry())
		assert.Eventually(t, s.LoginExpired, time.Second, time.Millisecond)

		mock.Add(time.Hour)
		assert.True(t, s.CheckLoginExpiry())
	})

	t.Run("new login reschedules", func(t *testing.T) {
		s, mock := newStore(t)
		require.NoError(t, s.SetLoginTime(ctx))
		mock.Add(window - time.Minute)
		require.NoError(t, s.SetLoginTime(ctx))

		mock.Add(2 * time.Minute)
		assert.False(t, s.CheckLoginExpiry())
		time.Sleep(5 * time.Millisecond)
		assert.False(t, s.LoginExpired(), "the first timer was cancelled")

		mock.Add(window)
		assert.Eventually(t, s.LoginExpired, time.Second, time.Millisecond)
	})

	t.Run("clear cancels the timer", func(t *testing.T) {
		s, mock := newStore(t)
		require.NoError(t, s.SetLoginTime(ctx))
		require.NoError(t, s.ClearExpiryCheck(ctx))
		assert.False(t, s.HasExpiryTimer())

		mock.Add(2 * window)
		time.Sleep(5 * time.Millisecond)
		assert.False(t, s.LoginExpired())
		_, ok := s.LoginTime()
		assert.False(t, ok)
	})

	t.Run("listeners fire once per transition", func(t *testing.T) {
		var calls atomic.Int32
		s, mock := newStore(t, access.WithExpiryListener(func(ns string) {
			assert.Equal(t, access.NamespaceAdmin, ns)
			calls.Add(1)
		}))
		require.NoError(t, s.SetLoginTime(ctx))
		mock.Add(window)
		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

		s.SetLoginExpired(true)
		assert.Equal(t, int32(1), calls.Load())

		s.SetLoginExpired(false)
		s.SetLoginExpired(true)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestInitExpiryCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("already elapsed", func(t *testing.T) {
		store := session.NewMemoryStore()
		login := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, store.Save(ctx, access.NamespaceAdmin, session.NewSession("T", login)))

		s, _ := newStore(t, access.WithSessionStore(store))
		require.NoError(t, s.Restore(ctx))
		s.InitExpiryCheck()

		assert.True(t, s.LoginExpired())
		assert.False(t, s.HasExpiryTimer())
		assert.Equal(t, "T", s.AccessToken())
	})

	t.Run("remaining window", func(t *testing.T) {
		store := session.NewMemoryStore()
		login := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
		require.NoError(t, store.Save(ctx, access.NamespaceAdmin, session.NewSession("T", login)))

		s, mock := newStore(t, access.WithSessionStore(store))
		require.NoError(t, s.Restore(ctx))
		s.InitExpiryCheck()
		assert.False(t, s.LoginExpired())
		assert.True(t, s.HasExpiryTimer())

		mock.Add(59 * time.Minute)
		time.Sleep(5 * time.Millisecond)
		assert.False(t, s.LoginExpired())

		mock.Add(time.Minute)
		assert.Eventually(t, s.LoginExpired, time.Second, time.Millisecond)
	})

	t.Run("nothing restored", func(t *testing.T) {
		s, _ := newStore(t, access.WithSessionStore(session.NewMemoryStore()))
		require.NoError(t, s.Restore(ctx))
		s.InitExpiryCheck()
		assert.False(t, s.LoginExpired())
		assert.False(t, s.HasExpiryTimer())
	})
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("durable subset only", func(t *testing.T) {
		store := session.NewMemoryStore()
		s, _ := newStore(t, access.WithSessionStore(store), access.WithKey("ws1:admin"))

		require.NoError(t, s.SetAccessToken(ctx, "T"))
		require.NoError(t, s.SetRefreshToken(ctx, "R"))
		require.NoError(t, s.SetAccessCodes(ctx, []string{"AC_1"}))
		require.NoError(t, s.SetLoginTime(ctx))
		require.NoError(t, s.SetAccessMenus(ctx, []menu.Node{{Key: "Home", Path: "/home"}}))

		saved, err := store.Load(ctx, "ws1:admin")
		require.NoError(t, err)
		assert.Equal(t, "T", saved.AccessToken)
		assert.Equal(t, "R", saved.RefreshToken)
		assert.Equal(t, []string{"AC_1"}, saved.AccessCodes)
		assert.True(t, saved.HasLoginTime())
		assert.Empty(t, saved.Menus)
	})

	t.Run("menus persisted when enabled", func(t *testing.T) {
		store := session.NewMemoryStore()
		s, _ := newStore(t, access.WithSessionStore(store), access.WithPersistMenus())
		require.NoError(t, s.SetAccessToken(ctx, "T"))
		require.NoError(t, s.SetAccessMenus(ctx, []menu.Node{{Key: "Home", Path: "/home"}}))

		restored, _ := newStore(t, access.WithSessionStore(store), access.WithPersistMenus())
		require.NoError(t, restored.Restore(ctx))
		m, ok := restored.GetMenuByPath("/home")
		require.True(t, ok)
		assert.Equal(t, "Home", m.Key)
		assert.False(t, restored.IsAccessChecked())
	})

	t.Run("reset deletes the durable entry", func(t *testing.T) {
		store := session.NewMemoryStore()
		s, _ := newStore(t, access.WithSessionStore(store))
		require.NoError(t, s.SetAccessToken(ctx, "T"))
		require.Equal(t, 1, store.Len())

		require.NoError(t, s.Reset(ctx))
		assert.Equal(t, 0, store.Len())
		assert.Empty(t, s.AccessToken())
	})
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, *session.Session) error {
	return session.ErrStoreUnavailable
}

func (failingStore) Load(context.Context, string) (*session.Session, error) {
	return nil, session.ErrStoreUnavailable
}

func (failingStore) Delete(context.Context, string) error {
	return session.ErrStoreUnavailable
}

func TestPersistenceErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, access.WithSessionStore(failingStore{}))

	err := s.SetAccessToken(ctx, "T")
	assert.True(t, errors.Is(err, access.ErrPersist))
	assert.True(t, errors.Is(err, session.ErrStoreUnavailable))
	assert.Equal(t, "T", s.AccessToken(), "memory state is kept")

	err = s.Restore(ctx)
	assert.True(t, errors.Is(err, access.ErrRestore))
}

func TestLatchAndCommit(t *testing.T) {
	ctx := context.Background()
	menus := []menu.Node{{Key: "Dashboard", Path: "/admin/dashboard", Children: []menu.Node{
		{Key: "Workspace", Path: "/admin/dashboard/workspace"},
	}}}
	tree := []routes.Node{{Name: "Dashboard", Path: "/admin/dashboard"}}

	t.Run("commit sets the latch with the trees", func(t *testing.T) {
		s, _ := newStore(t)
		assert.False(t, s.IsAccessChecked())

		require.NoError(t, s.Commit(ctx, s.Generation(), menus, tree))
		assert.True(t, s.IsAccessChecked())
		assert.Equal(t, tree, s.Routes())
		m, ok := s.GetMenuByPath("/admin/dashboard/workspace")
		require.True(t, ok)
		assert.Equal(t, "Workspace", m.Key)
	})

	t.Run("reset clears the latch", func(t *testing.T) {
		s, _ := newStore(t)
		require.NoError(t, s.Commit(ctx, s.Generation(), menus, tree))
		require.NoError(t, s.Reset(ctx))

		assert.False(t, s.IsAccessChecked())
		assert.Empty(t, s.Menus())
		assert.Empty(t, s.Routes())
		_, ok := s.GetMenuByPath("/admin/dashboard")
		assert.False(t, ok)
	})

	t.Run("stale commit is rejected", func(t *testing.T) {
		s, _ := newStore(t)
		gen := s.Generation()
		require.NoError(t, s.Reset(ctx))

		err := s.Commit(ctx, gen, menus, tree)
		assert.ErrorIs(t, err, access.ErrStaleSession)
		assert.False(t, s.IsAccessChecked())
		assert.Empty(t, s.Menus())
	})

	t.Run("wholesale replacement", func(t *testing.T) {
		s, _ := newStore(t)
		require.NoError(t, s.SetAccessMenus(ctx, menus))
		require.NoError(t, s.SetAccessMenus(ctx, []menu.Node{{Key: "Other", Path: "/other"}}))
		_, ok := s.GetMenuByPath("/admin/dashboard")
		assert.False(t, ok)

		s.SetAccessRoutes(tree)
		s.SetAccessRoutes(nil)
		assert.Empty(t, s.Routes())
	})
}

func TestBegin(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the durable subset and arms the timer", func(t *testing.T) {
		store := session.NewMemoryStore()
		s, mock := newStore(t, access.WithSessionStore(store))
		require.NoError(t, s.SetAccessCodes(ctx, []string{"OLD"}))

		generation, err := s.Begin(ctx, "T1", "R1")
		require.NoError(t, err)
		assert.Equal(t, s.Generation(), generation)
		assert.Equal(t, "T1", s.AccessToken())
		assert.Equal(t, "R1", s.RefreshToken())
		assert.Empty(t, s.AccessCodes())
		assert.True(t, s.HasExpiryTimer())

		login, ok := s.LoginTime()
		require.True(t, ok)
		assert.Equal(t, mock.Now(), login)

		saved, err := store.Load(ctx, access.NamespaceAdmin)
		require.NoError(t, err)
		assert.Equal(t, "T1", saved.AccessToken)
		assert.True(t, saved.HasLoginTime())
	})

	t.Run("codes of a reset session are dropped", func(t *testing.T) {
		store := session.NewMemoryStore()
		s, _ := newStore(t, access.WithSessionStore(store))
		generation, err := s.Begin(ctx, "T1", "")
		require.NoError(t, err)

		require.NoError(t, s.GrantAccessCodes(ctx, generation, []string{"AC_1"}))
		assert.Equal(t, []string{"AC_1"}, s.AccessCodes())

		require.NoError(t, s.Reset(ctx))
		err = s.GrantAccessCodes(ctx, generation, []string{"AC_2"})
		assert.ErrorIs(t, err, access.ErrStaleSession)
		assert.Empty(t, s.AccessCodes())
		_, err = store.Load(ctx, access.NamespaceAdmin)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestHasAccessByCodes(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.SetAccessCodes(ctx, []string{"AC_100", "system.*"}))

	assert.True(t, s.HasAccessByCodes("AC_100"))
	assert.True(t, s.HasAccessByCodes("nope", "system.user.edit"))
	assert.False(t, s.HasAccessByCodes("AC_200"))
	assert.False(t, s.HasAccessByCodes("system"))
	assert.True(t, s.HasAccessByCodes())

	require.NoError(t, s.SetAccessCodes(ctx, []string{"*"}))
	assert.True(t, s.HasAccessByCodes("anything"))
}

func TestConfigWindow(t *testing.T) {
	cfg := access.Config{AdminExpiry: 2 * time.Hour, UserExpiry: 72 * time.Hour}
	assert.Equal(t, 2*time.Hour, cfg.Window(access.NamespaceAdmin))
	assert.Equal(t, 72*time.Hour, cfg.Window(access.NamespaceUser))
}

func TestRouteTreeRevision(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, rev0 := s.RouteTree()
	require.NoError(t, s.Commit(ctx, s.Generation(), nil, []routes.Node{{Name: "A", Path: "/a"}}))
	tree, rev1 := s.RouteTree()
	assert.NotEqual(t, rev0, rev1)
	assert.Len(t, tree, 1)

	require.NoError(t, s.Reset(ctx))
	tree, rev2 := s.RouteTree()
	assert.NotEqual(t, rev1, rev2)
	assert.Empty(t, tree)
}
