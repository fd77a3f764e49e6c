package access

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/navgate/pkg/logger"
	"github.com/dmitrymomot/navgate/pkg/menu"
	"github.com/dmitrymomot/navgate/pkg/routes"
	"github.com/dmitrymomot/navgate/pkg/session"
)

// DefaultExpiryWindow is used when no window is configured.
const DefaultExpiryWindow = 2 * time.Hour

// Store holds the access state of one namespace: tokens, access codes, the
// login timestamp with its expiry timer, and the menus and routes derived
// for the session. Tokens, codes and the login time (optionally menus) are
// written through to a session.Store; everything else lives in memory only.
//
// Store is safe for concurrent use. The expiry timer is the only
// background writer and it only raises the expired flag.
type Store struct {
	namespace    string
	key          string
	clock        clock.Clock
	window       time.Duration
	durable      session.Store
	persistMenus bool
	log          *slog.Logger
	listeners    []ExpiryListener

	mu         sync.RWMutex
	sess       session.Session
	expired    bool
	menus      []menu.Node
	routes     []routes.Node
	routesRev  uint64
	checked    bool
	generation uint64
	timer      *clock.Timer
	timerSeq   uint64

	// persistMu orders writes to durable storage so the last one wins.
	persistMu sync.Mutex
}

// New creates an empty store for namespace.
func New(namespace string, opts ...Option) *Store {
	s := &Store{
		namespace: namespace,
		key:       namespace,
		clock:     clock.New(),
		window:    DefaultExpiryWindow,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Namespace(namespace))
	return s
}

// Namespace returns the namespace the store belongs to.
func (s *Store) Namespace() string { return s.namespace }

// ExpiryWindow returns the configured login lifetime.
func (s *Store) ExpiryWindow() time.Duration { return s.window }

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.RefreshToken
}

// AccessCodes returns a copy of the granted access codes.
func (s *Store) AccessCodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sess.AccessCodes)
}

// LoginTime returns the recorded login time, if any.
func (s *Store) LoginTime() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.LoginTime == nil {
		return time.Time{}, false
	}
	return *s.sess.LoginTime, true
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.sess.AccessToken = token
	s.mu.Unlock()
	return s.persist(ctx)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.sess.RefreshToken = token
	s.mu.Unlock()
	return s.persist(ctx)
}

func (s *Store) SetAccessCodes(ctx context.Context, codes []string) error {
	s.mu.Lock()
	s.sess.AccessCodes = slices.Clone(codes)
	s.mu.Unlock()
	return s.persist(ctx)
}

// Begin starts the session of a freshly issued token. The durable subset is
// replaced, the login time set to now and the expiry timer armed for the
// full window. The returned generation identifies the new session for
// GrantAccessCodes and Commit.
func (s *Store) Begin(ctx context.Context, token, refreshToken string) (uint64, error) {
	s.mu.Lock()
	sess := session.NewSession(token, s.clock.Now())
	sess.RefreshToken = refreshToken
	s.sess = *sess
	s.scheduleLocked(s.window)
	generation := s.generation
	s.mu.Unlock()
	return generation, s.persist(ctx)
}

// GrantAccessCodes stores codes fetched for the session identified by
// generation. Codes arriving after a reset are dropped with ErrStaleSession.
func (s *Store) GrantAccessCodes(ctx context.Context, generation uint64, codes []string) error {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return ErrStaleSession
	}
	s.sess.AccessCodes = slices.Clone(codes)
	s.mu.Unlock()
	return s.persist(ctx)
}

// SetLoginTime records now as the login time and replaces the expiry timer
// with one firing after the full window.
func (s *Store) SetLoginTime(ctx context.Context) error {
	s.mu.Lock()
	now := s.clock.Now()
	s.sess.LoginTime = &now
	s.scheduleLocked(s.window)
	s.mu.Unlock()
	return s.persist(ctx)
}

// CheckLoginExpiry reports whether the window has elapsed since login.
// Without a login time it is always false.
func (s *Store) CheckLoginExpiry() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.ExpiredAt(s.clock.Now(), s.window)
}

// SetLoginExpired sets the expired flag. Raising it notifies the expiry
// listeners.
func (s *Store) SetLoginExpired(expired bool) {
	s.mu.Lock()
	raised := expired && !s.expired
	s.expired = expired
	s.mu.Unlock()

	if raised {
		s.notifyExpired()
	}
}

// LoginExpired reports the expired flag.
func (s *Store) LoginExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expired
}

// InitExpiryCheck resumes expiry tracking after a restore: the session is
// flagged right away if the window already elapsed, otherwise the timer is
// armed for the remaining part of the window.
func (s *Store) InitExpiryCheck() {
	s.mu.Lock()
	if s.sess.LoginTime == nil {
		s.mu.Unlock()
		return
	}
	remaining := s.window - s.clock.Since(*s.sess.LoginTime)
	if remaining > 0 {
		s.scheduleLocked(remaining)
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.mu.Unlock()

	s.log.Info("login expired while offline")
	s.SetLoginExpired(true)
}

// ClearExpiryCheck cancels the timer and forgets the login time.
func (s *Store) ClearExpiryCheck(ctx context.Context) error {
	s.mu.Lock()
	s.stopTimerLocked()
	s.sess.LoginTime = nil
	s.mu.Unlock()
	return s.persist(ctx)
}

// HasExpiryTimer reports whether an expiry timer is armed.
func (s *Store) HasExpiryTimer() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timer != nil
}

func (s *Store) scheduleLocked(d time.Duration) {
	s.stopTimerLocked()
	s.timerSeq++
	seq := s.timerSeq
	s.timer = s.clock.AfterFunc(d, func() { s.onTimer(seq) })
}

func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerSeq++
}

// onTimer ignores callbacks of timers replaced while they were firing.
func (s *Store) onTimer(seq uint64) {
	s.mu.Lock()
	if seq != s.timerSeq || s.sess.LoginTime == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.log.Info("login expired")
	s.SetLoginExpired(true)
}

func (s *Store) notifyExpired() {
	for _, fn := range s.listeners {
		fn(s.namespace)
	}
}

// Menus returns a copy of the cached menu tree.
func (s *Store) Menus() []menu.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return menu.Clone(s.menus)
}

// Routes returns a copy of the cached route tree.
func (s *Store) Routes() []routes.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return routes.Clone(s.routes)
}

// SetAccessMenus replaces the cached menu tree.
func (s *Store) SetAccessMenus(ctx context.Context, menus []menu.Node) error {
	s.mu.Lock()
	s.menus = menu.Clone(menus)
	s.mu.Unlock()
	if !s.persistMenus {
		return nil
	}
	return s.persist(ctx)
}

// SetAccessRoutes replaces the cached route tree.
func (s *Store) SetAccessRoutes(tree []routes.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = routes.Clone(tree)
	s.routesRev++
}

// RouteTree returns the cached route tree with a revision that changes
// whenever the tree is replaced.
func (s *Store) RouteTree() ([]routes.Node, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return routes.Clone(s.routes), s.routesRev
}

func (s *Store) SetIsAccessChecked(checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = checked
}

func (s *Store) IsAccessChecked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checked
}

// Generation identifies the current session. It changes on every Reset.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Commit stores menus and routes and sets the access-checked latch in one
// step, provided the session is still the one identified by generation.
// Readers never observe the latch without the trees it guards.
func (s *Store) Commit(ctx context.Context, generation uint64, menus []menu.Node, tree []routes.Node) error {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return ErrStaleSession
	}
	s.menus = menu.Clone(menus)
	s.routes = routes.Clone(tree)
	s.routesRev++
	s.checked = true
	s.mu.Unlock()

	if !s.persistMenus {
		return nil
	}
	return s.persist(ctx)
}

// GetMenuByPath finds the first cached menu entry for path, depth-first.
func (s *Store) GetMenuByPath(path string) (menu.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return menu.FindByPath(s.menus, path)
}

// HasAccessByCodes reports whether any of codes is granted.
func (s *Store) HasAccessByCodes(codes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HasAnyCode(s.sess.AccessCodes, codes)
}

// Restore loads the durable session. A missing entry is not an error.
func (s *Store) Restore(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}
	stored, err := s.durable.Load(ctx, s.key)
	if errors.Is(err, session.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrRestore, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = *stored
	if s.persistMenus {
		s.menus = stored.Menus
	}
	s.sess.Menus = nil
	return nil
}

// Reset ends the session: every field is cleared, the timer is stopped, the
// durable entry is deleted and the generation moves on, so commits started
// before the reset are rejected.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.stopTimerLocked()
	s.sess = session.Session{}
	s.expired = false
	s.menus = nil
	s.routes = nil
	s.routesRev++
	s.checked = false
	s.generation++
	s.mu.Unlock()

	if s.durable == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.durable.Delete(ctx, s.key); err != nil {
		return errors.Join(ErrPersist, err)
	}
	return nil
}

// Close stops the expiry timer.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

func (s *Store) snapshot() *session.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.sess.Clone()
	if s.persistMenus {
		snap.Menus = menu.Clone(s.menus)
	}
	return snap
}

func (s *Store) persist(ctx context.Context) error {
	if s.durable == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snap := s.snapshot()
	var err error
	if snap.IsEmpty() {
		err = s.durable.Delete(ctx, s.key)
	} else {
		err = s.durable.Save(ctx, s.key, snap)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to persist session", logger.Error(err))
		return errors.Join(ErrPersist, err)
	}
	return nil
}
