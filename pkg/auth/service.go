package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/navgate/pkg/access"
	"github.com/dmitrymomot/navgate/pkg/identity"
	"github.com/dmitrymomot/navgate/pkg/logger"
)

// Service orchestrates login and logout of one namespace on top of its
// access and identity stores.
type Service struct {
	api         API
	access      *access.Store
	identities  *identity.Store
	nav         Navigator
	loginPath   string
	defaultPath string
	expiredMode ExpiredMode
	log         *slog.Logger

	reauthenticating atomic.Bool
}

// NewService creates a service. Login and logout paths default to the admin
// shell.
func NewService(api API, acc *access.Store, ids *identity.Store, opts ...Option) *Service {
	s := &Service{
		api:         api,
		access:      acc,
		identities:  ids,
		loginPath:   "/admin/login",
		defaultPath: "/admin/dashboard/workspace",
		expiredMode: ExpiredModePage,
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Namespace(acc.Namespace()))
	return s
}

// Access returns the access store the service writes to.
func (s *Service) Access() *access.Store { return s.access }

// Identities returns the identity store the service writes to.
func (s *Service) Identities() *identity.Store { return s.identities }

// Login signs in with creds. A session that is signed in and not expired
// is replaced: its state is cleared before the new token is stored, so the
// guards resolve access again for the new identity. The token is stored
// and the expiry timer armed before the profile and access codes are
// fetched concurrently. Results arriving after the session was reset are
// dropped with access.ErrStaleSession.
// When the session was flagged expired the flag is cleared and the client
// stays where it is; otherwise onSuccess runs, or the client is sent to the
// default path. Login API errors are returned as is.
func (s *Service) Login(ctx context.Context, creds Credentials, onSuccess func(context.Context) error) (*identity.Identity, error) {
	tok, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	if s.access.AccessToken() != "" && !s.access.LoginExpired() {
		s.log.InfoContext(ctx, "replacing signed-in session")
		s.identities.Reset()
		if err := s.access.Reset(ctx); err != nil {
			s.log.ErrorContext(ctx, "failed to clear durable session", logger.Error(err))
		}
	}

	previous := s.identities.Get()
	generation, err := s.access.Begin(ctx, tok.AccessToken, tok.RefreshToken)
	s.warnPersist(ctx, err)

	var (
		profile *identity.Identity
		codes   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.api.Profile(gctx)
		profile = p
		return err
	})
	g.Go(func() error {
		c, err := s.api.AccessCodes(gctx)
		codes = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Join(ErrLoadProfile, err)
	}

	if err := s.access.GrantAccessCodes(ctx, generation, codes); err != nil {
		if errors.Is(err, access.ErrStaleSession) {
			s.log.InfoContext(ctx, "session reset during login, result dropped")
			return nil, err
		}
		s.warnPersist(ctx, err)
	}
	s.identities.Set(profile)
	if s.access.Generation() != generation {
		s.identities.Reset()
		return nil, access.ErrStaleSession
	}

	if s.access.LoginExpired() {
		if previous != nil && profile != nil && previous.ID != profile.ID {
			s.access.SetIsAccessChecked(false)
		}
		s.access.SetLoginExpired(false)
		s.log.InfoContext(ctx, "session recovered after expiry")
		return profile, nil
	}

	s.log.InfoContext(ctx, "logged in", logger.UserID(profileID(profile)))
	if onSuccess != nil {
		return profile, onSuccess(ctx)
	}
	if s.nav == nil {
		return profile, ErrNoNavigator
	}
	return profile, s.nav.Push(ctx, s.defaultPath)
}

// Logout ends the session through Terminate and sends the client to the
// login page, with the current location as redirect query when redirect is
// set.
func (s *Service) Logout(ctx context.Context, redirect bool) error {
	current := ""
	if s.nav != nil {
		current = s.nav.CurrentFullPath()
	}
	s.Terminate(ctx)

	if s.nav == nil {
		return ErrNoNavigator
	}
	return s.nav.Replace(ctx, s.loginTarget(current, redirect))
}

func (s *Service) loginTarget(current string, redirect bool) string {
	if !redirect || current == "" || strings.HasPrefix(current, s.loginPath) {
		return s.loginPath
	}
	return s.loginPath + "?" + url.Values{"redirect": {current}}.Encode()
}

// Terminate ends the session without navigating. The remote logout is
// attempted but its failure never stops the local cleanup of identity,
// tokens, codes, derived trees, the latch, the expired flag and the timer.
func (s *Service) Terminate(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.WarnContext(ctx, "remote logout failed", logger.Error(err))
	}
	s.identities.Reset()
	if err := s.access.Reset(ctx); err != nil {
		s.log.ErrorContext(ctx, "failed to clear durable session", logger.Error(err))
	}
}

// FetchIdentity loads the profile with a single call and stores it. On
// failure it returns nil with the error; callers decide what that means. A
// profile arriving after the session was reset is dropped with
// access.ErrStaleSession.
func (s *Service) FetchIdentity(ctx context.Context) (*identity.Identity, error) {
	generation := s.access.Generation()
	profile, err := s.api.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if s.access.Generation() != generation {
		return nil, access.ErrStaleSession
	}
	s.identities.Set(profile)
	return profile, nil
}

// Reauthenticate handles a token the server no longer accepts. The token is
// dropped; in modal mode an already checked session is flagged expired so
// the client can sign in again in place, otherwise the client is logged out.
// Concurrent calls collapse into one.
func (s *Service) Reauthenticate(ctx context.Context) error {
	if !s.reauthenticating.CompareAndSwap(false, true) {
		return nil
	}
	defer s.reauthenticating.Store(false)

	s.log.WarnContext(ctx, "access token rejected")
	s.warnPersist(ctx, s.access.SetAccessToken(ctx, ""))

	if s.expiredMode == ExpiredModeModal && s.access.IsAccessChecked() {
		s.access.SetLoginExpired(true)
		return nil
	}
	return s.Logout(ctx, true)
}

// RefreshAccessToken exchanges the refresh credentials for a new access
// token and stores it.
func (s *Service) RefreshAccessToken(ctx context.Context) (string, error) {
	tok, err := s.api.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	s.warnPersist(ctx, s.access.SetAccessToken(ctx, tok))
	return tok, nil
}

// warnPersist logs durable storage failures. The in-memory session keeps
// working without them.
func (s *Service) warnPersist(ctx context.Context, err error) {
	if err != nil {
		s.log.WarnContext(ctx, "session not persisted", logger.Error(err))
	}
}

func profileID(p *identity.Identity) int64 {
	if p == nil {
		return 0
	}
	return p.ID
}
