// Package auth is the session lifecycle manager: it establishes,
// renews, expires, and revokes the authenticated session, enforces the
// account-lockout policy, and drives the unlock/password-reset
// recovery flow. The rest of the application consumes its derived
// state; the durable store is the only thing shared with sibling
// execution contexts.
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fantasyleague/leagueclient/leagueapi"
	"github.com/fantasyleague/leagueclient/sessions"
)

const (
	defaultSweepInterval = time.Minute
	legacyUserID         = "demo-user"
)

// Service computes the derived authentication state for one execution
// context. Its in-memory view is authoritative only until the next
// reconciliation pass; the store always wins.
type Service struct {
	store         sessions.Store
	api           leagueapi.API
	log           zerolog.Logger
	nowTime       func() time.Time
	sweepInterval time.Duration

	mu       sync.RWMutex
	current  *sessions.Session
	watchers []func(*sessions.Session)
}

// Option configures a Service.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) { s.nowTime = nowFunc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithSweepInterval overrides the periodic reconciliation cadence
// (primarily for testing; the production cadence is one minute).
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) { s.sweepInterval = interval }
}

// New builds a Service bound to a store and the backend boundary. The
// initial in-memory state is adopted from the store unless the stored
// session has already expired.
func New(store sessions.Store, api leagueapi.API, options ...Option) (*Service, error) {
	if store == nil {
		return nil, StoreRequiredErr
	}
	if api == nil {
		return nil, APIRequiredErr
	}

	s := &Service{
		store:         store,
		api:           api,
		log:           zerolog.Nop(),
		nowTime:       time.Now,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range options {
		opt(s)
	}

	if stored, found := store.Read(); found && !sessions.IsExpired(&stored, s.nowTime()) {
		s.current = &stored
	}
	return s, nil
}

// Current returns the session this context believes is active, or nil.
func (s *Service) Current() *sessions.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := s.current.Clone()
	return &c
}

func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// User returns the opaque profile blob of the active session, or nil.
func (s *Service) User() map[string]any {
	sess := s.Current()
	if sess == nil {
		return nil
	}
	return sess.User
}

// AccessToken returns the active session's access token, or "".
func (s *Service) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// OnChange registers a callback invoked whenever the derived session
// state changes: login, logout, renewal adoption, expiry, or a
// cross-context change. The callback receives nil on transition to the
// unauthenticated state.
func (s *Service) OnChange(fn func(*sessions.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// LoginContext authenticates against the backend. On success it
// persists a fresh session and resets the account's lockout record; on
// failure it returns the classified outcome without touching the
// stored session. It never returns a Go error.
func (s *Service) LoginContext(ctx context.Context, email, password string) LoginResult {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		status, msg := classify(err)
		switch status {
		case StatusInvalidCredentials:
			meta := s.RecordFailedAttempt(email)
			s.log.Info().
				Str("account", sessions.MetaKey(email)).
				Int("failed_count", meta.FailedCount).
				Bool("locked", meta.Locked).
				Msg("login rejected")
		case StatusLocked:
			s.markLocked(email)
			s.log.Info().Str("account", sessions.MetaKey(email)).Msg("login refused, account locked")
		default:
			s.log.Warn().Int("status", int(status)).Msg("login failed")
		}
		return LoginResult{Result: failure(status, msg)}
	}

	now := s.nowTime()
	sess := sessions.Session{
		Email:        resp.UserEmail(),
		UserID:       resp.UserID(),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.Usuario,
		CreatedAt:    now,
		LastActivity: now,
	}
	if sess.Email == "" {
		sess.Email = email
	}

	if err := s.store.Write(sess); err != nil {
		s.log.Error().Err(err).Msg("persisting session")
		return LoginResult{Result: failure(StatusUnavailable, msgLoginFailed)}
	}
	s.ResetOnSuccess(sess.Email)
	s.replaceCurrent(&sess)
	s.log.Info().Str("account", sessions.MetaKey(sess.Email)).Msg("session established")
	return LoginResult{Result: ok(""), Data: resp}
}

// LogoutContext clears the store and the derived state. It succeeds
// even when no session exists; there is no backend call to invalidate
// server-side state.
func (s *Service) LogoutContext(_ context.Context) Result {
	s.clearSession()
	return ok("")
}

// Logout is the synchronous variant of LogoutContext with identical
// clearing semantics.
func (s *Service) Logout() {
	s.clearSession()
}

func (s *Service) clearSession() {
	if err := s.store.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("clearing session store")
	}
	s.replaceCurrent(nil)
}

// Login is the legacy non-networked path: it creates a session from an
// email alone, bypassing the backend. Kept for offline flows.
func (s *Service) Login(email string) *sessions.Session {
	now := s.nowTime()
	sess := sessions.Session{
		Email:        email,
		UserID:       legacyUserID,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.store.Write(sess); err != nil {
		s.log.Warn().Err(err).Msg("persisting session")
	}
	s.replaceCurrent(&sess)
	return s.Current()
}

// UpdateUser merges fields into the session's profile blob and
// persists the result. No-op, with no store write, when no session
// exists.
func (s *Service) UpdateUser(partial map[string]any) {
	stored, found := s.store.Read()
	if !found {
		return
	}
	if stored.User == nil {
		stored.User = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		stored.User[k] = v
	}
	if err := s.store.Write(stored); err != nil {
		s.log.Warn().Err(err).Msg("persisting profile update")
		return
	}
	s.replaceCurrent(&stored)
}

// UpdateActivity is the renewal primitive: it slides the expiration
// window forward. No-op when no session exists.
func (s *Service) UpdateActivity() {
	stored, found := s.store.Read()
	if !found {
		return
	}
	stored.Touch(s.nowTime())
	if err := s.store.Write(stored); err != nil {
		s.log.Warn().Err(err).Msg("persisting activity renewal")
		return
	}
	s.replaceCurrent(&stored)
}

// Run drives reconciliation until the context ends. Two independent
// triggers feed the same pass: the store's change notifications and
// the periodic sweep, which doubles as the fallback for missed
// notifications and for passive expiry when nothing writes.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	changes := s.store.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-changes:
			if !open {
				// Store handle closed; the sweep keeps running.
				changes = nil
				continue
			}
			s.Reconcile()
		case <-ticker.C:
			s.Reconcile()
		}
	}
}

// Reconcile brings the in-memory view back in sync with the store: an
// absent or expired session drops this context to unauthenticated, and
// an expired-but-present record is also cleared from the store so
// sibling contexts converge without rediscovering the expiry. A live
// stored session is adopted only when it differs from the current
// view.
func (s *Service) Reconcile() {
	stored, found := s.store.Read()
	if !found {
		s.setCurrent(nil)
		return
	}
	if sessions.IsExpired(&stored, s.nowTime()) {
		if err := s.store.Clear(); err != nil {
			s.log.Warn().Err(err).Msg("clearing expired session")
		}
		s.log.Info().Str("account", sessions.MetaKey(stored.Email)).Msg("session expired")
		s.setCurrent(nil)
		return
	}
	s.setCurrent(&stored)
}

// setCurrent adopts the next session only if it differs from the
// current one, to avoid redundant watcher churn.
func (s *Service) setCurrent(next *sessions.Session) {
	s.mu.Lock()
	if s.current.Equal(next) {
		s.mu.Unlock()
		return
	}
	s.current = next
	watchers := make([]func(*sessions.Session), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(next)
	}
}

// replaceCurrent adopts unconditionally: profile merges and renewals
// change state the Equal comparison does not cover.
func (s *Service) replaceCurrent(next *sessions.Session) {
	s.mu.Lock()
	s.current = next
	watchers := make([]func(*sessions.Session), len(s.watchers))
	copy(watchers, s.watchers)
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(next)
	}
}
