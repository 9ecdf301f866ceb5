package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/church-agenda/agenda-client/internal/ports"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// ErrNotAuthenticated is returned by Token when no session is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	API     ports.AuthAPI
	Storage ports.KVStore
	// PrivilegedRoles grant admin views. Defaults to Admin and Staff.
	PrivilegedRoles []domainauth.Role
	Logger          *slog.Logger
	// Now is used to check token expiry on restore. Defaults to time.Now.
	Now func() time.Time
}

// SessionStore owns the authenticated session: token plus minimal identity,
// held in memory and mirrored to the persisted key-value store.
// It implements oauth2.TokenSource so the gateway can read the bearer token.
type SessionStore struct {
	api        ports.AuthAPI
	storage    ports.KVStore
	privileged []domainauth.Role
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	current domainauth.Session
}

var _ oauth2.TokenSource = (*SessionStore)(nil)

// NewSessionStore constructs an unauthenticated SessionStore. Call Restore to hydrate it.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	roles := slices.Clone(opts.PrivilegedRoles)
	if len(roles) == 0 {
		roles = domainauth.DefaultPrivilegedRoles()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		api:        opts.API,
		storage:    opts.Storage,
		privileged: roles,
		logger:     logger.With("component", "session"),
		now:        now,
	}
}

// Login authenticates against the backend. On success the token and identity are
// persisted and then set in memory. On any failure nothing changes and the returned
// *apperrors.AppError carries the backend key or internal_error.
func (s *SessionStore) Login(ctx context.Context, email, password, organizationSlug string) error {
	env := s.api.Login(ctx, domainauth.LoginRequest{
		Email:            strings.TrimSpace(email),
		Password:         password,
		OrganizationSlug: strings.TrimSpace(organizationSlug),
	})
	if !env.Ok {
		s.logger.InfoContext(ctx, "login rejected", "error_key", env.ErrorKey)
		return env.Err()
	}

	res := env.Value()
	sess := domainauth.Session{
		Token: res.Token,
		User:  domainauth.Identity{ID: res.UserID, Role: res.Role},
	}
	if !sess.IsAuthenticated() || !sess.User.Valid() {
		s.logger.WarnContext(ctx, "login response missing token or identity")
		return apperrors.Domain(apperrors.KeyInternal)
	}

	if err := s.persist(ctx, sess); err != nil {
		s.logger.ErrorContext(ctx, "persist session", "error", err)
		return err
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "logged in", "user_id", sess.User.ID, "role", sess.User.Role)
	return nil
}

func (s *SessionStore) persist(ctx context.Context, sess domainauth.Session) error {
	user, err := json.Marshal(sess.User)
	if err != nil {
		return apperrors.Storage(err, "encode %s", ports.KeyAuthUser)
	}

	prev, hadPrev, err := s.storage.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return apperrors.Storage(err, "read %s", ports.KeyAuthToken)
	}
	if err := s.storage.Set(ctx, ports.KeyAuthToken, sess.Token); err != nil {
		return apperrors.Storage(err, "persist %s", ports.KeyAuthToken)
	}
	if err := s.storage.Set(ctx, ports.KeyAuthUser, string(user)); err != nil {
		cause := err
		if rbErr := s.rollbackToken(context.WithoutCancel(ctx), prev, hadPrev); rbErr != nil {
			cause = errors.Join(err, fmt.Errorf("rollback %s: %w", ports.KeyAuthToken, rbErr))
		}
		return apperrors.Storage(cause, "persist %s", ports.KeyAuthUser)
	}
	return nil
}

// rollbackToken puts the persisted token back to what it was before a failed login.
func (s *SessionStore) rollbackToken(ctx context.Context, prev string, hadPrev bool) error {
	if hadPrev {
		return s.storage.Set(ctx, ports.KeyAuthToken, prev)
	}
	return s.storage.Remove(ctx, ports.KeyAuthToken)
}

// Logout clears the session from memory and storage. Memory is always cleared;
// storage failures are returned joined. Calling it when signed out is a no-op.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = domainauth.Session{}
	s.mu.Unlock()

	var errs []error
	for _, key := range []string{ports.KeyAuthToken, ports.KeyAuthUser} {
		if err := s.storage.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.WarnContext(ctx, "logout left persisted state behind", "error", err)
		return apperrors.Storage(err, "clear session")
	}
	return nil
}

// Restore hydrates memory from storage. Both keys must be present, the identity must
// be well formed, and a JWT token must not be expired; otherwise the store stays
// unauthenticated. It never fails.
func (s *SessionStore) Restore(ctx context.Context) {
	sess, reason := s.load(ctx)
	if reason != "" {
		s.logger.DebugContext(ctx, "no session restored", "reason", reason)
		return
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "session restored", "user_id", sess.User.ID, "role", sess.User.Role)
}

func (s *SessionStore) load(ctx context.Context) (domainauth.Session, string) {
	token, ok, err := s.storage.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return domainauth.Session{}, "read token: " + err.Error()
	}
	if !ok || token == "" {
		return domainauth.Session{}, "token missing"
	}

	raw, ok, err := s.storage.Get(ctx, ports.KeyAuthUser)
	if err != nil {
		return domainauth.Session{}, "read user: " + err.Error()
	}
	if !ok {
		return domainauth.Session{}, "user missing"
	}

	var user domainauth.Identity
	if err := json.Unmarshal([]byte(raw), &user); err != nil || !user.Valid() {
		return domainauth.Session{}, "user malformed"
	}

	if expired(token, s.now()) {
		return domainauth.Session{}, "token expired"
	}
	return domainauth.Session{Token: token, User: user}, ""
}

// expired reports whether token is a JWT whose exp claim lies in the past.
// Opaque tokens and JWTs without exp are never considered expired.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Teardown drops in-memory state without touching storage.
func (s *SessionStore) Teardown() {
	s.mu.Lock()
	s.current = domainauth.Session{}
	s.mu.Unlock()
}

// Current returns the active session and whether one exists.
func (s *SessionStore) Current() (domainauth.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current.IsAuthenticated()
}

// Snapshot returns the session state, authenticated or not.
func (s *SessionStore) Snapshot() domainauth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsAuthenticated reports whether a token is held.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

// IsAdmin reports whether the session role is privileged.
func (s *SessionStore) IsAdmin() bool {
	return s.Snapshot().HasRole(s.privileged...)
}

// Token implements oauth2.TokenSource.
func (s *SessionStore) Token() (*oauth2.Token, error) {
	sess := s.Snapshot()
	if !sess.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: sess.Token, TokenType: "Bearer"}, nil
}
