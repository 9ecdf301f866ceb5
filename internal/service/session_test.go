package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/church-agenda/agenda-client/internal/adapters/memory"
	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/church-agenda/agenda-client/internal/mocks"
	fakes "github.com/church-agenda/agenda-client/internal/mocks/auth"
	"github.com/church-agenda/agenda-client/internal/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSessionStore(api ports.AuthAPI, storage ports.KVStore) *SessionStore {
	return NewSessionStore(SessionStoreOptions{API: api, Storage: storage})
}

func loginAs(token string, id int64, role domainauth.Role) *fakes.FakeAuthAPI {
	api := fakes.NewFakeAuthAPI()
	api.DefaultToken = token
	api.DefaultUser = domainauth.Identity{ID: id, Role: role}
	return api
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestSessionStore_LoginScenarioAdmin(t *testing.T) {
	ctx := context.Background()
	api := &fakes.FakeAuthAPI{
		LoginFunc: func(context.Context, domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult] {
			return envelope.Success(domainauth.LoginResult{Token: "T1", UserID: 7, Role: "Admin"})
		},
	}
	storage := memory.NewStore()
	s := newSessionStore(api, storage)

	require.NoError(t, s.Login(ctx, "a@b.com", "x", ""))

	sess, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "T1", sess.Token)
	assert.Equal(t, domainauth.RoleAdmin, sess.User.Role)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsAdmin())

	assert.Equal(t, map[string]string{
		ports.KeyAuthToken: "T1",
		ports.KeyAuthUser:  `{"id":7,"role":"Admin"}`,
	}, storage.Snapshot())

	logins := api.Logins()
	require.Len(t, logins, 1)
	assert.Equal(t, domainauth.LoginRequest{Email: "a@b.com", Password: "x"}, logins[0])
}

func TestSessionStore_LoginRoleIsStoredExactly(t *testing.T) {
	for _, role := range []domainauth.Role{"Member", "Staff", "Admin", "Pastor"} {
		t.Run(string(role), func(t *testing.T) {
			s := newSessionStore(loginAs("tok", 3, role), memory.NewStore())
			require.NoError(t, s.Login(context.Background(), "a@b.com", "pw", "pibg-greenville"))

			assert.True(t, s.IsAuthenticated())
			assert.Equal(t, role, s.Snapshot().User.Role)
			assert.Equal(t, role == domainauth.RoleAdmin || role == domainauth.RoleStaff, s.IsAdmin())
		})
	}
}

func TestSessionStore_LoginFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()

	// Start from an existing session so "unchanged" is observable.
	s := newSessionStore(loginAs("OLD", 1, domainauth.RoleMember), storage)
	require.NoError(t, s.Login(ctx, "old@b.com", "pw", ""))
	before := s.Snapshot()
	persisted := storage.Snapshot()

	tests := []struct {
		name    string
		api     *fakes.FakeAuthAPI
		wantKey string
	}{
		{name: "backend key", api: fakes.NewFakeAuthAPI().RejectLogins("auth.invalid_credentials"), wantKey: "auth.invalid_credentials"},
		{name: "transport failure", api: fakes.NewFakeAuthAPI().RejectLogins(""), wantKey: "internal_error"},
		{
			name: "success without token",
			api: &fakes.FakeAuthAPI{LoginFunc: func(context.Context, domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult] {
				return envelope.Success(domainauth.LoginResult{UserID: 7, Role: "Admin"})
			}},
			wantKey: "internal_error",
		},
		{
			name: "success without data",
			api: &fakes.FakeAuthAPI{LoginFunc: func(context.Context, domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult] {
				return envelope.Envelope[domainauth.LoginResult]{Ok: true}
			}},
			wantKey: "internal_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.api = tt.api

			err := s.Login(ctx, "a@b.com", "bad", "")

			require.Error(t, err)
			assert.Equal(t, tt.wantKey, apperrors.KeyOf(err))
			assert.Equal(t, before, s.Snapshot())
			assert.Equal(t, persisted, storage.Snapshot())
		})
	}
}

func TestSessionStore_LoginRollsBackWhenUserPersistFails(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockKVStore(ctrl)

	gomock.InOrder(
		storage.EXPECT().Get(gomock.Any(), ports.KeyAuthToken).Return("", false, nil),
		storage.EXPECT().Set(gomock.Any(), ports.KeyAuthToken, "T1").Return(nil),
		storage.EXPECT().Set(gomock.Any(), ports.KeyAuthUser, `{"id":7,"role":"Admin"}`).Return(errors.New("disk full")),
		storage.EXPECT().Remove(gomock.Any(), ports.KeyAuthToken).Return(nil),
	)

	s := newSessionStore(loginAs("T1", 7, domainauth.RoleAdmin), storage)
	err := s.Login(ctx, "a@b.com", "x", "")

	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))
	assert.Equal(t, "internal_error", apperrors.KeyOf(err))
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_LoginRollbackRestoresPreviousToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockKVStore(ctrl)

	gomock.InOrder(
		storage.EXPECT().Get(gomock.Any(), ports.KeyAuthToken).Return("OLD", true, nil),
		storage.EXPECT().Set(gomock.Any(), ports.KeyAuthToken, "T1").Return(nil),
		storage.EXPECT().Set(gomock.Any(), ports.KeyAuthUser, gomock.Any()).Return(errors.New("disk full")),
		storage.EXPECT().Set(gomock.Any(), ports.KeyAuthToken, "OLD").Return(errors.New("still full")),
	)

	s := newSessionStore(loginAs("T1", 7, domainauth.RoleAdmin), storage)
	err := s.Login(context.Background(), "a@b.com", "x", "")

	require.Error(t, err)
	assert.ErrorContains(t, err, "still full")
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_LogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStoreWith(map[string]string{ports.KeyLocale: "en"})
	s := newSessionStore(loginAs("T1", 7, domainauth.RoleStaff), storage)
	require.NoError(t, s.Login(ctx, "a@b.com", "x", ""))

	require.NoError(t, s.Logout(ctx))

	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsAdmin())
	assert.Equal(t, map[string]string{ports.KeyLocale: "en"}, storage.Snapshot())

	// Idempotent, including on a store that never logged in.
	require.NoError(t, s.Logout(ctx))
	require.NoError(t, newSessionStore(fakes.NewFakeAuthAPI(), memory.NewStore()).Logout(ctx))
}

func TestSessionStore_LogoutClearsMemoryEvenWhenStorageFails(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockKVStore(ctrl)
	storage.EXPECT().Get(gomock.Any(), ports.KeyAuthToken).Return("T1", true, nil)
	storage.EXPECT().Get(gomock.Any(), ports.KeyAuthUser).Return(`{"id":7,"role":"Member"}`, true, nil)
	storage.EXPECT().Remove(gomock.Any(), ports.KeyAuthToken).Return(errors.New("unavailable"))
	storage.EXPECT().Remove(gomock.Any(), ports.KeyAuthUser).Return(nil)

	s := newSessionStore(fakes.NewFakeAuthAPI(), storage)
	s.Restore(ctx)
	require.True(t, s.IsAuthenticated())

	err := s.Logout(ctx)

	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_Restore(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	fresh := signedToken(t, now.Add(time.Hour))
	stale := signedToken(t, now.Add(-time.Minute))

	tests := []struct {
		name     string
		stored   map[string]string
		wantAuth bool
		wantRole domainauth.Role
	}{
		{name: "nothing persisted", stored: nil},
		{name: "token only", stored: map[string]string{ports.KeyAuthToken: "T1"}},
		{name: "user only", stored: map[string]string{ports.KeyAuthUser: `{"id":7,"role":"Admin"}`}},
		{name: "empty token", stored: map[string]string{ports.KeyAuthToken: "", ports.KeyAuthUser: `{"id":7,"role":"Admin"}`}},
		{name: "malformed user", stored: map[string]string{ports.KeyAuthToken: "T1", ports.KeyAuthUser: "{oops"}},
		{name: "user without role", stored: map[string]string{ports.KeyAuthToken: "T1", ports.KeyAuthUser: `{"id":7}`}},
		{name: "user without id", stored: map[string]string{ports.KeyAuthToken: "T1", ports.KeyAuthUser: `{"role":"Admin"}`}},
		{name: "expired jwt", stored: map[string]string{ports.KeyAuthToken: stale, ports.KeyAuthUser: `{"id":7,"role":"Admin"}`}},
		{
			name:     "opaque token",
			stored:   map[string]string{ports.KeyAuthToken: "T1", ports.KeyAuthUser: `{"id":7,"role":"Admin"}`},
			wantAuth: true,
			wantRole: domainauth.RoleAdmin,
		},
		{
			name:     "valid jwt",
			stored:   map[string]string{ports.KeyAuthToken: fresh, ports.KeyAuthUser: `{"id":7,"role":"Member"}`},
			wantAuth: true,
			wantRole: domainauth.RoleMember,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessionStore(SessionStoreOptions{
				API:     fakes.NewFakeAuthAPI(),
				Storage: memory.NewStoreWith(tt.stored),
				Now:     func() time.Time { return now },
			})

			assert.NotPanics(t, func() { s.Restore(context.Background()) })

			assert.Equal(t, tt.wantAuth, s.IsAuthenticated())
			if tt.wantAuth {
				assert.Equal(t, tt.wantRole, s.Snapshot().User.Role)
			}
		})
	}
}

func TestSessionStore_RestoreStorageErrorStaysSignedOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockKVStore(ctrl)
	storage.EXPECT().Get(gomock.Any(), ports.KeyAuthToken).Return("", false, errors.New("redis down"))

	s := newSessionStore(fakes.NewFakeAuthAPI(), storage)
	s.Restore(context.Background())
	assert.False(t, s.IsAuthenticated())
}

func TestSessionStore_RestoreInFreshInstance(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()
	first := newSessionStore(loginAs("T9", 12, domainauth.RoleStaff), storage)
	require.NoError(t, first.Login(ctx, "a@b.com", "x", ""))

	second := newSessionStore(fakes.NewFakeAuthAPI(), storage)
	second.Restore(ctx)

	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestSessionStore_TeardownKeepsStorage(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()
	s := newSessionStore(loginAs("T1", 7, domainauth.RoleAdmin), storage)
	require.NoError(t, s.Login(ctx, "a@b.com", "x", ""))

	s.Teardown()

	assert.False(t, s.IsAuthenticated())
	assert.Len(t, storage.Snapshot(), 2)
	s.Restore(ctx)
	assert.True(t, s.IsAuthenticated())
}

func TestSessionStore_TokenSource(t *testing.T) {
	s := newSessionStore(loginAs("T1", 7, domainauth.RoleMember), memory.NewStore())

	_, err := s.Token()
	require.ErrorIs(t, err, ErrNotAuthenticated)

	require.NoError(t, s.Login(context.Background(), "a@b.com", "x", ""))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "T1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestSessionStore_CustomPrivilegedRoles(t *testing.T) {
	s := NewSessionStore(SessionStoreOptions{
		API:             loginAs("T1", 7, "Pastor"),
		Storage:         memory.NewStore(),
		PrivilegedRoles: []domainauth.Role{"Pastor"},
	})
	require.NoError(t, s.Login(context.Background(), "a@b.com", "x", ""))
	assert.True(t, s.IsAdmin())
}

func TestSessionStore_ConcurrentLoginLastWriteWins(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()
	s := newSessionStore(fakes.NewFakeAuthAPI(), storage)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Login(ctx, "a@b.com", "x", "")
			_ = s.IsAdmin()
		}()
	}
	wg.Wait()

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "fake-token", s.Snapshot().Token)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, expired("opaque", now))
	assert.False(t, expired("a.b.c", now))
	assert.True(t, expired(signedToken(t, now.Add(-time.Second)), now))
	assert.False(t, expired(signedToken(t, now.Add(time.Hour)), now))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.False(t, expired(noExp, now))
}
