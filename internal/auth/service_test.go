package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
)

type fakeAuthStore struct {
	users    map[string]*core.User
	sessions map[string]session
	nextID   int64
}

type session struct {
	userID    int64
	expiresAt time.Time
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		users:    map[string]*core.User{},
		sessions: map[string]session{},
	}
}

func (s *fakeAuthStore) CreateUser(_ context.Context, u *core.User) error {
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.Email] = &cp
	return nil
}

func (s *fakeAuthStore) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeAuthStore) GetUser(_ context.Context, id int64) (*core.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *fakeAuthStore) CreateSession(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	s.sessions[token] = session{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *fakeAuthStore) SessionUser(_ context.Context, token string, now time.Time) (int64, error) {
	sess, ok := s.sessions[token]
	if !ok || !sess.expiresAt.After(now) {
		return 0, core.ErrNotFound
	}
	return sess.userID, nil
}

func (s *fakeAuthStore) TouchSession(_ context.Context, token string, expiresAt time.Time) error {
	sess, ok := s.sessions[token]
	if !ok {
		return core.ErrNotFound
	}
	sess.expiresAt = expiresAt
	s.sessions[token] = sess
	return nil
}

func (s *fakeAuthStore) DeleteSession(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *fakeAuthStore) PurgeExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for token, sess := range s.sessions {
		if !sess.expiresAt.After(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func newTestAuth(t *testing.T) (*Service, *fakeAuthStore) {
	t.Helper()
	store := newFakeAuthStore()
	svc := NewService(store, time.Hour, 4, log.New(log.Config{}))
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice@Example.com", "Alice", "supersecret", "")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, core.DefaultCurrency, u.DefaultCurrency)
	assert.NotEqual(t, "supersecret", u.PasswordHash)

	token, logged, err := svc.Login(ctx, "alice@example.com", "supersecret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	userID, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		currency core.Currency
	}{
		{name: "bad email", email: "not-an-email", userName: "x", password: "supersecret"},
		{name: "short password", email: "a@b.com", userName: "x", password: "short"},
		{name: "missing name", email: "a@b.com", userName: "", password: "supersecret"},
		{name: "bad currency", email: "a@b.com", userName: "x", password: "supersecret", currency: "DOGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.userName, tt.password, tt.currency)
			require.Error(t, err)
			assert.True(t, core.IsValidation(err))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "first", "supersecret", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.com", "second", "supersecret", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "x", "supersecret", "")
	require.NoError(t, err)

	// unknown email and wrong password produce the same error
	_, _, err = svc.Login(ctx, "nobody@b.com", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "a@b.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "x", "supersecret", "")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "a@b.com", "supersecret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestAuthenticateSlidesExpiry(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.Register(ctx, "a@b.com", "x", "supersecret", "")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "a@b.com", "supersecret")
	require.NoError(t, err)

	// 50 minutes later the session is still valid and gets extended
	svc.now = func() time.Time { return base.Add(50 * time.Minute) }
	_, err = svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, base.Add(50*time.Minute).Add(time.Hour), store.sessions[token].expiresAt)

	// past the extended window the session is gone
	svc.now = func() time.Time { return base.Add(3 * time.Hour) }
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestPurgeExpired(t *testing.T) {
	svc, store := newTestAuth(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	store.sessions["live"] = session{userID: 1, expiresAt: now.Add(time.Hour)}
	store.sessions["dead"] = session{userID: 1, expiresAt: now.Add(-time.Hour)}

	purged, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Contains(t, store.sessions, "live")
	assert.NotContains(t, store.sessions, "dead")
}

func TestMiddleware(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "x", "supersecret", "")
	require.NoError(t, err)
	token, u, err := svc.Login(ctx, "a@b.com", "supersecret")
	require.NoError(t, err)

	var gotUserID int64
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		gotUserID = id
	}))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, u.ID, gotUserID)
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"authentication required"}`, rec.Body.String())
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
