package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/you/voicegate/domain"
	"github.com/you/voicegate/internal/config"
	httpx "github.com/you/voicegate/internal/http"
	"github.com/you/voicegate/internal/http/handlers"
	"github.com/you/voicegate/internal/http/middleware"
	authinfra "github.com/you/voicegate/internal/infrastructure/auth"
	"github.com/you/voicegate/internal/infrastructure/database"
	"github.com/you/voicegate/internal/infrastructure/repositories"
	"github.com/you/voicegate/internal/mocks"
	"github.com/you/voicegate/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryUserRepo is a stateful in-memory domain.UserRepository so handler
// tests can run the full stack without Postgres.
type memoryUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) UpdateStatus(_ context.Context, userID uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Status = status
	return nil
}

func (r *memoryUserRepo) UpdateRole(_ context.Context, userID uint, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Role = role
	return nil
}

func (r *memoryUserRepo) List(_ context.Context, offset, limit int) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.User, 0, len(r.users))
	for id := uint(1); id <= r.nextID; id++ {
		if user, ok := r.users[id]; ok {
			clone := *user
			all = append(all, &clone)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

var _ domain.UserRepository = (*memoryUserRepo)(nil)

type apiFixture struct {
	router *gin.Engine
	users  *memoryUserRepo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })

	users := newMemoryUserRepo()
	sessionRepo := repositories.NewSessionRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	passwordSvc, err := authinfra.NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)
	tokenSvc, err := authinfra.NewJWTService("test-secret-0123456789abcdef", "voicegate", 30*time.Minute)
	require.NoError(t, err)

	sessionMgr := services.NewSessionManager(sessionRepo, tokenSvc, 168*time.Hour)
	throttle := services.NewLoginThrottle(database.NewRedis(mr.Addr(), "", 0), 3, 15*time.Minute)
	audit := mocks.NewMockAuditLogger()

	authSvc := services.NewAuthService(users, sessionMgr, passwordSvc, tokenSvc, throttle, audit)

	cookies := handlers.CookiePolicy{
		SessionName:   "vg_session",
		RefreshName:   "vg_refresh",
		SameSite:      http.SameSiteLaxMode,
		SessionMaxAge: 1800,
		RefreshMaxAge: 604800,
	}
	ah := handlers.NewAuthHandlers(authSvc, cookies)
	uh := handlers.NewAdminUserHandlers(users, passwordSvc)
	authmw := middleware.NewAuthMW(tokenSvc, users, sessionRepo, sessionMgr, audit, "vg_session", config.ValidationStrict)

	return &apiFixture{
		router: httpx.BuildRouter(ah, uh, authmw, zerolog.Nop()),
		users:  users,
	}
}

// cookieJar carries auth cookies across requests in a scenario.
type cookieJar map[string]string

func (j cookieJar) update(resp *httptest.ResponseRecorder) {
	for _, c := range resp.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(j, c.Name)
			continue
		}
		j[c.Name] = c.Value
	}
}

func (f *apiFixture) do(t *testing.T, jar cookieJar, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lifecycle-test/1.0")
	for name, value := range jar {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if jar != nil {
		jar.update(w)
	}
	return w
}

func TestAuthLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	jar := cookieJar{}

	// Signup issues both cookies.
	w := f.do(t, jar, http.MethodPost, "/auth/signup", gin.H{
		"email":    "a@x.com",
		"password": "Password123!",
		"name":     "Ada",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Contains(t, jar, "vg_session")
	require.Contains(t, jar, "vg_refresh")
	assert.Contains(t, w.Body.String(), `"a@x.com"`)

	// The session cookie authenticates /auth/me.
	w = f.do(t, jar, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"outbound"`)

	// Refresh rotates both credentials.
	oldSession, oldRefresh := jar["vg_session"], jar["vg_refresh"]
	w = f.do(t, jar, http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEqual(t, oldSession, jar["vg_session"])
	assert.NotEqual(t, oldRefresh, jar["vg_refresh"])

	// The consumed refresh token is single-use.
	staleJar := cookieJar{"vg_refresh": oldRefresh}
	w = f.do(t, staleJar, http.MethodPost, "/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The rotated credentials still work.
	w = f.do(t, jar, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Logout clears the cookies and revokes the session.
	sessionToken := jar["vg_session"]
	w = f.do(t, jar, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, jar["vg_session"])

	// The old access token is dead even though its signature still verifies.
	deadJar := cookieJar{"vg_session": sessionToken}
	w = f.do(t, deadJar, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidation(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing email", body: gin.H{"password": "Password123!"}},
		{name: "not an email", body: gin.H{"email": "nope", "password": "Password123!"}},
		{name: "short password", body: gin.H{"email": "a@x.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, nil, http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t)
	body := gin.H{"email": "a@x.com", "password": "Password123!"}

	w := f.do(t, cookieJar{}, http.MethodPost, "/auth/signup", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, cookieJar{}, http.MethodPost, "/auth/signup", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginFailures(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, cookieJar{}, http.MethodPost, "/auth/signup", gin.H{"email": "a@x.com", "password": "Password123!"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Wrong password and unknown email are indistinguishable.
	w = f.do(t, nil, http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	wrongPass := w.Body.String()

	w = f.do(t, nil, http.MethodPost, "/auth/login", gin.H{"email": "ghost@x.com", "password": "Password123!"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, wrongPass, w.Body.String())
}

func TestLoginThrottled(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, cookieJar{}, http.MethodPost, "/auth/signup", gin.H{"email": "a@x.com", "password": "Password123!"})
	require.Equal(t, http.StatusCreated, w.Code)

	// The fixture allows three failures per window.
	for i := 0; i < 3; i++ {
		w = f.do(t, nil, http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// Even the correct password is rejected while throttled.
	w = f.do(t, nil, http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "Password123!"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestLoginSuspendedAccount(t *testing.T) {
	f := newAPIFixture(t)
	w := f.do(t, cookieJar{}, http.MethodPost, "/auth/signup", gin.H{"email": "a@x.com", "password": "Password123!"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, f.users.UpdateStatus(context.Background(), 1, domain.StatusSuspended))

	w = f.do(t, nil, http.MethodPost, "/auth/login", gin.H{"email": "a@x.com", "password": "Password123!"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "suspended")
}

func TestRefreshWithoutToken(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, nil, http.MethodPost, "/auth/refresh", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshFromBody(t *testing.T) {
	f := newAPIFixture(t)
	jar := cookieJar{}
	w := f.do(t, jar, http.MethodPost, "/auth/signup", gin.H{"email": "a@x.com", "password": "Password123!"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Non-browser clients send the token in the body instead of a cookie.
	w = f.do(t, nil, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": jar["vg_refresh"]})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestLogoutWithoutSession(t *testing.T) {
	f := newAPIFixture(t)

	// Logout is idempotent and anonymous-safe.
	w := f.do(t, cookieJar{}, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	f := newAPIFixture(t)
	jar := cookieJar{}
	w := f.do(t, jar, http.MethodPost, "/auth/signup", gin.H{"email": "a@x.com", "password": "Password123!"})
	require.Equal(t, http.StatusCreated, w.Code)

	// A fresh signup is an outbound user, not an admin.
	w = f.do(t, jar, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, f.users.UpdateRole(context.Background(), 1, domain.RoleAdmin))

	w = f.do(t, jar, http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":1`)

	// Admins can provision users with explicit roles.
	w = f.do(t, jar, http.MethodPost, "/admin/users", gin.H{
		"email":    "agent@x.com",
		"password": "Password123!",
		"role":     domain.RoleInbound,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, jar, http.MethodPatch, "/admin/users/2/status", gin.H{"status": domain.StatusSuspended})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, jar, http.MethodPatch, "/admin/users/99/status", gin.H{"status": domain.StatusSuspended})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminEndpointsRejectAnonymous(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, nil, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
