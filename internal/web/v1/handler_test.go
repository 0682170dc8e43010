package v1

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/gatehouse/internal/core/domain"
	logicv1 "github.com/duynhne/gatehouse/internal/logic/v1"
	"github.com/duynhne/gatehouse/internal/policy"
	"github.com/duynhne/gatehouse/internal/token"
	"github.com/duynhne/gatehouse/middleware"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserRow), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, id, email, name, passwordHash string, role domain.Role) error {
	args := m.Called(ctx, id, email, name, passwordHash, role)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.UserRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserRow), args.Error(1)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.UserRow, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserRow), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionRow), args.Error(1)
}

func (m *mockSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type testStack struct {
	router   *gin.Engine
	users    *mockUserRepo
	sessions *mockSessionRepo
	codec    *token.Codec
}

// newTestStack wires the full request path: gate middleware, handlers,
// service, mocked repositories.
func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.New("web-test-secret")
	require.NoError(t, err)

	users := new(mockUserRepo)
	sessions := new(mockSessionRepo)
	auth := logicv1.NewAuthService(users, sessions, codec)
	handler := NewHandler(auth, false)

	r := gin.New()
	r.Use(middleware.Gate(policy.NewEngine(codec, policy.DefaultRoutes())))
	handler.RegisterRoutes(r)
	handler.RegisterPages(r)

	return &testStack{router: r, users: users, sessions: sessions, codec: codec}
}

func (s *testStack) mintCookie(t *testing.T, role domain.Role) *http.Cookie {
	t.Helper()
	signed, err := s.codec.Issue(token.Payload{UserID: "actor-1", Email: "actor@example.com", Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: signed}
}

func (s *testStack) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := w.Result()
	for _, c := range res.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginHandler_SetsSessionCookie(t *testing.T) {
	s := newTestStack(t)

	s.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.UserRow{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: hashOf(t, "secret123"),
		Role:         domain.RoleUser,
	}, nil)
	s.sessions.On("Create", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)

	w := s.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookieFrom(t, w)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(token.TTL.Seconds()), cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// The cookie value is a token our codec accepts.
	payload, err := s.codec.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "u1", payload.UserID)

	assert.Contains(t, w.Body.String(), `"alice@example.com"`)
}

func TestLoginHandler_FailuresAreNonEnumerable(t *testing.T) {
	s := newTestStack(t)

	s.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
	s.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.UserRow{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: hashOf(t, "right"),
		Role:         domain.RoleUser,
	}, nil)

	noSuchUser := s.do(http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com","password":"x"}`, nil)
	wrongPassword := s.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"wrong"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, noSuchUser.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	// Identical bodies: the response must not reveal which factor
	// failed.
	assert.Equal(t, noSuchUser.Body.String(), wrongPassword.Body.String())
}

func TestLoginHandler_StoreFailureIs500Not401(t *testing.T) {
	s := newTestStack(t)

	s.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	w := s.do(http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRegisterHandler(t *testing.T) {
	s := newTestStack(t)

	s.users.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	s.users.On("Create", mock.Anything, mock.Anything, "new@example.com", "", mock.Anything, domain.RoleUser).Return(nil)
	s.sessions.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := s.do(http.MethodPost, "/api/auth/register", `{"email":"new@example.com","password":"secret123"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, sessionCookieFrom(t, w))
}

func TestRegisterHandler_Duplicate(t *testing.T) {
	s := newTestStack(t)

	s.users.On("ExistsByEmail", mock.Anything, "dup@example.com").Return(true, nil)

	w := s.do(http.MethodPost, "/api/auth/register", `{"email":"dup@example.com","password":"secret123"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterHandler_InvalidRole(t *testing.T) {
	s := newTestStack(t)

	w := s.do(http.MethodPost, "/api/auth/register", `{"email":"x@example.com","password":"secret123","role":"ROOT"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutHandler_AlwaysSucceedsAndClearsCookie(t *testing.T) {
	s := newTestStack(t)

	// Without any cookie.
	w := s.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// With a garbage token: still 200, row deletion attempted, cookie
	// cleared.
	s.sessions.On("DeleteByToken", mock.Anything, "garbage").Return(nil)
	w = s.do(http.MethodPost, "/api/auth/logout", "", &http.Cookie{Name: middleware.SessionCookie, Value: "garbage"})
	assert.Equal(t, http.StatusOK, w.Code)

	cleared := sessionCookieFrom(t, w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestLogoutHandler_StoreFailureStill200(t *testing.T) {
	s := newTestStack(t)

	cookie := s.mintCookie(t, domain.RoleUser)
	s.sessions.On("DeleteByToken", mock.Anything, cookie.Value).Return(errors.New("store down"))

	w := s.do(http.MethodPost, "/api/auth/logout", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookieFrom(t, w))
}

func TestGetMeHandler_LiveSession(t *testing.T) {
	s := newTestStack(t)

	cookie := s.mintCookie(t, domain.RoleUser)
	s.sessions.On("GetByToken", mock.Anything, cookie.Value).Return(&domain.SessionRow{
		UserID:    "actor-1",
		Email:     "actor@example.com",
		Role:      domain.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	w := s.do(http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "actor@example.com")
}

func TestGetMeHandler_RevokedSession(t *testing.T) {
	s := newTestStack(t)

	// Token verifies but logout already deleted the row.
	cookie := s.mintCookie(t, domain.RoleUser)
	s.sessions.On("GetByToken", mock.Anything, cookie.Value).Return(nil, nil)

	w := s.do(http.MethodGet, "/api/auth/me", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOverlayAccessHandler(t *testing.T) {
	s := newTestStack(t)
	cookie := s.mintCookie(t, domain.RoleUser)

	w := s.do(http.MethodGet, "/api/overlay/access", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasAccess":true,"role":"USER","email":"actor@example.com"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/overlay/access?role=MODERATOR", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"hasAccess":false`)

	w = s.do(http.MethodGet, "/api/overlay/access?role=GUEST", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/overlay/access", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandlers(t *testing.T) {
	s := newTestStack(t)
	admin := s.mintCookie(t, domain.RoleAdmin)

	s.users.On("List", mock.Anything).Return([]domain.UserRow{
		{ID: "u1", Email: "a@b.c", Role: domain.RoleUser},
	}, nil)

	w := s.do(http.MethodGet, "/api/admin/users", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"a@b.c"`)

	s.users.On("UpdateRole", mock.Anything, "u1", domain.RoleModerator).Return(&domain.UserRow{
		ID:    "u1",
		Email: "a@b.c",
		Role:  domain.RoleModerator,
	}, nil)

	w = s.do(http.MethodPatch, "/api/admin/users/u1", `{"role":"MODERATOR"}`, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"MODERATOR"`)

	w = s.do(http.MethodPatch, "/api/admin/users/u1", `{"role":"ROOT"}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.users.On("UpdateRole", mock.Anything, "missing", domain.RoleUser).Return(nil, nil)
	w = s.do(http.MethodPatch, "/api/admin/users/missing", `{"role":"USER"}`, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.users.On("Delete", mock.Anything, "u1").Return(true, nil)
	w = s.do(http.MethodDelete, "/api/admin/users/u1", "", admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminHandlers_GateRejectsNonAdmin(t *testing.T) {
	s := newTestStack(t)

	w := s.do(http.MethodGet, "/api/admin/users", "", s.mintCookie(t, domain.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)
	s.users.AssertNotCalled(t, "List", mock.Anything)
}

// TestAdminHandlers_DefenseInDepth reaches the admin handlers without
// the gate installed, simulating a deployment topology where a thin
// route bypasses it. The logic layer's own role check must still deny.
func TestAdminHandlers_DefenseInDepth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	codec, err := token.New("web-test-secret")
	require.NoError(t, err)

	users := new(mockUserRepo)
	sessions := new(mockSessionRepo)
	handler := NewHandler(logicv1.NewAuthService(users, sessions, codec), false)

	r := gin.New()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	users.AssertNotCalled(t, "List", mock.Anything)
}
