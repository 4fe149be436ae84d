package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"

	"simbi_backend/internal/auth"
	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.Configure("middleware-test-secret", time.Minute, "simbi-test")
	os.Exit(m.Run())
}

func perform(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, userID string, role models.UserRole) http.Header {
	t.Helper()
	token, err := auth.GenerateToken(userID, string(role))
	require.NoError(t, err)
	return http.Header{"Authorization": {"Bearer " + token}}
}

func whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": GetUserID(c), "role": GetUserRole(c)})
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), whoAmI)

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer garbage"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodGet, "/me?token=ignored", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "query tokens are for websockets only")

	w = perform(r, http.MethodGet, "/me", bearer(t, "u-1", models.UserRoleUser))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"u-1","role":"user"}`, w.Body.String())
}

func TestWSAuthMiddleware_AcceptsQueryToken(t *testing.T) {
	r := gin.New()
	r.GET("/ws", WSAuthMiddleware(), whoAmI)

	token, err := auth.GenerateToken("u-2", "user")
	require.NoError(t, err)

	w := perform(r, http.MethodGet, "/ws?token="+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-2")
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/feed", OptionalAuthMiddleware(), whoAmI)

	w := perform(r, http.MethodGet, "/feed", http.Header{"Authorization": {"Bearer garbage"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"","role":""}`, w.Body.String())

	w = perform(r, http.MethodGet, "/feed", bearer(t, "u-3", models.UserRoleModerator))
	assert.JSONEq(t, `{"user":"u-3","role":"moderator"}`, w.Body.String())
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(), RequireRoles(models.UserRoleAdmin, models.UserRoleModerator), whoAmI)

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", bearer(t, "u", models.UserRoleUser)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin", bearer(t, "m", models.UserRoleModerator)).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin", bearer(t, "a", models.UserRoleAdmin)).Code)
}

func TestRefreshAccount_UsesStoredRoleAndStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	admin := testutil.CreateUser(t, db, &models.User{Role: models.UserRoleAdmin}, "")
	demoted := testutil.CreateUser(t, db, &models.User{Role: models.UserRoleUser}, "")
	banned := testutil.CreateUser(t, db, &models.User{Role: models.UserRoleAdmin, Status: models.UserStatusBanned}, "")
	inactive := testutil.CreateUser(t, db, &models.User{Role: models.UserRoleAdmin, Status: models.UserStatusInactive}, "")
	lapsed := time.Now().Add(-time.Hour)
	expiredBan := testutil.CreateUser(t, db, &models.User{Role: models.UserRoleAdmin, Status: models.UserStatusBanned, BannedUntil: &lapsed}, "")

	r := gin.New()
	r.Use(DBMiddleware(db))
	r.GET("/admin", AuthMiddleware(), RefreshAccount(repositories.NewUserRepository()), RequireRoles(models.UserRoleAdmin), whoAmI)

	// every token below still claims admin
	cases := []struct {
		name   string
		userID string
		want   int
	}{
		{"admin", admin.ID, http.StatusOK},
		{"demoted", demoted.ID, http.StatusForbidden},
		{"banned", banned.ID, http.StatusForbidden},
		{"inactive", inactive.ID, http.StatusForbidden},
		{"ban expired", expiredBan.ID, http.StatusOK},
		{"deleted", "no-such-user", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := perform(r, http.MethodGet, "/admin", bearer(t, tc.userID, models.UserRoleAdmin))
		assert.Equal(t, tc.want, w.Code, tc.name)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	l := NewRateLimiter(context.Background(), nil, 2, 200*time.Millisecond)
	ctx := context.Background()

	for i, reached := range []bool{false, false, true} {
		res, err := l.Get(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, reached, res.Reached, "hit %d", i+1)
	}

	res, err := l.Get(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.False(t, res.Reached, "keys are independent")
	assert.EqualValues(t, 1, res.Remaining)

	time.Sleep(300 * time.Millisecond)
	res, err = l.Get(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Reached)
	assert.EqualValues(t, 1, res.Remaining)
}

// brokenStore fails like an unreachable Redis.
type brokenStore struct{}

var errStoreDown = errors.New("redis down")

func (brokenStore) Get(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}
func (brokenStore) Peek(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}
func (brokenStore) Reset(context.Context, string, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}
func (brokenStore) Increment(context.Context, string, int64, limiter.Rate) (limiter.Context, error) {
	return limiter.Context{}, errStoreDown
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/login", RateLimitMiddleware(NewRateLimiter(context.Background(), nil, 1, time.Minute)), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))

	w = perform(r, http.MethodGet, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	broken := limiter.New(brokenStore{}, limiter.Rate{Period: time.Minute, Limit: 1})
	open := gin.New()
	open.GET("/login", RateLimitMiddleware(broken), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusNoContent, perform(open, http.MethodGet, "/login", nil).Code, "limiter errors fail open")
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"req-123"}})
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = perform(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRequestIDMiddleware_CorrelationID(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		seen = logger.GetCorrelationID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"req-1"}, CorrelationIDHeader: {"checkout-42"}})
	assert.Equal(t, "checkout-42", w.Header().Get(CorrelationIDHeader))
	assert.Equal(t, "checkout-42", seen)

	w = perform(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"req-2"}})
	assert.Equal(t, "req-2", w.Header().Get(CorrelationIDHeader), "defaults to the request id")
	assert.Equal(t, "req-2", seen)
}

func TestLoggingMiddleware_WritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "debug")
	t.Cleanup(func() { logger.InitWithWriter(io.Discard, "error") })

	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggingMiddleware())
	r.GET("/missing", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })

	perform(r, http.MethodGet, "/missing", http.Header{RequestIDHeader: {"req-9"}, CorrelationIDHeader: {"flow-9"}})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "HTTP Client Error", line["message"])
	assert.Equal(t, "/missing", line["path"])
	assert.EqualValues(t, 404, line["status"])
	assert.EqualValues(t, 4, line["size_bytes"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, "flow-9", line["correlation_id"])
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), RecoveryMiddleware())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "kaboom")
}
