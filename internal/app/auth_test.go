package app_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbi_backend/internal/config"
	"simbi_backend/internal/services/dto"
)

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]interface{}{
		"email":     "maya@example.com",
		"password":  "super_password123",
		"firstName": "Maya",
	}
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	var registered dto.AuthResponse
	decode(t, body, &registered)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "maya@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.User.Username)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", registered.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "maya@example.com")

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "maya@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "MAYA@example.com", "password": "super_password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))

	// rotation: the old refresh token is spent
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	var refreshed dto.AuthResponse
	decode(t, body, &refreshed)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/sessions", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var sessions struct {
		Sessions []dto.SessionResponse `json:"sessions"`
	}
	decode(t, body, &sessions)
	assert.Len(t, sessions.Sessions, 2, "login and refreshed registration")

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout-all", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": refreshed.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAuth_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestAuth_Validation(t *testing.T) {
	ts := newTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, string(body), "error")
}

func TestAuth_RateLimited(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.Requests = 2
	})

	login := map[string]string{"email": "nobody@example.com", "password": "whatever123"}
	for i := 0; i < 2; i++ {
		res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", login)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "2", res.Header.Get("X-RateLimit-Limit"))
	}

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", login)
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
}
