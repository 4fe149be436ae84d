package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"simbi_backend/internal/app"
	"simbi_backend/internal/auth"
	"simbi_backend/internal/config"
	"simbi_backend/internal/models"
	"simbi_backend/internal/testutil"
)

type testServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	App    *app.App
}

func newTestServer(t *testing.T, tweak ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.Server.Env = "test"
	cfg.JWT.Secret = "integration-test-secret"
	cfg.Storage.BasePath = t.TempDir()
	cfg.RateLimit.Enabled = false
	for _, fn := range tweak {
		fn(cfg)
	}

	db := testutil.NewTestDB(t)
	a, err := app.New(cfg, db)
	require.NoError(t, err)

	go a.Hub().Run()
	server := httptest.NewServer(a.Router())

	t.Cleanup(func() {
		server.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = a.Hub().Shutdown(ctx)
		_ = a.Close()
	})

	return &testServer{Server: server, DB: db, App: a}
}

// SendRequest sends body as JSON and returns the response with its body read.
func (ts *testServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode(t *testing.T, data []byte, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(data, dst), string(data))
}

// createUser inserts a user directly and returns it with an access token.
func (ts *testServer) createUser(t *testing.T, role models.UserRole) (*models.User, string) {
	t.Helper()
	user := testutil.CreateUser(t, ts.DB, &models.User{Role: role}, "")
	token, err := auth.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err)
	return user, token
}
