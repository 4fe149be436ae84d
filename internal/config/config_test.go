package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoad_FileThenEnv(t *testing.T) {
	writeConfig(t, `
server:
  port: 8081
  env: production
  read_timeout: 5s
database:
  driver: postgres
  url: postgres://file/db
jwt:
  secret: file-secret-0123456789
rate_limit:
  enabled: true
  requests: 5
`)
	t.Setenv("SIMBI_SERVER__PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://legacy/db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "prefixed env wins over the file")
	assert.Equal(t, "postgres://legacy/db", cfg.Database.DSN, "legacy variables are applied last")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Requests)

	// untouched defaults survive
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "mock", cfg.Email.Provider)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
}

func TestLoad_ValidationFails(t *testing.T) {
	writeConfig(t, `
database:
  url: postgres://file/db
jwt:
  secret: short
`)
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DATABASE_URL", "sqlite://test.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "env-secret-0123456789")
	t.Setenv("FIRST_ADMIN_EMAIL", "root@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "root@example.com", cfg.Admin.Email)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Empty(t, cfg.Stripe.SecretKey)
}
