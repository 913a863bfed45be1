package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RendersEnvVars(t *testing.T) {
	t.Setenv("TEST_DATABASE_URL", "postgres://u:p@db:5432/chat?sslmode=disable")
	t.Setenv("TEST_JWT_KEY", "super-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
host: chat.example.com
basePath: /api
database:
  driver: postgres
  source: "{{.TEST_DATABASE_URL}}"
auth:
  signingKey: "{{.TEST_JWT_KEY}}"
  accessTokenTTL: 10m
revocation:
  backend: redis
  redis:
    addr: "redis:6379"
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "chat.example.com", cfg.Host)
	assert.Equal(t, "postgres://u:p@db:5432/chat?sslmode=disable", cfg.Database.Source)
	assert.Equal(t, "super-secret", cfg.Auth.SigningKey)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, RevocationRedis, cfg.Revocation.Backend)
	assert.Equal(t, "redis:6379", cfg.Revocation.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("auth:\n  signingKey: k\n")
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, "/docs", cfg.DocsPath)
	assert.Equal(t, RevocationPostgres, cfg.Revocation.Backend)
	assert.Equal(t, "any", cfg.Auth.UserMutationPolicy)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "chat-audit", cfg.Events.Topic)
	assert.False(t, cfg.Server.RedactInternalErrors)
}

func TestValidate(t *testing.T) {
	cfg, err := Parse("revocation:\n  backend: memcached\n")
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "empty signing key")

	cfg.Auth.SigningKey = "k"
	assert.Error(t, cfg.Validate(), "unknown backend")

	cfg.Revocation.Backend = RevocationMemory
	assert.NoError(t, cfg.Validate())

	cfg.Auth.UserMutationPolicy = "owner"
	assert.Error(t, cfg.Validate())
}
