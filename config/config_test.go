package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientDefaults(t *testing.T) {
	cfg, err := NewClientConfig("")
	require.NoError(t, err)
	require.Equal(t, "/api/v1", cfg.API.Prefix)
	require.Equal(t, 1, cfg.Cache.Retry)
	require.Equal(t, 30*time.Second, cfg.Cache.StaleTime)
	require.NotEmpty(t, cfg.Session.File)
}

func TestClientEnvOverride(t *testing.T) {
	t.Setenv("SOCIALNET_API_BASE_URL", "https://social.example.com")
	t.Setenv("SOCIALNET_CACHE_RETRY", "3")

	cfg, err := NewClientConfig("")
	require.NoError(t, err)
	require.Equal(t, "https://social.example.com", cfg.API.BaseURL)
	require.Equal(t, 3, cfg.Cache.Retry)
}

func TestClientRejectsNegativeRetry(t *testing.T) {
	t.Setenv("SOCIALNET_CACHE_RETRY", "-1")

	_, err := NewClientConfig("")
	require.ErrorContains(t, err, "cache.retry")
}

func TestServerConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	body := []byte("server:\n  port: 9090\nstorage:\n  db_path: /tmp/x.db\nauth:\n  jwt_secret: 0123456789abcdef-secret\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := NewServerConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/tmp/x.db", cfg.Storage.DBPath)
	require.Equal(t, "http://localhost:9090", cfg.PublicURL())
	require.Equal(t, "0.0.0.0:9090", cfg.ServerAddr())
	require.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestServerRejectsShortSecret(t *testing.T) {
	t.Setenv("SOCIALNET_AUTH_JWT_SECRET", "short")

	_, err := NewServerConfig("")
	require.ErrorContains(t, err, "jwt_secret")
}
