package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, DefaultUserAgent, cfg.API.UserAgent)
	assert.Equal(t, 10, cfg.List.Limit)
	assert.False(t, cfg.Debug)
	assert.NotEmpty(t, cfg.Auth.TokenPath)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SDESK_API_BASE_URL", "https://desk.example.com")
	t.Setenv("SDESK_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://desk.example.com", cfg.API.BaseURL)
	assert.True(t, cfg.Debug)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: https://desk.internal:9443
  timeout: 5s
auth:
  token_path: ` + filepath.Join(dir, "token") + `
list:
  limit: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://desk.internal:9443", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.Auth.TokenPath)
	assert.Equal(t, 25, cfg.List.Limit)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
