package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, cfg.API.Backend)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 4, cfg.Prefetch.Concurrency)
	assert.True(t, cfg.Prefetch.Enabled)
	assert.Equal(t, "3", cfg.UI.DefaultReport)
	assert.Equal(t, filepath.Join(cfg.Data.Dir, "myreports.db"), cfg.DBPath())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
api:
  backend: http
  base_url: https://reports.example.com
  timeout: 5s
  max_retries: 1
search:
  debounce: 150ms
prefetch:
  concurrency: 2
ui:
  mouse: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendHTTP, cfg.API.Backend)
	assert.Equal(t, "https://reports.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1, cfg.API.MaxRetries)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 2, cfg.Prefetch.Concurrency)
	assert.True(t, cfg.UI.Mouse)
	assert.Equal(t, 250*time.Millisecond, cfg.API.RateLimit, "unset keys keep defaults")
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "api:\n  backend: http\n  base_url: https://a.example.com\n")
	t.Setenv("MYREPORTS_API_BASE_URL", "https://b.example.com")
	t.Setenv("MYREPORTS_API_CSRF_TOKEN", "secret")
	t.Setenv("MYREPORTS_SEARCH_MIN_CHARS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.com", cfg.API.BaseURL)
	assert.Equal(t, "secret", cfg.API.CSRFToken)
	assert.Equal(t, 3, cfg.Search.MinChars)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit file must exist")

	_, err = Load(writeConfig(t, "api:\n  backend: http\n"))
	assert.ErrorContains(t, err, "base_url")

	_, err = Load(writeConfig(t, "api:\n  backend: carrier-pigeon\n"))
	assert.ErrorContains(t, err, "carrier-pigeon")

	_, err = Load(writeConfig(t, "prefetch:\n  concurrency: 0\n"))
	assert.ErrorContains(t, err, "concurrency")
}
