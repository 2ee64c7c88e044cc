package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("SKILLLINK_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("SKILLLINK_SOCKET_URL", "")
	return xdg
}

func TestLoadDefaults(t *testing.T) {
	xdg := isolate(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	dir := filepath.Join(xdg, "skilllink")
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultAPIURL, cfg.SocketURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Zero(t, cfg.HTTP.RateLimit)
	assert.Equal(t, SecretsBackendChain, cfg.Secrets.Backend)
	assert.Equal(t, filepath.Join(dir, "secrets"), cfg.Secrets.Dir)
	assert.Equal(t, filepath.Join(dir, "preferences.toml"), cfg.PreferencesPath)
}

func TestLoadReadsConfigFile(t *testing.T) {
	xdg := isolate(t)

	dir := filepath.Join(xdg, "skilllink")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
api_url = "https://api.skilllink.test/"
socket_url = "https://rt.skilllink.test"
log_level = "debug"

[http]
timeout = "5s"
rate_limit = 2.5
burst = 3

[secrets]
backend = "file"
`), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://api.skilllink.test", cfg.APIURL)
	assert.Equal(t, "https://rt.skilllink.test", cfg.SocketURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimit, 0.0001)
	assert.Equal(t, 3, cfg.HTTP.Burst)
	assert.Equal(t, SecretsBackendFile, cfg.Secrets.Backend)
}

func TestLoadHonoursViteAPIURL(t *testing.T) {
	isolate(t)
	t.Setenv("VITE_API_URL", "http://127.0.0.1:4000")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.APIURL)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.SocketURL)
}

func TestLoadPrefixedEnvWinsOverVite(t *testing.T) {
	isolate(t)
	t.Setenv("VITE_API_URL", "http://127.0.0.1:4000")
	t.Setenv("SKILLLINK_API_URL", "http://127.0.0.1:5000")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.APIURL)
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	isolate(t)
	t.Setenv("SKILLLINK_API_URL", "localhost:3001")

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.ErrorContains(t, err, "api_url")
}

func TestLoadDotEnvIgnoresMissingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadDotEnvExportsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKILLLINK_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("SKILLLINK_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("SKILLLINK_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("SKILLLINK_TEST_DOTENV"))
}
