package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.API.URL)
	assert.Nil(t, cfg.Dashboard.Days)

	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
url = "http://localhost:8080"
timeout = "3s"

[dashboard]
from = "GBP"
to = "JPY"
days = 7
refresh = "30s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.API.URL)
	assert.Equal(t, "http://localhost:8080", *cfg.API.URL)
	require.NotNil(t, cfg.API.Timeout)
	assert.Equal(t, "3s", *cfg.API.Timeout)
	require.NotNil(t, cfg.Dashboard.From)
	assert.Equal(t, "GBP", *cfg.Dashboard.From)
	require.NotNil(t, cfg.Dashboard.To)
	assert.Equal(t, "JPY", *cfg.Dashboard.To)
	require.NotNil(t, cfg.Dashboard.Days)
	assert.Equal(t, 7, *cfg.Dashboard.Days)
	require.NotNil(t, cfg.Dashboard.Refresh)
	assert.Equal(t, "30s", *cfg.Dashboard.Refresh)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nurl ="), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestApplyEnvOverridesFile(t *testing.T) {
	fileURL := "http://file"
	fileTimeout := "5s"
	cfg := FileConfig{API: APIConfig{URL: &fileURL, Timeout: &fileTimeout}}
	env := map[string]string{EnvAPIURL: "http://env"}

	got := applyEnv(cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	assert.Equal(t, "http://env", *got.API.URL)
	assert.Equal(t, "5s", *got.API.Timeout)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")), "missing .env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(EnvAPITimeout+"=2s\n"), 0o644))
	t.Setenv(EnvAPITimeout, "")
	require.NoError(t, os.Unsetenv(EnvAPITimeout))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "2s", os.Getenv(EnvAPITimeout))
}

func TestParseDuration(t *testing.T) {
	_, ok, err := ParseDuration("timeout", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	v := "1m30s"
	d, ok, err := ParseDuration("refresh", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	bad := "soon"
	_, _, err = ParseDuration("refresh", &bad)
	assert.Error(t, err)

	zero := "0s"
	_, _, err = ParseDuration("refresh", &zero)
	assert.Error(t, err)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	assert.Equal(t, filepath.Join("/data", "fxdash", "fxdash.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/conf", "fxdash", "config.toml"), DefaultConfigPath())
}
