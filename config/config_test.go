package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/log"
	"github.com/kochabx/netservice/transport"
	"github.com/kochabx/netservice/validator"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "netservice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
base_url: https://api.example.com/v2
headers:
  Accept: application/json
  X-Api-Key: secret
cache_policy: cache-else-load
timeout: 3s
`)

	c, err := Load(path, WithLogger(log.Nop()))
	require.NoError(t, err)

	f := c.File()
	assert.Equal(t, "https://api.example.com/v2", f.BaseURL)
	assert.Equal(t, 3*time.Second, f.Timeout)
	assert.Equal(t, transport.ReturnCacheDataElseLoad, f.Policy())

	cfg, err := c.Configuration()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v2", cfg.BaseURL().String())
	assert.Equal(t, 3*time.Second, cfg.DefaultTimeout())
	assert.Equal(t, transport.ReturnCacheDataElseLoad, cfg.DefaultCachePolicy())
	// viper lowercases keys; the service canonicalizes them when merging
	assert.Equal(t, "secret", cfg.DefaultHeaders()["x-api-key"])
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "base_url: https://api.example.com\n")

	c, err := Load(path, WithLogger(log.Nop()))
	require.NoError(t, err)

	f := c.File()
	assert.Equal(t, 15*time.Second, f.Timeout)
	assert.Equal(t, transport.UseProtocolCachePolicy, f.Policy())
	assert.Nil(t, f.Log)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NETSERVICE_TIMEOUT", "250ms")
	t.Setenv("NETSERVICE_BASE_URL", "https://override.example.com")
	path := writeConfig(t, t.TempDir(), "cache_policy: reload\n")

	c, err := Load(path, WithLogger(log.Nop()))
	require.NoError(t, err)

	f := c.File()
	assert.Equal(t, "https://override.example.com", f.BaseURL)
	assert.Equal(t, 250*time.Millisecond, f.Timeout)
	assert.Equal(t, transport.ReloadIgnoringLocalCacheData, f.Policy())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"missing base url", "timeout: 1s\n", "BaseURL"},
		{"bad base url", "base_url: not-a-url\n", "BaseURL"},
		{"unknown cache policy", "base_url: https://api.example.com\ncache_policy: forever\n", "CachePolicy"},
		{"negative timeout", "base_url: https://api.example.com\ntimeout: -1s\n", "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content), WithLogger(log.Nop()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
			assert.True(t, validator.HasFieldError(err, tt.field), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), WithLogger(log.Nop()))
	require.Error(t, err)
	assert.Equal(t, ReasonConfigNotFound, errors.Reason(err))
}

func TestLoadLogSection(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
base_url: https://api.example.com
log:
  filepath: `+filepath.Join(dir, "logs")+`
  filename: client
  rotate_mode: size
`)

	c, err := Load(path, WithLogger(log.Nop()))
	require.NoError(t, err)

	f := c.File()
	require.NotNil(t, f.Log)
	assert.Equal(t, "client", f.Log.Filename)

	logger, err := f.Logger()
	require.NoError(t, err)
	defer logger.Close()
	logger.Info().Msg("configured")
}

func TestWatchAppliesKnobs(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "base_url: https://api.example.com\ntimeout: 1s\n")

	c, err := Load(path, WithLogger(log.Nop()))
	require.NoError(t, err)

	cfg, err := c.Configuration()
	require.NoError(t, err)
	require.NoError(t, c.Watch(cfg))

	writeConfig(t, dir, "base_url: https://api.example.com\ntimeout: 7s\ncache_policy: cache-only\n")

	assert.Eventually(t, func() bool {
		return cfg.DefaultTimeout() == 7*time.Second &&
			cfg.DefaultCachePolicy() == transport.ReturnCacheDataDontLoad
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchKeepsKnobsOnInvalidChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "base_url: https://api.example.com\ntimeout: 2s\n")

	c, err := Load(path, WithLogger(log.Nop()))
	require.NoError(t, err)
	cfg, err := c.Configuration()
	require.NoError(t, err)
	require.NoError(t, c.Watch(cfg))

	writeConfig(t, dir, "base_url: https://api.example.com\ntimeout: 2s\ncache_policy: forever\n")
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, 2*time.Second, cfg.DefaultTimeout())
	assert.Equal(t, transport.UseProtocolCachePolicy, cfg.DefaultCachePolicy())
	assert.Equal(t, transport.UseProtocolCachePolicy, c.File().Policy())
}
