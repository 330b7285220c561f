package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Pipeline.Enabled)
	assert.Equal(t, 100, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, 8, cfg.Redirect.MaxHops)
	assert.Equal(t, 10*time.Second, cfg.Redirect.Timeout)
	assert.Equal(t, 6*time.Hour, cfg.Denylist.SyncInterval)
	assert.Equal(t, 5, cfg.Pin.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Pin.BaseLockout)
	assert.Equal(t, 24*time.Hour, cfg.Pin.StaleWindow)
	assert.Equal(t, "", cfg.Intel.BaseURL)
	assert.Equal(t, "linkshield.db", cfg.Storage.Path)
}

func TestLoadWithoutFileKeepsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLFile(t *testing.T) {
	doc := `
denylist:
  sync_url: https://feeds.example.com/denylist.json
  sync_interval: 1h
redirect:
  max_hops: 4
pipeline:
  history_limit: 25
pin:
  base_lockout: 1m
`

	path := filepath.Join(t.TempDir(), "linkshield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://feeds.example.com/denylist.json", cfg.Denylist.SyncURL)
	assert.Equal(t, time.Hour, cfg.Denylist.SyncInterval)
	assert.Equal(t, 4, cfg.Redirect.MaxHops)
	assert.Equal(t, 25, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, time.Minute, cfg.Pin.BaseLockout)

	// Untouched sections keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Redirect.Timeout)
	assert.True(t, cfg.Pipeline.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	doc := "intel:\n  base_url: https://file.example.com\n"

	path := filepath.Join(t.TempDir(), "linkshield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv("LINKSHIELD_INTEL__BASE_URL", "https://env.example.com")
	t.Setenv("LINKSHIELD_INTEL__API_KEY", "sekrit")
	t.Setenv("LINKSHIELD_PIPELINE__LOOKUP_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Intel.BaseURL)
	assert.Equal(t, "sekrit", cfg.Intel.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.LookupTimeout)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: [:::"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
