package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.True(t, cfg.Server.TrustForwardedFor)

	require.Equal(t, 2500, cfg.Gate.MaxTextLength)
	require.Equal(t, 30, cfg.Gate.MaxRequests)
	require.Equal(t, 600*time.Second, cfg.Gate.Window)
	require.Equal(t, time.Second, cfg.Gate.MinInterval)
	require.Equal(t, 5, cfg.Gate.DailyFreeLimit)

	require.Equal(t, "gpt-4o-mini", cfg.Generate.Model)
	require.Equal(t, 60*time.Second, cfg.Generate.Timeout)
	require.False(t, cfg.Store.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "lughati.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9001
gate:
  max_requests: 10
  window: 1m
generate:
  model: gpt-4o
store:
  enabled: true
  path: usage.db
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, 10, cfg.Gate.MaxRequests)
	require.Equal(t, time.Minute, cfg.Gate.Window)
	require.Equal(t, "gpt-4o", cfg.Generate.Model)
	require.True(t, cfg.Store.Enabled)
	require.Equal(t, "usage.db", cfg.Store.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LUGHATI_SERVER_PORT", "7070")
	t.Setenv("LUGHATI_GATE_DAILY_FREE_LIMIT", "9")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, 9, cfg.Gate.DailyFreeLimit)
}

func TestLoadPicksUpOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sk-from-env", cfg.Generate.APIKey)
}

func TestValidateRejectsBadGateConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Gate.MaxRequests = 0
	require.Error(t, cfg.Validate())

	cfg, err = Load("")
	require.NoError(t, err)
	cfg.Gate.MinInterval = -time.Second
	require.Error(t, cfg.Validate())

	cfg, err = Load("")
	require.NoError(t, err)
	cfg.Store.Enabled = true
	cfg.Store.Path = " "
	require.Error(t, cfg.Validate())
}
