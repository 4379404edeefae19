package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
log:
  level: debug
fetch:
  level: campaign
  date_preset: last_7d
  include_dims: true
meta:
  account_ids: ["act_123", "456"]
thresholds:
  min_spend: 100
  roas_scale: 4.0
  cpa_kill: 80
storage:
  enabled: true
  dsn: /tmp/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "campaign", cfg.Fetch.Level)
	assert.True(t, cfg.Fetch.IncludeDims)
	assert.Equal(t, []string{"act_123", "456"}, cfg.Meta.AccountIDs)
	assert.Equal(t, 100.0, cfg.Thresholds.MinSpend)
	assert.Equal(t, 4.0, cfg.Thresholds.RoasScale)
	require.NotNil(t, cfg.Thresholds.CpaKill)
	assert.Equal(t, 80.0, *cfg.Thresholds.CpaKill)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DSN)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "ad", cfg.Fetch.Level)
	assert.Equal(t, "all", cfg.Fetch.Channel)
	assert.Equal(t, "0 * * * *", cfg.Fetch.Schedule)
	assert.Equal(t, 50.0, cfg.Thresholds.MinSpend)
	assert.Equal(t, int64(30), cfg.Thresholds.MinClicks)
	assert.Equal(t, 1.0, cfg.Thresholds.RoasKill)
	assert.Equal(t, 3.0, cfg.Thresholds.RoasScale)
	assert.Nil(t, cfg.Thresholds.CpaKill, "sin CPA breakpoint por default")
	assert.Equal(t, "adscope.db", cfg.Storage.DSN)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("META_ACCESS_TOKEN", "env-token")
	t.Setenv("META_ACCOUNT_IDS", "111, 222 ,")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PORT", "3000")

	path := writeConfig(t, `
log:
  level: debug
meta:
  access_token: yaml-token
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Meta.AccessToken)
	assert.Equal(t, []string{"111", "222"}, cfg.Meta.AccountIDs)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadWithoutFileUsesEnvAndDefaults(t *testing.T) {
	t.Setenv("TIKTOK_ACCESS_TOKEN", "tt")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tt", cfg.TikTok.AccessToken)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
