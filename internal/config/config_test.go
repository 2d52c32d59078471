package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alarmd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://localhost:9200", cfg.OpenSearch.URL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "redelk-modules", cfg.RunLog.Index)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.DefaultInterval)
	assert.Empty(t, cfg.Alarms)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: text
opensearch:
  url: https://search.internal:9200
  username: redelk
  password: s3cret
redis:
  enabled: true
  url: redis://cache:6379/1
schedule:
  default_interval: 2m
alarms:
  filehash:
    enabled: true
    interval: 10m
    settings:
      index: rtops-*
  useragent:
    enabled: false
enrich:
  tor:
    enabled: true
    interval: 1h
notifications:
  slack:
    enabled: true
    settings:
      webhook_url: https://hooks.slack.example/T000/B000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://search.internal:9200", cfg.OpenSearch.URL)
	assert.Equal(t, "redelk", cfg.OpenSearch.Username)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Schedule.DefaultInterval)

	assert.True(t, cfg.AlarmEnabled("filehash"))
	assert.False(t, cfg.AlarmEnabled("useragent"))
	assert.False(t, cfg.AlarmEnabled("unknown"), "unlisted modules are disabled")

	assert.Equal(t, "rtops-*", cfg.AlarmSetting("filehash", "index", "fallback"))
	assert.Equal(t, "fallback", cfg.AlarmSetting("filehash", "missing", "fallback"))
	assert.Equal(t, "fallback", cfg.AlarmSetting("unknown", "index", "fallback"))

	assert.True(t, cfg.NotificationEnabled("slack"))
	assert.Equal(t, "https://hooks.slack.example/T000/B000",
		cfg.NotificationSetting("slack", "webhook_url", ""))

	intervals := cfg.Intervals()
	assert.Equal(t, 10*time.Minute, intervals["filehash"])
	assert.Equal(t, time.Hour, intervals["tor"])
	_, ok := intervals["useragent"]
	assert.False(t, ok, "modules without explicit interval use the default")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ALARMD_LOG_LEVEL", "debug")
	t.Setenv("ALARMD_OPENSEARCH_URL", "https://env.example:9200")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://env.example:9200", cfg.OpenSearch.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestSettingEmptyValueFallsBack(t *testing.T) {
	m := ModuleConfig{Settings: map[string]string{"url": ""}}
	assert.Equal(t, "def", m.Setting("url", "def"))
}
