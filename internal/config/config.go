// Package config loads the daemon configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var keyReplacer = strings.NewReplacer(".", "_")

// Config holds all configuration for the alarm daemon.
type Config struct {
	Log           LogConfig               `mapstructure:"log"`
	OpenSearch    OpenSearchConfig        `mapstructure:"opensearch"`
	Redis         RedisConfig             `mapstructure:"redis"`
	RunLog        RunLogConfig            `mapstructure:"runlog"`
	Schedule      ScheduleConfig          `mapstructure:"schedule"`
	Alarms        map[string]ModuleConfig `mapstructure:"alarms"`
	Enrich        map[string]ModuleConfig `mapstructure:"enrich"`
	Notifications map[string]ModuleConfig `mapstructure:"notifications"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OpenSearchConfig holds OpenSearch connection settings.
type OpenSearchConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Insecure bool   `mapstructure:"insecure"`
}

// RedisConfig holds Redis settings for module cooldown state.
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

// RunLogConfig holds settings for the module run-log index.
type RunLogConfig struct {
	Index string `mapstructure:"index"`
}

// ScheduleConfig holds scheduling defaults.
type ScheduleConfig struct {
	DefaultInterval time.Duration `mapstructure:"default_interval"`
}

// ModuleConfig holds per-module enablement and settings. A module absent
// from its map is treated as disabled.
type ModuleConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Interval time.Duration     `mapstructure:"interval"`
	Settings map[string]string `mapstructure:"settings"`
}

// Setting returns a module setting, falling back to def when unset.
func (m ModuleConfig) Setting(key, def string) string {
	if v, ok := m.Settings[key]; ok && v != "" {
		return v
	}
	return def
}

// AlarmEnabled reports whether the named alarm module is enabled.
func (c *Config) AlarmEnabled(name string) bool {
	m, ok := c.Alarms[name]
	return ok && m.Enabled
}

// NotificationEnabled reports whether the named connector is enabled.
func (c *Config) NotificationEnabled(name string) bool {
	m, ok := c.Notifications[name]
	return ok && m.Enabled
}

// AlarmSetting returns a setting for the named alarm module.
func (c *Config) AlarmSetting(name, key, def string) string {
	return c.Alarms[name].Setting(key, def)
}

// EnrichSetting returns a setting for the named enrichment module.
func (c *Config) EnrichSetting(name, key, def string) string {
	return c.Enrich[name].Setting(key, def)
}

// NotificationSetting returns a setting for the named connector.
func (c *Config) NotificationSetting(name, key, def string) string {
	return c.Notifications[name].Setting(key, def)
}

// Intervals returns the per-module run intervals declared in the alarm and
// enrichment maps. Modules without an explicit interval use the schedule
// default.
func (c *Config) Intervals() map[string]time.Duration {
	out := make(map[string]time.Duration)
	for name, m := range c.Alarms {
		if m.Interval > 0 {
			out[name] = m.Interval
		}
	}
	for name, m := range c.Enrich {
		if m.Interval > 0 {
			out[name] = m.Interval
		}
	}
	return out
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("opensearch.url", "https://localhost:9200")
	v.SetDefault("opensearch.username", "admin")
	v.SetDefault("opensearch.password", "")
	v.SetDefault("opensearch.insecure", true)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.enabled", false)

	v.SetDefault("runlog.index", "redelk-modules")

	v.SetDefault("schedule.default_interval", "5m")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config.
	v.SetEnvPrefix("ALARMD")
	v.SetEnvKeyReplacer(keyReplacer)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
