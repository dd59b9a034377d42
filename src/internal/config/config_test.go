// FILE: ziplog/src/internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaults()
	require.NoError(t, cfg.validate())

	assert.Equal(t, core.DefaultKeepDays, cfg.Sink.KeepDays.ToKeepDays())
	assert.Equal(t, core.DefaultLevelNames, cfg.Producer.Levels)
	assert.Equal(t, int64(core.DefaultInFlightLimit), cfg.Transport.InFlightLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad log output", func(c *Config) { c.Logging.Output = "syslog" }, "invalid log output mode"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "invalid log level"},
		{"empty app name", func(c *Config) { c.Producer.AppName = "" }, "app_name"},
		{"duplicate levels", func(c *Config) { c.Producer.Levels = []string{"info", "INFO"} }, "levels"},
		{"unknown producer min level", func(c *Config) { c.Producer.MinLevel = "loud" }, "min_level"},
		{"zero in-flight", func(c *Config) { c.Transport.InFlightLimit = 0 }, "in_flight_limit"},
		{"negative pending", func(c *Config) { c.Transport.MaxPending = -1 }, "max_pending"},
		{"backoff below one", func(c *Config) { c.Transport.ReconnectBackoff = 0.5 }, "reconnect_backoff"},
		{"max delay below delay", func(c *Config) { c.Transport.MaxReconnectDelayMs = 10 }, "max_reconnect_delay_ms"},
		{"relative endpoint", func(c *Config) { c.Transport.Endpoint = "localhost:9000" }, "endpoint"},
		{"empty sink dir", func(c *Config) { c.Sink.Directory = "" }, "directory"},
		{"unknown sink min level", func(c *Config) { c.Sink.MinLevel = "loud" }, "min_level"},
		{"negative retention", func(c *Config) { c.Sink.KeepDays.Main = -1 }, "keep_days.main"},
		{"unnamed subsystem", func(c *Config) {
			c.Sink.Subsystems = []SubsystemConfig{{KeepDays: map[string]int64{"main": 1}}}
		}, "name"},
		{"duplicate subsystem", func(c *Config) {
			c.Sink.Subsystems = []SubsystemConfig{{Name: "a"}, {Name: "a"}}
		}, "duplicate"},
		{"unknown slot", func(c *Config) {
			c.Sink.Subsystems = []SubsystemConfig{{Name: "a", KeepDays: map[string]int64{"everything": 1}}}
		}, "unknown keep_days slot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Canonicalizes(t *testing.T) {
	cfg := defaults()
	cfg.Producer.Levels = []string{"Trace", "Info", "Error"}
	cfg.Producer.MinLevel = "INFO"
	cfg.Sink.MinLevel = "Trace"
	require.NoError(t, cfg.validate())

	assert.Equal(t, []string{"trace", "info", "error"}, cfg.Producer.Levels)
	assert.Equal(t, "info", cfg.Producer.MinLevel)
	assert.Equal(t, "trace", cfg.Sink.MinLevel)
}

func TestValidate_StatusOnlyWhenEnabled(t *testing.T) {
	cfg := defaults()
	cfg.Status.Host = "not-an-ip"
	require.NoError(t, cfg.validate())

	cfg.Status.Enabled = true
	assert.Error(t, cfg.validate())
}

func TestSubsystemKeepDays(t *testing.T) {
	sink := SinkConfig{
		Subsystems: []SubsystemConfig{
			{Name: "audit", KeepDays: map[string]int64{"details_json": 90, "main": 0}},
			{Name: "web"},
		},
	}

	got := sink.SubsystemKeepDays()
	assert.Equal(t, core.KeepDays{"detailsJson": 90, "main": 0}, got["audit"])
	assert.Empty(t, got["web"])
}

func TestTransportDurations(t *testing.T) {
	dial, write, reconnect, maxReconnect := defaults().Transport.Durations()
	assert.Equal(t, 5*time.Second, dial)
	assert.Equal(t, 10*time.Second, write)
	assert.Equal(t, 100*time.Millisecond, reconnect)
	assert.Equal(t, 5*time.Second, maxReconnect)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("ZIPLOG_CONFIG_FILE", "/etc/ziplog/custom.toml")
	assert.Equal(t, "/etc/ziplog/custom.toml", GetConfigPath())

	t.Setenv("ZIPLOG_CONFIG_FILE", "custom.toml")
	t.Setenv("ZIPLOG_CONFIG_DIR", "/opt/conf")
	assert.Equal(t, "/opt/conf/custom.toml", GetConfigPath())

	t.Setenv("ZIPLOG_CONFIG_FILE", "")
	assert.Equal(t, "/opt/conf/ziplog.toml", GetConfigPath())
}

func TestLoadWithCLI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ziplog.toml")
	content := `
[producer]
app_name = "billing-service"

[sink]
directory = "/var/log/billing"

[sink.keep_days]
main = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ZIPLOG_CONFIG_FILE", path)
	t.Setenv("ZIPLOG_SINK_MIN_LEVEL", "warn")

	cfg, err := LoadWithCLI(nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "billing-service", cfg.Producer.AppName)
	assert.Equal(t, "/var/log/billing", cfg.Sink.Directory)
	assert.Equal(t, "warn", cfg.Sink.MinLevel)
	assert.Equal(t, int64(3), cfg.Sink.KeepDays.Main)
	assert.Equal(t, int64(30), cfg.Sink.KeepDays.Error, "unset keys keep their default")
}

func TestLoadWithCLI_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ZIPLOG_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	cfg, err := LoadWithCLI(nil)
	require.NoError(t, err)
	assert.Equal(t, "./log", cfg.Sink.Directory)
	assert.Equal(t, core.DefaultAppName, cfg.Producer.AppName)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := defaults()
	cfg.Sink.Directory = "/srv/logs"

	require.NoError(t, cfg.SaveToFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/srv/logs")

	assert.Error(t, cfg.SaveToFile(""))
}

func TestSaveToFile_CreatesDirectoryAndDropsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.toml")
	cfg := defaults()
	cfg.ConfigFile = "/etc/ziplog/previous.toml"

	require.NoError(t, cfg.SaveToFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "previous.toml")
	assert.Equal(t, "/etc/ziplog/previous.toml", cfg.ConfigFile)
}

func TestSaveToFile_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := defaults()
	cfg.Transport.InFlightLimit = 0

	assert.Error(t, cfg.SaveToFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
