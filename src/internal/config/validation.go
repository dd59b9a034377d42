// FILE: ziplog/src/internal/config/validation.go
package config

import (
	"fmt"
	"strings"

	"github.com/zipscene/ziplog/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

func (c *Config) validate() error {
	return validateConfig(c)
}

// validateConfig is the centralized validator for the entire configuration
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Logging == nil {
		cfg.Logging = DefaultLogConfig()
	}
	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	levels, err := validateProducer(&cfg.Producer)
	if err != nil {
		return fmt.Errorf("producer config: %w", err)
	}
	if err := validateTransport(&cfg.Transport); err != nil {
		return fmt.Errorf("transport config: %w", err)
	}
	if err := validateSink(&cfg.Sink, levels); err != nil {
		return fmt.Errorf("sink config: %w", err)
	}
	if err := validateStatus(&cfg.Status); err != nil {
		return fmt.Errorf("status config: %w", err)
	}

	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"file": true, "stdout": true, "stderr": true,
		"split": true, "all": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	if cfg.Console != nil {
		validTargets := map[string]bool{
			"stdout": true, "stderr": true, "split": true,
		}
		if !validTargets[cfg.Console.Target] {
			return fmt.Errorf("invalid console target: %s", cfg.Console.Target)
		}

		validFormats := map[string]bool{
			"txt": true, "json": true, "": true,
		}
		if !validFormats[cfg.Console.Format] {
			return fmt.Errorf("invalid console format: %s", cfg.Console.Format)
		}
	}

	if (cfg.Output == "file" || cfg.Output == "all") && cfg.File != nil {
		if err := lconfig.NonEmpty(cfg.File.Directory); err != nil {
			return fmt.Errorf("file directory: %w", err)
		}
		if err := lconfig.NonEmpty(cfg.File.Name); err != nil {
			return fmt.Errorf("file name: %w", err)
		}
	}

	return nil
}

func validateProducer(p *ProducerConfig) (*core.Levels, error) {
	if err := lconfig.NonEmpty(p.AppName); err != nil {
		return nil, fmt.Errorf("app_name: %w", err)
	}

	names := p.Levels
	if len(names) == 0 {
		names = core.DefaultLevelNames
	}
	levels, err := core.NewLevels(names...)
	if err != nil {
		return nil, fmt.Errorf("levels: %w", err)
	}
	p.Levels = levels.Names()

	if p.MinLevel != "" {
		if p.MinLevel, err = levels.Canonical(p.MinLevel); err != nil {
			return nil, fmt.Errorf("min_level: %w", err)
		}
	}
	return levels, nil
}

func validateTransport(t *TransportConfig) error {
	if t.Endpoint != "" && !strings.HasPrefix(t.Endpoint, "/") && !strings.HasPrefix(t.Endpoint, ".") {
		return fmt.Errorf("endpoint must be a socket path: %s", t.Endpoint)
	}
	if t.ServerPID < 0 {
		return fmt.Errorf("server_pid must not be negative: %d", t.ServerPID)
	}
	if t.InFlightLimit < 1 {
		return fmt.Errorf("in_flight_limit must be positive: %d", t.InFlightLimit)
	}
	if t.MaxPending < 0 {
		return fmt.Errorf("max_pending must not be negative: %d", t.MaxPending)
	}
	if t.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive: %d", t.QueueSize)
	}
	if t.DialTimeoutMs < 1 || t.WriteTimeoutMs < 1 {
		return fmt.Errorf("timeouts must be positive: dial=%dms write=%dms", t.DialTimeoutMs, t.WriteTimeoutMs)
	}
	if t.ReconnectDelayMs < 1 {
		return fmt.Errorf("reconnect_delay_ms must be positive: %d", t.ReconnectDelayMs)
	}
	if t.MaxReconnectDelayMs < t.ReconnectDelayMs {
		return fmt.Errorf("max_reconnect_delay_ms (%d) below reconnect_delay_ms (%d)",
			t.MaxReconnectDelayMs, t.ReconnectDelayMs)
	}
	if t.ReconnectBackoff < 1.0 {
		return fmt.Errorf("reconnect_backoff must be at least 1.0: %.2f", t.ReconnectBackoff)
	}
	return nil
}

func validateSink(s *SinkConfig, levels *core.Levels) error {
	if err := lconfig.NonEmpty(s.Directory); err != nil {
		return fmt.Errorf("directory: %w", err)
	}

	if s.MinLevel != "" {
		level, err := levels.Canonical(s.MinLevel)
		if err != nil {
			return fmt.Errorf("min_level: %w", err)
		}
		s.MinLevel = level
	}

	for key, days := range s.KeepDays.ToKeepDays() {
		if days < 0 {
			return fmt.Errorf("keep_days.%s must not be negative: %d", key, days)
		}
	}

	seen := make(map[string]bool, len(s.Subsystems))
	for i, sub := range s.Subsystems {
		if err := lconfig.NonEmpty(sub.Name); err != nil {
			return fmt.Errorf("subsystem[%d] name: %w", i, err)
		}
		if seen[sub.Name] {
			return fmt.Errorf("subsystem[%d]: duplicate name %q", i, sub.Name)
		}
		seen[sub.Name] = true

		for key, days := range sub.KeepDays {
			if _, ok := slotKeys[key]; !ok {
				return fmt.Errorf("subsystem %q: unknown keep_days slot %q", sub.Name, key)
			}
			if days < 0 {
				return fmt.Errorf("subsystem %q: keep_days.%s must not be negative: %d", sub.Name, key, days)
			}
		}
	}
	return nil
}

func validateStatus(s *StatusConfig) error {
	if s.IntervalSeconds < 0 {
		return fmt.Errorf("interval_seconds must not be negative: %d", s.IntervalSeconds)
	}
	if !s.Enabled {
		return nil
	}
	if err := lconfig.Port(s.Port); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	if s.Host != "" && s.Host != "0.0.0.0" {
		if err := lconfig.IPAddress(s.Host); err != nil {
			return fmt.Errorf("host: %w", err)
		}
	}
	return nil
}
