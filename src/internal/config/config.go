// FILE: ziplog/src/internal/config/config.go
package config

import (
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
)

type Config struct {
	// Top-level flags for application control
	Quiet                 bool `toml:"quiet"`
	DisableStatusReporter bool `toml:"disable_status_reporter"`

	// Runtime behavior flags
	ConfigFile string `toml:"config_file"`

	Logging   *LogConfig      `toml:"logging"`
	Producer  ProducerConfig  `toml:"producer"`
	Transport TransportConfig `toml:"transport"`
	Sink      SinkConfig      `toml:"sink"`
	Status    StatusConfig    `toml:"status"`
}

// ProducerConfig shapes the entries a process emits
type ProducerConfig struct {
	AppName string `toml:"app_name"`

	// Ordered level names, lowest severity first
	Levels []string `toml:"levels"`

	// Calls below this level are dropped before normalization
	MinLevel string `toml:"min_level"`

	SuppressStack  bool   `toml:"suppress_stack"`
	DefaultMessage string `toml:"default_message"`

	// Subsystem used by the send command when a line names none
	Subsystem string `toml:"subsystem"`
}

// TransportConfig holds socket rendezvous and client delivery settings
type TransportConfig struct {
	// Explicit socket path, bypasses directory resolution
	Endpoint string `toml:"endpoint"`

	// Socket directory, bypasses the descriptor file search
	SocketDir string `toml:"socket_dir"`

	// File marking the application root
	DescriptorFile string `toml:"descriptor_file"`

	// Server process id; 0 means the parent process
	ServerPID int64 `toml:"server_pid"`

	InFlightLimit int64 `toml:"in_flight_limit"`

	// Maximum queued entries while disconnected; 0 is unbounded
	MaxPending int64 `toml:"max_pending"`

	DialTimeoutMs       int64   `toml:"dial_timeout_ms"`
	WriteTimeoutMs      int64   `toml:"write_timeout_ms"`
	ReconnectDelayMs    int64   `toml:"reconnect_delay_ms"`
	MaxReconnectDelayMs int64   `toml:"max_reconnect_delay_ms"`
	ReconnectBackoff    float64 `toml:"reconnect_backoff"`

	// Server dispatch queue capacity
	QueueSize int64 `toml:"queue_size"`

	Multicore bool `toml:"multicore"`
}

// SinkConfig describes where and how long entries are stored
type SinkConfig struct {
	Directory string `toml:"directory"`
	MinLevel  string `toml:"min_level"`

	KeepDays KeepDaysConfig `toml:"keep_days"`

	// Per-subsystem retention overrides
	Subsystems []SubsystemConfig `toml:"subsystems"`
}

// KeepDaysConfig is the global retention per sink slot; 0 disables a slot
type KeepDaysConfig struct {
	Main             int64 `toml:"main"`
	Error            int64 `toml:"error"`
	ErrorDetails     int64 `toml:"error_details"`
	MainJSON         int64 `toml:"main_json"`
	ErrorDetailsJSON int64 `toml:"error_details_json"`
	DetailsJSON      int64 `toml:"details_json"`
}

// SubsystemConfig overrides retention for one subsystem. Keys use the same
// names as [sink.keep_days]; slots not listed inherit the global value.
type SubsystemConfig struct {
	Name     string           `toml:"name"`
	KeepDays map[string]int64 `toml:"keep_days"`
}

// StatusConfig controls the status endpoint and periodic status logging
type StatusConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host"`
	Port            int64  `toml:"port"`
	IntervalSeconds int64  `toml:"interval_seconds"`
}

// slotKeys maps config key names onto sink slots
var slotKeys = map[string]core.Slot{
	"main":               core.SlotMain,
	"error":              core.SlotError,
	"error_details":      core.SlotErrorDetails,
	"main_json":          core.SlotMainJSON,
	"error_details_json": core.SlotErrorDetailsJSON,
	"details_json":       core.SlotDetailsJSON,
}

// ToKeepDays converts the global retention to slot form
func (k KeepDaysConfig) ToKeepDays() core.KeepDays {
	return core.KeepDays{
		string(core.SlotMain):             int(k.Main),
		string(core.SlotError):            int(k.Error),
		string(core.SlotErrorDetails):     int(k.ErrorDetails),
		string(core.SlotMainJSON):         int(k.MainJSON),
		string(core.SlotErrorDetailsJSON): int(k.ErrorDetailsJSON),
		string(core.SlotDetailsJSON):      int(k.DetailsJSON),
	}
}

// SubsystemKeepDays converts the subsystem overrides to slot form
func (s SinkConfig) SubsystemKeepDays() map[string]core.KeepDays {
	out := make(map[string]core.KeepDays, len(s.Subsystems))
	for _, sub := range s.Subsystems {
		kd := make(core.KeepDays, len(sub.KeepDays))
		for key, days := range sub.KeepDays {
			if slot, ok := slotKeys[key]; ok {
				kd[string(slot)] = int(days)
			}
		}
		out[sub.Name] = kd
	}
	return out
}

// Durations converts the millisecond settings
func (t TransportConfig) Durations() (dial, write, reconnect, maxReconnect time.Duration) {
	ms := func(v int64) time.Duration { return time.Duration(v) * time.Millisecond }
	return ms(t.DialTimeoutMs), ms(t.WriteTimeoutMs), ms(t.ReconnectDelayMs), ms(t.MaxReconnectDelayMs)
}

func defaults() *Config {
	return &Config{
		Quiet:                 false,
		DisableStatusReporter: false,
		ConfigFile:            "",
		Logging:               DefaultLogConfig(),
		Producer: ProducerConfig{
			AppName:   core.DefaultAppName,
			Levels:    core.DefaultLevelNames,
			Subsystem: core.DefaultSubsystem,
		},
		Transport: TransportConfig{
			DescriptorFile:      core.DefaultDescriptorFile,
			InFlightLimit:       core.DefaultInFlightLimit,
			DialTimeoutMs:       5000,
			WriteTimeoutMs:      10000,
			ReconnectDelayMs:    100,
			MaxReconnectDelayMs: 5000,
			ReconnectBackoff:    1.5,
			QueueSize:           core.DefaultQueueSize,
			Multicore:           true,
		},
		Sink: SinkConfig{
			Directory: "./log",
			KeepDays: KeepDaysConfig{
				Main:             14,
				Error:            30,
				ErrorDetails:     30,
				MainJSON:         14,
				ErrorDetailsJSON: 30,
				DetailsJSON:      7,
			},
		},
		Status: StatusConfig{
			Enabled:         false,
			Host:            "127.0.0.1",
			Port:            31094,
			IntervalSeconds: 30,
		},
	}
}

// Defaults returns a fresh copy of the built-in configuration
func Defaults() *Config {
	return defaults()
}
