// FILE: ziplog/src/internal/core/const.go
package core

const (
	// DefaultSubsystem receives entries that name no subsystem
	DefaultSubsystem = "general"
	// CombinedSubsystem aggregates entries of every subsystem
	CombinedSubsystem = "combined"
	// DefaultLevel is used when neither the caller nor the arguments pick one
	DefaultLevel = "info"
	// DefaultAppName identifies producers that configure no application name
	DefaultAppName = "app"
)

// Transport defaults
const (
	SocketSubdir          = "ziplog-socket"
	SocketPrefix          = "logger-"
	DefaultDescriptorFile = "go.mod"
	DefaultInFlightLimit  = 2
	DefaultQueueSize      = 1000
	MaxLineLength         = 1 * 1024 * 1024  // 1MB max per entry line
	MaxClientBufferSize   = 10 * 1024 * 1024 // 10MB max per connection
)

// RotatedDateLayout is the suffix layout of rotated-out sink files
const RotatedDateLayout = "2006-01-02"
