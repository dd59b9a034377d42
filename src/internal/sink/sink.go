// FILE: ziplog/src/internal/sink/sink.go
package sink

import (
	"strings"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
)

// GroupStats contains statistics about one subsystem's sink group
type GroupStats struct {
	Subsystem      string
	TotalProcessed uint64
	LastProcessed  time.Time
	Writers        map[string]map[string]any
}

// RouterStats contains statistics about the router and all groups
type RouterStats struct {
	StartTime     time.Time
	TotalRouted   uint64
	TotalFailed   uint64
	TotalRejected uint64
	LastRouted    time.Time
	Groups        map[string]GroupStats
}

// SanitizeSubsystem maps a subsystem name onto a single safe directory name
func SanitizeSubsystem(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" {
		return core.DefaultSubsystem
	}
	if strings.Trim(name, ".") == "" {
		return strings.Repeat("_", len(name))
	}
	return name
}
