// FILE: ziplog/src/internal/format/format.go
package format

import (
	"fmt"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for rendering an Entry into its on-disk text form.
type Formatter interface {
	// Format takes an Entry and returns the rendered record, newline terminated.
	Format(entry core.Entry) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// Formatter names
const (
	NameLine        = "line"
	NameBlock       = "block"
	NameJSON        = "json"
	NameJSONDetails = "json-details"
)

// TimestampLayout is used by the human-readable formatters
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// New creates a new Formatter by name.
func New(name string, logger *log.Logger) (Formatter, error) {
	switch name {
	case NameLine, "":
		return NewLineFormatter(logger), nil
	case NameBlock:
		return NewBlockFormatter(logger), nil
	case NameJSON:
		return NewJSONFormatter(false, logger), nil
	case NameJSONDetails:
		return NewJSONFormatter(true, logger), nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}

// ForSlot returns the formatter name a sink slot is rendered with
func ForSlot(slot core.Slot) string {
	switch slot {
	case core.SlotMain, core.SlotError:
		return NameLine
	case core.SlotErrorDetails:
		return NameBlock
	case core.SlotMainJSON:
		return NameJSON
	default:
		return NameJSONDetails
	}
}
