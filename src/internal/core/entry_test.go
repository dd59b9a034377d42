// FILE: ziplog/src/internal/core/entry_test.go
package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Merge(t *testing.T) {
	base := Entry{
		Level:     "error",
		Message:   "x",
		Subsystem: "db",
		Data:      map[string]any{"a": 1, "b": 2},
		KeepDays:  KeepDays{"main": 3},
	}
	fixed := Entry{
		Level:    "info",
		Data:     map[string]any{"b": 20},
		KeepDays: KeepDays{"error": 0},
	}

	merged := base.Merge(fixed)
	assert.Equal(t, "info", merged.Level)
	assert.Equal(t, "x", merged.Message)
	assert.Equal(t, "db", merged.Subsystem)
	assert.Equal(t, map[string]any{"a": 1, "b": 20}, merged.Data)
	assert.Equal(t, KeepDays{"main": 3, "error": 0}, merged.KeepDays)

	// The receiver is not mutated
	assert.Equal(t, 2, base.Data["b"])
}

func TestEntry_ApplyDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var e Entry
	e.ApplyDefaults(now)
	assert.Equal(t, DefaultSubsystem, e.Subsystem)
	assert.Equal(t, DefaultLevel, e.Level)
	assert.Equal(t, now, e.Time)
}

func TestSlot(t *testing.T) {
	assert.Equal(t, "error-details.json.log", SlotErrorDetailsJSON.FileName())
	assert.True(t, SlotErrorDetails.ErrorOnly())
	assert.False(t, SlotDetailsJSON.ErrorOnly())
	assert.True(t, Slot("mainJson").Valid())
	assert.False(t, Slot("nope").Valid())

	days, ok := KeepDays{"main": 0}.Get(SlotMain)
	assert.True(t, ok)
	assert.Zero(t, days)
	_, ok = KeepDays(nil).Get(SlotMain)
	assert.False(t, ok)
}
