// FILE: ziplog/src/internal/core/entry.go
package core

import (
	"time"
)

// Entry is the canonical log record moved between producers, the transport and the sinks
type Entry struct {
	Time      time.Time      `json:"timestamp"`
	App       string         `json:"app,omitempty"`
	Subsystem string         `json:"subsystem,omitempty"`
	Level     string         `json:"level,omitempty"`
	Message   string         `json:"message,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	KeepDays  KeepDays       `json:"keepDays,omitempty"`
}

// Merge overlays every non-zero field of fixed onto e and returns the result.
// Maps are merged key by key with fixed winning.
func (e Entry) Merge(fixed Entry) Entry {
	if !fixed.Time.IsZero() {
		e.Time = fixed.Time
	}
	if fixed.App != "" {
		e.App = fixed.App
	}
	if fixed.Subsystem != "" {
		e.Subsystem = fixed.Subsystem
	}
	if fixed.Level != "" {
		e.Level = fixed.Level
	}
	if fixed.Message != "" {
		e.Message = fixed.Message
	}
	e.Data = overlay(e.Data, fixed.Data)
	e.Details = overlay(e.Details, fixed.Details)
	if len(fixed.KeepDays) > 0 {
		merged := make(KeepDays, len(e.KeepDays)+len(fixed.KeepDays))
		for k, v := range e.KeepDays {
			merged[k] = v
		}
		for k, v := range fixed.KeepDays {
			merged[k] = v
		}
		e.KeepDays = merged
	}
	return e
}

// ApplyDefaults fills the fields every routed entry must carry
func (e *Entry) ApplyDefaults(now time.Time) {
	if e.Subsystem == "" {
		e.Subsystem = DefaultSubsystem
	}
	if e.Level == "" {
		e.Level = DefaultLevel
	}
	if e.Time.IsZero() {
		e.Time = now
	}
}

func overlay(base, top map[string]any) map[string]any {
	if len(top) == 0 {
		return base
	}
	out := make(map[string]any, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}
