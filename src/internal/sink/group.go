// FILE: ziplog/src/internal/sink/group.go
package sink

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
	"github.com/zipscene/ziplog/src/internal/format"

	"github.com/lixenwraith/log"
	"go.uber.org/multierr"
)

// GroupConfig describes one subsystem's sink group
type GroupConfig struct {
	Dir       string
	Subsystem string
	Levels    *core.Levels
	MinLevel  string
	// KeepDays holds the resolved retention of every slot for this subsystem
	KeepDays core.KeepDays
	// EntryOverrides lets an entry's own KeepDays take precedence
	EntryOverrides bool
	Now            func() time.Time
}

// Group owns the six rotating writers of one subsystem. Writers are created
// when a slot first receives an entry; a slot with zero retention never gets one.
type Group struct {
	cfg        GroupConfig
	logger     *log.Logger
	formatters map[core.Slot]format.Formatter

	mu      sync.Mutex
	writers map[core.Slot]*RotatingFile

	totalProcessed atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewGroup creates a group; nothing is written to disk yet
func NewGroup(cfg GroupConfig, logger *log.Logger) (*Group, error) {
	if cfg.Levels == nil {
		cfg.Levels = core.DefaultLevels()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	g := &Group{
		cfg:        cfg,
		logger:     logger,
		formatters: make(map[core.Slot]format.Formatter, len(core.Slots)),
		writers:    make(map[core.Slot]*RotatingFile, len(core.Slots)),
	}
	for _, slot := range core.Slots {
		formatter, err := format.New(format.ForSlot(slot), logger)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}
		g.formatters[slot] = formatter
	}
	g.lastProcessed.Store(time.Time{})
	return g, nil
}

// KeepDays returns the effective retention of slot for entry
func (g *Group) KeepDays(slot core.Slot, entry core.Entry) int {
	if g.cfg.EntryOverrides {
		if days, ok := entry.KeepDays.Get(slot); ok {
			return days
		}
	}
	if days, ok := g.cfg.KeepDays.Get(slot); ok {
		return days
	}
	days, _ := core.DefaultKeepDays.Get(slot)
	return days
}

// Accepts reports whether slot takes an entry at level
func (g *Group) Accepts(slot core.Slot, level string) bool {
	if slot.ErrorOnly() {
		return g.cfg.Levels.AtLeast(level, g.cfg.Levels.ErrorLevel())
	}
	return g.cfg.Levels.AtLeast(level, g.cfg.MinLevel)
}

// Write formats the entry once per enabled slot and appends it
func (g *Group) Write(entry core.Entry) error {
	g.totalProcessed.Add(1)
	g.lastProcessed.Store(time.Now())

	var errs error
	for _, slot := range core.Slots {
		keepDays := g.KeepDays(slot, entry)
		if keepDays == 0 || !g.Accepts(slot, entry.Level) {
			continue
		}

		record, err := g.formatters[slot].Format(entry)
		if err != nil {
			g.logger.Error("msg", "Failed to format log entry",
				"component", "sink_group",
				"subsystem", g.cfg.Subsystem,
				"slot", string(slot),
				"error", err)
			continue
		}

		w := g.writer(slot, keepDays)
		if _, err := w.Write(record); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Close closes every writer
func (g *Group) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs error
	for _, w := range g.writers {
		errs = multierr.Append(errs, w.Close())
	}
	return errs
}

// Stats returns group statistics
func (g *Group) Stats() GroupStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	lastProc, _ := g.lastProcessed.Load().(time.Time)
	stats := GroupStats{
		Subsystem:      g.cfg.Subsystem,
		TotalProcessed: g.totalProcessed.Load(),
		LastProcessed:  lastProc,
		Writers:        make(map[string]map[string]any, len(g.writers)),
	}
	for slot, w := range g.writers {
		stats.Writers[string(slot)] = w.Stats()
	}
	return stats
}

func (g *Group) writer(slot core.Slot, keepDays int) *RotatingFile {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, ok := g.writers[slot]
	if !ok {
		w = NewRotatingFile(g.cfg.Dir, slot.FileName(), keepDays, g.cfg.Now, g.logger)
		g.writers[slot] = w
		return w
	}
	w.SetKeepDays(keepDays)
	return w
}
