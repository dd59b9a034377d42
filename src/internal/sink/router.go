// FILE: ziplog/src/internal/sink/router.go
package sink

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
	"go.uber.org/multierr"
)

// RouterConfig configures the subsystem router
type RouterConfig struct {
	Directory string
	Levels    *core.Levels
	MinLevel  string
	// KeepDays is the global retention per slot
	KeepDays core.KeepDays
	// Subsystems overrides retention per subsystem, slot by slot
	Subsystems map[string]core.KeepDays
	Now        func() time.Time
}

// Router maps subsystems to sink groups, creating each group the first time
// its subsystem is seen. Every entry is also written to the combined group.
type Router struct {
	cfg      RouterConfig
	logger   *log.Logger
	combined *Group

	mu     sync.RWMutex
	groups map[string]*Group
	closed bool

	startTime     time.Time
	totalRouted   atomic.Uint64
	totalFailed   atomic.Uint64
	totalRejected atomic.Uint64
	lastRouted    atomic.Value // time.Time
}

// NewRouter validates the configuration and prepares the combined group
func NewRouter(cfg RouterConfig, logger *log.Logger) (*Router, error) {
	if cfg.Directory == "" {
		return nil, fmt.Errorf("%w: empty log directory", core.ErrConfiguration)
	}
	if cfg.Levels == nil {
		cfg.Levels = core.DefaultLevels()
	}
	if cfg.MinLevel != "" {
		level, err := cfg.Levels.Canonical(cfg.MinLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: minimum level: %w", core.ErrConfiguration, err)
		}
		cfg.MinLevel = level
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	for slot := range cfg.KeepDays {
		if !core.Slot(slot).Valid() {
			return nil, fmt.Errorf("%w: unknown sink slot %q", core.ErrConfiguration, slot)
		}
	}

	r := &Router{
		cfg:       cfg,
		logger:    logger,
		groups:    make(map[string]*Group),
		startTime: time.Now(),
	}
	r.lastRouted.Store(time.Time{})

	combined, err := r.newGroup(core.CombinedSubsystem, false)
	if err != nil {
		return nil, err
	}
	r.combined = combined
	return r, nil
}

// Route writes the entry to its subsystem's group and to the combined group.
// Storage failures are returned wrapped in core.ErrStorage.
func (r *Router) Route(entry core.Entry) error {
	entry.ApplyDefaults(r.cfg.Now())

	level, err := r.cfg.Levels.Canonical(entry.Level)
	if err != nil {
		r.totalRejected.Add(1)
		return err
	}
	entry.Level = level

	group, err := r.group(entry.Subsystem)
	if err != nil {
		r.totalFailed.Add(1)
		return err
	}

	errs := group.Write(entry)
	if group != r.combined {
		errs = multierr.Append(errs, r.combined.Write(entry))
	}

	r.lastRouted.Store(time.Now())
	if errs != nil {
		r.totalFailed.Add(1)
		return errs
	}
	r.totalRouted.Add(1)
	return nil
}

// Submit routes the entry; it lets a Router stand in as the submitter of a
// process that needs no transport.
func (r *Router) Submit(entry core.Entry) error {
	return r.Route(entry)
}

// Close closes every group. Routing after Close fails with core.ErrClosed.
func (r *Router) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	groups := make([]*Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	r.mu.Unlock()

	errs := r.combined.Close()
	for _, g := range groups {
		errs = multierr.Append(errs, g.Close())
	}

	r.logger.Info("msg", "Sink router closed",
		"component", "router",
		"subsystems", len(groups),
		"total_routed", r.totalRouted.Load(),
		"total_failed", r.totalFailed.Load())
	return errs
}

// Subsystems returns the names of the groups created so far, sorted
func (r *Router) Subsystems() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns router statistics
func (r *Router) Stats() RouterStats {
	lastRouted, _ := r.lastRouted.Load().(time.Time)

	r.mu.RLock()
	groups := make(map[string]GroupStats, len(r.groups)+1)
	for name, g := range r.groups {
		groups[name] = g.Stats()
	}
	r.mu.RUnlock()
	groups[core.CombinedSubsystem] = r.combined.Stats()

	return RouterStats{
		StartTime:     r.startTime,
		TotalRouted:   r.totalRouted.Load(),
		TotalFailed:   r.totalFailed.Load(),
		TotalRejected: r.totalRejected.Load(),
		LastRouted:    lastRouted,
		Groups:        groups,
	}
}

func (r *Router) group(subsystem string) (*Group, error) {
	name := SanitizeSubsystem(subsystem)
	if name == core.CombinedSubsystem {
		r.mu.RLock()
		closed := r.closed
		r.mu.RUnlock()
		if closed {
			return nil, fmt.Errorf("%w: router: %w", core.ErrStorage, core.ErrClosed)
		}
		return r.combined, nil
	}

	r.mu.RLock()
	g, ok := r.groups[name]
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("%w: router: %w", core.ErrStorage, core.ErrClosed)
	}
	if ok {
		return g, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, fmt.Errorf("%w: router: %w", core.ErrStorage, core.ErrClosed)
	}
	if g, ok := r.groups[name]; ok {
		return g, nil
	}

	g, err := r.newGroup(name, true)
	if err != nil {
		return nil, err
	}
	r.groups[name] = g

	r.logger.Debug("msg", "Created sink group",
		"component", "router",
		"subsystem", name)
	return g, nil
}

func (r *Router) newGroup(name string, entryOverrides bool) (*Group, error) {
	return NewGroup(GroupConfig{
		Dir:            filepath.Join(r.cfg.Directory, name),
		Subsystem:      name,
		Levels:         r.cfg.Levels,
		MinLevel:       r.cfg.MinLevel,
		KeepDays:       r.resolveKeepDays(name),
		EntryOverrides: entryOverrides,
		Now:            r.cfg.Now,
	}, r.logger)
}

// resolveKeepDays layers subsystem retention over global over built-in defaults
func (r *Router) resolveKeepDays(name string) core.KeepDays {
	resolved := make(core.KeepDays, len(core.Slots))
	for _, slot := range core.Slots {
		days, _ := core.DefaultKeepDays.Get(slot)
		if v, ok := r.cfg.KeepDays.Get(slot); ok {
			days = v
		}
		if v, ok := r.cfg.Subsystems[name].Get(slot); ok {
			days = v
		}
		resolved[string(slot)] = days
	}
	return resolved
}
