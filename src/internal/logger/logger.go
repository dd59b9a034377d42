// FILE: ziplog/src/internal/logger/logger.go
package logger

import (
	"fmt"
	"sync/atomic"

	"github.com/zipscene/ziplog/src/internal/core"
	"github.com/zipscene/ziplog/src/internal/normalize"

	"github.com/lixenwraith/log"
)

// Submitter accepts normalized entries. Implemented by *sink.Router for a
// standalone process, *service.Service in the collecting process and
// *transport.Client everywhere else.
type Submitter interface {
	Submit(entry core.Entry) error
	Close() error
}

// Options configures a producer handle
type Options struct {
	normalize.Options
	// MinLevel drops calls below this level before any normalization work
	MinLevel string
}

// Logger is the producer handle. Derived handles share the normalizer and
// the submitter of the handle they came from.
type Logger struct {
	norm     *normalize.Normalizer
	sub      Submitter
	fixed    core.Entry
	minLevel string
	diag     *log.Logger
}

// New creates a producer handle over sub
func New(sub Submitter, opts Options, diag *log.Logger) (*Logger, error) {
	if sub == nil {
		return nil, fmt.Errorf("%w: nil submitter", core.ErrInvalidArgument)
	}

	if opts.OnAmbiguity == nil {
		opts.OnAmbiguity = func(err error) {
			diag.Debug("msg", "Ignored extra error argument",
				"component", "logger",
				"error", err)
		}
	}
	norm := normalize.New(opts.Options)

	minLevel := ""
	if opts.MinLevel != "" {
		level, err := norm.Levels().Canonical(opts.MinLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: minimum level: %w", core.ErrConfiguration, err)
		}
		minLevel = level
	}

	return &Logger{
		norm:     norm,
		sub:      sub,
		minLevel: minLevel,
		diag:     diag,
	}, nil
}

// Log infers the level from the arguments
func (l *Logger) Log(args ...any) error {
	entry, err := l.norm.Normalize(l.fixed, args...)
	if err != nil {
		return err
	}
	if !l.norm.Levels().AtLeast(entry.Level, l.minLevel) {
		return nil
	}
	return l.sub.Submit(entry)
}

// LogLevel logs at level; level wins over any level found in args
func (l *Logger) LogLevel(level string, args ...any) error {
	canonical, err := l.norm.Levels().Canonical(level)
	if err != nil {
		return err
	}
	if !l.norm.Levels().AtLeast(canonical, l.minLevel) {
		return nil
	}

	fixed := l.fixed
	fixed.Level = canonical
	entry, err := l.norm.Normalize(fixed, args...)
	if err != nil {
		return err
	}
	return l.sub.Submit(entry)
}

func (l *Logger) Silly(args ...any) error   { return l.LogLevel("silly", args...) }
func (l *Logger) Debug(args ...any) error   { return l.LogLevel("debug", args...) }
func (l *Logger) Verbose(args ...any) error { return l.LogLevel("verbose", args...) }
func (l *Logger) Info(args ...any) error    { return l.LogLevel("info", args...) }
func (l *Logger) Warn(args ...any) error    { return l.LogLevel("warn", args...) }
func (l *Logger) Error(args ...any) error   { return l.LogLevel("error", args...) }

// Entry submits a prebuilt entry; the handle's subsystem and retention still apply
func (l *Logger) Entry(entry core.Entry) error {
	return l.Log(entry)
}

// Subsystem returns a handle whose entries are routed to name
func (l *Logger) Subsystem(name string) *Logger {
	derived := *l
	derived.fixed.Subsystem = name
	return &derived
}

// WithKeepDays returns a handle whose entries carry per-slot retention overrides
func (l *Logger) WithKeepDays(keepDays core.KeepDays) *Logger {
	derived := *l
	derived.fixed.KeepDays = keepDays
	return &derived
}

// Close closes the shared submitter
func (l *Logger) Close() error {
	return l.sub.Close()
}

var defaultLogger atomic.Pointer[Logger]

// SetDefault installs the process-wide handle returned by Default
func SetDefault(l *Logger) {
	defaultLogger.Store(l)
}

// Default returns the handle installed by SetDefault, or nil
func Default() *Logger {
	return defaultLogger.Load()
}
