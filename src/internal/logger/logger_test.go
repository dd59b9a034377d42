// FILE: ziplog/src/internal/logger/logger_test.go
package logger

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
	"github.com/zipscene/ziplog/src/internal/normalize"
	"github.com/zipscene/ziplog/src/internal/sink"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	entries []core.Entry
	closed  int
	err     error
}

func (r *recorder) Submit(entry core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recorder) last(t *testing.T) core.Entry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

var fixedNow = time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger(t *testing.T, sub Submitter, minLevel string) *Logger {
	t.Helper()
	l, err := New(sub, Options{
		Options: normalize.Options{
			AppName: "test-app",
			Now:     func() time.Time { return fixedNow },
		},
		MinLevel: minLevel,
	}, log.NewLogger())
	require.NoError(t, err)
	return l
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{}, log.NewLogger())
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = New(&recorder{}, Options{MinLevel: "loud"}, log.NewLogger())
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestLogger_LevelMethods(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "")

	methods := map[string]func(args ...any) error{
		"silly":   l.Silly,
		"debug":   l.Debug,
		"verbose": l.Verbose,
		"info":    l.Info,
		"warn":    l.Warn,
		"error":   l.Error,
	}
	for level, method := range methods {
		require.NoError(t, method("message at", level))
		entry := rec.last(t)
		assert.Equal(t, level, entry.Level)
		assert.Equal(t, "test-app", entry.App)
		assert.Equal(t, core.DefaultSubsystem, entry.Subsystem)
		assert.Equal(t, fixedNow, entry.Time)
	}
}

func TestLogger_InferredLevel(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "")

	require.NoError(t, l.Log("warn", "Disk low", map[string]any{"freeMB": 12}))
	entry := rec.last(t)
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "Disk low", entry.Message)
	assert.EqualValues(t, 12, entry.Data["freeMB"])

	require.NoError(t, l.Log("no level here"))
	assert.Equal(t, "info", rec.last(t).Level)
}

func TestLogger_FixedLevelWins(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "")

	require.NoError(t, l.Info(map[string]any{"level": "error", "message": "x"}))
	entry := rec.last(t)
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, "x", entry.Message)
}

func TestLogger_MinLevel(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "info")

	require.NoError(t, l.Debug("dropped"))
	require.NoError(t, l.Log("verbose", "dropped too"))
	assert.Zero(t, rec.count())

	require.NoError(t, l.Warn("kept"))
	assert.Equal(t, 1, rec.count())
}

func TestLogger_UnknownLevel(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "")

	err := l.LogLevel("catastrophic", "boom")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Zero(t, rec.count())
}

func TestLogger_SubsystemAndKeepDays(t *testing.T) {
	rec := &recorder{}
	root := newTestLogger(t, rec, "")
	billing := root.Subsystem("billing")
	temp := billing.WithKeepDays(core.KeepDays{"main": 0})

	require.NoError(t, billing.Info("charged"))
	entry := rec.last(t)
	assert.Equal(t, "billing", entry.Subsystem)
	assert.Empty(t, entry.KeepDays)

	require.NoError(t, temp.Info("scratch"))
	entry = rec.last(t)
	assert.Equal(t, "billing", entry.Subsystem)
	assert.Equal(t, core.KeepDays{"main": 0}, entry.KeepDays)

	// logType cannot move an entry out of a fixed subsystem
	require.NoError(t, billing.Info("typed", map[string]any{"logType": "audit"}))
	assert.Equal(t, "billing", rec.last(t).Subsystem)

	require.NoError(t, root.Info("typed", map[string]any{"logType": "audit"}))
	assert.Equal(t, "audit", rec.last(t).Subsystem)
}

func TestLogger_Entry(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "").Subsystem("jobs")

	require.NoError(t, l.Entry(core.Entry{Level: "warn", Message: "prebuilt", Subsystem: "ignored"}))
	entry := rec.last(t)
	assert.Equal(t, "warn", entry.Level)
	assert.Equal(t, "prebuilt", entry.Message)
	assert.Equal(t, "jobs", entry.Subsystem)
}

func TestLogger_SubmitError(t *testing.T) {
	failure := errors.New("queue full")
	l := newTestLogger(t, &recorder{err: failure}, "")
	assert.ErrorIs(t, l.Info("x"), failure)
}

func TestLogger_CloseSharedSubmitter(t *testing.T) {
	rec := &recorder{}
	l := newTestLogger(t, rec, "")
	require.NoError(t, l.Subsystem("a").Close())
	assert.Equal(t, 1, rec.closed)
}

func TestLogger_AmbiguityHook(t *testing.T) {
	rec := &recorder{}
	var ignored []error
	l, err := New(rec, Options{
		Options: normalize.Options{
			OnAmbiguity: func(err error) { ignored = append(ignored, err) },
		},
	}, log.NewLogger())
	require.NoError(t, err)

	require.NoError(t, l.Error(errors.New("first"), errors.New("second")))
	assert.Equal(t, "first", rec.last(t).Message)
	require.Len(t, ignored, 1)
	assert.ErrorIs(t, ignored[0], core.ErrAmbiguousErrors)
}

func TestLogger_StandaloneRouter(t *testing.T) {
	dir := t.TempDir()
	router, err := sink.NewRouter(sink.RouterConfig{Directory: dir}, log.NewLogger())
	require.NoError(t, err)

	l := newTestLogger(t, router, "")
	require.NoError(t, l.Subsystem("web").Error("request failed", map[string]any{"status": 502}))
	require.NoError(t, l.Close())

	assert.FileExists(t, filepath.Join(dir, "web", "main.log"))
	assert.FileExists(t, filepath.Join(dir, "web", "error.log"))
	assert.FileExists(t, filepath.Join(dir, "combined", "error-details.json.log"))
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l := newTestLogger(t, &recorder{}, "")
	SetDefault(l)
	assert.Same(t, l, Default())
}
