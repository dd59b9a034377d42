// FILE: ziplog/src/internal/sink/file.go
package sink

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
)

// FileState is the lifecycle state of a RotatingFile
type FileState int32

const (
	FileUnopened FileState = iota
	FileOpen
	FileClosed
)

func (s FileState) String() string {
	switch s {
	case FileUnopened:
		return "unopened"
	case FileOpen:
		return "open"
	case FileClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// RotatingFile appends records to one sink file and rotates it once per
// calendar day. The previous day's file is renamed to <name>.<YYYY-MM-DD>
// and rotated files older than the retention are removed in the background.
type RotatingFile struct {
	dir      string
	name     string
	keepDays atomic.Int64
	now      func() time.Time
	logger   *log.Logger

	mu    sync.Mutex
	file  *os.File
	day   string
	state atomic.Int32

	cleanups sync.WaitGroup

	// Statistics
	totalWritten atomic.Uint64
	totalBytes   atomic.Uint64
	rotations    atomic.Uint64
	lastWrite    atomic.Value // time.Time
}

// NewRotatingFile creates a writer for dir/name. Nothing touches the disk until the first write.
func NewRotatingFile(dir, name string, keepDays int, now func() time.Time, logger *log.Logger) *RotatingFile {
	if now == nil {
		now = time.Now
	}
	f := &RotatingFile{
		dir:    dir,
		name:   name,
		now:    now,
		logger: logger,
	}
	f.keepDays.Store(int64(keepDays))
	f.lastWrite.Store(time.Time{})
	return f
}

// Path returns the path of the active file
func (f *RotatingFile) Path() string {
	return filepath.Join(f.dir, f.name)
}

// State returns the lifecycle state
func (f *RotatingFile) State() FileState {
	return FileState(f.state.Load())
}

// SetKeepDays updates the retention applied at the next rotation
func (f *RotatingFile) SetKeepDays(days int) {
	f.keepDays.Store(int64(days))
}

// Write appends p, rotating first when the calendar day changed since the last write
func (f *RotatingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	day := now.Format(core.RotatedDateLayout)

	switch f.State() {
	case FileClosed:
		return 0, fmt.Errorf("%w: %s: %w", core.ErrStorage, f.Path(), core.ErrClosed)
	case FileUnopened:
		if err := f.open(now); err != nil {
			return 0, err
		}
	default:
		if day != f.day {
			if err := f.rotate(now); err != nil {
				return 0, err
			}
		}
	}

	n, err := f.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: write %s: %w", core.ErrStorage, f.Path(), err)
	}

	f.totalWritten.Add(1)
	f.totalBytes.Add(uint64(n))
	f.lastWrite.Store(now)
	return n, nil
}

// Close waits for pending cleanups and closes the file. Closing twice is a no-op.
func (f *RotatingFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.State() == FileClosed {
		return nil
	}
	f.state.Store(int32(FileClosed))
	f.cleanups.Wait()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	if err != nil {
		return fmt.Errorf("%w: close %s: %w", core.ErrStorage, f.Path(), err)
	}
	return nil
}

// Stats returns writer statistics
func (f *RotatingFile) Stats() map[string]any {
	lastWrite, _ := f.lastWrite.Load().(time.Time)
	return map[string]any{
		"path":          f.Path(),
		"state":         f.State().String(),
		"keep_days":     f.keepDays.Load(),
		"total_written": f.totalWritten.Load(),
		"total_bytes":   f.totalBytes.Load(),
		"rotations":     f.rotations.Load(),
		"last_write":    lastWrite,
	}
}

// open creates the directory and file. A file left behind from an earlier
// day is rotated out first so the active file only ever holds one day.
func (f *RotatingFile) open(now time.Time) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %w", core.ErrStorage, f.dir, err)
	}

	today := now.Format(core.RotatedDateLayout)
	if info, err := os.Stat(f.Path()); err == nil {
		staleDay := info.ModTime().In(now.Location()).Format(core.RotatedDateLayout)
		if staleDay != today {
			if err := f.renameRotated(staleDay); err != nil {
				return err
			}
			f.scheduleCleanup(now)
		}
	}

	file, err := os.OpenFile(f.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", core.ErrStorage, f.Path(), err)
	}

	f.file = file
	f.day = today
	f.state.Store(int32(FileOpen))
	return nil
}

func (f *RotatingFile) rotate(now time.Time) error {
	if err := f.file.Close(); err != nil {
		f.logger.Warn("msg", "Failed to close file before rotation",
			"component", "rotating_file",
			"path", f.Path(),
			"error", err)
	}
	f.file = nil

	if err := f.renameRotated(f.day); err != nil {
		return err
	}

	file, err := os.OpenFile(f.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", core.ErrStorage, f.Path(), err)
	}

	f.file = file
	f.day = now.Format(core.RotatedDateLayout)
	f.rotations.Add(1)

	f.logger.Debug("msg", "Rotated sink file",
		"component", "rotating_file",
		"path", f.Path(),
		"day", f.day)

	f.scheduleCleanup(now)
	return nil
}

// renameRotated moves the active file to its dated name. A name already
// taken, e.g. after a clock step back, gets a numeric suffix.
func (f *RotatingFile) renameRotated(day string) error {
	target := f.Path() + "." + day
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = fmt.Sprintf("%s.%s.%d", f.Path(), day, i)
	}

	if err := os.Rename(f.Path(), target); err != nil {
		return fmt.Errorf("%w: rotate %s: %w", core.ErrStorage, f.Path(), err)
	}
	return nil
}

func (f *RotatingFile) scheduleCleanup(now time.Time) {
	keepDays := int(f.keepDays.Load())
	if keepDays <= 0 {
		return
	}

	f.cleanups.Add(1)
	go func() {
		defer f.cleanups.Done()
		removed, err := f.removeExpired(now, keepDays)
		if err != nil {
			f.logger.Warn("msg", "Retention cleanup failed",
				"component", "rotating_file",
				"path", f.Path(),
				"error", err)
			return
		}
		if removed > 0 {
			f.logger.Debug("msg", "Removed expired sink files",
				"component", "rotating_file",
				"path", f.Path(),
				"removed", removed,
				"keep_days", keepDays)
		}
	}()
}

// removeExpired deletes rotated files at least keepDays days old. With a
// retention of one day the file rotated out today is removed right away.
func (f *RotatingFile) removeExpired(now time.Time, keepDays int) (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, err
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	prefix := f.name + "."

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		day, ok := rotatedDay(strings.TrimPrefix(entry.Name(), prefix), loc)
		if !ok {
			continue
		}
		age := int(math.Round(today.Sub(day).Hours() / 24))
		if age < keepDays {
			continue
		}
		if err := os.Remove(filepath.Join(f.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// rotatedDay parses the "<YYYY-MM-DD>" or "<YYYY-MM-DD>.<n>" suffix of a rotated file
func rotatedDay(suffix string, loc *time.Location) (time.Time, bool) {
	if len(suffix) < len(core.RotatedDateLayout) {
		return time.Time{}, false
	}
	rest := suffix[len(core.RotatedDateLayout):]
	if rest != "" && !strings.HasPrefix(rest, ".") {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(core.RotatedDateLayout, suffix[:len(core.RotatedDateLayout)], loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
