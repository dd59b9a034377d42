// FILE: ziplog/src/internal/transport/cleanup.go
package transport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/sys/unix"
)

var socketNamePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(core.SocketPrefix) + `([0-9]+)$`)

// CleanStaleSockets removes sockets in dir left behind by processes that no
// longer exist, and any socket carrying self's pid. Sockets of live processes
// are kept. A liveness check failing for any other reason aborts the cleanup.
func CleanStaleSockets(dir string, self int, logger *log.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: read socket directory %s: %w", core.ErrConfiguration, dir, err)
	}

	removed := 0
	for _, entry := range entries {
		match := socketNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		pid, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		if pid != self {
			alive, err := processAlive(pid)
			if err != nil {
				return removed, fmt.Errorf("%w: check process %d: %w", core.ErrConfiguration, pid, err)
			}
			if alive {
				logger.Debug("msg", "Keeping socket of live process",
					"component", "socket_cleanup",
					"pid", pid)
				continue
			}
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("%w: remove stale socket %s: %w", core.ErrConfiguration, path, err)
		}
		removed++
		logger.Info("msg", "Removed stale socket",
			"component", "socket_cleanup",
			"path", path,
			"pid", pid)
	}
	return removed, nil
}

// processAlive checks pid with signal 0. EPERM means the process exists but
// belongs to someone else.
func processAlive(pid int) (bool, error) {
	if pid <= 0 {
		// 0 and negatives address process groups
		return false, nil
	}
	err := unix.Kill(pid, 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, unix.ESRCH):
		return false, nil
	case errors.Is(err, unix.EPERM):
		return true, nil
	default:
		return false, err
	}
}
