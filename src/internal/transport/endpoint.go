// FILE: ziplog/src/internal/transport/endpoint.go
package transport

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zipscene/ziplog/src/internal/core"

	"golang.org/x/sys/unix"
)

// maxSocketPath is the usable length of sun_path, leaving room for the terminator
var maxSocketPath = len(unix.RawSockaddrUnix{}.Path) - 1

// ResolveSocketDir returns the rendezvous directory. An explicit dir wins;
// otherwise the nearest ancestor of the executable's directory, then of the
// working directory, that contains the descriptor file is used.
func ResolveSocketDir(dir, descriptor string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	if descriptor == "" {
		descriptor = core.DefaultDescriptorFile
	}

	var starts []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		starts = append(starts, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		starts = append(starts, wd)
	}

	for _, start := range starts {
		if root, ok := FindRoot(start, descriptor); ok {
			return filepath.Join(root, core.SocketSubdir), nil
		}
	}
	return "", fmt.Errorf("%w: no ancestor of %v contains %s", core.ErrConfiguration, starts, descriptor)
}

// FindRoot walks up from start and returns the first directory holding descriptor
func FindRoot(start, descriptor string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, descriptor)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// SocketPath names the socket a server with the given pid binds in dir
func SocketPath(dir string, pid int) string {
	return filepath.Join(dir, core.SocketPrefix+strconv.Itoa(pid))
}

// ClientSocketPath resolves the socket a client connects to. Without an
// explicit endpoint the server is assumed to be the parent process.
func ClientSocketPath(cfg ClientConfig) (string, error) {
	if cfg.Endpoint != "" {
		return cfg.Endpoint, CheckSocketPath(cfg.Endpoint)
	}

	dir, err := ResolveSocketDir(cfg.SocketDir, cfg.DescriptorFile)
	if err != nil {
		return "", err
	}

	pid := cfg.ServerPID
	if pid <= 0 {
		pid = os.Getppid()
	}
	path := SocketPath(dir, pid)
	return path, CheckSocketPath(path)
}

// CheckSocketPath rejects paths the kernel cannot bind or connect to
func CheckSocketPath(path string) error {
	if len(path) > maxSocketPath {
		return fmt.Errorf("%w: socket path %q is %d bytes, limit is %d",
			core.ErrConfiguration, path, len(path), maxSocketPath)
	}
	return nil
}
