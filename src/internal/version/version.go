// FILE: ziplog/src/internal/version/version.go
package version

import (
	"fmt"
	"runtime"
)

var (
	// Set at compile time via -ldflags "-X github.com/zipscene/ziplog/src/internal/version.Version=..."
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns the full version line
func String() string {
	return fmt.Sprintf("ziplog %s (commit: %s, built: %s, %s %s/%s)",
		Version, GitCommit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version tag
func Short() string {
	return Version
}

// Info returns the build metadata as fields
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"go_version": runtime.Version(),
	}
}
