// FILE: ziplog/src/cmd/ziplog/output.go
package main

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Manages all user-facing console output respecting quiet mode.
// Operational events go through the logger; this is only for the banner
// and startup failures a user running ziplog by hand needs to see.
type OutputHandler struct {
	quiet  bool
	mu     sync.RWMutex
	stdout io.Writer
	stderr io.Writer
}

// Global output handler instance
var output *OutputHandler

// Initializes the global output handler from the command line quiet flag.
// The configured quiet setting is applied later with SetQuiet.
func InitOutputHandler(quiet bool) {
	output = &OutputHandler{
		quiet:  quiet,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Writes to stdout if not in quiet mode
func (o *OutputHandler) Print(format string, args ...any) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.quiet {
		fmt.Fprintf(o.stdout, format, args...)
	}
}

// Writes to stderr if not in quiet mode
func (o *OutputHandler) Error(format string, args ...any) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if !o.quiet {
		fmt.Fprintf(o.stderr, format, args...)
	}
}

// Updates quiet mode once the full configuration is loaded
func (o *OutputHandler) SetQuiet(quiet bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quiet = quiet
}

// Helper functions for global output handler

// Print is a no-op before InitOutputHandler
func Print(format string, args ...any) {
	if output != nil {
		output.Print(format, args...)
	}
}

// Error falls back to stderr before InitOutputHandler, so early startup
// failures are never swallowed
func Error(format string, args ...any) {
	if output != nil {
		output.Error(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}
