// FILE: ziplog/src/cmd/ziplog/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/log"
)

// SignalHandler waits for termination signals. SIGUSR1 requests an
// immediate status report instead.
type SignalHandler struct {
	logger  *log.Logger
	sigChan chan os.Signal
}

// NewSignalHandler registers for the handled signals
func NewSignalHandler(logger *log.Logger) *SignalHandler {
	sh := &SignalHandler{
		logger:  logger,
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(sh.sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGUSR1,
	)

	return sh
}

// Handle blocks until a termination signal arrives or ctx is done, in
// which case it returns nil
func (sh *SignalHandler) Handle(ctx context.Context, report func()) os.Signal {
	for {
		select {
		case sig := <-sh.sigChan:
			if sig == syscall.SIGUSR1 {
				sh.logger.Info("msg", "Status report requested", "signal", sig)
				if report != nil {
					report()
				}
				continue
			}
			return sig
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop unregisters the handler
func (sh *SignalHandler) Stop() {
	signal.Stop(sh.sigChan)
}
