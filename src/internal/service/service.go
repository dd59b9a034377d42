// FILE: ziplog/src/internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
	"github.com/zipscene/ziplog/src/internal/sink"
	"github.com/zipscene/ziplog/src/internal/transport"

	"github.com/lixenwraith/log"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"
)

// Config wires the collecting process
type Config struct {
	Router    sink.RouterConfig
	Transport transport.ServerConfig
	QueueSize int
	Status    StatusConfig
}

// Service is the collecting process: it accepts entries from producer
// processes over the transport and from local producers through Submit, and
// routes all of them to the sinks from a single dispatch goroutine.
type Service struct {
	router *sink.Router
	server *transport.Server
	status *StatusServer
	logger *log.Logger

	queue   chan core.Entry
	mu      sync.RWMutex
	closing bool
	started bool
	wg      sync.WaitGroup

	fatal     chan error
	fatalOnce sync.Once
	closeOnce sync.Once
	closeErr  error

	warnLimiter *rate.Limiter

	// Statistics
	startTime       time.Time
	totalQueued     atomic.Uint64
	totalDispatched atomic.Uint64
	totalFailed     atomic.Uint64
	totalDropped    atomic.Uint64
}

// New creates the router and the transport server; nothing runs until Start
func New(cfg Config, logger *log.Logger) (*Service, error) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = core.DefaultQueueSize
	}

	router, err := sink.NewRouter(cfg.Router, logger)
	if err != nil {
		return nil, err
	}

	s := &Service{
		router:      router,
		logger:      logger,
		queue:       make(chan core.Entry, cfg.QueueSize),
		fatal:       make(chan error, 1),
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		startTime:   time.Now(),
	}

	server, err := transport.NewServer(cfg.Transport, s, logger)
	if err != nil {
		_ = router.Close()
		return nil, err
	}
	s.server = server

	if cfg.Status.Enabled {
		s.status = NewStatusServer(cfg.Status, s.Stats, logger)
	}
	return s, nil
}

// Start begins dispatching and listening. On failure everything started so far is stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closing || s.started {
		s.mu.Unlock()
		return fmt.Errorf("service already started or closed")
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.dispatch()

	if err := s.server.Listen(ctx); err != nil {
		_ = s.Close()
		return err
	}

	if s.status != nil {
		if err := s.status.Start(); err != nil {
			_ = s.Close()
			return err
		}
	}

	s.logger.Info("msg", "Service started",
		"component", "service",
		"socket", s.server.Path(),
		"queue_size", cap(s.queue))
	return nil
}

// Handle receives entries from the transport server
func (s *Service) Handle(entry core.Entry) {
	if err := s.enqueue(entry); err != nil {
		s.totalDropped.Add(1)
		s.logger.Debug("msg", "Dropped entry received during shutdown",
			"component", "service",
			"error", err)
	}
}

// Submit accepts an entry from a producer living in this process
func (s *Service) Submit(entry core.Entry) error {
	return s.enqueue(entry)
}

func (s *Service) enqueue(entry core.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closing {
		return fmt.Errorf("%w: service", core.ErrClosed)
	}
	s.queue <- entry
	s.totalQueued.Add(1)
	return nil
}

// Fatal delivers the first storage error; the process should stop when it fires
func (s *Service) Fatal() <-chan error {
	return s.fatal
}

// Path returns the socket path producers connect to
func (s *Service) Path() string {
	return s.server.Path()
}

// Router returns the sink router
func (s *Service) Router() *sink.Router {
	return s.router
}

// Close stops the transport server, drains queued entries into the sinks and
// closes them. New entries are rejected once closing has started.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("msg", "Service shutdown initiated", "component", "service")

		var errs error
		if s.status != nil {
			errs = multierr.Append(errs, s.status.Stop())
		}

		// Producers first, so nothing new arrives while draining
		errs = multierr.Append(errs, s.server.Close())

		s.mu.Lock()
		s.closing = true
		close(s.queue)
		s.mu.Unlock()

		s.wg.Wait()

		// Without a running dispatcher the queue was never drained
		if !s.started {
			for entry := range s.queue {
				s.route(entry)
			}
		}

		errs = multierr.Append(errs, s.router.Close())
		s.closeErr = errs

		s.logger.Info("msg", "Service shutdown complete",
			"component", "service",
			"total_dispatched", s.totalDispatched.Load(),
			"total_failed", s.totalFailed.Load())
	})
	return s.closeErr
}

// Stats returns statistics for the service and its parts
func (s *Service) Stats() map[string]any {
	return map[string]any{
		"start_time":       s.startTime,
		"uptime_seconds":   int64(time.Since(s.startTime).Seconds()),
		"queue_length":     len(s.queue),
		"queue_capacity":   cap(s.queue),
		"total_queued":     s.totalQueued.Load(),
		"total_dispatched": s.totalDispatched.Load(),
		"total_failed":     s.totalFailed.Load(),
		"total_dropped":    s.totalDropped.Load(),
		"subsystems":       s.router.Subsystems(),
		"transport":        s.server.Stats(),
		"router":           s.router.Stats(),
	}
}

func (s *Service) dispatch() {
	defer s.wg.Done()

	for entry := range s.queue {
		s.route(entry)
	}
}

func (s *Service) route(entry core.Entry) {
	err := s.router.Route(entry)
	if err == nil {
		s.totalDispatched.Add(1)
		return
	}

	s.totalFailed.Add(1)
	if errors.Is(err, core.ErrStorage) {
		s.fatalOnce.Do(func() {
			s.logger.Error("msg", "Sink storage failed",
				"component", "service",
				"subsystem", entry.Subsystem,
				"error", err)
			s.fatal <- err
		})
		return
	}

	if s.warnLimiter.Allow() {
		s.logger.Warn("msg", "Entry rejected",
			"component", "service",
			"subsystem", entry.Subsystem,
			"level", entry.Level,
			"error", err)
	}
}
