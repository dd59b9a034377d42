// FILE: ziplog/src/internal/transport/server.go
package transport

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
	"golang.org/x/time/rate"
)

// Handler receives every entry read off the socket. Entries of one
// connection are handed over in the order they were written.
type Handler interface {
	Handle(entry core.Entry)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(entry core.Entry)

func (f HandlerFunc) Handle(entry core.Entry) {
	f(entry)
}

// ServerConfig configures the collecting side of the transport
type ServerConfig struct {
	SocketDir      string
	DescriptorFile string
	// PID names the socket; defaults to the current process
	PID       int
	Multicore bool
}

// Server accepts producer connections on a Unix socket and decodes
// newline-delimited JSON entries
type Server struct {
	cfg     ServerConfig
	dir     string
	path    string
	handler Handler
	logger  *log.Logger

	events   *eventServer
	engine   *gnet.Engine
	engineMu sync.Mutex
	wg       sync.WaitGroup
	closed   atomic.Bool

	warnLimiter *rate.Limiter

	// Statistics
	totalEntries   atomic.Uint64
	invalidEntries atomic.Uint64
	totalConns     atomic.Uint64
	activeConns    atomic.Int64
	startTime      time.Time
	lastEntryTime  atomic.Value // time.Time
}

// NewServer resolves the socket location; nothing is bound until Listen
func NewServer(cfg ServerConfig, handler Handler, logger *log.Logger) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: nil handler", core.ErrInvalidArgument)
	}
	dir, err := ResolveSocketDir(cfg.SocketDir, cfg.DescriptorFile)
	if err != nil {
		return nil, err
	}
	if cfg.PID <= 0 {
		cfg.PID = os.Getpid()
	}

	path := SocketPath(dir, cfg.PID)
	if err := CheckSocketPath(path); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		dir:         dir,
		path:        path,
		handler:     handler,
		logger:      logger,
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		startTime:   time.Now(),
	}
	s.lastEntryTime.Store(time.Time{})
	return s, nil
}

// Path returns the socket path the server binds
func (s *Server) Path() string {
	return s.path
}

// Listen cleans stale sockets, binds and returns once the event loop is running
func (s *Server) Listen(ctx context.Context) error {
	if s.closed.Load() {
		return fmt.Errorf("%w: server: %w", core.ErrConnection, core.ErrClosed)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create socket directory %s: %w", core.ErrConfiguration, s.dir, err)
	}
	if _, err := CleanStaleSockets(s.dir, s.cfg.PID, s.logger); err != nil {
		return err
	}

	booted := make(chan struct{})
	s.events = &eventServer{
		server: s,
		booted: booted,
		conns:  make(map[gnet.Conn]*connState),
	}

	// Create a gnet adapter using the existing logger instance
	gnetLogger := compat.NewGnetAdapter(s.logger)

	errChan := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := gnet.Run(s.events, "unix://"+s.path,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(s.cfg.Multicore),
		)
		if err != nil {
			s.logger.Error("msg", "Transport server failed",
				"component", "transport_server",
				"path", s.path,
				"error", err)
		}
		errChan <- err
	}()

	select {
	case <-booted:
		s.logger.Info("msg", "Transport server listening",
			"component", "transport_server",
			"path", s.path)
		return nil
	case err := <-errChan:
		return fmt.Errorf("%w: listen on %s: %v", core.ErrConnection, s.path, err)
	case <-ctx.Done():
		select {
		case <-booted:
			_ = s.Close()
		case <-errChan:
		}
		return fmt.Errorf("%w: listen on %s: %w", core.ErrConnection, s.path, ctx.Err())
	}
}

// Close stops the event loop, closing every connection, and removes the socket.
// Entries already handed to the Handler are unaffected.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.engineMu.Lock()
	engine := s.engine
	s.engineMu.Unlock()

	var stopErr error
	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		stopErr = (*engine).Stop(ctx)
	}

	s.wg.Wait()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("msg", "Failed to remove socket",
			"component", "transport_server",
			"path", s.path,
			"error", err)
	}

	s.logger.Info("msg", "Transport server stopped",
		"component", "transport_server",
		"total_entries", s.totalEntries.Load(),
		"invalid_entries", s.invalidEntries.Load())

	if stopErr != nil {
		return fmt.Errorf("%w: stop transport server: %w", core.ErrConnection, stopErr)
	}
	return nil
}

// Stats returns server statistics
func (s *Server) Stats() map[string]any {
	lastEntry, _ := s.lastEntryTime.Load().(time.Time)
	return map[string]any{
		"path":               s.path,
		"start_time":         s.startTime,
		"total_entries":      s.totalEntries.Load(),
		"invalid_entries":    s.invalidEntries.Load(),
		"total_connections":  s.totalConns.Load(),
		"active_connections": s.activeConns.Load(),
		"last_entry_time":    lastEntry,
	}
}

func (s *Server) handleLine(conn *connState, line []byte) {
	entry, err := DecodeEntry(line)
	if err != nil {
		s.invalidEntries.Add(1)
		conn.invalid++
		if s.warnLimiter.Allow() {
			s.logger.Warn("msg", "Discarding malformed entry",
				"component", "transport_server",
				"conn_id", conn.id,
				"error", err,
				"size", len(line))
		}
		return
	}

	s.totalEntries.Add(1)
	s.lastEntryTime.Store(time.Now())
	conn.entries++
	s.handler.Handle(entry)
}

// connState is the per-connection read buffer
type connState struct {
	id      string
	buffer  bytes.Buffer
	entries uint64
	invalid uint64
	opened  time.Time
}

// eventServer handles gnet events
type eventServer struct {
	gnet.BuiltinEventEngine
	server *Server
	booted chan struct{}
	mu     sync.RWMutex
	conns  map[gnet.Conn]*connState
}

func (e *eventServer) OnBoot(eng gnet.Engine) gnet.Action {
	// Store engine reference for shutdown
	e.server.engineMu.Lock()
	e.server.engine = &eng
	e.server.engineMu.Unlock()

	close(e.booted)
	return gnet.None
}

func (e *eventServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	state := &connState{
		id:     uuid.NewString(),
		opened: time.Now(),
	}

	e.mu.Lock()
	e.conns[c] = state
	e.mu.Unlock()

	e.server.totalConns.Add(1)
	newCount := e.server.activeConns.Add(1)
	e.server.logger.Debug("msg", "Producer connected",
		"component", "transport_server",
		"conn_id", state.id,
		"active_connections", newCount)
	return nil, gnet.None
}

func (e *eventServer) OnClose(c gnet.Conn, err error) gnet.Action {
	e.mu.Lock()
	state, ok := e.conns[c]
	delete(e.conns, c)
	e.mu.Unlock()

	newCount := e.server.activeConns.Add(-1)
	if !ok {
		return gnet.None
	}

	// A trailing fragment means the producer died mid-write
	if state.buffer.Len() > 0 {
		e.server.invalidEntries.Add(1)
	}

	e.server.logger.Debug("msg", "Producer disconnected",
		"component", "transport_server",
		"conn_id", state.id,
		"active_connections", newCount,
		"entries", state.entries,
		"invalid", state.invalid,
		"duration", time.Since(state.opened),
		"error", err)
	return gnet.None
}

func (e *eventServer) OnTraffic(c gnet.Conn) gnet.Action {
	e.mu.RLock()
	state, exists := e.conns[c]
	e.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	// Read all available data
	data, err := c.Next(-1)
	if err != nil {
		e.server.logger.Error("msg", "Error reading from connection",
			"component", "transport_server",
			"conn_id", state.id,
			"error", err)
		return gnet.Close
	}

	if state.buffer.Len()+len(data) > core.MaxClientBufferSize {
		e.server.logger.Warn("msg", "Connection buffer limit exceeded, closing connection",
			"component", "transport_server",
			"conn_id", state.id,
			"buffer_size", state.buffer.Len(),
			"incoming_size", len(data),
			"limit", core.MaxClientBufferSize)
		e.server.invalidEntries.Add(1)
		return gnet.Close
	}
	state.buffer.Write(data)

	// An unterminated line past the limit will never parse
	if state.buffer.Len() > core.MaxLineLength && bytes.IndexByte(state.buffer.Bytes(), '\n') < 0 {
		e.server.logger.Warn("msg", "Line too long without newline",
			"component", "transport_server",
			"conn_id", state.id,
			"buffer_size", state.buffer.Len())
		e.server.invalidEntries.Add(1)
		return gnet.Close
	}

	for {
		idx := bytes.IndexByte(state.buffer.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(state.buffer.Next(idx+1), "\r\n")
		if len(line) == 0 {
			continue
		}
		e.server.handleLine(state, line)
	}

	return gnet.None
}
