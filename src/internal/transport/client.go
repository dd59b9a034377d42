// FILE: ziplog/src/internal/transport/client.go
package transport

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
)

// State is the connection state of a Client
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientConfig holds transport client configuration
type ClientConfig struct {
	// Endpoint is an explicit socket path; it bypasses directory resolution
	Endpoint       string
	SocketDir      string
	DescriptorFile string
	// ServerPID selects the server socket; defaults to the parent process
	ServerPID int

	// InFlightLimit caps the entries written per batch
	InFlightLimit int
	// MaxPending bounds the queue; 0 means unbounded
	MaxPending int

	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// Reconnection settings
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	ReconnectBackoff  float64
}

// DefaultClientConfig returns the client defaults
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		InFlightLimit:     core.DefaultInFlightLimit,
		DialTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReconnectDelay:    100 * time.Millisecond,
		MaxReconnectDelay: 5 * time.Second,
		ReconnectBackoff:  1.5,
	}
}

// Client ships entries to the collecting process. A single goroutine owns the
// connection; Send only appends to the queue, so producers never wait on the
// network. Entries queued while disconnected are delivered in order once the
// connection is back.
type Client struct {
	cfg     ClientConfig
	path    string
	session string
	logger  *log.Logger

	mu      sync.Mutex
	pending [][]byte
	closing bool
	lastErr error

	notify    chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	connected chan struct{}
	startOnce sync.Once
	connOnce  sync.Once
	closeOnce sync.Once
	started   atomic.Bool
	state     atomic.Int32

	// Statistics
	totalQueued     atomic.Uint64
	totalSent       atomic.Uint64
	totalDropped    atomic.Uint64
	totalRequeued   atomic.Uint64
	totalReconnects atomic.Uint64
	startTime       time.Time
	connectTime     atomic.Value // time.Time
}

// NewClient resolves the endpoint. No connection is attempted until Connect or
// the first Send.
func NewClient(cfg ClientConfig, logger *log.Logger) (*Client, error) {
	defaults := DefaultClientConfig()
	if cfg.InFlightLimit <= 0 {
		cfg.InFlightLimit = defaults.InFlightLimit
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaults.DialTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaults.ReconnectDelay
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = max(defaults.MaxReconnectDelay, cfg.ReconnectDelay)
	}
	if cfg.ReconnectBackoff < 1.0 {
		cfg.ReconnectBackoff = defaults.ReconnectBackoff
	}
	if cfg.MaxPending < 0 {
		return nil, fmt.Errorf("%w: negative max pending %d", core.ErrConfiguration, cfg.MaxPending)
	}

	path, err := ClientSocketPath(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		path:      path,
		session:   uuid.NewString(),
		logger:    logger,
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		connected: make(chan struct{}),
		startTime: time.Now(),
	}
	c.connectTime.Store(time.Time{})
	return c, nil
}

// Path returns the socket path the client connects to
func (c *Client) Path() string {
	return c.path
}

// State returns the current connection state
func (c *Client) State() State {
	return State(c.state.Load())
}

// Connect starts the client and waits until it is connected for the first
// time. When ctx ends first, the last dial error is returned as ErrConnection;
// the client keeps retrying in the background.
func (c *Client) Connect(ctx context.Context) error {
	c.start()

	select {
	case <-c.connected:
		return nil
	case <-c.done:
		return fmt.Errorf("%w: %s: %w", core.ErrConnection, c.path, core.ErrClosed)
	case <-ctx.Done():
		c.mu.Lock()
		lastErr := c.lastErr
		c.mu.Unlock()
		if lastErr == nil {
			lastErr = ctx.Err()
		}
		return fmt.Errorf("%w: %s: %w", core.ErrConnection, c.path, lastErr)
	}
}

// Send queues an entry for delivery. It never blocks on the network.
func (c *Client) Send(entry core.Entry) error {
	line, err := EncodeEntry(entry)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return fmt.Errorf("%w: transport client", core.ErrClosed)
	}
	if c.cfg.MaxPending > 0 && len(c.pending) >= c.cfg.MaxPending {
		c.mu.Unlock()
		c.totalDropped.Add(1)
		return fmt.Errorf("%w: pending queue full (%d entries)", core.ErrConnection, c.cfg.MaxPending)
	}
	c.pending = append(c.pending, line)
	c.mu.Unlock()

	c.totalQueued.Add(1)
	c.signal()
	c.start()
	return nil
}

// Submit queues an entry; it makes the client a producer submitter
func (c *Client) Submit(entry core.Entry) error {
	return c.Send(entry)
}

// Close stops accepting entries and, while connected, delivers what is queued
// before disconnecting. Entries that could not be delivered are reported as
// an ErrConnection. Closing twice is a no-op.
func (c *Client) Close() error {
	var undelivered int
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closing = true
		started := c.started.Load()
		c.mu.Unlock()
		close(c.done)

		if started {
			<-c.stopped
		}
		c.state.Store(int32(StateClosed))

		c.mu.Lock()
		undelivered = len(c.pending)
		c.pending = nil
		c.mu.Unlock()
		c.totalDropped.Add(uint64(undelivered))

		c.logger.Info("msg", "Transport client closed",
			"component", "transport_client",
			"session", c.session,
			"total_sent", c.totalSent.Load(),
			"total_dropped", c.totalDropped.Load(),
			"undelivered", undelivered)
	})

	if undelivered > 0 {
		return fmt.Errorf("%w: %d entries not delivered to %s", core.ErrConnection, undelivered, c.path)
	}
	return nil
}

// Pending returns the number of queued entries
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stats returns client statistics
func (c *Client) Stats() map[string]any {
	connectTime, _ := c.connectTime.Load().(time.Time)

	c.mu.Lock()
	pending := len(c.pending)
	lastErr := ""
	if c.lastErr != nil {
		lastErr = c.lastErr.Error()
	}
	c.mu.Unlock()

	return map[string]any{
		"path":             c.path,
		"session":          c.session,
		"state":            c.State().String(),
		"start_time":       c.startTime,
		"connect_time":     connectTime,
		"pending":          pending,
		"total_queued":     c.totalQueued.Load(),
		"total_sent":       c.totalSent.Load(),
		"total_dropped":    c.totalDropped.Load(),
		"total_requeued":   c.totalRequeued.Load(),
		"total_reconnects": c.totalReconnects.Load(),
		"last_error":       lastErr,
	}
}

func (c *Client) start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closing {
			return
		}
		c.started.Store(true)
		go c.run()
	})
}

func (c *Client) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// run owns the connection: dial with backoff, drain the queue, repeat
func (c *Client) run() {
	defer close(c.stopped)

	delay := c.cfg.ReconnectDelay
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.state.Store(int32(StateConnecting))
		conn, err := c.dial()
		if err != nil {
			c.mu.Lock()
			c.lastErr = err
			c.mu.Unlock()
			c.state.Store(int32(StateDisconnected))

			c.logger.Debug("msg", "Failed to connect to transport server",
				"component", "transport_client",
				"session", c.session,
				"path", c.path,
				"error", err,
				"retry_delay", delay)

			if !c.backoff(&delay) {
				return
			}
			continue
		}

		c.mu.Lock()
		c.lastErr = nil
		c.mu.Unlock()
		c.connectTime.Store(time.Now())
		c.totalReconnects.Add(1)
		c.state.Store(int32(StateConnected))
		c.connOnce.Do(func() { close(c.connected) })

		c.logger.Debug("msg", "Connected to transport server",
			"component", "transport_client",
			"session", c.session,
			"path", c.path,
			"pending", c.Pending())

		lost, wrote := c.serve(conn)
		_ = conn.Close()
		if !lost {
			return
		}

		c.state.Store(int32(StateDisconnected))
		connectTime, _ := c.connectTime.Load().(time.Time)
		c.logger.Warn("msg", "Lost connection to transport server",
			"component", "transport_client",
			"session", c.session,
			"path", c.path,
			"uptime", time.Since(connectTime),
			"pending", c.Pending())

		// Only a connection that carried entries resets the backoff, so a
		// peer dropping every connection right away is not redialed in a loop
		if wrote {
			delay = c.cfg.ReconnectDelay
			continue
		}
		if !c.backoff(&delay) {
			return
		}
	}
}

// backoff waits out delay and grows it for the next attempt. It reports
// false when the client was closed while waiting.
func (c *Client) backoff(delay *time.Duration) bool {
	select {
	case <-c.done:
		return false
	case <-time.After(*delay):
	}

	*delay = time.Duration(float64(*delay) * c.cfg.ReconnectBackoff)
	if *delay > c.cfg.MaxReconnectDelay {
		*delay = c.cfg.MaxReconnectDelay
	}
	return true
}

func (c *Client) dial() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.cfg.DialTimeout}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return dialer.DialContext(ctx, "unix", c.path)
}

// serve drains the queue onto conn. lost is true when the connection went
// away and false once the client is closing and the queue is empty. wrote
// reports whether at least one batch was written on conn.
func (c *Client) serve(conn net.Conn) (lost, wrote bool) {
	gone := make(chan struct{})
	go watch(conn, gone)

	for {
		batch, closing := c.take()
		if len(batch) == 0 {
			if closing {
				return false, wrote
			}
			select {
			case <-c.notify:
			case <-c.done:
			case <-gone:
				return true, wrote
			}
			continue
		}

		if err := c.write(conn, batch); err != nil {
			c.requeue(batch)
			c.mu.Lock()
			c.lastErr = err
			c.mu.Unlock()
			return true, wrote
		}
		wrote = true
		c.totalSent.Add(uint64(len(batch)))
	}
}

// watch reads until the connection fails. The server never writes, so any
// return from Read means the peer went away.
func watch(conn net.Conn, lost chan<- struct{}) {
	defer close(lost)
	buf := make([]byte, 64)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// take removes up to InFlightLimit entries from the head of the queue
func (c *Client) take() ([][]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := min(len(c.pending), c.cfg.InFlightLimit)
	batch := make([][]byte, n)
	copy(batch, c.pending[:n])
	c.pending = c.pending[n:]
	return batch, c.closing
}

// requeue puts a failed batch back at the head so order is preserved
func (c *Client) requeue(batch [][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := make([][]byte, 0, len(batch)+len(c.pending))
	pending = append(pending, batch...)
	c.pending = append(pending, c.pending...)
	c.totalRequeued.Add(uint64(len(batch)))
}

func (c *Client) write(conn net.Conn, batch [][]byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	data := bytes.Join(batch, nil)
	n, err := conn.Write(data)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("partial write: %d/%d bytes", n, len(data))
	}
	return nil
}
