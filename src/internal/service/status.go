// FILE: ziplog/src/internal/service/status.go
package service

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zipscene/ziplog/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/valyala/fasthttp"
)

// StatusConfig configures the status endpoint
type StatusConfig struct {
	Enabled bool
	Host    string
	// Port 0 picks a free port
	Port int64
}

// StatusServer serves service statistics as JSON on /status
type StatusServer struct {
	cfg      StatusConfig
	stats    func() map[string]any
	logger   *log.Logger
	server   *fasthttp.Server
	listener net.Listener
	wg       sync.WaitGroup

	totalRequests atomic.Uint64
}

// NewStatusServer creates the server; stats is called per request
func NewStatusServer(cfg StatusConfig, stats func() map[string]any, logger *log.Logger) *StatusServer {
	return &StatusServer{
		cfg:    cfg,
		stats:  stats,
		logger: logger,
	}
}

// Start binds the listener and serves in the background
func (h *StatusServer) Start() error {
	h.server = &fasthttp.Server{
		Handler:          h.requestHandler,
		DisableKeepalive: false,
		CloseOnShutdown:  true,
		Logger:           compat.NewFastHTTPAdapter(h.logger),
	}

	addr := net.JoinHostPort(h.cfg.Host, fmt.Sprintf("%d", h.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("status server listen on %s: %w", addr, err)
	}
	h.listener = ln

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.logger.Info("msg", "Status server starting",
			"component", "status_server",
			"address", ln.Addr().String())

		if err := h.server.Serve(ln); err != nil {
			h.logger.Error("msg", "Status server failed",
				"component", "status_server",
				"error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start
func (h *StatusServer) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Stop shuts the server down and waits for it to exit
func (h *StatusServer) Stop() error {
	if h.server == nil {
		return nil
	}
	err := h.server.Shutdown()
	h.wg.Wait()
	if err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	return nil
}

func (h *StatusServer) requestHandler(ctx *fasthttp.RequestCtx) {
	h.totalRequests.Add(1)
	ctx.SetContentType("application/json")

	if string(ctx.Path()) != "/status" || !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		json.NewEncoder(ctx).Encode(map[string]string{
			"error": "Not Found",
			"hint":  "GET /status",
		})
		return
	}

	status := map[string]any{
		"service":   "ziplog",
		"version":   version.Short(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"requests":  h.totalRequests.Load(),
		"stats":     h.stats(),
	}
	if err := json.NewEncoder(ctx).Encode(status); err != nil {
		h.logger.Error("msg", "Failed to encode status",
			"component", "status_server",
			"error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}
