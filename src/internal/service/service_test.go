// FILE: ziplog/src/internal/service/service_test.go
package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zipscene/ziplog/src/internal/core"
	"github.com/zipscene/ziplog/src/internal/sink"
	"github.com/zipscene/ziplog/src/internal/transport"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func newTestService(t *testing.T, mutate func(*Config)) (*Service, string) {
	t.Helper()
	logDir := filepath.Join(t.TempDir(), "log")
	cfg := Config{
		Router:    sink.RouterConfig{Directory: logDir},
		Transport: transport.ServerConfig{SocketDir: t.TempDir(), PID: os.Getpid()},
		QueueSize: 16,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := New(cfg, newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() { _ = svc.Close() })
	return svc, logDir
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestService_RemoteProducers(t *testing.T) {
	svc, logDir := newTestService(t, nil)

	clients := make([]*transport.Client, 3)
	for i := range clients {
		client, err := transport.NewClient(transport.ClientConfig{Endpoint: svc.Path()}, newTestLogger())
		require.NoError(t, err)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		require.NoError(t, client.Connect(ctx))
		cancel()
		clients[i] = client
	}

	for i, client := range clients {
		for j := 0; j < 10; j++ {
			require.NoError(t, client.Send(core.Entry{
				App:       "worker",
				Subsystem: "jobs",
				Level:     "info",
				Message:   "job step",
				Data:      map[string]any{"client": i, "step": j},
			}))
		}
	}
	for _, client := range clients {
		require.NoError(t, client.Close())
	}

	require.Eventually(t, func() bool {
		return svc.Stats()["total_dispatched"] == uint64(30)
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, svc.Close())

	lines := readLines(t, filepath.Join(logDir, "jobs", "main.json.log"))
	require.Len(t, lines, 30)

	// Per-client order survives aggregation
	last := map[float64]float64{0: -1, 1: -1, 2: -1}
	for _, line := range lines {
		var rec struct {
			Data map[string]float64 `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		client, step := rec.Data["client"], rec.Data["step"]
		assert.Greater(t, step, last[client])
		last[client] = step
	}

	assert.Len(t, readLines(t, filepath.Join(logDir, "combined", "main.log")), 30)
}

func TestService_LocalSubmit(t *testing.T) {
	svc, logDir := newTestService(t, nil)

	require.NoError(t, svc.Submit(core.Entry{Level: "error", Message: "local failure"}))
	require.NoError(t, svc.Close())

	lines := readLines(t, filepath.Join(logDir, core.DefaultSubsystem, "error.log"))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "local failure")

	err := svc.Submit(core.Entry{Message: "too late"})
	assert.ErrorIs(t, err, core.ErrClosed)
	require.NoError(t, svc.Close())
}

func TestService_RejectedLevelIsNotFatal(t *testing.T) {
	svc, _ := newTestService(t, nil)

	require.NoError(t, svc.Submit(core.Entry{Level: "catastrophic", Message: "x"}))
	require.NoError(t, svc.Submit(core.Entry{Level: "info", Message: "y"}))

	require.Eventually(t, func() bool {
		return svc.Stats()["total_dispatched"] == uint64(1)
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(1), svc.Stats()["total_failed"])

	select {
	case err := <-svc.Fatal():
		t.Fatalf("unexpected fatal error: %v", err)
	default:
	}
}

func TestService_StorageFailureIsFatal(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.Router.Directory = filepath.Join(blocker, "log")
	})
	require.NoError(t, svc.Submit(core.Entry{Message: "cannot be stored"}))

	select {
	case err := <-svc.Fatal():
		assert.ErrorIs(t, err, core.ErrStorage)
	case <-time.After(5 * time.Second):
		t.Fatal("no fatal error reported")
	}
}

func TestService_StatusEndpoint(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.Status = StatusConfig{Enabled: true, Host: "127.0.0.1", Port: 0}
	})
	require.NoError(t, svc.Submit(core.Entry{Subsystem: "web", Message: "hello"}))
	require.Eventually(t, func() bool {
		return svc.Stats()["total_dispatched"] == uint64(1)
	}, 5*time.Second, 10*time.Millisecond)

	addr := svc.status.Addr()
	require.NotEmpty(t, addr)

	code, body, err := fasthttp.Get(nil, "http://"+addr+"/status")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "ziplog", status["service"])
	stats, ok := status["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, stats["total_dispatched"])
	assert.Equal(t, []any{"web"}, stats["subsystems"])

	code, _, err = fasthttp.Get(nil, "http://"+addr+"/other")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusNotFound, code)
}

func TestNew_InvalidRouterConfig(t *testing.T) {
	_, err := New(Config{
		Transport: transport.ServerConfig{SocketDir: t.TempDir()},
	}, newTestLogger())
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
