// FILE: ziplog/src/cmd/ziplog/status.go
package main

import (
	"context"
	"time"

	"github.com/zipscene/ziplog/src/internal/service"
)

// statusReporter periodically logs service statistics at debug level
func statusReporter(ctx context.Context, svc *service.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reportStatus(svc)
		}
	}
}

func reportStatus(svc *service.Service) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("msg", "Panic in status reporter",
				"component", "status_reporter",
				"panic", r)
		}
	}()

	stats := svc.Stats()
	fields := []any{
		"msg", "Status report",
		"component", "status_reporter",
		"queue_length", stats["queue_length"],
		"total_dispatched", stats["total_dispatched"],
		"total_failed", stats["total_failed"],
		"total_dropped", stats["total_dropped"],
	}

	if subsystems, ok := stats["subsystems"].([]string); ok {
		fields = append(fields, "subsystems", len(subsystems))
	}
	if transport, ok := stats["transport"].(map[string]any); ok {
		fields = append(fields,
			"active_connections", transport["active_connections"],
			"invalid_entries", transport["invalid_entries"])
	}

	logger.Debug(fields...)
}
