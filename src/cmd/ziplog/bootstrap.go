// FILE: ziplog/src/cmd/ziplog/bootstrap.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/zipscene/ziplog/src/internal/config"
	ziplogger "github.com/zipscene/ziplog/src/internal/logger"
	"github.com/zipscene/ziplog/src/internal/service"
	"github.com/zipscene/ziplog/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapService starts the collecting process and installs the
// process-wide producer handle that writes through it
func bootstrapService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	svcCfg, err := cfg.ServiceConfig(os.Getpid())
	if err != nil {
		return nil, err
	}

	svc, err := service.New(svcCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := svc.Start(startCtx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}

	opts, err := cfg.ProducerOptions()
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	producer, err := ziplogger.New(svc, opts, logger)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	ziplogger.SetDefault(producer.Subsystem(cfg.Producer.Subsystem))

	logger.Info("msg", "ziplog started",
		"version", version.Short(),
		"pid", os.Getpid(),
		"socket", svc.Path(),
		"log_directory", cfg.Sink.Directory)

	if cfg.Status.Enabled {
		logger.Info("msg", "Status endpoint configured",
			"component", "main",
			"url", fmt.Sprintf("http://%s:%d/status", cfg.Status.Host, cfg.Status.Port))
	}

	if err := ziplogger.Default().Info("Collector started", map[string]any{
		"socket":  svc.Path(),
		"version": version.Short(),
	}); err != nil {
		logger.Warn("msg", "Failed to record startup entry", "error", err)
	}

	return svc, nil
}

// initializeLogger sets up ziplog's own diagnostics from the logging section
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	var configArgs []string

	if cfg.Quiet {
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		return logger.InitWithDefaults(configArgs...)
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout", "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target="+cfg.Logging.Output)

	case "split":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_split_mode=true",
			"stdout_target=split")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "all":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if cfg.Logging.Console != nil && cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return logger.InitWithDefaults(configArgs...)
}

func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	if cfg.Logging.File != nil {
		*configArgs = append(*configArgs,
			fmt.Sprintf("directory=%s", cfg.Logging.File.Directory),
			fmt.Sprintf("name=%s", cfg.Logging.File.Name),
			fmt.Sprintf("max_size_mb=%d", cfg.Logging.File.MaxSizeMB),
			fmt.Sprintf("max_total_size_mb=%d", cfg.Logging.File.MaxTotalSizeMB))

		if cfg.Logging.File.RetentionHours > 0 {
			*configArgs = append(*configArgs,
				fmt.Sprintf("retention_period_hrs=%.1f", cfg.Logging.File.RetentionHours))
		}
	}
}

func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := "stderr"
	if cfg.Logging.Console != nil && cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
	}
	*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
