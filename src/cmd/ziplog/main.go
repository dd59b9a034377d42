// FILE: ziplog/src/cmd/ziplog/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/zipscene/ziplog/src/cmd/ziplog/commands"
	"github.com/zipscene/ziplog/src/internal/config"
	"github.com/zipscene/ziplog/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

const shutdownTimeout = 10 * time.Second

func main() {
	// Subcommands run before any configuration is loaded
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	os.Exit(run(os.Args[1:]))
}

// run serves until a termination signal or a storage failure and returns the exit code
func run(args []string) int {
	flagCfg, rest, err := ParseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		return 0
	}

	if flagCfg.ConfigFile != "" {
		if _, err := os.Stat(flagCfg.ConfigFile); err != nil {
			Error("Config file not found: %s\n", flagCfg.ConfigFile)
			return 2
		}
		os.Setenv("ZIPLOG_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(rest)
	if err != nil {
		Error("Failed to load config: %v\n", err)
		return 1
	}
	cfg.Quiet = cfg.Quiet || flagCfg.Quiet
	cfg.DisableStatusReporter = cfg.DisableStatusReporter || flagCfg.DisableStatusReporter
	output.SetQuiet(cfg.Quiet)

	if err := initializeLogger(cfg); err != nil {
		Error("Failed to initialize logger: %v\n", err)
		return 1
	}
	defer shutdownLogger()

	logger.Info("msg", "ziplog starting",
		"version", version.String(),
		"config_file", cfg.ConfigFile,
		"log_output", cfg.Logging.Output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := NewSignalHandler(logger)
	defer signals.Stop()

	svc, err := bootstrapService(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap service", "error", err)
		return 1
	}

	Print("ziplog %s collecting on %s\n", version.Short(), svc.Path())

	if enableStatusReporter(cfg) {
		go statusReporter(ctx, svc, time.Duration(cfg.Status.IntervalSeconds)*time.Second)
	}

	exitCode := 0
	sigChan := make(chan os.Signal, 1)
	go func() {
		sigChan <- signals.Handle(ctx, func() { reportStatus(svc) })
	}()

	select {
	case sig := <-sigChan:
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown", "signal", sig)
	case err := <-svc.Fatal():
		logger.Error("msg", "Log storage failed, shutting down", "error", err)
		Error("Log storage failed: %v\n", err)
		exitCode = 1
	}
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- svc.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("msg", "Shutdown completed with errors", "error", err)
			return 1
		}
		logger.Info("msg", "Shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		return 1
	}
	return exitCode
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			Error("Logger shutdown error: %v\n", err)
		}
	}
}

func enableStatusReporter(cfg *config.Config) bool {
	if cfg.DisableStatusReporter || cfg.Status.IntervalSeconds <= 0 {
		return false
	}
	return os.Getenv("ZIPLOG_DISABLE_STATUS_REPORTER") != "1"
}
