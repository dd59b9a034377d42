// FILE: ziplog/src/cmd/ziplog/commands/send.go
package commands

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zipscene/ziplog/src/internal/config"
	"github.com/zipscene/ziplog/src/internal/core"
	ziplogger "github.com/zipscene/ziplog/src/internal/logger"
	"github.com/zipscene/ziplog/src/internal/transport"

	"github.com/lixenwraith/log"
)

// SendCommand ships lines read from stdin to a collecting process. A line
// holding a JSON object is sent as an entry; any other line is a message.
type SendCommand struct {
	stdin  io.Reader
	stderr io.Writer
}

func NewSendCommand() *SendCommand {
	return &SendCommand{stdin: os.Stdin, stderr: os.Stderr}
}

type sendOptions struct {
	configFile string
	endpoint   string
	socketDir  string
	pid        int
	subsystem  string
	level      string
	app        string
	logLevel   string
}

func (c *SendCommand) Execute(args []string) error {
	var opts sendOptions

	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&opts.configFile, "config", "", "Config file path")
	fs.StringVar(&opts.endpoint, "endpoint", "", "Socket path of the collecting process")
	fs.StringVar(&opts.socketDir, "socket-dir", "", "Socket directory")
	fs.IntVar(&opts.pid, "pid", 0, "Process id of the collecting process")
	fs.StringVar(&opts.subsystem, "subsystem", "", "Subsystem for lines that name none")
	fs.StringVar(&opts.level, "level", "", "Level for lines that name none")
	fs.StringVar(&opts.app, "app", "", "Application name")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Diagnostics level")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if opts.configFile != "" {
		os.Setenv("ZIPLOG_CONFIG_FILE", opts.configFile)
	}
	cfg, err := config.LoadWithCLI(nil)
	if err != nil {
		return err
	}

	cfg.Transport.Endpoint = coalesceString(opts.endpoint, cfg.Transport.Endpoint)
	cfg.Transport.SocketDir = coalesceString(opts.socketDir, cfg.Transport.SocketDir)
	cfg.Transport.ServerPID = int64(coalesceInt(opts.pid, int(cfg.Transport.ServerPID), 0))
	cfg.Producer.AppName = coalesceString(opts.app, cfg.Producer.AppName)
	cfg.Producer.Subsystem = coalesceString(opts.subsystem, cfg.Producer.Subsystem)

	diag, err := newDiagLogger(opts.logLevel)
	if err != nil {
		return err
	}
	defer diag.Shutdown(time.Second)

	return c.send(cfg, opts.level, diag)
}

func (c *SendCommand) send(cfg *config.Config, level string, diag *log.Logger) error {
	producerOpts, err := cfg.ProducerOptions()
	if err != nil {
		return err
	}
	if level != "" {
		if level, err = producerOpts.Levels.Canonical(level); err != nil {
			return err
		}
	}

	clientCfg := cfg.ClientConfig()
	client, err := transport.NewClient(clientCfg, diag)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), clientCfg.DialTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("cannot reach collector at %s: %w", client.Path(), err)
	}

	producer, err := ziplogger.New(client, producerOpts, diag)
	if err != nil {
		_ = client.Close()
		return err
	}

	sent, rejected, readErr := c.ship(producer, cfg.Producer.Subsystem, level)
	closeErr := producer.Close()

	fmt.Fprintf(c.stderr, "Sent %d entries to %s (%d rejected)\n", sent, client.Path(), rejected)
	if readErr != nil {
		return fmt.Errorf("read input: %w", readErr)
	}
	return closeErr
}

func (c *SendCommand) ship(producer *ziplogger.Logger, subsystem, level string) (sent, rejected int, err error) {
	plain := producer.Subsystem(subsystem)

	scanner := bufio.NewScanner(c.stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), core.MaxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var submitErr error
		if entry, decErr := transport.DecodeEntry(line); decErr == nil {
			if entry.Subsystem == "" {
				entry.Subsystem = subsystem
			}
			if entry.Level == "" {
				entry.Level = level
			}
			submitErr = producer.Entry(entry)
		} else if level != "" {
			submitErr = plain.LogLevel(level, string(line))
		} else {
			submitErr = plain.Log(string(line))
		}

		if submitErr != nil {
			rejected++
			fmt.Fprintf(c.stderr, "line %d: %v\n", lineNo, submitErr)
			continue
		}
		sent++
	}
	return sent, rejected, scanner.Err()
}

func (c *SendCommand) Description() string {
	return "Ship stdin lines to a collecting process"
}

func (c *SendCommand) Help() string {
	return `Send Command - Ship stdin lines to a collecting process

Usage:
  ziplog send [options] < input

Each line holding a JSON object is sent as an entry (message, level,
subsystem, data, details, keepDays). Any other line is sent as a message
whose level is inferred unless --level is given.

Options:
  --endpoint <path>     Socket path of the collecting process
  --socket-dir <dir>    Socket directory (default: resolved from the descriptor file)
  --pid <pid>           Process id of the collecting process (default: parent process)
  --subsystem <name>    Subsystem for lines that name none
  --level <level>       Level for lines that name none
  --app <name>          Application name
  --config <path>       Config file path
  --log-level <level>   Diagnostics level (default: warn)

Examples:
  ./worker | ziplog send --pid 4242 --subsystem worker
  echo '{"message":"disk full","level":"error"}' | ziplog send --endpoint /run/app/logger-4242
`
}

// newDiagLogger builds a stderr-only diagnostics logger
func newDiagLogger(level string) (*log.Logger, error) {
	var value int
	switch level {
	case "debug":
		value = int(log.LevelDebug)
	case "info":
		value = int(log.LevelInfo)
	case "warn":
		value = int(log.LevelWarn)
	case "error":
		value = int(log.LevelError)
	default:
		return nil, fmt.Errorf("unknown log level: %s", level)
	}

	logger := log.NewLogger()
	if err := logger.InitWithDefaults(
		"disable_file=true",
		"enable_stdout=true",
		"stdout_target=stderr",
		fmt.Sprintf("level=%d", value),
	); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
