// FILE: ziplog/src/cmd/ziplog/commands/config.go
package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/zipscene/ziplog/src/internal/config"
)

// ConfigCommand writes the built-in defaults as a TOML file to start from
type ConfigCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewConfigCommand() *ConfigCommand {
	return &ConfigCommand{stdout: os.Stdout, stderr: os.Stderr}
}

func (c *ConfigCommand) Execute(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := "ziplog.toml"
	switch fs.NArg() {
	case 0:
	case 1:
		path = fs.Arg(0)
	default:
		return fmt.Errorf("expected at most one path, got %d", fs.NArg())
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Defaults().SaveToFile(path); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Wrote default configuration to %s\n", path)
	return nil
}

func (c *ConfigCommand) Description() string {
	return "Write a default configuration file"
}

func (c *ConfigCommand) Help() string {
	return `Config Command - Write a default configuration file

Usage:
  ziplog config [--force] [path]

Writes every setting with its built-in default to path (default:
ziplog.toml). An existing file is kept unless --force is given.
`
}
