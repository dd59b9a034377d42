// FILE: ziplog/src/cmd/ziplog/commands/help.go
package commands

import (
	"fmt"
	"sort"
	"strings"
)

const generalHelpTemplate = `ziplog: log aggregation for multi-process applications.

Usage:
  ziplog [command] [options]
  ziplog [options]          Run the collecting process

Commands:
%s

Application Options:
  -c, --config <path>      Path to configuration file (default: ziplog.toml)
  -h, --help               Display this help message and exit
  -v, --version            Display version information and exit
  -q, --quiet              Suppress all console output, including errors

Runtime Options:
  --disable-status-reporter  Disable the periodic status reporter
  --<section>.<key>=<value>  Override any configuration value

For command-specific help:
  ziplog help <command>
  ziplog <command> --help

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - Environment variables (ZIPLOG_SECTION_KEY) override file settings
  - TOML configuration file is the primary method

Producers find the collector through a socket named after its process id:
  <socket_dir>/logger-<pid>

Examples:
  # Collect into /var/log/app with a status endpoint
  ziplog --sink.directory=/var/log/app --status.enabled=true

  # Ship a worker's output to the collector with pid 4242
  ./worker | ziplog send --pid 4242 --subsystem worker
`

// HelpCommand displays general or command-specific help
type HelpCommand struct {
	router *CommandRouter
}

// NewHelpCommand creates a new help command handler
func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

func (c *HelpCommand) Execute(args []string) error {
	if len(args) > 0 && args[0] != "" {
		cmdName := args[0]

		if handler, exists := c.router.GetCommand(cmdName); exists {
			fmt.Print(handler.Help())
			return nil
		}

		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Printf(generalHelpTemplate, c.formatCommandList())
	return nil
}

func (c *HelpCommand) Description() string {
	return "Display help information"
}

func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  ziplog help              Show general help
  ziplog help <command>    Show help for a specific command
`
}

// formatCommandList renders the sorted command list with aligned descriptions
func (c *HelpCommand) formatCommandList() string {
	commands := c.router.GetCommands()

	names := make([]string, 0, len(commands))
	maxLen := 0
	for name := range commands {
		names = append(names, name)
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		lines = append(lines, fmt.Sprintf("  %s%s%s", name, padding, commands[name].Description()))
	}

	return strings.Join(lines, "\n")
}
