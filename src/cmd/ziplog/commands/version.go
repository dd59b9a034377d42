// FILE: ziplog/src/cmd/ziplog/commands/version.go
package commands

import (
	"fmt"

	"github.com/zipscene/ziplog/src/internal/version"
)

// VersionCommand prints build information
type VersionCommand struct{}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Println(version.String())
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Version Command - Show ziplog version information

Usage:
  ziplog version
  ziplog -v
  ziplog --version

Output includes the version, git commit, build time and Go toolchain.
`
}
