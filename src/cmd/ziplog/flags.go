// FILE: ziplog/src/cmd/ziplog/flags.go
package main

import (
	"fmt"
	"strings"
)

// FlagConfig holds the flags handled before configuration loading. Every
// other argument is passed through to the config loader as --section.key=value.
type FlagConfig struct {
	ConfigFile            string
	Quiet                 bool
	ShowVersion           bool
	DisableStatusReporter bool
}

// ParseFlags extracts the application flags and returns the remaining arguments
func ParseFlags(args []string) (*FlagConfig, []string, error) {
	cfg := &FlagConfig{}
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		switch name {
		case "-c", "--config":
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("%s requires a path", name)
				}
				i++
				value = args[i]
			}
			if value == "" {
				return nil, nil, fmt.Errorf("%s requires a path", name)
			}
			cfg.ConfigFile = value

		case "-q", "--quiet":
			cfg.Quiet = true

		case "-v", "--version":
			cfg.ShowVersion = true

		case "--disable-status-reporter":
			cfg.DisableStatusReporter = true

		default:
			rest = append(rest, arg)
		}
	}

	return cfg, rest, nil
}
