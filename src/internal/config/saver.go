// FILE: ziplog/src/internal/config/saver.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	lconfig "github.com/lixenwraith/config"
)

// Saves the configuration to the specified file path as TOML.
// The configuration is validated first so a written file always loads back,
// and missing parent directories are created.
func (c *Config) SaveToFile(path string) error {
	if path == "" {
		return fmt.Errorf("cannot save config: path is empty")
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}

	// The path a config was loaded from is runtime state, not a setting
	target := *c
	target.ConfigFile = ""

	// Create a temporary lconfig instance just for saving
	lcfg, err := lconfig.NewBuilder().
		WithTarget(&target).
		WithFileFormat("toml").
		Build()
	if err != nil {
		return fmt.Errorf("failed to create config builder: %w", err)
	}

	// Use lconfig's Save method which handles atomic writes
	if err := lcfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}
