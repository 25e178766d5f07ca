// Package config loads the blockedit settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds user settings. Zero fields are filled with defaults by Load.
type Config struct {
	DataDir       string        `yaml:"data_dir"`
	Locale        string        `yaml:"locale"`
	AutosaveDelay time.Duration `yaml:"autosave_delay"`
	Trigger       string        `yaml:"trigger"`
	ToolbarOffset float64       `yaml:"toolbar_offset"`
	RecentLimit   int           `yaml:"recent_limit"`
	RevisionLimit int           `yaml:"revision_limit"`

	// WatchSettle is how long a linked file must be quiet before it is
	// reloaded. DisableWatch turns reloading off.
	WatchSettle  time.Duration `yaml:"watch_settle"`
	DisableWatch bool          `yaml:"disable_watch"`

	// MCPAutoApprove lets MCP clients run destructive tools unasked.
	MCPAutoApprove bool `yaml:"mcp_auto_approve"`
}

// DefaultPath returns ~/.config/blockedit/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "blockedit", "config.yaml")
}

// Default returns the settings used when no file exists.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads path. A missing file yields the defaults; a file that cannot
// be parsed is an error.
func Load(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	c.applyDefaults()
	return c, nil
}

// Save writes c to path, creating its directory.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}

// DBPath is the SQLite file inside the data directory.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "blockedit.db")
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.DataDir = filepath.Join(home, ".local", "share", "blockedit")
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.AutosaveDelay <= 0 {
		c.AutosaveDelay = 500 * time.Millisecond
	}
	if c.Trigger == "" {
		c.Trigger = "/"
	}
	if c.ToolbarOffset <= 0 {
		c.ToolbarOffset = 48
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = 5
	}
	if c.RevisionLimit <= 0 {
		c.RevisionLimit = 40
	}
	if c.WatchSettle <= 0 {
		c.WatchSettle = 100 * time.Millisecond
	}
}
