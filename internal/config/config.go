// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no path is given on the command line.
const DefaultConfigPath = "config.yaml"

// Config is the root configuration document.
type Config struct {
	Database DatabaseConfig `yaml:"database"` // Storage settings.
	Log      LogConfig      `yaml:"log"`      // Logging settings.
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// DSN is a PostgreSQL DSN/URL or a SQLite file path.
	DSN string `yaml:"dsn"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`        // trace..panic, default info.
	File       string `yaml:"file"`         // Log file path; empty logs to stderr.
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this size, default 100.
	MaxBackups int    `yaml:"max_backups"`  // Rotated files kept, default 3.
	MaxAgeDays int    `yaml:"max_age_days"` // Rotated file retention, default 28.
}

// ResolveConfigPath returns the cleaned path or the default when empty.
func ResolveConfigPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return DefaultConfigPath
	}
	return filepath.Clean(trimmed)
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	resolved := ResolveConfigPath(path)
	raw, errRead := os.ReadFile(resolved)
	if errRead != nil {
		return nil, fmt.Errorf("config: read %s: %w", resolved, errRead)
	}

	var cfg Config
	if errDecode := yaml.Unmarshal(raw, &cfg); errDecode != nil {
		return nil, fmt.Errorf("config: parse %s: %w", resolved, errDecode)
	}
	cfg.applyDefaults()

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, fmt.Errorf("config: %s: database.dsn is required", resolved)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 28
	}
}
