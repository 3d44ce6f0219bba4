// Package config loads the planmcp configuration from a TOML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/emergent-company/planmcp/internal/vocab"
)

// Config holds all configuration for the planmcp server.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Transport   TransportConfig   `toml:"transport"`
	Log         LogConfig         `toml:"log"`
	Store       StoreConfig       `toml:"store"`
	Vocabulary  VocabularyConfig  `toml:"vocabulary"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port. Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address. Only used when Mode is "http".
	Host string `toml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// StoreConfig selects where templates live.
type StoreConfig struct {
	// Path is the SQLite database file. Empty means an in-memory store
	// that does not survive the process.
	Path string `toml:"path"`
}

// VocabularyConfig overrides the built-in variable-name word lists. File
// points at a TOML file holding a [vocabulary] rules table; inline lists
// override the file.
type VocabularyConfig struct {
	File  string      `toml:"file"`
	Rules vocab.Rules `toml:"rules"`
}

// MaintenanceConfig schedules periodic whole-library validation.
type MaintenanceConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalMinutes int  `toml:"interval_minutes"`
}

// Load creates a Config by reading a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. PLANMCP_CONFIG environment variable
//  3. ./planmcp.toml (current directory)
//  4. ~/.config/planmcp/planmcp.toml (XDG-style)
//
// All fields are optional in the config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Name:    "planmcp",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode: "stdio",
			Port: "21453",
			Host: "0.0.0.0",
		},
		Log: LogConfig{
			Level: "info",
		},
		Maintenance: MaintenanceConfig{
			Enabled:         false,
			IntervalMinutes: 60,
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// VocabularyRules resolves the effective word lists: defaults, overlaid by
// the rules file if configured, overlaid by inline lists.
func (c *Config) VocabularyRules() (vocab.Rules, error) {
	rules := vocab.DefaultRules()
	if c.Vocabulary.File != "" {
		var file struct {
			Vocabulary vocab.Rules `toml:"vocabulary"`
		}
		if _, err := toml.DecodeFile(c.Vocabulary.File, &file); err != nil {
			return rules, fmt.Errorf("reading vocabulary file %s: %w", c.Vocabulary.File, err)
		}
		rules = rules.Merge(file.Vocabulary)
	}
	return rules.Merge(c.Vocabulary.Rules), nil
}

// loadFile finds and parses the TOML config file. If no file is found, this
// is a no-op.
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}
	if p := os.Getenv("PLANMCP_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("planmcp.toml"); err == nil {
		return "planmcp.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/planmcp/planmcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("PLANMCP_TRANSPORT", &c.Transport.Mode)
	envOverride("PLANMCP_PORT", &c.Transport.Port)
	envOverride("PLANMCP_HOST", &c.Transport.Host)
	envOverride("PLANMCP_LOG_LEVEL", &c.Log.Level)
	envOverride("PLANMCP_STORE_PATH", &c.Store.Path)
	envOverride("PLANMCP_VOCABULARY_FILE", &c.Vocabulary.File)

	if v := os.Getenv("PLANMCP_MAINTENANCE_ENABLED"); v != "" {
		c.Maintenance.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("PLANMCP_MAINTENANCE_INTERVAL_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			c.Maintenance.IntervalMinutes = minutes
		}
	}
}

// Validate checks the transport mode and, when maintenance is enabled, that
// its interval is positive.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}
	if c.Maintenance.Enabled && c.Maintenance.IntervalMinutes <= 0 {
		return fmt.Errorf("maintenance interval must be positive, got %d", c.Maintenance.IntervalMinutes)
	}
	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
