// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for flowdesk.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.flowdesk/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete flowdesk configuration.
type Config struct {
	Version string `toml:"version"`

	// Notes bridge configuration
	Notes NotesConfig `toml:"notes"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// NotesConfig controls the external note-taking tool bridge.
type NotesConfig struct {
	// Binary is the note tool executable name or path.
	Binary string `toml:"binary"`
	// TimeoutSecs bounds each tool invocation.
	TimeoutSecs int `toml:"timeout_secs"`
	// CallsPerSec rate-limits tool invocations.
	CallsPerSec float64 `toml:"calls_per_sec"`
	// Burst is the rate limiter burst size.
	Burst int `toml:"burst"`
}

// StorageConfig controls the opportunity/association database.
type StorageConfig struct {
	// Path is the SQLite database file (empty = ~/.flowdesk/flowdesk.db).
	Path string `toml:"path"`
}

// UIConfig contains terminal UI configuration.
type UIConfig struct {
	// Quiet suppresses styled decoration on output.
	Quiet bool `toml:"quiet"`
	// HistoryFile is the REPL history path (empty = ~/.flowdesk/history).
	HistoryFile string `toml:"history_file"`
	// HelpWidth is the wrap width for rendered help.
	HelpWidth int `toml:"help_width"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Notes: NotesConfig{
			Binary:      "nb",
			TimeoutSecs: 10,
			CallsPerSec: 5,
			Burst:       5,
		},
		Storage: StorageConfig{},
		UI: UIConfig{
			HelpWidth: 100,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the flowdesk configuration directory (~/.flowdesk).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".flowdesk"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// DatabasePath resolves the storage path, falling back to the default
// location inside the config directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flowdesk.db"), nil
}

// HistoryPath resolves the REPL history file location.
func (c *Config) HistoryPath() (string, error) {
	if c.UI.HistoryFile != "" {
		return c.UI.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file if present, fills defaults for anything not
// set, applies environment overrides and validates the result. A missing
// config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML merges a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads a config from an explicit path, with defaults and
// validation but without environment overrides. Used by tests and the
// --config flag.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default location as TOML.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies FLOWDESK_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if bin := os.Getenv("FLOWDESK_NB_BIN"); bin != "" {
		c.Notes.Binary = bin
	}
	if path := os.Getenv("FLOWDESK_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if history := os.Getenv("FLOWDESK_HISTORY"); history != "" {
		c.UI.HistoryFile = history
	}
	if quiet := os.Getenv("FLOWDESK_QUIET"); quiet != "" {
		c.UI.Quiet = quiet == "1" || strings.EqualFold(quiet, "true")
	}
	if timeout := os.Getenv("FLOWDESK_NB_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Notes.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Notes.Binary == "" {
		return ValidationError{"notes.binary", "must not be empty"}
	}
	if c.Notes.TimeoutSecs <= 0 {
		return ValidationError{"notes.timeout_secs", "must be positive"}
	}
	if c.Notes.CallsPerSec <= 0 {
		return ValidationError{"notes.calls_per_sec", "must be positive"}
	}
	if c.Notes.Burst <= 0 {
		return ValidationError{"notes.burst", "must be positive"}
	}
	if c.UI.HelpWidth < 0 {
		return ValidationError{"ui.help_width", "must not be negative"}
	}
	return nil
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure falls back to defaults so callers always get a usable
// config.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal replaces the process-wide configuration. Intended for tests
// and for the --config flag at startup.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	globalConfig = cfg
	globalConfigMu.Unlock()
}
