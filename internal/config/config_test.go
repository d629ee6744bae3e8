// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Notes.Binary != "nb" {
		t.Errorf("notes binary = %q, want nb", cfg.Notes.Binary)
	}
	if cfg.Notes.TimeoutSecs != 10 {
		t.Errorf("timeout = %d, want 10", cfg.Notes.TimeoutSecs)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0"

[notes]
binary = "notes-cli"
timeout_secs = 3

[storage]
path = "/tmp/test.db"

[ui]
quiet = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Notes.Binary != "notes-cli" {
		t.Errorf("binary = %q", cfg.Notes.Binary)
	}
	if cfg.Notes.TimeoutSecs != 3 {
		t.Errorf("timeout = %d", cfg.Notes.TimeoutSecs)
	}
	// Fields absent from the file keep defaults.
	if cfg.Notes.CallsPerSec != 5 {
		t.Errorf("calls_per_sec = %v, want default 5", cfg.Notes.CallsPerSec)
	}
	if cfg.Storage.Path != "/tmp/test.db" {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
	if !cfg.UI.Quiet {
		t.Error("quiet not set")
	}
}

func TestLoadFromPathInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty binary", func(c *Config) { c.Notes.Binary = "" }, false},
		{"zero timeout", func(c *Config) { c.Notes.TimeoutSecs = 0 }, false},
		{"negative rate", func(c *Config) { c.Notes.CallsPerSec = -1 }, false},
		{"zero burst", func(c *Config) { c.Notes.Burst = 0 }, false},
		{"negative help width", func(c *Config) { c.UI.HelpWidth = -1 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tc.valid {
				t.Errorf("Validate() error = %v, want valid=%v", err, tc.valid)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FLOWDESK_NB_BIN", "/usr/local/bin/nb")
	t.Setenv("FLOWDESK_DB_PATH", "/tmp/flow.db")
	t.Setenv("FLOWDESK_QUIET", "true")
	t.Setenv("FLOWDESK_NB_TIMEOUT", "30")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Notes.Binary != "/usr/local/bin/nb" {
		t.Errorf("binary = %q", cfg.Notes.Binary)
	}
	if cfg.Storage.Path != "/tmp/flow.db" {
		t.Errorf("storage path = %q", cfg.Storage.Path)
	}
	if !cfg.UI.Quiet {
		t.Error("quiet override not applied")
	}
	if cfg.Notes.TimeoutSecs != 30 {
		t.Errorf("timeout = %d", cfg.Notes.TimeoutSecs)
	}
}

func TestApplyEnvOverridesIgnoresBadNumbers(t *testing.T) {
	t.Setenv("FLOWDESK_NB_TIMEOUT", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Notes.TimeoutSecs != 10 {
		t.Errorf("timeout = %d, want default kept", cfg.Notes.TimeoutSecs)
	}
}

func TestDatabasePathDefault(t *testing.T) {
	cfg := Default()
	path, err := cfg.DatabasePath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "flowdesk.db" {
		t.Errorf("path = %q, want default flowdesk.db", path)
	}

	cfg.Storage.Path = "/custom/loc.db"
	path, _ = cfg.DatabasePath()
	if path != "/custom/loc.db" {
		t.Errorf("path = %q, want explicit setting", path)
	}
}

func TestSetGlobal(t *testing.T) {
	cfg := Default()
	cfg.UI.Quiet = true
	SetGlobal(cfg)
	if !Global().UI.Quiet {
		t.Error("SetGlobal not reflected in Global")
	}
}
