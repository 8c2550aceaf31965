package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.ShowHidden = true
	cfg.DefaultSortMode = "size-desc"

	saved, err := Save(path, cfg)
	if err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if !saved.ShowHidden || saved.DefaultSortMode != "size-desc" {
		t.Fatalf("expected save to preserve fields, got %+v", saved)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded != saved {
		t.Fatalf("expected loaded config to match saved, got %+v vs %+v", loaded, saved)
	}
}

func TestLoadRejectsInvalidSortMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_sort_mode: bogus\nlog_level: info\nflush_budget_micros: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unrecognized sort mode")
	}
}

func TestApplyDefaultsFillsZeroFields(t *testing.T) {
	cfg := Config{DefaultSortMode: "name-desc"}
	applyDefaults(&cfg)
	if cfg.EditorFallback == "" || cfg.SearchTool == "" || cfg.LogLevel == "" {
		t.Fatalf("expected zero-valued fields to be filled with defaults, got %+v", cfg)
	}
	if cfg.DefaultSortMode != "name-desc" {
		t.Fatalf("expected explicit field to survive, got %q", cfg.DefaultSortMode)
	}
}

func TestApplyDefaultsOnZeroConfigUsesAllDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)
	if cfg != DefaultConfig() {
		t.Fatalf("expected a fully zero config to become DefaultConfig, got %+v", cfg)
	}
}

func TestValidateRejectsNonPositiveFlushBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlushBudgetMicros = 0
	if err := validate(cfg); err == nil {
		t.Fatal("expected an error for a non-positive flush budget")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if err := validate(cfg); err == nil {
		t.Fatal("expected an error for an unrecognized log level")
	}
}

func TestDefaultPathHonorsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg")
	got := DefaultPath()
	want := filepath.Join("/custom/xdg", "tfm", "config.yaml")
	if got != want {
		t.Fatalf("DefaultPath() = %q, want %q", got, want)
	}
}
