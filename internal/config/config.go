// Package config implements TFM's ambient runtime configuration: a YAML
// file with defaults, validation, and an atomic save path, following the
// teacher's internal/config package style.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	maxConfigFileBytes int64 = 1 << 20
	maxRenameRetry           = 10
	renameRetryBaseDelay     = 10 * time.Millisecond

	defaultFlushBudgetMicros = 16_670 // spec.md §4.3: 60Hz frame budget
)

var userHomeDirFn = os.UserHomeDir

// Config is TFM's persisted runtime configuration.
type Config struct {
	// EditorFallback names an external editor. It is defaulted, loaded and
	// saved, but no action opens an editor, so nothing else reads it.
	EditorFallback string `yaml:"editor_fallback" json:"editor_fallback"`
	// SearchTool names the external content-search executable (spec.md §6's
	// wire protocol assumes ripgrep's CLI surface). It is defaulted and
	// saved, but task.ContentSearch always runs "rg" and does not read it.
	SearchTool string `yaml:"search_tool" json:"search_tool"`
	// DefaultSortMode seeds new panes; must be one of the pane.SortMode names.
	DefaultSortMode string `yaml:"default_sort_mode" json:"default_sort_mode"`
	ShowHidden      bool   `yaml:"show_hidden" json:"show_hidden"`
	// FlushBudgetMicros is the per-frame cost budget the smoothed-K loader
	// strategy targets (spec.md §4.3).
	FlushBudgetMicros int64  `yaml:"flush_budget_micros" json:"flush_budget_micros"`
	ClipboardPath     string `yaml:"clipboard_path,omitempty" json:"clipboard_path,omitempty"`
	LogLevel          string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns TFM's built-in defaults.
func DefaultConfig() Config {
	return Config{
		EditorFallback:    "vi",
		SearchTool:        "rg",
		DefaultSortMode:   "name-asc",
		ShowHidden:        false,
		FlushBudgetMicros: defaultFlushBudgetMicros,
		LogLevel:          "info",
	}
}

// Clone returns a deep copy of cfg. Config currently has no reference
// fields, but Clone exists so callers never need to know that.
func Clone(cfg Config) Config { return cfg }

// DefaultPath resolves the config file path: $XDG_CONFIG_HOME/tfm/config.yaml,
// falling back to ~/.config/tfm/config.yaml, then os.TempDir() if the home
// directory cannot be resolved.
func DefaultPath() string {
	base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if base == "" {
		home, err := userHomeDirFn()
		if err != nil {
			slog.Warn("[config] using temp dir as config path fallback", "error", err)
			base = filepath.Join(os.TempDir(), ".config")
		} else {
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "tfm", "config.yaml")
}

// Load reads the config file at path. A missing file yields defaults, not
// an error: config parse failures must never prevent startup.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("config path required")
	}

	raw, err := readLimitedFile(path, maxConfigFileBytes)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		slog.Warn("[config] failed to parse config, using defaults", "path", path, "error", err)
		return DefaultConfig(), err
	}
	applyDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EnsureFile loads path, writing the defaults there first if it doesn't exist.
func EnsureFile(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		if _, err := Save(path, cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Save validates cfg, fills defaults, and atomically writes it to path.
func Save(path string, cfg Config) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return cfg, errors.New("config path required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return cfg, fmt.Errorf("save config: resolve path: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("save config: %w", err)
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return cfg, fmt.Errorf("save config: marshal: %w", err)
	}
	if err := atomicWrite(absPath, raw); err != nil {
		return cfg, err
	}
	slog.Debug("[config] config saved", "path", absPath)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if isZeroConfig(*cfg) {
		*cfg = defaults
		return
	}
	if strings.TrimSpace(cfg.EditorFallback) == "" {
		cfg.EditorFallback = defaults.EditorFallback
	}
	if strings.TrimSpace(cfg.SearchTool) == "" {
		cfg.SearchTool = defaults.SearchTool
	}
	if strings.TrimSpace(cfg.DefaultSortMode) == "" {
		cfg.DefaultSortMode = defaults.DefaultSortMode
	}
	if cfg.FlushBudgetMicros <= 0 {
		cfg.FlushBudgetMicros = defaults.FlushBudgetMicros
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = defaults.LogLevel
	}
}

var validSortModes = map[string]struct{}{
	"name-asc": {}, "name-desc": {},
	"size-asc": {}, "size-desc": {},
	"modified-asc": {}, "modified-desc": {},
	"custom": {},
}

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

func validate(cfg Config) error {
	if _, ok := validSortModes[cfg.DefaultSortMode]; !ok {
		return fmt.Errorf("default_sort_mode %q is not recognized", cfg.DefaultSortMode)
	}
	if _, ok := validLogLevels[strings.ToLower(cfg.LogLevel)]; !ok {
		return fmt.Errorf("log_level %q is not recognized", cfg.LogLevel)
	}
	if cfg.FlushBudgetMicros <= 0 {
		return errors.New("flush_budget_micros must be positive")
	}
	return nil
}

func isZeroConfig(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func readLimitedFile(path string, maxBytes int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	limited := io.LimitReader(file, maxBytes+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("config file exceeds %d bytes", maxBytes)
	}
	return raw, nil
}

// atomicWrite writes data to path via a same-directory temp file + rename,
// retrying the rename a few times to tolerate transient Windows file locks.
func atomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save config: mkdir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			if closeErr := tmpFile.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
				slog.Warn("[config] failed to close temp file", "path", tmpPath, "error", closeErr)
			}
		}
		if err != nil {
			if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				slog.Warn("[config] failed to remove temp file", "path", tmpPath, "error", removeErr)
			}
		}
	}()

	if err = tmpFile.Chmod(0o600); err != nil {
		return fmt.Errorf("save config: chmod temp: %w", err)
	}
	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("save config: write: %w", err)
	}
	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("save config: sync: %w", err)
	}
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return fmt.Errorf("save config: close: %w", err)
	}

	if err = renameFileWithRetry(tmpPath, path); err != nil {
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

func renameFileWithRetry(sourcePath, targetPath string) error {
	var lastErr error
	for attempt := 0; attempt < maxRenameRetry; attempt++ {
		err := os.Rename(sourcePath, targetPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if runtime.GOOS != "windows" {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * renameRetryBaseDelay)
	}
	return lastErr
}
