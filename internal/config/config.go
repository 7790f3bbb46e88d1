package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"docmill/internal/docformat"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InputDir   string `toml:"input_dir"`
	OutputDir  string `toml:"output_dir"`
	LogDir     string `toml:"log_dir"`
	ScratchDir string `toml:"scratch_dir"`
}

// Convert contains conversion behavior settings shared by batch and watch
// runs.
type Convert struct {
	Workers          int      `toml:"workers"`
	Types            []string `toml:"types"`
	ValidatePDF      bool     `toml:"validate_pdf"`
	MarkdownFallback bool     `toml:"markdown_fallback"`
	MinFreeMiB       int64    `toml:"min_free_mib"`
}

// Watch contains debounce and reconciliation settings for the watch daemon.
type Watch struct {
	QuietIntervalMS int    `toml:"quiet_interval_ms"`
	SweepIntervalMS int    `toml:"sweep_interval_ms"`
	RescanSchedule  string `toml:"rescan_schedule"`
	ConvertExisting bool   `toml:"convert_existing"`
	LockFile        string `toml:"lock_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for docmill.
//
// Sections:
//   - Paths: input/output roots, log dir, optional scratch dir for staging
//   - Convert: worker count, type filter, validation and fallback toggles
//   - Watch: debounce intervals, rescan schedule, instance lock
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Convert Convert `toml:"convert"`
	Watch   Watch   `toml:"watch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/docmill/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file is not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("docmill.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories docmill writes to. Input and
// output roots are run-scoped (flags may override them) and are handled by
// preflight instead.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) != "" {
		if err := os.MkdirAll(c.Paths.ScratchDir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", c.Paths.ScratchDir, err)
		}
	}
	return nil
}

// WorkerCount resolves the configured worker count; zero means one worker
// per CPU.
func (c *Config) WorkerCount() int {
	if c.Convert.Workers > 0 {
		return c.Convert.Workers
	}
	return runtime.NumCPU()
}

// TypeFilter parses the configured type tokens into a scan filter.
func (c *Config) TypeFilter() (docformat.Filter, error) {
	return docformat.ParseFilter(c.Convert.Types)
}

// QuietInterval is the debounce quiet window for the watch daemon.
func (c *Config) QuietInterval() time.Duration {
	return time.Duration(c.Watch.QuietIntervalMS) * time.Millisecond
}

// SweepInterval is the cadence of the watch daemon's debounce-table sweep.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Watch.SweepIntervalMS) * time.Millisecond
}

// LockFilePath resolves the watch daemon instance lock location, defaulting
// into the log directory.
func (c *Config) LockFilePath() string {
	if strings.TrimSpace(c.Watch.LockFile) != "" {
		return c.Watch.LockFile
	}
	return filepath.Join(c.Paths.LogDir, "docmill-watch.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
