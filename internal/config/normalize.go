package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConvert()
	if err := c.normalizeWatch(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.InputDir = strings.TrimSpace(c.Paths.InputDir)
	if c.Paths.InputDir != "" {
		if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
			return fmt.Errorf("paths.input_dir: %w", err)
		}
	}
	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	if c.Paths.OutputDir != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	c.Paths.ScratchDir = strings.TrimSpace(c.Paths.ScratchDir)
	if c.Paths.ScratchDir != "" {
		if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
			return fmt.Errorf("paths.scratch_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeConvert() {
	if c.Convert.Workers < 0 {
		c.Convert.Workers = 0
	}
	if c.Convert.MinFreeMiB < 0 {
		c.Convert.MinFreeMiB = 0
	}
	types := c.Convert.Types[:0]
	for _, token := range c.Convert.Types {
		if trimmed := strings.ToLower(strings.TrimSpace(token)); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	c.Convert.Types = types
}

func (c *Config) normalizeWatch() error {
	var err error
	if c.Watch.QuietIntervalMS <= 0 {
		c.Watch.QuietIntervalMS = defaultQuietIntervalMS
	}
	if c.Watch.SweepIntervalMS <= 0 {
		c.Watch.SweepIntervalMS = defaultSweepIntervalMS
	}
	c.Watch.RescanSchedule = strings.TrimSpace(c.Watch.RescanSchedule)
	c.Watch.LockFile = strings.TrimSpace(c.Watch.LockFile)
	if c.Watch.LockFile != "" {
		if c.Watch.LockFile, err = expandPath(c.Watch.LockFile); err != nil {
			return fmt.Errorf("watch.lock_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
