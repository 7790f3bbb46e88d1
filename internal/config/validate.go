package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConvert() error {
	if _, err := c.TypeFilter(); err != nil {
		return fmt.Errorf("convert.types: %w", err)
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.QuietIntervalMS <= 0 {
		return errors.New("watch.quiet_interval_ms must be positive")
	}
	if c.Watch.SweepIntervalMS <= 0 {
		return errors.New("watch.sweep_interval_ms must be positive")
	}
	if c.Watch.RescanSchedule != "" {
		if _, err := cron.ParseStandard(c.Watch.RescanSchedule); err != nil {
			return fmt.Errorf("watch.rescan_schedule: %w", err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
