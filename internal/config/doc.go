// Package config loads, normalizes, and validates docmill configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from ~/.config/docmill/config.toml or a
// project-local docmill.toml. The Config type centralizes every knob the batch
// converter and watch daemon need: directory roots, worker counts, debounce
// intervals, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
