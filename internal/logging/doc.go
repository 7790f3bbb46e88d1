// Package logging assembles the structured slog loggers and formatting
// helpers used across docmill.
//
// It owns the configurable console/JSON handlers, centralizes level and
// output plumbing, and defines the standardized attribute keys (component,
// job_id, source, destination) so every subsystem emits log lines with the
// same shape. The package also provides a no-op logger for tests and wiring
// code that cannot fail, a sampler that keeps progress logging quiet, and
// retention pruning for the log directory.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape and routing guarantees as the rest of the
// system.
package logging
