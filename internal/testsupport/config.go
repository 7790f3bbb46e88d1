package testsupport

import (
	"path/filepath"
	"testing"

	"docmill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Convert.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the worker count on the test config.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.Workers = n
	}
}

// WithTypes restricts the conversion type filter on the test config.
func WithTypes(types ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.Types = types
	}
}

// WithMarkdownFallback enables the degraded Markdown output path.
func WithMarkdownFallback() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.MarkdownFallback = true
	}
}

// WithoutPDFValidation disables post-render structural validation, for tests
// that exercise the write path with synthetic content.
func WithoutPDFValidation() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Convert.ValidatePDF = false
	}
}

// WithWatchIntervals overrides the debounce quiet and sweep intervals, both
// in milliseconds.
func WithWatchIntervals(quietMS, sweepMS int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.QuietIntervalMS = quietMS
		b.cfg.Watch.SweepIntervalMS = sweepMS
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
