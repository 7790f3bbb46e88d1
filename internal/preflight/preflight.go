package preflight

import (
	"strings"

	"docmill/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Checker validates the environment before any conversion work starts.
type Checker struct {
	cfg    *config.Config
	statfs statfsFunc
}

// New builds a checker for the given config.
func New(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg, statfs: realStatfs}
}

// Run executes every applicable check. The input and output roots are run
// arguments rather than config fields, so they are passed in explicitly.
func (c *Checker) Run(inputDir, outputDir string) []Result {
	results := []Result{
		CheckInputDir(inputDir),
		CheckOutputDir(outputDir),
	}
	if scratch := strings.TrimSpace(c.cfg.Paths.ScratchDir); scratch != "" {
		results = append(results, CheckScratchDir(scratch))
	}
	if c.cfg.Convert.MinFreeMiB > 0 {
		results = append(results, c.checkFreeSpace(outputDir))
	}
	return results
}

// Failed reports whether any result in the set did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}
