package main

import (
	"errors"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"docmill/internal/config"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// resolveRoots merges flag values over configured defaults for the input and
// output directories. Both are required one way or the other.
func resolveRoots(cfg *config.Config, inputFlag, outputFlag string) (string, string, error) {
	input := strings.TrimSpace(inputFlag)
	if input == "" {
		input = cfg.Paths.InputDir
	}
	output := strings.TrimSpace(outputFlag)
	if output == "" {
		output = cfg.Paths.OutputDir
	}
	if input == "" {
		return "", "", errors.New("no input directory: pass --input or set paths.input_dir")
	}
	if output == "" {
		return "", "", errors.New("no output directory: pass --output or set paths.output_dir")
	}

	input, err := config.ExpandPath(input)
	if err != nil {
		return "", "", err
	}
	output, err = config.ExpandPath(output)
	if err != nil {
		return "", "", err
	}
	return input, output, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
