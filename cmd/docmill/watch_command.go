package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docmill/internal/config"
	"docmill/internal/convert"
	"docmill/internal/logging"
	"docmill/internal/preflight"
	"docmill/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		inputFlag  string
		outputFlag string
		typeFlags  []string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and convert documents as they change",
		Long: "Watch runs in the foreground, converting supported documents under the\n" +
			"input directory whenever they settle after a change. It keeps running\n" +
			"through individual conversion failures and stops on SIGINT or SIGTERM\n" +
			"after draining in-flight conversions.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			runCfg := *cfg
			if cmd.Flags().Changed("type") {
				runCfg.Convert.Types = typeFlags
			}
			if cmd.Flags().Changed("workers") {
				runCfg.Convert.Workers = workers
			}
			return runWatch(cmd, &runCfg, inputFlag, outputFlag)
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Directory tree to watch")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory for converted PDFs")
	cmd.Flags().StringSliceVarP(&typeFlags, "type", "t", nil, "Restrict to document types (docx, xlsx, xls); repeatable")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversion workers (0 = one per CPU)")
	return cmd
}

func runWatch(cmd *cobra.Command, cfg *config.Config, inputFlag, outputFlag string) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	input, output, err := resolveRoots(cfg, inputFlag, outputFlag)
	if err != nil {
		return err
	}
	cfg.Paths.InputDir = input
	cfg.Paths.OutputDir = output

	checks := preflight.New(cfg).Run(input, output)
	if preflight.Failed(checks) {
		stderr := cmd.ErrOrStderr()
		fmt.Fprintln(stderr, renderChecksTable(checks, shouldColorize(stderr)))
		return fmt.Errorf("preflight checks failed for %s", input)
	}

	logger, err := watchRunLogger(cfg)
	if err != nil {
		return err
	}

	daemon, err := watch.NewDaemon(cfg, logger, convert.NewDispatcher(converterOptions(cfg), logger))
	if err != nil {
		return err
	}
	return daemon.Run(signalCtx)
}

// watchRunLogger opens a timestamped per-run log file alongside the console
// output, refreshes the docmill.log pointer, and prunes old run logs.
func watchRunLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stdout"}
	errorOutputs := []string{"stderr"}
	var logPath string
	if cfg.Paths.LogDir != "" {
		runID := time.Now().UTC().Format("20060102T150405.000Z")
		logPath = filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("docmill-%s.log", runID))
		outputs = append(outputs, logPath)
		errorOutputs = append(errorOutputs, logPath)
	}

	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if logPath != "" {
		if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
			fmt.Fprintf(os.Stderr, "warn: unable to update docmill.log link: %v\n", err)
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
			logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "docmill-*.log", Exclude: []string{logPath}},
		)
	}
	return logger, nil
}

// ensureCurrentLogPointer keeps docmill.log pointing at the newest run log.
// Filesystems without symlink support fall back to a hard link.
func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "docmill.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err == nil {
		return nil
	}
	return fmt.Errorf("link log pointer for %s", target)
}
