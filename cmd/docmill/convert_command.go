package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"docmill/internal/batch"
	"docmill/internal/config"
	"docmill/internal/convert"
	"docmill/internal/logging"
	"docmill/internal/preflight"
	"docmill/internal/progress"
	"docmill/internal/scan"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		inputFlag  string
		outputFlag string
		typeFlags  []string
		workers    int
		jsonOut    bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert every supported document under a directory tree",
		Long: "Convert recursively scans the input directory, converts every supported\n" +
			"document to PDF under the output directory (mirroring the layout), and\n" +
			"prints a summary. Individual file failures are reported but do not fail\n" +
			"the run; only directory-level problems produce a non-zero exit.",
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
			return runConvert(cmd, &runCfg, inputFlag, outputFlag, jsonOut, noProgress)
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Directory tree to convert")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory for converted PDFs")
	cmd.Flags().StringSliceVarP(&typeFlags, "type", "t", nil, "Restrict to document types (docx, xlsx, xls); repeatable")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent conversion workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the summary as JSON")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func runConvert(cmd *cobra.Command, cfg *config.Config, inputFlag, outputFlag string, jsonOut, noProgress bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	input, output, err := resolveRoots(cfg, inputFlag, outputFlag)
	if err != nil {
		return err
	}
	filter, err := cfg.TypeFilter()
	if err != nil {
		return err
	}

	logger, err := runLogger(cfg, jsonOut)
	if err != nil {
		return err
	}

	checks := preflight.New(cfg).Run(input, output)
	if preflight.Failed(checks) {
		stderr := cmd.ErrOrStderr()
		fmt.Fprintln(stderr, renderChecksTable(checks, shouldColorize(stderr)))
		return fmt.Errorf("preflight checks failed for %s", input)
	}

	jobs, err := scan.New(logger).Build(input, output, filter)
	if err != nil {
		return err
	}

	summary := batch.Summarize(nil, 0)
	var runErr error
	if len(jobs) > 0 {
		dispatcher := convert.NewDispatcher(converterOptions(cfg), logger)
		pool := batch.NewPool(dispatcher, logger, cfg.WorkerCount(), len(jobs))
		pool.Start(signalCtx)
		sink := newProgressSink(os.Stderr, progress.NewLog(logger), jsonOut || noProgress)
		summary, runErr = batch.NewOrchestrator(pool, logger).Run(signalCtx, jobs, sink)
		pool.Stop(signalCtx)
	}

	if jsonOut {
		if err := writeJSON(cmd, summary); err != nil {
			return err
		}
	} else {
		printSummary(cmd.OutOrStdout(), summary)
	}
	return runErr
}

// runLogger builds the batch logger. JSON runs keep stdout clean for the
// encoded summary and log to stderr instead.
func runLogger(cfg *config.Config, jsonOut bool) (*slog.Logger, error) {
	if !jsonOut {
		return logging.NewFromConfig(cfg)
	}
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "docmill.log"))
	}
	return logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
	})
}

// converterOptions maps conversion config onto the converter knobs.
func converterOptions(cfg *config.Config) convert.Options {
	return convert.Options{
		ScratchDir:       cfg.Paths.ScratchDir,
		ValidatePDF:      cfg.Convert.ValidatePDF,
		MarkdownFallback: cfg.Convert.MarkdownFallback,
	}
}

func printSummary(out io.Writer, summary *batch.Summary) {
	rows := [][]string{
		{"Total", strconv.Itoa(summary.Total)},
		{"Succeeded", strconv.Itoa(summary.Succeeded)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	if summary.Fallbacks > 0 {
		rows = append(rows, []string{"Markdown fallbacks", strconv.Itoa(summary.Fallbacks)})
	}
	if summary.Skipped > 0 {
		rows = append(rows, []string{"Skipped", strconv.Itoa(summary.Skipped)})
	}
	rows = append(rows,
		[]string{"Output size", humanize.IBytes(uint64(summary.Bytes))},
		[]string{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
	)
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(summary.Failures) > 0 {
		failureRows := make([][]string, 0, len(summary.Failures))
		for _, failure := range summary.Failures {
			failureRows = append(failureRows, []string{failure.Source, string(failure.Reason), failure.Detail})
		}
		fmt.Fprintln(out, renderTable([]string{"Source", "Reason", "Detail"}, failureRows, nil))
	}
}
