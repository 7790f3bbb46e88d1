package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"docmill/internal/preflight"
	"docmill/internal/progress"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorizeStatus(status string, passed, colorize bool) string {
	if !colorize {
		return status
	}
	if passed {
		return ansiGreen + status + ansiReset
	}
	return ansiRed + status + ansiReset
}

// renderChecksTable formats preflight results for the terminal.
func renderChecksTable(results []preflight.Result, colorize bool) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		status := "OK"
		if !result.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{
			result.Name,
			colorizeStatus(status, result.Passed, colorize),
			result.Detail,
		})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, nil)
}

// newProgressSink picks the progress reporter for a batch run: an interactive
// bar when stderr is a terminal, sampled log lines otherwise. JSON runs and
// --no-progress suppress the bar so machine output stays clean.
func newProgressSink(stderr io.Writer, sink progress.Sink, disabled bool) progress.Sink {
	if !disabled && shouldColorize(stderr) {
		return progress.NewBar(stderr)
	}
	return sink
}
