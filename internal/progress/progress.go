// Package progress reports batch completion to a human. The interactive sink
// draws a terminal bar; the log sink emits sampled progress lines suitable
// for redirected output and the watch daemon.
package progress

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"docmill/internal/convert"
	"docmill/internal/logging"
)

// Sink receives batch lifecycle events. Implementations are not safe for
// concurrent use; the orchestrator funnels all calls through one goroutine.
type Sink interface {
	Start(total int)
	Advance(outcome convert.Outcome)
	Finish()
}

// Bar renders an interactive terminal progress bar.
type Bar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewBar returns a Sink drawing to out, normally a terminal stderr.
func NewBar(out io.Writer) *Bar {
	return &Bar{out: out}
}

func (b *Bar) Start(total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) Advance(outcome convert.Outcome) {
	if b.bar == nil {
		return
	}
	b.bar.Describe(filepath.Base(outcome.Job.Source))
	_ = b.bar.Add(1)
}

func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}

// Log emits sampled progress lines through the structured logger.
type Log struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	done    int
}

// NewLog returns a Sink that logs every few percent of completion instead of
// every file.
func NewLog(logger *slog.Logger) *Log {
	return &Log{
		logger:  logging.NewComponentLogger(logger, "batch"),
		sampler: logging.NewProgressSampler(5),
	}
}

func (l *Log) Start(total int) {
	l.total = total
	l.done = 0
	l.sampler.Reset()
	l.logger.Info("batch started", logging.Int(logging.FieldBatchTotal, total))
}

func (l *Log) Advance(outcome convert.Outcome) {
	l.done++
	percent := 100.0
	if l.total > 0 {
		percent = float64(l.done) / float64(l.total) * 100
	}
	if l.sampler.ShouldLog(percent, "converting", "") {
		l.logger.Info("batch progress",
			logging.Int("done", l.done),
			logging.Int(logging.FieldBatchTotal, l.total),
			logging.String(logging.FieldSource, outcome.Job.Source),
		)
	}
}

func (l *Log) Finish() {
	l.logger.Info("batch finished", logging.Int(logging.FieldBatchTotal, l.total))
}

// Nop discards all progress events.
type Nop struct{}

func (Nop) Start(int)               {}
func (Nop) Advance(convert.Outcome) {}
func (Nop) Finish()                 {}
