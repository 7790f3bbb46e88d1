// Package batch executes job queues on a bounded worker pool and reports the
// aggregate result. A failing job never stops the batch; it is recorded and
// the remaining jobs continue.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"docmill/internal/convert"
	"docmill/internal/logging"
	"docmill/internal/progress"
)

// writeFailureAlertThreshold is the run of consecutive write failures that
// signals the output location itself is broken rather than individual inputs.
const writeFailureAlertThreshold = 3

// Orchestrator drives whole batches through a shared pool.
type Orchestrator struct {
	pool   *Pool
	logger *slog.Logger
	streak *StreakMonitor
}

// NewOrchestrator returns an orchestrator submitting to pool.
func NewOrchestrator(pool *Pool, logger *slog.Logger) *Orchestrator {
	componentLogger := logging.NewComponentLogger(logger, "batch")
	return &Orchestrator{
		pool:   pool,
		logger: componentLogger,
		streak: NewStreakMonitor(componentLogger),
	}
}

// Run submits every job, waits for all of them to finish, and summarizes.
// Cancellation stops new work but never truncates the summary: jobs that did
// not run are reported as skipped, and ctx.Err is returned alongside.
func (o *Orchestrator) Run(ctx context.Context, jobs []convert.Job, sink progress.Sink) (*Summary, error) {
	start := time.Now()
	if sink == nil {
		sink = progress.Nop{}
	}
	sink.Start(len(jobs))

	outcomes := make([]convert.Outcome, len(jobs))
	completions := make(chan convert.Outcome, len(jobs))

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		o.collect(completions, sink)
	}()

	var wg sync.WaitGroup
	for i := range jobs {
		slot := i
		job := jobs[i]
		wg.Add(1)
		task := Task{Job: job, Done: func(outcome convert.Outcome) {
			outcomes[slot] = outcome
			completions <- outcome
			wg.Done()
		}}
		if err := o.pool.Submit(ctx, task); err != nil {
			outcome := convert.Outcome{Job: job, Skipped: true}
			outcomes[slot] = outcome
			completions <- outcome
			wg.Done()
		}
	}

	wg.Wait()
	close(completions)
	<-collectorDone
	sink.Finish()

	summary := Summarize(outcomes, time.Since(start))
	o.logger.Info("batch complete",
		logging.Int(logging.FieldBatchTotal, summary.Total),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("fallbacks", summary.Fallbacks),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int64("bytes", summary.Bytes),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, ctx.Err()
}

// collect serializes sink updates and per-file logging onto one goroutine and
// watches for runs of write failures.
func (o *Orchestrator) collect(completions <-chan convert.Outcome, sink progress.Sink) {
	for outcome := range completions {
		sink.Advance(outcome)
		LogOutcome(o.logger, outcome)
		o.streak.Observe(outcome)
	}
}
