package batch

import (
	"log/slog"
	"sync"

	"docmill/internal/convert"
	"docmill/internal/logging"
)

// LogOutcome writes the standard per-job log line for an outcome. Both batch
// runs and the watch daemon report through it so every conversion looks the
// same in the logs.
func LogOutcome(logger *slog.Logger, outcome convert.Outcome) {
	switch {
	case outcome.Skipped:
		logger.Debug("job skipped",
			logging.String(logging.FieldJobID, outcome.Job.ID),
			logging.String(logging.FieldSource, outcome.Job.Source),
		)
	case outcome.Succeeded():
		logger.Info("converted",
			logging.String(logging.FieldJobID, outcome.Job.ID),
			logging.String(logging.FieldSource, outcome.Job.Source),
			logging.String(logging.FieldDestination, outcome.Job.Destination),
			logging.Int64("bytes", outcome.Bytes),
			logging.Duration("elapsed", outcome.Elapsed),
		)
	case outcome.FellBack():
		logging.WarnWithContext(logger, "published markdown fallback", "fallback_published",
			logging.String(logging.FieldJobID, outcome.Job.ID),
			logging.String(logging.FieldSource, outcome.Job.Source),
			logging.String("fallback", outcome.Fallback),
			logging.Error(outcome.Err),
			logging.String(logging.FieldImpact, "a markdown rendition was published instead of the PDF"),
		)
	default:
		logging.ErrorWithContext(logger, "conversion failed", "job_failed",
			logging.String(logging.FieldJobID, outcome.Job.ID),
			logging.String(logging.FieldSource, outcome.Job.Source),
			logging.String("reason", string(outcome.Reason)),
			logging.Error(outcome.Err),
			logging.String(logging.FieldErrorHint, "inspect the source document"),
			logging.String(logging.FieldImpact, "no output was produced for this file"),
		)
	}
}

// StreakMonitor raises one alert when write failures arrive back to back,
// which points at the output location rather than individual documents. Safe
// for concurrent use.
type StreakMonitor struct {
	mu        sync.Mutex
	logger    *slog.Logger
	threshold int
	count     int
}

// NewStreakMonitor returns a monitor with the standard threshold.
func NewStreakMonitor(logger *slog.Logger) *StreakMonitor {
	return &StreakMonitor{logger: logger, threshold: writeFailureAlertThreshold}
}

// Observe feeds one outcome into the streak. Skipped jobs leave it untouched;
// anything other than a write failure resets it.
func (m *StreakMonitor) Observe(outcome convert.Outcome) {
	if outcome.Skipped {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if outcome.Err != nil && outcome.Reason == convert.ReasonWriteFailure {
		m.count++
		if m.count == m.threshold {
			logging.ErrorWithContext(m.logger, "repeated write failures", "write_failure_streak",
				logging.Int("count", m.count),
				logging.String(logging.FieldErrorHint, "check free space and permissions on the output directory"),
				logging.String(logging.FieldImpact, "conversions are completing but nothing is being published"),
				logging.Alert("output location failing"),
			)
		}
		return
	}
	m.count = 0
}
