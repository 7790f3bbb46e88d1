package batch

import (
	"time"

	"docmill/internal/convert"
)

// Failure identifies one job that produced no output.
type Failure struct {
	Source string         `json:"source"`
	Reason convert.Reason `json:"reason"`
	Detail string         `json:"detail"`
}

// Summary aggregates a finished batch. Counts partition the total: every job
// is exactly one of succeeded, fallback, failed, or skipped.
type Summary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Fallbacks int           `json:"fallbacks"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Bytes     int64         `json:"bytes"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Failures  []Failure     `json:"failures,omitempty"`
}

// Summarize folds outcomes into a Summary. Outcomes arrive in queue order and
// the failure list preserves it, so reports are reproducible run to run.
func Summarize(outcomes []convert.Outcome, elapsed time.Duration) *Summary {
	s := &Summary{Total: len(outcomes), Elapsed: elapsed}
	for _, outcome := range outcomes {
		s.Bytes += outcome.Bytes
		switch {
		case outcome.Skipped:
			s.Skipped++
		case outcome.Succeeded():
			s.Succeeded++
		case outcome.FellBack():
			s.Fallbacks++
		default:
			s.Failed++
			detail := ""
			if outcome.Err != nil {
				detail = outcome.Err.Error()
			}
			s.Failures = append(s.Failures, Failure{
				Source: outcome.Job.Source,
				Reason: outcome.Reason,
				Detail: detail,
			})
		}
	}
	return s
}

// Clean reports whether every job published its PDF.
func (s *Summary) Clean() bool {
	return s.Failed == 0 && s.Skipped == 0 && s.Fallbacks == 0
}
