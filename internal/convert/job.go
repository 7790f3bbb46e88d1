package convert

import (
	"time"

	"github.com/google/uuid"

	"docmill/internal/docformat"
)

// Job describes one source document and the PDF it should become. A job is
// immutable after creation and consumed exactly once.
type Job struct {
	ID          string
	Source      string
	Destination string
	Kind        docformat.Kind
}

// NewJob mints a job with a fresh identifier.
func NewJob(source, destination string, kind docformat.Kind) Job {
	return Job{
		ID:          uuid.NewString(),
		Source:      source,
		Destination: destination,
		Kind:        kind,
	}
}

// Result carries publication details back from a converter.
type Result struct {
	// Bytes is the size of the published output file.
	Bytes int64
	// Fallback is the path of the markdown document published after a PDF
	// rendering failure. Empty unless the fallback fired.
	Fallback string
}

// Outcome records what happened to one job. Exactly one outcome exists per
// dispatched job.
type Outcome struct {
	Job      Job
	Err      error
	Reason   Reason
	Fallback string
	Bytes    int64
	Elapsed  time.Duration
	Skipped  bool
}

// Succeeded reports whether the job published its PDF.
func (o Outcome) Succeeded() bool {
	return !o.Skipped && o.Err == nil
}

// FellBack reports whether a markdown fallback was published in place of
// the PDF.
func (o Outcome) FellBack() bool {
	return o.Fallback != ""
}

// Failed reports whether the job failed outright, with no output published.
func (o Outcome) Failed() bool {
	return !o.Skipped && o.Err != nil && o.Fallback == ""
}
