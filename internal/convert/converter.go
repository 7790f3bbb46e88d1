// Package convert turns individual source documents into PDFs. It owns the
// converter interface, the per-kind implementations, and the failure
// classification scheme the rest of docmill relies on.
//
// Classification contract: open and parse problems on the source side are
// tagged ErrUnreadableSource, content the renderer cannot express is tagged
// ErrUnsupportedContent, and everything on the destination side (temp files,
// validation, rename) is tagged ErrWriteFailure. On any failure nothing is
// left at the destination path and a previously published PDF there stays
// intact.
package convert

import (
	"context"
	"fmt"
	"log/slog"

	"docmill/internal/docformat"
)

// Converter produces the destination PDF for one job.
type Converter interface {
	Convert(ctx context.Context, job Job) (Result, error)
}

// Options configures the concrete converters.
type Options struct {
	// ScratchDir stages temp files on a different filesystem when set.
	// Empty means alongside the destination.
	ScratchDir string
	// ValidatePDF runs a structural check on rendered output before it is
	// published.
	ValidatePDF bool
	// MarkdownFallback publishes a markdown rendition when PDF rendering
	// fails for a readable source.
	MarkdownFallback bool
}

// Dispatcher routes jobs to the converter registered for their kind.
type Dispatcher struct {
	word  Converter
	sheet Converter
}

// NewDispatcher wires the standard converters for every supported kind.
func NewDispatcher(opts Options, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		word:  NewWordConverter(opts, logger),
		sheet: NewSheetConverter(opts, logger),
	}
}

// NewDispatcherWithConverters exists for tests and callers that substitute
// converter implementations.
func NewDispatcherWithConverters(word, sheet Converter) *Dispatcher {
	return &Dispatcher{word: word, sheet: sheet}
}

// Convert executes the job with the converter for its kind. A job carrying an
// unsupported kind never comes out of the queue; reaching the default branch
// is reported as unsupported content rather than a panic.
func (d *Dispatcher) Convert(ctx context.Context, job Job) (Result, error) {
	switch job.Kind {
	case docformat.KindWord:
		return d.word.Convert(ctx, job)
	case docformat.KindSpreadsheet:
		return d.sheet.Convert(ctx, job)
	default:
		return Result{}, Wrap(ErrUnsupportedContent, "convert", "dispatch",
			fmt.Sprintf("no converter for kind %q", job.Kind), nil)
	}
}
