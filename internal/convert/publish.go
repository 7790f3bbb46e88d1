package convert

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"docmill/internal/document"
	"docmill/internal/fileutil"
	"docmill/internal/logging"
	"docmill/internal/render"
)

// publisher owns the render-and-install half of a conversion, shared by all
// converters. Render functions are fields so tests can force layout failures.
type publisher struct {
	opts      Options
	logger    *slog.Logger
	renderPDF func(*document.Document, io.Writer) error
	renderMD  func(*document.Document, io.Writer) error
}

func newPublisher(opts Options, logger *slog.Logger) *publisher {
	return &publisher{
		opts:      opts,
		logger:    logger,
		renderPDF: render.PDF,
		renderMD:  render.Markdown,
	}
}

// publish renders doc and atomically installs the output for job. Rendering
// happens fully in memory so a render failure can never leave bytes on disk;
// the write path only sees complete documents.
func (p *publisher) publish(job Job, doc *document.Document) (Result, error) {
	var pdf bytes.Buffer
	if renderErr := p.renderPDF(doc, &pdf); renderErr != nil {
		wrapped := Wrap(ErrUnsupportedContent, job.Kind.String(), "render pdf", job.Source, renderErr)
		if !p.opts.MarkdownFallback {
			return Result{}, wrapped
		}
		res, mdErr := p.publishMarkdown(job, doc)
		if mdErr != nil {
			logging.WarnWithContext(p.logger, "markdown fallback failed; job fails on the original render error", "fallback_failed",
				logging.String(logging.FieldSource, job.Source),
				logging.Error(mdErr),
				logging.String(logging.FieldErrorHint, "check output directory permissions"),
			)
			return Result{}, wrapped
		}
		return res, wrapped
	}

	var verify func(string) error
	if p.opts.ValidatePDF {
		verify = render.ValidatePDF
	}
	n, err := fileutil.WriteFileAtomic(job.Destination, p.opts.ScratchDir, bytes.NewReader(pdf.Bytes()), verify)
	if err != nil {
		return Result{}, Wrap(ErrWriteFailure, job.Kind.String(), "publish", job.Destination, err)
	}
	return Result{Bytes: n}, nil
}

func (p *publisher) publishMarkdown(job Job, doc *document.Document) (Result, error) {
	var md bytes.Buffer
	if err := p.renderMD(doc, &md); err != nil {
		return Result{}, err
	}
	target := markdownPath(job.Destination)
	n, err := fileutil.WriteFileAtomic(target, p.opts.ScratchDir, bytes.NewReader(md.Bytes()), nil)
	if err != nil {
		return Result{}, err
	}
	return Result{Bytes: n, Fallback: target}, nil
}

func markdownPath(dst string) string {
	return strings.TrimSuffix(dst, filepath.Ext(dst)) + ".md"
}
