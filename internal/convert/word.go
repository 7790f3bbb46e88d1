package convert

import (
	"context"
	"log/slog"

	"docmill/internal/document"
	"docmill/internal/logging"
)

// WordConverter converts OOXML word-processing documents to PDF.
type WordConverter struct {
	pub  *publisher
	read func(string) (*document.Document, error)
}

// NewWordConverter builds the standard .docx converter.
func NewWordConverter(opts Options, logger *slog.Logger) *WordConverter {
	return &WordConverter{
		pub:  newPublisher(opts, logging.NewComponentLogger(logger, "convert.word")),
		read: document.ReadWord,
	}
}

func (c *WordConverter) Convert(ctx context.Context, job Job) (Result, error) {
	doc, err := c.read(job.Source)
	if err != nil {
		return Result{}, Wrap(ErrUnreadableSource, "word", "read", job.Source, err)
	}
	return c.pub.publish(job, doc)
}
