package convert

import (
	"context"
	"log/slog"

	"docmill/internal/document"
	"docmill/internal/logging"
)

// SheetConverter converts workbooks to PDF. Legacy binary .xls files reach it
// too; the reader rejects them and the job fails classified as an unreadable
// source.
type SheetConverter struct {
	pub  *publisher
	read func(string) (*document.Document, error)
}

// NewSheetConverter builds the standard workbook converter.
func NewSheetConverter(opts Options, logger *slog.Logger) *SheetConverter {
	return &SheetConverter{
		pub:  newPublisher(opts, logging.NewComponentLogger(logger, "convert.sheet")),
		read: document.ReadWorkbook,
	}
}

func (c *SheetConverter) Convert(ctx context.Context, job Job) (Result, error) {
	doc, err := c.read(job.Source)
	if err != nil {
		return Result{}, Wrap(ErrUnreadableSource, "sheet", "read", job.Source, err)
	}
	return c.pub.publish(job, doc)
}
