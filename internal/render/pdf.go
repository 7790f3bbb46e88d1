package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"docmill/internal/document"
)

const (
	pageMargin  = 20.0
	bodySize    = 11.0
	tableSize   = 9.0
	bodyLine    = 5.5
	tableLine   = 6.0
	cellPadding = 2.0
)

// PDF lays doc out on A4 portrait pages and writes the result to w. An empty
// document still produces a single valid page.
func PDF(doc *document.Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("docmill", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case document.Heading:
			writeHeading(pdf, tr, b)
		case document.Paragraph:
			pdf.SetFont("Helvetica", "", bodySize)
			pdf.MultiCell(0, bodyLine, tr(b.Text), "", "L", false)
			pdf.Ln(2)
		case document.Table:
			writeTable(pdf, tr, contentWidth, b)
		default:
			return fmt.Errorf("unhandled block type %T", block)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("emit pdf: %w", err)
	}
	return nil
}

func writeHeading(pdf *fpdf.Fpdf, tr func(string) string, h document.Heading) {
	size, line := headingStyle(h.Level)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, line, tr(h.Text), "", "L", false)
	pdf.Ln(2)
}

func headingStyle(level int) (size, line float64) {
	switch {
	case level <= 1:
		return 16, 8
	case level == 2:
		return 13, 7
	default:
		return bodySize, 6
	}
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, contentWidth float64, t document.Table) {
	if len(t.Rows) == 0 || len(t.Rows[0]) == 0 {
		return
	}
	colWidth := contentWidth / float64(len(t.Rows[0]))

	pdf.SetFont("Helvetica", "", tableSize)
	pdf.SetFillColor(240, 240, 240)
	ellipsis := tr("…")
	for i, row := range t.Rows {
		fill := i == 0 && len(t.Rows) > 1
		for _, cell := range row {
			text := fitCell(pdf, tr(cell), colWidth-cellPadding, ellipsis)
			pdf.CellFormat(colWidth, tableLine, text, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

// fitCell truncates text to the given width, marking the cut with an
// ellipsis. Table cells never wrap; overly long values would otherwise bleed
// into neighbouring columns.
func fitCell(pdf *fpdf.Fpdf, text string, width float64, ellipsis string) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if pdf.GetStringWidth(candidate) <= width {
			return candidate
		}
	}
	return ellipsis
}
