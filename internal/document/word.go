package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// ReadWord parses a .docx file into the shared document model. Body
// paragraphs become Paragraph blocks with their run text concatenated; tables
// become Table blocks of plain cell text. Constructs the parser does not
// surface (images, fields, footnotes) are skipped rather than failed.
func ReadWord(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}

	parsed, err := docx.Parse(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc := &Document{Title: Stem(path)}
	for _, item := range parsed.Document.Body.Items {
		switch item := item.(type) {
		case *docx.Paragraph:
			doc.Blocks = append(doc.Blocks, Paragraph{Text: paragraphText(item)})
		case *docx.Table:
			if table, ok := wordTable(item); ok {
				doc.Blocks = append(doc.Blocks, table)
			}
		}
	}
	doc.Blocks = trimTrailingBlank(doc.Blocks)
	return doc, nil
}

func paragraphText(p *docx.Paragraph) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, part := range run.Children {
			switch part := part.(type) {
			case *docx.Text:
				sb.WriteString(part.Text)
			case *docx.Tab:
				sb.WriteByte('\t')
			}
		}
	}
	return sb.String()
}

func wordTable(t *docx.Table) (Table, bool) {
	if t == nil || len(t.TableRows) == 0 {
		return Table{}, false
	}
	width := 0
	rows := make([][]string, 0, len(t.TableRows))
	for _, row := range t.TableRows {
		if row == nil {
			continue
		}
		cells := make([]string, 0, len(row.TableCells))
		for _, cell := range row.TableCells {
			if cell == nil {
				cells = append(cells, "")
				continue
			}
			parts := make([]string, 0, len(cell.Paragraphs))
			for _, p := range cell.Paragraphs {
				if text := paragraphText(p); text != "" {
					parts = append(parts, text)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		if len(cells) > width {
			width = len(cells)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || width == 0 {
		return Table{}, false
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return Table{Rows: rows}, true
}
