package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"docmill/internal/document"
)

// Markdown writes doc as plain Markdown. This is the fallback representation
// for documents whose content cannot be laid out as PDF, so it favours
// faithfulness over polish: every block appears in order, tables become pipe
// tables with the first row as header.
func Markdown(doc *document.Document, w io.Writer) error {
	out := bufio.NewWriter(w)
	first := true

	for _, block := range doc.Blocks {
		if !first {
			out.WriteString("\n")
		}
		first = false

		switch b := block.(type) {
		case document.Heading:
			out.WriteString(strings.Repeat("#", headingDepth(b.Level)))
			out.WriteString(" ")
			out.WriteString(b.Text)
			out.WriteString("\n")
		case document.Paragraph:
			out.WriteString(b.Text)
			out.WriteString("\n")
		case document.Table:
			writeMarkdownTable(out, b)
		default:
			return fmt.Errorf("unhandled block type %T", block)
		}
	}

	return out.Flush()
}

func headingDepth(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func writeMarkdownTable(out *bufio.Writer, t document.Table) {
	if len(t.Rows) == 0 {
		return
	}
	for i, row := range t.Rows {
		out.WriteString("|")
		for _, cell := range row {
			out.WriteString(" ")
			out.WriteString(escapeCell(cell))
			out.WriteString(" |")
		}
		out.WriteString("\n")
		if i == 0 {
			out.WriteString("|")
			for range row {
				out.WriteString(" --- |")
			}
			out.WriteString("\n")
		}
	}
}

func escapeCell(cell string) string {
	cell = strings.ReplaceAll(cell, "|", `\|`)
	return strings.ReplaceAll(cell, "\n", " ")
}
