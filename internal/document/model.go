// Package document holds the renderer-independent representation produced by
// the format readers: an ordered sequence of text blocks plus a display title
// taken from the source file stem. Both the PDF and markdown renderers consume
// this model, so readers never need to know what output they feed.
package document

import (
	"path/filepath"
	"strings"
)

// Document is one parsed source file.
type Document struct {
	Title  string
	Blocks []Block
}

// Block is one renderable unit. Heading, Paragraph, and Table are the only
// implementations.
type Block interface {
	block()
}

// Heading is a section title. Level 1 renders largest.
type Heading struct {
	Level int
	Text  string
}

// Paragraph is a run of body text. An empty paragraph renders as vertical
// space.
type Paragraph struct {
	Text string
}

// Table is a rectangular grid of cell text. Rows may arrive ragged from the
// readers' sources; readers pad them to a uniform width before building one.
type Table struct {
	Rows [][]string
}

func (Heading) block()   {}
func (Paragraph) block() {}
func (Table) block()     {}

// Stem returns the base name of path without its extension, the display
// title for converted documents.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// trimTrailingBlank drops empty paragraphs at the tail of blocks so documents
// never end in dangling vertical space.
func trimTrailingBlank(blocks []Block) []Block {
	for len(blocks) > 0 {
		p, ok := blocks[len(blocks)-1].(Paragraph)
		if !ok || strings.TrimSpace(p.Text) != "" {
			break
		}
		blocks = blocks[:len(blocks)-1]
	}
	return blocks
}
