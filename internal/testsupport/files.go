package testsupport

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte. Useful for
// unsupported inputs and for corrupt fixtures: the pattern is neither valid
// zip nor OOXML, so document readers reject it at open time.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteWordFile creates a minimal OOXML word document containing the given
// paragraphs, one w:p per entry. Tab characters in a paragraph become w:tab
// elements.
func WriteWordFile(t testing.TB, path string, paragraphs ...string) {
	t.Helper()

	var body bytes.Buffer
	for _, p := range paragraphs {
		writeParagraphXML(&body, p)
	}
	writeWordPackage(t, path, body.Bytes())
}

// WriteWordTableFile creates a minimal OOXML word document whose body is a
// single table with the given rows.
func WriteWordTableFile(t testing.TB, path string, rows [][]string) {
	t.Helper()

	var body bytes.Buffer
	body.WriteString("<w:tbl>")
	for _, row := range rows {
		body.WriteString("<w:tr>")
		for _, cell := range row {
			body.WriteString("<w:tc>")
			writeParagraphXML(&body, cell)
			body.WriteString("</w:tc>")
		}
		body.WriteString("</w:tr>")
	}
	body.WriteString("</w:tbl>")
	writeWordPackage(t, path, body.Bytes())
}

func writeParagraphXML(buf *bytes.Buffer, text string) {
	buf.WriteString("<w:p><w:r>")
	for i, segment := range strings.Split(text, "\t") {
		if i > 0 {
			buf.WriteString("<w:tab/>")
		}
		if segment == "" {
			continue
		}
		buf.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(buf, []byte(segment))
		buf.WriteString("</w:t>")
	}
	buf.WriteString("</w:r></w:p>")
}

func writeWordPackage(t testing.TB, path string, body []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + string(body) + `</w:body></w:document>`},
	}
	for _, part := range parts {
		entry, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", part.name, err)
		}
		if _, err := entry.Write([]byte(part.content)); err != nil {
			t.Fatalf("zip write %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
}

// SheetFixture describes one sheet of a generated workbook.
type SheetFixture struct {
	Name string
	Rows [][]string
}

// WriteWorkbookFile creates an OOXML workbook with the given sheets in order.
// With no sheets the workbook keeps the single default empty sheet.
func WriteWorkbookFile(t testing.TB, path string, sheets ...SheetFixture) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	book := excelize.NewFile()
	defer book.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := book.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename default sheet: %v", err)
			}
		} else {
			if _, err := book.NewSheet(sheet.Name); err != nil {
				t.Fatalf("add sheet %s: %v", sheet.Name, err)
			}
		}
		for r, row := range sheet.Rows {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name (%d,%d): %v", c+1, r+1, err)
				}
				if err := book.SetCellValue(sheet.Name, cell, value); err != nil {
					t.Fatalf("set cell %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
}
