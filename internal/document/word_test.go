package document_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"docmill/internal/document"
	"docmill/internal/testsupport"
)

func TestReadWordParagraphs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	testsupport.WriteWordFile(t, path,
		"Quarterly Report",
		"Revenue grew in every region.",
	)

	doc, err := document.ReadWord(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "report" {
		t.Errorf("Title = %q, want %q", doc.Title, "report")
	}

	want := []document.Block{
		document.Paragraph{Text: "Quarterly Report"},
		document.Paragraph{Text: "Revenue grew in every region."},
	}
	if !reflect.DeepEqual(doc.Blocks, want) {
		t.Fatalf("Blocks = %#v, want %#v", doc.Blocks, want)
	}
}

func TestReadWordPreservesTabsAndInteriorBlanks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabbed.docx")
	testsupport.WriteWordFile(t, path,
		"Name\tValue",
		"",
		"After the gap.",
	)

	doc, err := document.ReadWord(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []document.Block{
		document.Paragraph{Text: "Name\tValue"},
		document.Paragraph{Text: ""},
		document.Paragraph{Text: "After the gap."},
	}
	if !reflect.DeepEqual(doc.Blocks, want) {
		t.Fatalf("Blocks = %#v, want %#v", doc.Blocks, want)
	}
}

func TestReadWordTrimsTrailingBlankParagraphs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padded.docx")
	testsupport.WriteWordFile(t, path, "Body text.", "", "")

	doc, err := document.ReadWord(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("Blocks = %#v, want single paragraph", doc.Blocks)
	}
}

func TestReadWordTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.docx")
	testsupport.WriteWordTableFile(t, path, [][]string{
		{"Name", "Role"},
		{"Ada", "Engineer"},
	})

	doc, err := document.ReadWord(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []document.Block{
		document.Table{Rows: [][]string{
			{"Name", "Role"},
			{"Ada", "Engineer"},
		}},
	}
	if !reflect.DeepEqual(doc.Blocks, want) {
		t.Fatalf("Blocks = %#v, want %#v", doc.Blocks, want)
	}
}

func TestReadWordPadsRaggedTableRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.docx")
	testsupport.WriteWordTableFile(t, path, [][]string{
		{"a", "b", "c"},
		{"d"},
	})

	doc, err := document.ReadWord(path)
	if err != nil {
		t.Fatal(err)
	}
	table, ok := doc.Blocks[0].(document.Table)
	if !ok {
		t.Fatalf("Blocks[0] = %#v, want Table", doc.Blocks[0])
	}
	want := [][]string{
		{"a", "b", "c"},
		{"d", "", ""},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Fatalf("Rows = %#v, want %#v", table.Rows, want)
	}
}

func TestReadWordRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.docx")
	testsupport.WriteFile(t, path, 256)

	if _, err := document.ReadWord(path); err == nil {
		t.Fatal("expected parse error for corrupt file")
	}
}

func TestReadWordMissingFile(t *testing.T) {
	if _, err := document.ReadWord(filepath.Join(t.TempDir(), "absent.docx")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/in/report.docx", "report"},
		{"/in/archive.tar.gz", "archive.tar"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := document.Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
