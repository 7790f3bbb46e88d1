package docformat_test

import (
	"testing"

	"docmill/internal/docformat"
)

func TestDetectRecognizesSupportedExtensions(t *testing.T) {
	cases := map[string]docformat.Kind{
		"report.docx":          docformat.KindWord,
		"report.DOCX":          docformat.KindWord,
		"dir/Nested/Plan.DocX": docformat.KindWord,
		"ledger.xlsx":          docformat.KindSpreadsheet,
		"ledger.XLSX":          docformat.KindSpreadsheet,
		"legacy.xls":           docformat.KindSpreadsheet,
		"legacy.XLS":           docformat.KindSpreadsheet,
	}
	for path, want := range cases {
		if got := docformat.Detect(path); got != want {
			t.Errorf("Detect(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDetectRejectsEverythingElse(t *testing.T) {
	for _, path := range []string{
		"notes.txt",
		"archive.docx.bak",
		"noextension",
		"image.PNG",
		"dir.docx/file",
		".docx",
		".xlsx",
		"",
	} {
		if got := docformat.Detect(path); got != docformat.KindUnsupported {
			t.Errorf("Detect(%q) = %v, want KindUnsupported", path, got)
		}
	}
}

func TestKindString(t *testing.T) {
	if docformat.KindWord.String() != "word" {
		t.Fatalf("unexpected word label %q", docformat.KindWord.String())
	}
	if docformat.KindSpreadsheet.String() != "spreadsheet" {
		t.Fatalf("unexpected spreadsheet label %q", docformat.KindSpreadsheet.String())
	}
	if docformat.KindUnsupported.String() != "unsupported" {
		t.Fatalf("unexpected unsupported label %q", docformat.KindUnsupported.String())
	}
}

func TestParseFilter(t *testing.T) {
	filter, err := docformat.ParseFilter([]string{"docx"})
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if !filter.Admits(docformat.KindWord) {
		t.Fatal("docx filter should admit word documents")
	}
	if filter.Admits(docformat.KindSpreadsheet) {
		t.Fatal("docx filter should not admit spreadsheets")
	}

	filter, err = docformat.ParseFilter([]string{"XLSX", " xls "})
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if !filter.Admits(docformat.KindSpreadsheet) {
		t.Fatal("xlsx filter should admit spreadsheets")
	}

	if _, err := docformat.ParseFilter([]string{"pdf"}); err == nil {
		t.Fatal("expected error for unknown type token")
	}
}

func TestEmptyFilterAdmitsAllSupportedKinds(t *testing.T) {
	var filter docformat.Filter
	if !filter.Admits(docformat.KindWord) || !filter.Admits(docformat.KindSpreadsheet) {
		t.Fatal("empty filter should admit every supported kind")
	}
	if filter.Admits(docformat.KindUnsupported) {
		t.Fatal("no filter ever admits unsupported files")
	}
}
