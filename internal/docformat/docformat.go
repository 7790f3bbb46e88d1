// Package docformat classifies source files into the document kinds docmill
// can convert. Classification is purely extension based; nothing here opens
// files.
package docformat

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the family of a source document.
type Kind int

const (
	// KindUnsupported marks files docmill does not convert.
	KindUnsupported Kind = iota
	// KindWord marks OOXML word-processing documents (.docx).
	KindWord
	// KindSpreadsheet marks workbook documents (.xlsx, .xls).
	KindSpreadsheet
)

// String returns the lowercase label used in logs and summaries.
func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindSpreadsheet:
		return "spreadsheet"
	default:
		return "unsupported"
	}
}

// Detect classifies a path by its final extension, case-insensitively.
// A dotfile such as ".docx" has no stem and therefore no extension.
func Detect(path string) Kind {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == base {
		return KindUnsupported
	}
	switch strings.ToLower(ext) {
	case ".docx":
		return KindWord
	case ".xlsx", ".xls":
		return KindSpreadsheet
	default:
		return KindUnsupported
	}
}

// Filter restricts which document kinds a scan or watch admits.
type Filter map[Kind]struct{}

// Admits reports whether kind passes the filter. An empty filter admits
// every supported kind; KindUnsupported never passes.
func (f Filter) Admits(kind Kind) bool {
	if kind == KindUnsupported {
		return false
	}
	if len(f) == 0 {
		return true
	}
	_, ok := f[kind]
	return ok
}

// ParseFilter builds a Filter from CLI or config tokens. Tokens use the
// input-extension vocabulary without the dot: "docx", "xlsx", "xls".
func ParseFilter(tokens []string) (Filter, error) {
	filter := make(Filter)
	for _, token := range tokens {
		switch strings.ToLower(strings.TrimSpace(token)) {
		case "":
			continue
		case "docx":
			filter[KindWord] = struct{}{}
		case "xlsx", "xls":
			filter[KindSpreadsheet] = struct{}{}
		default:
			return nil, fmt.Errorf("unknown document type %q (expected docx, xlsx, or xls)", token)
		}
	}
	return filter, nil
}

// Extensions returns the recognized input extensions in display order.
func Extensions() []string {
	return []string{".docx", ".xlsx", ".xls"}
}

// KindForExtension maps a recognized extension to its kind for display
// purposes. The extension must include the leading dot.
func KindForExtension(ext string) Kind {
	return Detect("x" + strings.ToLower(ext))
}
