package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook parses an OOXML workbook into the shared document model: a
// level-2 heading per sheet, in workbook order, each followed by a table of
// the sheet's cell text. Empty sheets keep their heading and contribute no
// table; a workbook with no sheets yields a document with no blocks.
//
// Legacy binary .xls content is not OOXML and fails here at open time.
func ReadWorkbook(path string) (*Document, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	doc := &Document{Title: Stem(path)}
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		doc.Blocks = append(doc.Blocks, Heading{Level: 2, Text: sheet})
		if table, ok := sheetTable(rows); ok {
			doc.Blocks = append(doc.Blocks, table)
		}
	}
	return doc, nil
}

// sheetTable pads the ragged rows excelize returns (trailing empty cells are
// trimmed per row) to the widest row so the grid renders rectangular.
func sheetTable(rows [][]string) (Table, bool) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(rows) == 0 || width == 0 {
		return Table{}, false
	}
	padded := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		padded[i] = cells
	}
	return Table{Rows: padded}, true
}
