package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tablemerge/internal/table"
)

// ── Spreadsheets ───────────────────────────────────────────
// .xlsx and .xls via excelize. The first sheet is read; its first
// row is the header. Legacy binary .xls workbooks are claimed by
// extension but excelize only decodes OOXML content, so a true
// binary workbook fails at decode time with a clear error.

type spreadsheetDecoder struct{}

func init() { Register(&spreadsheetDecoder{}) }

func (d *spreadsheetDecoder) Extensions() []string { return []string{".xlsx", ".xls"} }

func (d *spreadsheetDecoder) Decode(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	t := table.New(rows[0]...)
	for _, rec := range rows[1:] {
		cells := make([]any, len(t.Columns))
		for i := range cells {
			if i < len(rec) && rec[i] != "" {
				cells[i] = rec[i]
			}
		}
		t.AppendRow(cells...)
	}
	return t, nil
}
