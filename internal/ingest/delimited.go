package ingest

import (
	"encoding/csv"
	"fmt"
	"os"

	"tablemerge/internal/table"
)

// ── Delimited text ─────────────────────────────────────────
// .csv (comma) and .tsv (tab). First row is the header. Cells stay
// strings; an empty cell becomes a null.

type delimitedDecoder struct {
	comma rune
	exts  []string
}

func init() {
	Register(&delimitedDecoder{comma: ',', exts: []string{".csv"}})
	Register(&delimitedDecoder{comma: '\t', exts: []string{".tsv"}})
}

func (d *delimitedDecoder) Extensions() []string { return d.exts }

func (d *delimitedDecoder) Decode(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = d.comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // tolerate ragged rows, pad below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	t := table.New(records[0]...)
	for _, rec := range records[1:] {
		cells := make([]any, len(rec))
		for i, v := range rec {
			if v == "" {
				cells[i] = nil
			} else {
				cells[i] = v
			}
		}
		t.AppendRow(cells...)
	}
	return t, nil
}
