package merge

import (
	"strings"

	"tablemerge/internal/table"
)

// ── Composite-key expansion ────────────────────────────────
// A key cell like "A1, A2,A3" encodes several identifiers joined by
// a delimiter. Expansion unpacks each such row into one row per
// identifier, duplicating every other cell, so the join sees atomic
// keys.

// Expand returns a new table where every row of t is replaced by one
// row per delimiter-separated piece of its key cell. Pieces are
// trimmed of surrounding whitespace; empty pieces are kept as
// empty-string keys. A nil key cell stringifies to "" and yields a
// single row with an empty key. t is not modified.
func Expand(t *table.Table, keyCol, delimiter string) (*table.Table, error) {
	idx, ok := t.ColumnIndex(keyCol)
	if !ok {
		return nil, &ColumnNotFoundError{Table: "external", Column: keyCol}
	}

	out := table.New(t.Columns...)
	for _, row := range t.Rows {
		pieces := strings.Split(table.CellString(row[idx]), delimiter)
		for _, p := range pieces {
			expanded := append([]any(nil), row...)
			expanded[idx] = strings.TrimSpace(p)
			out.Rows = append(out.Rows, expanded)
		}
	}
	return out, nil
}
