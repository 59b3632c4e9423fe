package table

import (
	"fmt"
	"strconv"
)

// ── Table ──────────────────────────────────────────────────
// Common in-memory tabular format.
// All ingestion decoders produce Tables, the merge engine consumes
// and produces Tables. Columns are ordered; cells are nullable
// scalars (nil means null).

// Table holds an ordered set of named columns and their rows.
// Rows are slices aligned with Columns; a nil cell is a null value.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// AppendRow adds a row, padding or truncating it to the column count.
func (t *Table) AppendRow(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Column returns all cells of the named column in row order.
func (t *Table) Column(name string) ([]any, bool) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	cells := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, true
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// Shape returns a "(rows, columns)" string for log messages.
func (t *Table) Shape() string {
	return fmt.Sprintf("(%d, %d)", t.NumRows(), t.NumCols())
}

// Clone returns a deep copy. Cells are scalars, so a row-level copy
// is a full copy.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// ── Cell stringification ───────────────────────────────────

// CellString converts a cell to its canonical string form.
// nil becomes the empty string; floats drop trailing zeros so a
// numeric key like 42.0 matches the string "42".
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []byte:
		return string(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(c)
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	default:
		return fmt.Sprint(c)
	}
}
