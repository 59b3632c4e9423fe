package table

import "database/sql"

// FromSQLRows drains a result set into a table. SQL NULL becomes a
// nil cell; driver byte slices become strings so text columns from
// drivers that scan into []byte compare like any other string.
func FromSQLRows(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	t := New(cols...)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, values)
	}
	return t, rows.Err()
}
