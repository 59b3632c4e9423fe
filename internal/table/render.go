package table

import (
	"fmt"
	"io"
	"strings"
)

// ── Preview rendering ──────────────────────────────────────
// Plain-text rendering of the first rows of a table, for the CLI
// and for MCP tool results. Column widths are sized to the
// rendered content.

// Render writes up to n rows of t as an aligned text table.
// n <= 0 renders every row.
func Render(w io.Writer, t *Table, n int) error {
	if n <= 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, row := range t.Rows[:n] {
		for i, cell := range row {
			if l := len(CellString(cell)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(c)
			b.WriteString(strings.Repeat(" ", widths[i]-len(c)))
		}
		b.WriteByte('\n')
	}

	writeRow(t.Columns)
	sep := make([]string, len(t.Columns))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)

	for _, row := range t.Rows[:n] {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = CellString(cell)
		}
		writeRow(cells)
	}
	if n < len(t.Rows) {
		fmt.Fprintf(&b, "... %d more rows\n", len(t.Rows)-n)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderString is Render into a string.
func RenderString(t *Table, n int) string {
	var b strings.Builder
	Render(&b, t, n)
	return b.String()
}
