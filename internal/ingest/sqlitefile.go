package ingest

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tablemerge/internal/table"
)

// ── SQLite files ───────────────────────────────────────────
// .db / .sqlite / .sqlite3. The file must hold exactly one user
// table; ambiguous files fail naming the candidates, since Load's
// contract carries only a path.

type sqliteDecoder struct{}

func init() { Register(&sqliteDecoder{}) }

func (d *sqliteDecoder) Extensions() []string { return []string{".db", ".sqlite", ".sqlite3"} }

func (d *sqliteDecoder) Decode(path string) (*table.Table, error) {
	conn, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer conn.Close()

	names, err := userTables(conn)
	if err != nil {
		return nil, err
	}
	switch {
	case len(names) == 0:
		return nil, fmt.Errorf("sqlite file has no tables")
	case len(names) > 1:
		return nil, fmt.Errorf("sqlite file has multiple tables (%s); extract the one you need first",
			strings.Join(names, ", "))
	}

	rows, err := conn.Query(fmt.Sprintf("SELECT * FROM %q", names[0]))
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", names[0], err)
	}
	defer rows.Close()

	return table.FromSQLRows(rows)
}

func userTables(conn *sql.DB) ([]string, error) {
	rows, err := conn.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
