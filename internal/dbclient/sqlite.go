package dbclient

import (
	_ "modernc.org/sqlite"
)

// SQLiteDSN builds a DSN for a local SQLite file, read-only so a
// load can never touch the source database.
func SQLiteDSN(path string) string {
	return path + "?mode=ro"
}
