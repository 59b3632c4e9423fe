package dbclient_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"tablemerge/internal/dbclient"
)

func TestQuerySQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.sqlite")

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`CREATE TABLE scores (id TEXT, score INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(`INSERT INTO scores VALUES ('1', 10), ('2', NULL)`); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	tbl, err := dbclient.Query(context.Background(), dbclient.DriverSQLite,
		dbclient.SQLiteDSN(path), `SELECT id, score FROM scores ORDER BY id`)
	if err != nil {
		t.Fatal(err)
	}

	if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
		t.Fatalf("shape = %s, want (2, 2)", tbl.Shape())
	}
	if tbl.Rows[0][0] != "1" {
		t.Fatalf("id cell = %v (%T), want \"1\"", tbl.Rows[0][0], tbl.Rows[0][0])
	}
	if tbl.Rows[1][1] != nil {
		t.Fatalf("SQL NULL should be nil, got %v", tbl.Rows[1][1])
	}
}

func TestQueryUnknownDriver(t *testing.T) {
	_, err := dbclient.Query(context.Background(), "oracle", "dsn", "SELECT 1")
	if err == nil || !strings.Contains(err.Error(), "unknown database driver") {
		t.Fatalf("err = %v, want unknown driver error", err)
	}
}

func TestDSNBuilders(t *testing.T) {
	if got := dbclient.MySQLDSN("db.local", 0, "u", "p", "app"); !strings.Contains(got, "tcp(db.local:3306)") {
		t.Errorf("MySQLDSN should default port 3306, got %q", got)
	}
	if got := dbclient.PostgresDSN("db.local", 0, "u", "p", "app", ""); !strings.Contains(got, "sslmode=disable") {
		t.Errorf("PostgresDSN should default sslmode=disable, got %q", got)
	}
	if got := dbclient.SQLiteDSN("/tmp/x.db"); got != "/tmp/x.db?mode=ro" {
		t.Errorf("SQLiteDSN = %q", got)
	}
}
