package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tablemerge/internal/table"
)

// ── Database ingestion ─────────────────────────────────────
// Loads an external table from a live database query instead of a
// file. One connection per call; the result set is drained into an
// in-memory table and the connection closed.

// Supported driver names for Query.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Query runs a read query against the database at dsn and returns
// the result set as a table. driver is one of the Driver constants.
func Query(ctx context.Context, driver, dsn, query string) (*table.Table, error) {
	driverName, err := resolveDriver(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	t, err := table.FromSQLRows(rows)
	if err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	return t, nil
}

// resolveDriver maps the public driver name to the registered
// database/sql driver.
func resolveDriver(driver string) (string, error) {
	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
		return driver, nil
	default:
		return "", fmt.Errorf("unknown database driver %q (want mysql, postgres, or sqlite)", driver)
	}
}
