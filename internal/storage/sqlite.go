package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding saved merge jobs and their
// run history.
type DB struct {
	conn *sql.DB
}

// Open creates a DB, opening (or creating) the SQLite file at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite supports one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Conn exposes the raw connection for callers that need it.
func (db *DB) Conn() *sql.DB { return db.conn }

func (db *DB) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS merge_jobs (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			config         TEXT NOT NULL,
			trigger_type   TEXT NOT NULL DEFAULT 'manual',
			trigger_config TEXT NOT NULL DEFAULT '',
			enabled        INTEGER NOT NULL DEFAULT 1,
			last_run_at    TIMESTAMP,
			last_status    TEXT NOT NULL DEFAULT '',
			last_error     TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMP NOT NULL,
			updated_at     TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS merge_run_logs (
			id          TEXT PRIMARY KEY,
			job_id      TEXT NOT NULL,
			started_at  TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			status      TEXT NOT NULL,
			rows        INTEGER NOT NULL DEFAULT 0,
			cols        INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_logs_job ON merge_run_logs(job_id, started_at)`,
	}
	for _, s := range stmts {
		if _, err := db.conn.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
