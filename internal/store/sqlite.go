package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB is the embedded database holding client-side settings and history
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. Opening an existing
// database is idempotent.
func Open(ctx context.Context, path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// busy_timeout is per connection, so it goes in the DSN for every pooled conn
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	d := &DB{db: db, path: path}
	if err := d.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return d, nil
}

func (d *DB) ensureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_name TEXT NOT NULL DEFAULT '',
		company      TEXT NOT NULL DEFAULT '',
		role         TEXT NOT NULL DEFAULT '',
		filename     TEXT NOT NULL DEFAULT '',
		outcome      TEXT NOT NULL,
		location     TEXT NOT NULL DEFAULT '',
		message      TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
	`)
	return err
}

// Path returns the database file location
func (d *DB) Path() string { return d.path }

// Close closes the database connection
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
