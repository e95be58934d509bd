// Package store persists photon-identification PDF tables and
// per-run summary statistics to a local sqlite database, so a trained
// PDF table and the history of pipeline runs survive process restarts.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sqlite connection opened against a single file, with the
// pragmas this package's access pattern needs already applied.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the sqlite database at path. A
// brand-new database is initialised from schema.sql directly rather
// than by replaying every migration; an existing database is left
// alone — callers that want to apply pending migrations call MigrateUp.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db := &DB{conn}
	if err := applyPragmas(conn); err != nil {
		return nil, err
	}

	var hasSchema bool
	if err := conn.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='schema_migrations'`).Scan(&hasSchema); err != nil {
		return nil, fmt.Errorf("check schema_migrations: %w", err)
	}
	if !hasSchema {
		if _, err := conn.Exec(schemaSQL); err != nil {
			return nil, fmt.Errorf("apply schema.sql: %w", err)
		}
	}
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	return nil
}

// MigrationsFS returns the embedded migration source tree, as consumed
// by MigrateUp and any operator-facing CLI wrapping it.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}
