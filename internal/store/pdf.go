package store

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/caloflow/pfreco/internal/photonid"
)

// SavePDFTable persists tbl under name, overwriting any previous table
// of the same name. trainedAtUnixNanos is stamped by the caller (store
// never reads the clock itself) so callers and tests stay in control of
// timestamps.
func (db *DB) SavePDFTable(name string, tbl *photonid.Table, trainedAtUnixNanos int64) error {
	var buf bytes.Buffer
	if err := tbl.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize pdf table %q: %w", name, err)
	}
	_, err := db.Exec(`
		INSERT INTO pdf_tables (name, trained_at_unix_nanos, payload) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET trained_at_unix_nanos = excluded.trained_at_unix_nanos, payload = excluded.payload
	`, name, trainedAtUnixNanos, buf.Bytes())
	if err != nil {
		return fmt.Errorf("save pdf table %q: %w", name, err)
	}
	return nil
}

// LoadPDFTable reads back the table stored under name.
func (db *DB) LoadPDFTable(name string) (*photonid.Table, error) {
	var payload []byte
	err := db.QueryRow(`SELECT payload FROM pdf_tables WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pdf table %q: %w", name, sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("load pdf table %q: %w", name, err)
	}
	tbl, err := photonid.ReadFrom(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("parse pdf table %q: %w", name, err)
	}
	return tbl, nil
}
