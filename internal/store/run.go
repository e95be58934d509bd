package store

import "fmt"

// RunSummary is one pipeline pass's headline statistics, as recorded by
// RecordRun and returned by ListRuns.
type RunSummary struct {
	ID                  int64
	StartedAtUnixNanos  int64
	FinishedAtUnixNanos int64
	ClusterCount        int
	PhotonCount         int
	TrackRecoveredCount int
	Notes               string
}

// RecordRun inserts a completed run's summary and returns its assigned id.
func (db *DB) RecordRun(s RunSummary) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO runs (started_at_unix_nanos, finished_at_unix_nanos, cluster_count, photon_count, track_recovered_count, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.StartedAtUnixNanos, s.FinishedAtUnixNanos, s.ClusterCount, s.PhotonCount, s.TrackRecoveredCount, s.Notes)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	rows, err := db.Query(`
		SELECT id, started_at_unix_nanos, finished_at_unix_nanos, cluster_count, photon_count, track_recovered_count, notes
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.StartedAtUnixNanos, &s.FinishedAtUnixNanos, &s.ClusterCount, &s.PhotonCount, &s.TrackRecoveredCount, &s.Notes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
