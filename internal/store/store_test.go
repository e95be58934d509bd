package store

import (
	"path/filepath"
	"testing"

	"github.com/caloflow/pfreco/internal/photonid"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pfreco.db")
	db, err := NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDBAppliesSchemaOnFreshFile(t *testing.T) {
	db := openTestDB(t)

	var tableCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('pdf_tables', 'runs')`).Scan(&tableCount); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if tableCount != 2 {
		t.Fatalf("expected both pdf_tables and runs to exist, found %d", tableCount)
	}
}

func TestSavePDFTableRoundTrip(t *testing.T) {
	db := openTestDB(t)

	tbl := photonid.NewTable([]float64{0, 10, 20})
	if err := db.SavePDFTable("default", tbl, 1000); err != nil {
		t.Fatalf("SavePDFTable: %v", err)
	}

	got, err := db.LoadPDFTable("default")
	if err != nil {
		t.Fatalf("LoadPDFTable: %v", err)
	}
	if len(got.EnergyBinLowerEdges) != 3 {
		t.Fatalf("got %d energy bin edges, want 3", len(got.EnergyBinLowerEdges))
	}
}

func TestSavePDFTableOverwritesExistingName(t *testing.T) {
	db := openTestDB(t)

	first := photonid.NewTable([]float64{0})
	if err := db.SavePDFTable("default", first, 1); err != nil {
		t.Fatalf("SavePDFTable: %v", err)
	}
	second := photonid.NewTable([]float64{0, 5})
	if err := db.SavePDFTable("default", second, 2); err != nil {
		t.Fatalf("SavePDFTable: %v", err)
	}

	got, err := db.LoadPDFTable("default")
	if err != nil {
		t.Fatalf("LoadPDFTable: %v", err)
	}
	if len(got.EnergyBinLowerEdges) != 2 {
		t.Fatalf("expected the overwritten table with 2 edges, got %d", len(got.EnergyBinLowerEdges))
	}
}

func TestLoadPDFTableMissingNameErrors(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadPDFTable("nonexistent"); err == nil {
		t.Error("expected an error loading a table that was never saved")
	}
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)

	id1, err := db.RecordRun(RunSummary{StartedAtUnixNanos: 1, FinishedAtUnixNanos: 2, ClusterCount: 5, PhotonCount: 1, TrackRecoveredCount: 2})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	id2, err := db.RecordRun(RunSummary{StartedAtUnixNanos: 3, FinishedAtUnixNanos: 4, ClusterCount: 6, PhotonCount: 2, TrackRecoveredCount: 0})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id1 == id2 {
		t.Fatal("expected distinct run ids")
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != id2 {
		t.Errorf("expected newest-first ordering, got run %d first", runs[0].ID)
	}
}
