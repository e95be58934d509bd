package diagnostics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caloflow/pfreco/internal/photonid"
	"github.com/caloflow/pfreco/internal/store"
)

func TestPlotDiscriminantWritesAFile(t *testing.T) {
	tbl := photonid.NewTable([]float64{0, 10})
	path := filepath.Join(t.TempDir(), "disc.png")

	if err := PlotDiscriminant(tbl, 0, 0, path); err != nil {
		t.Fatalf("PlotDiscriminant: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty PNG file")
	}
}

func TestPlotDiscriminantRejectsOutOfRangeIndices(t *testing.T) {
	tbl := photonid.NewTable([]float64{0})
	path := filepath.Join(t.TempDir(), "disc.png")

	if err := PlotDiscriminant(tbl, 5, 0, path); err == nil {
		t.Error("expected an error for an out-of-range energy bin")
	}
	if err := PlotDiscriminant(tbl, 0, 99, path); err == nil {
		t.Error("expected an error for an out-of-range discriminant")
	}
}

func TestRenderRunHistoryProducesHTML(t *testing.T) {
	runs := []store.RunSummary{
		{ID: 2, ClusterCount: 6, PhotonCount: 2, TrackRecoveredCount: 1},
		{ID: 1, ClusterCount: 5, PhotonCount: 1, TrackRecoveredCount: 0},
	}

	var buf bytes.Buffer
	if err := RenderRunHistory(runs, &buf); err != nil {
		t.Fatalf("RenderRunHistory: %v", err)
	}
	if !strings.Contains(buf.String(), "run history") {
		t.Error("expected the rendered page title to appear in the HTML output")
	}
}

func TestRenderRunHistoryHandlesEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderRunHistory(nil, &buf); err != nil {
		t.Fatalf("RenderRunHistory: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty HTML even for no runs")
	}
}
