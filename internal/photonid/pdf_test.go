package photonid

import (
	"bytes"
	"testing"
)

func TestTableEnergyBin(t *testing.T) {
	table := NewTable([]float64{0, 10, 20})

	cases := []struct {
		e        float64
		wantBin  int
		wantOK   bool
	}{
		{-1, 0, false},
		{0, 0, true},
		{5, 0, true},
		{10, 1, true},
		{15, 1, true},
		{20, 2, true},
		{1000, 2, true}, // above last edge clamps to the last bin
	}
	for _, tc := range cases {
		bin, ok := table.EnergyBin(tc.e)
		if ok != tc.wantOK {
			t.Errorf("EnergyBin(%v) ok = %v, want %v", tc.e, ok, tc.wantOK)
			continue
		}
		if ok && bin != tc.wantBin {
			t.Errorf("EnergyBin(%v) = %v, want %v", tc.e, bin, tc.wantBin)
		}
	}
}

func TestTableWriteToReadFromRoundTrip(t *testing.T) {
	table := NewTable([]float64{0, 5})
	table.Signal[0][discPeakRMS].Fill(3)
	table.Signal[0][discPeakRMS].Fill(3)
	table.Background[1][discTrackDistance].Fill(42)
	table.Normalize()

	var buf bytes.Buffer
	if err := table.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if len(got.EnergyBinLowerEdges) != 2 || got.EnergyBinLowerEdges[0] != 0 || got.EnergyBinLowerEdges[1] != 5 {
		t.Fatalf("EnergyBinLowerEdges = %v", got.EnergyBinLowerEdges)
	}
	if got.Signal[0][discPeakRMS].Density(3) != table.Signal[0][discPeakRMS].Density(3) {
		t.Errorf("round-tripped signal histogram density mismatch: got %v want %v",
			got.Signal[0][discPeakRMS].Density(3), table.Signal[0][discPeakRMS].Density(3))
	}
	if got.Background[1][discTrackDistance].Density(42) != table.Background[1][discTrackDistance].Density(42) {
		t.Errorf("round-tripped background histogram density mismatch")
	}
}
