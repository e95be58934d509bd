package photonid

import "testing"

func TestHistogramFillNormalizeDensity(t *testing.T) {
	h := NewHistogram(5, 0, 10)
	h.Fill(1) // bin 0
	h.Fill(1) // bin 0
	h.Fill(9) // bin 4

	if got := h.Counts[0]; got != 2 {
		t.Fatalf("bin 0 count = %v, want 2", got)
	}
	if got := h.Counts[4]; got != 1 {
		t.Fatalf("bin 4 count = %v, want 1", got)
	}

	h.Normalize()
	if got := h.Counts[0]; got != 2.0/3.0 {
		t.Fatalf("normalized bin 0 = %v, want %v", got, 2.0/3.0)
	}
	if got := h.Density(1); got != 2.0/3.0 {
		t.Fatalf("Density(1) = %v, want %v", got, 2.0/3.0)
	}
}

func TestHistogramDensityFloorsUntrainedBin(t *testing.T) {
	h := NewHistogram(5, 0, 10)
	h.Fill(1)
	h.Normalize()

	if got := h.Density(9); got != 1e-6 {
		t.Fatalf("Density on an empty bin = %v, want floor 1e-6", got)
	}
}

func TestHistogramBinOfClampsOutOfRangeValues(t *testing.T) {
	h := NewHistogram(4, 0, 4)
	h.Fill(-100)
	h.Fill(100)

	if h.Counts[0] != 1 {
		t.Fatalf("below-range fill should land in bin 0, got counts %v", h.Counts)
	}
	if h.Counts[3] != 1 {
		t.Fatalf("above-range fill should land in the last bin, got counts %v", h.Counts)
	}
}
