// Package photonid implements spec §4.9's photon reconstruction operator:
// a shower-profile discriminant classifier run in either inference or
// training mode against a per-energy-bin signal/background PDF table.
// Grounded on original_source/src/LCParticleId/PhotonReconstructionAlgorithm.cc
// for the discriminant definitions and accept/reject logic; histogram
// storage follows the contiguous 2D array Design Notes §9 calls for.
package photonid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Histogram is a fixed-range, fixed-bin-count frequency table over one
// discriminant, used as either a training accumulator or a normalised
// PDF.
type Histogram struct {
	Low, High float64
	Counts    []float64
}

// NewHistogram returns an empty histogram with nBins equal-width bins
// spanning [low, high].
func NewHistogram(nBins int, low, high float64) *Histogram {
	return &Histogram{Low: low, High: high, Counts: make([]float64, nBins)}
}

func (h *Histogram) binWidth() float64 {
	return (h.High - h.Low) / float64(len(h.Counts))
}

// binOf maps a value to a bin index, clamped to [0, len(Counts)-1]
// (overflow-safe per spec.md §6/§4.9).
func (h *Histogram) binOf(x float64) int {
	if len(h.Counts) == 0 {
		return -1
	}
	if math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return len(h.Counts) - 1
	}
	if math.IsInf(x, -1) {
		return 0
	}
	w := h.binWidth()
	if w <= 0 {
		return 0
	}
	idx := int((x - h.Low) / w)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(h.Counts) {
		idx = len(h.Counts) - 1
	}
	return idx
}

// Fill increments the bin containing x by one, the training-mode
// accumulation operation.
func (h *Histogram) Fill(x float64) {
	idx := h.binOf(x)
	if idx >= 0 {
		h.Counts[idx]++
	}
}

// Normalize rescales Counts to a unit integral, the step applied to
// every histogram on training shutdown (spec §4.9).
func (h *Histogram) Normalize() {
	total := floats.Sum(h.Counts)
	if total <= 0 {
		return
	}
	for i := range h.Counts {
		h.Counts[i] /= total
	}
}

// Density returns the (already-normalised, if Normalize was called)
// probability mass of the bin containing x. A histogram with zero total
// mass returns a small floor value rather than zero, so a product of
// many discriminant densities never collapses to exactly zero from one
// untrained bin.
func (h *Histogram) Density(x float64) float64 {
	idx := h.binOf(x)
	if idx < 0 {
		return 1e-6
	}
	v := h.Counts[idx]
	if v <= 0 {
		return 1e-6
	}
	return v
}
