package calohit

import (
	"math"

	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// Config holds the per-hit property thresholds from spec §4.2. Field
// names match the configuration keys preserved in internal/config.
type Config struct {
	CaloHitMaxSeparation float64

	DensityWeightNLayers       int
	DensityWeightContribution  float64
	DensityWeightPower         float64

	IsolationCutDistanceFine   float64
	IsolationCutDistanceCoarse float64
	IsolationNLayers           int
	IsolationMaxNearbyHits     int

	MipNCellsForNearbyHit float64
	MipMaxNearbyHits      int
	MipLikeEnergyCut      float64
}

// DefaultConfig returns thresholds representative of the source
// constructors, scaled to millimetre/GeV units.
func DefaultConfig() Config {
	return Config{
		CaloHitMaxSeparation:       250,
		DensityWeightNLayers:       2,
		DensityWeightContribution:  1.0,
		DensityWeightPower:         2.0,
		IsolationCutDistanceFine:   50,
		IsolationCutDistanceCoarse: 100,
		IsolationNLayers:           2,
		IsolationMaxNearbyHits:     2,
		MipNCellsForNearbyHit:      2.5,
		MipMaxNearbyHits:           1,
		MipLikeEnergyCut:           0.2, // mips with energy below this cannot be flagged possible-mip
	}
}

func isFine(g geometry.Granularity) bool {
	return g == geometry.GranularityVeryFine || g == geometry.GranularityFine
}

// RecomputeProperties recomputes density weight, surrounding energy,
// isolation and mip-likeness for hit against list, using mgr to look up
// neighbouring hits and geo to resolve granularity. It may be invoked
// again after clustering changes hit adjacency, matching
// CaloHitHelper's re-runnable recomputation (see DESIGN.md / original
// PandoraSDK source).
func RecomputeProperties(hit *Hit, list *OrderedList, mgr *Manager, geo *geometry.Context, cfg Config) error {
	if hit == nil || list == nil || mgr == nil {
		return pfcore.ErrInvalidParameter
	}

	neighbours := func(nLayers int) []*Hit {
		var out []*Hit
		for d := -nLayers; d <= nLayers; d++ {
			for _, id := range list.HitsInLayer(hit.PseudoLayer + d) {
				if id == hit.ID {
					continue
				}
				h, err := mgr.Get(id)
				if err == nil {
					out = append(out, h)
				}
			}
		}
		return out
	}

	hit.DensityWeight = densityWeight(hit, neighbours(cfg.DensityWeightNLayers), cfg)
	hit.SurroundingEnergy = surroundingEnergy(hit, neighbours(1))

	isoCount := isolationCount(hit, neighbours(cfg.IsolationNLayers), geo, cfg)
	hit.IsIsolated = isoCount <= cfg.IsolationMaxNearbyHits

	mipCount := mipNearbyCount(hit, neighbours(1), cfg)
	hit.IsPossibleMip = mipCount <= cfg.MipMaxNearbyHits && hit.MipEquivalentEnergy > cfg.MipLikeEnergyCut

	return nil
}

func densityWeight(hit *Hit, neighbours []*Hit, cfg Config) float64 {
	var total float64
	for _, n := range neighbours {
		if n.HitType != hit.HitType {
			continue
		}
		dist := hit.Position.Sub(n.Position).Mag()
		cellSize := hit.CellSize()
		if cellSize < 1e-9 {
			continue
		}
		scaled := dist / cellSize
		if scaled < 1e-9 {
			continue
		}
		total += cfg.DensityWeightContribution / math.Pow(scaled, cfg.DensityWeightPower)
	}
	return total
}

func surroundingEnergy(hit *Hit, neighbours []*Hit) float64 {
	var total float64
	cellSize := hit.CellSize()
	for _, n := range neighbours {
		dist := hit.Position.Sub(n.Position).Mag()
		if dist <= cellSize {
			total += n.ElectromagneticEnergy + n.HadronicEnergy
		}
	}
	return total
}

func isolationCount(hit *Hit, neighbours []*Hit, geo *geometry.Context, cfg Config) int {
	cutDistance := cfg.IsolationCutDistanceCoarse
	if geo != nil && isFine(geo.Granularity(hit.HitType, hit.Region)) {
		cutDistance = cfg.IsolationCutDistanceFine
	}
	count := 0
	for _, n := range neighbours {
		if hit.Position.Sub(n.Position).Mag() <= cutDistance {
			count++
		}
	}
	return count
}

func mipNearbyCount(hit *Hit, neighbours []*Hit, cfg Config) int {
	cellSize := hit.CellSize()
	cut := cfg.MipNCellsForNearbyHit * cellSize
	count := 0
	for _, n := range neighbours {
		if hit.Position.Sub(n.Position).Mag() <= cut {
			count++
		}
	}
	return count
}
