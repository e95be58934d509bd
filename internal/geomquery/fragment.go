// Package geomquery is the shared geometric-proximity toolkit used by
// the merging and reclustering operators: cone and close-hit fractions,
// cluster-contact layer counts, and helix layer-crossing/distance
// measures (spec §4.4, §4.6).
package geomquery

import (
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/track"
)

// FractionOfHitsInCone returns the fraction of c's non-isolated hits
// whose direction from apex, projected onto axis, has cosine at least
// cosHalfAngle. Returns 0 for an empty cluster.
func FractionOfHitsInCone(c *cluster.Cluster, apex, axis geometry.Vector3, cosHalfAngle float64) float64 {
	positions := c.Positions()
	if len(positions) == 0 {
		return 0
	}
	axisUnit := axis.Unit()
	count := 0
	for _, p := range positions {
		d := p.Sub(apex)
		mag := d.Mag()
		if mag < 1e-9 {
			count++
			continue
		}
		cosAngle := d.Dot(axisUnit) / mag
		if cosAngle >= cosHalfAngle {
			count++
		}
	}
	return float64(count) / float64(len(positions))
}

// ConeFromClusterShowerStart derives a cone apex/axis from another
// cluster's shower-start centroid and initial direction, for use with
// FractionOfHitsInCone.
func ConeFromClusterShowerStart(other *cluster.Cluster) (apex, axis geometry.Vector3, ok bool) {
	centroid, found := other.CentroidAt(other.ShowerStartLayer)
	if !found {
		return geometry.Vector3{}, geometry.Vector3{}, false
	}
	return centroid, other.InitialDirection, true
}

// ConeFromTrack takes a cone apex/axis from a track's state at the
// calorimeter: its position and direction there.
func ConeFromTrack(t *track.Track) (apex, axis geometry.Vector3) {
	apex = t.AtCalorimeter.Position
	axis = t.AtCalorimeter.Direction
	return apex, axis
}

// FractionOfCloseHits returns the fraction of a's non-isolated hits
// within distanceThreshold of some hit in b. Returns 0 if a is empty.
func FractionOfCloseHits(a, b *cluster.Cluster, distanceThreshold float64) float64 {
	aPos := a.Positions()
	bPos := b.Positions()
	if len(aPos) == 0 {
		return 0
	}
	count := 0
	for _, pa := range aPos {
		for _, pb := range bPos {
			if pa.Sub(pb).Mag() <= distanceThreshold {
				count++
				break
			}
		}
	}
	return float64(count) / float64(len(aPos))
}

// ClusterContactDetails computes the number of pseudo-layers where
// parent and daughter are "in contact" (closest hit-to-hit separation,
// scaled by average cell size, below distanceThreshold) and the
// fraction of overlapping layers that are in contact.
func ClusterContactDetails(parent, daughter *cluster.Cluster, distanceThreshold float64) (nContactLayers int, contactFraction float64) {
	dLayers := daughter.Hits.Layers()
	overlap := 0
	for _, layer := range dLayers {
		pHits := parent.HitsAt(layer)
		dHits := daughter.HitsAt(layer)
		if len(pHits) == 0 || len(dHits) == 0 {
			continue
		}
		overlap++

		best := -1.0
		var avgCellSize float64
		var n int
		for _, ph := range pHits {
			for _, dh := range dHits {
				dist := ph.Position.Sub(dh.Position).Mag()
				cellSize := (ph.CellSize() + dh.CellSize()) / 2
				if cellSize < 1e-9 {
					continue
				}
				scaled := dist / cellSize
				if best < 0 || scaled < best {
					best = scaled
				}
				avgCellSize += cellSize
				n++
			}
		}
		if n == 0 {
			continue
		}
		if best >= 0 && best < distanceThreshold {
			nContactLayers++
		}
	}
	if overlap == 0 {
		return 0, 0
	}
	return nContactLayers, float64(nContactLayers) / float64(overlap)
}

// NLayersCrossed counts the distinct pseudo-layers visited by sampling
// helix h at nSamples points between z_start and z_end. Pseudo-layer for
// a sampled position is resolved via layerOf, typically a geometry
// lookup supplied by the caller's geometry context.
func NLayersCrossed(h *track.Helix, zStart, zEnd float64, nSamples int, layerOf func(geometry.Vector3) int) int {
	if nSamples < 1 {
		return 0
	}
	seen := make(map[int]bool)
	for i := 0; i < nSamples; i++ {
		frac := float64(i) / float64(max(nSamples-1, 1))
		z := zStart + frac*(zEnd-zStart)
		p := h.PositionAtZ(z)
		seen[layerOf(p)] = true
	}
	return len(seen)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ClusterHelixDistance projects each hit in c whose pseudo-layer falls
// in [layerMin, layerMax] onto helix h (closest-point-on-helix over the
// hit's local z window), stopping once maxOccupied distinct layers have
// been examined. Returns the closest and mean distance found.
func ClusterHelixDistance(c *cluster.Cluster, h *track.Helix, layerMin, layerMax, maxOccupied, nSamplesPerHit int) (closest, mean float64) {
	closest = -1
	var sum float64
	var count int
	occupiedLayers := 0

	layers := c.Hits.Layers()
	for _, layer := range layers {
		if layer < layerMin || layer > layerMax {
			continue
		}
		hits := c.HitsAt(layer)
		if len(hits) == 0 {
			continue
		}
		occupiedLayers++
		if occupiedLayers > maxOccupied {
			break
		}
		for _, hit := range hits {
			zWindow := hit.CellSize()
			if zWindow < 1 {
				zWindow = 1
			}
			_, d := h.ClosestPointOnHelix(hit.Position, hit.Position.Z-zWindow, hit.Position.Z+zWindow, nSamplesPerHit)
			if closest < 0 || d < closest {
				closest = d
			}
			sum += d
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	if closest < 0 {
		closest = 0
	}
	return closest, sum / float64(count)
}
