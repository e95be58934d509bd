package plugin

import (
	"math"
	"sort"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
)

// TransverseProfilePlugin implements ShowerProfilePlugin by fitting a
// cluster's first NFitLayers occupied layers for a shower axis, binning
// every hit up to maxLayer by its perpendicular distance from that axis
// into fixed-width radial shells, and walking the shells outward: a
// contiguous run of shells at or above MinShellEnergy is one peak.
// Grounded on the fit-then-project shape internal/merge's showermip and
// backscattered operators use for projecting hits against a fitted axis
// (internal/merge/showermip.go, backscattered.go).
type TransverseProfilePlugin struct {
	NFitLayers     int
	ShellWidth     float64
	MinShellEnergy float64
}

type profileHit struct {
	hit   *calohit.Hit
	layer int
	shell int
}

// FindPeaks returns the transverse shower-profile peaks of c's hits at
// pseudo-layer <= maxLayer, ordered by descending peak energy (largest
// first, per spec).
func (p TransverseProfilePlugin) FindPeaks(c *cluster.Cluster, maxLayer int) []cluster.ShowerPeak {
	axis := c.FitStart(p.nFitLayers())
	if !axis.Success {
		return nil
	}

	var hits []profileHit
	maxShell := 0
	for _, layer := range c.Hits.Layers() {
		if layer > maxLayer {
			continue
		}
		for _, h := range c.HitsAt(layer) {
			r := perpendicularDistance(h.Position, axis.Intercept, axis.Direction)
			shell := int(r / p.shellWidth())
			hits = append(hits, profileHit{hit: h, layer: layer, shell: shell})
			if shell > maxShell {
				maxShell = shell
			}
		}
	}
	if len(hits) == 0 {
		return nil
	}

	shellEnergy := make([]float64, maxShell+1)
	shellHits := make([][]profileHit, maxShell+1)
	for _, ph := range hits {
		e := ph.hit.ElectromagneticEnergy + ph.hit.HadronicEnergy
		shellEnergy[ph.shell] += e
		shellHits[ph.shell] = append(shellHits[ph.shell], ph)
	}

	var peaks []cluster.ShowerPeak
	shell := 0
	for shell <= maxShell {
		if shellEnergy[shell] < p.minShellEnergy() {
			shell++
			continue
		}
		start := shell
		for shell <= maxShell && shellEnergy[shell] >= p.minShellEnergy() {
			shell++
		}
		peaks = append(peaks, buildPeak(shellHits[start:shell], p.shellWidth()))
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Energy > peaks[j].Energy })
	return peaks
}

func buildPeak(runs [][]profileHit, shellWidth float64) cluster.ShowerPeak {
	list := calohit.NewOrderedList()
	var total, weightedR2 float64
	for _, run := range runs {
		for _, ph := range run {
			e := ph.hit.ElectromagneticEnergy + ph.hit.HadronicEnergy
			list.Add(ph.hit.ID, ph.layer)
			total += e
			r := float64(ph.shell) * shellWidth
			weightedR2 += e * r * r
		}
	}
	rms := 0.0
	if total > 0 {
		rms = math.Sqrt(weightedR2 / total)
	}
	return cluster.ShowerPeak{Energy: total, RMS: rms, HitList: list}
}

func (p TransverseProfilePlugin) nFitLayers() int {
	if p.NFitLayers <= 0 {
		return 5
	}
	return p.NFitLayers
}

func (p TransverseProfilePlugin) shellWidth() float64 {
	if p.ShellWidth <= 0 {
		return 5.0
	}
	return p.ShellWidth
}

func (p TransverseProfilePlugin) minShellEnergy() float64 {
	if p.MinShellEnergy <= 0 {
		return 1e-6
	}
	return p.MinShellEnergy
}

func perpendicularDistance(point, intercept, direction geometry.Vector3) float64 {
	unit := direction.Unit()
	diff := point.Sub(intercept)
	along := diff.Dot(unit)
	projected := unit.Scale(along)
	return diff.Sub(projected).Mag()
}
