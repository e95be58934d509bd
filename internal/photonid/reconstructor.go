// Package photonid implements spec §4.9's photon reconstruction operator:
// a shower-profile discriminant classifier run in either inference or
// training mode against a per-energy-bin signal/background PDF table.
// Grounded on original_source/src/LCParticleId/PhotonReconstructionAlgorithm.cc
// for the discriminant definitions and accept/reject logic; histogram
// storage follows the contiguous 2D array the persisted-state design
// calls for.
package photonid

import (
	"math"
	"sort"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/config"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/track"
)

// Mode selects whether Reconstructor.Run classifies against a trained
// Table (ModeInference) or accumulates truth-labelled discriminant
// values into one (ModeTraining).
type Mode int

const (
	ModeInference Mode = iota
	ModeTraining
)

// Config collects the thresholds this operator reads, assembled once
// per run from the flat PipelineConfig document.
type Config struct {
	MinPeakEnergy              float64
	MinPeakRMS                 float64
	MinPeakHitCount            int
	MinFineGranularityEMEnergy float64
	PidCut                     float64
}

// NewConfig assembles a photonid.Config from a loaded PipelineConfig.
func NewConfig(pc *config.PipelineConfig) Config {
	return Config{
		MinPeakEnergy:              pc.GetMinPeakEnergy(),
		MinPeakRMS:                 pc.GetMinPeakRMS(),
		MinPeakHitCount:            pc.GetMinPeakHitCount(),
		MinFineGranularityEMEnergy: pc.GetMinFineGranularityEMEnergy(),
		PidCut:                     pc.GetPidCutDefault(),
	}
}

// Reconstructor runs the photon-reconstruction algorithm of spec §4.9
// over a cluster manager's current list.
type Reconstructor struct {
	Mode     Mode
	Cfg      Config
	Table    *Table
	Profile  plugin.ShowerProfilePlugin
	TrackMgr *track.Manager

	// IsTruePhoton labels a candidate peak's hits as true signal for
	// ModeTraining; ignored in ModeInference. A nil func always labels
	// background (a training run with no truth source fills only the
	// background histograms, which is a caller error, not this
	// package's to guard against further than leaving the signal
	// tables empty).
	IsTruePhoton func(hits []pfcore.CaloHitID, hitMgr *calohit.Manager) bool

	hitMgr *calohit.Manager
}

// Run processes every fine-granularity, sufficiently energetic EM
// cluster in cmgr's current list: it finds transverse shower-profile
// peaks, classifies each against Table (or trains Table, in
// ModeTraining), and fragments multi-peak clusters into one cluster per
// accepted peak, merging rejected peaks' hits back into the dominant
// remnant so no hit is ever discarded.
func (r *Reconstructor) Run(cmgr *cluster.Manager, hitMgr *calohit.Manager) error {
	r.hitMgr = hitMgr
	_, clusters := cmgr.GetCurrentList()
	ordered := make([]*cluster.Cluster, len(clusters))
	copy(ordered, clusters)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, _ := ordered[i].InnerLayer()
		lj, _ := ordered[j].InnerLayer()
		return li < lj
	})

	for _, c := range ordered {
		if !r.isCandidate(c) {
			continue
		}
		if err := r.processCandidate(cmgr, c); err != nil {
			return err
		}
	}
	return nil
}

// isCandidate implements the inner-layer-granularity / EM-energy filter
// spec §4.9 runs before any profile extraction.
func (r *Reconstructor) isCandidate(c *cluster.Cluster) bool {
	if c.ElectromagneticEnergy() < r.Cfg.MinFineGranularityEMEnergy {
		return false
	}
	innerLayer, ok := c.InnerLayer()
	if !ok {
		return false
	}
	hits := c.HitsAt(innerLayer)
	if len(hits) == 0 {
		return false
	}
	return geometry.NewContext().Granularity(hits[0].HitType, hits[0].Region) <= geometry.GranularityFine
}

func (r *Reconstructor) processCandidate(cmgr *cluster.Manager, c *cluster.Cluster) error {
	totalEnergy := compat.ClusterEnergy(c)
	peaks := r.Profile.FindPeaks(c, c.ShowerMaxLayer)
	peaks = r.filterPeaks(peaks)
	if len(peaks) == 0 {
		return nil
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].Energy > peaks[j].Energy })

	if len(peaks) == 1 {
		r.classifyAndTag(c, peaks[0], totalEnergy)
		return nil
	}

	for _, peak := range peaks[1:] {
		daughter := cmgr.NewCluster()
		ids := peak.HitList.All()
		for _, id := range ids {
			layer, _ := peak.HitList.Layer(id)
			c.RemoveHit(id)
			daughter.AddHit(id, layer)
		}
		daughter.ShowerStartLayer = c.ShowerStartLayer
		accepted := r.classifyAndTag(daughter, peak, totalEnergy)
		if !accepted && r.Mode == ModeInference {
			if err := cmgr.MergeAndDelete(c.ID, daughter.ID); err != nil {
				return err
			}
		}
	}
	r.classifyAndTag(c, peaks[0], totalEnergy)
	return nil
}

func (r *Reconstructor) filterPeaks(peaks []cluster.ShowerPeak) []cluster.ShowerPeak {
	var out []cluster.ShowerPeak
	for _, p := range peaks {
		if p.Energy < r.Cfg.MinPeakEnergy {
			continue
		}
		if p.RMS < r.Cfg.MinPeakRMS {
			continue
		}
		if p.HitList == nil || p.HitList.Len() < r.Cfg.MinPeakHitCount {
			continue
		}
		out = append(out, p)
	}
	return out
}

// classifyAndTag computes the five discriminants for peak (evaluated
// against candidate, which may be the original cluster or a freshly
// split daughter), then either classifies against r.Table
// (ModeInference, tagging candidate.IsFixedPhoton on acceptance) or
// accumulates into r.Table (ModeTraining). Returns the accept/reject
// decision (always true in ModeTraining).
func (r *Reconstructor) classifyAndTag(candidate *cluster.Cluster, peak cluster.ShowerPeak, totalEnergy float64) bool {
	disc := r.discriminants(candidate, peak, totalEnergy)

	switch r.Mode {
	case ModeTraining:
		bin, ok := r.Table.EnergyBin(peak.Energy)
		if !ok {
			return true
		}
		isSignal := r.IsTruePhoton != nil && r.IsTruePhoton(peak.HitList.All(), r.hitMgr)
		for d := 0; d < 5; d++ {
			if isSignal {
				r.Table.Signal[bin][d].Fill(disc[d])
			} else {
				r.Table.Background[bin][d].Fill(disc[d])
			}
		}
		return true

	default: // ModeInference
		bin, ok := r.Table.EnergyBin(peak.Energy)
		if !ok {
			return false
		}
		var sigProd, bkgProd float64 = 1, 1
		for d := 0; d < 5; d++ {
			sigProd *= r.Table.Signal[bin][d].Density(disc[d])
			bkgProd *= r.Table.Background[bin][d].Density(disc[d])
		}
		p := sigProd / (sigProd + bkgProd)
		accept := p >= r.Cfg.PidCut
		if accept {
			candidate.IsFixedPhoton = true
		}
		return accept
	}
}

// discriminants computes the five values spec §4.9 names: peak RMS,
// longitudinal-profile start, longitudinal-profile discrepancy,
// peak-energy fraction of the whole original cluster, and minimum
// distance from the peak centroid to any track's calorimeter entry
// point.
func (r *Reconstructor) discriminants(candidate *cluster.Cluster, peak cluster.ShowerPeak, totalEnergy float64) [5]float64 {
	fitResult := candidate.FitAll()
	profileDiscrepancy := 0.0
	if fitResult.Success {
		profileDiscrepancy = fitResult.ChiSquarePerDof
	}

	innerLayer, _ := candidate.InnerLayer()

	fraction := 0.0
	if totalEnergy > 0 {
		fraction = peak.Energy / totalEnergy
	}

	minDist := minDistanceToAnyTrack(peakCentroid(peak, r.hitMgr), r.TrackMgr)

	return [5]float64{
		peak.RMS,
		float64(innerLayer),
		profileDiscrepancy,
		fraction,
		minDist,
	}
}

// peakCentroid returns the energy-weighted centroid of peak's hits,
// resolved directly against the hit manager (cheaper and simpler than
// going through whichever cluster currently owns them).
func peakCentroid(peak cluster.ShowerPeak, hitMgr *calohit.Manager) geometry.Vector3 {
	if peak.HitList == nil || hitMgr == nil {
		return geometry.Vector3{}
	}
	var sum geometry.Vector3
	var weight float64
	for _, id := range peak.HitList.All() {
		h, err := hitMgr.Get(id)
		if err != nil {
			continue
		}
		e := h.ElectromagneticEnergy + h.HadronicEnergy
		if e <= 0 {
			e = 1e-6
		}
		sum = sum.Add(h.Position.Scale(e))
		weight += e
	}
	if weight <= 0 {
		return geometry.Vector3{}
	}
	return sum.Scale(1 / weight)
}

func minDistanceToAnyTrack(pos geometry.Vector3, trackMgr *track.Manager) float64 {
	if trackMgr == nil {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for _, t := range trackMgr.All() {
		d := pos.Sub(t.AtCalorimeter.Position).Mag()
		if d < best {
			best = d
		}
	}
	return best
}
