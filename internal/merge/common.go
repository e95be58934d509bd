// Package merge implements the pairwise cluster-merging operators of
// spec §4.7: each reads the current cluster list, filters candidates by
// eligibility, evaluates a parent/daughter compatibility test specific
// to the operator, and merges the accepted pairs via
// cluster.Manager.MergeAndDelete. Grounded on the common "filter, pair,
// decide, act" shape of l5tracks' per-frame tracker passes, generalised
// from a single association rule to the seven rules spec §4.7 names.
package merge

import (
	"sort"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/config"
	"github.com/caloflow/pfreco/internal/geomquery"
	"github.com/caloflow/pfreco/internal/track"
)

// Config collects the threshold values every merge operator in this
// package reads, assembled once per pipeline run from the flat
// PipelineConfig document.
type Config struct {
	HadronicEnergyResolution float64

	MinMipFractionForMerge float64
	MaxFitRMSForMerge      float64

	ConeParams geomquery.ContactParameters

	MaxTrackClusterChi       float64
	MaxTrackClusterDChi2     float64
	NGenericDistanceLayers   int
	NAdjacentLayersToExamine int
	MaxParallelDistance      float64
	MaxClusterHelixDistance  float64
	MinCloseHitFraction      float64
	MinContactFraction       float64

	WeightContact      float64
	WeightCone         float64
	WeightDistance     float64
	MinEvidence        float64
	NMaxPasses         int
	DistanceEvidence1  float64
	DistanceEvidence1d float64
	UseOnlyPhotonLikeDaughters bool

	ContactEvidenceNLayers1 int
	ContactEvidenceNLayers2 int
	ContactEvidenceNLayers3 int
	ContactEvidence1        float64
	ContactEvidence2        float64
	ContactEvidence3        float64
	ConeEvidenceFraction1   float64
	ConeEvidenceFineGranularityMultiplier   float64
	DistanceEvidenceCloseFraction1Multiplier float64
	DistanceEvidenceCloseFraction2Multiplier float64

	MaxRecombinationDistance float64
	MinHitsInCluster         int

	MinHitsInMuonCluster int
}

// NewConfig assembles a merge.Config from a loaded PipelineConfig.
func NewConfig(pc *config.PipelineConfig) Config {
	return Config{
		HadronicEnergyResolution: pc.GetHadronicEnergyResolution(),
		MinMipFractionForMerge:   0.8,
		MaxFitRMSForMerge:        25.0,
		ConeParams: geomquery.ContactParameters{
			ConeCosineHalfAngles: []float64{
				pc.GetConeCosineHalfAngle1(),
				pc.GetConeCosineHalfAngle2(),
				pc.GetConeCosineHalfAngle3(),
			},
			CloseHitDistances: []float64{
				pc.GetCloseHitDistance1(),
				pc.GetCloseHitDistance2(),
			},
			ContactDistanceThreshold: pc.GetContactDistanceThreshold(),
			MinCosOpeningAngle:       pc.GetMinCosOpeningAngle(),
		},
		MaxTrackClusterChi:       pc.GetMaxTrackClusterChi(),
		MaxTrackClusterDChi2:     pc.GetMaxTrackClusterDChi2(),
		NGenericDistanceLayers:   pc.GetNGenericDistanceLayers(),
		NAdjacentLayersToExamine: pc.GetNAdjacentLayersToExamine(),
		MaxParallelDistance:      pc.GetMaxParallelDistance(),
		MaxClusterHelixDistance:  pc.GetMaxClusterHelixDistance(),
		MinCloseHitFraction:      pc.GetMinCloseHitFraction(),
		MinContactFraction:       pc.GetMinContactFraction(),

		WeightContact:      pc.GetWeightContact(),
		WeightCone:         pc.GetWeightCone(),
		WeightDistance:     pc.GetWeightDistance(),
		MinEvidence:        pc.GetMinEvidence(),
		NMaxPasses:         pc.GetNMaxPasses(),
		DistanceEvidence1:  pc.GetDistanceEvidence1(),
		DistanceEvidence1d: pc.GetDistanceEvidence1d(),
		UseOnlyPhotonLikeDaughters: pc.GetUseOnlyPhotonLikeDaughters(),

		ContactEvidenceNLayers1: pc.GetContactEvidenceNLayers1(),
		ContactEvidenceNLayers2: pc.GetContactEvidenceNLayers2(),
		ContactEvidenceNLayers3: pc.GetContactEvidenceNLayers3(),
		ContactEvidence1:        pc.GetContactEvidence1(),
		ContactEvidence2:        pc.GetContactEvidence2(),
		ContactEvidence3:        pc.GetContactEvidence3(),
		ConeEvidenceFraction1:   pc.GetConeEvidenceFraction1(),
		ConeEvidenceFineGranularityMultiplier:    pc.GetConeEvidenceFineGranularityMultiplier(),
		DistanceEvidenceCloseFraction1Multiplier: pc.GetDistanceEvidenceCloseFraction1Multiplier(),
		DistanceEvidenceCloseFraction2Multiplier: pc.GetDistanceEvidenceCloseFraction2Multiplier(),

		MaxRecombinationDistance: pc.GetMaxRecombinationDistance(),
		MinHitsInCluster:         pc.GetMinHitsInCluster(),
		MinHitsInMuonCluster:     5,
	}
}

// eligible reports whether c passes the merge-eligibility filter common
// to every operator in §4.7: sufficiently mip-like, or a well-contained
// fit, with photon-tagged clusters subject to the same two gates.
func eligible(c *cluster.Cluster, cfg Config) bool {
	if c.MipFraction() >= cfg.MinMipFractionForMerge {
		return true
	}
	fitResult := c.FitAll()
	return fitResult.Success && fitResult.RMS <= cfg.MaxFitRMSForMerge
}

// byInnerLayerAscending sorts clusters by inner pseudo-layer, the fixed
// processing order every §4.7 operator requires before pairing.
func byInnerLayerAscending(clusters []*cluster.Cluster) []*cluster.Cluster {
	out := make([]*cluster.Cluster, len(clusters))
	copy(out, clusters)
	sort.SliceStable(out, func(i, j int) bool {
		li, _ := out[i].InnerLayer()
		lj, _ := out[j].InnerLayer()
		return li < lj
	})
	return out
}

// trackConsistent implements the track-consistency gate used by
// ProximityBasedMerging: both the
// individual and combined chi must lie within maxChi, and the chi²
// increase from adding the daughter must not exceed maxDChi2.
func trackConsistent(parent, daughter *cluster.Cluster, trackMgr *track.Manager, cfg Config) bool {
	if len(parent.Tracks) == 0 {
		return true
	}
	var trackEnergySum float64
	for _, tid := range parent.Tracks {
		if t, err := trackMgr.Get(tid); err == nil {
			trackEnergySum += t.EnergyAtDCA
		}
	}
	if trackEnergySum <= 0 {
		return true
	}

	parentE := compat.ClusterEnergy(parent)
	daughterE := compat.ClusterEnergy(daughter)

	individualChi := compat.Chi(parentE, trackEnergySum, cfg.HadronicEnergyResolution)
	combinedChi := compat.Chi(parentE+daughterE, trackEnergySum, cfg.HadronicEnergyResolution)

	if abs(individualChi) > cfg.MaxTrackClusterChi || abs(combinedChi) > cfg.MaxTrackClusterChi {
		return false
	}
	dChi2 := combinedChi*combinedChi - individualChi*individualChi
	return dChi2 <= cfg.MaxTrackClusterDChi2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
