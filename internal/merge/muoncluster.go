package merge

import (
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/track"
)

// MuonClusterConfig parameterises spec §4.7.7.
type MuonClusterConfig struct {
	MinHitsInMuonCluster   int
	CoilEnergyLossCorrection float64
	OldChiThreshold          float64
}

// MuonClassifier classifies a cluster as belonging to the muon
// sub-detector by its hit count in the detector's dedicated granularity,
// left to the caller since geometry context isn't threaded through this
// package; tests supply a direct predicate.
type MuonClassifier func(c *cluster.Cluster) bool

// RunMuonClusterAssociation implements spec §4.7.7: each qualifying
// muon-sub-detector cluster is matched to the best candidate target,
// preferring leaving+track-associated, then leaving+untracked, then
// non-leaving+track-associated with a large negative-to-acceptable chi
// swing, else left standalone.
func RunMuonClusterAssociation(cmgr *cluster.Manager, trackMgr *track.Manager, isMuonCluster MuonClassifier, isLeaving func(*cluster.Cluster) bool, mergeCfg Config, muCfg MuonClusterConfig) error {
	_, clusters := cmgr.GetCurrentList()

	for _, muonCluster := range clusters {
		if !isMuonCluster(muonCluster) || muonCluster.Hits.Len() < muCfg.MinHitsInMuonCluster {
			continue
		}

		var leavingTracked, leavingUntracked, nonLeavingTracked *cluster.Cluster

		for _, candidate := range clusters {
			if candidate.ID == muonCluster.ID {
				continue
			}
			leaving := isLeaving(candidate)
			tracked := len(candidate.Tracks) > 0

			switch {
			case leaving && tracked:
				if acceptableNewChi(candidate, muonCluster, trackMgr, mergeCfg, muCfg) {
					leavingTracked = candidate
				}
			case leaving && !tracked:
				leavingUntracked = candidate
			case !leaving && tracked:
				if oldChiVeryNegative(candidate, trackMgr, mergeCfg, muCfg) &&
					acceptableNewChi(candidate, muonCluster, trackMgr, mergeCfg, muCfg) {
					nonLeavingTracked = candidate
				}
			}
		}

		target := firstNonNil(leavingTracked, leavingUntracked, nonLeavingTracked)
		if target == nil {
			muonCluster.IsFixedPhoton = false // standalone muon, left for preservation
			continue
		}
		if err := cmgr.MergeAndDelete(target.ID, muonCluster.ID); err != nil {
			return err
		}
	}
	return nil
}

func acceptableNewChi(candidate, muonCluster *cluster.Cluster, trackMgr *track.Manager, mergeCfg Config, muCfg MuonClusterConfig) bool {
	var trackEnergySum float64
	for _, tid := range candidate.Tracks {
		if t, err := trackMgr.Get(tid); err == nil {
			trackEnergySum += t.EnergyAtDCA
		}
	}
	if trackEnergySum <= 0 {
		return true
	}
	combinedE := candidateEnergy(candidate) + candidateEnergy(muonCluster) + muCfg.CoilEnergyLossCorrection
	chi := compat.Chi(combinedE, trackEnergySum, mergeCfg.HadronicEnergyResolution)
	return abs(chi) <= mergeCfg.MaxTrackClusterChi
}

func oldChiVeryNegative(candidate *cluster.Cluster, trackMgr *track.Manager, mergeCfg Config, muCfg MuonClusterConfig) bool {
	var trackEnergySum float64
	for _, tid := range candidate.Tracks {
		if t, err := trackMgr.Get(tid); err == nil {
			trackEnergySum += t.EnergyAtDCA
		}
	}
	if trackEnergySum <= 0 {
		return false
	}
	chi := compat.Chi(candidateEnergy(candidate), trackEnergySum, mergeCfg.HadronicEnergyResolution)
	return chi < -muCfg.OldChiThreshold
}

func candidateEnergy(c *cluster.Cluster) float64 {
	return c.ElectromagneticEnergy() + c.HadronicEnergy()
}

func firstNonNil(candidates ...*cluster.Cluster) *cluster.Cluster {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
