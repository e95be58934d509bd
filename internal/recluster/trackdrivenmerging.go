package recluster

import (
	"sort"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/geomquery"
	"github.com/caloflow/pfreco/internal/track"
)

// scoredDaughter pairs a candidate daughter cluster with its cone
// fraction along the parent's shower axis.
type scoredDaughter struct {
	daughter     *cluster.Cluster
	coneFraction float64
}

// RunTrackDrivenMerging implements spec §4.8's TrackDrivenMerging: plain
// merges (no reclustering transaction) pulling track-free daughters into
// an under-energetic track-associated parent, scored by cone fraction.
// The "dubious partial merge" behaviour noted in the source is
// deliberately not reproduced here.
func RunTrackDrivenMerging(cmgr *cluster.Manager, trackMgr *track.Manager, cfg Config, coneCosineHalfAngle float64) error {
	_, clusters := cmgr.GetCurrentList()

	for _, parent := range clusters {
		if len(parent.Tracks) == 0 {
			continue
		}
		var trackEnergySum float64
		for _, tid := range parent.Tracks {
			if t, err := trackMgr.Get(tid); err == nil {
				trackEnergySum += t.EnergyAtDCA
			}
		}
		chi := compat.Chi(compat.ClusterEnergy(parent), trackEnergySum, cfg.HadronicEnergyResolution)
		if chi >= -cfg.ChiToAttemptMerging {
			continue
		}

		apex, axis, ok := geomquery.ConeFromClusterShowerStart(parent)
		if !ok {
			continue
		}

		var candidates []scoredDaughter
		for _, d := range clusters {
			if d.ID == parent.ID || len(d.Tracks) > 0 {
				continue
			}
			frac := geomquery.FractionOfHitsInCone(d, apex, axis, coneCosineHalfAngle)
			if frac > 0 {
				candidates = append(candidates, scoredDaughter{d, frac})
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].coneFraction > candidates[j].coneFraction })

		if candidates[0].coneFraction >= cfg.MinConeFractionSingle {
			if err := cmgr.MergeAndDelete(parent.ID, candidates[0].daughter.ID); err != nil {
				return err
			}
			continue
		}

		if err := mergeBestCumulativeSet(cmgr, parent, candidates, trackEnergySum, cfg); err != nil {
			return err
		}
	}
	return nil
}

// mergeBestCumulativeSet cumulatively merges cone-ranked daughters
// within max_layer_separation_multiple of the parent's outer layer (as
// it was before any of these merges, which happen after the scan),
// stopping once the cumulative chi stops improving, and commits
// only if an acceptable |chi| state was reached along the way.
func mergeBestCumulativeSet(cmgr *cluster.Manager, parent *cluster.Cluster, candidates []scoredDaughter, trackEnergySum float64, cfg Config) error {
	var merged []*cluster.Cluster
	bestAbsChi := absFloat(compat.Chi(compat.ClusterEnergy(parent), trackEnergySum, cfg.HadronicEnergyResolution))
	reachedAcceptable := bestAbsChi < cfg.ChiToAttemptMerging

	for _, cand := range candidates {
		parentOuter, ok := parent.OuterLayer()
		if !ok {
			break
		}
		daughterInner, ok := cand.daughter.InnerLayer()
		if !ok {
			continue
		}
		if daughterInner-parentOuter > cfg.MaxLayerSeparationMultiple {
			continue
		}

		trialE := compat.ClusterEnergy(parent) + compat.ClusterEnergy(cand.daughter)
		for _, m := range merged {
			trialE += compat.ClusterEnergy(m)
		}
		trialChi := compat.Chi(trialE, trackEnergySum, cfg.HadronicEnergyResolution)
		if absFloat(trialChi) >= bestAbsChi {
			break
		}
		bestAbsChi = absFloat(trialChi)
		merged = append(merged, cand.daughter)
		if bestAbsChi < cfg.ChiToAttemptMerging {
			reachedAcceptable = true
		}
	}

	if !reachedAcceptable || len(merged) == 0 {
		return nil
	}
	for _, d := range merged {
		if err := cmgr.MergeAndDelete(parent.ID, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
