package recluster

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/geomquery"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/track"
)

// RunTrackDrivenAssociation implements spec §4.8's TrackDrivenAssociation:
// ResolveTrackAssociations' seed-extension logic, widened to include
// neighbours identified by cone fraction *or* contact-layer count, plus
// an "excess energy" rescue path when no candidate crosses the
// reclustering chi threshold on its own.
func RunTrackDrivenAssociation(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algos ClusteringAlgorithms, cfg Config, rcfg ResolveConfig, contactThreshold float64, minContactLayers int) error {
	_, clusters := cmgr.GetCurrentList()

	for _, c := range clusters {
		if len(c.Tracks) == 0 {
			continue
		}
		var trackEnergySum float64
		for _, tid := range c.Tracks {
			if t, err := trackMgr.Get(tid); err == nil {
				trackEnergySum += t.EnergyAtDCA
			}
		}
		clusterE := compat.ClusterEnergy(c)
		chi := compat.Chi(clusterE, trackEnergySum, cfg.HadronicEnergyResolution)
		if chi >= -cfg.ChiToAttemptReclustering {
			continue
		}

		seed := []pfcore.ClusterID{c.ID}
		var coneOverlapTrackedNeighbours []*cluster.Cluster
		apex, axis, hasApex := geomquery.ConeFromClusterShowerStart(c)

		for _, neighbour := range clusters {
			if neighbour.ID == c.ID {
				continue
			}
			coneHit := hasApex && geomquery.FractionOfHitsInCone(neighbour, apex, axis, rcfg.ConeCosineHalfAngle) >= rcfg.MinConeFractionForExtension
			nContactLayers, _ := geomquery.ClusterContactDetails(c, neighbour, contactThreshold)
			contactHit := nContactLayers >= minContactLayers

			if len(neighbour.Tracks) == 0 && (coneHit || contactHit) {
				seed = append(seed, neighbour.ID)
			}
			if len(neighbour.Tracks) > 0 && coneHit {
				coneOverlapTrackedNeighbours = append(coneOverlapTrackedNeighbours, neighbour)
			}
		}

		originalChi2 := chi * chi
		committed, err := tryAttemptWithRescue(cmgr, hitMgr, trackMgr, assoc, algos, cfg, c.Tracks, seed, originalChi2)
		if err != nil {
			return err
		}
		if committed {
			continue
		}

		// Excess-energy rescue: treat a fraction alpha of the
		// cone-overlapping tracked neighbours' energy as belonging to
		// this track, and check whether the corrected chi now passes.
		var excess float64
		for _, n := range coneOverlapTrackedNeighbours {
			excess += compat.ClusterEnergy(n)
		}
		if excess <= 0 {
			continue
		}
		alpha := (trackEnergySum - clusterE) / excess
		if alpha < 0 {
			alpha = 0
		}
		if alpha > 1 {
			alpha = 1
		}
		correctedE := clusterE + alpha*excess
		correctedChi := compat.Chi(correctedE, trackEnergySum, cfg.HadronicEnergyResolution)
		if correctedChi >= -cfg.ChiToAttemptReclustering && correctedChi <= cfg.ChiToAttemptReclustering {
			// Corrected chi is acceptable: commit the association as a
			// plain merge of the tracked neighbours' cone-overlap
			// contribution, without a full reclustering pass.
			for _, n := range coneOverlapTrackedNeighbours {
				if err := cmgr.MergeAndDelete(c.ID, n.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func tryAttemptWithRescue(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algos ClusteringAlgorithms, cfg Config, tracks []pfcore.TrackID, seed []pfcore.ClusterID, originalChi2 float64) (bool, error) {
	for _, algo := range algos.Ordered {
		accepted, chi2, _, err := tryOneResolveClustering(cmgr, hitMgr, trackMgr, assoc, algo, seed, tracks, cfg)
		if err != nil {
			return false, err
		}
		if accepted && (originalChi2-chi2 >= cfg.MinChi2Improvement || chi2 < cfg.Chi2ForAutomaticClusterSelection) {
			return true, nil
		}
	}
	return false, nil
}
