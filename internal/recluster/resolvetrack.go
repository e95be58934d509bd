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

// ResolveConfig adds the cone-fraction threshold ResolveTrackAssociations
// uses to pull in nearby track-free clusters, on top of the shared
// reclustering Config.
type ResolveConfig struct {
	MinConeFractionForExtension float64
	ConeCosineHalfAngle         float64
}

// RunResolveTrackAssociations implements spec §4.8's
// ResolveTrackAssociations: the mirror image of SplitTrackAssociations
// for under-energetic clusters (chi below a negative threshold), with
// the seed extended by nearby track-free clusters. No best-guess
// candidate is committed when no clean winner emerges.
func RunResolveTrackAssociations(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algos ClusteringAlgorithms, cfg Config, rcfg ResolveConfig) error {
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
		chi := compat.Chi(compat.ClusterEnergy(c), trackEnergySum, cfg.HadronicEnergyResolution)
		if chi >= -cfg.ChiToAttemptReclustering {
			continue
		}

		seed := []pfcore.ClusterID{c.ID}
		for _, neighbour := range clusters {
			if neighbour.ID == c.ID || len(neighbour.Tracks) > 0 {
				continue
			}
			apex, axis, ok := geomquery.ConeFromClusterShowerStart(c)
			if !ok {
				continue
			}
			if geomquery.FractionOfHitsInCone(neighbour, apex, axis, rcfg.ConeCosineHalfAngle) >= rcfg.MinConeFractionForExtension {
				seed = append(seed, neighbour.ID)
			}
		}

		originalChi2 := chi * chi
		if err := attemptResolve(cmgr, hitMgr, trackMgr, assoc, algos, cfg, c.Tracks, seed, originalChi2); err != nil {
			return err
		}
	}
	return nil
}

// attemptResolve is attemptReclustering's ResolveTrackAssociations
// counterpart: the same candidate-try loop. It records the lowest
// non-negative chi2 among candidates rejected for an excess of
// track-free clusters, but never commits that candidate: every
// rejected candidate stays aborted.
func attemptResolve(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algos ClusteringAlgorithms, cfg Config, tracks []pfcore.TrackID, seedClusters []pfcore.ClusterID, originalChi2 float64) error {
	var bestGuessChi2 = -1.0
	haveBestGuess := false

	for _, algo := range algos.Ordered {
		accepted, chi2, excess, err := tryOneResolveClustering(cmgr, hitMgr, trackMgr, assoc, algo, seedClusters, tracks, cfg)
		if err != nil {
			return err
		}
		if accepted {
			if originalChi2-chi2 >= cfg.MinChi2Improvement || chi2 < cfg.Chi2ForAutomaticClusterSelection {
				return nil // already committed
			}
		} else if excess && (!haveBestGuess || chi2 < bestGuessChi2) && chi2 >= 0 {
			bestGuessChi2 = chi2
			haveBestGuess = true
		}
	}

	if algos.Forced != nil {
		accepted, chi2, _, err := tryOneResolveClustering(cmgr, hitMgr, trackMgr, assoc, algos.Forced, seedClusters, tracks, cfg)
		if err != nil {
			return err
		}
		if accepted && originalChi2-chi2 >= cfg.MinForcedChi2Improvement && chi2 < cfg.MaxForcedChi2 {
			return nil
		}
	}
	return nil
}

// tryOneResolveClustering is tryOneClustering generalised to report
// whether rejection was specifically due to an excess of track-free
// clusters, the signal ResolveTrackAssociations' best-guess fallback
// needs.
func tryOneResolveClustering(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algo plugin.ClusteringPlugin, seedClusters []pfcore.ClusterID, tracks []pfcore.TrackID, cfg Config) (accepted bool, chi2 float64, excess bool, err error) {
	tx, err := InitializeReclustering(cmgr, hitMgr, trackMgr, tracks, seedClusters)
	if err != nil {
		return false, 0, false, err
	}
	if _, err := tx.RunClustering(algo); err != nil {
		tx.EndReclustering(Abort)
		return false, 0, false, err
	}
	if err := tx.TemporarilyReplaceCurrent(); err != nil {
		tx.EndReclustering(Abort)
		return false, 0, false, err
	}
	if assoc != nil {
		if err := assoc.Associate(trackMgr, cmgr); err != nil {
			tx.EndReclustering(Abort)
			return false, 0, false, err
		}
	}

	candidates := tx.CandidateClusters()
	results := compat.ExtractReclusterResults(candidates, trackMgr, cfg.HadronicEnergyResolution)
	if results.NExcessTrackAssociations > 0 {
		tx.EndReclustering(Abort)
		return false, results.ChiSquarePerDof, true, nil
	}

	if err := tx.EndReclustering(Commit); err != nil {
		return false, 0, false, err
	}
	return true, results.ChiSquarePerDof, false, nil
}
