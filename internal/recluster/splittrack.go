package recluster

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/track"
)

// Config collects the thresholds the reclustering operators share.
type Config struct {
	HadronicEnergyResolution          float64
	ChiToAttemptReclustering          float64
	MinChi2Improvement                float64
	Chi2ForAutomaticClusterSelection  float64
	MinForcedChi2Improvement          float64
	MaxForcedChi2                     float64
	ChiToAttemptMerging                float64
	MinConeFractionSingle              float64
	MaxLayerSeparationMultiple          int
}

// ClusteringAlgorithms is an ordered list of clustering algorithms to
// try in turn, the best-scoring output winning, per spec §4.8.
type ClusteringAlgorithms struct {
	Ordered []plugin.ClusteringPlugin
	Forced  plugin.ClusteringPlugin // tried only if Ordered yields nothing acceptable
}

// RunSplitTrackAssociations implements spec §4.8's SplitTrackAssociations:
// over-energetic track-associated clusters are reclustered, trying each
// configured algorithm in turn and keeping the first whose improvement
// and quality bars are both cleared; a forced algorithm is a last
// resort.
func RunSplitTrackAssociations(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algos ClusteringAlgorithms, cfg Config) error {
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
		if chi <= cfg.ChiToAttemptReclustering {
			continue
		}

		originalChi2 := chi * chi
		if err := attemptReclustering(cmgr, hitMgr, trackMgr, assoc, algos, cfg, c.Tracks, []pfcore.ClusterID{c.ID}, originalChi2); err != nil {
			return err
		}
	}
	return nil
}

// attemptReclustering runs the shared candidate-try/accept/commit loop
// used by SplitTrackAssociations and ResolveTrackAssociations: each
// candidate clustering algorithm is tried inside its own transaction,
// and the first one clearing the quality bars is committed; if none do,
// a forced algorithm is tried under the looser forced-quality bar.
func attemptReclustering(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algos ClusteringAlgorithms, cfg Config, tracks []pfcore.TrackID, seedClusters []pfcore.ClusterID, originalChi2 float64) error {
	for _, algo := range algos.Ordered {
		accepted, chi2, err := tryOneClustering(cmgr, hitMgr, trackMgr, assoc, algo, seedClusters, tracks, cfg)
		if err != nil {
			return err
		}
		if !accepted {
			continue
		}
		if originalChi2-chi2 >= cfg.MinChi2Improvement {
			return nil // tryOneClustering already committed
		}
		if chi2 < cfg.Chi2ForAutomaticClusterSelection {
			return nil
		}
	}

	if algos.Forced == nil {
		return nil
	}
	accepted, chi2, err := tryOneClustering(cmgr, hitMgr, trackMgr, assoc, algos.Forced, seedClusters, tracks, cfg)
	if err != nil {
		return err
	}
	if accepted && originalChi2-chi2 >= cfg.MinForcedChi2Improvement && chi2 < cfg.MaxForcedChi2 {
		return nil
	}
	return nil
}

// tryOneClustering opens a reclustering transaction, runs algo, applies
// assoc, evaluates the result, and commits if it is an improvement over
// the seed state and introduces no excess of track-free clusters;
// otherwise it aborts, leaving no trace.
func tryOneClustering(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, assoc plugin.AssociationPlugin, algo plugin.ClusteringPlugin, seedClusters []pfcore.ClusterID, tracks []pfcore.TrackID, cfg Config) (accepted bool, chi2 float64, err error) {
	tx, err := InitializeReclustering(cmgr, hitMgr, trackMgr, tracks, seedClusters)
	if err != nil {
		return false, 0, err
	}

	if _, err := tx.RunClustering(algo); err != nil {
		tx.EndReclustering(Abort)
		return false, 0, err
	}
	if err := tx.TemporarilyReplaceCurrent(); err != nil {
		tx.EndReclustering(Abort)
		return false, 0, err
	}
	if assoc != nil {
		if err := assoc.Associate(trackMgr, cmgr); err != nil {
			tx.EndReclustering(Abort)
			return false, 0, err
		}
	}

	candidates := tx.CandidateClusters()
	results := compat.ExtractReclusterResults(candidates, trackMgr, cfg.HadronicEnergyResolution)
	if results.NExcessTrackAssociations > 0 {
		tx.EndReclustering(Abort)
		return false, 0, nil
	}

	if err := tx.EndReclustering(Commit); err != nil {
		return false, 0, err
	}
	return true, results.ChiSquarePerDof, nil
}
