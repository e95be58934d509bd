package main

import (
	"github.com/caloflow/pfreco/internal/config"
	"github.com/caloflow/pfreco/internal/merge"
	"github.com/caloflow/pfreco/internal/photonid"
	"github.com/caloflow/pfreco/internal/pipeline"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/recluster"
	"github.com/caloflow/pfreco/internal/recovery"
)

// runContext bundles the configured operators a single pipeline run
// needs, assembled once from a PipelineConfig and the loaded event.
type runContext struct {
	pc       *config.PipelineConfig
	ev       *loadedEvent
	classify detectorClassifier
	profile  plugin.ShowerProfilePlugin
	table    *photonid.Table
}

// buildPasses lays out the default pfreco pipeline: merging, track-
// driven reclustering, photon reconstruction, then track recovery, each
// pass a fixed operator order per spec.md §2/§5. Every operator in
// internal/merge whose signature depends only on Config-derived
// literals and the two classifier predicates is wired in; the three
// reclustering operators needing a full clustering-plugin fallback are
// wired against a DBSCAN default (internal/plugin.DBSCANClusteringPlugin)
// and the recovery operators adapted to plugin.AssociationPlugin.
func (rc *runContext) buildPasses() []pipeline.Pass {
	mergeCfg := merge.NewConfig(rc.pc)
	reclusterCfg := recluster.Config{
		HadronicEnergyResolution:         rc.pc.GetHadronicEnergyResolution(),
		ChiToAttemptReclustering:         rc.pc.GetChiToAttemptReclustering(),
		MinChi2Improvement:               rc.pc.GetMinChi2Improvement(),
		Chi2ForAutomaticClusterSelection: rc.pc.GetChi2ForAutomaticClusterSelection(),
		MinForcedChi2Improvement:         rc.pc.GetMinForcedChi2Improvement(),
		MaxForcedChi2:                    rc.pc.GetMaxForcedChi2(),
		ChiToAttemptMerging:              rc.pc.GetChiToAttemptMerging(),
		MinConeFractionSingle:            rc.pc.GetMinConeFractionSingle(),
		MaxLayerSeparationMultiple:       rc.pc.GetMaxLayerSeparationMultiple(),
	}
	resolveCfg := recluster.ResolveConfig{
		MinConeFractionForExtension: 0.5,
		ConeCosineHalfAngle:         0.9,
	}
	dbscan := &plugin.DBSCANClusteringPlugin{Eps: 30, MinPts: 2}
	algos := recluster.ClusteringAlgorithms{Ordered: []plugin.ClusteringPlugin{dbscan}, Forced: dbscan}
	recoveryCfg := recovery.NewConfig(rc.pc)
	straightAssoc := straightAssociationPlugin{op: recovery.Straight{Cfg: recoveryCfg, IsLeaving: rc.classify.isLeaving}}

	mergingPass := pipeline.Pass{Name: "merging", Steps: []pipeline.Step{
		{Name: "proximity-based-merging", Run: func() error {
			return merge.RunProximityBasedMerging(rc.ev.ClusterMgr, rc.ev.TrackMgr, mergeCfg)
		}},
		{Name: "shower-mip-merging", Run: func() error {
			return rc.runAllShowerMipVariants(mergeCfg)
		}},
		{Name: "backscattered-tracks-merging", Run: func() error {
			return rc.runAllBackscatteredVariants(mergeCfg)
		}},
		{Name: "photon-fragment-removal", Run: func() error {
			return merge.RunPhotonFragmentRemoval(rc.ev.ClusterMgr, mergeCfg, isPhotonLike)
		}},
		{Name: "neutral-fragment-removal", Run: func() error {
			return merge.RunNeutralFragmentRemoval(rc.ev.ClusterMgr, mergeCfg)
		}},
		{Name: "merge-split-photons", Run: func() error {
			spCfg := merge.MergeSplitPhotonsConfig{
				MinShowerMaxOpeningAngleCosine: 0.9,
				MinContactLayers:               1,
				ProfileMaxLayer:                9,
				ProfileMaxLayerEarlyGuard:       4,
				MinFragmentEnergy:               0.1,
				MaxFragmentEnergyRatio:          0.3,
				MaxSubsidiaryPeakRatio:          0.1,
				AcceptMaxSubsidiaryPeakEnergy:   0.5,
			}
			return merge.RunMergeSplitPhotons(rc.ev.ClusterMgr, mergeCfg, spCfg, rc.profile, isPhotonLike)
		}},
		{Name: "isolated-hit-merging", Run: func() error {
			return merge.RunIsolatedHitMerging(rc.ev.ClusterMgr, rc.ev.HitMgr, mergeCfg)
		}},
		{Name: "muon-cluster-association", Run: func() error {
			muCfg := merge.MuonClusterConfig{MinHitsInMuonCluster: 5, OldChiThreshold: 3.0, CoilEnergyLossCorrection: 0.5}
			return merge.RunMuonClusterAssociation(rc.ev.ClusterMgr, rc.ev.TrackMgr, isMuonSubDetectorCluster, rc.classify.isLeaving, mergeCfg, muCfg)
		}},
	}}

	reclusteringPass := pipeline.Pass{Name: "reclustering", Steps: []pipeline.Step{
		{Name: "split-track-associations", Run: func() error {
			return recluster.RunSplitTrackAssociations(rc.ev.ClusterMgr, rc.ev.HitMgr, rc.ev.TrackMgr, straightAssoc, algos, reclusterCfg)
		}},
		{Name: "resolve-track-associations", Run: func() error {
			return recluster.RunResolveTrackAssociations(rc.ev.ClusterMgr, rc.ev.HitMgr, rc.ev.TrackMgr, straightAssoc, algos, reclusterCfg, resolveCfg)
		}},
		{Name: "track-driven-association", Run: func() error {
			return recluster.RunTrackDrivenAssociation(rc.ev.ClusterMgr, rc.ev.HitMgr, rc.ev.TrackMgr, straightAssoc, algos, reclusterCfg, resolveCfg, rc.pc.GetContactDistanceThreshold(), rc.pc.GetMinContactLayers())
		}},
		{Name: "track-driven-merging", Run: func() error {
			return recluster.RunTrackDrivenMerging(rc.ev.ClusterMgr, rc.ev.TrackMgr, reclusterCfg, rc.pc.GetConeCosineHalfAngle1())
		}},
	}}

	photonPass := pipeline.Pass{Name: "photon-reconstruction", Steps: []pipeline.Step{
		{Name: "photon-reconstruction", Run: func() error {
			r := &photonid.Reconstructor{
				Mode:     photonid.ModeInference,
				Cfg:      photonid.NewConfig(rc.pc),
				Table:    rc.table,
				Profile:  rc.profile,
				TrackMgr: rc.ev.TrackMgr,
			}
			return r.Run(rc.ev.ClusterMgr, rc.ev.HitMgr)
		}},
	}}

	recoveryPass := pipeline.Pass{Name: "track-recovery", Steps: []pipeline.Step{
		{Name: "track-recovery-straight", Run: func() error {
			s := recovery.Straight{Cfg: recoveryCfg, IsLeaving: rc.classify.isLeaving}
			return s.Run(rc.ev.TrackMgr, rc.ev.ClusterMgr)
		}},
		{Name: "track-recovery-helix", Run: func() error {
			h := recovery.Helix{Cfg: recoveryCfg, IsLeaving: rc.classify.isLeaving}
			return h.Run(rc.ev.TrackMgr, rc.ev.ClusterMgr)
		}},
	}}

	return []pipeline.Pass{mergingPass, reclusteringPass, photonPass, recoveryPass}
}

func (rc *runContext) runAllShowerMipVariants(mergeCfg merge.Config) error {
	for _, variant := range []merge.ShowerMipVariant{
		merge.VariantParentEndToDaughterStart,
		merge.VariantParentEndDirectedAtDaughter,
		merge.VariantDaughterStartToParentEnd,
	} {
		smCfg := merge.ShowerMipConfig{
			Variant:                  variant,
			NFitLayers:               6,
			MaxLayerGap:              4,
			MaxCentroidSeparation:    150,
			MaxFitDirDotProduct:      0.25,
			PerpendicularDistanceCut: 25,
		}
		if err := merge.RunShowerMipMerging(rc.ev.ClusterMgr, mergeCfg, smCfg); err != nil {
			return err
		}
	}
	return nil
}

func (rc *runContext) runAllBackscatteredVariants(mergeCfg merge.Config) error {
	for _, variant := range []merge.BackscatteredVariant{
		merge.VariantDaughterEmbeddedInParent,
		merge.VariantDaughterInParentMipSection,
	} {
		bsCfg := merge.BackscatteredConfig{
			Variant:                  variant,
			NFitProjectionLayers:     6,
			PerpendicularDistanceCut: 25,
		}
		if err := merge.RunBackscatteredTracksMerging(rc.ev.ClusterMgr, mergeCfg, bsCfg); err != nil {
			return err
		}
	}
	return nil
}
