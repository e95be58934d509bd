package main

import (
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/recovery"
	"github.com/caloflow/pfreco/internal/track"
)

// detectorClassifier groups the geometry-derived predicates the merge
// and recovery operators take as injected dependencies, since no
// existing internal/geometry helper answers "is this cluster leaving
// the detector" or "is this cluster in the muon sub-detector": both are
// expressed here, against whatever pseudo-layer/hit-type boundary the
// run is configured with, the way a calling framework would bind its
// concrete geometry to these operators' abstract classifier slots.
type detectorClassifier struct {
	maxCaloPseudoLayer int
}

// isLeaving reports whether a cluster's outer pseudo-layer sits at or
// beyond the configured calorimeter depth, i.e. its energy plausibly
// continued past the last sampled layer rather than stopping inside it.
func (d detectorClassifier) isLeaving(c *cluster.Cluster) bool {
	outer, ok := c.OuterLayer()
	if !ok {
		return false
	}
	return outer >= d.maxCaloPseudoLayer
}

// isPhotonLike reports whether a cluster has already been tagged by
// photon reconstruction.
func isPhotonLike(c *cluster.Cluster) bool {
	return c.IsFixedPhoton
}

// isMuonSubDetectorCluster classifies a cluster as belonging to the muon
// sub-detector by checking whether every non-isolated hit reports
// HitTypeMuon; the common case of a cluster built entirely from muon
// chamber hits.
func isMuonSubDetectorCluster(c *cluster.Cluster) bool {
	hadHit := false
	for _, layer := range c.Hits.Layers() {
		for _, h := range c.HitsAt(layer) {
			hadHit = true
			if h.HitType != geometry.HitTypeMuon {
				return false
			}
		}
	}
	return hadHit
}

// straightAssociationPlugin and helixAssociationPlugin adapt
// internal/recovery's two operators to plugin.AssociationPlugin, the
// interface the reclustering operators require for re-attaching tracks
// to a provisional reclustering output; recovery's Run method already
// has the right shape, just under a different name.
type straightAssociationPlugin struct{ op recovery.Straight }

func (straightAssociationPlugin) Name() string { return "track-recovery-straight" }
func (p straightAssociationPlugin) Associate(trackMgr *track.Manager, cmgr *cluster.Manager) error {
	return p.op.Run(trackMgr, cmgr)
}

type helixAssociationPlugin struct{ op recovery.Helix }

func (helixAssociationPlugin) Name() string { return "track-recovery-helix" }
func (p helixAssociationPlugin) Associate(trackMgr *track.Manager, cmgr *cluster.Manager) error {
	return p.op.Run(trackMgr, cmgr)
}
