package recluster

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

func TestRunTrackDrivenAssociationExcessEnergyRescue(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	c := cmgr.NewCluster()
	cHit := &calohit.Hit{Position: geometry.Vector3{X: 1, Z: 100}, PseudoLayer: 1, HadronicEnergy: 2.0}
	cHitID := hitMgr.Add(cHit)
	c.AddHit(cHitID, 1)
	c.ShowerStartLayer = 1
	c.InitialDirection = geometry.Vector3{Z: 1}
	cTrack := trackMgr.Add(&track.Track{EnergyAtDCA: 4.0})
	c.Tracks = []pfcore.TrackID{cTrack}

	n := cmgr.NewCluster()
	nHit := &calohit.Hit{Position: geometry.Vector3{X: 1, Z: 200}, PseudoLayer: 2, HadronicEnergy: 2.0}
	nHitID := hitMgr.Add(nHit)
	n.AddHit(nHitID, 2)
	nTrack := trackMgr.Add(&track.Track{EnergyAtDCA: 1.0})
	n.Tracks = []pfcore.TrackID{nTrack}

	cfg := Config{HadronicEnergyResolution: 0.6, ChiToAttemptReclustering: 1.0}
	rcfg := ResolveConfig{MinConeFractionForExtension: 0.9, ConeCosineHalfAngle: 0.9}

	if err := RunTrackDrivenAssociation(cmgr, hitMgr, trackMgr, nil, ClusteringAlgorithms{}, cfg, rcfg, 50.0, 3); err != nil {
		t.Fatalf("RunTrackDrivenAssociation: %v", err)
	}

	if _, err := cmgr.Get(n.ID); err == nil {
		t.Error("expected the cone-overlapping tracked neighbour to be merged away")
	}
	if _, err := cmgr.Get(c.ID); err != nil {
		t.Error("expected the parent cluster to survive the merge")
	}
}

func TestRunTrackDrivenAssociationLeavesConsistentClusterAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	c := cmgr.NewCluster()
	addCaloHit(hitMgr, c, 1, 0, 4.0)
	tid := trackMgr.Add(&track.Track{EnergyAtDCA: 4.0})
	c.Tracks = []pfcore.TrackID{tid}

	cfg := Config{HadronicEnergyResolution: 0.6, ChiToAttemptReclustering: 3.0}
	rcfg := ResolveConfig{MinConeFractionForExtension: 0.5, ConeCosineHalfAngle: 0.9}

	if err := RunTrackDrivenAssociation(cmgr, hitMgr, trackMgr, nil, ClusteringAlgorithms{}, cfg, rcfg, 50.0, 3); err != nil {
		t.Fatalf("RunTrackDrivenAssociation: %v", err)
	}
	if _, err := cmgr.Get(c.ID); err != nil {
		t.Error("expected a track-consistent cluster to be left untouched")
	}
}
