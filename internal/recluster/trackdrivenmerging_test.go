package recluster

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

func TestRunTrackDrivenMergingMergesSingleConeDaughter(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	parent := cmgr.NewCluster()
	pHit := &calohit.Hit{Position: geometry.Vector3{X: 1, Z: 100}, PseudoLayer: 1, HadronicEnergy: 2.0}
	pHitID := hitMgr.Add(pHit)
	parent.AddHit(pHitID, 1)
	parent.ShowerStartLayer = 1
	parent.InitialDirection = geometry.Vector3{Z: 1}
	tid := trackMgr.Add(&track.Track{EnergyAtDCA: 4.0})
	parent.Tracks = []pfcore.TrackID{tid}

	daughter := cmgr.NewCluster()
	dHit := &calohit.Hit{Position: geometry.Vector3{X: 1, Z: 200}, PseudoLayer: 2, HadronicEnergy: 2.0}
	dHitID := hitMgr.Add(dHit)
	daughter.AddHit(dHitID, 2)

	cfg := Config{
		HadronicEnergyResolution: 0.6,
		ChiToAttemptMerging:      1.0,
		MinConeFractionSingle:    0.5,
	}

	if err := RunTrackDrivenMerging(cmgr, trackMgr, cfg, 0.9); err != nil {
		t.Fatalf("RunTrackDrivenMerging: %v", err)
	}

	if _, err := cmgr.Get(daughter.ID); err == nil {
		t.Error("expected the cone-matching track-free daughter to be merged away")
	}
	if _, err := cmgr.Get(parent.ID); err != nil {
		t.Error("expected the parent cluster to survive the merge")
	}
}

func TestRunTrackDrivenMergingLeavesConsistentClusterAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	parent := cmgr.NewCluster()
	addCaloHit(hitMgr, parent, 1, 0, 4.0)
	tid := trackMgr.Add(&track.Track{EnergyAtDCA: 4.0})
	parent.Tracks = []pfcore.TrackID{tid}

	daughter := cmgr.NewCluster()
	addCaloHit(hitMgr, daughter, 2, 0, 1.0)

	cfg := Config{HadronicEnergyResolution: 0.6, ChiToAttemptMerging: 3.0}

	if err := RunTrackDrivenMerging(cmgr, trackMgr, cfg, 0.9); err != nil {
		t.Fatalf("RunTrackDrivenMerging: %v", err)
	}
	if _, err := cmgr.Get(parent.ID); err != nil {
		t.Error("expected parent to survive")
	}
	if _, err := cmgr.Get(daughter.ID); err != nil {
		t.Error("expected untouched daughter to survive")
	}
}
