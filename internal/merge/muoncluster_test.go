package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

func TestRunMuonClusterAssociationAttachesToLeavingTrackedCandidate(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	muon := cmgr.NewCluster()
	h := &calohit.Hit{Position: geometry.Vector3{Z: 1000}, PseudoLayer: 20}
	hid := hitMgr.Add(h)
	muon.AddHit(hid, 20)

	candidate := cmgr.NewCluster()
	ch := &calohit.Hit{Position: geometry.Vector3{Z: 500}, PseudoLayer: 10, HadronicEnergy: 2.0}
	chid := hitMgr.Add(ch)
	candidate.AddHit(chid, 10)
	tid := trackMgr.Add(&track.Track{EnergyAtDCA: 0})
	candidate.Tracks = []pfcore.TrackID{tid}

	isMuon := func(c *cluster.Cluster) bool { return c.ID == muon.ID }
	isLeaving := func(c *cluster.Cluster) bool { return c.ID == candidate.ID }

	mergeCfg := Config{HadronicEnergyResolution: 0.6, MaxTrackClusterChi: 3.0}
	muCfg := MuonClusterConfig{MinHitsInMuonCluster: 1, OldChiThreshold: 3.0}

	if err := RunMuonClusterAssociation(cmgr, trackMgr, isMuon, isLeaving, mergeCfg, muCfg); err != nil {
		t.Fatalf("RunMuonClusterAssociation: %v", err)
	}

	if _, err := cmgr.Get(muon.ID); err == nil {
		t.Error("expected the muon cluster to be merged into the leaving tracked candidate")
	}
	if _, err := cmgr.Get(candidate.ID); err != nil {
		t.Error("expected the candidate to survive as the merge target")
	}
}

func TestRunMuonClusterAssociationLeavesStandaloneMuonUntouched(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	muon := cmgr.NewCluster()
	h := &calohit.Hit{Position: geometry.Vector3{Z: 1000}, PseudoLayer: 20}
	hid := hitMgr.Add(h)
	muon.AddHit(hid, 20)

	other := cmgr.NewCluster()
	oh := &calohit.Hit{Position: geometry.Vector3{Z: 500}, PseudoLayer: 10}
	ohid := hitMgr.Add(oh)
	other.AddHit(ohid, 10)

	isMuon := func(c *cluster.Cluster) bool { return c.ID == muon.ID }
	isLeaving := func(c *cluster.Cluster) bool { return false }

	mergeCfg := Config{HadronicEnergyResolution: 0.6, MaxTrackClusterChi: 3.0}
	muCfg := MuonClusterConfig{MinHitsInMuonCluster: 1, OldChiThreshold: 3.0}

	if err := RunMuonClusterAssociation(cmgr, trackMgr, isMuon, isLeaving, mergeCfg, muCfg); err != nil {
		t.Fatalf("RunMuonClusterAssociation: %v", err)
	}
	if _, err := cmgr.Get(muon.ID); err != nil {
		t.Error("expected the standalone muon cluster to remain, since no candidate qualifies")
	}
}
