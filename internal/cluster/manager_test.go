package cluster

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
)

func TestMergeAndDeletePreservesEnergyAndHits(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := NewManager(hitMgr)

	parent := cmgr.NewCluster()
	daughter := cmgr.NewCluster()

	for i := 0; i < 3; i++ {
		h := &calohit.Hit{Position: geometry.Vector3{X: float64(i)}, PseudoLayer: i, ElectromagneticEnergy: 1.0}
		id := hitMgr.Add(h)
		parent.AddHit(id, i)
	}
	for i := 0; i < 2; i++ {
		h := &calohit.Hit{Position: geometry.Vector3{X: float64(i + 10)}, PseudoLayer: i, ElectromagneticEnergy: 2.0}
		id := hitMgr.Add(h)
		daughter.AddHit(id, i)
	}

	parentEnergyBefore := parent.ElectromagneticEnergy()
	daughterEnergyBefore := daughter.ElectromagneticEnergy()
	parentHitsBefore := parent.Hits.Len()
	daughterHitsBefore := daughter.Hits.Len()

	if err := cmgr.MergeAndDelete(parent.ID, daughter.ID); err != nil {
		t.Fatalf("MergeAndDelete: %v", err)
	}

	if _, err := cmgr.Get(daughter.ID); err == nil {
		t.Error("expected daughter to no longer exist after merge")
	}
	if got := parent.Hits.Len(); got != parentHitsBefore+daughterHitsBefore {
		t.Errorf("parent hit count = %d, want %d", got, parentHitsBefore+daughterHitsBefore)
	}
	if got := parent.ElectromagneticEnergy(); got != parentEnergyBefore+daughterEnergyBefore {
		t.Errorf("parent energy = %f, want %f", got, parentEnergyBefore+daughterEnergyBefore)
	}
}

func TestFragmentationRollback(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := NewManager(hitMgr)
	seed := cmgr.NewCluster()

	originalName, newName := cmgr.InitializeFragmentation([]pfcore.ClusterID{seed.ID})

	// New candidate gets a replacement cluster; ending on original
	// should delete the replacement and keep the seed.
	replacement := cmgr.NewCluster()
	cmgr.SaveList(newName, []pfcore.ClusterID{replacement.ID})

	if err := cmgr.EndFragmentation(originalName, newName); err != nil {
		t.Fatalf("EndFragmentation: %v", err)
	}
	if _, err := cmgr.Get(seed.ID); err != nil {
		t.Error("expected seed cluster to survive rollback to original")
	}
	if _, err := cmgr.Get(replacement.ID); err == nil {
		t.Error("expected replacement cluster to be deleted on rollback")
	}
}
