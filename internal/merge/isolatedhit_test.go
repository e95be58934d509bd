package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
)

// TestIsolatedHitMergingAttachesNearbyHit mirrors the spec scenario: an
// isolated 0.05 GeV hit at (100,0,500) with a nearby 50-hit cluster
// centred at (105,0,500) should be attached as isolated since the
// separation (5mm) is well under max_recombination_distance (250mm).
func TestIsolatedHitMergingAttachesNearbyHit(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	nearby := cmgr.NewCluster()
	for i := 0; i < 50; i++ {
		h := &calohit.Hit{
			Position:              geometry.Vector3{X: 105, Y: 0, Z: 500},
			PseudoLayer:           10,
			ElectromagneticEnergy: 0.01,
		}
		id := hitMgr.Add(h)
		nearby.AddHit(id, 10)
	}

	isolatedHit := &calohit.Hit{
		Position:              geometry.Vector3{X: 100, Y: 0, Z: 500},
		PseudoLayer:           10,
		ElectromagneticEnergy: 0.05,
	}
	isolatedID := hitMgr.Add(isolatedHit)

	cfg := Config{MaxRecombinationDistance: 250.0, MinHitsInCluster: 5}
	if err := RunIsolatedHitMerging(cmgr, hitMgr, cfg); err != nil {
		t.Fatalf("RunIsolatedHitMerging: %v", err)
	}

	if hitMgr.IsAvailable(isolatedID) {
		t.Error("expected isolated hit to be attached, but it is still available")
	}
	if !nearby.Isolated.Contains(isolatedID) {
		t.Error("expected isolated hit to be recorded on nearby cluster's isolated list")
	}
}

func TestIsolatedHitMergingLeavesDistantHitUnattached(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	nearby := cmgr.NewCluster()
	for i := 0; i < 10; i++ {
		h := &calohit.Hit{Position: geometry.Vector3{X: 0, Y: 0, Z: 0}, PseudoLayer: 1, ElectromagneticEnergy: 0.01}
		id := hitMgr.Add(h)
		nearby.AddHit(id, 1)
	}

	farHit := &calohit.Hit{Position: geometry.Vector3{X: 10000, Y: 0, Z: 0}, PseudoLayer: 1, ElectromagneticEnergy: 0.05}
	farID := hitMgr.Add(farHit)

	cfg := Config{MaxRecombinationDistance: 250.0, MinHitsInCluster: 5}
	if err := RunIsolatedHitMerging(cmgr, hitMgr, cfg); err != nil {
		t.Fatalf("RunIsolatedHitMerging: %v", err)
	}

	if !hitMgr.IsAvailable(farID) {
		t.Error("expected distant hit to remain available (unattached)")
	}
}
