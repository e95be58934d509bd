package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
)

func TestRunBackscatteredTracksMergingAttachesDaughterInMipSection(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	parent := cmgr.NewCluster()
	for layer := 1; layer <= 10; layer++ {
		mipHit(hitMgr, parent, layer, geometry.Vector3{Z: float64(layer) * 100})
	}
	parent.ShowerStartLayer = 5

	daughter := cmgr.NewCluster()
	mipHit(hitMgr, daughter, 2, geometry.Vector3{X: 5, Z: 200})
	mipHit(hitMgr, daughter, 3, geometry.Vector3{X: 5, Z: 300})

	mergeCfg := Config{MinMipFractionForMerge: 0.8}
	bsCfg := BackscatteredConfig{Variant: VariantDaughterInParentMipSection}

	if err := RunBackscatteredTracksMerging(cmgr, mergeCfg, bsCfg); err != nil {
		t.Fatalf("RunBackscatteredTracksMerging: %v", err)
	}
	if _, err := cmgr.Get(daughter.ID); err == nil {
		t.Error("expected the daughter contained in the parent's mip section to be merged")
	}
	if _, err := cmgr.Get(parent.ID); err != nil {
		t.Error("expected the parent to survive")
	}
}

func TestRunBackscatteredTracksMergingLeavesDaughterPastShowerStartAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	parent := cmgr.NewCluster()
	for layer := 1; layer <= 10; layer++ {
		mipHit(hitMgr, parent, layer, geometry.Vector3{Z: float64(layer) * 100})
	}
	parent.ShowerStartLayer = 5

	daughter := cmgr.NewCluster()
	mipHit(hitMgr, daughter, 7, geometry.Vector3{X: 5, Z: 700})
	mipHit(hitMgr, daughter, 8, geometry.Vector3{X: 5, Z: 800})

	mergeCfg := Config{MinMipFractionForMerge: 0.8}
	bsCfg := BackscatteredConfig{Variant: VariantDaughterInParentMipSection}

	if err := RunBackscatteredTracksMerging(cmgr, mergeCfg, bsCfg); err != nil {
		t.Fatalf("RunBackscatteredTracksMerging: %v", err)
	}
	if _, err := cmgr.Get(daughter.ID); err != nil {
		t.Error("expected the daughter past shower start to be left unmerged")
	}
}
