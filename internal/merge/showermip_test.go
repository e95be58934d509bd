package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
)

func TestRunShowerMipMergingMergesAlignedStub(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	parent := cmgr.NewCluster()
	mipHit(hitMgr, parent, 1, geometry.Vector3{Z: 100})
	mipHit(hitMgr, parent, 2, geometry.Vector3{Z: 200})
	mipHit(hitMgr, parent, 3, geometry.Vector3{Z: 300})

	daughter := cmgr.NewCluster()
	mipHit(hitMgr, daughter, 4, geometry.Vector3{Z: 400})
	mipHit(hitMgr, daughter, 5, geometry.Vector3{Z: 500})

	mergeCfg := Config{MinMipFractionForMerge: 0.8}
	smCfg := ShowerMipConfig{
		Variant:                  VariantParentEndToDaughterStart,
		NFitLayers:               2,
		MaxLayerGap:              2,
		MaxCentroidSeparation:    150,
		PerpendicularDistanceCut: 10,
	}

	if err := RunShowerMipMerging(cmgr, mergeCfg, smCfg); err != nil {
		t.Fatalf("RunShowerMipMerging: %v", err)
	}

	if _, err := cmgr.Get(daughter.ID); err == nil {
		t.Error("expected the collinear mip stub to be merged into the parent track")
	}
	if _, err := cmgr.Get(parent.ID); err != nil {
		t.Error("expected the parent to survive")
	}
}

func TestRunShowerMipMergingLeavesOffAxisStubAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	parent := cmgr.NewCluster()
	mipHit(hitMgr, parent, 1, geometry.Vector3{Z: 100})
	mipHit(hitMgr, parent, 2, geometry.Vector3{Z: 200})
	mipHit(hitMgr, parent, 3, geometry.Vector3{Z: 300})

	daughter := cmgr.NewCluster()
	mipHit(hitMgr, daughter, 4, geometry.Vector3{X: 500, Z: 400})
	mipHit(hitMgr, daughter, 5, geometry.Vector3{X: 500, Z: 500})

	mergeCfg := Config{MinMipFractionForMerge: 0.8}
	smCfg := ShowerMipConfig{
		Variant:                  VariantParentEndToDaughterStart,
		NFitLayers:               2,
		MaxLayerGap:              2,
		MaxCentroidSeparation:    150,
		PerpendicularDistanceCut: 10,
	}

	if err := RunShowerMipMerging(cmgr, mergeCfg, smCfg); err != nil {
		t.Fatalf("RunShowerMipMerging: %v", err)
	}
	if _, err := cmgr.Get(daughter.ID); err != nil {
		t.Error("expected the off-axis stub to be left unmerged")
	}
}
