package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/geomquery"
	"github.com/caloflow/pfreco/internal/track"
)

func mipHit(hitMgr *calohit.Manager, c *cluster.Cluster, layer int, pos geometry.Vector3) {
	h := &calohit.Hit{
		Position:          pos,
		ExpectedDirection: geometry.Vector3{Z: 1},
		PseudoLayer:       layer,
		IsPossibleMip:     true,
	}
	id := hitMgr.Add(h)
	c.AddHit(id, layer)
}

func TestRunProximityBasedMergingMergesCloseFragment(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	daughter := cmgr.NewCluster()
	mipHit(hitMgr, daughter, 5, geometry.Vector3{Z: 500})

	parent := cmgr.NewCluster()
	mipHit(hitMgr, parent, 6, geometry.Vector3{Z: 600})

	cfg := Config{
		MinMipFractionForMerge:   0.8,
		NGenericDistanceLayers:   3,
		NAdjacentLayersToExamine: 2,
		MaxParallelDistance:      150,
		MinCloseHitFraction:      0.5,
		MinContactFraction:       0.5,
		ConeParams: geomquery.ContactParameters{
			CloseHitDistances:       []float64{150, 150},
			ContactDistanceThreshold: 150,
			ConeCosineHalfAngles:     []float64{0.9, 0.95, 0.98},
		},
	}

	if err := RunProximityBasedMerging(cmgr, trackMgr, cfg); err != nil {
		t.Fatalf("RunProximityBasedMerging: %v", err)
	}

	if _, err := cmgr.Get(daughter.ID); err == nil {
		t.Error("expected the close fragment to be merged away")
	}
	if _, err := cmgr.Get(parent.ID); err != nil {
		t.Error("expected the parent cluster to survive")
	}
}

func TestRunProximityBasedMergingLeavesDistantClusterAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	daughter := cmgr.NewCluster()
	mipHit(hitMgr, daughter, 5, geometry.Vector3{Z: 500})

	parent := cmgr.NewCluster()
	mipHit(hitMgr, parent, 6, geometry.Vector3{Z: 5000})

	cfg := Config{
		MinMipFractionForMerge:   0.8,
		NGenericDistanceLayers:   3,
		NAdjacentLayersToExamine: 2,
		MaxParallelDistance:      150,
		MinCloseHitFraction:      0.5,
		MinContactFraction:       0.5,
		ConeParams: geomquery.ContactParameters{
			CloseHitDistances:       []float64{150, 150},
			ContactDistanceThreshold: 150,
			ConeCosineHalfAngles:     []float64{0.9, 0.95, 0.98},
		},
	}

	if err := RunProximityBasedMerging(cmgr, trackMgr, cfg); err != nil {
		t.Fatalf("RunProximityBasedMerging: %v", err)
	}
	if _, err := cmgr.Get(daughter.ID); err != nil {
		t.Error("expected the distant cluster to be left unmerged")
	}
}
