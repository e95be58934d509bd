package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
)

func emHit(hitMgr *calohit.Manager, c *cluster.Cluster, layer int, pos geometry.Vector3, em float64) {
	h := &calohit.Hit{Position: pos, PseudoLayer: layer, ElectromagneticEnergy: em}
	id := hitMgr.Add(h)
	c.AddHit(id, layer)
}

func TestRunMergeSplitPhotonsMergesSingleShowerPair(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	a := cmgr.NewCluster()
	emHit(hitMgr, a, 1, geometry.Vector3{Z: 100}, 1.0)
	a.ShowerMaxLayer = 1

	b := cmgr.NewCluster()
	emHit(hitMgr, b, 1, geometry.Vector3{Z: 100}, 1.0)
	b.ShowerMaxLayer = 1

	mergeCfg := Config{}
	spCfg := MergeSplitPhotonsConfig{
		MinShowerMaxOpeningAngleCosine: 0.9,
		MinContactLayers:               1,
		ProfileMaxLayer:                0,
		// No profile plugin is wired for this fixture, so the probe
		// always reports zero subsidiary-peak energy; these thresholds
		// just need to be positive for the zero subsidiary to clear them.
		AcceptMaxSubsidiaryPeakEnergy: 1.0,
		MaxSubsidiaryPeakRatio:        1.0,
	}

	if err := RunMergeSplitPhotons(cmgr, mergeCfg, spCfg, nil, nil); err != nil {
		t.Fatalf("RunMergeSplitPhotons: %v", err)
	}

	_, remaining := cmgr.GetCurrentList()
	if len(remaining) != 1 {
		t.Fatalf("expected the co-located shower pair to merge into one cluster, got %d", len(remaining))
	}
}

func TestRunMergeSplitPhotonsLeavesDistinctDirectionsAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	a := cmgr.NewCluster()
	emHit(hitMgr, a, 1, geometry.Vector3{Z: 100}, 1.0)
	a.ShowerMaxLayer = 1

	b := cmgr.NewCluster()
	emHit(hitMgr, b, 1, geometry.Vector3{X: 100, Z: 1}, 1.0)
	b.ShowerMaxLayer = 1

	mergeCfg := Config{}
	spCfg := MergeSplitPhotonsConfig{
		MinShowerMaxOpeningAngleCosine: 0.9,
		MinContactLayers:               1,
		ProfileMaxLayer:                0,
	}

	if err := RunMergeSplitPhotons(cmgr, mergeCfg, spCfg, nil, nil); err != nil {
		t.Fatalf("RunMergeSplitPhotons: %v", err)
	}
	_, remaining := cmgr.GetCurrentList()
	if len(remaining) != 2 {
		t.Fatalf("expected clusters pointing in very different directions to stay separate, got %d", len(remaining))
	}
}
