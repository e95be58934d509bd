package merge

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/geomquery"
)

func contactHit(hitMgr *calohit.Manager, c *cluster.Cluster, layer int, pos geometry.Vector3) {
	h := &calohit.Hit{
		Position:     pos,
		PseudoLayer:  layer,
		CellSize0:    10,
		CellSize1:    10,
		HadronicEnergy: 0.1,
	}
	id := hitMgr.Add(h)
	c.AddHit(id, layer)
}

func fragmentRemovalConfig() Config {
	return Config{
		NMaxPasses:  2,
		WeightContact:  1.0,
		WeightCone:     0,
		WeightDistance: 0,
		MinEvidence:    0.5,
		ConeParams: geomquery.ContactParameters{
			ConeCosineHalfAngles:    []float64{0.9},
			CloseHitDistances:       []float64{50, 100},
			ContactDistanceThreshold: 1.0,
			MinCosOpeningAngle:      -1,
		},
		// Lowest contact-evidence tier fires on any single shared layer,
		// matching these single-hit fixtures; the other two tiers keep
		// the reference algorithm's 10/4 layer thresholds.
		ContactEvidenceNLayers1: 10,
		ContactEvidenceNLayers2: 4,
		ContactEvidenceNLayers3: 0,
		ContactEvidence1:        2.0,
		ContactEvidence2:        1.0,
		ContactEvidence3:        1.0,
	}
}

func TestRunPhotonFragmentRemovalMergesOverlappingContact(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	daughter := cmgr.NewCluster()
	contactHit(hitMgr, daughter, 3, geometry.Vector3{Z: 300})

	parent := cmgr.NewCluster()
	contactHit(hitMgr, parent, 3, geometry.Vector3{Z: 300})

	cfg := fragmentRemovalConfig()

	if err := RunPhotonFragmentRemoval(cmgr, cfg, nil); err != nil {
		t.Fatalf("RunPhotonFragmentRemoval: %v", err)
	}
	if _, err := cmgr.Get(daughter.ID); err == nil {
		t.Error("expected the fully-overlapping fragment to be merged away")
	}
	if _, err := cmgr.Get(parent.ID); err != nil {
		t.Error("expected the parent to survive")
	}
}

func TestRunNeutralFragmentRemovalLeavesSeparateClustersAlone(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	a := cmgr.NewCluster()
	contactHit(hitMgr, a, 3, geometry.Vector3{Z: 300})

	b := cmgr.NewCluster()
	contactHit(hitMgr, b, 10, geometry.Vector3{Z: 10000})

	cfg := fragmentRemovalConfig()

	if err := RunNeutralFragmentRemoval(cmgr, cfg); err != nil {
		t.Fatalf("RunNeutralFragmentRemoval: %v", err)
	}
	if _, err := cmgr.Get(a.ID); err != nil {
		t.Error("expected cluster a to survive")
	}
	if _, err := cmgr.Get(b.ID); err != nil {
		t.Error("expected cluster b to survive")
	}
}
