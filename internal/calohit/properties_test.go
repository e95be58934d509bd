package calohit

import (
	"testing"

	"github.com/caloflow/pfreco/internal/geometry"
)

func TestRecomputePropertiesIsolation(t *testing.T) {
	mgr := NewManager()
	geo := geometry.NewContext()
	list := NewOrderedList()
	cfg := DefaultConfig()

	isolated := &Hit{
		Position:    geometry.Vector3{X: 0, Y: 0, Z: 0},
		HitType:     geometry.HitTypeECAL,
		PseudoLayer: 5,
		CellSize0:   10, CellSize1: 10,
		MipEquivalentEnergy: 0.5,
	}
	id := mgr.Add(isolated)
	list.Add(id, isolated.PseudoLayer)

	if err := RecomputeProperties(isolated, list, mgr, geo, cfg); err != nil {
		t.Fatalf("RecomputeProperties: %v", err)
	}
	if !isolated.IsIsolated {
		t.Error("hit with no neighbours should be flagged isolated")
	}

	// Add enough close neighbours to exceed the isolation threshold.
	for i := 0; i < 5; i++ {
		n := &Hit{
			Position:    geometry.Vector3{X: float64(i + 1), Y: 0, Z: 0},
			HitType:     geometry.HitTypeECAL,
			PseudoLayer: 5,
			CellSize0:   10, CellSize1: 10,
		}
		nid := mgr.Add(n)
		list.Add(nid, n.PseudoLayer)
	}
	if err := RecomputeProperties(isolated, list, mgr, geo, cfg); err != nil {
		t.Fatalf("RecomputeProperties: %v", err)
	}
	if isolated.IsIsolated {
		t.Error("hit with several close neighbours should not be flagged isolated")
	}
}

func TestRecomputePropertiesInvalidParameter(t *testing.T) {
	if err := RecomputeProperties(nil, NewOrderedList(), NewManager(), geometry.NewContext(), DefaultConfig()); err == nil {
		t.Error("expected error for nil hit")
	}
}
