package recovery

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/track"
)

func TestHelixRunAssociatesClosestCompatiblePair(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	// A straight (zero-curvature) helix running along +Z from the origin.
	c := cmgr.NewCluster()
	addHitAt(hitMgr, c, 1, geometry.Vector3{X: 2, Y: 0, Z: 50}, 2.0)

	trackMgr := track.NewManager()
	tr := newTrackAt(geometry.Vector3{}, geometry.Vector3{Z: 1}, 2.0, false)
	id := trackMgr.Add(tr)

	h := Helix{Cfg: testConfig()}
	if err := h.Run(trackMgr, cmgr); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := trackMgr.Get(id)
	cid, ok := got.AssociatedCluster()
	if !ok {
		t.Fatal("expected the track to be associated")
	}
	if cid != c.ID {
		t.Errorf("associated with cluster %v, want %v", cid, c.ID)
	}
}

func TestHelixRunRejectsIncompatibleZSeparation(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	c := cmgr.NewCluster()
	// Cluster's inner centroid sits far beyond MaxZSeparation from the
	// track's calorimeter intercept (z=0).
	addHitAt(hitMgr, c, 1, geometry.Vector3{X: 2, Y: 0, Z: 1000}, 2.0)

	trackMgr := track.NewManager()
	tr := newTrackAt(geometry.Vector3{}, geometry.Vector3{Z: 1}, 2.0, false)
	id := trackMgr.Add(tr)

	h := Helix{Cfg: testConfig()}
	if err := h.Run(trackMgr, cmgr); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := trackMgr.Get(id)
	if _, ok := got.AssociatedCluster(); ok {
		t.Error("expected no association across an incompatible z separation")
	}
}

func TestHelixRunResolvesGreedilyAcrossMultiplePairs(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	// Both tracks share one helix, so cNear is equally close to each and
	// closer than cFar is to either track; the greedy resolver takes the
	// first globally closest pair (trackA, cNear), then falls back to
	// (trackB, cFar) for the remainder.
	cNear := cmgr.NewCluster()
	addHitAt(hitMgr, cNear, 1, geometry.Vector3{X: 1, Y: 0, Z: 50}, 2.0)

	cFar := cmgr.NewCluster()
	addHitAt(hitMgr, cFar, 1, geometry.Vector3{X: 8, Y: 0, Z: 50}, 3.0)

	trackMgr := track.NewManager()
	trA := newTrackAt(geometry.Vector3{}, geometry.Vector3{Z: 1}, 2.0, false)
	idA := trackMgr.Add(trA)
	trB := newTrackAt(geometry.Vector3{}, geometry.Vector3{Z: 1}, 3.0, false)
	idB := trackMgr.Add(trB)

	h := Helix{Cfg: testConfig()}
	if err := h.Run(trackMgr, cmgr); err != nil {
		t.Fatalf("Run: %v", err)
	}

	gotA, _ := trackMgr.Get(idA)
	cidA, ok := gotA.AssociatedCluster()
	if !ok || cidA != cNear.ID {
		t.Errorf("expected trackA to take the globally closest cluster %v, got %v (ok=%v)", cNear.ID, cidA, ok)
	}

	gotB, _ := trackMgr.Get(idB)
	cidB, ok := gotB.AssociatedCluster()
	if !ok || cidB != cFar.ID {
		t.Errorf("expected trackB to take the remaining cluster %v, got %v (ok=%v)", cFar.ID, cidB, ok)
	}
}
