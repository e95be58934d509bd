package plugin

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
)

func TestDBSCANClusteringPluginSeparatesDenseGroups(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)

	add := func(x, y, z float64, layer int) {
		h := &calohit.Hit{Position: geometry.Vector3{X: x, Y: y, Z: z}, PseudoLayer: layer}
		hitMgr.Add(h)
	}

	for i := 0; i < 5; i++ {
		add(float64(i), 0, 0, i)
	}
	for i := 0; i < 5; i++ {
		add(1000+float64(i), 0, 0, i)
	}

	p := &DBSCANClusteringPlugin{Eps: 5, MinPts: 3}
	clusters, err := p.Cluster(hitMgr.AvailableIDs(), hitMgr, cmgr)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	for _, c := range clusters {
		if c.Hits.Len() != 5 {
			t.Errorf("cluster %d has %d hits, want 5", c.ID, c.Hits.Len())
		}
	}
}
