package recluster

import (
	"testing"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

// singleClusterPlugin puts every available hit into one new cluster; a
// minimal stand-in for a real clustering algorithm in tests.
type singleClusterPlugin struct{}

func (singleClusterPlugin) Name() string { return "single" }

func (singleClusterPlugin) Cluster(available []pfcore.CaloHitID, hitMgr *calohit.Manager, cmgr *cluster.Manager) ([]*cluster.Cluster, error) {
	if len(available) == 0 {
		return nil, nil
	}
	c := cmgr.NewCluster()
	for _, id := range available {
		h, err := hitMgr.Get(id)
		if err != nil {
			continue
		}
		c.AddHit(id, h.PseudoLayer)
		hitMgr.SetAvailable(id, false)
	}
	return []*cluster.Cluster{c}, nil
}

func TestTransactionAbortRestoresSeed(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	seed := cmgr.NewCluster()
	h := &calohit.Hit{Position: geometry.Vector3{X: 1}, PseudoLayer: 1}
	id := hitMgr.Add(h)
	seed.AddHit(id, 1)
	hitMgr.SetAvailable(id, false)

	tx, err := InitializeReclustering(cmgr, hitMgr, trackMgr, nil, []pfcore.ClusterID{seed.ID})
	if err != nil {
		t.Fatalf("InitializeReclustering: %v", err)
	}
	if !hitMgr.IsAvailable(id) {
		t.Error("expected seed hit to become available during the transaction")
	}

	if err := tx.EndReclustering(Abort); err != nil {
		t.Fatalf("EndReclustering(Abort): %v", err)
	}
	if _, err := cmgr.Get(seed.ID); err != nil {
		t.Error("expected seed cluster to survive an aborted transaction")
	}
	if hitMgr.IsAvailable(id) {
		t.Error("expected seed hit to be unavailable again after abort")
	}
}

func TestTransactionCommitReplacesSeed(t *testing.T) {
	hitMgr := calohit.NewManager()
	cmgr := cluster.NewManager(hitMgr)
	trackMgr := track.NewManager()

	seed := cmgr.NewCluster()
	h := &calohit.Hit{Position: geometry.Vector3{X: 1}, PseudoLayer: 1}
	id := hitMgr.Add(h)
	seed.AddHit(id, 1)

	tx, err := InitializeReclustering(cmgr, hitMgr, trackMgr, nil, []pfcore.ClusterID{seed.ID})
	if err != nil {
		t.Fatalf("InitializeReclustering: %v", err)
	}

	replacements, err := tx.RunClustering(singleClusterPlugin{})
	if err != nil {
		t.Fatalf("RunClustering: %v", err)
	}
	if len(replacements) != 1 {
		t.Fatalf("expected exactly one replacement cluster, got %d", len(replacements))
	}
	replacementID := replacements[0].ID

	if err := tx.EndReclustering(Commit); err != nil {
		t.Fatalf("EndReclustering(Commit): %v", err)
	}
	if _, err := cmgr.Get(seed.ID); err == nil {
		t.Error("expected seed cluster to be deleted after commit")
	}
	if _, err := cmgr.Get(replacementID); err != nil {
		t.Error("expected replacement cluster to survive commit")
	}

	_, outer := cmgr.GetCurrentList()
	if len(outer) != 1 {
		t.Fatalf("expected exactly one cluster in the outer list after commit, got %d", len(outer))
	}
	if outer[0].ID != replacementID {
		t.Errorf("expected outer list to contain the replacement cluster, got %v", outer[0].ID)
	}
}
