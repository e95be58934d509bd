// Package recluster implements the transactional reclustering model of
// spec §4.8: a scoped re-run of clustering and association over a seed
// set of clusters' hits, committed only if the result is an improvement,
// otherwise rolled back to the seed state. Grounded on
// internal/lidar's FragmentMerger candidate-generation/scoring/commit
// shape, generalised to an N-candidate transactional commit with an
// explicit outcome parameter rather than destructor-driven rollback.
package recluster

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/plugin"
	"github.com/caloflow/pfreco/internal/track"
)

// Outcome tells EndReclustering whether to commit the winning candidate
// or roll back to the seed state.
type Outcome int

const (
	Abort Outcome = iota
	Commit
)

// Transaction is a single scoped reclustering attempt. Every
// InitializeReclustering must be paired with exactly one EndReclustering
// on every code path, success or error, so the manager never sees an
// orphaned candidate list (spec §9's scoped-resource release guarantee).
type Transaction struct {
	cmgr     *cluster.Manager
	hitMgr   *calohit.Manager
	trackMgr *track.Manager

	outerCurrentName string
	originalName     string // snapshot of the seed clusters
	candidateName    string // current winning candidate's list name
	seedClusterIDs   []pfcore.ClusterID
	tracks           []pfcore.TrackID

	committed bool
}

// InitializeReclustering snapshots seedClusters under a fresh handle and
// makes their hits available again for a fresh clustering pass. tracks
// records which tracks this reclustering attempt is trying to satisfy;
// operators read it back via Tracks().
func InitializeReclustering(cmgr *cluster.Manager, hitMgr *calohit.Manager, trackMgr *track.Manager, tracks []pfcore.TrackID, seedClusters []pfcore.ClusterID) (*Transaction, error) {
	outerCurrentName, _ := cmgr.GetCurrentList()
	originalName, candidateName := cmgr.InitializeFragmentation(seedClusters)

	for _, cid := range seedClusters {
		c, err := cmgr.Get(cid)
		if err != nil {
			continue
		}
		for _, id := range c.Hits.All() {
			hitMgr.SetAvailable(id, true)
		}
		for _, id := range c.Isolated.All() {
			hitMgr.SetAvailable(id, true)
		}
	}

	return &Transaction{
		cmgr:             cmgr,
		hitMgr:           hitMgr,
		trackMgr:         trackMgr,
		outerCurrentName: outerCurrentName,
		originalName:     originalName,
		candidateName:    candidateName,
		seedClusterIDs:   append([]pfcore.ClusterID{}, seedClusters...),
		tracks:           append([]pfcore.TrackID{}, tracks...),
	}, nil
}

// Tracks returns the tracks this reclustering attempt targets.
func (tx *Transaction) Tracks() []pfcore.TrackID { return tx.tracks }

// RunClustering runs algo over every currently-available hit and stores
// the result under the transaction's candidate handle, replacing
// whatever candidate was there before (a transaction tries clustering
// algorithms in sequence, keeping only the most recent). Any clusters left over
// from a previous attempt in this same transaction are discarded first,
// and "current" is pointed at the candidate handle before the algorithm
// runs, so the new clusters it allocates land there instead of leaking
// into the outer population list.
func (tx *Transaction) RunClustering(algo plugin.ClusteringPlugin) ([]*cluster.Cluster, error) {
	if _, previous := listByName(tx.cmgr, tx.candidateName); previous != nil {
		for _, c := range previous {
			tx.cmgr.Delete(c.ID)
		}
	}
	if err := tx.cmgr.ReplaceCurrentList(tx.candidateName); err != nil {
		return nil, err
	}

	available := tx.hitMgr.AvailableIDs()
	clusters, err := algo.Cluster(available, tx.hitMgr, tx.cmgr)
	if err != nil {
		return nil, err
	}
	ids := make([]pfcore.ClusterID, len(clusters))
	for i, c := range clusters {
		ids[i] = c.ID
	}
	tx.cmgr.SaveList(tx.candidateName, ids)
	return clusters, nil
}

// TemporarilyReplaceCurrent makes the transaction's candidate list
// current, so association algorithms (which always operate on "the
// current list") see the candidate clusters rather than the outer
// population.
func (tx *Transaction) TemporarilyReplaceCurrent() error {
	return tx.cmgr.TemporarilyReplaceCurrentList(tx.candidateName)
}

// CandidateClusters returns the clusters presently stored under the
// transaction's candidate handle.
func (tx *Transaction) CandidateClusters() []*cluster.Cluster {
	if err := tx.cmgr.ReplaceCurrentList(tx.candidateName); err != nil {
		return nil
	}
	_, clusters := tx.cmgr.GetCurrentList()
	return clusters
}

// EndReclustering concludes the transaction. On Commit, the candidate
// clusters replace the seed clusters in the outer list and the seed
// clusters are deleted; on Abort, the candidate clusters are deleted
// and the seed clusters (with their hits marked unavailable again) are
// restored, leaving no trace of the attempt.
func (tx *Transaction) EndReclustering(outcome Outcome) error {
	if tx.committed {
		return pfcore.ErrInvalidParameter
	}
	tx.committed = true

	switch outcome {
	case Commit:
		_, candidateClusters := listByName(tx.cmgr, tx.candidateName)
		if err := tx.cmgr.EndFragmentation(tx.candidateName, tx.originalName); err != nil {
			return err
		}
		_, outerClusters := listByName(tx.cmgr, tx.outerCurrentName)
		merged := mergeClusterIDs(outerClusters, tx.seedClusterIDs, candidateClusters)
		tx.cmgr.SaveList(tx.outerCurrentName, merged)
		return tx.cmgr.ReplaceCurrentList(tx.outerCurrentName)

	default: // Abort
		for _, cid := range tx.seedClusterIDs {
			c, err := tx.cmgr.Get(cid)
			if err != nil {
				continue
			}
			for _, id := range c.Hits.All() {
				tx.hitMgr.SetAvailable(id, false)
			}
			for _, id := range c.Isolated.All() {
				tx.hitMgr.SetAvailable(id, false)
			}
		}
		if err := tx.cmgr.EndFragmentation(tx.originalName, tx.candidateName); err != nil {
			return err
		}
		return tx.cmgr.ReplaceCurrentList(tx.outerCurrentName)
	}
}

func listByName(cmgr *cluster.Manager, name string) (string, []*cluster.Cluster) {
	if err := cmgr.ReplaceCurrentList(name); err != nil {
		return name, nil
	}
	return cmgr.GetCurrentList()
}

func mergeClusterIDs(outer []*cluster.Cluster, exclude []pfcore.ClusterID, add []*cluster.Cluster) []pfcore.ClusterID {
	excludeSet := make(map[pfcore.ClusterID]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}
	var out []pfcore.ClusterID
	for _, c := range outer {
		if excludeSet[c.ID] {
			continue
		}
		out = append(out, c.ID)
	}
	for _, c := range add {
		out = append(out, c.ID)
	}
	return out
}
