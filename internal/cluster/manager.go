package cluster

import (
	"sort"
	"sync"

	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/google/uuid"
)

// Manager owns every cluster by id, plus a set of named list snapshots
// used by fragmentation and reclustering transactions (internal/merge,
// internal/recluster). Exactly one name is "current" at a time; that is
// the population every non-transactional operator reads and mutates.
//
// Grounded on l5tracks.Tracker's map[string]*TrackedObject + mutex
// shape, generalised from a single flat population to named snapshots
// because the cluster manager contract (spec §6) requires saving and
// swapping whole candidate lists, not just individual entities.
type Manager struct {
	mu sync.RWMutex

	clusters map[pfcore.ClusterID]*Cluster
	nextID   pfcore.ClusterID

	lists       map[string][]pfcore.ClusterID
	currentName string

	hitMgr *calohit.Manager
}

// NewManager returns a manager with a single empty "input" list marked
// current.
func NewManager(hitMgr *calohit.Manager) *Manager {
	m := &Manager{
		clusters:    make(map[pfcore.ClusterID]*Cluster),
		lists:       make(map[string][]pfcore.ClusterID),
		currentName: "input",
		hitMgr:      hitMgr,
	}
	m.lists[m.currentName] = nil
	return m
}

// NewCluster allocates a new cluster in the manager, assigns it an id,
// and appends it to the current list.
func (m *Manager) NewCluster() *Cluster {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := NewCluster(m.hitMgr)
	c.ID = m.nextID
	m.clusters[c.ID] = c
	m.lists[m.currentName] = append(m.lists[m.currentName], c.ID)
	return c
}

// Get returns the cluster for id, or ErrNotFound.
func (m *Manager) Get(id pfcore.ClusterID) (*Cluster, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clusters[id]
	if !ok {
		return nil, pfcore.ErrNotFound
	}
	return c, nil
}

// GetCurrentList returns the current list's name and a stable-ordered
// snapshot of the clusters it contains.
func (m *Manager) GetCurrentList() (string, []*Cluster) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentName, m.resolve(m.lists[m.currentName])
}

func (m *Manager) resolve(ids []pfcore.ClusterID) []*Cluster {
	out := make([]*Cluster, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.clusters[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SaveList records subset under name, without changing which list is
// current.
func (m *Manager) SaveList(name string, subset []pfcore.ClusterID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]pfcore.ClusterID, len(subset))
	copy(cp, subset)
	m.lists[name] = cp
}

// ReplaceCurrentList makes name the current list permanently.
func (m *Manager) ReplaceCurrentList(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[name]; !ok {
		return pfcore.ErrNotFound
	}
	m.currentName = name
	return nil
}

// TemporarilyReplaceCurrentList is identical to ReplaceCurrentList at
// the storage level; the "temporarily" is a caller-side contract
// (reclustering restores a prior name via EndReclustering), matching
// the source library where both calls hit the same manager mutator.
func (m *Manager) TemporarilyReplaceCurrentList(name string) error {
	return m.ReplaceCurrentList(name)
}

// InitializeFragmentation snapshots seed under a freshly minted original
// name and creates an empty list under a freshly minted new name,
// returning both. The seed clusters' hits are not modified here; callers
// overlay their own hit-availability semantics (internal/recluster).
func (m *Manager) InitializeFragmentation(seed []pfcore.ClusterID) (originalName, newName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	originalName = "frag-orig-" + uuid.NewString()
	newName = "frag-new-" + uuid.NewString()
	cp := make([]pfcore.ClusterID, len(seed))
	copy(cp, seed)
	m.lists[originalName] = cp
	m.lists[newName] = nil
	return originalName, newName
}

// EndFragmentation deletes every cluster present only in deleteName
// (i.e. not also present in keepName) and removes both transient list
// names, leaving the manager's current list untouched unless the caller
// separately calls ReplaceCurrentList.
func (m *Manager) EndFragmentation(keepName, deleteName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep, ok := m.lists[keepName]
	if !ok {
		return pfcore.ErrNotFound
	}
	del, ok := m.lists[deleteName]
	if !ok {
		return pfcore.ErrNotFound
	}
	keepSet := make(map[pfcore.ClusterID]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}
	for _, id := range del {
		if !keepSet[id] {
			delete(m.clusters, id)
		}
	}
	delete(m.lists, keepName)
	delete(m.lists, deleteName)
	return nil
}

// MergeAndDelete absorbs daughter's hits, isolated hits and track
// associations into parent, then deletes daughter from the manager and
// from every list that names it. Hit availability bookkeeping stays
// with the hit manager (hits do not change availability on a merge,
// since they remain assigned, just to a different cluster).
func (m *Manager) MergeAndDelete(parent, daughter pfcore.ClusterID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.clusters[parent]
	if !ok {
		return pfcore.ErrNotFound
	}
	d, ok := m.clusters[daughter]
	if !ok {
		return pfcore.ErrNotFound
	}
	if parent == daughter {
		return pfcore.ErrInvalidParameter
	}

	p.Hits.MergeFrom(d.Hits)
	p.Isolated.MergeFrom(d.Isolated)
	p.Tracks = append(p.Tracks, d.Tracks...)
	p.invalidateFit()

	delete(m.clusters, daughter)
	for name, ids := range m.lists {
		m.lists[name] = removeID(ids, daughter)
	}
	return nil
}

// Delete removes cluster id entirely (its hits become orphaned; callers
// that need them recoverable should reassign hits before deleting).
func (m *Manager) Delete(id pfcore.ClusterID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clusters[id]; !ok {
		return pfcore.ErrNotFound
	}
	delete(m.clusters, id)
	for name, ids := range m.lists {
		m.lists[name] = removeID(ids, id)
	}
	return nil
}

// AddIsolatedToCluster adds hitID to cluster id's isolated list at
// pseudoLayer.
func (m *Manager) AddIsolatedToCluster(id pfcore.ClusterID, hitID pfcore.CaloHitID, pseudoLayer int) error {
	m.mu.RLock()
	c, ok := m.clusters[id]
	m.mu.RUnlock()
	if !ok {
		return pfcore.ErrNotFound
	}
	c.AddIsolatedHit(hitID, pseudoLayer)
	return nil
}

// AddTrackClusterAssociation records trackID on cluster id's track list.
// Symmetric track-side bookkeeping is the caller's responsibility (see
// track.Manager.Associate), matching the manager contract in spec §6.
func (m *Manager) AddTrackClusterAssociation(id pfcore.ClusterID, trackID pfcore.TrackID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clusters[id]
	if !ok {
		return pfcore.ErrNotFound
	}
	for _, t := range c.Tracks {
		if t == trackID {
			return pfcore.ErrAlreadyPresent
		}
	}
	c.Tracks = append(c.Tracks, trackID)
	return nil
}

func removeID(ids []pfcore.ClusterID, target pfcore.ClusterID) []pfcore.ClusterID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
