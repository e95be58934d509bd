// Package track models extrapolated charged-particle tracks and the
// helices used to project them into the calorimeter.
package track

import (
	"sync"

	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// State is a track's position and direction at a named reference point.
type State struct {
	Position  geometry.Vector3
	Direction geometry.Vector3
}

// Track is a charged particle's extrapolated path. Created from external
// input with immutable geometry; only association (its cluster, and
// parent/daughter/sibling links) mutates after creation.
type Track struct {
	ID pfcore.TrackID

	AtStart       State
	AtEnd         State
	AtCalorimeter State

	EnergyAtDCA float64
	HelixAtCalorimeter Helix

	CanFormPFO    bool
	ReachesEndcap bool // false => reaches barrel

	ParentID, DaughterID, SiblingID *pfcore.TrackID

	associatedCluster *pfcore.ClusterID
}

// AssociatedCluster returns the id of the cluster associated with this
// track, and false if none.
func (t *Track) AssociatedCluster() (pfcore.ClusterID, bool) {
	if t.associatedCluster == nil {
		return 0, false
	}
	return *t.associatedCluster, true
}

// setAssociatedCluster is unexported: track<->cluster association is
// mutated only through Manager, which keeps both sides symmetric.
func (t *Track) setAssociatedCluster(id *pfcore.ClusterID) {
	t.associatedCluster = id
}

// Manager owns the track population, keyed by id, behind a mutex so
// diagnostics can read state between pipeline passes.
type Manager struct {
	mu     sync.RWMutex
	tracks map[pfcore.TrackID]*Track
	nextID pfcore.TrackID
}

// NewManager returns an empty track manager.
func NewManager() *Manager {
	return &Manager{tracks: make(map[pfcore.TrackID]*Track)}
}

// Add registers a new track, assigning it an id.
func (m *Manager) Add(t *Track) pfcore.TrackID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.tracks[t.ID] = t
	return t.ID
}

// Get returns the track for id, or ErrNotFound.
func (m *Manager) Get(id pfcore.TrackID) (*Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tracks[id]
	if !ok {
		return nil, pfcore.ErrNotFound
	}
	return t, nil
}

// All returns every track in ascending id order.
func (m *Manager) All() []*Track {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		out = append(out, t)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ID > out[j].ID; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Unassociated returns every track with no associated cluster.
func (m *Manager) Unassociated() []*Track {
	var out []*Track
	for _, t := range m.All() {
		if _, ok := t.AssociatedCluster(); !ok {
			out = append(out, t)
		}
	}
	return out
}

// Associate records a symmetric track<->cluster association. setCluster
// is supplied by the caller (cluster.Manager) to update the cluster
// side atomically; this keeps the two managers from importing each
// other.
func (m *Manager) Associate(id pfcore.TrackID, clusterID pfcore.ClusterID, setCluster func(pfcore.TrackID, pfcore.ClusterID)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return pfcore.ErrNotFound
	}
	c := clusterID
	t.setAssociatedCluster(&c)
	setCluster(id, clusterID)
	return nil
}

// ClearAssociation removes id's cluster association, if any.
func (m *Manager) ClearAssociation(id pfcore.TrackID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[id]
	if !ok {
		return pfcore.ErrNotFound
	}
	t.setAssociatedCluster(nil)
	return nil
}
