// Package calohit models calorimeter energy deposits and the per-hit
// derived properties (density weight, isolation, mip-likeness) computed
// against an ordered hit list.
package calohit

import (
	"sort"
	"sync"

	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// CellGeometry distinguishes rectangular cells (ECAL/HCAL tiles) from
// pointing cells (projective towers), and carries the per-cell size used
// to scale every distance-based cut in this package.
type CellGeometry int

const (
	CellRectangular CellGeometry = iota
	CellPointing
)

// Hit is a single calorimeter energy deposit. It is created once from
// external input and never destroyed by the core; a Manager owns the
// backing storage and availability bit.
type Hit struct {
	ID                 pfcore.CaloHitID
	Position           geometry.Vector3
	ExpectedDirection  geometry.Vector3
	HitType            geometry.HitType
	Region             geometry.Region
	ElectromagneticEnergy float64
	HadronicEnergy     float64
	MipEquivalentEnergy float64
	PseudoLayer        int
	CellGeometry       CellGeometry
	CellSize0, CellSize1 float64

	// Derived properties, recomputed by RecomputeProperties.
	IsIsolated     bool
	IsPossibleMip  bool
	DensityWeight  float64
	SurroundingEnergy float64

	// MCParticleWeight maps a truth MC particle identifier to the
	// fraction of this hit's energy attributed to it. Used only by
	// truth-dependent training code (internal/photonid), never by
	// inference-path reconstruction logic.
	MCParticleWeight map[string]float64
}

// CellSize returns a representative cell size (the average of the two
// transverse cell dimensions), used throughout this package to scale
// distance cuts to granularity.
func (h *Hit) CellSize() float64 {
	return (h.CellSize0 + h.CellSize1) / 2
}

// Manager owns the hit population and the availability table: every hit
// is either unassigned or belongs to exactly one cluster, tracked
// centrally here rather than on the hit itself so reclustering
// transactions can overlay a transaction-local view (see
// internal/recluster).
type Manager struct {
	mu        sync.RWMutex
	hits      map[pfcore.CaloHitID]*Hit
	available map[pfcore.CaloHitID]bool
	nextID    pfcore.CaloHitID
}

// NewManager returns an empty hit manager.
func NewManager() *Manager {
	return &Manager{
		hits:      make(map[pfcore.CaloHitID]*Hit),
		available: make(map[pfcore.CaloHitID]bool),
	}
}

// Add registers a new hit (assigning it an id) and marks it available.
func (m *Manager) Add(h *Hit) pfcore.CaloHitID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	h.ID = m.nextID
	m.hits[h.ID] = h
	m.available[h.ID] = true
	return h.ID
}

// Get returns the hit for id, or ErrNotFound.
func (m *Manager) Get(id pfcore.CaloHitID) (*Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.hits[id]
	if !ok {
		return nil, pfcore.ErrNotFound
	}
	return h, nil
}

// IsAvailable reports whether id is currently unassigned to any cluster.
func (m *Manager) IsAvailable(id pfcore.CaloHitID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available[id]
}

// SetAvailable updates id's availability bit. Called by cluster.Manager
// whenever a hit is added to or removed from a cluster.
func (m *Manager) SetAvailable(id pfcore.CaloHitID, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available[id] = available
}

// AvailableIDs returns every currently-available hit id, in ascending id
// order (a stable, address-independent order per the system-wide
// determinism requirement).
func (m *Manager) AvailableIDs() []pfcore.CaloHitID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]pfcore.CaloHitID, 0, len(m.available))
	for id, ok := range m.available {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
