// Package cluster models ordered collections of calo hits and the
// manager that owns them by id, including the named-list snapshot
// machinery fragmentation and reclustering transactions build on.
package cluster

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/fit"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// ShowerPeak is a cluster of hits extracted from a transverse
// shower-profile peak.
type ShowerPeak struct {
	Energy  float64
	RMS     float64
	HitList *calohit.OrderedList
}

// Cluster is an ordered collection of calo hits plus per-cluster
// refinement state. Created during clustering or fragmentation
// transactions, mutated by merge/associate operations, destroyed by
// delete operations, and owned by a Manager keyed by the cluster's
// current list name.
type Cluster struct {
	ID pfcore.ClusterID

	Hits     *calohit.OrderedList // non-isolated, contribute to fits and geometric measures
	Isolated *calohit.OrderedList // associated but excluded from most geometric measures

	Tracks []pfcore.TrackID

	InitialDirection geometry.Vector3
	ShowerStartLayer int
	ShowerMaxLayer   int
	IsFixedPhoton    bool

	hitMgr *calohit.Manager

	fitAllCache    *fit.Result
	fitAllCacheLen int // hit count the cache was computed at; invalidated on mutation
}

// NewCluster returns an empty cluster backed by hitMgr for hit lookups.
func NewCluster(hitMgr *calohit.Manager) *Cluster {
	return &Cluster{
		Hits:     calohit.NewOrderedList(),
		Isolated: calohit.NewOrderedList(),
		hitMgr:   hitMgr,
	}
}

// InnerLayer returns the lowest occupied pseudo-layer among non-isolated
// hits. Invariant: inner <= outer.
func (c *Cluster) InnerLayer() (int, bool) { return c.Hits.InnerLayer() }

// OuterLayer returns the highest occupied pseudo-layer among
// non-isolated hits.
func (c *Cluster) OuterLayer() (int, bool) { return c.Hits.OuterLayer() }

// invalidateFit clears the cached fit-to-all-hits result; called by
// every mutator.
func (c *Cluster) invalidateFit() {
	c.fitAllCache = nil
}

// AddHit inserts a hit at its pseudo-layer and invalidates cached fits.
func (c *Cluster) AddHit(id pfcore.CaloHitID, pseudoLayer int) {
	c.Hits.Add(id, pseudoLayer)
	c.invalidateFit()
}

// RemoveHit removes a hit from the non-isolated list (a no-op if id is
// not present) and invalidates cached fits. Used by operators that
// reassign a hit to a different cluster, e.g. photon-peak fragmentation.
func (c *Cluster) RemoveHit(id pfcore.CaloHitID) {
	c.Hits.Remove(id)
	c.invalidateFit()
}

// AddIsolatedHit adds a hit to the isolated list. Isolated hits do not
// contribute to fits or most geometric measures (invariant: disjoint
// from the non-isolated set).
func (c *Cluster) AddIsolatedHit(id pfcore.CaloHitID, pseudoLayer int) {
	c.Isolated.Add(id, pseudoLayer)
}

// Positions returns the 3D positions of every non-isolated hit, used by
// internal/fit and internal/geomquery.
func (c *Cluster) Positions() []geometry.Vector3 {
	ids := c.Hits.All()
	out := make([]geometry.Vector3, 0, len(ids))
	for _, id := range ids {
		h, err := c.hitMgr.Get(id)
		if err != nil {
			continue
		}
		out = append(out, h.Position)
	}
	return out
}

// PositionsInLayerRange returns non-isolated hit positions with
// pseudo-layer in [layerMin, layerMax].
func (c *Cluster) PositionsInLayerRange(layerMin, layerMax int) []geometry.Vector3 {
	var out []geometry.Vector3
	for layer := layerMin; layer <= layerMax; layer++ {
		for _, id := range c.Hits.HitsInLayer(layer) {
			h, err := c.hitMgr.Get(id)
			if err == nil {
				out = append(out, h.Position)
			}
		}
	}
	return out
}

// HitsAt returns the resolved Hit objects at pseudoLayer.
func (c *Cluster) HitsAt(pseudoLayer int) []*calohit.Hit {
	ids := c.Hits.HitsInLayer(pseudoLayer)
	out := make([]*calohit.Hit, 0, len(ids))
	for _, id := range ids {
		h, err := c.hitMgr.Get(id)
		if err == nil {
			out = append(out, h)
		}
	}
	return out
}

// ElectromagneticEnergy sums the EM energy of every non-isolated hit.
func (c *Cluster) ElectromagneticEnergy() float64 {
	var total float64
	for _, id := range c.Hits.All() {
		h, err := c.hitMgr.Get(id)
		if err == nil {
			total += h.ElectromagneticEnergy
		}
	}
	return total
}

// HadronicEnergy sums the hadronic energy of every non-isolated hit.
func (c *Cluster) HadronicEnergy() float64 {
	var total float64
	for _, id := range c.Hits.All() {
		h, err := c.hitMgr.Get(id)
		if err == nil {
			total += h.HadronicEnergy
		}
	}
	return total
}

// MipFraction returns the fraction of non-isolated hits flagged
// possible-mip, used by the merge eligibility filter in §4.7.
func (c *Cluster) MipFraction() float64 {
	ids := c.Hits.All()
	if len(ids) == 0 {
		return 0
	}
	count := 0
	for _, id := range ids {
		h, err := c.hitMgr.Get(id)
		if err == nil && h.IsPossibleMip {
			count++
		}
	}
	return float64(count) / float64(len(ids))
}

// CentroidAt returns the energy-weighted centroid of non-isolated hits
// at pseudoLayer.
func (c *Cluster) CentroidAt(pseudoLayer int) (geometry.Vector3, bool) {
	hits := c.HitsAt(pseudoLayer)
	if len(hits) == 0 {
		return geometry.Vector3{}, false
	}
	var sum geometry.Vector3
	var weight float64
	for _, h := range hits {
		e := h.ElectromagneticEnergy + h.HadronicEnergy
		if e <= 0 {
			e = 1e-6
		}
		sum = sum.Add(h.Position.Scale(e))
		weight += e
	}
	if weight <= 0 {
		return geometry.Vector3{}, false
	}
	return sum.Scale(1 / weight), true
}

// FitAll returns (and caches) the linear fit over every non-isolated
// hit, via internal/fit.
func (c *Cluster) FitAll() fit.Result {
	if c.fitAllCache != nil && c.fitAllCacheLen == c.Hits.Len() {
		return *c.fitAllCache
	}
	res := fit.FitAll(c.Positions())
	c.fitAllCache = &res
	c.fitAllCacheLen = c.Hits.Len()
	return res
}
