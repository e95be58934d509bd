package recovery

import (
	"math"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/track"
)

// Straight implements spec §4.10's TrackRecovery: for every eligible
// unassociated track, find the untracked cluster with the smallest
// straight-line distance to the track's calorimeter projection among
// those passing the chi-compatibility test, and associate if that
// distance is within the track's region-specific threshold.
type Straight struct {
	Cfg       Config
	IsLeaving func(*cluster.Cluster) bool
	// Eligible reports whether a track is a recovery candidate at all;
	// spec names "single-parent-free... z_start below threshold or
	// with a parent track" as the gate. A nil Eligible accepts every
	// unassociated track.
	Eligible func(*track.Track) bool
}

// Run associates each eligible unassociated track in trackMgr with its
// best-matching untracked cluster in cmgr's current list, if any.
func (s Straight) Run(trackMgr *track.Manager, cmgr *cluster.Manager) error {
	_, clusters := cmgr.GetCurrentList()

	for _, t := range trackMgr.Unassociated() {
		if s.Eligible != nil && !s.Eligible(t) {
			continue
		}

		var best *cluster.Cluster
		bestDist := math.Inf(1)
		bestEDiff := math.Inf(1)

		for _, c := range untrackedClusters(clusters) {
			if _, ok := chiAcceptable(c, t, s.IsLeaving, s.Cfg); !ok {
				continue
			}
			dist := straightLineDistance(t, c, s.Cfg.NSearchLayers)
			ediff := math.Abs(compat.ClusterEnergy(c) - t.EnergyAtDCA)
			if dist < bestDist || (dist == bestDist && ediff < bestEDiff) {
				best, bestDist, bestEDiff = c, dist, ediff
			}
		}

		if best == nil {
			continue
		}
		if bestDist > distanceThresholdFor(t, s.Cfg) {
			continue
		}
		if err := associate(trackMgr, cmgr, t.ID, best.ID); err != nil {
			return err
		}
	}
	return nil
}

// straightLineDistance returns the smallest perpendicular distance from
// t's straight calorimeter-projected line to any hit in c's first
// nSearchLayers pseudo-layers (a pseudo-perpendicular closest approach,
// since the track's direction is taken as fixed rather than fit afresh
// per hit).
func straightLineDistance(t *track.Track, c *cluster.Cluster, nSearchLayers int) float64 {
	inner, ok := c.InnerLayer()
	if !ok {
		return math.Inf(1)
	}
	dir := t.AtCalorimeter.Direction.Unit()
	origin := t.AtCalorimeter.Position

	best := math.Inf(1)
	for layer := inner; layer <= inner+nSearchLayers; layer++ {
		for _, h := range c.HitsAt(layer) {
			d := h.Position.Sub(origin)
			along := d.Dot(dir)
			perp := d.Sub(dir.Scale(along))
			if dist := perp.Mag(); dist < best {
				best = dist
			}
		}
	}
	return best
}
