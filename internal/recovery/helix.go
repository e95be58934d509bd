package recovery

import (
	"math"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/geomquery"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

// Helix implements spec §4.10's TrackRecoveryHelix: the same
// chi-compatibility selection as Straight, but scored by the closest
// distance between the track's helix and the hits of a cluster's first
// layers (the mean distance geomquery.ClusterHelixDistance also returns
// is not used), gated by z-sign/separation compatibility and bounded
// helix layer-crossing. Candidate pairs are resolved globally: the
// closest remaining pair across every track and cluster is committed
// first, and both endpoints are removed from the pool before the next
// pick.
type Helix struct {
	Cfg       Config
	IsLeaving func(*cluster.Cluster) bool
	Eligible  func(*track.Track) bool

	// LayerOf resolves a 3D position to a pseudo-layer, used to bound
	// the number of layers the helix crosses between the track's
	// calorimeter intercept and the cluster's inner layer. A nil
	// LayerOf skips the layer-crossing gate entirely.
	LayerOf func(geometry.Vector3) int

	// NSamplesPerHit controls geomquery.ClusterHelixDistance's
	// per-hit sampling resolution; defaults to 3 when zero.
	NSamplesPerHit int
}

type helixCandidate struct {
	trackID   pfcore.TrackID
	clusterID pfcore.ClusterID
	distance  float64
}

// Run resolves every eligible unassociated track in trackMgr against an
// untracked cluster in cmgr's current list, committing the globally
// closest compatible pairs first.
func (h Helix) Run(trackMgr *track.Manager, cmgr *cluster.Manager) error {
	_, clusters := cmgr.GetCurrentList()
	untracked := untrackedClusters(clusters)

	var candidates []helixCandidate
	for _, t := range trackMgr.Unassociated() {
		if h.Eligible != nil && !h.Eligible(t) {
			continue
		}
		for _, c := range untracked {
			if _, ok := chiAcceptable(c, t, h.IsLeaving, h.Cfg); !ok {
				continue
			}
			if !h.zCompatible(t, c) {
				continue
			}
			inner, ok := c.InnerLayer()
			if !ok {
				continue
			}
			if h.LayerOf != nil {
				centroid, ok := c.CentroidAt(inner)
				if !ok {
					continue
				}
				crossed := geomquery.NLayersCrossed(&t.HelixAtCalorimeter, t.AtCalorimeter.Position.Z, centroid.Z, 8, h.LayerOf)
				if crossed > h.Cfg.MaxHelixLayerCrossing {
					continue
				}
			}
			closest, _ := geomquery.ClusterHelixDistance(c, &t.HelixAtCalorimeter, inner, inner+h.Cfg.NSearchLayers, h.Cfg.NSearchLayers+1, h.nSamplesPerHit())
			if closest < 0 || closest > distanceThresholdFor(t, h.Cfg) {
				continue
			}
			candidates = append(candidates, helixCandidate{t.ID, c.ID, closest})
		}
	}

	return h.resolveGreedily(trackMgr, cmgr, candidates)
}

func (h Helix) nSamplesPerHit() int {
	if h.NSamplesPerHit <= 0 {
		return 3
	}
	return h.NSamplesPerHit
}

// zCompatible requires the track's calorimeter-intercept z and the
// cluster's inner-layer centroid z to share sign (both in the same
// detector endcap, or either at/near zero) and be within
// Cfg.MaxZSeparation of each other.
func (h Helix) zCompatible(t *track.Track, c *cluster.Cluster) bool {
	inner, ok := c.InnerLayer()
	if !ok {
		return false
	}
	centroid, ok := c.CentroidAt(inner)
	if !ok {
		return false
	}
	tz := t.AtCalorimeter.Position.Z
	cz := centroid.Z
	if tz*cz < 0 {
		return false
	}
	return math.Abs(cz-tz) <= h.Cfg.MaxZSeparation
}

// resolveGreedily repeatedly commits the closest remaining candidate
// pair, removing both its track and cluster from further consideration,
// until no candidate pair remains.
func (h Helix) resolveGreedily(trackMgr *track.Manager, cmgr *cluster.Manager, candidates []helixCandidate) error {
	usedTracks := make(map[pfcore.TrackID]bool)
	usedClusters := make(map[pfcore.ClusterID]bool)

	for {
		bestIdx := -1
		bestDist := math.Inf(1)
		for i, cand := range candidates {
			if usedTracks[cand.trackID] || usedClusters[cand.clusterID] {
				continue
			}
			if cand.distance < bestDist {
				bestDist = cand.distance
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			return nil
		}
		winner := candidates[bestIdx]
		usedTracks[winner.trackID] = true
		usedClusters[winner.clusterID] = true
		if err := associate(trackMgr, cmgr, winner.trackID, winner.clusterID); err != nil {
			return err
		}
	}
}
