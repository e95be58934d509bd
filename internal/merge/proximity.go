package merge

import (
	"math"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geomquery"
	"github.com/caloflow/pfreco/internal/track"
)

// RunProximityBasedMerging is spec §4.7.1: for each eligible daughter,
// find the eligible parent minimising generic distance (subject to a
// track-consistency gate), then accept the merge only if the daughter
// looks like a genuine fragment of that parent.
func RunProximityBasedMerging(cmgr *cluster.Manager, trackMgr *track.Manager, cfg Config) error {
	_, clusters := cmgr.GetCurrentList()
	ordered := byInnerLayerAscending(clusters)

	for _, daughter := range ordered {
		if !eligible(daughter, cfg) {
			continue
		}

		var bestParent *cluster.Cluster
		bestDistance := math.Inf(1)

		for _, parent := range ordered {
			if parent.ID == daughter.ID || !eligible(parent, cfg) {
				continue
			}
			if !trackConsistent(parent, daughter, trackMgr, cfg) {
				continue
			}

			dist, ok := genericDistance(parent, daughter, cfg)
			if !ok {
				continue
			}
			if dist < bestDistance {
				bestDistance = dist
				bestParent = parent
			} else if dist == bestDistance && bestParent != nil && parent.HadronicEnergy() > bestParent.HadronicEnergy() {
				bestParent = parent
			}
		}

		if bestParent == nil {
			continue
		}
		if !looksLikeFragment(bestParent, daughter, trackMgr, cfg) {
			continue
		}
		if err := cmgr.MergeAndDelete(bestParent.ID, daughter.ID); err != nil {
			return err
		}
	}
	return nil
}

// genericDistance computes the minimum perpendicular distance (subject
// to a parallel-component gate) between parent hits in the
// n_generic_distance_layers layers after the daughter's inner layer and
// daughter hits within ± n_adjacent_layers_to_examine of the parent hit.
func genericDistance(parent, daughter *cluster.Cluster, cfg Config) (float64, bool) {
	daughterInner, ok := daughter.InnerLayer()
	if !ok {
		return 0, false
	}

	best := math.Inf(1)
	found := false
	for layer := daughterInner; layer < daughterInner+cfg.NGenericDistanceLayers; layer++ {
		parentHits := parent.HitsAt(layer)
		if len(parentHits) == 0 {
			continue
		}
		for _, ph := range parentHits {
			for dLayer := layer - cfg.NAdjacentLayersToExamine; dLayer <= layer+cfg.NAdjacentLayersToExamine; dLayer++ {
				for _, dh := range daughter.HitsAt(dLayer) {
					diff := dh.Position.Sub(ph.Position)
					dirUnit := ph.ExpectedDirection.Unit()
					along := diff.Dot(dirUnit)
					if math.Abs(along) > cfg.MaxParallelDistance {
						continue
					}
					perp := diff.Sub(dirUnit.Scale(along))
					d := perp.Mag()
					if d < best {
						best = d
						found = true
					}
				}
			}
		}
	}
	return best, found
}

// looksLikeFragment implements the §4.7.1 fragment-acceptance test: a
// close-hit fraction, a contact fraction, or a parent track's helix
// passing near the daughter's first layers.
func looksLikeFragment(parent, daughter *cluster.Cluster, trackMgr *track.Manager, cfg Config) bool {
	if geomquery.FractionOfCloseHits(daughter, parent, cfg.ConeParams.CloseHitDistances[0]) >= cfg.MinCloseHitFraction {
		return true
	}
	_, contactFraction := geomquery.ClusterContactDetails(parent, daughter, cfg.ConeParams.ContactDistanceThreshold)
	if contactFraction >= cfg.MinContactFraction {
		return true
	}

	inner, ok := daughter.InnerLayer()
	if !ok {
		return false
	}
	for _, tid := range parent.Tracks {
		t, err := trackMgr.Get(tid)
		if err != nil {
			continue
		}
		_, mean := geomquery.ClusterHelixDistance(daughter, &t.HelixAtCalorimeter, inner, inner+cfg.NGenericDistanceLayers, 3, 8)
		if mean <= cfg.MaxClusterHelixDistance {
			return true
		}
	}
	return false
}
