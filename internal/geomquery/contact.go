package geomquery

import "github.com/caloflow/pfreco/internal/cluster"

// ContactParameters configures a ClusterContact computation: the cone
// half-angles and close-hit distances to evaluate, plus the contact
// layer distance threshold and the minimum opening-angle cosine below
// which cone fractions are skipped (set to zero).
type ContactParameters struct {
	ConeCosineHalfAngles  []float64
	CloseHitDistances     []float64
	ContactDistanceThreshold float64
	MinCosOpeningAngle    float64
}

// Contact is the pairwise parent/daughter geometric summary computed in
// one pass over the daughter's hits.
type Contact struct {
	ClosestDistance  float64
	ConeFractions    []float64 // parallel to ContactParameters.ConeCosineHalfAngles
	CloseHitFractions []float64 // parallel to ContactParameters.CloseHitDistances
	NContactLayers   int
	ContactFraction  float64
}

// NewContact computes a Contact between daughter and parent per
// ContactParameters. If the opening angle between the two clusters'
// initial directions is below MinCosOpeningAngle, cone fractions are
// skipped (left at zero) per spec §4.6 policy.
func NewContact(daughter, parent *cluster.Cluster, params ContactParameters) Contact {
	var c Contact

	c.ClosestDistance = closestHitDistance(daughter, parent)

	openingCos := daughter.InitialDirection.Unit().Dot(parent.InitialDirection.Unit())
	if openingCos >= params.MinCosOpeningAngle {
		apex, axis, ok := ConeFromClusterShowerStart(parent)
		if ok {
			c.ConeFractions = make([]float64, len(params.ConeCosineHalfAngles))
			for i, cosHalf := range params.ConeCosineHalfAngles {
				c.ConeFractions[i] = FractionOfHitsInCone(daughter, apex, axis, cosHalf)
			}
		}
	}
	if c.ConeFractions == nil {
		c.ConeFractions = make([]float64, len(params.ConeCosineHalfAngles))
	}

	c.CloseHitFractions = make([]float64, len(params.CloseHitDistances))
	for i, dist := range params.CloseHitDistances {
		c.CloseHitFractions[i] = FractionOfCloseHits(daughter, parent, dist)
	}

	c.NContactLayers, c.ContactFraction = ClusterContactDetails(parent, daughter, params.ContactDistanceThreshold)

	return c
}

func closestHitDistance(daughter, parent *cluster.Cluster) float64 {
	dPos := daughter.Positions()
	pPos := parent.Positions()
	best := -1.0
	for _, dp := range dPos {
		for _, pp := range pPos {
			d := dp.Sub(pp).Mag()
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	return best
}
