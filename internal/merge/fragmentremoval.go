package merge

import (
	"sort"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/geomquery"
)

// FragmentRemovalKind distinguishes the photon-candidate variant (one
// cone) from the neutral-hadron variant (three cones of increasing
// tightness) of spec §4.7.4. Both share the same contact-map /
// fixed-point-iteration / weighted-score machinery.
type FragmentRemovalKind int

const (
	KindPhoton FragmentRemovalKind = iota
	KindNeutral
)

// contactEntry pairs a daughter/parent candidate with its precomputed
// geometric contact and weighted evidence score.
type contactEntry struct {
	daughter *cluster.Cluster
	parent   *cluster.Cluster
	contact  geomquery.Contact
	score    float64
}

// RunPhotonFragmentRemoval and RunNeutralFragmentRemoval both call this
// with a different FragmentRemovalKind; see spec §4.7.4.
func RunFragmentRemoval(cmgr *cluster.Manager, kind FragmentRemovalKind, cfg Config, isPhotonLike func(*cluster.Cluster) bool) error {
	coneParams := cfg.ConeParams
	if kind == KindPhoton {
		coneParams.ConeCosineHalfAngles = coneParams.ConeCosineHalfAngles[:1]
	}

	affected := map[*cluster.Cluster]bool{}
	_, clusters := cmgr.GetCurrentList()
	for _, c := range clusters {
		affected[c] = true
	}

	contactMap := map[*cluster.Cluster][]contactEntry{}

	for pass := 0; pass < cfg.NMaxPasses; pass++ {
		_, clusters := cmgr.GetCurrentList()

		daughters := eligibleFragmentDaughters(clusters, kind, cfg, isPhotonLike)
		if len(daughters) == 0 {
			break
		}

		for _, daughter := range daughters {
			if !affected[daughter] {
				continue
			}
			var entries []contactEntry
			for _, parent := range clusters {
				if parent.ID == daughter.ID {
					continue
				}
				contact := geomquery.NewContact(daughter, parent, coneParams)
				score := weightedEvidence(daughter, contact, cfg)
				entries = append(entries, contactEntry{daughter: daughter, parent: parent, contact: contact, score: score})
			}
			contactMap[daughter] = entries
		}

		best, bestParent, bestScore, found := pickBestCandidate(contactMap, cfg)
		if !found {
			break
		}
		_ = bestScore

		deletedEntries := contactMap[best]

		if err := cmgr.MergeAndDelete(bestParent.ID, best.ID); err != nil {
			return err
		}

		// Affected set for the next pass: every cluster that was in
		// contact with the just-deleted daughter (as its parent
		// candidate), plus every cluster whose own contact vector
		// referenced the merged-away parent or daughter. Recomputing
		// those clusters' contact entries from scratch next pass both
		// refreshes their evidence against the new merged cluster and
		// purges any stale entry pointing at the now-deleted daughter.
		newAffected := map[*cluster.Cluster]bool{}
		for _, e := range deletedEntries {
			newAffected[e.parent] = true
		}
		for d, entries := range contactMap {
			if d == best {
				continue
			}
			for _, e := range entries {
				if e.parent == bestParent || e.parent == best {
					newAffected[d] = true
					break
				}
			}
		}
		delete(contactMap, best)

		for c := range affected {
			affected[c] = false
		}
		for c := range newAffected {
			affected[c] = true
		}
	}
	return nil
}

func eligibleFragmentDaughters(clusters []*cluster.Cluster, kind FragmentRemovalKind, cfg Config, isPhotonLike func(*cluster.Cluster) bool) []*cluster.Cluster {
	var out []*cluster.Cluster
	for _, c := range clusters {
		if !eligible(c, cfg) {
			continue
		}
		if kind == KindPhoton && cfg.UseOnlyPhotonLikeDaughters && isPhotonLike != nil && !isPhotonLike(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// weightedEvidence scores a contact by the same three-term, piecewise
// evidence functions as the reference algorithm's GetEvidenceForMerge:
// a contact-layer step function scaled by (1+contactFraction), a cone
// term gated on the first cone fraction and scaled by
// ConeEvidenceFineGranularityMultiplier for fine-granularity daughters,
// and a distance term that only contributes inside
// DistanceEvidence1 and adds close-hit-fraction bonuses.
func weightedEvidence(daughter *cluster.Cluster, c geomquery.Contact, cfg Config) float64 {
	contactEvidence := 0.0
	switch {
	case c.NContactLayers > cfg.ContactEvidenceNLayers1:
		contactEvidence = cfg.ContactEvidence1
	case c.NContactLayers > cfg.ContactEvidenceNLayers2:
		contactEvidence = cfg.ContactEvidence2
	case c.NContactLayers > cfg.ContactEvidenceNLayers3:
		contactEvidence = cfg.ContactEvidence3
	}
	contactEvidence *= 1 + c.ContactFraction

	coneEvidence := 0.0
	if cone1 := coneFractionAt(c, 0); cone1 > cfg.ConeEvidenceFraction1 {
		coneEvidence = cone1 + coneFractionAt(c, 1) + coneFractionAt(c, 2)
		if isFineGranularityDaughter(daughter) {
			coneEvidence *= cfg.ConeEvidenceFineGranularityMultiplier
		}
	}

	distanceEvidence := 0.0
	if c.ClosestDistance < cfg.DistanceEvidence1 {
		distanceEvidence = (cfg.DistanceEvidence1 - c.ClosestDistance) / cfg.DistanceEvidence1d
		distanceEvidence += cfg.DistanceEvidenceCloseFraction1Multiplier * closeHitFractionAt(c, 0)
		distanceEvidence += cfg.DistanceEvidenceCloseFraction2Multiplier * closeHitFractionAt(c, 1)
	}

	return cfg.WeightContact*contactEvidence + cfg.WeightCone*coneEvidence + cfg.WeightDistance*distanceEvidence
}

func coneFractionAt(c geomquery.Contact, i int) float64 {
	if i < len(c.ConeFractions) {
		return c.ConeFractions[i]
	}
	return 0
}

func closeHitFractionAt(c geomquery.Contact, i int) float64 {
	if i < len(c.CloseHitFractions) {
		return c.CloseHitFractions[i]
	}
	return 0
}

// isFineGranularityDaughter reports whether a daughter's inner-layer hit
// type is fine or finer, the gate the cone-evidence multiplier applies.
func isFineGranularityDaughter(c *cluster.Cluster) bool {
	innerLayer, ok := c.InnerLayer()
	if !ok {
		return false
	}
	hits := c.HitsAt(innerLayer)
	if len(hits) == 0 {
		return false
	}
	g := geometry.NewContext().Granularity(hits[0].HitType, hits[0].Region)
	return g <= geometry.GranularityFine
}

// pickBestCandidate selects the globally highest-evidence daughter/parent
// pair at or above cfg.MinEvidence, breaking ties by largest parent
// hadronic energy. Candidates are visited in a stable order (daughters
// then parents sorted by cluster id) so the result never depends on map
// iteration order.
func pickBestCandidate(contactMap map[*cluster.Cluster][]contactEntry, cfg Config) (daughter, parent *cluster.Cluster, score float64, found bool) {
	daughters := make([]*cluster.Cluster, 0, len(contactMap))
	for d := range contactMap {
		daughters = append(daughters, d)
	}
	sort.Slice(daughters, func(i, j int) bool { return daughters[i].ID < daughters[j].ID })

	best := cfg.MinEvidence
	bestParentEnergy := 0.0

	for _, d := range daughters {
		entries := make([]contactEntry, len(contactMap[d]))
		copy(entries, contactMap[d])
		sort.Slice(entries, func(i, j int) bool { return entries[i].parent.ID < entries[j].parent.ID })

		for _, e := range entries {
			parentEnergy := e.parent.HadronicEnergy()
			if e.score > best || (e.score == best && parentEnergy > bestParentEnergy) {
				best = e.score
				daughter = e.daughter
				parent = e.parent
				bestParentEnergy = parentEnergy
				found = true
			}
		}
	}

	return daughter, parent, best, found
}
