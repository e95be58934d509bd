package merge

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/pfcore"
)

// RunIsolatedHitMerging implements spec §4.7.6 in its two phases: small
// clusters are dissolved and their hits redistributed, then any
// still-available hit in the event is attached to its nearest cluster.
func RunIsolatedHitMerging(cmgr *cluster.Manager, hitMgr *calohit.Manager, cfg Config) error {
	if err := redistributeSmallClusters(cmgr, hitMgr, cfg); err != nil {
		return err
	}
	return attachRemainingIsolatedHits(cmgr, hitMgr, cfg)
}

func redistributeSmallClusters(cmgr *cluster.Manager, hitMgr *calohit.Manager, cfg Config) error {
	_, clusters := cmgr.GetCurrentList()
	for _, c := range clusters {
		if c.Hits.Len() >= cfg.MinHitsInCluster {
			continue
		}
		ids := c.Hits.All()
		hitPositions := make(map[pfcore.CaloHitID]int, len(ids))
		for _, id := range ids {
			if layer, ok := c.Hits.Layer(id); ok {
				hitPositions[id] = layer
			}
		}
		if err := cmgr.Delete(c.ID); err != nil {
			return err
		}

		_, remaining := cmgr.GetCurrentList()
		for _, id := range ids {
			hit, err := hitMgr.Get(id)
			if err != nil {
				continue
			}
			target := nearestClusterWithin(hit, remaining, cfg.MaxRecombinationDistance)
			if target == nil {
				continue
			}
			target.AddHit(id, hitPositions[id])
		}
	}
	return nil
}

func attachRemainingIsolatedHits(cmgr *cluster.Manager, hitMgr *calohit.Manager, cfg Config) error {
	_, clusters := cmgr.GetCurrentList()
	for _, id := range hitMgr.AvailableIDs() {
		hit, err := hitMgr.Get(id)
		if err != nil {
			continue
		}
		target := nearestClusterWithin(hit, clusters, cfg.MaxRecombinationDistance)
		if target == nil {
			continue
		}
		if err := cmgr.AddIsolatedToCluster(target.ID, id, hit.PseudoLayer); err != nil {
			return err
		}
		hitMgr.SetAvailable(id, false)
	}
	return nil
}

func nearestClusterWithin(hit *calohit.Hit, candidates []*cluster.Cluster, maxDistance float64) *cluster.Cluster {
	var best *cluster.Cluster
	bestDistance := maxDistance
	var bestHadronicEnergy float64
	for _, c := range candidates {
		for _, p := range c.Positions() {
			d := p.Sub(hit.Position).Mag()
			if d > maxDistance {
				continue
			}
			hadronic := c.HadronicEnergy()
			if d < bestDistance || (d == bestDistance && hadronic > bestHadronicEnergy) {
				best = c
				bestDistance = d
				bestHadronicEnergy = hadronic
			}
		}
	}
	return best
}
