// Package compat computes track-cluster energy compatibility (chi) and
// summarises it over a candidate cluster list for the reclustering
// operators.
package compat

import (
	"math"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/track"
	"gonum.org/v1/gonum/stat"
)

// Chi returns (clusterEnergy - trackEnergySum) / (sigmaE * sqrt(trackEnergySum)).
// Returns 0 when trackEnergySum is zero (merge paths that skip the
// track-consistency check when there is nothing to be consistent with).
func Chi(clusterEnergy, trackEnergySum, sigmaE float64) float64 {
	if trackEnergySum <= 0 {
		return 0
	}
	return (clusterEnergy - trackEnergySum) / (sigmaE * math.Sqrt(trackEnergySum))
}

// ReclusterResults aggregates track-cluster compatibility over a
// candidate cluster list, as consumed by the reclustering operators'
// accept/reject decisions.
type ReclusterResults struct {
	ChiPerDof                 float64
	ChiSquarePerDof           float64
	MinTrackAssociationEnergy float64
	NExcessTrackAssociations  int
}

// ClusterEnergy reports the total calorimetric energy of a cluster
// (EM + hadronic), the quantity compared against track energy.
func ClusterEnergy(c *cluster.Cluster) float64 {
	return c.ElectromagneticEnergy() + c.HadronicEnergy()
}

// ExtractReclusterResults aggregates (clusterE - trackE)^2/sigma^2 over
// every track-associated cluster in clusters, dividing by the
// track-associated-cluster count. Clusters with more than one
// associated track count toward NExcessTrackAssociations (spec
// describes "excess" associations but leaves the per-cluster rule
// unspecified beyond that; multi-track clusters are the natural
// reading, since single-track association is the expected case this
// whole compatibility machinery targets).
func ExtractReclusterResults(clusters []*cluster.Cluster, trackMgr *track.Manager, sigmaE float64) ReclusterResults {
	var chiValues, chiSquares, energies []float64
	var nExcess int

	for _, c := range clusters {
		if len(c.Tracks) == 0 {
			continue
		}
		if len(c.Tracks) > 1 {
			nExcess++
		}

		var trackEnergySum float64
		for _, tid := range c.Tracks {
			if t, err := trackMgr.Get(tid); err == nil {
				trackEnergySum += t.EnergyAtDCA
			}
		}

		clusterE := ClusterEnergy(c)
		chi := Chi(clusterE, trackEnergySum, sigmaE)
		chiValues = append(chiValues, chi)
		chiSquares = append(chiSquares, chi*chi)
		energies = append(energies, clusterE)
	}

	var results ReclusterResults
	if len(chiValues) > 0 {
		results.ChiPerDof = stat.Mean(chiValues, nil)
		results.ChiSquarePerDof = stat.Mean(chiSquares, nil)
		results.MinTrackAssociationEnergy = floats64Min(energies)
	}
	results.NExcessTrackAssociations = nExcess
	return results
}

func floats64Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
