// Package plugin defines the algorithm-swap points the pipeline driver
// is configured with: how to cluster available hits, how to associate
// tracks with clusters, how to query geometry, how to extract a
// transverse shower profile, and how to apply an energy correction.
// Grounded on the pattern of configurable, named sub-algorithms the
// reclustering operators require (spec §4.8's "run_clustering(algorithm
// name)").
package plugin

import (
	"github.com/caloflow/pfreco/internal/calohit"
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/geometry"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

// ClusteringPlugin groups available calo hits into new clusters.
type ClusteringPlugin interface {
	Name() string
	Cluster(available []pfcore.CaloHitID, hitMgr *calohit.Manager, cmgr *cluster.Manager) ([]*cluster.Cluster, error)
}

// AssociationPlugin associates unassociated tracks with clusters in the
// current list.
type AssociationPlugin interface {
	Name() string
	Associate(trackMgr *track.Manager, cmgr *cluster.Manager) error
}

// GeometryPlugin resolves a 3D position to a pseudo-layer and
// sub-detector region, backing the reclustering operators' layer-window
// queries without requiring them to import internal/geometry directly.
type GeometryPlugin interface {
	PseudoLayerAt(p geometry.Vector3) int
	RegionAt(p geometry.Vector3) geometry.Region
}

// ShowerProfilePlugin extracts transverse shower-profile peaks from a
// cluster, used by photon reconstruction and MergeSplitPhotons.
type ShowerProfilePlugin interface {
	FindPeaks(c *cluster.Cluster, maxLayer int) []cluster.ShowerPeak
}

// EnergyCorrectionPlugin applies a detector-specific energy correction
// (e.g. software compensation) to a cluster's hadronic energy estimate.
type EnergyCorrectionPlugin interface {
	Name() string
	Correct(c *cluster.Cluster) float64
}
