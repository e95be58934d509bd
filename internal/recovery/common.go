// Package recovery implements spec §4.10's track recovery operators:
// a last-chance pass that associates tracks left unassociated after the
// main reclustering/merging passes with an untracked cluster, using a
// simple straight-line distance test (Straight) or the track's full
// helix trajectory (Helix). Grounded on
// original_source/src/LCTrackClusterAssociation/TrackRecoveryAlgorithm.cc
// and TrackRecoveryHelixAlgorithm.cc, in the idiom of
// internal/merge's filter/pair/decide/act operators.
package recovery

import (
	"math"

	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/compat"
	"github.com/caloflow/pfreco/internal/config"
	"github.com/caloflow/pfreco/internal/pfcore"
	"github.com/caloflow/pfreco/internal/track"
)

// Config collects the thresholds both recovery operators read.
type Config struct {
	HadronicEnergyResolution      float64
	MaxTrackClusterChiRecovery    float64
	MaxTrackClusterDistanceBarrel float64
	MaxTrackClusterDistanceEndcap float64

	// NSearchLayers bounds how many layers out from a cluster's inner
	// layer the distance search examines.
	NSearchLayers int

	// MaxHelixLayerCrossing bounds the number of distinct pseudo-layers
	// TrackRecoveryHelix allows the helix to cross between the track's
	// calorimeter intercept and the cluster's inner layer.
	MaxHelixLayerCrossing int

	// MaxZSeparation bounds how far apart (along z) a track's
	// calorimeter intercept and a cluster's inner centroid may be for
	// TrackRecoveryHelix to consider them compatible.
	MaxZSeparation float64
}

// NewConfig assembles a recovery.Config from a loaded PipelineConfig.
func NewConfig(pc *config.PipelineConfig) Config {
	return Config{
		HadronicEnergyResolution:      pc.GetHadronicEnergyResolution(),
		MaxTrackClusterChiRecovery:    pc.GetMaxTrackClusterChiRecovery(),
		MaxTrackClusterDistanceBarrel: pc.GetMaxTrackClusterDistanceBarrel(),
		MaxTrackClusterDistanceEndcap: pc.GetMaxTrackClusterDistanceEndcap(),
		NSearchLayers:                 9,
		MaxHelixLayerCrossing:         4,
		MaxZSeparation:                250.0,
	}
}

// untrackedClusters returns every cluster in clusters with no
// associated tracks.
func untrackedClusters(clusters []*cluster.Cluster) []*cluster.Cluster {
	var out []*cluster.Cluster
	for _, c := range clusters {
		if len(c.Tracks) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// chiAcceptable implements the chi-bound test common to both operators:
// accept a cluster whose energy is compatible with the track within
// maxChi, or one whose energy is too low (negative chi) but is leaving
// the detector, where an associated track is expected to carry away
// additional energy.
func chiAcceptable(c *cluster.Cluster, t *track.Track, isLeaving func(*cluster.Cluster) bool, cfg Config) (chi float64, ok bool) {
	chi = compat.Chi(compat.ClusterEnergy(c), t.EnergyAtDCA, cfg.HadronicEnergyResolution)
	if math.Abs(chi) <= cfg.MaxTrackClusterChiRecovery {
		return chi, true
	}
	if chi < 0 && isLeaving(c) {
		return chi, true
	}
	return chi, false
}

// distanceThresholdFor returns the region-specific distance threshold
// for t, keyed off the track's own ReachesEndcap flag rather than the
// candidate cluster's region: the threshold reflects where the track
// itself exits the tracking volume.
func distanceThresholdFor(t *track.Track, cfg Config) float64 {
	if t.ReachesEndcap {
		return cfg.MaxTrackClusterDistanceEndcap
	}
	return cfg.MaxTrackClusterDistanceBarrel
}

// associate records a symmetric track<->cluster association via both
// managers, the pattern internal/track.Manager.Associate requires to
// keep the two managers decoupled from each other's types.
func associate(trackMgr *track.Manager, cmgr *cluster.Manager, trackID pfcore.TrackID, clusterID pfcore.ClusterID) error {
	return trackMgr.Associate(trackID, clusterID, func(tid pfcore.TrackID, cid pfcore.ClusterID) {
		cmgr.AddTrackClusterAssociation(cid, tid)
	})
}
