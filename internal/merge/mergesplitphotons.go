package merge

import (
	"github.com/caloflow/pfreco/internal/cluster"
	"github.com/caloflow/pfreco/internal/plugin"
)

// MergeSplitPhotonsConfig parameterises spec §4.7.5.
type MergeSplitPhotonsConfig struct {
	MinShowerMaxOpeningAngleCosine float64
	MinContactLayers               int
	ProfileMaxLayer                int
	ProfileMaxLayerEarlyGuard       int
	MinFragmentEnergy               float64
	MaxFragmentEnergyRatio           float64
	MaxSubsidiaryPeakRatio           float64
	AcceptMaxSubsidiaryPeakEnergy    float64
}

// RunMergeSplitPhotons implements spec §4.7.5: for each nearby pair of
// photon-tagged clusters, provisionally merge them (via a fragmentation
// transaction), run the shower-profile peak finder, and commit only if
// the result still looks like one shower.
func RunMergeSplitPhotons(cmgr *cluster.Manager, mergeCfg Config, spCfg MergeSplitPhotonsConfig, profile plugin.ShowerProfilePlugin, isPhotonLike func(*cluster.Cluster) bool) error {
	_, clusters := cmgr.GetCurrentList()
	ordered := byInnerLayerAscending(clusters)
	consumed := make(map[*cluster.Cluster]bool)

	for i, a := range ordered {
		if consumed[a] || (isPhotonLike != nil && !isPhotonLike(a)) {
			continue
		}
		for j, b := range ordered {
			if i == j || consumed[b] {
				continue
			}
			if isPhotonLike != nil && !isPhotonLike(b) {
				continue
			}
			if !nearbyPhotonPair(a, b, spCfg) {
				continue
			}
			accept, err := acceptSplitPhotonMerge(cmgr, a, b, profile, spCfg)
			if err != nil {
				return err
			}
			if !accept {
				continue
			}
			if err := cmgr.MergeAndDelete(a.ID, b.ID); err != nil {
				return err
			}
			consumed[b] = true
		}
	}
	return nil
}

func nearbyPhotonPair(a, b *cluster.Cluster, cfg MergeSplitPhotonsConfig) bool {
	aCentroid, ok := a.CentroidAt(a.ShowerMaxLayer)
	if !ok {
		return false
	}
	bCentroid, ok := b.CentroidAt(b.ShowerMaxLayer)
	if !ok {
		return false
	}
	openingCos := aCentroid.Unit().Dot(bCentroid.Unit())
	if openingCos < cfg.MinShowerMaxOpeningAngleCosine {
		return false
	}
	nContactLayers, _ := clusterContactLayers(a, b)
	return nContactLayers >= cfg.MinContactLayers
}

func clusterContactLayers(a, b *cluster.Cluster) (int, float64) {
	aLayers := a.Hits.Layers()
	overlap := 0
	for _, layer := range aLayers {
		if len(b.HitsAt(layer)) > 0 && len(a.HitsAt(layer)) > 0 {
			overlap++
		}
	}
	return overlap, 0
}

// acceptSplitPhotonMerge mirrors MergeSplitPhotonsAlgorithm::Run: it
// builds the hypothetical merged cluster as a fragmentation-transaction
// probe, asks the shower-profile plugin for its transverse peaks, and
// takes the second-largest peak's energy as the subsidiary-peak energy
// (the dominant peak is the shower itself, peaks come back sorted by
// descending energy). A small enough fragment is always accepted;
// otherwise the merge is accepted only when the subsidiary peak stays
// below the absolute AcceptMaxSubsidiaryPeakEnergy threshold and either
// the fragments are lopsided enough or the subsidiary peak is small
// relative to the smaller fragment. Accepted hard-photon merges get a
// second look at a shorter profile depth to catch early peaks the
// full-depth profile would mask.
func acceptSplitPhotonMerge(cmgr *cluster.Manager, a, b *cluster.Cluster, profile plugin.ShowerProfilePlugin, cfg MergeSplitPhotonsConfig) (bool, error) {
	smallE := a.ElectromagneticEnergy()
	largeE := b.ElectromagneticEnergy()
	if smallE > largeE {
		smallE, largeE = largeE, smallE
	}

	peaks, err := probeMergedPeaks(cmgr, a, b, profile, cfg.ProfileMaxLayer)
	if err != nil {
		return false, err
	}
	subsidiary := subsidiaryPeakEnergy(peaks)

	accept := false
	if smallE < cfg.MinFragmentEnergy {
		accept = true
	} else if subsidiary < cfg.AcceptMaxSubsidiaryPeakEnergy {
		if largeE > 0 && smallE < cfg.MaxFragmentEnergyRatio*largeE {
			accept = true
		} else if subsidiary < cfg.MaxSubsidiaryPeakRatio*smallE {
			accept = true
		}
	}

	if accept && smallE >= cfg.MinFragmentEnergy {
		earlyPeaks, err := probeMergedPeaks(cmgr, a, b, profile, cfg.ProfileMaxLayerEarlyGuard)
		if err != nil {
			return false, err
		}
		if subsidiaryPeakEnergy(earlyPeaks) > cfg.AcceptMaxSubsidiaryPeakEnergy {
			accept = false
		}
	}

	return accept, nil
}

// subsidiaryPeakEnergy returns the energy of the second entry in a
// descending-energy-sorted peak list, or 0 if no second peak exists.
func subsidiaryPeakEnergy(peaks []cluster.ShowerPeak) float64 {
	if len(peaks) <= 1 {
		return 0
	}
	return peaks[1].Energy
}

// probeMergedPeaks materialises a's and b's hits into a scratch cluster
// under a fragmentation transaction, runs the shower-profile plugin
// against it, and tears the scratch cluster back down, leaving the
// manager's real current list untouched throughout.
func probeMergedPeaks(cmgr *cluster.Manager, a, b *cluster.Cluster, profile plugin.ShowerProfilePlugin, maxLayer int) ([]cluster.ShowerPeak, error) {
	realName, _ := cmgr.GetCurrentList()
	originalName, newName := cmgr.InitializeFragmentation(nil)

	if err := cmgr.TemporarilyReplaceCurrentList(newName); err != nil {
		return nil, err
	}
	probe := cmgr.NewCluster()
	copyHits(probe, a)
	copyHits(probe, b)
	if err := cmgr.ReplaceCurrentList(realName); err != nil {
		return nil, err
	}

	var peaks []cluster.ShowerPeak
	if profile != nil {
		peaks = profile.FindPeaks(probe, maxLayer)
	}

	if err := cmgr.EndFragmentation(originalName, newName); err != nil {
		return nil, err
	}
	return peaks, nil
}

func copyHits(dst, src *cluster.Cluster) {
	for _, layer := range src.Hits.Layers() {
		for _, id := range src.Hits.HitsInLayer(layer) {
			dst.AddHit(id, layer)
		}
	}
	for _, layer := range src.Isolated.Layers() {
		for _, id := range src.Isolated.HitsInLayer(layer) {
			dst.AddIsolatedHit(id, layer)
		}
	}
}
