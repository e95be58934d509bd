package merge

import "github.com/caloflow/pfreco/internal/cluster"

// BackscatteredVariant selects one of the two backscattered-track rules
// of spec §4.7.3.
type BackscatteredVariant int

const (
	// VariantDaughterEmbeddedInParent fits the daughter's non-outer
	// layers and looks for a parent whose outer boundary lies beyond the
	// daughter's but whose inner boundary lies within it. The fit only
	// has to succeed; it is not projected, and NFitProjectionLayers and
	// PerpendicularDistanceCut are not read.
	VariantDaughterEmbeddedInParent BackscatteredVariant = iota
	// VariantDaughterInParentMipSection fits the parent from its inner
	// layer to shower start and looks for daughters wholly contained in
	// the parent's mip section. As for the first variant, the fit only
	// has to succeed and is not projected.
	VariantDaughterInParentMipSection
)

// BackscatteredConfig parameterises one backscattered-tracks pass.
type BackscatteredConfig struct {
	Variant            BackscatteredVariant
	NFitProjectionLayers int
	PerpendicularDistanceCut float64
}

// RunBackscatteredTracksMerging implements spec §4.7.3.
func RunBackscatteredTracksMerging(cmgr *cluster.Manager, mergeCfg Config, bsCfg BackscatteredConfig) error {
	_, clusters := cmgr.GetCurrentList()
	ordered := byInnerLayerAscending(clusters)

	for _, daughter := range ordered {
		if !eligible(daughter, mergeCfg) {
			continue
		}
		parent, ok := findBackscatteredParent(daughter, ordered, mergeCfg, bsCfg)
		if !ok {
			continue
		}
		if err := cmgr.MergeAndDelete(parent.ID, daughter.ID); err != nil {
			return err
		}
	}
	return nil
}

func findBackscatteredParent(daughter *cluster.Cluster, ordered []*cluster.Cluster, mergeCfg Config, cfg BackscatteredConfig) (*cluster.Cluster, bool) {
	daughterInner, ok := daughter.InnerLayer()
	if !ok {
		return nil, false
	}
	daughterOuter, ok := daughter.OuterLayer()
	if !ok {
		return nil, false
	}

	for _, parent := range ordered {
		if parent.ID == daughter.ID || !eligible(parent, mergeCfg) {
			continue
		}
		parentInner, ok := parent.InnerLayer()
		if !ok {
			continue
		}
		parentOuter, ok := parent.OuterLayer()
		if !ok {
			continue
		}

		switch cfg.Variant {
		case VariantDaughterEmbeddedInParent:
			if parentOuter <= daughterOuter {
				continue
			}
			if parentInner > daughterInner {
				continue
			}
			fitResult := daughter.FitLayers(daughterInner, daughterOuter-1)
			if !fitResult.Success {
				continue
			}
			return parent, true

		case VariantDaughterInParentMipSection:
			if parent.ShowerStartLayer == 0 {
				continue
			}
			if daughterInner < parentInner || daughterOuter > parent.ShowerStartLayer {
				continue
			}
			fitResult := parent.FitLayers(parentInner, parent.ShowerStartLayer)
			if !fitResult.Success {
				continue
			}
			return parent, true
		}
	}
	return nil, false
}
