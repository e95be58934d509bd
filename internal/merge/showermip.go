package merge

import (
	"math"

	"github.com/caloflow/pfreco/internal/cluster"
)

// ShowerMipVariant selects one of the four shower-mip-merging rules of
// spec §4.7.2. All four share the same "fit one endpoint, search for the
// matching endpoint" shape; they differ in which endpoint is fit and
// which extra direction-dot-product gate applies.
type ShowerMipVariant int

const (
	// VariantParentEndToDaughterStart fits the end of a mip-like parent
	// and looks for a daughter mip-stub starting nearby.
	VariantParentEndToDaughterStart ShowerMipVariant = iota
	// VariantParentEndDirectedAtDaughter additionally requires the
	// parent's fit direction to point at the daughter's centroid.
	VariantParentEndDirectedAtDaughter
	// VariantDaughterStartToParentEnd fits the daughter's start instead
	// of the parent's end, otherwise symmetric to variant 1.
	VariantDaughterStartToParentEnd
	// VariantDaughterStartDirectedAtParent is the direction-gated
	// counterpart of variant 3, mirroring variant 2.
	VariantDaughterStartDirectedAtParent
)

// ShowerMipConfig parameterises one shower-mip-merging pass.
type ShowerMipConfig struct {
	Variant                ShowerMipVariant
	NFitLayers             int
	MaxLayerGap            int
	MaxCentroidSeparation  float64
	MaxFitDirDotProduct    float64
	PerpendicularDistanceCut float64
}

// RunShowerMipMerging implements spec §4.7.2: for each eligible
// (parent, daughter) pair in ascending inner-layer order, fit the
// configured endpoint and accept the merge when the layer gap, centroid
// separation, optional direction gate, and perpendicular-distance cut
// all pass.
func RunShowerMipMerging(cmgr *cluster.Manager, mergeCfg Config, smCfg ShowerMipConfig) error {
	_, clusters := cmgr.GetCurrentList()
	ordered := byInnerLayerAscending(clusters)

	for i, parent := range ordered {
		if !eligible(parent, mergeCfg) {
			continue
		}
		for j, daughter := range ordered {
			if i == j {
				continue
			}
			if !eligible(daughter, mergeCfg) {
				continue
			}
			if !showerMipCandidate(parent, daughter, smCfg) {
				continue
			}
			if err := cmgr.MergeAndDelete(parent.ID, daughter.ID); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func showerMipCandidate(parent, daughter *cluster.Cluster, cfg ShowerMipConfig) bool {
	parentOuter, ok := parent.OuterLayer()
	if !ok {
		return false
	}
	daughterInner, ok := daughter.InnerLayer()
	if !ok {
		return false
	}

	gap := daughterInner - parentOuter
	if gap < 0 || gap > cfg.MaxLayerGap {
		return false
	}

	var fitResult = parent.FitEnd(cfg.NFitLayers)
	fitOwner := "parent"
	if cfg.Variant == VariantDaughterStartToParentEnd || cfg.Variant == VariantDaughterStartDirectedAtParent {
		fitResult = daughter.FitStart(cfg.NFitLayers)
		fitOwner = "daughter"
	}
	if !fitResult.Success {
		return false
	}

	parentCentroid, ok := parent.CentroidAt(parentOuter)
	if !ok {
		return false
	}
	daughterCentroid, ok := daughter.CentroidAt(daughterInner)
	if !ok {
		return false
	}

	if parentCentroid.Sub(daughterCentroid).Mag() > cfg.MaxCentroidSeparation {
		return false
	}

	directionGated := cfg.Variant == VariantParentEndDirectedAtDaughter || cfg.Variant == VariantDaughterStartDirectedAtParent
	if directionGated {
		delta := daughterCentroid.Sub(parentCentroid)
		if fitOwner == "daughter" {
			delta = parentCentroid.Sub(daughterCentroid)
		}
		dot := fitResult.Direction.Dot(delta.Unit())
		if dot > cfg.MaxFitDirDotProduct {
			return false
		}
	}

	target := daughterCentroid
	if fitOwner == "daughter" {
		target = parentCentroid
	}
	perp := fitResult.PerpendicularDistance(target)
	return perp <= cfg.PerpendicularDistanceCut && !math.IsInf(perp, 1)
}
