package geometry

// HitType classifies the sub-detector a calo hit originates in.
type HitType int

const (
	HitTypeTracker HitType = iota
	HitTypeECAL
	HitTypeHCAL
	HitTypeMuon
	HitTypeTPCView
)

// Region classifies where in the detector a hit sits.
type Region int

const (
	RegionBarrel Region = iota
	RegionEndcap
)

// Granularity describes the transverse cell-size class of a hit type,
// consumed by the merging operators' granularity-dependent thresholds.
type Granularity int

const (
	GranularityVeryFine Granularity = iota
	GranularityFine
	GranularityCoarse
	GranularityVeryCoarse
)

// Context holds the sub-detector envelopes, detector gaps and the
// hit-type to granularity mapping a reconstruction run is configured
// with. It answers "is point in gap?" and "what granularity?" and
// nothing else -- registration of sub-detectors and gaps themselves is
// owned by a collaborating geometry-manager plugin (see internal/plugin).
type Context struct {
	defaultGranularity map[HitType]Granularity
	overrides          map[subDetectorKey]Granularity
	gaps               []Gap
}

type subDetectorKey struct {
	hitType HitType
	region  Region
}

// NewContext returns a Context with the standard default granularity
// mapping used throughout the examples: calorimeters fine-to-coarse by
// depth, trackers very fine, muon chambers very coarse.
func NewContext() *Context {
	return &Context{
		defaultGranularity: map[HitType]Granularity{
			HitTypeTracker: GranularityVeryFine,
			HitTypeECAL:    GranularityFine,
			HitTypeHCAL:    GranularityCoarse,
			HitTypeMuon:    GranularityVeryCoarse,
			HitTypeTPCView: GranularityCoarse,
		},
		overrides: make(map[subDetectorKey]Granularity),
	}
}

// SetGranularityOverride records a per-subdetector granularity that takes
// precedence over the hit-type default, mirroring GeometryManager's
// ability to register subdetector-specific granularity.
func (c *Context) SetGranularityOverride(hitType HitType, region Region, g Granularity) {
	c.overrides[subDetectorKey{hitType, region}] = g
}

// Granularity returns the configured granularity for a hit type, applying
// any per-subdetector override first.
func (c *Context) Granularity(hitType HitType, region Region) Granularity {
	if g, ok := c.overrides[subDetectorKey{hitType, region}]; ok {
		return g
	}
	if g, ok := c.defaultGranularity[hitType]; ok {
		return g
	}
	return GranularityCoarse
}

// AddGap registers a detector gap to be consulted by IsInGap.
func (c *Context) AddGap(g Gap) {
	c.gaps = append(c.gaps, g)
}

// IsInGap reports whether pos lies in any registered gap for hitType,
// within tolerance (millimetres). Line gaps only match hits of their own
// hit type.
func (c *Context) IsInGap(pos Vector3, hitType HitType, tolerance float64) bool {
	for _, g := range c.gaps {
		if lg, ok := g.(*LineGap); ok {
			if lg.ContainsForHitType(pos, hitType, tolerance) {
				return true
			}
			continue
		}
		if g.Contains(pos, tolerance) {
			return true
		}
	}
	return false
}
