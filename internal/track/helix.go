package track

import (
	"math"

	"github.com/caloflow/pfreco/internal/geometry"
)

// Helix is a parameterised helical trajectory used to project a track
// into the calorimeter and to count layer crossings. It models a
// constant-pitch helix in a solenoidal field: ReferencePoint/Momentum at
// some point along the track, Charge in units of e, and Curvature the
// signed inverse radius (1/mm) of the transverse projection.
type Helix struct {
	ReferencePoint geometry.Vector3
	Momentum       geometry.Vector3 // GeV, at ReferencePoint
	Charge         float64
	Curvature      float64 // 1/mm; zero means an (approximately) straight track
}

func (h *Helix) transverseMomentum() float64 {
	return math.Hypot(h.Momentum.X, h.Momentum.Y)
}

func (h *Helix) totalMomentum() float64 {
	return h.Momentum.Mag()
}

// PositionAtZ returns the helix position at the given z coordinate. For
// a curvature near zero (or pz near zero) it falls back to straight-line
// extrapolation along the momentum direction.
func (h *Helix) PositionAtZ(z float64) geometry.Vector3 {
	dz := z - h.ReferencePoint.Z
	pT := h.transverseMomentum()
	if math.Abs(h.Curvature) < 1e-9 || pT < 1e-9 || math.Abs(h.Momentum.Z) < 1e-9 {
		if math.Abs(h.Momentum.Z) < 1e-9 {
			return h.ReferencePoint
		}
		scale := dz / h.Momentum.Z
		return geometry.Vector3{
			X: h.ReferencePoint.X + h.Momentum.X*scale,
			Y: h.ReferencePoint.Y + h.Momentum.Y*scale,
			Z: z,
		}
	}

	phi0 := math.Atan2(h.Momentum.Y, h.Momentum.X)
	radius := 1 / h.Curvature
	arcLength := dz * h.totalMomentum() / h.Momentum.Z
	phi := phi0 + h.Curvature*arcLength

	return geometry.Vector3{
		X: h.ReferencePoint.X + radius*(math.Sin(phi)-math.Sin(phi0)),
		Y: h.ReferencePoint.Y - radius*(math.Cos(phi)-math.Cos(phi0)),
		Z: z,
	}
}

// DirectionAtZ returns the (unit) tangent direction of the helix at z.
func (h *Helix) DirectionAtZ(z float64) geometry.Vector3 {
	pT := h.transverseMomentum()
	if math.Abs(h.Curvature) < 1e-9 || pT < 1e-9 || math.Abs(h.Momentum.Z) < 1e-9 {
		return h.Momentum.Unit()
	}
	phi0 := math.Atan2(h.Momentum.Y, h.Momentum.X)
	dz := z - h.ReferencePoint.Z
	arcLength := dz * h.totalMomentum() / h.Momentum.Z
	phi := phi0 + h.Curvature*arcLength
	dir := geometry.Vector3{
		X: math.Cos(phi) * pT,
		Y: math.Sin(phi) * pT,
		Z: h.Momentum.Z,
	}
	return dir.Unit()
}

// ClosestPointOnHelix returns the helix position (by z-sampling over
// [zStart, zEnd] at nSamples points) nearest to pos, along with the
// distance.
func (h *Helix) ClosestPointOnHelix(pos geometry.Vector3, zStart, zEnd float64, nSamples int) (closest geometry.Vector3, distance float64) {
	if nSamples < 2 {
		nSamples = 2
	}
	best := math.MaxFloat64
	for i := 0; i < nSamples; i++ {
		frac := float64(i) / float64(nSamples-1)
		z := zStart + frac*(zEnd-zStart)
		p := h.PositionAtZ(z)
		d := p.Sub(pos).Mag()
		if d < best {
			best = d
			closest = p
		}
	}
	return closest, best
}
