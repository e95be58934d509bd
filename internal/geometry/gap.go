package geometry

import "math"

// Gap is a region of inactive detector material. Each answers "is this
// position in the gap?" within a tolerance.
type Gap interface {
	Contains(pos Vector3, tolerance float64) bool
}

// ConcentricGap is the azimuthal gap between two regular polygons (the
// cross-section of barrel support structure, cabling channels, etc.),
// bounded in z. A point is in the gap when its z lies within
// [zMin-tol, zMax+tol], it lies inside the outer polygon, and it lies
// outside the inner polygon.
type ConcentricGap struct {
	ZMin, ZMax     float64
	innerPolygon   []point2D
	outerPolygon   []point2D
}

type point2D struct{ X, Y float64 }

// NewConcentricGap builds the inner and outer regular polygons from
// (radius, phi0, symmetryOrder) triples, where radius is the apothem
// (the perpendicular distance from the center to each edge, not the
// distance to a vertex) and phi0 the azimuthal offset of the polygon
// prior to the half-sector rotation every vertex carries.
func NewConcentricGap(zMin, zMax float64, innerRadius, innerPhi0 float64, innerSymmetry int, outerRadius, outerPhi0 float64, outerSymmetry int) *ConcentricGap {
	return &ConcentricGap{
		ZMin:         zMin,
		ZMax:         zMax,
		innerPolygon: regularPolygon(innerRadius, innerPhi0, innerSymmetry),
		outerPolygon: regularPolygon(outerRadius, outerPhi0, outerSymmetry),
	}
}

// regularPolygon places symmetryOrder vertices on the circumscribing
// circle of a regular polygon whose apothem is radius: circumradius
// rMax = radius/cos(pi/n), first vertex at phi0 + pi/n, matching
// ConcentricGap::GetPolygonVertices so a caller-supplied radius means
// "this polygon's flat sides sit at this distance from the axis," not
// "its vertices do."
func regularPolygon(radius, phi0 float64, symmetryOrder int) []point2D {
	if symmetryOrder < 3 {
		symmetryOrder = 3
	}
	firstVertexAngle := math.Pi / float64(symmetryOrder)
	rMax := radius / math.Cos(firstVertexAngle)
	verts := make([]point2D, symmetryOrder)
	for k := 0; k < symmetryOrder; k++ {
		phi := phi0 + firstVertexAngle + 2*math.Pi*float64(k)/float64(symmetryOrder)
		verts[k] = point2D{rMax * math.Cos(phi), rMax * math.Sin(phi)}
	}
	return verts
}

// Contains implements Gap.
func (g *ConcentricGap) Contains(pos Vector3, tolerance float64) bool {
	if pos.Z < g.ZMin-tolerance || pos.Z > g.ZMax+tolerance {
		return false
	}
	p := point2D{pos.X, pos.Y}
	if windingNumber(p, g.outerPolygon) == 0 {
		return false
	}
	if windingNumber(p, g.innerPolygon) != 0 {
		return false
	}
	return true
}

// windingNumber returns the winding number of polygon verts around p,
// using the standard crossing-number-free winding algorithm. A nonzero
// result means p is inside. Points exactly on an edge follow the
// half-open convention of the crossing test: a point on a lower or left
// edge counts as inside, a point on an upper or right edge as outside.
func windingNumber(p point2D, verts []point2D) int {
	wn := 0
	n := len(verts)
	for i := 0; i < n; i++ {
		v0 := verts[i]
		v1 := verts[(i+1)%n]
		if v0.Y <= p.Y {
			if v1.Y > p.Y && isLeft(v0, v1, p) > 0 {
				wn++
			}
		} else {
			if v1.Y <= p.Y && isLeft(v0, v1, p) < 0 {
				wn--
			}
		}
	}
	return wn
}

// isLeft returns >0 if p is left of the line v0->v1, <0 if right, 0 if on it.
func isLeft(v0, v1, p point2D) float64 {
	return (v1.X-v0.X)*(p.Y-v0.Y) - (p.X-v0.X)*(v1.Y-v0.Y)
}

// BoxGap is a rectangular-prism gap defined by a vertex and three
// orthogonal side vectors. A point is inside when its projection onto
// each side vector, relative to the vertex, lies within
// [-tolerance, |side| + tolerance].
type BoxGap struct {
	Vertex           Vector3
	Side1, Side2, Side3 Vector3
}

// Contains implements Gap.
func (g *BoxGap) Contains(pos Vector3, tolerance float64) bool {
	rel := pos.Sub(g.Vertex)
	for _, side := range []Vector3{g.Side1, g.Side2, g.Side3} {
		mag := side.Mag()
		if mag < 1e-9 {
			return false
		}
		proj := rel.Dot(side) / mag
		if proj < -tolerance || proj > mag+tolerance {
			return false
		}
	}
	return true
}

// LineGapType distinguishes which coordinate a LineGap bounds.
type LineGapType int

const (
	LineGapX LineGapType = iota
	LineGapY
	LineGapZ
)

// LineGap is the simplest gap type: a hit-type match plus a single
// coordinate interval.
type LineGap struct {
	HitType  HitType
	Type     LineGapType
	Min, Max float64
}

// Contains implements Gap. LineGap additionally gates on hit type via
// ContainsForHitType; Contains alone treats the gap as hit-type-agnostic
// (used when the caller has already filtered by hit type).
func (g *LineGap) Contains(pos Vector3, tolerance float64) bool {
	var v float64
	switch g.Type {
	case LineGapX:
		v = pos.X
	case LineGapY:
		v = pos.Y
	default:
		v = pos.Z
	}
	return v >= g.Min-tolerance && v <= g.Max+tolerance
}

// ContainsForHitType additionally requires hitType to match the gap's
// configured hit type, matching LineGap's source semantics of only
// applying to a specific hit type (e.g. a TPC-view-specific strip gap).
func (g *LineGap) ContainsForHitType(pos Vector3, hitType HitType, tolerance float64) bool {
	return g.HitType == hitType && g.Contains(pos, tolerance)
}
