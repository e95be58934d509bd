// Package fit performs linear fits over cluster hit positions: all hits,
// the first N occupied layers, the last N, or an explicit layer range.
// The direction is the principal axis of the position scatter matrix,
// solved with gonum/mat rather than a hand-rolled 2D closed form since
// the fit is inherently 3D.
package fit

import (
	"math"

	"github.com/caloflow/pfreco/internal/geometry"
	"gonum.org/v1/gonum/mat"
)

// FailureKind enumerates why a fit did not succeed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTooFewPoints
	FailureDegenerateLayout
)

// Result is the output of a linear fit.
type Result struct {
	Success      bool
	Direction    geometry.Vector3
	Intercept    geometry.Vector3
	RMS          float64
	ChiSquarePerDof float64
	RadialCosine float64
	Failure      FailureKind
}

// FitAll fits a straight line through points by principal-axis
// (total-least-squares) regression.
func FitAll(points []geometry.Vector3) Result {
	if len(points) < 2 {
		return Result{Failure: FailureTooFewPoints}
	}

	centroid := centroidOf(points)

	var sxx, sxy, sxz, syy, syz, szz float64
	for _, p := range points {
		d := p.Sub(centroid)
		sxx += d.X * d.X
		sxy += d.X * d.Y
		sxz += d.X * d.Z
		syy += d.Y * d.Y
		syz += d.Y * d.Z
		szz += d.Z * d.Z
	}

	scatter := mat.NewSymDense(3, []float64{
		sxx, sxy, sxz,
		sxy, syy, syz,
		sxz, syz, szz,
	})

	var eig mat.EigenSym
	if ok := eig.Factorize(scatter, true); !ok {
		return Result{Failure: FailureDegenerateLayout}
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Largest eigenvalue's eigenvector is the principal axis.
	bestIdx := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[bestIdx] {
			bestIdx = i
		}
	}
	if values[bestIdx] < 1e-12 {
		return Result{Failure: FailureDegenerateLayout}
	}

	direction := geometry.Vector3{
		X: vectors.At(0, bestIdx),
		Y: vectors.At(1, bestIdx),
		Z: vectors.At(2, bestIdx),
	}.Unit()

	var sumSq, sumPerp2 float64
	for _, p := range points {
		d := p.Sub(centroid)
		along := d.Dot(direction)
		perp := d.Sub(direction.Scale(along))
		perpDist := perp.Mag()
		sumSq += perpDist
		sumPerp2 += perpDist * perpDist
	}
	n := float64(len(points))
	rms := sumSq / n

	dof := n - 2
	if dof < 1 {
		dof = 1
	}
	chi2PerDof := sumPerp2 / dof

	radialUnit := centroid.Unit()
	radialCosine := direction.Dot(radialUnit)

	return Result{
		Success:      true,
		Direction:    direction,
		Intercept:    centroid,
		RMS:          rms,
		ChiSquarePerDof: chi2PerDof,
		RadialCosine: radialCosine,
	}
}

func centroidOf(points []geometry.Vector3) geometry.Vector3 {
	var sum geometry.Vector3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(points)))
}

// PerpendicularDistance returns the perpendicular distance of p from
// the fitted line, or +Inf if the fit did not succeed.
func (r Result) PerpendicularDistance(p geometry.Vector3) float64 {
	if !r.Success {
		return math.Inf(1)
	}
	d := p.Sub(r.Intercept)
	along := d.Dot(r.Direction)
	perp := d.Sub(r.Direction.Scale(along))
	return perp.Mag()
}
