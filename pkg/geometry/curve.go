// Package geometry derives renderable shapes from graph state. Everything
// here is a pure function of its arguments: curves are recomputed on every
// call so renderers always see live positions, with no cache to go stale
// mid-drag.
package geometry

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/model"
)

const (
	// CurveSamples is the fixed number of points per connection curve.
	CurveSamples = 51
	// ArcHeight lifts the curve's control point above the midpoint so a
	// connection reads as an arc rather than a straight line.
	ArcHeight = 2.0
)

// DeriveCurve returns the points of a quadratic Bézier arc from the source
// division to the target. The control point is the midpoint of the two
// positions raised by ArcHeight on the Y axis. The result always has
// exactly CurveSamples points; the first equals the source position and
// the last equals the target position bit-for-bit.
func DeriveCurve(src, dst model.Division) []r3.Vec {
	p0 := src.Position
	p1 := dst.Position
	ctrl := r3.Scale(0.5, r3.Add(p0, p1))
	ctrl.Y += ArcHeight

	points := make([]r3.Vec, CurveSamples)
	points[0] = p0
	points[CurveSamples-1] = p1
	for i := 1; i < CurveSamples-1; i++ {
		t := float64(i) / float64(CurveSamples-1)
		u := 1 - t
		// B(t) = u²·p0 + 2ut·ctrl + t²·p1
		points[i] = r3.Add(
			r3.Scale(u*u, p0),
			r3.Add(r3.Scale(2*u*t, ctrl), r3.Scale(t*t, p1)),
		)
	}
	return points
}
