// Package geometry holds small numeric helpers shared by the mapper and the
// spatial reasoner.
package geometry

import "math"

// Epsilon is the tolerance used for floating point comparisons.
const Epsilon = 1e-9

// Distance returns the Euclidean distance between (x1,y1) and (x2,y2).
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// RoundTo rounds v to the nearest multiple of step. A non-positive step
// returns v unchanged.
func RoundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// Overlap returns the length of the intersection of [a0,a1] and [b0,b1], or
// zero when they do not intersect.
func Overlap(a0, a1, b0, b1 float64) float64 {
	return math.Max(0, math.Min(a1, b1)-math.Max(a0, b0))
}

// NearlyEqual reports whether a and b differ by at most tol.
func NearlyEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PointLineDistance returns the perpendicular distance from (px,py) to the
// infinite line through (x1,y1) and (x2,y2). A degenerate line falls back to
// the distance to its single point.
func PointLineDistance(px, py, x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < Epsilon {
		return Distance(px, py, x1, y1)
	}
	return math.Abs(dy*(px-x1)-dx*(py-y1)) / length
}
