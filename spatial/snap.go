// Package spatial provides the geometric analysis behind drag assistance:
// feature snapping, alignment guides, collision checks, grouping suggestions
// and category spacing. Every function is pure; placement slices are only
// read, so the functions are safe to call from several places at once.
package spatial

import (
	"math"

	"backing/core"
	"backing/geometry"
)

// SnapKind identifies which feature of a placement a point snapped to.
type SnapKind string

const (
	SnapNone   SnapKind = ""
	SnapEdge   SnapKind = "edge"
	SnapCenter SnapKind = "center"
	SnapCorner SnapKind = "corner"
)

// SnapResult is the outcome of SnapNearby. When Snapped is false, Position is
// the query point unchanged.
type SnapResult struct {
	Snapped  bool       `json:"snapped"`
	Position core.Point `json:"position"`
	Kind     SnapKind   `json:"kind,omitempty"`
	TargetID string     `json:"targetId,omitempty"`
	Distance float64    `json:"distance"`
}

type snapCandidate struct {
	point core.Point
	kind  SnapKind
}

// snapCandidates returns the nine salient points of a placement in a fixed
// order: edge midpoints (top, right, bottom, left), center, then corners
// clockwise from top-left.
func snapCandidates(p core.Placement) [9]snapCandidate {
	b := p.Bounds()
	return [9]snapCandidate{
		{core.Point{X: b.CenterX, Y: b.Top}, SnapEdge},
		{core.Point{X: b.Right, Y: b.CenterY}, SnapEdge},
		{core.Point{X: b.CenterX, Y: b.Bottom}, SnapEdge},
		{core.Point{X: b.Left, Y: b.CenterY}, SnapEdge},
		{core.Point{X: b.CenterX, Y: b.CenterY}, SnapCenter},
		{core.Point{X: b.Left, Y: b.Top}, SnapCorner},
		{core.Point{X: b.Right, Y: b.Top}, SnapCorner},
		{core.Point{X: b.Right, Y: b.Bottom}, SnapCorner},
		{core.Point{X: b.Left, Y: b.Bottom}, SnapCorner},
	}
}

// SnapNearby finds the single nearest edge midpoint, center or corner of any
// placement within threshold of p. Ties keep the earliest candidate, so
// placement order decides between equally near targets.
func SnapNearby(p core.Point, placements []core.Placement, threshold float64) SnapResult {
	return SnapNearbyExcluding(p, placements, threshold, "")
}

// SnapNearbyExcluding is SnapNearby ignoring the placement with excludeID,
// typically the one being dragged. An empty excludeID skips nothing.
func SnapNearbyExcluding(p core.Point, placements []core.Placement, threshold float64, excludeID string) SnapResult {
	result := SnapResult{Position: p}
	best := math.Inf(1)

	for _, pl := range placements {
		if excludeID != "" && pl.ID == excludeID {
			continue
		}
		for _, c := range snapCandidates(pl) {
			d := geometry.Distance(p.X, p.Y, c.point.X, c.point.Y)
			if d > threshold || d >= best {
				continue
			}
			best = d
			result = SnapResult{
				Snapped:  true,
				Position: c.point,
				Kind:     c.kind,
				TargetID: pl.ID,
				Distance: d,
			}
		}
	}
	return result
}
