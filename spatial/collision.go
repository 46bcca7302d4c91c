package spatial

import (
	"backing/core"
	"backing/geometry"
)

// Collision lists the placements a candidate overlaps.
//
// OverlapArea is the sum of the pairwise overlap areas, not the area of their
// union: where three or more placements share a region it is counted more
// than once. The value ranks severity; it is not exact geometry.
type Collision struct {
	OverlappingIDs []string `json:"overlappingIds"`
	OverlapArea    float64  `json:"overlapArea"`
}

// Colliding reports whether any overlap was found.
func (c Collision) Colliding() bool {
	return len(c.OverlappingIDs) > 0
}

// OverlapArea returns the area shared by the plan-view rectangles of a and b.
// Rectangles that only touch along an edge do not overlap.
func OverlapArea(a, b core.Placement) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	return geometry.Overlap(ab.Left, ab.Right, bb.Left, bb.Right) *
		geometry.Overlap(ab.Top, ab.Bottom, bb.Top, bb.Bottom)
}

// CheckCollisions tests candidate against every other placement, skipping any
// that shares its ID.
func CheckCollisions(candidate core.Placement, others []core.Placement) Collision {
	c := Collision{OverlappingIDs: []string{}}
	for _, o := range others {
		if o.ID == candidate.ID {
			continue
		}
		if area := OverlapArea(candidate, o); area > 0 {
			c.OverlappingIDs = append(c.OverlappingIDs, o.ID)
			c.OverlapArea += area
		}
	}
	return c
}

// CollisionMap checks every placement against the rest and returns the
// colliding ones keyed by ID.
func CollisionMap(placements []core.Placement) map[string]Collision {
	result := make(map[string]Collision)
	for _, p := range placements {
		if c := CheckCollisions(p, placements); c.Colliding() {
			result[p.ID] = c
		}
	}
	return result
}
