package spatial

import (
	"math"

	"backing/core"
	"backing/geometry"
)

// Spacing is the recommended center-to-center distance between placements of
// one category, in inches.
type Spacing struct {
	Horizontal float64 `json:"horizontal" yaml:"horizontal"`
	Vertical   float64 `json:"vertical" yaml:"vertical"`
}

// Max returns the larger of the two spacings.
func (s Spacing) Max() float64 {
	return math.Max(s.Horizontal, s.Vertical)
}

// DefaultSpacing is used for categories missing from a table.
var DefaultSpacing = Spacing{Horizontal: 16, Vertical: 16}

// SpacingTable maps categories to their recommended spacing.
type SpacingTable map[core.Category]Spacing

var defaultTable = SpacingTable{
	core.Category2x4:        {Horizontal: 16, Vertical: 16},
	core.Category2x6:        {Horizontal: 16, Vertical: 24},
	core.Category2x8:        {Horizontal: 24, Vertical: 24},
	core.Category2x10:       {Horizontal: 24, Vertical: 32},
	core.CategoryPlywood:    {Horizontal: 48, Vertical: 48},
	core.CategorySteelPlate: {Horizontal: 12, Vertical: 12},
	core.CategoryBlocking:   {Horizontal: 16, Vertical: 24},
}

// DefaultSpacingTable returns a copy of the built-in spacing table.
func DefaultSpacingTable() SpacingTable {
	t := make(SpacingTable, len(defaultTable))
	for k, v := range defaultTable {
		t[k] = v
	}
	return t
}

// With returns a copy of t with overrides applied on top.
func (t SpacingTable) With(overrides SpacingTable) SpacingTable {
	out := make(SpacingTable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Lookup returns the spacing for category, or DefaultSpacing.
func (t SpacingTable) Lookup(category core.Category) Spacing {
	if s, ok := t[category]; ok {
		return s
	}
	return DefaultSpacing
}

// OptimalSpacing returns the built-in spacing for category.
func OptimalSpacing(category core.Category) Spacing {
	return defaultTable.Lookup(category)
}

// DistributeAlongSegment places points from start to end using the built-in
// spacing table. See SpacingTable.Distribute.
func DistributeAlongSegment(start, end core.Point, desiredCount int, category core.Category) []core.Point {
	return defaultTable.Distribute(start, end, desiredCount, category)
}

// Distribute returns up to desiredCount points evenly spread from start to
// end, both included. The count is capped so that neighbouring points are
// never closer than the category's larger spacing. A non-positive count or a
// zero-length segment yields only start.
func (t SpacingTable) Distribute(start, end core.Point, desiredCount int, category core.Category) []core.Point {
	if desiredCount <= 0 {
		return []core.Point{start}
	}

	length := geometry.Distance(start.X, start.Y, end.X, end.Y)
	count := desiredCount
	if step := t.Lookup(category).Max(); step > 0 {
		count = min(desiredCount, int(math.Floor(length/step))+1)
	}
	if count <= 1 {
		return []core.Point{start}
	}

	points := make([]core.Point, count)
	for i := range points {
		points[i] = core.Point{
			X: start.X + (end.X-start.X)*float64(i)/float64(count-1),
			Y: start.Y + (end.Y-start.Y)*float64(i)/float64(count-1),
		}
	}
	// Pin the far endpoint exactly.
	points[count-1] = end
	return points
}
