package spatial

import (
	"math"
	"sort"

	"backing/core"
	"backing/geometry"
)

// PatternKind classifies the layout of a group.
type PatternKind string

const (
	PatternLinear  PatternKind = "linear"
	PatternGrid    PatternKind = "grid"
	PatternCluster PatternKind = "cluster"
)

// Grouping tolerances, in inches.
const (
	// ProximityRadius is the maximum center distance from a group's seed.
	ProximityRadius = 48.0
	// DimensionTolerance is the per-axis size difference allowed within a group.
	DimensionTolerance = 2.0
	// LineTolerance is the half-width of the band that linear members lie in.
	LineTolerance = 2.0
	// SpacingTolerance is the allowed deviation between grid intervals.
	SpacingTolerance = 2.0
	// MinGroupSize is the smallest group that is reported.
	MinGroupSize = 3
)

// GroupSuggestion proposes treating several placements as one unit.
type GroupSuggestion struct {
	MemberIDs []string    `json:"memberIds"`
	Pattern   PatternKind `json:"patternKind"`
	Bounds    core.Bounds `json:"bounds"`
	Center    core.Point  `json:"center"`
}

// SuggestGrouping greedily partitions placements into groups of the same
// category and near-equal size whose centers lie within ProximityRadius of the
// group's seed. Seeds are taken in placement order; a seed whose group is too
// small leaves its candidates free for later seeds. Only groups of at least
// MinGroupSize are returned, no placement appears in two groups, and larger
// groups come first.
func SuggestGrouping(placements []core.Placement) []GroupSuggestion {
	consumed := make([]bool, len(placements))
	var groups []GroupSuggestion

	for i, seed := range placements {
		if consumed[i] {
			continue
		}
		seedCenter := seed.Center()
		members := []int{i}
		for j := range placements {
			if j == i || consumed[j] {
				continue
			}
			p := placements[j]
			if p.Category != seed.Category {
				continue
			}
			if !geometry.NearlyEqual(p.Dimensions.Width, seed.Dimensions.Width, DimensionTolerance) ||
				!geometry.NearlyEqual(p.Dimensions.Height, seed.Dimensions.Height, DimensionTolerance) {
				continue
			}
			c := p.Center()
			if geometry.Distance(seedCenter.X, seedCenter.Y, c.X, c.Y) > ProximityRadius {
				continue
			}
			members = append(members, j)
		}

		if len(members) < MinGroupSize {
			continue
		}
		for _, m := range members {
			consumed[m] = true
		}
		groups = append(groups, buildGroup(placements, members))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].MemberIDs) > len(groups[j].MemberIDs)
	})
	return groups
}

func buildGroup(placements []core.Placement, members []int) GroupSuggestion {
	centers := make([]core.Point, len(members))
	bounds := placements[members[0]].Bounds()
	var sumX, sumY float64
	for k, m := range members {
		centers[k] = placements[m].Center()
		bounds = bounds.Union(placements[m].Bounds())
		sumX += centers[k].X
		sumY += centers[k].Y
	}

	pattern := PatternCluster
	order := members
	if sorted, ok := linearOrder(centers); ok {
		pattern = PatternLinear
		order = make([]int, len(members))
		for k, idx := range sorted {
			order[k] = members[idx]
		}
	} else if isGrid(centers) {
		pattern = PatternGrid
	}

	ids := make([]string, len(order))
	for k, m := range order {
		ids[k] = placements[m].ID
	}

	n := float64(len(members))
	return GroupSuggestion{
		MemberIDs: ids,
		Pattern:   pattern,
		Bounds:    bounds,
		Center:    core.Point{X: sumX / n, Y: sumY / n},
	}
}

// linearOrder sorts centers along their dominant axis and checks that all lie
// within LineTolerance of the line through the first and last. It returns the
// sorted indices when they do.
func linearOrder(centers []core.Point) ([]int, bool) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, c := range centers {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	alongX := maxX-minX >= maxY-minY

	idx := make([]int, len(centers))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if alongX {
			return centers[idx[a]].X < centers[idx[b]].X
		}
		return centers[idx[a]].Y < centers[idx[b]].Y
	})

	first, last := centers[idx[0]], centers[idx[len(idx)-1]]
	if geometry.Distance(first.X, first.Y, last.X, last.Y) < geometry.Epsilon {
		return nil, false
	}
	for _, c := range centers {
		if geometry.PointLineDistance(c.X, c.Y, first.X, first.Y, last.X, last.Y) > LineTolerance {
			return nil, false
		}
	}
	return idx, true
}

// isGrid reports whether the distinct center coordinates on both axes are
// evenly spaced, with at least two rows and two columns.
func isGrid(centers []core.Point) bool {
	xs := make([]float64, len(centers))
	ys := make([]float64, len(centers))
	for i, c := range centers {
		xs[i], ys[i] = c.X, c.Y
	}
	return evenlySpaced(distinct(xs)) && evenlySpaced(distinct(ys))
}

// distinct sorts values and merges those within SpacingTolerance of the
// previous kept value.
func distinct(values []float64) []float64 {
	sort.Float64s(values)
	var out []float64
	for _, v := range values {
		if len(out) > 0 && v-out[len(out)-1] <= SpacingTolerance {
			continue
		}
		out = append(out, v)
	}
	return out
}

func evenlySpaced(values []float64) bool {
	if len(values) < 2 {
		return false
	}
	step := values[1] - values[0]
	for i := 2; i < len(values); i++ {
		if !geometry.NearlyEqual(values[i]-values[i-1], step, SpacingTolerance) {
			return false
		}
	}
	return true
}
