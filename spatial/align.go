package spatial

import (
	"math"
	"sort"

	"backing/core"
)

// AlignKind names one of the six canonical alignments.
type AlignKind string

const (
	AlignLeft    AlignKind = "left"
	AlignRight   AlignKind = "right"
	AlignTop     AlignKind = "top"
	AlignBottom  AlignKind = "bottom"
	AlignCenterH AlignKind = "centerH" // equal horizontal centers (CenterX)
	AlignCenterV AlignKind = "centerV" // equal vertical centers (CenterY)
)

// AlignmentSuggestion says where the moving placement's top-left corner would
// go to satisfy an alignment with TargetID, and how far it is from there now.
type AlignmentSuggestion struct {
	Kind     AlignKind  `json:"kind"`
	Position core.Point `json:"position"`
	TargetID string     `json:"targetId"`
	Distance float64    `json:"distance"`
}

// SuggestAlignment lists the six alignments of moving against every other
// placement, nearest first. A placement sharing moving's ID is skipped.
func SuggestAlignment(moving core.Placement, others []core.Placement) []AlignmentSuggestion {
	mb := moving.Bounds()
	w, h := moving.Dimensions.Width, moving.Dimensions.Height
	x, y := moving.Position.X, moving.Position.Y

	suggestions := make([]AlignmentSuggestion, 0, len(others)*6)
	for _, o := range others {
		if o.ID == moving.ID {
			continue
		}
		ob := o.Bounds()
		suggestions = append(suggestions,
			AlignmentSuggestion{AlignLeft, core.Point{X: ob.Left, Y: y}, o.ID, math.Abs(mb.Left - ob.Left)},
			AlignmentSuggestion{AlignRight, core.Point{X: ob.Right - w, Y: y}, o.ID, math.Abs(mb.Right - ob.Right)},
			AlignmentSuggestion{AlignTop, core.Point{X: x, Y: ob.Top}, o.ID, math.Abs(mb.Top - ob.Top)},
			AlignmentSuggestion{AlignBottom, core.Point{X: x, Y: ob.Bottom - h}, o.ID, math.Abs(mb.Bottom - ob.Bottom)},
			AlignmentSuggestion{AlignCenterH, core.Point{X: ob.CenterX - w/2, Y: y}, o.ID, math.Abs(mb.CenterX - ob.CenterX)},
			AlignmentSuggestion{AlignCenterV, core.Point{X: x, Y: ob.CenterY - h/2}, o.ID, math.Abs(mb.CenterY - ob.CenterY)},
		)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Distance < suggestions[j].Distance
	})
	return suggestions
}

// TopAlignments returns at most n suggestions, optionally dropping those
// farther than maxDistance. A non-positive maxDistance keeps every distance.
func TopAlignments(suggestions []AlignmentSuggestion, n int, maxDistance float64) []AlignmentSuggestion {
	out := make([]AlignmentSuggestion, 0, min(max(n, 0), len(suggestions)))
	for _, s := range suggestions {
		if len(out) >= n {
			break
		}
		if maxDistance > 0 && s.Distance > maxDistance {
			break
		}
		out = append(out, s)
	}
	return out
}
