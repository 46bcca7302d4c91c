package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"backing/core"
	"backing/editor"
	"backing/spatial"
	"backing/validation"
)

// Report is the non-interactive analysis of a drawing.
type Report struct {
	Name       string                            `json:"name"`
	Placements int                               `json:"placements"`
	Collisions []CollisionReport                 `json:"collisions"`
	Groups     []spatial.GroupSuggestion         `json:"groups"`
	Spacing    map[core.Category]spatial.Spacing `json:"spacing"`
}

// CollisionReport is one colliding placement and what it overlaps.
type CollisionReport struct {
	ID string `json:"id"`
	spatial.Collision
}

// buildReport collects collisions, grouping suggestions and the spacing of
// every category in use.
func buildReport(d editor.Drawing, table spatial.SpacingTable) Report {
	r := Report{
		Name:       d.Name,
		Placements: len(d.Placements),
		Collisions: []CollisionReport{},
		Groups:     spatial.SuggestGrouping(d.Placements),
		Spacing:    make(map[core.Category]spatial.Spacing),
	}
	if r.Groups == nil {
		r.Groups = []spatial.GroupSuggestion{}
	}

	for id, c := range spatial.CollisionMap(d.Placements) {
		r.Collisions = append(r.Collisions, CollisionReport{ID: id, Collision: c})
	}
	sort.Slice(r.Collisions, func(i, j int) bool {
		return r.Collisions[i].ID < r.Collisions[j].ID
	})

	for _, p := range d.Placements {
		r.Spacing[p.Category] = table.Lookup(p.Category)
	}
	return r
}

// writeReport encodes a report as indented JSON.
func writeReport(w io.Writer, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// runValidate prints every problem in the drawing, overlaps included, and
// returns how many were found.
func runValidate(w io.Writer, d editor.Drawing) int {
	v := validation.NewPlacementValidator()
	v.SetAllowOverlaps(false)
	errs := v.Validate(d.Placements)

	for _, e := range errs {
		fmt.Fprintln(w, e.String())
	}
	if len(errs) == 0 {
		fmt.Fprintf(w, "✓ %d placements, no problems found\n", len(d.Placements))
	}
	return len(errs)
}
