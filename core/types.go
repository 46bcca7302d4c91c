// Package core contains the fundamental types shared by the placement engine.
package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Point represents a 2D coordinate. Whether it is in document space (inches)
// or viewport space depends on who produced it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Position locates a placement on the drawing. X and Y are the top-left
// corner in document inches, Z is the height above finished floor (AFF).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point returns the plan-view part of the position.
func (p Position) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Dimensions is the size of a backing element in inches.
type Dimensions struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
}

// Orientation is the run direction of a backing element.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Valid reports whether o is a known orientation.
func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

// UnmarshalText rejects unknown orientations.
func (o *Orientation) UnmarshalText(text []byte) error {
	v := Orientation(text)
	if !v.Valid() {
		return fmt.Errorf("unknown orientation %q", text)
	}
	*o = v
	return nil
}

// Status is the review state of a placement.
type Status string

const (
	StatusSuggested Status = "ai-suggested"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSuggested, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// UnmarshalText rejects unknown statuses.
func (s *Status) UnmarshalText(text []byte) error {
	v := Status(text)
	if !v.Valid() {
		return fmt.Errorf("unknown status %q", text)
	}
	*s = v
	return nil
}

// Placement is a rectangular backing element placed on a drawing.
type Placement struct {
	ID          string      `json:"id"`
	Position    Position    `json:"position"`
	Dimensions  Dimensions  `json:"dimensions"`
	Category    Category    `json:"category"`
	Orientation Orientation `json:"orientation"`
	Status      Status      `json:"status"`
	Label       string      `json:"label,omitempty"`
}

// NewID returns a fresh placement identifier.
func NewID() string {
	return uuid.NewString()
}

// NewPlacement creates a pending placement of the given category with its
// top-left corner at p and the category's default dimensions.
func NewPlacement(category Category, p Point) Placement {
	dims := category.DefaultDimensions()
	orientation := Horizontal
	if dims.Height > dims.Width {
		orientation = Vertical
	}
	return Placement{
		ID:          NewID(),
		Position:    Position{X: p.X, Y: p.Y},
		Dimensions:  dims,
		Category:    category,
		Orientation: orientation,
		Status:      StatusPending,
	}
}

// Bounds returns the plan-view rectangle of the placement.
func (p Placement) Bounds() Bounds {
	return BoundsOf(p.Position.X, p.Position.Y, p.Dimensions.Width, p.Dimensions.Height)
}

// Center returns the center point of the placement.
func (p Placement) Center() Point {
	b := p.Bounds()
	return Point{X: b.CenterX, Y: b.CenterY}
}

// Contains checks if a point is inside the placement.
func (p Placement) Contains(pt Point) bool {
	return p.Bounds().Contains(pt)
}

// MoveTo returns a copy of p with its top-left corner at pt. Z is kept.
func (p Placement) MoveTo(pt Point) Placement {
	p.Position.X = pt.X
	p.Position.Y = pt.Y
	return p
}

// Bounds is the derived rectangle of a placement.
type Bounds struct {
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
	Top     float64 `json:"top"`
	Bottom  float64 `json:"bottom"`
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
}

// BoundsOf builds bounds from a top-left corner and a size.
func BoundsOf(x, y, width, height float64) Bounds {
	return Bounds{
		Left:    x,
		Right:   x + width,
		Top:     y,
		Bottom:  y + height,
		CenterX: x + width/2,
		CenterY: y + height/2,
	}
}

// Width returns the width of the bounds.
func (b Bounds) Width() float64 {
	return b.Right - b.Left
}

// Height returns the height of the bounds.
func (b Bounds) Height() float64 {
	return b.Bottom - b.Top
}

// Contains checks if a point is within the bounds. Edges are inclusive.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right &&
		p.Y >= b.Top && p.Y <= b.Bottom
}

// Union returns the smallest bounds covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return BoundsOf(
		min(b.Left, o.Left),
		min(b.Top, o.Top),
		max(b.Right, o.Right)-min(b.Left, o.Left),
		max(b.Bottom, o.Bottom)-min(b.Top, o.Top),
	)
}

// ClonePlacements returns an independent copy of a placement set. Placement
// holds no reference fields, so a slice copy is a full snapshot.
func ClonePlacements(ps []Placement) []Placement {
	if ps == nil {
		return nil
	}
	clone := make([]Placement, len(ps))
	copy(clone, ps)
	return clone
}

// IndexOf returns the index of the placement with the given ID, or -1.
func IndexOf(ps []Placement, id string) int {
	for i := range ps {
		if ps[i].ID == id {
			return i
		}
	}
	return -1
}

// MarshalPlacements encodes a placement set as indented JSON.
func MarshalPlacements(ps []Placement) ([]byte, error) {
	if ps == nil {
		ps = []Placement{}
	}
	return json.MarshalIndent(ps, "", "  ")
}
