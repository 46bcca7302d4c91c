package core

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Category is the kind of backing material. It is an enumerated type so that
// category-keyed tables (spacing, colour, default size) cannot drift on typos.
type Category string

const (
	Category2x4        Category = "2x4"
	Category2x6        Category = "2x6"
	Category2x8        Category = "2x8"
	Category2x10       Category = "2x10"
	CategoryPlywood    Category = "plywood"
	CategorySteelPlate Category = "steel-plate"
	CategoryBlocking   Category = "blocking"
)

// categoryInfo holds the per-category lookup data.
type categoryInfo struct {
	label string
	color colorful.Color
	dims  Dimensions
}

var categories = map[Category]categoryInfo{
	Category2x4:        {"2x4 Backing", mustHex("#c8a165"), Dimensions{Width: 16, Height: 3.5, Thickness: 1.5}},
	Category2x6:        {"2x6 Backing", mustHex("#b98b4e"), Dimensions{Width: 16, Height: 5.5, Thickness: 1.5}},
	Category2x8:        {"2x8 Backing", mustHex("#a6743a"), Dimensions{Width: 16, Height: 7.25, Thickness: 1.5}},
	Category2x10:       {"2x10 Backing", mustHex("#8f5f2a"), Dimensions{Width: 16, Height: 9.25, Thickness: 1.5}},
	CategoryPlywood:    {"3/4\" Plywood", mustHex("#d9c27a"), Dimensions{Width: 24, Height: 24, Thickness: 0.75}},
	CategorySteelPlate: {"Steel Plate", mustHex("#7d8a96"), Dimensions{Width: 6, Height: 6, Thickness: 0.25}},
	CategoryBlocking:   {"Blocking", mustHex("#9c6b4f"), Dimensions{Width: 14.5, Height: 3.5, Thickness: 1.5}},
}

// Categories lists every known category in display order.
var Categories = []Category{
	Category2x4,
	Category2x6,
	Category2x8,
	Category2x10,
	CategoryPlywood,
	CategorySteelPlate,
	CategoryBlocking,
}

// defaultColor is used for unknown categories.
var defaultColor = mustHex("#cccccc")

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.label
	}
	return string(c)
}

// Color returns the display colour of the category.
func (c Category) Color() colorful.Color {
	if info, ok := categories[c]; ok {
		return info.color
	}
	return defaultColor
}

// DefaultDimensions returns the size a new placement of this category gets.
func (c Category) DefaultDimensions() Dimensions {
	if info, ok := categories[c]; ok {
		return info.dims
	}
	return Dimensions{Width: 16, Height: 3.5, Thickness: 1.5}
}

// Next returns the category after c in display order, wrapping around.
func (c Category) Next() Category {
	for i, cat := range Categories {
		if cat == c {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return Categories[0]
}

// UnmarshalText rejects unknown categories.
func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// StatusColor tints a category colour by review status: approved placements
// keep the category colour, others are blended toward a status hue.
func StatusColor(c Category, s Status) colorful.Color {
	base := c.Color()
	switch s {
	case StatusSuggested:
		return base.BlendLab(mustHex("#4a90d9"), 0.5)
	case StatusPending:
		return base.BlendLab(mustHex("#ffffff"), 0.3)
	case StatusRejected:
		return base.BlendLab(mustHex("#d0021b"), 0.6)
	}
	return base
}
