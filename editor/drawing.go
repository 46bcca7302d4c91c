package editor

import (
	"encoding/json"
	"fmt"
	"os"

	"backing/core"
	"backing/validation"
	"backing/viewport"
)

// DefaultBounds is the document frame used when a drawing has none: an
// eight foot tall, sixteen foot long wall elevation in inches.
var DefaultBounds = viewport.Rect{Width: 192, Height: 96}

// Drawing is the on-disk form of an editing session.
type Drawing struct {
	Name       string           `json:"name"`
	Bounds     viewport.Rect    `json:"bounds"`
	Placements []core.Placement `json:"placements"`
}

// normalized fills in missing bounds, growing the default frame to cover
// every placement.
func (d Drawing) normalized() Drawing {
	if d.Bounds.Width > 0 && d.Bounds.Height > 0 {
		return d
	}
	b := core.BoundsOf(DefaultBounds.X, DefaultBounds.Y, DefaultBounds.Width, DefaultBounds.Height)
	for _, p := range d.Placements {
		b = b.Union(p.Bounds())
	}
	d.Bounds = viewport.Rect{X: b.Left, Y: b.Top, Width: b.Width(), Height: b.Height()}
	return d
}

// LoadDrawing reads and validates a drawing file.
func LoadDrawing(filename string) (Drawing, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Drawing{}, fmt.Errorf("read drawing: %w", err)
	}

	var d Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return Drawing{}, fmt.Errorf("parse drawing %s: %w", filename, err)
	}
	if err := validation.ValidatePlacements(d.Placements); err != nil {
		return Drawing{}, fmt.Errorf("invalid drawing %s: %w", filename, err)
	}

	return d.normalized(), nil
}

// SaveDrawing writes a drawing as indented JSON.
func SaveDrawing(filename string, d Drawing) error {
	if d.Placements == nil {
		d.Placements = []core.Placement{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write drawing: %w", err)
	}
	return nil
}
