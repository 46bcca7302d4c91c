// Package validation checks placement sets for structural problems before
// they reach the editor.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"backing/core"
	"backing/spatial"
)

// PlacementValidator validates placement sets.
type PlacementValidator struct {
	// Track validation errors
	errors []ValidationError
	// Options
	allowOverlaps bool // Accept overlapping placements
	requireLabels bool // Require every placement to carry a label
}

// ValidationError represents a validation error with the offending placement.
type ValidationError struct {
	Index   int
	ID      string
	Field   string
	Message string
}

// NewPlacementValidator creates a new validator with default settings.
func NewPlacementValidator() *PlacementValidator {
	return &PlacementValidator{
		allowOverlaps: true,
	}
}

// SetAllowOverlaps controls whether overlapping placements are reported.
func (v *PlacementValidator) SetAllowOverlaps(allow bool) {
	v.allowOverlaps = allow
}

// SetRequireLabels controls whether empty labels are reported.
func (v *PlacementValidator) SetRequireLabels(require bool) {
	v.requireLabels = require
}

// Validate checks every placement and returns all problems found.
func (v *PlacementValidator) Validate(placements []core.Placement) []ValidationError {
	v.errors = nil

	seen := make(map[string]int)
	for i, p := range placements {
		if p.ID == "" {
			v.addError(i, p.ID, "id", "missing id")
		} else if first, dup := seen[p.ID]; dup {
			v.addError(i, p.ID, "id", "duplicate id (first used at index %d)", first)
		} else {
			seen[p.ID] = i
		}

		if p.Dimensions.Width <= 0 {
			v.addError(i, p.ID, "dimensions.width", "width must be positive, got %v", p.Dimensions.Width)
		}
		if p.Dimensions.Height <= 0 {
			v.addError(i, p.ID, "dimensions.height", "height must be positive, got %v", p.Dimensions.Height)
		}
		if p.Dimensions.Thickness < 0 {
			v.addError(i, p.ID, "dimensions.thickness", "thickness must not be negative, got %v", p.Dimensions.Thickness)
		}
		if !p.Category.Valid() {
			v.addError(i, p.ID, "category", "unknown category %q", p.Category)
		}
		if !p.Orientation.Valid() {
			v.addError(i, p.ID, "orientation", "unknown orientation %q", p.Orientation)
		}
		if !p.Status.Valid() {
			v.addError(i, p.ID, "status", "unknown status %q", p.Status)
		}
		if v.requireLabels && strings.TrimSpace(p.Label) == "" {
			v.addError(i, p.ID, "label", "missing label")
		}
	}

	if !v.allowOverlaps {
		v.checkOverlaps(placements)
	}

	return v.errors
}

// checkOverlaps reports each overlapping pair once.
func (v *PlacementValidator) checkOverlaps(placements []core.Placement) {
	for i := range placements {
		for j := i + 1; j < len(placements); j++ {
			if spatial.OverlapArea(placements[i], placements[j]) > 0 {
				v.addError(i, placements[i].ID, "position", "overlaps %s", placements[j].ID)
			}
		}
	}
}

// addError adds a validation error.
func (v *PlacementValidator) addError(index int, id, field, format string, args ...interface{}) {
	v.errors = append(v.errors, ValidationError{
		Index:   index,
		ID:      id,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// String formats a validation error as a string.
func (e ValidationError) String() string {
	return fmt.Sprintf("[%d] %s %s: %s", e.Index, e.ID, e.Field, e.Message)
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.String()
}

// Join combines validation errors into a single error, or nil if there are none.
func Join(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return errors.Join(out...)
}

// ValidatePlacements runs the default validator and joins the result.
func ValidatePlacements(placements []core.Placement) error {
	return Join(NewPlacementValidator().Validate(placements))
}
