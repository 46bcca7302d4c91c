// Package viewport converts between document space (the drawing's fixed
// frame, in inches) and viewport space (screen units after zoom and pan).
//
// The forward transform is, per axis,
//
//	v = ((d - origin) / docSize) * displaySize * zoom + pan
//
// and ViewportToDocument is its exact inverse. A frame with a non-positive
// document size or zoom is degenerate and maps every point to itself.
package viewport

import (
	"backing/core"
	"backing/geometry"
)

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Size is a width/height pair in viewport units.
type Size struct {
	Width  float64
	Height float64
}

// Viewport is the zoom/pan state of the interactive view.
type Viewport struct {
	Zoom float64
	Pan  core.Point
	Size Size
}

// Mapper holds the reference frame for coordinate conversion. The zero value
// is degenerate and acts as the identity.
type Mapper struct {
	doc Rect
	vp  Viewport
}

// NewMapper creates a mapper for the given document bounds and viewport.
func NewMapper(doc Rect, vp Viewport) *Mapper {
	return &Mapper{doc: doc, vp: vp}
}

// SetDocumentBounds replaces the document frame.
func (m *Mapper) SetDocumentBounds(doc Rect) {
	m.doc = doc
}

// SetViewport replaces zoom, pan and size in one step.
func (m *Mapper) SetViewport(vp Viewport) {
	m.vp = vp
}

// DocumentBounds returns the current document frame.
func (m *Mapper) DocumentBounds() Rect {
	return m.doc
}

// Viewport returns the current viewport state.
func (m *Mapper) Viewport() Viewport {
	return m.vp
}

// ScaleFactor returns the current zoom so callers can size zoom-invariant
// overlay elements.
func (m *Mapper) ScaleFactor() float64 {
	return m.vp.Zoom
}

// degenerate reports whether the frame cannot produce a finite transform.
func (m *Mapper) degenerate() bool {
	return m.doc.Width <= 0 || m.doc.Height <= 0 || m.vp.Zoom <= 0 ||
		!geometry.Finite(m.vp.Zoom)
}

// display returns the display size, falling back to the document size on any
// axis the viewport does not specify.
func (m *Mapper) display() (w, h float64) {
	w, h = m.vp.Size.Width, m.vp.Size.Height
	if w <= 0 {
		w = m.doc.Width
	}
	if h <= 0 {
		h = m.doc.Height
	}
	return w, h
}

// DocumentToViewport maps a document point into viewport space.
func (m *Mapper) DocumentToViewport(p core.Point) core.Point {
	if m.degenerate() {
		return p
	}
	w, h := m.display()
	nx := (p.X - m.doc.X) / m.doc.Width
	ny := (p.Y - m.doc.Y) / m.doc.Height
	return core.Point{
		X: nx*w*m.vp.Zoom + m.vp.Pan.X,
		Y: ny*h*m.vp.Zoom + m.vp.Pan.Y,
	}
}

// ViewportToDocument maps a viewport point back into document space.
func (m *Mapper) ViewportToDocument(p core.Point) core.Point {
	if m.degenerate() {
		return p
	}
	w, h := m.display()
	nx := (p.X - m.vp.Pan.X) / m.vp.Zoom / w
	ny := (p.Y - m.vp.Pan.Y) / m.vp.Zoom / h
	return core.Point{
		X: nx*m.doc.Width + m.doc.X,
		Y: ny*m.doc.Height + m.doc.Y,
	}
}

// DocumentLengthToViewport scales a horizontal and vertical document length
// into viewport units.
func (m *Mapper) DocumentLengthToViewport(dx, dy float64) (float64, float64) {
	if m.degenerate() {
		return dx, dy
	}
	w, h := m.display()
	return dx / m.doc.Width * w * m.vp.Zoom, dy / m.doc.Height * h * m.vp.Zoom
}

// SnapToDocumentGrid rounds each axis of p to the nearest multiple of
// gridSize document units. A non-positive grid size returns p unchanged.
func SnapToDocumentGrid(p core.Point, gridSize float64) core.Point {
	return core.Point{
		X: geometry.RoundTo(p.X, gridSize),
		Y: geometry.RoundTo(p.Y, gridSize),
	}
}

// SnapToDocumentGrid is the method form of the package function.
func (m *Mapper) SnapToDocumentGrid(p core.Point, gridSize float64) core.Point {
	return SnapToDocumentGrid(p, gridSize)
}

// PanBy shifts the pan offset by (dx, dy) viewport units.
func (m *Mapper) PanBy(dx, dy float64) {
	m.vp.Pan = m.vp.Pan.Add(dx, dy)
}

// ZoomAt multiplies the zoom by factor while keeping the document point under
// the viewport anchor fixed. Non-positive factors are ignored.
func (m *Mapper) ZoomAt(factor float64, anchor core.Point) {
	if factor <= 0 || !geometry.Finite(factor) {
		return
	}
	if m.degenerate() {
		if m.vp.Zoom > 0 {
			m.vp.Zoom *= factor
		}
		return
	}
	fixed := m.ViewportToDocument(anchor)
	m.vp.Zoom *= factor

	// Re-solve pan so fixed maps back onto anchor.
	moved := m.DocumentToViewport(fixed)
	m.vp.Pan = m.vp.Pan.Add(anchor.X-moved.X, anchor.Y-moved.Y)
}

// VisibleDocumentRect returns the part of the document visible through a
// viewport of the current size, in document units.
func (m *Mapper) VisibleDocumentRect() Rect {
	w, h := m.display()
	tl := m.ViewportToDocument(core.Point{})
	br := m.ViewportToDocument(core.Point{X: w, Y: h})
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}
