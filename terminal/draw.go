package terminal

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"backing/core"
)

var (
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleCollision = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// cellColor converts a colour to the nearest tcell true colour.
func cellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// placementStyle fills with the status-tinted category colour and picks a
// readable foreground from its lightness.
func placementStyle(p core.Placement) tcell.Style {
	bg := core.StatusColor(p.Category, p.Status)
	fg := tcell.ColorBlack
	if l, _, _ := bg.Lab(); l < 0.55 {
		fg = tcell.ColorWhite
	}
	return tcell.StyleDefault.Background(cellColor(bg)).Foreground(fg)
}

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()
	collisions := a.session.Collisions()
	selected := a.session.SelectedID()

	for _, p := range a.session.Placements() {
		_, colliding := collisions[p.ID]
		a.drawPlacement(p, p.ID == selected, colliding, w, h-1)
	}
	a.drawStatus(w, h-1, len(collisions))
	a.screen.Show()
}

// cellRange maps a document interval onto the cells it covers. A non-empty
// interval always covers at least one cell.
func cellRange(from, to float64) (int, int) {
	lo := int(math.Floor(from))
	hi := int(math.Ceil(to))
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func (a *App) drawPlacement(p core.Placement, selected, colliding bool, w, h int) {
	m := a.session.Mapper()
	b := p.Bounds()
	tl := m.DocumentToViewport(core.Point{X: b.Left, Y: b.Top})
	br := m.DocumentToViewport(core.Point{X: b.Right, Y: b.Bottom})
	x0, x1 := cellRange(tl.X, br.X)
	y0, y1 := cellRange(tl.Y, br.Y)

	style := placementStyle(p)
	fill := ' '
	if colliding {
		fill = '#'
		style = style.Foreground(tcell.ColorRed)
	}
	if selected {
		style = style.Bold(true).Underline(true)
	}

	for y := max(y0, 0); y < min(y1, h); y++ {
		for x := max(x0, 0); x < min(x1, w); x++ {
			ch := fill
			if selected && (x == x0 || x == x1-1 || y == y0 || y == y1-1) {
				ch = '*'
			}
			a.screen.SetContent(x, y, ch, nil, style)
		}
	}

	label := p.Label
	if label == "" {
		label = string(p.Category)
	}
	if y0 >= 0 && y0 < h {
		drawText(a.screen, max(x0, 0), y0, min(x1, w), style, label)
	}
}

// drawText writes s from x up to limit, honouring wide runes.
func drawText(screen tcell.Screen, x, y, limit int, style tcell.Style, s string) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > limit {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x += rw
	}
}

// statusLine summarises the selection, collisions, the best guide and the
// history position.
func (a *App) statusLine(collisions int) string {
	s := a.session
	parts := []string{s.Name()}

	if p, ok := s.Selected(); ok {
		parts = append(parts, fmt.Sprintf("%s %s %s (%.1f,%.1f) %gx%g",
			p.Label, p.Category, p.Status, p.Position.X, p.Position.Y,
			p.Dimensions.Width, p.Dimensions.Height))
		if fb, err := s.Feedback(p.ID); err == nil && len(fb.Guides) > 0 {
			g := fb.Guides[0]
			parts = append(parts, fmt.Sprintf("guide %s→%s %.1f", g.Kind, shortID(g.TargetID), g.Distance))
		}
	}
	if collisions > 0 {
		parts = append(parts, fmt.Sprintf("%d colliding", collisions))
	}
	current, total := s.History().Stats()
	parts = append(parts, fmt.Sprintf("history %d/%d", current, total))
	parts = append(parts, fmt.Sprintf("zoom %.2f", s.Mapper().ScaleFactor()))
	if a.message != "" {
		parts = append(parts, a.message)
	}
	return strings.Join(parts, " | ")
}

func (a *App) drawStatus(w, y, collisions int) {
	for x := 0; x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, styleStatus)
	}
	style := styleStatus
	if collisions > 0 {
		style = styleCollision.Reverse(true)
	}
	drawText(a.screen, 0, y, w, style, a.statusLine(collisions))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
