// Package terminal is the interactive editing surface. Viewport space is the
// grid of terminal cells; the bottom row is the status bar.
package terminal

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"backing/core"
	"backing/editor"
)

const (
	zoomStep = 1.25
	panStep  = 4.0
)

// App drives one session on one screen.
type App struct {
	screen   tcell.Screen
	session  *editor.Session
	filename string
	logger   *slog.Logger

	message  string
	quit     bool
	dragging bool
	grab     core.Point // viewport offset from the grabbed placement's corner
}

// Run opens the terminal, edits d until the user quits and restores the
// terminal on the way out.
func Run(d editor.Drawing, opts editor.Options, filename string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to setup terminal: %w", err)
	}
	// Ensure terminal is restored even on panic
	defer screen.Fini()
	screen.EnableMouse()

	// Debounced commits land on a timer goroutine; wake the loop to redraw.
	opts.OnCommit = func() {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
	session := editor.NewSession(d, opts)
	defer session.Close()

	return New(screen, session, filename, opts.Logger).Loop()
}

// New creates an app on an initialized screen.
func New(screen tcell.Screen, session *editor.Session, filename string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{
		screen:   screen,
		session:  session,
		filename: filename,
		logger:   logger,
	}
	a.resize()
	return a
}

// Loop draws and handles events until quit.
func (a *App) Loop() error {
	for !a.quit {
		a.draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return nil
		}
		a.handleEvent(ev)
	}
	return nil
}

// Quit reports whether the user asked to leave.
func (a *App) Quit() bool { return a.quit }

// Message returns the last status message.
func (a *App) Message() string { return a.message }

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.resize()
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventInterrupt:
		// Redraw only
	}
}

// resize fits the viewport to the screen above the status bar.
func (a *App) resize() {
	w, h := a.screen.Size()
	m := a.session.Mapper()
	vp := m.Viewport()
	vp.Size.Width = float64(w)
	vp.Size.Height = float64(max(h-1, 1))
	m.SetViewport(vp)
}

func (a *App) gridStep() float64 {
	if g := a.session.Config().Snap.GridSize; g > 0 {
		return g
	}
	return 1
}

func (a *App) center() core.Point {
	vp := a.session.Mapper().Viewport()
	return core.Point{X: vp.Size.Width / 2, Y: vp.Size.Height / 2}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	s := a.session
	id := s.SelectedID()
	step := a.gridStep()
	var err error

	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.quit = true
		return
	case tcell.KeyTab:
		s.SelectNext()
		return
	case tcell.KeyBacktab:
		s.SelectPrev()
		return
	case tcell.KeyUp:
		err = s.Nudge(id, 0, -step)
	case tcell.KeyDown:
		err = s.Nudge(id, 0, step)
	case tcell.KeyLeft:
		err = s.Nudge(id, -step, 0)
	case tcell.KeyRight:
		err = s.Nudge(id, step, 0)
	case tcell.KeyCtrlZ:
		a.undo()
	case tcell.KeyCtrlR:
		a.redo()
	case tcell.KeyRune:
		err = a.handleRune(ev.Rune(), id, step)
	}

	if err != nil {
		a.message = err.Error()
		if !errors.Is(err, editor.ErrNotFound) {
			a.logger.Warn("edit failed", "error", err)
		}
	}
}

func (a *App) handleRune(r rune, id string, step float64) error {
	s := a.session
	m := s.Mapper()

	switch r {
	case 'q':
		a.quit = true
	case 'u':
		a.undo()
	case '+', '=':
		m.ZoomAt(zoomStep, a.center())
	case '-':
		m.ZoomAt(1/zoomStep, a.center())
	case 'w':
		m.PanBy(0, panStep)
	case 's':
		m.PanBy(0, -panStep)
	case 'a':
		m.PanBy(panStep, 0)
	case 'd':
		m.PanBy(-panStep, 0)
	case 'n':
		category := core.Category2x4
		if p, ok := s.Selected(); ok {
			category = p.Category
		}
		p, err := s.Add(category, m.ViewportToDocument(a.center()))
		if err != nil {
			return err
		}
		a.message = "added " + p.Category.Label()
	case 'x':
		if err := s.Delete(id); err != nil {
			return err
		}
		a.message = "deleted"
	case 'D':
		if _, err := s.Duplicate(id); err != nil {
			return err
		}
		a.message = "duplicated"
	case 'A':
		g, ok, err := s.AlignBest(id)
		if err != nil {
			return err
		}
		if !ok {
			a.message = "no alignment nearby"
			return nil
		}
		a.message = fmt.Sprintf("aligned %s", g.Kind)
	case 'c':
		return s.CycleCategory(id)
	case 'p':
		return s.SetStatus(id, core.StatusApproved)
	case 'r':
		return s.SetStatus(id, core.StatusRejected)
	case 'H', 'J', 'K', 'L':
		return a.resizeSelected(id, r, step)
	case 'S':
		return a.save()
	}
	return nil
}

// resizeSelected grows or shrinks the selection by one grid step. H and K
// shrink width and height; L and J grow them.
func (a *App) resizeSelected(id string, r rune, step float64) error {
	p, ok := a.session.Placement(id)
	if !ok {
		return fmt.Errorf("%w: nothing selected", editor.ErrNotFound)
	}
	w, h := p.Dimensions.Width, p.Dimensions.Height
	switch r {
	case 'H':
		w -= step
	case 'L':
		w += step
	case 'K':
		h -= step
	case 'J':
		h += step
	}
	return a.session.Resize(id, w, h)
}

func (a *App) undo() {
	desc := a.session.History().UndoDescription()
	if a.session.Undo() {
		a.message = "undo " + desc
	} else {
		a.message = "nothing to undo"
	}
}

func (a *App) redo() {
	desc := a.session.History().RedoDescription()
	if a.session.Redo() {
		a.message = "redo " + desc
	} else {
		a.message = "nothing to redo"
	}
}

func (a *App) save() error {
	if a.filename == "" {
		a.message = "no file to save to"
		return nil
	}
	if err := editor.SaveDrawing(a.filename, a.session.Drawing()); err != nil {
		return err
	}
	a.message = "saved " + a.filename
	a.logger.Info("saved drawing", "file", a.filename)
	return nil
}

// handleMouse selects on press and drags the selection while the button is
// held.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pt := core.Point{X: float64(x), Y: float64(y)}
	s := a.session

	if ev.Buttons()&tcell.Button1 == 0 {
		a.dragging = false
		return
	}
	if !a.dragging {
		id, ok := s.HitTest(pt)
		if !ok {
			return
		}
		s.Select(id)
		p, _ := s.Placement(id)
		corner := s.Mapper().DocumentToViewport(p.Position.Point())
		a.grab = core.Point{X: pt.X - corner.X, Y: pt.Y - corner.Y}
		a.dragging = true
		return
	}
	fb, err := s.DragTo(s.SelectedID(), pt.Add(-a.grab.X, -a.grab.Y))
	if err != nil {
		a.dragging = false
		return
	}
	if fb.Snap.Snapped {
		a.message = fmt.Sprintf("snap %s", fb.Snap.Kind)
	}
}
