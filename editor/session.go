// Package editor composes the coordinate mapper, the spatial reasoner and the
// edit history into an editing session over one drawing.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"backing/config"
	"backing/core"
	"backing/geometry"
	"backing/history"
	"backing/spatial"
	"backing/viewport"
)

// Action tags recorded in the history.
const (
	ActionAdd        = "add"
	ActionDelete     = "delete"
	ActionMove       = "move"
	ActionResize     = "resize"
	ActionDuplicate  = "duplicate"
	ActionAlign      = "align"
	ActionDistribute = "distribute"
	ActionTypeChange = "type-change"
	ActionReview     = "review"
)

var (
	// ErrNotFound is returned when an operation names an unknown placement.
	ErrNotFound = errors.New("placement not found")
	// ErrInvalidSize is returned for non-positive or non-finite dimensions.
	ErrInvalidSize = errors.New("invalid size")
)

// Options configures a Session.
type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Size is the viewport size, in cells or pixels.
	Size viewport.Size
	// OnCommit is passed to the history for debounced commits.
	OnCommit func()
	// Now and Scheduler override the history clock, for tests.
	Now       func() time.Time
	Scheduler history.Scheduler
}

// Feedback is the live drag assistance for one placement.
type Feedback struct {
	Snap      spatial.SnapResult
	Guides    []spatial.AlignmentSuggestion
	Collision spatial.Collision
}

// Session is a single-writer editing session.
type Session struct {
	name       string
	placements []core.Placement
	selected   string

	cfg     config.Config
	spacing spatial.SpacingTable
	mapper  *viewport.Mapper
	history *history.Timeline[[]core.Placement]
	logger  *slog.Logger
}

// NewSession starts a session on d. The drawing's placements become the
// initial history entry.
func NewSession(d Drawing, opts Options) *Session {
	d = d.normalized()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := opts.Config
	if cfg.IsZero() {
		cfg = config.Default()
	}
	s := &Session{
		name:       d.Name,
		placements: core.ClonePlacements(d.Placements),
		cfg:        cfg,
		spacing:    cfg.SpacingTable(),
		mapper: viewport.NewMapper(d.Bounds, viewport.Viewport{
			Zoom: cfg.Viewport.Zoom,
			Size: opts.Size,
		}),
		logger: logger,
	}
	if s.placements == nil {
		s.placements = []core.Placement{}
	}
	s.history = history.New(core.ClonePlacements(s.placements), history.Options{
		MaxSize:         cfg.History.MaxSize,
		GroupWindow:     cfg.History.GroupWindow(),
		DisableGrouping: !cfg.History.Grouping,
		Debounce:        cfg.History.Debounce(),
		Now:             opts.Now,
		Scheduler:       opts.Scheduler,
		OnCommit:        opts.OnCommit,
	})
	if len(s.placements) > 0 {
		s.selected = s.placements[0].ID
	}
	return s
}

// Close stops any pending history commit.
func (s *Session) Close() {
	s.history.Close()
}

// Name returns the drawing name.
func (s *Session) Name() string { return s.name }

// Mapper returns the session's coordinate mapper.
func (s *Session) Mapper() *viewport.Mapper { return s.mapper }

// History returns the session's timeline.
func (s *Session) History() *history.Timeline[[]core.Placement] { return s.history }

// Config returns the configuration the session was built with.
func (s *Session) Config() config.Config { return s.cfg }

// Placements returns a copy of the current placements.
func (s *Session) Placements() []core.Placement {
	return core.ClonePlacements(s.placements)
}

// Placement returns the placement with the given ID.
func (s *Session) Placement(id string) (core.Placement, bool) {
	if i := core.IndexOf(s.placements, id); i >= 0 {
		return s.placements[i], true
	}
	return core.Placement{}, false
}

// Drawing returns the current state as a drawing for saving.
func (s *Session) Drawing() Drawing {
	return Drawing{
		Name:       s.name,
		Bounds:     s.mapper.DocumentBounds(),
		Placements: s.Placements(),
	}
}

func (s *Session) index(id string) (int, error) {
	i := core.IndexOf(s.placements, id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return i, nil
}

// commit records the current placements. Boundary actions land immediately
// so a debounced edit cannot be replaced by them.
func (s *Session) commit(action, description string, boundary bool) {
	change := history.Change{
		Action:        action,
		Description:   description,
		ForceBoundary: boundary,
	}
	if boundary {
		s.history.Flush()
		s.history.CommitNow(core.ClonePlacements(s.placements), change)
	} else {
		s.history.Commit(core.ClonePlacements(s.placements), change)
	}
	s.logger.Debug("commit",
		"action", action,
		"description", description,
		"placements", len(s.placements))
}

func describe(p core.Placement) string {
	if p.Label != "" {
		return p.Label
	}
	return p.Category.Label()
}

// Add creates a placement of category with its top-left corner at pt, snapped
// to the grid, and selects it.
func (s *Session) Add(category core.Category, pt core.Point) (core.Placement, error) {
	if !category.Valid() {
		return core.Placement{}, fmt.Errorf("add: unknown category %q", category)
	}
	p := core.NewPlacement(category, viewport.SnapToDocumentGrid(pt, s.cfg.Snap.GridSize))
	s.placements = append(s.placements, p)
	s.selected = p.ID
	s.commit(ActionAdd, "Add "+describe(p), true)
	return p, nil
}

// Delete removes a placement.
func (s *Session) Delete(id string) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	removed := s.placements[i]
	s.placements = append(s.placements[:i], s.placements[i+1:]...)
	if s.selected == id {
		s.selected = ""
		if len(s.placements) > 0 {
			s.selected = s.placements[min(i, len(s.placements)-1)].ID
		}
	}
	s.commit(ActionDelete, "Delete "+describe(removed), true)
	return nil
}

// Move drags a placement so its top-left corner lands at pt. The point is
// rounded to the grid and then pulled onto a nearby feature of another
// placement. Successive moves inside the group window are one undo step.
func (s *Session) Move(id string, pt core.Point) (Feedback, error) {
	i, err := s.index(id)
	if err != nil {
		return Feedback{}, err
	}
	target := viewport.SnapToDocumentGrid(pt, s.cfg.Snap.GridSize)
	snap := spatial.SnapNearbyExcluding(target, s.placements, s.cfg.Snap.Threshold, id)
	s.placements[i] = s.placements[i].MoveTo(snap.Position)
	s.commit(ActionMove, "Move "+describe(s.placements[i]), false)

	fb := s.feedback(s.placements[i])
	fb.Snap = snap
	return fb, nil
}

// DragTo is Move with the target given in viewport space.
func (s *Session) DragTo(id string, viewportPt core.Point) (Feedback, error) {
	return s.Move(id, s.mapper.ViewportToDocument(viewportPt))
}

// Nudge shifts a placement by (dx, dy) document units without snapping.
func (s *Session) Nudge(id string, dx, dy float64) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.placements[i] = s.placements[i].MoveTo(s.placements[i].Position.Point().Add(dx, dy))
	s.commit(ActionMove, "Move "+describe(s.placements[i]), false)
	return nil
}

// Resize sets a placement's width and height. Orientation follows the aspect.
func (s *Session) Resize(id string, width, height float64) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 || !geometry.Finite(width) || !geometry.Finite(height) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, width, height)
	}
	p := &s.placements[i]
	p.Dimensions.Width = width
	p.Dimensions.Height = height
	if height > width {
		p.Orientation = core.Vertical
	} else {
		p.Orientation = core.Horizontal
	}
	s.commit(ActionResize, "Resize "+describe(*p), false)
	return nil
}

// Duplicate copies a placement one category spacing to its right and
// selects the copy.
func (s *Session) Duplicate(id string) (core.Placement, error) {
	i, err := s.index(id)
	if err != nil {
		return core.Placement{}, err
	}
	src := s.placements[i]
	dup := src
	dup.ID = core.NewID()
	dup.Status = core.StatusPending
	gap := s.spacing.Lookup(src.Category).Horizontal
	dup = dup.MoveTo(src.Position.Point().Add(src.Dimensions.Width+gap, 0))

	s.placements = append(s.placements, dup)
	s.selected = dup.ID
	s.commit(ActionDuplicate, "Duplicate "+describe(src), true)
	return dup, nil
}

// Align moves a placement to the position of an alignment suggestion.
func (s *Session) Align(id string, suggestion spatial.AlignmentSuggestion) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	s.placements[i] = s.placements[i].MoveTo(suggestion.Position)
	s.commit(ActionAlign, fmt.Sprintf("Align %s %s", describe(s.placements[i]), suggestion.Kind), true)
	return nil
}

// AlignBest applies the nearest alignment within the configured distance.
// It reports false when there is none.
func (s *Session) AlignBest(id string) (spatial.AlignmentSuggestion, bool, error) {
	i, err := s.index(id)
	if err != nil {
		return spatial.AlignmentSuggestion{}, false, err
	}
	top := spatial.TopAlignments(
		spatial.SuggestAlignment(s.placements[i], s.placements), 1, s.cfg.Alignment.MaxDistance)
	if len(top) == 0 {
		return spatial.AlignmentSuggestion{}, false, nil
	}
	if err := s.Align(id, top[0]); err != nil {
		return spatial.AlignmentSuggestion{}, false, err
	}
	return top[0], true, nil
}

// Distribute centers the given placements on evenly spaced points from start
// to end, using the first placement's category spacing. When the segment is
// too short for all of them, only the leading placements are moved. It
// returns how many were placed.
func (s *Session) Distribute(ids []string, start, end core.Point) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	idx := make([]int, len(ids))
	for k, id := range ids {
		i, err := s.index(id)
		if err != nil {
			return 0, err
		}
		idx[k] = i
	}

	points := s.spacing.Distribute(start, end, len(ids), s.placements[idx[0]].Category)
	for k, pt := range points {
		p := &s.placements[idx[k]]
		*p = p.MoveTo(pt.Add(-p.Dimensions.Width/2, -p.Dimensions.Height/2))
	}
	s.commit(ActionDistribute, fmt.Sprintf("Distribute %d placements", len(points)), true)
	return len(points), nil
}

// SetCategory changes a placement's category. Dimensions are kept.
func (s *Session) SetCategory(id string, category core.Category) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	if !category.Valid() {
		return fmt.Errorf("set category: unknown category %q", category)
	}
	s.placements[i].Category = category
	s.commit(ActionTypeChange, "Change type to "+category.Label(), false)
	return nil
}

// CycleCategory moves a placement to the next category in the table.
func (s *Session) CycleCategory(id string) error {
	p, ok := s.Placement(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.SetCategory(id, p.Category.Next())
}

// SetStatus records a review decision on a placement.
func (s *Session) SetStatus(id string, status core.Status) error {
	i, err := s.index(id)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("set status: unknown status %q", status)
	}
	s.placements[i].Status = status
	s.commit(ActionReview, fmt.Sprintf("Mark %s %s", describe(s.placements[i]), status), false)
	return nil
}

// restore replaces the live placements with a history state.
func (s *Session) restore(state []core.Placement) {
	s.placements = core.ClonePlacements(state)
	if s.placements == nil {
		s.placements = []core.Placement{}
	}
	if core.IndexOf(s.placements, s.selected) < 0 {
		s.selected = ""
		if len(s.placements) > 0 {
			s.selected = s.placements[len(s.placements)-1].ID
		}
	}
}

// Undo steps back one history entry.
func (s *Session) Undo() bool {
	state, ok := s.history.Undo()
	if ok {
		s.restore(state)
		s.logger.Debug("undo", "redo", s.history.RedoDescription())
	}
	return ok
}

// Redo steps forward one history entry.
func (s *Session) Redo() bool {
	state, ok := s.history.Redo()
	if ok {
		s.restore(state)
		s.logger.Debug("redo", "undo", s.history.UndoDescription())
	}
	return ok
}

// JumpTo makes an earlier history entry current. Index 0 is the oldest
// undo step.
func (s *Session) JumpTo(index int) bool {
	if !s.history.JumpTo(index) {
		return false
	}
	s.restore(s.history.Present())
	return true
}

// Feedback returns the live snap, guides and collisions for a placement at
// its current position.
func (s *Session) Feedback(id string) (Feedback, error) {
	i, err := s.index(id)
	if err != nil {
		return Feedback{}, err
	}
	p := s.placements[i]
	fb := s.feedback(p)
	fb.Snap = spatial.SnapNearbyExcluding(p.Position.Point(), s.placements, s.cfg.Snap.Threshold, id)
	return fb, nil
}

func (s *Session) feedback(p core.Placement) Feedback {
	return Feedback{
		Guides: spatial.TopAlignments(
			spatial.SuggestAlignment(p, s.placements), s.cfg.Alignment.TopN, s.cfg.Alignment.MaxDistance),
		Collision: spatial.CheckCollisions(p, s.placements),
	}
}

// Collisions returns every colliding placement keyed by ID.
func (s *Session) Collisions() map[string]spatial.Collision {
	return spatial.CollisionMap(s.placements)
}

// Groups returns grouping suggestions for the current placements.
func (s *Session) Groups() []spatial.GroupSuggestion {
	return spatial.SuggestGrouping(s.placements)
}

// Selected returns the selected placement, if any.
func (s *Session) Selected() (core.Placement, bool) {
	if s.selected == "" {
		return core.Placement{}, false
	}
	return s.Placement(s.selected)
}

// SelectedID returns the selected placement's ID, or "".
func (s *Session) SelectedID() string { return s.selected }

// Select selects a placement by ID. An empty ID clears the selection.
func (s *Session) Select(id string) bool {
	if id == "" {
		s.selected = ""
		return true
	}
	if core.IndexOf(s.placements, id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// SelectNext selects the placement after the current one, wrapping around.
func (s *Session) SelectNext() {
	s.selectOffset(1)
}

// SelectPrev selects the placement before the current one, wrapping around.
func (s *Session) SelectPrev() {
	s.selectOffset(-1)
}

func (s *Session) selectOffset(step int) {
	n := len(s.placements)
	if n == 0 {
		s.selected = ""
		return
	}
	i := core.IndexOf(s.placements, s.selected)
	if i < 0 {
		if step > 0 {
			i = n - 1
		} else {
			i = 0
		}
	}
	s.selected = s.placements[((i+step)%n+n)%n].ID
}

// HitTest returns the topmost placement under a viewport point. Later
// placements draw over earlier ones.
func (s *Session) HitTest(viewportPt core.Point) (string, bool) {
	pt := s.mapper.ViewportToDocument(viewportPt)
	for i := len(s.placements) - 1; i >= 0; i-- {
		if s.placements[i].Contains(pt) {
			return s.placements[i].ID, true
		}
	}
	return "", false
}
