package editor

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"backing/config"
	"backing/core"
	"backing/history"
	"backing/spatial"
	"backing/viewport"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

// manualScheduler never fires, so debounced commits wait for Flush or Undo.
type manualScheduler struct{}

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

func (manualScheduler) AfterFunc(time.Duration, func()) history.Timer { return manualTimer{} }

func placement(id string, x, y float64) core.Placement {
	p := core.NewPlacement(core.Category2x4, core.Point{X: x, Y: y})
	p.ID = id
	p.Label = id
	return p
}

func newTestSession(t *testing.T, placements ...core.Placement) (*Session, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewSession(Drawing{
		Name:       "test wall",
		Bounds:     viewport.Rect{Width: 192, Height: 96},
		Placements: placements,
	}, Options{Config: config.Default(), Now: clock.Now})
	t.Cleanup(s.Close)
	return s, clock
}

func TestAddUndoRedo(t *testing.T) {
	s, _ := newTestSession(t)

	p, err := s.Add(core.Category2x6, core.Point{X: 10.4, Y: 20.6})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Position.X != 10 || p.Position.Y != 21 {
		t.Errorf("Expected grid-snapped position (10,21), got (%v,%v)", p.Position.X, p.Position.Y)
	}
	if s.SelectedID() != p.ID {
		t.Errorf("New placement should be selected")
	}
	if _, err := s.Add("2x5", core.Point{}); err == nil {
		t.Error("Expected error for unknown category")
	}

	if !s.Undo() {
		t.Fatal("Expected undo to succeed")
	}
	if len(s.Placements()) != 0 {
		t.Errorf("Expected no placements after undo, got %d", len(s.Placements()))
	}
	if s.SelectedID() != "" {
		t.Errorf("Selection should clear when its placement is undone, got %q", s.SelectedID())
	}
	if !s.Redo() {
		t.Fatal("Expected redo to succeed")
	}
	if _, ok := s.Placement(p.ID); !ok {
		t.Error("Expected placement back after redo")
	}
}

func TestMoveSnapsToNeighbour(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 40, 0))

	fb, err := s.Move("b", core.Point{X: 17.2, Y: 0.9})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !fb.Snap.Snapped || fb.Snap.TargetID != "a" || fb.Snap.Kind != spatial.SnapEdge {
		t.Fatalf("Expected edge snap to a, got %+v", fb.Snap)
	}
	b, _ := s.Placement("b")
	if b.Position.X != 16 || b.Position.Y != 1.75 {
		t.Errorf("Expected b at a's right edge midpoint (16,1.75), got (%v,%v)", b.Position.X, b.Position.Y)
	}
	if fb.Collision.Colliding() {
		t.Errorf("Touching placements should not collide, got %+v", fb.Collision)
	}
}

func TestMovesCoalesce(t *testing.T) {
	s, clock := newTestSession(t, placement("a", 0, 0), placement("b", 40, 40))

	for x := 41.0; x <= 45; x++ {
		if _, err := s.Move("b", core.Point{X: x, Y: 40}); err != nil {
			t.Fatal(err)
		}
		clock.now = clock.now.Add(100 * time.Millisecond)
	}
	if got := s.History().PastLen(); got != 1 {
		t.Errorf("Expected one undo step for a drag, got %d", got)
	}

	clock.now = clock.now.Add(3 * time.Second)
	s.Nudge("b", 1, 0)
	if got := s.History().PastLen(); got != 2 {
		t.Errorf("Expected a new step after the group window, got %d", got)
	}

	s.Undo()
	s.Undo()
	b, _ := s.Placement("b")
	if b.Position.X != 40 {
		t.Errorf("Expected b back at x=40, got %v", b.Position.X)
	}
}

func TestNotFound(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0))

	checks := map[string]error{
		"delete":   s.Delete("zz"),
		"nudge":    s.Nudge("zz", 1, 1),
		"resize":   s.Resize("zz", 1, 1),
		"category": s.SetCategory("zz", core.Category2x6),
		"cycle":    s.CycleCategory("zz"),
		"status":   s.SetStatus("zz", core.StatusApproved),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
	if _, err := s.Move("zz", core.Point{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("move: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Feedback("zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("feedback: expected ErrNotFound, got %v", err)
	}
	if s.History().PastLen() != 0 {
		t.Errorf("Failed operations must not commit, got %d entries", s.History().PastLen())
	}
}

func TestResize(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0))

	for _, size := range [][2]float64{{0, 4}, {4, -1}, {math.NaN(), 4}, {math.Inf(1), 4}} {
		if err := s.Resize("a", size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("Expected ErrInvalidSize for %v, got %v", size, err)
		}
	}
	if err := s.Resize("a", 3.5, 48); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	a, _ := s.Placement("a")
	if a.Dimensions.Width != 3.5 || a.Dimensions.Height != 48 || a.Orientation != core.Vertical {
		t.Errorf("Unexpected placement after resize %+v", a)
	}
	if s.History().PresentEntry().Action != ActionResize {
		t.Errorf("Expected resize action, got %q", s.History().PresentEntry().Action)
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 40, 0), placement("c", 80, 0))
	s.Select("b")

	if err := s.Delete("b"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(s.Placements()) != 2 {
		t.Errorf("Expected 2 placements, got %d", len(s.Placements()))
	}
	if s.SelectedID() != "c" {
		t.Errorf("Expected selection to move to c, got %q", s.SelectedID())
	}
	s.Undo()
	if _, ok := s.Placement("b"); !ok {
		t.Error("Expected b restored by undo")
	}
}

func TestDuplicate(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0))
	s.SetStatus("a", core.StatusApproved)

	dup, err := s.Duplicate("a")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if dup.ID == "a" || dup.ID == "" {
		t.Errorf("Duplicate needs a fresh ID, got %q", dup.ID)
	}
	if dup.Position.X != 32 || dup.Position.Y != 0 {
		t.Errorf("Expected copy at (32,0), got (%v,%v)", dup.Position.X, dup.Position.Y)
	}
	if dup.Status != core.StatusPending {
		t.Errorf("Copies start pending, got %q", dup.Status)
	}
	if s.SelectedID() != dup.ID {
		t.Error("Copy should be selected")
	}
}

func TestAlignBest(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 20, 2))

	fb, err := s.Feedback("b")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(fb.Guides) != 3 {
		t.Fatalf("Expected 3 guides, got %d", len(fb.Guides))
	}

	got, ok, err := s.AlignBest("b")
	if err != nil || !ok {
		t.Fatalf("Expected an alignment, got ok=%v err=%v", ok, err)
	}
	if got.Kind != spatial.AlignTop || got.TargetID != "a" {
		t.Errorf("Expected top alignment to a, got %+v", got)
	}
	b, _ := s.Placement("b")
	if b.Position.X != 20 || b.Position.Y != 0 {
		t.Errorf("Expected b at (20,0), got (%v,%v)", b.Position.X, b.Position.Y)
	}

	far, _ := newTestSession(t, placement("a", 0, 0), placement("b", 100, 50))
	if _, ok, _ := far.AlignBest("b"); ok {
		t.Error("Expected no alignment beyond the max distance")
	}
}

func TestDistribute(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 0, 0), placement("c", 0, 0))

	n, err := s.Distribute([]string{"a", "b", "c"}, core.Point{X: 0, Y: 10}, core.Point{X: 96, Y: 10})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("Expected 3 placed, got %d", n)
	}
	want := map[string]float64{"a": 0, "b": 48, "c": 96}
	for id, x := range want {
		p, _ := s.Placement(id)
		if c := p.Center(); c.X != x || c.Y != 10 {
			t.Errorf("Expected %s centered at (%v,10), got %+v", id, x, c)
		}
	}
	if len(s.Collisions()) != 0 {
		t.Errorf("Distributed placements should not collide, got %v", s.Collisions())
	}

	if _, err := s.Distribute([]string{"a", "zz"}, core.Point{}, core.Point{X: 10}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCategoryAndStatus(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0))

	if err := s.SetCategory("a", "2x5"); err == nil {
		t.Error("Expected error for unknown category")
	}
	if err := s.CycleCategory("a"); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Placement("a")
	if a.Category != core.Category2x6 {
		t.Errorf("Expected 2x6 after cycling, got %q", a.Category)
	}
	if err := s.SetStatus("a", "maybe"); err == nil {
		t.Error("Expected error for unknown status")
	}
	if err := s.SetStatus("a", core.StatusApproved); err != nil {
		t.Fatal(err)
	}
	if got := s.History().PresentEntry().Action; got != ActionReview {
		t.Errorf("Expected review action, got %q", got)
	}
}

func TestJumpTo(t *testing.T) {
	s, clock := newTestSession(t, placement("a", 0, 0))
	for i := 0; i < 3; i++ {
		s.Add(core.Category2x4, core.Point{X: float64(20 * (i + 1))})
		clock.now = clock.now.Add(time.Second)
	}

	if !s.JumpTo(0) {
		t.Fatal("Expected jump to succeed")
	}
	if len(s.Placements()) != 1 {
		t.Errorf("Expected initial state, got %d placements", len(s.Placements()))
	}
	if s.JumpTo(10) {
		t.Error("Expected out of range jump to fail")
	}
	for s.Redo() {
	}
	if len(s.Placements()) != 4 {
		t.Errorf("Expected latest state after redoing, got %d placements", len(s.Placements()))
	}
}

func TestFeedbackCollision(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 8, 0))

	fb, err := s.Feedback("b")
	if err != nil {
		t.Fatal(err)
	}
	if !fb.Collision.Colliding() || fb.Collision.OverlappingIDs[0] != "a" {
		t.Errorf("Expected collision with a, got %+v", fb.Collision)
	}
	if fb.Collision.OverlapArea != 8*3.5 {
		t.Errorf("Expected overlap area 28, got %v", fb.Collision.OverlapArea)
	}
	if len(s.Collisions()) != 2 {
		t.Errorf("Expected both placements in the collision map, got %v", s.Collisions())
	}
}

func TestGroups(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 24, 0), placement("c", 48, 0))

	groups := s.Groups()
	if len(groups) != 1 || groups[0].Pattern != spatial.PatternLinear || len(groups[0].MemberIDs) != 3 {
		t.Errorf("Expected one linear group of 3, got %+v", groups)
	}
}

func TestSelection(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0), placement("b", 40, 0))

	if s.SelectedID() != "a" {
		t.Errorf("Expected first placement selected, got %q", s.SelectedID())
	}
	s.SelectNext()
	s.SelectNext()
	if s.SelectedID() != "a" {
		t.Errorf("Expected selection to wrap to a, got %q", s.SelectedID())
	}
	s.SelectPrev()
	if s.SelectedID() != "b" {
		t.Errorf("Expected b, got %q", s.SelectedID())
	}
	if s.Select("zz") {
		t.Error("Selecting an unknown ID should fail")
	}

	id, ok := s.HitTest(core.Point{X: 41, Y: 1})
	if !ok || id != "b" {
		t.Errorf("Expected hit on b, got %q %v", id, ok)
	}
	if _, ok := s.HitTest(core.Point{X: 30, Y: 50}); ok {
		t.Error("Expected miss on empty space")
	}
}

func TestDragToUsesViewport(t *testing.T) {
	s, _ := newTestSession(t, placement("a", 0, 0))
	s.Mapper().SetViewport(viewport.Viewport{Zoom: 2, Size: viewport.Size{Width: 192, Height: 96}})

	if _, err := s.DragTo("a", core.Point{X: 100, Y: 60}); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Placement("a")
	if a.Position.X != 50 || a.Position.Y != 30 {
		t.Errorf("Expected (50,30) in document space, got (%v,%v)", a.Position.X, a.Position.Y)
	}
}

func TestSessionLogsCommits(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewSession(Drawing{}, Options{Config: config.Default(), Logger: logger})
	defer s.Close()

	s.Add(core.CategoryPlywood, core.Point{})
	if !strings.Contains(buf.String(), "action=add") {
		t.Errorf("Expected commit log, got %q", buf.String())
	}
}

func TestDrawingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.json")
	s, _ := newTestSession(t, placement("a", 0, 0))
	s.Add(core.CategorySteelPlate, core.Point{X: 30, Y: 30})

	if err := SaveDrawing(path, s.Drawing()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	d, err := LoadDrawing(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if d.Name != "test wall" || len(d.Placements) != 2 || d.Bounds.Width != 192 {
		t.Errorf("Unexpected drawing %+v", d)
	}
}

func TestLoadDrawingErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadDrawing(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	p := placement("a", 0, 0)
	p.Dimensions.Width = 0
	if err := SaveDrawing(bad, Drawing{Placements: []core.Placement{p}}); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDrawing(bad); err == nil || !strings.Contains(err.Error(), "width") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDrawingDefaultBounds(t *testing.T) {
	d := Drawing{Placements: []core.Placement{placement("a", 200, 10)}}.normalized()
	if d.Bounds.Width != 216 || d.Bounds.Height != 96 {
		t.Errorf("Expected bounds grown to cover the placement, got %+v", d.Bounds)
	}
}

func TestDebouncedBoundaries(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg := config.Default()
	cfg.History.DebounceMS = 100
	s := NewSession(Drawing{Name: "debounced"}, Options{
		Config:    cfg,
		Now:       clock.Now,
		Scheduler: manualScheduler{},
	})
	t.Cleanup(s.Close)

	p1, err := s.Add(core.Category2x4, core.Point{X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := s.History().PastLen(); got != 1 {
		t.Errorf("Expected add to commit immediately, got %d past entries", got)
	}
	s.History().Flush()
	if _, err := s.Move(p1.ID, core.Point{X: 20, Y: 0}); err != nil {
		t.Fatal(err)
	}
	s.History().Flush()

	clock.now = clock.now.Add(50 * time.Millisecond)
	p2, err := s.Add(core.Category2x4, core.Point{X: 60, Y: 40})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Move(p2.ID, core.Point{X: 70, Y: 40}); err != nil {
		t.Fatal(err)
	}

	if !s.Undo() {
		t.Fatal("Expected undo to succeed")
	}
	got, ok := s.Placement(p1.ID)
	if !ok || got.Position.X != 20 {
		t.Errorf("Expected p1 to stay at x=20, got %+v", got)
	}
	got, ok = s.Placement(p2.ID)
	if !ok || got.Position.X != 60 {
		t.Errorf("Expected p2 back at its added position x=60, got %+v (present %v)", got, ok)
	}
}

func TestZeroOptionsUseDefaults(t *testing.T) {
	s := NewSession(Drawing{Placements: []core.Placement{placement("a", 0, 0)}}, Options{})
	t.Cleanup(s.Close)

	if got := s.Mapper().ScaleFactor(); got != 1 {
		t.Errorf("Expected zoom 1, got %v", got)
	}
	if s.Config().History.MaxSize != config.Default().History.MaxSize {
		t.Errorf("Expected default history size, got %d", s.Config().History.MaxSize)
	}
	s.Nudge("a", 1, 0)
	s.Nudge("a", 1, 0)
	if got := s.History().PastLen(); got != 1 {
		t.Errorf("Expected quick nudges to coalesce, got %d", got)
	}
}
