// Package history implements a linear undo/redo timeline over an opaque state
// value. It coalesces rapid edits of the same kind into one step, can debounce
// bursts of commits, and supports jumping to any earlier entry.
//
// The timeline stores states as given. Callers must pass independent snapshots
// (for slices, a copy) so later changes to live state do not leak into history.
package history

import (
	"sync"
	"time"
)

const (
	// DefaultMaxSize is the number of past entries kept when Options.MaxSize is unset.
	DefaultMaxSize = 50
	// DefaultGroupWindow is the coalescing window when Options.GroupWindow is unset.
	DefaultGroupWindow = 2 * time.Second
)

// Entry is one snapshot in the timeline.
type Entry[S any] struct {
	State       S
	Action      string
	Description string
	Timestamp   time.Time
}

// Change describes a commit.
type Change struct {
	// Action tags the kind of edit ("move", "resize", ...). Commits with the
	// same non-empty action inside the group window merge into one step.
	Action      string
	Description string
	// ForceBoundary always starts a new step.
	ForceBoundary bool
}

// Options configures a Timeline. The zero value is usable.
type Options struct {
	MaxSize         int
	GroupWindow     time.Duration
	DisableGrouping bool
	// Debounce delays Commit so a burst of calls lands as one commit of the
	// last value. Zero commits immediately.
	Debounce time.Duration
	Now      func() time.Time
	// Scheduler runs debounced commits. Defaults to time.AfterFunc.
	Scheduler Scheduler
	// OnCommit, if set, is called after a debounced commit is applied by the
	// scheduler. It runs on the scheduler's goroutine without the lock held.
	OnCommit func()
}

// Timeline is the undo/redo history. past runs oldest to newest, future runs
// from the nearest redo to the farthest.
//
// A Timeline has a single writer. The mutex only serializes that writer with
// a debounced commit firing from the scheduler.
type Timeline[S any] struct {
	mu      sync.Mutex
	opts    Options
	past    []Entry[S]
	present Entry[S]
	future  []Entry[S]

	pending       Timer
	pendingState  S
	pendingChange Change
	hasPending    bool
	seq           uint64
}

// New creates a timeline whose present entry holds initial.
func New[S any](initial S, opts Options) *Timeline[S] {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.GroupWindow <= 0 {
		opts.GroupWindow = DefaultGroupWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timeScheduler{}
	}
	return &Timeline[S]{
		opts:    opts,
		present: Entry[S]{State: initial, Timestamp: opts.Now()},
	}
}

// Commit records state. With a debounce configured the commit is deferred and
// replaces any commit still pending.
func (t *Timeline[S]) Commit(state S, c Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.Debounce <= 0 {
		t.apply(state, c)
		return
	}

	t.cancelPending()
	t.pendingState, t.pendingChange, t.hasPending = state, c, true
	seq := t.seq
	t.pending = t.opts.Scheduler.AfterFunc(t.opts.Debounce, func() { t.fire(seq) })
}

// CommitNow records state immediately, dropping any pending debounced commit.
func (t *Timeline[S]) CommitNow(state S, c Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelPending()
	t.apply(state, c)
}

// Flush applies a pending debounced commit now. It reports whether there was one.
func (t *Timeline[S]) Flush() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flush()
}

// HasPending reports whether a debounced commit is waiting.
func (t *Timeline[S]) HasPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hasPending
}

func (t *Timeline[S]) fire(seq uint64) {
	t.mu.Lock()
	if !t.hasPending || seq != t.seq {
		t.mu.Unlock()
		return
	}
	state, c := t.pendingState, t.pendingChange
	t.clearPending()
	t.apply(state, c)
	t.mu.Unlock()

	if t.opts.OnCommit != nil {
		t.opts.OnCommit()
	}
}

func (t *Timeline[S]) flush() bool {
	if !t.hasPending {
		return false
	}
	state, c := t.pendingState, t.pendingChange
	t.cancelPending()
	t.apply(state, c)
	return true
}

func (t *Timeline[S]) cancelPending() {
	if t.pending != nil {
		t.pending.Stop()
	}
	t.clearPending()
}

func (t *Timeline[S]) clearPending() {
	var zero S
	t.pending = nil
	t.pendingState = zero
	t.pendingChange = Change{}
	t.hasPending = false
	// Invalidate any callback already in flight.
	t.seq++
}

// apply performs the commit. Coalescing requires an empty future so that a
// commit after undo always discards the redo branch.
func (t *Timeline[S]) apply(state S, c Change) {
	now := t.opts.Now()

	if t.coalesces(c, now) {
		t.present.State = state
		t.present.Timestamp = now
		if c.Description != "" {
			t.present.Description = c.Description
		}
		return
	}

	t.past = append(t.past, t.present)
	if over := len(t.past) - t.opts.MaxSize; over > 0 {
		t.past = append(t.past[:0:0], t.past[over:]...)
	}
	t.present = Entry[S]{
		State:       state,
		Action:      c.Action,
		Description: c.Description,
		Timestamp:   now,
	}
	t.future = nil
}

func (t *Timeline[S]) coalesces(c Change, now time.Time) bool {
	return !t.opts.DisableGrouping &&
		!c.ForceBoundary &&
		c.Action != "" &&
		c.Action == t.present.Action &&
		len(t.future) == 0 &&
		now.Sub(t.present.Timestamp) < t.opts.GroupWindow
}

// Undo steps back one entry and returns the new present state. It reports
// false, and changes nothing, when there is nothing to undo.
func (t *Timeline[S]) Undo() (S, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
	if len(t.past) == 0 {
		return t.present.State, false
	}
	last := len(t.past) - 1
	t.future = append([]Entry[S]{t.present}, t.future...)
	t.present = t.past[last]
	t.past = t.past[:last]
	return t.present.State, true
}

// Redo steps forward one entry and returns the new present state. It reports
// false, and changes nothing, when there is nothing to redo.
func (t *Timeline[S]) Redo() (S, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
	if len(t.future) == 0 {
		return t.present.State, false
	}
	t.past = append(t.past, t.present)
	t.present = t.future[0]
	t.future = t.future[1:]
	return t.present.State, true
}

// JumpTo makes past[index] the present entry. Everything after it, the old
// present included, moves to the future in order, so redo revisits each
// intermediate state. index == PastLen() is the current entry and, like any
// out-of-range index, is a no-op that reports false.
func (t *Timeline[S]) JumpTo(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
	if index < 0 || index >= len(t.past) {
		return false
	}

	future := make([]Entry[S], 0, len(t.past)-index+len(t.future))
	future = append(future, t.past[index+1:]...)
	future = append(future, t.present)
	future = append(future, t.future...)

	t.present = t.past[index]
	t.past = t.past[:index:index]
	t.future = future
	return true
}

// Reset discards all history and makes initial the present state.
func (t *Timeline[S]) Reset(initial S) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelPending()
	t.past = nil
	t.future = nil
	t.present = Entry[S]{State: initial, Timestamp: t.opts.Now()}
}

// Close cancels any pending debounced commit without applying it.
func (t *Timeline[S]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelPending()
}

// Present returns the current state.
func (t *Timeline[S]) Present() S {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.present.State
}

// PresentEntry returns the current entry with its metadata.
func (t *Timeline[S]) PresentEntry() Entry[S] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.present
}

// CanUndo returns true if undo is possible.
func (t *Timeline[S]) CanUndo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.past) > 0
}

// CanRedo returns true if redo is possible.
func (t *Timeline[S]) CanRedo() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.future) > 0
}

// PastLen returns the number of undoable entries.
func (t *Timeline[S]) PastLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.past)
}

// FutureLen returns the number of redoable entries.
func (t *Timeline[S]) FutureLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.future)
}

// UndoDescription describes the step Undo would revert.
func (t *Timeline[S]) UndoDescription() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.past) == 0 {
		return ""
	}
	return t.present.Description
}

// RedoDescription describes the step Redo would reapply.
func (t *Timeline[S]) RedoDescription() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.future) == 0 {
		return ""
	}
	return t.future[0].Description
}

// Entries returns past, present and future in order, for a history panel.
// The present entry sits at Index().
func (t *Timeline[S]) Entries() []Entry[S] {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry[S], 0, len(t.past)+1+len(t.future))
	out = append(out, t.past...)
	out = append(out, t.present)
	return append(out, t.future...)
}

// Index returns the position of the present entry within Entries().
func (t *Timeline[S]) Index() int {
	return t.PastLen()
}

// Stats returns the 1-based current position and the total number of entries.
func (t *Timeline[S]) Stats() (current, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.past) + 1, len(t.past) + 1 + len(t.future)
}
