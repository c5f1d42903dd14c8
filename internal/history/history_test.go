package history

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/shotmark/internal/deferred"
)

// fakeTarget holds a string state. Restores can complete synchronously or be
// held until release is called.
type fakeTarget struct {
	state     string
	snapErr   error
	restoreFn func(snapshot []byte, done func(error))
	restores  int
}

func (f *fakeTarget) Snapshot() ([]byte, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return []byte(f.state), nil
}

func (f *fakeTarget) Restore(snapshot []byte, done func(error)) {
	f.restores++
	if f.restoreFn != nil {
		f.restoreFn(snapshot, done)
		return
	}
	f.state = string(snapshot)
	done(nil)
}

func newManager(t *testing.T, opts ...Option) (*Manager, *fakeTarget, *deferred.Manual) {
	t.Helper()
	sched := deferred.NewManual()
	m := New(sched, opts...)
	target := &fakeTarget{state: "empty"}
	if err := m.Attach(target); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return m, target, sched
}

func TestContinuousEditsCoalesce(t *testing.T) {
	m, target, sched := newManager(t)
	for i := 0; i < 10; i++ {
		target.state = fmt.Sprintf("moved %d", i)
		m.Track(Continuous, fmt.Sprintf("move %d", i))
		sched.Advance(20 * time.Millisecond)
	}
	if got := len(m.Entries()); got != 1 {
		t.Fatalf("entries during drag = %d, want 1", got)
	}
	sched.Advance(DefaultDebounce)
	entries := m.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries after quiet period = %d, want 2", len(entries))
	}
	last := entries[1]
	if string(last.Snapshot) != "moved 9" || last.Description != "move 9" {
		t.Fatalf("last entry = %q %q", last.Snapshot, last.Description)
	}
}

func TestUndoRedoRestoresExactState(t *testing.T) {
	m, target, _ := newManager(t)
	target.state = "arrow"
	m.Track(Structural, "add arrow")
	if !m.CanUndo() || m.CanRedo() {
		t.Fatal("unexpected undo/redo availability")
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if target.state != "empty" || m.Cursor() != 0 {
		t.Fatalf("after undo state %q cursor %d", target.state, m.Cursor())
	}
	if err := m.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if target.state != "arrow" || m.Cursor() != 1 {
		t.Fatalf("after redo state %q cursor %d", target.state, m.Cursor())
	}
	if m.Loading() {
		t.Fatal("guard still raised")
	}
}

func TestUndoAtStart(t *testing.T) {
	m, target, _ := newManager(t)
	if err := m.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo = %v", err)
	}
	if err := m.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("Redo = %v", err)
	}
	if target.restores != 0 || target.state != "empty" {
		t.Fatal("boundary undo touched the target")
	}
}

func TestUndoFlushesPendingEdit(t *testing.T) {
	m, target, _ := newManager(t)
	target.state = "dragged"
	m.Track(Continuous, "drag")
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if target.state != "empty" {
		t.Fatalf("state = %q", target.state)
	}
	if len(m.Entries()) != 2 || !m.CanRedo() {
		t.Fatal("pending drag was not recorded before undo")
	}
}

func TestNewEditDropsRedoBranch(t *testing.T) {
	m, target, _ := newManager(t)
	for _, s := range []string{"a", "b", "c"} {
		target.state = s
		m.Track(Structural, "add "+s)
	}
	_ = m.Undo()
	_ = m.Undo()
	target.state = "d"
	m.Track(Structural, "add d")
	var got []string
	for _, e := range m.Entries() {
		got = append(got, string(e.Snapshot))
	}
	if fmt.Sprint(got) != "[empty a d]" || m.CanRedo() {
		t.Fatalf("entries = %v", got)
	}
}

func TestTrackingSuppressedWhileLoading(t *testing.T) {
	m, target, sched := newManager(t)
	target.state = "one"
	m.Track(Structural, "one")

	var release func(error)
	target.restoreFn = func(snap []byte, done func(error)) {
		target.state = string(snap)
		// Recreating objects would normally report them as added.
		m.Track(Structural, "object added by reload")
		release = done
	}
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !m.Loading() {
		t.Fatal("guard not raised while restore is outstanding")
	}
	m.Track(Continuous, "late drag")
	if err := m.Redo(); !errors.Is(err, ErrBusy) {
		t.Fatalf("Redo while loading = %v", err)
	}
	release(nil)
	sched.Flush()
	if m.Loading() || len(m.Entries()) != 2 || m.Cursor() != 0 {
		t.Fatalf("loading %v entries %d cursor %d", m.Loading(), len(m.Entries()), m.Cursor())
	}
}

func TestSafetyTimeoutReleasesGuard(t *testing.T) {
	m, target, sched := newManager(t)
	target.state = "one"
	m.Track(Structural, "one")
	target.restoreFn = func([]byte, func(error)) {}

	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	sched.Advance(DefaultReloadTimeout - time.Millisecond)
	if !m.Loading() {
		t.Fatal("guard released early")
	}
	sched.Advance(time.Millisecond)
	if m.Loading() {
		t.Fatal("guard still raised after timeout")
	}
	target.state = "two"
	m.Track(Structural, "two")
	if got := len(m.Entries()); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
}

func TestFailedReloadRollsBack(t *testing.T) {
	m, target, _ := newManager(t)
	target.state = "one"
	m.Track(Structural, "one")
	boom := errors.New("decode failed")
	target.restoreFn = func(_ []byte, done func(error)) { done(boom) }

	err := m.Undo()
	if !errors.Is(err, boom) {
		t.Fatalf("Undo = %v", err)
	}
	if m.Cursor() != 1 || m.Loading() {
		t.Fatalf("cursor %d loading %v", m.Cursor(), m.Loading())
	}
}

func TestAsyncReloadErrorGoesToHandler(t *testing.T) {
	var reported error
	m, target, _ := newManager(t, WithErrorHandler(func(err error) { reported = err }))
	target.state = "one"
	m.Track(Structural, "one")
	var release func(error)
	target.restoreFn = func(_ []byte, done func(error)) { release = done }

	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	boom := errors.New("late failure")
	release(boom)
	if !errors.Is(reported, boom) || m.Cursor() != 1 {
		t.Fatalf("reported %v cursor %d", reported, m.Cursor())
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	m, target, _ := newManager(t, WithCapacity(3))
	for i := 1; i <= 5; i++ {
		target.state = fmt.Sprint(i)
		m.Track(Structural, "step")
	}
	entries := m.Entries()
	if len(entries) != 3 || string(entries[0].Snapshot) != "3" || m.Cursor() != 2 {
		t.Fatalf("entries %d first %q cursor %d", len(entries), entries[0].Snapshot, m.Cursor())
	}
}

func TestUnchangedSnapshotSkipped(t *testing.T) {
	m, target, _ := newManager(t)
	target.state = "a"
	m.Track(Structural, "a")
	m.Track(Structural, "again")
	m.Track(PathCompleted, "same path")
	if got := len(m.Entries()); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
}

func TestSnapshotErrorIsDropped(t *testing.T) {
	m, target, _ := newManager(t)
	target.snapErr = errors.New("encode")
	m.Track(Structural, "broken")
	if got := len(m.Entries()); got != 1 {
		t.Fatalf("entries = %d", got)
	}
}

func TestImmediateCancelsPending(t *testing.T) {
	m, target, sched := newManager(t)
	target.state = "moving"
	m.Track(Continuous, "move")
	target.state = "added"
	m.Track(Structural, "add")
	sched.Flush()
	entries := m.Entries()
	if len(entries) != 2 || entries[1].Description != "add" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestDetached(t *testing.T) {
	m := New(deferred.NewManual())
	m.Track(Structural, "ignored")
	if err := m.Undo(); !errors.Is(err, ErrDetached) {
		t.Fatalf("Undo = %v", err)
	}
	if m.CanUndo() || len(m.Entries()) != 0 {
		t.Fatal("detached manager has history")
	}
}

func TestEntryIDsAreSnapshotTypeIDs(t *testing.T) {
	m, target, _ := newManager(t)
	target.state = "x"
	m.Track(Structural, "x")
	seen := map[string]bool{}
	for _, e := range m.Entries() {
		if len(e.ID) < len(PrefixSnapshot)+1 || e.ID[:len(PrefixSnapshot)+1] != PrefixSnapshot+"_" {
			t.Fatalf("id %q lacks prefix", e.ID)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id %q", e.ID)
		}
		seen[e.ID] = true
	}
}
