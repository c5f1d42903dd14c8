// Package history keeps full-scene snapshots for undo and redo. Continuous
// edits such as drags are debounced into a single entry; structural edits are
// recorded immediately. Reloading a snapshot is asynchronous and guarded so
// that the objects recreated by the reload do not record history themselves.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"go.jetify.com/typeid/v2"

	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/logging"
)

const (
	DefaultCapacity      = 50
	DefaultDebounce      = 180 * time.Millisecond
	DefaultReloadTimeout = 300 * time.Millisecond

	// PrefixSnapshot is the typeid prefix of entry ids.
	PrefixSnapshot = "snap"
)

var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
	ErrBusy          = errors.New("history: reload in progress")
	ErrDetached      = errors.New("history: not attached")
)

// Mutation classifies an edit for snapshot scheduling.
type Mutation int

const (
	// Structural edits add or remove objects and are recorded immediately.
	Structural Mutation = iota
	// Continuous edits (move, scale, handle drags) are debounced.
	Continuous
	// PathCompleted marks a finished freehand path and is recorded
	// immediately.
	PathCompleted
)

// Target is the scene the manager records.
type Target interface {
	// Snapshot serializes the whole scene.
	Snapshot() ([]byte, error)
	// Restore replaces the scene with snapshot and calls done, possibly
	// later, with the outcome.
	Restore(snapshot []byte, done func(error))
}

// Entry is one recorded scene state.
type Entry struct {
	ID          string
	Snapshot    []byte
	Description string
	Time        time.Time
}

// SnapshotOptions controls RequestSnapshot.
type SnapshotOptions struct {
	Immediate bool
	// Delay overrides the default debounce period.
	Delay time.Duration
}

// Manager records snapshots of one attached Target.
type Manager struct {
	sched    deferred.Scheduler
	debounce *deferred.Debouncer

	capacity      int
	debounceDelay time.Duration
	reloadTimeout time.Duration
	now           func() time.Time
	onError       func(error)
	onChange      func()

	target  Target
	entries []Entry
	cursor  int

	pendingDesc string

	loading bool
	loadGen int
	safety  deferred.Timer
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity bounds the number of entries kept, the initial state included.
func WithCapacity(n int) Option { return func(m *Manager) { m.capacity = n } }

// WithDebounce sets the quiet period for continuous edits.
func WithDebounce(d time.Duration) Option { return func(m *Manager) { m.debounceDelay = d } }

// WithReloadTimeout sets how long the reload guard may stay raised.
func WithReloadTimeout(d time.Duration) Option { return func(m *Manager) { m.reloadTimeout = d } }

// WithClock sets the timestamp source for entries.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithErrorHandler receives reload failures that complete after Undo or Redo
// has already returned.
func WithErrorHandler(fn func(error)) Option { return func(m *Manager) { m.onError = fn } }

// WithChangeHandler is called whenever the entry list or cursor changes.
func WithChangeHandler(fn func()) Option { return func(m *Manager) { m.onChange = fn } }

// New returns a detached manager using s for deferred work.
func New(s deferred.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		sched:         s,
		capacity:      DefaultCapacity,
		debounceDelay: DefaultDebounce,
		reloadTimeout: DefaultReloadTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.capacity < 2 {
		m.capacity = 2
	}
	m.debounce = deferred.NewDebouncer(s, m.debounceDelay)
	return m
}

// Attach starts recording t. The current state of t becomes the first entry.
func (m *Manager) Attach(t Target) error {
	if m.target != nil {
		m.Detach()
	}
	snap, err := t.Snapshot()
	if err != nil {
		return fmt.Errorf("attach: %w", err)
	}
	m.target = t
	m.entries = []Entry{m.entry(snap, "initial")}
	m.cursor = 0
	m.changed()
	return nil
}

// Detach flushes pending work and stops recording.
func (m *Manager) Detach() {
	if m.target == nil {
		return
	}
	m.FlushPending()
	m.finishLoad()
	m.target = nil
	m.entries = nil
	m.cursor = 0
	m.changed()
}

// Attached reports whether a target is being recorded.
func (m *Manager) Attached() bool { return m.target != nil }

// Track records a mutation according to its class. It is a no-op while
// detached or while a reload is in progress.
func (m *Manager) Track(kind Mutation, description string) {
	switch kind {
	case Continuous:
		m.RequestSnapshot(description, SnapshotOptions{})
	default:
		m.RequestSnapshot(description, SnapshotOptions{Immediate: true})
	}
}

// RequestSnapshot records the current state now or after a quiet period.
// Repeated debounced requests keep only the latest description.
func (m *Manager) RequestSnapshot(description string, opts SnapshotOptions) {
	if m.target == nil || m.loading {
		return
	}
	if opts.Immediate {
		m.debounce.Cancel()
		m.commit(description)
		return
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = m.debounceDelay
	}
	m.pendingDesc = description
	m.debounce.TriggerAfter(delay, func() { m.commit(m.pendingDesc) })
}

// FlushPending commits an outstanding debounced request immediately.
func (m *Manager) FlushPending() {
	m.debounce.Flush()
}

// Pending reports whether a debounced request is outstanding.
func (m *Manager) Pending() bool { return m.debounce.Pending() }

func (m *Manager) entry(snap []byte, description string) Entry {
	return Entry{
		ID:          typeid.MustGenerate(PrefixSnapshot).String(),
		Snapshot:    snap,
		Description: description,
		Time:        m.now(),
	}
}

func (m *Manager) commit(description string) {
	if m.target == nil || m.loading {
		return
	}
	log := logging.For("history")
	snap, err := m.target.Snapshot()
	if err != nil {
		log.Warn("snapshot failed", "description", description, "err", err)
		return
	}
	if len(m.entries) > 0 && bytes.Equal(m.entries[m.cursor].Snapshot, snap) {
		log.Debug("snapshot unchanged", "description", description)
		return
	}
	m.entries = append(m.entries[:m.cursor+1], m.entry(snap, description))
	m.cursor = len(m.entries) - 1
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append([]Entry(nil), m.entries[over:]...)
		m.cursor -= over
	}
	log.Debug("snapshot recorded", "description", description, "cursor", m.cursor, "entries", len(m.entries))
	m.changed()
}

// Undo restores the previous entry.
func (m *Manager) Undo() error { return m.step(-1, "undo") }

// Redo restores the next entry.
func (m *Manager) Redo() error { return m.step(1, "redo") }

func (m *Manager) step(delta int, op string) error {
	if m.target == nil {
		return ErrDetached
	}
	m.FlushPending()
	if m.loading {
		return ErrBusy
	}
	next := m.cursor + delta
	switch {
	case next < 0:
		return ErrNothingToUndo
	case next >= len(m.entries):
		return ErrNothingToRedo
	}
	prev := m.cursor
	m.cursor = next
	return m.reload(prev, op)
}

// reload raises the guard, asks the target to restore the entry at the
// cursor and rolls the cursor back to prev if that fails.
func (m *Manager) reload(prev int, op string) error {
	m.loading = true
	m.loadGen++
	gen := m.loadGen
	m.safety = m.sched.AfterFunc(m.reloadTimeout, func() {
		if m.loading && m.loadGen == gen {
			logging.For("history").Warn("reload did not complete, releasing guard", "op", op)
			m.loading = false
			m.safety = nil
		}
	})

	returned := false
	var syncErr error
	m.target.Restore(m.entries[m.cursor].Snapshot, func(err error) {
		if gen != m.loadGen {
			return
		}
		m.finishLoad()
		if err != nil {
			m.cursor = prev
			err = fmt.Errorf("%s: %w", op, err)
			logging.For("history").Error("reload failed", "op", op, "err", err)
			if returned {
				if m.onError != nil {
					m.onError(err)
				}
			} else {
				syncErr = err
			}
		}
		m.changed()
	})
	returned = true
	return syncErr
}

func (m *Manager) finishLoad() {
	m.loading = false
	if m.safety != nil {
		m.safety.Stop()
		m.safety = nil
	}
}

// Clear drops all entries and records the current state as the new initial
// entry.
func (m *Manager) Clear() error {
	if m.target == nil {
		return ErrDetached
	}
	m.FlushPending()
	if m.loading {
		return ErrBusy
	}
	snap, err := m.target.Snapshot()
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	m.entries = []Entry{m.entry(snap, "initial")}
	m.cursor = 0
	m.changed()
	return nil
}

// Loading reports whether a reload guard is raised.
func (m *Manager) Loading() bool { return m.loading }

// CanUndo reports whether Undo has an entry to go back to.
func (m *Manager) CanUndo() bool { return m.target != nil && m.cursor > 0 }

// CanRedo reports whether Redo has an entry to go forward to.
func (m *Manager) CanRedo() bool { return m.target != nil && m.cursor < len(m.entries)-1 }

// Cursor is the index of the current entry.
func (m *Manager) Cursor() int { return m.cursor }

// Entries returns a copy of the entry list.
func (m *Manager) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Current returns the entry at the cursor.
func (m *Manager) Current() (Entry, bool) {
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
