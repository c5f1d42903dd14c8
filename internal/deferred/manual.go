package deferred

import (
	"slices"
	"time"
)

// Manual is a Scheduler driven by explicit Advance calls. It is used by tests
// and by headless commands that have no event loop.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	m   *Manual
	at  time.Duration
	seq int
	f   func()
}

// NewManual returns a scheduler whose clock starts at zero.
func NewManual() *Manual { return &Manual{} }

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.seq++
	t := &manualTimer{m: m, at: m.now + max(d, 0), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	i := slices.Index(t.m.timers, t)
	if i < 0 {
		return false
	}
	t.m.timers = slices.Delete(t.m.timers, i, i+1)
	return true
}

// Now is the elapsed virtual time.
func (m *Manual) Now() time.Duration { return m.now }

// Pending is the number of callbacks waiting to run.
func (m *Manual) Pending() int { return len(m.timers) }

// Advance moves the clock forward by d, running due callbacks in deadline
// order. Callbacks scheduled while advancing run too if they fall due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.next()
		if next == nil || next.at > target {
			break
		}
		next.Stop()
		m.now = next.at
		next.f()
	}
	m.now = target
}

// Flush runs every pending callback, advancing the clock as far as needed.
func (m *Manual) Flush() {
	for {
		next := m.next()
		if next == nil {
			return
		}
		m.Advance(next.at - m.now)
	}
}

func (m *Manual) next() *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}
