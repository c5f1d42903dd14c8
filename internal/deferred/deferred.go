// Package deferred schedules callbacks that must run on the editor's event
// loop after a delay. Real timers fire on their own goroutine, so Loop posts
// each expired callback back to the loop instead of running it directly.
package deferred

import (
	"sync/atomic"
	"time"
)

// Timer is a pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped a callback that had not run yet.
	Stop() bool
}

// Scheduler runs f once d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Loop is a Scheduler backed by time.AfterFunc whose callbacks are handed to
// post, which must run them on the event loop goroutine.
type Loop struct {
	post func(func())
}

// NewLoop returns a Loop that delivers callbacks through post. A nil post
// runs callbacks on the timer goroutine.
func NewLoop(post func(func())) *Loop {
	if post == nil {
		post = func(f func()) { f() }
	}
	return &Loop{post: post}
}

type loopTimer struct {
	t    *time.Timer
	done atomic.Bool
}

func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.post(func() {
			// Stop may have been called after the timer expired but before
			// the loop got to this callback.
			if lt.done.CompareAndSwap(false, true) {
				f()
			}
		})
	})
	return lt
}

func (lt *loopTimer) Stop() bool {
	lt.t.Stop()
	return lt.done.CompareAndSwap(false, true)
}
