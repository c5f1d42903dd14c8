package deferred

import "time"

// Debouncer coalesces rapid triggers into one callback that runs after a
// quiet period. A later trigger replaces the pending callback.
type Debouncer struct {
	sched Scheduler
	delay time.Duration
	timer Timer
	fn    func()
}

// NewDebouncer returns a debouncer with the given default quiet period.
func NewDebouncer(s Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: s, delay: delay}
}

// Trigger schedules fn after the default delay.
func (d *Debouncer) Trigger(fn func()) { d.TriggerAfter(d.delay, fn) }

// TriggerAfter schedules fn after delay, cancelling any pending callback.
func (d *Debouncer) TriggerAfter(delay time.Duration, fn func()) {
	d.Cancel()
	d.fn = fn
	var t Timer
	t = d.sched.AfterFunc(delay, func() {
		if d.timer != t {
			return
		}
		f := d.fn
		d.timer, d.fn = nil, nil
		f()
	})
	d.timer = t
}

// Pending reports whether a callback is waiting.
func (d *Debouncer) Pending() bool { return d.timer != nil }

// Cancel drops the pending callback without running it.
func (d *Debouncer) Cancel() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer, d.fn = nil, nil
	return true
}

// Flush runs the pending callback now. It reports whether one ran.
func (d *Debouncer) Flush() bool {
	if d.timer == nil {
		return false
	}
	f := d.fn
	d.Cancel()
	f()
	return true
}
