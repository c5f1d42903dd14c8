package deferred

import (
	"strings"
	"testing"
	"time"
)

func TestManualRunsInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(30*time.Millisecond, func() { got = append(got, "c") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "a") })
	m.AfterFunc(10*time.Millisecond, func() { got = append(got, "b") })
	m.Advance(20 * time.Millisecond)
	if s := strings.Join(got, ""); s != "ab" {
		t.Fatalf("ran %q after 20ms", s)
	}
	if m.Pending() != 1 || m.Now() != 20*time.Millisecond {
		t.Fatalf("pending %d now %v", m.Pending(), m.Now())
	}
	m.Flush()
	if s := strings.Join(got, ""); s != "abc" {
		t.Fatalf("ran %q after flush", s)
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	ran := false
	tm := m.AfterFunc(time.Millisecond, func() { ran = true })
	if !tm.Stop() {
		t.Fatal("Stop reported nothing pending")
	}
	if tm.Stop() {
		t.Fatal("second Stop reported pending")
	}
	m.Advance(time.Second)
	if ran {
		t.Fatal("stopped callback ran")
	}
}

func TestManualChainedCallbacks(t *testing.T) {
	m := NewManual()
	count := 0
	m.AfterFunc(5*time.Millisecond, func() {
		count++
		m.AfterFunc(5*time.Millisecond, func() { count++ })
	})
	m.Advance(10 * time.Millisecond)
	if count != 2 {
		t.Fatalf("count = %d", count)
	}
}

func TestDebouncerLastWriteWins(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m, 180*time.Millisecond)
	var fired []int
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired = append(fired, i) })
		m.Advance(50 * time.Millisecond)
	}
	if len(fired) != 0 {
		t.Fatalf("fired early: %v", fired)
	}
	m.Advance(200 * time.Millisecond)
	if len(fired) != 1 || fired[0] != 4 {
		t.Fatalf("fired = %v, want [4]", fired)
	}
	if d.Pending() {
		t.Fatal("still pending")
	}
}

func TestDebouncerFlushAndCancel(t *testing.T) {
	m := NewManual()
	d := NewDebouncer(m, time.Second)
	n := 0
	d.Trigger(func() { n++ })
	if !d.Flush() || n != 1 {
		t.Fatalf("flush ran %d", n)
	}
	m.Flush()
	if n != 1 {
		t.Fatal("flushed callback ran twice")
	}
	d.Trigger(func() { n++ })
	if !d.Cancel() {
		t.Fatal("cancel reported nothing pending")
	}
	m.Flush()
	if n != 1 || d.Flush() {
		t.Fatal("cancelled callback ran")
	}
}

func TestLoopPostsCallbacks(t *testing.T) {
	posted := make(chan func(), 1)
	l := NewLoop(func(f func()) { posted <- f })
	ran := make(chan struct{})
	l.AfterFunc(time.Millisecond, func() { close(ran) })
	f := <-posted
	select {
	case <-ran:
		t.Fatal("callback ran before the loop executed it")
	default:
	}
	f()
	<-ran
}

func TestLoopStopAfterExpiry(t *testing.T) {
	posted := make(chan func(), 1)
	l := NewLoop(func(f func()) { posted <- f })
	ran := false
	tm := l.AfterFunc(time.Millisecond, func() { ran = true })
	f := <-posted
	if !tm.Stop() {
		t.Fatal("Stop should win over a posted but unrun callback")
	}
	f()
	if ran {
		t.Fatal("stopped callback ran")
	}
}
