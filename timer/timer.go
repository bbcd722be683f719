package timer

import "time"

// Timer provides a fancier timer than time.Timer
type Timer struct {
	timer    *time.Timer
	interval time.Duration
	running  bool
}

// New creates a new timer that will call the given function after
// the interval has elapsed
func New(d time.Duration, f func()) *Timer {
	t := &Timer{
		interval: d,
		running:  true,
	}
	t.timer = time.AfterFunc(d, t.preflight(f))
	return t
}

// preflight takes care of any housekeeping before calling the user's function
func (t *Timer) preflight(f func()) func() {
	p := func() {
		t.running = false
		f()
	}
	return p
}

// Reset restarts the timer. With no argument it uses the interval it was
// created with; passed a duration, it also becomes the new interval for
// any later bare Reset() (BGP renegotiates Hold/Keepalive intervals on
// every OPEN exchange, so the interval itself isn't always fixed).
//
// t.timer was created with time.AfterFunc, whose channel is never sent
// to — the callback runs directly — so unlike time.NewTimer there is
// nothing to drain after a Stop that reports the timer already fired.
func (t *Timer) Reset(d ...time.Duration) {
	if len(d) > 0 {
		t.interval = d[0]
	}
	t.timer.Stop()
	t.timer.Reset(t.interval)
	t.running = true
}

// Stop cancels the timer.
func (t *Timer) Stop() {
	t.timer.Stop()
	t.running = false
}

// Running returns true if the timer is counting down, false otherwise
func (t *Timer) Running() bool {
	return t.running
}
