// Package event implements the single-threaded cooperative task dispatch
// described in zebra-go's design: each protocol instance (a BGP peer, an
// IS-IS link, the RIB, the FIB adapter) owns one Loop and processes its
// inbox strictly in send order. Timers are not owned by Loop:
// RepeatingTimer wraps the timer package, its Reset rearms from now and
// Cancel stops it, both called directly on the timer rather than through
// the loop's channel.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/zebra-rs/zebra-go/timer"
)

// Message is any cross-task payload. Components define their own message
// enums (bgp.Message, isis.Message, rib.Message, fib.Message) and send them
// through a Mailbox; event.Message is intentionally the empty interface so
// the dispatcher never has to know about a specific component's types.
type Message interface{}

// Mailbox is an unbounded, ordered inbox for one component. Sends never
// block: callers that would otherwise block the single-threaded owner of
// the mailbox push onto a growing channel buffer managed by a forwarding
// goroutine, so the buffer is always drainable and throughput is not
// capped during reconvergence floods.
type Mailbox struct {
	in  chan Message
	out chan Message
}

// NewMailbox creates an empty mailbox. The owner of the mailbox reads from
// Out(); every other task writes via Send().
func NewMailbox() *Mailbox {
	m := &Mailbox{
		in:  make(chan Message, 16),
		out: make(chan Message, 16),
	}
	go m.pump()
	return m
}

// pump is the unbounded-buffer trick: keep a private slice of pending
// messages and forward to out as soon as it can accept one, so Send never
// blocks on a slow owner.
func (m *Mailbox) pump() {
	var pending []Message
	for {
		if len(pending) == 0 {
			v, ok := <-m.in
			if !ok {
				close(m.out)
				return
			}
			pending = append(pending, v)
			continue
		}
		select {
		case v, ok := <-m.in:
			if !ok {
				for _, p := range pending {
					m.out <- p
				}
				close(m.out)
				return
			}
			pending = append(pending, v)
		case m.out <- pending[0]:
			pending = pending[1:]
		}
	}
}

// Send enqueues a message for the mailbox owner. Never blocks the caller.
func (m *Mailbox) Send(msg Message) {
	m.in <- msg
}

// Out returns the channel the mailbox owner should select on.
func (m *Mailbox) Out() <-chan Message {
	return m.out
}

// Close stops the pump goroutine. Callers must not Send after Close.
func (m *Mailbox) Close() {
	close(m.in)
}

// Loop is a minimal single-threaded dispatcher: Run blocks selecting on the
// inbox and ctx.Done until cancelled, invoking handle for every message in
// FIFO arrival order. Components that also need timers arm them directly
// with timer.New and post a Message to their own Mailbox from the timer
// callback; Loop does not special-case timers, it is simply the select
// loop that every component's Run method is built from.
type Loop struct {
	inbox  *Mailbox
	handle func(Message)
}

// NewLoop creates a dispatcher reading from inbox and invoking handle for
// each message.
func NewLoop(inbox *Mailbox, handle func(Message)) *Loop {
	return &Loop{inbox: inbox, handle: handle}
}

// Run processes messages until ctx is cancelled or the inbox is closed.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-l.inbox.Out():
			if !ok {
				return
			}
			l.handle(msg)
		}
	}
}

// RepeatingTimer re-arms itself after every fire, posting msg to inbox on
// each tick, until Cancel is called. This generalises timer.Timer
// (one-shot time.AfterFunc) into the repeating hello/keepalive/refresh
// timers §4.4/§4.5/§4.6 require.
type RepeatingTimer struct {
	interval time.Duration
	inbox    *Mailbox
	msg      Message
	t        *timer.Timer
	stopped  bool
	mu       sync.Mutex
}

// NewRepeating arms a timer that fires every interval, sending msg into
// inbox, until Cancel is called.
func NewRepeating(inbox *Mailbox, interval time.Duration, msg Message) *RepeatingTimer {
	rt := &RepeatingTimer{interval: interval, inbox: inbox, msg: msg}
	rt.t = timer.New(interval, rt.fire)
	return rt
}

func (rt *RepeatingTimer) fire() {
	rt.mu.Lock()
	stopped := rt.stopped
	rt.mu.Unlock()
	if stopped {
		return
	}
	rt.inbox.Send(rt.msg)
	rt.mu.Lock()
	if !rt.stopped {
		rt.t = timer.New(rt.interval, rt.fire)
	}
	rt.mu.Unlock()
}

// Reset rearms the timer for another full interval from now.
func (rt *RepeatingTimer) Reset() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.stopped {
		return
	}
	rt.t.Reset()
}

// Cancel stops the timer; it will not fire again.
func (rt *RepeatingTimer) Cancel() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.stopped = true
	rt.t.Stop()
}
