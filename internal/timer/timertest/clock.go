// Package timertest provides a manually advanced timer.Scheduler.
package timertest

import (
	"sync"
	"time"

	"github.com/nikbrunner/bmgr/internal/timer"
)

// Clock is a fake scheduler. Callbacks run synchronously inside Advance, in
// deadline order.
type Clock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *Clock
	at    time.Duration
	seq   uint64
	f     func()
	done  bool
}

// New returns a Clock at time zero.
func New() *Clock {
	return &Clock{}
}

// AfterFunc implements timer.Scheduler.
func (c *Clock) AfterFunc(d time.Duration, f func()) timer.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop implements timer.Timer.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// Advance moves the clock forward by d, running every callback that comes
// due. Callbacks may schedule further timers; those run too if they fall
// inside the window.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.earliest()
		if next == nil || next.at > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.done = true
		c.remove(next)
		c.mu.Unlock()

		next.f()
	}
}

// Now returns the elapsed fake time.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of scheduled callbacks.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Clock) earliest() *fakeTimer {
	var best *fakeTimer
	for _, t := range c.timers {
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (c *Clock) remove(t *fakeTimer) {
	for i, existing := range c.timers {
		if existing == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}
