// Package timer provides a schedulable timer abstraction and a restartable
// debouncer built on it, so timing-dependent code can run against a fake
// clock in tests.
package timer

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules with the runtime timers.
type Real struct{}

// AfterFunc implements Scheduler.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// OrReal returns s, or Real when s is nil.
func OrReal(s Scheduler) Scheduler {
	if s == nil {
		return Real{}
	}
	return s
}

// Debouncer runs a callback once events stop arriving for a quiet period.
// Each Restart cancels the pending run and schedules a new one.
type Debouncer struct {
	mu       sync.Mutex
	sched    Scheduler
	delay    time.Duration
	callback func()

	timer   Timer
	gen     uint64
	settled chan struct{} // closed after the pending run completes
}

// NewDebouncer creates an idle Debouncer.
func NewDebouncer(sched Scheduler, delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		sched:    OrReal(sched),
		delay:    delay,
		callback: callback,
	}
}

// Restart (re)schedules the callback after the quiet period.
func (d *Debouncer) Restart() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.settled == nil {
		d.settled = make(chan struct{})
	}
	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Done returns a channel closed once the pending run has completed. When
// nothing is pending the channel is already closed.
func (d *Debouncer) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return d.settled
}

// Stop cancels the pending run without calling the callback. Waiters on
// Done are released.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	if d.settled != nil {
		close(d.settled)
		d.settled = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// Restarted or stopped after this run was scheduled.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	settled := d.settled
	d.settled = nil
	d.mu.Unlock()

	d.callback()

	if settled != nil {
		close(settled)
	}
}
