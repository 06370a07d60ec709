package timer_test

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgr/internal/timer"
	"github.com/nikbrunner/bmgr/internal/timer/timertest"
)

func TestDebouncer_RestartPostponesRun(t *testing.T) {
	clock := timertest.New()
	calls := 0
	d := timer.NewDebouncer(clock, 10*time.Millisecond, func() { calls++ })

	d.Restart()
	clock.Advance(8 * time.Millisecond)
	d.Restart()
	clock.Advance(8 * time.Millisecond)
	assert.Equal(t, calls, 0)
	assert.Check(t, d.Pending())

	clock.Advance(2 * time.Millisecond)
	assert.Equal(t, calls, 1)
	assert.Check(t, !d.Pending())
	assert.Equal(t, clock.Pending(), 0)
}

func TestDebouncer_DoneClosesAfterRun(t *testing.T) {
	clock := timertest.New()
	d := timer.NewDebouncer(clock, 10*time.Millisecond, func() {})

	select {
	case <-d.Done():
	default:
		t.Fatal("idle debouncer should report done")
	}

	d.Restart()
	done := d.Done()
	select {
	case <-done:
		t.Fatal("done closed before the run")
	default:
	}

	// A restart keeps the same settle channel.
	d.Restart()
	assert.Equal(t, d.Done(), done)

	clock.Advance(10 * time.Millisecond)
	select {
	case <-done:
	default:
		t.Fatal("done not closed after the run")
	}
}

func TestDebouncer_StopReleasesWaiters(t *testing.T) {
	clock := timertest.New()
	calls := 0
	d := timer.NewDebouncer(clock, 10*time.Millisecond, func() { calls++ })

	d.Restart()
	done := d.Done()
	d.Stop()

	clock.Advance(time.Second)
	assert.Equal(t, calls, 0)
	select {
	case <-done:
	default:
		t.Fatal("stop should release waiters")
	}
}

func TestDebouncer_RealScheduler(t *testing.T) {
	fired := make(chan struct{})
	d := timer.NewDebouncer(nil, time.Millisecond, func() { close(fired) })
	d.Restart()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	<-d.Done()
}

func TestClock_OrdersCallbacks(t *testing.T) {
	clock := timertest.New()
	var order []string

	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	clock.AfterFunc(10*time.Millisecond, func() {
		order = append(order, "a")
		clock.AfterFunc(5*time.Millisecond, func() { order = append(order, "nested") })
	})
	stopped := clock.AfterFunc(15*time.Millisecond, func() { order = append(order, "stopped") })
	assert.Check(t, stopped.Stop())

	clock.Advance(30 * time.Millisecond)

	assert.DeepEqual(t, order, []string{"a", "nested", "b"})
	assert.Equal(t, clock.Now(), 30*time.Millisecond)
	assert.Check(t, !stopped.Stop())
}
