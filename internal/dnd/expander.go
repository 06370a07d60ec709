package dnd

import (
	"sync"
	"time"

	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/timer"
)

// Default delays.
const (
	DefaultExpandDelay    = 400 * time.Millisecond
	DefaultIndicatorDelay = 100 * time.Millisecond
)

// AutoExpander opens a closed sidebar folder with child folders after the
// drag has stayed on it for the expand delay.
type AutoExpander struct {
	mu       sync.Mutex
	sched    timer.Scheduler
	delay    time.Duration
	dispatch func(state.Action)

	lastID string
	timer  timer.Timer
	gen    uint64
}

// NewAutoExpander creates an AutoExpander that dispatches through dispatch.
func NewAutoExpander(sched timer.Scheduler, delay time.Duration, dispatch func(state.Action)) *AutoExpander {
	if delay <= 0 {
		delay = DefaultExpandDelay
	}
	return &AutoExpander{sched: timer.OrReal(sched), delay: delay, dispatch: dispatch}
}

// Update is called on every drag over. over is nil when the pointer is not
// over an element.
func (a *AutoExpander) Update(over *Target, pos DropPosition, s state.BookmarksPageState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	expandable := over != nil &&
		pos == DropOn &&
		over.Role == RoleFolderNode &&
		!state.IsFolderOpen(s, over.ID) &&
		s.Nodes.HasChildFolders(over.ID)
	if !expandable {
		a.resetLocked()
		return
	}
	if over.ID == a.lastID {
		return
	}

	a.resetLocked()
	a.lastID = over.ID
	id, gen := over.ID, a.gen
	a.timer = a.sched.AfterFunc(a.delay, func() { a.fire(id, gen) })
}

// Reset cancels a pending expansion.
func (a *AutoExpander) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

// Pending returns the folder waiting to expand, or "".
func (a *AutoExpander) Pending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastID
}

func (a *AutoExpander) resetLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.lastID = ""
	a.gen++
}

func (a *AutoExpander) fire(id string, gen uint64) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.resetLocked()
	a.mu.Unlock()

	a.dispatch(state.NewChangeFolderOpen(id, true))
}

// Indicator is the drop target styling. The zero value shows nothing.
type Indicator struct {
	Role     Role
	ID       string
	Position DropPosition
}

// Class returns the style class for the indicator.
func (i Indicator) Class() string {
	switch i.Position {
	case DropAbove:
		return "drag-above"
	case DropBelow:
		return "drag-below"
	case DropOn:
		return "drag-on"
	}
	return ""
}

// DropIndicator tracks the styled drop target. Clearing is delayed so that
// moving between targets does not flicker.
type DropIndicator struct {
	mu       sync.Mutex
	sched    timer.Scheduler
	delay    time.Duration
	onChange func(Indicator)

	current    Indicator
	clearTimer timer.Timer
	gen        uint64
}

// NewDropIndicator creates a DropIndicator. onChange may be nil.
func NewDropIndicator(sched timer.Scheduler, delay time.Duration, onChange func(Indicator)) *DropIndicator {
	if delay <= 0 {
		delay = DefaultIndicatorDelay
	}
	return &DropIndicator{sched: timer.OrReal(sched), delay: delay, onChange: onChange}
}

// Update shows dest, cancelling any pending clear.
func (d *DropIndicator) Update(dest DropDestination) {
	d.mu.Lock()
	d.cancelClearLocked()
	next := Indicator{Role: dest.Target.Role, ID: dest.Target.ID, Position: dest.Position}
	changed := next != d.current
	d.current = next
	d.mu.Unlock()

	if changed {
		d.notify(next)
	}
}

// Finish clears the indicator after the delay. A pending clear is kept.
func (d *DropIndicator) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clearTimer != nil {
		return
	}
	gen := d.gen
	d.clearTimer = d.sched.AfterFunc(d.delay, func() { d.clear(gen) })
}

// Current returns the displayed indicator.
func (d *DropIndicator) Current() Indicator {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

func (d *DropIndicator) cancelClearLocked() {
	if d.clearTimer != nil {
		d.clearTimer.Stop()
		d.clearTimer = nil
	}
	d.gen++
}

func (d *DropIndicator) clear(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.clearTimer = nil
	changed := d.current != Indicator{}
	d.current = Indicator{}
	d.mu.Unlock()

	if changed {
		d.notify(Indicator{})
	}
}

func (d *DropIndicator) notify(i Indicator) {
	if d.onChange != nil {
		d.onChange(i)
	}
}
