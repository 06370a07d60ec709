package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmgr/internal/dnd"
	"github.com/nikbrunner/bmgr/internal/state"
)

// stateChangedMsg asks the App to redraw from the store.
type stateChangedMsg struct{}

// highlightMsg carries the IDs created or moved by the last tracked change.
type highlightMsg struct {
	ids []string
}

// Bridge carries notifications from other goroutines into the bubbletea
// program. Redraw requests are coalesced: any number of notifications
// between two reads produce one message.
type Bridge struct {
	changed    chan struct{}
	highlights chan []string
	done       chan struct{}
	closeOnce  sync.Once
}

// NewBridge creates a Bridge.
func NewBridge() *Bridge {
	return &Bridge{
		changed:    make(chan struct{}, 1),
		highlights: make(chan []string, 4),
		done:       make(chan struct{}),
	}
}

// OnStateChanged implements state.Observer.
func (b *Bridge) OnStateChanged(state.BookmarksPageState) {
	b.Notify()
}

// OnIndicator is a dnd.Params.OnIndicator callback.
func (b *Bridge) OnIndicator(dnd.Indicator) {
	b.Notify()
}

// Notify requests a redraw.
func (b *Bridge) Notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Highlight is a listener.Params.Highlight callback. It blocks until the
// program takes the IDs or the bridge is closed.
func (b *Bridge) Highlight(ids []string) {
	select {
	case b.highlights <- ids:
	case <-b.done:
	}
}

// Close releases any goroutine blocked on the bridge.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// wait returns a command that delivers the next notification.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case ids := <-b.highlights:
			return highlightMsg{ids: ids}
		case <-b.changed:
			return stateChangedMsg{}
		case <-b.done:
			return nil
		}
	}
}
