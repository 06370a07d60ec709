// Package listener bridges bookmark service events and preference changes
// into store actions. Bursts of creations, moves and removals are batched so
// the UI re-renders once per burst.
package listener

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/config"
	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/timer"
)

// DefaultQuietPeriod is how long a burst must be quiet before its batch closes.
const DefaultQuietPeriod = 10 * time.Millisecond

// Phase is the batching state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseBatching
	PhaseFlushing
)

func (p Phase) String() string {
	switch p {
	case PhaseBatching:
		return "batching"
	case PhaseFlushing:
		return "flushing"
	}
	return "idle"
}

// Store is the part of state.Store the listener drives.
type Store interface {
	State() state.BookmarksPageState
	Dispatch(state.Action)
	BeginBatchUpdate()
	EndBatchUpdate()
}

// Source is the bookmarks service the listener subscribes to.
type Source interface {
	AddObserver(bookmarks.Observer)
	RemoveObserver(bookmarks.Observer)
	GetTree() *model.TreeNode
}

// Params configures a Listener.
type Params struct {
	Store       Store
	Source      Source
	Scheduler   timer.Scheduler // defaults to timer.Real
	QuietPeriod time.Duration   // defaults to DefaultQuietPeriod
	// Highlight receives the IDs of items created or moved while tracking.
	Highlight func(ids []string)
	Logger    logrus.FieldLogger
}

// Listener implements bookmarks.Observer.
type Listener struct {
	store     Store
	source    Source
	highlight func([]string)
	log       logrus.FieldLogger
	debouncer *timer.Debouncer

	mu        sync.Mutex
	phase     Phase
	importing bool
	tracking  bool
	updated   []string
	started   bool
}

// New creates a Listener. Call Start to subscribe.
func New(params Params) *Listener {
	quiet := params.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	l := &Listener{
		store:     params.Store,
		source:    params.Source,
		highlight: params.Highlight,
		log:       logging.OrDiscard(params.Logger).WithField("component", "listener"),
	}
	l.debouncer = timer.NewDebouncer(params.Scheduler, quiet, l.flush)
	return l
}

// Start subscribes to the source.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true
	l.source.AddObserver(l)
}

// Close unsubscribes and closes any open batch.
func (l *Listener) Close() {
	l.mu.Lock()
	started := l.started
	l.started = false
	open := l.phase == PhaseBatching
	l.phase = PhaseIdle
	l.mu.Unlock()

	if started {
		l.source.RemoveObserver(l)
	}
	l.debouncer.Stop()
	if open {
		l.store.EndBatchUpdate()
	}
}

// Phase returns the current batching phase.
func (l *Listener) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// TrackUpdatedItems starts recording the IDs of created and moved items for
// the next HighlightUpdatedItems.
func (l *Listener) TrackUpdatedItems() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracking = true
}

// HighlightUpdatedItems waits for the current batch to close, then hands the
// tracked IDs to the highlight handler and stops tracking. It does nothing
// when tracking is off.
func (l *Listener) HighlightUpdatedItems(ctx context.Context) error {
	select {
	case <-l.debouncer.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	l.mu.Lock()
	if !l.tracking {
		l.mu.Unlock()
		return nil
	}
	ids := l.updated
	l.updated = nil
	l.tracking = false
	l.mu.Unlock()

	if l.highlight != nil {
		l.highlight(ids)
	}
	return nil
}

// batchUIUpdates opens a store batch at the start of a burst and pushes the
// close back by one quiet period.
func (l *Listener) batchUIUpdates() {
	l.mu.Lock()
	begin := l.phase != PhaseBatching
	l.phase = PhaseBatching
	l.mu.Unlock()

	if begin {
		l.store.BeginBatchUpdate()
	}
	l.debouncer.Restart()
}

func (l *Listener) flush() {
	l.mu.Lock()
	if l.phase != PhaseBatching {
		l.mu.Unlock()
		return
	}
	l.phase = PhaseFlushing
	l.mu.Unlock()

	l.store.EndBatchUpdate()

	l.mu.Lock()
	if l.phase == PhaseFlushing {
		l.phase = PhaseIdle
	}
	l.mu.Unlock()
}

func (l *Listener) track(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tracking {
		l.updated = append(l.updated, id)
	}
}

// OnCreated implements bookmarks.Observer. Ignored during an import.
func (l *Listener) OnCreated(id string, node *model.TreeNode) {
	l.mu.Lock()
	importing := l.importing
	l.mu.Unlock()
	if importing {
		return
	}

	l.batchUIUpdates()
	l.track(id)
	l.store.Dispatch(state.NewCreateBookmark(id, node))
}

// OnRemoved implements bookmarks.Observer.
func (l *Listener) OnRemoved(id string, info bookmarks.RemoveInfo) {
	l.batchUIUpdates()
	nodes := l.store.State().Nodes
	l.store.Dispatch(state.NewRemoveBookmark(id, info.ParentID, info.Index, nodes))
}

// OnChanged implements bookmarks.Observer.
func (l *Listener) OnChanged(id string, info model.ChangeInfo) {
	l.store.Dispatch(state.NewEditBookmark(id, info))
}

// OnMoved implements bookmarks.Observer.
func (l *Listener) OnMoved(id string, info bookmarks.MoveInfo) {
	l.batchUIUpdates()
	l.track(id)
	l.store.Dispatch(state.NewMoveBookmark(id, info.ParentID, info.Index, info.OldParentID, info.OldIndex))
}

// OnChildrenReordered implements bookmarks.Observer.
func (l *Listener) OnChildrenReordered(id string, info bookmarks.ReorderInfo) {
	l.store.Dispatch(state.NewReorderChildren(id, info.ChildIDs))
}

// OnImportBegan implements bookmarks.Observer.
func (l *Listener) OnImportBegan() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.importing = true
}

// OnImportEnded implements bookmarks.Observer. The whole tree is refreshed
// in one dispatch.
func (l *Listener) OnImportEnded() {
	l.mu.Lock()
	l.importing = false
	l.mu.Unlock()

	tree := l.source.GetTree()
	l.store.Dispatch(state.NewRefreshNodes(model.NormalizeNodes(tree)))
}

// OnCanEditBookmarksChanged dispatches the can-edit preference.
func (l *Listener) OnCanEditBookmarksChanged(canEdit bool) {
	l.store.Dispatch(state.NewSetCanEditBookmarks(canEdit))
}

// OnIncognitoAvailabilityChanged dispatches the incognito preference.
func (l *Listener) OnIncognitoAvailabilityChanged(a state.IncognitoAvailability) {
	action, err := state.NewSetIncognitoAvailability(a)
	if err != nil {
		l.log.WithError(err).WithField("availability", a).Warn("ignoring incognito preference")
		return
	}
	l.store.Dispatch(action)
}

// OnPrefsChanged applies a reloaded preference config.
func (l *Listener) OnPrefsChanged(prefs config.PrefsConfig) {
	l.OnCanEditBookmarksChanged(prefs.CanEdit)
	a, err := state.ParseIncognitoAvailability(prefs.Incognito)
	if err != nil {
		l.log.WithError(err).Warn("ignoring incognito preference")
		return
	}
	l.OnIncognitoAvailabilityChanged(a)
}
