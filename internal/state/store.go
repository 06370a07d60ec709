package state

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/logging"
)

// Observer is notified with the new state after dispatches.
type Observer interface {
	OnStateChanged(s BookmarksPageState)
}

// ReducerFunc computes the next state for an action.
type ReducerFunc func(BookmarksPageState, Action) BookmarksPageState

// DispatchFunc is handed to thunks so they can dispatch later, possibly from
// another goroutine.
type DispatchFunc func(Action)

// StoreParams configures a Store.
type StoreParams struct {
	Reducer ReducerFunc        // defaults to Reduce
	Logger  logrus.FieldLogger // defaults to a discarding logger
}

// Store owns the single BookmarksPageState. Dispatches are applied in call
// order; observers are notified outside the lock, in the same order.
type Store struct {
	mu          sync.Mutex
	state       BookmarksPageState
	reducer     ReducerFunc
	logger      logrus.FieldLogger
	initialized bool
	queued      []Action
	batchMode   bool
	observers   []Observer

	// pending snapshots not yet delivered to observers; draining is set
	// while one goroutine is delivering them.
	pending  []BookmarksPageState
	draining bool
}

// NewStore creates a Store holding the empty state.
func NewStore(params StoreParams) *Store {
	reducer := params.Reducer
	if reducer == nil {
		reducer = Reduce
	}
	return &Store{
		state:   CreateEmptyState(),
		reducer: reducer,
		logger:  logging.OrDiscard(params.Logger),
	}
}

// Init sets the initial state, replays actions dispatched before
// initialization, and notifies observers once. Only the first call takes
// effect; later state changes must go through Dispatch.
func (s *Store) Init(initial BookmarksPageState) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		s.logger.Warn("ignoring repeated store init")
		return
	}
	s.state = initial
	s.initialized = true
	for _, a := range s.queued {
		s.state = s.reducer(s.state, a)
	}
	if n := len(s.queued); n > 0 {
		s.logger.WithField("count", n).Debug("replayed queued actions")
	}
	s.queued = nil
	// An open batch delivers the initial state when it ends.
	if !s.batchMode {
		s.pending = append(s.pending, s.state)
	}
	s.mu.Unlock()

	s.drain()
}

// IsInitialized reports whether Init has been called.
func (s *Store) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// State returns the current state snapshot. Callers must not mutate it.
func (s *Store) State() BookmarksPageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies action to the state. Nil actions are ignored, which lets
// callers pass the result of creators such as NewSelectFolder directly.
func (s *Store) Dispatch(action Action) {
	if action == nil {
		return
	}

	s.mu.Lock()
	if !s.initialized {
		s.queued = append(s.queued, action)
		s.mu.Unlock()
		return
	}
	s.logger.WithField("action", action.Name()).Debug("dispatch")
	s.state = s.reducer(s.state, action)
	if !s.batchMode {
		s.pending = append(s.pending, s.state)
	}
	s.mu.Unlock()

	s.drain()
}

// DispatchAsync runs thunk with a dispatch function. The thunk may keep the
// function and dispatch later.
func (s *Store) DispatchAsync(thunk func(dispatch DispatchFunc)) {
	thunk(s.Dispatch)
}

// BeginBatchUpdate defers observer notification until EndBatchUpdate.
// Dispatches still apply to the state immediately.
func (s *Store) BeginBatchUpdate() {
	s.mu.Lock()
	s.batchMode = true
	s.mu.Unlock()
}

// EndBatchUpdate closes the batch and notifies observers once with the
// cumulative state.
func (s *Store) EndBatchUpdate() {
	s.mu.Lock()
	if !s.batchMode {
		s.mu.Unlock()
		return
	}
	s.batchMode = false
	if s.initialized {
		s.pending = append(s.pending, s.state)
	}
	s.mu.Unlock()

	s.drain()
}

// IsBatching reports whether a batch is open.
func (s *Store) IsBatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchMode
}

// AddObserver registers o for state changes.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// RemoveObserver unregisters o. Observers must be comparable.
func (s *Store) RemoveObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// HasObserver reports whether o is registered.
func (s *Store) HasObserver(o Observer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.observers {
		if existing == o {
			return true
		}
	}
	return false
}

// drain delivers pending snapshots. Only one goroutine drains at a time;
// snapshots queued by observers or other goroutines meanwhile are picked up
// by the active drain loop, so delivery order matches dispatch order.
func (s *Store) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		observers := append([]Observer(nil), s.observers...)
		s.mu.Unlock()

		for _, o := range observers {
			o.OnStateChanged(next)
		}

		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}
