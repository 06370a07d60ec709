package state_test

import (
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgr/internal/state"
)

type recorder struct {
	mu     sync.Mutex
	states []state.BookmarksPageState
	onCall func(state.BookmarksPageState)
}

func (r *recorder) OnStateChanged(s state.BookmarksPageState) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
	if r.onCall != nil {
		r.onCall(s)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func TestStore_InitNotifiesOnce(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	rec := &recorder{}
	store.AddObserver(rec)

	assert.Check(t, !store.IsInitialized())
	store.Init(testState())

	assert.Check(t, store.IsInitialized())
	assert.Equal(t, rec.count(), 1)
	assert.Equal(t, store.State().SelectedFolder, "1")
}

func TestStore_InitIgnoredOnceInitialized(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())
	rec := &recorder{}
	store.AddObserver(rec)
	store.Dispatch(state.NewSelectFolder("10", store.State().Nodes))

	store.Init(testState())

	assert.Equal(t, rec.count(), 1)
	assert.Equal(t, store.State().SelectedFolder, "10")
}

func TestStore_InitInsideBatch(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	rec := &recorder{}
	store.AddObserver(rec)

	store.BeginBatchUpdate()
	store.Init(testState())
	store.Dispatch(state.NewSelectFolder("10", store.State().Nodes))
	assert.Equal(t, rec.count(), 0)

	store.EndBatchUpdate()
	assert.Equal(t, rec.count(), 1)
	assert.Equal(t, rec.states[0].SelectedFolder, "10")
}

func TestStore_QueuesActionsBeforeInit(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	rec := &recorder{}
	store.AddObserver(rec)

	store.Dispatch(state.NewChangeFolderOpen("10", true))
	store.Dispatch(state.NewUpdateAnchor("20"))
	assert.Equal(t, rec.count(), 0)

	store.Init(testState())

	assert.Equal(t, rec.count(), 1)
	s := store.State()
	assert.Check(t, s.FolderOpenState["10"])
	assert.Equal(t, s.Selection.Anchor, "20")
}

func TestStore_DispatchNotifiesEachTime(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())
	rec := &recorder{}
	store.AddObserver(rec)

	store.Dispatch(state.NewSelectFolder("10", store.State().Nodes))
	store.Dispatch(state.NewSelectFolder("11", store.State().Nodes))

	assert.Equal(t, rec.count(), 2)
	assert.Equal(t, rec.states[0].SelectedFolder, "10")
	assert.Equal(t, rec.states[1].SelectedFolder, "11")
}

func TestStore_BatchUpdate(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())
	rec := &recorder{}
	store.AddObserver(rec)

	store.BeginBatchUpdate()
	assert.Check(t, store.IsBatching())
	store.Dispatch(state.NewMoveBookmark("20", "2", 0, "1", 1))
	store.Dispatch(state.NewMoveBookmark("21", "2", 1, "1", 1))

	// Dispatches apply immediately even while notifications are held.
	assert.DeepEqual(t, store.State().Nodes["2"].Children, []string{"20", "21", "30"})
	assert.Equal(t, rec.count(), 0)

	store.EndBatchUpdate()
	assert.Equal(t, rec.count(), 1)
	assert.DeepEqual(t, rec.states[0].Nodes["1"].Children, []string{"10"})

	// A second end without a begin does nothing.
	store.EndBatchUpdate()
	assert.Equal(t, rec.count(), 1)
}

func TestStore_RemoveObserver(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())
	rec := &recorder{}
	store.AddObserver(rec)
	assert.Check(t, store.HasObserver(rec))

	store.RemoveObserver(rec)
	assert.Check(t, !store.HasObserver(rec))

	store.Dispatch(state.NewUpdateAnchor("20"))
	assert.Equal(t, rec.count(), 0)
}

func TestStore_ReentrantDispatchKeepsOrder(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())

	first := &recorder{}
	second := &recorder{}
	first.onCall = func(s state.BookmarksPageState) {
		if s.Selection.Anchor == "20" {
			store.Dispatch(state.NewUpdateAnchor("21"))
		}
	}
	store.AddObserver(first)
	store.AddObserver(second)

	store.Dispatch(state.NewUpdateAnchor("20"))

	assert.Equal(t, second.count(), 2)
	assert.Equal(t, second.states[0].Selection.Anchor, "20")
	assert.Equal(t, second.states[1].Selection.Anchor, "21")
}

func TestStore_DispatchAsync(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())

	var wg sync.WaitGroup
	store.DispatchAsync(func(dispatch state.DispatchFunc) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatch(state.NewChangeFolderOpen("10", true))
		}()
	})
	wg.Wait()

	assert.Check(t, store.State().FolderOpenState["10"])
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store := state.NewStore(state.StoreParams{})
	store.Init(testState())
	rec := &recorder{}
	store.AddObserver(rec)

	var wg sync.WaitGroup
	for _, id := range []string{"10", "11", "1", "2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			store.Dispatch(state.NewChangeFolderOpen(id, true))
		}(id)
	}
	wg.Wait()

	assert.Equal(t, rec.count(), 4)
	assert.Equal(t, len(store.State().FolderOpenState), 4)
}

func TestStore_CustomReducer(t *testing.T) {
	var seen []string
	store := state.NewStore(state.StoreParams{
		Reducer: func(s state.BookmarksPageState, a state.Action) state.BookmarksPageState {
			seen = append(seen, a.Name())
			return state.Reduce(s, a)
		},
	})
	store.Init(testState())
	store.Dispatch(state.NewDeselectItems())

	assert.DeepEqual(t, seen, []string{"deselect-items"})
}
