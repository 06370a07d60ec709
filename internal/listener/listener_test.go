package listener_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/config"
	"github.com/nikbrunner/bmgr/internal/listener"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/timer/timertest"
)

type counter struct {
	calls int
	last  state.BookmarksPageState
}

func (c *counter) OnStateChanged(s state.BookmarksPageState) {
	c.calls++
	c.last = s
}

type fixture struct {
	svc         *bookmarks.Service
	store       *state.Store
	clock       *timertest.Clock
	listener    *listener.Listener
	notes       *counter
	highlighted chan []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc, err := bookmarks.New(bookmarks.Params{WriteClipboard: func(string) error { return nil }})
	assert.NilError(t, err)

	store := state.NewStore(state.StoreParams{})
	store.Init(state.NewInitialState(svc.GetTree(), nil))
	notes := &counter{}
	store.AddObserver(notes)

	f := &fixture{
		svc:         svc,
		store:       store,
		clock:       timertest.New(),
		notes:       notes,
		highlighted: make(chan []string, 1),
	}
	f.listener = listener.New(listener.Params{
		Store:     store,
		Source:    svc,
		Scheduler: f.clock,
		Highlight: func(ids []string) { f.highlighted <- ids },
	})
	f.listener.Start()
	t.Cleanup(f.listener.Close)
	return f
}

func (f *fixture) create(t *testing.T, parentID, title, url string) string {
	t.Helper()
	n, err := f.svc.Create(bookmarks.CreateParams{ParentID: parentID, Title: title, URL: url})
	assert.NilError(t, err)
	return n.ID
}

// assertInSync checks the store mirrors the service tree.
func assertInSync(t *testing.T, f *fixture) {
	t.Helper()
	want := model.NormalizeNodes(f.svc.GetTree())
	got := f.store.State().Nodes
	assert.Equal(t, len(got), len(want))
	for id, n := range want {
		g, ok := got[id]
		assert.Assert(t, ok, "missing %s", id)
		assert.Equal(t, g.ParentID, n.ParentID)
		assert.Equal(t, g.Title, n.Title)
		assert.DeepEqual(t, g.Children, n.Children)
	}
	assert.Equal(t, got.CheckConsistency(), "")
}

func TestListener_BatchesBurst(t *testing.T) {
	f := newFixture(t)

	f.create(t, model.BookmarksBarID, "a", "https://a")
	f.create(t, model.BookmarksBarID, "b", "https://b")
	f.create(t, model.BookmarksBarID, "c", "https://c")

	assert.Equal(t, f.listener.Phase(), listener.PhaseBatching)
	assert.Equal(t, f.notes.calls, 0)
	// Dispatches apply immediately even though observers wait.
	assert.Equal(t, len(f.store.State().Nodes[model.BookmarksBarID].Children), 3)

	f.clock.Advance(listener.DefaultQuietPeriod)

	assert.Equal(t, f.listener.Phase(), listener.PhaseIdle)
	assert.Equal(t, f.notes.calls, 1)
	assert.Equal(t, len(f.notes.last.Nodes[model.BookmarksBarID].Children), 3)
	assertInSync(t, f)
}

func TestListener_QuietPeriodRestarts(t *testing.T) {
	f := newFixture(t)

	f.create(t, model.BookmarksBarID, "a", "https://a")
	f.clock.Advance(6 * time.Millisecond)
	f.create(t, model.BookmarksBarID, "b", "https://b")
	f.clock.Advance(6 * time.Millisecond)

	assert.Equal(t, f.notes.calls, 0)
	assert.Equal(t, f.listener.Phase(), listener.PhaseBatching)

	f.clock.Advance(4 * time.Millisecond)
	assert.Equal(t, f.notes.calls, 1)
	assert.Equal(t, f.clock.Pending(), 0)
}

func TestListener_MirrorsEveryEvent(t *testing.T) {
	f := newFixture(t)

	folder := f.create(t, model.BookmarksBarID, "folder", "")
	a := f.create(t, folder, "a", "https://a")
	f.create(t, folder, "b", "https://b")

	title := "renamed"
	assert.NilError(t, f.svc.Update(a, model.ChangeInfo{Title: &title}))
	assert.NilError(t, f.svc.Move(a, model.OtherID, nil))
	assert.NilError(t, f.svc.SortChildren(model.BookmarksBarID))
	assert.NilError(t, f.svc.RemoveTrees([]string{folder}))
	assert.NilError(t, f.svc.Undo())
	f.clock.Advance(listener.DefaultQuietPeriod)

	assertInSync(t, f)
	assert.Equal(t, f.store.State().Nodes[a].Title, "renamed")
}

func TestListener_HighlightsTrackedItems(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, model.BookmarksBarID, "a", "https://a")
	f.clock.Advance(listener.DefaultQuietPeriod)

	assert.NilError(t, f.svc.Copy([]string{a}))
	f.listener.TrackUpdatedItems()
	pasted, err := f.svc.Paste(model.OtherID, nil)
	assert.NilError(t, err)

	done := make(chan error, 1)
	go func() { done <- f.listener.HighlightUpdatedItems(context.Background()) }()

	select {
	case <-f.highlighted:
		t.Fatal("highlight must wait for the batch to close")
	case <-time.After(20 * time.Millisecond):
	}

	f.clock.Advance(listener.DefaultQuietPeriod)

	select {
	case ids := <-f.highlighted:
		assert.DeepEqual(t, ids, pasted)
	case <-time.After(time.Second):
		t.Fatal("highlight was not called")
	}
	assert.NilError(t, <-done)

	// Tracking stops after one highlight.
	f.create(t, model.OtherID, "b", "https://b")
	f.clock.Advance(listener.DefaultQuietPeriod)
	assert.NilError(t, f.listener.HighlightUpdatedItems(context.Background()))
	assert.Equal(t, len(f.highlighted), 0)
}

func TestListener_HighlightCancelled(t *testing.T) {
	f := newFixture(t)
	f.listener.TrackUpdatedItems()
	f.create(t, model.BookmarksBarID, "a", "https://a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.listener.HighlightUpdatedItems(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListener_ImportRefreshesOnce(t *testing.T) {
	f := newFixture(t)

	html := `<DL><p>
    <DT><A HREF="https://go.dev">Go</A>
    <DT><A HREF="https://pkg.go.dev">Pkg</A>
</DL><p>`
	id, err := f.svc.ImportHTML(strings.NewReader(html))
	assert.NilError(t, err)

	assert.Equal(t, f.listener.Phase(), listener.PhaseIdle)
	assert.Equal(t, f.notes.calls, 1)
	assert.Equal(t, len(f.notes.last.Nodes[id].Children), 2)
	assertInSync(t, f)
}

func TestListener_Prefs(t *testing.T) {
	f := newFixture(t)

	f.listener.OnCanEditBookmarksChanged(false)
	assert.Check(t, !f.store.State().Prefs.CanEdit)

	f.listener.OnIncognitoAvailabilityChanged(state.IncognitoDisabled)
	assert.Equal(t, f.store.State().Prefs.IncognitoAvailability, state.IncognitoDisabled)

	calls := f.notes.calls
	f.listener.OnIncognitoAvailabilityChanged(state.IncognitoForced)
	assert.Equal(t, f.notes.calls, calls)

	f.listener.OnPrefsChanged(config.PrefsConfig{CanEdit: true, Incognito: "enabled"})
	assert.Check(t, f.store.State().Prefs.CanEdit)
	assert.Equal(t, f.store.State().Prefs.IncognitoAvailability, state.IncognitoEnabled)
}

func TestListener_CloseEndsBatch(t *testing.T) {
	f := newFixture(t)
	f.create(t, model.BookmarksBarID, "a", "https://a")
	assert.Check(t, f.store.IsBatching())

	f.listener.Close()

	assert.Check(t, !f.store.IsBatching())
	assert.Equal(t, f.notes.calls, 1)

	// No longer subscribed.
	f.create(t, model.BookmarksBarID, "b", "https://b")
	assert.Equal(t, len(f.store.State().Nodes[model.BookmarksBarID].Children), 1)
}
