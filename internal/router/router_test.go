package router_test

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/router"
	"github.com/nikbrunner/bmgr/internal/state"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want router.Route
	}{
		{"", router.Route{}},
		{"?id=12", router.Route{FolderID: "12"}},
		{"id=12", router.Route{FolderID: "12"}},
		{"?q=go+lang", router.Route{SearchTerm: "go lang"}},
		{"?q=a%26b", router.Route{SearchTerm: "a&b"}},
		{"?id=1&id=2", router.Route{FolderID: "1"}},
		{"?id=5&foo=bar", router.Route{FolderID: "5"}},
		{"?id=3&q=x", router.Route{FolderID: "3", SearchTerm: "x"}},
		{"?%zz&id=4", router.Route{FolderID: "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, router.Parse(tt.raw), tt.want)
		})
	}
}

func TestRoute_String(t *testing.T) {
	assert.Equal(t, router.Route{}.String(), "")
	assert.Equal(t, router.Route{FolderID: "7"}.String(), "?id=7")
	assert.Equal(t, router.Route{SearchTerm: "a b"}.String(), "?q=a+b")
	assert.Equal(t, router.Route{FolderID: "7", SearchTerm: "x"}.String(), "?q=x")

	r := router.Route{SearchTerm: "a&b=c"}
	assert.Equal(t, router.Parse(r.String()), r)
}

type fakeSearcher struct {
	queries []string
	results []string
}

func (f *fakeSearcher) Search(query string) []string {
	f.queries = append(f.queries, query)
	return f.results
}

func newStore(t *testing.T) (*state.Store, string) {
	t.Helper()
	svc, err := bookmarks.New(bookmarks.Params{})
	assert.NilError(t, err)
	folder, err := svc.Create(bookmarks.CreateParams{ParentID: model.OtherID, Title: "Work"})
	assert.NilError(t, err)
	_, err = svc.Create(bookmarks.CreateParams{ParentID: folder.ID, Title: "Go", URL: "https://go.dev"})
	assert.NilError(t, err)

	store := state.NewStore(state.StoreParams{})
	store.Init(state.NewInitialState(svc.GetTree(), nil))
	return store, folder.ID
}

func TestFromState(t *testing.T) {
	store, folderID := newStore(t)
	assert.Equal(t, router.FromState(store.State()), router.Route{FolderID: model.BookmarksBarID})

	store.Dispatch(state.NewSelectFolder(folderID, store.State().Nodes))
	assert.Equal(t, router.FromState(store.State()).String(), "?id="+folderID)

	store.Dispatch(state.NewSetSearchTerm("go"))
	assert.Equal(t, router.FromState(store.State()), router.Route{SearchTerm: "go"})
}

func TestNavigate_Folder(t *testing.T) {
	store, folderID := newStore(t)
	searcher := &fakeSearcher{}

	assert.Assert(t, router.Navigate(store, searcher, router.Route{FolderID: folderID}))
	assert.Equal(t, store.State().SelectedFolder, folderID)
	assert.Check(t, is.Len(searcher.queries, 0))
}

func TestNavigate_UnknownFolder(t *testing.T) {
	store, _ := newStore(t)
	searcher := &fakeSearcher{}

	assert.Assert(t, !router.Navigate(store, searcher, router.Route{FolderID: "missing"}))
	assert.Assert(t, !router.Navigate(store, searcher, router.Route{FolderID: model.RootID}))
	assert.Assert(t, !router.Navigate(store, searcher, router.Route{}))
	assert.Equal(t, store.State().SelectedFolder, model.BookmarksBarID)
}

func TestNavigate_Search(t *testing.T) {
	store, folderID := newStore(t)
	goID := store.State().Nodes[folderID].Children[0]
	searcher := &fakeSearcher{results: []string{goID}}

	assert.Assert(t, router.Navigate(store, searcher, router.Parse("?q=go")))
	s := store.State()
	assert.DeepEqual(t, searcher.queries, []string{"go"})
	assert.Equal(t, s.Search.Term, "go")
	assert.Assert(t, !s.Search.InProgress)
	assert.DeepEqual(t, state.DisplayedList(s), []string{goID})
}

func TestSearch_EmptyTermClears(t *testing.T) {
	store, _ := newStore(t)
	searcher := &fakeSearcher{results: []string{}}

	router.Search(store, searcher, "nothing")
	assert.Assert(t, state.IsShowingSearch(store.State()))

	router.Search(store, searcher, "")
	assert.Assert(t, !state.IsShowingSearch(store.State()))
	assert.Check(t, is.Len(searcher.queries, 1))
}
