// Package router maps the page state to a route string and back.
//
// A route selects either a folder (?id=<folder>) or a search (?q=<term>).
package router

import (
	"net/url"
	"strings"

	"github.com/nikbrunner/bmgr/internal/state"
)

// Route is the navigable part of the page state.
type Route struct {
	FolderID   string
	SearchTerm string
}

// Parse reads a route string. Parameters after the first of each name and
// unknown parameters are ignored, as are malformed pairs.
func Parse(raw string) Route {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	values, _ := url.ParseQuery(raw)
	return Route{
		FolderID:   values.Get("id"),
		SearchTerm: values.Get("q"),
	}
}

// String formats the route. A search term wins over a folder.
func (r Route) String() string {
	v := url.Values{}
	switch {
	case r.SearchTerm != "":
		v.Set("q", r.SearchTerm)
	case r.FolderID != "":
		v.Set("id", r.FolderID)
	default:
		return ""
	}
	return "?" + v.Encode()
}

// FromState builds the route for s.
func FromState(s state.BookmarksPageState) Route {
	if s.Search.Term != "" {
		return Route{SearchTerm: s.Search.Term}
	}
	return Route{FolderID: s.SelectedFolder}
}

// Store is the part of the state store the router drives.
type Store interface {
	State() state.BookmarksPageState
	Dispatch(action state.Action)
	DispatchAsync(thunk func(dispatch state.DispatchFunc))
}

// Searcher runs a bookmark search.
type Searcher interface {
	Search(query string) []string
}

// Navigate applies r to the store. An unknown folder leaves the state alone
// and reports false.
func Navigate(store Store, searcher Searcher, r Route) bool {
	if r.SearchTerm != "" {
		Search(store, searcher, r.SearchTerm)
		return true
	}
	if r.FolderID == "" {
		return false
	}
	action := state.NewSelectFolder(r.FolderID, store.State().Nodes)
	if action == nil {
		return false
	}
	store.Dispatch(action)
	return true
}

// Search starts a search for term and delivers its results. An empty term
// clears the search.
func Search(store Store, searcher Searcher, term string) {
	store.DispatchAsync(func(dispatch state.DispatchFunc) {
		dispatch(state.NewSetSearchTerm(term))
		if term == "" {
			return
		}
		dispatch(state.NewSetSearchResults(term, searcher.Search(term)))
	})
}
