package search

import (
	"testing"

	"github.com/nikbrunner/bmgr/internal/model"
)

// newNodes returns the permanent folders plus the given bookmarks and
// folders, all under the bookmarks bar.
func newNodes(items ...model.BookmarkNode) model.NodeMap {
	nodes := model.NormalizeNodes(model.NewEmptyTree())
	for _, n := range items {
		if n.ParentID == "" {
			n.ParentID = model.BookmarksBarID
		}
		parent := nodes[n.ParentID]
		parent.Children = append(append([]string{}, parent.Children...), n.ID)
		nodes[n.ParentID] = parent
		nodes[n.ID] = n
	}
	return nodes
}

func TestFuzzySearch_EmptyQuery(t *testing.T) {
	nodes := newNodes(model.BookmarkNode{ID: "b1", Title: "GitHub", URL: "https://github.com"})

	results := FuzzySearch(nodes, "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzySearch_ExactMatch(t *testing.T) {
	nodes := newNodes(
		model.BookmarkNode{ID: "b1", Title: "GitHub", URL: "https://github.com"},
		model.BookmarkNode{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"},
	)

	results := FuzzySearch(nodes, "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Node.Title != "GitHub" {
		t.Errorf("expected GitHub, got %s", results[0].Node.Title)
	}
	if len(results[0].MatchedIndexes) != 6 {
		t.Errorf("expected 6 matched indexes, got %v", results[0].MatchedIndexes)
	}
}

func TestFuzzySearch_FuzzyMatch(t *testing.T) {
	nodes := newNodes(
		model.BookmarkNode{ID: "b1", Title: "TanStack Router", URL: "https://tanstack.com/router"},
		model.BookmarkNode{ID: "b2", Title: "React Router", URL: "https://reactrouter.com"},
	)

	// "tanrou" should fuzzy match "TanStack Router"
	results := FuzzySearch(nodes, "tanrou")

	if len(results) < 1 {
		t.Fatalf("expected at least 1 result for 'tanrou', got %d", len(results))
	}
	if results[0].Node.Title != "TanStack Router" {
		t.Errorf("expected TanStack Router as first result, got %s", results[0].Node.Title)
	}
}

func TestFuzzySearch_MatchesURL(t *testing.T) {
	nodes := newNodes(model.BookmarkNode{ID: "b1", Title: "Docs", URL: "https://pkg.go.dev"})

	results := FuzzySearch(nodes, "pkg.go")

	if len(results) != 1 || results[0].ID != "b1" {
		t.Fatalf("expected URL match on b1, got %v", IDs(results))
	}
	if results[0].MatchedIndexes != nil {
		t.Error("URL-only match should not report title indexes")
	}
}

func TestFuzzySearch_IncludesFoldersSkipsPermanent(t *testing.T) {
	nodes := newNodes(
		model.BookmarkNode{ID: "f1", Title: "Bookmarks archive", Children: []string{}},
	)

	results := FuzzySearch(nodes, "Bookmarks")

	ids := IDs(results)
	if len(ids) != 1 || ids[0] != "f1" {
		t.Errorf("expected only the user folder, got %v", ids)
	}
}

func TestFuzzySearch_NoMatch(t *testing.T) {
	nodes := newNodes(model.BookmarkNode{ID: "b1", Title: "GitHub", URL: "https://github.com"})

	if results := FuzzySearch(nodes, "zzzz"); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
