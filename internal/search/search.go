package search

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmgr/internal/model"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	ID             string
	Node           model.BookmarkNode
	MatchedIndexes []int // indexes into the title; nil when only the URL matched
	Score          int
}

// nodeTitles implements fuzzy.Source over node titles.
type nodeTitles []model.BookmarkNode

func (nt nodeTitles) String(i int) string {
	return nt[i].Title
}

func (nt nodeTitles) Len() int {
	return len(nt)
}

// nodeURLs implements fuzzy.Source over node URLs.
type nodeURLs []model.BookmarkNode

func (nu nodeURLs) String(i int) string {
	return nu[i].URL
}

func (nu nodeURLs) Len() int {
	return len(nu)
}

// FuzzySearch searches every non-permanent node by title, and bookmarks by
// URL. Results are sorted by score (best first), ties in tree order.
func FuzzySearch(nodes model.NodeMap, query string) []SearchResult {
	if query == "" {
		return nil
	}

	candidates := make(nodeTitles, 0, len(nodes))
	walk(nodes, model.RootID, func(n model.BookmarkNode) {
		if !model.IsPermanentID(n.ID) {
			candidates = append(candidates, n)
		}
	})

	best := map[int]SearchResult{}
	for _, m := range fuzzy.FindFrom(query, candidates) {
		best[m.Index] = SearchResult{
			ID:             candidates[m.Index].ID,
			Node:           candidates[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	for _, m := range fuzzy.FindFrom(query, nodeURLs(candidates)) {
		if candidates[m.Index].IsFolder() {
			continue
		}
		if existing, ok := best[m.Index]; ok && existing.Score >= m.Score {
			continue
		}
		best[m.Index] = SearchResult{
			ID:    candidates[m.Index].ID,
			Node:  candidates[m.Index],
			Score: m.Score,
		}
	}

	order := make([]int, 0, len(best))
	for i := range best {
		order = append(order, i)
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := best[order[a]], best[order[b]]
		if ra.Score != rb.Score {
			return ra.Score > rb.Score
		}
		return order[a] < order[b]
	})

	results := make([]SearchResult, len(order))
	for i, idx := range order {
		results[i] = best[idx]
	}
	return results
}

// IDs returns the node IDs of results in order.
func IDs(results []SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// walk visits the tree under id in pre-order.
func walk(nodes model.NodeMap, id string, visit func(model.BookmarkNode)) {
	n, ok := nodes[id]
	if !ok {
		return
	}
	visit(n)
	for _, c := range n.Children {
		walk(nodes, c, visit)
	}
}
