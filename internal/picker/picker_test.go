package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/search"
)

func testResults() []search.SearchResult {
	return []search.SearchResult{
		{ID: "b1", Node: model.BookmarkNode{ID: "b1", ParentID: "f1", Title: "GitHub", URL: "https://github.com"}, MatchedIndexes: []int{0, 1, 2}},
		{ID: "f2", Node: model.BookmarkNode{ID: "f2", ParentID: "1", Title: "Git tools", Children: []string{}}},
		{ID: "b2", Node: model.BookmarkNode{ID: "b2", ParentID: "1", Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func testNodes() model.NodeMap {
	return model.NodeMap{
		"0":  {ID: "0", Children: []string{"1"}},
		"1":  {ID: "1", ParentID: "0", Title: "Bookmarks bar", Children: []string{"f1", "f2", "b2"}},
		"f1": {ID: "f1", ParentID: "1", Title: "Code", Children: []string{"b1"}},
		"f2": {ID: "f2", ParentID: "1", Title: "Git tools", Children: []string{}},
		"b1": {ID: "b1", ParentID: "f1", Title: "GitHub", URL: "https://github.com"},
		"b2": {ID: "b2", ParentID: "1", Title: "GitLab", URL: "https://gitlab.com"},
	}
}

func update(p Picker, msg tea.Msg) (Picker, tea.Cmd) {
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func TestPicker_SkipsFolders(t *testing.T) {
	p := New(testResults(), "git", nil)

	if len(p.results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(p.results))
	}
	if p.results[1].ID != "b2" {
		t.Errorf("expected b2 second, got %s", p.results[1].ID)
	}
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_Navigate(t *testing.T) {
	p := New(testResults(), "git", nil)

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1, got %d", p.cursor)
	}

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Errorf("expected cursor to stay at 1, got %d", p.cursor)
	}

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	p, _ = update(p, tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_Scrolls(t *testing.T) {
	var results []search.SearchResult
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		results = append(results, search.SearchResult{ID: id, Node: model.BookmarkNode{ID: id, Title: id, URL: "https://" + id}})
	}
	p := New(results, "x", nil)
	p, _ = update(p, tea.WindowSizeMsg{Width: 80, Height: 10})

	for i := 0; i < 5; i++ {
		p, _ = update(p, tea.KeyMsg{Type: tea.KeyDown})
	}
	if p.offset != 3 {
		t.Errorf("expected offset 3 with 3 visible rows, got %d", p.offset)
	}
	view := p.View()
	if strings.Contains(view, "https://a\n") {
		t.Error("expected the first result to be scrolled out")
	}
	if !strings.Contains(view, "https://f") {
		t.Error("expected the cursor row to be visible")
	}
}

func TestPicker_Select(t *testing.T) {
	p := New(testResults(), "git", nil)
	p.cursor = 1

	p, cmd := update(p, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("expected quit command after selection")
	}

	got, ok := p.Selected()
	if !ok {
		t.Fatal("expected a selection")
	}
	if got.Node.URL != "https://gitlab.com" {
		t.Errorf("expected GitLab, got %s", got.Node.URL)
	}
}

func TestPicker_SelectWithoutResults(t *testing.T) {
	p := New(nil, "nothing", nil)

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := p.Selected(); ok {
		t.Error("expected no selection")
	}
	if !p.Cancelled() {
		t.Error("expected an empty pick to count as cancelled")
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		p := New(testResults(), "git", nil)
		p, cmd := update(p, msg)
		if !p.Cancelled() {
			t.Errorf("%s: expected cancelled", msg)
		}
		if cmd == nil {
			t.Errorf("%s: expected quit command", msg)
		}
		if _, ok := p.Selected(); ok {
			t.Errorf("%s: expected no selection", msg)
		}
	}
}

func TestPicker_ViewShowsFolderPath(t *testing.T) {
	p := New(testResults(), "git", testNodes())
	view := p.View()

	if !strings.Contains(view, "Search: git (2 results)") {
		t.Errorf("missing header in %q", view)
	}
	if !strings.Contains(view, "Bookmarks bar / Code") {
		t.Errorf("missing folder path in %q", view)
	}
	if !strings.Contains(view, "https://gitlab.com") {
		t.Errorf("missing URL in %q", view)
	}
}

func TestHighlight_PlainWithoutMatches(t *testing.T) {
	got := highlight("GitHub", nil, normalStyle)
	if !strings.Contains(got, "GitHub") {
		t.Errorf("expected the title, got %q", got)
	}
}
