// Package picker is a small bubbletea program that lists search results and
// lets the user pick one bookmark.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up", "ctrl+p")),
	Down:   key.NewBinding(key.WithKeys("j", "down", "ctrl+n")),
	Choose: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// Picker shows bookmark search results. Folder results are dropped.
type Picker struct {
	results   []search.SearchResult
	nodes     model.NodeMap
	query     string
	cursor    int
	offset    int
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a Picker. nodes is used to show the folder of each result and
// may be nil.
func New(results []search.SearchResult, query string, nodes model.NodeMap) Picker {
	var bookmarks []search.SearchResult
	for _, r := range results {
		if !r.Node.IsFolder() {
			bookmarks = append(bookmarks, r)
		}
	}
	return Picker{
		results: bookmarks,
		nodes:   nodes,
		query:   query,
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.scroll()
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, keys.Choose):
			if len(p.results) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
		p.scroll()
	}

	return p, nil
}

// visibleRows is the number of results that fit, at two lines each.
func (p Picker) visibleRows() int {
	rows := (p.height - 4) / 2
	if rows < 1 {
		return 1
	}
	return rows
}

func (p *Picker) scroll() {
	rows := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+rows {
		p.offset = p.cursor - rows + 1
	}
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	end := p.offset + p.visibleRows()
	if end > len(p.results) {
		end = len(p.results)
	}
	for i := p.offset; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		b.WriteString(cursor + highlight(result.Node.Title, result.MatchedIndexes, style))
		if folder := p.folderPath(result.Node.ParentID); folder != "" {
			b.WriteString("  " + pathStyle.Render(folder))
		}
		b.WriteString("\n")
		b.WriteString("   " + urlStyle.Render(result.Node.URL) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(pathStyle.Render("j/k: move  Enter: open  q/Esc: cancel"))

	return b.String()
}

func (p Picker) folderPath(id string) string {
	if p.nodes == nil {
		return ""
	}
	return strings.Join(p.nodes.Path(id), " / ")
}

// highlight renders s with the runes at matched (byte offsets) emphasized.
func highlight(s string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(s)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// Selected returns the chosen result, or false if the picker was cancelled.
func (p Picker) Selected() (search.SearchResult, bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return search.SearchResult{}, false
	}
	return p.results[p.cursor], true
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
