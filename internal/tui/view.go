package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmgr/internal/dnd"
	"github.com/nikbrunner/bmgr/internal/router"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/tui/layout"
)

// WithDimensions returns a copy of the App sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	a.help.Width = width
	return a
}

// renderView creates the complete two pane view.
func (a App) renderView() string {
	if a.mode == ModeHelp {
		return a.renderHelpOverlay()
	}

	s := a.store.State()
	frame := a.frame()

	header := lipgloss.JoinVertical(lipgloss.Left,
		a.renderRoute(s),
		a.renderSearchLine(s),
	)

	var body string
	if a.mode == ModeForm {
		paneCfg := a.layoutConfig.Pane
		body = lipgloss.Place(
			a.width-2*a.layoutConfig.Frame.PaddingLeft,
			frame.Rows+paneCfg.TitleLines+2*paneCfg.Border,
			lipgloss.Center,
			lipgloss.Center,
			a.renderForm(),
		)
	} else {
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			a.renderSidebar(s, frame),
			strings.Repeat(" ", a.layoutConfig.Pane.Gap),
			a.renderList(s, frame),
		)
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, header, body, a.renderFooter()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

func (a App) frame() layout.Frame {
	return layout.CalculateFrame(a.width, a.height, a.sidebarWidth, a.layoutConfig)
}

// innerWidth is the terminal width inside the app padding.
func (a App) innerWidth() int {
	return a.width - 2*a.layoutConfig.Frame.PaddingLeft
}

// offset returns the first visible row of column. Rendering and mouse hit
// testing must agree on it.
func (a App) offset(s state.BookmarksPageState, column layout.Column, frame layout.Frame) int {
	grabbing := a.mode == ModeGrab && a.grab.Column == column

	switch column {
	case layout.ColumnSidebar:
		rows := sidebarRows(s)
		focus := rowIndex(rows, s.SelectedFolder)
		if grabbing {
			focus = a.grab.Row()
		}
		start, _ := layout.VisibleWindow(focus, len(rows), frame.Rows)
		return start

	case layout.ColumnList:
		n := len(state.DisplayedList(s))
		focus := a.cursor
		if grabbing {
			n++
			focus = a.grab.Row()
		}
		return layout.CalculateViewportOffset(focus, n, frame.Rows)
	}
	return 0
}

// renderRoute renders the folder path and the current route above the panes.
func (a App) renderRoute(s state.BookmarksPageState) string {
	var place string
	if state.IsShowingSearch(s) {
		place = "Search results"
	} else {
		place = strings.Join(s.Nodes.Path(s.SelectedFolder), " / ")
	}

	line := a.styles.Title.Render("bmgr") + "  " + place
	if route := router.FromState(s).String(); route != "" {
		line += "  " + a.styles.Route.Render(route)
	}
	return layout.TruncateANSIAware(line, a.innerWidth(), a.layoutConfig.Text)
}

// renderSearchLine shows the search input while typing, or the active term.
func (a App) renderSearchLine(s state.BookmarksPageState) string {
	switch {
	case a.mode == ModeSearch:
		return a.search.View()
	case state.IsShowingSearch(s):
		line := a.styles.SearchPrompt.Render("/"+s.Search.Term) +
			a.styles.Message.Render(fmt.Sprintf("  %d results", len(s.Search.Results)))
		return layout.TruncateANSIAware(line, a.innerWidth(), a.layoutConfig.Text)
	}
	return ""
}

func (a App) paneStyle(column layout.Column) lipgloss.Style {
	active := a.focus == column
	if a.mode == ModeGrab {
		active = a.grab.Column == column
	}
	if active {
		return a.styles.PaneActive
	}
	return a.styles.Pane
}

func (a App) indicator() dnd.Indicator {
	if a.drag == nil {
		return dnd.Indicator{}
	}
	return a.drag.Indicator()
}

// marker renders the two cell gutter of a row: the drop indicator, or the
// keyboard drag pointer.
func (a App) marker(column layout.Column, role dnd.Role, id string, i int, ind dnd.Indicator) string {
	if ind.Role == role && ind.ID == id {
		switch ind.Class() {
		case "drag-above":
			return a.styles.DropLine.Render("↑ ")
		case "drag-below":
			return a.styles.DropLine.Render("↓ ")
		case "drag-on":
			return a.styles.DropLine.Render("→ ")
		}
	}
	if a.mode == ModeGrab && a.grab.Column == column && a.grab.Row() == i {
		return a.styles.Pointer.Render("› ")
	}
	return "  "
}

func (a App) renderSidebar(s state.BookmarksPageState, frame layout.Frame) string {
	var content strings.Builder
	width := frame.SidebarWidth
	title, _ := layout.TruncateText("Folders", width, a.layoutConfig.Text)
	content.WriteString(a.styles.Title.Render(title))

	rows := sidebarRows(s)
	offset := a.offset(s, layout.ColumnSidebar, frame)
	ind := a.indicator()
	for i := offset; i < len(rows) && i < offset+frame.Rows; i++ {
		content.WriteString("\n")
		content.WriteString(a.renderFolderRow(s, rows[i], i, width, ind))
	}

	return a.paneStyle(layout.ColumnSidebar).
		Width(width + 2*a.layoutConfig.Pane.Padding).
		Height(frame.Rows + a.layoutConfig.Pane.TitleLines).
		Render(content.String())
}

func (a App) renderFolderRow(s state.BookmarksPageState, r FolderRow, i, width int, ind dnd.Indicator) string {
	arrow := "  "
	if r.Expandable {
		arrow = "▸ "
		if r.Open {
			arrow = "▾ "
		}
	}
	prefix := strings.Repeat("  ", r.Depth) + arrow

	inner := width - 2
	text, _ := layout.TruncateWithPrefixSuffix(r.Title, inner, prefix, "", a.layoutConfig.Text)
	text = layout.PadRight(text, inner)

	selected := r.ID == s.SelectedFolder && !state.IsShowingSearch(s)
	style := a.styles.Folder
	switch {
	case ind.Role == dnd.RoleFolderNode && ind.ID == r.ID && ind.Position == dnd.DropOn:
		style = a.styles.DropOn
	case selected && a.focus == layout.ColumnSidebar && a.mode != ModeGrab:
		style = a.styles.ItemCursor
	case selected:
		style = a.styles.ItemSelected
	}
	return a.marker(layout.ColumnSidebar, dnd.RoleFolderNode, r.ID, i, ind) + style.Render(text)
}

func (a App) renderList(s state.BookmarksPageState, frame layout.Frame) string {
	var content strings.Builder
	width := frame.ListWidth

	heading := "Search"
	if !state.IsShowingSearch(s) {
		heading = s.Nodes[s.SelectedFolder].Title
	}
	title, _ := layout.TruncateText(heading, width, a.layoutConfig.Text)
	content.WriteString(a.styles.Title.Render(title))

	items := listItems(s)
	ind := a.indicator()
	grabbing := a.mode == ModeGrab && a.grab.Column == layout.ColumnList

	if len(items) == 0 && !grabbing && ind.Role != dnd.RoleList {
		empty := "(empty)"
		if state.IsShowingSearch(s) {
			empty = "(no results)"
		}
		content.WriteString("\n" + a.styles.Empty.Render(empty))
	}

	offset := a.offset(s, layout.ColumnList, frame)
	for i := offset; i < len(items) && i < offset+frame.Rows; i++ {
		content.WriteString("\n")
		content.WriteString(a.renderListRow(s, items[i], i, width, ind))
	}

	// The row past the items is the drop target for the end of the list.
	if end := len(items); (grabbing || ind.Role == dnd.RoleList) && end >= offset && end < offset+frame.Rows {
		content.WriteString("\n")
		content.WriteString(a.marker(layout.ColumnList, dnd.RoleList, "", end, ind))
		content.WriteString(a.styles.Empty.Render("(end of list)"))
	}

	return a.paneStyle(layout.ColumnList).
		Width(width + 2*a.layoutConfig.Pane.Padding).
		Height(frame.Rows + a.layoutConfig.Pane.TitleLines).
		Render(content.String())
}

func (a App) renderListRow(s state.BookmarksPageState, item Item, i, width int, ind dnd.Indicator) string {
	inner := width - 2
	cfg := a.layoutConfig.Text

	var title, rest string
	if item.IsFolder() {
		title, _ = layout.TruncateWithPrefixSuffix(item.Title(), inner, "▸ ", "/", cfg)
	} else {
		title, _ = layout.TruncateText(item.Title(), inner, cfg)
		url := item.Node.URL
		if room := inner - layout.VisibleLength(title) - 2; url != item.Title() && room > 0 {
			url, _ = layout.TruncateText(url, room, cfg)
			rest = "  " + url
		}
	}
	rest = layout.PadRight(rest, inner-layout.VisibleLength(title))

	isCursor := i == a.cursor && a.focus == layout.ColumnList && a.mode != ModeGrab
	isSelected := s.Selection.Items[item.ID()]
	dropOn := ind.Role == dnd.RoleItem && ind.ID == item.ID() && ind.Position == dnd.DropOn

	var line string
	switch {
	case dropOn:
		line = a.styles.DropOn.Render(title + rest)
	case isCursor:
		line = a.styles.ItemCursor.Render(title + rest)
	case isSelected:
		line = a.styles.ItemSelected.Render(title) + a.styles.URL.Render(rest)
	case item.IsFolder():
		line = a.styles.Folder.Render(title) + a.styles.URL.Render(rest)
	default:
		line = a.styles.Bookmark.Render(title) + a.styles.URL.Render(rest)
	}
	return a.marker(layout.ColumnList, dnd.RoleItem, item.ID(), i, ind) + line
}

// renderFooter renders the message line and the contextual hints.
func (a App) renderFooter() string {
	var message string
	if a.messageText != "" {
		if a.messageErr {
			message = a.styles.Error.Render("✗ " + a.messageText)
		} else {
			message = a.styles.Message.Render(a.messageText)
		}
		message = layout.TruncateANSIAware(message, a.innerWidth(), a.layoutConfig.Text)
	}

	hints := layout.TruncateANSIAware(a.renderHints(a.getContextualHints()), a.innerWidth(), a.layoutConfig.Text)
	return strings.Join([]string{"", message, hints}, "\n")
}

// renderForm renders the argument modal of the open form.
func (a App) renderForm() string {
	modalWidth := layout.ModalWidth(a.width, a.layoutConfig.Modal)
	inputWidth := layout.ModalInputWidth(modalWidth)

	var content strings.Builder
	content.WriteString(a.styles.Title.Render(a.form.Heading) + "\n")
	for _, field := range a.form.fields {
		input := field.input
		input.Width = inputWidth
		content.WriteString("\n" + field.label + ":\n" + input.View() + "\n")
	}
	content.WriteString("\n")
	content.WriteString(a.renderHintsInline([]Hint{
		{Key: "Enter", Desc: "save"},
		{Key: "Esc", Desc: "cancel"},
	}))

	return a.styles.Modal.Width(modalWidth).Render(content.String())
}

// renderHelpOverlay renders all key bindings, top-left aligned.
func (a App) renderHelpOverlay() string {
	groups := a.keys.FullHelp()
	limit := a.layoutConfig.Modal.HelpMaxVisible
	for i, group := range groups {
		if limit > 0 && len(group) > limit {
			groups[i] = group[:limit]
		}
	}

	h := a.help
	h.ShowAll = true
	body := a.styles.Title.Render("keys") + "\n\n" +
		h.FullHelpView(groups) + "\n\n" +
		a.renderHintsInline([]Hint{{Key: "?/esc", Desc: "close"}})

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(body),
	)
}
