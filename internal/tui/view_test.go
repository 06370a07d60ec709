package tui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmgr/internal/tui/layout"
)

func (h *harness) view() string {
	return layout.StripANSI(h.app.View())
}

func TestView_NormalMode_120x30(t *testing.T) {
	h := newHarness(t)
	output := h.view()

	assert.Check(t, is.Contains(output, "bmgr  Bookmarks bar  ?id=1"))
	assert.Check(t, is.Contains(output, "Folders"))
	assert.Check(t, is.Contains(output, "Other bookmarks"))
	assert.Check(t, is.Contains(output, "Mobile bookmarks"))
	assert.Check(t, is.Contains(output, "▸ Work/"))
	assert.Check(t, is.Contains(output, "News  https://news.ycombinator.com"))
	assert.Check(t, is.Contains(output, "?:help"))
}

func TestView_FitsTerminal(t *testing.T) {
	for _, size := range []struct{ w, h int }{{80, 24}, {120, 30}, {60, 16}} {
		h := newHarness(t)
		h.app = h.app.WithDimensions(size.w, size.h)

		lines := strings.Split(h.view(), "\n")
		assert.Check(t, is.Len(lines, size.h), "%dx%d", size.w, size.h)
		for i, line := range lines {
			assert.Check(t, layout.VisibleLength(line) <= size.w,
				"%dx%d: line %d is %d cells wide", size.w, size.h, i, layout.VisibleLength(line))
		}
	}
}

func TestView_EmptyFolder(t *testing.T) {
	h := newHarness(t)

	// Bookmarks bar, Work, Other bookmarks
	h.press(tea.KeyTab)
	h.typeKeys("jj")

	output := h.view()
	assert.Check(t, is.Contains(output, "bmgr  Other bookmarks  ?id=2"))
	assert.Check(t, is.Contains(output, "(empty)"))
}

func TestView_Search(t *testing.T) {
	h := newHarness(t)

	h.typeKeys("/news")
	h.press(tea.KeyEnter)

	output := h.view()
	assert.Check(t, is.Contains(output, "Search results  ?q=news"))
	assert.Check(t, is.Contains(output, "/news  1 results"))
	assert.Check(t, is.Contains(output, "f:show in folder"))

	h.press(tea.KeyEsc)
	h.typeKeys("/zzz")
	assert.Check(t, is.Contains(h.view(), "(no results)"))
}

func TestView_FormModal(t *testing.T) {
	h := newHarness(t)

	h.typeKeys("A")
	output := h.view()

	assert.Check(t, is.Contains(output, "Add folder"))
	assert.Check(t, is.Contains(output, "Title:"))
	assert.Check(t, is.Contains(output, "Enter save"))
	assert.Check(t, !strings.Contains(output, "Folders"), "the modal replaces the panes")
}

func TestView_HelpOverlay(t *testing.T) {
	h := newHarness(t)

	h.typeKeys("?")
	output := h.view()

	assert.Check(t, is.Contains(output, "keys"))
	assert.Check(t, is.Contains(output, "?/esc close"))
}

func TestView_GrabEndOfList(t *testing.T) {
	h := newHarness(t)

	h.typeKeys("m")
	h.typeKeys("jjjj")

	output := h.view()
	assert.Check(t, is.Contains(output, "(end of list)"))
	assert.Check(t, is.Contains(output, "j/k:move tab:pane"))
}
