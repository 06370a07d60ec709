package tui

import (
	"strings"

	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/tui/layout"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move h:back l:open"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter save  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, h/l, etc.)
	Edit   []Hint // Edit hints (a, e, d, etc.)
	Action []Hint // Action hints (Enter, Tab, etc.)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		if a.focus == layout.ColumnSidebar {
			return a.getSidebarHints()
		}
		return a.getListHints()
	case ModeSearch:
		return a.getSearchModeHints()
	case ModeForm:
		return a.getFormHints()
	case ModeGrab:
		return a.getGrabHints()
	case ModeHelp:
		// Help overlay covers screen, minimal hints
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	default:
		return HintSet{}
	}
}

// getSidebarHints returns hints while the folder tree has focus.
func (a App) getSidebarHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h/l", Desc: "fold"},
			{Key: "tab", Desc: "list"},
		},
		Action: []Hint{
			{Key: "/", Desc: "search"},
			{Key: "m", Desc: "grab"},
		},
		Edit: []Hint{
			{Key: "A", Desc: "folder"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
}

// getListHints returns hints while the item list has focus.
func (a App) getListHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "up"},
			{Key: "l", Desc: "open"},
			{Key: "space", Desc: "select"},
		},
		Action: []Hint{
			{Key: "/", Desc: "search"},
			{Key: "m", Desc: "grab"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
			{Key: "x/y/p", Desc: "cut/copy/paste"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
	if state.IsShowingSearch(a.store.State()) {
		hints.Nav = append(hints.Nav, Hint{Key: "f", Desc: "show in folder"})
	}
	return hints
}

// getSearchModeHints returns hints while typing a search term.
func (a App) getSearchModeHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "type", Desc: "search"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "done"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "clear"},
		},
	}
}

// getFormHints returns hints for the argument modal.
func (a App) getFormHints() HintSet {
	hints := HintSet{
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
	if len(a.form.fields) > 1 {
		hints.Nav = []Hint{{Key: "Tab", Desc: "next"}}
	}
	return hints
}

// getGrabHints returns hints during a keyboard drag.
func (a App) getGrabHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "tab", Desc: "pane"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "drop"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}
