package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemCursor   lipgloss.Style // focused row
	ItemSelected lipgloss.Style // selected, not focused
	Folder       lipgloss.Style
	Bookmark     lipgloss.Style
	URL          lipgloss.Style
	Empty        lipgloss.Style
	Route        lipgloss.Style // route line above the panes
	SearchPrompt lipgloss.Style
	DropOn       lipgloss.Style // row receiving a drop
	DropLine     lipgloss.Style // marker above or below a row
	Pointer      lipgloss.Style // keyboard drag pointer
	Message      lipgloss.Style
	Error        lipgloss.Style
	Modal        lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // inactive borders
	warn := lipgloss.AdaptiveColor{Light: "#8A4A4A", Dark: "#AF7575"}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary),

		ItemCursor: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		ItemSelected: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Folder: lipgloss.NewStyle().
			Foreground(primary),

		Bookmark: lipgloss.NewStyle().
			Foreground(primary),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		Route: lipgloss.NewStyle().
			Foreground(subtle),

		SearchPrompt: lipgloss.NewStyle().
			Foreground(accent),

		DropOn: lipgloss.NewStyle().
			Underline(true).
			Foreground(accent),

		DropLine: lipgloss.NewStyle().
			Foreground(accent),

		Pointer: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Message: lipgloss.NewStyle().
			Foreground(subtle),

		Error: lipgloss.NewStyle().
			Foreground(warn),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
