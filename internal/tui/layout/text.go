package layout

import (
	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// VisibleLength returns the number of terminal cells s occupies, ignoring
// ANSI codes.
func VisibleLength(s string) int {
	return ansi.StringWidth(s)
}

// TruncateText truncates text to maxWidth cells with ellipsis.
// Returns the truncated text and whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", text != ""
	}
	if ansi.StringWidth(text) <= maxWidth {
		return text, false
	}
	if maxWidth <= ansi.StringWidth(cfg.Ellipsis) {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefixSuffix truncates text while preserving prefix and suffix.
// Example: TruncateWithPrefixSuffix("Development", 10, "* ", "/", cfg) -> "* Develo…/"
// Returns the truncated text and whether truncation occurred.
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	combined := prefix + text + suffix
	if ansi.StringWidth(combined) <= maxWidth {
		return combined, false
	}

	available := maxWidth - ansi.StringWidth(prefix) - ansi.StringWidth(suffix)
	if available <= ansi.StringWidth(cfg.Ellipsis) {
		// Not enough room for any of the text.
		return TruncateText(combined, maxWidth, cfg)
	}
	return prefix + ansi.Truncate(text, available, cfg.Ellipsis) + suffix, true
}

// TruncateANSIAware truncates styled text to maxWidth cells. Escape codes are
// kept and a reset is appended so styles do not bleed past the cut.
func TruncateANSIAware(styledText string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}
	if ansi.StringWidth(styledText) <= maxWidth {
		return styledText
	}
	return ansi.Truncate(styledText, maxWidth, cfg.Ellipsis) + ansi.ResetStyle
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	n := width - ansi.StringWidth(s)
	if n <= 0 {
		return s
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return s + string(b)
}
