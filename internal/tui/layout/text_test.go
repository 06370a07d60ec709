package layout

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no ANSI", "hello", "hello"},
		{"bold", "\x1b[1mhello\x1b[0m", "hello"},
		{"color", "\x1b[31mred\x1b[0m", "red"},
		{"mixed", "normal \x1b[1;4mbold underline\x1b[0m normal", "normal bold underline normal"},
		{"empty", "", ""},
		{"only ANSI", "\x1b[1m\x1b[0m", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripANSI(tt.input)
			if got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestVisibleLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain text", "hello", 5},
		{"with ANSI bold", "\x1b[1mhello\x1b[0m", 5},
		{"wide characters", "こんにちは", 10},
		{"empty", "", 0},
		{"only ANSI", "\x1b[1m\x1b[0m", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleLength(tt.input)
			if got != tt.want {
				t.Errorf("VisibleLength(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name      string
		text      string
		maxWidth  int
		want      string
		truncated bool
	}{
		{"no truncation needed", "hello", 10, "hello", false},
		{"exact length", "hello", 5, "hello", false},
		{"needs truncation", "hello world", 8, "hello w…", true},
		{"max is 1", "hello", 1, "…", true},
		{"max is 0", "hello", 0, "", true},
		{"empty string", "", 10, "", false},
		{"empty string at zero", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateText(tt.text, tt.maxWidth, cfg)
			if got != tt.want || truncated != tt.truncated {
				t.Errorf("TruncateText(%q, %d) = (%q, %v), want (%q, %v)",
					tt.text, tt.maxWidth, got, truncated, tt.want, tt.truncated)
			}
		})
	}
}

func TestTruncateText_WideCharacters(t *testing.T) {
	got, truncated := TruncateText("こんにちは", 4, DefaultConfig().Text)
	if !truncated || VisibleLength(got) > 4 || !strings.HasSuffix(got, "…") {
		t.Errorf("TruncateText wide = (%q, %v)", got, truncated)
	}
}

func TestTruncateWithPrefixSuffix(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name      string
		text      string
		maxWidth  int
		prefix    string
		suffix    string
		want      string
		truncated bool
	}{
		{"no truncation", "Dev", 10, "* ", "/", "* Dev/", false},
		{"with truncation", "Development", 10, "* ", "/", "* Develo…/", true}, // 2+6+1+1
		{"just fits", "Dev", 6, "* ", "/", "* Dev/", false},
		{"no prefix/suffix", "Development", 8, "", "", "Develop…", true},
		{"empty text", "", 10, "* ", "/", "* /", false},
		{"falls back to simple truncation", "abc", 4, "* ", "/", "* a…", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateWithPrefixSuffix(tt.text, tt.maxWidth, tt.prefix, tt.suffix, cfg)
			if got != tt.want || truncated != tt.truncated {
				t.Errorf("TruncateWithPrefixSuffix(%q, %d, %q, %q) = (%q, %v), want (%q, %v)",
					tt.text, tt.maxWidth, tt.prefix, tt.suffix, got, truncated, tt.want, tt.truncated)
			}
		})
	}
}

func TestTruncateANSIAware(t *testing.T) {
	cfg := DefaultConfig().Text

	tests := []struct {
		name     string
		input    string
		maxWidth int
	}{
		{"no truncation plain", "hello", 10},
		{"no truncation styled", "\x1b[1mhello\x1b[0m", 10},
		{"truncation plain", "hello world", 8},
		{"truncation styled", "\x1b[1mhello world\x1b[0m", 8},
		{"partial style", "he\x1b[1mllo wor\x1b[0mld", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateANSIAware(tt.input, tt.maxWidth, cfg)
			if VisibleLength(got) > tt.maxWidth {
				t.Errorf("visible length = %d, want <= %d (got: %q)", VisibleLength(got), tt.maxWidth, got)
			}

			needsTrunc := VisibleLength(tt.input) > tt.maxWidth
			if needsTrunc != strings.HasSuffix(got, ansi.ResetStyle) {
				t.Errorf("reset code present = %v, want %v (got: %q)", !needsTrunc, needsTrunc, got)
			}
			if !needsTrunc && got != tt.input {
				t.Errorf("expected input unchanged, got %q", got)
			}
		})
	}
}

func TestTruncateANSIAware_EdgeCases(t *testing.T) {
	cfg := DefaultConfig().Text

	for _, tt := range []struct {
		input    string
		maxWidth int
	}{
		{"hello", 0},
		{"hello", -1},
		{"", 10},
		{"\x1b[1m\x1b[0m", 10},
	} {
		// Must not panic.
		_ = TruncateANSIAware(tt.input, tt.maxWidth, cfg)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("\x1b[1mab\x1b[0m", 3); VisibleLength(got) != 3 {
		t.Errorf("PadRight styled = %q", got)
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight longer = %q", got)
	}
}
