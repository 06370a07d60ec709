package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Frame FrameConfig
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// FrameConfig describes the fixed lines and padding around the panes.
type FrameConfig struct {
	// PaddingTop and PaddingLeft are the app padding.
	PaddingTop  int
	PaddingLeft int

	// HeaderLines are the lines above the panes (route line, search line).
	HeaderLines int

	// FooterLines are the lines below the panes (message line, hints).
	FooterLines int
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// Border is the width of a pane border on one side.
	Border int

	// Padding is the horizontal padding inside a pane on one side.
	Padding int

	// TitleLines are the lines inside a pane above its rows.
	TitleLines int

	// Gap is the space between the sidebar and the list.
	Gap int

	// MinHeight is the minimum number of rows in a pane.
	MinHeight int

	// DefaultSidebarWidth is the sidebar content width before the user
	// resizes it.
	DefaultSidebarWidth int

	// MinSidebarWidth and MinListWidth bound resizing.
	MinSidebarWidth int
	MinListWidth    int

	// SidebarStep is the width change per resize key press.
	SidebarStep int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// HelpMaxVisible: max key binding rows in the help overlay.
	HelpMaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	TitleCharLimit  int
	URLCharLimit    int
	PathCharLimit   int
	SearchCharLimit int

	// StandardWidth is used for form inputs, SearchWidth for the search line.
	StandardWidth int
	SearchWidth   int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Frame: FrameConfig{
			PaddingTop:  1,
			PaddingLeft: 2,
			HeaderLines: 2, // route + search
			FooterLines: 3, // blank + message + hints
		},
		Pane: PaneConfig{
			Border:              1,
			Padding:             1,
			TitleLines:          1,
			Gap:                 1,
			MinHeight:           3,
			DefaultSidebarWidth: 28,
			MinSidebarWidth:     12,
			MinListWidth:        30,
			SidebarStep:         4,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 50,
			MinWidth:            40,
			MaxWidth:            80,
			HelpMaxVisible:      20,
		},
		Input: InputConfig{
			TitleCharLimit:  200,
			URLCharLimit:    2000,
			PathCharLimit:   500,
			SearchCharLimit: 100,
			StandardWidth:   50,
			SearchWidth:     40,
		},
		Text: TextConfig{
			Ellipsis: "…",
		},
	}
}
