package layout

// Column identifies one of the two panes.
type Column int

const (
	ColumnNone Column = iota
	ColumnSidebar
	ColumnList
)

// Frame holds the computed screen geometry of the sidebar and list panes.
// X values are screen columns of the pane's outer (border) edge; widths are
// content widths.
type Frame struct {
	SidebarX     int
	SidebarWidth int
	ListX        int
	ListWidth    int

	// RowsY is the screen line of the first row in both panes.
	RowsY int
	// Rows is the number of visible rows per pane.
	Rows int

	chrome int
}

// OuterWidth returns the pane width including border and padding.
func (f Frame) OuterWidth(contentWidth int) int {
	return contentWidth + f.chrome
}

// CalculateFrame lays out both panes for the terminal size. sidebarWidth is
// clamped first.
func CalculateFrame(terminalWidth, terminalHeight, sidebarWidth int, cfg LayoutConfig) Frame {
	chrome := 2 * (cfg.Pane.Border + cfg.Pane.Padding)
	sidebarWidth = ClampSidebarWidth(sidebarWidth, terminalWidth, cfg)

	f := Frame{
		SidebarX:     cfg.Frame.PaddingLeft,
		SidebarWidth: sidebarWidth,
		chrome:       chrome,
	}
	f.ListX = f.SidebarX + sidebarWidth + chrome + cfg.Pane.Gap

	listWidth := terminalWidth - f.ListX - chrome - cfg.Frame.PaddingLeft
	if listWidth < cfg.Pane.MinListWidth {
		listWidth = cfg.Pane.MinListWidth
	}
	f.ListWidth = listWidth

	f.RowsY = cfg.Frame.PaddingTop + cfg.Frame.HeaderLines + cfg.Pane.Border + cfg.Pane.TitleLines
	f.Rows = CalculatePaneHeight(terminalHeight, cfg)
	return f
}

// CalculatePaneHeight computes the number of rows in a pane.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg LayoutConfig) int {
	height := terminalHeight -
		cfg.Frame.PaddingTop - cfg.Frame.HeaderLines - cfg.Frame.FooterLines -
		2*cfg.Pane.Border - cfg.Pane.TitleLines
	if height < cfg.Pane.MinHeight {
		return cfg.Pane.MinHeight
	}
	return height
}

// ClampSidebarWidth keeps the sidebar at least MinSidebarWidth wide while
// leaving MinListWidth for the list when the terminal allows it.
func ClampSidebarWidth(width, terminalWidth int, cfg LayoutConfig) int {
	chrome := 2 * (cfg.Pane.Border + cfg.Pane.Padding)
	maxWidth := terminalWidth - 2*cfg.Frame.PaddingLeft - 2*chrome - cfg.Pane.Gap - cfg.Pane.MinListWidth
	if width > maxWidth {
		width = maxWidth
	}
	if width < cfg.Pane.MinSidebarWidth {
		width = cfg.Pane.MinSidebarWidth
	}
	return width
}

// At maps a screen cell to a pane and a row offset from the first visible
// row. The row may be negative or past the last visible row when the cell is
// on the pane's title or border.
func (f Frame) At(x, y int) (Column, int) {
	row := y - f.RowsY
	switch {
	case x >= f.SidebarX && x < f.SidebarX+f.OuterWidth(f.SidebarWidth):
		return ColumnSidebar, row
	case x >= f.ListX && x < f.ListX+f.OuterWidth(f.ListWidth):
		return ColumnList, row
	}
	return ColumnNone, row
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
