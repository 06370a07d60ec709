package layout

// Modal chrome inside the border: horizontal padding per side, and the text
// input prompt plus cursor cell.
const (
	modalPadding = 2
	inputChrome  = 3
)

// ModalWidth returns the modal width for the terminal: DefaultWidthPercent
// of it, clamped to [MinWidth, MaxWidth] and never wider than the terminal
// minus a margin.
func ModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := terminalWidth * cfg.DefaultWidthPercent / 100
	width = max(width, cfg.MinWidth)
	width = min(width, cfg.MaxWidth, terminalWidth-4)
	return max(width, 1)
}

// ModalInputWidth is the text input width that fits a modal of modalWidth.
func ModalInputWidth(modalWidth int) int {
	return max(modalWidth-2*modalPadding-inputChrome, 1)
}

// VisibleWindow returns the rows [start, end) of total that a pane of
// height rows shows while keeping focus in view.
func VisibleWindow(focus, total, rows int) (start, end int) {
	start = CalculateViewportOffset(max(focus, 0), total, rows)
	return start, min(start+rows, total)
}
