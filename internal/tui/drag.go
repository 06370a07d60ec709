package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmgr/internal/dnd"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/tui/layout"
)

var errCannotMove = errors.New("these items cannot be moved")

// startGrab begins a keyboard drag of the focused row.
func (a *App) startGrab() {
	s := a.store.State()
	row := a.focusedRow(s, a.focus)
	target, ok := a.targetAt(s, a.focus, row)
	if !ok || target.Role == dnd.RoleList {
		return
	}
	if !a.drag.DragStart(target) {
		a.setError(errCannotMove)
		return
	}
	a.grab = newGrab(a.focus, row)
	a.mode = ModeGrab
	a.dragOverAt(a.grab.Column, a.grab.Row(), a.grab.Pointer())
}

func (a App) updateGrab(msg tea.KeyMsg) (App, tea.Cmd) {
	a.clearMessage()

	switch {
	case key.Matches(msg, a.keys.Drop):
		a.mode = ModeNormal
		a.finishDrag()

	case key.Matches(msg, a.keys.Escape):
		a.mode = ModeNormal
		a.drag.DragEnd()
		a.setMessage("Move cancelled")

	case key.Matches(msg, a.keys.Quit):
		a.drag.DragEnd()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.grab.Step(1, a.grabRows())
		a.dragOverAt(a.grab.Column, a.grab.Row(), a.grab.Pointer())

	case key.Matches(msg, a.keys.Up):
		a.grab.Step(-1, a.grabRows())
		a.dragOverAt(a.grab.Column, a.grab.Row(), a.grab.Pointer())

	case key.Matches(msg, a.keys.SwitchPane):
		column := layout.ColumnSidebar
		if a.grab.Column == layout.ColumnSidebar {
			column = layout.ColumnList
		}
		a.grab = newGrab(column, max(a.focusedRow(a.store.State(), column), 0))
		a.dragOverAt(a.grab.Column, a.grab.Row(), a.grab.Pointer())
	}
	return a, nil
}

// grabRows is the number of rows the pointer can visit. The list has one
// row past its items for dropping at the end.
func (a App) grabRows() int {
	s := a.store.State()
	if a.grab.Column == layout.ColumnSidebar {
		return len(sidebarRows(s))
	}
	return len(state.DisplayedList(s)) + 1
}

// focusedRow returns the focused row of column, or -1.
func (a App) focusedRow(s state.BookmarksPageState, column layout.Column) int {
	if column == layout.ColumnSidebar {
		return rowIndex(sidebarRows(s), s.SelectedFolder)
	}
	if a.cursor < len(state.DisplayedList(s)) {
		return a.cursor
	}
	return -1
}

// targetAt describes row index of column as a drag target.
func (a App) targetAt(s state.BookmarksPageState, column layout.Column, index int) (dnd.Target, bool) {
	switch column {
	case layout.ColumnSidebar:
		rows := sidebarRows(s)
		if index < 0 || index >= len(rows) {
			return dnd.Target{}, false
		}
		return sidebarTarget(s, rows, index), true
	case layout.ColumnList:
		if index < 0 {
			return dnd.Target{}, false
		}
		return listTarget(listItems(s), index), true
	}
	return dnd.Target{}, false
}

// dragOverAt moves the drag pointer to row index of column. pointer is the
// position in rows and decides between above, on and below.
func (a *App) dragOverAt(column layout.Column, index int, pointer float64) {
	target, ok := a.targetAt(a.store.State(), column, index)
	if !ok {
		a.drag.DragOver(nil, pointer)
		return
	}
	a.drag.DragOver(&target, pointer)
}

// finishDrag drops at the current destination and ends the drag.
func (a *App) finishDrag() {
	moved := a.drag.Destination() != nil
	err := a.drag.Drop(a.ctx)
	a.drag.DragEnd()
	switch {
	case err != nil:
		a.setError(err)
	case !moved:
		a.setMessage("Nothing moved")
	}
}

// updateMouse handles clicks, wheel scrolling and left button drags.
func (a *App) updateMouse(msg tea.MouseMsg) {
	if a.mode != ModeNormal {
		return
	}
	s := a.store.State()
	frame := a.frame()
	column, row := frame.At(msg.X, msg.Y)
	index := row + a.offset(s, column, frame)

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if column == layout.ColumnNone {
			return
		}
		a.focus = column
		if msg.Button == tea.MouseButtonWheelUp {
			a.move(-1)
		} else {
			a.move(1)
		}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		a.mouse = mouseState{pressed: true, column: column, index: index}

	case msg.Action == tea.MouseActionMotion && a.mouse.pressed:
		if !a.mouse.dragging {
			if column == a.mouse.column && index == a.mouse.index {
				return
			}
			target, ok := a.targetAt(s, a.mouse.column, a.mouse.index)
			if !ok || target.Role == dnd.RoleList || !a.drag.DragStart(target) {
				a.mouse = mouseState{}
				return
			}
			a.mouse.dragging = true
		}
		a.dragOverAt(column, index, float64(index)+0.5)

	case msg.Action == tea.MouseActionRelease:
		pressed := a.mouse
		a.mouse = mouseState{}
		if pressed.dragging {
			a.clearMessage()
			a.finishDrag()
			return
		}
		if pressed.pressed && pressed.column == column && pressed.index == index {
			a.click(column, index, msg)
		}
	}
}

func (a *App) click(column layout.Column, index int, msg tea.MouseMsg) {
	s := a.store.State()
	switch column {
	case layout.ColumnSidebar:
		rows := sidebarRows(s)
		if index < 0 || index >= len(rows) {
			return
		}
		a.focus = layout.ColumnSidebar
		a.selectRow(rows, index)

	case layout.ColumnList:
		if index < 0 || index >= len(state.DisplayedList(s)) {
			return
		}
		a.focus = layout.ColumnList
		a.cursor = index
		a.selectAt(index, state.SelectConfig{
			Clear:  !msg.Ctrl,
			Range:  msg.Shift,
			Toggle: msg.Ctrl && !msg.Shift,
		})
	}
}
