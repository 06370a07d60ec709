package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/nikbrunner/bmgr/internal/command"
	"github.com/nikbrunner/bmgr/internal/tui/layout"
)

// Mode is the input mode of the App.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeForm
	ModeGrab
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeForm:
		return "form"
	case ModeGrab:
		return "grab"
	case ModeHelp:
		return "help"
	}
	return "normal"
}

type fieldKind int

const (
	fieldTitle fieldKind = iota
	fieldURL
	fieldPath
)

type formField struct {
	kind  fieldKind
	label string
	input textinput.Model
}

// FormState holds the inputs of the modal that collects command arguments.
type FormState struct {
	Command command.Command
	Heading string
	IDs     []string // items the command applies to
	fields  []formField
	focus   int
}

func newInput(placeholder string, limit, width int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Width = width
	return input
}

// newForm builds the form for cmd. Values prefill the fields in order.
func newForm(cmd command.Command, heading string, ids []string, cfg layout.LayoutConfig, kinds []fieldKind, values ...string) FormState {
	f := FormState{Command: cmd, Heading: heading, IDs: ids}
	for i, kind := range kinds {
		var field formField
		switch kind {
		case fieldTitle:
			field = formField{kind: kind, label: "Title", input: newInput("Title", cfg.Input.TitleCharLimit, cfg.Input.StandardWidth)}
		case fieldURL:
			field = formField{kind: kind, label: "URL", input: newInput("https://...", cfg.Input.URLCharLimit, cfg.Input.StandardWidth)}
		case fieldPath:
			field = formField{kind: kind, label: "File", input: newInput("bookmarks.html", cfg.Input.PathCharLimit, cfg.Input.StandardWidth)}
		}
		if i < len(values) {
			field.input.SetValue(values[i])
			field.input.CursorEnd()
		}
		f.fields = append(f.fields, field)
	}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Next moves focus to the next field, wrapping around.
func (f *FormState) Next() {
	f.setFocus((f.focus + 1) % len(f.fields))
}

// Prev moves focus to the previous field, wrapping around.
func (f *FormState) Prev() {
	f.setFocus((f.focus + len(f.fields) - 1) % len(f.fields))
}

func (f *FormState) setFocus(i int) {
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// Args returns the entered values.
func (f FormState) Args() command.Args {
	var args command.Args
	for _, field := range f.fields {
		switch field.kind {
		case fieldTitle:
			args.Title = field.input.Value()
		case fieldURL:
			args.URL = field.input.Value()
		case fieldPath:
			args.Path = field.input.Value()
		}
	}
	return args
}

// GrabState is a keyboard drag. The pointer moves in thirds of a row so that
// each row can be hit above, on and below.
type GrabState struct {
	Column layout.Column
	Thirds int
}

func newGrab(column layout.Column, row int) GrabState {
	return GrabState{Column: column, Thirds: 3*row + 1}
}

// Pointer returns the pointer position in rows, centered in its third.
func (g GrabState) Pointer() float64 {
	return (float64(g.Thirds) + 0.5) / 3
}

// Row returns the row under the pointer.
func (g GrabState) Row() int {
	return int(math.Floor(g.Pointer()))
}

// Step moves the pointer by delta thirds, keeping it within rows rows.
func (g *GrabState) Step(delta, rows int) {
	g.Thirds += delta
	if last := 3*rows - 1; g.Thirds > last {
		g.Thirds = last
	}
	if g.Thirds < 0 {
		g.Thirds = 0
	}
}

// mouseState tracks a left button press that may turn into a drag.
type mouseState struct {
	pressed  bool
	dragging bool
	column   layout.Column
	index    int
}
