package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/command"
	"github.com/nikbrunner/bmgr/internal/dnd"
	"github.com/nikbrunner/bmgr/internal/exporter"
	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/router"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/storage"
	"github.com/nikbrunner/bmgr/internal/tui/layout"
)

// App is the main bubbletea model for the bookmark manager.
type App struct {
	store    *state.Store
	searcher router.Searcher
	commands *command.Manager
	drag     *dnd.Manager
	bridge   *Bridge
	local    storage.LocalStore
	log      logrus.FieldLogger
	ctx      context.Context

	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	help         help.Model

	mode   Mode
	focus  layout.Column
	cursor int    // focused row of the list
	route  string // route of the list the cursor belongs to

	search textinput.Model
	form   FormState
	grab   GrabState
	mouse  mouseState

	sidebarWidth int
	savedOpen    state.FolderOpenState

	// For gg command
	lastKeyWasG bool

	messageText string
	messageErr  bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store    *state.Store
	Searcher router.Searcher
	Commands *command.Manager
	DnD      *dnd.Manager
	Bridge   *Bridge            // optional, created if nil
	Local    storage.LocalStore // optional, UI state is not saved if nil
	Context  context.Context    // optional, bounds highlight waits
	Logger   logrus.FieldLogger

	SidebarWidth int                  // optional, uses the layout default if 0
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	Layout       *layout.LayoutConfig // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.Layout != nil {
		layoutConfig = *params.Layout
	}

	bridge := params.Bridge
	if bridge == nil {
		bridge = NewBridge()
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	sidebarWidth := params.SidebarWidth
	if sidebarWidth <= 0 {
		sidebarWidth = layoutConfig.Pane.DefaultSidebarWidth
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "Search bookmarks"
	search.CharLimit = layoutConfig.Input.SearchCharLimit
	search.Width = layoutConfig.Input.SearchWidth

	s := params.Store.State()
	return App{
		store:        params.Store,
		searcher:     params.Searcher,
		commands:     params.Commands,
		drag:         params.DnD,
		bridge:       bridge,
		local:        params.Local,
		log:          logging.OrDiscard(params.Logger).WithField("component", "tui"),
		ctx:          ctx,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutConfig,
		help:         help.New(),
		focus:        layout.ColumnList,
		route:        router.FromState(s).String(),
		search:       search,
		sidebarWidth: sidebarWidth,
		savedOpen:    s.FolderOpenState,
		width:        80,
		height:       24,
	}
}

// Cursor returns the focused row of the list.
func (a App) Cursor() int {
	return a.cursor
}

// Focus returns the focused pane.
func (a App) Focus() layout.Column {
	return a.focus
}

// Mode returns the input mode.
func (a App) Mode() Mode {
	return a.mode
}

// Message returns the status line text and whether it reports an error.
func (a App) Message() (string, bool) {
	return a.messageText, a.messageErr
}

// SidebarWidth returns the requested sidebar width.
func (a App) SidebarWidth() int {
	return a.sidebarWidth
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.bridge.wait()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case stateChangedMsg:
		a.sync()
		return a, a.bridge.wait()

	case highlightMsg:
		a.highlight(msg.ids)
		return a, a.bridge.wait()

	case tea.MouseMsg:
		a.updateMouse(msg)
		a.sync()
		return a, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch a.mode {
		case ModeSearch:
			a, cmd = a.updateSearch(msg)
		case ModeForm:
			a, cmd = a.updateForm(msg)
		case ModeGrab:
			a, cmd = a.updateGrab(msg)
		case ModeHelp:
			if key.Matches(msg, a.keys.Help, a.keys.Escape, a.keys.Quit) {
				a.mode = ModeNormal
			}
		default:
			a, cmd = a.updateNormal(msg)
		}
		a.sync()
		return a, cmd
	}

	// Cursor blink and other input messages.
	var cmd tea.Cmd
	switch a.mode {
	case ModeSearch:
		a.search, cmd = a.search.Update(msg)
	case ModeForm:
		a.form.fields[a.form.focus].input, cmd = a.form.fields[a.form.focus].input.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

func (a App) updateNormal(msg tea.KeyMsg) (App, tea.Cmd) {
	a.clearMessage()

	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.jump(0)
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	s := a.store.State()
	inList := a.focus == layout.ColumnList

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.SwitchPane):
		if inList {
			a.focus = layout.ColumnSidebar
		} else {
			a.focus = layout.ColumnList
		}

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.search.SetValue(s.Search.Term)
		a.search.CursorEnd()
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.Escape):
		if len(state.SelectedIDs(s)) > 0 {
			a.store.Dispatch(state.NewDeselectItems())
		} else if state.IsShowingSearch(s) {
			a.search.Reset()
			router.Search(a.store, a.searcher, "")
		}

	case key.Matches(msg, a.keys.Down):
		a.move(1)

	case key.Matches(msg, a.keys.Up):
		a.move(-1)

	case key.Matches(msg, a.keys.Bottom):
		a.jump(-1)

	case key.Matches(msg, a.keys.ExtendDown) && inList:
		a.moveCursor(1, state.SelectConfig{Clear: true, Range: true})

	case key.Matches(msg, a.keys.ExtendUp) && inList:
		a.moveCursor(-1, state.SelectConfig{Clear: true, Range: true})

	case key.Matches(msg, a.keys.Toggle) && inList:
		a.selectAt(a.cursor, state.SelectConfig{Toggle: true})

	case key.Matches(msg, a.keys.SelectAll) && inList:
		anchor := ""
		if items := listItems(s); a.cursor < len(items) {
			anchor = items[a.cursor].ID()
		}
		a.store.Dispatch(state.NewSelectAll(state.DisplayedList(s), s, anchor))

	case key.Matches(msg, a.keys.Left):
		a.left()

	case key.Matches(msg, a.keys.Right):
		a.right()

	case key.Matches(msg, a.keys.Edit):
		return a, a.openEdit()

	case key.Matches(msg, a.keys.AddBookmark):
		if a.allowed(command.AddBookmark, nil) {
			return a, a.openForm(newForm(command.AddBookmark, "Add bookmark", nil, a.layoutConfig,
				[]fieldKind{fieldTitle, fieldURL}))
		}

	case key.Matches(msg, a.keys.AddFolder):
		if a.allowed(command.AddFolder, nil) {
			return a, a.openForm(newForm(command.AddFolder, "Add folder", nil, a.layoutConfig,
				[]fieldKind{fieldTitle}, command.DefaultFolderTitle))
		}

	case key.Matches(msg, a.keys.Import):
		if a.allowed(command.Import, nil) {
			return a, a.openForm(newForm(command.Import, "Import bookmarks", nil, a.layoutConfig,
				[]fieldKind{fieldPath}))
		}

	case key.Matches(msg, a.keys.Export):
		return a, a.openForm(newForm(command.Export, "Export bookmarks", nil, a.layoutConfig,
			[]fieldKind{fieldPath}, a.exportPath()))

	case key.Matches(msg, a.keys.Delete):
		a.run(command.Delete, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.Cut):
		a.run(command.Cut, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.Copy):
		a.run(command.Copy, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.Paste):
		a.run(command.Paste, nil, command.Args{})

	case key.Matches(msg, a.keys.CopyURL):
		a.run(command.CopyURL, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.Open):
		a.run(command.OpenInBrowser, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.OpenIncognito):
		a.run(command.OpenIncognito, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.ShowInFolder):
		a.run(command.ShowInFolder, a.targetIDs(), command.Args{})

	case key.Matches(msg, a.keys.Sort):
		a.run(command.Sort, nil, command.Args{})

	case key.Matches(msg, a.keys.Undo):
		a.run(command.Undo, nil, command.Args{})

	case key.Matches(msg, a.keys.Redo):
		a.run(command.Redo, nil, command.Args{})

	case key.Matches(msg, a.keys.Grab):
		a.startGrab()

	case key.Matches(msg, a.keys.Narrower):
		a.resizeSidebar(-a.layoutConfig.Pane.SidebarStep)

	case key.Matches(msg, a.keys.Wider):
		a.resizeSidebar(a.layoutConfig.Pane.SidebarStep)
	}

	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		a.mode = ModeNormal
		a.search.Blur()
		a.focus = layout.ColumnList
		return a, nil
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.search.Blur()
		a.search.Reset()
		router.Search(a.store, a.searcher, "")
		return a, nil
	}

	before := a.search.Value()
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	if term := a.search.Value(); term != before {
		router.Search(a.store, a.searcher, term)
	}
	return a, cmd
}

func (a App) updateForm(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = ModeNormal
		a.form = FormState{}
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		a.form.Next()
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		a.form.Prev()
		return a, nil
	case tea.KeyEnter:
		form := a.form
		a.mode = ModeNormal
		a.form = FormState{}
		a.clearMessage()
		a.run(form.Command, form.IDs, form.Args())
		return a, nil
	}

	var cmd tea.Cmd
	field := &a.form.fields[a.form.focus]
	field.input, cmd = field.input.Update(msg)
	return a, cmd
}

// sync reconciles view state with the store after any change.
func (a *App) sync() {
	s := a.store.State()
	displayed := state.DisplayedList(s)

	// A new list starts at its first selected item.
	if route := router.FromState(s).String(); route != a.route {
		a.route = route
		a.cursor = 0
		for i, id := range displayed {
			if s.Selection.Items[id] {
				a.cursor = i
				break
			}
		}
	}
	if a.cursor >= len(displayed) {
		a.cursor = max(len(displayed)-1, 0)
	}

	if a.local != nil && !maps.Equal(a.savedOpen, s.FolderOpenState) {
		if err := saveFolderOpenState(a.local, s.FolderOpenState); err != nil {
			a.log.WithError(err).Warn("saving folder open state failed")
		}
		a.savedOpen = s.FolderOpenState
	}
}

// highlight selects the displayed ids and focuses the first of them.
func (a *App) highlight(ids []string) {
	a.sync()
	s := a.store.State()
	displayed := state.DisplayedList(s)

	var shown []string
	for _, id := range ids {
		if slices.Contains(displayed, id) {
			shown = append(shown, id)
		}
	}
	if len(shown) == 0 {
		return
	}
	a.store.Dispatch(state.NewSelectAll(shown, s, shown[0]))
	a.focus = layout.ColumnList
	a.cursor = slices.Index(displayed, shown[0])
}

// move steps the focus of the active pane.
func (a *App) move(delta int) {
	if a.focus == layout.ColumnSidebar {
		s := a.store.State()
		rows := sidebarRows(s)
		if len(rows) == 0 {
			return
		}
		i := rowIndex(rows, s.SelectedFolder)
		a.selectRow(rows, clamp(i+delta, 0, len(rows)-1))
		return
	}
	a.moveCursor(delta, state.SelectConfig{Clear: true})
}

// jump moves the focus to row i of the active pane; -1 is the last row.
func (a *App) jump(i int) {
	s := a.store.State()
	if a.focus == layout.ColumnSidebar {
		rows := sidebarRows(s)
		if len(rows) == 0 {
			return
		}
		if i < 0 {
			i = len(rows) - 1
		}
		a.selectRow(rows, i)
		return
	}
	n := len(state.DisplayedList(s))
	if n == 0 {
		return
	}
	if i < 0 {
		i = n - 1
	}
	a.cursor = i
	a.selectAt(i, state.SelectConfig{Clear: true})
}

func (a *App) moveCursor(delta int, config state.SelectConfig) {
	n := len(state.DisplayedList(a.store.State()))
	if n == 0 {
		return
	}
	a.cursor = clamp(a.cursor+delta, 0, n-1)
	a.selectAt(a.cursor, config)
}

func (a *App) selectAt(i int, config state.SelectConfig) {
	s := a.store.State()
	displayed := state.DisplayedList(s)
	if i < 0 || i >= len(displayed) {
		return
	}
	action, err := state.NewSelectItem(displayed[i], s, config)
	if err != nil {
		a.setError(err)
		return
	}
	a.store.Dispatch(action)
}

func (a *App) selectRow(rows []FolderRow, i int) {
	s := a.store.State()
	a.store.Dispatch(state.NewSelectFolder(rows[i].ID, s.Nodes))
}

// left closes the focused folder or goes to its parent.
func (a *App) left() {
	s := a.store.State()
	folder := s.Nodes[s.SelectedFolder]

	if a.focus == layout.ColumnSidebar {
		rows := sidebarRows(s)
		if i := rowIndex(rows, folder.ID); i >= 0 && rows[i].Open && rows[i].Expandable {
			a.store.Dispatch(state.NewChangeFolderOpen(folder.ID, false))
			return
		}
	}
	if folder.ParentID == "" || folder.ParentID == model.RootID {
		return
	}
	a.store.Dispatch(state.NewSelectFolder(folder.ParentID, s.Nodes))
	if a.focus == layout.ColumnList {
		// Land on the folder we came from.
		if action, err := state.NewSelectItem(folder.ID, a.store.State(), state.SelectConfig{Clear: true}); err == nil {
			a.store.Dispatch(action)
		}
	}
}

// right opens the focused folder, or opens the focused bookmark.
func (a *App) right() {
	s := a.store.State()

	if a.focus == layout.ColumnSidebar {
		rows := sidebarRows(s)
		i := rowIndex(rows, s.SelectedFolder)
		switch {
		case i < 0:
		case rows[i].Expandable && !rows[i].Open:
			a.store.Dispatch(state.NewChangeFolderOpen(rows[i].ID, true))
		case rows[i].Expandable:
			a.selectRow(rows, i+1)
		default:
			a.focus = layout.ColumnList
		}
		return
	}

	items := listItems(s)
	if a.cursor >= len(items) {
		return
	}
	item := items[a.cursor]
	if item.IsFolder() {
		a.store.Dispatch(state.NewSelectFolder(item.ID(), s.Nodes))
		return
	}
	a.run(command.OpenInBrowser, []string{item.ID()}, command.Args{})
}

// targetIDs returns the items a command applies to: the focused sidebar
// folder, the list selection, or the focused list row.
func (a App) targetIDs() []string {
	s := a.store.State()
	if a.focus == layout.ColumnSidebar {
		if s.SelectedFolder == "" {
			return nil
		}
		return []string{s.SelectedFolder}
	}
	if ids := state.SelectedIDs(s); len(ids) > 0 {
		return ids
	}
	if items := listItems(s); a.cursor < len(items) {
		return []string{items[a.cursor].ID()}
	}
	return nil
}

func (a *App) openEdit() tea.Cmd {
	ids := a.targetIDs()
	if !a.allowed(command.Edit, ids) {
		return nil
	}
	n := a.store.State().Nodes[ids[0]]
	if n.IsFolder() {
		return a.openForm(newForm(command.Edit, "Edit folder", ids, a.layoutConfig,
			[]fieldKind{fieldTitle}, n.Title))
	}
	return a.openForm(newForm(command.Edit, "Edit bookmark", ids, a.layoutConfig,
		[]fieldKind{fieldTitle, fieldURL}, n.Title, n.URL))
}

func (a *App) openForm(f FormState) tea.Cmd {
	a.form = f
	a.mode = ModeForm
	return textinput.Blink
}

// allowed reports whether cmd applies to ids and explains when it does not.
func (a *App) allowed(cmd command.Command, ids []string) bool {
	if a.commands.CanExecute(cmd, ids) {
		return true
	}
	a.setError(notAllowedError(cmd))
	return false
}

func (a *App) run(cmd command.Command, ids []string, args command.Args) {
	msg, err := a.commands.Execute(a.ctx, cmd, ids, args)
	if err != nil {
		a.log.WithError(err).WithField("command", cmd.String()).Debug("command failed")
		a.setError(err)
		return
	}
	if msg != "" {
		a.setMessage(msg)
	}
}

func (a *App) resizeSidebar(delta int) {
	width := layout.ClampSidebarWidth(a.sidebarWidth+delta, a.width, a.layoutConfig)
	if width == a.sidebarWidth {
		return
	}
	a.sidebarWidth = width
	if a.local == nil {
		return
	}
	if err := saveSidebarWidth(a.local, width); err != nil {
		a.log.WithError(err).Warn("saving sidebar width failed")
	}
}

func (a *App) setMessage(text string) {
	a.messageText = text
	a.messageErr = false
}

func (a *App) setError(err error) {
	a.messageText = err.Error()
	a.messageErr = true
}

func (a *App) clearMessage() {
	a.messageText = ""
	a.messageErr = false
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func notAllowedError(cmd command.Command) error {
	return fmt.Errorf("%s: %w", cmd, command.ErrNotAllowed)
}

func (a App) exportPath() string {
	path, err := exporter.DefaultExportPath()
	if err != nil {
		return "bookmarks.html"
	}
	return path
}
