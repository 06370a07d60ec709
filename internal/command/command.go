// Package command implements the commands offered on bookmarks: which of
// them apply to a set of items, and running them against the bookmarks
// service and the page state.
package command

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/state"
)

// Command identifies a user command.
type Command int

const (
	Edit Command = iota + 1
	CopyURL
	ShowInFolder
	Delete
	Cut
	Copy
	Paste
	Sort
	AddBookmark
	AddFolder
	Undo
	Redo
	OpenInBrowser
	OpenIncognito
	Export
	Import
)

var commandNames = map[Command]string{
	Edit:          "edit",
	CopyURL:       "copy-url",
	ShowInFolder:  "show-in-folder",
	Delete:        "delete",
	Cut:           "cut",
	Copy:          "copy",
	Paste:         "paste",
	Sort:          "sort",
	AddBookmark:   "add-bookmark",
	AddFolder:     "add-folder",
	Undo:          "undo",
	Redo:          "redo",
	OpenInBrowser: "open",
	OpenIncognito: "open-incognito",
	Export:        "export",
	Import:        "import",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Errors returned by Execute.
var (
	ErrNotAllowed = errors.New("command not allowed")
	ErrMissingURL = errors.New("bookmark needs a URL")
)

// Args carries user input for commands that need it.
type Args struct {
	Title string // Edit, AddBookmark, AddFolder
	URL   string // Edit, AddBookmark
	Path  string // Export, Import
}

// Store is the part of the state store commands use.
type Store interface {
	State() state.BookmarksPageState
	Dispatch(action state.Action)
}

// Service is the bookmarks service as seen by commands.
type Service interface {
	GetTree() *model.TreeNode
	Create(params bookmarks.CreateParams) (*model.TreeNode, error)
	Update(id string, changes model.ChangeInfo) error
	RemoveTrees(ids []string) error
	SortChildren(parentID string) error
	Copy(ids []string) error
	Cut(ids []string) error
	CanPaste(parentID string) bool
	Paste(parentID string, selected []string) ([]string, error)
	CopyURLs(ids []string) error
	Undo() error
	Redo() error
	CanUndo() bool
	CanRedo() bool
	ImportHTML(r io.Reader) (string, error)
}

// Tracker highlights the items created by the next service change.
type Tracker interface {
	TrackUpdatedItems()
	HighlightUpdatedItems(ctx context.Context) error
}

// Params configures a Manager.
type Params struct {
	Store   Store
	Service Service
	Tracker Tracker // optional
	Open    Opener  // defaults to NewOpener("")
	Logger  logrus.FieldLogger
}

// Manager decides and runs commands.
type Manager struct {
	store   Store
	service Service
	tracker Tracker
	open    Opener
	log     logrus.FieldLogger
}

// New creates a Manager.
func New(params Params) *Manager {
	open := params.Open
	if open == nil {
		open = NewOpener("")
	}
	return &Manager{
		store:   params.Store,
		service: params.Service,
		tracker: params.Tracker,
		open:    open,
		log:     logging.OrDiscard(params.Logger).WithField("component", "command"),
	}
}

// CanExecute reports whether cmd applies to ids in the current state.
func (m *Manager) CanExecute(cmd Command, ids []string) bool {
	s := m.store.State()
	folder := s.SelectedFolder
	changeList := !state.IsShowingSearch(s) && state.CanReorderChildren(s, folder)

	switch cmd {
	case Edit:
		return len(ids) == 1 && state.CanEditNode(s, ids[0])
	case CopyURL:
		if len(ids) != 1 {
			return false
		}
		n, ok := s.Nodes[ids[0]]
		return ok && !n.IsFolder()
	case ShowInFolder:
		if len(ids) != 1 || !state.IsShowingSearch(s) {
			return false
		}
		n, ok := s.Nodes[ids[0]]
		return ok && n.ParentID != "" && n.ParentID != model.RootID
	case Delete, Cut:
		return len(ids) > 0 && all(ids, func(id string) bool { return state.CanEditNode(s, id) })
	case Copy:
		return len(ids) > 0 && all(ids, func(id string) bool { _, ok := s.Nodes[id]; return ok })
	case Paste:
		return changeList && m.service.CanPaste(folder)
	case Sort:
		return changeList && len(s.Nodes[folder].Children) > 1
	case AddBookmark, AddFolder:
		return changeList
	case Undo:
		return s.Prefs.CanEdit && m.service.CanUndo()
	case Redo:
		return s.Prefs.CanEdit && m.service.CanRedo()
	case OpenInBrowser:
		return len(collectURLs(s.Nodes, ids)) > 0
	case OpenIncognito:
		return s.Prefs.IncognitoAvailability != state.IncognitoDisabled &&
			len(collectURLs(s.Nodes, ids)) > 0
	case Export:
		return true
	case Import:
		return s.Prefs.CanEdit
	}
	return false
}

func all(ids []string, fn func(string) bool) bool {
	for _, id := range ids {
		if !fn(id) {
			return false
		}
	}
	return true
}

// collectURLs returns the URLs of the bookmarks in ids and, for folders,
// of the bookmarks below them, in tree order without duplicates.
func collectURLs(nodes model.NodeMap, ids []string) []string {
	var urls []string
	seen := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		n, ok := nodes[id]
		if !ok {
			return
		}
		if !n.IsFolder() {
			if n.URL != "" && !seen[n.URL] {
				seen[n.URL] = true
				urls = append(urls, n.URL)
			}
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, id := range ids {
		walk(id)
	}
	return urls
}
