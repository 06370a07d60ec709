package state

import (
	"errors"

	"github.com/nikbrunner/bmgr/internal/model"
)

var (
	// ErrInvalidSelectConfig is returned when toggle is combined with range or clear.
	ErrInvalidSelectConfig = errors.New("toggle selection cannot be combined with range or clear")
	// ErrForcedIncognito is returned for the forced availability, which the page never shows.
	ErrForcedIncognito = errors.New("forced incognito availability is not supported")
	// ErrNotDisplayed is returned when a range selection targets a hidden item.
	ErrNotDisplayed = errors.New("item is not in the displayed list")
)

// Action describes one change to the page state. Each variant is a struct;
// reducers switch on the concrete type.
type Action interface {
	// Name returns the action's wire name, used for logging.
	Name() string
	isAction()
}

// CreateBookmark inserts a node (and any nodes beneath it) under a parent.
type CreateBookmark struct {
	ID          string
	ParentID    string
	ParentIndex int
	Nodes       model.NodeMap
}

// EditBookmark changes a node's title or URL.
type EditBookmark struct {
	ID      string
	Changes model.ChangeInfo
}

// MoveBookmark moves a node to Index of ParentID. Index is the position in
// the parent's children after the node was removed from its old position.
type MoveBookmark struct {
	ID          string
	ParentID    string
	Index       int
	OldParentID string
	OldIndex    int
}

// ReorderChildren replaces a folder's children order.
type ReorderChildren struct {
	ID       string
	Children []string
}

// RemoveBookmark removes a node and its descendants.
type RemoveBookmark struct {
	ID          string
	ParentID    string
	Index       int
	Descendants map[string]bool
}

// RefreshNodes replaces the entire NodeMap.
type RefreshNodes struct {
	Nodes model.NodeMap
}

// SelectFolder makes a folder the displayed folder.
type SelectFolder struct {
	ID string
}

// ChangeFolderOpen opens or closes a folder in the sidebar.
type ChangeFolderOpen struct {
	ID   string
	Open bool
}

// ClearSearch leaves search mode.
type ClearSearch struct{}

// StartSearch records a new term; results of the previous search stay.
type StartSearch struct {
	Term string
}

// FinishSearch delivers results for Term.
type FinishSearch struct {
	Term    string
	Results []string
}

// DeselectItems clears the selection.
type DeselectItems struct{}

// SelectItems adds, replaces or toggles selected items.
type SelectItems struct {
	Clear  bool
	Toggle bool
	Anchor string
	Items  []string
}

// UpdateAnchor moves the range anchor.
type UpdateAnchor struct {
	Anchor string
}

// SetIncognitoAvailability records the incognito preference.
type SetIncognitoAvailability struct {
	Value IncognitoAvailability
}

// SetCanEdit records whether bookmarks may be edited.
type SetCanEdit struct {
	Value bool
}

func (CreateBookmark) Name() string           { return "create-bookmark" }
func (EditBookmark) Name() string             { return "edit-bookmark" }
func (MoveBookmark) Name() string             { return "move-bookmark" }
func (ReorderChildren) Name() string          { return "reorder-children" }
func (RemoveBookmark) Name() string           { return "remove-bookmark" }
func (RefreshNodes) Name() string             { return "refresh-nodes" }
func (SelectFolder) Name() string             { return "select-folder" }
func (ChangeFolderOpen) Name() string         { return "change-folder-open" }
func (ClearSearch) Name() string              { return "clear-search" }
func (StartSearch) Name() string              { return "start-search" }
func (FinishSearch) Name() string             { return "finish-search" }
func (DeselectItems) Name() string            { return "deselect-items" }
func (SelectItems) Name() string              { return "select-items" }
func (UpdateAnchor) Name() string             { return "update-anchor" }
func (SetIncognitoAvailability) Name() string { return "set-incognito-availability" }
func (SetCanEdit) Name() string               { return "set-can-edit" }

func (CreateBookmark) isAction()           {}
func (EditBookmark) isAction()             {}
func (MoveBookmark) isAction()             {}
func (ReorderChildren) isAction()          {}
func (RemoveBookmark) isAction()           {}
func (RefreshNodes) isAction()             {}
func (SelectFolder) isAction()             {}
func (ChangeFolderOpen) isAction()         {}
func (ClearSearch) isAction()              {}
func (StartSearch) isAction()              {}
func (FinishSearch) isAction()             {}
func (DeselectItems) isAction()            {}
func (SelectItems) isAction()              {}
func (UpdateAnchor) isAction()             {}
func (SetIncognitoAvailability) isAction() {}
func (SetCanEdit) isAction()               {}

// NewCreateBookmark builds a CreateBookmark from a created tree node.
func NewCreateBookmark(id string, node *model.TreeNode) Action {
	return CreateBookmark{
		ID:          id,
		ParentID:    node.ParentID,
		ParentIndex: node.Index,
		Nodes:       model.NormalizeNodes(node),
	}
}

// NewEditBookmark builds an EditBookmark.
func NewEditBookmark(id string, changes model.ChangeInfo) Action {
	return EditBookmark{ID: id, Changes: changes}
}

// NewMoveBookmark builds a MoveBookmark.
func NewMoveBookmark(id, parentID string, index int, oldParentID string, oldIndex int) Action {
	return MoveBookmark{
		ID:          id,
		ParentID:    parentID,
		Index:       index,
		OldParentID: oldParentID,
		OldIndex:    oldIndex,
	}
}

// NewReorderChildren builds a ReorderChildren.
func NewReorderChildren(id string, childIDs []string) Action {
	return ReorderChildren{ID: id, Children: append([]string{}, childIDs...)}
}

// NewRemoveBookmark builds a RemoveBookmark, computing the descendants to
// delete from the current nodes.
func NewRemoveBookmark(id, parentID string, index int, nodes model.NodeMap) Action {
	return RemoveBookmark{
		ID:          id,
		ParentID:    parentID,
		Index:       index,
		Descendants: nodes.Descendants(id),
	}
}

// NewRefreshNodes builds a RefreshNodes.
func NewRefreshNodes(nodes model.NodeMap) Action {
	return RefreshNodes{Nodes: nodes}
}

// NewSelectFolder returns nil when id is the root, unknown, or a bookmark.
// Callers must check for nil.
func NewSelectFolder(id string, nodes model.NodeMap) Action {
	if nodes != nil {
		n, ok := nodes[id]
		if id == model.RootID || !ok || !n.IsFolder() {
			return nil
		}
	}
	return SelectFolder{ID: id}
}

// NewChangeFolderOpen builds a ChangeFolderOpen.
func NewChangeFolderOpen(id string, open bool) Action {
	return ChangeFolderOpen{ID: id, Open: open}
}

// NewClearSearch builds a ClearSearch.
func NewClearSearch() Action {
	return ClearSearch{}
}

// NewDeselectItems builds a DeselectItems.
func NewDeselectItems() Action {
	return DeselectItems{}
}

// SelectConfig controls how NewSelectItem changes the selection.
type SelectConfig struct {
	Clear  bool // start from an empty selection
	Range  bool // select everything between the anchor and the item
	Toggle bool // flip membership instead of adding
}

// NewSelectItem builds the SelectItems action for a click on id.
func NewSelectItem(id string, s BookmarksPageState, config SelectConfig) (Action, error) {
	if config.Toggle && (config.Range || config.Clear) {
		return nil, ErrInvalidSelectConfig
	}

	anchor := s.Selection.Anchor
	newAnchor := id
	var toSelect []string

	if config.Range && anchor != "" {
		displayed := DisplayedList(s)
		selectedIndex := indexOf(displayed, id)
		if selectedIndex == -1 {
			return nil, ErrNotDisplayed
		}
		anchorIndex := indexOf(displayed, anchor)
		if anchorIndex == -1 {
			anchorIndex = selectedIndex
		}
		// A range selection keeps the anchor it was measured from.
		newAnchor = displayed[anchorIndex]

		start, end := anchorIndex, selectedIndex
		if start > end {
			start, end = end, start
		}
		toSelect = append(toSelect, displayed[start:end+1]...)
	} else {
		toSelect = []string{id}
	}

	return SelectItems{
		Clear:  config.Clear,
		Toggle: config.Toggle,
		Anchor: newAnchor,
		Items:  toSelect,
	}, nil
}

// NewSelectAll replaces the selection with ids. An empty anchor keeps the
// current one.
func NewSelectAll(ids []string, s BookmarksPageState, anchor string) Action {
	if anchor == "" {
		anchor = s.Selection.Anchor
	}
	return SelectItems{
		Clear:  true,
		Toggle: false,
		Anchor: anchor,
		Items:  append([]string{}, ids...),
	}
}

// NewUpdateAnchor builds an UpdateAnchor.
func NewUpdateAnchor(id string) Action {
	return UpdateAnchor{Anchor: id}
}

// NewSetSearchTerm starts a search, or clears it for an empty term.
func NewSetSearchTerm(term string) Action {
	if term == "" {
		return NewClearSearch()
	}
	return StartSearch{Term: term}
}

// NewSetSearchResults delivers results for term.
func NewSetSearchResults(term string, ids []string) Action {
	results := append([]string{}, ids...)
	return FinishSearch{Term: term, Results: results}
}

// NewSetIncognitoAvailability builds a SetIncognitoAvailability.
func NewSetIncognitoAvailability(a IncognitoAvailability) (Action, error) {
	if a == IncognitoForced {
		return nil, ErrForcedIncognito
	}
	return SetIncognitoAvailability{Value: a}, nil
}

// NewSetCanEditBookmarks builds a SetCanEdit.
func NewSetCanEditBookmarks(canEdit bool) Action {
	return SetCanEdit{Value: canEdit}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
