// Package state holds the bookmarks page state, the actions that describe
// changes to it, the reducers that apply them, and the Store that owns it.
package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nikbrunner/bmgr/internal/model"
)

// FolderOpenByDefaultDepth is the deepest folder depth that starts open when
// the user has not toggled it.
const FolderOpenByDefaultDepth = 0

// IncognitoAvailability mirrors the browser policy for incognito windows.
type IncognitoAvailability string

const (
	IncognitoEnabled  IncognitoAvailability = "enabled"
	IncognitoDisabled IncognitoAvailability = "disabled"
	IncognitoForced   IncognitoAvailability = "forced"
)

// ParseIncognitoAvailability converts a config string to an availability.
func ParseIncognitoAvailability(s string) (IncognitoAvailability, error) {
	switch a := IncognitoAvailability(s); a {
	case IncognitoEnabled, IncognitoDisabled, IncognitoForced:
		return a, nil
	case "":
		return IncognitoEnabled, nil
	}
	return "", fmt.Errorf("unknown incognito availability %q", s)
}

// SelectionState holds the selected item IDs and the range anchor.
type SelectionState struct {
	Items  map[string]bool
	Anchor string // "" = no anchor
}

// SearchState holds the search term and its results.
// Results == nil means no search was performed; an empty slice means the
// search ran and matched nothing.
type SearchState struct {
	Term       string
	InProgress bool
	Results    []string
}

// FolderOpenState records explicit open/closed choices per folder.
type FolderOpenState map[string]bool

type folderOpenEntry [2]any

// MarshalJSON encodes the state as an array of [id, open] pairs.
func (f FolderOpenState) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]folderOpenEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, folderOpenEntry{id, f[id]})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes an array of [id, open] pairs.
func (f *FolderOpenState) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	result := FolderOpenState{}
	for _, raw := range entries {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("folder open entry: expected 2 values, got %d", len(pair))
		}
		var id string
		var open bool
		if err := json.Unmarshal(pair[0], &id); err != nil {
			return err
		}
		if err := json.Unmarshal(pair[1], &open); err != nil {
			return err
		}
		result[id] = open
	}
	*f = result
	return nil
}

// PreferencesState holds browser-pushed preferences.
type PreferencesState struct {
	CanEdit               bool
	IncognitoAvailability IncognitoAvailability
}

// BookmarksPageState is the whole page state. It is never mutated in place;
// reducers return a new value sharing unchanged slices.
type BookmarksPageState struct {
	Nodes           model.NodeMap
	SelectedFolder  string
	FolderOpenState FolderOpenState
	Prefs           PreferencesState
	Search          SearchState
	Selection       SelectionState
}

// CreateEmptyState returns the state used before the tree is loaded.
func CreateEmptyState() BookmarksPageState {
	return BookmarksPageState{
		Nodes:           model.NodeMap{},
		SelectedFolder:  model.BookmarksBarID,
		FolderOpenState: FolderOpenState{},
		Prefs: PreferencesState{
			CanEdit:               true,
			IncognitoAvailability: IncognitoEnabled,
		},
		Search: SearchState{},
		Selection: SelectionState{
			Items: map[string]bool{},
		},
	}
}

// NewInitialState builds the first state from a tree snapshot, selecting the
// first top-level folder.
func NewInitialState(tree *model.TreeNode, openState FolderOpenState) BookmarksPageState {
	s := CreateEmptyState()
	s.Nodes = model.NormalizeNodes(tree)
	if root, ok := s.Nodes[model.RootID]; ok && len(root.Children) > 0 {
		s.SelectedFolder = root.Children[0]
	}
	if openState != nil {
		s.FolderOpenState = openState
	}
	return s
}

// IsShowingSearch returns true when search results replace the folder list.
func IsShowingSearch(s BookmarksPageState) bool {
	return s.Search.Results != nil
}

// DisplayedList returns the IDs shown in the list pane.
func DisplayedList(s BookmarksPageState) []string {
	if IsShowingSearch(s) {
		return s.Search.Results
	}
	folder, ok := s.Nodes[s.SelectedFolder]
	if !ok {
		return nil
	}
	return folder.Children
}

// SelectedIDs returns the selected items in displayed order, followed by any
// selected items that are not displayed.
func SelectedIDs(s BookmarksPageState) []string {
	var ids []string
	seen := map[string]bool{}
	for _, id := range DisplayedList(s) {
		if s.Selection.Items[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range s.Selection.Items {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

// IsRootOrChildOfRoot returns true for the synthetic root and the permanent folders.
func IsRootOrChildOfRoot(s BookmarksPageState, id string) bool {
	if id == model.RootID {
		return true
	}
	n, ok := s.Nodes[id]
	return ok && n.ParentID == model.RootID
}

// CanEditNode reports whether a node may be edited, moved or deleted.
func CanEditNode(s BookmarksPageState, id string) bool {
	n, ok := s.Nodes[id]
	if !ok {
		return false
	}
	return !IsRootOrChildOfRoot(s, id) && !n.Unmodifiable && s.Prefs.CanEdit
}

// CanReorderChildren reports whether the children of a node may change.
func CanReorderChildren(s BookmarksPageState, id string) bool {
	n, ok := s.Nodes[id]
	if !ok {
		return false
	}
	return id != model.RootID && !n.Unmodifiable && s.Prefs.CanEdit
}

// IsFolderOpen applies the explicit open state, falling back to depth.
func IsFolderOpen(s BookmarksPageState, id string) bool {
	if open, ok := s.FolderOpenState[id]; ok {
		return open
	}
	return s.Nodes.Depth(id) <= FolderOpenByDefaultDepth
}
