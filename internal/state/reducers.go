package state

import "github.com/nikbrunner/bmgr/internal/model"

// Reduce computes the next state. Every slice is reduced independently from
// the previous state; slices an action does not touch are returned as-is.
func Reduce(s BookmarksPageState, action Action) BookmarksPageState {
	return BookmarksPageState{
		Nodes:           reduceNodes(s.Nodes, action),
		SelectedFolder:  reduceSelectedFolder(s.SelectedFolder, action, s.Nodes),
		FolderOpenState: reduceFolderOpenState(s.FolderOpenState, action, s.Nodes),
		Prefs:           reducePrefs(s.Prefs, action),
		Search:          reduceSearch(s.Search, action),
		Selection:       reduceSelection(s.Selection, action, s.Search),
	}
}

// ============================================================================
// Nodes
// ============================================================================

func reduceNodes(nodes model.NodeMap, action Action) model.NodeMap {
	switch a := action.(type) {
	case CreateBookmark:
		return createBookmark(nodes, a)
	case EditBookmark:
		return editBookmark(nodes, a)
	case MoveBookmark:
		return moveBookmark(nodes, a)
	case RemoveBookmark:
		return removeBookmark(nodes, a)
	case ReorderChildren:
		return reorderChildren(nodes, a)
	case RefreshNodes:
		return a.Nodes
	default:
		return nodes
	}
}

func createBookmark(nodes model.NodeMap, a CreateBookmark) model.NodeMap {
	parent, ok := nodes[a.ParentID]
	if !ok || !parent.IsFolder() {
		return nodes
	}

	result := nodes.Clone()
	for id, n := range a.Nodes {
		result[id] = n
	}
	parent.Children = insertAt(parent.Children, a.ParentIndex, a.ID)
	result[a.ParentID] = parent
	return result
}

func editBookmark(nodes model.NodeMap, a EditBookmark) model.NodeMap {
	node, ok := nodes[a.ID]
	if !ok {
		return nodes
	}

	changed := false
	if a.Changes.Title != nil && *a.Changes.Title != node.Title {
		node.Title = *a.Changes.Title
		changed = true
	}
	// Folders never gain a URL; that would turn them into bookmarks.
	if a.Changes.URL != nil && !node.IsFolder() && *a.Changes.URL != node.URL {
		node.URL = *a.Changes.URL
		changed = true
	}
	if !changed {
		return nodes
	}

	result := nodes.Clone()
	result[a.ID] = node
	return result
}

func moveBookmark(nodes model.NodeMap, a MoveBookmark) model.NodeMap {
	node, ok := nodes[a.ID]
	if !ok {
		return nodes
	}
	oldParent, ok := nodes[a.OldParentID]
	if !ok {
		return nodes
	}
	if _, ok := nodes[a.ParentID]; !ok {
		return nodes
	}

	result := nodes.Clone()

	node.ParentID = a.ParentID
	result[a.ID] = node

	// Remove first. When the parent does not change, the insert below
	// indexes into the post-removal slice.
	oldParentChildren := removeAt(oldParent.Children, a.OldIndex, a.ID)
	oldParent.Children = oldParentChildren
	result[a.OldParentID] = oldParent

	parent := result[a.ParentID]
	parent.Children = insertAt(parent.Children, a.Index, a.ID)
	result[a.ParentID] = parent

	return result
}

func removeBookmark(nodes model.NodeMap, a RemoveBookmark) model.NodeMap {
	result := nodes.Clone()
	if parent, ok := result[a.ParentID]; ok {
		parent.Children = removeAt(parent.Children, a.Index, a.ID)
		result[a.ParentID] = parent
	}
	for id := range a.Descendants {
		delete(result, id)
	}
	return result
}

func reorderChildren(nodes model.NodeMap, a ReorderChildren) model.NodeMap {
	node, ok := nodes[a.ID]
	if !ok || !node.IsFolder() {
		return nodes
	}
	result := nodes.Clone()
	node.Children = append([]string{}, a.Children...)
	result[a.ID] = node
	return result
}

// insertAt returns a copy of ids with id inserted at index (clamped).
func insertAt(ids []string, index int, id string) []string {
	if index < 0 || index > len(ids) {
		index = len(ids)
	}
	result := make([]string, 0, len(ids)+1)
	result = append(result, ids[:index]...)
	result = append(result, id)
	return append(result, ids[index:]...)
}

// removeAt returns a copy of ids without the entry at index. If index does
// not hold id, the first occurrence of id is removed instead.
func removeAt(ids []string, index int, id string) []string {
	if index < 0 || index >= len(ids) || ids[index] != id {
		index = indexOf(ids, id)
	}
	result := make([]string, 0, len(ids))
	if index == -1 {
		return append(result, ids...)
	}
	result = append(result, ids[:index]...)
	return append(result, ids[index+1:]...)
}

// ============================================================================
// Selected folder
// ============================================================================

func reduceSelectedFolder(selected string, action Action, nodes model.NodeMap) string {
	switch a := action.(type) {
	case SelectFolder:
		return a.ID
	case ChangeFolderOpen:
		// Closing an ancestor hides the selected folder, so select the ancestor.
		if !a.Open && selected != "" && nodes.IsAncestorOf(a.ID, selected) {
			return a.ID
		}
		return selected
	case RemoveBookmark:
		// Deleting the selected folder or an ancestor selects the deleted node's parent.
		if selected != "" && nodes.IsAncestorOf(a.ID, selected) {
			if n, ok := nodes[a.ID]; ok && n.ParentID != "" {
				return n.ParentID
			}
			return a.ParentID
		}
		return selected
	case RefreshNodes:
		if n, ok := a.Nodes[selected]; ok && n.IsFolder() {
			return selected
		}
		if root, ok := a.Nodes[model.RootID]; ok && len(root.Children) > 0 {
			return root.Children[0]
		}
		return selected
	default:
		return selected
	}
}

// ============================================================================
// Folder open state
// ============================================================================

func reduceFolderOpenState(open FolderOpenState, action Action, nodes model.NodeMap) FolderOpenState {
	switch a := action.(type) {
	case ChangeFolderOpen:
		result := copyOpenState(open)
		result[a.ID] = a.Open
		return result
	case SelectFolder:
		n, ok := nodes[a.ID]
		if !ok {
			return open
		}
		return openFolderAndAncestors(open, n.ParentID, nodes)
	case MoveBookmark:
		if n, ok := nodes[a.ID]; !ok || !n.IsFolder() {
			return open
		}
		return openFolderAndAncestors(open, a.ParentID, nodes)
	case RemoveBookmark:
		return removeOpenState(open, a.Descendants)
	default:
		return open
	}
}

func openFolderAndAncestors(open FolderOpenState, id string, nodes model.NodeMap) FolderOpenState {
	result := copyOpenState(open)
	for current := id; current != ""; {
		result[current] = true
		n, ok := nodes[current]
		if !ok {
			break
		}
		current = n.ParentID
	}
	return result
}

func removeOpenState(open FolderOpenState, ids map[string]bool) FolderOpenState {
	found := false
	for id := range ids {
		if _, ok := open[id]; ok {
			found = true
			break
		}
	}
	if !found {
		return open
	}
	result := copyOpenState(open)
	for id := range ids {
		delete(result, id)
	}
	return result
}

func copyOpenState(open FolderOpenState) FolderOpenState {
	result := make(FolderOpenState, len(open)+1)
	for k, v := range open {
		result[k] = v
	}
	return result
}

// ============================================================================
// Preferences
// ============================================================================

func reducePrefs(prefs PreferencesState, action Action) PreferencesState {
	switch a := action.(type) {
	case SetIncognitoAvailability:
		prefs.IncognitoAvailability = a.Value
		return prefs
	case SetCanEdit:
		prefs.CanEdit = a.Value
		return prefs
	default:
		return prefs
	}
}

// ============================================================================
// Search
// ============================================================================

func reduceSearch(search SearchState, action Action) SearchState {
	switch a := action.(type) {
	case StartSearch:
		return SearchState{Term: a.Term, InProgress: true, Results: search.Results}
	case SelectFolder, ClearSearch:
		return SearchState{}
	case FinishSearch:
		// Results for an older term arrive late; keep the newer search.
		if a.Term != search.Term {
			return search
		}
		results := a.Results
		if results == nil {
			results = []string{}
		}
		return SearchState{Term: search.Term, InProgress: false, Results: results}
	case RemoveBookmark:
		return removeDeletedResults(search, a.Descendants)
	default:
		return search
	}
}

func removeDeletedResults(search SearchState, deleted map[string]bool) SearchState {
	if search.Results == nil {
		return search
	}
	results := make([]string, 0, len(search.Results))
	for _, id := range search.Results {
		if !deleted[id] {
			results = append(results, id)
		}
	}
	search.Results = results
	return search
}

// ============================================================================
// Selection
// ============================================================================

func reduceSelection(selection SelectionState, action Action, search SearchState) SelectionState {
	switch a := action.(type) {
	case ClearSearch, SelectFolder, DeselectItems:
		return deselectAll()
	case FinishSearch:
		if a.Term != search.Term {
			return selection
		}
		return deselectAll()
	case SelectItems:
		return selectItems(selection, a)
	case RemoveBookmark:
		return deselectItems(selection, a.Descendants)
	case MoveBookmark:
		// Items moved to another folder are no longer on screen.
		if a.ParentID != a.OldParentID && selection.Items[a.ID] {
			return deselectItems(selection, map[string]bool{a.ID: true})
		}
		return selection
	case UpdateAnchor:
		selection.Anchor = a.Anchor
		return selection
	default:
		return selection
	}
}

func selectItems(selection SelectionState, a SelectItems) SelectionState {
	items := map[string]bool{}
	if !a.Clear {
		for id := range selection.Items {
			items[id] = true
		}
	}
	for _, id := range a.Items {
		add := true
		if a.Toggle {
			add = !items[id]
		}
		if add {
			items[id] = true
		} else {
			delete(items, id)
		}
	}
	return SelectionState{Items: items, Anchor: a.Anchor}
}

func deselectAll() SelectionState {
	return SelectionState{Items: map[string]bool{}}
}

func deselectItems(selection SelectionState, deleted map[string]bool) SelectionState {
	items := map[string]bool{}
	for id := range selection.Items {
		if !deleted[id] {
			items[id] = true
		}
	}
	anchor := selection.Anchor
	if anchor == "" || deleted[anchor] {
		anchor = ""
	}
	return SelectionState{Items: items, Anchor: anchor}
}
