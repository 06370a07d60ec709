package tui

import (
	"github.com/nikbrunner/bmgr/internal/dnd"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/state"
)

// FolderRow is one visible folder of the sidebar tree.
type FolderRow struct {
	ID         string
	ParentID   string
	Title      string
	Depth      int
	Open       bool
	Expandable bool // has child folders
}

// Item is one row of the list pane.
type Item struct {
	Node model.BookmarkNode
}

// ID returns the node ID.
func (i Item) ID() string {
	return i.Node.ID
}

// Title returns a display title, falling back to the URL.
func (i Item) Title() string {
	if i.Node.Title == "" && !i.Node.IsFolder() {
		return i.Node.URL
	}
	return i.Node.Title
}

// IsFolder returns true if this item is a folder.
func (i Item) IsFolder() bool {
	return i.Node.IsFolder()
}

// sidebarRows flattens the folder tree below the root, descending only into
// open folders.
func sidebarRows(s state.BookmarksPageState) []FolderRow {
	var rows []FolderRow
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, ok := s.Nodes[id]
		if !ok || !n.IsFolder() {
			return
		}
		open := state.IsFolderOpen(s, id)
		rows = append(rows, FolderRow{
			ID:         id,
			ParentID:   n.ParentID,
			Title:      n.Title,
			Depth:      depth,
			Open:       open,
			Expandable: s.Nodes.HasChildFolders(id),
		})
		if !open {
			return
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	if root, ok := s.Nodes[model.RootID]; ok {
		for _, id := range root.Children {
			walk(id, 0)
		}
	}
	return rows
}

func rowIndex(rows []FolderRow, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// listItems returns the displayed list.
func listItems(s state.BookmarksPageState) []Item {
	ids := state.DisplayedList(s)
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.Nodes[id]; ok {
			items = append(items, Item{Node: n})
		}
	}
	return items
}

func itemIndex(items []Item, id string) int {
	for i, it := range items {
		if it.ID() == id {
			return i
		}
	}
	return -1
}

// sidebarTarget describes rows[i] as a drag target. Prev and next are the
// neighbouring folders in the same parent.
func sidebarTarget(s state.BookmarksPageState, rows []FolderRow, i int) dnd.Target {
	r := rows[i]
	t := dnd.Target{
		Role: dnd.RoleFolderNode,
		ID:   r.ID,
		Rect: dnd.Rect{Top: float64(i), Height: 1},
	}
	var folders []string
	for _, id := range s.Nodes[r.ParentID].Children {
		if s.Nodes.IsFolder(id) {
			folders = append(folders, id)
		}
	}
	for j, id := range folders {
		if id != r.ID {
			continue
		}
		if j > 0 {
			t.PrevID = folders[j-1]
		}
		if j < len(folders)-1 {
			t.NextID = folders[j+1]
		}
	}
	return t
}

// listTarget describes list row i as a drag target. Rows past the end are
// the list itself.
func listTarget(items []Item, i int) dnd.Target {
	if i < 0 || i >= len(items) {
		return dnd.Target{Role: dnd.RoleList, Rect: dnd.Rect{Top: float64(len(items)), Height: 1}}
	}
	t := dnd.Target{
		Role: dnd.RoleItem,
		ID:   items[i].ID(),
		Rect: dnd.Rect{Top: float64(i), Height: 1},
	}
	if i > 0 {
		t.PrevID = items[i-1].ID()
	}
	if i < len(items)-1 {
		t.NextID = items[i+1].ID()
	}
	return t
}
