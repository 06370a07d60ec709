package dnd

import (
	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/model"
)

// dragInfo is the normalized description of what is being dragged.
type dragInfo struct {
	elements    []model.BookmarkNode
	sameProfile bool
	valid       bool
}

func newDragInfo(data bookmarks.DragData) dragInfo {
	info := dragInfo{sameProfile: data.SameProfile, valid: true}
	for _, t := range data.Elements {
		info.elements = append(info.elements, model.NormalizeNode(t))
	}
	return info
}

func (d dragInfo) isDraggingFolders() bool {
	for _, e := range d.elements {
		if e.IsFolder() {
			return true
		}
	}
	return false
}

// isDraggingBookmark reports whether id is one of the dragged nodes.
func (d dragInfo) isDraggingBookmark(id string) bool {
	if !d.sameProfile {
		return false
	}
	for _, e := range d.elements {
		if e.ID == id {
			return true
		}
	}
	return false
}

// isDraggingChildBookmark reports whether a dragged node already lives in folderID.
func (d dragInfo) isDraggingChildBookmark(folderID string) bool {
	if !d.sameProfile {
		return false
	}
	for _, e := range d.elements {
		if e.ParentID == folderID {
			return true
		}
	}
	return false
}

// isDraggingFolderToDescendant reports whether a dragged node is an ancestor
// of id.
func (d dragInfo) isDraggingFolderToDescendant(id string, nodes model.NodeMap) bool {
	if !d.sameProfile {
		return false
	}
	parents := map[string]bool{}
	n, ok := nodes[id]
	for ok && n.ParentID != "" {
		parents[n.ParentID] = true
		n, ok = nodes[n.ParentID]
	}
	for _, e := range d.elements {
		if parents[e.ID] {
			return true
		}
	}
	return false
}
