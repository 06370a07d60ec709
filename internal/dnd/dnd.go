// Package dnd implements drag and drop of bookmarks: where a drag may land,
// how the current drop target is indicated, automatic expansion of closed
// folders, and committing the drop through the bookmarks service.
package dnd

import "strings"

// Role is the kind of UI element a drag is over.
type Role int

const (
	// RoleFolderNode is a folder in the sidebar tree.
	RoleFolderNode Role = iota + 1
	// RoleItem is a row of the bookmark list.
	RoleItem
	// RoleList is the bookmark list itself, below its rows.
	RoleList
)

func (r Role) String() string {
	switch r {
	case RoleFolderNode:
		return "folder-node"
	case RoleItem:
		return "item"
	case RoleList:
		return "list"
	}
	return "unknown"
}

// DropPosition is a set of drop positions relative to an element. Legality
// checks combine flags; a DropDestination always holds exactly one.
type DropPosition uint8

const (
	DropNone  DropPosition = 0
	DropAbove DropPosition = 1 << 0
	DropBelow DropPosition = 1 << 1
	DropOn    DropPosition = 1 << 2
)

// Has reports whether all flags of q are set in p.
func (p DropPosition) Has(q DropPosition) bool {
	return q != DropNone && p&q == q
}

func (p DropPosition) String() string {
	if p == DropNone {
		return "none"
	}
	var parts []string
	if p.Has(DropAbove) {
		parts = append(parts, "above")
	}
	if p.Has(DropBelow) {
		parts = append(parts, "below")
	}
	if p.Has(DropOn) {
		parts = append(parts, "on")
	}
	return strings.Join(parts, "|")
}

// Rect is the vertical extent of an element.
type Rect struct {
	Top    float64
	Height float64
}

// Target describes the element under the pointer. PrevID and NextID are the
// IDs of the elements rendered directly above and below it ("" for none).
// For RoleList, ID is ignored and the selected folder is used.
type Target struct {
	Role   Role
	ID     string
	PrevID string
	NextID string
	Rect   Rect
}

// DropDestination is where a drop would land.
type DropDestination struct {
	Target   Target
	Position DropPosition
}

// DropInfo is the parent and insertion index of a drop. A nil Index appends.
type DropInfo struct {
	ParentID string
	Index    *int
}

// Position thresholds, as fractions of the element height.
const (
	aboveThreshold = 0.25
	midThreshold   = 0.5
	belowThreshold = 0.75
)
