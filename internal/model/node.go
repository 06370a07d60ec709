package model

import "time"

// Permanent node IDs. The root is synthetic and never shown.
const (
	RootID         = "0"
	BookmarksBarID = "1"
	OtherID        = "2"
	MobileID       = "3"
)

// BookmarkNode is one bookmark or folder in the NodeMap.
// Folders have non-nil Children and no URL; bookmarks have a URL and nil Children.
type BookmarkNode struct {
	ID                string    `json:"id"`
	ParentID          string    `json:"parentId,omitempty"` // "" = root
	URL               string    `json:"url,omitempty"`
	Title             string    `json:"title"`
	DateAdded         time.Time `json:"dateAdded"`
	DateGroupModified time.Time `json:"dateGroupModified"`
	Unmodifiable      bool      `json:"unmodifiable,omitempty"`
	Children          []string  `json:"children,omitempty"`
}

// IsFolder returns true if the node is a folder.
func (n BookmarkNode) IsFolder() bool {
	return n.Children != nil
}

// TreeNode is a nested snapshot of a subtree, as handed out by the bookmarks service.
type TreeNode struct {
	ID                string      `json:"id"`
	ParentID          string      `json:"parentId,omitempty"`
	Index             int         `json:"index"`
	URL               string      `json:"url,omitempty"`
	Title             string      `json:"title"`
	DateAdded         time.Time   `json:"dateAdded"`
	DateGroupModified time.Time   `json:"dateGroupModified"`
	Unmodifiable      bool        `json:"unmodifiable,omitempty"`
	Children          []*TreeNode `json:"children,omitempty"`
	Folder            bool        `json:"folder,omitempty"`
}

// IsFolder returns true if the tree node is a folder.
func (t *TreeNode) IsFolder() bool {
	return t.Folder || t.Children != nil
}

// NewFolderParams holds parameters for creating a new folder TreeNode.
type NewFolderParams struct {
	Title    string
	ParentID string
}

// NewFolder creates an empty folder TreeNode with a generated ID.
func NewFolder(params NewFolderParams) *TreeNode {
	now := time.Now()
	return &TreeNode{
		ID:                GenerateID(),
		ParentID:          params.ParentID,
		Title:             params.Title,
		DateAdded:         now,
		DateGroupModified: now,
		Children:          []*TreeNode{},
		Folder:            true,
	}
}

// NewBookmarkParams holds parameters for creating a new bookmark TreeNode.
type NewBookmarkParams struct {
	Title    string
	URL      string
	ParentID string
}

// NewBookmark creates a bookmark TreeNode with a generated ID and timestamp.
func NewBookmark(params NewBookmarkParams) *TreeNode {
	return &TreeNode{
		ID:        GenerateID(),
		ParentID:  params.ParentID,
		Title:     params.Title,
		URL:       params.URL,
		DateAdded: time.Now(),
	}
}

// NormalizeNode converts a single TreeNode into a BookmarkNode.
// Only the IDs of the children are kept.
func NormalizeNode(t *TreeNode) BookmarkNode {
	node := BookmarkNode{
		ID:                t.ID,
		ParentID:          t.ParentID,
		URL:               t.URL,
		Title:             t.Title,
		DateAdded:         t.DateAdded,
		DateGroupModified: t.DateGroupModified,
		Unmodifiable:      t.Unmodifiable,
	}
	if t.IsFolder() {
		node.URL = ""
		node.Children = make([]string, 0, len(t.Children))
		for _, c := range t.Children {
			node.Children = append(node.Children, c.ID)
		}
	}
	return node
}

// NormalizeNodes flattens a tree into a NodeMap keyed by ID.
func NormalizeNodes(root *TreeNode) NodeMap {
	nodes := NodeMap{}
	var walk func(*TreeNode)
	walk = func(t *TreeNode) {
		nodes[t.ID] = NormalizeNode(t)
		for _, c := range t.Children {
			walk(c)
		}
	}
	walk(root)
	return nodes
}

// CloneTree returns a deep copy of t.
func CloneTree(t *TreeNode) *TreeNode {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Children != nil {
		clone.Children = make([]*TreeNode, len(t.Children))
		for i, c := range t.Children {
			clone.Children[i] = CloneTree(c)
		}
	}
	return &clone
}

// NewEmptyTree returns a root with the three permanent folders.
func NewEmptyTree() *TreeNode {
	now := time.Now()
	permanent := func(id, title string, index int) *TreeNode {
		return &TreeNode{
			ID:                id,
			ParentID:          RootID,
			Index:             index,
			Title:             title,
			DateAdded:         now,
			DateGroupModified: now,
			Children:          []*TreeNode{},
			Folder:            true,
		}
	}
	return &TreeNode{
		ID:     RootID,
		Folder: true,
		Children: []*TreeNode{
			permanent(BookmarksBarID, "Bookmarks bar", 0),
			permanent(OtherID, "Other bookmarks", 1),
			permanent(MobileID, "Mobile bookmarks", 2),
		},
	}
}

// IsPermanentID returns true for the root and its direct children.
func IsPermanentID(id string) bool {
	switch id {
	case RootID, BookmarksBarID, OtherID, MobileID:
		return true
	}
	return false
}
