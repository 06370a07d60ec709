package model

// NodeMap maps node IDs to nodes and represents the whole bookmark forest,
// including the synthetic root.
type NodeMap map[string]BookmarkNode

// Clone returns a shallow copy of the map. Nodes are values, but their
// Children slices are shared and must be copied before modification.
func (m NodeMap) Clone() NodeMap {
	result := make(NodeMap, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// Get finds a node by ID.
func (m NodeMap) Get(id string) (BookmarkNode, bool) {
	n, ok := m[id]
	return n, ok
}

// IsFolder returns true if id exists and is a folder.
func (m NodeMap) IsFolder(id string) bool {
	n, ok := m[id]
	return ok && n.IsFolder()
}

// ChildIndex returns the index of id within its parent's children, or -1.
func (m NodeMap) ChildIndex(id string) int {
	n, ok := m[id]
	if !ok || n.ParentID == "" {
		return -1
	}
	parent, ok := m[n.ParentID]
	if !ok {
		return -1
	}
	return indexOf(parent.Children, id)
}

// HasChildFolders returns true if the folder has at least one folder child.
func (m NodeMap) HasChildFolders(id string) bool {
	n, ok := m[id]
	if !ok {
		return false
	}
	for _, child := range n.Children {
		if m.IsFolder(child) {
			return true
		}
	}
	return false
}

// Descendants returns id and the IDs of everything beneath it.
func (m NodeMap) Descendants(id string) map[string]bool {
	result := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := m[current]
		if !ok {
			continue
		}
		result[current] = true
		stack = append(stack, n.Children...)
	}
	return result
}

// IsAncestorOf walks up from childID and reports whether ancestorID is
// reached before the root. A node counts as its own ancestor.
func (m NodeMap) IsAncestorOf(ancestorID, childID string) bool {
	current := childID
	for current != "" {
		if current == ancestorID {
			return true
		}
		n, ok := m[current]
		if !ok {
			return false
		}
		current = n.ParentID
	}
	return false
}

// Depth returns the depth of a node: children of the root have depth 0.
func (m NodeMap) Depth(id string) int {
	depth := -1
	current := id
	for {
		n, ok := m[current]
		if !ok || n.ParentID == "" {
			return depth
		}
		depth++
		current = n.ParentID
	}
}

// Path returns the titles from the top-level folder down to id.
func (m NodeMap) Path(id string) []string {
	var titles []string
	current := id
	for current != "" && current != RootID {
		n, ok := m[current]
		if !ok {
			break
		}
		titles = append([]string{n.Title}, titles...)
		current = n.ParentID
	}
	return titles
}

// Tree rebuilds the nested TreeNode for id.
func (m NodeMap) Tree(id string) *TreeNode {
	n, ok := m[id]
	if !ok {
		return nil
	}
	t := &TreeNode{
		ID:                n.ID,
		ParentID:          n.ParentID,
		Index:             m.ChildIndex(id),
		URL:               n.URL,
		Title:             n.Title,
		DateAdded:         n.DateAdded,
		DateGroupModified: n.DateGroupModified,
		Unmodifiable:      n.Unmodifiable,
	}
	if t.Index < 0 {
		t.Index = 0
	}
	if n.IsFolder() {
		t.Folder = true
		t.Children = make([]*TreeNode, 0, len(n.Children))
		for _, c := range n.Children {
			if child := m.Tree(c); child != nil {
				t.Children = append(t.Children, child)
			}
		}
	}
	return t
}

// CheckConsistency verifies that every non-root node is listed exactly once
// in its parent's children and that every child points back to its parent.
// Returns the offending node ID, or "" when consistent.
func (m NodeMap) CheckConsistency() string {
	for id, n := range m {
		if n.ParentID == "" {
			continue
		}
		parent, ok := m[n.ParentID]
		if !ok {
			return id
		}
		count := 0
		for _, c := range parent.Children {
			if c == id {
				count++
			}
		}
		if count != 1 {
			return id
		}
	}
	for id, n := range m {
		for _, c := range n.Children {
			child, ok := m[c]
			if !ok || child.ParentID != id {
				return c
			}
		}
	}
	return ""
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
