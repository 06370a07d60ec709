package bookmarks

import (
	"fmt"

	"github.com/nikbrunner/bmgr/internal/model"
)

// op applies one primitive change to the tree and returns the op that
// reverts it. Ops run with s.mu held and queue their own events.
type op func(s *Service) (op, error)

// insertOp adds a subtree at index of parentID. An out-of-range index appends.
func insertOp(parentID string, index int, tree *model.TreeNode) op {
	return func(s *Service) (op, error) {
		parent, ok := s.nodes[parentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
		}
		if !parent.IsFolder() {
			return nil, fmt.Errorf("%w: %s", ErrNotFolder, parentID)
		}
		if index < 0 || index > len(parent.Children) {
			index = len(parent.Children)
		}

		t := model.CloneTree(tree)
		t.ParentID = parentID
		t.Index = index
		reparent(t)

		added := model.NormalizeNodes(t)
		for id := range added {
			if _, exists := s.nodes[id]; exists {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
			}
		}
		for id, n := range added {
			s.nodes[id] = n
		}

		parent.Children = insertID(parent.Children, index, t.ID)
		parent.DateGroupModified = s.now()
		s.nodes[parentID] = parent

		created := model.CloneTree(t)
		s.emit(func(o Observer) { o.OnCreated(created.ID, created) })
		return removeOp(t.ID), nil
	}
}

// removeOp deletes a node and everything beneath it.
func removeOp(id string) op {
	return func(s *Service) (op, error) {
		n, ok := s.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		parent, ok := s.nodes[n.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPermanentNode, id)
		}
		index := indexOf(parent.Children, id)
		subtree := s.nodes.Tree(id)

		for d := range s.nodes.Descendants(id) {
			delete(s.nodes, d)
		}
		parent.Children = removeIndex(parent.Children, index)
		parent.DateGroupModified = s.now()
		s.nodes[n.ParentID] = parent

		info := RemoveInfo{ParentID: n.ParentID, Index: index, Node: model.CloneTree(subtree)}
		s.emit(func(o Observer) { o.OnRemoved(id, info) })
		return insertOp(n.ParentID, index, subtree), nil
	}
}

// updateOp applies the non-nil fields of changes.
func updateOp(id string, changes model.ChangeInfo) op {
	return func(s *Service) (op, error) {
		n, ok := s.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var undo model.ChangeInfo
		if changes.Title != nil {
			old := n.Title
			undo.Title = &old
			n.Title = *changes.Title
		}
		if changes.URL != nil && !n.IsFolder() {
			old := n.URL
			undo.URL = &old
			n.URL = *changes.URL
		}
		s.nodes[id] = n

		s.emit(func(o Observer) { o.OnChanged(id, changes) })
		return updateOp(id, undo), nil
	}
}

// moveOp moves id so that it ends up at index of parentID.
func moveOp(id, parentID string, index int) op {
	return func(s *Service) (op, error) {
		n, ok := s.nodes[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if _, ok := s.nodes[parentID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
		}

		oldParentID := n.ParentID
		oldParent := s.nodes[oldParentID]
		oldIndex := indexOf(oldParent.Children, id)
		oldParent.Children = removeIndex(oldParent.Children, oldIndex)
		oldParent.DateGroupModified = s.now()
		s.nodes[oldParentID] = oldParent

		parent := s.nodes[parentID]
		if index < 0 || index > len(parent.Children) {
			index = len(parent.Children)
		}
		parent.Children = insertID(parent.Children, index, id)
		parent.DateGroupModified = s.now()
		s.nodes[parentID] = parent

		n.ParentID = parentID
		s.nodes[id] = n

		info := MoveInfo{ParentID: parentID, Index: index, OldParentID: oldParentID, OldIndex: oldIndex}
		s.emit(func(o Observer) { o.OnMoved(id, info) })
		return moveOp(id, oldParentID, oldIndex), nil
	}
}

// reorderOp replaces the child order of parentID.
func reorderOp(parentID string, children []string) op {
	return func(s *Service) (op, error) {
		parent, ok := s.nodes[parentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
		}
		old := parent.Children
		parent.Children = append([]string{}, children...)
		s.nodes[parentID] = parent

		info := ReorderInfo{ChildIDs: append([]string{}, children...)}
		s.emit(func(o Observer) { o.OnChildrenReordered(parentID, info) })
		return reorderOp(parentID, old), nil
	}
}

// reparent fixes ParentID and Index below t.
func reparent(t *model.TreeNode) {
	for i, c := range t.Children {
		c.ParentID = t.ID
		c.Index = i
		reparent(c)
	}
}

// freshIDs assigns new IDs to every node of t.
func freshIDs(t *model.TreeNode) {
	t.ID = model.GenerateID()
	for _, c := range t.Children {
		freshIDs(c)
	}
	reparent(t)
}

func insertID(ids []string, index int, id string) []string {
	result := make([]string, 0, len(ids)+1)
	result = append(result, ids[:index]...)
	result = append(result, id)
	return append(result, ids[index:]...)
}

func removeIndex(ids []string, index int) []string {
	if index < 0 || index >= len(ids) {
		return append([]string{}, ids...)
	}
	result := make([]string, 0, len(ids)-1)
	result = append(result, ids[:index]...)
	return append(result, ids[index+1:]...)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
