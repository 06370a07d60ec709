package bookmarks

import (
	"fmt"

	"github.com/nikbrunner/bmgr/internal/model"
)

// StartDrag begins dragging ids. Drag observers get OnDragEnter with the
// dragged subtrees.
func (s *Service) StartDrag(ids []string, dragIndex int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	data := DragData{SameProfile: true, DragIndex: dragIndex}
	for _, id := range ids {
		if _, err := s.checkEditable(id); err != nil {
			s.mu.Unlock()
			return err
		}
		data.Elements = append(data.Elements, s.nodes.Tree(id))
	}
	if len(data.Elements) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: empty drag", ErrNoDrag)
	}
	if dragIndex < 0 || dragIndex >= len(data.Elements) {
		data.DragIndex = 0
	}

	s.drag = &data
	entered := cloneDragData(data)
	s.emitDrag(func(o DragObserver) { o.OnDragEnter(entered) })
	s.handoff()()
	return nil
}

// Dragging returns the IDs being dragged, or nil.
func (s *Service) Dragging() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return nil
	}
	ids := make([]string, len(s.drag.Elements))
	for i, t := range s.drag.Elements {
		ids[i] = t.ID
	}
	return ids
}

// Drop moves the dragged nodes into parentID before the child at index
// (nil appends) and ends the drag.
func (s *Service) Drop(parentID string, index *int) error {
	return s.mutate(func(tx *txn) error {
		if s.drag == nil {
			return ErrNoDrag
		}
		ids := make([]string, len(s.drag.Elements))
		for i, t := range s.drag.Elements {
			ids[i] = t.ID
		}
		s.endDragLocked()
		return s.moveNodes(tx, ids, parentID, index)
	})
}

// EndDrag cancels the drag without moving anything.
func (s *Service) EndDrag() {
	s.mu.Lock()
	s.endDragLocked()
	s.handoff()()
}

func (s *Service) endDragLocked() {
	if s.drag == nil {
		return
	}
	s.drag = nil
	s.emitDrag(func(o DragObserver) { o.OnDragLeave() })
}

func cloneDragData(d DragData) DragData {
	out := d
	out.Elements = make([]*model.TreeNode, len(d.Elements))
	for i, t := range d.Elements {
		out.Elements[i] = model.CloneTree(t)
	}
	return out
}
