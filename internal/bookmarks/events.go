package bookmarks

import "github.com/nikbrunner/bmgr/internal/model"

// RemoveInfo describes where a removed node used to live.
type RemoveInfo struct {
	ParentID string
	Index    int
	Node     *model.TreeNode // the removed subtree
}

// MoveInfo describes a move. Index is the final position in ParentID.
type MoveInfo struct {
	ParentID    string
	Index       int
	OldParentID string
	OldIndex    int
}

// ReorderInfo carries the new child order of a folder.
type ReorderInfo struct {
	ChildIDs []string
}

// Observer receives bookmark change events. Events are delivered after the
// change is committed, in the order the changes happened, on the goroutine
// that made the change. Observers may read from the Service but must not
// mutate it.
type Observer interface {
	OnCreated(id string, node *model.TreeNode)
	OnRemoved(id string, info RemoveInfo)
	OnChanged(id string, info model.ChangeInfo)
	OnMoved(id string, info MoveInfo)
	OnChildrenReordered(id string, info ReorderInfo)
	OnImportBegan()
	OnImportEnded()
}

// DragData describes the nodes of an active drag.
type DragData struct {
	Elements    []*model.TreeNode
	SameProfile bool
	// DragIndex is the element the drag was started from.
	DragIndex int
}

// DragObserver is told when a drag enters or leaves the manager.
type DragObserver interface {
	OnDragEnter(data DragData)
	OnDragLeave()
}

type event struct {
	notify     func(Observer)
	notifyDrag func(DragObserver)
}

func (s *Service) emit(fn func(Observer)) {
	s.events = append(s.events, event{notify: fn})
}

func (s *Service) emitDrag(fn func(DragObserver)) {
	s.events = append(s.events, event{notifyDrag: fn})
}

// flush takes the queued events and observer lists. Called with s.mu held;
// the returned func delivers outside the lock so observers may call back in.
func (s *Service) flush() func() {
	events := s.events
	s.events = nil
	if len(events) == 0 {
		return func() {}
	}
	observers := append([]Observer(nil), s.observers...)
	dragObservers := append([]DragObserver(nil), s.dragObservers...)

	return func() {
		for _, e := range events {
			if e.notify != nil {
				for _, o := range observers {
					e.notify(o)
				}
			}
			if e.notifyDrag != nil {
				for _, o := range dragObservers {
					e.notifyDrag(o)
				}
			}
		}
	}
}
