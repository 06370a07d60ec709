package dnd

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/timer"
)

// Store is the part of state.Store the manager uses.
type Store interface {
	State() state.BookmarksPageState
	Dispatch(state.Action)
}

// Service is the drag lifecycle of the bookmarks service.
type Service interface {
	StartDrag(ids []string, dragIndex int) error
	Drop(parentID string, index *int) error
	EndDrag()
	AddDragObserver(bookmarks.DragObserver)
	RemoveDragObserver(bookmarks.DragObserver)
}

// Tracker highlights items once the changes of a drop have settled.
type Tracker interface {
	TrackUpdatedItems()
	HighlightUpdatedItems(ctx context.Context) error
}

// Params configures a Manager.
type Params struct {
	Store   Store
	Service Service
	// Tracker is optional; without it drops are not highlighted.
	Tracker        Tracker
	Scheduler      timer.Scheduler
	ExpandDelay    time.Duration
	IndicatorDelay time.Duration
	// OnIndicator is called when the drop indicator changes.
	OnIndicator func(Indicator)
	Logger      logrus.FieldLogger
}

// Manager is the drag and drop state machine. It implements
// bookmarks.DragObserver to learn what is being dragged.
type Manager struct {
	store   Store
	service Service
	tracker Tracker
	log     logrus.FieldLogger

	expander  *AutoExpander
	indicator *DropIndicator

	mu   sync.Mutex
	drag dragInfo
	dest *DropDestination
}

// New creates a Manager. Call Start to receive drag data.
func New(params Params) *Manager {
	return &Manager{
		store:     params.Store,
		service:   params.Service,
		tracker:   params.Tracker,
		log:       logging.OrDiscard(params.Logger).WithField("component", "dnd"),
		expander:  NewAutoExpander(params.Scheduler, params.ExpandDelay, params.Store.Dispatch),
		indicator: NewDropIndicator(params.Scheduler, params.IndicatorDelay, params.OnIndicator),
	}
}

// Start subscribes to drag enter/leave from the service.
func (m *Manager) Start() {
	m.service.AddDragObserver(m)
}

// Close unsubscribes and drops any drag state.
func (m *Manager) Close() {
	m.service.RemoveDragObserver(m)
	m.expander.Reset()
	m.mu.Lock()
	m.drag = dragInfo{}
	m.dest = nil
	m.mu.Unlock()
}

// OnDragEnter implements bookmarks.DragObserver.
func (m *Manager) OnDragEnter(data bookmarks.DragData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drag = newDragInfo(data)
}

// OnDragLeave implements bookmarks.DragObserver.
func (m *Manager) OnDragLeave() {
	m.mu.Lock()
	m.drag = dragInfo{}
	m.dest = nil
	m.mu.Unlock()
	m.indicator.Finish()
}

// IsDragging reports whether drag data is present.
func (m *Manager) IsDragging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drag.valid
}

// Destination returns the current drop destination, or nil.
func (m *Manager) Destination() *DropDestination {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dest == nil {
		return nil
	}
	d := *m.dest
	return &d
}

// Indicator returns the displayed drop indicator.
func (m *Manager) Indicator() Indicator {
	return m.indicator.Current()
}

// DragStart starts dragging from target. Dragging an unselected item, or any
// sidebar folder, replaces the selection with just that node; dragging a
// selected item drags the whole selection in display order. It returns false
// when nothing may be dragged.
func (m *Manager) DragStart(target Target) bool {
	if target.Role == RoleList {
		return false
	}

	ids, ok := m.calculateDragData(target)
	if !ok {
		m.DragEnd()
		return false
	}

	dragged := ids
	if target.Role == RoleItem {
		dragged = orderByDisplay(ids, state.DisplayedList(m.store.State()))
	}
	dragIndex := indexOf(dragged, target.ID)
	if dragIndex < 0 {
		m.DragEnd()
		return false
	}

	if err := m.service.StartDrag(dragged, dragIndex); err != nil {
		m.log.WithError(err).Warn("drag start rejected")
		m.DragEnd()
		return false
	}
	m.log.WithField("ids", dragged).Debug("drag started")
	return true
}

// calculateDragData applies the selection policy and returns the dragged IDs.
func (m *Manager) calculateDragData(target Target) ([]string, bool) {
	s := m.store.State()
	ids := state.SelectedIDs(s)

	if target.Role == RoleFolderNode || !s.Selection.Items[target.ID] {
		m.store.Dispatch(state.NewDeselectItems())
		if target.Role != RoleFolderNode {
			action, err := state.NewSelectItem(target.ID, s, state.SelectConfig{})
			if err == nil {
				m.store.Dispatch(action)
			}
		}
		ids = []string{target.ID}
	}

	for _, id := range ids {
		if !state.CanEditNode(s, id) {
			return nil, false
		}
	}
	return ids, true
}

// DragEnter handles the pointer entering an element.
func (m *Manager) DragEnter(over *Target, pointerY float64) *DropDestination {
	return m.DragOver(over, pointerY)
}

// DragOver recomputes the drop destination. over is nil when the pointer is
// not over a droppable element.
func (m *Manager) DragOver(over *Target, pointerY float64) *DropDestination {
	m.mu.Lock()
	m.dest = nil
	drag := m.drag
	m.mu.Unlock()

	if !drag.valid {
		return nil
	}

	s := m.store.State()
	if over == nil {
		m.expander.Update(nil, DropNone, s)
		m.indicator.Finish()
		return nil
	}

	dest := calculateDropDestination(drag, s, *over, pointerY)
	pos := DropNone
	if dest != nil {
		pos = dest.Position
	}
	m.expander.Update(over, pos, s)

	if dest == nil {
		m.indicator.Finish()
		return nil
	}

	m.mu.Lock()
	m.dest = dest
	m.mu.Unlock()
	m.indicator.Update(*dest)

	d := *dest
	return &d
}

// DragLeave handles the pointer leaving an element.
func (m *Manager) DragLeave() {
	m.indicator.Finish()
}

// Drop commits the current destination. Drops onto list rows or the list
// are highlighted once the resulting changes settle; ctx bounds that wait.
func (m *Manager) Drop(ctx context.Context) error {
	m.mu.Lock()
	dest := m.dest
	m.dest = nil
	m.mu.Unlock()
	defer m.indicator.Finish()

	if dest == nil {
		return nil
	}

	s := m.store.State()
	info := calculateDropInfo(*dest, s)
	highlight := m.tracker != nil && (dest.Target.Role == RoleItem || dest.Target.Role == RoleList)
	if highlight {
		m.tracker.TrackUpdatedItems()
	}

	err := m.service.Drop(info.ParentID, info.Index)
	if highlight {
		// Also ends the tracking when the drop failed.
		go func() {
			if err := m.tracker.HighlightUpdatedItems(ctx); err != nil {
				m.log.WithError(err).Debug("highlight abandoned")
			}
		}()
	}
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"parent": info.ParentID, "position": dest.Position}).Debug("dropped")
	return nil
}

// DragEnd resets all drag state. The service drag is cancelled if it is
// still open.
func (m *Manager) DragEnd() {
	m.mu.Lock()
	m.drag = dragInfo{}
	m.dest = nil
	m.mu.Unlock()

	m.service.EndDrag()
	m.indicator.Finish()
	m.expander.Reset()
}

// calculateDropDestination picks one position from the legal ones using the
// pointer's relative height in the target.
func calculateDropDestination(drag dragInfo, s state.BookmarksPageState, over Target, pointerY float64) *DropDestination {
	valid := calculateValidDropPositions(drag, s, over)
	if valid == DropNone {
		return nil
	}

	above := valid.Has(DropAbove)
	below := valid.Has(DropBelow)
	on := valid.Has(DropOn)

	ratio := midThreshold
	if over.Rect.Height > 0 {
		ratio = (pointerY - over.Rect.Top) / over.Rect.Height
	}

	if above && (ratio <= aboveThreshold || ratio <= midThreshold && (!below || !on)) {
		return &DropDestination{Target: over, Position: DropAbove}
	}
	if below && (ratio > belowThreshold || ratio > midThreshold && (!above || !on)) {
		return &DropDestination{Target: over, Position: DropBelow}
	}
	if on {
		return &DropDestination{Target: over, Position: DropOn}
	}
	return nil
}

// calculateValidDropPositions returns every legal position on over.
func calculateValidDropPositions(drag dragInfo, s state.BookmarksPageState, over Target) DropPosition {
	id := over.ID

	// The search result list is not a drop target.
	if (over.Role == RoleList || over.Role == RoleItem) && state.IsShowingSearch(s) {
		return DropNone
	}
	if over.Role == RoleList {
		id = s.SelectedFolder
	}
	if !state.CanReorderChildren(s, id) {
		return DropNone
	}
	if drag.isDraggingBookmark(id) {
		return DropNone
	}
	if drag.isDraggingFolderToDescendant(id, s.Nodes) {
		return DropNone
	}

	valid := calculateDropAboveBelow(drag, s, over)
	if canDropOn(drag, s, over) {
		valid |= DropOn
	}
	return valid
}

func calculateDropAboveBelow(drag dragInfo, s state.BookmarksPageState, over Target) DropPosition {
	if over.Role == RoleList {
		return DropNone
	}

	n, ok := s.Nodes[over.ID]
	if !ok {
		return DropNone
	}
	// Nothing goes between the permanent folders.
	if n.ParentID == model.RootID {
		return DropNone
	}
	if !state.CanReorderChildren(s, n.ParentID) {
		return DropNone
	}

	overFolderNode := over.Role == RoleFolderNode
	// Only folders go between sidebar folders.
	if overFolderNode && !drag.isDraggingFolders() {
		return DropNone
	}

	valid := DropNone
	if over.PrevID == "" || !drag.isDraggingBookmark(over.PrevID) {
		valid |= DropAbove
	}

	// Below an open folder with child folders would land inside it visually.
	if overFolderNode && state.IsFolderOpen(s, over.ID) && s.Nodes.HasChildFolders(over.ID) {
		return valid
	}

	if over.NextID == "" || !drag.isDraggingBookmark(over.NextID) {
		valid |= DropBelow
	}
	return valid
}

func canDropOn(drag dragInfo, s state.BookmarksPageState, over Target) bool {
	if over.Role == RoleList {
		folder, ok := s.Nodes[s.SelectedFolder]
		return ok && folder.IsFolder() && len(folder.Children) == 0
	}

	n, ok := s.Nodes[over.ID]
	if !ok || !n.IsFolder() {
		return false
	}
	return !drag.isDraggingChildBookmark(over.ID)
}

// calculateDropInfo converts a destination into a parent and index.
func calculateDropInfo(dest DropDestination, s state.BookmarksPageState) DropInfo {
	if dest.Target.Role == RoleList {
		return DropInfo{ParentID: s.SelectedFolder}
	}

	n := s.Nodes[dest.Target.ID]
	if dest.Position == DropOn {
		return DropInfo{ParentID: n.ID}
	}

	index := indexOf(s.Nodes[n.ParentID].Children, n.ID)
	if dest.Position == DropBelow {
		index++
	}
	return DropInfo{ParentID: n.ParentID, Index: &index}
}

// orderByDisplay returns ids in displayed order, followed by any that are
// not displayed.
func orderByDisplay(ids, displayed []string) []string {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	ordered := make([]string, 0, len(ids))
	for _, id := range displayed {
		if want[id] {
			ordered = append(ordered, id)
			delete(want, id)
		}
	}
	for _, id := range ids {
		if want[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
