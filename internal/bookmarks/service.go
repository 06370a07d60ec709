// Package bookmarks owns the authoritative bookmark tree. It persists every
// change through a storage.Storage and reports it to observers.
package bookmarks

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/bmgr/internal/importer"
	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/search"
	"github.com/nikbrunner/bmgr/internal/storage"
)

var (
	ErrNotFound       = errors.New("bookmark not found")
	ErrPermanentNode  = errors.New("permanent folders cannot be changed")
	ErrUnmodifiable   = errors.New("bookmark is unmodifiable")
	ErrInvalidMove    = errors.New("cannot move a folder into itself")
	ErrNotFolder      = errors.New("not a folder")
	ErrFolderURL      = errors.New("folders have no url")
	ErrFolderNotEmpty = errors.New("folder is not empty")
	ErrDuplicateID    = errors.New("duplicate node id")
	ErrNothingToPaste = errors.New("nothing to paste")
	ErrNoDrag         = errors.New("no drag in progress")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrClosed         = errors.New("bookmarks service is closed")
)

// Params configures a Service.
type Params struct {
	// Storage persists the tree. Nil keeps everything in memory.
	Storage storage.Storage
	Logger  logrus.FieldLogger
	// WriteClipboard copies text to the system clipboard. Defaults to
	// clipboard.WriteAll.
	WriteClipboard func(string) error
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service is the bookmarks API: queries, mutations, clipboard, drag and
// undo. It is safe for concurrent use.
type Service struct {
	mu        sync.Mutex
	deliverMu sync.Mutex

	nodes   model.NodeMap
	storage storage.Storage
	log     logrus.FieldLogger
	now     func() time.Time
	writeCB func(string) error

	observers     []Observer
	dragObservers []DragObserver
	events        []event

	undo [][]op
	redo [][]op

	clip []*model.TreeNode
	drag *DragData

	closed bool
}

// New loads the tree from params.Storage and returns a ready Service.
func New(params Params) (*Service, error) {
	s := &Service{
		storage: params.Storage,
		log:     logging.OrDiscard(params.Logger),
		now:     params.Now,
		writeCB: params.WriteClipboard,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.writeCB == nil {
		s.writeCB = clipboard.WriteAll
	}

	tree := model.NewEmptyTree()
	if s.storage != nil {
		loaded, err := s.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("load bookmarks: %w", err)
		}
		tree = loaded
	}
	s.nodes = model.NormalizeNodes(tree)
	return s, nil
}

// AddObserver registers o for change events.
func (s *Service) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// RemoveObserver unregisters o.
func (s *Service) RemoveObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

// AddDragObserver registers o for drag enter/leave.
func (s *Service) AddDragObserver(o DragObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragObservers = append(s.dragObservers, o)
}

// RemoveDragObserver unregisters o.
func (s *Service) RemoveDragObserver(o DragObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.dragObservers {
		if existing == o {
			s.dragObservers = append(s.dragObservers[:i:i], s.dragObservers[i+1:]...)
			return
		}
	}
}

// GetTree returns a snapshot of the whole tree.
func (s *Service) GetTree() *model.TreeNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes.Tree(model.RootID)
}

// GetSubTree returns a snapshot of the tree below id.
func (s *Service) GetSubTree(id string) (*model.TreeNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.nodes.Tree(id)
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// Get returns a single node.
func (s *Service) Get(id string) (model.BookmarkNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[id]
	if !ok {
		return model.BookmarkNode{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if n.Children != nil {
		n.Children = append([]string{}, n.Children...)
	}
	return n, nil
}

// Search returns the IDs of nodes matching query, best match first.
func (s *Service) Search(query string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return search.IDs(search.FuzzySearch(s.nodes, query))
}

// CreateParams holds parameters for Create. An empty URL creates a folder.
type CreateParams struct {
	ParentID string
	Index    *int // nil appends
	Title    string
	URL      string
}

// Create adds a bookmark or folder.
func (s *Service) Create(params CreateParams) (*model.TreeNode, error) {
	var t *model.TreeNode
	if params.URL == "" {
		t = model.NewFolder(model.NewFolderParams{Title: params.Title, ParentID: params.ParentID})
	} else {
		t = model.NewBookmark(model.NewBookmarkParams{Title: params.Title, URL: params.URL, ParentID: params.ParentID})
	}

	err := s.mutate(func(tx *txn) error {
		if err := s.checkTarget(params.ParentID); err != nil {
			return err
		}
		index := -1
		if params.Index != nil {
			index = *params.Index
		}
		return tx.apply(insertOp(params.ParentID, index, t))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Update changes the title and/or URL of a node.
func (s *Service) Update(id string, changes model.ChangeInfo) error {
	return s.mutate(func(tx *txn) error {
		n, err := s.checkEditable(id)
		if err != nil {
			return err
		}
		if changes.URL != nil && n.IsFolder() {
			return fmt.Errorf("%w: %s", ErrFolderURL, id)
		}
		return tx.apply(updateOp(id, changes))
	})
}

// Remove deletes a bookmark or an empty folder.
func (s *Service) Remove(id string) error {
	return s.mutate(func(tx *txn) error {
		n, err := s.checkEditable(id)
		if err != nil {
			return err
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: %s", ErrFolderNotEmpty, id)
		}
		return tx.apply(removeOp(id))
	})
}

// RemoveTrees deletes nodes with everything beneath them, as one undo step.
func (s *Service) RemoveTrees(ids []string) error {
	return s.mutate(func(tx *txn) error {
		return s.removeTrees(tx, ids)
	})
}

func (s *Service) removeTrees(tx *txn, ids []string) error {
	for _, id := range ids {
		if _, err := s.checkEditable(id); err != nil {
			return err
		}
	}
	for _, id := range topLevel(s.nodes, ids) {
		if err := tx.apply(removeOp(id)); err != nil {
			return err
		}
	}
	return nil
}

// Move moves id into parentID before the child currently at index. A nil
// index appends.
func (s *Service) Move(id, parentID string, index *int) error {
	return s.mutate(func(tx *txn) error {
		return s.moveNodes(tx, []string{id}, parentID, index)
	})
}

// moveNodes moves ids, in order, to consecutive positions starting before
// the child at index of parentID.
func (s *Service) moveNodes(tx *txn, ids []string, parentID string, index *int) error {
	if err := s.checkTarget(parentID); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.checkEditable(id); err != nil {
			return err
		}
		if s.nodes.IsAncestorOf(id, parentID) {
			return fmt.Errorf("%w: %s into %s", ErrInvalidMove, id, parentID)
		}
	}

	next := len(s.nodes[parentID].Children)
	if index != nil && *index >= 0 && *index < next {
		next = *index
	}
	for _, id := range ids {
		n := s.nodes[id]
		final := next
		sameParentBefore := n.ParentID == parentID && s.nodes.ChildIndex(id) < next
		if sameParentBefore {
			final--
		}
		if err := tx.apply(moveOp(id, parentID, final)); err != nil {
			return err
		}
		if !sameParentBefore {
			next++
		}
	}
	return nil
}

// SortChildren orders a folder's children: folders first, then by title in
// the default collation order.
func (s *Service) SortChildren(parentID string) error {
	return s.mutate(func(tx *txn) error {
		if err := s.checkTarget(parentID); err != nil {
			return err
		}
		children := append([]string{}, s.nodes[parentID].Children...)
		c := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(children, func(i, j int) bool {
			a, b := s.nodes[children[i]], s.nodes[children[j]]
			if a.IsFolder() != b.IsFolder() {
				return a.IsFolder()
			}
			return c.CompareString(a.Title, b.Title) < 0
		})
		return tx.apply(reorderOp(parentID, children))
	})
}

// Undo reverts the last change group.
func (s *Service) Undo() error {
	return s.replay(&s.undo, &s.redo, ErrNothingToUndo)
}

// Redo re-applies the last undone change group.
func (s *Service) Redo() error {
	return s.replay(&s.redo, &s.undo, ErrNothingToRedo)
}

// CanUndo reports whether Undo has anything to revert.
func (s *Service) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has anything to re-apply.
func (s *Service) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

func (s *Service) replay(from, to *[][]op, empty error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if len(*from) == 0 {
		s.mu.Unlock()
		return empty
	}
	group := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	var inverses []op
	var err error
	for i := len(group) - 1; i >= 0; i-- {
		var inv op
		if inv, err = group[i](s); err != nil {
			break
		}
		inverses = append(inverses, inv)
	}
	if len(inverses) > 0 {
		*to = append(*to, inverses)
	}
	saveErr := s.save()
	deliver := s.handoff()

	deliver()
	return errors.Join(err, saveErr)
}

// ImportHTML reads a Netscape bookmarks file into a new folder under Other
// bookmarks and returns that folder's ID.
func (s *Service) ImportHTML(r io.Reader) (string, error) {
	tree, err := importer.ParseHTMLBookmarks(r)
	if err != nil {
		return "", fmt.Errorf("import bookmarks: %w", err)
	}
	freshIDs(tree)

	s.mu.Lock()
	s.emit(func(o Observer) { o.OnImportBegan() })
	s.handoff()()

	err = s.mutate(func(tx *txn) error {
		return tx.apply(insertOp(model.OtherID, -1, tree))
	})

	s.mu.Lock()
	s.emit(func(o Observer) { o.OnImportEnded() })
	s.handoff()()

	if err != nil {
		return "", err
	}
	s.log.WithField("id", tree.ID).Info("imported bookmarks")
	return tree.ID, nil
}

// Close stops the service. Later mutations fail with ErrClosed.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.observers = nil
	s.dragObservers = nil
	return nil
}

// txn collects the inverse ops of one change group.
type txn struct {
	s        *Service
	inverses []op
}

func (t *txn) apply(o op) error {
	inv, err := o(t.s)
	if err != nil {
		return err
	}
	t.inverses = append(t.inverses, inv)
	return nil
}

// mutate runs fn as one undoable group, saves and delivers events.
func (s *Service) mutate(fn func(tx *txn) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	tx := &txn{s: s}
	err := fn(tx)

	var saveErr error
	if len(tx.inverses) > 0 {
		s.undo = append(s.undo, tx.inverses)
		s.redo = nil
		saveErr = s.save()
	}
	deliver := s.handoff()

	deliver()
	return errors.Join(err, saveErr)
}

// handoff releases s.mu and returns a func that delivers the queued events.
// Delivery is serialized so events never reorder across goroutines.
func (s *Service) handoff() func() {
	deliver := s.flush()
	s.deliverMu.Lock()
	s.mu.Unlock()
	return func() {
		defer s.deliverMu.Unlock()
		deliver()
	}
}

func (s *Service) save() error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Save(s.nodes.Tree(model.RootID)); err != nil {
		s.log.WithError(err).Error("failed to save bookmarks")
		return fmt.Errorf("save bookmarks: %w", err)
	}
	return nil
}

// checkTarget verifies that nodes can be added to parentID.
func (s *Service) checkTarget(parentID string) error {
	parent, ok := s.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	if !parent.IsFolder() {
		return fmt.Errorf("%w: %s", ErrNotFolder, parentID)
	}
	if parentID == model.RootID {
		return fmt.Errorf("%w: %s", ErrPermanentNode, parentID)
	}
	if parent.Unmodifiable {
		return fmt.Errorf("%w: %s", ErrUnmodifiable, parentID)
	}
	return nil
}

// checkEditable verifies that id may be changed, moved or removed.
func (s *Service) checkEditable(id string) (model.BookmarkNode, error) {
	n, ok := s.nodes[id]
	if !ok {
		return n, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if model.IsPermanentID(id) {
		return n, fmt.Errorf("%w: %s", ErrPermanentNode, id)
	}
	if n.Unmodifiable {
		return n, fmt.Errorf("%w: %s", ErrUnmodifiable, id)
	}
	return n, nil
}

// topLevel drops IDs that have an ancestor in ids, keeping order.
func topLevel(nodes model.NodeMap, ids []string) []string {
	var result []string
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		covered := false
		for _, other := range ids {
			if other != id && nodes.IsAncestorOf(other, id) {
				covered = true
				break
			}
		}
		if !covered {
			result = append(result, id)
		}
	}
	return result
}
