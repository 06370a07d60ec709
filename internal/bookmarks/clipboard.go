package bookmarks

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmgr/internal/model"
)

// Copy puts snapshots of ids (with their subtrees) on the internal clipboard.
func (s *Service) Copy(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked(ids)
}

func (s *Service) copyLocked(ids []string) error {
	var clip []*model.TreeNode
	for _, id := range topLevel(s.nodes, ids) {
		t := s.nodes.Tree(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		clip = append(clip, t)
	}
	if len(clip) == 0 {
		return ErrNothingToPaste
	}
	s.clip = clip
	return nil
}

// Cut copies ids to the clipboard and removes them, as one undo step.
func (s *Service) Cut(ids []string) error {
	return s.mutate(func(tx *txn) error {
		for _, id := range ids {
			if _, err := s.checkEditable(id); err != nil {
				return err
			}
		}
		if err := s.copyLocked(ids); err != nil {
			return err
		}
		return s.removeTrees(tx, ids)
	})
}

// CanPaste reports whether the clipboard can be pasted into parentID.
func (s *Service) CanPaste(parentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clip) > 0 && s.checkTarget(parentID) == nil
}

// Paste inserts copies of the clipboard into parentID, after the last of
// selected that is a child of parentID, or at the end. It returns the IDs of
// the pasted nodes.
func (s *Service) Paste(parentID string, selected []string) ([]string, error) {
	var pasted []string
	err := s.mutate(func(tx *txn) error {
		if len(s.clip) == 0 {
			return ErrNothingToPaste
		}
		if err := s.checkTarget(parentID); err != nil {
			return err
		}

		index := len(s.nodes[parentID].Children)
		if len(selected) > 0 {
			last := -1
			for _, id := range selected {
				if n, ok := s.nodes[id]; ok && n.ParentID == parentID {
					if i := s.nodes.ChildIndex(id); i > last {
						last = i
					}
				}
			}
			if last >= 0 {
				index = last + 1
			}
		}

		for _, t := range s.clip {
			copied := model.CloneTree(t)
			freshIDs(copied)
			if err := tx.apply(insertOp(parentID, index, copied)); err != nil {
				return err
			}
			pasted = append(pasted, copied.ID)
			index++
		}
		return nil
	})
	return pasted, err
}

// CopyURLs writes the URLs of the bookmarks among ids to the system
// clipboard, one per line. Folders are skipped.
func (s *Service) CopyURLs(ids []string) error {
	s.mu.Lock()
	var urls []string
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok && !n.IsFolder() {
			urls = append(urls, n.URL)
		}
	}
	s.mu.Unlock()

	if len(urls) == 0 {
		return fmt.Errorf("%w: no bookmarks among selection", ErrNotFound)
	}
	if err := s.writeCB(strings.Join(urls, "\n")); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
