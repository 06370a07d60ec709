package bookmarks_test

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/model"
)

type dragRecorder struct {
	entered []bookmarks.DragData
	left    int
}

func (d *dragRecorder) OnDragEnter(data bookmarks.DragData) { d.entered = append(d.entered, data) }
func (d *dragRecorder) OnDragLeave()                        { d.left++ }

func TestService_DragAndDrop(t *testing.T) {
	s, _ := newService(t)
	drag := &dragRecorder{}
	s.AddDragObserver(drag)

	a := mustCreate(t, s, model.BookmarksBarID, "a", "https://a")
	b := mustCreate(t, s, model.BookmarksBarID, "b", "https://b")
	mustCreate(t, s, model.BookmarksBarID, "c", "https://c")
	mustCreate(t, s, model.BookmarksBarID, "d", "https://d")

	assert.NilError(t, s.StartDrag([]string{a, b}, 1))
	assert.DeepEqual(t, s.Dragging(), []string{a, b})
	assert.Equal(t, len(drag.entered), 1)
	assert.Equal(t, len(drag.entered[0].Elements), 2)
	assert.Equal(t, drag.entered[0].DragIndex, 1)
	assert.Check(t, drag.entered[0].SameProfile)

	// Drop before "d".
	index := 3
	assert.NilError(t, s.Drop(model.BookmarksBarID, &index))

	assert.DeepEqual(t, titles(t, s, model.BookmarksBarID), []string{"c", "a", "b", "d"})
	assert.Equal(t, drag.left, 1)
	assert.Check(t, s.Dragging() == nil)
}

func TestService_DropToFront(t *testing.T) {
	s, _ := newService(t)
	mustCreate(t, s, model.BookmarksBarID, "a", "https://a")
	mustCreate(t, s, model.BookmarksBarID, "b", "https://b")
	c := mustCreate(t, s, model.BookmarksBarID, "c", "https://c")
	d := mustCreate(t, s, model.BookmarksBarID, "d", "https://d")

	assert.NilError(t, s.StartDrag([]string{c, d}, 0))
	index := 0
	assert.NilError(t, s.Drop(model.BookmarksBarID, &index))

	assert.DeepEqual(t, titles(t, s, model.BookmarksBarID), []string{"c", "d", "a", "b"})

	// One drop is one undo step.
	assert.NilError(t, s.Undo())
	assert.DeepEqual(t, titles(t, s, model.BookmarksBarID), []string{"a", "b", "c", "d"})
}

func TestService_DropIntoOtherFolder(t *testing.T) {
	s, _ := newService(t)
	a := mustCreate(t, s, model.BookmarksBarID, "a", "https://a")
	mustCreate(t, s, model.OtherID, "x", "https://x")

	assert.NilError(t, s.StartDrag([]string{a}, 0))
	assert.NilError(t, s.Drop(model.OtherID, nil))

	assert.DeepEqual(t, titles(t, s, model.OtherID), []string{"x", "a"})
}

func TestService_DragErrors(t *testing.T) {
	s, _ := newService(t)
	drag := &dragRecorder{}
	s.AddDragObserver(drag)

	err := s.Drop(model.BookmarksBarID, nil)
	assert.Check(t, errors.Is(err, bookmarks.ErrNoDrag))

	err = s.StartDrag([]string{model.BookmarksBarID}, 0)
	assert.Check(t, errors.Is(err, bookmarks.ErrPermanentNode))
	assert.Equal(t, len(drag.entered), 0)

	a := mustCreate(t, s, model.BookmarksBarID, "a", "https://a")
	assert.NilError(t, s.StartDrag([]string{a}, 0))
	s.EndDrag()
	assert.Equal(t, drag.left, 1)
	assert.Check(t, errors.Is(s.Drop(model.OtherID, nil), bookmarks.ErrNoDrag))
}
