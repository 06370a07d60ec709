package storage_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmgr/internal/exporter"
	"github.com/nikbrunner/bmgr/internal/importer"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/storage"
)

// sampleTree builds root -> bar -> {dev -> {go}, hn}, other -> {empty}.
func sampleTree() *model.TreeNode {
	now := time.Now().Truncate(time.Microsecond)
	tree := model.NewEmptyTree()
	bar := tree.Children[0]
	other := tree.Children[1]

	dev := &model.TreeNode{ID: "dev", ParentID: bar.ID, Title: "Development", Folder: true,
		Children: []*model.TreeNode{}, DateAdded: now, DateGroupModified: now}
	dev.Children = append(dev.Children,
		&model.TreeNode{ID: "go", ParentID: "dev", Title: "Go", URL: "https://go.dev", DateAdded: now})
	bar.Children = append(bar.Children, dev,
		&model.TreeNode{ID: "hn", ParentID: bar.ID, Index: 1, Title: "Hacker News", URL: "https://news.ycombinator.com", DateAdded: now})
	other.Children = append(other.Children,
		&model.TreeNode{ID: "empty", ParentID: other.ID, Title: "Empty", Folder: true, Children: []*model.TreeNode{}, DateAdded: now})
	return tree
}

func openSQLite(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	s := openSQLite(t)
	tree := sampleTree()

	if err := s.Save(tree); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	nodes := model.NormalizeNodes(loaded)
	if len(nodes) != 8 {
		t.Fatalf("expected 8 nodes, got %d", len(nodes))
	}
	if id := nodes.CheckConsistency(); id != "" {
		t.Errorf("inconsistent tree at %q", id)
	}

	bar := nodes[model.BookmarksBarID]
	if len(bar.Children) != 2 || bar.Children[0] != "dev" || bar.Children[1] != "hn" {
		t.Errorf("expected bar children [dev hn], got %v", bar.Children)
	}
	if !nodes["empty"].IsFolder() || len(nodes["empty"].Children) != 0 {
		t.Error("expected empty folder to stay a folder")
	}
	if nodes["go"].URL != "https://go.dev" {
		t.Errorf("expected URL preserved, got %q", nodes["go"].URL)
	}

	want := tree.Children[0].Children[0].DateAdded
	if got := nodes["dev"].DateAdded; !got.Equal(want) {
		t.Errorf("expected DateAdded %v, got %v", want, got)
	}
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s := openSQLite(t)

	tree, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load empty db: %v", err)
	}

	if tree.ID != model.RootID || len(tree.Children) != 3 {
		t.Errorf("expected default tree with three permanent folders, got %d", len(tree.Children))
	}
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage with nested dir: %v", err)
	}
	defer s.Close()

	if err := s.Save(model.NewEmptyTree()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
}

func TestSQLiteStorage_SchemaVersion(t *testing.T) {
	s := openSQLite(t)

	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := s.Save(sampleTree()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := s.SetItem(storage.KeySidebarWidth, "30ch"); err != nil {
		t.Fatalf("failed to set item: %v", err)
	}
	s.Close()

	s, err = storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	defer s.Close()

	tree, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(model.NormalizeNodes(tree)) != 8 {
		t.Error("expected data to survive reopening")
	}
	if v, ok, _ := s.GetItem(storage.KeySidebarWidth); !ok || v != "30ch" {
		t.Errorf("expected sidebar width to survive, got %q", v)
	}
}

func TestSQLiteStorage_SaveReplacesTree(t *testing.T) {
	s := openSQLite(t)

	if err := s.Save(sampleTree()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := s.Save(model.NewEmptyTree()); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	tree, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if n := len(model.NormalizeNodes(tree)); n != 4 {
		t.Errorf("expected only root and permanent folders, got %d nodes", n)
	}
}

func TestSQLiteStorage_LocalStore(t *testing.T) {
	s := openSQLite(t)

	if _, ok, err := s.GetItem(storage.KeyFolderOpenState); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.SetItem(storage.KeyFolderOpenState, `[["1",true]]`); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := s.SetItem(storage.KeyFolderOpenState, `[["1",false]]`); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}

	v, ok, err := s.GetItem(storage.KeyFolderOpenState)
	if err != nil || !ok {
		t.Fatalf("expected key, got ok=%v err=%v", ok, err)
	}
	if v != `[["1",false]]` {
		t.Errorf("expected overwritten value, got %q", v)
	}
}

func TestSQLiteStorage_ImportExportRoundtrip(t *testing.T) {
	s := openSQLite(t)

	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3>Development</H3>
    <DL><p>
        <DT><A HREF="https://go.dev" ADD_DATE="1700000000">Go</A>
    </DL><p>
</DL><p>`

	imported, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	tree := model.NewEmptyTree()
	other := tree.Children[1]
	imported.ParentID = other.ID
	other.Children = append(other.Children, imported)

	if err := s.Save(tree); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	out := exporter.ExportHTML(model.NormalizeNodes(loaded))
	for _, want := range []string{"Imported</H3>", "Development</H3>", `<A HREF="https://go.dev" ADD_DATE="1700000000">Go</A>`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected export to contain %q", want)
		}
	}
}
