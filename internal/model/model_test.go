package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nikbrunner/bmgr/internal/model"
)

// sampleTree builds root -> bar -> {dev -> {go, react}, hn}, other.
func sampleTree() *model.TreeNode {
	tree := model.NewEmptyTree()
	bar := tree.Children[0]
	dev := &model.TreeNode{ID: "dev", ParentID: bar.ID, Title: "Development", Folder: true, Children: []*model.TreeNode{}}
	dev.Children = append(dev.Children,
		&model.TreeNode{ID: "go", ParentID: "dev", Title: "Go", URL: "https://go.dev"},
		&model.TreeNode{ID: "react", ParentID: "dev", Title: "React", Folder: true, Children: []*model.TreeNode{}},
	)
	bar.Children = append(bar.Children,
		dev,
		&model.TreeNode{ID: "hn", ParentID: bar.ID, Title: "Hacker News", URL: "https://news.ycombinator.com"},
	)
	return tree
}

func TestNormalizeNodes(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	if len(nodes) != 8 {
		t.Fatalf("expected 8 nodes, got %d", len(nodes))
	}

	dev := nodes["dev"]
	if !dev.IsFolder() {
		t.Error("expected dev to be a folder")
	}
	if len(dev.Children) != 2 || dev.Children[0] != "go" || dev.Children[1] != "react" {
		t.Errorf("unexpected dev children: %v", dev.Children)
	}

	react := nodes["react"]
	if !react.IsFolder() || len(react.Children) != 0 {
		t.Errorf("empty folder should keep a non-nil empty children slice, got %#v", react.Children)
	}

	goNode := nodes["go"]
	if goNode.IsFolder() {
		t.Error("bookmark should not be a folder")
	}
	if goNode.ParentID != "dev" {
		t.Errorf("ParentID mismatch: got %q, want %q", goNode.ParentID, "dev")
	}

	if id := nodes.CheckConsistency(); id != "" {
		t.Errorf("expected consistent map, offending node %q", id)
	}
}

func TestNodeMap_Descendants(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	got := nodes.Descendants("dev")
	for _, id := range []string{"dev", "go", "react"} {
		if !got[id] {
			t.Errorf("expected %q in descendants", id)
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 descendants, got %d", len(got))
	}
}

func TestNodeMap_IsAncestorOf(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	tests := []struct {
		name     string
		ancestor string
		child    string
		want     bool
	}{
		{"direct parent", "dev", "go", true},
		{"grandparent", model.BookmarksBarID, "react", true},
		{"self", "dev", "dev", true},
		{"root reaches everything", model.RootID, "go", true},
		{"sibling", "hn", "go", false},
		{"child is not ancestor", "go", "dev", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nodes.IsAncestorOf(tt.ancestor, tt.child); got != tt.want {
				t.Errorf("IsAncestorOf(%q, %q) = %v, want %v", tt.ancestor, tt.child, got, tt.want)
			}
		})
	}
}

func TestNodeMap_DepthAndPath(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	if d := nodes.Depth(model.BookmarksBarID); d != 0 {
		t.Errorf("bookmarks bar depth: got %d, want 0", d)
	}
	if d := nodes.Depth("react"); d != 2 {
		t.Errorf("react depth: got %d, want 2", d)
	}
	if d := nodes.Depth(model.RootID); d != -1 {
		t.Errorf("root depth: got %d, want -1", d)
	}

	path := nodes.Path("react")
	want := []string{"Bookmarks bar", "Development", "React"}
	if len(path) != len(want) {
		t.Fatalf("path: got %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("path[%d]: got %q, want %q", i, path[i], want[i])
		}
	}
}

func TestNodeMap_HasChildFolders(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	if !nodes.HasChildFolders("dev") {
		t.Error("dev contains the react folder")
	}
	if nodes.HasChildFolders("react") {
		t.Error("react is empty")
	}
	if nodes.HasChildFolders("missing") {
		t.Error("missing node has no children")
	}
}

func TestNodeMap_TreeRoundTrip(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	tree := nodes.Tree(model.RootID)
	again := model.NormalizeNodes(tree)

	if len(again) != len(nodes) {
		t.Fatalf("expected %d nodes after round trip, got %d", len(nodes), len(again))
	}
	if again["hn"].URL != "https://news.ycombinator.com" {
		t.Errorf("URL lost in round trip: %q", again["hn"].URL)
	}
	if idx := tree.Children[0].Children[1].Index; idx != 1 {
		t.Errorf("expected hn at index 1, got %d", idx)
	}
}

func TestNodeMap_CheckConsistency_DetectsDuplicates(t *testing.T) {
	nodes := model.NormalizeNodes(sampleTree())

	dev := nodes["dev"]
	dev.Children = append([]string{}, dev.Children...)
	dev.Children = append(dev.Children, "go")
	nodes["dev"] = dev

	if id := nodes.CheckConsistency(); id != "go" {
		t.Errorf("expected go to be reported, got %q", id)
	}
}

func TestBookmarkNode_JSON(t *testing.T) {
	node := model.BookmarkNode{
		ID:        "b1",
		ParentID:  "1",
		Title:     "TanStack Router",
		URL:       "https://tanstack.com/router",
		DateAdded: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var got model.BookmarkNode
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if got.IsFolder() {
		t.Error("bookmark must not decode as folder")
	}
	if !got.DateAdded.Equal(node.DateAdded) {
		t.Errorf("DateAdded mismatch: got %v, want %v", got.DateAdded, node.DateAdded)
	}
}

func TestNewFolderAndBookmark(t *testing.T) {
	f := model.NewFolder(model.NewFolderParams{Title: "Read Later", ParentID: model.OtherID})
	if f.ID == "" || !f.IsFolder() {
		t.Errorf("expected folder with generated ID, got %#v", f)
	}

	b := model.NewBookmark(model.NewBookmarkParams{Title: "Go", URL: "https://go.dev", ParentID: f.ID})
	if b.ID == "" || b.ID == f.ID {
		t.Errorf("expected unique generated ID, got %q", b.ID)
	}
	if b.IsFolder() {
		t.Error("bookmark should not be a folder")
	}
}

func TestCloneTree_IsDeep(t *testing.T) {
	tree := sampleTree()
	clone := model.CloneTree(tree)

	clone.Children[0].Children[0].Title = "changed"
	if tree.Children[0].Children[0].Title == "changed" {
		t.Error("clone shares nodes with the original")
	}
}
