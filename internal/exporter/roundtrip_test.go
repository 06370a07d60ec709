package exporter_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/bmgr/internal/exporter"
	"github.com/nikbrunner/bmgr/internal/importer"
	"github.com/nikbrunner/bmgr/internal/model"
)

func sampleTree() *model.TreeNode {
	tree := model.NewEmptyTree()
	bar := tree.Children[0]
	dev := &model.TreeNode{ID: "dev", ParentID: bar.ID, Title: "Development", Folder: true, Children: []*model.TreeNode{},
		DateAdded: time.Unix(1700000000, 0)}
	dev.Children = append(dev.Children,
		&model.TreeNode{ID: "go", ParentID: "dev", Title: "Go", URL: "https://go.dev", DateAdded: time.Unix(1700000100, 0)},
	)
	bar.Children = append(bar.Children, dev,
		&model.TreeNode{ID: "hn", ParentID: bar.ID, Index: 1, Title: "Hacker News", URL: "https://news.ycombinator.com"})
	return tree
}

func TestExportImportHTML_RoundTrip(t *testing.T) {
	html := exporter.ExportHTML(model.NormalizeNodes(sampleTree()))

	imported, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	assert.NilError(t, err)

	// Imported top level: the three permanent folders as plain folders.
	assert.Equal(t, len(imported.Children), 3)
	bar := imported.Children[0]
	assert.Equal(t, bar.Title, "Bookmarks bar")
	assert.Equal(t, len(bar.Children), 2)
	assert.Equal(t, bar.Children[0].Title, "Development")
	assert.Equal(t, bar.Children[0].Children[0].URL, "https://go.dev")
	assert.Check(t, bar.Children[0].Children[0].DateAdded.Equal(time.Unix(1700000100, 0)))
	assert.Equal(t, bar.Children[1].Title, "Hacker News")
}

func TestExportImportChromium_RoundTrip(t *testing.T) {
	data, err := exporter.ExportChromium(sampleTree())
	assert.NilError(t, err)
	assert.Check(t, bytes.Contains(data, []byte(`"bookmark_bar"`)))

	tree, err := importer.ParseChromiumBookmarks(bytes.NewReader(data))
	assert.NilError(t, err)

	nodes := model.NormalizeNodes(tree)
	assert.DeepEqual(t, nodes[model.BookmarksBarID].Children, []string{"dev", "hn"})
	assert.DeepEqual(t, nodes["dev"].Children, []string{"go"})
	assert.Equal(t, nodes["go"].URL, "https://go.dev")
	assert.Check(t, nodes["dev"].DateAdded.Equal(time.Unix(1700000000, 0)))
	assert.DeepEqual(t, nodes[model.OtherID].Children, []string{})
}
