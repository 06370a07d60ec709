package exporter

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/nikbrunner/bmgr/internal/importer"
	"github.com/nikbrunner/bmgr/internal/model"
)

// ExportChromium encodes a full tree (root plus permanent folders) in the
// Chromium Bookmarks file format.
func ExportChromium(tree *model.TreeNode) ([]byte, error) {
	file := importer.ChromiumFile{
		Roots:   map[string]importer.ChromiumNode{},
		Version: 1,
	}

	byID := map[string]*model.TreeNode{}
	for _, c := range tree.Children {
		byID[c.ID] = c
	}
	for _, root := range importer.ChromiumRoots {
		node, ok := byID[root.ID]
		if !ok {
			node = &model.TreeNode{ID: root.ID, Title: root.Title, Folder: true}
		}
		file.Roots[root.Key] = toChromium(node)
	}

	// The checksum only has to change with the content; browsers recompute it.
	body, err := json.Marshal(file.Roots)
	if err != nil {
		return nil, err
	}
	sum := md5.Sum(body)
	file.Checksum = hex.EncodeToString(sum[:])

	return json.MarshalIndent(file, "", "   ")
}

func toChromium(t *model.TreeNode) importer.ChromiumNode {
	n := importer.ChromiumNode{
		DateAdded: importer.FormatChromiumDate(t.DateAdded),
		ID:        t.ID,
		Name:      t.Title,
	}
	if !t.IsFolder() {
		n.Type = "url"
		n.URL = t.URL
		return n
	}
	n.Type = "folder"
	n.DateModified = importer.FormatChromiumDate(t.DateGroupModified)
	n.Children = make([]importer.ChromiumNode, 0, len(t.Children))
	for _, c := range t.Children {
		n.Children = append(n.Children, toChromium(c))
	}
	return n
}
