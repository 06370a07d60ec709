package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmgr/internal/model"
)

// ImportedFolderTitle names the folder that receives an HTML import.
const ImportedFolderTitle = "Imported"

// ParseHTMLBookmarks parses Netscape bookmark HTML into a new folder holding
// the file's top-level items in document order. IDs are generated.
func ParseHTMLBookmarks(r io.Reader) (*model.TreeNode, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	imported := model.NewFolder(model.NewFolderParams{Title: ImportedFolderTitle})

	// Stack of open folders; the bottom is the import folder.
	folderStack := []*model.TreeNode{imported}
	var pendingFolder *model.TreeNode // folder waiting to be pushed on next DL

	current := func() *model.TreeNode {
		return folderStack[len(folderStack)-1]
	}
	appendChild := func(child *model.TreeNode) {
		parent := current()
		child.ParentID = parent.ID
		child.Index = len(parent.Children)
		parent.Children = append(parent.Children, child)
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				title := getTextContent(n)
				if title == "" {
					return
				}
				folder := model.NewFolder(model.NewFolderParams{Title: title})
				if added := parseUnix(getAttr(n, "add_date")); !added.IsZero() {
					folder.DateAdded = added
				}
				if modified := parseUnix(getAttr(n, "last_modified")); !modified.IsZero() {
					folder.DateGroupModified = modified
				}
				appendChild(folder)
				// Pushed when the following DL opens.
				pendingFolder = folder
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				bookmark := model.NewBookmark(model.NewBookmarkParams{Title: title, URL: href})
				if added := parseUnix(getAttr(n, "add_date")); !added.IsZero() {
					bookmark.DateAdded = added
				}
				appendChild(bookmark)
				return

			case "dl":
				pushed := false
				if pendingFolder != nil {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed && len(folderStack) > 1 {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return imported, nil
}

func parseUnix(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ts <= 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
