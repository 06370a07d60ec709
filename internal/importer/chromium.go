package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nikbrunner/bmgr/internal/model"
)

// ChromeToUnixEpochDelta is the distance between the Chrome epoch
// (1601-01-01) and the Unix epoch, in seconds.
const ChromeToUnixEpochDelta = 11644473600

// ChromiumRoots maps the Chromium "roots" keys to the permanent folder IDs.
var ChromiumRoots = []struct {
	Key   string
	ID    string
	Title string
}{
	{"bookmark_bar", model.BookmarksBarID, "Bookmarks bar"},
	{"other", model.OtherID, "Other bookmarks"},
	{"synced", model.MobileID, "Mobile bookmarks"},
}

// ChromiumFile is the top-level shape of a Chromium Bookmarks file.
type ChromiumFile struct {
	Checksum string                  `json:"checksum,omitempty"`
	Roots    map[string]ChromiumNode `json:"roots"`
	Version  int                     `json:"version"`
}

// ChromiumNode is one entry of a Chromium Bookmarks file.
type ChromiumNode struct {
	Children     []ChromiumNode `json:"children,omitempty"`
	DateAdded    string         `json:"date_added,omitempty"`
	DateModified string         `json:"date_modified,omitempty"`
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	URL          string         `json:"url,omitempty"`
}

// ParseChromiumBookmarks reads a Chromium Bookmarks file into a full tree
// with the synthetic root and the three permanent folders. Node IDs from the
// file are kept; missing or duplicate IDs are replaced by generated ones.
func ParseChromiumBookmarks(r io.Reader) (*model.TreeNode, error) {
	var file ChromiumFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode chromium bookmarks: %w", err)
	}

	tree := model.NewEmptyTree()
	seen := map[string]bool{}
	for _, p := range tree.Children {
		seen[p.ID] = true
	}

	for i, root := range ChromiumRoots {
		node, ok := file.Roots[root.Key]
		if !ok {
			continue
		}
		permanent := tree.Children[i]
		if added := ParseChromiumDate(node.DateAdded); !added.IsZero() {
			permanent.DateAdded = added
		}
		if modified := ParseChromiumDate(node.DateModified); !modified.IsZero() {
			permanent.DateGroupModified = modified
		}
		for _, child := range node.Children {
			convertChromium(permanent, child, seen)
		}
	}
	return tree, nil
}

func convertChromium(parent *model.TreeNode, n ChromiumNode, seen map[string]bool) {
	id := n.ID
	if id == "" || seen[id] {
		id = model.GenerateID()
	}
	seen[id] = true

	t := &model.TreeNode{
		ID:                id,
		ParentID:          parent.ID,
		Index:             len(parent.Children),
		Title:             n.Name,
		DateAdded:         ParseChromiumDate(n.DateAdded),
		DateGroupModified: ParseChromiumDate(n.DateModified),
	}
	parent.Children = append(parent.Children, t)

	switch n.Type {
	case "folder":
		t.Folder = true
		t.Children = []*model.TreeNode{}
		for _, child := range n.Children {
			convertChromium(t, child, seen)
		}
	default:
		t.URL = n.URL
	}
}

// ParseChromiumDate converts Chrome-epoch microseconds to a time.
func ParseChromiumDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}

	chromeMicroseconds, err := strconv.ParseInt(dateStr, 10, 64)
	if err != nil || chromeMicroseconds == 0 {
		return time.Time{}
	}

	chromeSeconds := chromeMicroseconds / 1000000
	unixSeconds := chromeSeconds - ChromeToUnixEpochDelta
	microRemainder := chromeMicroseconds % 1000000

	return time.Unix(unixSeconds, microRemainder*1000)
}

// FormatChromiumDate converts a time to Chrome-epoch microseconds.
func FormatChromiumDate(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	micros := (t.Unix()+ChromeToUnixEpochDelta)*1000000 + int64(t.Nanosecond()/1000)
	return strconv.FormatInt(micros, 10)
}
