package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmgr/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports the bookmark forest to Netscape bookmark HTML. The
// permanent folders become top-level folders; the bookmarks bar is flagged
// as the personal toolbar folder.
func ExportHTML(nodes model.NodeMap) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	if root, ok := nodes[model.RootID]; ok {
		writeItems(&b, nodes, root.Children, 1)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems writes the given children in stored order, recursing into folders.
func writeItems(b *strings.Builder, nodes model.NodeMap, children []string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, id := range children {
		n, ok := nodes[id]
		if !ok {
			continue
		}

		if !n.IsFolder() {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(n.URL),
				unixOrZero(n.DateAdded),
				html.EscapeString(n.Title),
			)
			continue
		}

		toolbar := ""
		if n.ID == model.BookmarksBarID {
			toolbar = ` PERSONAL_TOOLBAR_FOLDER="true"`
		}
		fmt.Fprintf(b, "%s<DT><H3 ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\"%s>%s</H3>\n",
			prefix, unixOrZero(n.DateAdded), unixOrZero(n.DateGroupModified), toolbar, html.EscapeString(n.Title))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeItems(b, nodes, n.Children, indent+1)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
