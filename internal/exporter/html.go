package exporter

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmark/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath(now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", now.Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the snapshot as Netscape bookmark HTML. Each folder
// becomes one H3 section; unfiled bookmarks and bookmarks of deleted folders
// are written at the root.
func ExportHTML(snap *model.Snapshot) string {
	var b strings.Builder
	_ = WriteHTML(&b, snap)
	return b.String()
}

// WriteHTML writes the Netscape bookmark HTML of snap to w.
func WriteHTML(w io.Writer, snap *model.Snapshot) error {
	ew := &errWriter{w: w}

	ew.printf("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	ew.printf("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	ew.printf("<TITLE>Bookmarks</TITLE>\n")
	ew.printf("<H1>Bookmarks</H1>\n")
	ew.printf("<DL><p>\n")

	for _, folder := range snap.Folders {
		ew.printf("    <DT><H3%s>%s</H3>\n", addDate(folder.CreatedAt), html.EscapeString(folder.Title))
		ew.printf("    <DL><p>\n")
		for _, bm := range snap.BookmarksInFolder(folder.ID) {
			writeBookmark(ew, bm, "        ")
		}
		ew.printf("    </DL><p>\n")
	}

	for _, bm := range snap.Orphans() {
		writeBookmark(ew, bm, "    ")
	}

	ew.printf("</DL><p>\n")
	return ew.err
}

func writeBookmark(ew *errWriter, bm model.Bookmark, prefix string) {
	var attrs strings.Builder
	fmt.Fprintf(&attrs, " HREF=\"%s\"", html.EscapeString(bm.URL))
	attrs.WriteString(addDate(bm.CreatedAt))
	if len(bm.Tags) > 0 {
		fmt.Fprintf(&attrs, " TAGS=\"%s\"", html.EscapeString(strings.Join(bm.Tags, ",")))
	}

	ew.printf("%s<DT><A%s>%s</A>\n", prefix, attrs.String(), html.EscapeString(bm.Title))
	if bm.Description != "" {
		ew.printf("%s<DD>%s\n", prefix, html.EscapeString(bm.Description))
	}
}

func addDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf(" ADD_DATE=\"%d\"", t.Unix())
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
