package importer

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// folderPathSep joins nested browser folder names into one flat title.
const folderPathSep = " / "

const (
	maxTitle       = 255
	maxDescription = 200
	maxFolderTitle = 100
)

// Entry is one bookmark read from an export file.
type Entry struct {
	Title       string
	URL         string
	Description string
	Folder      string // flat folder title, "" = unfiled
	Tags        []string
}

// Result holds the folders (in first-seen order, unique) and entries of a
// Netscape bookmark file.
type Result struct {
	Folders []string
	Entries []Entry
}

// ParseHTMLBookmarks parses Netscape bookmark HTML. Nested folders are
// flattened into a single title such as "Dev / React".
func ParseHTMLBookmarks(r io.Reader) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	seenFolder := make(map[string]bool)

	var path []string
	var pending string // folder waiting to be pushed on next DL
	last := -1         // entry a following DD describes

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pending = getTextContent(n)
				last = -1
				return

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					last = -1
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				res.Entries = append(res.Entries, Entry{
					Title:  clip(title, maxTitle),
					URL:    href,
					Folder: currentFolder(path),
					Tags:   splitTags(getAttr(n, "tags")),
				})
				last = len(res.Entries) - 1
				return

			case "dd":
				if last >= 0 {
					res.Entries[last].Description = clip(directText(n), maxDescription)
					last = -1
				}

			case "dl":
				pushed := false
				if pending != "" {
					path = append(path, pending)
					pending = ""
					pushed = true
					if title := currentFolder(path); !seenFolder[title] {
						seenFolder[title] = true
						res.Folders = append(res.Folders, title)
					}
				}
				last = -1

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					path = path[:len(path)-1]
				}
				last = -1
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return res, nil
}

func currentFolder(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return clip(strings.Join(path, folderPathSep), maxFolderTitle)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
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

// directText returns only the text children of n. A DD that follows a
// folder header can wrap the folder's whole DL.
func directText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
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
