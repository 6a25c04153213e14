// Package search ranks bookmarks against a fuzzy query for quick lookups
// outside the interactive browser.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmark/internal/model"
)

// Result is a bookmark matched by Find.
type Result struct {
	Bookmark       model.Bookmark
	MatchedIndexes []int // rune offsets into the title
	Score          int
}

type titles []model.Bookmark

func (t titles) String(i int) string { return t[i].Title }
func (t titles) Len() int            { return len(t) }

type urls []model.Bookmark

func (u urls) String(i int) string { return u[i].URL }
func (u urls) Len() int            { return len(u) }

// Find matches query against bookmark titles, best first. Bookmarks whose
// title does not match but whose url does are appended after the title
// matches, without highlight offsets. An empty query finds nothing.
func Find(bookmarks []model.Bookmark, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, titles(bookmarks))
	results := make([]Result, 0, len(matches))
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		seen[m.Index] = true
		results = append(results, Result{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}

	for _, m := range fuzzy.FindFrom(query, urls(bookmarks)) {
		if seen[m.Index] {
			continue
		}
		results = append(results, Result{Bookmark: bookmarks[m.Index], Score: m.Score})
	}

	return results
}
