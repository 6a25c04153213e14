package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"

	"github.com/nikbrunner/bmark/internal/model"
)

// SortMode selects the ordering of the derived view.
type SortMode int

const (
	SortDefault SortMode = iota // snapshot order
	SortNewestFirst
	SortOldestFirst
	SortAlphaAsc
	SortAlphaDesc
	SortFavoritesFirst
)

// SortModes lists every mode in cycle order.
var SortModes = []SortMode{
	SortDefault, SortNewestFirst, SortOldestFirst,
	SortAlphaAsc, SortAlphaDesc, SortFavoritesFirst,
}

func (m SortMode) String() string {
	switch m {
	case SortDefault:
		return "default"
	case SortNewestFirst:
		return "newest"
	case SortOldestFirst:
		return "oldest"
	case SortAlphaAsc:
		return "a-z"
	case SortAlphaDesc:
		return "z-a"
	case SortFavoritesFirst:
		return "favorites"
	default:
		return "unknown"
	}
}

// ParseSortMode maps a mode name back to its SortMode.
func ParseSortMode(s string) (SortMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return SortDefault, nil
	}
	for _, m := range SortModes {
		if m.String() == name {
			return m, nil
		}
	}
	return SortDefault, fmt.Errorf("unknown sort mode %q", s)
}

// Next returns the mode after m in cycle order.
func (m SortMode) Next() SortMode {
	for i, mode := range SortModes {
		if mode == m {
			return SortModes[(i+1)%len(SortModes)]
		}
	}
	return SortDefault
}

var epoch = time.Unix(0, 0).UTC()

// createdKey treats a missing createdAt as the epoch.
func createdKey(b model.Bookmark) time.Time {
	if b.CreatedAt.IsZero() {
		return epoch
	}
	return b.CreatedAt
}

// sortBookmarks orders items in place. Every mode is a stable sort, so
// items comparing equal keep their snapshot order.
func sortBookmarks(items []model.Bookmark, mode SortMode, col *collate.Collator) {
	switch mode {
	case SortNewestFirst:
		sort.SliceStable(items, func(i, j int) bool {
			return createdKey(items[i]).After(createdKey(items[j]))
		})
	case SortOldestFirst:
		sort.SliceStable(items, func(i, j int) bool {
			return createdKey(items[i]).Before(createdKey(items[j]))
		})
	case SortAlphaAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return col.CompareString(items[i].Title, items[j].Title) < 0
		})
	case SortAlphaDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return col.CompareString(items[i].Title, items[j].Title) > 0
		})
	case SortFavoritesFirst:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Favorite && !items[j].Favorite
		})
	}
}
