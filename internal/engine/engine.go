package engine

import (
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/bmark/internal/model"
)

// Engine is the in-memory view-model over one user's collection. Snapshots
// replace its lists wholesale; the derived view is recomputed from the
// current lists on every read. Each method runs as one step under a single
// lock, so snapshot applications and view changes never interleave.
type Engine struct {
	mu sync.Mutex

	bookmarks []model.Bookmark
	folders   []model.Folder

	activeFolderID *string
	searchText     string
	sortMode       SortMode

	collator *collate.Collator
}

// Params configures a new Engine.
type Params struct {
	// Locale drives alphabetical collation; defaults to English.
	Locale language.Tag
}

// New creates an empty Engine.
func New(params Params) *Engine {
	tag := params.Locale
	if tag == language.Und {
		tag = language.English
	}
	return &Engine{
		bookmarks: []model.Bookmark{},
		folders:   []model.Folder{},
		collator:  collate.New(tag),
	}
}

// ApplyBookmarks replaces the bookmark list with items.
func (e *Engine) ApplyBookmarks(items []model.Bookmark) {
	cp := make([]model.Bookmark, len(items))
	copy(cp, items)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bookmarks = cp
}

// ApplyFolders replaces the folder list with items.
func (e *Engine) ApplyFolders(items []model.Folder) {
	cp := make([]model.Folder, len(items))
	copy(cp, items)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.folders = cp
}

// Reset drops all state, returning the engine to its initial view.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bookmarks = []model.Bookmark{}
	e.folders = []model.Folder{}
	e.activeFolderID = nil
	e.searchText = ""
	e.sortMode = SortDefault
}

// SetActiveFolder restricts the view to one folder; nil shows all.
func (e *Engine) SetActiveFolder(id *string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == nil {
		e.activeFolderID = nil
		return
	}
	v := *id
	e.activeFolderID = &v
}

// ActiveFolder returns the active folder id, or nil for all folders.
func (e *Engine) ActiveFolder() *string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.activeFolderID == nil {
		return nil
	}
	v := *e.activeFolderID
	return &v
}

// SetSearchText sets the free-text filter. Empty matches everything.
func (e *Engine) SetSearchText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searchText = text
}

// SearchText returns the current filter text.
func (e *Engine) SearchText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searchText
}

// SetSortMode sets the ordering of the derived view.
func (e *Engine) SetSortMode(mode SortMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sortMode = mode
}

// SortMode returns the current ordering.
func (e *Engine) SortMode() SortMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortMode
}

// CycleSortMode advances to the next sort mode and returns it.
func (e *Engine) CycleSortMode() SortMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sortMode = e.sortMode.Next()
	return e.sortMode
}

// DerivedView filters by active folder, then by search text, then sorts.
func (e *Engine) DerivedView() []model.Bookmark {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := make([]model.Bookmark, 0, len(e.bookmarks))
	for _, b := range e.bookmarks {
		if e.activeFolderID != nil && !b.InFolder(*e.activeFolderID) {
			continue
		}
		if !Matches(b, e.searchText) {
			continue
		}
		view = append(view, b)
	}

	sortBookmarks(view, e.sortMode, e.collator)
	return view
}

// Matches reports whether query is a substring of the bookmark's title, url
// or description, ignoring case.
func Matches(b model.Bookmark, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(b.Title), query) ||
		strings.Contains(strings.ToLower(b.URL), query) ||
		strings.Contains(strings.ToLower(b.Description), query)
}

// ResolveFolder returns the folder a bookmark belongs to, or model.Other when
// it has none or its folder is unknown.
func (e *Engine) ResolveFolder(b model.Bookmark) model.Folder {
	if b.FolderID == nil {
		return model.Other
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range e.folders {
		if f.ID == *b.FolderID {
			return f
		}
	}
	return model.Other
}

// Folders returns the current folder list in snapshot order.
func (e *Engine) Folders() []model.Folder {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]model.Folder, len(e.folders))
	copy(cp, e.folders)
	return cp
}

// Bookmark returns the bookmark with id from the current snapshot.
func (e *Engine) Bookmark(id string) (model.Bookmark, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range e.bookmarks {
		if b.ID == id {
			return b, true
		}
	}
	return model.Bookmark{}, false
}

// KnownIDs returns the set of bookmark ids in the current snapshot.
func (e *Engine) KnownIDs() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make(map[string]bool, len(e.bookmarks))
	for _, b := range e.bookmarks {
		ids[b.ID] = true
	}
	return ids
}

// Snapshot returns a copy of the current lists.
func (e *Engine) Snapshot() *model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := &model.Snapshot{
		Folders:   make([]model.Folder, len(e.folders)),
		Bookmarks: make([]model.Bookmark, len(e.bookmarks)),
	}
	copy(snap.Folders, e.folders)
	copy(snap.Bookmarks, e.bookmarks)
	return snap
}

// CountByFolder returns bookmark counts keyed by folder id. Orphaned and
// unfiled bookmarks are counted under "".
func (e *Engine) CountByFolder() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	known := make(map[string]bool, len(e.folders))
	for _, f := range e.folders {
		known[f.ID] = true
	}
	counts := make(map[string]int, len(e.folders)+1)
	for _, b := range e.bookmarks {
		if b.FolderID != nil && known[*b.FolderID] {
			counts[*b.FolderID]++
			continue
		}
		counts[""]++
	}
	return counts
}
