package tui

import "github.com/nikbrunner/bmark/internal/model"

// FolderEntry is one row of the folder pane. The first row is always the
// unfiltered "All" entry, whose Folder is nil.
type FolderEntry struct {
	Folder *model.Folder
	Count  int
}

// ID returns the folder id to filter by, or nil for "All".
func (e FolderEntry) ID() *string {
	if e.Folder == nil {
		return nil
	}
	id := e.Folder.ID
	return &id
}

// IsAll reports whether this is the unfiltered entry.
func (e FolderEntry) IsAll() bool {
	return e.Folder == nil
}

// folderEntries builds the folder pane rows. counts is keyed by folder id
// with orphans under "".
func folderEntries(folders []model.Folder, counts map[string]int) []FolderEntry {
	total := 0
	for _, n := range counts {
		total += n
	}

	entries := make([]FolderEntry, 0, len(folders)+1)
	entries = append(entries, FolderEntry{Count: total})
	for i := range folders {
		f := folders[i]
		entries = append(entries, FolderEntry{Folder: &f, Count: counts[f.ID]})
	}
	return entries
}
