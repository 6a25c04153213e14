package model

import "sort"

// Snapshot holds a full copy of one user's folders and bookmarks.
type Snapshot struct {
	Folders   []Folder   `json:"folders"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewSnapshot creates an empty Snapshot with initialized slices.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Folders:   []Folder{},
		Bookmarks: []Bookmark{},
	}
}

// FolderByID finds a folder by ID, returns nil if not found.
func (s *Snapshot) FolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// BookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *Snapshot) BookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// BookmarksInFolder returns bookmarks whose folder id is exactly id.
func (s *Snapshot) BookmarksInFolder(id string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.InFolder(id) {
			result = append(result, b)
		}
	}
	return result
}

// Orphans returns bookmarks without a folder or with a dangling folder id.
func (s *Snapshot) Orphans() []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.FolderID == nil || s.FolderByID(*b.FolderID) == nil {
			result = append(result, b)
		}
	}
	return result
}

// HasBookmarkURL reports whether any bookmark has exactly this URL.
func (s *Snapshot) HasBookmarkURL(url string) bool {
	for _, b := range s.Bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}

// UniqueTags returns every tag in use, sorted.
func (s *Snapshot) UniqueTags() []string {
	tagSet := make(map[string]bool)
	for _, b := range s.Bookmarks {
		for _, tag := range b.Tags {
			tagSet[tag] = true
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
