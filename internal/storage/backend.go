package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/bmark/internal/model"
)

// ErrNotFound is returned when a document does not exist for the user.
var ErrNotFound = errors.New("document not found")

// Cancel stops a live subscription. It is safe to call more than once and
// must not be called from inside the subscription's own callback.
type Cancel func()

// BookmarkPatch lists the fields of a bookmark to overwrite. Nil fields are
// left untouched.
type BookmarkPatch struct {
	Title       *string
	Description *string
	Favorite    *bool
	Tags        []string
	FolderID    *string
	ClearFolder bool
}

// Empty reports whether the patch changes nothing.
func (p BookmarkPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Favorite == nil &&
		p.Tags == nil && p.FolderID == nil && !p.ClearFolder
}

// Backend is a per-user document store for bookmarks and folders. Every
// write publishes a change so live subscribers receive a fresh snapshot.
type Backend interface {
	CreateBookmark(ctx context.Context, uid string, b model.Bookmark) (model.Bookmark, error)
	CreateBookmarks(ctx context.Context, uid string, bs []model.Bookmark) ([]model.Bookmark, error)
	GetBookmark(ctx context.Context, uid, id string) (model.Bookmark, error)
	UpdateBookmark(ctx context.Context, uid, id string, patch BookmarkPatch) error
	DeleteBookmark(ctx context.Context, uid, id string) error
	QueryBookmarksByURL(ctx context.Context, uid, url string) ([]model.Bookmark, error)
	ListBookmarks(ctx context.Context, uid string) ([]model.Bookmark, error)

	CreateFolder(ctx context.Context, uid string, f model.Folder) (model.Folder, error)
	DeleteFolder(ctx context.Context, uid, id string) error
	ListFolders(ctx context.Context, uid string) ([]model.Folder, error)

	SubscribeBookmarks(uid string, fn func([]model.Bookmark)) (Cancel, error)
	SubscribeFolders(uid string, fn func([]model.Folder)) (Cancel, error)
}

// BookmarksTopic is the change channel for a user's bookmarks collection.
func BookmarksTopic(uid string) string {
	return fmt.Sprintf("users/%s/bookmarks", uid)
}

// FoldersTopic is the change channel for a user's folders collection.
func FoldersTopic(uid string) string {
	return fmt.Sprintf("users/%s/folders", uid)
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bm/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bm", "bookmarks.db"), nil
}
