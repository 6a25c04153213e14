package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nikbrunner/bmark/internal/apperr"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/storage"
)

// DefaultTimeout bounds each backend call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Identity reports the signed-in user id, "" when signed out.
type Identity interface {
	UID() string
}

// Dispatcher turns user commands into validated, time-bounded backend
// writes. It holds no collection state: results come back through the
// change stream.
type Dispatcher struct {
	backend storage.Backend
	ids     Identity
	timeout time.Duration
	log     logger.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the bound applied to every backend call.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger sets the command logger.
func WithLogger(l logger.Logger) Option {
	return func(disp *Dispatcher) { disp.log = l }
}

// New creates a Dispatcher writing to backend on behalf of ids.
func New(backend storage.Backend, ids Identity, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		ids:     ids,
		timeout: DefaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BookmarkInput is the caller-supplied data for a new bookmark. It is also
// the element type of the JSON import format.
type BookmarkInput struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	FolderID    *string  `json:"folderId,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Favicon     string   `json:"favicon,omitempty"`
	Favorite    bool     `json:"favorite,omitempty"`
}

func (in BookmarkInput) bookmark() model.Bookmark {
	return model.NewBookmark(model.NewBookmarkParams{
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		FolderID:    in.FolderID,
		Favorite:    in.Favorite,
		Tags:        in.Tags,
		Favicon:     in.Favicon,
	})
}

// MoveTarget names the destination of a move. A non-blank NewFolderTitle
// takes precedence over FolderID and creates the folder once per call.
type MoveTarget struct {
	FolderID       *string
	NewFolderTitle string
	NewFolderColor string
}

func (d *Dispatcher) user(op string) (string, error) {
	if d.ids == nil {
		return "", apperr.New(apperr.AuthRequired, op, "not signed in")
	}
	uid := d.ids.UID()
	if uid == "" {
		return "", apperr.New(apperr.AuthRequired, op, "not signed in")
	}
	return uid, nil
}

func (d *Dispatcher) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.timeout)
}

// backendErr classifies a backend failure.
func (d *Dispatcher) backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := apperr.BackendRejected
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = apperr.Timeout
	case errors.Is(err, storage.ErrNotFound):
		kind = apperr.NotFound
	}
	d.log.Warn("command failed", logger.String("op", op), logger.String("kind", kind.String()), logger.Error(err))
	return apperr.Wrap(kind, op, err)
}

func validationErr(op string, err error) error {
	return apperr.Wrap(apperr.Validation, op, err)
}

// AddBookmark validates in and creates the bookmark.
func (d *Dispatcher) AddBookmark(ctx context.Context, in BookmarkInput) (model.Bookmark, error) {
	const op = "add bookmark"
	b := in.bookmark()
	if err := model.ValidateBookmark(b); err != nil {
		return model.Bookmark{}, validationErr(op, err)
	}
	uid, err := d.user(op)
	if err != nil {
		return model.Bookmark{}, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	created, err := d.backend.CreateBookmark(ctx, uid, b)
	if err != nil {
		return model.Bookmark{}, d.backendErr(op, err)
	}
	d.log.Info("bookmark added", logger.String("id", created.ID), logger.String("url", created.URL))
	return created, nil
}

// RenameBookmark replaces the title of a bookmark.
func (d *Dispatcher) RenameBookmark(ctx context.Context, id, title string) error {
	const op = "rename bookmark"
	title = strings.TrimSpace(title)
	if id == "" {
		return apperr.New(apperr.Validation, op, "bookmark id is required")
	}
	if err := model.ValidateBookmarkTitle(title); err != nil {
		return validationErr(op, err)
	}
	uid, err := d.user(op)
	if err != nil {
		return err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	return d.backendErr(op, d.backend.UpdateBookmark(ctx, uid, id, storage.BookmarkPatch{Title: &title}))
}

// UpdateTags replaces the tags of a bookmark. Blank and repeated tags are
// dropped.
func (d *Dispatcher) UpdateTags(ctx context.Context, id string, tags []string) error {
	const op = "update tags"
	if id == "" {
		return apperr.New(apperr.Validation, op, "bookmark id is required")
	}
	uid, err := d.user(op)
	if err != nil {
		return err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	patch := storage.BookmarkPatch{Tags: model.NormalizeTags(tags)}
	return d.backendErr(op, d.backend.UpdateBookmark(ctx, uid, id, patch))
}

// ToggleFavorite flips the favorite flag as currently stored and returns
// the new value.
func (d *Dispatcher) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	const op = "toggle favorite"
	if id == "" {
		return false, apperr.New(apperr.Validation, op, "bookmark id is required")
	}
	uid, err := d.user(op)
	if err != nil {
		return false, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	current, err := d.backend.GetBookmark(ctx, uid, id)
	if err != nil {
		return false, d.backendErr(op, err)
	}
	flipped := !current.Favorite
	if err := d.backend.UpdateBookmark(ctx, uid, id, storage.BookmarkPatch{Favorite: &flipped}); err != nil {
		return false, d.backendErr(op, err)
	}
	return flipped, nil
}

// CreateFolder creates a folder. The color defaults to gray.
func (d *Dispatcher) CreateFolder(ctx context.Context, title, color string) (model.Folder, error) {
	const op = "create folder"
	f := model.NewFolder(model.NewFolderParams{Title: title, Color: color})
	if err := model.ValidateFolder(f); err != nil {
		return model.Folder{}, validationErr(op, err)
	}
	uid, err := d.user(op)
	if err != nil {
		return model.Folder{}, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	created, err := d.backend.CreateFolder(ctx, uid, f)
	if err != nil {
		return model.Folder{}, d.backendErr(op, err)
	}
	d.log.Info("folder created", logger.String("id", created.ID), logger.String("title", created.Title))
	return created, nil
}

// DeleteFolder removes a folder. Its bookmarks keep the dangling folder id
// and are shown under Other.
func (d *Dispatcher) DeleteFolder(ctx context.Context, id string) error {
	const op = "delete folder"
	if strings.TrimSpace(id) == "" {
		return apperr.New(apperr.Validation, op, "folder id is required")
	}
	uid, err := d.user(op)
	if err != nil {
		return err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	return d.backendErr(op, d.backend.DeleteFolder(ctx, uid, id))
}

// MoveToFolder moves every bookmark in ids to target and returns the id of
// the destination folder.
func (d *Dispatcher) MoveToFolder(ctx context.Context, ids []string, target MoveTarget) (string, error) {
	const op = "move to folder"
	if len(ids) == 0 {
		return "", apperr.New(apperr.Validation, op, "no bookmarks selected")
	}
	newTitle := strings.TrimSpace(target.NewFolderTitle)
	if newTitle == "" && (target.FolderID == nil || strings.TrimSpace(*target.FolderID) == "") {
		return "", apperr.New(apperr.Validation, op, "folder is required")
	}
	uid, err := d.user(op)
	if err != nil {
		return "", err
	}

	var folderID string
	if newTitle != "" {
		f, err := d.CreateFolder(ctx, newTitle, target.NewFolderColor)
		if err != nil {
			return "", err
		}
		folderID = f.ID
	} else {
		folderID = strings.TrimSpace(*target.FolderID)
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	for _, id := range ids {
		if err := d.backend.UpdateBookmark(ctx, uid, id, storage.BookmarkPatch{FolderID: &folderID}); err != nil {
			return folderID, d.backendErr(op, err)
		}
	}
	d.log.Info("bookmarks moved", logger.Int("count", len(ids)), logger.String("folder", folderID))
	return folderID, nil
}

// DeleteBookmark removes one bookmark. The caller must pass confirmed=true
// once the user has confirmed the delete.
func (d *Dispatcher) DeleteBookmark(ctx context.Context, id string, confirmed bool) error {
	_, err := d.DeleteBookmarks(ctx, []string{id}, confirmed)
	return err
}

// DeleteBookmarks removes every bookmark in ids and returns the ids deleted
// before any failure. Ids that are not stored are skipped and left out of
// the result.
func (d *Dispatcher) DeleteBookmarks(ctx context.Context, ids []string, confirmed bool) ([]string, error) {
	const op = "delete bookmark"
	if !confirmed {
		return nil, apperr.New(apperr.Validation, op, "delete not confirmed")
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, apperr.New(apperr.Validation, op, "bookmark id is required")
		}
	}
	if len(ids) == 0 {
		return nil, apperr.New(apperr.Validation, op, "no bookmarks selected")
	}
	uid, err := d.user(op)
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := d.backend.GetBookmark(ctx, uid, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				d.log.Debug("delete skipped missing bookmark", logger.String("id", id))
				continue
			}
			return deleted, d.backendErr(op, err)
		}
		if err := d.backend.DeleteBookmark(ctx, uid, id); err != nil {
			return deleted, d.backendErr(op, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

// DeleteByURL removes every bookmark whose url equals url and returns their
// ids. No match is not an error.
func (d *Dispatcher) DeleteByURL(ctx context.Context, url string) ([]string, error) {
	const op = "delete by url"
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.New(apperr.Validation, op, "url is required")
	}
	uid, err := d.user(op)
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	matches, err := d.backend.QueryBookmarksByURL(ctx, uid, url)
	if err != nil {
		return nil, d.backendErr(op, err)
	}
	deleted := make([]string, 0, len(matches))
	for _, b := range matches {
		if err := d.backend.DeleteBookmark(ctx, uid, b.ID); err != nil {
			return deleted, d.backendErr(op, err)
		}
		deleted = append(deleted, b.ID)
	}
	d.log.Info("bookmarks deleted by url", logger.String("url", url), logger.Int("count", len(deleted)))
	return deleted, nil
}

// ImportJSON creates the bookmarks described by payload, either one object
// or an array. folderID, when set, files entries that name no folder of
// their own. Nothing is written unless the whole payload parses and every
// entry validates.
func (d *Dispatcher) ImportJSON(ctx context.Context, payload []byte, folderID *string) ([]model.Bookmark, error) {
	const op = "import json"
	inputs, err := decodeImport(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.Parse, op, err)
	}

	bookmarks := make([]model.Bookmark, 0, len(inputs))
	for _, in := range inputs {
		if in.FolderID == nil {
			in.FolderID = folderID
		}
		b := in.bookmark()
		if err := model.ValidateBookmark(b); err != nil {
			return nil, validationErr(op, err)
		}
		bookmarks = append(bookmarks, b)
	}
	uid, err := d.user(op)
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()
	created, err := d.backend.CreateBookmarks(ctx, uid, bookmarks)
	if err != nil {
		return nil, d.backendErr(op, err)
	}
	d.log.Info("bookmarks imported", logger.Int("count", len(created)))
	return created, nil
}

func decodeImport(payload []byte) ([]BookmarkInput, error) {
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		var many []BookmarkInput
		if err := json.Unmarshal([]byte(trimmed), &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one BookmarkInput
	if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
		return nil, err
	}
	return []BookmarkInput{one}, nil
}
