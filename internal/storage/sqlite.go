package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
)

const currentSchemaVersion = 2

// SQLiteBackend implements Backend on a SQLite database. Documents are
// scoped by user id; change signals go through a Notifier.
type SQLiteBackend struct {
	db       *sql.DB
	path     string
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

// SQLiteOption customizes a SQLiteBackend.
type SQLiteOption func(*SQLiteBackend)

// WithNotifier replaces the default in-process notifier.
func WithNotifier(n Notifier) SQLiteOption {
	return func(s *SQLiteBackend) { s.notifier = n }
}

// WithLogger sets the logger used for subscription errors.
func WithLogger(l logger.Logger) SQLiteOption {
	return func(s *SQLiteBackend) { s.log = l }
}

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteBackend) { s.now = now }
}

// NewSQLiteBackend opens (and migrates) the database at path.
func NewSQLiteBackend(path string, opts ...SQLiteOption) (*SQLiteBackend, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	s := &SQLiteBackend{
		db:       db,
		path:     path,
		notifier: NewLocalNotifier(),
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteBackend) Path() string {
	return s.path
}

// Close closes the notifier and the database connection.
func (s *SQLiteBackend) Close() error {
	if err := s.notifier.Close(); err != nil {
		s.log.Warn("close notifier", logger.Error(err))
	}
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteBackend) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the document tables. folder_id carries no foreign key:
// deleting a folder leaves bookmarks pointing at it.
func (s *SQLiteBackend) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folders (
			user_id TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			color TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			user_id TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			folder_id TEXT,
			favorite INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_user_created ON bookmarks(user_id, created_at);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the favicon column and the url lookup index.
func (s *SQLiteBackend) migrateV2() error {
	migration := `
		ALTER TABLE bookmarks ADD COLUMN favicon TEXT NOT NULL DEFAULT '';
		CREATE INDEX IF NOT EXISTS idx_bookmarks_user_url ON bookmarks(user_id, url);
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

func (s *SQLiteBackend) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *SQLiteBackend) publish(ctx context.Context, topic string) {
	if err := s.notifier.Publish(ctx, topic); err != nil {
		s.log.Warn("publish change", logger.String("topic", topic), logger.Error(err))
	}
}

// CreateBookmark inserts b with a generated id and createdAt.
func (s *SQLiteBackend) CreateBookmark(ctx context.Context, uid string, b model.Bookmark) (model.Bookmark, error) {
	created, err := s.CreateBookmarks(ctx, uid, []model.Bookmark{b})
	if err != nil {
		return model.Bookmark{}, err
	}
	return created[0], nil
}

// CreateBookmarks inserts all bookmarks in one transaction: either every
// document is written or none is.
func (s *SQLiteBackend) CreateBookmarks(ctx context.Context, uid string, bs []model.Bookmark) ([]model.Bookmark, error) {
	if len(bs) == 0 {
		return []model.Bookmark{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bookmarks (user_id, id, title, url, description, folder_id, favorite, tags, created_at, favicon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "prepare insert bookmark")
	}
	defer stmt.Close()

	created := make([]model.Bookmark, 0, len(bs))
	now := s.stamp()
	for i, b := range bs {
		b.ID = uuid.New().String()
		// Keep batch order stable under created_at ordering.
		b.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if b.Tags == nil {
			b.Tags = []string{}
		}
		tagsJSON, err := json.Marshal(b.Tags)
		if err != nil {
			return nil, errors.Wrap(err, "encode tags")
		}
		if _, err := stmt.ExecContext(ctx,
			uid, b.ID, b.Title, b.URL, b.Description, b.FolderID,
			boolInt(b.Favorite), string(tagsJSON), b.CreatedAt.UnixMilli(), b.Favicon,
		); err != nil {
			return nil, errors.Wrap(err, "insert bookmark")
		}
		created = append(created, b)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	s.publish(ctx, BookmarksTopic(uid))
	return created, nil
}

// GetBookmark reads one bookmark.
func (s *SQLiteBackend) GetBookmark(ctx context.Context, uid, id string) (model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, bookmarkSelect+` WHERE user_id = ? AND id = ?`, uid, id)
	if err != nil {
		return model.Bookmark{}, errors.Wrap(err, "query bookmark")
	}
	bs, err := scanBookmarks(rows)
	if err != nil {
		return model.Bookmark{}, err
	}
	if len(bs) == 0 {
		return model.Bookmark{}, ErrNotFound
	}
	return bs[0], nil
}

// UpdateBookmark overwrites the fields set in patch.
func (s *SQLiteBackend) UpdateBookmark(ctx context.Context, uid, id string, patch BookmarkPatch) error {
	if patch.Empty() {
		return nil
	}

	var sets []string
	var args []any
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Favorite != nil {
		sets = append(sets, "favorite = ?")
		args = append(args, boolInt(*patch.Favorite))
	}
	if patch.Tags != nil {
		tagsJSON, err := json.Marshal(patch.Tags)
		if err != nil {
			return errors.Wrap(err, "encode tags")
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(tagsJSON))
	}
	switch {
	case patch.ClearFolder:
		sets = append(sets, "folder_id = NULL")
	case patch.FolderID != nil:
		sets = append(sets, "folder_id = ?")
		args = append(args, *patch.FolderID)
	}
	args = append(args, uid, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE bookmarks SET "+strings.Join(sets, ", ")+" WHERE user_id = ? AND id = ?",
		args...,
	)
	if err != nil {
		return errors.Wrap(err, "update bookmark")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	s.publish(ctx, BookmarksTopic(uid))
	return nil
}

// DeleteBookmark removes a bookmark. Deleting a missing id is not an error.
func (s *SQLiteBackend) DeleteBookmark(ctx context.Context, uid, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE user_id = ? AND id = ?", uid, id,
	); err != nil {
		return errors.Wrap(err, "delete bookmark")
	}
	s.publish(ctx, BookmarksTopic(uid))
	return nil
}

// QueryBookmarksByURL returns every bookmark whose url equals url.
func (s *SQLiteBackend) QueryBookmarksByURL(ctx context.Context, uid, url string) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, bookmarkSelect+` WHERE user_id = ? AND url = ? ORDER BY created_at, rowid`, uid, url)
	if err != nil {
		return nil, errors.Wrap(err, "query bookmarks by url")
	}
	return scanBookmarks(rows)
}

// ListBookmarks returns the user's bookmarks in creation order.
func (s *SQLiteBackend) ListBookmarks(ctx context.Context, uid string) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, bookmarkSelect+` WHERE user_id = ? ORDER BY created_at, rowid`, uid)
	if err != nil {
		return nil, errors.Wrap(err, "list bookmarks")
	}
	return scanBookmarks(rows)
}

// CreateFolder inserts f with a generated id and createdAt.
func (s *SQLiteBackend) CreateFolder(ctx context.Context, uid string, f model.Folder) (model.Folder, error) {
	f.ID = uuid.New().String()
	f.CreatedAt = s.stamp()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (user_id, id, title, color, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uid, f.ID, f.Title, f.Color, f.CreatedAt.UnixMilli()); err != nil {
		return model.Folder{}, errors.Wrap(err, "insert folder")
	}
	s.publish(ctx, FoldersTopic(uid))
	return f, nil
}

// DeleteFolder removes a folder. Bookmarks referencing it are untouched.
func (s *SQLiteBackend) DeleteFolder(ctx context.Context, uid, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM folders WHERE user_id = ? AND id = ?", uid, id,
	); err != nil {
		return errors.Wrap(err, "delete folder")
	}
	s.publish(ctx, FoldersTopic(uid))
	return nil
}

// ListFolders returns the user's folders in creation order.
func (s *SQLiteBackend) ListFolders(ctx context.Context, uid string) ([]model.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, color, created_at
		FROM folders
		WHERE user_id = ?
		ORDER BY created_at, rowid
	`, uid)
	if err != nil {
		return nil, errors.Wrap(err, "list folders")
	}
	defer rows.Close()

	folders := []model.Folder{}
	for rows.Next() {
		var f model.Folder
		var createdAt int64
		if err := rows.Scan(&f.ID, &f.Title, &f.Color, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan folder")
		}
		f.CreatedAt = fromMillis(createdAt)
		folders = append(folders, f)
	}
	return folders, errors.Wrap(rows.Err(), "iterate folders")
}

// SubscribeBookmarks calls fn with the full bookmark list now and after
// every change, until cancelled.
func (s *SQLiteBackend) SubscribeBookmarks(uid string, fn func([]model.Bookmark)) (Cancel, error) {
	return s.subscribe(BookmarksTopic(uid), func(ctx context.Context) error {
		bs, err := s.ListBookmarks(ctx, uid)
		if err != nil {
			return err
		}
		fn(bs)
		return nil
	})
}

// SubscribeFolders calls fn with the full folder list now and after every
// change, until cancelled.
func (s *SQLiteBackend) SubscribeFolders(uid string, fn func([]model.Folder)) (Cancel, error) {
	return s.subscribe(FoldersTopic(uid), func(ctx context.Context) error {
		fs, err := s.ListFolders(ctx, uid)
		if err != nil {
			return err
		}
		fn(fs)
		return nil
	})
}

// subscribe runs emit on its own goroutine whenever topic signals. Signals
// that arrive while an emit is running coalesce into one re-read, so the
// callback always sees current state rather than a queue of stale lists.
func (s *SQLiteBackend) subscribe(topic string, emit func(context.Context) error) (Cancel, error) {
	ctx, stop := context.WithCancel(context.Background())
	pending := make(chan struct{}, 1)
	pending <- struct{}{} // initial snapshot

	signal := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}
	unsubscribe, err := s.notifier.Subscribe(topic, signal)
	if err != nil {
		stop()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				if ctx.Err() != nil {
					return
				}
				if err := emit(ctx); err != nil && ctx.Err() == nil {
					s.log.Error("snapshot read failed", logger.String("topic", topic), logger.Error(err))
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			stop()
			<-done
		})
	}, nil
}

const bookmarkSelect = `
	SELECT id, title, url, description, folder_id, favorite, tags, created_at, favicon
	FROM bookmarks`

func scanBookmarks(rows *sql.Rows) ([]model.Bookmark, error) {
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		var folderID sql.NullString
		var favorite int
		var tagsJSON string
		var createdAt int64

		if err := rows.Scan(
			&b.ID, &b.Title, &b.URL, &b.Description, &folderID,
			&favorite, &tagsJSON, &createdAt, &b.Favicon,
		); err != nil {
			return nil, errors.Wrap(err, "scan bookmark")
		}

		if folderID.Valid {
			id := folderID.String
			b.FolderID = &id
		}
		b.Favorite = favorite == 1
		if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil || b.Tags == nil {
			b.Tags = []string{}
		}
		b.CreatedAt = fromMillis(createdAt)

		bookmarks = append(bookmarks, b)
	}
	return bookmarks, errors.Wrap(rows.Err(), "iterate bookmarks")
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
