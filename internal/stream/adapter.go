package stream

import (
	"context"
	"sync"

	"github.com/nikbrunner/bmark/internal/auth"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/storage"
)

// Source provides live full-snapshot subscriptions per user.
type Source interface {
	SubscribeBookmarks(uid string, fn func([]model.Bookmark)) (storage.Cancel, error)
	SubscribeFolders(uid string, fn func([]model.Folder)) (storage.Cancel, error)
}

// Sink receives snapshots. The collection engine is the usual sink.
type Sink interface {
	ApplyBookmarks(items []model.Bookmark)
	ApplyFolders(items []model.Folder)
	Reset()
}

// Adapter binds the bookmark and folder subscriptions of one user to a
// sink for the lifetime of an authenticated session.
type Adapter struct {
	src  Source
	sink Sink
	log  logger.Logger

	mu              sync.Mutex
	uid             string
	cancelBookmarks storage.Cancel
	cancelFolders   storage.Cancel
}

// New creates an idle Adapter.
func New(src Source, sink Sink, log logger.Logger) *Adapter {
	return &Adapter{src: src, sink: sink, log: log}
}

// UID returns the user whose collections are currently streamed.
func (a *Adapter) UID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uid
}

// Start subscribes both collections for uid. An empty uid subscribes
// nothing. Starting for a different user ends the previous session first.
func (a *Adapter) Start(uid string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if uid == "" {
		return nil
	}
	if a.uid == uid {
		return nil
	}
	if a.uid != "" {
		a.stopLocked()
	}

	cancelBookmarks, err := a.src.SubscribeBookmarks(uid, func(items []model.Bookmark) {
		a.log.Debug("bookmarks snapshot", logger.String("uid", uid), logger.Int("count", len(items)))
		a.sink.ApplyBookmarks(items)
	})
	if err != nil {
		return err
	}
	cancelFolders, err := a.src.SubscribeFolders(uid, func(items []model.Folder) {
		a.log.Debug("folders snapshot", logger.String("uid", uid), logger.Int("count", len(items)))
		a.sink.ApplyFolders(items)
	})
	if err != nil {
		cancelBookmarks()
		return err
	}

	a.uid = uid
	a.cancelBookmarks = cancelBookmarks
	a.cancelFolders = cancelFolders
	a.log.Info("session started", logger.String("uid", uid))
	return nil
}

// Stop cancels both subscriptions and clears the sink.
func (a *Adapter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Adapter) stopLocked() {
	if a.uid == "" {
		return
	}
	a.cancelBookmarksLocked()
	a.cancelFoldersLocked()
	a.sink.Reset()
	a.log.Info("session ended", logger.String("uid", a.uid))
	a.uid = ""
}

// CancelBookmarks stops only the bookmark subscription.
func (a *Adapter) CancelBookmarks() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelBookmarksLocked()
}

// CancelFolders stops only the folder subscription.
func (a *Adapter) CancelFolders() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelFoldersLocked()
}

func (a *Adapter) cancelBookmarksLocked() {
	if a.cancelBookmarks != nil {
		a.cancelBookmarks()
		a.cancelBookmarks = nil
	}
}

func (a *Adapter) cancelFoldersLocked() {
	if a.cancelFolders != nil {
		a.cancelFolders()
		a.cancelFolders = nil
	}
}

// Run follows identity events until ctx ends or events closes: sign-in
// starts a session, sign-out stops it. The session is always stopped on
// return.
func (a *Adapter) Run(ctx context.Context, events <-chan auth.Event) error {
	defer a.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ev.SignedIn() {
				a.Stop()
				continue
			}
			if err := a.Start(ev.Identity.UID); err != nil {
				a.log.Error("start session", logger.String("uid", ev.Identity.UID), logger.Error(err))
			}
		}
	}
}
