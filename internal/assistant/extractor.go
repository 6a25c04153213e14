package assistant

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmark/internal/apperr"
	"github.com/nikbrunner/bmark/internal/dispatch"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
)

// Commands is the part of the command dispatcher the assistant drives.
type Commands interface {
	AddBookmark(ctx context.Context, in dispatch.BookmarkInput) (model.Bookmark, error)
	DeleteBookmarks(ctx context.Context, ids []string, confirmed bool) ([]string, error)
	DeleteByURL(ctx context.Context, url string) ([]string, error)
}

// FolderLister exposes the folders a folder name can resolve to.
type FolderLister interface {
	Folders() []model.Folder
}

// Identity reports the signed-in user id, "" when signed out.
type Identity interface {
	UID() string
}

// OutcomeKind describes what a reply led to.
type OutcomeKind int

const (
	OutcomeMessage       OutcomeKind = iota // plain text, nothing to apply
	OutcomeAdded                            // a bookmark was added
	OutcomeDeleted                          // zero or more bookmarks were deleted
	OutcomeUnknownAction                    // payload parsed but the action is not supported
	OutcomeParseFailed                      // payload found but malformed
)

// Outcome reports the effect of one assistant reply.
type Outcome struct {
	Kind       OutcomeKind
	Action     string
	Added      model.Bookmark
	DeletedIDs []string
	// Err holds the parse failure for OutcomeParseFailed. It is recorded
	// here and never returned from Handle.
	Err error
}

// Extractor applies the structured action embedded in an assistant reply.
type Extractor struct {
	commands Commands
	folders  FolderLister
	ids      Identity
	log      logger.Logger
}

// NewExtractor creates an Extractor. folders may be nil, in which case
// folder names are not resolved.
func NewExtractor(commands Commands, folders FolderLister, ids Identity, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{commands: commands, folders: folders, ids: ids, log: log}
}

// Handle inspects reply and applies any embedded action. A malformed
// payload is logged and reported in the Outcome only; errors are returned
// for failed commands.
func (x *Extractor) Handle(ctx context.Context, reply string) (Outcome, error) {
	const op = "assistant action"

	span, ok := ExtractJSON(reply)
	if !ok {
		return Outcome{Kind: OutcomeMessage}, nil
	}

	var p actionPayload
	if err := json.Unmarshal([]byte(span), &p); err != nil {
		perr := apperr.Wrap(apperr.Parse, op, err)
		x.log.Warn("malformed assistant action", logger.Error(perr))
		return Outcome{Kind: OutcomeParseFailed, Err: perr}, nil
	}

	action := p.action()
	switch action {
	case "add":
		if err := x.requireUser(op); err != nil {
			return Outcome{Action: action}, err
		}
		added, err := x.commands.AddBookmark(ctx, dispatch.BookmarkInput{
			Title:       p.Title,
			URL:         p.URL,
			Description: p.Description,
			FolderID:    x.resolveFolder(p),
			Tags:        p.Tags,
		})
		if err != nil {
			return Outcome{Action: action}, err
		}
		x.log.Info("assistant added bookmark", logger.String("id", added.ID))
		return Outcome{Kind: OutcomeAdded, Action: action, Added: added}, nil

	case "delete", "remove":
		if err := x.requireUser(op); err != nil {
			return Outcome{Action: action}, err
		}
		ids, err := x.delete(ctx, p)
		if err != nil {
			return Outcome{Action: action, DeletedIDs: ids}, err
		}
		x.log.Info("assistant deleted bookmarks", logger.Strings("ids", ids))
		return Outcome{Kind: OutcomeDeleted, Action: action, DeletedIDs: ids}, nil

	default:
		x.log.Info("ignoring assistant action", logger.String("action", p.Action))
		return Outcome{Kind: OutcomeUnknownAction, Action: p.Action}, nil
	}
}

func (x *Extractor) requireUser(op string) error {
	if x.ids == nil || x.ids.UID() == "" {
		return apperr.New(apperr.AuthRequired, op, "not signed in")
	}
	return nil
}

func (x *Extractor) delete(ctx context.Context, p actionPayload) ([]string, error) {
	if id := strings.TrimSpace(p.ID); id != "" {
		// The explicit request in the conversation is the confirmation.
		return x.commands.DeleteBookmarks(ctx, []string{id}, true)
	}
	if strings.TrimSpace(p.URL) == "" {
		return nil, apperr.New(apperr.Validation, "assistant action", "delete needs an id or url")
	}
	return x.commands.DeleteByURL(ctx, p.URL)
}

// resolveFolder maps the payload's folder reference to a known folder id.
// A folderId that is not a known id is also tried as a folder name before
// it is passed through unchanged.
func (x *Extractor) resolveFolder(p actionPayload) *string {
	var given *string
	if p.FolderID != nil {
		if id := strings.TrimSpace(*p.FolderID); id != "" {
			given = &id
		}
	}
	if x.folders == nil {
		return given
	}

	folders := x.folders.Folders()
	if given != nil {
		for _, f := range folders {
			if f.ID == *given {
				return given
			}
		}
	}

	name := strings.TrimSpace(p.Folder)
	if name == "" && given != nil {
		name = *given
	}
	if name == "" {
		return nil
	}
	if id, ok := matchFolder(folders, name); ok {
		return &id
	}
	x.log.Debug("no folder matches", logger.String("folder", name))
	return given
}

// matchFolder finds a folder by exact title, ignoring case, then by the
// best fuzzy match.
func matchFolder(folders []model.Folder, name string) (string, bool) {
	titles := make([]string, len(folders))
	for i, f := range folders {
		if strings.EqualFold(f.Title, name) {
			return f.ID, true
		}
		titles[i] = f.Title
	}

	matches := fuzzy.Find(name, titles)
	if len(matches) == 0 {
		return "", false
	}
	return folders[matches[0].Index].ID, true
}
