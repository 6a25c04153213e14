package dispatch

import (
	"context"
	"io"
	"strings"

	"github.com/nikbrunner/bmark/internal/apperr"
	"github.com/nikbrunner/bmark/internal/importer"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/model"
)

// HTMLImportResult summarizes an ImportHTML call.
type HTMLImportResult struct {
	Added          int
	Skipped        int // url already present
	Invalid        int // failed validation, e.g. javascript: links
	FoldersCreated int
}

// ImportHTML imports a Netscape bookmark file. Folders are matched to
// existing ones by title, ignoring case, or created. Bookmarks whose url is
// already stored are skipped.
func (d *Dispatcher) ImportHTML(ctx context.Context, r io.Reader) (HTMLImportResult, error) {
	const op = "import html"
	var result HTMLImportResult

	parsed, err := importer.ParseHTMLBookmarks(r)
	if err != nil {
		return result, apperr.Wrap(apperr.Parse, op, err)
	}
	uid, err := d.user(op)
	if err != nil {
		return result, err
	}

	ctx, cancel := d.bounded(ctx)
	defer cancel()

	folders, err := d.backend.ListFolders(ctx, uid)
	if err != nil {
		return result, d.backendErr(op, err)
	}
	existing, err := d.backend.ListBookmarks(ctx, uid)
	if err != nil {
		return result, d.backendErr(op, err)
	}

	folderIDs := make(map[string]string, len(folders))
	for _, f := range folders {
		key := strings.ToLower(f.Title)
		if _, ok := folderIDs[key]; !ok {
			folderIDs[key] = f.ID
		}
	}
	for _, title := range parsed.Folders {
		key := strings.ToLower(title)
		if _, ok := folderIDs[key]; ok {
			continue
		}
		f := model.NewFolder(model.NewFolderParams{Title: title})
		if err := model.ValidateFolder(f); err != nil {
			d.log.Warn("skip folder", logger.String("title", title), logger.Error(err))
			continue
		}
		created, err := d.backend.CreateFolder(ctx, uid, f)
		if err != nil {
			return result, d.backendErr(op, err)
		}
		folderIDs[key] = created.ID
		result.FoldersCreated++
	}

	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.URL] = true
	}

	var batch []model.Bookmark
	for _, e := range parsed.Entries {
		in := BookmarkInput{Title: e.Title, URL: e.URL, Description: e.Description, Tags: e.Tags}
		if id, ok := folderIDs[strings.ToLower(e.Folder)]; ok && e.Folder != "" {
			in.FolderID = &id
		}
		b := in.bookmark()
		if seen[b.URL] {
			result.Skipped++
			continue
		}
		if err := model.ValidateBookmark(b); err != nil {
			d.log.Debug("skip invalid bookmark", logger.String("url", e.URL), logger.Error(err))
			result.Invalid++
			continue
		}
		seen[b.URL] = true
		batch = append(batch, b)
	}

	created, err := d.backend.CreateBookmarks(ctx, uid, batch)
	if err != nil {
		return result, d.backendErr(op, err)
	}
	result.Added = len(created)
	d.log.Info("html import finished",
		logger.Int("added", result.Added),
		logger.Int("skipped", result.Skipped),
		logger.Int("invalid", result.Invalid),
		logger.Int("folders", result.FoldersCreated),
	)
	return result, nil
}
