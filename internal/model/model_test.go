package model_test

import (
	"errors"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmark/internal/model"
)

func stringPtr(s string) *string { return &s }

func TestNewBookmark_DerivesFavicon(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		Title: "Example",
		URL:   "https://Example.com/path?q=1",
	})

	assert.Equal(t, b.Favicon, "https://www.google.com/s2/favicons?domain=example.com&sz=64")
}

func TestNewBookmark_KeepsSuppliedFavicon(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		Title:   "Example",
		URL:     "https://example.com",
		Favicon: "https://example.com/icon.png",
	})

	assert.Equal(t, b.Favicon, "https://example.com/icon.png")
}

func TestNewBookmark_InvalidURLLeavesFaviconEmpty(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		Title: "Broken",
		URL:   "not a url",
	})

	assert.Equal(t, b.Favicon, "")
	assert.Equal(t, b.Title, "Broken")
}

func TestNewBookmark_NormalizesTagsAndFolder(t *testing.T) {
	b := model.NewBookmark(model.NewBookmarkParams{
		Title:    "Go",
		URL:      "https://go.dev",
		FolderID: stringPtr("  "),
		Tags:     []string{"go", " lang ", "go", "", "lang"},
	})

	assert.Assert(t, b.FolderID == nil)
	assert.DeepEqual(t, b.Tags, []string{"go", "lang"})
}

func TestFaviconFor(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https host", url: "https://github.com/x"},
		{name: "relative path", url: "/just/a/path", wantErr: true},
		{name: "no scheme", url: "github.com", wantErr: true},
		{name: "garbage", url: "://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.FaviconFor(tt.url)
			if tt.wantErr {
				assert.Assert(t, errors.Is(err, model.ErrInvalidURL))
				return
			}
			assert.NilError(t, err)
			assert.Assert(t, is.Contains(got, "domain=github.com"))
		})
	}
}

func TestValidateBookmark(t *testing.T) {
	tests := []struct {
		name      string
		bookmark  model.Bookmark
		wantField string
	}{
		{
			name:     "valid",
			bookmark: model.Bookmark{Title: "Repo", URL: "https://github.com/x"},
		},
		{
			name:      "empty title",
			bookmark:  model.Bookmark{Title: "", URL: "https://x.com"},
			wantField: "title",
		},
		{
			name:      "title too long",
			bookmark:  model.Bookmark{Title: strings.Repeat("a", 256), URL: "https://x.com"},
			wantField: "title",
		},
		{
			name:      "description too long",
			bookmark:  model.Bookmark{Title: "t", URL: "https://x.com", Description: strings.Repeat("d", 201)},
			wantField: "description",
		},
		{
			name:      "invalid url",
			bookmark:  model.Bookmark{Title: "t", URL: "nope"},
			wantField: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateBookmark(tt.bookmark)
			if tt.wantField == "" {
				assert.NilError(t, err)
				return
			}
			var verr *model.ValidationError
			assert.Assert(t, errors.As(err, &verr))
			assert.Equal(t, verr.Fields[0].Field, tt.wantField)
		})
	}
}

func TestValidateFolder(t *testing.T) {
	assert.NilError(t, model.ValidateFolder(model.Folder{Title: "Dev"}))
	assert.ErrorContains(t, model.ValidateFolder(model.Folder{Title: strings.Repeat("f", 101)}), "title")
	assert.ErrorContains(t, model.ValidateFolder(model.Folder{}), "title")
}

func TestNewFolder_DefaultsToGray(t *testing.T) {
	f := model.NewFolder(model.NewFolderParams{Title: " Dev "})

	assert.Equal(t, f.Title, "Dev")
	assert.Equal(t, f.Color, model.ColorGray)
}

func TestColorByName(t *testing.T) {
	assert.Equal(t, model.ColorByName("Blue"), model.ColorBlue)
	assert.Equal(t, model.ColorByName("#123456"), "#123456")
	assert.Equal(t, model.ColorName(model.ColorPink), "pink")
	assert.Equal(t, model.ColorName("#123456"), "")
}

func TestIsOther(t *testing.T) {
	assert.Assert(t, model.IsOther(model.Other))
	assert.Assert(t, !model.IsOther(model.Folder{ID: "f1", Title: "Other"}))
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := model.Snapshot{
		Folders: []model.Folder{{ID: "f1", Title: "Dev"}},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "A", URL: "https://a.com", FolderID: stringPtr("f1"), Tags: []string{"z", "a"}},
			{ID: "b2", Title: "B", URL: "https://b.com", FolderID: stringPtr("gone")},
			{ID: "b3", Title: "C", URL: "https://c.com", Tags: []string{"a"}},
		},
	}

	assert.Equal(t, snap.FolderByID("f1").Title, "Dev")
	assert.Assert(t, snap.FolderByID("gone") == nil)
	assert.Equal(t, snap.BookmarkByID("b2").Title, "B")
	assert.Equal(t, len(snap.BookmarksInFolder("f1")), 1)
	assert.Equal(t, len(snap.Orphans()), 2)
	assert.Assert(t, snap.HasBookmarkURL("https://c.com"))
	assert.DeepEqual(t, snap.UniqueTags(), []string{"a", "z"})
}
