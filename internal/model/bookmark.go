package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidURL is returned when a URL has no usable scheme or host.
var ErrInvalidURL = errors.New("invalid url")

const faviconService = "https://www.google.com/s2/favicons?domain=%s&sz=64"

// Bookmark represents a saved URL with metadata.
type Bookmark struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=255"`
	URL         string    `json:"url" validate:"required,url"`
	Description string    `json:"description,omitempty" validate:"max=200"`
	FolderID    *string   `json:"folderId"` // nil = unfiled, shown under Other
	Favorite    bool      `json:"favorite"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"` // zero = unknown
	Favicon     string    `json:"favicon,omitempty"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title       string
	URL         string
	Description string
	FolderID    *string
	Favorite    bool
	Tags        []string
	Favicon     string
}

// NewBookmark builds an unsaved Bookmark. The ID and CreatedAt are left for
// the storage backend to assign. A favicon is derived from the URL host when
// the caller did not supply one; an unparseable URL leaves it empty.
func NewBookmark(params NewBookmarkParams) Bookmark {
	favicon := params.Favicon
	if favicon == "" {
		if derived, err := FaviconFor(params.URL); err == nil {
			favicon = derived
		}
	}

	return Bookmark{
		Title:       strings.TrimSpace(params.Title),
		URL:         strings.TrimSpace(params.URL),
		Description: strings.TrimSpace(params.Description),
		FolderID:    normalizeID(params.FolderID),
		Favorite:    params.Favorite,
		Tags:        NormalizeTags(params.Tags),
		Favicon:     favicon,
	}
}

// FaviconFor derives a favicon URL from the host of rawURL.
func FaviconFor(rawURL string) (string, error) {
	host, err := HostOf(rawURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(faviconService, url.QueryEscape(host)), nil
}

// HostOf returns the lowercased host of an absolute URL.
func HostOf(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

// NormalizeTags trims tags, drops blanks and suppresses duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// InFolder reports whether the bookmark's folder id equals id exactly.
func (b Bookmark) InFolder(id string) bool {
	return b.FolderID != nil && *b.FolderID == id
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
