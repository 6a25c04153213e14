package ai

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmark/internal/model"
)

const maxSampleTitles = 3

// BuildContext generates a compressed representation of the collection
// suitable for the system prompt: every folder with its id and a few sample
// bookmark titles, followed by the tags in use.
func BuildContext(snap *model.Snapshot) string {
	var sb strings.Builder

	if len(snap.Folders) == 0 {
		sb.WriteString("No folders yet.\n")
	} else {
		sb.WriteString("Available folders (id, title, sample bookmarks):\n")
	}
	for _, folder := range snap.Folders {
		fmt.Fprintf(&sb, "- %s %q\n", folder.ID, folder.Title)
		writeSamples(&sb, snap.BookmarksInFolder(folder.ID))
	}

	if orphans := snap.Orphans(); len(orphans) > 0 {
		fmt.Fprintf(&sb, "- (no folder) %q\n", model.OtherTitle)
		writeSamples(&sb, orphans)
	}

	if tags := snap.UniqueTags(); len(tags) > 0 {
		sb.WriteString("\nExisting tags: ")
		sb.WriteString(strings.Join(tags, ", "))
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeSamples(sb *strings.Builder, bookmarks []model.Bookmark) {
	sampleCount := min(len(bookmarks), maxSampleTitles)
	if sampleCount == 0 {
		return
	}
	titles := make([]string, sampleCount)
	for i := 0; i < sampleCount; i++ {
		titles[i] = fmt.Sprintf("%q", bookmarks[i].Title)
	}
	sb.WriteString("  - ")
	sb.WriteString(strings.Join(titles, ", "))
	sb.WriteString("\n")
}

// SystemPrompt wraps the collection context with the action protocol the
// assistant uses to add or delete bookmarks.
func SystemPrompt(collection string) string {
	return fmt.Sprintf(`You help the user manage their bookmarks.

%s
When the user asks to save a bookmark, answer briefly and include exactly one
JSON object in your reply:
{"action": "add", "title": "...", "url": "https://...", "description": "...", "folderId": "...", "tags": ["..."]}
Use "folder" with a folder title instead of "folderId" if you only know the title.
When the user asks to remove a bookmark, include:
{"action": "delete", "url": "https://..."} or {"action": "delete", "id": "..."}
Otherwise reply in plain text without JSON.`, collection)
}
