package i18n

import (
	"fmt"
	"sort"
	"strings"
)

// Key names a translatable string.
type Key string

const (
	AppTitle          Key = "app.title"
	FolderAll         Key = "folder.all"
	FolderOther       Key = "folder.other"
	SearchPlaceholder Key = "search.placeholder"
	SortLabel         Key = "sort.label"
	EmptyView         Key = "view.empty"
	SignedOut         Key = "status.signed_out"
	Selected          Key = "status.selected"
	Copied            Key = "status.copied"
	ConfirmDelete     Key = "confirm.delete"
	ConfirmDeleteMany Key = "confirm.delete_many"
	PromptRename      Key = "prompt.rename"
	PromptNewFolder   Key = "prompt.new_folder"
	PromptMove        Key = "prompt.move"
	PromptAddURL      Key = "prompt.add_url"
	PromptAddTitle    Key = "prompt.add_title"
	HelpBrowse        Key = "help.browse"
	ChatAdded         Key = "chat.added"
	ChatDeleted       Key = "chat.deleted"
	ChatDeletedNone   Key = "chat.deleted_none"
	ChatUnknownAction Key = "chat.unknown_action"
	ChatParseFailed   Key = "chat.parse_failed"
	ChatError         Key = "chat.error"
	SenderUser        Key = "sender.user"
	SenderAssistant   Key = "sender.assistant"
	SenderSystem      Key = "sender.system"
	PromptTags        Key = "prompt.tags"
	StatusRenamed     Key = "status.renamed"
	StatusTagged      Key = "status.tagged"
	StatusFavorite    Key = "status.favorite"
	StatusUnfavorite  Key = "status.unfavorite"
	StatusMoved       Key = "status.moved"
	StatusDeleted     Key = "status.deleted"
	StatusFolderAdded Key = "status.folder_added"
	StatusFolderGone  Key = "status.folder_deleted"
	ChatUnavailable   Key = "chat.unavailable"
	ChatThinking      Key = "chat.thinking"
)

// DefaultLanguage is used for unknown languages and missing keys.
const DefaultLanguage = "en"

var tables = map[string]map[Key]string{
	"en": {
		AppTitle:          "Bookmarks",
		FolderAll:         "All",
		FolderOther:       "Other",
		SearchPlaceholder: "Search title, url, description",
		SortLabel:         "Sort",
		EmptyView:         "No bookmarks here.",
		SignedOut:         "Not signed in.",
		Selected:          "%d selected",
		Copied:            "Copied %s",
		ConfirmDelete:     "Delete %q? (y/n)",
		ConfirmDeleteMany: "Delete %d bookmarks? (y/n)",
		PromptRename:      "New title",
		PromptNewFolder:   "Folder title",
		PromptMove:        "Move to folder",
		PromptAddURL:      "URL",
		PromptAddTitle:    "Title",
		HelpBrowse:        "j/k move  / search  tab folder  s sort  space select  f fav  a add  m move  r rename  t tags  d delete  y copy  c chat  q quit",
		ChatAdded:         "Added %q.",
		ChatDeleted:       "Deleted %d bookmark(s).",
		ChatDeletedNone:   "No bookmark matched.",
		ChatUnknownAction: "Ignored unknown action %q.",
		ChatParseFailed:   "Could not read the action in this reply.",
		ChatError:         "Error: %s",
		SenderUser:        "You",
		SenderAssistant:   "Assistant",
		SenderSystem:      "System",
		PromptTags:        "Tags (comma separated)",
		StatusRenamed:     "Renamed.",
		StatusTagged:      "Tags updated.",
		StatusFavorite:    "Marked as favorite.",
		StatusUnfavorite:  "Removed from favorites.",
		StatusMoved:       "Moved %d bookmark(s).",
		StatusDeleted:     "Deleted %d bookmark(s).",
		StatusFolderAdded: "Created folder %q.",
		StatusFolderGone:  "Deleted folder.",
		ChatUnavailable:   "Assistant is not configured.",
		ChatThinking:      "Thinking...",
	},
	"de": {
		AppTitle:          "Lesezeichen",
		FolderAll:         "Alle",
		FolderOther:       "Sonstige",
		SearchPlaceholder: "Titel, URL, Beschreibung durchsuchen",
		SortLabel:         "Sortierung",
		EmptyView:         "Keine Lesezeichen vorhanden.",
		SignedOut:         "Nicht angemeldet.",
		Selected:          "%d ausgewählt",
		Copied:            "%s kopiert",
		ConfirmDelete:     "%q löschen? (y/n)",
		ConfirmDeleteMany: "%d Lesezeichen löschen? (y/n)",
		PromptRename:      "Neuer Titel",
		PromptNewFolder:   "Ordnername",
		PromptMove:        "In Ordner verschieben",
		PromptAddURL:      "URL",
		PromptAddTitle:    "Titel",
		HelpBrowse:        "j/k bewegen  / suchen  tab Ordner  s sortieren  space auswählen  f Favorit  a neu  m verschieben  r umbenennen  t Tags  d löschen  y kopieren  c Chat  q beenden",
		ChatAdded:         "%q hinzugefügt.",
		ChatDeleted:       "%d Lesezeichen gelöscht.",
		ChatDeletedNone:   "Kein Lesezeichen gefunden.",
		ChatUnknownAction: "Unbekannte Aktion %q ignoriert.",
		ChatParseFailed:   "Die Aktion in dieser Antwort war nicht lesbar.",
		ChatError:         "Fehler: %s",
		SenderUser:        "Du",
		SenderAssistant:   "Assistent",
		SenderSystem:      "System",
		PromptTags:        "Tags (durch Komma getrennt)",
		StatusRenamed:     "Umbenannt.",
		StatusTagged:      "Tags aktualisiert.",
		StatusFavorite:    "Als Favorit markiert.",
		StatusUnfavorite:  "Aus Favoriten entfernt.",
		StatusMoved:       "%d Lesezeichen verschoben.",
		StatusDeleted:     "%d Lesezeichen gelöscht.",
		StatusFolderAdded: "Ordner %q angelegt.",
		StatusFolderGone:  "Ordner gelöscht.",
		ChatUnavailable:   "Assistent ist nicht eingerichtet.",
		ChatThinking:      "Denke nach...",
	},
}

// Languages returns the supported language codes, sorted.
func Languages() []string {
	langs := make([]string, 0, len(tables))
	for lang := range tables {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supported reports whether lang has a table.
func Supported(lang string) bool {
	_, ok := tables[normalize(lang)]
	return ok
}

// Text returns the string for key in lang, falling back to English.
// An unknown key yields the key itself.
func Text(key Key, lang string) string {
	if s, ok := tables[normalize(lang)][key]; ok {
		return s
	}
	if s, ok := tables[DefaultLanguage][key]; ok {
		return s
	}
	return string(key)
}

// Textf formats the string for key with args.
func Textf(key Key, lang string, args ...interface{}) string {
	return fmt.Sprintf(Text(key, lang), args...)
}

// Validate reports every key missing from any language table.
func Validate() error {
	keys := make(map[Key]bool)
	for _, table := range tables {
		for k := range table {
			keys[k] = true
		}
	}

	var missing []string
	for _, lang := range Languages() {
		for k := range keys {
			if _, ok := tables[lang][k]; !ok {
				missing = append(missing, lang+":"+string(k))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing translations: %s", strings.Join(missing, ", "))
}

func normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
