package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmark/internal/dispatch"
	"github.com/nikbrunner/bmark/internal/i18n"
)

// resultMsg reports a finished command. The collection itself changes only
// when the backend echoes the write as a snapshot.
type resultMsg struct {
	status         string
	err            error
	clearSelection bool
	resetFolder    bool
}

// chatMsg reports a finished assistant turn.
type chatMsg struct {
	err error
}

func (a App) exec(fn func(ctx context.Context) resultMsg) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return fn(ctx)
	}
}

func (a App) addBookmarkCmd(in dispatch.BookmarkInput) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		b, err := commands.AddBookmark(ctx, in)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Textf(i18n.ChatAdded, lang, b.Title)}
	})
}

func (a App) renameCmd(id, title string) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		if err := commands.RenameBookmark(ctx, id, title); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Text(i18n.StatusRenamed, lang)}
	})
}

func (a App) updateTagsCmd(id string, tags []string) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		if err := commands.UpdateTags(ctx, id, tags); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Text(i18n.StatusTagged, lang)}
	})
}

func (a App) toggleFavoriteCmd(id string) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		fav, err := commands.ToggleFavorite(ctx, id)
		if err != nil {
			return resultMsg{err: err}
		}
		if fav {
			return resultMsg{status: i18n.Text(i18n.StatusFavorite, lang)}
		}
		return resultMsg{status: i18n.Text(i18n.StatusUnfavorite, lang)}
	})
}

func (a App) createFolderCmd(title, color string) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		f, err := commands.CreateFolder(ctx, title, color)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Textf(i18n.StatusFolderAdded, lang, f.Title)}
	})
}

func (a App) deleteFolderCmd(id string) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		if err := commands.DeleteFolder(ctx, id); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Text(i18n.StatusFolderGone, lang), resetFolder: true}
	})
}

func (a App) moveCmd(ids []string, target dispatch.MoveTarget) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		if _, err := commands.MoveToFolder(ctx, ids, target); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Textf(i18n.StatusMoved, lang, len(ids)), clearSelection: true}
	})
}

func (a App) deleteCmd(ids []string) tea.Cmd {
	commands, lang := a.commands, a.lang
	return a.exec(func(ctx context.Context) resultMsg {
		deleted, err := commands.DeleteBookmarks(ctx, ids, true)
		if err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: i18n.Textf(i18n.StatusDeleted, lang, len(deleted)), clearSelection: true}
	})
}

func (a App) sendChatCmd(text string) tea.Cmd {
	chat, ctx := a.chat, a.ctx
	return func() tea.Msg {
		_, err := chat.Send(ctx, text)
		return chatMsg{err: err}
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
