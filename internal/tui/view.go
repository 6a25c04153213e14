package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmark/internal/assistant"
	"github.com/nikbrunner/bmark/internal/i18n"
	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/tui/layout"
)

// View implements tea.Model.
func (a App) View() string {
	switch a.mode {
	case ModeChat:
		return a.renderChat()
	case ModePrompt, ModeMove, ModeConfirm:
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	widths := layout.CalculatePaneWidths(a.width, a.layoutConfig.Pane)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderFolderPane(widths.FolderWidth, paneHeight),
		a.renderListPane(widths.ListWidth, paneHeight),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), columns, a.renderStatus(), a.helpLine()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader shows the title, sort mode, search text and selection count.
func (a App) renderHeader() string {
	parts := []string{
		a.styles.Title.Render(i18n.Text(i18n.AppTitle, a.lang)),
		a.styles.Help.Render(i18n.Text(i18n.SortLabel, a.lang) + ": " + a.engine.SortMode().String()),
	}
	if q := a.engine.SearchText(); q != "" && a.mode != ModeSearch {
		parts = append(parts, a.styles.Help.Render("/"+q))
	}
	if n := a.selection.Len(a.engine.KnownIDs()); n > 0 {
		parts = append(parts, a.styles.Marked.Render(i18n.Textf(i18n.Selected, a.lang, n)))
	}
	return strings.Join(parts, "  ")
}

// renderFolderPane renders "All" followed by every folder with its count.
// Orphaned and unfiled bookmarks are summarized under Other.
func (a App) renderFolderPane(width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	textCfg := a.layoutConfig.Text

	entries := a.folderEntries()
	visible := layout.CalculateVisibleHeight(height, 1)
	offset := layout.CalculateViewportOffset(a.folderIdx, len(entries), visible)

	for i, e := range entries {
		if i < offset || i >= offset+visible {
			continue
		}

		var line string
		if e.IsAll() {
			line = "  " + layout.Columns(i18n.Text(i18n.FolderAll, a.lang), strconv.Itoa(e.Count), itemWidth-2, textCfg)
		} else {
			line = FolderStyle(*e.Folder).Render("●") + " " +
				layout.Columns(e.Folder.Title, strconv.Itoa(e.Count), itemWidth-2, textCfg)
		}

		if i == a.folderIdx {
			line = a.styles.ItemCursor.Render(layout.StripANSI(line))
		} else {
			line = a.styles.Item.Render(line)
		}
		content.WriteString(line + "\n")
	}

	if orphans := a.engine.CountByFolder()[""]; orphans > 0 {
		other := layout.Columns(i18n.Text(i18n.FolderOther, a.lang), strconv.Itoa(orphans), itemWidth-2, textCfg)
		content.WriteString(a.styles.Empty.Render("  " + other))
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderListPane renders the derived view, one bookmark per line.
func (a App) renderListPane(width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	view := a.engine.DerivedView()
	switch {
	case !a.signedIn():
		content.WriteString(a.styles.Empty.Render(i18n.Text(i18n.SignedOut, a.lang)))
	case len(view) == 0:
		content.WriteString(a.styles.Empty.Render(i18n.Text(i18n.EmptyView, a.lang)))
	default:
		known := a.engine.KnownIDs()
		visible := layout.CalculateVisibleHeight(height, 0)
		offset := layout.CalculateViewportOffset(a.cursor, len(view), visible)

		for i, b := range view {
			if i < offset || i >= offset+visible {
				continue
			}
			content.WriteString(a.renderBookmark(b, i == a.cursor, a.selection.IsSelected(b.ID, known), itemWidth) + "\n")
		}
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderBookmark renders "✓ ★ Title     Folder".
func (a App) renderBookmark(b model.Bookmark, cursor, selected bool, width int) string {
	mark := "  "
	if selected {
		mark = "✓ "
	}
	star := "  "
	if b.Favorite {
		star = a.styles.Favorite.Render("★") + " "
	}

	folder := a.engine.ResolveFolder(b)
	folderTitle := folder.Title
	if model.IsOther(folder) {
		folderTitle = i18n.Text(i18n.FolderOther, a.lang)
	}
	text := layout.Columns(b.Title, folderTitle, width-4, a.layoutConfig.Text)

	switch {
	case cursor:
		return a.styles.ItemCursor.Render(mark + layout.StripANSI(star) + text)
	case selected:
		return a.styles.Marked.Render(mark) + star + a.styles.Marked.Render(text)
	default:
		return mark + star + a.styles.Item.Render(text)
	}
}

// renderStatus shows the search input while searching, otherwise the last
// status message or the URL under the cursor.
func (a App) renderStatus() string {
	if a.mode == ModeSearch {
		return a.search.View()
	}
	if a.status != "" {
		if a.statusErr {
			return a.styles.Error.Render(a.status)
		}
		return a.styles.Status.Render(a.status)
	}
	if b, ok := a.current(); ok {
		url, _ := layout.TruncateText(b.URL, a.width-4, a.layoutConfig.Text)
		return a.styles.URL.Render(url)
	}
	return ""
}

// renderModal renders the prompt, move picker or delete confirmation
// centered on screen.
func (a App) renderModal() string {
	width := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)

	var body string
	switch a.mode {
	case ModePrompt:
		body = a.styles.Title.Render(a.prompt.Label) + "\n\n" + a.prompt.Input.View()
	case ModeMove:
		body = a.renderMovePicker()
	case ModeConfirm:
		body = a.confirm.Message
	}

	if a.statusErr && a.status != "" && a.mode != ModeConfirm {
		body += "\n\n" + a.styles.Error.Render(a.status)
	}
	box := a.styles.Prompt.Width(width).Render(body + "\n\n" + a.helpLine())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a App) renderMovePicker() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render(fmt.Sprintf("%s (%d)", i18n.Text(i18n.PromptMove, a.lang), len(a.move.IDs))))
	b.WriteString("\n\n")
	b.WriteString(a.move.FilterInput.View())
	b.WriteString("\n\n")

	if len(a.move.Matches) == 0 {
		if name := trimmed(a.move.FilterInput.Value()); name != "" {
			b.WriteString(a.styles.Empty.Render("+ " + name))
		}
		return b.String()
	}

	start, end := layout.CalculateVisibleListItems(a.layoutConfig.Modal.PickerMaxVisible, a.move.FolderIdx, len(a.move.Matches))
	for i := start; i < end; i++ {
		f := a.move.Matches[i]
		line := FolderStyle(f).Render("●") + " " + f.Title
		if i == a.move.FolderIdx {
			line = a.styles.ItemCursor.Render(layout.StripANSI(line))
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderChat renders the transcript above the message input.
func (a App) renderChat() string {
	input := a.chatView.Input.View()
	if a.chatView.Busy {
		input = a.styles.Help.Render(i18n.Text(i18n.ChatThinking, a.lang))
	}

	content := a.styles.App.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		a.styles.Title.Render(i18n.Text(i18n.AppTitle, a.lang)),
		a.chatView.Viewport.View(),
		a.renderStatus(),
		input,
		a.helpLine(),
	))
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// resizeChat fits the transcript viewport to the window.
func (a *App) resizeChat() {
	width := a.width - 4
	if width < 1 {
		width = 1
	}
	height := a.height - 6 // padding, title, status, input, help
	if height < 1 {
		height = 1
	}
	a.chatView.Viewport.Width = width
	a.chatView.Viewport.Height = height
	a.chatView.Input.Width = width - 2
	a.refreshChat()
}

// refreshChat renders the transcript into the viewport and scrolls to the
// newest entry.
func (a *App) refreshChat() {
	if a.chat == nil {
		return
	}
	wrap := lipgloss.NewStyle().Width(a.chatView.Viewport.Width)

	var b strings.Builder
	for _, e := range a.chat.Entries() {
		label := a.chat.SenderLabel(e.Sender) + ":"
		switch e.Sender {
		case assistant.SenderUser:
			label = a.styles.SenderUser.Render(label)
		case assistant.SenderAssistant:
			label = a.styles.SenderOther.Render(label)
		default:
			label = a.styles.SenderSystem.Render(label)
		}
		b.WriteString(wrap.Render(label+" "+e.Text) + "\n")
	}
	a.chatView.Viewport.SetContent(strings.TrimRight(b.String(), "\n"))
	a.chatView.Viewport.GotoBottom()
}
