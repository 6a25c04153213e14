package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmark/internal/assistant"
	"github.com/nikbrunner/bmark/internal/dispatch"
	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/i18n"
	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/selection"
	"github.com/nikbrunner/bmark/internal/tui/layout"
)

// Commands is the write side the browser drives. *dispatch.Dispatcher
// satisfies it.
type Commands interface {
	AddBookmark(ctx context.Context, in dispatch.BookmarkInput) (model.Bookmark, error)
	RenameBookmark(ctx context.Context, id, title string) error
	UpdateTags(ctx context.Context, id string, tags []string) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	CreateFolder(ctx context.Context, title, color string) (model.Folder, error)
	DeleteFolder(ctx context.Context, id string) error
	MoveToFolder(ctx context.Context, ids []string, target dispatch.MoveTarget) (string, error)
	DeleteBookmarks(ctx context.Context, ids []string, confirmed bool) ([]string, error)
}

// Chat is the assistant conversation. *assistant.Chat satisfies it.
type Chat interface {
	Send(ctx context.Context, text string) (assistant.Outcome, error)
	Entries() []assistant.Entry
	SenderLabel(s assistant.Sender) string
}

// Identity reports the signed-in user; an empty UID means signed out.
type Identity interface {
	UID() string
}

// App is the main bubbletea model for the bookmark browser. It renders the
// engine's derived view and never mutates the collection itself: writes go
// through Commands and come back as snapshots.
type App struct {
	ctx          context.Context
	engine       *engine.Engine
	selection    *selection.Manager
	commands     Commands
	chat         Chat
	identity     Identity
	copy         func(string) error
	lang         string
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode      Mode
	folderIdx int // index into folderEntries, 0 = All
	cursor    int // index into the derived view

	// For gg command
	lastKeyWasG bool

	search   textinput.Model
	prompt   PromptState
	move     MoveState
	confirm  ConfirmState
	chatView ChatState

	status    string
	statusErr bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Context      context.Context
	Engine       *engine.Engine
	Selection    *selection.Manager
	Commands     Commands
	Chat         Chat     // optional, disables the assistant if nil
	Identity     Identity // optional, treated as signed in if nil
	Clipboard    func(string) error
	Language     string
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	cfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		cfg = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	sel := params.Selection
	if sel == nil {
		sel = selection.New()
	}
	lang := params.Language
	if lang == "" {
		lang = i18n.DefaultLanguage
	}

	search := textinput.New()
	search.Placeholder = i18n.Text(i18n.SearchPlaceholder, lang)
	search.CharLimit = cfg.Input.SearchCharLimit
	search.Width = cfg.Input.StandardWidth
	search.Prompt = "/ "

	return App{
		ctx:          ctx,
		engine:       params.Engine,
		selection:    sel,
		commands:     params.Commands,
		chat:         params.Chat,
		identity:     params.Identity,
		copy:         copyFn,
		lang:         lang,
		keys:         keys,
		styles:       styles,
		layoutConfig: cfg,
		search:       search,
		prompt:       NewPromptState(cfg),
		move:         NewMoveState(cfg),
		chatView:     NewChatState(cfg),
		width:        80,
		height:       24,
	}
}

// WithDimensions returns a copy of the App sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	a.resizeChat()
	return a
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Input returns the text typed into the open prompt or move filter.
func (a App) Input() string {
	switch a.mode {
	case ModePrompt:
		return a.prompt.Input.Value()
	case ModeMove:
		return a.move.FilterInput.Value()
	}
	return ""
}

// Status returns the last status line message and whether it is an error.
func (a App) Status() (string, bool) {
	return a.status, a.statusErr
}

// ActiveFolder returns the folder pane entry currently filtering the view.
func (a App) ActiveFolder() FolderEntry {
	entries := a.folderEntries()
	if a.folderIdx >= len(entries) {
		return entries[0]
	}
	return entries[a.folderIdx]
}

// Items returns the bookmarks currently shown.
func (a App) Items() []model.Bookmark {
	return a.engine.DerivedView()
}

func (a App) folderEntries() []FolderEntry {
	return folderEntries(a.engine.Folders(), a.engine.CountByFolder())
}

// current returns the bookmark under the cursor.
func (a App) current() (model.Bookmark, bool) {
	view := a.engine.DerivedView()
	if a.cursor < 0 || a.cursor >= len(view) {
		return model.Bookmark{}, false
	}
	return view[a.cursor], true
}

// targets returns the effective selection, or the bookmark under the cursor
// when nothing is selected.
func (a App) targets() []string {
	if ids := a.selection.Selected(a.engine.KnownIDs()); len(ids) > 0 {
		return ids
	}
	if b, ok := a.current(); ok {
		return []string{b.ID}
	}
	return nil
}

func (a App) signedIn() bool {
	return a.identity == nil || a.identity.UID() != ""
}

// clamp keeps the cursor and folder index inside the current lists after a
// snapshot changed them. A deleted active folder falls back to All.
func (a *App) clamp() {
	a.folderIdx = 0
	if active := a.engine.ActiveFolder(); active != nil {
		found := false
		for i, e := range a.folderEntries() {
			if e.Folder != nil && e.Folder.ID == *active {
				a.folderIdx = i
				found = true
				break
			}
		}
		if !found {
			a.engine.SetActiveFolder(nil)
		}
	}

	n := len(a.engine.DerivedView())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = err.Error()
	a.statusErr = true
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeChat()
		return a, nil

	case SnapshotMsg:
		a.clamp()
		return a, nil

	case resultMsg:
		if msg.err != nil {
			// A failed write keeps the prompt or picker open with its input.
			a.prompt.Pending = false
			a.move.Pending = false
			a.setError(msg.err)
			return a, nil
		}
		switch {
		case a.mode == ModePrompt && a.prompt.Pending:
			a.closePrompt()
		case a.mode == ModeMove && a.move.Pending:
			a.closeMove()
		}
		a.setStatus(msg.status)
		if msg.clearSelection {
			a.selection.Clear()
		}
		if msg.resetFolder {
			a.folderIdx = 0
			a.engine.SetActiveFolder(nil)
		}
		a.clamp()
		return a, nil

	case chatMsg:
		a.chatView.Busy = false
		if msg.err != nil {
			a.setError(msg.err)
		}
		a.refreshChat()
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeSearch:
			return a.updateSearch(msg)
		case ModePrompt:
			return a.updatePrompt(msg)
		case ModeMove:
			return a.updateMove(msg)
		case ModeConfirm:
			return a.updateConfirm(msg)
		case ModeChat:
			return a.updateChat(msg)
		default:
			return a.updateBrowse(msg)
		}
	}

	return a.forwardToInput(msg)
}

// forwardToInput hands non-key messages, such as cursor blinks, to the
// focused input.
func (a App) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.mode {
	case ModeSearch:
		a.search, cmd = a.search.Update(msg)
	case ModePrompt:
		a.prompt.Input, cmd = a.prompt.Input.Update(msg)
	case ModeMove:
		a.move.FilterInput, cmd = a.move.FilterInput.Update(msg)
	case ModeChat:
		a.chatView.Input, cmd = a.chatView.Input.Update(msg)
	}
	return a, cmd
}

func (a App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if n := len(a.engine.DerivedView()); n > 0 && a.cursor < n-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if n := len(a.engine.DerivedView()); n > 0 {
			a.cursor = n - 1
		}

	case key.Matches(msg, a.keys.NextFolder):
		a.stepFolder(1)

	case key.Matches(msg, a.keys.PrevFolder):
		a.stepFolder(-1)

	case key.Matches(msg, a.keys.Search):
		a.mode = ModeSearch
		a.search.SetValue(a.engine.SearchText())
		a.search.CursorEnd()
		return a, a.search.Focus()

	case key.Matches(msg, a.keys.Sort):
		mode := a.engine.CycleSortMode()
		a.setStatus(i18n.Text(i18n.SortLabel, a.lang) + ": " + mode.String())
		a.cursor = 0

	case key.Matches(msg, a.keys.Select):
		if b, ok := a.current(); ok {
			a.selection.Toggle(b.ID)
		}

	case key.Matches(msg, a.keys.SelectAll):
		a.selection.SelectAll(a.engine.DerivedView())

	case key.Matches(msg, a.keys.ClearSelection):
		a.selection.Clear()

	case key.Matches(msg, a.keys.Favorite):
		if b, ok := a.current(); ok {
			return a, a.toggleFavoriteCmd(b.ID)
		}

	case key.Matches(msg, a.keys.YankURL):
		if b, ok := a.current(); ok {
			if err := a.copy(b.URL); err != nil {
				a.setError(err)
			} else {
				a.setStatus(i18n.Textf(i18n.Copied, a.lang, b.URL))
			}
		}

	case key.Matches(msg, a.keys.Move):
		ids := a.targets()
		if len(ids) == 0 {
			return a, nil
		}
		a.setStatus("")
		a.move.Reset()
		a.move.IDs = ids
		a.move.Folders = a.engine.Folders()
		a.move.Filter()
		a.mode = ModeMove
		return a, a.move.FilterInput.Focus()

	case key.Matches(msg, a.keys.Rename):
		if b, ok := a.current(); ok {
			return a, a.openPrompt(PromptRename, i18n.PromptRename, b.ID, b.Title)
		}

	case key.Matches(msg, a.keys.EditTags):
		if b, ok := a.current(); ok {
			return a, a.openPrompt(PromptTags, i18n.PromptTags, b.ID, joinTags(b.Tags))
		}

	case key.Matches(msg, a.keys.AddBookmark):
		return a, a.openPrompt(PromptAddURL, i18n.PromptAddURL, "", "")

	case key.Matches(msg, a.keys.AddFolder):
		return a, a.openPrompt(PromptNewFolder, i18n.PromptNewFolder, "", "")

	case key.Matches(msg, a.keys.Delete):
		ids := a.targets()
		if len(ids) == 0 {
			return a, nil
		}
		a.confirm.Reset()
		a.confirm.IDs = ids
		if len(ids) == 1 {
			title := ids[0]
			if b, ok := a.engine.Bookmark(ids[0]); ok {
				title = b.Title
			}
			a.confirm.Message = i18n.Textf(i18n.ConfirmDelete, a.lang, title)
		} else {
			a.confirm.Message = i18n.Textf(i18n.ConfirmDeleteMany, a.lang, len(ids))
		}
		a.mode = ModeConfirm

	case key.Matches(msg, a.keys.DeleteFolder):
		entry := a.ActiveFolder()
		if entry.IsAll() {
			return a, nil
		}
		a.confirm.Reset()
		a.confirm.FolderID = entry.Folder.ID
		a.confirm.Message = i18n.Textf(i18n.ConfirmDelete, a.lang, entry.Folder.Title)
		a.mode = ModeConfirm

	case key.Matches(msg, a.keys.Chat):
		if a.chat == nil {
			a.setStatus(i18n.Text(i18n.ChatUnavailable, a.lang))
			return a, nil
		}
		a.mode = ModeChat
		a.refreshChat()
		return a, a.chatView.Input.Focus()
	}

	return a, nil
}

// stepFolder moves the folder filter by delta, wrapping around.
func (a *App) stepFolder(delta int) {
	entries := a.folderEntries()
	n := len(entries)
	a.folderIdx = ((a.folderIdx+delta)%n + n) % n
	a.engine.SetActiveFolder(entries[a.folderIdx].ID())
	a.cursor = 0
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		a.mode = ModeBrowse
		a.search.Blur()
		return a, nil

	case key.Matches(msg, a.keys.Cancel):
		a.mode = ModeBrowse
		a.search.Reset()
		a.search.Blur()
		a.engine.SetSearchText("")
		a.cursor = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.engine.SetSearchText(a.search.Value())
	a.cursor = 0
	return a, cmd
}

func (a *App) openPrompt(kind PromptKind, label i18n.Key, targetID, value string) tea.Cmd {
	a.setStatus("")
	a.prompt.Reset()
	a.prompt.Kind = kind
	a.prompt.Label = i18n.Text(label, a.lang)
	a.prompt.TargetID = targetID
	a.prompt.Input.CharLimit = a.charLimit(kind)
	a.prompt.Input.SetValue(value)
	a.prompt.Input.CursorEnd()
	a.mode = ModePrompt
	return a.prompt.Input.Focus()
}

func (a App) charLimit(kind PromptKind) int {
	switch kind {
	case PromptAddURL:
		return a.layoutConfig.Input.URLCharLimit
	case PromptTags:
		return a.layoutConfig.Input.TagsCharLimit
	default:
		return a.layoutConfig.Input.TitleCharLimit
	}
}

func (a *App) closePrompt() {
	a.prompt.Reset()
	a.mode = ModeBrowse
}

func (a *App) closeMove() {
	a.move.Reset()
	a.mode = ModeBrowse
}

func (a App) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.prompt.Pending {
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closePrompt()
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		return a.submitPrompt()
	}

	var cmd tea.Cmd
	a.prompt.Input, cmd = a.prompt.Input.Update(msg)
	return a, cmd
}

func (a App) submitPrompt() (tea.Model, tea.Cmd) {
	value := a.prompt.Input.Value()

	switch a.prompt.Kind {
	case PromptAddURL:
		url := trimmed(value)
		if url == "" {
			a.closePrompt()
			return a, nil
		}
		// Second step: ask for the title, suggesting the host.
		title := url
		if host, err := model.HostOf(url); err == nil {
			title = host
		}
		a.prompt.Kind = PromptAddTitle
		a.prompt.Label = i18n.Text(i18n.PromptAddTitle, a.lang)
		a.prompt.URL = url
		a.prompt.Input.CharLimit = a.charLimit(PromptAddTitle)
		a.prompt.Input.SetValue(title)
		a.prompt.Input.CursorEnd()
		return a, nil

	case PromptAddTitle:
		in := dispatch.BookmarkInput{
			Title:    trimmed(value),
			URL:      a.prompt.URL,
			FolderID: a.engine.ActiveFolder(),
		}
		a.prompt.Pending = true
		return a, a.addBookmarkCmd(in)

	case PromptRename:
		a.prompt.Pending = true
		return a, a.renameCmd(a.prompt.TargetID, value)

	case PromptTags:
		a.prompt.Pending = true
		return a, a.updateTagsCmd(a.prompt.TargetID, splitTags(value))

	case PromptNewFolder:
		a.prompt.Pending = true
		return a, a.createFolderCmd(value, a.nextColor())
	}

	a.closePrompt()
	return a, nil
}

// nextColor picks a palette color for a new folder, cycling by count.
func (a App) nextColor() string {
	return model.Palette[len(a.engine.Folders())%len(model.Palette)]
}

func (a App) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.move.Pending {
		return a, nil
	}
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.closeMove()
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		target := dispatch.MoveTarget{}
		if f, ok := a.move.Selected(); ok {
			id := f.ID
			target.FolderID = &id
		} else {
			target.NewFolderTitle = a.move.FilterInput.Value()
			target.NewFolderColor = a.nextColor()
		}
		a.move.Pending = true
		return a, a.moveCmd(a.move.IDs, target)

	case msg.Type == tea.KeyDown || msg.Type == tea.KeyCtrlJ:
		if a.move.FolderIdx < len(a.move.Matches)-1 {
			a.move.FolderIdx++
		}
		return a, nil

	case msg.Type == tea.KeyUp || msg.Type == tea.KeyCtrlK:
		if a.move.FolderIdx > 0 {
			a.move.FolderIdx--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.move.FilterInput, cmd = a.move.FilterInput.Update(msg)
	a.move.Filter()
	return a, cmd
}

func (a App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Yes):
		ids, folderID := a.confirm.IDs, a.confirm.FolderID
		a.confirm.Reset()
		a.mode = ModeBrowse
		if len(ids) > 0 {
			return a, a.deleteCmd(ids)
		}
		if folderID != "" {
			return a, a.deleteFolderCmd(folderID)
		}
		return a, nil

	case key.Matches(msg, a.keys.Cancel), msg.String() == "n", msg.String() == "N":
		a.confirm.Reset()
		a.mode = ModeBrowse
	}
	return a, nil
}

func (a App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.mode = ModeBrowse
		a.chatView.Input.Blur()
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		text := trimmed(a.chatView.Input.Value())
		if text == "" || a.chatView.Busy {
			return a, nil
		}
		a.chatView.Input.Reset()
		a.chatView.Busy = true
		return a, a.sendChatCmd(text)

	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		a.chatView.Viewport, cmd = a.chatView.Viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatView.Input, cmd = a.chatView.Input.Update(msg)
	return a, cmd
}
