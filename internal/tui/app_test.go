package tui_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmark/internal/assistant"
	"github.com/nikbrunner/bmark/internal/dispatch"
	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/selection"
	"github.com/nikbrunner/bmark/internal/tui"
)

func stringPtr(s string) *string { return &s }

type fakeCommands struct {
	mu sync.Mutex

	err      error
	added    []dispatch.BookmarkInput
	renamed  map[string]string
	tagged   map[string][]string
	toggled  []string
	folders  []string
	removed  []string // deleted folder ids
	moves    []dispatch.MoveTarget
	moveIDs  [][]string
	deletes  [][]string
	favorite bool
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{renamed: map[string]string{}, tagged: map[string][]string{}}
}

func (f *fakeCommands) AddBookmark(_ context.Context, in dispatch.BookmarkInput) (model.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, in)
	return model.Bookmark{ID: "new", Title: in.Title, URL: in.URL}, f.err
}

func (f *fakeCommands) RenameBookmark(_ context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renamed[id] = title
	return f.err
}

func (f *fakeCommands) UpdateTags(_ context.Context, id string, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagged[id] = tags
	return f.err
}

func (f *fakeCommands) ToggleFavorite(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggled = append(f.toggled, id)
	f.favorite = !f.favorite
	return f.favorite, f.err
}

func (f *fakeCommands) CreateFolder(_ context.Context, title, color string) (model.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders = append(f.folders, title+" "+color)
	return model.Folder{ID: "nf", Title: title, Color: color}, f.err
}

func (f *fakeCommands) DeleteFolder(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return f.err
}

func (f *fakeCommands) MoveToFolder(_ context.Context, ids []string, target dispatch.MoveTarget) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveIDs = append(f.moveIDs, ids)
	f.moves = append(f.moves, target)
	return "f", f.err
}

func (f *fakeCommands) DeleteBookmarks(_ context.Context, ids []string, confirmed bool) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !confirmed {
		return nil, errors.New("not confirmed")
	}
	f.deletes = append(f.deletes, ids)
	return ids, f.err
}

type fakeChat struct {
	entries []assistant.Entry
}

func (c *fakeChat) Send(_ context.Context, text string) (assistant.Outcome, error) {
	c.entries = append(c.entries,
		assistant.Entry{Sender: assistant.SenderUser, Text: text},
		assistant.Entry{Sender: assistant.SenderAssistant, Text: "Hello back!"},
	)
	return assistant.Outcome{Kind: assistant.OutcomeMessage}, nil
}

func (c *fakeChat) Entries() []assistant.Entry { return c.entries }

func (c *fakeChat) SenderLabel(s assistant.Sender) string {
	if s == assistant.SenderUser {
		return "You"
	}
	return "Assistant"
}

type fixture struct {
	engine    *engine.Engine
	selection *selection.Manager
	commands  *fakeCommands
	copied    []string
}

func testEngine() *engine.Engine {
	eng := engine.New(engine.Params{})
	eng.ApplyFolders([]model.Folder{
		{ID: "f1", Title: "Development", Color: model.ColorBlue},
		{ID: "f2", Title: "Tools", Color: model.ColorGreen},
	})
	eng.ApplyBookmarks([]model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com"},
		{ID: "b2", Title: "Go Docs", URL: "https://go.dev", FolderID: stringPtr("f1"), Tags: []string{"go"}},
		{ID: "b3", Title: "Gopher", URL: "https://gopher.example", FolderID: stringPtr("f1")},
		{ID: "b4", Title: "Hammer", URL: "https://hammer.example", FolderID: stringPtr("f2")},
	})
	return eng
}

func newApp(t *testing.T, opts ...func(*tui.AppParams)) (tui.App, *fixture) {
	t.Helper()
	fx := &fixture{
		engine:    testEngine(),
		selection: selection.New(),
		commands:  newFakeCommands(),
	}
	params := tui.AppParams{
		Engine:    fx.engine,
		Selection: fx.selection,
		Commands:  fx.commands,
		Clipboard: func(s string) error {
			fx.copied = append(fx.copied, s)
			return nil
		},
	}
	for _, opt := range opts {
		opt(&params)
	}
	return tui.NewApp(params).WithDimensions(100, 30), fx
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	space    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	down     = tea.KeyMsg{Type: tea.KeyDown}
)

// press sends msgs in order and returns the app and the last command.
func press(app tui.App, msgs ...tea.Msg) (tui.App, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = app.Update(msg)
		app = m.(tui.App)
	}
	return app, cmd
}

// finish runs cmd and feeds its message back into the app.
func finish(t *testing.T, app tui.App, cmd tea.Cmd) tui.App {
	t.Helper()
	assert.Assert(t, cmd != nil, "expected a command")
	app, _ = press(app, cmd())
	return app
}

func titles(bs []model.Bookmark) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Title
	}
	return out
}

func TestApp_Navigation(t *testing.T) {
	app, _ := newApp(t)
	assert.Equal(t, app.Cursor(), 0)

	app, _ = press(app, runes("j"), runes("j"))
	assert.Equal(t, app.Cursor(), 2)

	app, _ = press(app, runes("k"))
	assert.Equal(t, app.Cursor(), 1)

	app, _ = press(app, runes("G"))
	assert.Equal(t, app.Cursor(), 3)

	app, _ = press(app, runes("j"))
	assert.Equal(t, app.Cursor(), 3, "j at bottom stays")

	app, _ = press(app, runes("g"), runes("g"))
	assert.Equal(t, app.Cursor(), 0)

	app, _ = press(app, runes("k"))
	assert.Equal(t, app.Cursor(), 0, "k at top stays")
}

func TestApp_FolderCycling(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, tab)
	assert.Equal(t, app.ActiveFolder().Folder.ID, "f1")
	assert.DeepEqual(t, titles(app.Items()), []string{"Go Docs", "Gopher"})
	assert.Equal(t, *fx.engine.ActiveFolder(), "f1")

	app, _ = press(app, tab)
	assert.DeepEqual(t, titles(app.Items()), []string{"Hammer"})

	app, _ = press(app, tab)
	assert.Assert(t, app.ActiveFolder().IsAll())
	assert.Equal(t, len(app.Items()), 4)

	app, _ = press(app, shiftTab)
	assert.Equal(t, app.ActiveFolder().Folder.ID, "f2", "shift+tab wraps to the last folder")
}

func TestApp_Search(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, runes("/"))
	assert.Equal(t, app.Mode(), tui.ModeSearch)

	app, _ = press(app, runes("gop"))
	assert.Equal(t, fx.engine.SearchText(), "gop")
	assert.DeepEqual(t, titles(app.Items()), []string{"Gopher"})

	app, _ = press(app, enter)
	assert.Equal(t, app.Mode(), tui.ModeBrowse)
	assert.Equal(t, fx.engine.SearchText(), "gop", "enter keeps the filter")

	app, _ = press(app, runes("/"), esc)
	assert.Equal(t, fx.engine.SearchText(), "")
	assert.Equal(t, len(app.Items()), 4)
}

func TestApp_CycleSort(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, runes("s"))

	assert.Equal(t, fx.engine.SortMode(), engine.SortNewestFirst)
	status, isErr := app.Status()
	assert.Equal(t, status, "Sort: newest")
	assert.Assert(t, !isErr)
}

func TestApp_Selection(t *testing.T) {
	app, fx := newApp(t)
	known := fx.engine.KnownIDs()

	app, _ = press(app, space, runes("j"), space)
	assert.DeepEqual(t, fx.selection.Selected(known), []string{"b1", "b2"})

	app, _ = press(app, space)
	assert.DeepEqual(t, fx.selection.Selected(known), []string{"b1"})

	app, _ = press(app, runes("V"))
	assert.Equal(t, fx.selection.Len(known), 4)

	app, _ = press(app, runes("V"))
	assert.Equal(t, fx.selection.Len(known), 0, "select all on a fully selected view clears")

	app, _ = press(app, space, esc)
	assert.Equal(t, fx.selection.Len(known), 0)
}

func TestApp_DeleteRequiresConfirmation(t *testing.T) {
	app, fx := newApp(t)

	app, cmd := press(app, runes("d"))
	assert.Equal(t, app.Mode(), tui.ModeConfirm)
	assert.Assert(t, cmd == nil)

	app, _ = press(app, runes("n"))
	assert.Equal(t, app.Mode(), tui.ModeBrowse)
	assert.Equal(t, len(fx.commands.deletes), 0)

	app, cmd = press(app, runes("d"), runes("y"))
	app = finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.deletes, [][]string{{"b1"}})
	status, _ := app.Status()
	assert.Equal(t, status, "Deleted 1 bookmark(s).")
}

func TestApp_DeleteSelectionClearsIt(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, space, runes("j"), space)
	app, cmd := press(app, runes("d"), runes("y"))
	app = finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.deletes, [][]string{{"b1", "b2"}})
	assert.Equal(t, fx.selection.Len(fx.engine.KnownIDs()), 0)
}

func TestApp_MoveToExistingFolder(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, space, runes("j"), space, runes("m"))
	assert.Equal(t, app.Mode(), tui.ModeMove)

	app, cmd := press(app, runes("too"), enter)
	app = finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.moveIDs, [][]string{{"b1", "b2"}})
	assert.Equal(t, *fx.commands.moves[0].FolderID, "f2")
	assert.Equal(t, fx.commands.moves[0].NewFolderTitle, "")
	status, _ := app.Status()
	assert.Equal(t, status, "Moved 2 bookmark(s).")
}

func TestApp_MovePickerNavigation(t *testing.T) {
	app, fx := newApp(t)

	app, cmd := press(app, runes("m"), down, enter)
	finish(t, app, cmd)

	assert.Equal(t, *fx.commands.moves[0].FolderID, "f2")
	assert.Check(t, is.DeepEqual(fx.commands.moveIDs, [][]string{{"b1"}}), "cursor bookmark without a selection")
}

func TestApp_MoveToNewFolder(t *testing.T) {
	app, fx := newApp(t)

	app, cmd := press(app, runes("m"), runes("Reading"), enter)
	finish(t, app, cmd)

	target := fx.commands.moves[0]
	assert.Assert(t, target.FolderID == nil)
	assert.Equal(t, target.NewFolderTitle, "Reading")
	assert.Equal(t, target.NewFolderColor, model.Palette[2])
}

func TestApp_Rename(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, runes("r"))
	assert.Equal(t, app.Mode(), tui.ModePrompt)

	app, cmd := press(app, runes("!"), enter)
	app = finish(t, app, cmd)

	assert.Equal(t, fx.commands.renamed["b1"], "GitHub!")
	assert.Equal(t, app.Mode(), tui.ModeBrowse)
}

func TestApp_FailedRenameKeepsPrompt(t *testing.T) {
	app, fx := newApp(t)
	fx.commands.err = errors.New("backend rejected: quota")

	app, cmd := press(app, runes("r"), runes("!"), enter)
	app = finish(t, app, cmd)

	assert.Equal(t, app.Mode(), tui.ModePrompt)
	assert.Equal(t, app.Input(), "GitHub!")
	status, isErr := app.Status()
	assert.Equal(t, status, "backend rejected: quota")
	assert.Assert(t, isErr)
	app, _ = press(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Assert(t, is.Contains(app.View(), "backend rejected: quota"))

	fx.commands.err = nil
	app, cmd = press(app, enter)
	app = finish(t, app, cmd)

	assert.Equal(t, app.Mode(), tui.ModeBrowse)
	assert.Equal(t, fx.commands.renamed["b1"], "GitHub!")
}

func TestApp_FailedMoveKeepsPicker(t *testing.T) {
	app, fx := newApp(t)
	fx.commands.err = errors.New("folder quota reached")

	app, cmd := press(app, runes("m"), runes("Reading"), enter)
	app = finish(t, app, cmd)

	assert.Equal(t, app.Mode(), tui.ModeMove)
	assert.Equal(t, app.Input(), "Reading")
	_, isErr := app.Status()
	assert.Assert(t, isErr)

	app, _ = press(app, esc)
	assert.Equal(t, app.Mode(), tui.ModeBrowse)
}

func TestApp_EditTags(t *testing.T) {
	app, fx := newApp(t)

	app, cmd := press(app, runes("j"), runes("t"), runes(", docs,  ,go"), enter)
	finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.tagged["b2"], []string{"go", "docs", "go"})
}

func TestApp_AddBookmarkIntoActiveFolder(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, tab, runes("a"), runes("https://example.com/x"), enter)
	assert.Equal(t, app.Mode(), tui.ModePrompt, "second step asks for the title")

	app, cmd := press(app, enter)
	app = finish(t, app, cmd)

	assert.Equal(t, len(fx.commands.added), 1)
	in := fx.commands.added[0]
	assert.Equal(t, in.URL, "https://example.com/x")
	assert.Equal(t, in.Title, "example.com")
	assert.Equal(t, *in.FolderID, "f1")
	status, _ := app.Status()
	assert.Equal(t, status, `Added "example.com".`)
}

func TestApp_AddFolder(t *testing.T) {
	app, fx := newApp(t)

	app, cmd := press(app, runes("A"), runes("Reading"), enter)
	finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.folders, []string{"Reading " + model.ColorOrange})
}

func TestApp_DeleteActiveFolder(t *testing.T) {
	app, fx := newApp(t)

	_, cmd := press(app, runes("X"))
	assert.Assert(t, cmd == nil, "All cannot be deleted")

	app, _ = press(app, tab, runes("X"))
	assert.Equal(t, app.Mode(), tui.ModeConfirm)

	app, cmd = press(app, runes("y"))
	app = finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.removed, []string{"f1"})
	assert.Assert(t, app.ActiveFolder().IsAll())
	assert.Assert(t, fx.engine.ActiveFolder() == nil)
}

func TestApp_YankURL(t *testing.T) {
	app, fx := newApp(t)

	app, _ = press(app, runes("j"), runes("y"))

	assert.DeepEqual(t, fx.copied, []string{"https://go.dev"})
	status, _ := app.Status()
	assert.Equal(t, status, "Copied https://go.dev")
}

func TestApp_ToggleFavorite(t *testing.T) {
	app, fx := newApp(t)

	app, cmd := press(app, runes("f"))
	app = finish(t, app, cmd)

	assert.DeepEqual(t, fx.commands.toggled, []string{"b1"})
	status, _ := app.Status()
	assert.Equal(t, status, "Marked as favorite.")
}

func TestApp_CommandErrorIsShown(t *testing.T) {
	app, fx := newApp(t)
	fx.commands.err = errors.New("backend rejected")

	app, cmd := press(app, runes("f"))
	app = finish(t, app, cmd)

	status, isErr := app.Status()
	assert.Equal(t, status, "backend rejected")
	assert.Assert(t, isErr)
}

func TestApp_SnapshotClampsCursor(t *testing.T) {
	app, fx := newApp(t)
	app, _ = press(app, runes("G"))
	assert.Equal(t, app.Cursor(), 3)

	fx.engine.ApplyBookmarks([]model.Bookmark{{ID: "b1", Title: "GitHub", URL: "https://github.com"}})
	app, _ = press(app, tui.SnapshotMsg{})

	assert.Equal(t, app.Cursor(), 0)
}

func TestApp_SnapshotDropsDeletedActiveFolder(t *testing.T) {
	app, fx := newApp(t)
	app, _ = press(app, tab, tab)
	assert.Equal(t, app.ActiveFolder().Folder.ID, "f2")

	fx.engine.ApplyFolders([]model.Folder{{ID: "f0", Title: "Archive"}, {ID: "f2", Title: "Tools"}})
	app, _ = press(app, tui.SnapshotMsg{})
	assert.Equal(t, app.ActiveFolder().Folder.ID, "f2", "follows the folder when order shifts")

	fx.engine.ApplyFolders([]model.Folder{{ID: "f0", Title: "Archive"}})
	app, _ = press(app, tui.SnapshotMsg{})
	assert.Assert(t, app.ActiveFolder().IsAll())
	assert.Equal(t, len(app.Items()), 4)
}

func TestApp_ChatUnavailable(t *testing.T) {
	app, _ := newApp(t)

	app, _ = press(app, runes("c"))

	assert.Equal(t, app.Mode(), tui.ModeBrowse)
	status, _ := app.Status()
	assert.Equal(t, status, "Assistant is not configured.")
}

func TestApp_Chat(t *testing.T) {
	chat := &fakeChat{}
	app, _ := newApp(t, func(p *tui.AppParams) { p.Chat = chat })

	app, _ = press(app, runes("c"))
	assert.Equal(t, app.Mode(), tui.ModeChat)

	app, cmd := press(app, runes("hi"), enter)
	app = finish(t, app, cmd)

	assert.Equal(t, len(chat.entries), 2)
	assert.Equal(t, chat.entries[0].Text, "hi")

	app, _ = press(app, esc)
	assert.Equal(t, app.Mode(), tui.ModeBrowse)
}

func TestApp_Quit(t *testing.T) {
	app, _ := newApp(t)

	_, cmd := press(app, runes("q"))

	assert.Assert(t, cmd != nil)
	_, ok := cmd().(tea.QuitMsg)
	assert.Assert(t, ok)
}

func TestSink_AppliesAndNotifies(t *testing.T) {
	eng := engine.New(engine.Params{})
	var msgs []tea.Msg
	sink := tui.NewSink(eng, func(msg tea.Msg) { msgs = append(msgs, msg) })

	sink.ApplyFolders([]model.Folder{{ID: "f1", Title: "Dev"}})
	sink.ApplyBookmarks([]model.Bookmark{{ID: "b1", Title: "A", URL: "https://a.example"}})

	assert.Equal(t, len(eng.DerivedView()), 1)
	assert.Equal(t, len(eng.Folders()), 1)
	assert.Equal(t, len(msgs), 2)

	sink.Reset()
	assert.Equal(t, len(eng.DerivedView()), 0)
	assert.Equal(t, len(msgs), 3)
	_, ok := msgs[2].(tui.SnapshotMsg)
	assert.Assert(t, ok)
}
