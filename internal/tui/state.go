package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/tui/layout"
)

// Mode is the current interaction mode.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeSearch
	ModePrompt
	ModeMove
	ModeConfirm
	ModeChat
)

// PromptKind says what a submitted prompt does.
type PromptKind int

const (
	PromptAddURL PromptKind = iota
	PromptAddTitle
	PromptRename
	PromptTags
	PromptNewFolder
)

// PromptState holds the single-line prompt used for add, rename, tags and
// new folders.
type PromptState struct {
	Kind     PromptKind
	Label    string
	Input    textinput.Model
	TargetID string // bookmark being renamed or tagged
	URL      string // carried from the URL step to the title step
	Pending  bool   // submitted, waiting for the backend
}

// NewPromptState creates a PromptState with an initialized input.
func NewPromptState(cfg layout.LayoutConfig) PromptState {
	input := textinput.New()
	input.Width = cfg.Input.StandardWidth
	return PromptState{Input: input}
}

// Reset clears the prompt for a new session.
func (p *PromptState) Reset() {
	p.Input.Reset()
	p.Input.Blur()
	p.Label = ""
	p.TargetID = ""
	p.URL = ""
	p.Pending = false
}

// MoveState holds state for moving bookmarks to a folder.
type MoveState struct {
	FilterInput textinput.Model // Filter input for folder search
	Folders     []model.Folder  // All folders
	Matches     []model.Folder  // Folders matching the filter, best first
	FolderIdx   int             // Selected index in Matches
	IDs         []string        // Bookmarks to move
	Pending     bool            // submitted, waiting for the backend
}

// NewMoveState creates a new MoveState with initialized input.
func NewMoveState(cfg layout.LayoutConfig) MoveState {
	input := textinput.New()
	input.Placeholder = "Filter folders or type a new name..."
	input.CharLimit = 100
	input.Width = cfg.Input.StandardWidth
	return MoveState{FilterInput: input}
}

// Reset clears the move state for a new session.
func (m *MoveState) Reset() {
	m.FilterInput.Reset()
	m.FilterInput.Blur()
	m.Folders = nil
	m.Matches = nil
	m.FolderIdx = 0
	m.IDs = nil
	m.Pending = false
}

// Filter recomputes Matches from the filter text. An empty filter matches
// every folder in snapshot order.
func (m *MoveState) Filter() {
	query := m.FilterInput.Value()
	if query == "" {
		m.Matches = append([]model.Folder(nil), m.Folders...)
	} else {
		found := fuzzy.FindFrom(query, folderSource(m.Folders))
		m.Matches = make([]model.Folder, len(found))
		for i, match := range found {
			m.Matches[i] = m.Folders[match.Index]
		}
	}
	if m.FolderIdx >= len(m.Matches) {
		m.FolderIdx = 0
	}
}

// Selected returns the highlighted folder, if any.
func (m *MoveState) Selected() (model.Folder, bool) {
	if m.FolderIdx < 0 || m.FolderIdx >= len(m.Matches) {
		return model.Folder{}, false
	}
	return m.Matches[m.FolderIdx], true
}

type folderSource []model.Folder

func (s folderSource) String(i int) string { return s[i].Title }
func (s folderSource) Len() int            { return len(s) }

// ConfirmState holds a pending destructive action.
type ConfirmState struct {
	Message  string
	IDs      []string // bookmarks to delete
	FolderID string   // folder to delete, when IDs is empty
}

// Reset clears the pending action.
func (c *ConfirmState) Reset() {
	c.Message = ""
	c.IDs = nil
	c.FolderID = ""
}

// ChatState holds the assistant conversation view.
type ChatState struct {
	Input    textinput.Model
	Viewport viewport.Model
	Busy     bool // a completion is in flight
}

// NewChatState creates a ChatState with initialized input and viewport.
func NewChatState(cfg layout.LayoutConfig) ChatState {
	input := textinput.New()
	input.CharLimit = cfg.Input.ChatCharLimit
	input.Width = cfg.Input.StandardWidth
	return ChatState{
		Input:    input,
		Viewport: viewport.New(cfg.Input.StandardWidth, 10),
	}
}
