package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/model"
)

// SnapshotMsg tells the App that the engine received a new snapshot.
type SnapshotMsg struct{}

// Sink applies snapshots to the engine, then wakes the program so the view
// is redrawn. It is the stream.Sink of an interactive session.
//
// notify is usually (*tea.Program).Send, which no longer blocks once the
// program has exited.
type Sink struct {
	engine *engine.Engine
	notify func(tea.Msg)
}

// NewSink creates a Sink. A nil notify only updates the engine.
func NewSink(e *engine.Engine, notify func(tea.Msg)) *Sink {
	return &Sink{engine: e, notify: notify}
}

// ApplyBookmarks implements stream.Sink.
func (s *Sink) ApplyBookmarks(items []model.Bookmark) {
	s.engine.ApplyBookmarks(items)
	s.wake()
}

// ApplyFolders implements stream.Sink.
func (s *Sink) ApplyFolders(items []model.Folder) {
	s.engine.ApplyFolders(items)
	s.wake()
}

// Reset implements stream.Sink.
func (s *Sink) Reset() {
	s.engine.Reset()
	s.wake()
}

func (s *Sink) wake() {
	if s.notify != nil {
		s.notify(SnapshotMsg{})
	}
}
