// Package picker is a small standalone TUI for choosing one bookmark out of
// a list of search results.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/search"
	"github.com/nikbrunner/bmark/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	matchStyle = lipgloss.NewStyle().Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true).
			MarginBottom(1)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up", "ctrl+p")),
	Down:   key.NewBinding(key.WithKeys("j", "down", "ctrl+n")),
	Choose: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
}

// Picker lets the user choose one of several search results.
type Picker struct {
	results   []search.Result
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
	cfg       layout.LayoutConfig
}

// New creates a Picker over results found for query.
func New(results []search.Result, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
		cfg:     layout.DefaultConfig(),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			p.cancelled = true
			return p, tea.Quit
		case key.Matches(msg, keys.Choose):
			if len(p.results) == 0 {
				p.cancelled = true
			} else {
				p.selected = true
			}
			return p, tea.Quit
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	// two lines per result, plus header and footer
	visible := layout.CalculateVisibleHeight(p.height-4, 0) / 2
	if visible < 1 {
		visible = 1
	}
	offset := layout.CalculateViewportOffset(p.cursor, len(p.results), visible)
	width := p.width - 4

	for i, result := range p.results {
		if i < offset || i >= offset+visible {
			continue
		}
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title, _ := layout.TruncateText(result.Bookmark.Title, width, p.cfg.Text)
		url, _ := layout.TruncateText(result.Bookmark.URL, width, p.cfg.Text)

		b.WriteString(cursor + highlight(title, result.MatchedIndexes, style) + "\n")
		b.WriteString("   " + urlStyle.Render(url) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(urlStyle.Render("j/k: move  Enter: choose  q/Esc: cancel"))

	return b.String()
}

// highlight underlines the matched runes of title.
func highlight(title string, matched []int, style lipgloss.Style) string {
	if len(matched) == 0 {
		return style.Render(title)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range []rune(title) {
		if hit[i] {
			b.WriteString(style.Inherit(matchStyle).Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the chosen bookmark, or false if the picker was
// cancelled.
func (p Picker) SelectedBookmark() (model.Bookmark, bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return model.Bookmark{}, false
	}
	return p.results[p.cursor].Bookmark, true
}

// Cancelled reports whether the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
