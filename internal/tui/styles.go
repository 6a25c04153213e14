package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmark/internal/model"
)

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemCursor   lipgloss.Style
	Marked       lipgloss.Style // selected bookmarks
	Favorite     lipgloss.Style
	URL          lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
	Empty        lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	Prompt       lipgloss.Style
	SenderUser   lipgloss.Style
	SenderOther  lipgloss.Style
	SenderSystem lipgloss.Style
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	border := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}  // inactive borders
	warn := lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: model.ColorRed}

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary),

		ItemCursor: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Marked: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		Favorite: lipgloss.NewStyle().
			Foreground(lipgloss.Color(model.ColorYellow)),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Status: lipgloss.NewStyle().
			Foreground(primary),

		Error: lipgloss.NewStyle().
			Foreground(warn),

		Help: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		Prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		SenderUser: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		SenderOther: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		SenderSystem: lipgloss.NewStyle().
			Italic(true).
			Foreground(subtle),
	}
}

// FolderStyle renders text in a folder's color.
func FolderStyle(f model.Folder) lipgloss.Style {
	color := f.Color
	if color == "" {
		color = model.ColorGray
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
