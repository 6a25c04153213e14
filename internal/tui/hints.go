package tui

import (
	"strings"

	"github.com/nikbrunner/bmark/internal/i18n"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHintsInline renders hints in inline format for prompts: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// helpLine returns the bottom bar for the current mode.
func (a App) helpLine() string {
	switch a.mode {
	case ModeBrowse:
		return a.styles.Help.Render(i18n.Text(i18n.HelpBrowse, a.lang))
	case ModeSearch:
		return a.renderHintsInline([]Hint{
			{"Enter", "keep"},
			{"Esc", "clear"},
		})
	case ModeMove:
		return a.renderHintsInline([]Hint{
			{"↑/↓", "choose"},
			{"Enter", "move"},
			{"Esc", "cancel"},
		})
	case ModeConfirm:
		return a.renderHintsInline([]Hint{
			{"y", "confirm"},
			{"n/Esc", "cancel"},
		})
	case ModeChat:
		return a.renderHintsInline([]Hint{
			{"Enter", "send"},
			{"Esc", "back"},
		})
	default:
		return a.renderHintsInline([]Hint{
			{"Enter", "confirm"},
			{"Esc", "cancel"},
		})
	}
}
