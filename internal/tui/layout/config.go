package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane  PaneConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + status (1) + help (1) = 6
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// FolderWidthPercent is the share of the terminal given to the folder pane.
	FolderWidthPercent int

	// MinFolderWidth and MaxFolderWidth clamp the folder pane.
	MinFolderWidth int
	MaxFolderWidth int

	// MinListWidth is the minimum width of the bookmark list pane.
	MinListWidth int

	// WidthOffset is subtracted before splitting: app padding plus the
	// borders of both panes.
	WidthOffset int

	// ContentPadding is subtracted from pane width for item rendering.
	// Accounts for pane border/padding on each side.
	ContentPadding int
}

// ModalConfig holds prompt dialog configuration.
type ModalConfig struct {
	// WidthPercent is the prompt width as percentage of terminal width.
	WidthPercent int

	// MinWidth and MaxWidth clamp the prompt width in characters.
	MinWidth int
	MaxWidth int

	// PickerMaxVisible: max folders shown in the move picker.
	PickerMaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit  int
	URLCharLimit    int
	TagsCharLimit   int
	SearchCharLimit int
	ChatCharLimit   int

	// Display width of prompt inputs
	StandardWidth int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:    6,
			MinHeight:          5,
			FolderWidthPercent: 25,
			MinFolderWidth:     16,
			MaxFolderWidth:     32,
			MinListWidth:       30,
			WidthOffset:        8,
			ContentPadding:     4,
		},
		Modal: ModalConfig{
			WidthPercent:     50,
			MinWidth:         40,
			MaxWidth:         80,
			PickerMaxVisible: 6,
		},
		Input: InputConfig{
			TitleCharLimit:  255,
			URLCharLimit:    2048,
			TagsCharLimit:   200,
			SearchCharLimit: 100,
			ChatCharLimit:   1000,
			StandardWidth:   40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
