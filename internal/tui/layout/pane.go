package layout

// PaneLayout holds calculated pane widths.
type PaneLayout struct {
	FolderWidth int
	ListWidth   int
}

// CalculatePaneHeight computes the content height for panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculatePaneWidths splits the terminal between the folder pane and the
// bookmark list. The list takes whatever the folder pane leaves, but never
// less than MinListWidth.
func CalculatePaneWidths(terminalWidth int, cfg PaneConfig) PaneLayout {
	usable := terminalWidth - cfg.WidthOffset

	folder := usable * cfg.FolderWidthPercent / 100
	if folder < cfg.MinFolderWidth {
		folder = cfg.MinFolderWidth
	}
	if folder > cfg.MaxFolderWidth {
		folder = cfg.MaxFolderWidth
	}

	list := usable - folder
	if list < cfg.MinListWidth {
		list = cfg.MinListWidth
	}

	return PaneLayout{FolderWidth: folder, ListWidth: list}
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	width := paneWidth - cfg.ContentPadding
	if width < 1 {
		return 1
	}
	return width
}

// CalculateVisibleHeight computes the visible item count in a pane.
func CalculateVisibleHeight(paneHeight, headerLines int) int {
	height := paneHeight - headerLines
	if height < 1 {
		return 1
	}
	return height
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
