package model

import (
	"strings"
	"time"
)

// Palette colors offered when creating a folder.
const (
	ColorGray   = "#6B7280"
	ColorRed    = "#EF4444"
	ColorOrange = "#F97316"
	ColorYellow = "#EAB308"
	ColorGreen  = "#22C55E"
	ColorBlue   = "#3B82F6"
	ColorPurple = "#A855F7"
	ColorPink   = "#EC4899"
)

// Palette is the fixed set of folder colors in display order.
var Palette = []string{
	ColorGray, ColorRed, ColorOrange, ColorYellow,
	ColorGreen, ColorBlue, ColorPurple, ColorPink,
}

// OtherTitle is the label of the synthetic folder for unfiled bookmarks.
const OtherTitle = "Other"

// Other is the synthetic fallback folder. It is never persisted.
var Other = Folder{Title: OtherTitle, Color: ColorGray}

// Folder groups bookmarks under a colored title.
type Folder struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required,max=100"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Title string
	Color string
}

// NewFolder builds an unsaved Folder, defaulting the color to gray.
func NewFolder(params NewFolderParams) Folder {
	color := strings.TrimSpace(params.Color)
	if color == "" {
		color = ColorGray
	}
	return Folder{
		Title: strings.TrimSpace(params.Title),
		Color: color,
	}
}

// IsOther reports whether f is the synthetic Other folder.
func IsOther(f Folder) bool {
	return f.ID == "" && f.Title == OtherTitle
}

// ColorName returns the palette name for a color, or "" for custom values.
func ColorName(color string) string {
	switch strings.ToUpper(color) {
	case ColorGray:
		return "gray"
	case ColorRed:
		return "red"
	case ColorOrange:
		return "orange"
	case ColorYellow:
		return "yellow"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case ColorPurple:
		return "purple"
	case ColorPink:
		return "pink"
	}
	return ""
}

// ColorByName maps a palette name to its color. Unknown names are returned
// unchanged so custom values pass through.
func ColorByName(name string) string {
	for _, c := range Palette {
		if ColorName(c) == strings.ToLower(strings.TrimSpace(name)) {
			return c
		}
	}
	return strings.TrimSpace(name)
}
