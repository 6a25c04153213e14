package layout

import "testing"

func TestCalculatePaneHeight(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name           string
		terminalHeight int
		want           int
	}{
		{"normal terminal", 24, 18},           // 24 - 6
		{"tall terminal", 60, 54},             // 60 - 6
		{"small terminal enforces min", 8, 5}, // 8 - 6 = 2, min is 5
		{"negative clamps to min", 3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculatePaneHeight(tt.terminalHeight, cfg); got != tt.want {
				t.Errorf("CalculatePaneHeight(%d) = %d, want %d", tt.terminalHeight, got, tt.want)
			}
		})
	}
}

func TestCalculatePaneWidths(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name          string
		terminalWidth int
		wantFolder    int
		wantList      int
	}{
		{"proportional split", 100, 23, 69}, // usable 92, 25% = 23
		{"wide terminal caps folder pane", 200, 32, 160},
		{"narrow terminal keeps minimums", 50, 16, 30}, // usable 42, list would be 26
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePaneWidths(tt.terminalWidth, cfg)
			if got.FolderWidth != tt.wantFolder || got.ListWidth != tt.wantList {
				t.Errorf("CalculatePaneWidths(%d) = {%d, %d}, want {%d, %d}",
					tt.terminalWidth, got.FolderWidth, got.ListWidth, tt.wantFolder, tt.wantList)
			}
		})
	}
}

func TestCalculateItemWidth(t *testing.T) {
	cfg := DefaultConfig().Pane

	if got := CalculateItemWidth(30, cfg); got != 26 {
		t.Errorf("CalculateItemWidth(30) = %d, want 26", got)
	}
	if got := CalculateItemWidth(2, cfg); got != 1 {
		t.Errorf("CalculateItemWidth(2) = %d, want 1", got)
	}
}

func TestCalculateVisibleHeight(t *testing.T) {
	tests := []struct {
		paneHeight, header, want int
	}{
		{18, 2, 16},
		{2, 2, 1},
		{1, 5, 1},
	}

	for _, tt := range tests {
		if got := CalculateVisibleHeight(tt.paneHeight, tt.header); got != tt.want {
			t.Errorf("CalculateVisibleHeight(%d, %d) = %d, want %d", tt.paneHeight, tt.header, got, tt.want)
		}
	}
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		name                    string
		selected, total, height int
		want                    int
	}{
		{"everything fits", 3, 5, 10, 0},
		{"near top", 2, 50, 10, 0},
		{"centered", 20, 50, 10, 15},
		{"clamped at bottom", 49, 50, 10, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateViewportOffset(tt.selected, tt.total, tt.height); got != tt.want {
				t.Errorf("CalculateViewportOffset(%d, %d, %d) = %d, want %d",
					tt.selected, tt.total, tt.height, got, tt.want)
			}
		})
	}
}
