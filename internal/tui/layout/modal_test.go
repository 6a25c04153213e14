package layout

import "testing"

func TestCalculateModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		name          string
		terminalWidth int
		want          int
	}{
		{"proportional", 120, 60},
		{"capped at max", 200, 80},
		{"raised to min", 60, 40},
		{"never wider than terminal", 30, 26},
		{"tiny terminal clamps to 1", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateModalWidth(tt.terminalWidth, cfg); got != tt.want {
				t.Errorf("CalculateModalWidth(%d) = %d, want %d", tt.terminalWidth, got, tt.want)
			}
		})
	}
}

func TestCalculateVisibleListItems(t *testing.T) {
	tests := []struct {
		name                        string
		maxVisible, selected, total int
		wantStart, wantEnd          int
	}{
		{"all fit", 6, 2, 4, 0, 4},
		{"selection in first page", 6, 3, 20, 0, 6},
		{"selection scrolled", 6, 9, 20, 4, 10},
		{"last item", 6, 19, 20, 14, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CalculateVisibleListItems(tt.maxVisible, tt.selected, tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("CalculateVisibleListItems(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.maxVisible, tt.selected, tt.total, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
