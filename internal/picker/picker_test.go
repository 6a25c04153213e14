package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/search"
	"github.com/nikbrunner/bmark/internal/tui/layout"
)

func twoResults() []search.Result {
	return []search.Result{
		{Bookmark: model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}, MatchedIndexes: []int{0, 1, 2}},
		{Bookmark: model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}, MatchedIndexes: []int{0, 1, 2}},
	}
}

func send(p Picker, msgs ...tea.Msg) (Picker, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = p.Update(msg)
		p = m.(Picker)
	}
	return p, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_InitialState(t *testing.T) {
	p := New(twoResults(), "git")

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 2 {
		t.Errorf("expected 2 results, got %d", len(p.results))
	}
}

func TestPicker_Navigate(t *testing.T) {
	p, _ := send(New(twoResults(), "git"), runes("j"))
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1, got %d", p.cursor)
	}

	p, _ = send(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_ArrowKeys(t *testing.T) {
	p, _ := send(New(twoResults(), "git"), tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after down arrow, got %d", p.cursor)
	}

	p, _ = send(p, tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after up arrow, got %d", p.cursor)
	}
}

func TestPicker_BoundsCheck(t *testing.T) {
	p := New(twoResults()[:1], "git")

	p, _ = send(p, runes("k"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}

	p, _ = send(p, runes("j"))
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 (only 1 item), got %d", p.cursor)
	}
}

func TestPicker_Choose(t *testing.T) {
	p, cmd := send(New(twoResults(), "git"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Error("expected quit command after selection")
	}
	got, ok := p.SelectedBookmark()
	if !ok {
		t.Fatal("expected a selection after Enter")
	}
	if got.ID != "b2" {
		t.Errorf("expected b2, got %s", got.ID)
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q"), {Type: tea.KeyCtrlC}} {
		p, cmd := send(New(twoResults(), "git"), msg)

		if !p.Cancelled() {
			t.Errorf("%s: expected cancelled", msg)
		}
		if cmd == nil {
			t.Errorf("%s: expected quit command after cancel", msg)
		}
		if _, ok := p.SelectedBookmark(); ok {
			t.Errorf("%s: expected no selection when cancelled", msg)
		}
	}
}

func TestPicker_ChooseWithoutResults(t *testing.T) {
	p, _ := send(New(nil, "git"), tea.KeyMsg{Type: tea.KeyEnter})

	if !p.Cancelled() {
		t.Error("expected an empty picker to cancel on Enter")
	}
}

func TestPicker_View(t *testing.T) {
	p, _ := send(New(twoResults(), "git"), tea.WindowSizeMsg{Width: 60, Height: 20})
	out := layout.StripANSI(p.View())

	for _, want := range []string{"Search: git (2 results)", "> GitHub", "https://gitlab.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
