package selection_test

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmark/internal/engine"
	"github.com/nikbrunner/bmark/internal/model"
	"github.com/nikbrunner/bmark/internal/selection"
)

func known(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestManager_Toggle(t *testing.T) {
	m := selection.New()
	m.Toggle("a")
	m.Toggle("b")
	m.Toggle("a")

	assert.DeepEqual(t, m.Selected(known("a", "b")), []string{"b"})
}

func TestManager_PrunesRemovedBookmarks(t *testing.T) {
	e := engine.New(engine.Params{})
	e.ApplyBookmarks([]model.Bookmark{{ID: "a"}, {ID: "b"}})

	m := selection.New()
	m.Toggle("a")
	m.Toggle("b")

	e.ApplyBookmarks([]model.Bookmark{{ID: "b"}})

	assert.DeepEqual(t, m.Selected(e.KnownIDs()), []string{"b"})
	assert.Assert(t, !m.IsSelected("a", e.KnownIDs()))

	// A re-added "a" does not come back selected.
	e.ApplyBookmarks([]model.Bookmark{{ID: "a"}, {ID: "b"}})
	assert.DeepEqual(t, m.Selected(e.KnownIDs()), []string{"b"})
}

func TestManager_IsSelectedDoesNotCompact(t *testing.T) {
	m := selection.New()
	m.Toggle("a")

	assert.Assert(t, !m.IsSelected("a", known()))
	assert.Assert(t, m.IsSelected("a", known("a")), "still stored after a read with a smaller known set")

	assert.Equal(t, m.Len(known()), 0)
	assert.Assert(t, !m.IsSelected("a", known("a")), "Len dropped it")
}

func TestManager_SelectAllToggles(t *testing.T) {
	view := []model.Bookmark{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	all := known("a", "b", "c", "d")

	m := selection.New()
	m.Toggle("d")
	m.Toggle("a")

	m.SelectAll(view)
	assert.Check(t, is.DeepEqual(m.Selected(all), []string{"a", "b", "c"}), "selection becomes exactly the view")

	m.SelectAll(view)
	assert.Equal(t, m.Len(all), 0, "selecting all again deselects")
}

func TestManager_SelectAllEmptyView(t *testing.T) {
	m := selection.New()
	m.Toggle("a")

	m.SelectAll(nil)

	assert.Equal(t, m.Len(known("a")), 0)
}

func TestManager_Clear(t *testing.T) {
	m := selection.New()
	m.Toggle("a")
	m.Clear()

	assert.Equal(t, m.Len(known("a")), 0)
}
