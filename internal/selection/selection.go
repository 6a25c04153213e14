package selection

import (
	"sync"

	"github.com/nikbrunner/bmark/internal/model"
)

// Manager tracks selected bookmark ids. Reads are always intersected with
// the ids the caller currently knows, so a bookmark removed by a snapshot
// can never stay selected.
type Manager struct {
	mu    sync.Mutex
	order []string
	set   map[string]bool
}

// New creates an empty selection.
func New() *Manager {
	return &Manager{set: make(map[string]bool)}
}

// Toggle adds id if absent, removes it if present.
func (m *Manager) Toggle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set[id] {
		m.remove(id)
		return
	}
	m.set[id] = true
	m.order = append(m.order, id)
}

// SelectAll selects exactly the bookmarks in view. When every one of them is
// already selected the selection is cleared instead.
func (m *Manager) SelectAll(view []model.Bookmark) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allSelected := len(view) > 0
	for _, b := range view {
		if !m.set[b.ID] {
			allSelected = false
			break
		}
	}

	m.order = nil
	m.set = make(map[string]bool, len(view))
	if allSelected {
		return
	}
	for _, b := range view {
		if !m.set[b.ID] {
			m.set[b.ID] = true
			m.order = append(m.order, b.ID)
		}
	}
}

// Clear deselects everything.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.set = make(map[string]bool)
}

// Selected returns the effective selection in selection order, pruned to
// ids present in known. Pruned ids are dropped from the stored set too.
func (m *Manager) Selected(known map[string]bool) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune(known)
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// IsSelected reports whether id is selected and still known. It leaves the
// stored set as is; only Selected and Len drop unknown ids from it.
func (m *Manager) IsSelected(id string, known map[string]bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set[id] && known[id]
}

// Len returns the effective selection size.
func (m *Manager) Len(known map[string]bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune(known)
	return len(m.order)
}

func (m *Manager) prune(known map[string]bool) {
	kept := m.order[:0]
	for _, id := range m.order {
		if known[id] {
			kept = append(kept, id)
			continue
		}
		delete(m.set, id)
	}
	m.order = kept
}

func (m *Manager) remove(id string) {
	delete(m.set, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
