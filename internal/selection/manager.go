package selection

// Manager owns the selection set and the currently loaded page. It is not
// safe for concurrent use; callers deliver events one at a time.
type Manager[K comparable, R any] struct {
	key      func(R) K
	selected map[K]struct{}
	current  []R
}

func NewManager[K comparable, R any](key func(R) K) *Manager[K, R] {
	return &Manager[K, R]{
		key:      key,
		selected: map[K]struct{}{},
	}
}

// OnPageLoaded replaces the resident page and returns its selected rows.
func (m *Manager[K, R]) OnPageLoaded(records []R) []R {
	m.current = append([]R(nil), records...)
	return m.View()
}

// Toggle takes the complete set of checked rows for the current page. Rows of
// the current page that are absent were unchecked; identities outside the
// current page are left as they are.
func (m *Manager[K, R]) Toggle(selected []R) []R {
	for _, record := range m.current {
		delete(m.selected, m.key(record))
	}
	for _, record := range selected {
		m.selected[m.key(record)] = struct{}{}
	}

	return m.View()
}

// BulkApply selects the first n rows of the resident page and clears the rest
// of it. n is clamped to the page length.
func (m *Manager[K, R]) BulkApply(n int) []R {
	n = max(0, min(n, len(m.current)))
	return m.Toggle(m.current[:n])
}

func (m *Manager[K, R]) Count() int {
	return len(m.selected)
}

func (m *Manager[K, R]) View() []R {
	return View(m.selected, m.current, m.key)
}

func (m *Manager[K, R]) IsSelected(id K) bool {
	_, ok := m.selected[id]
	return ok
}

// Identities returns the selected identities in no particular order.
func (m *Manager[K, R]) Identities() []K {
	ids := make([]K, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager[K, R]) Current() []R {
	return append([]R(nil), m.current...)
}

// View returns the records whose identity is in selected, in page order.
func View[K comparable, R any](selected map[K]struct{}, records []R, key func(R) K) []R {
	view := make([]R, 0, len(records))
	for _, record := range records {
		if _, ok := selected[key(record)]; ok {
			view = append(view, record)
		}
	}
	return view
}
