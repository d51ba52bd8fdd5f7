package selection

import "sort"

// Tracker maintains the set of selected course ids across server pages,
// plus the "every course in the dataset" flag. Switching pages never
// touches the set: a selection made on page 1 survives browsing to page 5.
//
// The AllPages flag records a deliberate "select everything" choice. It is
// not derived from set size, and any manual deselection clears it.
type Tracker struct {
	ids      map[string]bool
	allPages bool
}

func NewTracker() *Tracker {
	return &Tracker{ids: make(map[string]bool)}
}

// Toggle flips membership of id. Removing an id always drops the
// all-pages flag.
func (t *Tracker) Toggle(id string) {
	if id == "" {
		return
	}
	if t.ids[id] {
		delete(t.ids, id)
		t.allPages = false
		return
	}
	t.ids[id] = true
}

// ToggleAllVisible selects every visible id, or deselects them all when
// each one is already selected. It never sets the all-pages flag; a full
// page is still just a page.
func (t *Tracker) ToggleAllVisible(visibleIDs []string) {
	if len(visibleIDs) == 0 {
		return
	}

	allSelected := true
	for _, id := range visibleIDs {
		if !t.ids[id] {
			allSelected = false
			break
		}
	}

	if allSelected {
		for _, id := range visibleIDs {
			delete(t.ids, id)
		}
		t.allPages = false
		return
	}
	for _, id := range visibleIDs {
		if id != "" {
			t.ids[id] = true
		}
	}
}

// SelectAllAcrossPages replaces the set with the full id universe and
// marks the selection as covering every page. The caller must pass ids
// fetched from the server, not the current page.
func (t *Tracker) SelectAllAcrossPages(allIDs []string) {
	t.ids = make(map[string]bool, len(allIDs))
	for _, id := range allIDs {
		if id != "" {
			t.ids[id] = true
		}
	}
	t.allPages = true
}

// Clear empties the selection and resets the all-pages flag.
func (t *Tracker) Clear() {
	t.ids = make(map[string]bool)
	t.allPages = false
}

func (t *Tracker) Count() int {
	return len(t.ids)
}

func (t *Tracker) IsSelected(id string) bool {
	return t.ids[id]
}

// AllPages reports whether the selection deliberately covers the whole
// dataset.
func (t *Tracker) AllPages() bool {
	return t.allPages
}

// IDs returns the selected ids in a deterministic order.
func (t *Tracker) IDs() []string {
	out := make([]string, 0, len(t.ids))
	for id := range t.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
