// Package kbselect tracks which knowledge bases the user has switched on.
// The flag lives only on this machine; server listings are overlaid with it.
package kbselect

import "scout-tui/internal/domain"

type Record struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// Selection is the persisted list of known knowledge bases in first-seen order.
type Selection []Record

func (s Selection) lookup(id string) (Record, bool) {
	for _, r := range s {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

func (s Selection) IsActive(id string) bool {
	r, ok := s.lookup(id)
	return ok && r.Active
}

// Set returns a copy of s with id marked active or inactive, appending it
// when unseen.
func (s Selection) Set(id string, active bool) Selection {
	out := make(Selection, 0, len(s)+1)
	found := false
	for _, r := range s {
		if r.ID == id {
			r.Active = active
			found = true
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, Record{ID: id, Active: active})
	}
	return out
}

// ActiveIDs returns the ids of active knowledge bases in selection order.
func (s Selection) ActiveIDs() []string {
	var ids []string
	for _, r := range s {
		if r.Active && r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Merge overlays the selection onto a server listing. Knowledge bases the
// selection has never seen come back inactive. The listing is not modified.
func Merge(listing []domain.KnowledgeBase, sel Selection) []domain.KnowledgeBase {
	out := make([]domain.KnowledgeBase, len(listing))
	for i, kb := range listing {
		kb.Active = sel.IsActive(kb.ID)
		out[i] = kb
	}
	return out
}

// Sync rebuilds the selection from the union of the given listings, keeping
// each known flag and dropping knowledge bases no listing returns anymore.
func Sync(sel Selection, listings ...[]domain.KnowledgeBase) Selection {
	out := Selection{}
	seen := make(map[string]bool)
	for _, listing := range listings {
		for _, kb := range listing {
			if kb.ID == "" || seen[kb.ID] {
				continue
			}
			seen[kb.ID] = true
			out = append(out, Record{ID: kb.ID, Active: sel.IsActive(kb.ID)})
		}
	}
	return out
}

// Toggle flips kb's flag and returns the new selection together with the
// updated knowledge base.
func Toggle(sel Selection, kb domain.KnowledgeBase) (Selection, domain.KnowledgeBase) {
	kb.Active = !sel.IsActive(kb.ID)
	return sel.Set(kb.ID, kb.Active), kb
}
