package entity

import "encoding/json"

// SelectAllScope decides which ids the header checkbox covers
type SelectAllScope string

const (
	SelectAllScopePage     SelectAllScope = "page"
	SelectAllScopeFiltered SelectAllScope = "filtered"
)

// ParseSelectAllScope validates a scope; "" falls back to def
func ParseSelectAllScope(s string, def SelectAllScope) (SelectAllScope, bool) {
	switch SelectAllScope(s) {
	case "":
		return def, true
	case SelectAllScopePage, SelectAllScopeFiltered:
		return SelectAllScope(s), true
	}
	return "", false
}

// SelectionSet is the set of record ids checked for a bulk action.
// Insertion order is kept so exports and responses are deterministic.
type SelectionSet struct {
	ids   []string
	index map[string]int
}

// NewSelectionSet builds a set from ids, dropping duplicates
func NewSelectionSet(ids ...string) *SelectionSet {
	s := &SelectionSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *SelectionSet) init() {
	if s.index == nil {
		s.index = make(map[string]int)
	}
}

// Contains reports membership
func (s *SelectionSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add inserts id; it returns false when id was already present
func (s *SelectionSet) Add(id string) bool {
	s.init()
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id; it returns false when id was absent
func (s *SelectionSet) Remove(id string) bool {
	pos, ok := s.index[id]
	if !ok {
		return false
	}
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.ids); i++ {
		s.index[s.ids[i]] = i
	}
	return true
}

// Toggle flips membership and returns the new state
func (s *SelectionSet) Toggle(id string) bool {
	if s.Remove(id) {
		return false
	}
	s.Add(id)
	return true
}

// Clear empties the set
func (s *SelectionSet) Clear() {
	s.ids = nil
	s.index = nil
}

// Len is the number of selected ids
func (s *SelectionSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in insertion order
func (s *SelectionSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// ContainsAll reports whether every id is selected; an empty list is never "all"
func (s *SelectionSet) ContainsAll(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// Retain drops every id not present in visible
func (s *SelectionSet) Retain(visible map[string]struct{}) {
	kept := s.ids[:0:0]
	for _, id := range s.ids {
		if _, ok := visible[id]; ok {
			kept = append(kept, id)
		}
	}
	s.Clear()
	for _, id := range kept {
		s.Add(id)
	}
}

func (s *SelectionSet) MarshalJSON() ([]byte, error) {
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

func (s *SelectionSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.Clear()
	for _, id := range ids {
		s.Add(id)
	}
	return nil
}
