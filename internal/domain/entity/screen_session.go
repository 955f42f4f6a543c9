package entity

import (
	"time"

	"github.com/google/uuid"
)

// ScreenSession is the state of one open list screen: the loaded records,
// the applied filter, the checked ids and the current page.
type ScreenSession struct {
	ID         uuid.UUID     `json:"id"`
	ScreenName string        `json:"screen"`
	Scope      Scope         `json:"scope"`
	Records    []Record      `json:"records"`
	Filter     FilterState   `json:"filter"`
	Selection  *SelectionSet `json:"selection"`
	AllChecked bool          `json:"all_checked"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	LoadedAt   *time.Time    `json:"loaded_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewScreenSession starts a session with the default filter and an empty selection
func NewScreenSession(screen *Screen, scope Scope) *ScreenSession {
	return &ScreenSession{
		ID:         uuid.New(),
		ScreenName: screen.Name,
		Scope:      scope,
		Filter:     DefaultFilterState(),
		Selection:  NewSelectionSet(),
		Page:       1,
		PageSize:   screen.PageSize,
		CreatedAt:  time.Now().UTC(),
	}
}

// Screen resolves the session's screen from the catalog
func (s *ScreenSession) Screen() (*Screen, bool) {
	return FindScreen(s.ScreenName)
}

// ReplaceRecords swaps the whole list after a successful load
func (s *ScreenSession) ReplaceRecords(records []Record, at time.Time) {
	s.Records = records
	s.LoadedAt = &at
}

// ResetSelection empties the selection and unchecks the header checkbox
func (s *ScreenSession) ResetSelection() {
	if s.Selection == nil {
		s.Selection = NewSelectionSet()
	}
	s.Selection.Clear()
	s.AllChecked = false
}

// FindRecord returns the index of a record by id, or -1
func (s *ScreenSession) FindRecord(id string) int {
	for i := range s.Records {
		if s.Records[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveRecord drops a record from the list and the selection
func (s *ScreenSession) RemoveRecord(id string) bool {
	idx := s.FindRecord(id)
	if idx < 0 {
		return false
	}
	s.Records = append(s.Records[:idx], s.Records[idx+1:]...)
	if s.Selection != nil {
		s.Selection.Remove(id)
	}
	return true
}
