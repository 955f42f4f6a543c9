package entity

import "time"

// DateMode is the date-range selector of a list screen
type DateMode string

const (
	DateModeAll       DateMode = "all"
	DateModeToday     DateMode = "today"
	DateModeYesterday DateMode = "yesterday"
	DateModeThisMonth DateMode = "thisMonth"
	DateModeCustom    DateMode = "custom"
)

// ParseDateMode maps user input to a DateMode; "" means all
func ParseDateMode(s string) (DateMode, bool) {
	switch DateMode(s) {
	case "":
		return DateModeAll, true
	case DateModeAll, DateModeToday, DateModeYesterday, DateModeThisMonth, DateModeCustom:
		return DateMode(s), true
	}
	return "", false
}

// FilterState is the search and date selection currently applied to a screen
type FilterState struct {
	SearchTerm  string     `json:"search_term"`
	DateMode    DateMode   `json:"date_mode"`
	CustomStart *time.Time `json:"custom_start,omitempty"`
	CustomEnd   *time.Time `json:"custom_end,omitempty"`
}

// DefaultFilterState is what a freshly opened screen starts with
func DefaultFilterState() FilterState {
	return FilterState{DateMode: DateModeAll}
}

// Equal compares two filter states field by field
func (f FilterState) Equal(other FilterState) bool {
	return f.SearchTerm == other.SearchTerm &&
		f.DateMode == other.DateMode &&
		sameDay(f.CustomStart, other.CustomStart) &&
		sameDay(f.CustomEnd, other.CustomEnd)
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
