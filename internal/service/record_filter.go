package service

import (
	"strings"
	"time"

	"healthcare-admin-console/internal/domain/entity"

	"github.com/jinzhu/now"
	"golang.org/x/text/cases"
)

// RecordFilter composes the search and date predicates of a list screen.
// Output keeps the input order.
type RecordFilter struct {
	location *time.Location
	clock    func() time.Time
}

func NewRecordFilter(location *time.Location, clock func() time.Time) *RecordFilter {
	if location == nil {
		location = time.Local
	}
	if clock == nil {
		clock = time.Now
	}
	return &RecordFilter{location: location, clock: clock}
}

// Location is the time zone calendar days are evaluated in
func (f *RecordFilter) Location() *time.Location {
	return f.location
}

// Filter returns the records matching both the search term and the date mode
func (f *RecordFilter) Filter(records []entity.Record, screen *entity.Screen, state entity.FilterState) []entity.Record {
	matchDate := f.datePredicate(state)
	matchSearch := searchPredicate(screen.SearchFields, state.SearchTerm)

	out := make([]entity.Record, 0, len(records))
	for i := range records {
		if matchDate(&records[i]) && matchSearch(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func searchPredicate(fields []string, term string) func(*entity.Record) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return func(*entity.Record) bool { return true }
	}

	folder := cases.Fold()
	needle := folder.String(term)
	return func(r *entity.Record) bool {
		for _, field := range fields {
			if strings.Contains(folder.String(r.Text(field)), needle) {
				return true
			}
		}
		return false
	}
}

// dateRange is an inclusive [from, to] window
type dateRange struct {
	from time.Time
	to   time.Time
}

// DateWindow resolves a filter state to its inclusive time window.
// ok is false for DateModeAll and for a custom range with a missing bound.
func (f *RecordFilter) DateWindow(state entity.FilterState) (from, to time.Time, ok bool) {
	r, ok := f.window(state)
	return r.from, r.to, ok
}

func (f *RecordFilter) window(state entity.FilterState) (dateRange, bool) {
	today := now.With(f.clock().In(f.location))

	switch state.DateMode {
	case entity.DateModeToday:
		return dateRange{today.BeginningOfDay(), today.EndOfDay()}, true
	case entity.DateModeYesterday:
		yesterday := now.With(today.BeginningOfDay().AddDate(0, 0, -1))
		return dateRange{yesterday.BeginningOfDay(), yesterday.EndOfDay()}, true
	case entity.DateModeThisMonth:
		return dateRange{today.BeginningOfMonth(), today.EndOfMonth()}, true
	case entity.DateModeCustom:
		if state.CustomStart == nil || state.CustomEnd == nil {
			return dateRange{}, false
		}
		start := now.With(state.CustomStart.In(f.location))
		end := now.With(state.CustomEnd.In(f.location))
		return dateRange{start.BeginningOfDay(), end.EndOfDay()}, true
	}
	return dateRange{}, false
}

// RangeLabel names the date window in export file names:
// "all", "2024-01-22", "2024-01" or "2024-01-20_to_2024-01-22".
func (f *RecordFilter) RangeLabel(state entity.FilterState) string {
	window, ok := f.window(state)
	if !ok {
		return "all"
	}
	switch state.DateMode {
	case entity.DateModeThisMonth:
		return window.from.Format("2006-01")
	case entity.DateModeCustom:
		return window.from.Format("2006-01-02") + "_to_" + window.to.Format("2006-01-02")
	}
	return window.from.Format("2006-01-02")
}

func (f *RecordFilter) datePredicate(state entity.FilterState) func(*entity.Record) bool {
	if state.DateMode == entity.DateModeAll || state.DateMode == "" {
		return func(*entity.Record) bool { return true }
	}

	window, ok := f.window(state)
	if !ok {
		// a custom range missing a bound shows nothing
		return func(*entity.Record) bool { return false }
	}

	return func(r *entity.Record) bool {
		t, ok := r.OccurredTime(f.location)
		if !ok {
			return false
		}
		return !t.Before(window.from) && !t.After(window.to)
	}
}

// Paginate returns the 1-based page of records; out of range pages are empty
func Paginate(records []entity.Record, page, size int) []entity.Record {
	if size <= 0 {
		return records
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(records) {
		return []entity.Record{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// TotalPages is the number of pages needed for n records, at least 1
func TotalPages(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// RecordIDs collects ids in order
func RecordIDs(records []entity.Record) []string {
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	return ids
}
