package service

import (
	"testing"
	"time"

	"healthcare-admin-console/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = mustLocation("Asia/Kolkata")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func bookingScreen(t *testing.T) *entity.Screen {
	t.Helper()
	screen, ok := entity.FindScreen(entity.ScreenDiagnosticsBookings)
	require.True(t, ok)
	return screen
}

func booking(id, patient, date string) entity.Record {
	return entity.Record{
		ID:         id,
		OccurredAt: date,
		Fields: map[string]any{
			"_id":         id,
			"bookingId":   "BK-" + id,
			"patientName": patient,
			"status":      "Pending",
			"serviceType": "Home Collection",
			"date":        date,
		},
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func TestFilterSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	filter := NewRecordFilter(ist, nil)
	screen := bookingScreen(t)
	records := []entity.Record{booking("1", "Rahul Sharma", "2024-01-22"), booking("2", "Priya Nair", "2024-01-22")}

	for _, term := range []string{"rahul", "SHARMA", "ul sha", "  Rahul  "} {
		got := filter.Filter(records, screen, entity.FilterState{SearchTerm: term, DateMode: entity.DateModeAll})
		assert.Equal(t, []string{"1"}, RecordIDs(got), term)
	}

	got := filter.Filter(records, screen, entity.FilterState{SearchTerm: "xyz", DateMode: entity.DateModeAll})
	assert.Empty(t, got)

	got = filter.Filter(records, screen, entity.FilterState{SearchTerm: "bk-2", DateMode: entity.DateModeAll})
	assert.Equal(t, []string{"2"}, RecordIDs(got))

	got = filter.Filter(records, screen, entity.FilterState{SearchTerm: "", DateMode: entity.DateModeAll})
	assert.Equal(t, []string{"1", "2"}, RecordIDs(got))
}

func TestFilterSearchFoldsUnicode(t *testing.T) {
	filter := NewRecordFilter(ist, nil)
	screen := bookingScreen(t)
	records := []entity.Record{booking("2", "ÉLODIE", "2024-01-22")}
	got := filter.Filter(records, screen, entity.FilterState{SearchTerm: "élodie", DateMode: entity.DateModeAll})
	assert.Equal(t, []string{"2"}, RecordIDs(got))
}

func TestFilterTodayAndYesterdayBoundaries(t *testing.T) {
	current := time.Date(2024, 1, 22, 12, 0, 0, 0, ist)
	filter := NewRecordFilter(ist, fixedClock(current))
	screen := bookingScreen(t)

	records := []entity.Record{
		booking("late-today", "A", "2024-01-22T23:59:59"),
		booking("early-yesterday", "B", "2024-01-21T00:00:01"),
		booking("before", "C", "2024-01-20T23:59:59"),
		booking("broken", "D", "not a date"),
	}

	today := filter.Filter(records, screen, entity.FilterState{DateMode: entity.DateModeToday})
	assert.Equal(t, []string{"late-today"}, RecordIDs(today))

	yesterday := filter.Filter(records, screen, entity.FilterState{DateMode: entity.DateModeYesterday})
	assert.Equal(t, []string{"early-yesterday"}, RecordIDs(yesterday))

	all := filter.Filter(records, screen, entity.FilterState{DateMode: entity.DateModeAll})
	assert.Len(t, all, 4)
}

func TestFilterTodayUsesConfiguredZone(t *testing.T) {
	// 20:00 UTC on the 21st is already the 22nd in India
	filter := NewRecordFilter(ist, fixedClock(time.Date(2024, 1, 21, 20, 0, 0, 0, time.UTC)))
	screen := bookingScreen(t)

	got := filter.Filter([]entity.Record{booking("1", "A", "2024-01-22T00:30:00+05:30")}, screen, entity.FilterState{DateMode: entity.DateModeToday})
	assert.Equal(t, []string{"1"}, RecordIDs(got))
}

func TestFilterThisMonth(t *testing.T) {
	filter := NewRecordFilter(ist, fixedClock(time.Date(2024, 2, 10, 9, 0, 0, 0, ist)))
	screen := bookingScreen(t)

	records := []entity.Record{
		booking("first", "A", "2024-02-01T00:00:00"),
		booking("last", "B", "2024-02-29T23:59:00"),
		booking("prev", "C", "2024-01-31T23:59:59"),
		booking("next", "D", "2024-03-01"),
	}

	got := filter.Filter(records, screen, entity.FilterState{DateMode: entity.DateModeThisMonth})
	assert.Equal(t, []string{"first", "last"}, RecordIDs(got))
}

func TestFilterCustomRangeIncludesWholeEndDay(t *testing.T) {
	filter := NewRecordFilter(ist, nil)
	screen := bookingScreen(t)

	records := []entity.Record{
		booking("in", "A", "2024-01-22T23:00:00"),
		booking("start", "B", "2024-01-20"),
		booking("out", "C", "2024-01-23T00:00:00"),
		booking("before", "D", "2024-01-19T23:59:59"),
	}

	state := entity.FilterState{
		DateMode:    entity.DateModeCustom,
		CustomStart: ptrTime(time.Date(2024, 1, 20, 0, 0, 0, 0, ist)),
		CustomEnd:   ptrTime(time.Date(2024, 1, 22, 0, 0, 0, 0, ist)),
	}
	got := filter.Filter(records, screen, state)
	assert.Equal(t, []string{"in", "start"}, RecordIDs(got))
}

func TestFilterCustomRangeMissingBoundIsEmpty(t *testing.T) {
	filter := NewRecordFilter(ist, nil)
	screen := bookingScreen(t)
	records := []entity.Record{booking("1", "A", "2024-01-22")}

	got := filter.Filter(records, screen, entity.FilterState{
		DateMode:    entity.DateModeCustom,
		CustomStart: ptrTime(time.Date(2024, 1, 20, 0, 0, 0, 0, ist)),
	})
	assert.Empty(t, got)

	got = filter.Filter(records, screen, entity.FilterState{DateMode: entity.DateModeCustom})
	assert.Empty(t, got)
}

func TestFilterCombinesSearchAndDateStably(t *testing.T) {
	filter := NewRecordFilter(ist, fixedClock(time.Date(2024, 1, 22, 9, 0, 0, 0, ist)))
	screen := bookingScreen(t)

	records := []entity.Record{
		booking("3", "Rahul", "2024-01-22"),
		booking("1", "Rahul", "2024-01-10"),
		booking("2", "Rahul", "2024-01-22"),
		booking("4", "Meera", "2024-01-22"),
	}

	got := filter.Filter(records, screen, entity.FilterState{SearchTerm: "rahul", DateMode: entity.DateModeToday})
	assert.Equal(t, []string{"3", "2"}, RecordIDs(got))
}

func TestDateWindow(t *testing.T) {
	filter := NewRecordFilter(ist, fixedClock(time.Date(2024, 1, 22, 9, 0, 0, 0, ist)))

	_, _, ok := filter.DateWindow(entity.DefaultFilterState())
	assert.False(t, ok)

	from, to, ok := filter.DateWindow(entity.FilterState{DateMode: entity.DateModeThisMonth})
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, ist), from)
	assert.Equal(t, 31, to.Day())
}

func TestRangeLabel(t *testing.T) {
	filter := NewRecordFilter(ist, fixedClock(time.Date(2024, 1, 22, 9, 0, 0, 0, ist)))

	assert.Equal(t, "all", filter.RangeLabel(entity.DefaultFilterState()))
	assert.Equal(t, "2024-01-22", filter.RangeLabel(entity.FilterState{DateMode: entity.DateModeToday}))
	assert.Equal(t, "2024-01-21", filter.RangeLabel(entity.FilterState{DateMode: entity.DateModeYesterday}))
	assert.Equal(t, "2024-01", filter.RangeLabel(entity.FilterState{DateMode: entity.DateModeThisMonth}))
	assert.Equal(t, "2024-01-20_to_2024-01-22", filter.RangeLabel(entity.FilterState{
		DateMode:    entity.DateModeCustom,
		CustomStart: ptrTime(time.Date(2024, 1, 20, 0, 0, 0, 0, ist)),
		CustomEnd:   ptrTime(time.Date(2024, 1, 22, 0, 0, 0, 0, ist)),
	}))
}

func TestPaginate(t *testing.T) {
	records := []entity.Record{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}

	assert.Equal(t, []string{"1", "2"}, RecordIDs(Paginate(records, 1, 2)))
	assert.Equal(t, []string{"5"}, RecordIDs(Paginate(records, 3, 2)))
	assert.Empty(t, Paginate(records, 4, 2))
	assert.Equal(t, []string{"1", "2"}, RecordIDs(Paginate(records, 0, 2)))
	assert.Len(t, Paginate(records, 1, 0), 5)

	assert.Equal(t, 3, TotalPages(5, 2))
	assert.Equal(t, 1, TotalPages(0, 2))
}
