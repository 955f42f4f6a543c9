package converter

import (
	"sort"
	"time"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/domain/entity"
)

const dayLayout = "2006-01-02"

// ScreenToResponse converts a catalog Screen to ScreenResponse DTO
func ScreenToResponse(screen *entity.Screen) dto.ScreenResponse {
	columns := make([]dto.ColumnResponse, len(screen.Columns))
	for i, col := range screen.Columns {
		columns[i] = dto.ColumnResponse{
			Header: col.Header,
			Field:  col.Field,
			Format: string(col.Format),
		}
	}

	var kinds []string
	for kind := range screen.AttachmentFields {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	return dto.ScreenResponse{
		Name:            screen.Name,
		Title:           screen.Title,
		Statuses:        screen.Statuses,
		AttachmentKinds: kinds,
		SelectAllScope:  string(screen.SelectAllScope),
		PageSize:        screen.PageSize,
		RequiresScope:   screen.ScopeParams(),
		Columns:         columns,
	}
}

// ScreensToResponses converts the screen catalog to DTOs
func ScreensToResponses(screens []*entity.Screen) []dto.ScreenResponse {
	responses := make([]dto.ScreenResponse, len(screens))
	for i, screen := range screens {
		responses[i] = ScreenToResponse(screen)
	}
	return responses
}

// FilterToResponse converts a FilterState to FilterResponse DTO
func FilterToResponse(filter entity.FilterState) dto.FilterResponse {
	return dto.FilterResponse{
		Search:   filter.SearchTerm,
		DateMode: string(filter.DateMode),
		Start:    formatDay(filter.CustomStart),
		End:      formatDay(filter.CustomEnd),
	}
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dayLayout)
}

// RecordToResponse converts a Record to RecordResponse DTO
func RecordToResponse(record *entity.Record, selected bool) dto.RecordResponse {
	var attachments map[string][]string
	for kind, attachment := range record.Attachments {
		if attachment.IsEmpty() {
			continue
		}
		if attachments == nil {
			attachments = make(map[string][]string)
		}
		attachments[string(kind)] = attachment.List()
	}

	return dto.RecordResponse{
		ID:          record.ID,
		Selected:    selected,
		Fields:      record.Fields,
		Attachments: attachments,
	}
}

// SessionToResponse converts a session and its current page to SessionResponse DTO
func SessionToResponse(session *entity.ScreenSession, screen *entity.Screen, pageRecords []entity.Record, filteredCount, totalPages int) *dto.SessionResponse {
	records := make([]dto.RecordResponse, len(pageRecords))
	for i := range pageRecords {
		records[i] = RecordToResponse(&pageRecords[i], session.Selection.Contains(pageRecords[i].ID))
	}

	return &dto.SessionResponse{
		ID:            session.ID,
		Screen:        screen.Name,
		Title:         screen.Title,
		Filter:        FilterToResponse(session.Filter),
		Records:       records,
		SelectedIDs:   session.Selection.IDs(),
		AllChecked:    session.AllChecked,
		Page:          session.Page,
		PageSize:      session.PageSize,
		TotalPages:    totalPages,
		FilteredCount: filteredCount,
		LoadedCount:   len(session.Records),
		LoadedAt:      session.LoadedAt,
		CreatedAt:     session.CreatedAt,
	}
}
