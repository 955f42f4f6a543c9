package dto

import (
	"time"

	"github.com/google/uuid"
)

// Export targets
const (
	ExportTargetSelected = "selected"
	ExportTargetFiltered = "filtered"
)

// Request DTOs

// OpenSessionRequest names the center, doctor or company a scoped screen loads.
// Only admins may choose; other roles use the ids carried by their token.
type OpenSessionRequest struct {
	DiagnosticID string `json:"diagnostic_id" validate:"omitempty,max=100"`
	DoctorID     string `json:"doctor_id" validate:"omitempty,max=100"`
	CompanyID    string `json:"company_id" validate:"omitempty,max=100"`
}

type FilterRequest struct {
	Search   string `json:"search" validate:"max=200"`
	DateMode string `json:"date_mode" validate:"omitempty,oneof=all today yesterday thisMonth custom"`
	// Start and End are calendar days as YYYY-MM-DD, used by the custom mode
	Start string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

type ChangePageRequest struct {
	Page int `json:"page" validate:"required,gte=1"`
}

type ToggleSelectionRequest struct {
	RecordID string `json:"record_id" validate:"required"`
}

type SelectAllRequest struct {
	Checked bool `json:"checked"`
	// Scope is "page" or "filtered"; empty uses the screen default
	Scope string `json:"scope" validate:"omitempty,oneof=page filtered"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

type ExportQuery struct {
	Target string `schema:"target" validate:"omitempty,oneof=selected filtered"`
	Type   string `schema:"type" validate:"omitempty,oneof=reports prescriptions both"`
}

// Response DTOs

type ColumnResponse struct {
	Header string `json:"header"`
	Field  string `json:"field"`
	Format string `json:"format"`
}

type ScreenResponse struct {
	Name            string           `json:"name"`
	Title           string           `json:"title"`
	Statuses        []string         `json:"statuses,omitempty"`
	AttachmentKinds []string         `json:"attachment_kinds,omitempty"`
	SelectAllScope  string           `json:"select_all_scope"`
	PageSize        int              `json:"page_size"`
	RequiresScope   []string         `json:"requires_scope,omitempty"`
	Columns         []ColumnResponse `json:"columns"`
}

type FilterResponse struct {
	Search   string `json:"search"`
	DateMode string `json:"date_mode"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

type RecordResponse struct {
	ID          string              `json:"id"`
	Selected    bool                `json:"selected"`
	Fields      map[string]any      `json:"fields"`
	Attachments map[string][]string `json:"attachments,omitempty"`
}

type SessionResponse struct {
	ID            uuid.UUID        `json:"id"`
	Screen        string           `json:"screen"`
	Title         string           `json:"title"`
	Filter        FilterResponse   `json:"filter"`
	Records       []RecordResponse `json:"records"`
	SelectedIDs   []string         `json:"selected_ids"`
	AllChecked    bool             `json:"all_checked"`
	Page          int              `json:"page"`
	PageSize      int              `json:"page_size"`
	TotalPages    int              `json:"total_pages"`
	FilteredCount int              `json:"filtered_count"`
	LoadedCount   int              `json:"loaded_count"`
	LoadedAt      *time.Time       `json:"loaded_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
