package entity

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrScopeMissing is returned when a screen resource needs a scope id the caller does not carry
var ErrScopeMissing = errors.New("scope identifier missing for screen")

// ColumnFormat controls how a value is rendered in a spreadsheet cell
type ColumnFormat string

const (
	ColumnText     ColumnFormat = "text"
	ColumnCurrency ColumnFormat = "currency"
	ColumnDate     ColumnFormat = "date"
	ColumnDateTime ColumnFormat = "datetime"
)

// Column is one spreadsheet column of a screen export
type Column struct {
	Header string       `json:"header"`
	Field  string       `json:"field"`
	Format ColumnFormat `json:"format"`
}

// Screen describes one list screen of the console: where its records come from,
// which fields the search looks at and how exports are shaped.
type Screen struct {
	Name             string                    `json:"name"`
	Title            string                    `json:"title"`
	ListResource     string                    `json:"list_resource"`
	ListKey          string                    `json:"list_key"`
	MutationResource string                    `json:"mutation_resource"`
	IDField          string                    `json:"id_field"`
	DateField        string                    `json:"date_field"`
	StatusField      string                    `json:"status_field,omitempty"`
	Statuses         []string                  `json:"statuses,omitempty"`
	SearchFields     []string                  `json:"search_fields"`
	AttachmentFields map[AttachmentKind]string `json:"attachment_fields,omitempty"`
	ArchiveIDField   string                    `json:"archive_id_field,omitempty"`
	ArchiveNameField string                    `json:"archive_name_field,omitempty"`
	Columns          []Column                  `json:"columns"`
	SelectAllScope   SelectAllScope            `json:"select_all_scope"`
	PageSize         int                       `json:"page_size"`
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z]+)\}`)

// ListPath fills the list resource placeholders from scope
func (s *Screen) ListPath(scope Scope) (string, error) {
	var missing []string
	path := placeholderPattern.ReplaceAllStringFunc(s.ListResource, func(m string) string {
		name := m[1 : len(m)-1]
		value := scope.Param(name)
		if value == "" {
			missing = append(missing, name)
			return m
		}
		return url.PathEscape(value)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s needs %s", ErrScopeMissing, s.Name, strings.Join(missing, ", "))
	}
	return path, nil
}

// ScopeParams lists the scope identifiers the list resource needs
func (s *Screen) ScopeParams() []string {
	var params []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(s.ListResource, -1) {
		params = append(params, m[1])
	}
	return params
}

// SupportsAttachment reports whether records of this screen carry files of kind
func (s *Screen) SupportsAttachment(kind AttachmentKind) bool {
	_, ok := s.AttachmentFields[kind]
	return ok
}

// AllowsStatus reports whether status is one of the screen's known statuses
func (s *Screen) AllowsStatus(status string) bool {
	for _, st := range s.Statuses {
		if st == status {
			return true
		}
	}
	return false
}

const (
	ScreenDiagnosticsBookings      = "diagnostics-bookings"
	ScreenSingleDiagnosticBookings = "single-diagnostic-bookings"
	ScreenDoctorAppointments       = "doctor-appointments"
	ScreenStaff                    = "staff"
)

var bookingStatuses = []string{"Pending", "Confirmed", "Completed", "Cancelled"}

var bookingColumns = []Column{
	{Header: "Booking ID", Field: "bookingId", Format: ColumnText},
	{Header: "Patient Name", Field: "patientName", Format: ColumnText},
	{Header: "Diagnostic Center", Field: "diagnostic.name", Format: ColumnText},
	{Header: "Service Type", Field: "serviceType", Format: ColumnText},
	{Header: "Booking Date", Field: "date", Format: ColumnDate},
	{Header: "Time Slot", Field: "timeSlot", Format: ColumnText},
	{Header: "Amount", Field: "totalPrice", Format: ColumnCurrency},
	{Header: "Status", Field: "status", Format: ColumnText},
}

var screenCatalog = []*Screen{
	{
		Name:             ScreenDiagnosticsBookings,
		Title:            "Diagnostics Bookings",
		ListResource:     "/admin/diagnostics/bookings",
		ListKey:          "bookings",
		MutationResource: "/admin/diagnostics/bookings",
		IDField:          "_id",
		DateField:        "date",
		StatusField:      "status",
		Statuses:         bookingStatuses,
		SearchFields:     []string{"bookingId", "patientName", "status", "serviceType", "diagnostic.name"},
		AttachmentFields: map[AttachmentKind]string{
			AttachmentKindReport:       "report",
			AttachmentKindPrescription: "diagPrescription",
		},
		ArchiveIDField:   "bookingId",
		ArchiveNameField: "patientName",
		Columns:          bookingColumns,
		SelectAllScope:   SelectAllScopeFiltered,
		PageSize:         10,
	},
	{
		Name:             ScreenSingleDiagnosticBookings,
		Title:            "Diagnostic Center Bookings",
		ListResource:     "/admin/diagnostics/{diagnosticId}/bookings",
		ListKey:          "bookings",
		MutationResource: "/admin/diagnostics/bookings",
		IDField:          "_id",
		DateField:        "date",
		StatusField:      "status",
		Statuses:         bookingStatuses,
		SearchFields:     []string{"bookingId", "patientName", "status", "serviceType"},
		AttachmentFields: map[AttachmentKind]string{
			AttachmentKindReport:       "report",
			AttachmentKindPrescription: "diagPrescription",
		},
		ArchiveIDField:   "bookingId",
		ArchiveNameField: "patientName",
		Columns:          bookingColumns,
		SelectAllScope:   SelectAllScopePage,
		PageSize:         10,
	},
	{
		Name:             ScreenDoctorAppointments,
		Title:            "Doctor Appointments",
		ListResource:     "/admin/doctor/appointments",
		ListKey:          "appointments",
		MutationResource: "/admin/doctor/appointments",
		IDField:          "_id",
		DateField:        "schedule.date",
		StatusField:      "status",
		Statuses:         []string{"Pending", "Confirmed", "Completed", "Cancelled", "Rescheduled"},
		SearchFields:     []string{"appointmentId", "patient_name", "doctor.name", "status", "consultation_type"},
		AttachmentFields: map[AttachmentKind]string{
			AttachmentKindReport:       "report_file",
			AttachmentKindPrescription: "doctor_prescription",
		},
		ArchiveIDField:   "appointmentId",
		ArchiveNameField: "patient_name",
		Columns: []Column{
			{Header: "Appointment ID", Field: "appointmentId", Format: ColumnText},
			{Header: "Patient Name", Field: "patient_name", Format: ColumnText},
			{Header: "Doctor", Field: "doctor.name", Format: ColumnText},
			{Header: "Consultation Type", Field: "consultation_type", Format: ColumnText},
			{Header: "Appointment Date", Field: "schedule.date", Format: ColumnDate},
			{Header: "Time Slot", Field: "schedule.time", Format: ColumnText},
			{Header: "Fee", Field: "consultation_fee", Format: ColumnCurrency},
			{Header: "Status", Field: "status", Format: ColumnText},
		},
		SelectAllScope: SelectAllScopePage,
		PageSize:       10,
	},
	{
		Name:             ScreenStaff,
		Title:            "Company Staff",
		ListResource:     "/admin/companies/{companyId}/staff",
		ListKey:          "staff",
		MutationResource: "/admin/staff",
		IDField:          "_id",
		DateField:        "createdAt",
		StatusField:      "status",
		Statuses:         []string{"Active", "Inactive"},
		SearchFields:     []string{"name", "email", "contact_number", "department", "designation"},
		Columns: []Column{
			{Header: "Employee ID", Field: "employeeId", Format: ColumnText},
			{Header: "Name", Field: "name", Format: ColumnText},
			{Header: "Email", Field: "email", Format: ColumnText},
			{Header: "Contact Number", Field: "contact_number", Format: ColumnText},
			{Header: "Department", Field: "department", Format: ColumnText},
			{Header: "Designation", Field: "designation", Format: ColumnText},
			{Header: "Wallet Balance", Field: "wallet_balance", Format: ColumnCurrency},
			{Header: "Joined On", Field: "createdAt", Format: ColumnDate},
		},
		SelectAllScope: SelectAllScopeFiltered,
		PageSize:       20,
	},
}

// Screens returns the screen catalog in display order
func Screens() []*Screen {
	out := make([]*Screen, len(screenCatalog))
	copy(out, screenCatalog)
	return out
}

// FindScreen looks a screen up by name
func FindScreen(name string) (*Screen, bool) {
	for _, s := range screenCatalog {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
