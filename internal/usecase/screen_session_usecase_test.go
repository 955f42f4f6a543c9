package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/domain/entity"
	domainRepo "healthcare-admin-console/internal/domain/repository"
	"healthcare-admin-console/internal/infrastructure/upstream"
	"healthcare-admin-console/internal/repository"
	"healthcare-admin-console/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockRecordRepo struct {
	mock.Mock
}

func (m *mockRecordRepo) FindAll(ctx context.Context, screen *entity.Screen, scope entity.Scope) ([]entity.Record, error) {
	args := m.Called(screen.Name, scope)
	records, _ := args.Get(0).([]entity.Record)
	return records, args.Error(1)
}

func (m *mockRecordRepo) UpdateStatus(ctx context.Context, screen *entity.Screen, id string, status string) error {
	return m.Called(screen.Name, id, status).Error(0)
}

func (m *mockRecordRepo) Delete(ctx context.Context, screen *entity.Screen, id string) error {
	return m.Called(screen.Name, id).Error(0)
}

func (m *mockRecordRepo) UploadAttachment(ctx context.Context, screen *entity.Screen, id string, kind entity.AttachmentKind, filename string, content io.Reader) error {
	return m.Called(screen.Name, id, kind, filename).Error(0)
}

type stubFetcher struct {
	files map[string]string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if data, ok := f.files[url]; ok {
		return []byte(data), nil
	}
	return nil, fmt.Errorf("%w: status 404", upstream.ErrUpstream)
}

type auditEntry struct {
	action   string
	metadata entity.JSON
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAudit) Record(ctx context.Context, scope entity.Scope, action string, metadata entity.JSON) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, metadata: metadata})
}

func (a *recordingAudit) Enabled() bool { return true }

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.action
	}
	return out
}

var ist, _ = time.LoadLocation("Asia/Kolkata")

var adminScope = entity.Scope{ActorID: "admin-1", ActorName: "Asha", Role: entity.RoleAdmin}

func makeBookings(n int) []entity.Record {
	screen, _ := entity.FindScreen(entity.ScreenDiagnosticsBookings)
	records := make([]entity.Record, n)
	for i := range records {
		raw := map[string]any{
			"_id":         fmt.Sprintf("b%02d", i+1),
			"bookingId":   fmt.Sprintf("BK-%02d", i+1),
			"patientName": fmt.Sprintf("Patient %02d", i+1),
			"status":      "Pending",
			"date":        "2024-01-22",
			"totalPrice":  100 * (i + 1),
			"report":      fmt.Sprintf("https://files.test/r%02d.pdf", i+1),
		}
		if i == 0 {
			raw["patientName"] = "Rahul Sharma"
		}
		records[i] = entity.NewRecord(raw, screen, "")
	}
	return records
}

type ScreenSessionUsecaseTestSuite struct {
	suite.Suite
	ctx         context.Context
	recordRepo  *mockRecordRepo
	sessionRepo domainRepo.SessionRepository
	audit       *recordingAudit
	usecase     ScreenSessionUsecase
}

func TestScreenSessionUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(ScreenSessionUsecaseTestSuite))
}

func (s *ScreenSessionUsecaseTestSuite) SetupTest() {
	log, _ := test.NewNullLogger()
	s.ctx = context.Background()
	s.recordRepo = new(mockRecordRepo)
	s.sessionRepo = repository.NewMemorySessionRepository(time.Hour)
	s.audit = &recordingAudit{}

	clock := func() time.Time { return time.Date(2024, 1, 22, 12, 0, 0, 0, ist) }
	fetcher := &stubFetcher{files: map[string]string{
		"https://files.test/r01.pdf": "%PDF-1.4 one",
		"https://files.test/r02.pdf": "%PDF-1.4 two",
	}}

	s.usecase = NewScreenSessionUsecase(
		log,
		s.sessionRepo,
		s.recordRepo,
		service.NewRecordFilter(ist, clock),
		service.NewSpreadsheetExporter(ist, clock),
		service.NewArchiveExporter(fetcher, 2, log),
		s.audit,
	)
}

func (s *ScreenSessionUsecaseTestSuite) TearDownTest() {
	s.recordRepo.AssertExpectations(s.T())
}

func (s *ScreenSessionUsecaseTestSuite) open(n int) *dto.SessionResponse {
	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(makeBookings(n), nil).Once()
	resp, err := s.usecase.OpenSession(s.ctx, adminScope, entity.ScreenDiagnosticsBookings, nil)
	s.Require().NoError(err)
	return resp
}

func (s *ScreenSessionUsecaseTestSuite) TestOpenSessionPaginates() {
	resp := s.open(12)

	s.Equal(12, resp.LoadedCount)
	s.Equal(12, resp.FilteredCount)
	s.Equal(1, resp.Page)
	s.Equal(2, resp.TotalPages)
	s.Len(resp.Records, 10)
	s.Empty(resp.SelectedIDs)
	s.NotNil(resp.LoadedAt)
}

func (s *ScreenSessionUsecaseTestSuite) TestOpenSessionUnknownScreen() {
	_, err := s.usecase.OpenSession(s.ctx, adminScope, "invoices", nil)
	s.ErrorIs(err, ErrScreenNotFound)
}

func (s *ScreenSessionUsecaseTestSuite) TestOpenSessionMissingScopeSkipsNetwork() {
	_, err := s.usecase.OpenSession(s.ctx, adminScope, entity.ScreenSingleDiagnosticBookings, nil)
	s.ErrorIs(err, entity.ErrScopeMissing)
	s.recordRepo.AssertNotCalled(s.T(), "FindAll", mock.Anything, mock.Anything)
}

func (s *ScreenSessionUsecaseTestSuite) TestOpenSessionAdminPicksTarget() {
	target := adminScope
	target.DiagnosticID = "diag-7"
	s.recordRepo.On("FindAll", entity.ScreenSingleDiagnosticBookings, target).Return(makeBookings(2), nil).Once()

	resp, err := s.usecase.OpenSession(s.ctx, adminScope, entity.ScreenSingleDiagnosticBookings, &dto.OpenSessionRequest{DiagnosticID: "diag-7"})
	s.Require().NoError(err)
	s.Equal(2, resp.LoadedCount)

	// the chosen target is kept for reloads
	s.recordRepo.On("FindAll", entity.ScreenSingleDiagnosticBookings, target).Return(makeBookings(1), nil).Once()
	reloaded, err := s.usecase.Reload(s.ctx, adminScope, resp.ID)
	s.Require().NoError(err)
	s.Equal(1, reloaded.LoadedCount)
}

func (s *ScreenSessionUsecaseTestSuite) TestOpenSessionKeepsTokenBoundTarget() {
	center := entity.Scope{ActorID: "center-1", Role: entity.RoleDiagnostic, DiagnosticID: "diag-1"}
	s.recordRepo.On("FindAll", entity.ScreenSingleDiagnosticBookings, center).Return(makeBookings(1), nil).Once()

	resp, err := s.usecase.OpenSession(s.ctx, center, entity.ScreenSingleDiagnosticBookings, &dto.OpenSessionRequest{DiagnosticID: "diag-7"})
	s.Require().NoError(err)
	s.Equal(1, resp.LoadedCount)

	_, err = s.usecase.OpenSession(s.ctx, entity.Scope{ActorID: "company-1", Role: entity.RoleCompany}, entity.ScreenStaff, &dto.OpenSessionRequest{CompanyID: "c9"})
	s.ErrorIs(err, entity.ErrScopeMissing)
}

func (s *ScreenSessionUsecaseTestSuite) TestOpenSessionLoadFailure() {
	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(nil, upstream.ErrUpstream).Once()
	_, err := s.usecase.OpenSession(s.ctx, adminScope, entity.ScreenDiagnosticsBookings, nil)
	s.ErrorIs(err, upstream.ErrUpstream)
}

func (s *ScreenSessionUsecaseTestSuite) TestSessionIsPrivateToActor() {
	resp := s.open(3)

	_, err := s.usecase.GetSession(s.ctx, entity.Scope{ActorID: "someone-else"}, resp.ID)
	s.ErrorIs(err, ErrSessionNotFound)

	_, err = s.usecase.GetSession(s.ctx, adminScope, uuid.New())
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *ScreenSessionUsecaseTestSuite) TestFilterChangeResetsSelectionAndPage() {
	resp := s.open(12)

	_, err := s.usecase.ChangePage(s.ctx, adminScope, resp.ID, 2)
	s.Require().NoError(err)
	_, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b01")
	s.Require().NoError(err)

	filtered, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{Search: "rahul"})
	s.Require().NoError(err)
	s.Equal(1, filtered.Page)
	s.Equal(1, filtered.FilteredCount)
	s.Empty(filtered.SelectedIDs)
	s.False(filtered.AllChecked)
	s.Equal("b01", filtered.Records[0].ID)
}

func (s *ScreenSessionUsecaseTestSuite) TestSameFilterKeepsSelection() {
	resp := s.open(3)

	_, err := s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b02")
	s.Require().NoError(err)

	again, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{DateMode: "all"})
	s.Require().NoError(err)
	s.Equal([]string{"b02"}, again.SelectedIDs)
}

func (s *ScreenSessionUsecaseTestSuite) TestApplyFilterValidation() {
	resp := s.open(3)

	_, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{DateMode: "lastYear"})
	s.ErrorIs(err, ErrInvalidDateMode)

	_, err = s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{DateMode: "custom", Start: "2024-01-22", End: "2024-01-20"})
	s.ErrorIs(err, ErrInvalidCustomRange)

	_, err = s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{DateMode: "custom", Start: "22/01/2024"})
	s.ErrorIs(err, ErrInvalidCustomRange)

	custom, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{DateMode: "custom", Start: "2024-01-20", End: "2024-01-22"})
	s.Require().NoError(err)
	s.Equal(3, custom.FilteredCount)
	s.Equal("2024-01-20", custom.Filter.Start)

	halfOpen, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{DateMode: "custom", Start: "2024-01-20"})
	s.Require().NoError(err)
	s.Equal(0, halfOpen.FilteredCount)
}

func (s *ScreenSessionUsecaseTestSuite) TestToggleRequiresVisibleRecord() {
	resp := s.open(3)

	_, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{Search: "rahul"})
	s.Require().NoError(err)

	_, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b02")
	s.ErrorIs(err, ErrRecordNotVisible)

	toggled, err := s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b01")
	s.Require().NoError(err)
	s.Equal([]string{"b01"}, toggled.SelectedIDs)
	s.True(toggled.AllChecked)

	toggled, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b01")
	s.Require().NoError(err)
	s.Empty(toggled.SelectedIDs)
	s.False(toggled.AllChecked)
}

func (s *ScreenSessionUsecaseTestSuite) TestSelectAllScopes() {
	resp := s.open(12)

	page, err := s.usecase.SelectAll(s.ctx, adminScope, resp.ID, &dto.SelectAllRequest{Checked: true, Scope: "page"})
	s.Require().NoError(err)
	s.Len(page.SelectedIDs, 10)
	s.True(page.AllChecked)

	all, err := s.usecase.SelectAll(s.ctx, adminScope, resp.ID, &dto.SelectAllRequest{Checked: true})
	s.Require().NoError(err)
	s.Len(all.SelectedIDs, 12)

	unchecked, err := s.usecase.SelectAll(s.ctx, adminScope, resp.ID, &dto.SelectAllRequest{Checked: false, Scope: "page"})
	s.Require().NoError(err)
	s.Equal([]string{"b11", "b12"}, unchecked.SelectedIDs)
	s.False(unchecked.AllChecked)

	_, err = s.usecase.SelectAll(s.ctx, adminScope, resp.ID, &dto.SelectAllRequest{Checked: true, Scope: "everything"})
	s.ErrorIs(err, ErrInvalidSelectAllScope)

	cleared, err := s.usecase.ClearSelection(s.ctx, adminScope, resp.ID)
	s.Require().NoError(err)
	s.Empty(cleared.SelectedIDs)
}

func (s *ScreenSessionUsecaseTestSuite) TestChangePageKeepsSelection() {
	resp := s.open(12)

	_, err := s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b03")
	s.Require().NoError(err)

	second, err := s.usecase.ChangePage(s.ctx, adminScope, resp.ID, 2)
	s.Require().NoError(err)
	s.Equal(2, second.Page)
	s.Len(second.Records, 2)
	s.Equal([]string{"b03"}, second.SelectedIDs)

	clamped, err := s.usecase.ChangePage(s.ctx, adminScope, resp.ID, 9)
	s.Require().NoError(err)
	s.Equal(2, clamped.Page)

	_, err = s.usecase.ChangePage(s.ctx, adminScope, resp.ID, 0)
	s.ErrorIs(err, ErrInvalidPage)
}

func (s *ScreenSessionUsecaseTestSuite) TestReloadKeepsPreviousRecordsOnFailure() {
	resp := s.open(3)
	_, err := s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b03")
	s.Require().NoError(err)

	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(nil, upstream.ErrUpstream).Once()
	_, err = s.usecase.Reload(s.ctx, adminScope, resp.ID)
	s.ErrorIs(err, upstream.ErrUpstream)

	current, err := s.usecase.GetSession(s.ctx, adminScope, resp.ID)
	s.Require().NoError(err)
	s.Equal(3, current.LoadedCount)

	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(makeBookings(2), nil).Once()
	reloaded, err := s.usecase.Reload(s.ctx, adminScope, resp.ID)
	s.Require().NoError(err)
	s.Equal(2, reloaded.LoadedCount)
	s.Empty(reloaded.SelectedIDs, "b03 no longer exists")
}

func (s *ScreenSessionUsecaseTestSuite) TestStatusChangeDropsRecordLeavingFilter() {
	resp := s.open(3)

	_, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{Search: "pending"})
	s.Require().NoError(err)
	_, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b01")
	s.Require().NoError(err)

	s.recordRepo.On("UpdateStatus", entity.ScreenDiagnosticsBookings, "b01", "Confirmed").Return(nil).Once()
	updated, err := s.usecase.UpdateStatus(s.ctx, adminScope, resp.ID, "b01", "Confirmed")
	s.Require().NoError(err)
	s.Equal(2, updated.FilteredCount)
	s.Empty(updated.SelectedIDs)
	s.False(updated.AllChecked)

	_, err = s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "selected")
	s.ErrorIs(err, ErrEmptySelection)
}

func (s *ScreenSessionUsecaseTestSuite) TestReloadDropsSelectionOutsideFilter() {
	resp := s.open(3)

	_, err := s.usecase.ApplyFilter(s.ctx, adminScope, resp.ID, &dto.FilterRequest{Search: "pending"})
	s.Require().NoError(err)
	all, err := s.usecase.SelectAll(s.ctx, adminScope, resp.ID, &dto.SelectAllRequest{Checked: true})
	s.Require().NoError(err)
	s.Len(all.SelectedIDs, 3)

	fresh := makeBookings(3)
	fresh[1].SetValue("status", "Completed")
	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(fresh, nil).Once()

	reloaded, err := s.usecase.Reload(s.ctx, adminScope, resp.ID)
	s.Require().NoError(err)
	s.Equal(2, reloaded.FilteredCount)
	s.Equal([]string{"b01", "b03"}, reloaded.SelectedIDs)
	s.True(reloaded.AllChecked)
}

func (s *ScreenSessionUsecaseTestSuite) TestExportSpreadsheet() {
	resp := s.open(3)

	_, err := s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "selected")
	s.ErrorIs(err, ErrEmptySelection)

	_, err = s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "everything")
	s.ErrorIs(err, ErrInvalidExportTarget)

	_, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b03")
	s.Require().NoError(err)
	_, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b01")
	s.Require().NoError(err)

	file, err := s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "")
	s.Require().NoError(err)
	s.Equal(2, file.Rows)
	s.Equal("diagnostics-bookings-20240122-120000.xlsx", file.Name)

	filtered, err := s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "filtered")
	s.Require().NoError(err)
	s.Equal(3, filtered.Rows)

	s.Equal([]string{entity.AuditActionExportSpreadsheet, entity.AuditActionExportSpreadsheet}, s.audit.actions())
}

func (s *ScreenSessionUsecaseTestSuite) TestExportArchivePartialFailure() {
	resp := s.open(3)

	archive, err := s.usecase.ExportArchive(s.ctx, adminScope, resp.ID, "filtered", "reports")
	s.Require().NoError(err)
	s.Equal(2, archive.Added)
	s.Len(archive.Failures, 1)
	s.Equal("diagnostics-bookings-reports-all.zip", archive.Name)

	s.Require().Len(s.audit.entries, 1)
	s.Equal(2, s.audit.entries[0].metadata["added"])
}

func (s *ScreenSessionUsecaseTestSuite) TestExportArchiveValidation() {
	resp := s.open(3)

	_, err := s.usecase.ExportArchive(s.ctx, adminScope, resp.ID, "filtered", "invoices")
	s.ErrorIs(err, ErrInvalidExportType)

	_, err = s.usecase.ExportArchive(s.ctx, adminScope, resp.ID, "filtered", "prescriptions")
	s.ErrorIs(err, ErrNothingToDownload)
	s.Empty(s.audit.actions())
}

func (s *ScreenSessionUsecaseTestSuite) TestExportWhileBusy() {
	resp := s.open(3)

	ok, err := s.sessionRepo.AcquireBusy(s.ctx, resp.ID, entity.AuditActionExportArchive, time.Minute)
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.usecase.ExportArchive(s.ctx, adminScope, resp.ID, "filtered", "reports")
	s.ErrorIs(err, ErrOperationInProgress)

	s.Require().NoError(s.sessionRepo.ReleaseBusy(s.ctx, resp.ID))
	_, err = s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "filtered")
	s.NoError(err)

	// the flag is released after each export
	_, err = s.usecase.ExportSpreadsheet(s.ctx, adminScope, resp.ID, "filtered")
	s.NoError(err)
}

func (s *ScreenSessionUsecaseTestSuite) TestUpdateStatusAfterConfirm() {
	resp := s.open(3)

	_, err := s.usecase.UpdateStatus(s.ctx, adminScope, resp.ID, "b01", "Teleported")
	s.ErrorIs(err, ErrUnknownStatus)

	_, err = s.usecase.UpdateStatus(s.ctx, adminScope, resp.ID, "b99", "Confirmed")
	s.ErrorIs(err, ErrRecordNotFound)

	s.recordRepo.On("UpdateStatus", entity.ScreenDiagnosticsBookings, "b01", "Confirmed").Return(upstream.ErrUpstream).Once()
	_, err = s.usecase.UpdateStatus(s.ctx, adminScope, resp.ID, "b01", "Confirmed")
	s.ErrorIs(err, upstream.ErrUpstream)

	current, err := s.usecase.GetSession(s.ctx, adminScope, resp.ID)
	s.Require().NoError(err)
	s.Equal("Pending", current.Records[0].Fields["status"])

	s.recordRepo.On("UpdateStatus", entity.ScreenDiagnosticsBookings, "b01", "Confirmed").Return(nil).Once()
	updated, err := s.usecase.UpdateStatus(s.ctx, adminScope, resp.ID, "b01", "Confirmed")
	s.Require().NoError(err)
	s.Equal("Confirmed", updated.Records[0].Fields["status"])

	s.Require().Len(s.audit.entries, 1)
	s.Equal(entity.AuditActionStatusUpdate, s.audit.entries[0].action)
	s.Equal("Pending", s.audit.entries[0].metadata["old_value"])
}

func (s *ScreenSessionUsecaseTestSuite) TestDeleteRecord() {
	resp := s.open(3)

	_, err := s.usecase.DeleteRecord(s.ctx, adminScope, resp.ID, "b02", false)
	s.ErrorIs(err, ErrConfirmationRequired)

	_, err = s.usecase.ToggleSelection(s.ctx, adminScope, resp.ID, "b02")
	s.Require().NoError(err)

	s.recordRepo.On("Delete", entity.ScreenDiagnosticsBookings, "b02").Return(nil).Once()
	after, err := s.usecase.DeleteRecord(s.ctx, adminScope, resp.ID, "b02", true)
	s.Require().NoError(err)
	s.Equal(2, after.LoadedCount)
	s.Empty(after.SelectedIDs)
	s.Equal([]string{entity.AuditActionRecordDelete}, s.audit.actions())

	_, err = s.usecase.DeleteRecord(s.ctx, adminScope, resp.ID, "b02", true)
	s.ErrorIs(err, ErrRecordNotFound)
}

func (s *ScreenSessionUsecaseTestSuite) TestUploadAttachmentReloads() {
	resp := s.open(2)

	_, err := s.usecase.UploadAttachment(s.ctx, adminScope, resp.ID, "b01", "invoice", "x.pdf", strings.NewReader("x"))
	s.ErrorIs(err, ErrUnsupportedAttachment)

	s.recordRepo.On("UploadAttachment", entity.ScreenDiagnosticsBookings, "b01", entity.AttachmentKindReport, "r.pdf").Return(nil).Once()
	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(makeBookings(3), nil).Once()

	after, err := s.usecase.UploadAttachment(s.ctx, adminScope, resp.ID, "b01", "report", "r.pdf", strings.NewReader("%PDF"))
	s.Require().NoError(err)
	s.Equal(3, after.LoadedCount)
	s.Equal([]string{entity.AuditActionRecordUpload}, s.audit.actions())
}

func (s *ScreenSessionUsecaseTestSuite) TestUploadSucceedsWhenReloadFails() {
	resp := s.open(2)

	s.recordRepo.On("UploadAttachment", entity.ScreenDiagnosticsBookings, "b02", entity.AttachmentKindPrescription, "p.pdf").Return(nil).Once()
	s.recordRepo.On("FindAll", entity.ScreenDiagnosticsBookings, adminScope).Return(nil, errors.New("timeout")).Once()

	after, err := s.usecase.UploadAttachment(s.ctx, adminScope, resp.ID, "b02", "prescription", "p.pdf", strings.NewReader("%PDF"))
	s.Require().NoError(err)
	s.Equal(2, after.LoadedCount)
}

func (s *ScreenSessionUsecaseTestSuite) TestCloseSession() {
	resp := s.open(1)

	s.Require().NoError(s.usecase.CloseSession(s.ctx, adminScope, resp.ID))
	_, err := s.usecase.GetSession(s.ctx, adminScope, resp.ID)
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *ScreenSessionUsecaseTestSuite) TestListScreens() {
	screens := s.usecase.ListScreens(s.ctx)
	s.Len(screens, len(entity.Screens()))
	s.Equal(entity.ScreenDiagnosticsBookings, screens[0].Name)
	s.Equal([]string{"prescription", "report"}, screens[0].AttachmentKinds)
	s.Equal([]string{"companyId"}, screens[3].RequiresScope)
}
