package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"healthcare-admin-console/internal/converter"
	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/domain/repository"
	"healthcare-admin-console/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrScreenNotFound        = errors.New("screen not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrRecordNotFound        = errors.New("record not found in session")
	ErrRecordNotVisible      = errors.New("record is not in the current view")
	ErrEmptySelection        = errors.New("no records selected")
	ErrNothingToExport       = errors.New("no records match the current filter")
	ErrOperationInProgress   = errors.New("another bulk operation is running for this session")
	ErrInvalidDateMode       = errors.New("invalid date mode")
	ErrInvalidCustomRange    = errors.New("invalid custom date range")
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidExportTarget   = errors.New("export target must be selected or filtered")
	ErrInvalidExportType     = errors.New("export type must be reports, prescriptions or both")
	ErrInvalidSelectAllScope = errors.New("select-all scope must be page or filtered")
	ErrUnknownStatus         = errors.New("status is not valid for this screen")
	ErrUnsupportedAttachment = errors.New("attachment kind is not supported by this screen")
	ErrConfirmationRequired  = errors.New("deletion must be confirmed")

	ErrNothingToDownload = service.ErrNothingToDownload
)

// busyTTL bounds how long a crashed export can keep a session locked
const busyTTL = 10 * time.Minute

type ScreenSessionUsecase interface {
	ListScreens(ctx context.Context) []dto.ScreenResponse
	OpenSession(ctx context.Context, scope entity.Scope, screenName string, req *dto.OpenSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, scope entity.Scope, id uuid.UUID) (*dto.SessionResponse, error)
	CloseSession(ctx context.Context, scope entity.Scope, id uuid.UUID) error
	Reload(ctx context.Context, scope entity.Scope, id uuid.UUID) (*dto.SessionResponse, error)
	ApplyFilter(ctx context.Context, scope entity.Scope, id uuid.UUID, req *dto.FilterRequest) (*dto.SessionResponse, error)
	ChangePage(ctx context.Context, scope entity.Scope, id uuid.UUID, page int) (*dto.SessionResponse, error)
	ToggleSelection(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID string) (*dto.SessionResponse, error)
	SelectAll(ctx context.Context, scope entity.Scope, id uuid.UUID, req *dto.SelectAllRequest) (*dto.SessionResponse, error)
	ClearSelection(ctx context.Context, scope entity.Scope, id uuid.UUID) (*dto.SessionResponse, error)
	ExportSpreadsheet(ctx context.Context, scope entity.Scope, id uuid.UUID, target string) (*service.SpreadsheetFile, error)
	ExportArchive(ctx context.Context, scope entity.Scope, id uuid.UUID, target, exportType string) (*service.ArchiveFile, error)
	UpdateStatus(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID, status string) (*dto.SessionResponse, error)
	DeleteRecord(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID string, confirmed bool) (*dto.SessionResponse, error)
	UploadAttachment(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID, kind, filename string, content io.Reader) (*dto.SessionResponse, error)
}

type screenSessionUsecase struct {
	log         *logrus.Logger
	sessionRepo repository.SessionRepository
	recordRepo  repository.RecordRepository
	filter      *service.RecordFilter
	spreadsheet *service.SpreadsheetExporter
	archive     *service.ArchiveExporter
	audit       service.AuditService
}

func NewScreenSessionUsecase(
	log *logrus.Logger,
	sessionRepo repository.SessionRepository,
	recordRepo repository.RecordRepository,
	filter *service.RecordFilter,
	spreadsheet *service.SpreadsheetExporter,
	archive *service.ArchiveExporter,
	audit service.AuditService,
) ScreenSessionUsecase {
	return &screenSessionUsecase{
		log:         log,
		sessionRepo: sessionRepo,
		recordRepo:  recordRepo,
		filter:      filter,
		spreadsheet: spreadsheet,
		archive:     archive,
		audit:       audit,
	}
}

// sessionView is the filtered list and current page derived from a session
type sessionView struct {
	filtered   []entity.Record
	page       []entity.Record
	totalPages int
}

func (u *screenSessionUsecase) ListScreens(ctx context.Context) []dto.ScreenResponse {
	return converter.ScreensToResponses(entity.Screens())
}

// OpenSession loads the screen's records for scope and starts a fresh session.
// req may be nil; its ids only apply to admin scopes.
func (u *screenSessionUsecase) OpenSession(ctx context.Context, scope entity.Scope, screenName string, req *dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	screen, ok := entity.FindScreen(screenName)
	if !ok {
		return nil, ErrScreenNotFound
	}
	if req != nil {
		scope = scope.WithTargets(req.DiagnosticID, req.DoctorID, req.CompanyID)
	}
	if _, err := screen.ListPath(scope); err != nil {
		return nil, err
	}

	records, err := u.recordRepo.FindAll(ctx, screen, scope)
	if err != nil {
		u.log.Warnf("Failed to load records for screen %s: %+v", screen.Name, err)
		return nil, err
	}

	session := entity.NewScreenSession(screen, scope)
	session.ReplaceRecords(records, time.Now().UTC())
	if err := u.sessionRepo.Create(ctx, session); err != nil {
		u.log.Warnf("Failed to create session: %+v", err)
		return nil, err
	}

	u.log.Infof("Session %s opened on %s with %d records", session.ID, screen.Name, len(records))
	return u.respond(session, screen), nil
}

func (u *screenSessionUsecase) GetSession(ctx context.Context, scope entity.Scope, id uuid.UUID) (*dto.SessionResponse, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	return u.respond(session, screen), nil
}

func (u *screenSessionUsecase) CloseSession(ctx context.Context, scope entity.Scope, id uuid.UUID) error {
	if _, _, err := u.load(ctx, scope, id); err != nil {
		return err
	}
	if err := u.sessionRepo.Delete(ctx, id); err != nil {
		u.log.Warnf("Failed to delete session %s: %+v", id, err)
		return err
	}
	return nil
}

// Reload replaces the record list. On failure the previous list stays in place.
func (u *screenSessionUsecase) Reload(ctx context.Context, scope entity.Scope, id uuid.UUID) (*dto.SessionResponse, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	records, err := u.recordRepo.FindAll(ctx, screen, session.Scope)
	if err != nil {
		u.log.Warnf("Failed to reload records for session %s: %+v", id, err)
		return nil, err
	}
	session.ReplaceRecords(records, time.Now().UTC())

	return u.save(ctx, session, screen)
}

// ApplyFilter replaces the filter state. A changed filter clears the selection and returns to page 1.
func (u *screenSessionUsecase) ApplyFilter(ctx context.Context, scope entity.Scope, id uuid.UUID, req *dto.FilterRequest) (*dto.SessionResponse, error) {
	state, err := u.parseFilter(req)
	if err != nil {
		return nil, err
	}

	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if !state.Equal(session.Filter) {
		session.Filter = state
		session.ResetSelection()
		session.Page = 1
	}

	return u.save(ctx, session, screen)
}

func (u *screenSessionUsecase) parseFilter(req *dto.FilterRequest) (entity.FilterState, error) {
	mode, ok := entity.ParseDateMode(req.DateMode)
	if !ok {
		return entity.FilterState{}, fmt.Errorf("%w: %q", ErrInvalidDateMode, req.DateMode)
	}

	state := entity.FilterState{SearchTerm: req.Search, DateMode: mode}
	if mode != entity.DateModeCustom {
		return state, nil
	}

	start, err := u.parseDay(req.Start)
	if err != nil {
		return entity.FilterState{}, err
	}
	end, err := u.parseDay(req.End)
	if err != nil {
		return entity.FilterState{}, err
	}
	if start != nil && end != nil && start.After(*end) {
		return entity.FilterState{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidCustomRange, req.Start, req.End)
	}
	state.CustomStart = start
	state.CustomEnd = end
	return state, nil
}

func (u *screenSessionUsecase) parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, u.filter.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidCustomRange, s)
	}
	return &t, nil
}

// ChangePage moves to page, clamped to the last page. The selection is kept.
func (u *screenSessionUsecase) ChangePage(ctx context.Context, scope entity.Scope, id uuid.UUID, page int) (*dto.SessionResponse, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}

	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	session.Page = page
	return u.save(ctx, session, screen)
}

// ToggleSelection flips one record that is part of the current filtered view
func (u *screenSessionUsecase) ToggleSelection(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID string) (*dto.SessionResponse, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	view := u.view(session, screen)
	if !containsRecord(view.filtered, recordID) {
		return nil, ErrRecordNotVisible
	}
	session.Selection.Toggle(recordID)

	return u.save(ctx, session, screen)
}

// SelectAll checks or unchecks every id of the current page or the whole filtered view
func (u *screenSessionUsecase) SelectAll(ctx context.Context, scope entity.Scope, id uuid.UUID, req *dto.SelectAllRequest) (*dto.SessionResponse, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	selectScope, ok := entity.ParseSelectAllScope(req.Scope, screen.SelectAllScope)
	if !ok {
		return nil, ErrInvalidSelectAllScope
	}

	ids := scopeIDs(selectScope, u.view(session, screen))
	for _, recordID := range ids {
		if req.Checked {
			session.Selection.Add(recordID)
		} else {
			session.Selection.Remove(recordID)
		}
	}

	session.AllChecked = req.Checked && len(ids) > 0

	return u.persist(ctx, session, screen)
}

func (u *screenSessionUsecase) ClearSelection(ctx context.Context, scope entity.Scope, id uuid.UUID) (*dto.SessionResponse, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	session.ResetSelection()
	return u.save(ctx, session, screen)
}

// ExportSpreadsheet renders the target records of a session into a workbook
func (u *screenSessionUsecase) ExportSpreadsheet(ctx context.Context, scope entity.Scope, id uuid.UUID, target string) (*service.SpreadsheetFile, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	records, err := u.exportRecords(session, screen, target)
	if err != nil {
		return nil, err
	}

	release, err := u.acquire(ctx, id, entity.AuditActionExportSpreadsheet)
	if err != nil {
		return nil, err
	}
	defer release()

	file, err := u.spreadsheet.Export(screen, records)
	if err != nil {
		u.log.Warnf("Failed to export spreadsheet for session %s: %+v", id, err)
		return nil, err
	}

	u.audit.Record(ctx, scope, entity.AuditActionExportSpreadsheet, entity.JSON{
		"session_id": id.String(),
		"screen":     screen.Name,
		"target":     exportTarget(target),
		"file":       file.Name,
		"rows":       file.Rows,
	})
	u.log.Infof("Spreadsheet %s exported with %d rows", file.Name, file.Rows)
	return file, nil
}

// ExportArchive zips the attachments of the target records. Per-file failures are
// annotated inside the archive; only zero successes is an error.
func (u *screenSessionUsecase) ExportArchive(ctx context.Context, scope entity.Scope, id uuid.UUID, target, exportType string) (*service.ArchiveFile, error) {
	if exportType == "" {
		exportType = string(entity.ExportTypeBoth)
	}
	et := entity.ExportType(exportType)
	if et.Kinds() == nil {
		return nil, ErrInvalidExportType
	}

	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	records, err := u.exportRecords(session, screen, target)
	if err != nil {
		return nil, err
	}

	release, err := u.acquire(ctx, id, entity.AuditActionExportArchive)
	if err != nil {
		return nil, err
	}
	defer release()

	archive, err := u.archive.Export(ctx, screen, records, et, u.filter.RangeLabel(session.Filter))
	if err != nil {
		u.log.Warnf("Failed to export archive for session %s: %+v", id, err)
		return nil, err
	}

	u.audit.Record(ctx, scope, entity.AuditActionExportArchive, entity.JSON{
		"session_id": id.String(),
		"screen":     screen.Name,
		"target":     exportTarget(target),
		"type":       string(et),
		"file":       archive.Name,
		"added":      archive.Added,
		"failures":   len(archive.Failures),
	})
	return archive, nil
}

func exportTarget(target string) string {
	if target == "" {
		return dto.ExportTargetSelected
	}
	return target
}

// exportRecords resolves the export target to records in filtered order
func (u *screenSessionUsecase) exportRecords(session *entity.ScreenSession, screen *entity.Screen, target string) ([]entity.Record, error) {
	view := u.view(session, screen)

	switch exportTarget(target) {
	case dto.ExportTargetSelected:
		var selected []entity.Record
		for i := range view.filtered {
			if session.Selection.Contains(view.filtered[i].ID) {
				selected = append(selected, view.filtered[i])
			}
		}
		if len(selected) == 0 {
			return nil, ErrEmptySelection
		}
		return selected, nil
	case dto.ExportTargetFiltered:
		if len(view.filtered) == 0 {
			return nil, ErrNothingToExport
		}
		return view.filtered, nil
	}
	return nil, ErrInvalidExportTarget
}

func (u *screenSessionUsecase) acquire(ctx context.Context, id uuid.UUID, operation string) (func(), error) {
	ok, err := u.sessionRepo.AcquireBusy(ctx, id, operation, busyTTL)
	if err != nil {
		u.log.Warnf("Failed to mark session %s busy: %+v", id, err)
		return nil, err
	}
	if !ok {
		return nil, ErrOperationInProgress
	}

	return func() {
		if err := u.sessionRepo.ReleaseBusy(context.WithoutCancel(ctx), id); err != nil {
			u.log.Warnf("Failed to release session %s: %+v", id, err)
		}
	}, nil
}

// UpdateStatus changes a record's status upstream and mirrors it locally only after success
func (u *screenSessionUsecase) UpdateStatus(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID, status string) (*dto.SessionResponse, error) {
	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if screen.StatusField == "" || !screen.AllowsStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	idx := session.FindRecord(recordID)
	if idx < 0 {
		return nil, ErrRecordNotFound
	}
	previous := session.Records[idx].Text(screen.StatusField)

	if err := u.recordRepo.UpdateStatus(ctx, screen, recordID, status); err != nil {
		u.log.Warnf("Failed to update status of record %s: %+v", recordID, err)
		return nil, err
	}
	session.Records[idx].SetValue(screen.StatusField, status)

	resp, err := u.save(ctx, session, screen)
	if err != nil {
		return nil, err
	}

	u.audit.Record(ctx, scope, entity.AuditActionStatusUpdate, entity.JSON{
		"session_id": id.String(),
		"screen":     screen.Name,
		"record_id":  recordID,
		"old_value":  previous,
		"new_value":  status,
	})
	return resp, nil
}

// DeleteRecord removes a record upstream, then from the list and the selection
func (u *screenSessionUsecase) DeleteRecord(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID string, confirmed bool) (*dto.SessionResponse, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if session.FindRecord(recordID) < 0 {
		return nil, ErrRecordNotFound
	}

	if err := u.recordRepo.Delete(ctx, screen, recordID); err != nil {
		u.log.Warnf("Failed to delete record %s: %+v", recordID, err)
		return nil, err
	}
	session.RemoveRecord(recordID)

	resp, err := u.save(ctx, session, screen)
	if err != nil {
		return nil, err
	}

	u.audit.Record(ctx, scope, entity.AuditActionRecordDelete, entity.JSON{
		"session_id": id.String(),
		"screen":     screen.Name,
		"record_id":  recordID,
	})
	return resp, nil
}

// UploadAttachment sends a file for a record and then reloads the list on a best-effort basis
func (u *screenSessionUsecase) UploadAttachment(ctx context.Context, scope entity.Scope, id uuid.UUID, recordID, kind, filename string, content io.Reader) (*dto.SessionResponse, error) {
	attachmentKind, ok := entity.ParseAttachmentKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAttachment, kind)
	}

	session, screen, err := u.load(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !screen.SupportsAttachment(attachmentKind) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAttachment, kind)
	}
	if session.FindRecord(recordID) < 0 {
		return nil, ErrRecordNotFound
	}

	if err := u.recordRepo.UploadAttachment(ctx, screen, recordID, attachmentKind, filename, content); err != nil {
		u.log.Warnf("Failed to upload %s for record %s: %+v", kind, recordID, err)
		return nil, err
	}

	u.audit.Record(ctx, scope, entity.AuditActionRecordUpload, entity.JSON{
		"session_id": id.String(),
		"screen":     screen.Name,
		"record_id":  recordID,
		"kind":       kind,
		"file":       filename,
	})

	records, err := u.recordRepo.FindAll(ctx, screen, session.Scope)
	if err != nil {
		u.log.Warnf("Failed to reload records after upload: %+v", err)
	} else {
		session.ReplaceRecords(records, time.Now().UTC())
	}

	return u.save(ctx, session, screen)
}

func (u *screenSessionUsecase) load(ctx context.Context, scope entity.Scope, id uuid.UUID) (*entity.ScreenSession, *entity.Screen, error) {
	session, err := u.sessionRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find session %s: %+v", id, err)
		return nil, nil, err
	}
	if session == nil || session.Scope.ActorID != scope.ActorID {
		return nil, nil, ErrSessionNotFound
	}

	screen, ok := session.Screen()
	if !ok {
		return nil, nil, ErrScreenNotFound
	}
	if session.Selection == nil {
		session.Selection = entity.NewSelectionSet()
	}
	return session, screen, nil
}

// view filters the records and clamps the page into range
func (u *screenSessionUsecase) view(session *entity.ScreenSession, screen *entity.Screen) sessionView {
	filtered := u.filter.Filter(session.Records, screen, session.Filter)
	totalPages := service.TotalPages(len(filtered), session.PageSize)
	if session.Page > totalPages {
		session.Page = totalPages
	}
	if session.Page < 1 {
		session.Page = 1
	}

	return sessionView{
		filtered:   filtered,
		page:       service.Paginate(filtered, session.Page, session.PageSize),
		totalPages: totalPages,
	}
}

// save drops selected ids that left the filtered view, recomputes the header checkbox
// for the screen's default scope and stores the session
func (u *screenSessionUsecase) save(ctx context.Context, session *entity.ScreenSession, screen *entity.Screen) (*dto.SessionResponse, error) {
	view := u.view(session, screen)
	visible := make(map[string]struct{}, len(view.filtered))
	for i := range view.filtered {
		visible[view.filtered[i].ID] = struct{}{}
	}
	session.Selection.Retain(visible)

	session.AllChecked = session.Selection.ContainsAll(scopeIDs(screen.SelectAllScope, view))
	return u.persist(ctx, session, screen)
}

// persist stores the session without touching AllChecked
func (u *screenSessionUsecase) persist(ctx context.Context, session *entity.ScreenSession, screen *entity.Screen) (*dto.SessionResponse, error) {
	view := u.view(session, screen)
	if session.Selection.Len() == 0 {
		session.AllChecked = false
	}

	if err := u.sessionRepo.Save(ctx, session); err != nil {
		u.log.Warnf("Failed to save session %s: %+v", session.ID, err)
		return nil, err
	}
	return converter.SessionToResponse(session, screen, view.page, len(view.filtered), view.totalPages), nil
}

func (u *screenSessionUsecase) respond(session *entity.ScreenSession, screen *entity.Screen) *dto.SessionResponse {
	view := u.view(session, screen)
	return converter.SessionToResponse(session, screen, view.page, len(view.filtered), view.totalPages)
}

func scopeIDs(scope entity.SelectAllScope, view sessionView) []string {
	if scope == entity.SelectAllScopePage {
		return service.RecordIDs(view.page)
	}
	return service.RecordIDs(view.filtered)
}

func containsRecord(records []entity.Record, id string) bool {
	for i := range records {
		if records[i].ID == id {
			return true
		}
	}
	return false
}
