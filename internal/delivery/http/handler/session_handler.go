package handler

import (
	"encoding/json"
	"net/http"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/response"
	"healthcare-admin-console/pkg/validator"
)

type SessionHandler struct {
	sessionUsecase usecase.ScreenSessionUsecase
	validator      *validator.CustomValidator
}

func NewSessionHandler(sessionUsecase usecase.ScreenSessionUsecase, validator *validator.CustomValidator) *SessionHandler {
	return &SessionHandler{
		sessionUsecase: sessionUsecase,
		validator:      validator,
	}
}

func pageMeta(session *dto.SessionResponse) *response.Meta {
	return &response.Meta{
		Page:       session.Page,
		Limit:      session.PageSize,
		Total:      int64(session.FilteredCount),
		TotalPages: session.TotalPages,
	}
}

// decodeBody decodes and validates a JSON body; it writes the error response itself
func (h *SessionHandler) decodeBody(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return false
	}
	return true
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	session, err := h.sessionUsecase.GetSession(r.Context(), scope, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get session")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Session retrieved successfully", session, pageMeta(session))
}

func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.sessionUsecase.CloseSession(r.Context(), scope, id); err != nil {
		writeUsecaseError(w, err, "Failed to close session")
		return
	}

	response.Success(w, http.StatusOK, "Session closed successfully", nil)
}

func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	session, err := h.sessionUsecase.Reload(r.Context(), scope, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to reload records")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Records reloaded successfully", session, pageMeta(session))
}

func (h *SessionHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.FilterRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	session, err := h.sessionUsecase.ApplyFilter(r.Context(), scope, id, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to apply filter")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Filter applied successfully", session, pageMeta(session))
}

func (h *SessionHandler) ChangePage(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.ChangePageRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	session, err := h.sessionUsecase.ChangePage(r.Context(), scope, id, req.Page)
	if err != nil {
		writeUsecaseError(w, err, "Failed to change page")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Page changed successfully", session, pageMeta(session))
}

func (h *SessionHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.ToggleSelectionRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	session, err := h.sessionUsecase.ToggleSelection(r.Context(), scope, id, req.RecordID)
	if err != nil {
		writeUsecaseError(w, err, "Failed to toggle selection")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Selection updated successfully", session, pageMeta(session))
}

func (h *SessionHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.SelectAllRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	session, err := h.sessionUsecase.SelectAll(r.Context(), scope, id, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update selection")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Selection updated successfully", session, pageMeta(session))
}

func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	session, err := h.sessionUsecase.ClearSelection(r.Context(), scope, id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to clear selection")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Selection cleared successfully", session, pageMeta(session))
}
