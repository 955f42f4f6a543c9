package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/response"
	"healthcare-admin-console/pkg/validator"

	"github.com/gorilla/mux"
)

// maxUploadSize bounds multipart attachment uploads
const maxUploadSize = 20 << 20

type RecordHandler struct {
	sessionUsecase usecase.ScreenSessionUsecase
	validator      *validator.CustomValidator
}

func NewRecordHandler(sessionUsecase usecase.ScreenSessionUsecase, validator *validator.CustomValidator) *RecordHandler {
	return &RecordHandler{
		sessionUsecase: sessionUsecase,
		validator:      validator,
	}
}

func (h *RecordHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.sessionUsecase.UpdateStatus(r.Context(), scope, id, mux.Vars(r)["recordId"], req.Status)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update status")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Status updated successfully", session, pageMeta(session))
}

func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	session, err := h.sessionUsecase.DeleteRecord(r.Context(), scope, id, mux.Vars(r)["recordId"], confirmed)
	if err != nil {
		writeUsecaseError(w, err, "Failed to delete record")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Record deleted successfully", session, pageMeta(session))
}

func (h *RecordHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		response.ValidationError(w, map[string]string{"file": "file is required"})
		return
	}
	defer file.Close()

	vars := mux.Vars(r)
	session, err := h.sessionUsecase.UploadAttachment(r.Context(), scope, id, vars["recordId"], vars["kind"], header.Filename, file)
	if err != nil {
		writeUsecaseError(w, err, "Failed to upload attachment")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Attachment uploaded successfully", session, pageMeta(session))
}
