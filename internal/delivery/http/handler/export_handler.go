package handler

import (
	"net/http"
	"strconv"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/response"
	"healthcare-admin-console/pkg/validator"
)

const (
	headerExportAdded  = "X-Export-Added"
	headerExportFailed = "X-Export-Failed"
)

type ExportHandler struct {
	sessionUsecase usecase.ScreenSessionUsecase
	validator      *validator.CustomValidator
}

func NewExportHandler(sessionUsecase usecase.ScreenSessionUsecase, validator *validator.CustomValidator) *ExportHandler {
	return &ExportHandler{
		sessionUsecase: sessionUsecase,
		validator:      validator,
	}
}

func (h *ExportHandler) decodeQuery(w http.ResponseWriter, r *http.Request) (*dto.ExportQuery, bool) {
	var query dto.ExportQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid query parameters", nil)
		return nil, false
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, false
	}
	return &query, true
}

func (h *ExportHandler) ExportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}
	query, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	file, err := h.sessionUsecase.ExportSpreadsheet(r.Context(), scope, id, query.Target)
	if err != nil {
		writeUsecaseError(w, err, "Failed to export spreadsheet")
		return
	}

	etag := strconv.Quote(file.Checksum)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	response.File(w, file.Name, file.ContentType, file.Content)
}

func (h *ExportHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := sessionIDFromRequest(w, r)
	if !ok {
		return
	}
	query, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	archive, err := h.sessionUsecase.ExportArchive(r.Context(), scope, id, query.Target, query.Type)
	if err != nil {
		writeUsecaseError(w, err, "Failed to export archive")
		return
	}

	w.Header().Set(headerExportAdded, strconv.Itoa(archive.Added))
	w.Header().Set(headerExportFailed, strconv.Itoa(len(archive.Failures)))
	response.File(w, archive.Name, archive.ContentType, archive.Content)
}
