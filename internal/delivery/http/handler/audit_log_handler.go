package handler

import (
	"errors"
	"net/http"
	"strconv"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/response"
	"healthcare-admin-console/pkg/validator"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
	validator       *validator.CustomValidator
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase, validator *validator.CustomValidator) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
		validator:       validator,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	auditLogID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid audit log ID", nil)
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAuditLogNotFound):
			response.NotFound(w, "Audit log not found")
		case errors.Is(err, usecase.ErrAuditDisabled):
			response.Error(w, http.StatusServiceUnavailable, "Audit trail is not configured", nil)
		default:
			response.InternalServerError(w, "Failed to get audit log")
		}
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	var query dto.AuditLogQuery
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid query parameters", nil)
		return
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), query)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditDisabled) {
			response.Error(w, http.StatusServiceUnavailable, "Audit trail is not configured", nil)
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs)
}
