package handler

import (
	"errors"
	"net/http"

	"healthcare-admin-console/internal/delivery/http/middleware"
	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/internal/infrastructure/upstream"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

// badRequestErrors are usecase errors caused by the request itself
var badRequestErrors = []error{
	usecase.ErrRecordNotVisible,
	usecase.ErrEmptySelection,
	usecase.ErrNothingToExport,
	usecase.ErrInvalidDateMode,
	usecase.ErrInvalidCustomRange,
	usecase.ErrInvalidPage,
	usecase.ErrInvalidExportTarget,
	usecase.ErrInvalidExportType,
	usecase.ErrInvalidSelectAllScope,
	usecase.ErrUnknownStatus,
	usecase.ErrUnsupportedAttachment,
	usecase.ErrConfirmationRequired,
	entity.ErrScopeMissing,
}

// writeUsecaseError maps usecase sentinels to HTTP statuses
func writeUsecaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound):
		response.NotFound(w, "Session not found")
	case errors.Is(err, usecase.ErrScreenNotFound):
		response.NotFound(w, "Screen not found")
	case errors.Is(err, usecase.ErrRecordNotFound):
		response.NotFound(w, "Record not found")
	case errors.Is(err, usecase.ErrOperationInProgress):
		response.Conflict(w, "Another export is already running for this session")
	case errors.Is(err, usecase.ErrNothingToDownload):
		response.Error(w, http.StatusUnprocessableEntity, "No files available to download", err.Error())
	case errors.Is(err, upstream.ErrUpstream):
		response.Error(w, http.StatusBadGateway, "Upstream service request failed", nil)
	default:
		for _, target := range badRequestErrors {
			if errors.Is(err, target) {
				response.Error(w, http.StatusBadRequest, err.Error(), nil)
				return
			}
		}
		response.InternalServerError(w, fallback)
	}
}

func scopeFromRequest(w http.ResponseWriter, r *http.Request) (entity.Scope, bool) {
	scope, ok := middleware.GetScopeFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
	}
	return scope, ok
}

func sessionIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid session ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
