package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"healthcare-admin-console/internal/delivery/dto"
	"healthcare-admin-console/internal/usecase"
	"healthcare-admin-console/pkg/response"
	"healthcare-admin-console/pkg/validator"

	"github.com/gorilla/mux"
)

type ScreenHandler struct {
	sessionUsecase usecase.ScreenSessionUsecase
	validator      *validator.CustomValidator
}

func NewScreenHandler(sessionUsecase usecase.ScreenSessionUsecase, validator *validator.CustomValidator) *ScreenHandler {
	return &ScreenHandler{
		sessionUsecase: sessionUsecase,
		validator:      validator,
	}
}

func (h *ScreenHandler) ListScreens(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Screens retrieved successfully", h.sessionUsecase.ListScreens(r.Context()))
}

func (h *ScreenHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(w, r)
	if !ok {
		return
	}

	// The body is optional
	var req dto.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.sessionUsecase.OpenSession(r.Context(), scope, mux.Vars(r)["screen"], &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to open session")
		return
	}

	response.SuccessWithMeta(w, http.StatusCreated, "Session opened successfully", session, pageMeta(session))
}
