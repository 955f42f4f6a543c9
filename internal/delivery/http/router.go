package http

import (
	"net/http"

	"healthcare-admin-console/internal/delivery/http/handler"
	"healthcare-admin-console/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router          *mux.Router
	screenHandler   *handler.ScreenHandler
	sessionHandler  *handler.SessionHandler
	exportHandler   *handler.ExportHandler
	recordHandler   *handler.RecordHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	screenHandler *handler.ScreenHandler,
	sessionHandler *handler.SessionHandler,
	exportHandler *handler.ExportHandler,
	recordHandler *handler.RecordHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		screenHandler:   screenHandler,
		sessionHandler:  sessionHandler,
		exportHandler:   exportHandler,
		recordHandler:   recordHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Screen catalog and sessions (protected)
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/screens", r.screenHandler.ListScreens).Methods(http.MethodGet)
	protected.HandleFunc("/screens/{screen}/sessions", r.screenHandler.OpenSession).Methods(http.MethodPost)

	sessions := protected.PathPrefix("/sessions/{id}").Subrouter()
	sessions.HandleFunc("", r.sessionHandler.GetSession).Methods(http.MethodGet)
	sessions.HandleFunc("", r.sessionHandler.CloseSession).Methods(http.MethodDelete)
	sessions.HandleFunc("/reload", r.sessionHandler.Reload).Methods(http.MethodPost)
	sessions.HandleFunc("/filter", r.sessionHandler.ApplyFilter).Methods(http.MethodPut)
	sessions.HandleFunc("/page", r.sessionHandler.ChangePage).Methods(http.MethodPut)
	sessions.HandleFunc("/selection/toggle", r.sessionHandler.ToggleSelection).Methods(http.MethodPost)
	sessions.HandleFunc("/selection/all", r.sessionHandler.SelectAll).Methods(http.MethodPost)
	sessions.HandleFunc("/selection", r.sessionHandler.ClearSelection).Methods(http.MethodDelete)

	// Bulk exports
	sessions.HandleFunc("/export/spreadsheet", r.exportHandler.ExportSpreadsheet).Methods(http.MethodGet)
	sessions.HandleFunc("/export/archive", r.exportHandler.ExportArchive).Methods(http.MethodGet)

	// Record mutations
	sessions.HandleFunc("/records/{recordId}/status", r.recordHandler.UpdateStatus).Methods(http.MethodPut)
	sessions.HandleFunc("/records/{recordId}", r.recordHandler.DeleteRecord).Methods(http.MethodDelete)
	sessions.HandleFunc("/records/{recordId}/attachments/{kind}", r.recordHandler.UploadAttachment).Methods(http.MethodPost)

	// Audit trail (admin only)
	audit := api.PathPrefix("/audit-logs").Subrouter()
	audit.Use(r.authMiddleware.Authenticate)
	audit.Use(middleware.RequireAdmin)
	audit.HandleFunc("", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	audit.HandleFunc("/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
