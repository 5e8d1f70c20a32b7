package handler

import (
	"log/slog"
	"net/http"

	"github.com/safastep/console/internal/audit"
	"github.com/safastep/console/internal/csrf"
)

// ActivityHandler renders the local audit trail of admin actions.
type ActivityHandler struct {
	renderer *Renderer
	audit    *audit.Log
	pageSize int
	logger   *slog.Logger
	isSecure bool
}

// NewActivityHandler creates an ActivityHandler.
func NewActivityHandler(renderer *Renderer, auditLog *audit.Log, pageSize int, logger *slog.Logger, isSecure bool) *ActivityHandler {
	return &ActivityHandler{
		renderer: renderer,
		audit:    auditLog,
		pageSize: pageSize,
		logger:   logger,
		isSecure: isSecure,
	}
}

type activityIndexData struct {
	Title      string
	Entries    []audit.Entry
	Pagination PaginationData
	CSRFToken  string
	Error      string
}

// Index renders one page of audit entries, newest first.
func (h *ActivityHandler) Index(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)

	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := activityIndexData{Title: "Activity", CSRFToken: token}

	entries, readErr := h.audit.Recent(r.Context(), (page-1)*h.pageSize, h.pageSize)
	if readErr != nil {
		h.logger.Error("audit read failed", "error", readErr)
		data.Error = "Could not load the activity log."
	} else {
		data.Entries = entries.Items
		data.Pagination = PaginationData{
			CurrentPage: entries.CurrentPage(),
			TotalPages:  entries.TotalPages(),
			Total:       entries.Total,
			BasePath:    "/activity",
		}
	}

	h.renderer.RenderHTTP(w, "activity/index", data)
}
