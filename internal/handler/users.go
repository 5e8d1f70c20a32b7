package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/safastep/console/internal/api"
	"github.com/safastep/console/internal/audit"
	"github.com/safastep/console/internal/csrf"
	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/metrics"
	"github.com/safastep/console/internal/middleware"
	"github.com/safastep/console/internal/service"
)

// UserHandler serves the user moderation screens: paged listing with
// search, per-user detail, and deletion.
type UserHandler struct {
	renderer *Renderer
	api      *api.Client
	audit    *audit.Log
	pageSize int
	logger   *slog.Logger
	isSecure bool
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(renderer *Renderer, apiClient *api.Client, auditLog *audit.Log, pageSize int, logger *slog.Logger, isSecure bool) *UserHandler {
	return &UserHandler{
		renderer: renderer,
		api:      apiClient,
		audit:    auditLog,
		pageSize: pageSize,
		logger:   logger,
		isSecure: isSecure,
	}
}

// collection builds the listing controller bound to the caller's token.
func (h *UserHandler) collection(token string) *service.Collection[domain.User] {
	source := api.UserSource{Client: h.api, Token: token}
	return service.NewCollection[domain.User](source, h.pageSize, func(u domain.User) int64 { return u.ID })
}

type userIndexData struct {
	Title      string
	Users      []domain.User
	Query      string
	Pagination PaginationData
	CSRFToken  string
	Error      string
}

// Index renders the paged user listing, searched when q is present.
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())
	query := r.URL.Query().Get("q")
	pageIndex := parsePage(r) - 1

	coll := h.collection(identity.Token)
	coll.Restore(pageIndex, query)

	var loadErr string
	if err := coll.LoadPage(r.Context(), pageIndex); err != nil && !errors.Is(err, service.ErrStale) {
		loadErr = safeMessage(err)
	}

	state := coll.State()

	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.RenderHTTP(w, "users/index", userIndexData{
		Title:      "Users",
		Users:      state.Items,
		Query:      state.Query,
		Pagination: paginationFor(state, "/users"),
		CSRFToken:  token,
		Error:      loadErr,
	})
}

type userShowData struct {
	Title     string
	Detail    domain.UserDetail
	CSRFToken string
	Page      int
	Query     string
	Error     string
}

// Show renders one user's profile and engagement stats.
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, ok := parseID(r)
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	detail := service.NewDetail(func(ctx context.Context, userID int64) (domain.UserDetail, error) {
		return h.api.GetUser(ctx, identity.Token, userID)
	})
	if err := detail.Open(r.Context(), id); err != nil && !errors.Is(err, service.ErrStale) {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.RenderHTTP(w, "users/show", userShowData{
		Title:     "User detail",
		Detail:    detail.State().Payload,
		CSRFToken: token,
		Page:      parsePage(r),
		Query:     r.URL.Query().Get("q"),
	})
}

// Delete removes a user and returns to the listing, clamped to the last
// page when the deletion emptied the current one.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if !csrf.ValidateRequest(r) {
		http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
		return
	}

	id, ok := parseID(r)
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	query := r.FormValue("q")
	pageIndex := formPage(r) - 1

	coll := h.collection(identity.Token)
	coll.Restore(pageIndex, query)

	if err := coll.DeleteItem(r.Context(), id); err != nil && !errors.Is(err, service.ErrStale) {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ResourceDeletionsTotal.WithLabelValues("user").Inc()
	if err := h.audit.Record(r.Context(), identity.Username, audit.ActionDeleteUser, id, ""); err != nil {
		h.logger.Warn("audit write failed", "action", audit.ActionDeleteUser, "error", err)
	}
	h.logger.Info("user deleted", "id", id, "admin", identity.Username)

	state := coll.State()
	http.Redirect(w, r, listingURL("/users", state.PageIndex, state.Query), http.StatusSeeOther)
}
