package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/safastep/console/internal/api"
	"github.com/safastep/console/internal/audit"
	"github.com/safastep/console/internal/csrf"
	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/metrics"
	"github.com/safastep/console/internal/middleware"
	"github.com/safastep/console/internal/service"
)

// EcoLocationHandler serves the eco-location screens: paged listing
// with search, the create/edit form with its map coordinate handshake,
// and deletion.
type EcoLocationHandler struct {
	renderer *Renderer
	api      *api.Client
	audit    *audit.Log
	pageSize int
	logger   *slog.Logger
	isSecure bool
}

// NewEcoLocationHandler creates an EcoLocationHandler.
func NewEcoLocationHandler(renderer *Renderer, apiClient *api.Client, auditLog *audit.Log, pageSize int, logger *slog.Logger, isSecure bool) *EcoLocationHandler {
	return &EcoLocationHandler{
		renderer: renderer,
		api:      apiClient,
		audit:    auditLog,
		pageSize: pageSize,
		logger:   logger,
		isSecure: isSecure,
	}
}

// source doubles as both the listing source and the form writer.
func (h *EcoLocationHandler) source(token string) api.EcoLocationSource {
	return api.EcoLocationSource{Client: h.api, Token: token}
}

func (h *EcoLocationHandler) collection(token string) *service.Collection[domain.EcoLocation] {
	return service.NewCollection[domain.EcoLocation](h.source(token), h.pageSize, func(l domain.EcoLocation) int64 { return l.ID })
}

type ecoLocationIndexData struct {
	Title      string
	Locations  []domain.EcoLocation
	Query      string
	Pagination PaginationData
	CSRFToken  string
	Error      string

	Form        service.GeoFormState
	FormOpen    bool
	FormEditing bool
	FieldErrors map[string]string
	FormError   string
}

// Index renders the eco-location listing. The create/edit form is
// rendered inline when requested via form=create or form=edit&id=N.
func (h *EcoLocationHandler) Index(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())
	query := r.URL.Query().Get("q")
	pageIndex := parsePage(r) - 1

	coll := h.collection(identity.Token)
	coll.Restore(pageIndex, query)

	var loadErr string
	if err := coll.LoadPage(r.Context(), pageIndex); err != nil && !errors.Is(err, service.ErrStale) {
		loadErr = safeMessage(err)
	}

	form := service.NewGeoForm(h.source(identity.Token))
	switch r.URL.Query().Get("form") {
	case "create":
		form.OpenCreate()
	case "edit":
		if id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64); err == nil {
			if loc, ok := coll.ItemByKey(id); ok {
				form.OpenEdit(loc)
			}
		}
	}

	h.renderIndex(w, r, coll.State(), form.State(), loadErr, nil, "", http.StatusOK)
}

// Coordinate applies a map click to an open form's latitude and
// longitude fields and re-renders the page. The posted form values are
// preserved; only the coordinates change. A click without an open form
// redirects back to the plain listing.
func (h *EcoLocationHandler) Coordinate(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if !csrf.ValidateRequest(r) {
		http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
		return
	}

	query := r.FormValue("q")
	pageIndex := formPage(r) - 1

	form := h.restoreForm(identity.Token, r)

	lat, latErr := strconv.ParseFloat(r.FormValue("map_lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.FormValue("map_lng"), 64)
	if latErr == nil && lngErr == nil {
		form.ReceiveMapCoordinate(lat, lng)
	}

	state := form.State()
	if state.Mode == service.GeoFormClosed {
		http.Redirect(w, r, listingURL("/eco-locations", pageIndex, query), http.StatusSeeOther)
		return
	}

	coll := h.collection(identity.Token)
	coll.Restore(pageIndex, query)

	var loadErr string
	if err := coll.LoadPage(r.Context(), pageIndex); err != nil && !errors.Is(err, service.ErrStale) {
		loadErr = safeMessage(err)
	}

	h.renderIndex(w, r, coll.State(), state, loadErr, nil, "", http.StatusOK)
}

// Save submits the create/edit form. Validation failures re-render the
// form with the entered values and field messages; API failures keep
// the form open with a banner. Success closes the form and returns to
// the listing.
func (h *EcoLocationHandler) Save(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if !csrf.ValidateRequest(r) {
		http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
		return
	}

	query := r.FormValue("q")
	pageIndex := formPage(r) - 1

	form := h.restoreForm(identity.Token, r)
	state := form.State()

	err := form.Submit(r.Context())
	if err == nil {
		action := audit.ActionCreateLocation
		kind := "create"
		if state.Mode == service.GeoFormEdit {
			action = audit.ActionUpdateLocation
			kind = "update"
		}
		metrics.EcoLocationWritesTotal.WithLabelValues(kind).Inc()
		if auditErr := h.audit.Record(r.Context(), identity.Username, action, state.TargetID, state.Fields.Name); auditErr != nil {
			h.logger.Warn("audit write failed", "action", action, "error", auditErr)
		}
		h.logger.Info("eco-location saved", "kind", kind, "name", state.Fields.Name, "admin", identity.Username)

		http.Redirect(w, r, listingURL("/eco-locations", pageIndex, query), http.StatusSeeOther)
		return
	}

	coll := h.collection(identity.Token)
	coll.Restore(pageIndex, query)

	var loadErr string
	if lerr := coll.LoadPage(r.Context(), pageIndex); lerr != nil && !errors.Is(lerr, service.ErrStale) {
		loadErr = safeMessage(lerr)
	}

	fieldErrors := FieldErrors(err)
	formError := ""
	status := http.StatusBadRequest
	if fieldErrors == nil {
		formError = safeMessage(err)
		status = ErrorCodeToHTTPStatus(domain.ErrorCode(err))
	}

	h.renderIndex(w, r, coll.State(), form.State(), loadErr, fieldErrors, formError, status)
}

// Delete removes an eco-location and returns to the listing.
func (h *EcoLocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	name := r.FormValue("name")

	if err := coll.DeleteItem(r.Context(), id); err != nil && !errors.Is(err, service.ErrStale) {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.ResourceDeletionsTotal.WithLabelValues("eco_location").Inc()
	if err := h.audit.Record(r.Context(), identity.Username, audit.ActionDeleteLocation, id, name); err != nil {
		h.logger.Warn("audit write failed", "action", audit.ActionDeleteLocation, "error", err)
	}
	h.logger.Info("eco-location deleted", "id", id, "admin", identity.Username)

	state := coll.State()
	http.Redirect(w, r, listingURL("/eco-locations", state.PageIndex, state.Query), http.StatusSeeOther)
}

// restoreForm rebuilds the form controller from posted values.
func (h *EcoLocationHandler) restoreForm(token string, r *http.Request) *service.GeoForm {
	form := service.NewGeoForm(h.source(token))

	mode := service.GeoFormClosed
	switch r.FormValue("mode") {
	case "create":
		mode = service.GeoFormCreate
	case "edit":
		mode = service.GeoFormEdit
	}

	targetID, _ := strconv.ParseInt(r.FormValue("target_id"), 10, 64)

	form.Restore(mode, targetID, service.GeoFormFields{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Latitude:    r.FormValue("latitude"),
		Longitude:   r.FormValue("longitude"),
		Category:    r.FormValue("category"),
		Address:     r.FormValue("address"),
	})

	return form
}

func (h *EcoLocationHandler) renderIndex(w http.ResponseWriter, r *http.Request, state service.CollectionState[domain.EcoLocation], formState service.GeoFormState, loadErr string, fieldErrors map[string]string, formError string, status int) {
	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}

	h.renderer.RenderHTTP(w, "ecolocations/index", ecoLocationIndexData{
		Title:       "Eco-Locations",
		Locations:   state.Items,
		Query:       state.Query,
		Pagination:  paginationFor(state, "/eco-locations"),
		CSRFToken:   token,
		Error:       loadErr,
		Form:        formState,
		FormOpen:    formState.Mode != service.GeoFormClosed,
		FormEditing: formState.Mode == service.GeoFormEdit,
		FieldErrors: fieldErrors,
		FormError:   formError,
	})
}
