package handler

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/safastep/console/internal/api"
	"github.com/safastep/console/internal/audit"
	"github.com/safastep/console/internal/csrf"
	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/metrics"
	"github.com/safastep/console/internal/middleware"
	"github.com/safastep/console/internal/service"
)

// PostHandler serves the post moderation screens. Post content is
// user-generated and may contain markup, so it passes through a
// bluemonday policy before rendering.
type PostHandler struct {
	renderer *Renderer
	api      *api.Client
	audit    *audit.Log
	policy   *bluemonday.Policy
	pageSize int
	logger   *slog.Logger
	isSecure bool
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(renderer *Renderer, apiClient *api.Client, auditLog *audit.Log, pageSize int, logger *slog.Logger, isSecure bool) *PostHandler {
	return &PostHandler{
		renderer: renderer,
		api:      apiClient,
		audit:    auditLog,
		policy:   bluemonday.UGCPolicy(),
		pageSize: pageSize,
		logger:   logger,
		isSecure: isSecure,
	}
}

func (h *PostHandler) collection(token string) *service.Collection[domain.Post] {
	source := api.PostSource{Client: h.api, Token: token}
	return service.NewCollection[domain.Post](source, h.pageSize, func(p domain.Post) int64 { return p.ID })
}

// postView pairs a post with its sanitized content for templates.
type postView struct {
	domain.Post
	SafeContent template.HTML
}

func (h *PostHandler) views(posts []domain.Post) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			Post:        p,
			SafeContent: template.HTML(h.policy.Sanitize(p.Content)),
		})
	}
	return views
}

type postIndexData struct {
	Title      string
	Posts      []postView
	Query      string
	Pagination PaginationData
	CSRFToken  string
	Error      string
}

// Index renders the paged post listing, searched when q is present.
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
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

	h.renderer.RenderHTTP(w, "posts/index", postIndexData{
		Title:      "Posts",
		Posts:      h.views(state.Items),
		Query:      state.Query,
		Pagination: paginationFor(state, "/posts"),
		CSRFToken:  token,
		Error:      loadErr,
	})
}

type postShowData struct {
	Title     string
	Post      postView
	Stats     domain.PostStats
	CSRFToken string
	Page      int
	Query     string
	Error     string
}

// Show renders one post with its engagement stats.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, ok := parseID(r)
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	detail := service.NewDetail(func(ctx context.Context, postID int64) (domain.PostDetail, error) {
		return h.api.GetPost(ctx, identity.Token, postID)
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

	payload := detail.State().Payload
	h.renderer.RenderHTTP(w, "posts/show", postShowData{
		Title: "Post detail",
		Post: postView{
			Post:        payload.Post,
			SafeContent: template.HTML(h.policy.Sanitize(payload.Post.Content)),
		},
		Stats:     payload.Stats,
		CSRFToken: token,
		Page:      parsePage(r),
		Query:     r.URL.Query().Get("q"),
	})
}

// Delete removes a post and returns to the listing.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	metrics.ResourceDeletionsTotal.WithLabelValues("post").Inc()
	if err := h.audit.Record(r.Context(), identity.Username, audit.ActionDeletePost, id, ""); err != nil {
		h.logger.Warn("audit write failed", "action", audit.ActionDeletePost, "error", err)
	}
	h.logger.Info("post deleted", "id", id, "admin", identity.Username)

	state := coll.State()
	http.Redirect(w, r, listingURL("/posts", state.PageIndex, state.Query), http.StatusSeeOther)
}
