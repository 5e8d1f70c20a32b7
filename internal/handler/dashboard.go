package handler

import (
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/safastep/console/internal/api"
	"github.com/safastep/console/internal/csrf"
	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/middleware"
)

const statsCacheKey = "platform_stats"

// DashboardHandler renders the landing screen with platform-wide
// counts. Stats change slowly, so they are cached for a short TTL
// instead of hitting the API on every page view.
type DashboardHandler struct {
	renderer *Renderer
	api      *api.Client
	cache    *gocache.Cache
	logger   *slog.Logger
	isSecure bool
}

// NewDashboardHandler creates a DashboardHandler with a stats cache of
// the given TTL.
func NewDashboardHandler(renderer *Renderer, apiClient *api.Client, statsTTL time.Duration, logger *slog.Logger, isSecure bool) *DashboardHandler {
	return &DashboardHandler{
		renderer: renderer,
		api:      apiClient,
		cache:    gocache.New(statsTTL, 2*statsTTL),
		logger:   logger,
		isSecure: isSecure,
	}
}

type dashboardPageData struct {
	Title     string
	Username  string
	Role      string
	Stats     domain.Stats
	CSRFToken string
	Error     string
}

// Show renders the dashboard.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := dashboardPageData{
		Title:     "Dashboard",
		Username:  identity.Username,
		Role:      identity.Role,
		CSRFToken: token,
	}

	if cached, ok := h.cache.Get(statsCacheKey); ok {
		data.Stats = cached.(domain.Stats)
	} else {
		stats, err := h.api.Stats(r.Context(), identity.Token)
		if err != nil {
			h.logger.Warn("stats fetch failed", "error", err)
			data.Error = safeMessage(err)
		} else {
			h.cache.SetDefault(statsCacheKey, stats)
			data.Stats = stats
		}
	}

	h.renderer.RenderHTTP(w, "dashboard", data)
}
