package handler

import (
	"log/slog"
	"net/http"

	"github.com/safastep/console/internal/api"
	"github.com/safastep/console/internal/audit"
	"github.com/safastep/console/internal/csrf"
	"github.com/safastep/console/internal/metrics"
	"github.com/safastep/console/internal/middleware"
	"github.com/safastep/console/internal/service"
	"github.com/safastep/console/internal/session"
)

// AuthHandler serves the login screen and processes login and logout.
type AuthHandler struct {
	renderer *Renderer
	api      *api.Client
	codec    *session.Codec
	cache    *session.VerifyCache
	limiter  *middleware.RateLimiter
	audit    *audit.Log
	logger   *slog.Logger
	isSecure bool
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(renderer *Renderer, apiClient *api.Client, codec *session.Codec, cache *session.VerifyCache, limiter *middleware.RateLimiter, auditLog *audit.Log, logger *slog.Logger, isSecure bool) *AuthHandler {
	return &AuthHandler{
		renderer: renderer,
		api:      apiClient,
		codec:    codec,
		cache:    cache,
		limiter:  limiter,
		audit:    auditLog,
		logger:   logger,
		isSecure: isSecure,
	}
}

// loginPageData drives the auth/login template.
type loginPageData struct {
	Title     string
	CSRFToken string
	ReturnTo  string
	Username  string
	Error     string
}

// ShowLogin renders the login form. Already-authenticated admins are
// sent straight to the dashboard.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetIdentity(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	token, err := csrf.EnsureToken(w, r, h.isSecure)
	if err != nil {
		h.logger.Error("csrf token generation failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.RenderHTTP(w, "auth/login", loginPageData{
		Title:     "Sign in",
		CSRFToken: token,
		ReturnTo:  safeReturnTo(r.URL.Query().Get("return_to")),
	})
}

// Login validates the credentials against the platform API and, on
// success, persists the returned identity and redirects onward. On
// failure the form is re-rendered with the entered username and a safe
// error message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if !csrf.ValidateRequest(r) {
		http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	returnTo := safeReturnTo(r.FormValue("return_to"))

	store := h.codec.Store(w, r)
	sess := service.NewSession(h.api, store, h.logger)

	if err := sess.Login(r.Context(), username, password); err != nil {
		h.limiter.RecordFailure(middleware.ClientIP(r))
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()

		h.logger.Info("login rejected", "username", username)
		h.renderLoginError(w, r, username, returnTo, err)
		return
	}

	identity, _ := sess.Identity()
	h.limiter.Reset(middleware.ClientIP(r))
	h.cache.MarkVerified(identity.Token)
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	if err := h.audit.Record(r.Context(), identity.Username, audit.ActionLogin, 0, ""); err != nil {
		h.logger.Warn("audit write failed", "action", audit.ActionLogin, "error", err)
	}

	h.logger.Info("admin logged in", "username", identity.Username, "role", identity.Role)
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// renderLoginError re-renders the form with the failure message and a
// status that matches the error.
func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, username, returnTo string, err error) {
	token, csrfErr := csrf.EnsureToken(w, r, h.isSecure)
	if csrfErr != nil {
		h.logger.Error("csrf token generation failed", "error", csrfErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(errStatusForLogin(err))
	h.renderer.RenderHTTP(w, "auth/login", loginPageData{
		Title:     "Sign in",
		CSRFToken: token,
		ReturnTo:  returnTo,
		Username:  username,
		Error:     safeMessage(err),
	})
}

// Logout clears the identity cookie and returns to the login screen.
// The platform API has no logout endpoint, so no request is sent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	if !csrf.ValidateRequest(r) {
		http.Error(w, "Invalid or missing CSRF token", http.StatusForbidden)
		return
	}

	store := h.codec.Store(w, r)
	if identity, ok := store.Load(); ok {
		h.cache.Forget(identity.Token)
		if err := h.audit.Record(r.Context(), identity.Username, audit.ActionLogout, 0, ""); err != nil {
			h.logger.Warn("audit write failed", "action", audit.ActionLogout, "error", err)
		}
		h.logger.Info("admin logged out", "username", identity.Username)
	}

	sess := service.NewSession(h.api, store, h.logger)
	sess.Logout()

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
