package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safastep/console/internal"
	"github.com/safastep/console/internal/api"
	"github.com/safastep/console/internal/audit"
	"github.com/safastep/console/internal/handler"
	"github.com/safastep/console/internal/metrics"
	"github.com/safastep/console/internal/middleware"
	"github.com/safastep/console/internal/session"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Platform API client
	apiClient := api.NewClient(cfg.APIBaseURL, logger)

	// Identity cookie codec and verify cache
	isSecure := cfg.IsSecure()
	codec := session.NewCodec(cfg.SessionHashKey, cfg.SessionBlockKey, isSecure)
	verifyCache := session.NewVerifyCache(cfg.VerifyCacheTTL)

	// Local audit trail
	auditLog, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("audit log initialization failed: %w", err)
	}
	defer auditLog.Close()
	logger.Info("Audit log ready", "path", cfg.AuditDBPath)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: cfg.TemplatesDir,
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(apiClient, codec, verifyCache, logger)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	loginLimiter := middleware.NewRateLimiter(5, 15*time.Minute, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(renderer, apiClient, codec, verifyCache, loginLimiter, auditLog, logger, isSecure)
	dashboardHandler := handler.NewDashboardHandler(renderer, apiClient, 1*time.Minute, logger, isSecure)
	userHandler := handler.NewUserHandler(renderer, apiClient, auditLog, cfg.PageSize, logger, isSecure)
	postHandler := handler.NewPostHandler(renderer, apiClient, auditLog, cfg.PageSize, logger, isSecure)
	ecoHandler := handler.NewEcoLocationHandler(renderer, apiClient, auditLog, cfg.PageSize, logger, isSecure)
	activityHandler := handler.NewActivityHandler(renderer, auditLog, cfg.PageSize, logger, isSecure)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Middleware stacks
	public := middleware.Stack(authMw.WithIdentity)
	protected := middleware.Stack(authMw.WithIdentity, authMw.RequireAdmin)

	// Root redirects to the dashboard, which bounces to login when
	// unauthenticated.
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	// Auth routes
	mux.Handle("GET /login", public(http.HandlerFunc(authHandler.ShowLogin)))
	mux.Handle("POST /login", loginLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /logout", http.HandlerFunc(authHandler.Logout))

	// Dashboard
	mux.Handle("GET /dashboard", protected(http.HandlerFunc(dashboardHandler.Show)))

	// Users
	mux.Handle("GET /users", protected(http.HandlerFunc(userHandler.Index)))
	mux.Handle("GET /users/{id}", protected(http.HandlerFunc(userHandler.Show)))
	mux.Handle("POST /users/{id}/delete", protected(http.HandlerFunc(userHandler.Delete)))

	// Posts
	mux.Handle("GET /posts", protected(http.HandlerFunc(postHandler.Index)))
	mux.Handle("GET /posts/{id}", protected(http.HandlerFunc(postHandler.Show)))
	mux.Handle("POST /posts/{id}/delete", protected(http.HandlerFunc(postHandler.Delete)))

	// Eco-locations
	mux.Handle("GET /eco-locations", protected(http.HandlerFunc(ecoHandler.Index)))
	mux.Handle("POST /eco-locations/coordinate", protected(http.HandlerFunc(ecoHandler.Coordinate)))
	mux.Handle("POST /eco-locations/save", protected(http.HandlerFunc(ecoHandler.Save)))
	mux.Handle("POST /eco-locations/{id}/delete", protected(http.HandlerFunc(ecoHandler.Delete)))

	// Activity trail
	mux.Handle("GET /activity", protected(http.HandlerFunc(activityHandler.Index)))

	// Outer middleware applied to everything
	root := middleware.Stack(
		metrics.Middleware,
		securityMw.Handler,
		loggingMw.Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "api", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
