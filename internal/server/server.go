// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware and routes,
// and decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config.Config and the catalog, builds the outbound HTTP client,
// and hands all three to New. New then assembles:
//
//	github.Client → ProfileService + RepositoryService → PortfolioService → PageHandler
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakif/portfolio/internal/catalog"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/github"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/middleware"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/web"
)

// Server represents the HTTP server and all its dependencies.
// It owns no resources that need closing: every GitHub response is consumed
// within the request that asked for it.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
}

// New creates a new Server.
//
// httpClient is used for every outbound GitHub call. main passes
// github.NewHTTPClient; tests pass the client of an httptest server.
func New(cfg *config.Config, cat *catalog.Catalog, httpClient github.HTTPClient, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	if err := s.setupRoutes(cat, httpClient); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET /          → Home page (profile, projects, libraries, repositories)
// GET /about     → About page (profile, projects)
// GET /healthz   → Liveness probe (JSON)
// GET /static/*  → Embedded CSS, JS and the default favicon
// anything else  → 404 page
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID assigns a unique ID to each request (picked up by the logger)
// 2. RealIP extracts the client IP from proxy headers
// 3. Recoverer catches panics and returns 500 instead of crashing
// 4. Logger logs each request with timing info
func (s *Server) setupRoutes(cat *catalog.Catalog, httpClient github.HTTPClient) error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Static Files ===
	// GET /static/css/site.css → web/static/css/site.css inside the binary.
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return fmt.Errorf("opening embedded static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// === Services ===
	client := github.NewClient(github.Config{BaseURL: s.config.GitHubAPIURL}, httpClient)

	profiles := service.NewProfileService(client, s.config.GitHubUsername, s.config.PlaceholderAvatarURL, s.config.FetchTimeout, s.logger)
	repos := service.NewRepositoryService(client, s.config.GitHubUsername, s.config.FetchTimeout, s.logger)
	portfolio := service.NewPortfolioService(profiles, repos)

	// === Page Routes ===
	pages, err := handler.NewPageHandler(web.FS, portfolio, cat, profiles.Fallback(), s.config.ProfileURL, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	s.router.Get("/", pages.HandleHome)
	s.router.Get("/about", pages.HandleAbout)
	s.router.Get("/healthz", handler.HandleHealth)
	s.router.NotFound(pages.HandleNotFound)

	return nil
}

// Handler returns the root handler with tracing applied. otelhttp is a no-op
// until a tracer provider is registered globally.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "portfolio")
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
//
// Requests still waiting on GitHub when the deadline hits are cancelled; their
// hydrations see the cancelled context and are discarded.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("github_username", s.config.GitHubUsername),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
