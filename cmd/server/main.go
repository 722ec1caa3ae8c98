// Package main is the entry point for the portfolio server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (.env, config.yml, environment)
// 2. Create dependencies (logger, catalog, outbound HTTP client)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/portfolio/internal/catalog"
	"github.com/sakif/portfolio/internal/config"
	"github.com/sakif/portfolio/internal/github"
	"github.com/sakif/portfolio/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Config is loaded and validated exactly once, here, and passed down explicitly.
	// Until it loads there is no configured level, so errors go through a default logger.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// === 3. LOAD THE CATALOG ===
	// An empty CatalogPath means the catalog embedded in the binary.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog",
			slog.String("path", cfg.CatalogPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	if cfg.GitHubToken == "" {
		logger.Info("GITHUB_TOKEN not set, using the anonymous GitHub rate limit")
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, cat, github.NewHTTPClient(cfg.GitHubToken), logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
