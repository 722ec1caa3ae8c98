// Package handler contains HTTP request handlers for the portfolio.
//
// HANDLER RESPONSIBILITIES:
// 1. Ask the service layer for this request's Snapshot (profile + repositories)
// 2. Combine it with the static catalog into a page view
// 3. Render the page, then apply document-level side effects (the favicon)
//
// Handlers never fail because GitHub did: the service layer has already
// replaced any failed fetch with its fallback.
package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/catalog"
	"github.com/sakif/portfolio/internal/document"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
)

// Portfolio is what the page handlers need from the service layer.
type Portfolio interface {
	Identity() string
	Load(ctx context.Context, withRepositories bool) service.Snapshot
}

// ProfileLinker builds the external GitHub link for a login.
type ProfileLinker func(login string) string

// NavView is the data for the persistent navigation bar.
type NavView struct {
	Label     string
	GitHubURL string
}

// PageView is the data every page template receives.
type PageView struct {
	Title        string
	Nav          NavView
	Profile      model.Profile
	Resolved     bool
	Projects     []catalog.Project
	Libraries    []catalog.Library
	Repositories []service.RepositoryCard
	Path         string
}

// PageHandler serves the home and about pages.
// Templates are parsed once at startup, one set per page, each sharing base.html.
type PageHandler struct {
	pages      map[string]*template.Template
	portfolio  Portfolio
	catalog    *catalog.Catalog
	profileURL ProfileLinker
	fallback   model.Profile
	logger     *slog.Logger
}

// NewPageHandler parses the page templates from templates (rooted so that
// "templates/base.html" exists) and returns a ready handler.
func NewPageHandler(templates fs.FS, portfolio Portfolio, cat *catalog.Catalog, fallback model.Profile, profileURL ProfileLinker, logger *slog.Logger) (*PageHandler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "about", "notfound"} {
		tmpl, err := template.ParseFS(templates, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &PageHandler{
		pages:      pages,
		portfolio:  portfolio,
		catalog:    cat,
		profileURL: profileURL,
		fallback:   fallback,
		logger:     logger,
	}, nil
}

// HandleHome serves GET /.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	snap := h.portfolio.Load(r.Context(), true)

	view := h.view(snap.Profile)
	view.Projects = h.catalog.HomeProjects
	view.Libraries = h.catalog.Libraries
	view.Repositories = service.Cards(snap.Repositories.Data)

	h.render(w, http.StatusOK, "home", view)
}

// HandleAbout serves GET /about.
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	snap := h.portfolio.Load(r.Context(), false)

	view := h.view(snap.Profile)
	view.Projects = h.catalog.AboutProjects

	h.render(w, http.StatusOK, "about", view)
}

// HandleNotFound renders the 404 page. It does not call GitHub.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	// The profile is never requested here, so the view stays at fallback.
	notFound := apperror.NotFound("page", r.URL.Path)
	h.logger.Debug("route not found", slog.String("path", r.URL.Path))

	view := h.view(service.Result[model.Profile]{Data: h.fallback, Err: notFound})
	view.Path = r.URL.Path

	h.render(w, http.StatusNotFound, "notfound", view)
}

// view builds the parts shared by every page: title, navigation and profile.
func (h *PageHandler) view(profile service.Result[model.Profile]) PageView {
	p := profile.Data

	label := p.DisplayName
	if label == "" {
		label = h.portfolio.Identity()
	}
	login := p.LoginHandle
	if login == "" {
		login = h.portfolio.Identity()
	}

	return PageView{
		Title:    p.Title(),
		Nav:      NavView{Label: label, GitHubURL: h.profileURL(login)},
		Profile:  p,
		Resolved: profile.OK(),
	}
}

// render executes the page into a buffer, hands the result to the document
// boundary for the favicon, and only then writes the response, so a template
// error never produces half a page.
func (h *PageHandler) render(w http.ResponseWriter, status int, page string, view PageView) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "base", view); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	doc, err := document.Parse(&buf)
	if err != nil {
		h.logger.Error("failed to parse rendered page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if view.Resolved {
		doc.SetIcon(view.Profile.AvatarURL)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := doc.Render(w); err != nil {
		// Headers are already sent; all we can do is log it.
		h.logger.Error("failed to write page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
