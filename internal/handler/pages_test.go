package handler_test

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio/internal/catalog"
	"github.com/sakif/portfolio/internal/github"
	"github.com/sakif/portfolio/internal/handler"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/web"
)

const placeholderAvatar = "https://x/placeholder.png"

// fakeGitHub is a stand-in for api.github.com. Handlers left nil answer 500.
type fakeGitHub struct {
	user      http.HandlerFunc
	repos     http.HandlerFunc
	userCalls atomic.Int32
	repoCalls atomic.Int32
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/users/ada":
		f.userCalls.Add(1)
		if f.user != nil {
			f.user(w, r)
			return
		}
	case "/users/ada/repos":
		f.repoCalls.Add(1)
		if f.repos != nil {
			f.repos(w, r)
			return
		}
	}
	http.Error(w, "unexpected", http.StatusInternalServerError)
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

// newPageHandler wires the real client and services against baseURL, the way
// server.New does.
func newPageHandler(t *testing.T, baseURL string, httpClient github.HTTPClient, logs *bytes.Buffer) *handler.PageHandler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := github.NewClient(github.Config{BaseURL: baseURL}, httpClient)
	profiles := service.NewProfileService(client, "ada", placeholderAvatar, 0, logger)
	repos := service.NewRepositoryService(client, "ada", 0, logger)
	portfolio := service.NewPortfolioService(profiles, repos)

	cat, err := catalog.Default()
	require.NoError(t, err)

	h, err := handler.NewPageHandler(web.FS, portfolio, cat, profiles.Fallback(),
		func(login string) string { return "https://github.com/" + login }, logger)
	require.NoError(t, err)
	return h
}

func get(t *testing.T, fn http.HandlerFunc, path string) (int, string) {
	t.Helper()
	rr := httptest.NewRecorder()
	fn(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr.Code, rr.Body.String()
}

func TestHome_ProfileResolves(t *testing.T) {
	gh := &fakeGitHub{
		user:  jsonBody(`{"name":"Ada","avatar_url":"https://x/a.png","login":"ada","bio":"Engineer"}`),
		repos: jsonBody(`[]`),
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	status, body := get(t, h.HandleHome, "/")

	assert.Equal(t, http.StatusOK, status)
	text := html.UnescapeString(body)
	assert.Contains(t, text, "Hi, I'm Ada")
	assert.Contains(t, body, `<img src="https://x/a.png" alt="Ada"/>`)
	assert.Contains(t, body, `<p class="bio">Engineer</p>`)
	assert.Contains(t, body, "<title>Ada | Portfolio</title>")
	assert.Equal(t, 1, strings.Count(body, `rel="icon"`))
	assert.Contains(t, body, `<link rel="icon" href="https://x/a.png"/>`)
	assert.Contains(t, body, `href="https://github.com/ada"`)
	assert.Contains(t, body, `<span class="nav-brand">Ada</span>`)
}

func TestHome_ProfileFetchFails(t *testing.T) {
	// A closed server gives a real connection error.
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	var logs bytes.Buffer
	h := newPageHandler(t, baseURL, http.DefaultClient, &logs)

	status, body := get(t, h.HandleHome, "/")

	assert.Equal(t, http.StatusOK, status)
	text := html.UnescapeString(body)
	assert.Contains(t, text, "Hi, I'm  ", "name interpolation is empty")
	assert.Contains(t, body, `<img src="https://x/placeholder.png" alt="Placeholder"/>`)
	assert.Contains(t, body, "<title>Portfolio</title>")
	assert.NotContains(t, body, "data-repo-id")
	assert.Contains(t, body, `<link rel="icon" href="/static/favicon.svg"/>`, "favicon untouched on failure")
	assert.Contains(t, body, `<span class="nav-brand">ada</span>`, "nav falls back to the identity")

	assert.Equal(t, 1, strings.Count(logs.String(), `msg="hydration failed, using fallback" resource=profile`))
	assert.Contains(t, logs.String(), "kind=transport")
}

func TestHome_IncompleteProfileUsesFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing avatar_url", `{"name":"Ada","login":"ada"}`},
		{"missing name", `{"avatar_url":"https://x/a.png","login":"ada"}`},
		{"not found body", `{"message":"Not Found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := &fakeGitHub{user: jsonBody(tt.body), repos: jsonBody(`[]`)}
			srv := httptest.NewServer(gh)
			defer srv.Close()

			var logs bytes.Buffer
			h := newPageHandler(t, srv.URL, srv.Client(), &logs)

			_, body := get(t, h.HandleHome, "/")

			assert.Contains(t, body, `src="https://x/placeholder.png"`)
			assert.NotContains(t, body, "https://x/a.png")
			assert.Contains(t, body, "<title>Portfolio</title>")
			assert.Contains(t, logs.String(), "kind=incomplete")
		})
	}
}

func TestHome_RateLimitedCollapsesToFallback(t *testing.T) {
	gh := &fakeGitHub{
		user: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"API rate limit exceeded"}`, http.StatusForbidden)
		},
		repos: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"slow down"}`, http.StatusTooManyRequests)
		},
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	var logs bytes.Buffer
	h := newPageHandler(t, srv.URL, srv.Client(), &logs)

	status, body := get(t, h.HandleHome, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `src="https://x/placeholder.png"`)
	assert.NotContains(t, body, "data-repo-id")
	assert.Equal(t, int32(1), gh.userCalls.Load(), "no retry")
	assert.Equal(t, int32(1), gh.repoCalls.Load(), "no retry")
	assert.Equal(t, 2, strings.Count(logs.String(), "kind=status"))
}

func TestHome_RepositoryWithoutDescription(t *testing.T) {
	gh := &fakeGitHub{
		user:  jsonBody(`{"name":"Ada","avatar_url":"https://x/a.png","login":"ada","bio":null}`),
		repos: jsonBody(`[{"id":1,"name":"r1","html_url":"https://g/r1","description":null}]`),
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	_, body := get(t, h.HandleHome, "/")

	assert.Equal(t, 1, strings.Count(body, "data-repo-id="))
	assert.Contains(t, body, `href="https://g/r1" target="_blank" rel="noopener noreferrer" class="card-link repo-card" data-repo-id="1"`)
	assert.Contains(t, body, `<h3 class="card-title">r1</h3>`)
	assert.Contains(t, body, `<p class="card-text"></p>`)
	assert.Contains(t, body, `<p class="bio"></p>`)
}

func TestHome_RepositoriesKeepOrderAndCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 1; i <= 25; i++ {
		if i > 1 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"id":%d,"name":"repo-%02d","html_url":"https://g/%d","description":"desc %d"}`, i, i, i, i)
	}
	sb.WriteString("]")

	gh := &fakeGitHub{
		user:  jsonBody(`{"name":"Ada","avatar_url":"https://x/a.png","login":"ada"}`),
		repos: jsonBody(sb.String()),
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	_, body := get(t, h.HandleHome, "/")

	assert.Equal(t, 20, strings.Count(body, "data-repo-id="))
	last := -1
	for i := 1; i <= 20; i++ {
		idx := strings.Index(body, fmt.Sprintf(`data-repo-id="%d"`, i))
		require.Greater(t, idx, last, "repository %d out of order", i)
		last = idx
	}
	assert.NotContains(t, body, `data-repo-id="21"`)
}

func TestHome_LongDescriptionIsTruncated(t *testing.T) {
	desc := strings.Repeat("x", 80)
	gh := &fakeGitHub{
		user:  jsonBody(`{"name":"Ada","avatar_url":"https://x/a.png","login":"ada"}`),
		repos: jsonBody(fmt.Sprintf(`[{"id":7,"name":"big","html_url":"https://g/big","description":%q}]`, desc)),
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	_, body := get(t, h.HandleHome, "/")

	assert.Contains(t, body, `<p class="card-text">`+strings.Repeat("x", 55)+`...</p>`)
}

func TestHome_StaticSections(t *testing.T) {
	srv := httptest.NewServer(&fakeGitHub{})
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	_, body := get(t, h.HandleHome, "/")

	assert.Contains(t, body, "My Projects")
	assert.Contains(t, body, "Libraries I Use")
	assert.Contains(t, body, "My GitHub Repositories")
	assert.Contains(t, body, `<span class="badge">DISABLED</span>`)
	assert.Contains(t, body, `<span class="badge">BETA</span>`)
	assert.Contains(t, body, `<span class="badge badge-primary">Python</span>`)
	assert.Contains(t, body, `<span class="badge badge-warning">JavaScript</span>`)
}

func TestAbout(t *testing.T) {
	gh := &fakeGitHub{
		user: jsonBody(`{"name":"Ada","avatar_url":"https://x/a.png","login":"ada","bio":"Engineer"}`),
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	status, body := get(t, h.HandleAbout, "/about")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, html.UnescapeString(body), "Hi there! I'm Ada, a backend developer")
	assert.Contains(t, body, "About Me")
	assert.NotContains(t, body, `<span class="badge">DISABLED</span>`, "about lists DiscordInflux as beta")
	assert.Equal(t, int32(0), gh.repoCalls.Load(), "about page does not list repositories")
}

func TestEveryRenderFetchesItsOwnProfile(t *testing.T) {
	gh := &fakeGitHub{
		user:  jsonBody(`{"name":"Ada","avatar_url":"https://x/a.png","login":"ada"}`),
		repos: jsonBody(`[]`),
	}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	get(t, h.HandleHome, "/")
	get(t, h.HandleAbout, "/about")
	get(t, h.HandleHome, "/")

	assert.Equal(t, int32(3), gh.userCalls.Load())
	assert.Equal(t, int32(2), gh.repoCalls.Load())
}

func TestNotFound(t *testing.T) {
	gh := &fakeGitHub{}
	srv := httptest.NewServer(gh)
	defer srv.Close()

	h := newPageHandler(t, srv.URL, srv.Client(), &bytes.Buffer{})

	status, body := get(t, h.HandleNotFound, "/nope")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Nothing lives at /nope")
	assert.Contains(t, body, "<title>Portfolio</title>")
	assert.Equal(t, int32(0), gh.userCalls.Load())
}

// stubPortfolio returns a fixed snapshot, for view-level checks.
type stubPortfolio struct {
	snap service.Snapshot
}

func (s stubPortfolio) Identity() string { return "ada" }

func (s stubPortfolio) Load(context.Context, bool) service.Snapshot { return s.snap }

func TestHome_NavUsesLoginFromProfile(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	snap := service.Snapshot{
		Profile: service.Result[model.Profile]{Data: model.Profile{
			DisplayName: "Ada Lovelace", LoginHandle: "countess", AvatarURL: "https://x/a.png",
		}},
	}
	h, err := handler.NewPageHandler(web.FS, stubPortfolio{snap: snap}, cat, model.FallbackProfile(placeholderAvatar),
		func(login string) string { return "https://github.example.test/" + login },
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, body := get(t, h.HandleHome, "/")

	assert.Contains(t, body, `href="https://github.example.test/countess"`)
	assert.Contains(t, body, "<title>Ada Lovelace | Portfolio</title>")
	assert.Contains(t, body, "My Github")
}
