// Package github is a small read-only client for the public GitHub REST API.
//
// Only the two endpoints the portfolio needs are implemented: the user profile
// and the user's repository list. Every failure comes back as an
// *apperror.AppError so callers can tell transport, status, decoding and
// missing-field failures apart without string matching.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// RepositoryPageSize and RepositorySort are fixed; the list is always the
	// most recently updated repositories, one page only.
	RepositoryPageSize = 20
	RepositorySort     = "updated"

	apiVersion = "2022-11-28"
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the client configuration.
type Config struct {
	BaseURL string
}

// Client fetches profile and repository data for a GitHub login.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a new GitHub client.
func NewClient(cfg Config, httpClient HTTPClient) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// NewHTTPClient builds the outbound *http.Client. Requests are traced through
// otelhttp; with a non-empty token an oauth2 transport adds the bearer header,
// which only raises the rate limit for public data.
func NewHTTPClient(token string) *http.Client {
	base := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	if token == "" {
		return base
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// GetUser fetches the public profile of login.
//
// avatar_url and name are required: a body without them is reported as
// apperror.ErrIncomplete even when it decodes cleanly (a 200 "null", or an
// account that never set a display name).
func (c *Client) GetUser(ctx context.Context, login string) (model.Profile, error) {
	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(login))

	var raw githubUser
	if err := c.doRequest(ctx, "profile", endpoint, &raw); err != nil {
		return model.Profile{}, err
	}

	if raw.AvatarURL == nil || *raw.AvatarURL == "" {
		return model.Profile{}, apperror.Incomplete("profile", "avatar_url")
	}
	if raw.Name == nil || *raw.Name == "" {
		return model.Profile{}, apperror.Incomplete("profile", "name")
	}

	return model.Profile{
		DisplayName: *raw.Name,
		LoginHandle: deref(raw.Login),
		AvatarURL:   *raw.AvatarURL,
		Biography:   deref(raw.Bio),
	}, nil
}

// ListRepositories fetches one page of login's repositories, most recently
// updated first. The server's order is returned untouched.
func (c *Client) ListRepositories(ctx context.Context, login string) ([]model.Repository, error) {
	query := url.Values{}
	query.Set("sort", RepositorySort)
	query.Set("per_page", fmt.Sprintf("%d", RepositoryPageSize))
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(login), query.Encode())

	var raw []githubRepository
	if err := c.doRequest(ctx, "repositories", endpoint, &raw); err != nil {
		return nil, err
	}

	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, model.Repository{
			ID:          r.ID,
			Name:        r.Name,
			URL:         r.HTMLURL,
			Description: r.Description,
		})
	}
	return repos, nil
}

// doRequest issues a single GET and decodes the JSON body into result.
func (c *Client) doRequest(ctx context.Context, resource, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperror.Transport(resource, err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Transport(resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperror.UpstreamStatus(resource, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return apperror.Malformed(resource, err)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GitHub API response types. Pointers distinguish absent/null from "".
type githubUser struct {
	Login     *string `json:"login"`
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

type githubRepository struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	HTMLURL     string  `json:"html_url"`
	Description *string `json:"description"`
}
