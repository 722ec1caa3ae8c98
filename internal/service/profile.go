package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/portfolio/internal/model"
)

// ProfileFetcher is the upstream the profile is read from (github.Client).
type ProfileFetcher interface {
	GetUser(ctx context.Context, login string) (model.Profile, error)
}

// ProfileService resolves the configured identity into a model.Profile.
type ProfileService struct {
	fetcher     ProfileFetcher
	identity    string
	placeholder string
	opts        HydrateOptions
}

// NewProfileService creates a new ProfileService.
// identity is the GitHub login; placeholderAvatarURL is shown until (or
// instead of) the real avatar.
func NewProfileService(fetcher ProfileFetcher, identity, placeholderAvatarURL string, timeout time.Duration, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		fetcher:     fetcher,
		identity:    identity,
		placeholder: placeholderAvatarURL,
		opts:        HydrateOptions{Logger: logger, Timeout: timeout},
	}
}

// Identity returns the configured GitHub login.
func (s *ProfileService) Identity() string {
	return s.identity
}

// Fallback returns the profile shown when hydration fails.
func (s *ProfileService) Fallback() model.Profile {
	return model.FallbackProfile(s.placeholder)
}

// Hydrate fetches the profile once. It never fails; see Hydrate.
func (s *ProfileService) Hydrate(ctx context.Context) Result[model.Profile] {
	return Hydrate(ctx, s.opts, "profile", s.Fallback(), func(ctx context.Context) (model.Profile, error) {
		return s.fetcher.GetUser(ctx, s.identity)
	})
}
