package service

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/sakif/portfolio/internal/model"
)

const (
	// MaxRepositories caps the rendered list regardless of what the upstream sends.
	MaxRepositories = 20
	// MaxDescriptionLength is the card description budget, in characters.
	MaxDescriptionLength = 55
	// Ellipsis marks a truncated description.
	Ellipsis = "..."
)

// RepositoryFetcher is the upstream the repository list is read from (github.Client).
type RepositoryFetcher interface {
	ListRepositories(ctx context.Context, login string) ([]model.Repository, error)
}

// RepositoryCard is a repository ready for display.
type RepositoryCard struct {
	ID          int64
	Name        string
	URL         string
	Description string
}

// RepositoryService fetches the most recently updated repositories of the
// configured identity. It shares nothing with ProfileService: a failure here
// only ever empties the list.
type RepositoryService struct {
	fetcher  RepositoryFetcher
	identity string
	opts     HydrateOptions
}

// NewRepositoryService creates a new RepositoryService.
func NewRepositoryService(fetcher RepositoryFetcher, identity string, timeout time.Duration, logger *slog.Logger) *RepositoryService {
	return &RepositoryService{
		fetcher:  fetcher,
		identity: identity,
		opts:     HydrateOptions{Logger: logger, Timeout: timeout},
	}
}

// Hydrate fetches the repository list once. On failure Data is an empty,
// non-nil slice.
func (s *RepositoryService) Hydrate(ctx context.Context) Result[[]model.Repository] {
	return Hydrate(ctx, s.opts, "repositories", []model.Repository{}, func(ctx context.Context) ([]model.Repository, error) {
		repos, err := s.fetcher.ListRepositories(ctx, s.identity)
		if err != nil {
			return nil, err
		}
		if len(repos) > MaxRepositories {
			repos = repos[:MaxRepositories]
		}
		return repos, nil
	})
}

// Cards converts repositories to display cards, preserving order.
func Cards(repos []model.Repository) []RepositoryCard {
	cards := make([]RepositoryCard, 0, len(repos))
	for _, r := range repos {
		cards = append(cards, RepositoryCard{
			ID:          r.ID,
			Name:        r.Name,
			URL:         r.URL,
			Description: Truncate(r.Description, MaxDescriptionLength),
		})
	}
	return cards
}

// Truncate shortens description to at most limit characters followed by
// Ellipsis. A nil description yields "". Lengths are counted in runes so a
// multi-byte character is never split.
func Truncate(description *string, limit int) string {
	if description == nil {
		return ""
	}

	s := *description
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}
