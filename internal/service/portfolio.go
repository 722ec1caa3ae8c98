package service

import (
	"context"
	"sync"

	"github.com/sakif/portfolio/internal/model"
)

// Snapshot is everything one page render needs from upstream.
// Every component of the page (shell, navigation, body) reads the same
// Snapshot, so they agree with each other within a response.
type Snapshot struct {
	Profile      Result[model.Profile]
	Repositories Result[[]model.Repository]
}

// PortfolioService loads a Snapshot per page request.
//
// There is no cache: every call is a fresh mount and re-fetches.
type PortfolioService struct {
	profiles *ProfileService
	repos    *RepositoryService
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(profiles *ProfileService, repos *RepositoryService) *PortfolioService {
	return &PortfolioService{profiles: profiles, repos: repos}
}

// Identity returns the configured GitHub login.
func (s *PortfolioService) Identity() string {
	return s.profiles.Identity()
}

// Load hydrates the profile and, when withRepositories is set, the repository
// list. The two fetches run concurrently and settle independently.
func (s *PortfolioService) Load(ctx context.Context, withRepositories bool) Snapshot {
	snap := Snapshot{
		Repositories: Result[[]model.Repository]{Data: []model.Repository{}},
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		snap.Profile = s.profiles.Hydrate(ctx)
	}()

	if withRepositories {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap.Repositories = s.repos.Hydrate(ctx)
		}()
	}

	wg.Wait()
	return snap
}
