package store

import (
	"fmt"
	"strings"
	"time"

	"ci-build-watcher/src/contracts"
)

// InMemoryStore is the in-memory implementation of Store.
// It is never modified after construction, so it is safe for concurrent use
// without locking.
type InMemoryStore struct {
	repos  []contracts.Repository
	byName map[string]int // lower-cased name -> index into repos
	builds []contracts.Build
	now    func() time.Time // injectable for deterministic tests
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock replaces time.Now as the source of "now" for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		s.now = now
	}
}

// NewInMemoryStore creates a store over a copy of repos. Each build is stamped
// with its owning repository's name. When names collide case-insensitively,
// lookups resolve to the first repository.
func NewInMemoryStore(repos []contracts.Repository, opts ...Option) *InMemoryStore {
	s := newStore(opts)
	s.load(repos)
	return s
}

func newStore(opts []Option) *InMemoryStore {
	s := &InMemoryStore{
		byName: make(map[string]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) load(repos []contracts.Repository) {
	s.repos = make([]contracts.Repository, 0, len(repos))
	for _, repo := range repos {
		repo = repo.Clone()
		for i := range repo.Builds {
			repo.Builds[i].RepoName = repo.Name
		}

		key := strings.ToLower(repo.Name)
		if _, exists := s.byName[key]; !exists {
			s.byName[key] = len(s.repos)
		}
		s.repos = append(s.repos, repo)
		s.builds = append(s.builds, repo.Builds...)
	}
}

// ListRepositories returns all repositories in load order.
func (s *InMemoryStore) ListRepositories() []contracts.Repository {
	out := make([]contracts.Repository, len(s.repos))
	for i, repo := range s.repos {
		out[i] = repo.Clone()
	}
	return out
}

// FindRepository looks up a repository by case-insensitive name.
func (s *InMemoryStore) FindRepository(name string) (contracts.Repository, error) {
	idx, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return contracts.Repository{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.repos[idx].Clone(), nil
}

// BuildsForRepository returns every build whose repository name matches name
// case-insensitively.
func (s *InMemoryStore) BuildsForRepository(name string) []contracts.Build {
	out := []contracts.Build{}
	for _, b := range s.builds {
		if strings.EqualFold(b.RepoName, name) {
			out = append(out, b)
		}
	}
	return contracts.CloneBuilds(out)
}

// StaleRepositories samples the clock once and returns repositories whose last
// build is strictly older than daysThreshold days.
func (s *InMemoryStore) StaleRepositories(daysThreshold int) []contracts.Repository {
	now := s.now()

	out := []contracts.Repository{}
	for _, repo := range s.repos {
		if IsStale(repo, now, daysThreshold) {
			out = append(out, repo.Clone())
		}
	}
	return out
}

// Counts returns the number of repositories and builds held.
func (s *InMemoryStore) Counts() (repos, builds int) {
	return len(s.repos), len(s.builds)
}
