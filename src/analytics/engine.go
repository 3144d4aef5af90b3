// Package analytics answers build-health queries over a repository snapshot.
// Every query is a pure function of the snapshot, its arguments and a single
// instant read from the clock when the query starts.
package analytics

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"ci-build-watcher/src/contracts"
	"ci-build-watcher/src/store"
)

// Query defaults.
const (
	DefaultStaleDays        = 14
	DefaultFailedBuildsDays = 30
	DefaultFailureRateLastN = 10
	DefaultFlakyDays        = 30

	topFailingLimit = 3
)

// Engine runs queries against a store.Store.
type Engine struct {
	store store.Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now as the query clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine over st.
func NewEngine(st store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListBuilds returns the repository's builds, highest build number first.
// Unknown repositories and repositories without builds both yield an empty slice.
func (e *Engine) ListBuilds(repoName string) []contracts.Build {
	builds := e.store.BuildsForRepository(repoName)
	sortByNumberDesc(builds)
	return builds
}

// RepoStatus summarizes a repository. It returns store.ErrNotFound when no
// repository matches.
func (e *Engine) RepoStatus(repoName string) (RepoStatus, error) {
	now := e.now()

	repo, err := e.store.FindRepository(repoName)
	if err != nil {
		return RepoStatus{}, err
	}

	status := RepoStatus{
		Name:            repo.Name,
		LastBuildAt:     repo.LastBuildAt,
		LastBuildStatus: repo.LastBuildStatus,
		TotalBuilds:     len(repo.Builds),
		FailedBuilds:    countFailures(repo.Builds),
		Stale:           store.IsStale(repo, now, DefaultStaleDays),
		StaleDays:       DefaultStaleDays,
	}

	var durations stats.Float64Data
	for _, b := range repo.Builds {
		if d, ok := b.Duration(); ok {
			durations = append(durations, float64(d))
		}
	}
	if len(durations) > 0 {
		mean, _ := durations.Mean()
		median, _ := durations.Median()
		status.MeanDuration = time.Duration(mean)
		status.MedianDuration = time.Duration(median)
		status.FinishedBuilds = len(durations)
	}

	return status, nil
}

// FailedBuilds returns every non-Success build that started within the last
// days days, most recent first.
func (e *Engine) FailedBuilds(days int) []contracts.Build {
	cutoff := store.Cutoff(e.now(), days)

	failed := []contracts.Build{}
	for _, repo := range e.store.ListRepositories() {
		for _, b := range repo.Builds {
			if b.IsFailure() && !b.StartedAt.Before(cutoff) {
				failed = append(failed, b)
			}
		}
	}

	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].StartedAt.After(failed[j].StartedAt)
	})
	return failed
}

// RepoFailureRate computes the failure rate over the lastN highest-numbered
// builds of a repository. It returns store.ErrNotFound when no repository
// matches. lastN <= 0 evaluates no builds.
func (e *Engine) RepoFailureRate(repoName string, lastN int) (FailureRate, error) {
	repo, err := e.store.FindRepository(repoName)
	if err != nil {
		return FailureRate{}, err
	}

	result := FailureRate{
		Repository: repo.Name,
		LastN:      lastN,
	}
	if lastN <= 0 {
		return result, nil
	}

	builds := e.store.BuildsForRepository(repo.Name)
	sortByNumberDesc(builds)
	if len(builds) > lastN {
		builds = builds[:lastN]
	}

	result.Total = len(builds)
	result.Failures = countFailures(builds)
	result.Successes = result.Total - result.Failures
	if result.Total > 0 {
		result.Rate = percent(result.Failures, result.Total)
	}

	return result, nil
}

// FlakyRepos returns repositories whose builds in the last days days include
// at least one success and at least one failure, most failures first.
func (e *Engine) FlakyRepos(days int) []FlakyRepo {
	cutoff := store.Cutoff(e.now(), days)

	flaky := []FlakyRepo{}
	for _, repo := range e.store.ListRepositories() {
		var entry FlakyRepo
		for _, b := range repo.Builds {
			if b.StartedAt.Before(cutoff) {
				continue
			}
			entry.Total++
			if b.IsFailure() {
				entry.Failures++
			} else {
				entry.Successes++
			}
		}

		if entry.Successes > 0 && entry.Failures > 0 {
			entry.Repository = repo.Name
			flaky = append(flaky, entry)
		}
	}

	sort.SliceStable(flaky, func(i, j int) bool {
		return flaky[i].Failures > flaky[j].Failures
	})
	return flaky
}

// BuildHealthOverview aggregates counts across every repository, using
// staleDays for the staleness rule.
func (e *Engine) BuildHealthOverview(staleDays int) Overview {
	now := e.now()
	repos := e.store.ListRepositories()

	overview := Overview{
		TotalRepositories: len(repos),
		StaleDays:         staleDays,
		TopFailing:        []RepoFailures{},
	}

	var failing []RepoFailures
	for _, repo := range repos {
		failures := countFailures(repo.Builds)

		overview.TotalBuilds += len(repo.Builds)
		overview.FailedBuilds += failures
		if store.IsStale(repo, now, staleDays) {
			overview.StaleRepositories++
		}
		if failures > 0 {
			failing = append(failing, RepoFailures{Repository: repo.Name, Failures: failures})
		}
	}

	sort.SliceStable(failing, func(i, j int) bool {
		return failing[i].Failures > failing[j].Failures
	})
	if len(failing) > topFailingLimit {
		failing = failing[:topFailingLimit]
	}
	overview.TopFailing = append(overview.TopFailing, failing...)

	return overview
}

func sortByNumberDesc(builds []contracts.Build) {
	sort.SliceStable(builds, func(i, j int) bool {
		return builds[i].Number > builds[j].Number
	})
}

func countFailures(builds []contracts.Build) int {
	n := 0
	for _, b := range builds {
		if b.IsFailure() {
			n++
		}
	}
	return n
}

// percent returns part/total*100 rounded half away from zero to one decimal.
func percent(part, total int) float64 {
	raw := float64(part) / float64(total) * 100
	rounded, err := stats.Round(raw, 1)
	if err != nil {
		return raw
	}
	return rounded
}
