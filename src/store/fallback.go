package store

import (
	"time"

	"ci-build-watcher/src/contracts"
)

// FallbackMode selects the snapshot used when the configured source fails.
type FallbackMode string

const (
	// FallbackSeed substitutes the built-in demo dataset.
	FallbackSeed FallbackMode = "seed"
	// FallbackEmpty substitutes an empty snapshot.
	FallbackEmpty FallbackMode = "empty"
)

// seedBuild describes a finished build relative to now.
type seedBuild struct {
	number   int
	daysAgo  int
	duration time.Duration
	status   contracts.Status
}

type seedRepo struct {
	name   string
	builds []seedBuild // most recent first
}

var seedRepos = []seedRepo{
	{"PaymentService", []seedBuild{
		{102, 1, 10 * time.Minute, contracts.StatusSuccess},
		{101, 5, 5 * time.Minute, contracts.StatusSuccess},
	}},
	{"UserPortal", []seedBuild{
		{58, 9, 20 * time.Minute, contracts.StatusFailed},
		{57, 11, 15 * time.Minute, contracts.StatusSuccess},
	}},
	{"ReportingJob", []seedBuild{
		{12, 21, 30 * time.Minute, contracts.StatusSuccess},
	}},
	{"InventoryApi", []seedBuild{
		{88, 3, 15 * time.Minute, contracts.StatusSuccess},
		{87, 7, 10 * time.Minute, contracts.StatusFailed},
	}},
	{"EmailDispatcher", []seedBuild{
		{33, 25, 20 * time.Minute, contracts.StatusFailed},
	}},
	{"AnalyticsEngine", []seedBuild{
		{145, 13, 15 * time.Minute, contracts.StatusSuccess},
	}},
	{"NotificationHub", []seedBuild{
		{22, 18, 30 * time.Minute, contracts.StatusFailed},
	}},
}

// FallbackRepositories returns the built-in dataset with timestamps relative
// to now. Each repository's last build fields match its newest build, which
// finishes the given number of days before now.
func FallbackRepositories(now time.Time) []contracts.Repository {
	repos := make([]contracts.Repository, 0, len(seedRepos))
	for _, seed := range seedRepos {
		repo := contracts.Repository{Name: seed.name}
		for _, sb := range seed.builds {
			finished := now.Add(-time.Duration(sb.daysAgo) * 24 * time.Hour)
			repo.Builds = append(repo.Builds, contracts.Build{
				RepoName:   seed.name,
				Number:     sb.number,
				StartedAt:  finished.Add(-sb.duration),
				FinishedAt: &finished,
				Status:     sb.status,
				RawStatus:  string(sb.status),
			})
		}
		newest := repo.Builds[0]
		repo.LastBuildAt = *newest.FinishedAt
		repo.LastBuildStatus = newest.Status
		repos = append(repos, repo)
	}
	return repos
}
