package analytics

import (
	"time"

	"ci-build-watcher/src/contracts"
)

// RepoStatus summarizes one repository.
type RepoStatus struct {
	Name            string           `json:"name"`
	LastBuildAt     time.Time        `json:"last_build_at"`
	LastBuildStatus contracts.Status `json:"last_build_status"`
	TotalBuilds     int              `json:"total_builds"`
	// Builds whose status is anything other than Success.
	FailedBuilds int `json:"failed_builds"`
	// Stale is evaluated against DefaultStaleDays.
	Stale     bool `json:"stale"`
	StaleDays int  `json:"stale_days"`

	// Mean and median wall time of finished builds; zero when none finished.
	MeanDuration   time.Duration `json:"mean_duration"`
	MedianDuration time.Duration `json:"median_duration"`
	FinishedBuilds int           `json:"finished_builds"`
}

// FailureRate is the outcome mix of a repository's most recent numbered builds.
type FailureRate struct {
	Repository string `json:"repository"`
	// LastN is the requested window size.
	LastN     int `json:"last_n"`
	Total     int `json:"total"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	// Rate is failures/total*100 rounded to one decimal place. Only meaningful
	// when HasData reports true.
	Rate float64 `json:"failure_rate"`
}

// HasData reports whether any builds were evaluated. A zero-build result is
// "no data", not a 0% failure rate.
func (f FailureRate) HasData() bool {
	return f.Total > 0
}

// FlakyRepo is a repository with both passing and failing builds in a window.
type FlakyRepo struct {
	Repository string `json:"repository"`
	Successes  int    `json:"successes"`
	Failures   int    `json:"failures"`
	Total      int    `json:"total"`
}

// RepoFailures pairs a repository with its failed build count.
type RepoFailures struct {
	Repository string `json:"repository"`
	Failures   int    `json:"failures"`
}

// Overview aggregates build health across the snapshot.
type Overview struct {
	TotalRepositories int `json:"total_repositories"`
	TotalBuilds       int `json:"total_builds"`
	FailedBuilds      int `json:"failed_builds"`
	StaleRepositories int `json:"stale_repositories"`
	StaleDays         int `json:"stale_days"`
	// At most three repositories with the most failures; empty when no
	// repository has failed.
	TopFailing []RepoFailures `json:"top_failing"`
}
