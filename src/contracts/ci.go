// Package contracts defines the repository and build records shared by the store,
// the analytics engine and every presentation surface.
package contracts

import (
	"strings"
	"time"
)

// Status is the normalized outcome of a build.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
	StatusUnknown Status = "Unknown"
)

// ParseStatus normalizes a source status string. Only "success" and "failed"
// (case-insensitive) are recognized; everything else is Unknown.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return StatusSuccess
	case "failed":
		return StatusFailed
	default:
		return StatusUnknown
	}
}

// IsSuccess reports whether the status counts as a successful build.
// Every other status counts as a failure.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// Repository is a tracked repository and its build history.
type Repository struct {
	// Unique name, matched case-insensitively.
	Name string `json:"name"`
	// Start of the most recent build, as supplied by the source.
	LastBuildAt time.Time `json:"last_build_at"`
	// Outcome of the most recent build, as supplied by the source.
	LastBuildStatus Status `json:"last_build_status"`
	// Builds in source order.
	Builds []Build `json:"builds"`
}

// Build is a single CI run of a repository.
type Build struct {
	// Name of the owning repository.
	RepoName string `json:"repo_name"`
	// Build number, unique within the repository only.
	Number    int       `json:"build_number"`
	StartedAt time.Time `json:"started_at"`
	// Nil while the build is running or when the source omits it.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     Status     `json:"status"`
	// Status string as it appeared in the source.
	RawStatus string `json:"raw_status,omitempty"`
}

// IsFailure reports whether the build counts towards failure totals.
func (b Build) IsFailure() bool {
	return !b.Status.IsSuccess()
}

// Duration returns the wall time of a finished build.
func (b Build) Duration() (time.Duration, bool) {
	if b.FinishedAt == nil {
		return 0, false
	}
	return b.FinishedAt.Sub(b.StartedAt), true
}

// DisplayStatus returns the source status when present, falling back to the
// normalized value.
func (b Build) DisplayStatus() string {
	if b.RawStatus != "" {
		return b.RawStatus
	}
	return string(b.Status)
}

// Clone returns a copy of the repository that shares no memory with r.
func (r Repository) Clone() Repository {
	out := r
	out.Builds = CloneBuilds(r.Builds)
	return out
}

// CloneBuilds copies builds, including their FinishedAt pointers.
func CloneBuilds(builds []Build) []Build {
	if builds == nil {
		return nil
	}
	out := make([]Build, len(builds))
	for i, b := range builds {
		if b.FinishedAt != nil {
			t := *b.FinishedAt
			b.FinishedAt = &t
		}
		out[i] = b
	}
	return out
}
