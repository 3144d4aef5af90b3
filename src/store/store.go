// Package store holds the immutable repository snapshot and the sources it is
// loaded from.
package store

import (
	"errors"
	"math"
	"time"

	"ci-build-watcher/src/contracts"
)

// ErrNotFound is returned when no repository matches a name.
var ErrNotFound = errors.New("repository not found")

// Store defines read access to the repository snapshot.
type Store interface {
	// ListRepositories returns every repository in load order.
	ListRepositories() []contracts.Repository

	// FindRepository returns the repository whose name matches case-insensitively.
	FindRepository(name string) (contracts.Repository, error)

	// BuildsForRepository returns the builds of a repository, empty when the
	// repository is unknown or has none.
	BuildsForRepository(name string) []contracts.Build

	// StaleRepositories returns repositories whose last build predates now minus
	// daysThreshold days.
	StaleRepositories(daysThreshold int) []contracts.Repository
}

const (
	// maxDurationDays is the largest day count a time.Duration can hold.
	maxDurationDays = math.MaxInt64 / int64(24*time.Hour)

	// maxCalendarDays bounds the offset handed to time.AddDate, far beyond
	// any build timestamp.
	maxCalendarDays = 1 << 30
)

// Cutoff returns the instant days before now. Day counts too large for a
// time.Duration fall back to calendar arithmetic instead of wrapping.
func Cutoff(now time.Time, days int) time.Time {
	if d := int64(days); d <= maxDurationDays && d >= -maxDurationDays {
		return now.Add(-time.Duration(d) * 24 * time.Hour)
	}
	return now.AddDate(0, 0, -max(-maxCalendarDays, min(days, maxCalendarDays)))
}

// IsStale reports whether repo's last build is strictly earlier than the
// cutoff for days at now.
func IsStale(repo contracts.Repository, now time.Time, days int) bool {
	return repo.LastBuildAt.Before(Cutoff(now, days))
}
