package tui

import (
	"fmt"
	"time"

	"ci-build-watcher/src/contracts"
)

// Item represents a repository row in the dashboard list.
// It wraps the domain Repository and implements bubbles/list.Item.
type Item struct {
	Repo  contracts.Repository
	Stale bool
	// Age is the time since the last build, measured when the item was built.
	Age time.Duration
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Repo.Name }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return i.Repo.Name }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string {
	if i.Repo.LastBuildAt.IsZero() {
		return fmt.Sprintf("%s · never built", i.Repo.LastBuildStatus)
	}
	return fmt.Sprintf("%s · %s ago", i.Repo.LastBuildStatus, FormatAge(i.Age))
}
