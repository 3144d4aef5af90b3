// Package render formats build-health reports as plain text for the MCP tools
// and the CLI.
package render

import (
	"fmt"
	"strings"
	"time"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/contracts"
)

const (
	rule            = "---------------------------"
	timestampLayout = "2006-01-02 15:04"
)

// Timestamp formats t in UTC. The zero time renders as "never".
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(timestampLayout)
}

// Duration formats d rounded to the second.
func Duration(d time.Duration) string {
	return d.Round(time.Second).String()
}

func finishedAt(b contracts.Build) string {
	if b.FinishedAt == nil {
		return "-"
	}
	return Timestamp(*b.FinishedAt)
}

func repoLine(repo contracts.Repository) string {
	return fmt.Sprintf("%s | Last build: %s | Status: %s", repo.Name, Timestamp(repo.LastBuildAt), repo.LastBuildStatus)
}

func buildLine(b contracts.Build) string {
	return fmt.Sprintf("#%d | %s | Started: %s | Finished: %s", b.Number, b.DisplayStatus(), Timestamp(b.StartedAt), finishedAt(b))
}

func header(sb *strings.Builder, title string) {
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(rule)
	sb.WriteString("\n")
}

// NotFound is the message for a repository name that matches nothing.
func NotFound(repoName string) string {
	return fmt.Sprintf("Repository '%s' not found.", repoName)
}

// Repositories lists every repository with its last build.
func Repositories(repos []contracts.Repository) string {
	if len(repos) == 0 {
		return "No repositories found."
	}

	var sb strings.Builder
	header(&sb, "📦 Repositories")
	for _, repo := range repos {
		sb.WriteString(repoLine(repo))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Builds lists builds of one repository in the order given.
func Builds(repoName string, builds []contracts.Build) string {
	if len(builds) == 0 {
		return fmt.Sprintf("No builds found for repo '%s'.", repoName)
	}

	var sb strings.Builder
	header(&sb, fmt.Sprintf("🛠 Builds for %s", repoName))
	for _, b := range builds {
		sb.WriteString(buildLine(b))
		sb.WriteString("\n")
	}
	return sb.String()
}

// StaleRepositories lists repositories without a build in more than days days.
func StaleRepositories(days int, repos []contracts.Repository) string {
	if len(repos) == 0 {
		return fmt.Sprintf("No repositories are stale (> %d days without a build).", days)
	}

	var sb strings.Builder
	header(&sb, fmt.Sprintf("⚠️ Stale repositories (no builds in > %d days)", days))
	for _, repo := range repos {
		sb.WriteString(repoLine(repo))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RepoStatus renders the status summary of one repository.
func RepoStatus(s analytics.RepoStatus) string {
	var sb strings.Builder
	header(&sb, fmt.Sprintf("📋 Status for %s", s.Name))
	fmt.Fprintf(&sb, "Last build: %s | Status: %s\n", Timestamp(s.LastBuildAt), s.LastBuildStatus)
	fmt.Fprintf(&sb, "Builds: %d total, %d failed\n", s.TotalBuilds, s.FailedBuilds)
	if s.FinishedBuilds > 0 {
		fmt.Fprintf(&sb, "Duration: mean %s, median %s over %d finished builds\n",
			Duration(s.MeanDuration), Duration(s.MedianDuration), s.FinishedBuilds)
	}
	if s.Stale {
		fmt.Fprintf(&sb, "Stale: yes (no builds in > %d days)\n", s.StaleDays)
	} else {
		sb.WriteString("Stale: no\n")
	}
	return sb.String()
}

// FailedBuilds lists failed builds across repositories.
func FailedBuilds(days int, builds []contracts.Build) string {
	if len(builds) == 0 {
		return fmt.Sprintf("No failed builds in the last %d days.", days)
	}

	var sb strings.Builder
	header(&sb, fmt.Sprintf("❌ Failed builds (last %d days)", days))
	for _, b := range builds {
		sb.WriteString(b.RepoName)
		sb.WriteString(" ")
		sb.WriteString(buildLine(b))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FailureRate renders the outcome mix of a repository's recent builds.
func FailureRate(r analytics.FailureRate) string {
	if !r.HasData() {
		return fmt.Sprintf("No build data for repo '%s' (last %d builds).", r.Repository, r.LastN)
	}

	var sb strings.Builder
	header(&sb, fmt.Sprintf("📊 Failure rate for %s (last %d builds)", r.Repository, r.LastN))
	fmt.Fprintf(&sb, "Evaluated: %d | Successes: %d | Failures: %d\n", r.Total, r.Successes, r.Failures)
	fmt.Fprintf(&sb, "Failure rate: %.1f%%\n", r.Rate)
	return sb.String()
}

// FlakyRepos lists repositories with mixed outcomes.
func FlakyRepos(days int, flaky []analytics.FlakyRepo) string {
	if len(flaky) == 0 {
		return fmt.Sprintf("No flaky repositories in the last %d days.", days)
	}

	var sb strings.Builder
	header(&sb, fmt.Sprintf("🎲 Flaky repositories (last %d days)", days))
	for _, f := range flaky {
		fmt.Fprintf(&sb, "%s | Failures: %d | Successes: %d | Builds: %d\n", f.Repository, f.Failures, f.Successes, f.Total)
	}
	return sb.String()
}

// Overview renders the aggregate health report.
func Overview(o analytics.Overview) string {
	var sb strings.Builder
	header(&sb, "🩺 Build health overview")
	fmt.Fprintf(&sb, "Repositories: %d\n", o.TotalRepositories)
	fmt.Fprintf(&sb, "Builds: %d total, %d failed\n", o.TotalBuilds, o.FailedBuilds)
	fmt.Fprintf(&sb, "Stale repositories (> %d days): %d\n", o.StaleDays, o.StaleRepositories)

	if len(o.TopFailing) == 0 {
		sb.WriteString("Top failing: none\n")
		return sb.String()
	}
	sb.WriteString("Top failing:\n")
	for i, r := range o.TopFailing {
		fmt.Fprintf(&sb, "  %d. %s (%d failures)\n", i+1, r.Repository, r.Failures)
	}
	return sb.String()
}
