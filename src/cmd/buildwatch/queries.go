package main

import (
	"errors"

	"github.com/spf13/cobra"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/render"
	"ci-build-watcher/src/store"
)

// daysFlag returns the flag value, or fallback when the flag was not set.
func daysFlag(cmd *cobra.Command, name string, fallback int) int {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	days, _ := cmd.Flags().GetInt(name)
	return days
}

// notFound converts store.ErrNotFound into the user-facing message.
func notFound(repoName string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errors.New(render.NotFound(repoName))
	}
	return err
}

func newReposCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List repositories and their last build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos := a.store.ListRepositories()
			return a.emit(cmd.OutOrStdout(), render.Repositories(repos), repos)
		},
	}
}

func newBuildsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "builds <repo>",
		Short: "List builds of a repository, newest build number first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			builds := a.engine.ListBuilds(args[0])
			return a.emit(cmd.OutOrStdout(), render.Builds(args[0], builds), builds)
		},
	}
}

func newStaleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List repositories without a build in more than N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days := daysFlag(cmd, "days", a.cfg.StaleDays)
			repos := a.store.StaleRepositories(days)
			return a.emit(cmd.OutOrStdout(), render.StaleRepositories(days, repos), repos)
		},
	}
	cmd.Flags().Int("days", analytics.DefaultStaleDays, "Days without a build (default: stale_days from config)")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <repo>",
		Short: "Summarize one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.engine.RepoStatus(args[0])
			if err != nil {
				return notFound(args[0], err)
			}
			return a.emit(cmd.OutOrStdout(), render.RepoStatus(status), status)
		},
	}
}

func newFailedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List failed builds across all repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			builds := a.engine.FailedBuilds(days)
			return a.emit(cmd.OutOrStdout(), render.FailedBuilds(days, builds), builds)
		},
	}
	cmd.Flags().Int("days", analytics.DefaultFailedBuildsDays, "Look-back window in days")
	return cmd
}

func newFailureRateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failure-rate <repo>",
		Short: "Failure rate over a repository's most recent builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lastN, _ := cmd.Flags().GetInt("last")
			rate, err := a.engine.RepoFailureRate(args[0], lastN)
			if err != nil {
				return notFound(args[0], err)
			}
			return a.emit(cmd.OutOrStdout(), render.FailureRate(rate), rate)
		},
	}
	cmd.Flags().Int("last", analytics.DefaultFailureRateLastN, "Number of most recent builds to evaluate")
	return cmd
}

func newFlakyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flaky",
		Short: "List repositories with both passing and failing builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			flaky := a.engine.FlakyRepos(days)
			return a.emit(cmd.OutOrStdout(), render.FlakyRepos(days, flaky), flaky)
		},
	}
	cmd.Flags().Int("days", analytics.DefaultFlakyDays, "Look-back window in days")
	return cmd
}

func newOverviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Aggregate build health across all repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			staleDays := daysFlag(cmd, "stale-days", a.cfg.StaleDays)
			overview := a.engine.BuildHealthOverview(staleDays)
			return a.emit(cmd.OutOrStdout(), render.Overview(overview), overview)
		},
	}
	cmd.Flags().Int("stale-days", analytics.DefaultStaleDays, "Days without a build to count as stale (default: stale_days from config)")
	return cmd
}
