package main

import (
	"github.com/spf13/cobra"

	"ci-build-watcher/src/mcp"
	"ci-build-watcher/src/tui"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve build-health tools over MCP (stdio)",
		Long: `Runs a Model Context Protocol server on stdin/stdout exposing every
build-health query as a tool. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcp.NewServer(a.store, a.engine, a.log, mcp.WithStaleDays(a.cfg.StaleDays)).Run()
		},
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Browse repositories and their reports in a terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.store, a.engine, tui.WithStaleDays(a.cfg.StaleDays))
		},
	}
}
