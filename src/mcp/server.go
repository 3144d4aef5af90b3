// Package mcp exposes the build-health queries as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/logger"
	"ci-build-watcher/src/store"
)

const (
	serverName    = "ci-build-watcher"
	serverVersion = "1.0.0"
)

// Server is the MCP server for the build watcher.
type Server struct {
	mcpServer *server.MCPServer
	store     store.Store
	engine    *analytics.Engine
	log       logger.Logger
	tools     []string

	// staleDays is the default threshold for get_stale_repos and
	// get_build_health_overview.
	staleDays int
}

// Option configures a Server.
type Option func(*Server)

// WithStaleDays sets the staleness threshold used when a tool call omits it.
func WithStaleDays(days int) Option {
	return func(s *Server) {
		s.staleDays = days
	}
}

// NewServer creates an MCP server answering from st through engine.
func NewServer(st store.Store, engine *analytics.Engine, log logger.Logger, opts ...Option) *Server {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: s,
		store:     st,
		engine:    engine,
		log:       log,
		staleDays: analytics.DefaultStaleDays,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	s.addTool(mcp.NewTool("list_repos",
		mcp.WithDescription("Lists all repositories and their last build status."),
	), s.handleListRepos)

	s.addTool(mcp.NewTool("list_builds",
		mcp.WithDescription("Lists recent builds for the given repository."),
		mcp.WithString("repoName",
			mcp.Required(),
			mcp.Description("Name of the repository"),
		),
	), s.handleListBuilds)

	s.addTool(mcp.NewTool("get_stale_repos",
		mcp.WithDescription(fmt.Sprintf("Finds repositories that haven't had a build in the last N days (default %d).", s.staleDays)),
		mcp.WithNumber("days",
			mcp.Description("Number of days without builds to consider stale"),
			mcp.DefaultNumber(float64(s.staleDays)),
		),
	), s.handleGetStaleRepos)

	s.addTool(mcp.NewTool("get_repo_status",
		mcp.WithDescription("Summarizes a repository: last build, build and failure counts, build durations and whether it is stale."),
		mcp.WithString("repoName",
			mcp.Required(),
			mcp.Description("Name of the repository"),
		),
	), s.handleGetRepoStatus)

	s.addTool(mcp.NewTool("get_failed_builds",
		mcp.WithDescription("Lists failed builds across all repositories in the last N days (default 30), most recent first."),
		mcp.WithNumber("days",
			mcp.Description("Look-back window in days"),
			mcp.DefaultNumber(analytics.DefaultFailedBuildsDays),
		),
	), s.handleGetFailedBuilds)

	s.addTool(mcp.NewTool("get_repo_failure_rate",
		mcp.WithDescription("Computes the failure rate over the last N builds (default 10) of a repository."),
		mcp.WithString("repoName",
			mcp.Required(),
			mcp.Description("Name of the repository"),
		),
		mcp.WithNumber("lastN",
			mcp.Description("Number of most recent builds to evaluate"),
			mcp.DefaultNumber(analytics.DefaultFailureRateLastN),
		),
	), s.handleGetRepoFailureRate)

	s.addTool(mcp.NewTool("get_flaky_repos",
		mcp.WithDescription("Finds repositories with both successful and failed builds in the last N days (default 30)."),
		mcp.WithNumber("days",
			mcp.Description("Look-back window in days"),
			mcp.DefaultNumber(analytics.DefaultFlakyDays),
		),
	), s.handleGetFlakyRepos)

	s.addTool(mcp.NewTool("get_build_health_overview",
		mcp.WithDescription("Aggregate build health: repository and build counts, failures, stale repositories and the top failing repositories."),
		mcp.WithNumber("staleDays",
			mcp.Description("Days without builds to consider a repository stale"),
			mcp.DefaultNumber(float64(s.staleDays)),
		),
	), s.handleGetBuildHealthOverview)
}

// addTool registers a tool with call logging.
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	name := tool.Name
	s.tools = append(s.tools, name)
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.log.Debug("Tool %s called with %v", name, request.GetArguments())
		return handler(ctx, request)
	})
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	s.log.Info("Serving %d tools over stdio as %s %s", len(s.tools), serverName, serverVersion)
	return server.ServeStdio(s.mcpServer)
}
