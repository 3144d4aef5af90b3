package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/render"
	"ci-build-watcher/src/store"
)

func (s *Server) handleListRepos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(render.Repositories(s.store.ListRepositories())), nil
}

func (s *Server) handleListBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoName := request.GetString("repoName", "")
	if repoName == "" {
		return mcp.NewToolResultError("repoName parameter is required"), nil
	}

	return mcp.NewToolResultText(render.Builds(repoName, s.engine.ListBuilds(repoName))), nil
}

func (s *Server) handleGetStaleRepos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := request.GetInt("days", s.staleDays)
	return mcp.NewToolResultText(render.StaleRepositories(days, s.store.StaleRepositories(days))), nil
}

func (s *Server) handleGetRepoStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoName := request.GetString("repoName", "")
	if repoName == "" {
		return mcp.NewToolResultError("repoName parameter is required"), nil
	}

	status, err := s.engine.RepoStatus(repoName)
	if err != nil {
		return s.lookupFailure(repoName, err), nil
	}
	return mcp.NewToolResultText(render.RepoStatus(status)), nil
}

func (s *Server) handleGetFailedBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := request.GetInt("days", analytics.DefaultFailedBuildsDays)
	return mcp.NewToolResultText(render.FailedBuilds(days, s.engine.FailedBuilds(days))), nil
}

func (s *Server) handleGetRepoFailureRate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoName := request.GetString("repoName", "")
	if repoName == "" {
		return mcp.NewToolResultError("repoName parameter is required"), nil
	}
	lastN := request.GetInt("lastN", analytics.DefaultFailureRateLastN)

	rate, err := s.engine.RepoFailureRate(repoName, lastN)
	if err != nil {
		return s.lookupFailure(repoName, err), nil
	}
	return mcp.NewToolResultText(render.FailureRate(rate)), nil
}

func (s *Server) handleGetFlakyRepos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := request.GetInt("days", analytics.DefaultFlakyDays)
	return mcp.NewToolResultText(render.FlakyRepos(days, s.engine.FlakyRepos(days))), nil
}

func (s *Server) handleGetBuildHealthOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	staleDays := request.GetInt("staleDays", s.staleDays)
	return mcp.NewToolResultText(render.Overview(s.engine.BuildHealthOverview(staleDays))), nil
}

// lookupFailure turns a repository lookup error into a tool result. An unknown
// repository is an ordinary answer, not a tool failure.
func (s *Server) lookupFailure(repoName string, err error) *mcp.CallToolResult {
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultText(render.NotFound(repoName))
	}
	s.log.Error("Lookup of %s failed: %v", repoName, err)
	return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err))
}
