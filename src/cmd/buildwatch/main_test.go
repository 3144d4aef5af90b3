package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ci-build-watcher/src/analytics"
)

// execute runs the root command and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSnapshot(t *testing.T) string {
	t.Helper()

	now := time.Now().UTC()
	ts := func(daysAgo int) string {
		return now.Add(-time.Duration(daysAgo) * 24 * time.Hour).Format(time.RFC3339)
	}

	snapshot := map[string]any{
		"repositories": []map[string]any{
			{
				"name": "api", "lastBuildAt": ts(1), "lastBuildStatus": "Success",
				"builds": []map[string]any{
					{"buildNumber": 7, "startedAt": ts(1), "finishedAt": ts(1), "status": "Success"},
					{"buildNumber": 6, "startedAt": ts(2), "finishedAt": ts(2), "status": "Failed"},
					{"buildNumber": 5, "startedAt": ts(3), "finishedAt": ts(3), "status": "Failed"},
				},
			},
			{
				"name": "legacy", "lastBuildAt": ts(40), "lastBuildStatus": "Success",
				"builds": []map[string]any{
					{"buildNumber": 1, "startedAt": ts(40), "finishedAt": ts(40), "status": "Success"},
				},
			},
		},
	}

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ci_data.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRepos(t *testing.T) {
	data := writeSnapshot(t)

	stdout, stderr, err := execute(t, "repos", "--data", data)
	require.NoError(t, err)

	assert.Contains(t, stdout, "📦 Repositories")
	assert.Contains(t, stdout, "api | Last build: ")
	assert.Contains(t, stdout, "legacy | Last build: ")
	assert.Contains(t, stderr, "Loaded 2 repositories and 4 builds")
}

func TestMissingDataFallsBackToSeed(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")

	stdout, stderr, err := execute(t, "repos", "--data", missing)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Could not load CI data")
	assert.Contains(t, stderr, "Using seed fallback data: 7 repositories, 10 builds")
	assert.Contains(t, stdout, "PaymentService")
}

func TestEmptyFallback(t *testing.T) {
	t.Setenv("BUILDWATCH_FALLBACK", "empty")
	missing := filepath.Join(t.TempDir(), "missing.json")

	stdout, _, err := execute(t, "repos", "--data", missing)
	require.NoError(t, err)
	assert.Equal(t, "No repositories found.\n", stdout)
}

func TestQueries(t *testing.T) {
	data := writeSnapshot(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"builds", []string{"builds", "API"}, []string{"🛠 Builds for API", "#7 | Success", "#5 | Failed"}},
		{"stale", []string{"stale"}, []string{"legacy | Last build: "}},
		{"status", []string{"status", "api"}, []string{"Builds: 3 total, 2 failed", "Stale: no"}},
		{"failed", []string{"failed", "--days", "30"}, []string{"api #6 | Failed", "api #5 | Failed"}},
		{"failure rate", []string{"failure-rate", "api", "--last", "3"}, []string{"Failure rate: 66.7%"}},
		{"flaky", []string{"flaky"}, []string{"api | Failures: 2 | Successes: 1 | Builds: 3"}},
		{"overview", []string{"overview", "--stale-days", "30"}, []string{"Repositories: 2", "Stale repositories (> 30 days): 1", "1. api (2 failures)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append(tt.args, "--data", data)...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, stdout, want)
			}
		})
	}
}

func TestStatusNotFound(t *testing.T) {
	data := writeSnapshot(t)

	_, _, err := execute(t, "status", "Ghost", "--data", data)
	require.Error(t, err)
	assert.Equal(t, "Repository 'Ghost' not found.", err.Error())

	_, _, err = execute(t, "failure-rate", "Ghost", "--data", data)
	assert.EqualError(t, err, "Repository 'Ghost' not found.")
}

func TestJSONOutput(t *testing.T) {
	data := writeSnapshot(t)

	stdout, _, err := execute(t, "failure-rate", "api", "--data", data, "--json")
	require.NoError(t, err)

	var rate analytics.FailureRate
	require.NoError(t, json.Unmarshal([]byte(stdout), &rate))
	assert.Equal(t, "api", rate.Repository)
	assert.Equal(t, 3, rate.Total)
	assert.Equal(t, 2, rate.Failures)
	assert.Equal(t, 66.7, rate.Rate)
}

func TestPublishDryRun(t *testing.T) {
	data := writeSnapshot(t)

	stdout, stderr, err := execute(t, "publish", "--dry-run", "--topic", "health", "--data", data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)

	var keys []string
	for _, line := range lines {
		fields := strings.SplitN(line, " ", 3)
		require.Len(t, fields, 3)
		assert.Equal(t, "health", fields[0])
		assert.True(t, json.Valid([]byte(fields[2])), "record is not JSON: %s", fields[2])
		keys = append(keys, fields[1])
	}
	assert.ElementsMatch(t, []string{"overview", "flaky", "failed"}, keys)
	assert.Contains(t, stderr, "Published 3 reports to topic health")
}

func TestPublishRequiresBrokers(t *testing.T) {
	data := writeSnapshot(t)

	_, _, err := execute(t, "publish", "--data", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one broker address is required")
}

func TestPublishUnreachableBroker(t *testing.T) {
	data := writeSnapshot(t)

	_, stderr, err := execute(t, "publish", "--brokers", "127.0.0.1:1", "--topic", "health", "--timeout", "200ms", "--data", data)
	require.Error(t, err)
	assert.Contains(t, stderr, "Publishing reports to topic health via 127.0.0.1:1")
	assert.Contains(t, err.Error(), "failed to publish")
}

func TestStaleDaysFromEnvironment(t *testing.T) {
	t.Setenv("BUILDWATCH_STALE_DAYS", "30")
	data := writeSnapshot(t)

	stdout, _, err := execute(t, "stale", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no builds in > 30 days")
	assert.Contains(t, stdout, "legacy")

	stdout, _, err = execute(t, "overview", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stale repositories (> 30 days): 1")
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("BUILDWATCH_FALLBACK", "bogus")

	_, _, err := execute(t, "repos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback must be")
}

func TestConfigFile(t *testing.T) {
	data := writeSnapshot(t)
	cfgPath := filepath.Join(t.TempDir(), "buildwatch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data_path: "+data+"\nstale_days: 30\n"), 0o600))

	stdout, _, err := execute(t, "stale", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "no builds in > 30 days")
	assert.Contains(t, stdout, "legacy")
}
