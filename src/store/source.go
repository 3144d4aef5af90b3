package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ci-build-watcher/src/contracts"
)

// ErrEmptySnapshot is returned by sources that load successfully but hold no
// repositories.
var ErrEmptySnapshot = errors.New("snapshot contains no repositories")

// Source loads a repository snapshot.
type Source interface {
	// Name describes the source for log messages.
	Name() string

	// Load reads every repository with its builds.
	Load(ctx context.Context) ([]contracts.Repository, error)
}

// FileSource reads a snapshot from a JSON or YAML file. The format is chosen by
// extension: .yaml and .yml are YAML, anything else is JSON.
type FileSource struct {
	Path string
}

// Name returns the file path.
func (f FileSource) Name() string {
	return f.Path
}

// Load reads and decodes the file.
func (f FileSource) Load(ctx context.Context) ([]contracts.Repository, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var file snapshotFile
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", f.Path, err)
	}

	return file.repositories()
}

// snapshotFile is the on-disk shape:
// {"repositories": [{"name", "lastBuildAt", "lastBuildStatus", "builds": [...]}]}.
type snapshotFile struct {
	Repositories []repositoryRecord `json:"repositories" yaml:"repositories"`
}

type repositoryRecord struct {
	Name            string        `json:"name" yaml:"name"`
	LastBuildAt     timestamp     `json:"lastBuildAt" yaml:"lastBuildAt"`
	LastBuildStatus string        `json:"lastBuildStatus" yaml:"lastBuildStatus"`
	Builds          []buildRecord `json:"builds" yaml:"builds"`
}

type buildRecord struct {
	BuildNumber int        `json:"buildNumber" yaml:"buildNumber"`
	StartedAt   timestamp  `json:"startedAt" yaml:"startedAt"`
	FinishedAt  *timestamp `json:"finishedAt" yaml:"finishedAt"`
	Status      string     `json:"status" yaml:"status"`
}

func (f snapshotFile) repositories() ([]contracts.Repository, error) {
	if len(f.Repositories) == 0 {
		return nil, ErrEmptySnapshot
	}

	repos := make([]contracts.Repository, 0, len(f.Repositories))
	for _, rec := range f.Repositories {
		repo := contracts.Repository{
			Name:            strings.TrimSpace(rec.Name),
			LastBuildAt:     rec.LastBuildAt.Time,
			LastBuildStatus: contracts.ParseStatus(rec.LastBuildStatus),
			Builds:          make([]contracts.Build, 0, len(rec.Builds)),
		}
		for _, b := range rec.Builds {
			build := contracts.Build{
				RepoName:  repo.Name,
				Number:    b.BuildNumber,
				StartedAt: b.StartedAt.Time,
				Status:    contracts.ParseStatus(b.Status),
				RawStatus: b.Status,
			}
			if b.FinishedAt != nil && !b.FinishedAt.IsZero() {
				finished := b.FinishedAt.Time
				build.FinishedAt = &finished
			}
			repo.Builds = append(repo.Builds, build)
		}
		repos = append(repos, repo)
	}

	if err := validateRepositories(repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// validateRepositories rejects snapshots with blank or duplicate names.
func validateRepositories(repos []contracts.Repository) error {
	seen := make(map[string]bool, len(repos))
	for i, repo := range repos {
		if repo.Name == "" {
			return fmt.Errorf("repository %d has no name", i)
		}
		key := strings.ToLower(repo.Name)
		if seen[key] {
			return fmt.Errorf("duplicate repository name %q", repo.Name)
		}
		seen[key] = true
	}
	return nil
}

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// timestamp accepts RFC 3339 as well as zone-less timestamps.
type timestamp struct {
	time.Time
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("timestamp must be a scalar, line %d", node.Line)
	}
	if node.Tag == "!!null" {
		return nil
	}
	parsed, err := parseTimestamp(node.Value)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
