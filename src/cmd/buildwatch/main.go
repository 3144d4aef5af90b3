// Package main provides the buildwatch CLI: build-health queries over a CI
// snapshot, an MCP server, a terminal dashboard and report publishing.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ci-build-watcher/src/analytics"
	"ci-build-watcher/src/config"
	"ci-build-watcher/src/logger"
	"ci-build-watcher/src/store"
)

// app carries the state shared by every subcommand once the root command has
// loaded configuration and the snapshot.
type app struct {
	configPath string
	dataPath   string
	verbose    bool
	jsonOutput bool

	cfg    *config.Config
	log    logger.Logger
	store  *store.InMemoryStore
	engine *analytics.Engine
}

// quietCommands do not log to the terminal while loading.
var quietCommands = map[string]bool{
	"dashboard": true,
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "buildwatch",
		Short: "buildwatch - CI build health reporting",
		Long: `buildwatch answers build-health questions about a snapshot of CI
repositories and their builds: which repositories are stale, which builds
failed recently, how often a repository fails and which ones are flaky.

The snapshot is read once at startup from a JSON/YAML file or Postgres.
When it cannot be loaded a built-in demo dataset is used instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c, ok := a.log.(*logger.ConsoleLogger); ok {
				_ = c.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&a.dataPath, "data", "", "Snapshot file (JSON or YAML); overrides data_path")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.jsonOutput, "json", false, "Print reports as JSON")

	rootCmd.AddCommand(
		newServeCmd(a),
		newReposCmd(a),
		newBuildsCmd(a),
		newStaleCmd(a),
		newStatusCmd(a),
		newFailedCmd(a),
		newFailureRateCmd(a),
		newFlakyCmd(a),
		newOverviewCmd(a),
		newDashboardCmd(a),
		newPublishCmd(a),
	)

	return rootCmd
}

// setup loads configuration, creates the logger and opens the snapshot.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.dataPath != "" {
		cfg.DataPath = a.dataPath
		cfg.PostgresDSN = ""
	}
	a.cfg = cfg

	debug, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if quietCommands[cmd.Name()] {
		a.log = logger.NewSilentLogger()
	} else {
		a.log = logger.NewConsoleLogger(cmd.ErrOrStderr(), debug || a.verbose)
	}

	a.store = store.Open(cmd.Context(), a.source(), store.FallbackMode(cfg.Fallback), a.log)
	a.engine = analytics.NewEngine(a.store)

	return nil
}

// loadConfig reads the --config file when given, the environment otherwise.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		return config.LoadFromEnv()
	}
	return config.Load(a.configPath)
}

// source picks Postgres when a DSN is configured, the snapshot file otherwise.
func (a *app) source() store.Source {
	if a.cfg.PostgresDSN != "" {
		return store.PostgresSource{DSN: a.cfg.PostgresDSN}
	}
	return store.FileSource{Path: a.cfg.DataPath}
}

// emit prints v as indented JSON in --json mode and text otherwise.
func (a *app) emit(w io.Writer, text string, v any) error {
	if !a.jsonOutput {
		_, err := fmt.Fprintln(w, strings.TrimRight(text, "\n"))
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
