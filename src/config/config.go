// Package config provides configuration management for the build watcher.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Fallback modes applied when the snapshot source cannot be loaded.
const (
	FallbackSeed  = "seed"
	FallbackEmpty = "empty"
)

// Default values applied when neither the config file nor the environment sets them.
const (
	DefaultDataPath    = "data/ci_data.json"
	DefaultStaleDays   = 14
	DefaultLogLevel    = "info"
	DefaultReportTopic = "ci_build_health"
)

// EnvPrefix is prepended to every environment variable, e.g. BUILDWATCH_DATA_PATH.
const EnvPrefix = "BUILDWATCH"

// Config holds the application configuration.
type Config struct {
	// DataPath is the JSON or YAML snapshot file.
	DataPath string
	// PostgresDSN, when set, replaces DataPath as the snapshot source.
	PostgresDSN string
	// Fallback selects the dataset used when the source fails: seed or empty.
	Fallback string
	// StaleDays is the default staleness threshold for CLI queries.
	StaleDays int
	// LogLevel is info or debug.
	LogLevel string
	// RedpandaBrokers are the seed brokers used by the publish command.
	RedpandaBrokers []string
	// ReportTopic is the topic health reports are published to.
	ReportTopic string
}

// Load reads configuration from defaults, the optional YAML file at path, and
// BUILDWATCH_* environment variables, in increasing order of precedence.
// An empty path skips the config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{
		DataPath:        v.GetString("data_path"),
		PostgresDSN:     v.GetString("postgres_dsn"),
		Fallback:        strings.ToLower(v.GetString("fallback")),
		StaleDays:       v.GetInt("stale_days"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		RedpandaBrokers: splitList(v.GetStringSlice("redpanda_brokers")),
		ReportTopic:     v.GetString("report_topic"),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", DefaultDataPath)
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("fallback", FallbackSeed)
	v.SetDefault("stale_days", DefaultStaleDays)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("redpanda_brokers", "")
	v.SetDefault("report_topic", DefaultReportTopic)
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Fallback != FallbackSeed && cfg.Fallback != FallbackEmpty {
		errs = append(errs, fmt.Errorf("fallback must be %q or %q, got %q", FallbackSeed, FallbackEmpty, cfg.Fallback))
	}
	if cfg.StaleDays <= 0 {
		errs = append(errs, fmt.Errorf("stale_days must be positive, got %d", cfg.StaleDays))
	}
	if cfg.LogLevel != "info" && cfg.LogLevel != "debug" {
		errs = append(errs, fmt.Errorf("log_level must be info or debug, got %q", cfg.LogLevel))
	}
	if cfg.DataPath == "" && cfg.PostgresDSN == "" {
		errs = append(errs, errors.New("one of data_path or postgres_dsn is required"))
	}

	return errors.Join(errs...)
}

// splitList accepts either a YAML list or a comma-separated string, dropping blanks.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
