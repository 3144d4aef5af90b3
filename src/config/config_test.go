package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() unexpected error: %v", err)
		}

		if cfg.DataPath != DefaultDataPath {
			t.Errorf("DataPath = %q, want %q", cfg.DataPath, DefaultDataPath)
		}
		if cfg.Fallback != FallbackSeed {
			t.Errorf("Fallback = %q, want %q", cfg.Fallback, FallbackSeed)
		}
		if cfg.StaleDays != DefaultStaleDays {
			t.Errorf("StaleDays = %d, want %d", cfg.StaleDays, DefaultStaleDays)
		}
		if cfg.ReportTopic != DefaultReportTopic {
			t.Errorf("ReportTopic = %q, want %q", cfg.ReportTopic, DefaultReportTopic)
		}
		if len(cfg.RedpandaBrokers) != 0 {
			t.Errorf("RedpandaBrokers = %v, want none", cfg.RedpandaBrokers)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("BUILDWATCH_DATA_PATH", "/srv/ci.yaml")
		t.Setenv("BUILDWATCH_FALLBACK", "EMPTY")
		t.Setenv("BUILDWATCH_STALE_DAYS", "21")
		t.Setenv("BUILDWATCH_LOG_LEVEL", "debug")
		t.Setenv("BUILDWATCH_REDPANDA_BROKERS", "localhost:19092, localhost:29092")

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() unexpected error: %v", err)
		}

		if cfg.DataPath != "/srv/ci.yaml" {
			t.Errorf("DataPath = %q, want %q", cfg.DataPath, "/srv/ci.yaml")
		}
		if cfg.Fallback != FallbackEmpty {
			t.Errorf("Fallback = %q, want %q", cfg.Fallback, FallbackEmpty)
		}
		if cfg.StaleDays != 21 {
			t.Errorf("StaleDays = %d, want 21", cfg.StaleDays)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		want := []string{"localhost:19092", "localhost:29092"}
		if !reflect.DeepEqual(cfg.RedpandaBrokers, want) {
			t.Errorf("RedpandaBrokers = %v, want %v", cfg.RedpandaBrokers, want)
		}
	})

	t.Run("invalid fallback", func(t *testing.T) {
		t.Setenv("BUILDWATCH_FALLBACK", "random")

		if _, err := LoadFromEnv(); err == nil {
			t.Error("LoadFromEnv() expected error for invalid fallback, got nil")
		}
	})

	t.Run("invalid stale days", func(t *testing.T) {
		t.Setenv("BUILDWATCH_STALE_DAYS", "0")

		if _, err := LoadFromEnv(); err == nil {
			t.Error("LoadFromEnv() expected error for zero stale days, got nil")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("BUILDWATCH_LOG_LEVEL", "trace")

		if _, err := LoadFromEnv(); err == nil {
			t.Error("LoadFromEnv() expected error for unknown log level, got nil")
		}
	})
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildwatch.yaml")
	content := `data_path: fixtures/ci.json
fallback: empty
stale_days: 30
redpanda_brokers:
  - broker-1:9092
  - broker-2:9092
report_topic: health
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.DataPath != "fixtures/ci.json" {
		t.Errorf("DataPath = %q, want %q", cfg.DataPath, "fixtures/ci.json")
	}
	if cfg.Fallback != FallbackEmpty {
		t.Errorf("Fallback = %q, want %q", cfg.Fallback, FallbackEmpty)
	}
	if cfg.StaleDays != 30 {
		t.Errorf("StaleDays = %d, want 30", cfg.StaleDays)
	}
	if cfg.ReportTopic != "health" {
		t.Errorf("ReportTopic = %q, want %q", cfg.ReportTopic, "health")
	}
	want := []string{"broker-1:9092", "broker-2:9092"}
	if !reflect.DeepEqual(cfg.RedpandaBrokers, want) {
		t.Errorf("RedpandaBrokers = %v, want %v", cfg.RedpandaBrokers, want)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildwatch.yaml")
	if err := os.WriteFile(path, []byte("stale_days: 30\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BUILDWATCH_STALE_DAYS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.StaleDays != 7 {
		t.Errorf("StaleDays = %d, want 7", cfg.StaleDays)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing config file, got nil")
	}
}
