package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `feed:
  api_access_code: "secret"
storage:
  backend: memory
tracker:
  interval_seconds: 15
training:
  trainer:
    min_samples: 30
events:
  nats:
    enabled: true
    url: "nats://broker:4222"
metrics:
  prometheus_enabled: true
api:
  enabled: true
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Feed.APIAccessCode != "secret" {
		t.Fatalf("unexpected access code %q", cfg.Feed.APIAccessCode)
	}
	if cfg.Tracker.IntervalSeconds != 15 {
		t.Fatalf("interval: expected 15 got %d", cfg.Tracker.IntervalSeconds)
	}
	if cfg.Training.Trainer.MinSamples != 30 {
		t.Fatalf("min samples: expected 30 got %d", cfg.Training.Trainer.MinSamples)
	}
	if !cfg.Events.NATS.Enabled || cfg.Events.NATS.URL != "nats://broker:4222" {
		t.Fatalf("nats config %+v", cfg.Events.NATS)
	}

	// Defaults fill the rest.
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("backend: %q", cfg.Storage.Backend)
	}
	if cfg.Metrics.PrometheusPort != "9090" {
		t.Fatalf("prom port default: %q", cfg.Metrics.PrometheusPort)
	}
	if cfg.API.Port != "8080" {
		t.Fatalf("api port default: %q", cfg.API.Port)
	}
	if cfg.Training.Trainer.HoldoutFraction != 0.2 {
		t.Fatalf("holdout default: %v", cfg.Training.Trainer.HoldoutFraction)
	}
	if cfg.Training.Loader.BatchSize != 500 {
		t.Fatalf("batch size default: %d", cfg.Training.Loader.BatchSize)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FT_TRACKER__INTERVAL_SECONDS", "45")
	cfg, err := Load(writeConfig(t, "config.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tracker.IntervalSeconds != 45 {
		t.Fatalf("expected env override 45 got %d", cfg.Tracker.IntervalSeconds)
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", "x = 1")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestLoadRejectsMissingAccessCode(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.yaml", "storage:\n  backend: memory\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRejectsBadStorageBackend(t *testing.T) {
	data := "feed:\n  api_access_code: x\nstorage:\n  backend: cassandra\n"
	if _, err := Load(writeConfig(t, "config.yaml", data)); err == nil {
		t.Fatal("expected storage validation error")
	}
}

func TestLoadRequiresPostgresDSN(t *testing.T) {
	data := "feed:\n  api_access_code: x\nstorage:\n  backend: postgres\n"
	if _, err := Load(writeConfig(t, "config.yaml", data)); err == nil {
		t.Fatal("expected dsn validation error")
	}
}

func TestLoadTooFrequentInterval(t *testing.T) {
	data := "feed:\n  api_access_code: x\ntracker:\n  interval_seconds: 1\n"
	if _, err := Load(writeConfig(t, "config.yaml", data)); err == nil {
		t.Fatal("expected interval validation error")
	}
}
