package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-insights/internal/calc"
	"energy-insights/internal/dashboard"
	"energy-insights/internal/fetcher"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults should load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" || cfg.API.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected api defaults %+v", cfg.API)
	}
	if cfg.Thresholds.KWHPerTonne != 675 || cfg.Thresholds.SpecificConsumption != 1020 {
		t.Fatalf("unexpected thresholds %+v", cfg.Thresholds)
	}
	opts := cfg.SessionOptions()
	if opts.Selection.AvgMode != dashboard.ModeCombined || opts.Selection.Metric != calc.MetricConsumption {
		t.Fatalf("unexpected selection %+v", opts.Selection)
	}
	if opts.Selection.Day != "2024-07-30" || opts.Selection.Department != "Melting" {
		t.Fatalf("unexpected selection %+v", opts.Selection)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
api:
  base_url: http://plant.local/api
  paths:
    time_zone: v2/TimeZone
selection:
  avg_mode: IF2
  metric: F_F
refresh:
  interval: 1m
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENERGYDASH_THRESHOLDS_KWH_PER_TONNE", "700")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Thresholds.KWHPerTonne != 700 {
		t.Fatalf("env override ignored: %v", cfg.Thresholds.KWHPerTonne)
	}
	if cfg.Refresh.Interval != time.Minute {
		t.Fatalf("refresh interval = %v", cfg.Refresh.Interval)
	}
	opts := cfg.FetcherOptions()
	if opts.Paths[fetcher.ResourceTimeZone] != "v2/TimeZone" || opts.Paths[fetcher.ResourceAverageKWH] != "" {
		t.Fatalf("paths not mapped: %+v", opts.Paths)
	}
	if sel := cfg.SessionOptions().Selection; sel.AvgMode != dashboard.ModeIF2 || sel.Metric != calc.MetricPowerFactor {
		t.Fatalf("selection not mapped: %+v", sel)
	}
}

func TestValidateRejectsBadSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("selection:\n  avg_mode: IF9\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("unknown avg mode should fail validation")
	}
}
