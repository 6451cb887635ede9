package config

import (
	"testing"
	"time"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SYMINDEX_INDEX_BATCH_SIZE", "7")
	t.Setenv("SYMINDEX_INDEX_TIME_BUDGET", "3s")
	t.Setenv("SYMINDEX_INDEX_FINGERPRINT", "content")
	t.Setenv("SYMINDEX_WATCH_RATE", "0.5")
	t.Setenv("SYMINDEX_HISTORY_ENABLED", "FALSE")
	t.Setenv("SYMINDEX_OBSERVABILITY_METRICS_ADDR", "127.0.0.1:9100")
	t.Setenv("SYMINDEX_WATCH_BURST", "not-a-number")

	cfg := &Config{Watch: Watch{Burst: 3}}
	ApplyEnvOverrides(cfg)

	if cfg.Index.BatchSize != 7 {
		t.Errorf("expected batch size 7, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.TimeBudget != 3*time.Second {
		t.Errorf("expected time budget 3s, got %s", cfg.Index.TimeBudget)
	}
	if cfg.Index.Fingerprint != FingerprintContent {
		t.Errorf("expected content fingerprint, got %q", cfg.Index.Fingerprint)
	}
	if cfg.Watch.Rate != 0.5 {
		t.Errorf("expected rate 0.5, got %v", cfg.Watch.Rate)
	}
	if cfg.Watch.Burst != 3 {
		t.Errorf("invalid burst override should be ignored, got %d", cfg.Watch.Burst)
	}
	if cfg.History.Enabled {
		t.Error("expected history disabled by override")
	}
	if cfg.Observability.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("unexpected metrics addr %q", cfg.Observability.MetricsAddr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SYMINDEX_HOME", t.TempDir())
	t.Setenv("SYMINDEX_INDEX_BATCH_SIZE", "3")
	cfg, err := Load(writeConfig(t, "[index]\nbatch_size = 10\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Index.BatchSize != 3 {
		t.Errorf("expected env override to win, got %d", cfg.Index.BatchSize)
	}
}
