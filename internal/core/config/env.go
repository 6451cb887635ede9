package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SYMINDEX_[SECTION]_[KEY] (e.g., SYMINDEX_INDEX_BATCH_SIZE).
func ApplyEnvOverrides(cfg *Config) {
	// Index
	setEnvString(&cfg.Index.StorageDir, "SYMINDEX_INDEX_STORAGE_DIR")
	setEnvInt(&cfg.Index.BatchSize, "SYMINDEX_INDEX_BATCH_SIZE")
	setEnvDuration(&cfg.Index.TimeBudget, "SYMINDEX_INDEX_TIME_BUDGET")
	setEnvInt(&cfg.Index.PendingBatch, "SYMINDEX_INDEX_PENDING_BATCH")
	setEnvString(&cfg.Index.Fingerprint, "SYMINDEX_INDEX_FINGERPRINT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "SYMINDEX_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.Rate, "SYMINDEX_WATCH_RATE")
	setEnvInt(&cfg.Watch.Burst, "SYMINDEX_WATCH_BURST")

	// History
	setEnvBool(&cfg.History.Enabled, "SYMINDEX_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "SYMINDEX_HISTORY_PATH")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "SYMINDEX_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "SYMINDEX_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
