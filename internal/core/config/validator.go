package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validateIndex(cfg *Config) error {
	if cfg.Index.BatchSize < 0 {
		return fmt.Errorf("index.batch_size must be > 0, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.PendingBatch < 0 {
		return fmt.Errorf("index.pending_batch must be > 0, got %d", cfg.Index.PendingBatch)
	}
	if cfg.Index.TimeBudget < 0 {
		return fmt.Errorf("index.time_budget must be positive, got %s", cfg.Index.TimeBudget)
	}
	switch cfg.Index.Fingerprint {
	case FingerprintMtime, FingerprintContent:
	default:
		return fmt.Errorf("index.fingerprint must be one of: %s, %s", FingerprintMtime, FingerprintContent)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if err := validateGlob(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d]: %w", i, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if err := validateGlob(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d]: %w", i, err)
		}
	}
	return nil
}

func validateGlob(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	if _, err := glob.Compile(pattern); err != nil {
		return fmt.Errorf("invalid glob %q: %w", pattern, err)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be positive, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.Rate < 0 {
		return fmt.Errorf("watch.rate must be positive, got %v", cfg.Watch.Rate)
	}
	if cfg.Watch.Burst < 0 {
		return fmt.Errorf("watch.burst must be positive, got %d", cfg.Watch.Burst)
	}
	return nil
}
