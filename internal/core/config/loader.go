package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBatchSize    = 100
	DefaultTimeBudget   = 1000 * time.Millisecond
	DefaultPendingBatch = 100
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validateIndex(&cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{History: History{Enabled: true}}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Index.StorageDir) == "" {
		cfg.Index.StorageDir = defaultStorageDir()
	}
	cfg.Index.StorageDir = expandHome(cfg.Index.StorageDir)
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = DefaultBatchSize
	}
	if cfg.Index.TimeBudget == 0 {
		cfg.Index.TimeBudget = DefaultTimeBudget
	}
	if cfg.Index.PendingBatch == 0 {
		cfg.Index.PendingBatch = DefaultPendingBatch
	}
	cfg.Index.Fingerprint = strings.ToLower(strings.TrimSpace(cfg.Index.Fingerprint))
	if cfg.Index.Fingerprint == "" {
		cfg.Index.Fingerprint = FingerprintMtime
	}

	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.Rate == 0 {
		cfg.Watch.Rate = 2
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 1
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = filepath.Join(cfg.Index.StorageDir, "history.db")
	}
	cfg.History.Path = expandHome(cfg.History.Path)
}

func defaultStorageDir() string {
	if dir := strings.TrimSpace(os.Getenv("SYMINDEX_HOME")); dir != "" {
		return filepath.Join(dir, "symbol_index")
	}
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "symindex", "symbol_index")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "symindex", "symbol_index")
	}
	return filepath.Join(home, ".local", "share", "symindex", "symbol_index")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
