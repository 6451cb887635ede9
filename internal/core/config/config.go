package config

import "time"

const (
	FingerprintMtime   = "mtime"
	FingerprintContent = "content"
)

type Config struct {
	Index         Index         `toml:"index"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Index struct {
	StorageDir   string        `toml:"storage_dir"`
	BatchSize    int           `toml:"batch_size"`
	TimeBudget   time.Duration `toml:"time_budget"`
	PendingBatch int           `toml:"pending_batch"`
	Fingerprint  string        `toml:"fingerprint"`
}

// Exclude extends the built-in exclusion rules. Entries are glob patterns
// matched against the base name.
type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Rate     float64       `toml:"rate"`
	Burst    int           `toml:"burst"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}
