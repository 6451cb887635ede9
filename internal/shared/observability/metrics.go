package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "symindex_extract_seconds",
		Help:    "Time spent extracting symbols from a single source text.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ExtractPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symindex_extract_panics_total",
		Help: "Total number of extractor panics recovered at the registry boundary.",
	}, []string{"language"})

	IndexSymbols = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symindex_symbols_total",
		Help: "Number of symbols currently held in the in-memory store.",
	})

	IndexedFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symindex_indexed_files_total",
		Help: "Total number of files indexed by build, update and pending cycles.",
	})

	BuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "symindex_build_seconds",
		Help:    "Time spent in one bounded build cycle.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	PendingQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symindex_pending_files",
		Help: "Current number of files waiting in the pending queue.",
	})

	LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "symindex_lookup_seconds",
		Help:    "Latency of symbol lookups.",
		Buckets: prometheus.DefBuckets,
	})

	LookupResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "symindex_lookup_results",
		Help:    "Number of symbols returned per lookup.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	StorageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symindex_storage_errors_total",
		Help: "Total number of persistence failures by artifact.",
	}, []string{"artifact"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symindex_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
