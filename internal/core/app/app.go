// Package app hosts SymbolIndex, the service that owns one working
// directory's symbol index: building and resuming it, reconciling it with
// disk, overlaying open editor buffers and answering lookups.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"symindex/internal/core/config"
	"symindex/internal/core/ports"
	"symindex/internal/data/queue"
	"symindex/internal/data/registry"
	"symindex/internal/engine/changes"
	"symindex/internal/engine/extract"
	"symindex/internal/engine/symbols"
	"symindex/internal/engine/traversal"
)

// Dependencies are the collaborators a SymbolIndex talks to. Every field is
// optional.
type Dependencies struct {
	Documents  ports.DocumentHost
	Recorder   ports.BuildRecorder
	Extractors *extract.Registry
	Logger     *slog.Logger
}

type SymbolIndex struct {
	cfg        *config.Config
	registry   *registry.Registry
	walker     *traversal.Walker
	extractors *extract.Registry
	fp         changes.Fingerprinter
	docs       ports.DocumentHost
	recorder   ports.BuildRecorder
	log        *slog.Logger

	// buildMu serializes whole cycles so two triggers never interleave walks.
	buildMu sync.Mutex

	mu           sync.Mutex
	store        *symbols.Store
	fingerprints map[string]changes.Fingerprint
	files        []string
	pending      *queue.PendingQueue
	cursor       traversal.Cursor
	workingDir   string
	dirID        string
	built        bool
	// unsaved remembers the synthetic path given to each unsaved buffer id.
	unsaved map[string]string
	// shadowed holds saved paths whose symbols currently come from a buffer.
	shadowed map[string]bool
}

func New(cfg *config.Config, deps Dependencies) (*SymbolIndex, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	classifier, err := traversal.NewClassifier(cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, fmt.Errorf("build exclusion rules: %w", err)
	}
	if deps.Extractors == nil {
		deps.Extractors = extract.NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &SymbolIndex{
		cfg:          cfg,
		registry:     registry.New(cfg.Index.StorageDir),
		walker:       traversal.NewWalker(classifier),
		extractors:   deps.Extractors,
		fp:           changes.NewFingerprinter(cfg.Index.Fingerprint),
		docs:         deps.Documents,
		recorder:     deps.Recorder,
		log:          deps.Logger,
		store:        symbols.NewStore(),
		fingerprints: make(map[string]changes.Fingerprint),
		pending:      queue.NewPendingQueue(),
		unsaved:      make(map[string]string),
		shadowed:     make(map[string]bool),
	}, nil
}

// Registry exposes the directory registry backing this index.
func (s *SymbolIndex) Registry() *registry.Registry {
	return s.registry
}

func (s *SymbolIndex) IsBuilt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.built
}

func (s *SymbolIndex) WorkingDirectory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workingDir
}

// DirectoryID is empty until a build or quick build registered the working
// directory.
func (s *SymbolIndex) DirectoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirID
}

// IndexExists reports whether dir has ever been registered, without
// registering it.
func (s *SymbolIndex) IndexExists(dir string) bool {
	_, ok := s.registry.LookupID(dir)
	return ok
}

func (s *SymbolIndex) newBudget() *traversal.Budget {
	return traversal.NewBudget(s.cfg.Index.BatchSize, s.cfg.Index.TimeBudget)
}

// resetLocked drops all in-memory state. Callers hold s.mu.
func (s *SymbolIndex) resetLocked() {
	s.store.Clear()
	s.fingerprints = make(map[string]changes.Fingerprint)
	s.files = nil
	s.pending.Reset(nil)
	s.cursor = traversal.Cursor{}
	s.shadowed = make(map[string]bool)
}
