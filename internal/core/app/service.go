package app

import (
	"time"

	"symindex/internal/core/errors"
	"symindex/internal/engine/lookup"
	"symindex/internal/engine/symbols"
	"symindex/internal/shared/observability"
)

func notBuilt() error {
	return errors.New(errors.CodeNotBuilt, "symbol index has not been built")
}

// FindSymbol runs the tiered lookup over the store.
func (s *SymbolIndex) FindSymbol(query string) ([]symbols.Symbol, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return nil, notBuilt()
	}
	s.coldStartLocked()

	out := lookup.Find(s.store, query)
	observability.LookupDuration.Observe(time.Since(start).Seconds())
	observability.LookupResults.Observe(float64(len(out)))
	return out, nil
}

// GetAllSymbols flattens the store in key order.
func (s *SymbolIndex) GetAllSymbols() ([]symbols.Symbol, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return nil, notBuilt()
	}
	s.coldStartLocked()
	return s.store.All(), nil
}

// coldStartLocked reloads the persisted index when memory is empty but a
// working directory is known. Callers hold s.mu.
func (s *SymbolIndex) coldStartLocked() {
	if !s.store.Empty() || s.workingDir == "" {
		return
	}
	id, ok := s.registry.LookupID(s.workingDir)
	if !ok {
		return
	}
	if err := s.loadLocked(id); err != nil && !errors.IsCode(err, errors.CodeNotFound) {
		s.log.Warn("failed to reload symbol index", "dir", s.workingDir, "error", err)
	}
}
