package app

import (
	"os"
	"time"

	"symindex/internal/core/errors"
	"symindex/internal/core/ports"
	"symindex/internal/data/storage"
	"symindex/internal/engine/changes"
	"symindex/internal/engine/extract"
	"symindex/internal/engine/symbols"
	"symindex/internal/engine/traversal"
	"symindex/internal/shared/observability"
)

func (s *SymbolIndex) storageFor(id string) *storage.Storage {
	return storage.New(s.registry.StorageDir(id))
}

// loadLocked replaces in-memory state with the persisted artifacts of id.
// Callers hold s.mu. On failure the in-memory state is left untouched.
func (s *SymbolIndex) loadLocked(id string) error {
	st, err := s.storageFor(id).LoadAll()
	if err != nil {
		return errors.AddContext(err, errors.CtxDirectoryID, id)
	}

	syms := st.Index.Symbols
	for i := range syms {
		if syms[i].Type == symbols.TypeFunction {
			syms[i].Signature = extract.NormalizeRSignature(syms[i].Signature)
		}
	}
	s.store.Replace(syms)
	s.fingerprints = st.Fingerprints
	s.files = st.Snapshot
	s.pending.Reset(st.Pending)
	s.cursor = traversal.CursorFrom(st.Index.TraversalPath)
	if st.Index.WorkingDirectory != "" && s.workingDir == "" {
		s.workingDir = st.Index.WorkingDirectory
	}
	s.dirID = id
	s.built = true
	observability.IndexSymbols.Set(float64(s.store.Len()))
	return nil
}

// snapshotLocked copies the persistable state. Symbols of unsaved buffers
// live only in memory. Files shadowed by a buffer lose their fingerprint so
// the next reload reindexes them from disk. Callers hold s.mu.
func (s *SymbolIndex) snapshotLocked() storage.State {
	all := s.store.All()
	persisted := make([]symbols.Symbol, 0, len(all))
	for _, sym := range all {
		if symbols.IsUnsavedPath(sym.FilePath) {
			continue
		}
		persisted = append(persisted, sym)
	}
	fps := make(map[string]changes.Fingerprint, len(s.fingerprints))
	for k, v := range s.fingerprints {
		if s.shadowed[k] {
			continue
		}
		fps[k] = v
	}
	return storage.State{
		Index: storage.Index{
			WorkingDirectory: s.workingDir,
			Symbols:          persisted,
			TraversalPath:    s.cursor.Offsets(),
		},
		Fingerprints: fps,
		Snapshot:     append([]string(nil), s.files...),
		Pending:      s.pending.Snapshot(),
	}
}

// persist writes a snapshot outside the state lock. Failures are logged; the
// in-memory index stays authoritative until the next cycle.
func (s *SymbolIndex) persist(id string, st storage.State) {
	if id == "" {
		return
	}
	if err := s.storageFor(id).SaveAll(st); err != nil {
		s.log.Error("failed to persist symbol index", "directory_id", id, "error", err)
	}
}

// record finishes a cycle: metrics, the build-history row and a debug log.
func (s *SymbolIndex) record(mode string, start time.Time, rec ports.BuildRecord) {
	elapsed := time.Since(start)
	observability.BuildDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
	observability.IndexedFilesTotal.Add(float64(rec.FilesIndexed))
	observability.IndexSymbols.Set(float64(rec.Symbols))

	rec.Mode = mode
	rec.Timestamp = start.UTC()
	rec.Duration = elapsed
	if s.recorder != nil && rec.DirectoryID != "" {
		s.recorder.RecordBuild(rec)
	}
	s.log.Debug("index cycle finished",
		"mode", mode,
		"dir", rec.WorkingDir,
		"files", rec.FilesIndexed,
		"removed", rec.Removed,
		"symbols", rec.Symbols,
		"pending", rec.Pending,
		"complete", rec.Complete,
		"duration", elapsed,
	)
}

// RemoveSymbolIndex forgets the current working directory: memory is
// cleared, its storage folder and registry row are deleted, and the index
// reports unbuilt until the next build.
func (s *SymbolIndex) RemoveSymbolIndex() error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.mu.Lock()
	dir := s.workingDir
	s.resetLocked()
	s.unsaved = make(map[string]string)
	s.workingDir = ""
	s.dirID = ""
	s.built = false
	s.mu.Unlock()
	observability.IndexSymbols.Set(0)

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "resolve working directory")
		}
		dir = cwd
	}

	id, ok := s.registry.LookupID(dir)
	if !ok {
		return nil
	}
	if err := s.registry.Remove(dir); err != nil {
		return errors.AddContext(err, errors.CtxOperation, "remove_index")
	}
	if s.recorder != nil {
		s.recorder.ForgetDirectory(id)
	}
	s.log.Info("removed symbol index", "dir", dir, "directory_id", id)
	return nil
}
