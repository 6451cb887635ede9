package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"symindex/internal/core/errors"
	"symindex/internal/core/ports"
	"symindex/internal/data/history"
	"symindex/internal/engine/changes"
	"symindex/internal/engine/symbols"
	"symindex/internal/engine/traversal"
	"symindex/internal/shared/observability"
	"symindex/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BuildIndex runs one bounded cycle for dir. A paused walk is resumed, an
// unchanged index is reused, a changed one is reconciled incrementally, and
// anything else gets a fresh walk. Callers poll HasPendingFiles and call
// again (or ProcessPendingFiles) until no work remains.
func (s *SymbolIndex) BuildIndex(ctx context.Context, dir string) error {
	ctx, span := observability.Tracer.Start(ctx, "SymbolIndex.BuildIndex", trace.WithAttributes(attribute.String("dir", dir)))
	defer span.End()

	abs, err := checkDirectory(dir)
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	budget := s.newBudget()

	s.mu.Lock()
	if abs != s.workingDir {
		s.cursor = traversal.Cursor{}
	}
	s.workingDir = abs
	id, exists := s.registry.LookupID(abs)
	loaded := false
	if exists {
		if err := s.loadLocked(id); err != nil {
			s.log.Warn("failed to load symbol index, rebuilding", "dir", abs, "error", err)
			s.cursor = traversal.Cursor{}
		} else {
			loaded = true
		}
	}
	resuming := s.cursor.Active()
	s.mu.Unlock()

	if loaded && !resuming {
		files, dirs := s.walker.Tree(abs)
		current := changes.ComputeAll(s.fp, files)

		s.mu.Lock()
		changed := changes.HasChanged(s.files, files, s.fingerprints, current)
		s.mu.Unlock()

		if !changed {
			overlays := s.openDocuments(ctx)
			s.mu.Lock()
			s.built = true
			s.finishLocked(overlays)
			s.mu.Unlock()
			span.SetAttributes(attribute.String("mode", history.ModeUnchanged))
			s.log.Debug("symbol index unchanged", "dir", abs)
			return nil
		}

		err := s.updateIncrementally(ctx, abs, id, budget, start, files, dirs, current)
		if err == nil {
			span.SetAttributes(attribute.String("mode", history.ModeIncremental))
			return nil
		}
		s.log.Warn("incremental update failed, rebuilding", "dir", abs, "error", err)
	}

	if id == "" {
		id, err = s.registry.GetOrCreateID(abs)
		if err != nil || id == "" {
			err = errors.AddContext(errors.Wrap(err, errors.CodePermissionDenied, "failed to create storage directory"), errors.CtxPath, abs)
			span.RecordError(err)
			return err
		}
	}

	mode := history.ModeResume
	s.mu.Lock()
	if !s.cursor.Active() {
		mode = history.ModeFull
		s.resetLocked()
	}
	from := s.cursor
	s.mu.Unlock()

	var files []string
	var fingerprints map[string]changes.Fingerprint
	if mode == history.ModeFull {
		files = s.walker.Files(abs)
		fingerprints = changes.ComputeAll(s.fp, files)
	}

	collected, indexed, next := s.walk(abs, from, budget)
	overlays := s.openDocuments(ctx)

	s.mu.Lock()
	if mode == history.ModeFull {
		s.files = files
		s.fingerprints = fingerprints
	}
	s.store.AddAll(collected)
	s.cursor = next
	s.dirID = id
	s.built = true
	s.finishLocked(overlays)
	st := s.snapshotLocked()
	symbolCount := s.store.Len()
	s.mu.Unlock()

	s.persist(id, st)
	s.record(mode, start, ports.BuildRecord{
		DirectoryID:  id,
		WorkingDir:   abs,
		FilesIndexed: indexed,
		Symbols:      symbolCount,
		Pending:      len(st.Pending),
		Complete:     !next.Active(),
	})
	span.SetAttributes(attribute.String("mode", mode), attribute.Int("files", indexed), attribute.Bool("complete", !next.Active()))
	s.log.Debug("walk step finished", "dir", abs, "heap_mb", util.HeapAllocMB())
	return nil
}

// BuildIndexQuick registers dir and marks the index built without scanning,
// loading any persisted index first. Targets can then be added one by one.
func (s *SymbolIndex) BuildIndexQuick(ctx context.Context, dir string) error {
	_, span := observability.Tracer.Start(ctx, "SymbolIndex.BuildIndexQuick", trace.WithAttributes(attribute.String("dir", dir)))
	defer span.End()

	abs, err := checkDirectory(dir)
	if err != nil {
		span.RecordError(err)
		return err
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.workingDir = abs
	s.cursor = traversal.Cursor{}

	id, exists := s.registry.LookupID(abs)
	if exists {
		if err := s.loadLocked(id); err == nil {
			// a quick build never continues a paused walk
			s.cursor = traversal.Cursor{}
			return nil
		}
		s.log.Warn("failed to load symbol index, starting empty", "dir", abs, "error", err)
	} else {
		id, err = s.registry.GetOrCreateID(abs)
		if err != nil || id == "" {
			err = errors.AddContext(errors.Wrap(err, errors.CodePermissionDenied, "failed to create storage directory"), errors.CtxPath, abs)
			span.RecordError(err)
			return err
		}
	}

	s.resetLocked()
	s.dirID = id
	s.built = true
	s.record(history.ModeQuick, start, ports.BuildRecord{DirectoryID: id, WorkingDir: abs, Complete: true})
	return nil
}

// walk advances the traversal from cursor and returns the symbols found,
// the number of files visited and the cursor to resume from. It runs
// without the state lock.
func (s *SymbolIndex) walk(root string, from traversal.Cursor, budget *traversal.Budget) ([]symbols.Symbol, int, traversal.Cursor) {
	var collected []symbols.Symbol
	files := 0
	next := s.walker.Walk(root, from, budget, func(e traversal.Entry) {
		collected = append(collected, s.entrySymbols(e)...)
		if !e.IsDir {
			files++
		}
	})
	s.log.Debug("walk step", "root", root, "entries", budget.Used(), "resume", next.Active())
	return collected, files, next
}

// updateIncrementally reconciles the loaded index with the current listing.
// Files beyond the budget are queued, never dropped.
func (s *SymbolIndex) updateIncrementally(
	ctx context.Context,
	root, id string,
	budget *traversal.Budget,
	start time.Time,
	files, dirs []string,
	current map[string]changes.Fingerprint,
) error {
	ctx, span := observability.Tracer.Start(ctx, "SymbolIndex.updateIncrementally")
	defer span.End()

	if id == "" {
		return errors.New(errors.CodeNotFound, "no previous index")
	}

	s.mu.Lock()
	previous := append([]string(nil), s.files...)
	diff := changes.Compare(previous, files, s.fingerprints, current)
	for _, path := range diff.Removed {
		s.store.RemoveFile(path)
		delete(s.fingerprints, path)
	}
	s.pending.Remove(diff.Removed...)
	s.syncDirectoriesLocked(dirs)
	s.mu.Unlock()

	work := make([]string, 0, len(diff.Modified)+len(diff.Added))
	work = append(work, diff.Modified...)
	work = append(work, diff.Added...)

	var deferred []string
	indexed := 0
	for i, path := range work {
		if budget.Exhausted() || ctx.Err() != nil {
			deferred = work[i:]
			break
		}
		syms := s.fileSymbols(path)

		s.mu.Lock()
		s.store.RemoveFile(path)
		s.store.AddAll(syms)
		if fp, ok := current[path]; ok {
			s.fingerprints[path] = fp
		}
		s.pending.Remove(path)
		s.mu.Unlock()

		budget.Spend()
		indexed++
	}

	overlays := s.openDocuments(ctx)

	s.mu.Lock()
	s.pending.Add(deferred...)
	s.files = untouchedOrProcessed(previous, files, deferred)
	s.dirID = id
	s.built = true
	s.finishLocked(overlays)
	st := s.snapshotLocked()
	symbolCount := s.store.Len()
	s.mu.Unlock()

	s.persist(id, st)
	s.record(history.ModeIncremental, start, ports.BuildRecord{
		DirectoryID:  id,
		WorkingDir:   root,
		FilesIndexed: indexed,
		Removed:      len(diff.Removed),
		Symbols:      symbolCount,
		Pending:      len(st.Pending),
		Complete:     len(deferred) == 0,
	})
	span.SetAttributes(
		attribute.Int("added", len(diff.Added)),
		attribute.Int("modified", len(diff.Modified)),
		attribute.Int("removed", len(diff.Removed)),
		attribute.Int("deferred", len(deferred)),
	)
	return nil
}

// untouchedOrProcessed is the snapshot persisted after an update: the
// current listing minus added files that were only queued.
func untouchedOrProcessed(previous, current, deferred []string) []string {
	if len(deferred) == 0 {
		return append([]string(nil), current...)
	}
	known := make(map[string]bool, len(previous))
	for _, p := range previous {
		known[p] = true
	}
	skip := make(map[string]bool, len(deferred))
	for _, p := range deferred {
		if !known[p] {
			skip[p] = true
		}
	}
	out := make([]string, 0, len(current))
	for _, p := range current {
		if !skip[p] {
			out = append(out, p)
		}
	}
	return out
}

// syncDirectoriesLocked makes the directory symbols match dirs. Callers
// hold s.mu.
func (s *SymbolIndex) syncDirectoriesLocked(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[d] = true
	}
	have := make(map[string]bool)
	s.store.RemoveWhere(func(sym *symbols.Symbol) bool {
		if sym.Type != symbols.TypeDirectory {
			return false
		}
		if !want[sym.FilePath] {
			return true
		}
		have[sym.FilePath] = true
		return false
	})
	for _, d := range dirs {
		if !have[d] {
			s.store.Add(directorySymbol(d))
		}
	}
}

// finishLocked reapplies open buffers and rebuilds relationships over the
// whole store. Callers hold s.mu.
func (s *SymbolIndex) finishLocked(overlays []overlay) {
	s.applyOverlaysLocked(overlays)
	symbols.BuildRelationships(s.store, s.walker.Children)
	observability.IndexSymbols.Set(float64(s.store.Len()))
}

func checkDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "resolve directory"), errors.CtxPath, dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.AddContext(errors.New(errors.CodeNotFound, "directory does not exist"), errors.CtxPath, abs)
		}
		return "", errors.AddContext(errors.Wrap(err, errors.CodeStorage, "stat directory"), errors.CtxPath, abs)
	}
	if !info.IsDir() {
		return "", errors.AddContext(errors.New(errors.CodeNotFound, "not a directory"), errors.CtxPath, abs)
	}
	return abs, nil
}
