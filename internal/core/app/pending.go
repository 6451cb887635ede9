package app

import (
	"context"
	"os"
	"time"

	"symindex/internal/core/ports"
	"symindex/internal/data/history"
	"symindex/internal/engine/traversal"
	"symindex/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
)

// HasPendingFiles reports whether a paused walk or queued files are waiting.
func (s *SymbolIndex) HasPendingFiles() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Active() || s.pending.Len() > 0
}

// PendingFileCount is the number of queued files plus the files a paused
// walk has yet to reach.
func (s *SymbolIndex) PendingFileCount() int {
	s.mu.Lock()
	cursor := s.cursor
	root := s.workingDir
	count := s.pending.Len()
	s.mu.Unlock()

	if cursor.Active() && root != "" {
		s.walker.Walk(root, cursor, traversal.NewBudget(0, 0), func(e traversal.Entry) {
			if !e.IsDir {
				count++
			}
		})
	}
	return count
}

// ProcessPendingFiles spends one budget on outstanding work: first the
// paused walk, then up to pending_batch queued files. Files that do not fit
// go back to the front of the queue.
func (s *SymbolIndex) ProcessPendingFiles(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "SymbolIndex.ProcessPendingFiles")
	defer span.End()

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.mu.Lock()
	if !s.built {
		s.mu.Unlock()
		return notBuilt()
	}
	id := s.dirID
	root := s.workingDir
	from := s.cursor
	s.mu.Unlock()

	if !from.Active() && s.pending.Len() == 0 {
		return nil
	}

	start := time.Now()
	budget := s.newBudget()
	indexed := 0

	if from.Active() {
		collected, n, next := s.walk(root, from, budget)
		indexed += n
		s.mu.Lock()
		s.store.AddAll(collected)
		s.cursor = next
		s.mu.Unlock()
	}

	batch := s.pending.TakeBatch(s.cfg.Index.PendingBatch)
	for i, path := range batch {
		if budget.Exhausted() || ctx.Err() != nil {
			s.pending.Requeue(batch[i:]...)
			break
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			s.mu.Lock()
			s.store.RemoveFile(path)
			delete(s.fingerprints, path)
			s.mu.Unlock()
			continue
		}

		syms := s.fileSymbols(path)
		fp, fpErr := s.fp.Fingerprint(path)

		s.mu.Lock()
		s.store.RemoveFile(path)
		s.store.AddAll(syms)
		if fpErr == nil {
			s.fingerprints[path] = fp
		}
		s.trackFileLocked(path)
		s.mu.Unlock()

		budget.Spend()
		indexed++
	}

	overlays := s.openDocuments(ctx)

	s.mu.Lock()
	s.finishLocked(overlays)
	st := s.snapshotLocked()
	symbolCount := s.store.Len()
	complete := !s.cursor.Active() && s.pending.Len() == 0
	s.mu.Unlock()

	s.persist(id, st)
	s.record(history.ModePending, start, ports.BuildRecord{
		DirectoryID:  id,
		WorkingDir:   root,
		FilesIndexed: indexed,
		Symbols:      symbolCount,
		Pending:      len(st.Pending),
		Complete:     complete,
	})
	span.SetAttributes(attribute.Int("files", indexed), attribute.Int("pending", len(st.Pending)))
	return nil
}

// trackFileLocked adds path to the snapshot if missing. Callers hold s.mu.
func (s *SymbolIndex) trackFileLocked(path string) {
	for _, f := range s.files {
		if f == path {
			return
		}
	}
	s.files = append(s.files, path)
}
