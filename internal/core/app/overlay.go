package app

import (
	"context"
	"os"
	"path/filepath"

	"symindex/internal/core/errors"
	"symindex/internal/core/ports"
	"symindex/internal/engine/symbols"
	"symindex/internal/shared/observability"
	"symindex/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// overlay is one open buffer's symbols, extracted ahead of taking the lock.
type overlay struct {
	doc  ports.Document
	path string
	syms []symbols.Symbol
}

// openDocuments lists the host's buffers and extracts them. Buffers without
// content are skipped.
func (s *SymbolIndex) openDocuments(ctx context.Context) []overlay {
	if s.docs == nil {
		return nil
	}
	docs, err := s.docs.ListOpenDocuments(ctx)
	if err != nil {
		s.log.Warn("failed to list open documents", "error", err)
		return nil
	}
	out := make([]overlay, 0, len(docs))
	for _, doc := range docs {
		if doc.Contents == "" {
			continue
		}
		path := s.documentPath(doc)
		out = append(out, overlay{doc: doc, path: path, syms: s.documentSymbols(doc, path)})
	}
	return out
}

// applyOverlaysLocked replaces each buffer's path with its live symbols.
// Callers hold s.mu.
func (s *SymbolIndex) applyOverlaysLocked(overlays []overlay) {
	for _, ov := range overlays {
		s.store.RemoveFile(ov.path)
		s.store.AddAll(ov.syms)
		switch {
		case !ov.doc.Unsaved():
			s.shadowed[ov.path] = true
		case ov.doc.ID != "":
			s.unsaved[ov.doc.ID] = ov.path
		}
	}
}

// OnDocumentUpdated shadows the buffer's path with its current text.
// Relationships are left for the next cycle.
func (s *SymbolIndex) OnDocumentUpdated(doc ports.Document) {
	if doc.Contents == "" || !s.IsBuilt() {
		return
	}
	path := s.documentPath(doc)
	syms := s.documentSymbols(doc, path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return
	}
	s.applyOverlaysLocked([]overlay{{doc: doc, path: path, syms: syms}})
}

// OnDocumentRemoved drops a closed buffer's symbols. A saved file inside the
// working directory falls back to its disk content; an unsaved buffer is
// found through the synthetic path recorded when it was last applied.
func (s *SymbolIndex) OnDocumentRemoved(id, path string) {
	if !s.IsBuilt() {
		return
	}

	var resolved string
	var disk []symbols.Symbol
	if path != "" {
		resolved = s.resolvePath(path)
		if info, err := os.Stat(resolved); err == nil && !info.IsDir() && s.insideWorkingDir(resolved) &&
			!s.walker.Classifier().ExcludeFile(filepath.Base(resolved)) {
			disk = s.fileSymbols(resolved)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return
	}
	if resolved != "" {
		s.store.RemoveFile(resolved)
		s.store.AddAll(disk)
		delete(s.shadowed, resolved)
	}
	if synthetic, ok := s.unsaved[id]; ok {
		s.store.RemoveFile(synthetic)
		delete(s.unsaved, id)
	}
}

// OnAllDocumentsRemoved drops every unsaved-buffer symbol.
func (s *SymbolIndex) OnAllDocumentsRemoved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		return
	}
	s.store.RemoveWhere(func(sym *symbols.Symbol) bool {
		return symbols.IsUnsavedPath(sym.FilePath)
	})
	s.unsaved = make(map[string]string)
}

func (s *SymbolIndex) insideWorkingDir(path string) bool {
	s.mu.Lock()
	wd := s.workingDir
	s.mu.Unlock()
	return wd != "" && util.HasPathPrefix(path, wd)
}

// IndexSpecificTarget indexes a single file or directory without walking.
// An open buffer matching the target wins over disk content; unsaved buffers
// match by their display name or synthetic path.
func (s *SymbolIndex) IndexSpecificTarget(ctx context.Context, target string) error {
	ctx, span := observability.Tracer.Start(ctx, "SymbolIndex.IndexSpecificTarget", trace.WithAttributes(attribute.String("target", target)))
	defer span.End()

	unsaved := symbols.IsUnsavedPath(target)
	path := target
	if !unsaved {
		abs, err := filepath.Abs(target)
		if err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "resolve target"), errors.CtxPath, target)
		}
		path = abs
	}

	if ov, ok := s.matchOpenDocument(ctx, target, path); ok {
		s.mu.Lock()
		s.applyOverlaysLocked([]overlay{ov})
		s.mu.Unlock()
		span.SetAttributes(attribute.Bool("from_buffer", true))
		return nil
	}
	if unsaved {
		s.log.Debug("no open buffer for unsaved target", "target", target)
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.AddContext(errors.New(errors.CodeNotFound, "path does not exist"), errors.CtxPath, path)
			span.RecordError(err)
			return err
		}
		return errors.AddContext(errors.Wrap(err, errors.CodeStorage, "stat target"), errors.CtxPath, path)
	}

	var syms []symbols.Symbol
	if info.IsDir() {
		syms = []symbols.Symbol{directorySymbol(path)}
	} else {
		if s.walker.Classifier().ExcludeFile(filepath.Base(path)) {
			return nil
		}
		syms = s.fileSymbols(path)
		observability.IndexedFilesTotal.Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.RemoveFile(path)
	s.store.AddAll(syms)
	delete(s.shadowed, path)
	observability.IndexSymbols.Set(float64(s.store.Len()))
	return nil
}

// matchOpenDocument finds the buffer for a target. Saved buffers compare by
// resolved path, unsaved ones by the target as given.
func (s *SymbolIndex) matchOpenDocument(ctx context.Context, raw, resolved string) (overlay, bool) {
	if s.docs == nil {
		return overlay{}, false
	}
	docs, err := s.docs.ListOpenDocuments(ctx)
	if err != nil {
		s.log.Warn("failed to list open documents", "error", err)
		return overlay{}, false
	}
	for _, doc := range docs {
		if !s.documentMatches(doc, raw, resolved) {
			continue
		}
		if doc.Contents == "" {
			return overlay{}, false
		}
		path := s.documentPath(doc)
		return overlay{doc: doc, path: path, syms: s.documentSymbols(doc, path)}, true
	}
	return overlay{}, false
}

func (s *SymbolIndex) documentMatches(doc ports.Document, target, resolved string) bool {
	if !doc.Unsaved() {
		return s.resolvePath(doc.Path) == resolved
	}
	if doc.TempName == "" {
		return false
	}
	return target == doc.TempName ||
		target == unsavedPrefix("")+doc.TempName ||
		(doc.ID != "" && target == unsavedPrefix(doc.ID)+doc.TempName)
}
