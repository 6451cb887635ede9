// Package storage reads and writes the four JSON artifacts that make up a
// persisted directory index.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domainerrors "symindex/internal/core/errors"
	"symindex/internal/engine/changes"
	"symindex/internal/engine/symbols"
	"symindex/internal/shared/observability"
	"symindex/internal/shared/util"
)

const (
	IndexFile       = "symbol_index.json"
	FingerprintFile = "file_checksums.json"
	SnapshotFile    = "dir_structure.json"
	PendingFile     = "pending_files.json"
)

// Index is the persisted symbol list plus the traversal resume point.
type Index struct {
	WorkingDirectory string           `json:"working_directory"`
	Symbols          []symbols.Symbol `json:"symbols"`
	TraversalPath    []int            `json:"traversal_path"`
}

type fingerprintDoc struct {
	Files []changes.Fingerprint `json:"file_checksums"`
}

type snapshotDoc struct {
	Files []string `json:"files"`
}

type pendingDoc struct {
	Files []string `json:"pending_files"`
}

// State bundles every artifact for one directory.
type State struct {
	Index        Index
	Fingerprints map[string]changes.Fingerprint
	Snapshot     []string
	Pending      []string
}

// Storage is bound to one directory ID's folder.
type Storage struct {
	dir string
}

func New(dir string) *Storage {
	return &Storage{dir: dir}
}

func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether a symbol index has been written.
func (s *Storage) Exists() bool {
	_, err := os.Stat(s.path(IndexFile))
	return err == nil
}

func (s *Storage) SaveIndex(idx Index) error {
	if idx.Symbols == nil {
		idx.Symbols = []symbols.Symbol{}
	}
	if idx.TraversalPath == nil {
		idx.TraversalPath = []int{}
	}
	return s.save(IndexFile, idx)
}

func (s *Storage) LoadIndex() (Index, error) {
	var idx Index
	if err := s.load(IndexFile, &idx); err != nil {
		return Index{}, err
	}
	for i := range idx.Symbols {
		if idx.Symbols[i].Children == nil {
			idx.Symbols[i].Children = []string{}
		}
		if idx.Symbols[i].FileName == "" {
			idx.Symbols[i].FileName = symbols.BaseName(idx.Symbols[i].FilePath)
		}
	}
	return idx, nil
}

func (s *Storage) SaveFingerprints(fps map[string]changes.Fingerprint) error {
	doc := fingerprintDoc{Files: make([]changes.Fingerprint, 0, len(fps))}
	for _, path := range util.SortedStringKeys(fps) {
		doc.Files = append(doc.Files, fps[path])
	}
	return s.save(FingerprintFile, doc)
}

func (s *Storage) LoadFingerprints() (map[string]changes.Fingerprint, error) {
	var doc fingerprintDoc
	if err := s.load(FingerprintFile, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]changes.Fingerprint, len(doc.Files))
	for _, fp := range doc.Files {
		out[fp.Path] = fp
	}
	return out, nil
}

func (s *Storage) SaveSnapshot(files []string) error {
	if files == nil {
		files = []string{}
	}
	return s.save(SnapshotFile, snapshotDoc{Files: files})
}

func (s *Storage) LoadSnapshot() ([]string, error) {
	var doc snapshotDoc
	if err := s.load(SnapshotFile, &doc); err != nil {
		return nil, err
	}
	return doc.Files, nil
}

func (s *Storage) SavePending(files []string) error {
	if files == nil {
		files = []string{}
	}
	return s.save(PendingFile, pendingDoc{Files: files})
}

func (s *Storage) LoadPending() ([]string, error) {
	var doc pendingDoc
	if err := s.load(PendingFile, &doc); err != nil {
		return nil, err
	}
	return doc.Files, nil
}

// SaveAll writes every artifact and reports the first failure after trying all.
func (s *Storage) SaveAll(st State) error {
	return errors.Join(
		s.SaveIndex(st.Index),
		s.SaveFingerprints(st.Fingerprints),
		s.SaveSnapshot(st.Snapshot),
		s.SavePending(st.Pending),
	)
}

// LoadAll needs the symbol index; the other artifacts fall back to empty when
// missing.
func (s *Storage) LoadAll() (State, error) {
	idx, err := s.LoadIndex()
	if err != nil {
		return State{}, err
	}
	st := State{Index: idx}
	if st.Fingerprints, err = s.LoadFingerprints(); err != nil && !domainerrors.IsCode(err, domainerrors.CodeNotFound) {
		return State{}, err
	}
	if st.Snapshot, err = s.LoadSnapshot(); err != nil && !domainerrors.IsCode(err, domainerrors.CodeNotFound) {
		return State{}, err
	}
	if st.Pending, err = s.LoadPending(); err != nil && !domainerrors.IsCode(err, domainerrors.CodeNotFound) {
		return State{}, err
	}
	if st.Fingerprints == nil {
		st.Fingerprints = map[string]changes.Fingerprint{}
	}
	return st, nil
}

func (s *Storage) save(name string, v any) error {
	path := s.path(name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s.fail(domainerrors.CodeInternal, err, "encode "+name, name, path)
	}
	if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
		return s.fail(domainerrors.CodeStorage, err, "write "+name, name, path)
	}
	return nil
}

func (s *Storage) load(name string, v any) error {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domainerrors.AddContext(domainerrors.New(domainerrors.CodeNotFound, name+" not found"), domainerrors.CtxPath, path)
	}
	if err != nil {
		return s.fail(domainerrors.CodeStorage, err, "read "+name, name, path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return s.fail(domainerrors.CodeParse, fmt.Errorf("decode %s: %w", path, err), "parse "+name, name, path)
	}
	return nil
}

func (s *Storage) fail(code domainerrors.ErrorCode, err error, msg, artifact, path string) error {
	observability.StorageErrorsTotal.WithLabelValues(artifact).Inc()
	return domainerrors.AddContext(domainerrors.Wrap(err, code, msg), domainerrors.CtxPath, path)
}
