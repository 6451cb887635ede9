package storage

import (
	"os"
	"path/filepath"
	"testing"

	domainerrors "symindex/internal/core/errors"
	"symindex/internal/engine/changes"
	"symindex/internal/engine/symbols"
)

func TestSaveLoadAll(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "id-1"))

	fn := symbols.New("foo", symbols.TypeFunction, "/w/a.R", 1, 1, "", "function(x)")
	file := symbols.New("a.R", symbols.TypeFile, "/w/a.R", 1, 2, "/w", "")
	file.AddChild("foo")

	state := State{
		Index: Index{
			WorkingDirectory: "/w",
			Symbols:          []symbols.Symbol{fn, file},
			TraversalPath:    []int{3, 1},
		},
		Fingerprints: map[string]changes.Fingerprint{
			"/w/a.R": {Path: "/w/a.R", Checksum: "abc", LastModified: "1700000000"},
		},
		Snapshot: []string{"/w/a.R"},
		Pending:  []string{"/w/b.R"},
	}
	if err := s.SaveAll(state); err != nil {
		t.Fatalf("save all: %v", err)
	}
	if !s.Exists() {
		t.Fatal("expected index to exist after save")
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if got.Index.WorkingDirectory != "/w" || len(got.Index.Symbols) != 2 {
		t.Fatalf("unexpected index %+v", got.Index)
	}
	if len(got.Index.TraversalPath) != 2 || got.Index.TraversalPath[0] != 3 || got.Index.TraversalPath[1] != 1 {
		t.Fatalf("unexpected traversal path %v", got.Index.TraversalPath)
	}
	if got.Index.Symbols[1].Children[0] != "foo" {
		t.Fatalf("children not persisted: %+v", got.Index.Symbols[1])
	}
	if fp := got.Fingerprints["/w/a.R"]; fp.Checksum != "abc" || fp.LastModified != "1700000000" {
		t.Fatalf("unexpected fingerprint %+v", fp)
	}
	if len(got.Snapshot) != 1 || len(got.Pending) != 1 || got.Pending[0] != "/w/b.R" {
		t.Fatalf("unexpected snapshot/pending %v %v", got.Snapshot, got.Pending)
	}
}

func TestLoadIndex_NormalizesNullChildren(t *testing.T) {
	dir := t.TempDir()
	raw := `{"working_directory":"/w","symbols":[{"name":"x","type":"function","file":"/w/x.R","line_start":1,"line_end":1,"parents":"","signature":"","children":null}],"traversal_path":[]}`
	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte(raw), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	idx, err := New(dir).LoadIndex()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sym := idx.Symbols[0]
	if sym.Children == nil || len(sym.Children) != 0 {
		t.Fatalf("expected empty children, got %#v", sym.Children)
	}
	if sym.FileName != "x.R" {
		t.Fatalf("expected filename derived from path, got %q", sym.FileName)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if _, err := s.LoadIndex(); !domainerrors.IsCode(err, domainerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.LoadIndex(); !domainerrors.IsCode(err, domainerrors.CodeParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadAll_OptionalArtifacts(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveIndex(Index{WorkingDirectory: "/w"}); err != nil {
		t.Fatalf("save index: %v", err)
	}
	st, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if st.Fingerprints == nil || len(st.Snapshot) != 0 || len(st.Pending) != 0 {
		t.Fatalf("expected empty optional artifacts, got %+v", st)
	}
}

func TestSave_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := New(filepath.Join(blocker, "id")).SavePending([]string{"a"})
	if !domainerrors.IsCode(err, domainerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
