package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainerrors "symindex/internal/core/errors"
)

func TestGetOrCreateID_StableAcrossInstances(t *testing.T) {
	base := t.TempDir()
	work := t.TempDir()

	first, err := New(base).GetOrCreateID(work)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if first == "" {
		t.Fatal("expected a minted id")
	}
	if info, err := os.Stat(filepath.Join(base, first)); err != nil || !info.IsDir() {
		t.Fatalf("expected storage folder for %s: %v", first, err)
	}

	second, err := New(base).GetOrCreateID(work + string(filepath.Separator))
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if second != first {
		t.Fatalf("expected stable id %q, got %q", first, second)
	}

	raw, err := os.ReadFile(filepath.Join(base, mappingFile))
	if err != nil {
		t.Fatalf("read mapping: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 || lines[0] != "directory_path,directory_id" {
		t.Fatalf("unexpected mapping contents:\n%s", raw)
	}
	if strings.Contains(lines[1], "/") {
		t.Fatalf("expected escaped directory path, got %q", lines[1])
	}
}

func TestLookupID(t *testing.T) {
	r := New(t.TempDir())
	work := t.TempDir()

	if _, ok := r.LookupID(work); ok {
		t.Fatal("expected no id before registration")
	}
	id, err := r.GetOrCreateID(work)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	got, ok := r.LookupID(work)
	if !ok || got != id {
		t.Fatalf("expected %q, got %q (ok=%v)", id, got, ok)
	}
}

func TestRemove(t *testing.T) {
	base := t.TempDir()
	r := New(base)
	keep, drop := t.TempDir(), t.TempDir()

	keepID, err := r.GetOrCreateID(keep)
	if err != nil {
		t.Fatalf("register keep: %v", err)
	}
	dropID, err := r.GetOrCreateID(drop)
	if err != nil {
		t.Fatalf("register drop: %v", err)
	}

	if err := r.Remove(drop); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(r.StorageDir(dropID)); !os.IsNotExist(err) {
		t.Fatalf("expected storage folder removed, stat err = %v", err)
	}
	if _, ok := r.LookupID(drop); ok {
		t.Fatal("expected mapping row removed")
	}
	if got, ok := r.LookupID(keep); !ok || got != keepID {
		t.Fatalf("expected other mapping preserved, got %q (ok=%v)", got, ok)
	}

	if err := r.Remove(drop); err != nil {
		t.Fatalf("removing an unknown directory should be a no-op: %v", err)
	}
}

func TestGetOrCreateID_StorageFailure(t *testing.T) {
	base := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(base, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	id, err := New(base).GetOrCreateID(t.TempDir())
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
	if !domainerrors.IsCode(err, domainerrors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
