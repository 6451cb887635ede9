package history

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStore_OpenInitializesSchemaAndRecord(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	runs := []Run{
		{DirectoryID: "dir-a", Mode: ModeFull, Timestamp: base, Duration: 1500 * time.Millisecond, FilesIndexed: 10, Symbols: 40, Complete: true},
		{DirectoryID: "dir-a", Mode: ModeIncremental, Timestamp: base.Add(time.Hour), Duration: 20 * time.Millisecond, FilesIndexed: 1, Removed: 2, Symbols: 38, Pending: 3},
		{DirectoryID: "dir-b", Mode: ModeFull, Timestamp: base, FilesIndexed: 5, Complete: true},
	}
	for _, run := range runs {
		if err := store.Record(run); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	got, err := store.Recent("dir-a", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 runs for dir-a, got %d", len(got))
	}
	latest := got[0]
	if latest.Mode != ModeIncremental || latest.Removed != 2 || latest.Pending != 3 || latest.Complete {
		t.Fatalf("unexpected latest run %+v", latest)
	}
	if !latest.Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("timestamp did not roundtrip: %v", latest.Timestamp)
	}
	if got[1].Duration != 1500*time.Millisecond || !got[1].Complete {
		t.Fatalf("unexpected first run %+v", got[1])
	}

	limited, err := store.Recent("dir-a", 1)
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Mode != ModeIncremental {
		t.Fatalf("unexpected limited runs %+v", limited)
	}
}

func TestStore_RecordValidates(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Record(Run{Mode: ModeFull}); err == nil {
		t.Fatal("expected error for missing directory id")
	}
	if err := store.Record(Run{DirectoryID: "x"}); err == nil {
		t.Fatal("expected error for missing mode")
	}
}

func TestStore_Forget(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Record(Run{DirectoryID: "a", Mode: ModeFull}); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(Run{DirectoryID: "b", Mode: ModeFull}); err != nil {
		t.Fatal(err)
	}
	if err := store.Forget("a"); err != nil {
		t.Fatal(err)
	}
	aRows, err := store.Recent("a", 0)
	if err != nil {
		t.Fatal(err)
	}
	bRows, err := store.Recent("b", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(aRows) != 0 || len(bRows) != 1 {
		t.Fatalf("unexpected rows after forget: a=%d b=%d", len(aRows), len(bRows))
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected open error for directory path")
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_OpenCorruptDBPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := os.WriteFile(path, []byte("this is not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected sqlite open error")
	}
	lower := strings.ToLower(err.Error())
	if !strings.Contains(lower, "not a database") && !strings.Contains(lower, "schema") {
		t.Fatalf("expected schema/open error, got: %v", err)
	}
}

func TestEnsureSchema_DetectsNewerVersionDrift(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := store.db.Exec(`INSERT OR REPLACE INTO schema_migrations(version) VALUES (?)`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	err = EnsureSchema(db)
	if err == nil {
		t.Fatal("expected drift error")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	runs := []Run{
		{Mode: ModeIncremental, Duration: 10 * time.Millisecond, FilesIndexed: 2, Symbols: 12},
		{Mode: ModeFull, Duration: 30 * time.Millisecond, FilesIndexed: 8, Symbols: 10, Complete: true},
	}
	sum := Summarize(runs)
	if sum.Runs != 2 || sum.FilesIndexed != 10 || sum.LastSymbols != 12 || sum.Incomplete != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.AvgDuration != 20*time.Millisecond {
		t.Fatalf("unexpected avg duration %v", sum.AvgDuration)
	}
	if sum.ByMode[ModeFull] != 1 || sum.ByMode[ModeIncremental] != 1 {
		t.Fatalf("unexpected mode counts %v", sum.ByMode)
	}
	if empty := Summarize(nil); empty.Runs != 0 || empty.ByMode == nil {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}

func TestIsCorruptError(t *testing.T) {
	if !IsCorruptError(errors.New("database disk image is malformed")) {
		t.Fatal("expected malformed sqlite message to be treated as corrupt")
	}
}
