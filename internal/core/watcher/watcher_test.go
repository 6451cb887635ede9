package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"symindex/internal/engine/traversal"
	"symindex/internal/shared/util"
)

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func waitFor(t *testing.T, changed <-chan []string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case paths := <-changed:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change of %s", want)
		}
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	classifier, err := traversal.NewClassifier([]string{"exclude_dir"}, []string{"*.exclude"})
	if err != nil {
		t.Fatal(err)
	}
	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, classifier, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "a.R")
	if err := os.WriteFile(testFile, []byte("f <- function() 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, 2*time.Second)

	excludeFile := filepath.Join(tmpDir, "test.exclude")
	if err := os.WriteFile(excludeFile, []byte("exclude me"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if filepath.Base(p) == "test.exclude" {
				t.Error("excluded file triggered event")
			}
		}
	case <-time.After(500 * time.Millisecond):
	}

	// a new directory is watched recursively once created
	subdir := filepath.Join(tmpDir, "newdir")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "nested.py")
	if err := os.WriteFile(subFile, []byte("def g():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, subFile, 2*time.Second)
}

func TestWatcher_RenameTriggersChange(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	oldPath := filepath.Join(tmpDir, "old.R")
	newPath := filepath.Join(tmpDir, "new.R")
	if err := os.WriteFile(oldPath, []byte("x <- 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, newPath, 2*time.Second)
}

func TestWatcher_Exclusions(t *testing.T) {
	w, err := NewWatcher(10*time.Millisecond, nil, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	storage := filepath.Join(t.TempDir(), "store")
	w.Ignore(storage)

	if !w.shouldExcludeFile(filepath.Join(storage, "symbol_index.json")) {
		t.Fatal("expected files under the ignored directory to be excluded")
	}
	if !w.shouldExcludeFile("/tmp/project/.DS_Store") {
		t.Fatal("expected built-in file exclusions to apply")
	}
	if !w.shouldExcludeDir("/tmp/project/.git") {
		t.Fatal("expected hidden directories to be excluded")
	}
	if w.shouldExcludeFile("/tmp/project/analysis.R") {
		t.Fatal("expected ordinary files to pass")
	}
}

type fakeTrigger struct {
	mu       sync.Mutex
	builds   []string
	pending  int
	steps    int
	buildErr error
}

func (f *fakeTrigger) BuildIndex(_ context.Context, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds = append(f.builds, dir)
	return f.buildErr
}

func (f *fakeTrigger) HasPendingFiles() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending > 0
}

func (f *fakeTrigger) ProcessPendingFiles(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps++
	f.pending--
	return nil
}

func TestDriver_SyncDrainsPending(t *testing.T) {
	trigger := &fakeTrigger{pending: 3}
	d := NewDriver(trigger, "/work", util.NewLimiter(0, 1), nil)

	if err := d.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(trigger.builds) != 1 || trigger.builds[0] != "/work" {
		t.Fatalf("unexpected builds %v", trigger.builds)
	}
	if trigger.steps != 3 {
		t.Fatalf("expected 3 pending steps, got %d", trigger.steps)
	}
}

func TestDriver_SyncStopsOnBuildError(t *testing.T) {
	trigger := &fakeTrigger{pending: 2, buildErr: errors.New("boom")}
	d := NewDriver(trigger, "/work", nil, nil)

	if err := d.Sync(context.Background()); err == nil {
		t.Fatal("expected build error")
	}
	if trigger.steps != 0 {
		t.Fatalf("expected no pending steps after a failed build, got %d", trigger.steps)
	}
}

func TestDriver_CancelledContext(t *testing.T) {
	trigger := &fakeTrigger{}
	d := NewDriver(trigger, "/work", util.NewLimiter(0.001, 1), nil)

	ctx, cancel := context.WithCancel(context.Background())
	// the first token is free; the second must wait far longer than the test
	if err := d.Sync(ctx); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	cancel()
	if err := d.Sync(ctx); err == nil {
		t.Fatal("expected cancelled sync to fail")
	}
	if len(trigger.builds) != 1 {
		t.Fatalf("expected one build, got %d", len(trigger.builds))
	}
}

func TestDriver_HandleRunsCycle(t *testing.T) {
	trigger := &fakeTrigger{pending: 1}
	d := NewDriver(trigger, "/work", nil, nil)

	d.Handle(context.Background(), []string{"/work/a.R"})
	if len(trigger.builds) != 1 || trigger.steps != 1 {
		t.Fatalf("unexpected cycle: builds=%v steps=%d", trigger.builds, trigger.steps)
	}
}
