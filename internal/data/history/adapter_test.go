package history

import (
	"path/filepath"
	"testing"
	"time"

	"symindex/internal/core/ports"
)

func TestAdapter_RecordBuild(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	adapter := NewAdapter(store)
	adapter.RecordBuild(ports.BuildRecord{
		DirectoryID:  "dir",
		Mode:         ModeQuick,
		Timestamp:    time.Now().UTC(),
		FilesIndexed: 3,
		Symbols:      9,
		Complete:     true,
	})
	// invalid records are logged, not returned
	adapter.RecordBuild(ports.BuildRecord{Mode: ModeQuick})

	rows, err := store.Recent("dir", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 1 || rows[0].Symbols != 9 || rows[0].Mode != ModeQuick {
		t.Fatalf("unexpected rows %+v", rows)
	}

	adapter.ForgetDirectory("dir")
	rows, err = store.Recent("dir", 5)
	if err != nil {
		t.Fatalf("recent after forget: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows after forget, got %d", len(rows))
	}

	var nilAdapter *Adapter
	nilAdapter.RecordBuild(ports.BuildRecord{DirectoryID: "x", Mode: ModeFull})
}
