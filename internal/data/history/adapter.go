package history

import (
	"log/slog"

	"symindex/internal/core/ports"
)

var _ ports.BuildRecorder = (*Adapter)(nil)

// Adapter bridges Store to the core BuildRecorder port. Write failures are
// logged and never fail the build that produced them.
type Adapter struct {
	store *Store
}

func NewAdapter(store *Store) *Adapter {
	return &Adapter{store: store}
}

func (a *Adapter) RecordBuild(rec ports.BuildRecord) {
	if a == nil || a.store == nil {
		return
	}
	err := a.store.Record(Run{
		DirectoryID:  rec.DirectoryID,
		WorkingDir:   rec.WorkingDir,
		Mode:         rec.Mode,
		Timestamp:    rec.Timestamp,
		Duration:     rec.Duration,
		FilesIndexed: rec.FilesIndexed,
		Removed:      rec.Removed,
		Symbols:      rec.Symbols,
		Pending:      rec.Pending,
		Complete:     rec.Complete,
	})
	if err != nil {
		slog.Warn("failed to record build history", "directory_id", rec.DirectoryID, "mode", rec.Mode, "error", err)
	}
}

func (a *Adapter) ForgetDirectory(directoryID string) {
	if a == nil || a.store == nil {
		return
	}
	if err := a.store.Forget(directoryID); err != nil {
		slog.Warn("failed to clear build history", "directory_id", directoryID, "error", err)
	}
}
