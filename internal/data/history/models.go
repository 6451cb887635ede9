// Package history keeps a SQLite log of index build cycles per directory.
package history

import "time"

const (
	ModeFull        = "full"
	ModeQuick       = "quick"
	ModeIncremental = "incremental"
	ModeResume      = "resume"
	ModePending     = "pending"
	ModeTarget      = "target"
	ModeUnchanged   = "unchanged"
)

// Run describes one completed build or update cycle.
type Run struct {
	ID           int64
	DirectoryID  string
	WorkingDir   string
	Mode         string
	Timestamp    time.Time
	Duration     time.Duration
	FilesIndexed int
	Removed      int
	Symbols      int
	Pending      int
	// Complete is false when the cycle stopped on its budget and left a
	// traversal cursor behind.
	Complete bool
}
