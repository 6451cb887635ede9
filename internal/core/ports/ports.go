package ports

import (
	"context"
	"time"
)

// Document is an editor buffer as the host reports it. Path is empty for
// buffers that were never saved.
type Document struct {
	ID       string
	Path     string
	Contents string
	Type     string
	TempName string
}

// Unsaved reports whether the buffer has no on-disk path.
func (d Document) Unsaved() bool {
	return d.Path == ""
}

// DocumentHost abstracts the editor that owns open buffers.
type DocumentHost interface {
	ListOpenDocuments(ctx context.Context) ([]Document, error)
	// ResolveAliasedPath expands host-specific aliases such as "~" into an
	// absolute path.
	ResolveAliasedPath(path string) string
}

// BuildRecord summarizes one finished index cycle.
type BuildRecord struct {
	DirectoryID  string
	WorkingDir   string
	Mode         string
	Timestamp    time.Time
	Duration     time.Duration
	FilesIndexed int
	Removed      int
	Symbols      int
	Pending      int
	Complete     bool
}

// BuildRecorder abstracts build-history persistence.
type BuildRecorder interface {
	RecordBuild(rec BuildRecord)
	ForgetDirectory(directoryID string)
}

// IndexTrigger is the subset of the index service a background driver needs.
type IndexTrigger interface {
	BuildIndex(ctx context.Context, dir string) error
	HasPendingFiles() bool
	ProcessPendingFiles(ctx context.Context) error
}
