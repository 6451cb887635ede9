// Package registry maps working directories to opaque storage IDs through an
// append-only CSV file kept at the storage root.
package registry

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	domainerrors "symindex/internal/core/errors"
	"symindex/internal/shared/util"

	"github.com/google/uuid"
)

const mappingFile = "directory_mapping.csv"

var header = []string{"directory_path", "directory_id"}

type entry struct {
	dir string
	id  string
}

// Registry owns the mapping file under base. Rows are never rewritten except
// by Remove.
type Registry struct {
	base string
	mu   sync.Mutex
}

func New(base string) *Registry {
	return &Registry{base: base}
}

func (r *Registry) Base() string {
	return r.base
}

func (r *Registry) mappingPath() string {
	return filepath.Join(r.base, mappingFile)
}

// StorageDir is the folder holding the artifacts for id.
func (r *Registry) StorageDir(id string) string {
	return filepath.Join(r.base, id)
}

// Normalize gives the form used as the mapping key: absolute, clean and with
// a trailing separator.
func Normalize(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return util.WithTrailingSeparator(abs), nil
}

// GetOrCreateID returns the ID for dir, minting and recording a new one when
// the directory has never been indexed.
func (r *Registry) GetOrCreateID(dir string) (string, error) {
	key, err := Normalize(dir)
	if err != nil {
		return "", domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeValidationError, "normalize directory"), domainerrors.CtxPath, dir)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.base, 0o755); err != nil {
		return "", r.storageErr(err, "create storage root", r.base)
	}
	entries, err := r.read()
	if err != nil {
		return "", r.storageErr(err, "read directory mapping", r.mappingPath())
	}
	for _, e := range entries {
		if e.dir == key {
			if err := os.MkdirAll(r.StorageDir(e.id), 0o755); err != nil {
				return "", r.storageErr(err, "create index directory", r.StorageDir(e.id))
			}
			return e.id, nil
		}
	}

	id := uuid.New().String()
	if err := r.append(entry{dir: key, id: id}); err != nil {
		return "", r.storageErr(err, "append directory mapping", r.mappingPath())
	}
	if err := os.MkdirAll(r.StorageDir(id), 0o755); err != nil {
		return "", r.storageErr(err, "create index directory", r.StorageDir(id))
	}
	slog.Debug("registered directory", "path", key, "directory_id", id)
	return id, nil
}

// LookupID returns the ID for dir without minting one.
func (r *Registry) LookupID(dir string) (string, bool) {
	key, err := Normalize(dir)
	if err != nil {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.read()
	if err != nil {
		slog.Warn("failed to read directory mapping", "path", r.mappingPath(), "error", err)
		return "", false
	}
	for _, e := range entries {
		if e.dir == key {
			return e.id, true
		}
	}
	return "", false
}

// Remove deletes the index folder of dir and drops its mapping row. The
// rewrite is read-all, filter, write-all.
func (r *Registry) Remove(dir string) error {
	key, err := Normalize(dir)
	if err != nil {
		return domainerrors.AddContext(
			domainerrors.Wrap(err, domainerrors.CodeValidationError, "normalize directory"), domainerrors.CtxPath, dir)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.read()
	if err != nil {
		return r.storageErr(err, "read directory mapping", r.mappingPath())
	}
	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if e.dir == key {
			if err := os.RemoveAll(r.StorageDir(e.id)); err != nil {
				return r.storageErr(err, "remove index directory", r.StorageDir(e.id))
			}
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return nil
	}
	if err := r.write(kept); err != nil {
		return r.storageErr(err, "rewrite directory mapping", r.mappingPath())
	}
	return nil
}

func (r *Registry) storageErr(err error, msg, path string) error {
	slog.Error(msg, "path", path, "error", err)
	return domainerrors.AddContext(domainerrors.Wrap(err, domainerrors.CodeStorage, msg), domainerrors.CtxPath, path)
}

func (r *Registry) read() ([]entry, error) {
	f, err := os.Open(r.mappingPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	var out []entry
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", r.mappingPath(), err)
		}
		if first {
			first = false
			if len(rec) >= 2 && rec[0] == header[0] {
				continue
			}
		}
		if len(rec) < 2 {
			continue
		}
		dir, err := url.QueryUnescape(rec[0])
		if err != nil {
			slog.Warn("skipping malformed mapping row", "row", rec[0], "error", err)
			continue
		}
		out = append(out, entry{dir: dir, id: rec[1]})
	}
	return out, nil
}

func (r *Registry) append(e entry) error {
	f, err := os.OpenFile(r.mappingPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info, statErr := f.Stat(); statErr == nil && info.Size() == 0 {
		_ = w.Write(header)
	}
	_ = w.Write([]string{url.QueryEscape(e.dir), e.id})
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (r *Registry) write(entries []entry) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, e := range entries {
		_ = w.Write([]string{url.QueryEscape(e.dir), e.id})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return util.WriteFileAtomic(r.mappingPath(), buf.Bytes(), 0o644)
}
