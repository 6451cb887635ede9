// Package changes fingerprints files and diffs directory snapshots to decide
// between a no-op, an incremental update and a full rebuild.
package changes

import (
	"fmt"
	"hash/crc32"
	"os"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint is the persisted change marker of one file.
type Fingerprint struct {
	Path         string `json:"path"`
	Checksum     string `json:"checksum"`
	LastModified string `json:"last_modified"`
}

type Fingerprinter interface {
	Fingerprint(path string) (Fingerprint, error)
}

// MtimeFingerprinter hashes the modification time only. A touch without a
// content change triggers reindexing; an edit that preserves mtime does not.
type MtimeFingerprinter struct{}

func (MtimeFingerprinter) Fingerprint(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	modified := strconv.FormatInt(info.ModTime().Unix(), 10)
	return Fingerprint{
		Path:         path,
		Checksum:     fmt.Sprintf("%x", crc32.ChecksumIEEE([]byte(modified))),
		LastModified: modified,
	}, nil
}

// ContentFingerprinter hashes file bytes with xxh3.
type ContentFingerprinter struct{}

func (ContentFingerprinter) Fingerprint(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{
		Path:         path,
		Checksum:     fmt.Sprintf("%016x", xxh3.Hash(data)),
		LastModified: strconv.FormatInt(info.ModTime().Unix(), 10),
	}, nil
}

// NewFingerprinter maps the config value to an implementation.
func NewFingerprinter(mode string) Fingerprinter {
	if mode == "content" {
		return ContentFingerprinter{}
	}
	return MtimeFingerprinter{}
}

// ComputeAll fingerprints every path, skipping files that vanished or cannot
// be read.
func ComputeAll(fp Fingerprinter, paths []string) map[string]Fingerprint {
	out := make(map[string]Fingerprint, len(paths))
	for _, path := range paths {
		f, err := fp.Fingerprint(path)
		if err != nil {
			continue
		}
		out[path] = f
	}
	return out
}
