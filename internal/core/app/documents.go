package app

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"symindex/internal/core/ports"
)

var _ ports.DocumentHost = (*MemoryDocuments)(nil)

// MemoryDocuments is a DocumentHost backed by a map, for embedding the index
// without an editor and for tests. "~" expands to the user's home.
type MemoryDocuments struct {
	mu   sync.RWMutex
	docs map[string]ports.Document
}

func NewMemoryDocuments(docs ...ports.Document) *MemoryDocuments {
	m := &MemoryDocuments{docs: make(map[string]ports.Document)}
	for _, doc := range docs {
		m.docs[doc.ID] = doc
	}
	return m
}

func (m *MemoryDocuments) Open(doc ports.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
}

func (m *MemoryDocuments) Close(id string) (ports.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	delete(m.docs, id)
	return doc, ok
}

func (m *MemoryDocuments) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]ports.Document)
}

// ListOpenDocuments returns the buffers ordered by id.
func (m *MemoryDocuments) ListOpenDocuments(ctx context.Context) ([]ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryDocuments) ResolveAliasedPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
