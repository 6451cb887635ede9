package queue

import (
	"sync"

	"symindex/internal/shared/observability"
)

// PendingQueue holds files that did not fit into an update's budget. It keeps
// insertion order and ignores paths that are already queued.
type PendingQueue struct {
	mu    sync.Mutex
	items []string
	set   map[string]struct{}
}

func NewPendingQueue(initial ...string) *PendingQueue {
	q := &PendingQueue{set: make(map[string]struct{})}
	q.Add(initial...)
	return q
}

// Add appends paths not yet present and returns how many were new.
func (q *PendingQueue) Add(paths ...string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	added := 0
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := q.set[p]; ok {
			continue
		}
		q.set[p] = struct{}{}
		q.items = append(q.items, p)
		added++
	}
	q.report()
	return added
}

// TakeBatch removes and returns up to maxItems paths from the front.
func (q *PendingQueue) TakeBatch(maxItems int) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if maxItems <= 0 || len(q.items) == 0 {
		return nil
	}
	if maxItems > len(q.items) {
		maxItems = len(q.items)
	}
	batch := make([]string, maxItems)
	copy(batch, q.items[:maxItems])
	q.items = append(q.items[:0:0], q.items[maxItems:]...)
	for _, p := range batch {
		delete(q.set, p)
	}
	q.report()
	return batch
}

// Requeue puts paths back at the front, ahead of anything queued since they
// were taken. Paths already queued keep their position.
func (q *PendingQueue) Requeue(paths ...string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := q.set[p]; ok {
			continue
		}
		q.set[p] = struct{}{}
		front = append(front, p)
	}
	if len(front) == 0 {
		return 0
	}
	q.items = append(front, q.items...)
	q.report()
	return len(front)
}

// Remove drops the given paths wherever they sit in the queue.
func (q *PendingQueue) Remove(paths ...string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	drop := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, ok := q.set[p]; ok {
			drop[p] = struct{}{}
			delete(q.set, p)
		}
	}
	if len(drop) == 0 {
		return 0
	}
	kept := q.items[:0]
	for _, p := range q.items {
		if _, ok := drop[p]; !ok {
			kept = append(kept, p)
		}
	}
	q.items = kept
	q.report()
	return len(drop)
}

func (q *PendingQueue) Contains(path string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.set[path]
	return ok
}

func (q *PendingQueue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy in queue order, suitable for persisting.
func (q *PendingQueue) Snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}

// Reset replaces the contents, deduplicating paths.
func (q *PendingQueue) Reset(paths []string) {
	q.mu.Lock()
	q.items = nil
	q.set = make(map[string]struct{})
	q.mu.Unlock()
	q.Add(paths...)
}

func (q *PendingQueue) report() {
	observability.PendingQueueDepth.Set(float64(len(q.items)))
}
