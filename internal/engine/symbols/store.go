package symbols

import "sort"

// Store maps case-folded names to every symbol instance carrying that name.
// It is not safe for concurrent use; the owning service serializes access.
type Store struct {
	buckets map[string][]Symbol
	count   int
}

func NewStore() *Store {
	return &Store{buckets: make(map[string][]Symbol)}
}

// Add inserts sym unless an instance with the same identity exists.
func (s *Store) Add(sym Symbol) bool {
	if sym.Children == nil {
		sym.Children = []string{}
	}
	key := Fold(sym.Name)
	bucket := s.buckets[key]
	for _, existing := range bucket {
		if existing.SameInstance(sym) {
			return false
		}
	}
	s.buckets[key] = append(bucket, sym)
	s.count++
	return true
}

func (s *Store) AddAll(syms []Symbol) int {
	added := 0
	for _, sym := range syms {
		if s.Add(sym) {
			added++
		}
	}
	return added
}

// RemoveFile drops every symbol whose FilePath equals path.
func (s *Store) RemoveFile(path string) int {
	return s.RemoveWhere(func(sym *Symbol) bool { return sym.FilePath == path })
}

func (s *Store) RemoveWhere(match func(*Symbol) bool) int {
	removed := 0
	for key, bucket := range s.buckets {
		kept := bucket[:0]
		for i := range bucket {
			if match(&bucket[i]) {
				removed++
				continue
			}
			kept = append(kept, bucket[i])
		}
		if len(kept) == 0 {
			delete(s.buckets, key)
			continue
		}
		s.buckets[key] = kept
	}
	s.count -= removed
	return removed
}

// Lookup returns a copy of the bucket stored under the folded key.
func (s *Store) Lookup(key string) []Symbol {
	bucket, ok := s.buckets[key]
	if !ok {
		return nil
	}
	out := make([]Symbol, len(bucket))
	copy(out, bucket)
	return out
}

// Each visits symbols in key order; fn may mutate fields other than Name.
func (s *Store) Each(fn func(*Symbol)) {
	for _, key := range s.keys() {
		bucket := s.buckets[key]
		for i := range bucket {
			fn(&bucket[i])
		}
	}
}

func (s *Store) All() []Symbol {
	out := make([]Symbol, 0, s.count)
	s.Each(func(sym *Symbol) {
		cp := *sym
		cp.Children = append([]string{}, sym.Children...)
		out = append(out, cp)
	})
	return out
}

func (s *Store) Len() int {
	return s.count
}

func (s *Store) Empty() bool {
	return s.count == 0
}

func (s *Store) Clear() {
	s.buckets = make(map[string][]Symbol)
	s.count = 0
}

// Replace swaps the whole content for syms, applying identity dedupe.
func (s *Store) Replace(syms []Symbol) {
	s.Clear()
	s.AddAll(syms)
}

func (s *Store) keys() []string {
	keys := make([]string, 0, len(s.buckets))
	for key := range s.buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
