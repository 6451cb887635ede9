// Package traversal walks a working directory in deterministic order under
// a budget, and can resume a paused walk from a Cursor.
package traversal

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

type Entry struct {
	Path  string
	Name  string
	IsDir bool
}

type VisitFunc func(Entry)

type Walker struct {
	classifier *Classifier
}

func NewWalker(classifier *Classifier) *Walker {
	if classifier == nil {
		classifier = DefaultClassifier()
	}
	return &Walker{classifier: classifier}
}

// Walk visits entries below root starting at from. The returned cursor is
// inactive when the walk completed.
func (w *Walker) Walk(root string, from Cursor, budget *Budget, visit VisitFunc) Cursor {
	offsets, paused := w.walk(root, from.offsets, budget, visit)
	if !paused {
		return Cursor{}
	}
	return Cursor{offsets: offsets}
}

func (w *Walker) walk(dir string, resume []int, budget *Budget, visit VisitFunc) ([]int, bool) {
	if budget.Exhausted() {
		if len(resume) == 0 {
			return []int{0}, true
		}
		return append([]int(nil), resume...), true
	}

	entries, err := w.List(dir)
	if err != nil {
		slog.Warn("failed to list directory", "path", dir, "error", err)
		return nil, false
	}

	start := 0
	var inner []int
	if len(resume) > 0 {
		start = resume[0]
		inner = resume[1:]
	}

	for i := start; i < len(entries); i++ {
		entry := entries[i]
		descending := i == start && len(inner) > 0
		if !descending && budget.Exhausted() {
			return []int{i}, true
		}

		if entry.IsDir {
			if w.classifier.ExcludeDir(entry.Name) {
				continue
			}
			if !descending {
				visit(entry)
				budget.Spend()
			}
			var childResume []int
			if descending {
				childResume = inner
			}
			if sub, paused := w.walk(entry.Path, childResume, budget, visit); paused {
				return append([]int{i}, sub...), true
			}
			continue
		}

		if w.classifier.ExcludeFile(entry.Name) {
			continue
		}
		visit(entry)
		budget.Spend()
	}
	return nil, false
}

// List returns dir's children sorted by absolute path. Symlinked directories
// are reported as files so a walk cannot loop.
func (w *Walker) List(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, Entry{
			Path:  filepath.Join(dir, de.Name()),
			Name:  de.Name(),
			IsDir: de.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Children lists the names of dir's entries that a walk would visit.
func (w *Walker) Children(dir string) []string {
	entries, err := w.List(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir && w.classifier.ExcludeDir(entry.Name) {
			continue
		}
		if !entry.IsDir && w.classifier.ExcludeFile(entry.Name) {
			continue
		}
		names = append(names, entry.Name)
	}
	return names
}

// Files lists every non-excluded file below root in walk order.
func (w *Walker) Files(root string) []string {
	files, _ := w.Tree(root)
	return files
}

// Tree lists every non-excluded file and directory below root in walk
// order. root itself is not included.
func (w *Walker) Tree(root string) (files, dirs []string) {
	w.Walk(root, Cursor{}, NewBudget(0, 0), func(e Entry) {
		if e.IsDir {
			dirs = append(dirs, e.Path)
			return
		}
		files = append(files, e.Path)
	})
	return files, dirs
}

func (w *Walker) Classifier() *Classifier {
	return w.classifier
}
