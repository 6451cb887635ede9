package symbols

import (
	"reflect"
	"testing"
)

func find(t *testing.T, s *Store, name, typ string) Symbol {
	t.Helper()
	for _, sym := range s.Lookup(Fold(name)) {
		if sym.Type == typ {
			return sym
		}
	}
	t.Fatalf("symbol %s (%s) not found", name, typ)
	return Symbol{}
}

func TestBuildRelationships_MarkdownHeaders(t *testing.T) {
	s := NewStore()
	s.AddAll([]Symbol{
		New("doc.md", TypeFile, "/p/doc.md", 1, 6, "", ""),
		New("A", HeaderType(1), "/p/doc.md", 1, 6, "", ""),
		New("B", HeaderType(2), "/p/doc.md", 3, 6, "", ""),
	})

	BuildRelationships(s, nil)

	a := find(t, s, "A", "header1")
	b := find(t, s, "B", "header2")
	file := find(t, s, "doc.md", TypeFile)

	if a.LineStart != 1 || a.LineEnd != 6 {
		t.Fatalf("expected A to span 1..6, got %d..%d", a.LineStart, a.LineEnd)
	}
	if !reflect.DeepEqual(a.Children, []string{"B"}) {
		t.Fatalf("expected A children [B], got %v", a.Children)
	}
	if b.Parents != "A" || b.LineEnd != 6 {
		t.Fatalf("expected B parent A ending at 6, got %q %d", b.Parents, b.LineEnd)
	}
	if a.Parents != "/p/doc.md" {
		t.Fatalf("expected top header parent to be the file path, got %q", a.Parents)
	}
	if file.Parents != "/p" || !reflect.DeepEqual(file.Children, []string{"A"}) {
		t.Fatalf("unexpected file relations: parents=%q children=%v", file.Parents, file.Children)
	}
}

func TestBuildRelationships_HeaderEndsBeforeSibling(t *testing.T) {
	s := NewStore()
	s.AddAll([]Symbol{
		New("doc.md", TypeFile, "/p/doc.md", 1, 20, "", ""),
		New("One", HeaderType(1), "/p/doc.md", 1, 20, "", ""),
		New("Sub", HeaderType(2), "/p/doc.md", 4, 20, "", ""),
		New("Two", HeaderType(1), "/p/doc.md", 10, 20, "", ""),
		New("Deep", HeaderType(3), "/p/doc.md", 12, 20, "", ""),
	})

	BuildRelationships(s, nil)

	if got := find(t, s, "One", "header1"); got.LineEnd != 9 {
		t.Fatalf("expected One to end at 9, got %d", got.LineEnd)
	}
	if got := find(t, s, "Sub", "header2"); got.LineEnd != 9 || got.Parents != "One" {
		t.Fatalf("expected Sub to end at 9 under One, got %d %q", got.LineEnd, got.Parents)
	}
	// A level-3 header with no level-2 between attaches to the nearest lower level.
	if got := find(t, s, "Deep", "header3"); got.Parents != "Two" {
		t.Fatalf("expected Deep parent Two, got %q", got.Parents)
	}
	file := find(t, s, "doc.md", TypeFile)
	if !reflect.DeepEqual(file.Children, []string{"One", "Two"}) {
		t.Fatalf("unexpected file children %v", file.Children)
	}
}

func TestBuildRelationships_OrphanSubheader(t *testing.T) {
	s := NewStore()
	s.AddAll([]Symbol{
		New("notes.md", TypeFile, "/p/notes.md", 1, 8, "", ""),
		New("Lead", HeaderType(2), "/p/notes.md", 1, 8, "", ""),
		New("Top", HeaderType(1), "/p/notes.md", 5, 8, "", ""),
	})

	BuildRelationships(s, nil)

	if got := find(t, s, "Lead", "header2"); got.Parents != "/p/notes.md" || got.LineEnd != 4 {
		t.Fatalf("expected Lead to fall back to the file and end at 4, got %q %d", got.Parents, got.LineEnd)
	}
	file := find(t, s, "notes.md", TypeFile)
	if !reflect.DeepEqual(file.Children, []string{"Top"}) {
		t.Fatalf("expected only level-1 headers among file children, got %v", file.Children)
	}
}

func TestBuildRelationships_FunctionParents(t *testing.T) {
	s := NewStore()
	s.AddAll([]Symbol{
		New("doc.Rmd", TypeFile, "/p/doc.Rmd", 1, 30, "", ""),
		New("Intro", HeaderType(1), "/p/doc.Rmd", 1, 30, "", ""),
		New("Details", HeaderType(2), "/p/doc.Rmd", 10, 30, "", ""),
		New("setup", TypeChunk, "/p/doc.Rmd", 3, 6, "", ""),
		New("in_chunk", TypeFunction, "/p/doc.Rmd", 4, 5, "setup", "function()"),
		New("in_details", TypeFunction, "/p/doc.Rmd", 12, 12, "", "function()"),
		New("in_intro", TypeFunction, "/p/doc.Rmd", 8, 8, "", "function()"),
	})

	BuildRelationships(s, nil)

	if got := find(t, s, "in_chunk", TypeFunction); got.Parents != "setup" {
		t.Fatalf("expected chunk parent, got %q", got.Parents)
	}
	if got := find(t, s, "setup", TypeChunk); got.Parents != "/p/doc.Rmd" || !reflect.DeepEqual(got.Children, []string{"in_chunk"}) {
		t.Fatalf("unexpected chunk relations: %q %v", got.Parents, got.Children)
	}
	if got := find(t, s, "in_details", TypeFunction); got.Parents != "Details" {
		t.Fatalf("expected deepest header parent, got %q", got.Parents)
	}
	if got := find(t, s, "in_intro", TypeFunction); got.Parents != "Intro" {
		t.Fatalf("expected Intro parent, got %q", got.Parents)
	}
	intro := find(t, s, "Intro", "header1")
	if !reflect.DeepEqual(intro.Children, []string{"Details", "in_intro"}) {
		t.Fatalf("unexpected Intro children %v", intro.Children)
	}
	file := find(t, s, "doc.Rmd", TypeFile)
	if !reflect.DeepEqual(file.Children, []string{"Intro", "setup"}) {
		t.Fatalf("unexpected file children %v", file.Children)
	}
}

func TestBuildRelationships_FileFallbackAndDirectories(t *testing.T) {
	s := NewStore()
	s.AddAll([]Symbol{
		New("p", TypeDirectory, "/p", 0, 0, "stale", ""),
		New("a.R", TypeFile, "/p/a.R", 1, 10, "", ""),
		New("foo", TypeFunction, "/p/a.R", 1, 3, "pkg::outer", "function(x)"),
		New("bar", TypeFunction, "/p/a.R", 5, 6, "", "function()"),
		New("Untitled1", TypeFile, "__UNSAVED_ab12__/Untitled1", 1, 1, "", ""),
	})

	BuildRelationships(s, func(dir string) []string {
		if dir != "/p" {
			t.Fatalf("unexpected lister call for %q", dir)
		}
		return []string{"a.R", "sub"}
	})

	file := find(t, s, "a.R", TypeFile)
	if !reflect.DeepEqual(file.Children, []string{"foo", "bar"}) {
		t.Fatalf("unexpected file children %v", file.Children)
	}
	if got := find(t, s, "foo", TypeFunction); got.Parents != "/p/a.R" {
		t.Fatalf("expected file fallback parent, got %q", got.Parents)
	}
	dir := find(t, s, "p", TypeDirectory)
	if dir.Parents != "" || !reflect.DeepEqual(dir.Children, []string{"a.R", "sub"}) {
		t.Fatalf("unexpected directory relations %q %v", dir.Parents, dir.Children)
	}
	if got := find(t, s, "Untitled1", TypeFile); got.Parents != "" {
		t.Fatalf("expected unsaved file to have no parent, got %q", got.Parents)
	}
}

func TestBuildRelationships_Idempotent(t *testing.T) {
	s := NewStore()
	s.AddAll([]Symbol{
		New("doc.md", TypeFile, "/p/doc.md", 1, 6, "", ""),
		New("A", HeaderType(1), "/p/doc.md", 1, 6, "", ""),
		New("B", HeaderType(2), "/p/doc.md", 3, 6, "", ""),
	})
	BuildRelationships(s, nil)
	first := s.All()
	BuildRelationships(s, nil)
	if !reflect.DeepEqual(first, s.All()) {
		t.Fatalf("expected relationship pass to be idempotent")
	}
}
