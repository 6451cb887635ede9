package extract

import (
	"testing"

	"symindex/internal/engine/symbols"
)

func TestForPathAndDocument(t *testing.T) {
	cases := []struct {
		docType string
		path    string
		want    Language
	}{
		{"", "/p/a.R", LanguageR},
		{"", "/p/A.HPP", LanguageCpp},
		{"", "/p/notes.qmd", LanguageMarkdown},
		{"", "/p/run.zsh", LanguageShell},
		{"", "/p/readme.txt", LanguageNone},
		{"r_markdown", "/p/untitled", LanguageMarkdown},
		{"sh", "/p/script", LanguageShell},
		{"text", "/p/tool.py", LanguagePython},
	}
	for _, tc := range cases {
		if got := ForDocument(tc.docType, tc.path); got != tc.want {
			t.Fatalf("ForDocument(%q, %q) = %s, want %s", tc.docType, tc.path, got, tc.want)
		}
	}
}

func TestRegistry_RecoversFromPanic(t *testing.T) {
	r := NewRegistry()
	r.Register(LanguageSQL, ExtractorFunc(func(string, string) []symbols.Symbol {
		panic("boom")
	}))
	if out := r.Extract(LanguageSQL, "CREATE TABLE t (id INT);", "/p/t.sql"); out != nil {
		t.Fatalf("expected no symbols after panic, got %+v", out)
	}
	if out := r.ExtractPath("x <- function() 1", "/p/x.r"); len(out) != 1 {
		t.Fatalf("expected registry to keep serving other languages, got %+v", out)
	}
}

func TestRegistry_UnknownLanguage(t *testing.T) {
	r := NewRegistry()
	if r.Supports(LanguageNone) {
		t.Fatal("LanguageNone must not have an extractor")
	}
	if out := r.Extract(LanguageNone, "anything", "/p/file.txt"); out != nil {
		t.Fatalf("expected nil, got %+v", out)
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  a \t\n b   \"keep   this\"  c ")
	if got != `a b "keep   this" c` {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatFunctionParameters(t *testing.T) {
	got := formatFunctionParameters("function(a,b=2,  c = 'x, y',)")
	if got != "function(a, b = 2, c = 'x, y')" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestCountLines(t *testing.T) {
	cases := map[string]int{"": 1, "a": 1, "a\nb": 2, "a\nb\n": 3}
	for in, want := range cases {
		if got := CountLines(in); got != want {
			t.Fatalf("CountLines(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestNormalizeRSignature(t *testing.T) {
	if got := NormalizeRSignature("function(a,\n   b=1)"); got != "function(a, b = 1)" {
		t.Fatalf("unexpected %q", got)
	}
	if got := NormalizeRSignature("def f(a,b)"); got != "def f(a,b)" {
		t.Fatalf("non-R signature changed: %q", got)
	}
}
