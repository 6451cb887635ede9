package cli

import (
	"errors"
	"strings"
	"testing"

	"symindex/internal/engine/symbols"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSearcher struct {
	queries []string
	results map[string][]symbols.Symbol
	err     error
}

func (f *fakeSearcher) FindSymbol(query string) ([]symbols.Symbol, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeSearcher) WorkingDirectory() string { return "/work" }
func (f *fakeSearcher) PendingFileCount() int    { return 0 }

func typeText(m tea.Model, text string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestModel_SearchesAsYouType(t *testing.T) {
	foo := symbols.New("foo", symbols.TypeFunction, "/work/a.R", 1, 1, "/work/a.R", "function(x)")
	index := &fakeSearcher{results: map[string][]symbols.Symbol{"foo": {foo}}}

	m := typeText(initialModel(index), "foo").(model)
	if len(m.results) != 1 || m.results[0].Name != "foo" {
		t.Fatalf("expected one result for foo, got %v", m.results)
	}
	view := m.View()
	if !strings.Contains(view, "foo") || !strings.Contains(view, "/work/a.R:1") {
		t.Fatalf("view is missing the result: %q", view)
	}
}

func TestModel_RerunsOnlyOnChange(t *testing.T) {
	index := &fakeSearcher{}
	var m tea.Model = initialModel(index)
	m = typeText(m, "ab")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if len(index.queries) != 1 {
		t.Fatalf("expected one lookup, got %v", index.queries)
	}

	m, _ = m.Update(indexUpdatedMsg{})
	if len(index.queries) != 2 || index.queries[1] != "ab" {
		t.Fatalf("expected a forced rerun after an index update, got %v", index.queries)
	}
	if !strings.Contains(m.View(), "no matches") {
		t.Fatalf("expected empty-result status in view")
	}
}

func TestModel_ShowsLookupError(t *testing.T) {
	index := &fakeSearcher{err: errors.New("symbol index has not been built")}
	m := typeText(initialModel(index), "x").(model)
	if m.err == nil || !strings.Contains(m.View(), "not been built") {
		t.Fatalf("expected the lookup error in the view")
	}
}

func TestModel_SelectionAndQuit(t *testing.T) {
	syms := []symbols.Symbol{
		symbols.New("alpha", symbols.TypeFunction, "/work/a.R", 1, 2, "", ""),
		symbols.New("alphabet", symbols.TypeFunction, "/work/b.R", 3, 4, "", ""),
	}
	index := &fakeSearcher{results: map[string][]symbols.Symbol{"alpha": syms}}
	var m tea.Model = typeText(initialModel(index), "alpha")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(model).selected; got != 1 {
		t.Fatalf("expected selection to stop at the last result, got %d", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(model).selected; got != 0 {
		t.Fatalf("expected selection 0, got %d", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected esc to quit")
	}
}
