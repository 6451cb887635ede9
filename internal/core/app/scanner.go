package app

import (
	"os"
	"path/filepath"

	"symindex/internal/core/ports"
	"symindex/internal/engine/extract"
	"symindex/internal/engine/symbols"
	"symindex/internal/engine/traversal"
)

// fileSymbols reads one file from disk and returns its file-level symbol
// followed by whatever the language extractor finds. Read failures still
// yield the file symbol, with an empty line range.
func (s *SymbolIndex) fileSymbols(path string) []symbols.Symbol {
	name := filepath.Base(path)
	switch traversal.Classify(path) {
	case traversal.KindImage:
		return []symbols.Symbol{symbols.New(name, symbols.TypeImage, path, 0, 0, "", "")}
	case traversal.KindBinary:
		return []symbols.Symbol{symbols.New(name, symbols.TypeBinary, path, 0, 0, "", "")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("failed to read file", "path", path, "error", err)
		return []symbols.Symbol{symbols.New(name, symbols.TypeFile, path, 1, 0, "", "")}
	}
	content := string(data)
	out := []symbols.Symbol{symbols.New(name, symbols.TypeFile, path, 1, extract.CountLines(content), "", "")}
	if traversal.IsIndexable(path) {
		out = append(out, s.extractors.ExtractPath(content, path)...)
	}
	return out
}

func directorySymbol(path string) symbols.Symbol {
	return symbols.New(filepath.Base(path), symbols.TypeDirectory, path, 0, 0, "", "")
}

// entrySymbols turns one walk entry into symbols.
func (s *SymbolIndex) entrySymbols(e traversal.Entry) []symbols.Symbol {
	if e.IsDir {
		return []symbols.Symbol{directorySymbol(e.Path)}
	}
	return s.fileSymbols(e.Path)
}

// documentPath is the path a buffer's symbols are filed under: the resolved
// saved path, or a synthetic one namespaced by the first four characters of
// the document id.
func (s *SymbolIndex) documentPath(doc ports.Document) string {
	if !doc.Unsaved() {
		return s.resolvePath(doc.Path)
	}
	name := doc.TempName
	if name == "" {
		name = "Untitled"
	}
	return unsavedPrefix(doc.ID) + name
}

func unsavedPrefix(id string) string {
	if id == "" {
		return symbols.UnsavedPrefix + "__/"
	}
	if len(id) > 4 {
		id = id[:4]
	}
	return symbols.UnsavedPrefix + "_" + id + "__/"
}

func (s *SymbolIndex) resolvePath(path string) string {
	if s.docs != nil {
		path = s.docs.ResolveAliasedPath(path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// documentSymbols extracts a buffer's live text, filed under path.
func (s *SymbolIndex) documentSymbols(doc ports.Document, path string) []symbols.Symbol {
	lang := extract.ForDocument(doc.Type, path)
	out := s.extractors.Extract(lang, doc.Contents, path)

	parent := ""
	if !doc.Unsaved() {
		parent = symbols.DirName(path)
	}
	file := symbols.New(symbols.BaseName(path), symbols.TypeFile, path, 1, extract.CountLines(doc.Contents), parent, "")
	return append(out, file)
}
