// Package extract turns source text into symbols with per-language line
// heuristics. Extractors are pure: they read the text they are given and
// return symbols tagged with the path they were asked to use.
package extract

import (
	"fmt"
	"log/slog"
	"time"

	"symindex/internal/engine/symbols"
	"symindex/internal/shared/observability"
)

type Extractor interface {
	Extract(content, path string) []symbols.Symbol
}

// ExtractorFunc adapts a plain function to Extractor.
type ExtractorFunc func(content, path string) []symbols.Symbol

func (f ExtractorFunc) Extract(content, path string) []symbols.Symbol {
	return f(content, path)
}

var defaultExtractors = map[Language]Extractor{
	LanguageR:        ExtractorFunc(extractR),
	LanguageCpp:      ExtractorFunc(extractCpp),
	LanguagePython:   ExtractorFunc(extractPython),
	LanguageMarkdown: ExtractorFunc(extractMarkdown),
	LanguageSQL:      ExtractorFunc(extractSQL),
	LanguageStan:     ExtractorFunc(extractStan),
	LanguageShell:    ExtractorFunc(extractShell),
	LanguageRd:       ExtractorFunc(extractRd),
}

// Registry dispatches source text to the extractor registered for its language.
type Registry struct {
	extractors map[Language]Extractor
}

func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[Language]Extractor, len(defaultExtractors))}
	for lang, e := range defaultExtractors {
		r.extractors[lang] = e
	}
	return r
}

func (r *Registry) Register(lang Language, e Extractor) {
	r.extractors[lang] = e
}

func (r *Registry) Supports(lang Language) bool {
	_, ok := r.extractors[lang]
	return ok
}

// Extract runs the extractor for lang. A panicking extractor is logged and
// contributes nothing; the caller still indexes the file itself.
func (r *Registry) Extract(lang Language, content, path string) (out []symbols.Symbol) {
	e, ok := r.extractors[lang]
	if !ok {
		return nil
	}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			observability.ExtractPanicsTotal.WithLabelValues(lang.String()).Inc()
			slog.Error("extractor panicked", "language", lang.String(), "path", path, "panic", fmt.Sprint(rec))
			out = nil
		}
		observability.ParsingDuration.WithLabelValues(lang.String()).Observe(time.Since(start).Seconds())
	}()
	return e.Extract(content, path)
}

// ExtractPath picks the language from the path's extension.
func (r *Registry) ExtractPath(content, path string) []symbols.Symbol {
	return r.Extract(ForPath(path), content, path)
}
