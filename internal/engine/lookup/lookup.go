// Package lookup implements the tiered name search over a symbol store:
// exact match, header phrase match, then word-level fuzzy match.
package lookup

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

const (
	minSimilarity     = 0.15
	maxHeaderWords    = 10
	maxFuzzyWords     = 8
	minFuzzyQueryLen  = 3
	minWordLen        = 3
	minPhraseLen      = 4
	minPrefixLen      = 4
	minSinglePrefix   = 5
	multiWordMatchMin = 0.7
)

var typeFilterRe = regexp.MustCompile(`^(.+?)\s*\(([a-z]+)\)\s*$`)

// Query is a normalized search request.
type Query struct {
	Name       string
	TypePrefix string
}

// ParseQuery folds case, strips trailing whitespace and '#' runs, and splits
// an optional "name (type)" filter.
func ParseQuery(raw string) Query {
	cleaned := cleanName(symbols.Fold(raw))
	if m := typeFilterRe.FindStringSubmatch(cleaned); m != nil {
		return Query{Name: strings.TrimSpace(m[1]), TypePrefix: strings.TrimSpace(m[2])}
	}
	return Query{Name: cleaned}
}

func cleanName(s string) string {
	s = strings.TrimRightFunc(s, isSpace)
	trimmed := strings.TrimRight(s, "#")
	if trimmed != "" && trimmed != s {
		s = strings.TrimRightFunc(trimmed, isSpace)
	}
	return s
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
}

func similarity(a, b string) float64 {
	la, lb := len(a), len(b)
	minLen, maxLen := la, lb
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}
	if maxLen == 0 {
		return 0
	}
	return float64(minLen) / float64(maxLen)
}

func (q Query) accepts(sym symbols.Symbol) bool {
	return q.TypePrefix == "" || strings.HasPrefix(sym.Type, q.TypePrefix)
}

// Find runs the search stages in order and returns the first non-empty result.
func Find(store *symbols.Store, raw string) []symbols.Symbol {
	q := ParseQuery(raw)
	if q.Name == "" {
		return nil
	}

	if results := exactStage(store, q); len(results) > 0 {
		return results
	}
	if results := headerStage(store, q); len(results) > 0 {
		return results
	}
	return fuzzyStage(store, q)
}

func exactStage(store *symbols.Store, q Query) []symbols.Symbol {
	bucket := store.Lookup(q.Name)
	if q.TypePrefix == "" {
		return bucket
	}
	var results []symbols.Symbol
	for _, sym := range bucket {
		if q.accepts(sym) {
			results = append(results, sym)
		}
	}
	return results
}

func headerStage(store *symbols.Store, q Query) []symbols.Symbol {
	words := splitWords(q.Name)
	var results []symbols.Symbol
	store.Each(func(sym *symbols.Symbol) {
		if !q.accepts(*sym) || !symbols.IsHeader(sym.Type) {
			return
		}
		candidate := cleanName(symbols.Fold(sym.Name))

		allWords := len(words) > 0 && len(words) <= maxHeaderWords
		if allWords {
			for _, w := range words {
				if !strings.Contains(candidate, w) {
					allWords = false
					break
				}
			}
		}
		phrase := !allWords && len(q.Name) >= minPhraseLen && strings.Contains(candidate, q.Name)

		if (allWords || phrase) && similarity(q.Name, candidate) > minSimilarity {
			results = append(results, cloneSymbol(sym))
		}
	})
	return results
}

func fuzzyStage(store *symbols.Store, q Query) []symbols.Symbol {
	if len(q.Name) < minFuzzyQueryLen {
		return nil
	}
	words := splitWords(q.Name)
	if len(words) == 0 || len(words) > maxFuzzyWords {
		return nil
	}
	substantial := false
	for _, w := range words {
		if len(w) >= minWordLen {
			substantial = true
			break
		}
	}
	if !substantial {
		return nil
	}

	var results []symbols.Symbol
	store.Each(func(sym *symbols.Symbol) {
		if !q.accepts(*sym) {
			return
		}
		candidate := symbols.Fold(sym.Name)
		if symbols.IsHeader(sym.Type) {
			candidate = cleanName(candidate)
		}
		candidateWords := splitWords(candidate)

		if len(words) == 1 {
			if singleWordMatch(words[0], candidateWords) {
				results = append(results, cloneSymbol(sym))
			}
			return
		}

		matched := 0
		for _, w := range words {
			for _, cw := range candidateWords {
				if (strings.HasPrefix(cw, w) && len(w) >= minPrefixLen) || cw == w || strings.Contains(cw, w) {
					matched++
					break
				}
			}
		}
		ratio := float64(matched) / float64(len(words))
		if ratio >= multiWordMatchMin || matched == len(words) {
			if similarity(q.Name, candidate) > minSimilarity {
				results = append(results, cloneSymbol(sym))
			}
		}
	})
	return results
}

func singleWordMatch(word string, candidateWords []string) bool {
	for _, cw := range candidateWords {
		if cw == word {
			return true
		}
		if len(word) >= minSinglePrefix && strings.HasPrefix(cw, word) {
			return true
		}
	}
	return false
}

func cloneSymbol(sym *symbols.Symbol) symbols.Symbol {
	cp := *sym
	cp.Children = append([]string{}, sym.Children...)
	return cp
}
