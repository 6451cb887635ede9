package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	stanBlock    = regexp.MustCompile(`^\s*(functions|data|transformed\s+data|parameters|transformed\s+parameters|model|generated\s+quantities)\s*\{`)
	stanFunction = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]*(?:\[\s*,?\s*\])?)\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	stanVariable = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]*)(?:\s*<[^>]*>)?(?:\s*\[[^\]]*\])?\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:\[.*\])?\s*;`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

var stanTypes = setOf(
	"int", "real", "complex", "vector", "row_vector", "matrix", "simplex", "ordered",
	"positive_ordered", "unit_vector", "cholesky_factor_cov", "cholesky_factor_corr",
	"cov_matrix", "corr_matrix", "array", "tuple",
)

var stanVariableBlocks = setOf("data", "parameters", "transformed_data", "transformed_parameters")

func extractStan(content, path string) []symbols.Symbol {
	lines := splitLines(content)
	var out []symbols.Symbol
	block := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isCommentOrBlank(trimmed, "//", "/*") {
			continue
		}

		if m := stanBlock.FindStringSubmatch(line); m != nil {
			block = spaceRun.ReplaceAllString(m[1], "_")
			end, _ := matchBraces(lines, i, 0)
			out = append(out, symbols.New(block, "block", path, i+1, end+1, "", block+" { ... }"))
			continue
		}

		switch {
		case block == "functions":
			m := stanFunction.FindStringSubmatch(line)
			if m == nil || strings.Contains(line, ";") {
				continue
			}
			_, closeLine, _, _ := matchParens(lines, i, 0)
			signature := trimmed
			for j := i + 1; j <= closeLine && j < len(lines); j++ {
				signature += " " + strings.TrimSpace(lines[j])
			}
			end, _ := matchBraces(lines, i, 0)
			out = append(out, symbols.New(m[2], symbols.TypeFunction, path, i+1, end+1, block, normalizeWhitespace(signature)))

		case stanVariableBlocks[block]:
			m := stanVariable.FindStringSubmatch(line)
			if m == nil || !stanTypes[m[1]] {
				continue
			}
			out = append(out, symbols.New(m[2], symbols.TypeVariable, path, i+1, i+1, block, trimmed))
		}
	}
	return out
}
