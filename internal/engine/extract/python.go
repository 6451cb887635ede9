package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	pyDef       = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	pyClass     = regexp.MustCompile(`^\s*class\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	pyLambda    = regexp.MustCompile(`\blambda\b`)
	pyDecorator = regexp.MustCompile(`^\s*@([a-zA-Z_][a-zA-Z0-9._]*)`)
)

type pyClassScope struct {
	name   string
	indent int
}

func extractPython(content, path string) []symbols.Symbol {
	lines := splitLines(content)
	var out []symbols.Symbol
	var classes []pyClassScope

	currentClass := func() string {
		if len(classes) == 0 {
			return ""
		}
		return classes[len(classes)-1].name
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isCommentOrBlank(trimmed, "#") {
			continue
		}
		indent := leadingIndent(line)
		for len(classes) > 0 && classes[len(classes)-1].indent >= indent {
			classes = classes[:len(classes)-1]
		}

		if m := pyDecorator.FindStringSubmatch(line); m != nil {
			out = append(out, symbols.New(m[1], "decorator", path, i+1, i+1, currentClass(), "@"+m[1]))
			continue
		}

		if m := pyClass.FindStringSubmatch(line); m != nil {
			signature := trimmed
			if !strings.HasSuffix(signature, ":") {
				for j := i + 1; j < len(lines); j++ {
					next := strings.TrimSpace(lines[j])
					signature += " " + next
					if strings.Contains(next, ":") {
						break
					}
				}
			}
			end := pyBlockEnd(lines, i, indent)
			out = append(out, symbols.New(m[1], symbols.TypeClass, path, i+1, end+1, currentClass(), normalizeWhitespace(signature)))
			classes = append(classes, pyClassScope{name: m[1], indent: indent})
			continue
		}

		if m := pyDef.FindStringSubmatch(line); m != nil {
			signature := pyDefSignature(lines, i)
			end := pyBlockEnd(lines, i, indent)
			out = append(out, symbols.New(m[1], symbols.TypeFunction, path, i+1, end+1, currentClass(), signature))
			continue
		}

		if pyLambda.MatchString(line) {
			out = append(out, symbols.New("(lambda)", symbols.TypeFunction, path, i+1, i+1, currentClass(), "lambda"))
		}
	}
	return out
}

// pyDefSignature takes the def header through its closing paren, across
// lines when the parameter list wraps.
func pyDefSignature(lines []string, i int) string {
	signature := strings.TrimSpace(lines[i])
	depth := 0
	for j := i; j < len(lines); j++ {
		if j > i {
			signature += " " + strings.TrimSpace(lines[j])
		}
		for _, c := range lines[j] {
			switch c {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return normalizeWhitespace(signature)
				}
			}
		}
		if j > i && strings.Contains(lines[j], ":") {
			break
		}
	}
	return normalizeWhitespace(signature)
}

// pyBlockEnd is the last line indented deeper than the header at line i.
// Blank lines never close a block.
func pyBlockEnd(lines []string, i, indent int) int {
	end := i
	for j := i + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		if leadingIndent(lines[j]) <= indent {
			break
		}
		end = j
	}
	return end
}
