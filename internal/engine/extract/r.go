package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	rTrailingIdent = regexp.MustCompile(`([A-Za-z._][A-Za-z0-9._]*)\s*$`)
	rFunctionStart = regexp.MustCompile(`^function\s*\(`)
	rSetMethod     = regexp.MustCompile(`setMethod\s*\(\s*["']([^"']+)["']`)
	rNamespace     = regexp.MustCompile(`(?:library|require)\s*\(\s*["']?([^"')]+)["']?\s*\)`)
)

type rFrame struct {
	name string
	end  int
}

func extractR(content, path string) []symbols.Symbol {
	lines := splitLines(content)
	var out []symbols.Symbol
	var stack []rFrame
	namespace := ""

	current := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1].name
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isCommentOrBlank(trimmed, "#") {
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].end < i {
			stack = stack[:len(stack)-1]
		}

		if name, fnLine, fnCol, ok := rFunctionAssignment(lines, i); ok {
			signature, end := rSignature(lines, fnLine, fnCol)
			parents := joinScope(namespace, current())
			out = append(out, symbols.New(name, symbols.TypeFunction, path, i+1, end+1, parents, signature))
			stack = append(stack, rFrame{name: name, end: end})
		}

		if rHasLambda(line) {
			out = append(out, symbols.New("(lambda)", symbols.TypeFunction, path, i+1, i+1, current(), `\(...)`))
		}

		if m := rSetMethod.FindStringSubmatch(line); m != nil {
			out = append(out, symbols.New(m[1], symbols.TypeMethod, path, i+1, i+1, namespace, `setMethod("`+m[1]+`")`))
		}

		if m := rNamespace.FindStringSubmatch(line); m != nil {
			namespace = strings.TrimSpace(m[1])
		}
	}
	return out
}

// rFunctionAssignment recognizes `name <- function(` with the function keyword
// either after the operator or opening one of the next three meaningful lines.
func rFunctionAssignment(lines []string, i int) (name string, fnLine, fnCol int, ok bool) {
	line := lines[i]
	pos, width := rAssignment(line)
	if pos < 0 {
		return "", 0, 0, false
	}
	m := rTrailingIdent.FindStringSubmatch(line[:pos])
	if m == nil {
		return "", 0, 0, false
	}
	name = m[1]

	after := line[pos+width:]
	trimmedAfter := strings.TrimLeft(after, " \t")
	if rFunctionStart.MatchString(trimmedAfter) {
		return name, i, pos + width + (len(after) - len(trimmedAfter)), true
	}
	if strings.TrimSpace(after) != "" {
		return "", 0, 0, false
	}
	for j := i + 1; j < len(lines) && j <= i+3; j++ {
		next := strings.TrimLeft(lines[j], " \t")
		if isCommentOrBlank(strings.TrimSpace(next), "#") {
			continue
		}
		if rFunctionStart.MatchString(next) {
			return name, j, len(lines[j]) - len(next), true
		}
		break
	}
	return "", 0, 0, false
}

// rAssignment finds the first left-assignment operator outside strings and
// brackets. Comparison operators are not assignments.
func rAssignment(line string) (pos, width int) {
	depth := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '#':
			return -1, 0
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '<':
			if depth != 0 {
				continue
			}
			if strings.HasPrefix(line[i:], "<<-") {
				return i, 3
			}
			if strings.HasPrefix(line[i:], "<-") {
				return i, 2
			}
		case ':':
			if depth == 0 && strings.HasPrefix(line[i:], ":=") {
				return i, 2
			}
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(line) && line[i+1] == '=' {
				i++
				continue
			}
			if i > 0 && strings.ContainsRune("<>!=", rune(line[i-1])) {
				continue
			}
			return i, 1
		}
	}
	return -1, 0
}

// rSignature renders `function(...)` from the keyword at (line, col) and
// returns the line where the body ends.
func rSignature(lines []string, line, col int) (string, int) {
	params, closeLine, closeCol, ok := matchParens(lines, line, col+len("function"))
	if !ok {
		if strings.TrimSpace(params) == "" {
			return "function()", line
		}
		return formatFunctionParameters(normalizeWhitespace("function(" + params + ")")), line
	}
	signature := formatFunctionParameters(normalizeWhitespace("function(" + params + ")"))
	return signature, bodyEnd(lines, closeLine, closeCol)
}

// rHasLambda reports a `\(` shorthand function outside string literals.
func rHasLambda(line string) bool {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '#':
			return false
		case '\\':
			rest := strings.TrimLeft(line[i+1:], " \t")
			if strings.HasPrefix(rest, "(") {
				return true
			}
		}
	}
	return false
}
