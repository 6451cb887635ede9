package extract

import (
	"strings"
	"unicode"
)

// splitLines splits on '\n' only and drops a trailing '\r' from each line.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// CountLines is the last line number recorded on a file symbol: one more
// than the number of newlines.
func CountLines(content string) int {
	return strings.Count(content, "\n") + 1
}

func isQuote(r byte) bool {
	return r == '"' || r == '\''
}

func toggles(s string, i int) bool {
	return isQuote(s[i]) && (i == 0 || s[i-1] != '\\')
}

// normalizeWhitespace collapses whitespace runs outside quotes into one
// space. Quoted text is kept as written.
func normalizeWhitespace(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	lastWasSpace := false
	inQuotes := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if isQuote(c) {
			if toggles(input, i) {
				inQuotes = !inQuotes
			}
			b.WriteByte(c)
			lastWasSpace = false
			continue
		}
		if unicode.IsSpace(rune(c)) {
			if inQuotes {
				b.WriteByte(c)
			} else if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		b.WriteByte(c)
		lastWasSpace = false
	}
	out := b.String()
	out = strings.TrimPrefix(out, " ")
	out = strings.TrimSuffix(out, " ")
	return out
}

// formatFunctionParameters separates top-level parameters with ", " and
// pads default-value '=' with single spaces.
func formatFunctionParameters(input string) string {
	var b strings.Builder
	b.Grow(len(input) + 8)
	inQuotes := false
	lastWasComma := false
	depth := 0
	for i := 0; i < len(input); i++ {
		c := input[i]
		if !inQuotes && c == '(' {
			depth++
			b.WriteByte(c)
			continue
		}
		if !inQuotes && c == ')' {
			depth--
			b.WriteByte(c)
			continue
		}
		if isQuote(c) {
			if toggles(input, i) {
				inQuotes = !inQuotes
			}
			b.WriteByte(c)
			lastWasComma = false
			continue
		}
		if !inQuotes && depth == 1 {
			if c == ',' {
				b.WriteString(", ")
				lastWasComma = true
				continue
			}
			if lastWasComma && unicode.IsSpace(rune(c)) {
				continue
			}
			if c == '=' && i > 0 {
				if s := b.String(); s != "" && s[len(s)-1] != ' ' {
					b.WriteByte(' ')
				}
				b.WriteString("= ")
				for i+1 < len(input) && unicode.IsSpace(rune(input[i+1])) {
					i++
				}
				continue
			}
		}
		b.WriteByte(c)
		lastWasComma = false
	}
	return dropHangingComma(b.String())
}

func dropHangingComma(s string) string {
	closeIdx := strings.LastIndexByte(s, ')')
	if closeIdx < 0 {
		return s
	}
	commaIdx := strings.LastIndexByte(s[:closeIdx], ',')
	if commaIdx < 0 {
		return s
	}
	if strings.TrimSpace(s[commaIdx+1:closeIdx]) != "" {
		return s
	}
	return s[:commaIdx] + s[closeIdx:]
}

// matchBraces returns the index of the line that closes the first '{' found
// at or after (start, col). ok is false when no brace opens or none closes.
func matchBraces(lines []string, start, col int) (end int, ok bool) {
	depth := 0
	opened := false
	for j := start; j < len(lines); j++ {
		from := 0
		if j == start {
			from = col
		}
		for i := from; i < len(lines[j]); i++ {
			switch lines[j][i] {
			case '{':
				depth++
				opened = true
			case '}':
				if !opened {
					continue
				}
				depth--
				if depth == 0 {
					return j, true
				}
			}
		}
	}
	return start, false
}

// matchParens joins lines from start until the first '(' at or after col is
// balanced. It returns the text between the parens and the position of the
// closing paren.
func matchParens(lines []string, start, col int) (inner string, endLine, endCol int, ok bool) {
	var b strings.Builder
	depth := 0
	for j := start; j < len(lines); j++ {
		line := lines[j]
		from := 0
		if j == start {
			from = col
		}
		if j > start && depth > 0 {
			b.WriteByte(' ')
		}
		for i := from; i < len(line); i++ {
			c := line[i]
			switch c {
			case '(':
				depth++
				if depth == 1 {
					continue
				}
			case ')':
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					return b.String(), j, i, true
				}
			}
			if depth > 0 {
				b.WriteByte(c)
			}
		}
	}
	return b.String(), len(lines) - 1, -1, false
}

// bodyEnd finds where a block that may open after (line, col) closes. When
// the next non-blank text is not '{' the block is the single line itself.
func bodyEnd(lines []string, line, col int) int {
	rest := ""
	if col+1 <= len(lines[line]) {
		rest = strings.TrimSpace(lines[line][col+1:])
	}
	if strings.HasPrefix(rest, "{") {
		if end, ok := matchBraces(lines, line, col+1); ok {
			return end
		}
		return line
	}
	if rest != "" {
		return line
	}
	for j := line + 1; j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		if strings.HasPrefix(next, "{") {
			if end, ok := matchBraces(lines, j, 0); ok {
				return end
			}
		}
		return line
	}
	return line
}

func joinScope(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "::"
		}
		out += p
	}
	return out
}

func leadingIndent(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

func isCommentOrBlank(trimmed string, prefixes ...string) bool {
	if trimmed == "" {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func setOf(values ...string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

// NormalizeRSignature reformats a stored R function signature into the same
// shape the extractor emits. Other signatures are returned as is.
func NormalizeRSignature(sig string) string {
	if !strings.HasPrefix(sig, "function(") {
		return sig
	}
	return formatFunctionParameters(normalizeWhitespace(sig))
}
