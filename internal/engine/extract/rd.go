package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	rdName  = regexp.MustCompile(`\\name\{([^}]+)\}`)
	rdAlias = regexp.MustCompile(`\\alias\{([^}]+)\}`)
)

const rdUsageOpen = `\usage{`

// extractRd reads R documentation files. Each \name becomes a function
// positioned at its usage section, each \alias a function parented to the
// name it documents.
func extractRd(content, path string) []symbols.Symbol {
	lines := splitLines(content)
	var out []symbols.Symbol

	name := ""
	usage := ""
	usageLine := 0
	inUsage := false

	flush := func() {
		if name == "" {
			return
		}
		out = append(out, symbols.New(name, symbols.TypeFunction, path, usageLine+1, usageLine+1, "", normalizeWhitespace(usage)))
	}

	for i, line := range lines {
		if m := rdName.FindStringSubmatch(line); m != nil {
			flush()
			name = strings.TrimSpace(m[1])
			usage = ""
			inUsage = false
		}

		for _, m := range rdAlias.FindAllStringSubmatch(line, -1) {
			out = append(out, symbols.New(strings.TrimSpace(m[1]), symbols.TypeFunction, path, i+1, i+1, name, ""))
		}

		if idx := strings.Index(line, rdUsageOpen); idx >= 0 {
			inUsage = true
			usageLine = i
			rest := line[idx+len(rdUsageOpen):]
			if closeIdx := rdUsageClose(rest); closeIdx >= 0 {
				usage += rest[:closeIdx]
				inUsage = false
				continue
			}
			usage += rest
			continue
		}
		if inUsage {
			if closeIdx := rdUsageClose(line); closeIdx >= 0 {
				usage += " " + line[:closeIdx]
				inUsage = false
			} else {
				usage += " " + line
			}
		}
	}
	flush()
	return out
}

// rdUsageClose finds the brace that closes the usage section, skipping
// nested macro braces such as \method{print}{foo}.
func rdUsageClose(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
