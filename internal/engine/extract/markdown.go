package extract

import (
	"regexp"
	"strconv"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	mdHeader     = regexp.MustCompile(`^(#{1,6})\s+(.*)`)
	mdFenceStart = regexp.MustCompile("^```\\{?(\\w*)(.*)")
	mdFenceEnd   = regexp.MustCompile("^```")
)

// extractMarkdown emits headers, R code chunks and the R functions defined
// inside those chunks. Header end lines are provisional; the relationship
// pass recomputes them by level.
func extractMarkdown(content, path string) []symbols.Symbol {
	lines := splitLines(content)
	var out []symbols.Symbol
	lastHeader := -1
	unnamed := 1

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := mdHeader.FindStringSubmatch(line); m != nil {
			if lastHeader >= 0 {
				out[lastHeader].LineEnd = i
			}
			title := mdHeaderTitle(m[2])
			out = append(out, symbols.New(title, symbols.HeaderType(len(m[1])), path, i+1, i+1, "", ""))
			lastHeader = len(out) - 1
			continue
		}

		m := mdFenceStart.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fenceLine := i
		closeLine := -1
		var body []string
		for j := i + 1; j < len(lines); j++ {
			if mdFenceEnd.MatchString(lines[j]) {
				closeLine = j
				break
			}
			body = append(body, lines[j])
		}
		if closeLine < 0 {
			closeLine = len(lines) - 1
		}
		i = closeLine

		if !strings.EqualFold(m[1], "r") {
			continue
		}
		name := mdChunkName(m[2])
		if name == "" {
			name = "chunk_" + strconv.Itoa(unnamed)
			unnamed++
		}
		out = append(out, symbols.New(name, symbols.TypeChunk, path, fenceLine+1, closeLine+1, "", ""))
		out = append(out, mdChunkFunctions(body, fenceLine+1, name, path)...)
	}
	if lastHeader >= 0 {
		out[lastHeader].LineEnd = len(lines)
	}
	return out
}

func mdHeaderTitle(raw string) string {
	title := strings.TrimRight(raw, " \t")
	if stripped := strings.TrimRight(title, "#"); stripped != "" && stripped != title {
		title = strings.TrimRight(stripped, " \t")
	}
	return title
}

// mdChunkName reads the label that follows the engine in "{r label, opt=...}".
func mdChunkName(options string) string {
	options = strings.TrimLeft(options, " \t")
	if options == "" {
		return ""
	}
	if end := strings.IndexAny(options, " \t,}"); end >= 0 {
		options = options[:end]
	}
	if strings.Contains(options, "=") {
		return ""
	}
	return strings.TrimSpace(options)
}

// mdChunkFunctions runs the R rules over a chunk body. Only function
// definitions are kept and each is parented to the chunk.
func mdChunkFunctions(body []string, offset int, chunk, path string) []symbols.Symbol {
	var out []symbols.Symbol
	for _, sym := range extractR(strings.Join(body, "\n"), path) {
		if sym.Type != symbols.TypeFunction || sym.Name == "(lambda)" {
			continue
		}
		sym.LineStart += offset
		sym.LineEnd += offset
		sym.Parents = chunk
		out = append(out, sym)
	}
	return out
}
