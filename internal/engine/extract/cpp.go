package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	cppTemplate   = regexp.MustCompile(`^\s*template\s*<`)
	cppDefine     = regexp.MustCompile(`^\s*#\s*define\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	cppNamespace  = regexp.MustCompile(`^\s*namespace\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	cppClass      = regexp.MustCompile(`^\s*(?:typedef\s+)?(class|struct|union)\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	cppEnum       = regexp.MustCompile(`^\s*(?:typedef\s+)?enum\s+(?:class\s+|struct\s+)?([a-zA-Z_][a-zA-Z0-9_]*)`)
	cppDestructor = regexp.MustCompile(`^\s*(?:virtual\s+)?(?:[a-zA-Z_][a-zA-Z0-9_]*::)?~([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	cppCtor       = regexp.MustCompile(`^\s*(?:explicit\s+|inline\s+|constexpr\s+)*([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	cppFunction   = regexp.MustCompile(`^\s*(?:static\s+|inline\s+|virtual\s+|explicit\s+|constexpr\s+|extern\s+)*(?:[a-zA-Z_][a-zA-Z0-9_:<>,]*\s*[*&]*\s+)+[*&]*(?:[a-zA-Z_][a-zA-Z0-9_]*::)*([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	cppFirstWord  = regexp.MustCompile(`^\s*([a-zA-Z_]+)`)
)

var cppKeywords = setOf(
	"if", "else", "for", "while", "do", "switch", "case", "return", "sizeof",
	"catch", "new", "delete", "throw", "goto", "using", "typedef", "template",
	"static_assert", "decltype", "alignof", "noexcept",
)

// Statements that look like `type name(` but never declare anything.
var cppStatementWords = setOf("return", "else", "new", "delete", "throw", "case", "goto", "co_return")

type cppScope struct {
	name string
	end  int
}

type cppState struct {
	path       string
	lines      []string
	out        []symbols.Symbol
	namespaces []cppScope
	classes    []cppScope
	bodyEnd    int
	template   bool
}

func extractCpp(content, path string) []symbols.Symbol {
	st := &cppState{path: path, lines: splitLines(content), bodyEnd: -1}
	for i := range st.lines {
		st.line(i)
	}
	return st.out
}

func (st *cppState) namespace() string {
	names := make([]string, 0, len(st.namespaces))
	for _, ns := range st.namespaces {
		names = append(names, ns.name)
	}
	return joinScope(names...)
}

func (st *cppState) class() string {
	if len(st.classes) == 0 {
		return ""
	}
	return st.classes[len(st.classes)-1].name
}

func (st *cppState) memberParents() string {
	return joinScope(st.namespace(), st.class())
}

func (st *cppState) add(name, typ string, start, end int, parents, signature string) {
	st.out = append(st.out, symbols.New(name, typ, st.path, start+1, end+1, parents, signature))
}

func (st *cppState) signature(text string) string {
	text = normalizeWhitespace(text)
	if st.template {
		text = "template " + text
		st.template = false
	}
	return text
}

func (st *cppState) line(i int) {
	line := st.lines[i]
	trimmed := strings.TrimSpace(line)
	if isCommentOrBlank(trimmed, "//", "/*", "*") {
		return
	}
	for len(st.namespaces) > 0 && st.namespaces[len(st.namespaces)-1].end < i {
		st.namespaces = st.namespaces[:len(st.namespaces)-1]
	}
	for len(st.classes) > 0 && st.classes[len(st.classes)-1].end < i {
		st.classes = st.classes[:len(st.classes)-1]
	}

	if m := cppDefine.FindStringSubmatch(line); m != nil {
		st.add(m[1], "macro", i, i, "", trimmed)
		return
	}
	if strings.HasPrefix(trimmed, "#") {
		return
	}
	if i <= st.bodyEnd {
		return
	}
	if cppTemplate.MatchString(line) {
		st.template = true
		rest := cppAfterTemplate(trimmed)
		if rest == "" {
			return
		}
		line, trimmed = rest, rest
	}

	if m := cppNamespace.FindStringSubmatch(line); m != nil && !strings.Contains(line, "=") {
		end, _ := matchBraces(st.lines, i, 0)
		st.add(m[1], "namespace", i, end, st.namespace(), "namespace "+m[1])
		st.namespaces = append(st.namespaces, cppScope{name: m[1], end: end})
		return
	}

	if m := cppEnum.FindStringSubmatch(line); m != nil {
		end := i
		for j := i; j < len(st.lines); j++ {
			if strings.Contains(st.lines[j], "};") {
				end = j
				break
			}
		}
		st.add(m[1], "enum", i, end, st.memberParents(), trimmed)
		return
	}

	if m := cppClass.FindStringSubmatch(line); m != nil && !strings.Contains(line, "(") {
		kind, name := m[1], m[2]
		if strings.Contains(line, ";") && !strings.Contains(line, "{") {
			// Forward declaration.
			st.add(name, kind, i, i, st.namespace(), st.signature(trimmed))
			return
		}
		end, ok := matchBraces(st.lines, i, 0)
		st.add(name, kind, i, end, st.namespace(), st.signature(trimmed))
		if ok {
			st.classes = append(st.classes, cppScope{name: name, end: end})
		}
		return
	}

	if m := cppDestructor.FindStringSubmatch(line); m != nil {
		end := st.functionEnd(i)
		st.add("~"+m[1], "destructor", i, end, st.memberParents(), normalizeWhitespace(trimmed))
		return
	}

	if cls := st.class(); cls != "" {
		if m := cppCtor.FindStringSubmatch(line); m != nil && m[1] == cls {
			end := st.functionEnd(i)
			st.add(cls, "constructor", i, end, st.namespace(), normalizeWhitespace(trimmed))
			return
		}
	}

	if m := cppFunction.FindStringSubmatch(line); m != nil {
		name := m[1]
		if cppKeywords[name] || name == st.class() {
			return
		}
		if w := cppFirstWord.FindStringSubmatch(line); w != nil && cppStatementWords[w[1]] {
			return
		}
		signature, end, definition := st.functionSignature(i, trimmed)
		st.add(name, symbols.TypeFunction, i, end, st.memberParents(), st.signature(signature))
		if definition {
			st.bodyEnd = end
		}
		return
	}

	if st.template && !strings.HasSuffix(trimmed, "\\") {
		st.template = false
	}
}

// functionEnd closes a constructor or destructor body that opens on line i.
func (st *cppState) functionEnd(i int) int {
	if !strings.Contains(st.lines[i], "{") {
		return i
	}
	end, ok := matchBraces(st.lines, i, 0)
	if !ok {
		return i
	}
	st.bodyEnd = end
	return end
}

// functionSignature collects a declaration or definition header starting on
// line i, following it for up to ten lines when it spans several.
func (st *cppState) functionSignature(i int, trimmed string) (signature string, end int, definition bool) {
	line := st.lines[i]
	if semi, brace := strings.Index(line, ";"), strings.Index(line, "{"); semi >= 0 && (brace < 0 || semi < brace) {
		return trimmed, i, false
	}
	if strings.Contains(line, "{") {
		end, _ := matchBraces(st.lines, i, 0)
		return trimmed, end, true
	}
	signature = trimmed
	for j := i + 1; j < len(st.lines) && j < i+10; j++ {
		next := st.lines[j]
		signature += " " + strings.TrimSpace(next)
		if strings.Contains(next, ";") && !strings.Contains(next, "{") {
			return signature, j, false
		}
		if strings.Contains(next, "{") {
			end, _ := matchBraces(st.lines, j, 0)
			return signature, end, true
		}
	}
	return signature, i, false
}

// cppAfterTemplate strips a leading template parameter list.
func cppAfterTemplate(trimmed string) string {
	start := strings.Index(trimmed, "<")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(trimmed); i++ {
		switch trimmed[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return strings.TrimSpace(trimmed[i+1:])
			}
		}
	}
	return ""
}
