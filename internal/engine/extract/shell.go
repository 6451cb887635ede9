package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

var (
	shFunctionKeyword = regexp.MustCompile(`^\s*function\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*(?:\(\s*\))?\s*\{?`)
	shFunctionParens  = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\(\s*\)\s*\{?`)
	shExport          = regexp.MustCompile(`^\s*export\s+([a-zA-Z_][a-zA-Z0-9_]*)`)
	shAlias           = regexp.MustCompile(`^\s*alias\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*=`)
)

var shReserved = setOf(
	"if", "then", "else", "elif", "fi", "case", "esac", "for", "select",
	"while", "until", "do", "done", "in", "function", "time", "coproc",
	"alias", "bg", "bind", "break", "builtin", "caller", "cd", "command",
	"compgen", "complete", "continue", "declare", "dirs", "disown", "echo",
	"enable", "eval", "exec", "exit", "export", "fc", "fg", "getopts",
	"hash", "help", "history", "jobs", "kill", "let", "local", "logout",
	"popd", "printf", "pushd", "pwd", "read", "readonly", "return", "set",
	"shift", "shopt", "source", "suspend", "test", "times", "trap", "type",
	"typeset", "ulimit", "umask", "unalias", "unset", "wait",
)

func extractShell(content, path string) []symbols.Symbol {
	lines := splitLines(content)
	var out []symbols.Symbol

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isCommentOrBlank(trimmed, "#") {
			continue
		}
		if m := shFunctionKeyword.FindStringSubmatch(line); m != nil {
			end := shFunctionEnd(lines, i)
			out = append(out, symbols.New(m[1], symbols.TypeFunction, path, i+1, end+1, "", "function "+m[1]+"()"))
			continue
		}
		if m := shFunctionParens.FindStringSubmatch(line); m != nil {
			if shReserved[m[1]] {
				continue
			}
			end := shFunctionEnd(lines, i)
			out = append(out, symbols.New(m[1], symbols.TypeFunction, path, i+1, end+1, "", m[1]+"()"))
			continue
		}
		if m := shExport.FindStringSubmatch(line); m != nil {
			out = append(out, symbols.New(m[1], "exported_variable", path, i+1, i+1, "", "export "+m[1]))
			continue
		}
		if m := shAlias.FindStringSubmatch(line); m != nil {
			out = append(out, symbols.New(m[1], "alias", path, i+1, i+1, "", trimmed))
		}
	}
	return out
}

// shFunctionEnd matches the body braces. The opening brace may sit on the
// definition line or alone on one of the next two lines.
func shFunctionEnd(lines []string, i int) int {
	start := -1
	if strings.Contains(lines[i], "{") {
		start = i
	} else {
		for j := i + 1; j < len(lines) && j < i+3; j++ {
			if strings.TrimSpace(lines[j]) == "{" {
				start = j
				break
			}
		}
	}
	if start < 0 {
		return i
	}
	end, ok := matchBraces(lines, start, 0)
	if !ok {
		return i
	}
	return end
}
