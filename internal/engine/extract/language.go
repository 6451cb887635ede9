package extract

import (
	"path/filepath"
	"strings"
)

// Language is the closed set of source kinds with a structural extractor.
type Language int

const (
	LanguageNone Language = iota
	LanguageR
	LanguageCpp
	LanguagePython
	LanguageMarkdown
	LanguageSQL
	LanguageStan
	LanguageShell
	LanguageRd
)

var languageNames = map[Language]string{
	LanguageNone:     "none",
	LanguageR:        "r",
	LanguageCpp:      "cpp",
	LanguagePython:   "python",
	LanguageMarkdown: "markdown",
	LanguageSQL:      "sql",
	LanguageStan:     "stan",
	LanguageShell:    "shell",
	LanguageRd:       "rd",
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "unknown"
}

var extensionLanguages = map[string]Language{
	".r":        LanguageR,
	".c":        LanguageCpp,
	".cc":       LanguageCpp,
	".cpp":      LanguageCpp,
	".cxx":      LanguageCpp,
	".h":        LanguageCpp,
	".hpp":      LanguageCpp,
	".hxx":      LanguageCpp,
	".py":       LanguagePython,
	".pyi":      LanguagePython,
	".pyw":      LanguagePython,
	".md":       LanguageMarkdown,
	".markdown": LanguageMarkdown,
	".rmd":      LanguageMarkdown,
	".qmd":      LanguageMarkdown,
	".sql":      LanguageSQL,
	".stan":     LanguageStan,
	".sh":       LanguageShell,
	".bash":     LanguageShell,
	".zsh":      LanguageShell,
	".rd":       LanguageRd,
}

// Document types reported by the editor host.
var documentTypeLanguages = map[string]Language{
	"r_source":        LanguageR,
	"cpp":             LanguageCpp,
	"python":          LanguagePython,
	"r_markdown":      LanguageMarkdown,
	"quarto_markdown": LanguageMarkdown,
	"sql":             LanguageSQL,
	"sh":              LanguageShell,
}

// ForPath maps a file extension (case-insensitive) to its language.
func ForPath(path string) Language {
	return extensionLanguages[strings.ToLower(filepath.Ext(path))]
}

// ForDocument prefers the host document type and falls back to the extension.
func ForDocument(docType, path string) Language {
	if lang, ok := documentTypeLanguages[docType]; ok {
		return lang
	}
	return ForPath(path)
}
