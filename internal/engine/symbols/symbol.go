// Package symbols holds the symbol model, the name-keyed store and the
// parent/child relationship pass that runs over it.
package symbols

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

const (
	TypeFile      = "file"
	TypeDirectory = "directory"
	TypeImage     = "image"
	TypeBinary    = "binary"
	TypeFunction  = "function"
	TypeChunk     = "chunk"
	TypeMethod    = "method"
	TypeClass     = "class"
	TypeVariable  = "variable"

	headerPrefix = "header"

	// UnsavedPrefix starts every synthetic path given to an unsaved buffer.
	UnsavedPrefix = "__UNSAVED"
)

type Symbol struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	FilePath  string   `json:"file"`
	FileName  string   `json:"filename"`
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Parents   string   `json:"parents"`
	Signature string   `json:"signature"`
	Children  []string `json:"children"`
}

func New(name, typ, filePath string, lineStart, lineEnd int, parents, signature string) Symbol {
	return Symbol{
		Name:      name,
		Type:      typ,
		FilePath:  filePath,
		FileName:  BaseName(filePath),
		LineStart: lineStart,
		LineEnd:   lineEnd,
		Parents:   parents,
		Signature: signature,
		Children:  []string{},
	}
}

// SameInstance reports whether two symbols share the (name, file, start line) identity.
func (s Symbol) SameInstance(other Symbol) bool {
	return s.Name == other.Name && s.FilePath == other.FilePath && s.LineStart == other.LineStart
}

func (s *Symbol) AddChild(name string) {
	for _, existing := range s.Children {
		if existing == name {
			return
		}
	}
	s.Children = append(s.Children, name)
}

// IsFileLike covers the per-file artifact kinds: text files, images and binaries.
func (s Symbol) IsFileLike() bool {
	return s.Type == TypeFile || s.Type == TypeImage || s.Type == TypeBinary
}

func HeaderType(level int) string {
	return headerPrefix + strconv.Itoa(level)
}

// HeaderLevel returns the level encoded in a "headerN" type.
func HeaderLevel(typ string) (int, bool) {
	if !strings.HasPrefix(typ, headerPrefix) {
		return 0, false
	}
	level, err := strconv.Atoi(typ[len(headerPrefix):])
	if err != nil || level < 1 || level > 9 {
		return 1, true
	}
	return level, true
}

func IsHeader(typ string) bool {
	return strings.HasPrefix(typ, headerPrefix)
}

// IsUnsavedPath reports whether path was synthesized for an unsaved buffer.
func IsUnsavedPath(path string) bool {
	return strings.HasPrefix(path, UnsavedPrefix)
}

// BaseName splits on either separator so synthetic and Windows paths behave alike.
func BaseName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// DirName is the counterpart of BaseName.
func DirName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		if idx == 0 {
			return path[:1]
		}
		return path[:idx]
	}
	return ""
}

// Fold is the case folding applied to store keys and queries.
func Fold(s string) string {
	return cases.Fold().String(s)
}
