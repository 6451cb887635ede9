package traversal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Kind is the coarse classification of a file by extension.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindBinary:
		return "binary"
	default:
		return "file"
	}
}

// OS, VCS and editor artifacts that never enter the index.
var defaultExcludedFiles = []string{
	".DS_Store", "._.DS_Store", "._*",
	".Spotlight-V100", ".Trashes", ".fseventsd", ".VolumeIcon.icns",
	".com.apple.timemachine.donotpresent",
	"Thumbs.db", "Desktop.ini", "System Volume Information", "$RECYCLE.BIN",
	".git", ".svn", ".hg", ".gitignore", ".gitattributes", ".gitmodules",
	".vscode", ".idea",
	"*.tmp", "*.swp", "*.swo", "*~", "#*#", ".#*",
}

var imageExtensions = setOf(
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".tiff", ".webp", ".ico", ".psd",
)

var binaryExtensions = setOf(
	".exe", ".dll", ".so", ".dylib", ".obj", ".o", ".a", ".lib",
	".zip", ".gz", ".tar", ".7z", ".rar", ".jar", ".war", ".ear",
	".mp3", ".mp4", ".avi", ".mov", ".mkv", ".wav", ".flac", ".ogg",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".db", ".sqlite", ".mdb", ".accdb", ".frm", ".dbf",
	".bin", ".dat", ".class", ".pyc", ".pyo",
)

var indexableExtensions = setOf(
	".r", ".c", ".cpp", ".cc", ".h", ".hpp", ".cxx", ".hxx",
	".py", ".pyi", ".pyw",
	".md", ".rmd", ".qmd", ".markdown",
	".sh", ".bash", ".zsh", ".bat", ".cmd", ".ps1",
	".sql", ".rd", ".stan",
)

func setOf(values ...string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

// Classifier decides which entries are skipped and how files are typed.
type Classifier struct {
	excludeFiles []glob.Glob
	excludeDirs  []glob.Glob
}

// NewClassifier compiles the built-in exclusion set plus extra glob patterns
// matched against base names.
func NewClassifier(extraDirs, extraFiles []string) (*Classifier, error) {
	c := &Classifier{}
	for _, pattern := range append(append([]string{}, defaultExcludedFiles...), extraFiles...) {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile file exclusion %q: %w", pattern, err)
		}
		c.excludeFiles = append(c.excludeFiles, g)
	}
	for _, pattern := range extraDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile directory exclusion %q: %w", pattern, err)
		}
		c.excludeDirs = append(c.excludeDirs, g)
	}
	return c, nil
}

// DefaultClassifier uses only the built-in rules.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(nil, nil)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Classifier) ExcludeFile(name string) bool {
	for _, g := range c.excludeFiles {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ExcludeDir skips hidden directories, *_cache directories and configured patterns.
func (c *Classifier) ExcludeDir(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "_cache") {
		return true
	}
	for _, g := range c.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func Classify(path string) Kind {
	ext := Extension(path)
	switch {
	case imageExtensions[ext]:
		return KindImage
	case binaryExtensions[ext]:
		return KindBinary
	default:
		return KindText
	}
}

func IsIndexable(path string) bool {
	return indexableExtensions[Extension(path)]
}
