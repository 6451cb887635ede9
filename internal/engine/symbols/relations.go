package symbols

import (
	"math"
	"sort"
)

// DirLister returns the names of a directory's immediate entries after
// exclusion rules have been applied.
type DirLister func(dir string) []string

type fileGroup struct {
	file      *Symbol
	headers   []*Symbol
	chunks    []*Symbol
	functions []*Symbol
}

// BuildRelationships recomputes parents and children for the whole store.
// Edges are stored as names, so the pass is safe to rerun wholesale after
// any mutation.
func BuildRelationships(store *Store, listDir DirLister) {
	groups := make(map[string]*fileGroup)
	group := func(path string) *fileGroup {
		g, ok := groups[path]
		if !ok {
			g = &fileGroup{}
			groups[path] = g
		}
		return g
	}

	store.Each(func(sym *Symbol) {
		sym.Children = []string{}
		switch {
		case sym.Type == TypeDirectory:
			sym.Parents = ""
			if listDir != nil {
				for _, name := range listDir(sym.FilePath) {
					sym.AddChild(name)
				}
			}
		case sym.IsFileLike():
			if IsUnsavedPath(sym.FilePath) {
				sym.Parents = ""
			} else {
				sym.Parents = DirName(sym.FilePath)
			}
			g := group(sym.FilePath)
			if g.file == nil {
				g.file = sym
			}
		case IsHeader(sym.Type):
			g := group(sym.FilePath)
			g.headers = append(g.headers, sym)
		case sym.Type == TypeChunk:
			g := group(sym.FilePath)
			g.chunks = append(g.chunks, sym)
		case sym.Type == TypeFunction:
			g := group(sym.FilePath)
			g.functions = append(g.functions, sym)
		}
	})

	for path, g := range groups {
		sortByLine(g.headers)
		sortByLine(g.chunks)
		sortByLine(g.functions)
		linkHeaders(path, g)
		linkChunks(path, g)
		linkFunctions(path, g)
	}
}

func sortByLine(syms []*Symbol) {
	sort.SliceStable(syms, func(i, j int) bool {
		if syms[i].LineStart != syms[j].LineStart {
			return syms[i].LineStart < syms[j].LineStart
		}
		if syms[i].Type != syms[j].Type {
			return syms[i].Type < syms[j].Type
		}
		return syms[i].Name < syms[j].Name
	})
}

func linkHeaders(path string, g *fileGroup) {
	for i, h := range g.headers {
		level, _ := HeaderLevel(h.Type)
		next := math.MaxInt
		for _, other := range g.headers[i+1:] {
			otherLevel, _ := HeaderLevel(other.Type)
			if otherLevel <= level && other.LineStart > h.LineStart {
				next = other.LineStart
				break
			}
		}
		if next != math.MaxInt {
			h.LineEnd = next - 1
		} else if g.file != nil && g.file.LineEnd > 0 {
			h.LineEnd = g.file.LineEnd
		}
	}

	var stack [10]*Symbol
	for _, h := range g.headers {
		level, _ := HeaderLevel(h.Type)
		for i := level; i < len(stack); i++ {
			stack[i] = nil
		}
		var parent *Symbol
		for i := level - 1; i >= 1; i-- {
			if stack[i] != nil {
				parent = stack[i]
				break
			}
		}
		if parent != nil {
			h.Parents = parent.Name
			parent.AddChild(h.Name)
		} else {
			// orphaned deeper headers still fall back to the file, but only
			// level-1 headers are listed among its children
			h.Parents = path
			if g.file != nil && level == 1 {
				g.file.AddChild(h.Name)
			}
		}
		stack[level] = h
	}
}

func linkChunks(path string, g *fileGroup) {
	for _, c := range g.chunks {
		c.Parents = path
		if g.file != nil {
			g.file.AddChild(c.Name)
		}
		for _, fn := range g.functions {
			if fn.Parents == c.Name {
				c.AddChild(fn.Name)
			}
		}
	}
}

func linkFunctions(path string, g *fileGroup) {
	for _, fn := range g.functions {
		if chunk := containingChunk(g.chunks, fn.LineStart); chunk != nil {
			fn.Parents = chunk.Name
			continue
		}
		if header := deepestHeader(g.headers, fn.LineStart); header != nil {
			fn.Parents = header.Name
			header.AddChild(fn.Name)
			continue
		}
		fn.Parents = path
		if g.file != nil {
			g.file.AddChild(fn.Name)
		}
	}
}

func containingChunk(chunks []*Symbol, line int) *Symbol {
	for _, c := range chunks {
		if line >= c.LineStart && line <= c.LineEnd {
			return c
		}
	}
	return nil
}

func deepestHeader(headers []*Symbol, line int) *Symbol {
	var best *Symbol
	bestLevel := 0
	for _, h := range headers {
		if line <= h.LineStart || line > h.LineEnd {
			continue
		}
		level, _ := HeaderLevel(h.Type)
		if best == nil || level > bestLevel {
			best = h
			bestLevel = level
		}
	}
	return best
}
