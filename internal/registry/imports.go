// # internal/registry/imports.go
package registry

import (
	"skein/internal/semantic"
)

// ImportGraph records which files import what, and at which scope the import
// binding lives. Imports are not restricted to module scope: Python and JS
// both allow imports inside function bodies.
type ImportGraph struct {
	byFile  map[string][]semantic.Import
	byScope map[semantic.ScopeID][]semantic.Import
}

func NewImportGraph() *ImportGraph {
	return &ImportGraph{
		byFile:  make(map[string][]semantic.Import),
		byScope: make(map[semantic.ScopeID][]semantic.Import),
	}
}

func (g *ImportGraph) UpdateFile(path string, imports []semantic.Import) {
	for _, imp := range g.byFile[path] {
		scoped := g.byScope[imp.ScopeID]
		kept := scoped[:0]
		for _, other := range scoped {
			if other.Location != imp.Location || other.LocalName != imp.LocalName {
				kept = append(kept, other)
			}
		}
		if len(kept) == 0 {
			delete(g.byScope, imp.ScopeID)
		} else {
			g.byScope[imp.ScopeID] = kept
		}
	}
	delete(g.byFile, path)

	if len(imports) == 0 {
		return
	}
	g.byFile[path] = imports
	for _, imp := range imports {
		g.byScope[imp.ScopeID] = append(g.byScope[imp.ScopeID], imp)
	}
}

// FileImports returns all import bindings of a file.
func (g *ImportGraph) FileImports(path string) []semantic.Import {
	return g.byFile[path]
}

// ScopeImports returns the import bindings declared directly in a scope.
func (g *ImportGraph) ScopeImports(scope semantic.ScopeID) []semantic.Import {
	return g.byScope[scope]
}
