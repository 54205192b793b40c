// # internal/registry/scopes.go
package registry

import (
	"skein/internal/semantic"
)

// ScopeRegistry holds the per-file scope trees and answers ancestor queries.
// The file owning a scope is stored alongside it at insert time; it is never
// recovered by parsing the scope id.
type ScopeRegistry struct {
	scopes map[semantic.ScopeID]semantic.Scope
	fileOf map[semantic.ScopeID]string
	byFile map[string][]semantic.ScopeID
	roots  map[string]semantic.ScopeID
}

func NewScopeRegistry() *ScopeRegistry {
	return &ScopeRegistry{
		scopes: make(map[semantic.ScopeID]semantic.Scope),
		fileOf: make(map[semantic.ScopeID]string),
		byFile: make(map[string][]semantic.ScopeID),
		roots:  make(map[string]semantic.ScopeID),
	}
}

func (r *ScopeRegistry) UpdateFile(path string, root semantic.ScopeID, scopes []semantic.Scope) {
	r.removeFile(path)

	ids := make([]semantic.ScopeID, 0, len(scopes))
	for _, s := range scopes {
		r.scopes[s.ID] = s
		r.fileOf[s.ID] = path
		ids = append(ids, s.ID)
	}
	r.byFile[path] = ids
	r.roots[path] = root
}

func (r *ScopeRegistry) removeFile(path string) {
	for _, id := range r.byFile[path] {
		delete(r.scopes, id)
		delete(r.fileOf, id)
	}
	delete(r.byFile, path)
	delete(r.roots, path)
}

func (r *ScopeRegistry) Scope(id semantic.ScopeID) (semantic.Scope, bool) {
	s, ok := r.scopes[id]
	return s, ok
}

// FileOf returns the file a scope belongs to.
func (r *ScopeRegistry) FileOf(id semantic.ScopeID) (string, bool) {
	f, ok := r.fileOf[id]
	return f, ok
}

// Root returns the module scope of a file.
func (r *ScopeRegistry) Root(path string) (semantic.ScopeID, bool) {
	id, ok := r.roots[path]
	return id, ok
}

// Parent returns the parent scope id, or false at the module scope.
func (r *ScopeRegistry) Parent(id semantic.ScopeID) (semantic.ScopeID, bool) {
	s, ok := r.scopes[id]
	if !ok || s.Parent == "" {
		return "", false
	}
	return s.Parent, true
}

// IsDescendant reports whether scope is equal to ancestor or reachable from
// it via the parent chain. The chain is acyclic by construction, but the walk
// is still bounded by the number of scopes as a guard against corrupt input.
func (r *ScopeRegistry) IsDescendant(scope, ancestor semantic.ScopeID) bool {
	if scope == ancestor {
		return true
	}
	cur := scope
	for steps := 0; steps <= len(r.scopes); steps++ {
		s, ok := r.scopes[cur]
		if !ok || s.Parent == "" {
			return false
		}
		if s.Parent == ancestor {
			return true
		}
		cur = s.Parent
	}
	return false
}

// SameFile reports whether two scopes belong to the same file.
func (r *ScopeRegistry) SameFile(a, b semantic.ScopeID) bool {
	fa, oka := r.fileOf[a]
	fb, okb := r.fileOf[b]
	return oka && okb && fa == fb
}
