// # internal/resolver/members.go
package resolver

import (
	"skein/internal/registry"
	"skein/internal/semantic"
)

// MemberResolver looks up members on a receiver type: direct members through
// the flattened member index, inherited ones by walking the extends and
// implements chains nearest-ancestor-first, so a direct member shadows an
// inherited one of the same name. Every walk carries a visited set; an
// inheritance cycle terminates as unresolved.
type MemberResolver struct {
	project *registry.Project
	index   *ScopeIndex
}

func NewMemberResolver(project *registry.Project, index *ScopeIndex) *MemberResolver {
	return &MemberResolver{project: project, index: index}
}

// ResolveMember finds a named member on a type or its nearest ancestor.
func (m *MemberResolver) ResolveMember(typ semantic.SymbolID, name string) (semantic.SymbolID, bool) {
	visited := make(map[semantic.SymbolID]bool)
	queue := []semantic.SymbolID{typ}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if sym, ok := m.project.Defs.Member(cur, name); ok {
			return sym, true
		}
		queue = append(queue, m.bases(cur)...)
	}
	return "", false
}

// ResolveConstructor finds the registered constructor of a type, walking the
// inheritance chain when the type itself declares none.
func (m *MemberResolver) ResolveConstructor(typ semantic.SymbolID) (semantic.SymbolID, bool) {
	visited := make(map[semantic.SymbolID]bool)
	queue := []semantic.SymbolID{typ}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if sym, ok := m.project.Defs.Constructor(cur); ok {
			return sym, true
		}
		queue = append(queue, m.bases(cur)...)
	}
	return "", false
}

// bases resolves a type's base names from its defining scope. Extends come
// before implements: class inheritance is the nearer relationship.
func (m *MemberResolver) bases(typ semantic.SymbolID) []semantic.SymbolID {
	def, ok := m.project.Defs.Definition(typ)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(def.Extends)+len(def.Implements))
	names = append(names, def.Extends...)
	names = append(names, def.Implements...)

	resolved := make([]semantic.SymbolID, 0, len(names))
	for _, name := range names {
		res := m.index.Lookup(def.ScopeID, name)
		if !res.OK {
			continue
		}
		base, ok := m.project.Defs.Definition(res.Symbol)
		if !ok || !base.Kind.IsType() {
			continue
		}
		resolved = append(resolved, res.Symbol)
	}
	return resolved
}
