// # internal/resolver/types_context.go
package resolver

import (
	"skein/internal/registry"
	"skein/internal/semantic"
)

// TypeContext tracks declared and inferred types of value symbols, built in
// the type phase and consulted by method/constructor resolution. The maps
// point from a value symbol (variable, parameter, property) to the resolved
// type symbol, never to raw type-name strings.
type TypeContext struct {
	project *registry.Project
	index   *ScopeIndex

	valueTypes  map[semantic.SymbolID]semantic.SymbolID
	scopeOwners map[semantic.ScopeID]semantic.SymbolID
}

func NewTypeContext(project *registry.Project, index *ScopeIndex) *TypeContext {
	return &TypeContext{
		project:     project,
		index:       index,
		valueTypes:  make(map[semantic.SymbolID]semantic.SymbolID),
		scopeOwners: make(map[semantic.ScopeID]semantic.SymbolID),
	}
}

// RecordValueType associates a value symbol with its resolved type.
// Declared annotations win over inferred constructor types, so later
// inference never overwrites an existing entry.
func (t *TypeContext) RecordValueType(value, typ semantic.SymbolID) {
	if _, exists := t.valueTypes[value]; !exists {
		t.valueTypes[value] = typ
	}
}

// RecordScopeOwner marks a scope as the body of a type (class, trait,
// interface), so `self`/`this` receivers can find their type.
func (t *TypeContext) RecordScopeOwner(scope semantic.ScopeID, owner semantic.SymbolID) {
	t.scopeOwners[scope] = owner
}

// TypeOf returns the recorded type of a value symbol.
func (t *TypeContext) TypeOf(value semantic.SymbolID) (semantic.SymbolID, bool) {
	typ, ok := t.valueTypes[value]
	return typ, ok
}

// ResolveTypeName resolves a type name from a scope through the same
// scope+import machinery as value names, filtering to type definitions.
func (t *TypeContext) ResolveTypeName(scope semantic.ScopeID, name string) (semantic.SymbolID, bool) {
	res := t.index.Lookup(scope, name)
	if !res.OK {
		return "", false
	}
	def, ok := t.project.Defs.Definition(res.Symbol)
	if !ok || !def.Kind.IsType() {
		return "", false
	}
	return res.Symbol, true
}

// ReceiverType resolves the type a method call or property access is
// performed on. Self-style receivers type as the enclosing class; a receiver
// naming a type directly (static access) types as that type itself.
func (t *TypeContext) ReceiverType(ref *semantic.Reference) (semantic.SymbolID, bool) {
	if ref.ReceiverName == "" {
		return "", false
	}

	if ref.ReceiverName == "self" || ref.ReceiverName == "this" {
		return t.enclosingOwner(ref.ScopeID)
	}

	res := t.index.Lookup(ref.ScopeID, ref.ReceiverName)
	if !res.OK {
		return "", false
	}
	def, ok := t.project.Defs.Definition(res.Symbol)
	if !ok {
		return "", false
	}
	if def.Kind.IsType() {
		return res.Symbol, true
	}
	return t.TypeOf(res.Symbol)
}

// enclosingOwner walks the scope chain to the nearest type body scope.
func (t *TypeContext) enclosingOwner(scope semantic.ScopeID) (semantic.SymbolID, bool) {
	cur := scope
	for {
		if owner, ok := t.scopeOwners[cur]; ok {
			return owner, true
		}
		parent, ok := t.project.Scopes.Parent(cur)
		if !ok {
			return "", false
		}
		cur = parent
	}
}
