// # internal/registry/definitions.go
package registry

import (
	"skein/internal/semantic"
)

// DefinitionRegistry is the global index of definitions: by id, by declaring
// scope, by file, plus a flattened member index per owning type. Class and
// interface members are first-class entries here, so member lookup is a map
// access rather than a scan through files and member arrays.
type DefinitionRegistry struct {
	byID    map[semantic.SymbolID]*semantic.Definition
	byScope map[semantic.ScopeID]map[string]semantic.SymbolID
	byFile  map[string]map[semantic.SymbolID]bool

	// members maps an owning type symbol to its direct members by name.
	// constructors maps a type symbol to its registered constructor.
	members      map[semantic.SymbolID]map[string]semantic.SymbolID
	constructors map[semantic.SymbolID]semantic.SymbolID

	// byLoc maps a definition's span to its symbol, for references that
	// point at a definition site (constructor assignment targets).
	byLoc map[string]semantic.SymbolID
}

func NewDefinitionRegistry() *DefinitionRegistry {
	return &DefinitionRegistry{
		byID:         make(map[semantic.SymbolID]*semantic.Definition),
		byScope:      make(map[semantic.ScopeID]map[string]semantic.SymbolID),
		byFile:       make(map[string]map[semantic.SymbolID]bool),
		members:      make(map[semantic.SymbolID]map[string]semantic.SymbolID),
		constructors: make(map[semantic.SymbolID]semantic.SymbolID),
		byLoc:        make(map[string]semantic.SymbolID),
	}
}

// UpdateFile replaces all definitions for one file. Prior entries are purged
// first so re-indexing after an edit never leaves stale symbols behind.
func (r *DefinitionRegistry) UpdateFile(path string, defs []semantic.Definition) {
	r.removeFile(path)

	ids := make(map[semantic.SymbolID]bool, len(defs))
	r.byFile[path] = ids

	for i := range defs {
		d := defs[i]
		ids[d.SymbolID] = true
		r.byID[d.SymbolID] = &d

		scoped, ok := r.byScope[d.ScopeID]
		if !ok {
			scoped = make(map[string]semantic.SymbolID)
			r.byScope[d.ScopeID] = scoped
		}
		scoped[d.Name] = d.SymbolID
		r.byLoc[d.Location.Key()] = d.SymbolID

		if d.Owner != "" {
			if d.Kind == semantic.KindConstructor {
				r.constructors[d.Owner] = d.SymbolID
			} else {
				owned, ok := r.members[d.Owner]
				if !ok {
					owned = make(map[string]semantic.SymbolID)
					r.members[d.Owner] = owned
				}
				owned[d.Name] = d.SymbolID
			}
		}
	}
}

func (r *DefinitionRegistry) removeFile(path string) {
	ids, ok := r.byFile[path]
	if !ok {
		return
	}
	for id := range ids {
		d, ok := r.byID[id]
		if !ok {
			continue
		}
		if scoped, ok := r.byScope[d.ScopeID]; ok {
			if scoped[d.Name] == id {
				delete(scoped, d.Name)
			}
			if len(scoped) == 0 {
				delete(r.byScope, d.ScopeID)
			}
		}
		if d.Owner != "" {
			if r.constructors[d.Owner] == id {
				delete(r.constructors, d.Owner)
			}
			if owned, ok := r.members[d.Owner]; ok {
				if owned[d.Name] == id {
					delete(owned, d.Name)
				}
				if len(owned) == 0 {
					delete(r.members, d.Owner)
				}
			}
		}
		delete(r.byLoc, d.Location.Key())
		delete(r.byID, id)
	}
	delete(r.byFile, path)
}

func (r *DefinitionRegistry) Definition(id semantic.SymbolID) (*semantic.Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// SymbolScope returns the declaring scope of a symbol. This is a field read
// on the stored definition, never a search.
func (r *DefinitionRegistry) SymbolScope(id semantic.SymbolID) (semantic.ScopeID, bool) {
	d, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return d.ScopeID, true
}

// ScopeDefinitions returns the names declared directly in a scope, without
// anything inherited from ancestors. Shadowing decisions depend on this.
func (r *DefinitionRegistry) ScopeDefinitions(scope semantic.ScopeID) map[string]semantic.SymbolID {
	return r.byScope[scope]
}

func (r *DefinitionRegistry) FileDefinitions(path string) map[semantic.SymbolID]bool {
	return r.byFile[path]
}

// Member looks up a direct member of a type by name in the flattened index.
func (r *DefinitionRegistry) Member(owner semantic.SymbolID, name string) (semantic.SymbolID, bool) {
	owned, ok := r.members[owner]
	if !ok {
		return "", false
	}
	id, ok := owned[name]
	return id, ok
}

// Constructor returns the registered constructor symbol for a type.
func (r *DefinitionRegistry) Constructor(owner semantic.SymbolID) (semantic.SymbolID, bool) {
	id, ok := r.constructors[owner]
	return id, ok
}

// DefinitionAt returns the definition declared at exactly the given span.
func (r *DefinitionRegistry) DefinitionAt(loc semantic.Location) (semantic.SymbolID, bool) {
	id, ok := r.byLoc[loc.Key()]
	return id, ok
}
