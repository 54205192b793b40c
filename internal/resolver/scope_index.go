// # internal/resolver/scope_index.go
package resolver

import (
	"skein/internal/registry"
	"skein/internal/semantic"
)

// Resolver is a deferred name lookup: constructed cheaply, invoked at most
// once, memoized by its binding. Import resolvers are the only resolvers
// whose invocation crosses into another file's registry entries.
type Resolver func() (semantic.SymbolID, bool)

// LookupResult distinguishes an unresolved cross-file/external name from a
// purely local miss, which strict mode treats as an indexing bug.
type LookupResult struct {
	Symbol   semantic.SymbolID
	OK       bool
	External bool
}

type lookupKey struct {
	scope semantic.ScopeID
	name  string
}

// importBinding is one import's lazy resolver plus its memoized result.
// Construction performs only module-path resolution (pure path work and stat
// calls); the target registry is touched on first invocation only, so an
// import nobody references costs a closure allocation and nothing else.
type importBinding struct {
	imp         semantic.Import
	sourceFile  string
	external    bool
	namespace   bool
	resolve     Resolver
	invoked     bool
	result      semantic.SymbolID
	ok          bool
	invocations int
}

func (b *importBinding) invoke() (semantic.SymbolID, bool) {
	if b.invoked {
		return b.result, b.ok
	}
	b.invocations++
	b.invoked = true
	b.result, b.ok = b.resolve()
	return b.result, b.ok
}

// ScopeIndex builds, per scope, the name resolution chain: definitions
// declared directly in the scope, then the parent chain up to module scope,
// then import bindings registered at any scope level along the walked path.
// The innermost declaration always wins; imports are consulted only after
// the whole local/ancestor chain is exhausted. Results are cached under
// (scope, name), shared by every reference using that name in that scope.
type ScopeIndex struct {
	project *registry.Project
	vis     *VisibilityChecker
	chains  *ExportChains
	modpath *ModulePaths

	cache    map[lookupKey]LookupResult
	bindings map[semantic.ScopeID]map[string]*importBinding

	cacheHits   int
	cacheMisses int
}

func NewScopeIndex(project *registry.Project, modpath *ModulePaths) *ScopeIndex {
	return &ScopeIndex{
		project:  project,
		vis:      NewVisibilityChecker(project.Scopes),
		chains:   NewExportChains(project, modpath),
		modpath:  modpath,
		cache:    make(map[lookupKey]LookupResult),
		bindings: make(map[semantic.ScopeID]map[string]*importBinding),
	}
}

// RegisterImports constructs lazy resolvers for every import binding of a
// file. Nothing is resolved here beyond the module path.
func (x *ScopeIndex) RegisterImports(idx *semantic.FileIndex) {
	for _, imp := range idx.Imports {
		b := &importBinding{imp: imp}
		b.sourceFile, b.external = x.bindSource(idx, imp)
		b.namespace = imp.Kind == semantic.ImportNamespace

		switch {
		case b.external:
			b.resolve = func() (semantic.SymbolID, bool) { return "", false }
		case b.namespace:
			// Opaque container: the namespace itself has no symbol and
			// member access through it stays unresolved.
			b.resolve = func() (semantic.SymbolID, bool) { return "", false }
		default:
			source, name := b.sourceFile, imp.ImportName
			b.resolve = func() (semantic.SymbolID, bool) {
				return x.chains.ResolveExport(source, name)
			}
		}

		scoped, ok := x.bindings[imp.ScopeID]
		if !ok {
			scoped = make(map[string]*importBinding)
			x.bindings[imp.ScopeID] = scoped
		}
		scoped[imp.LocalName] = b
	}
}

func (x *ScopeIndex) bindSource(idx *semantic.FileIndex, imp semantic.Import) (string, bool) {
	source, ok := x.modpath.Resolve(idx.Language, imp.SourcePath, idx.Path)
	if !ok {
		return "", true
	}
	return source, false
}

// Lookup resolves a name from a scope. The first call per (scope, name) does
// the walk; every later call is a cache read.
func (x *ScopeIndex) Lookup(scope semantic.ScopeID, name string) LookupResult {
	key := lookupKey{scope: scope, name: name}
	if res, ok := x.cache[key]; ok {
		x.cacheHits++
		return res
	}
	x.cacheMisses++

	res := x.walk(scope, name)
	x.cache[key] = res
	return res
}

func (x *ScopeIndex) walk(scope semantic.ScopeID, name string) LookupResult {
	// Local and ancestor declarations, innermost first.
	path := make([]semantic.ScopeID, 0, 8)
	cur := scope
	for {
		path = append(path, cur)

		if defs := x.project.Defs.ScopeDefinitions(cur); defs != nil {
			if sym, ok := defs[name]; ok {
				if def, ok := x.project.Defs.Definition(sym); ok && x.vis.IsVisible(def, scope) {
					return LookupResult{Symbol: sym, OK: true}
				}
				// Declared here but not visible from the reference
				// scope: an outer declaration may still apply.
			}
		}

		parent, ok := x.project.Scopes.Parent(cur)
		if !ok {
			break
		}
		cur = parent
	}

	// Imports registered at any scope level along the path, innermost
	// binding first. This is where cross-file resolution happens, and only
	// now.
	sawImport := false
	for _, s := range path {
		b, ok := x.bindings[s][name]
		if !ok {
			continue
		}
		sawImport = true
		if sym, ok := b.invoke(); ok {
			return LookupResult{Symbol: sym, OK: true}
		}
	}

	return LookupResult{External: sawImport}
}

func (x *ScopeIndex) binding(scope semantic.ScopeID, name string) (*importBinding, bool) {
	b, ok := x.bindings[scope][name]
	return b, ok
}

// ImportInvocations sums resolver invocations across a file's imports.
func (x *ScopeIndex) ImportInvocations(path string) int {
	total := 0
	for _, imp := range x.project.Imports.FileImports(path) {
		if b, ok := x.bindings[imp.ScopeID][imp.LocalName]; ok {
			total += b.invocations
		}
	}
	return total
}

// TotalInvocations sums resolver invocations across all import bindings.
func (x *ScopeIndex) TotalInvocations() int {
	total := 0
	for _, scoped := range x.bindings {
		for _, b := range scoped {
			total += b.invocations
		}
	}
	return total
}

// CacheStats returns cumulative cache hit/miss counts for this run.
func (x *ScopeIndex) CacheStats() (hits, misses int) {
	return x.cacheHits, x.cacheMisses
}
