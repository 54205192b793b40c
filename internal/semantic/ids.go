// # internal/semantic/ids.go
package semantic

import "fmt"

// NewSymbolID builds the stable identifier for a definition. The triple
// (file, name, location) is unique per construct, so the id survives
// re-indexing of unrelated files.
func NewSymbolID(file, name string, loc Location) SymbolID {
	return SymbolID(fmt.Sprintf("%s:%d:%d:%s", file, loc.StartLine, loc.StartCol, name))
}

// NewScopeID builds a scope identifier unique within the project. Scope
// ordinals are assigned in tree-walk order by the indexer.
func NewScopeID(file string, ordinal int) ScopeID {
	return ScopeID(fmt.Sprintf("%s#%d", file, ordinal))
}
