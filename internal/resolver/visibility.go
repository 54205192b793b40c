// # internal/resolver/visibility.go
package resolver

import (
	"skein/internal/registry"
	"skein/internal/semantic"
)

// VisibilityChecker decides whether a definition is visible from a reference
// scope. Exported definitions always pass here: cross-file legality is
// enforced by import resolution finding a matching import, not by this check.
type VisibilityChecker struct {
	scopes *registry.ScopeRegistry
}

func NewVisibilityChecker(scopes *registry.ScopeRegistry) *VisibilityChecker {
	return &VisibilityChecker{scopes: scopes}
}

func (v *VisibilityChecker) IsVisible(def *semantic.Definition, from semantic.ScopeID) bool {
	switch def.Visibility.Kind {
	case semantic.VisScopeLocal:
		return from == def.ScopeID
	case semantic.VisScopeChildren:
		return v.scopes.IsDescendant(from, def.ScopeID)
	case semantic.VisFile:
		return v.scopes.SameFile(from, def.ScopeID)
	case semantic.VisExported:
		return true
	}
	return false
}
