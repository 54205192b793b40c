// # internal/semantic/validate.go
package semantic

import (
	corerr "skein/internal/core/errors"
)

// Validate checks the structural invariants of a file index before it enters
// the registries. A malformed index is a producer bug; tolerating it silently
// corrupts every downstream phase, so this fails fast instead.
func (f *FileIndex) Validate() error {
	if f.Path == "" {
		return corerr.New(corerr.CodeInvalidInput, "file index has no path")
	}
	if f.RootScope == "" {
		return corerr.New(corerr.CodeInvalidInput, "file index has no root scope").
			WithContext(corerr.CtxPath, f.Path)
	}

	scopes := make(map[ScopeID]Scope, len(f.Scopes))
	for _, s := range f.Scopes {
		if s.ID == "" {
			return corerr.New(corerr.CodeInvalidInput, "scope without id").
				WithContext(corerr.CtxPath, f.Path)
		}
		if _, dup := scopes[s.ID]; dup {
			return corerr.New(corerr.CodeInvalidInput, "duplicate scope id").
				WithContext(corerr.CtxPath, f.Path).
				WithContext(corerr.CtxScope, string(s.ID))
		}
		scopes[s.ID] = s
	}
	if _, ok := scopes[f.RootScope]; !ok {
		return corerr.New(corerr.CodeInvalidInput, "root scope not in scope list").
			WithContext(corerr.CtxPath, f.Path)
	}

	// Parent chains must stay inside the file and terminate at the root.
	for _, s := range f.Scopes {
		seen := map[ScopeID]bool{s.ID: true}
		cur := s
		for cur.Parent != "" {
			next, ok := scopes[cur.Parent]
			if !ok {
				return corerr.New(corerr.CodeInvalidInput, "scope parent missing").
					WithContext(corerr.CtxPath, f.Path).
					WithContext(corerr.CtxScope, string(cur.Parent))
			}
			if seen[next.ID] {
				return corerr.New(corerr.CodeInvalidInput, "scope parent chain is cyclic").
					WithContext(corerr.CtxPath, f.Path).
					WithContext(corerr.CtxScope, string(next.ID))
			}
			seen[next.ID] = true
			cur = next
		}
	}

	for i := range f.Definitions {
		d := &f.Definitions[i]
		if d.SymbolID == "" || d.Name == "" {
			return corerr.New(corerr.CodeInvalidInput, "definition without id or name").
				WithContext(corerr.CtxPath, f.Path)
		}
		if d.ScopeID == "" {
			return corerr.New(corerr.CodeInvalidInput, "definition without defining scope").
				WithContext(corerr.CtxPath, f.Path).
				WithContext(corerr.CtxSymbol, d.Name)
		}
		if _, ok := scopes[d.ScopeID]; !ok {
			return corerr.New(corerr.CodeInvalidInput, "definition references unknown scope").
				WithContext(corerr.CtxPath, f.Path).
				WithContext(corerr.CtxSymbol, d.Name)
		}
	}

	for i := range f.References {
		r := &f.References[i]
		if r.ScopeID == "" {
			return corerr.New(corerr.CodeInvalidInput, "reference without scope").
				WithContext(corerr.CtxPath, f.Path).
				WithContext(corerr.CtxSymbol, r.Name)
		}
		if _, ok := scopes[r.ScopeID]; !ok {
			return corerr.New(corerr.CodeInvalidInput, "reference references unknown scope").
				WithContext(corerr.CtxPath, f.Path).
				WithContext(corerr.CtxSymbol, r.Name)
		}
	}

	return nil
}
