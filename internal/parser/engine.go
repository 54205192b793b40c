// # internal/parser/engine.go
package parser

import (
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/semantic"
)

// indexBuilder carries the shared state all extractors use while walking a
// syntax tree: the index under construction and the current scope stack.
// Scope ids are assigned in walk order; the module scope is ordinal 0.
type indexBuilder struct {
	source  []byte
	idx     *semantic.FileIndex
	stack   []semantic.ScopeID
	ordinal int

	// exportedNames collects `export { x }` style late exports, applied to
	// the matching definitions when the walk finishes.
	exportedNames map[string]string
}

func newIndexBuilder(path, language string, source []byte, root *sitter.Node) *indexBuilder {
	b := &indexBuilder{
		source: source,
		idx: &semantic.FileIndex{
			Path:      path,
			Language:  language,
			IndexedAt: time.Now(),
		},
		exportedNames: make(map[string]string),
	}

	moduleScope := semantic.NewScopeID(path, b.ordinal)
	b.ordinal++
	b.idx.RootScope = moduleScope
	b.idx.Scopes = append(b.idx.Scopes, semantic.Scope{
		ID:       moduleScope,
		Kind:     semantic.ScopeModule,
		Location: b.loc(root),
	})
	b.stack = append(b.stack, moduleScope)
	return b
}

func (b *indexBuilder) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(b.source[node.StartByte():node.EndByte()])
}

func (b *indexBuilder) loc(node *sitter.Node) semantic.Location {
	if node == nil {
		return semantic.Location{}
	}
	return semantic.Location{
		File:      b.idx.Path,
		StartLine: int(node.StartPosition().Row) + 1,
		StartCol:  int(node.StartPosition().Column) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
		EndCol:    int(node.EndPosition().Column) + 1,
	}
}

func (b *indexBuilder) fieldText(node *sitter.Node, field string) string {
	if node == nil {
		return ""
	}
	return b.text(node.ChildByFieldName(field))
}

// scope returns the scope the walk is currently inside.
func (b *indexBuilder) scope() semantic.ScopeID {
	return b.stack[len(b.stack)-1]
}

// pushScope opens a child scope spanning the given node.
func (b *indexBuilder) pushScope(kind semantic.ScopeKind, node *sitter.Node) semantic.ScopeID {
	id := semantic.NewScopeID(b.idx.Path, b.ordinal)
	b.ordinal++
	b.idx.Scopes = append(b.idx.Scopes, semantic.Scope{
		ID:       id,
		Kind:     kind,
		Parent:   b.scope(),
		Location: b.loc(node),
	})
	b.stack = append(b.stack, id)
	return id
}

func (b *indexBuilder) popScope() {
	b.stack = b.stack[:len(b.stack)-1]
}

// addDef registers a definition in the current scope and returns its symbol.
func (b *indexBuilder) addDef(d semantic.Definition) semantic.SymbolID {
	if d.SymbolID == "" {
		d.SymbolID = semantic.NewSymbolID(b.idx.Path, d.Name, d.Location)
	}
	if d.ScopeID == "" {
		d.ScopeID = b.scope()
	}
	b.idx.Definitions = append(b.idx.Definitions, d)
	return d.SymbolID
}

func (b *indexBuilder) addRef(r semantic.Reference) {
	if r.ScopeID == "" {
		r.ScopeID = b.scope()
	}
	b.idx.References = append(b.idx.References, r)
}

func (b *indexBuilder) addImport(imp semantic.Import) {
	if imp.ScopeID == "" {
		imp.ScopeID = b.scope()
	}
	b.idx.Imports = append(b.idx.Imports, imp)
}

func (b *indexBuilder) addReexport(re semantic.Reexport) {
	b.idx.Reexports = append(b.idx.Reexports, re)
}

// markExported records a late `export { local as name }` binding.
func (b *indexBuilder) markExported(local, exportName string) {
	b.exportedNames[local] = exportName
}

// finish applies late exports and returns the completed index. Late exports
// only promote module-scope definitions; locals never become exported.
func (b *indexBuilder) finish() *semantic.FileIndex {
	if len(b.exportedNames) > 0 {
		for i := range b.idx.Definitions {
			d := &b.idx.Definitions[i]
			if d.ScopeID != b.idx.RootScope {
				continue
			}
			if exportName, ok := b.exportedNames[d.Name]; ok {
				d.Visibility = semantic.Visibility{
					Kind:       semantic.VisExported,
					ExportName: exportName,
					IsDefault:  exportName == "default",
				}
			}
		}
	}
	return b.idx
}

// eachChild invokes fn over all children of a node.
func eachChild(node *sitter.Node, fn func(child *sitter.Node)) {
	for i := uint(0); i < node.ChildCount(); i++ {
		fn(node.Child(i))
	}
}

// eachNamedChild invokes fn over named children only.
func eachNamedChild(node *sitter.Node, fn func(child *sitter.Node)) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		fn(node.NamedChild(i))
	}
}
