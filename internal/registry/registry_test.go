// # internal/registry/registry_test.go
package registry

import (
	"testing"

	"skein/internal/semantic"
)

func loc(file string, line int) semantic.Location {
	return semantic.Location{File: file, StartLine: line, StartCol: 1, EndLine: line, EndCol: 10}
}

// twoScopeIndex builds a file with a module scope and one function scope.
func twoScopeIndex(path string) *semantic.FileIndex {
	root := semantic.ScopeID(path + "#root")
	fn := semantic.ScopeID(path + "#fn")
	return &semantic.FileIndex{
		Path:      path,
		Language:  "typescript",
		RootScope: root,
		Scopes: []semantic.Scope{
			{ID: root, Kind: semantic.ScopeModule},
			{ID: fn, Kind: semantic.ScopeFunction, Parent: root},
		},
	}
}

func TestProjectUpdateAndRemove(t *testing.T) {
	p := NewProject()
	idx := twoScopeIndex("app.ts")
	root := idx.RootScope
	idx.Definitions = []semantic.Definition{
		{
			SymbolID:   "app.ts#greet",
			Name:       "greet",
			Kind:       semantic.KindFunction,
			Location:   loc("app.ts", 1),
			ScopeID:    root,
			Visibility: semantic.Visibility{Kind: semantic.VisExported},
		},
	}
	idx.Imports = []semantic.Import{
		{LocalName: "util", SourcePath: "./util", ImportName: "util", Kind: semantic.ImportNamed, ScopeID: root, Location: loc("app.ts", 2)},
	}

	if err := p.UpdateFile(idx); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if !p.HasFile("app.ts") || p.FileCount() != 1 {
		t.Error("expected app.ts to be indexed")
	}
	if _, ok := p.Defs.Definition("app.ts#greet"); !ok {
		t.Error("expected greet definition after update")
	}
	if _, ok := p.Exports.Export("app.ts", "greet"); !ok {
		t.Error("expected greet to be exported")
	}
	if got := len(p.Imports.FileImports("app.ts")); got != 1 {
		t.Errorf("expected 1 import, got %d", got)
	}

	// Re-index with different content: the old symbol must be purged.
	replaced := twoScopeIndex("app.ts")
	replaced.Definitions = []semantic.Definition{
		{
			SymbolID:   "app.ts#farewell",
			Name:       "farewell",
			Kind:       semantic.KindFunction,
			Location:   loc("app.ts", 5),
			ScopeID:    replaced.RootScope,
			Visibility: semantic.Visibility{Kind: semantic.VisFile},
		},
	}
	if err := p.UpdateFile(replaced); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if _, ok := p.Defs.Definition("app.ts#greet"); ok {
		t.Error("stale symbol survived re-index")
	}
	if _, ok := p.Exports.Export("app.ts", "greet"); ok {
		t.Error("stale export survived re-index")
	}
	if len(p.Imports.FileImports("app.ts")) != 0 {
		t.Error("stale imports survived re-index")
	}

	p.RemoveFile("app.ts")
	if p.HasFile("app.ts") || p.FileCount() != 0 {
		t.Error("expected app.ts to be removed")
	}
	if _, ok := p.Defs.Definition("app.ts#farewell"); ok {
		t.Error("definitions survived RemoveFile")
	}
	if _, ok := p.Scopes.Root("app.ts"); ok {
		t.Error("scopes survived RemoveFile")
	}
}

func TestProjectRejectsInvalidIndex(t *testing.T) {
	p := NewProject()
	bad := &semantic.FileIndex{Path: "bad.ts", RootScope: "missing"}
	if err := p.UpdateFile(bad); err == nil {
		t.Fatal("expected validation error for root scope not in scope list")
	}
	if p.HasFile("bad.ts") {
		t.Error("invalid index must not be stored")
	}
}

func TestDefinitionMemberIndex(t *testing.T) {
	p := NewProject()
	idx := twoScopeIndex("user.ts")
	root := idx.RootScope
	classScope := semantic.ScopeID("user.ts#class")
	idx.Scopes = append(idx.Scopes, semantic.Scope{ID: classScope, Kind: semantic.ScopeClass, Parent: root})

	classSym := semantic.SymbolID("user.ts#User")
	idx.Definitions = []semantic.Definition{
		{SymbolID: classSym, Name: "User", Kind: semantic.KindClass, Location: loc("user.ts", 1), ScopeID: root,
			Visibility: semantic.Visibility{Kind: semantic.VisExported}},
		{SymbolID: "user.ts#User.ctor", Name: "constructor", Kind: semantic.KindConstructor, Location: loc("user.ts", 2),
			ScopeID: classScope, Owner: classSym, Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren}},
		{SymbolID: "user.ts#User.greet", Name: "greet", Kind: semantic.KindMethod, Location: loc("user.ts", 3),
			ScopeID: classScope, Owner: classSym, Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren}},
		{SymbolID: "user.ts#User.name", Name: "name", Kind: semantic.KindProperty, Location: loc("user.ts", 4),
			ScopeID: classScope, Owner: classSym, Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren}},
	}
	if err := p.UpdateFile(idx); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if sym, ok := p.Defs.Member(classSym, "greet"); !ok || sym != "user.ts#User.greet" {
		t.Errorf("Member(greet) = %q, %v", sym, ok)
	}
	if sym, ok := p.Defs.Member(classSym, "name"); !ok || sym != "user.ts#User.name" {
		t.Errorf("Member(name) = %q, %v", sym, ok)
	}
	if _, ok := p.Defs.Member(classSym, "missing"); ok {
		t.Error("Member(missing) should not resolve")
	}
	if sym, ok := p.Defs.Constructor(classSym); !ok || sym != "user.ts#User.ctor" {
		t.Errorf("Constructor = %q, %v", sym, ok)
	}
	if sym, ok := p.Defs.DefinitionAt(loc("user.ts", 3)); !ok || sym != "user.ts#User.greet" {
		t.Errorf("DefinitionAt = %q, %v", sym, ok)
	}
	if scope, ok := p.Defs.SymbolScope("user.ts#User.greet"); !ok || scope != classScope {
		t.Errorf("SymbolScope = %q, %v", scope, ok)
	}

	p.RemoveFile("user.ts")
	if _, ok := p.Defs.Member(classSym, "greet"); ok {
		t.Error("member index survived RemoveFile")
	}
	if _, ok := p.Defs.Constructor(classSym); ok {
		t.Error("constructor index survived RemoveFile")
	}
}

func TestExportRegistry(t *testing.T) {
	p := NewProject()
	idx := twoScopeIndex("lib.ts")
	root := idx.RootScope
	idx.Definitions = []semantic.Definition{
		{SymbolID: "lib.ts#parse", Name: "parse", Kind: semantic.KindFunction, Location: loc("lib.ts", 1), ScopeID: root,
			Visibility: semantic.Visibility{Kind: semantic.VisExported}},
		{SymbolID: "lib.ts#render", Name: "render", Kind: semantic.KindFunction, Location: loc("lib.ts", 2), ScopeID: root,
			Visibility: semantic.Visibility{Kind: semantic.VisExported, ExportName: "draw"}},
		{SymbolID: "lib.ts#main", Name: "main", Kind: semantic.KindFunction, Location: loc("lib.ts", 3), ScopeID: root,
			Visibility: semantic.Visibility{Kind: semantic.VisExported, ExportName: "default", IsDefault: true}},
		{SymbolID: "lib.ts#helper", Name: "helper", Kind: semantic.KindFunction, Location: loc("lib.ts", 4), ScopeID: root,
			Visibility: semantic.Visibility{Kind: semantic.VisFile}},
	}
	idx.Reexports = []semantic.Reexport{
		{ExportName: "fmt", SourcePath: "./format", SourceName: "format", Location: loc("lib.ts", 5)},
		{IsStar: true, SourcePath: "./extras", Location: loc("lib.ts", 6)},
	}
	if err := p.UpdateFile(idx); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if sym, ok := p.Exports.Export("lib.ts", "parse"); !ok || sym != "lib.ts#parse" {
		t.Errorf("Export(parse) = %q, %v", sym, ok)
	}
	// The rename binds the export name, not the local one.
	if _, ok := p.Exports.Export("lib.ts", "render"); ok {
		t.Error("renamed export must not be reachable under its local name")
	}
	if sym, ok := p.Exports.Export("lib.ts", "draw"); !ok || sym != "lib.ts#render" {
		t.Errorf("Export(draw) = %q, %v", sym, ok)
	}
	if sym, ok := p.Exports.Default("lib.ts"); !ok || sym != "lib.ts#main" {
		t.Errorf("Default = %q, %v", sym, ok)
	}
	if sym, ok := p.Exports.Export("lib.ts", "default"); !ok || sym != "lib.ts#main" {
		t.Errorf(`Export("default") = %q, %v`, sym, ok)
	}
	if _, ok := p.Exports.Export("lib.ts", "helper"); ok {
		t.Error("file-visible definition must not be exported")
	}

	re, ok := p.Exports.Reexport("lib.ts", "fmt")
	if !ok || re.SourcePath != "./format" || re.SourceName != "format" {
		t.Errorf("Reexport(fmt) = %+v, %v", re, ok)
	}
	stars := p.Exports.StarReexports("lib.ts")
	if len(stars) != 1 || stars[0].SourcePath != "./extras" {
		t.Errorf("StarReexports = %+v", stars)
	}
	if names := p.Exports.ExportNames("lib.ts"); len(names) != 2 {
		t.Errorf("ExportNames = %v, want parse and draw", names)
	}
}

func TestScopeRegistryAncestry(t *testing.T) {
	p := NewProject()
	a := twoScopeIndex("a.ts")
	block := semantic.ScopeID("a.ts#block")
	a.Scopes = append(a.Scopes, semantic.Scope{ID: block, Kind: semantic.ScopeBlock, Parent: "a.ts#fn"})
	b := twoScopeIndex("b.ts")
	if err := p.UpdateFile(a); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if err := p.UpdateFile(b); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if !p.Scopes.IsDescendant(block, a.RootScope) {
		t.Error("block scope should descend from the module scope")
	}
	if !p.Scopes.IsDescendant(block, block) {
		t.Error("a scope descends from itself")
	}
	if p.Scopes.IsDescendant(a.RootScope, block) {
		t.Error("the module scope does not descend from a block")
	}
	if p.Scopes.IsDescendant(block, b.RootScope) {
		t.Error("descent never crosses files")
	}
	if !p.Scopes.SameFile(block, a.RootScope) {
		t.Error("block and root of a.ts share a file")
	}
	if p.Scopes.SameFile(a.RootScope, b.RootScope) {
		t.Error("a.ts and b.ts roots are different files")
	}
	if _, ok := p.Scopes.Parent(a.RootScope); ok {
		t.Error("the module scope has no parent")
	}
	if parent, ok := p.Scopes.Parent(block); !ok || parent != "a.ts#fn" {
		t.Errorf("Parent(block) = %q, %v", parent, ok)
	}
	if file, ok := p.Scopes.FileOf(block); !ok || file != "a.ts" {
		t.Errorf("FileOf(block) = %q, %v", file, ok)
	}
}

func TestImportGraphScopedBindings(t *testing.T) {
	p := NewProject()
	idx := twoScopeIndex("mod.py")
	root := idx.RootScope
	fn := semantic.ScopeID("mod.py#fn")
	idx.Imports = []semantic.Import{
		{LocalName: "os", SourcePath: "os", ImportName: "os", Kind: semantic.ImportNamespace, ScopeID: root, Location: loc("mod.py", 1)},
		{LocalName: "helper", SourcePath: ".util", ImportName: "helper", Kind: semantic.ImportNamed, ScopeID: fn, Location: loc("mod.py", 3)},
	}
	if err := p.UpdateFile(idx); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}

	if got := len(p.Imports.ScopeImports(root)); got != 1 {
		t.Errorf("module scope imports = %d, want 1", got)
	}
	scoped := p.Imports.ScopeImports(fn)
	if len(scoped) != 1 || scoped[0].LocalName != "helper" {
		t.Errorf("function scope imports = %+v", scoped)
	}

	// Re-index without the function-level import; its scoped entry must go.
	idx2 := twoScopeIndex("mod.py")
	idx2.Imports = []semantic.Import{
		{LocalName: "os", SourcePath: "os", ImportName: "os", Kind: semantic.ImportNamespace, ScopeID: idx2.RootScope, Location: loc("mod.py", 1)},
	}
	if err := p.UpdateFile(idx2); err != nil {
		t.Fatalf("UpdateFile failed: %v", err)
	}
	if got := len(p.Imports.ScopeImports(fn)); got != 0 {
		t.Errorf("stale scoped import survived re-index: %d", got)
	}
	if got := len(p.Imports.FileImports("mod.py")); got != 1 {
		t.Errorf("FileImports = %d, want 1", got)
	}
}
