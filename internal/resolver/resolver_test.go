// # internal/resolver/resolver_test.go
package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"skein/internal/parser"
	"skein/internal/registry"
	"skein/internal/semantic"
)

// projectFixture indexes real source files from a temp tree, so module-path
// resolution sees the same files the registries hold.
type projectFixture struct {
	t       *testing.T
	root    string
	parser  *parser.Parser
	project *registry.Project
	indexes map[string]*semantic.FileIndex
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()
	return &projectFixture{
		t:       t,
		root:    t.TempDir(),
		parser:  parser.NewDefaultParser(),
		project: registry.NewProject(),
		indexes: make(map[string]*semantic.FileIndex),
	}
}

func (f *projectFixture) add(rel, src string) string {
	f.t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		f.t.Fatalf("write: %v", err)
	}
	idx, err := f.parser.ParseFile(path, []byte(src))
	if err != nil {
		f.t.Fatalf("parse %s: %v", rel, err)
	}
	if err := f.project.UpdateFile(idx); err != nil {
		f.t.Fatalf("index %s: %v", rel, err)
	}
	f.indexes[path] = idx
	return path
}

func (f *projectFixture) run() *ResolvedSymbols {
	f.t.Helper()
	resolved, err := NewOrchestrator(f.project).Run(context.Background())
	if err != nil {
		f.t.Fatalf("Run failed: %v", err)
	}
	return resolved
}

func (f *projectFixture) def(path, name string) semantic.Definition {
	f.t.Helper()
	for _, d := range f.indexes[path].Definitions {
		if d.Name == name {
			return d
		}
	}
	f.t.Fatalf("no definition %q in %s", name, path)
	return semantic.Definition{}
}

func (f *projectFixture) ref(path string, kind semantic.ReferenceKind, name string) semantic.Reference {
	f.t.Helper()
	for _, r := range f.indexes[path].References {
		if r.Kind == kind && r.Name == name {
			return r
		}
	}
	f.t.Fatalf("no %s reference %q in %s", kind, name, path)
	return semantic.Reference{}
}

func TestCrossFileCallResolution(t *testing.T) {
	f := newProjectFixture(t)
	util := f.add("src/util.ts", `export function greet(name: string): string {
  return name;
}
`)
	app := f.add("src/app.ts", `import { greet } from "./util";

greet("hi");
`)

	resolved := f.run()

	if stats := resolved.Phases[PhaseImports]; stats.Resolved != 1 || stats.Unresolved != 0 {
		t.Errorf("import phase = %+v, want 1 resolved", stats)
	}

	greet := f.def(util, "greet")
	call := f.ref(app, semantic.RefFunctionCall, "greet")
	if sym, ok := resolved.ResolveAt(call.Location); !ok || sym != greet.SymbolID {
		t.Errorf("call resolved to %q, want %q", sym, greet.SymbolID)
	}
	if callers := resolved.Callers(greet.SymbolID); len(callers) != 1 {
		t.Errorf("Callers = %v, want one site", callers)
	}
	if len(resolved.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", resolved.Diagnostics)
	}
}

func TestShadowingInnermostWins(t *testing.T) {
	f := newProjectFixture(t)
	app := f.add("app.js", `const x = 1;

function outer() {
  const x = 2;
  return x;
}

x = 3;
`)

	resolved := f.run()

	idx := f.indexes[app]
	var outerX, innerX semantic.Definition
	for _, d := range idx.Definitions {
		if d.Name != "x" {
			continue
		}
		if d.ScopeID == idx.RootScope {
			outerX = d
		} else {
			innerX = d
		}
	}
	if innerX.SymbolID == "" || outerX.SymbolID == "" {
		t.Fatal("expected both x declarations")
	}

	use := f.ref(app, semantic.RefVariable, "x")
	sym, ok := resolved.ResolveAt(use.Location)
	if !ok {
		t.Fatal("x did not resolve")
	}
	if sym != innerX.SymbolID {
		t.Errorf("x resolved to the outer declaration")
	}

	// After the function closes, the module-level assignment sees the
	// outer declaration again.
	assign := f.ref(app, semantic.RefAssignment, "x")
	sym, ok = resolved.ResolveAt(assign.Location)
	if !ok {
		t.Fatal("x = 3 did not resolve")
	}
	if sym != outerX.SymbolID {
		t.Errorf("module-level assignment resolved to the inner declaration")
	}
}

func TestPythonRelativeImport(t *testing.T) {
	f := newProjectFixture(t)
	models := f.add("pkg/models.py", `class User:
    name = ""

    def greet(self):
        return self.name
`)
	app := f.add("pkg/app.py", `from .models import User

u = User()
msg = u.greet()
`)

	resolved := f.run()

	if stats := resolved.Phases[PhaseImports]; stats.Resolved != 1 {
		t.Errorf("import phase = %+v", stats)
	}

	ctorCall := f.ref(app, semantic.RefConstructorCall, "User")
	userClass := f.def(models, "User")
	if sym, ok := resolved.ResolveAt(ctorCall.Location); !ok || sym != userClass.SymbolID {
		t.Errorf("User() resolved to %q, want the class", sym)
	}

	methodCall := f.ref(app, semantic.RefMethodCall, "greet")
	greet := f.def(models, "greet")
	if sym, ok := resolved.ResolveAt(methodCall.Location); !ok || sym != greet.SymbolID {
		t.Errorf("u.greet() resolved to %q, want %q", sym, greet.SymbolID)
	}

	// `self.name` inside greet resolves through the enclosing class body.
	access := f.ref(models, semantic.RefPropertyAccess, "name")
	nameProp := f.def(models, "name")
	if sym, ok := resolved.ResolveAt(access.Location); !ok || sym != nameProp.SymbolID {
		t.Errorf("self.name resolved to %q, want %q", sym, nameProp.SymbolID)
	}
	if len(resolved.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", resolved.Diagnostics)
	}
}

func TestRustCratePathImport(t *testing.T) {
	f := newProjectFixture(t)
	utils := f.add("src/utils.rs", `pub fn helper() {}
`)
	main := f.add("src/main.rs", `mod utils;

use crate::utils::helper;

fn main() {
    helper();
}
`)

	resolved := f.run()

	helper := f.def(utils, "helper")
	call := f.ref(main, semantic.RefFunctionCall, "helper")
	if sym, ok := resolved.ResolveAt(call.Location); !ok || sym != helper.SymbolID {
		t.Errorf("helper() resolved to %q, want %q", sym, helper.SymbolID)
	}
	if stats := resolved.Phases[PhaseImports]; stats.Unresolved != 0 {
		t.Errorf("import phase left %d unresolved", stats.Unresolved)
	}
}

func TestInheritedMethodResolution(t *testing.T) {
	f := newProjectFixture(t)
	base := f.add("src/base.ts", `export class Base {
  greet(): void {}
}
`)
	app := f.add("src/app.ts", `import { Base } from "./base";

class Derived extends Base {}

const d = new Derived();
d.greet();
`)

	resolved := f.run()

	greet := f.def(base, "greet")
	methodCall := f.ref(app, semantic.RefMethodCall, "greet")
	if sym, ok := resolved.ResolveAt(methodCall.Location); !ok || sym != greet.SymbolID {
		t.Errorf("d.greet() resolved to %q, want the inherited method %q", sym, greet.SymbolID)
	}

	// Neither class declares a constructor; the construct edge falls back
	// to the type itself.
	derived := f.def(app, "Derived")
	ctorCall := f.ref(app, semantic.RefConstructorCall, "Derived")
	if sym, ok := resolved.ResolveAt(ctorCall.Location); !ok || sym != derived.SymbolID {
		t.Errorf("new Derived() resolved to %q, want %q", sym, derived.SymbolID)
	}
}

func TestConstructorDeclarationResolution(t *testing.T) {
	f := newProjectFixture(t)
	app := f.add("app.ts", `class User {
  constructor(name: string) {}
}

const u = new User("ada");
`)

	resolved := f.run()

	ctor := f.def(app, "constructor")
	call := f.ref(app, semantic.RefConstructorCall, "User")
	if sym, ok := resolved.ResolveAt(call.Location); !ok || sym != ctor.SymbolID {
		t.Errorf("new User() resolved to %q, want the constructor %q", sym, ctor.SymbolID)
	}
}

func TestExportChainFollowing(t *testing.T) {
	f := newProjectFixture(t)
	origin := f.add("src/origin.ts", `export function impl(): void {}
`)
	f.add("src/middle.ts", `export { impl } from "./origin";
`)
	app := f.add("src/app.ts", `import { impl } from "./middle";

impl();
`)

	resolved := f.run()

	implDef := f.def(origin, "impl")
	call := f.ref(app, semantic.RefFunctionCall, "impl")
	if sym, ok := resolved.ResolveAt(call.Location); !ok || sym != implDef.SymbolID {
		t.Errorf("impl resolved to %q, want the origin definition %q", sym, implDef.SymbolID)
	}
}

func TestReexportCycleTerminates(t *testing.T) {
	f := newProjectFixture(t)
	f.add("src/a.ts", `export { loop } from "./b";
`)
	f.add("src/b.ts", `export { loop } from "./a";
`)
	app := f.add("src/app.ts", `import { loop } from "./a";

loop();
`)

	resolved := f.run()

	call := f.ref(app, semantic.RefFunctionCall, "loop")
	if _, ok := resolved.ResolveAt(call.Location); ok {
		t.Error("a cyclic re-export chain must not resolve")
	}

	found := false
	for _, d := range resolved.Diagnostics {
		if d.Name == "loop" && d.Kind == semantic.RefFunctionCall {
			found = true
			if d.SameFile {
				t.Error("an import-backed failure is not a same-file failure")
			}
		}
	}
	if !found {
		t.Error("expected a diagnostic for the unresolved cycle")
	}
}

func TestSameFileFailureDiagnostic(t *testing.T) {
	f := newProjectFixture(t)
	f.add("app.js", `function run() {
  return missingHelper();
}
`)

	resolved := f.run()

	if stats := resolved.Phases[PhaseCalls]; stats.Unresolved != 1 {
		t.Fatalf("call phase = %+v, want 1 unresolved", stats)
	}
	same := resolved.SameFileDiagnostics()
	if len(same) != 1 || same[0].Name != "missingHelper" {
		t.Errorf("SameFileDiagnostics = %v", same)
	}
}

func TestLazyImportResolvers(t *testing.T) {
	f := newProjectFixture(t)
	f.add("src/util.ts", `export function used(): void {}
export function unused(): void {}
`)
	app := f.add("src/app.ts", `import { used, unused } from "./util";
`)

	appIdx := f.indexes[app]
	index := NewScopeIndex(f.project, NewModulePaths())
	index.RegisterImports(appIdx)

	// Registration alone never touches the target file's registry entries.
	if got := index.ImportInvocations(app); got != 0 {
		t.Fatalf("invocations after registration = %d, want 0", got)
	}

	res := index.Lookup(appIdx.RootScope, "used")
	if !res.OK {
		t.Fatal("used did not resolve")
	}
	if got := index.ImportInvocations(app); got != 1 {
		t.Errorf("invocations after first lookup = %d, want 1", got)
	}

	// A second lookup of the same name is a pure cache read.
	index.Lookup(appIdx.RootScope, "used")
	if got := index.ImportInvocations(app); got != 1 {
		t.Errorf("invocations after cached lookup = %d, want 1", got)
	}
	if hits, _ := index.CacheStats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}

	// The unreferenced import's resolver stays uninvoked.
	if b, ok := index.binding(appIdx.RootScope, "unused"); !ok || b.invocations != 0 {
		t.Errorf("unused binding invoked %d times, want 0", b.invocations)
	}
}

func TestVisibilityChecker(t *testing.T) {
	p := registry.NewProject()
	mkIndex := func(path string) *semantic.FileIndex {
		root := semantic.ScopeID(path + "#root")
		fn := semantic.ScopeID(path + "#fn")
		block := semantic.ScopeID(path + "#block")
		return &semantic.FileIndex{
			Path:      path,
			Language:  "javascript",
			RootScope: root,
			Scopes: []semantic.Scope{
				{ID: root, Kind: semantic.ScopeModule},
				{ID: fn, Kind: semantic.ScopeFunction, Parent: root},
				{ID: block, Kind: semantic.ScopeBlock, Parent: fn},
			},
		}
	}
	if err := p.UpdateFile(mkIndex("a.js")); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateFile(mkIndex("b.js")); err != nil {
		t.Fatal(err)
	}
	v := NewVisibilityChecker(p.Scopes)

	def := func(kind semantic.VisibilityKind, scope semantic.ScopeID) *semantic.Definition {
		return &semantic.Definition{
			SymbolID:   "sym",
			Name:       "n",
			ScopeID:    scope,
			Visibility: semantic.Visibility{Kind: kind},
		}
	}

	cases := []struct {
		name string
		def  *semantic.Definition
		from semantic.ScopeID
		want bool
	}{
		{"scope-local same scope", def(semantic.VisScopeLocal, "a.js#fn"), "a.js#fn", true},
		{"scope-local from child", def(semantic.VisScopeLocal, "a.js#fn"), "a.js#block", false},
		{"scope-children from child", def(semantic.VisScopeChildren, "a.js#fn"), "a.js#block", true},
		{"scope-children from parent", def(semantic.VisScopeChildren, "a.js#fn"), "a.js#root", false},
		{"file within file", def(semantic.VisFile, "a.js#root"), "a.js#block", true},
		{"file across files", def(semantic.VisFile, "a.js#root"), "b.js#root", false},
		{"exported anywhere", def(semantic.VisExported, "a.js#root"), "b.js#block", true},
	}
	for _, tc := range cases {
		if got := v.IsVisible(tc.def, tc.from); got != tc.want {
			t.Errorf("%s: IsVisible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRunCancellation(t *testing.T) {
	f := newProjectFixture(t)
	f.add("app.js", `const x = 1;
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewOrchestrator(f.project).Run(ctx); err == nil {
		t.Error("expected a cancellation error")
	}
}

func TestTypeExprBase(t *testing.T) {
	cases := map[string]string{
		"User":         "User",
		"  User ":      "User",
		"User | null":  "User",
		"Array<User>":  "Array",
		"User[]":       "User",
		"&mut Config":  "Config",
		"Option<User>": "Option",
	}
	for expr, want := range cases {
		if got := typeExprBase(expr); got != want {
			t.Errorf("typeExprBase(%q) = %q, want %q", expr, got, want)
		}
	}
}
