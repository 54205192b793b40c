// # internal/output/output_test.go
package output

import (
	"encoding/json"
	"strings"
	"testing"

	"skein/internal/registry"
	"skein/internal/resolver"
	"skein/internal/semantic"
)

func fixtureProject(t *testing.T) (*registry.Project, *resolver.ResolvedSymbols) {
	t.Helper()
	p := registry.NewProject()

	greetLoc := semantic.Location{File: "util.ts", StartLine: 1, StartCol: 17, EndLine: 1, EndCol: 22}
	greetSym := semantic.NewSymbolID("util.ts", "greet", greetLoc)

	util := &semantic.FileIndex{
		Path:      "util.ts",
		Language:  "typescript",
		RootScope: semantic.NewScopeID("util.ts", 0),
		Scopes: []semantic.Scope{
			{ID: semantic.NewScopeID("util.ts", 0), Kind: semantic.ScopeModule},
		},
		Definitions: []semantic.Definition{{
			SymbolID:   greetSym,
			Name:       "greet",
			Kind:       semantic.KindFunction,
			Location:   greetLoc,
			ScopeID:    semantic.NewScopeID("util.ts", 0),
			Visibility: semantic.Visibility{Kind: semantic.VisExported, ExportName: "greet"},
		}},
	}
	app := &semantic.FileIndex{
		Path:      "app.ts",
		Language:  "typescript",
		RootScope: semantic.NewScopeID("app.ts", 0),
		Scopes: []semantic.Scope{
			{ID: semantic.NewScopeID("app.ts", 0), Kind: semantic.ScopeModule},
		},
	}
	if err := p.UpdateFile(util); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateFile(app); err != nil {
		t.Fatal(err)
	}

	resolved := resolver.NewResolvedSymbols()
	callLoc := semantic.Location{File: "app.ts", StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 6}
	resolved.References[callLoc.Key()] = greetSym
	resolved.CallsTo[greetSym] = []semantic.Location{callLoc}
	resolved.Phases[resolver.PhaseCalls] = resolver.PhaseStats{Resolved: 1}
	resolved.Diagnostics = append(resolved.Diagnostics, resolver.Diagnostic{
		Location: semantic.Location{File: "app.ts", StartLine: 9, StartCol: 1},
		Name:     "missing",
		Kind:     semantic.RefFunctionCall,
		Reason:   "no visible declaration",
	})

	return p, resolved
}

func TestDOTGenerator(t *testing.T) {
	p, resolved := fixtureProject(t)

	dot, err := NewDOTGenerator(p, resolved).Generate()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(dot, "digraph calls") {
		t.Error("DOT output missing digraph header")
	}
	if !strings.Contains(dot, "\"app.ts\" -> \"util.ts\"") {
		t.Error("DOT output missing edge app.ts -> util.ts")
	}
	if !strings.Contains(dot, "unresolved") {
		t.Error("DOT output missing unresolved highlight")
	}
}

func TestMermaidGenerator(t *testing.T) {
	p, resolved := fixtureProject(t)

	mmd, err := NewMermaidGenerator(p, resolved).Generate()
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(mmd, "graph LR") {
		t.Error("mermaid output missing header")
	}
	if !strings.Contains(mmd, "util.ts") || !strings.Contains(mmd, "-->") {
		t.Errorf("mermaid output missing call edge:\n%s", mmd)
	}
}

func TestTSVGenerator(t *testing.T) {
	p, resolved := fixtureProject(t)

	gen := NewTSVGenerator(p, resolved)
	tsv, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines in TSV, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "greet\tfunction\tutil.ts") {
		t.Errorf("Unexpected TSV line: %s", lines[1])
	}

	diag, err := gen.GenerateDiagnostics()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(diag, "missing\tfunction_call\tno visible declaration") {
		t.Errorf("Unexpected diagnostics TSV:\n%s", diag)
	}
}

func TestJSONGenerator(t *testing.T) {
	p, resolved := fixtureProject(t)

	out, err := NewJSONGenerator(p, resolved).Generate()
	if err != nil {
		t.Fatal(err)
	}

	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}
	if report["files"].(float64) != 2 {
		t.Errorf("files = %v, want 2", report["files"])
	}
	if report["resolved"].(float64) != 1 {
		t.Errorf("resolved = %v, want 1", report["resolved"])
	}
}
