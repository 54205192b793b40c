package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"skein/internal/config"
)

func TestApp(t *testing.T) {
	tmpDir := t.TempDir()

	utilSrc := `export function greet(name) {
    return "hi " + name;
}
`
	appSrc := `import { greet } from './util';

greet("world");
`
	if err := os.WriteFile(filepath.Join(tmpDir, "util.js"), []byte(utilSrc), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "main.js"), []byte(appSrc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.WatchPaths = []string{tmpDir}
	cfg.Output = config.Output{
		DOT:  filepath.Join(tmpDir, "calls.dot"),
		TSV:  filepath.Join(tmpDir, "symbols.tsv"),
		JSON: filepath.Join(tmpDir, "report.json"),
	}
	cfg.History.Path = filepath.Join(tmpDir, "skein.db")

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	var updates []Update
	a.SetUpdateHandler(func(u Update) {
		updates = append(updates, u)
	})

	if err := a.InitialScan(); err != nil {
		t.Fatal(err)
	}
	if a.Project.FileCount() != 2 {
		t.Fatalf("Expected 2 indexed files, got %d", a.Project.FileCount())
	}

	resolved, err := a.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.TotalResolved() == 0 {
		t.Error("Expected at least one resolved reference")
	}

	for _, path := range []string{cfg.Output.DOT, cfg.Output.TSV, cfg.Output.JSON} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Expected output file %s to exist", path)
		}
	}

	dot, err := os.ReadFile(cfg.Output.DOT)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph calls") {
		t.Error("DOT output missing header")
	}

	if len(updates) != 1 {
		t.Fatalf("Expected 1 update, got %d", len(updates))
	}
	if updates[0].FileCount != 2 {
		t.Errorf("Update.FileCount = %d, want 2", updates[0].FileCount)
	}

	runs, err := a.History.LoadRuns(time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("Expected 1 persisted run, got %d", len(runs))
	}
}

func TestScanDirectoriesExcludes(t *testing.T) {
	tmpDir := t.TempDir()

	mustWrite := func(rel, content string) {
		path := filepath.Join(tmpDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("src/app.ts", "export const a = 1;")
	mustWrite("src/skip_generated.ts", "export const b = 2;")
	mustWrite("node_modules/pkg/index.js", "module.exports = {};")
	mustWrite("README.md", "docs")

	cfg := config.Default()
	cfg.WatchPaths = []string{tmpDir}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	files, err := a.ScanDirectories([]string{tmpDir}, []string{"node_modules"}, []string{"skip_*"})
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "app.ts" {
		t.Errorf("Unexpected file: %s", files[0])
	}
}

func TestStrictModeEscalation(t *testing.T) {
	tmpDir := t.TempDir()

	// A call to a name with no declaration anywhere in the file.
	src := `function caller() {
    missingHelper();
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, "broken.js"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.WatchPaths = []string{tmpDir}
	cfg.Resolve.Strict = true

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if err := a.InitialScan(); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Resolve(context.Background()); err == nil {
		t.Error("Expected strict mode to escalate same-file failure")
	}
}
