package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/time/rate"

	"skein/internal/config"
	corerr "skein/internal/core/errors"
	"skein/internal/history"
	"skein/internal/observability"
	"skein/internal/output"
	"skein/internal/parser"
	"skein/internal/registry"
	"skein/internal/resolver"
	"skein/internal/watcher"
)

// Update is the snapshot handed to update handlers after each run.
type Update struct {
	FileCount   int
	Resolved    int
	Unresolved  int
	SameFile    int
	Diagnostics []resolver.Diagnostic
	Duration    time.Duration
}

type App struct {
	Config  *config.Config
	Parser  *parser.Parser
	Project *registry.Project
	History *history.Store

	// limiter smooths watch-mode bursts so an editor save storm triggers
	// one resolution run, not one per event batch.
	limiter *rate.Limiter

	updateMu sync.RWMutex
	onUpdate func(Update)
}

func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config:  cfg,
		Parser:  parser.NewDefaultParser(),
		Project: registry.NewProject(),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.History = store
	}

	return a, nil
}

func (a *App) Close() error {
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

func (a *App) SetUpdateHandler(handler func(Update)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) InitialScan() error {
	roots := uniqueScanRoots(a.Config.WatchPaths)

	files, err := a.ScanDirectories(roots, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}

	for _, filePath := range files {
		if err := a.ProcessFile(filePath); err != nil {
			slog.Warn("failed to index file", "path", filePath, "error", err)
		}
	}

	slog.Info("initial scan complete", "files", a.Project.FileCount())
	return nil
}

func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = filepath.Clean(abs)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.Parser.Supported(path) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// ProcessFile indexes one source file into the project registries.
func (a *App) ProcessFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	idx, err := a.Parser.ParseFile(path, content)
	if err != nil {
		return err
	}

	return a.Project.UpdateFile(idx)
}

// Resolve runs the four-phase pipeline over the current index, persists a
// history run, writes configured outputs, and notifies update handlers.
func (a *App) Resolve(ctx context.Context) (*resolver.ResolvedSymbols, error) {
	start := time.Now()

	observability.IndexedFiles.Set(float64(a.Project.FileCount()))
	observability.IndexedDefinitions.Set(float64(a.definitionCount()))

	orch := resolver.NewOrchestrator(a.Project)
	resolved, err := orch.Run(ctx)
	if err != nil {
		return nil, err
	}
	duration := time.Since(start)

	sameFile := resolved.SameFileDiagnostics()
	if a.History != nil {
		a.persistRun(resolved, len(sameFile), duration)
	}

	if err := a.GenerateOutputs(resolved); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}

	a.emitUpdate(Update{
		FileCount:   a.Project.FileCount(),
		Resolved:    resolved.TotalResolved(),
		Unresolved:  resolved.TotalUnresolved(),
		SameFile:    len(sameFile),
		Diagnostics: resolved.Diagnostics,
		Duration:    duration,
	})

	if a.Config.Resolve.Strict && len(sameFile) > 0 {
		return resolved, corerr.New(corerr.CodeUnresolved,
			fmt.Sprintf("%d same-file references failed to resolve", len(sameFile))).
			WithContext(corerr.CtxOperation, "resolve")
	}

	return resolved, nil
}

// HandleChanges re-indexes changed files and runs resolution. Wired as the
// watcher callback.
func (a *App) HandleChanges(paths []string) {
	if err := a.limiter.Wait(context.Background()); err != nil {
		return
	}

	slog.Info("detected changes", "count", len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.Project.RemoveFile(path)
			continue
		}
		if err := a.ProcessFile(path); err != nil {
			slog.Warn("failed to re-index file", "path", path, "error", err)
		}
	}

	resolved, err := a.Resolve(context.Background())
	if err != nil {
		slog.Error("resolution run failed", "error", err)
		return
	}
	a.PrintSummary(len(paths), resolved)
}

func (a *App) emitUpdate(update Update) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(update)
	}
}

func (a *App) persistRun(resolved *resolver.ResolvedSymbols, sameFile int, duration time.Duration) {
	root := "."
	if len(a.Config.WatchPaths) > 0 {
		root = a.Config.WatchPaths[0]
	}
	commitHash, commitTS := history.ResolveGitMetadata(root)

	run := history.Run{
		CommitHash:       commitHash,
		CommitTimestamp:  commitTS,
		FileCount:        a.Project.FileCount(),
		DefinitionCount:  a.definitionCount(),
		ImportsResolved:  resolved.Phases[resolver.PhaseImports].Resolved,
		CallsResolved:    resolved.Phases[resolver.PhaseCalls].Resolved,
		TypesResolved:    resolved.Phases[resolver.PhaseTypes].Resolved,
		MethodsResolved:  resolved.Phases[resolver.PhaseMethods].Resolved,
		UnresolvedCount:  resolved.TotalUnresolved(),
		SameFileFailures: sameFile,
		DurationMS:       duration.Milliseconds(),
	}
	if _, err := a.History.SaveRun(run); err != nil {
		slog.Warn("failed to persist run", "error", err)
	}
}

func (a *App) GenerateOutputs(resolved *resolver.ResolvedSymbols) error {
	out := a.Config.Output

	if out.DOT != "" {
		dot, err := output.NewDOTGenerator(a.Project, resolved).Generate()
		if err != nil {
			return fmt.Errorf("generate DOT output: %w", err)
		}
		if err := writeArtifact(out.DOT, dot); err != nil {
			return fmt.Errorf("write DOT output %q: %w", out.DOT, err)
		}
	}

	if out.Mermaid != "" {
		mmd, err := output.NewMermaidGenerator(a.Project, resolved).Generate()
		if err != nil {
			return fmt.Errorf("generate Mermaid output: %w", err)
		}
		if err := writeArtifact(out.Mermaid, mmd); err != nil {
			return fmt.Errorf("write Mermaid output %q: %w", out.Mermaid, err)
		}
	}

	if out.TSV != "" {
		gen := output.NewTSVGenerator(a.Project, resolved)
		refs, err := gen.Generate()
		if err != nil {
			return fmt.Errorf("generate TSV output: %w", err)
		}
		tsv := refs
		if len(resolved.Diagnostics) > 0 {
			diags, err := gen.GenerateDiagnostics()
			if err != nil {
				return fmt.Errorf("generate diagnostics TSV block: %w", err)
			}
			tsv = strings.TrimRight(refs, "\n") + "\n\n" + strings.TrimRight(diags, "\n") + "\n"
		}
		if err := writeArtifact(out.TSV, tsv); err != nil {
			return fmt.Errorf("write TSV output %q: %w", out.TSV, err)
		}
	}

	if out.JSON != "" {
		report, err := output.NewJSONGenerator(a.Project, resolved).Generate()
		if err != nil {
			return fmt.Errorf("generate JSON output: %w", err)
		}
		if err := writeArtifact(out.JSON, report); err != nil {
			return fmt.Errorf("write JSON output %q: %w", out.JSON, err)
		}
	}

	return nil
}

func writeArtifact(path, content string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func (a *App) PrintSummary(changedFiles int, resolved *resolver.ResolvedSymbols) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Update: %d files changed, %d indexed\n", changedFiles, a.Project.FileCount())
	fmt.Printf("Resolved %d references across %d phases\n", resolved.TotalResolved(), len(resolved.Phases))

	if n := resolved.TotalUnresolved(); n > 0 {
		fmt.Printf("FOUND %d UNRESOLVED REFERENCES:\n", n)
		for _, d := range resolved.Diagnostics {
			fmt.Printf("   %s\n", d)
		}
	} else {
		fmt.Println("All references resolved.")
	}
	fmt.Println(strings.Repeat("-", 40))
}

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.Parser.Supported,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	return w.Watch(a.Config.WatchPaths)
}

func (a *App) definitionCount() int {
	total := 0
	for _, path := range a.Project.Files() {
		total += len(a.Project.Defs.FileDefinitions(path))
	}
	return total
}
