// # internal/registry/project.go
package registry

import (
	"sort"
	"sync"

	"skein/internal/semantic"
)

// Project aggregates the per-concern registries behind one write path.
// Writes go through UpdateFile/RemoveFile (purge-then-insert per file);
// resolution runs against a read-only view afterwards. That single-writer,
// many-readers split is what keeps per-file resolution parallelizable.
type Project struct {
	mu    sync.RWMutex
	files map[string]*semantic.FileIndex

	Defs    *DefinitionRegistry
	Scopes  *ScopeRegistry
	Exports *ExportRegistry
	Imports *ImportGraph
}

func NewProject() *Project {
	return &Project{
		files:   make(map[string]*semantic.FileIndex),
		Defs:    NewDefinitionRegistry(),
		Scopes:  NewScopeRegistry(),
		Exports: NewExportRegistry(),
		Imports: NewImportGraph(),
	}
}

// UpdateFile validates an index and replaces every registry entry for its
// file. An invalid index is rejected whole; no partial state is written.
func (p *Project) UpdateFile(idx *semantic.FileIndex) error {
	if err := idx.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.files[idx.Path] = idx
	p.Scopes.UpdateFile(idx.Path, idx.RootScope, idx.Scopes)
	p.Defs.UpdateFile(idx.Path, idx.Definitions)
	p.Exports.UpdateFile(idx.Path, idx.Definitions, idx.Reexports)
	p.Imports.UpdateFile(idx.Path, idx.Imports)
	return nil
}

// RemoveFile drops a deleted file from every registry.
func (p *Project) RemoveFile(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.files, path)
	p.Scopes.removeFile(path)
	p.Defs.removeFile(path)
	p.Exports.UpdateFile(path, nil, nil)
	p.Imports.UpdateFile(path, nil)
}

// File returns the stored index for a path.
func (p *Project) File(path string) (*semantic.FileIndex, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.files[path]
	return idx, ok
}

// HasFile reports whether a path has been indexed.
func (p *Project) HasFile(path string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.files[path]
	return ok
}

// Files returns all indexed paths in stable order.
func (p *Project) Files() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// FileCount returns the number of indexed files.
func (p *Project) FileCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.files)
}
