// # internal/registry/exports.go
package registry

import (
	"skein/internal/semantic"
)

// ExportRegistry tracks what each file exports: exported definitions by
// export name, the default export, and re-export forwarding records.
type ExportRegistry struct {
	named     map[string]map[string]semantic.SymbolID
	defaults  map[string]semantic.SymbolID
	reexports map[string]map[string]semantic.Reexport
	stars     map[string][]semantic.Reexport
}

func NewExportRegistry() *ExportRegistry {
	return &ExportRegistry{
		named:     make(map[string]map[string]semantic.SymbolID),
		defaults:  make(map[string]semantic.SymbolID),
		reexports: make(map[string]map[string]semantic.Reexport),
		stars:     make(map[string][]semantic.Reexport),
	}
}

func (r *ExportRegistry) UpdateFile(path string, defs []semantic.Definition, reexports []semantic.Reexport) {
	delete(r.named, path)
	delete(r.defaults, path)
	delete(r.reexports, path)
	delete(r.stars, path)

	named := make(map[string]semantic.SymbolID)
	for i := range defs {
		d := &defs[i]
		if !d.Exported() {
			continue
		}
		if d.Visibility.IsDefault {
			r.defaults[path] = d.SymbolID
			continue
		}
		named[d.ExportedAs()] = d.SymbolID
	}
	if len(named) > 0 {
		r.named[path] = named
	}

	fwd := make(map[string]semantic.Reexport)
	for _, re := range reexports {
		if re.IsStar {
			r.stars[path] = append(r.stars[path], re)
			continue
		}
		fwd[re.ExportName] = re
	}
	if len(fwd) > 0 {
		r.reexports[path] = fwd
	}
}

// Export returns the symbol a file exports under the given name.
func (r *ExportRegistry) Export(path, name string) (semantic.SymbolID, bool) {
	if name == "default" {
		id, ok := r.defaults[path]
		return id, ok
	}
	named, ok := r.named[path]
	if !ok {
		return "", false
	}
	id, ok := named[name]
	return id, ok
}

// Default returns a file's default export, if any.
func (r *ExportRegistry) Default(path string) (semantic.SymbolID, bool) {
	id, ok := r.defaults[path]
	return id, ok
}

// Reexport returns the forwarding record for an export name, if the file
// re-exports it from elsewhere instead of defining it.
func (r *ExportRegistry) Reexport(path, name string) (semantic.Reexport, bool) {
	fwd, ok := r.reexports[path]
	if !ok {
		return semantic.Reexport{}, false
	}
	re, ok := fwd[name]
	return re, ok
}

// StarReexports returns the file's `export * from` records.
func (r *ExportRegistry) StarReexports(path string) []semantic.Reexport {
	return r.stars[path]
}

// ExportNames returns all named exports of a file. Used by diagnostics.
func (r *ExportRegistry) ExportNames(path string) []string {
	named := r.named[path]
	names := make([]string, 0, len(named))
	for n := range named {
		names = append(names, n)
	}
	return names
}
