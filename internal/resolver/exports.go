// # internal/resolver/exports.go
package resolver

import (
	"log/slog"

	"skein/internal/registry"
	"skein/internal/semantic"
)

// ExportChains follows export chains across files: given (file, exported
// name) it returns the origin definition, hopping through re-exports. Every
// chain walk carries a visited set keyed by (file, name); a repeated pair
// signals a cycle and terminates as unresolved, never as an infinite loop.
type ExportChains struct {
	project *registry.Project
	modpath *ModulePaths
}

func NewExportChains(project *registry.Project, modpath *ModulePaths) *ExportChains {
	return &ExportChains{project: project, modpath: modpath}
}

// ResolveExport resolves an exported name to its origin symbol.
func (c *ExportChains) ResolveExport(file, name string) (semantic.SymbolID, bool) {
	return c.follow(file, name, make(map[exportKey]bool))
}

type exportKey struct {
	file string
	name string
}

func (c *ExportChains) follow(file, name string, visited map[exportKey]bool) (semantic.SymbolID, bool) {
	key := exportKey{file: file, name: name}
	if visited[key] {
		slog.Debug("re-export cycle detected", "file", file, "name", name)
		return "", false
	}
	visited[key] = true

	// A definition exported directly from this file ends the chain.
	if sym, ok := c.project.Exports.Export(file, name); ok {
		return sym, true
	}

	// Named re-export: hop into the source module under its source name.
	if re, ok := c.project.Exports.Reexport(file, name); ok {
		srcFile, ok := c.sourceFile(file, re.SourcePath)
		if !ok {
			return "", false
		}
		srcName := re.SourceName
		if srcName == "" {
			srcName = name
		}
		return c.follow(srcFile, srcName, visited)
	}

	// Star re-exports forward everything; first hit wins in declaration
	// order, matching the bundler convention.
	for _, star := range c.project.Exports.StarReexports(file) {
		srcFile, ok := c.sourceFile(file, star.SourcePath)
		if !ok {
			continue
		}
		if sym, ok := c.follow(srcFile, name, visited); ok {
			return sym, true
		}
	}

	return "", false
}

func (c *ExportChains) sourceFile(fromFile, spec string) (string, bool) {
	lang := LangJavaScript
	if idx, ok := c.project.File(fromFile); ok {
		lang = idx.Language
	} else if detected := DetectLanguage(fromFile); detected != "" {
		lang = detected
	}
	return c.modpath.Resolve(lang, spec, fromFile)
}
