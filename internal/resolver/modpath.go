// # internal/resolver/modpath.go
package resolver

import "path/filepath"

// Language names as the extractors report them.
const (
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangPython     = "python"
	LangRust       = "rust"
)

// ModulePaths converts raw import specifiers into file paths, dispatching on
// language. Each language rule is a pure function of (specifier, importing
// file) plus file-existence checks; candidates are tried in priority order
// and the last-tried candidate is returned when none exist on disk, so a
// not-yet-generated file degrades to an unresolved export instead of a hard
// failure.
type ModulePaths struct {
	stats *statCache
}

func NewModulePaths() *ModulePaths {
	return &ModulePaths{stats: newStatCache()}
}

// Resolve returns the file a specifier refers to. ok is false for external
// package specifiers (bare JS/TS imports, non-project crates), which the
// pipeline records as unresolved rather than chasing.
func (m *ModulePaths) Resolve(language, spec, fromFile string) (string, bool) {
	switch language {
	case LangJavaScript:
		return resolveJSPath(m.stats, spec, fromFile, jsExtensions)
	case LangTypeScript:
		return resolveJSPath(m.stats, spec, fromFile, tsExtensions)
	case LangPython:
		return resolvePythonPath(m.stats, spec, fromFile)
	case LangRust:
		return resolveRustPath(m.stats, spec, fromFile)
	}
	return "", false
}

// DetectLanguage infers the language of a file from its extension. Re-export
// chains can hop between files, so each hop re-detects.
func DetectLanguage(path string) string {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return LangTypeScript
	case ".py":
		return LangPython
	case ".rs":
		return LangRust
	}
	return ""
}
