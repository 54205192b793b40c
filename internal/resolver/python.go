// # internal/resolver/python.go
package resolver

import (
	"path/filepath"
	"strings"
)

// resolvePythonPath resolves a Python import specifier. Relative imports
// ascend by leading-dot count (one dot is the current package, two the
// parent, and so on); absolute dotted paths resolve from the discovered
// project root. Each module candidate is tried as module.py, then as a
// package directory with __init__.py.
func resolvePythonPath(stats *statCache, spec, fromFile string) (string, bool) {
	dots := 0
	for dots < len(spec) && spec[dots] == '.' {
		dots++
	}
	rest := spec[dots:]

	var anchor string
	if dots > 0 {
		// One dot anchors at the importing file's own package; every
		// additional dot ascends one package level.
		anchor = filepath.Dir(fromFile)
		for i := 1; i < dots; i++ {
			anchor = filepath.Dir(anchor)
		}
	} else {
		anchor = pythonProjectRoot(stats, fromFile)
	}

	if rest == "" {
		// `from . import x`: the target module is the package itself.
		return filepath.Join(anchor, "__init__.py"), true
	}

	segments := strings.Split(rest, ".")
	dir := anchor
	for _, seg := range segments[:len(segments)-1] {
		dir = filepath.Join(dir, seg)
	}

	last := segments[len(segments)-1]
	candidates := []string{
		filepath.Join(dir, last+".py"),
		filepath.Join(dir, last, "__init__.py"),
	}
	for _, c := range candidates {
		if stats.FileExists(c) {
			return c, true
		}
	}
	return candidates[len(candidates)-1], true
}

// pythonProjectRoot walks up from the importing file while package markers
// (__init__.py) are present; the root is the parent of the topmost package.
func pythonProjectRoot(stats *statCache, fromFile string) string {
	dir := filepath.Dir(fromFile)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		if !stats.FileExists(filepath.Join(dir, "__init__.py")) {
			return dir
		}
		dir = parent
	}
}
