// # internal/resolver/javascript.go
package resolver

import (
	"path/filepath"
	"strings"
)

// Extension orders for the ECMAScript family. TypeScript tries its own
// extensions and index files before the JavaScript equivalents, so a .ts
// source shadows a stale compiled .js next to it.
var (
	jsExtensions = []string{".js", ".mjs", ".cjs"}
	tsExtensions = []string{".ts", ".tsx", ".js", ".mjs", ".cjs"}
)

// resolveJSPath resolves a relative JS/TS import. Candidate order: the exact
// path as written, the path with each extension appended, then index files
// inside the path taken as a directory. Bare specifiers are external
// packages and stay unresolved.
func resolveJSPath(stats *statCache, spec, fromFile string, exts []string) (string, bool) {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && spec != "." && spec != ".." {
		return "", false
	}

	base := filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(spec))

	candidates := []string{base}
	for _, ext := range exts {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range exts {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}

	for _, c := range candidates {
		if stats.FileExists(c) {
			return c, true
		}
	}
	// Nothing on disk yet: keep the last candidate so the import stays
	// addressable once the file appears.
	return candidates[len(candidates)-1], true
}
