// # internal/resolver/rust.go
package resolver

import (
	"path/filepath"
	"strings"
)

// resolveRustPath resolves a `use` path to the file declaring its final
// module segment. crate::/super::/self:: select an anchor directory; each
// remaining segment tries segment.rs, then segment/mod.rs, before
// descending. A leading bare segment is treated as crate-relative first;
// if the crate has no such module the path is an external crate.
func resolveRustPath(stats *statCache, spec, fromFile string) (string, bool) {
	segments := strings.Split(strings.TrimSpace(spec), "::")
	if len(segments) == 0 || segments[0] == "" {
		return "", false
	}

	anchor := ""
	external := false
	switch segments[0] {
	case "crate":
		anchor = rustCrateRoot(stats, fromFile)
		segments = segments[1:]
	case "super":
		// The module of foo.rs is dir/foo, the module of mod.rs is dir
		// itself, so super's anchor depends on which kind of file this is.
		anchor = filepath.Dir(fromFile)
		if isRustRootFile(fromFile) {
			anchor = filepath.Dir(anchor)
		}
		segments = segments[1:]
		for len(segments) > 0 && segments[0] == "super" {
			anchor = filepath.Dir(anchor)
			segments = segments[1:]
		}
	case "self":
		anchor = rustModuleDir(fromFile)
		segments = segments[1:]
	default:
		// Bare path: crate-relative in the 2015 edition, external crate
		// otherwise. Try the crate first and fall back to external.
		anchor = rustCrateRoot(stats, fromFile)
		external = true
	}

	if len(segments) == 0 {
		return "", false
	}

	dir := anchor
	for i, seg := range segments {
		fileCandidate := filepath.Join(dir, seg+".rs")
		modCandidate := filepath.Join(dir, seg, "mod.rs")

		if i == len(segments)-1 {
			if stats.FileExists(fileCandidate) {
				return fileCandidate, true
			}
			if stats.FileExists(modCandidate) {
				return modCandidate, true
			}
			if external {
				return "", false
			}
			return modCandidate, true
		}

		// Intermediate segment: descend. Children of seg.rs and of
		// seg/mod.rs both live in the seg/ directory.
		if !stats.FileExists(fileCandidate) && !stats.FileExists(modCandidate) && external {
			return "", false
		}
		dir = filepath.Join(dir, seg)
	}
	return "", false
}

// isRustRootFile reports whether a file anchors its module at its own
// directory (mod.rs and the crate roots) rather than at a child directory.
func isRustRootFile(path string) bool {
	switch filepath.Base(path) {
	case "mod.rs", "lib.rs", "main.rs":
		return true
	}
	return false
}

// rustModuleDir returns the directory holding a file's child modules.
func rustModuleDir(path string) string {
	if isRustRootFile(path) {
		return filepath.Dir(path)
	}
	return strings.TrimSuffix(path, ".rs")
}

// rustCrateRoot finds the crate root directory: the nearest ancestor
// directory containing lib.rs or main.rs, or src/ under the directory with
// Cargo.toml as a fallback.
func rustCrateRoot(stats *statCache, fromFile string) string {
	dir := filepath.Dir(fromFile)
	for {
		if stats.FileExists(filepath.Join(dir, "lib.rs")) || stats.FileExists(filepath.Join(dir, "main.rs")) {
			return dir
		}
		if stats.FileExists(filepath.Join(dir, "Cargo.toml")) {
			return filepath.Join(dir, "src")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Dir(fromFile)
		}
		dir = parent
	}
}
