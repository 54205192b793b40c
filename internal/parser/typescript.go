package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/semantic"
)

// TypeScriptExtractor builds the semantic index for .ts/.tsx files. The
// walk is the shared ECMAScript one with typescript-only node kinds
// (interfaces, type aliases, enums, annotations) enabled.
type TypeScriptExtractor struct{}

func (TypeScriptExtractor) Extract(root *sitter.Node, source []byte, path string) *semantic.FileIndex {
	w := &ecmaWalker{indexBuilder: newIndexBuilder(path, "typescript", source, root), ts: true}
	w.walkChildren(root)
	return w.finish()
}
