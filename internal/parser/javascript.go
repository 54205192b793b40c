package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/semantic"
)

// JavaScriptExtractor builds the semantic index for .js/.mjs/.cjs files.
type JavaScriptExtractor struct{}

func (JavaScriptExtractor) Extract(root *sitter.Node, source []byte, path string) *semantic.FileIndex {
	w := &ecmaWalker{indexBuilder: newIndexBuilder(path, "javascript", source, root)}
	w.walkChildren(root)
	return w.finish()
}
