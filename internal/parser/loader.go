// # internal/parser/loader.go
package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// GrammarLoader holds the statically linked tree-sitter grammars. TSX gets
// its own grammar but shares the typescript extractor.
type GrammarLoader struct {
	languages map[string]*sitter.Language
}

func NewGrammarLoader() *GrammarLoader {
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
	}

	gl.languages["javascript"] = sitter.NewLanguage(tree_sitter_javascript.Language())
	gl.languages["typescript"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	gl.languages["tsx"] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	gl.languages["python"] = sitter.NewLanguage(tree_sitter_python.Language())
	gl.languages["rust"] = sitter.NewLanguage(tree_sitter_rust.Language())

	return gl
}

// Grammar returns the grammar registered under a key.
func (gl *GrammarLoader) Grammar(key string) (*sitter.Language, error) {
	lang, ok := gl.languages[key]
	if !ok {
		return nil, fmt.Errorf("grammar not loaded: %s", key)
	}
	return lang, nil
}
