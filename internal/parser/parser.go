// # internal/parser/parser.go
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/observability"
	"skein/internal/semantic"
)

// Extractor turns one parsed syntax tree into the semantic index the
// resolution pipeline consumes.
type Extractor interface {
	Extract(root *sitter.Node, source []byte, filePath string) *semantic.FileIndex
}

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
}

// NewDefaultParser returns a parser with all four language extractors
// registered.
func NewDefaultParser() *Parser {
	p := NewParser(NewGrammarLoader())
	p.RegisterExtractor("javascript", &JavaScriptExtractor{})
	p.RegisterExtractor("typescript", &TypeScriptExtractor{})
	p.RegisterExtractor("python", &PythonExtractor{})
	p.RegisterExtractor("rust", &RustExtractor{})
	return p
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

// Supported reports whether a file belongs to one of the indexed languages.
func (p *Parser) Supported(path string) bool {
	lang, _ := detectLanguage(path)
	_, ok := p.extractors[lang]
	return ok
}

// ParseFile parses source content and extracts its semantic index.
func (p *Parser) ParseFile(path string, content []byte) (*semantic.FileIndex, error) {
	lang, grammarKey := detectLanguage(path)
	if lang == "" {
		return nil, errors.New("unsupported language")
	}

	grammar, err := p.loader.Grammar(grammarKey)
	if err != nil {
		return nil, err
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, fmt.Errorf("no extractor for: %s", lang)
	}

	start := time.Now()

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	idx := extractor.Extract(tree.RootNode(), content, path)
	observability.IndexingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	return idx, nil
}

// detectLanguage maps a file extension to (language, grammar key). The two
// differ only for TSX, which parses with its own grammar but extracts as
// typescript.
func detectLanguage(path string) (string, string) {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return "javascript", "javascript"
	case ".ts", ".mts", ".cts":
		return "typescript", "typescript"
	case ".tsx":
		return "typescript", "tsx"
	case ".py":
		return "python", "python"
	case ".rs":
		return "rust", "rust"
	}
	return "", ""
}
