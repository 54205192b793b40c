// # internal/semantic/types.go
package semantic

import (
	"fmt"
	"time"
)

// SymbolID uniquely identifies one definition across the whole project.
// It is assigned once when the definition is indexed and never recomputed.
type SymbolID string

// ScopeID uniquely identifies one lexical scope within the project.
type ScopeID string

type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Key returns the map key used for resolved-reference lookups by span.
func (l Location) Key() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.StartLine, l.StartCol, l.EndLine, l.EndCol)
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

func (l Location) IsZero() bool {
	return l.File == "" && l.StartLine == 0 && l.StartCol == 0
}

type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeFunction ScopeKind = "function"
	ScopeBlock    ScopeKind = "block"
	ScopeClass    ScopeKind = "class"
)

// Scope is one node of a file's lexical scope tree. Parent is empty only for
// the module scope; the chain is acyclic and terminates at the module scope.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Parent   ScopeID
	Location Location
}

type VisibilityKind string

const (
	VisScopeLocal    VisibilityKind = "scope_local"
	VisScopeChildren VisibilityKind = "scope_children"
	VisFile          VisibilityKind = "file"
	VisExported      VisibilityKind = "exported"
)

type Visibility struct {
	Kind VisibilityKind

	// Export metadata, meaningful only when Kind == VisExported.
	ExportName string
	IsDefault  bool
	IsReexport bool
}

type DefinitionKind string

const (
	KindFunction    DefinitionKind = "function"
	KindMethod      DefinitionKind = "method"
	KindConstructor DefinitionKind = "constructor"
	KindClass       DefinitionKind = "class"
	KindInterface   DefinitionKind = "interface"
	KindStruct      DefinitionKind = "struct"
	KindEnum        DefinitionKind = "enum"
	KindTrait       DefinitionKind = "trait"
	KindTypeAlias   DefinitionKind = "type_alias"
	KindVariable    DefinitionKind = "variable"
	KindConstant    DefinitionKind = "constant"
	KindParameter   DefinitionKind = "parameter"
	KindProperty    DefinitionKind = "property"
)

// IsType reports whether a definition of this kind can serve as a receiver
// type for method resolution.
func (k DefinitionKind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindStruct, KindEnum, KindTrait, KindTypeAlias:
		return true
	}
	return false
}

// Definition is a declared symbol. ScopeID is the declaring scope, set at
// construction by the indexer; it is never re-derived by search.
type Definition struct {
	SymbolID   SymbolID
	Name       string
	Kind       DefinitionKind
	Location   Location
	ScopeID    ScopeID
	Visibility Visibility

	// Owner is the type symbol a member (method, property, constructor)
	// belongs to. Empty for non-members.
	Owner SymbolID

	// TypeExpr is the declared type expression, when the source carries one
	// (annotations, field types). Raw text, resolved lazily in the type phase.
	TypeExpr string

	// Extends and Implements hold base type names for class-like definitions.
	// Names, not symbols: they are resolved through scope+import machinery.
	Extends    []string
	Implements []string
}

func (d *Definition) Exported() bool {
	return d.Visibility.Kind == VisExported
}

// ExportedAs returns the name this definition is exported under.
func (d *Definition) ExportedAs() string {
	if d.Visibility.ExportName != "" {
		return d.Visibility.ExportName
	}
	return d.Name
}

type ReferenceKind string

const (
	RefFunctionCall    ReferenceKind = "function_call"
	RefMethodCall      ReferenceKind = "method_call"
	RefConstructorCall ReferenceKind = "constructor_call"
	RefPropertyAccess  ReferenceKind = "property_access"
	RefVariable        ReferenceKind = "variable_reference"
	RefAssignment      ReferenceKind = "assignment"
	RefTypeReference   ReferenceKind = "type_reference"
)

// Reference is a use site awaiting resolution. ScopeID is the scope the
// reference occurs in, recorded by the indexer.
type Reference struct {
	Kind     ReferenceKind
	Name     string
	Location Location
	ScopeID  ScopeID

	// Receiver fields for method calls and property accesses: the receiver
	// expression's span and, when it is a bare identifier, its name.
	ReceiverLocation Location
	ReceiverName     string

	// ConstructTarget is the span of the variable a constructor call is
	// assigned to. Zero for standalone `new Foo()` statements.
	ConstructTarget Location

	// PropertyChain holds the full dotted chain for property accesses,
	// e.g. ["config", "server", "port"].
	PropertyChain []string

	// TypeName carries the annotated type for assignments that declare one.
	TypeName string
}

type ImportKind string

const (
	ImportNamed     ImportKind = "named"
	ImportDefault   ImportKind = "default"
	ImportNamespace ImportKind = "namespace"
)

// Import is one imported binding. SourcePath is the raw module specifier as
// written; resolving it to a file is the import resolver's job.
type Import struct {
	LocalName  string
	SourcePath string
	ImportName string
	Kind       ImportKind
	ScopeID    ScopeID
	Location   Location
}

// Reexport forwards an export from another module without a local binding,
// e.g. `export { x } from "./mod"` or `pub use crate::utils::helper`.
type Reexport struct {
	ExportName string
	SourcePath string
	SourceName string
	IsStar     bool
	Location   Location
}

// FileIndex is the complete semantic index of one source file: the contract
// between the per-language extractors and the resolution pipeline.
type FileIndex struct {
	Path        string
	Language    string
	RootScope   ScopeID
	Scopes      []Scope
	Definitions []Definition
	References  []Reference
	Imports     []Import
	Reexports   []Reexport
	IndexedAt   time.Time
}
