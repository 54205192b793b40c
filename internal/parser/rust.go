package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/semantic"
)

// RustExtractor builds the semantic index for .rs files.
//
// Methods live in impl blocks that may precede their type, so ownership is
// recorded by type name during the walk and bound to symbols in a fix-up
// pass once the whole file has been seen.
type RustExtractor struct{}

func (RustExtractor) Extract(root *sitter.Node, source []byte, path string) *semantic.FileIndex {
	w := &rustWalker{
		indexBuilder: newIndexBuilder(path, "rust", source, root),
		typeSyms:     make(map[string]semantic.SymbolID),
	}
	w.walkChildren(root)
	w.applyImplFixups()
	return w.finish()
}

type implFixup struct {
	defIndex int
	typeName string
}

type traitFixup struct {
	typeName  string
	traitName string
}

type rustWalker struct {
	*indexBuilder
	typeSyms    map[string]semantic.SymbolID
	implFixups  []implFixup
	traitFixups []traitFixup
}

func (w *rustWalker) walk(node *sitter.Node) {
	switch node.Kind() {
	case "use_declaration":
		w.extractUse(node)
	case "function_item":
		w.extractFunction(node, "")
	case "struct_item":
		w.extractStruct(node)
	case "enum_item":
		w.extractEnum(node)
	case "trait_item":
		w.extractTrait(node)
	case "impl_item":
		w.extractImpl(node)
	case "mod_item":
		w.extractMod(node)
	case "let_declaration":
		w.extractLet(node)
	case "call_expression":
		w.extractCall(node, semantic.Location{})
	case "struct_expression":
		w.extractStructExpr(node, semantic.Location{})
	case "field_expression":
		w.extractFieldAccess(node)
	case "assignment_expression":
		w.extractAssignment(node)
	case "block":
		w.pushScope(semantic.ScopeBlock, node)
		w.walkChildren(node)
		w.popScope()
	case "return_expression":
		w.refIdentifiers(node)
	default:
		w.walkChildren(node)
	}
}

func (w *rustWalker) walkChildren(node *sitter.Node) {
	eachChild(node, w.walk)
}

// --- use declarations ---

func (w *rustWalker) extractUse(node *sitter.Node) {
	pub := w.isPub(node)
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return
	}
	w.useTree(arg, pub)
}

// useTree flattens one branch of a use declaration. pub promotes the
// binding into a re-export instead of a plain import.
func (w *rustWalker) useTree(node *sitter.Node, pub bool) {
	switch node.Kind() {
	case "identifier", "crate", "self", "super":
		// Single segment binds the module itself.
		name := w.text(node)
		w.addImport(semantic.Import{
			LocalName:  name,
			SourcePath: name,
			Kind:       semantic.ImportNamespace,
			Location:   w.loc(node),
		})
	case "scoped_identifier":
		path := w.fieldText(node, "path")
		name := w.fieldText(node, "name")
		if pub {
			w.addReexport(semantic.Reexport{
				ExportName: name,
				SourcePath: path,
				SourceName: name,
				Location:   w.loc(node),
			})
			return
		}
		w.addImport(semantic.Import{
			LocalName:  name,
			SourcePath: path,
			ImportName: name,
			Kind:       semantic.ImportNamed,
			Location:   w.loc(node),
		})
	case "use_as_clause":
		inner := node.ChildByFieldName("path")
		alias := w.fieldText(node, "alias")
		if inner == nil || alias == "" {
			return
		}
		path := w.fieldText(inner, "path")
		name := w.fieldText(inner, "name")
		if inner.Kind() != "scoped_identifier" {
			path = w.text(inner)
			name = ""
		}
		if pub {
			w.addReexport(semantic.Reexport{
				ExportName: alias,
				SourcePath: path,
				SourceName: name,
				Location:   w.loc(node),
			})
			return
		}
		kind := semantic.ImportNamed
		if name == "" {
			kind = semantic.ImportNamespace
		}
		w.addImport(semantic.Import{
			LocalName:  alias,
			SourcePath: path,
			ImportName: name,
			Kind:       kind,
			Location:   w.loc(node),
		})
	case "scoped_use_list":
		path := w.fieldText(node, "path")
		list := node.ChildByFieldName("list")
		if list == nil {
			return
		}
		eachNamedChild(list, func(item *sitter.Node) {
			w.useListItem(item, path, pub)
		})
	case "use_wildcard":
		if !pub {
			// Plain glob imports are opaque; only pub use globs matter
			// for cross-file resolution.
			return
		}
		path := strings.TrimSuffix(w.text(node), "::*")
		w.addReexport(semantic.Reexport{
			SourcePath: path,
			IsStar:     true,
			Location:   w.loc(node),
		})
	}
}

func (w *rustWalker) useListItem(item *sitter.Node, path string, pub bool) {
	switch item.Kind() {
	case "identifier":
		name := w.text(item)
		if name == "self" {
			return
		}
		if pub {
			w.addReexport(semantic.Reexport{
				ExportName: name,
				SourcePath: path,
				SourceName: name,
				Location:   w.loc(item),
			})
			return
		}
		w.addImport(semantic.Import{
			LocalName:  name,
			SourcePath: path,
			ImportName: name,
			Kind:       semantic.ImportNamed,
			Location:   w.loc(item),
		})
	case "use_as_clause":
		inner := item.ChildByFieldName("path")
		alias := w.fieldText(item, "alias")
		if inner == nil || alias == "" {
			return
		}
		name := w.text(inner)
		if pub {
			w.addReexport(semantic.Reexport{
				ExportName: alias,
				SourcePath: path,
				SourceName: name,
				Location:   w.loc(item),
			})
			return
		}
		w.addImport(semantic.Import{
			LocalName:  alias,
			SourcePath: path,
			ImportName: name,
			Kind:       semantic.ImportNamed,
			Location:   w.loc(item),
		})
	case "scoped_identifier":
		// Nested path inside a list: `use a::{b::c}`.
		sub := path + "::" + w.fieldText(item, "path")
		name := w.fieldText(item, "name")
		if pub {
			w.addReexport(semantic.Reexport{
				ExportName: name,
				SourcePath: sub,
				SourceName: name,
				Location:   w.loc(item),
			})
			return
		}
		w.addImport(semantic.Import{
			LocalName:  name,
			SourcePath: sub,
			ImportName: name,
			Kind:       semantic.ImportNamed,
			Location:   w.loc(item),
		})
	}
}

// --- items ---

func (w *rustWalker) extractFunction(node *sitter.Node, ownerName string) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}

	kind := semantic.KindFunction
	if ownerName != "" {
		kind = semantic.KindMethod
		if name == "new" {
			kind = semantic.KindConstructor
		}
	}
	w.addDef(semantic.Definition{
		Name:       name,
		Kind:       kind,
		Location:   w.loc(nameNode),
		Visibility: w.itemVisibility(node, name),
		TypeExpr:   w.returnType(node),
	})
	if ownerName != "" {
		w.implFixups = append(w.implFixups, implFixup{
			defIndex: len(w.idx.Definitions) - 1,
			typeName: ownerName,
		})
	}

	w.pushScope(semantic.ScopeFunction, node)
	w.extractParameters(node.ChildByFieldName("parameters"))
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkChildren(body)
	}
	w.popScope()
}

func (w *rustWalker) extractStruct(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}
	structSym := w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindStruct,
		Location:   w.loc(nameNode),
		Visibility: w.itemVisibility(node, name),
	})
	w.typeSyms[name] = structSym

	body := node.ChildByFieldName("body")
	if body == nil || body.Kind() != "field_declaration_list" {
		return
	}
	eachNamedChild(body, func(field *sitter.Node) {
		if field.Kind() != "field_declaration" {
			return
		}
		fieldName := field.ChildByFieldName("name")
		if fieldName == nil {
			return
		}
		w.addDef(semantic.Definition{
			Name:       w.text(fieldName),
			Kind:       semantic.KindProperty,
			Location:   w.loc(fieldName),
			Visibility: w.itemVisibility(field, w.text(fieldName)),
			Owner:      structSym,
			TypeExpr:   w.fieldText(field, "type"),
		})
	})
}

func (w *rustWalker) extractEnum(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}
	enumSym := w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindEnum,
		Location:   w.loc(nameNode),
		Visibility: w.itemVisibility(node, name),
	})
	w.typeSyms[name] = enumSym

	if body := node.ChildByFieldName("body"); body != nil {
		eachNamedChild(body, func(variant *sitter.Node) {
			if variant.Kind() != "enum_variant" {
				return
			}
			vName := variant.ChildByFieldName("name")
			if vName == nil {
				return
			}
			w.addDef(semantic.Definition{
				Name:       w.text(vName),
				Kind:       semantic.KindConstant,
				Location:   w.loc(vName),
				Visibility: semantic.Visibility{Kind: semantic.VisFile},
				Owner:      enumSym,
			})
		})
	}
}

func (w *rustWalker) extractTrait(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}
	traitSym := w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindTrait,
		Location:   w.loc(nameNode),
		Visibility: w.itemVisibility(node, name),
	})
	w.typeSyms[name] = traitSym

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.pushScope(semantic.ScopeClass, node)
	eachNamedChild(body, func(member *sitter.Node) {
		switch member.Kind() {
		case "function_item":
			w.extractFunction(member, name)
		case "function_signature_item":
			mName := member.ChildByFieldName("name")
			if mName == nil {
				return
			}
			w.addDef(semantic.Definition{
				Name:       w.text(mName),
				Kind:       semantic.KindMethod,
				Location:   w.loc(mName),
				Visibility: semantic.Visibility{Kind: semantic.VisFile},
				Owner:      traitSym,
				TypeExpr:   w.returnType(member),
			})
		}
	})
	w.popScope()
}

func (w *rustWalker) extractImpl(node *sitter.Node) {
	typeName := baseRustType(w.indexBuilder, node.ChildByFieldName("type"))
	if typeName == "" {
		return
	}
	if traitNode := node.ChildByFieldName("trait"); traitNode != nil {
		w.traitFixups = append(w.traitFixups, traitFixup{
			typeName:  typeName,
			traitName: baseRustType(w.indexBuilder, traitNode),
		})
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.pushScope(semantic.ScopeClass, node)
	eachNamedChild(body, func(member *sitter.Node) {
		if member.Kind() == "function_item" {
			w.extractFunction(member, typeName)
		}
	})
	w.popScope()
}

// extractMod handles both inline modules and `mod foo;` declarations. The
// latter binds the child file's module as a namespace, anchored at the
// current file so the path resolver can find foo.rs or foo/mod.rs.
func (w *rustWalker) extractMod(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		w.addImport(semantic.Import{
			LocalName:  name,
			SourcePath: "self::" + name,
			Kind:       semantic.ImportNamespace,
			Location:   w.loc(nameNode),
		})
		return
	}
	w.pushScope(semantic.ScopeModule, node)
	w.walkChildren(body)
	w.popScope()
}

func (w *rustWalker) extractLet(node *sitter.Node) {
	pattern := node.ChildByFieldName("pattern")
	value := node.ChildByFieldName("value")

	var target semantic.Location
	if pattern != nil && pattern.Kind() == "identifier" {
		target = w.loc(pattern)
		w.addDef(semantic.Definition{
			Name:       w.text(pattern),
			Kind:       semantic.KindVariable,
			Location:   target,
			Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren},
			TypeExpr:   w.fieldText(node, "type"),
		})
	}

	if value == nil {
		return
	}
	switch value.Kind() {
	case "call_expression":
		w.extractCall(value, target)
	case "struct_expression":
		w.extractStructExpr(value, target)
	default:
		w.walk(value)
	}
}

// --- expressions ---

func (w *rustWalker) extractCall(node *sitter.Node, target semantic.Location) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Kind() {
	case "identifier":
		w.addRef(semantic.Reference{
			Kind:     semantic.RefFunctionCall,
			Name:     w.text(fn),
			Location: w.loc(fn),
		})
	case "scoped_identifier":
		// `Type::new(..)` and friends construct; other paths are plain
		// calls into a module or type namespace.
		path := w.fieldText(fn, "path")
		name := w.fieldText(fn, "name")
		if name == "new" && path != "" {
			segs := strings.Split(path, "::")
			w.addRef(semantic.Reference{
				Kind:            semantic.RefConstructorCall,
				Name:            segs[len(segs)-1],
				Location:        w.loc(fn),
				ConstructTarget: target,
			})
		} else {
			w.addRef(semantic.Reference{
				Kind:     semantic.RefFunctionCall,
				Name:     name,
				Location: w.loc(fn.ChildByFieldName("name")),
			})
		}
	case "field_expression":
		object := fn.ChildByFieldName("value")
		field := fn.ChildByFieldName("field")
		if field == nil {
			break
		}
		ref := semantic.Reference{
			Kind:             semantic.RefMethodCall,
			Name:             w.text(field),
			Location:         w.loc(field),
			ReceiverLocation: w.loc(object),
		}
		if object != nil && (object.Kind() == "identifier" || object.Kind() == "self") {
			ref.ReceiverName = w.text(object)
		}
		w.addRef(ref)
		if object != nil && object.Kind() != "identifier" && object.Kind() != "self" {
			w.walk(object)
		}
	default:
		w.walk(fn)
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		w.refIdentifiers(args)
	}
}

func (w *rustWalker) extractStructExpr(node *sitter.Node, target semantic.Location) {
	name := baseRustType(w.indexBuilder, node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	w.addRef(semantic.Reference{
		Kind:            semantic.RefConstructorCall,
		Name:            name,
		Location:        w.loc(node.ChildByFieldName("name")),
		ConstructTarget: target,
	})
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkChildren(body)
	}
}

func (w *rustWalker) extractFieldAccess(node *sitter.Node) {
	object := node.ChildByFieldName("value")
	field := node.ChildByFieldName("field")
	if field == nil {
		return
	}
	ref := semantic.Reference{
		Kind:             semantic.RefPropertyAccess,
		Name:             w.text(field),
		Location:         w.loc(field),
		ReceiverLocation: w.loc(object),
	}
	if object != nil && (object.Kind() == "identifier" || object.Kind() == "self") {
		ref.ReceiverName = w.text(object)
	}
	w.addRef(ref)
	if object != nil && object.Kind() == "field_expression" {
		w.walk(object)
	}
}

func (w *rustWalker) extractAssignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")

	if left != nil && left.Kind() == "identifier" {
		w.addRef(semantic.Reference{
			Kind:     semantic.RefAssignment,
			Name:     w.text(left),
			Location: w.loc(left),
		})
	} else if left != nil {
		w.walk(left)
	}
	if right != nil {
		w.walk(right)
	}
}

func (w *rustWalker) extractParameters(params *sitter.Node) {
	if params == nil {
		return
	}
	eachNamedChild(params, func(param *sitter.Node) {
		if param.Kind() != "parameter" {
			return
		}
		pattern := param.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() != "identifier" {
			return
		}
		w.addDef(semantic.Definition{
			Name:       w.text(pattern),
			Kind:       semantic.KindParameter,
			Location:   w.loc(pattern),
			Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren},
			TypeExpr:   w.fieldText(param, "type"),
		})
	})
}

func (w *rustWalker) refIdentifiers(node *sitter.Node) {
	eachNamedChild(node, func(child *sitter.Node) {
		if child.Kind() == "identifier" {
			w.addRef(semantic.Reference{
				Kind:     semantic.RefVariable,
				Name:     w.text(child),
				Location: w.loc(child),
			})
		} else {
			w.walk(child)
		}
	})
}

// --- helpers ---

func (w *rustWalker) isPub(node *sitter.Node) bool {
	found := false
	eachChild(node, func(child *sitter.Node) {
		if child.Kind() == "visibility_modifier" {
			found = true
		}
	})
	return found
}

func (w *rustWalker) itemVisibility(node *sitter.Node, name string) semantic.Visibility {
	if w.isPub(node) {
		return semantic.Visibility{Kind: semantic.VisExported, ExportName: name}
	}
	if w.scope() == w.idx.RootScope {
		return semantic.Visibility{Kind: semantic.VisFile}
	}
	return semantic.Visibility{Kind: semantic.VisScopeChildren}
}

func (w *rustWalker) returnType(node *sitter.Node) string {
	return w.fieldText(node, "return_type")
}

// applyImplFixups binds impl-block methods to the symbol of the type they
// implement for, and records trait implementations on the type.
func (w *rustWalker) applyImplFixups() {
	for _, fx := range w.implFixups {
		if sym, ok := w.typeSyms[fx.typeName]; ok {
			w.idx.Definitions[fx.defIndex].Owner = sym
		}
	}
	for _, fx := range w.traitFixups {
		if fx.traitName == "" {
			continue
		}
		for i := range w.idx.Definitions {
			d := &w.idx.Definitions[i]
			if d.Name == fx.typeName && d.Kind.IsType() {
				d.Implements = append(d.Implements, fx.traitName)
				break
			}
		}
	}
}

// baseRustType reduces a type node to its trailing identifier.
func baseRustType(b *indexBuilder, node *sitter.Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		return b.text(node)
	case "scoped_type_identifier", "scoped_identifier":
		return b.fieldText(node, "name")
	case "generic_type":
		return baseRustType(b, node.ChildByFieldName("type"))
	case "reference_type":
		return baseRustType(b, node.ChildByFieldName("type"))
	}
	return ""
}
