// # internal/parser/ecma.go
package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/semantic"
)

// ecmaWalker extracts the semantic index from JavaScript and TypeScript
// trees. The two grammars share statement and expression shapes; typescript
// adds type declarations and annotations on top, handled behind the ts flag.
type ecmaWalker struct {
	*indexBuilder
	ts bool
}

func (w *ecmaWalker) walk(node *sitter.Node) {
	switch node.Kind() {
	case "import_statement":
		w.extractImport(node)
	case "export_statement":
		w.extractExport(node)
	case "function_declaration", "generator_function_declaration":
		w.extractFunction(node, false)
	case "class_declaration", "abstract_class_declaration":
		w.extractClass(node, false)
	case "interface_declaration":
		w.extractInterface(node, false)
	case "type_alias_declaration":
		w.extractTypeAlias(node, false)
	case "enum_declaration":
		w.extractEnum(node, false)
	case "lexical_declaration", "variable_declaration":
		w.extractVariables(node, false)
	case "statement_block":
		w.pushScope(semantic.ScopeBlock, node)
		w.walkChildren(node)
		w.popScope()
	case "call_expression":
		w.extractCall(node)
	case "new_expression":
		w.extractNew(node, semantic.Location{})
	case "assignment_expression":
		w.extractAssignment(node)
	case "member_expression":
		w.extractPropertyAccess(node)
	case "return_statement":
		w.refIdentifiers(node)
	default:
		w.walkChildren(node)
	}
}

func (w *ecmaWalker) walkChildren(node *sitter.Node) {
	eachChild(node, w.walk)
}

// --- imports & exports ---

func (w *ecmaWalker) extractImport(node *sitter.Node) {
	source := stringLiteral(w.fieldText(node, "source"))
	if source == "" {
		return
	}

	eachChild(node, func(child *sitter.Node) {
		if child.Kind() != "import_clause" {
			return
		}
		eachChild(child, func(clause *sitter.Node) {
			switch clause.Kind() {
			case "identifier":
				w.addImport(semantic.Import{
					LocalName:  w.text(clause),
					SourcePath: source,
					ImportName: "default",
					Kind:       semantic.ImportDefault,
					Location:   w.loc(clause),
				})
			case "namespace_import":
				eachChild(clause, func(sub *sitter.Node) {
					if sub.Kind() == "identifier" {
						w.addImport(semantic.Import{
							LocalName:  w.text(sub),
							SourcePath: source,
							Kind:       semantic.ImportNamespace,
							Location:   w.loc(sub),
						})
					}
				})
			case "named_imports":
				eachNamedChild(clause, func(spec *sitter.Node) {
					if spec.Kind() != "import_specifier" {
						return
					}
					name := w.fieldText(spec, "name")
					local := w.fieldText(spec, "alias")
					if local == "" {
						local = name
					}
					w.addImport(semantic.Import{
						LocalName:  local,
						SourcePath: source,
						ImportName: name,
						Kind:       semantic.ImportNamed,
						Location:   w.loc(spec),
					})
				})
			}
		})
	})
}

func (w *ecmaWalker) extractExport(node *sitter.Node) {
	source := stringLiteral(w.fieldText(node, "source"))

	if source != "" {
		// Re-export forms: `export { a as b } from`, `export * from`.
		handled := false
		eachChild(node, func(child *sitter.Node) {
			switch child.Kind() {
			case "export_clause":
				eachNamedChild(child, func(spec *sitter.Node) {
					if spec.Kind() != "export_specifier" {
						return
					}
					name := w.fieldText(spec, "name")
					alias := w.fieldText(spec, "alias")
					if alias == "" {
						alias = name
					}
					w.addReexport(semantic.Reexport{
						ExportName: alias,
						SourcePath: source,
						SourceName: name,
						Location:   w.loc(spec),
					})
				})
				handled = true
			case "namespace_export":
				// `export * as ns from`: opaque, recorded as a star.
				w.addReexport(semantic.Reexport{
					SourcePath: source,
					IsStar:     true,
					Location:   w.loc(child),
				})
				handled = true
			}
		})
		if !handled {
			w.addReexport(semantic.Reexport{
				SourcePath: source,
				IsStar:     true,
				Location:   w.loc(node),
			})
		}
		return
	}

	isDefault := false
	eachChild(node, func(child *sitter.Node) {
		if child.Kind() == "default" {
			isDefault = true
		}
	})

	decl := node.ChildByFieldName("declaration")
	if decl == nil {
		decl = node.ChildByFieldName("value")
	}
	if decl != nil {
		switch decl.Kind() {
		case "function_declaration", "generator_function_declaration":
			w.extractFunctionExported(decl, isDefault)
		case "class_declaration", "abstract_class_declaration":
			w.extractClass(decl, true)
		case "interface_declaration":
			w.extractInterface(decl, true)
		case "type_alias_declaration":
			w.extractTypeAlias(decl, true)
		case "enum_declaration":
			w.extractEnum(decl, true)
		case "lexical_declaration", "variable_declaration":
			w.extractVariables(decl, true)
		case "identifier":
			// `export default existing`
			w.markExported(w.text(decl), "default")
		default:
			w.walk(decl)
		}
		return
	}

	// `export { a, b as c }` without source: promote existing locals.
	eachChild(node, func(child *sitter.Node) {
		if child.Kind() != "export_clause" {
			return
		}
		eachNamedChild(child, func(spec *sitter.Node) {
			if spec.Kind() != "export_specifier" {
				return
			}
			name := w.fieldText(spec, "name")
			alias := w.fieldText(spec, "alias")
			if alias == "" {
				alias = name
			}
			w.markExported(name, alias)
		})
	})
}

// --- declarations ---

func (w *ecmaWalker) extractFunction(node *sitter.Node, exported bool) {
	w.extractFunctionVis(node, w.defaultVisibility(exported, ""))
}

func (w *ecmaWalker) extractFunctionExported(node *sitter.Node, isDefault bool) {
	name := w.fieldText(node, "name")
	vis := semantic.Visibility{Kind: semantic.VisExported, ExportName: name, IsDefault: isDefault}
	if isDefault {
		vis.ExportName = "default"
	}
	w.extractFunctionVis(node, vis)
}

func (w *ecmaWalker) extractFunctionVis(node *sitter.Node, vis semantic.Visibility) {
	name := w.fieldText(node, "name")
	if name == "" {
		return
	}
	w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindFunction,
		Location:   w.loc(node.ChildByFieldName("name")),
		Visibility: vis,
		TypeExpr:   w.returnType(node),
	})

	w.pushScope(semantic.ScopeFunction, node)
	w.extractParameters(node.ChildByFieldName("parameters"))
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkChildren(body)
	}
	w.popScope()
}

func (w *ecmaWalker) extractClass(node *sitter.Node, exported bool) {
	name := w.fieldText(node, "name")
	if name == "" {
		return
	}

	extends, implements := w.heritage(node)
	classSym := w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindClass,
		Location:   w.loc(node.ChildByFieldName("name")),
		Visibility: w.defaultVisibility(exported, name),
		Extends:    extends,
		Implements: implements,
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.pushScope(semantic.ScopeClass, node)
	eachNamedChild(body, func(member *sitter.Node) {
		switch member.Kind() {
		case "method_definition":
			w.extractMethod(member, classSym)
		case "field_definition", "public_field_definition":
			prop := member.ChildByFieldName("name")
			if prop == nil {
				prop = member.ChildByFieldName("property")
			}
			if prop == nil {
				return
			}
			w.addDef(semantic.Definition{
				Name:       w.text(prop),
				Kind:       semantic.KindProperty,
				Location:   w.loc(prop),
				Visibility: semantic.Visibility{Kind: semantic.VisFile},
				Owner:      classSym,
				TypeExpr:   w.typeAnnotation(member),
			})
			if value := member.ChildByFieldName("value"); value != nil {
				w.walk(value)
			}
		}
	})
	w.popScope()
}

func (w *ecmaWalker) extractMethod(node *sitter.Node, owner semantic.SymbolID) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}

	kind := semantic.KindMethod
	if name == "constructor" {
		kind = semantic.KindConstructor
	}
	w.addDef(semantic.Definition{
		Name:       name,
		Kind:       kind,
		Location:   w.loc(nameNode),
		Visibility: semantic.Visibility{Kind: semantic.VisFile},
		Owner:      owner,
		TypeExpr:   w.returnType(node),
	})

	w.pushScope(semantic.ScopeFunction, node)
	w.extractParameters(node.ChildByFieldName("parameters"))
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkChildren(body)
	}
	w.popScope()
}

func (w *ecmaWalker) extractInterface(node *sitter.Node, exported bool) {
	name := w.fieldText(node, "name")
	if name == "" {
		return
	}
	extends, _ := w.heritage(node)
	ifaceSym := w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindInterface,
		Location:   w.loc(node.ChildByFieldName("name")),
		Visibility: w.defaultVisibility(exported, name),
		Extends:    extends,
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.pushScope(semantic.ScopeClass, node)
	eachNamedChild(body, func(member *sitter.Node) {
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		kind := semantic.KindProperty
		if member.Kind() == "method_signature" {
			kind = semantic.KindMethod
		}
		w.addDef(semantic.Definition{
			Name:       w.text(nameNode),
			Kind:       kind,
			Location:   w.loc(nameNode),
			Visibility: semantic.Visibility{Kind: semantic.VisFile},
			Owner:      ifaceSym,
			TypeExpr:   w.typeAnnotation(member),
		})
	})
	w.popScope()
}

func (w *ecmaWalker) extractTypeAlias(node *sitter.Node, exported bool) {
	name := w.fieldText(node, "name")
	if name == "" {
		return
	}
	w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindTypeAlias,
		Location:   w.loc(node.ChildByFieldName("name")),
		Visibility: w.defaultVisibility(exported, name),
		TypeExpr:   w.fieldText(node, "value"),
	})
}

func (w *ecmaWalker) extractEnum(node *sitter.Node, exported bool) {
	name := w.fieldText(node, "name")
	if name == "" {
		return
	}
	w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindEnum,
		Location:   w.loc(node.ChildByFieldName("name")),
		Visibility: w.defaultVisibility(exported, name),
	})
}

func (w *ecmaWalker) extractVariables(node *sitter.Node, exported bool) {
	kind := semantic.KindVariable
	if strings.HasPrefix(w.text(node), "const") {
		kind = semantic.KindConstant
	}

	eachNamedChild(node, func(decl *sitter.Node) {
		if decl.Kind() != "variable_declarator" {
			return
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			return
		}
		name := w.text(nameNode)
		w.addDef(semantic.Definition{
			Name:       name,
			Kind:       kind,
			Location:   w.loc(nameNode),
			Visibility: w.defaultVisibility(exported, name),
			TypeExpr:   w.typeAnnotation(decl),
		})

		value := decl.ChildByFieldName("value")
		if value == nil {
			return
		}
		switch value.Kind() {
		case "new_expression":
			w.extractNew(value, w.loc(nameNode))
		case "arrow_function", "function_expression", "generator_function":
			w.pushScope(semantic.ScopeFunction, value)
			w.extractParameters(value.ChildByFieldName("parameters"))
			if body := value.ChildByFieldName("body"); body != nil {
				w.walk(body)
			}
			w.popScope()
		default:
			w.walk(value)
		}
	})
}

func (w *ecmaWalker) extractParameters(params *sitter.Node) {
	if params == nil {
		return
	}
	eachNamedChild(params, func(param *sitter.Node) {
		switch param.Kind() {
		case "identifier":
			w.addDef(semantic.Definition{
				Name:       w.text(param),
				Kind:       semantic.KindParameter,
				Location:   w.loc(param),
				Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren},
			})
		case "required_parameter", "optional_parameter":
			pattern := param.ChildByFieldName("pattern")
			if pattern == nil || pattern.Kind() != "identifier" {
				return
			}
			w.addDef(semantic.Definition{
				Name:       w.text(pattern),
				Kind:       semantic.KindParameter,
				Location:   w.loc(pattern),
				Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren},
				TypeExpr:   w.typeAnnotation(param),
			})
		}
	})
}

// --- expressions ---

func (w *ecmaWalker) extractCall(node *sitter.Node) {
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
	case "member_expression":
		object := fn.ChildByFieldName("object")
		property := fn.ChildByFieldName("property")
		if property == nil {
			break
		}
		ref := semantic.Reference{
			Kind:             semantic.RefMethodCall,
			Name:             w.text(property),
			Location:         w.loc(property),
			ReceiverLocation: w.loc(object),
		}
		if object != nil && (object.Kind() == "identifier" || object.Kind() == "this") {
			ref.ReceiverName = w.text(object)
			if ref.ReceiverName == "this" {
				// Normalized so receiver typing has one spelling to handle.
				ref.ReceiverName = "self"
			}
		}
		w.addRef(ref)
		if object != nil && object.Kind() != "identifier" && object.Kind() != "this" {
			w.walk(object)
		}
	default:
		w.walk(fn)
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		w.refIdentifiers(args)
	}
}

func (w *ecmaWalker) extractNew(node *sitter.Node, target semantic.Location) {
	ctor := node.ChildByFieldName("constructor")
	if ctor == nil || ctor.Kind() != "identifier" {
		return
	}
	w.addRef(semantic.Reference{
		Kind:            semantic.RefConstructorCall,
		Name:            w.text(ctor),
		Location:        w.loc(ctor),
		ConstructTarget: target,
	})
	if args := node.ChildByFieldName("arguments"); args != nil {
		w.refIdentifiers(args)
	}
}

func (w *ecmaWalker) extractAssignment(node *sitter.Node) {
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
		if right.Kind() == "new_expression" {
			targetLoc := semantic.Location{}
			if left != nil && left.Kind() == "identifier" {
				targetLoc = w.loc(left)
			}
			w.extractNew(right, targetLoc)
			return
		}
		w.walk(right)
	}
}

func (w *ecmaWalker) extractPropertyAccess(node *sitter.Node) {
	object := node.ChildByFieldName("object")
	property := node.ChildByFieldName("property")
	if property == nil {
		return
	}
	ref := semantic.Reference{
		Kind:             semantic.RefPropertyAccess,
		Name:             w.text(property),
		Location:         w.loc(property),
		ReceiverLocation: w.loc(object),
		PropertyChain:    propertyChain(w.indexBuilder, node),
	}
	if object != nil && (object.Kind() == "identifier" || object.Kind() == "this") {
		ref.ReceiverName = w.text(object)
		if ref.ReceiverName == "this" {
			ref.ReceiverName = "self"
		}
	}
	w.addRef(ref)
	if object != nil && object.Kind() == "member_expression" {
		w.walk(object)
	}
}

// refIdentifiers emits variable references for bare identifiers directly
// under a node. Deeper expressions go through the normal walk.
func (w *ecmaWalker) refIdentifiers(node *sitter.Node) {
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

// defaultVisibility picks the visibility for a declaration: exported when
// the export keyword applies, file-wide at module scope, scope plus
// descendants inside functions (closures see enclosing locals).
func (w *ecmaWalker) defaultVisibility(exported bool, exportName string) semantic.Visibility {
	if exported {
		return semantic.Visibility{Kind: semantic.VisExported, ExportName: exportName}
	}
	if w.scope() == w.idx.RootScope {
		return semantic.Visibility{Kind: semantic.VisFile}
	}
	return semantic.Visibility{Kind: semantic.VisScopeChildren}
}

// typeAnnotation returns the annotated type of a node, stripped of the
// leading colon, or "". Named types in annotations also leave a
// type_reference behind so annotation usage resolves like any other.
func (w *ecmaWalker) typeAnnotation(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	t := node.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	w.refAnnotationTypes(t)
	return strings.TrimSpace(strings.TrimPrefix(w.text(t), ":"))
}

func (w *ecmaWalker) refAnnotationTypes(node *sitter.Node) {
	switch node.Kind() {
	case "type_identifier":
		w.addRef(semantic.Reference{
			Kind:     semantic.RefTypeReference,
			Name:     w.text(node),
			Location: w.loc(node),
		})
	default:
		eachNamedChild(node, w.refAnnotationTypes)
	}
}

func (w *ecmaWalker) returnType(node *sitter.Node) string {
	t := node.ChildByFieldName("return_type")
	if t == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(w.text(t), ":"))
}

// heritage extracts extends/implements names from a class or interface.
func (w *ecmaWalker) heritage(node *sitter.Node) (extends, implements []string) {
	var scan func(n *sitter.Node, inHeritage bool)
	scan = func(n *sitter.Node, inHeritage bool) {
		eachChild(n, func(child *sitter.Node) {
			switch child.Kind() {
			case "class_heritage":
				scan(child, true)
			case "extends_clause":
				eachNamedChild(child, func(t *sitter.Node) {
					if name := baseTypeName(w.indexBuilder, t); name != "" {
						extends = append(extends, name)
					}
				})
			case "implements_clause":
				eachNamedChild(child, func(t *sitter.Node) {
					if name := baseTypeName(w.indexBuilder, t); name != "" {
						implements = append(implements, name)
					}
				})
			case "identifier":
				// Plain JS `class A extends B`: class_heritage holds the
				// expression directly. Outside of it a bare identifier is
				// the class's own name, not a base.
				if inHeritage {
					extends = append(extends, w.text(child))
				}
			}
		})
	}
	scan(node, false)
	return extends, implements
}

// baseTypeName reduces a heritage type node to its leading identifier.
func baseTypeName(b *indexBuilder, node *sitter.Node) string {
	switch node.Kind() {
	case "identifier", "type_identifier":
		return b.text(node)
	case "generic_type":
		return b.fieldText(node, "name")
	case "member_expression", "nested_type_identifier":
		return b.fieldText(node, "property")
	}
	return ""
}

// propertyChain flattens a member expression into its dotted names.
func propertyChain(b *indexBuilder, node *sitter.Node) []string {
	var chain []string
	cur := node
	for cur != nil && cur.Kind() == "member_expression" {
		if prop := cur.ChildByFieldName("property"); prop != nil {
			chain = append([]string{b.text(prop)}, chain...)
		}
		cur = cur.ChildByFieldName("object")
	}
	if cur != nil && (cur.Kind() == "identifier" || cur.Kind() == "this") {
		chain = append([]string{b.text(cur)}, chain...)
	}
	return chain
}

// stringLiteral strips the quotes off a string literal's source text.
func stringLiteral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			return s[1 : len(s)-1]
		}
	}
	return s
}
