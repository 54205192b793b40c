package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skein/internal/semantic"
)

// PythonExtractor builds the semantic index for .py files.
//
// Python has no block scoping, so only function and class bodies open
// scopes; if/for/with bodies stay in the enclosing scope. A leading
// underscore keeps a module-level name file-private, everything else at
// module level is importable.
type PythonExtractor struct{}

func (PythonExtractor) Extract(root *sitter.Node, source []byte, path string) *semantic.FileIndex {
	w := &pyWalker{indexBuilder: newIndexBuilder(path, "python", source, root)}
	w.walkChildren(root)
	return w.finish()
}

type pyWalker struct {
	*indexBuilder
}

func (w *pyWalker) walk(node *sitter.Node) {
	switch node.Kind() {
	case "import_statement":
		w.extractImport(node)
	case "import_from_statement":
		w.extractFromImport(node)
	case "function_definition":
		w.extractFunction(node, "")
	case "class_definition":
		w.extractClass(node)
	case "decorated_definition":
		if def := node.ChildByFieldName("definition"); def != nil {
			w.walk(def)
		}
	case "assignment":
		w.extractAssignment(node)
	case "call":
		w.extractCall(node, semantic.Location{})
	case "attribute":
		w.extractAttribute(node)
	case "return_statement":
		w.refIdentifiers(node)
	default:
		w.walkChildren(node)
	}
}

func (w *pyWalker) walkChildren(node *sitter.Node) {
	eachChild(node, w.walk)
}

// --- imports ---

// extractImport handles `import a.b` and `import a.b as c`. The whole
// module binds as one opaque name, so these become namespace imports.
func (w *pyWalker) extractImport(node *sitter.Node) {
	eachNamedChild(node, func(child *sitter.Node) {
		switch child.Kind() {
		case "dotted_name":
			path := w.text(child)
			segs := strings.Split(path, ".")
			w.addImport(semantic.Import{
				LocalName:  segs[0],
				SourcePath: path,
				Kind:       semantic.ImportNamespace,
				Location:   w.loc(child),
			})
		case "aliased_import":
			path := w.fieldText(child, "name")
			alias := w.fieldText(child, "alias")
			w.addImport(semantic.Import{
				LocalName:  alias,
				SourcePath: path,
				Kind:       semantic.ImportNamespace,
				Location:   w.loc(child),
			})
		}
	})
}

// extractFromImport handles `from pkg.mod import a, b as c` including the
// relative forms `from . import x` and `from ..pkg import y`.
func (w *pyWalker) extractFromImport(node *sitter.Node) {
	module := node.ChildByFieldName("module_name")
	if module == nil {
		return
	}
	source := w.text(module)

	wildcard := false
	eachNamedChild(node, func(child *sitter.Node) {
		if child.Kind() == "wildcard_import" {
			wildcard = true
		}
	})
	if wildcard {
		w.addReexport(semantic.Reexport{
			SourcePath: source,
			IsStar:     true,
			Location:   w.loc(node),
		})
		return
	}

	addNamed := func(name, local string, loc semantic.Location) {
		if local == "" {
			local = name
		}
		w.addImport(semantic.Import{
			LocalName:  local,
			SourcePath: source,
			ImportName: name,
			Kind:       semantic.ImportNamed,
			Location:   loc,
		})
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Id() == module.Id() {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			addNamed(w.text(child), "", w.loc(child))
		case "aliased_import":
			addNamed(w.fieldText(child, "name"), w.fieldText(child, "alias"), w.loc(child))
		}
	}
}

// --- declarations ---

func (w *pyWalker) extractFunction(node *sitter.Node, owner semantic.SymbolID) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}

	kind := semantic.KindFunction
	if owner != "" {
		kind = semantic.KindMethod
		if name == "__init__" {
			kind = semantic.KindConstructor
		}
	}
	vis := w.moduleVisibility(name)
	if owner != "" {
		vis = semantic.Visibility{Kind: semantic.VisFile}
	}
	w.addDef(semantic.Definition{
		Name:       name,
		Kind:       kind,
		Location:   w.loc(nameNode),
		Visibility: vis,
		Owner:      owner,
		TypeExpr:   w.fieldText(node, "return_type"),
	})

	w.pushScope(semantic.ScopeFunction, node)
	w.extractParameters(node.ChildByFieldName("parameters"))
	if body := node.ChildByFieldName("body"); body != nil {
		w.walkChildren(body)
	}
	w.popScope()
}

func (w *pyWalker) extractClass(node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := w.text(nameNode)
	if name == "" {
		return
	}

	var bases []string
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		eachNamedChild(supers, func(base *sitter.Node) {
			switch base.Kind() {
			case "identifier":
				bases = append(bases, w.text(base))
			case "attribute":
				bases = append(bases, w.fieldText(base, "attribute"))
			}
		})
	}

	classSym := w.addDef(semantic.Definition{
		Name:       name,
		Kind:       semantic.KindClass,
		Location:   w.loc(nameNode),
		Visibility: w.moduleVisibility(name),
		Extends:    bases,
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.pushScope(semantic.ScopeClass, node)
	eachNamedChild(body, func(stmt *sitter.Node) {
		switch stmt.Kind() {
		case "function_definition":
			w.extractFunction(stmt, classSym)
		case "decorated_definition":
			if def := stmt.ChildByFieldName("definition"); def != nil && def.Kind() == "function_definition" {
				w.extractFunction(def, classSym)
			}
		case "expression_statement":
			eachNamedChild(stmt, func(expr *sitter.Node) {
				if expr.Kind() == "assignment" {
					w.extractClassAttribute(expr, classSym)
				}
			})
		}
	})
	w.popScope()
}

func (w *pyWalker) extractClassAttribute(node *sitter.Node, owner semantic.SymbolID) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return
	}
	w.addDef(semantic.Definition{
		Name:       w.text(left),
		Kind:       semantic.KindProperty,
		Location:   w.loc(left),
		Visibility: semantic.Visibility{Kind: semantic.VisFile},
		Owner:      owner,
		TypeExpr:   w.fieldText(node, "type"),
	})
	if right := node.ChildByFieldName("right"); right != nil {
		w.walk(right)
	}
}

func (w *pyWalker) extractParameters(params *sitter.Node) {
	if params == nil {
		return
	}
	addParam := func(nameNode *sitter.Node, typeExpr string) {
		name := w.text(nameNode)
		if name == "" || name == "self" || name == "cls" {
			return
		}
		w.addDef(semantic.Definition{
			Name:       name,
			Kind:       semantic.KindParameter,
			Location:   w.loc(nameNode),
			Visibility: semantic.Visibility{Kind: semantic.VisScopeChildren},
			TypeExpr:   typeExpr,
		})
	}
	eachNamedChild(params, func(param *sitter.Node) {
		switch param.Kind() {
		case "identifier":
			addParam(param, "")
		case "typed_parameter":
			if id := param.NamedChild(0); id != nil && id.Kind() == "identifier" {
				addParam(id, w.fieldText(param, "type"))
			}
		case "default_parameter":
			addParam(param.ChildByFieldName("name"), "")
		case "typed_default_parameter":
			addParam(param.ChildByFieldName("name"), w.fieldText(param, "type"))
		}
	})
}

// --- statements & expressions ---

// extractAssignment records the assigned name. A first assignment at any
// scope is also Python's declaration form, so module and function locals
// are defined here rather than at a dedicated declaration node.
func (w *pyWalker) extractAssignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")

	if left != nil && left.Kind() == "identifier" {
		name := w.text(left)
		vis := w.moduleVisibility(name)
		if w.scope() != w.idx.RootScope {
			vis = semantic.Visibility{Kind: semantic.VisScopeChildren}
		}
		w.addDef(semantic.Definition{
			Name:       name,
			Kind:       semantic.KindVariable,
			Location:   w.loc(left),
			Visibility: vis,
			TypeExpr:   w.fieldText(node, "type"),
		})

		if right != nil && right.Kind() == "call" {
			w.extractCall(right, w.loc(left))
			return
		}
	} else if left != nil {
		w.walk(left)
	}

	if right != nil {
		w.walk(right)
	}
}

// extractCall emits a reference for the callee. Calls to a capitalized
// bare name are treated as instantiations, matching the pep8 convention
// that classes are CapWords; target carries the assigned binding when the
// call sits on the right of an assignment.
func (w *pyWalker) extractCall(node *sitter.Node, target semantic.Location) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Kind() {
	case "identifier":
		name := w.text(fn)
		if isCapitalized(name) {
			w.addRef(semantic.Reference{
				Kind:            semantic.RefConstructorCall,
				Name:            name,
				Location:        w.loc(fn),
				ConstructTarget: target,
			})
		} else {
			w.addRef(semantic.Reference{
				Kind:     semantic.RefFunctionCall,
				Name:     name,
				Location: w.loc(fn),
			})
		}
	case "attribute":
		object := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			break
		}
		ref := semantic.Reference{
			Kind:             semantic.RefMethodCall,
			Name:             w.text(attr),
			Location:         w.loc(attr),
			ReceiverLocation: w.loc(object),
		}
		if object != nil && object.Kind() == "identifier" {
			ref.ReceiverName = w.text(object)
		}
		w.addRef(ref)
		if object != nil && object.Kind() != "identifier" {
			w.walk(object)
		}
	default:
		w.walk(fn)
	}

	if args := node.ChildByFieldName("arguments"); args != nil {
		w.refIdentifiers(args)
	}
}

func (w *pyWalker) extractAttribute(node *sitter.Node) {
	object := node.ChildByFieldName("object")
	attr := node.ChildByFieldName("attribute")
	if attr == nil {
		return
	}
	ref := semantic.Reference{
		Kind:             semantic.RefPropertyAccess,
		Name:             w.text(attr),
		Location:         w.loc(attr),
		ReceiverLocation: w.loc(object),
	}
	if object != nil && object.Kind() == "identifier" {
		ref.ReceiverName = w.text(object)
	}
	w.addRef(ref)
	if object != nil && object.Kind() == "attribute" {
		w.walk(object)
	}
}

func (w *pyWalker) refIdentifiers(node *sitter.Node) {
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

// moduleVisibility applies the underscore convention for module-level
// names. Non-module scopes are handled at the call sites.
func (w *pyWalker) moduleVisibility(name string) semantic.Visibility {
	if w.scope() != w.idx.RootScope {
		return semantic.Visibility{Kind: semantic.VisScopeChildren}
	}
	if strings.HasPrefix(name, "_") {
		return semantic.Visibility{Kind: semantic.VisFile}
	}
	return semantic.Visibility{Kind: semantic.VisExported, ExportName: name}
}

func isCapitalized(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
