package convert

import (
	"strings"

	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/traverse"
)

func classParamNames(params []ast.Decl) []string {
	var names []string
	for _, p := range params {
		switch p := p.(type) {
		case *ast.Param:
			if p.Scope == ast.Parameter {
				names = append(names, p.Name)
			}
		case *ast.ParamType:
			if p.Scope == ast.Parameter {
				names = append(names, p.Name)
			}
		}
	}
	return names
}

// resolveCSIdent specializes a parameterized class reference
// C#(bindings)::item into a synthetic package and returns the mangled
// member name. The synthetic package name hashes the resolved bindings
// together with the scope keys of locally bound identifiers, so that
// identical specializations coincide and distinct ones stay apart.
func (el *elaborator) resolveCSIdent(className string, bindings []ast.ParamBinding, scopeKeys []string, itemName string) (string, error) {
	class, ok := el.classes[className]
	if !ok {
		return "", diag.New(diag.ElabMissingClass, "could not find class %s", className)
	}

	paramNames := classParamNames(class.params)
	resolved, err := resolveBindings("class "+className, paramNames, bindings)
	if err != nil {
		return "", err
	}

	synName := className + "_" + ast.ShortHash(strings.Join(scopeKeys, ","), bindingsKey(resolved))

	entry, ok := el.packages[synName]
	if !ok {
		entry, err = el.specialize(synName, class, resolved)
		if err != nil {
			return "", err
		}
	} else if !entry.resolved {
		// a specialization can only reenter through its own bindings
		return "", diag.New(diag.ElabDependencyLoop,
			"class %s depends on its own specialization", className)
	}

	member := mangledName(synName, itemName)
	if _, ok := entry.exports[itemName]; !ok {
		return "", diag.New(diag.ElabMissingSymbol,
			"class %s has no member %s", className, itemName)
	}
	return member, nil
}

// specialize elaborates the class body as a package and applies the
// parameter overrides to the processed items.
func (el *elaborator) specialize(synName string, class *classEntry, bindings []ast.ParamBinding) (*packageEntry, error) {
	items := make([]ast.PackageItem, 0, len(class.params)+len(class.items))
	for _, p := range class.params {
		items = append(items, p)
	}
	items = append(items, class.items...)

	entry := &packageEntry{name: synName, items: items}
	el.packages[synName] = entry

	el.visiting = append(el.visiting, synName)
	exports, body, err := el.processItems(synName, synName, items)
	el.visiting = el.visiting[:len(el.visiting)-1]
	if err != nil {
		return nil, err
	}

	body, err = applyOverrides(synName, body, bindings)
	if err != nil {
		return nil, err
	}

	entry.resolved = true
	entry.exports = exports
	entry.body = body
	el.synOrder = append(el.synOrder, synName)
	return entry, nil
}

// applyOverrides replaces the defaults of the specialized parameters
// with the supplied bindings. A binding of the wrong kind, or a missing
// required parameter, is fatal. Resolved type parameters are substituted
// into the remaining items and their declarations dropped, since the
// target dialect has no type parameters.
func applyOverrides(synName string, items []ast.PackageItem, bindings []ast.ParamBinding) ([]ast.PackageItem, error) {
	byName := make(map[string]ast.TypeOrExpr, len(bindings))
	for _, b := range bindings {
		byName[b.Name] = b.Value
	}

	typeSubst := make(map[string]ast.Type)
	out := make([]ast.PackageItem, 0, len(items))
	for _, item := range items {
		switch item := item.(type) {
		case *ast.Param:
			if item.Scope != ast.Parameter {
				out = append(out, item)
				continue
			}
			orig := strings.TrimPrefix(item.Name, synName+"_")
			value, bound := byName[orig]
			if !bound {
				if item.Value == nil {
					return nil, diag.New(diag.ElabClassParamMissing,
						"specialization %s is missing required parameter %s", synName, orig)
				}
				out = append(out, item)
				continue
			}
			if value.Type != nil {
				return nil, diag.New(diag.ElabClassParamKind,
					"%s: parameter %s expects an expression, got type %v", synName, orig, value.Type)
			}
			out = append(out, &ast.Param{Scope: item.Scope, Type: item.Type, Name: item.Name, Value: value.Expr})
		case *ast.ParamType:
			if item.Scope != ast.Parameter {
				out = append(out, item)
				continue
			}
			orig := strings.TrimPrefix(item.Name, synName+"_")
			value, bound := byName[orig]
			t := item.Type
			if bound {
				t = value.Type
				if t == nil {
					converted, ok := ExprToType(value.Expr)
					if !ok {
						return nil, diag.New(diag.ElabClassParamKind,
							"%s: type parameter %s expects a type, got expression %v", synName, orig, value.Expr)
					}
					t = converted
				}
			} else if t == nil {
				return nil, diag.New(diag.ElabClassParamMissing,
					"specialization %s is missing required type parameter %s", synName, orig)
			}
			typeSubst[item.Name] = t
		default:
			out = append(out, item)
		}
	}

	if len(typeSubst) > 0 {
		for i, item := range out {
			out[i] = substituteTypes(item, typeSubst)
		}
	}
	return out, nil
}

// substituteTypes replaces alias references to resolved type parameters,
// grafting any packed ranges of the alias onto the substituted type.
func substituteTypes(item ast.PackageItem, subst map[string]ast.Type) ast.PackageItem {
	mapper := func(t ast.Type) ast.Type {
		alias, ok := t.(*ast.Alias)
		if !ok {
			return t
		}
		bound, ok := subst[alias.Name]
		if !ok {
			return t
		}
		// dims on the alias reference become the outermost packed dims
		rebuild, ranges := ast.TypeRanges(bound)
		return rebuild(append(append([]ast.Range{}, alias.Ranges...), ranges...))
	}
	switch item := item.(type) {
	case *ast.Typedef:
		return &ast.Typedef{Type: traverse.Types(item.Type, mapper), Name: item.Name}
	case ast.Decl:
		return traverse.DeclTypes(item, mapper)
	case *ast.Function:
		out := *item
		if out.RetType != nil {
			out.RetType = traverse.Types(out.RetType, mapper)
		}
		decls := make([]ast.Decl, len(out.Decls))
		for i, d := range out.Decls {
			decls[i] = traverse.DeclTypes(d, mapper)
		}
		out.Decls = decls
		return &out
	case *ast.Task:
		out := *item
		decls := make([]ast.Decl, len(out.Decls))
		for i, d := range out.Decls {
			decls[i] = traverse.DeclTypes(d, mapper)
		}
		out.Decls = decls
		return &out
	default:
		return item
	}
}
