package convert

import (
	"fmt"

	"sv2v/internal/ast"
	"sv2v/internal/diag"
)

// ExprToType attempts to reinterpret an expression written in a type
// position, as arises with type parameter overrides. It returns false
// when the expression has no type reading.
func ExprToType(e ast.Expr) (ast.Type, bool) {
	switch e := e.(type) {
	case *ast.Ident:
		return &ast.Alias{Name: e.Name}, true
	case *ast.PSIdent:
		return &ast.PSAlias{Package: e.Package, Name: e.Name}, true
	case *ast.CSIdent:
		return &ast.CSAlias{Class: e.Class, Bindings: e.Bindings, Name: e.Name}, true
	case *ast.PartSelect:
		if e.Mode != ast.PartColon {
			return nil, false
		}
		base, ok := ExprToType(e.Base)
		if !ok {
			return nil, false
		}
		rebuild, ranges := ast.TypeRanges(base)
		return rebuild(append(ranges, ast.Range{L: e.L, R: e.R})), true
	}
	return nil, false
}

// resolveBindings matches positional and named parameter bindings against
// the declared parameter names. Positional bindings bind in declaration
// order and must precede named ones; the result carries every binding
// with its resolved name.
func resolveBindings(what string, paramNames []string, bindings []ast.ParamBinding) ([]ast.ParamBinding, error) {
	resolved := make([]ast.ParamBinding, 0, len(bindings))
	seen := make(map[string]bool, len(bindings))
	sawNamed := false
	positional := 0
	for _, b := range bindings {
		name := b.Name
		if name == "" {
			if sawNamed {
				return nil, diag.New(diag.ElabBadBinding,
					"%s: positional binding after named binding", what)
			}
			if positional >= len(paramNames) {
				return nil, diag.New(diag.ElabBadBinding,
					"%s: too many parameter bindings (%d given, %d declared)",
					what, len(bindings), len(paramNames))
			}
			name = paramNames[positional]
			positional++
		} else {
			sawNamed = true
			if !contains(paramNames, name) {
				return nil, diag.New(diag.ElabBadBinding,
					"%s: unknown parameter %q", what, name)
			}
		}
		if seen[name] {
			return nil, diag.New(diag.ElabBadBinding,
				"%s: parameter %q bound twice", what, name)
		}
		seen[name] = true
		resolved = append(resolved, ast.ParamBinding{Name: name, Value: b.Value})
	}
	return resolved, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func bindingsKey(bindings []ast.ParamBinding) string {
	key := ""
	for _, b := range bindings {
		key += fmt.Sprintf("%s=%s;", b.Name, b.Value.String())
	}
	return key
}
