package convert

import (
	"testing"

	"sv2v/internal/ast"
)

func param(name string, value ast.Expr) *ast.Param {
	return &ast.Param{Scope: ast.Parameter, Type: &ast.Implicit{}, Name: name, Value: value}
}

func TestReorderItems_UseBeforeDef(t *testing.T) {
	items := []ast.PackageItem{
		param("B", &ast.Ident{Name: "A"}),
		param("A", &ast.Number{Text: "1"}),
	}
	out := reorderItems(items)
	if len(out) != 2 {
		t.Fatalf("got %d items", len(out))
	}
	if out[0].(*ast.Param).Name != "A" || out[1].(*ast.Param).Name != "B" {
		t.Errorf("order = [%s, %s], want [A, B]",
			out[0].(*ast.Param).Name, out[1].(*ast.Param).Name)
	}
}

func TestReorderItems_AlreadyOrderedIsStable(t *testing.T) {
	items := []ast.PackageItem{
		param("A", &ast.Number{Text: "1"}),
		param("B", &ast.Ident{Name: "A"}),
		param("C", &ast.Ident{Name: "B"}),
	}
	out := reorderItems(items)
	for i, want := range []string{"A", "B", "C"} {
		if out[i].(*ast.Param).Name != want {
			t.Fatalf("order changed at %d: got %s", i, out[i].(*ast.Param).Name)
		}
	}
}

func TestReorderItems_ChainedDependencies(t *testing.T) {
	items := []ast.PackageItem{
		param("C", &ast.Ident{Name: "B"}),
		param("B", &ast.Ident{Name: "A"}),
		param("A", &ast.Number{Text: "1"}),
	}
	out := reorderItems(items)
	pos := map[string]int{}
	for i, item := range out {
		pos[item.(*ast.Param).Name] = i
	}
	if !(pos["A"] < pos["B"] && pos["B"] < pos["C"]) {
		t.Errorf("dependency order violated: %v", pos)
	}
}

func TestReorderItems_MutualRecursionTerminates(t *testing.T) {
	items := []ast.PackageItem{
		param("A", &ast.Ident{Name: "B"}),
		param("B", &ast.Ident{Name: "A"}),
	}
	out := reorderItems(items)
	if len(out) != 2 {
		t.Fatalf("got %d items, want 2", len(out))
	}
}

func TestReorderItems_ExternalUsesIgnored(t *testing.T) {
	items := []ast.PackageItem{
		param("A", &ast.Ident{Name: "external"}),
		param("B", &ast.Number{Text: "2"}),
	}
	out := reorderItems(items)
	if out[0].(*ast.Param).Name != "A" {
		t.Errorf("external references must not reorder, got %s first", out[0].(*ast.Param).Name)
	}
}

func TestResolveBindings(t *testing.T) {
	names := []string{"W", "T"}
	two := ast.TypeOrExpr{Expr: &ast.Number{Text: "2"}}

	resolved, err := resolveBindings("test", names, []ast.ParamBinding{{Value: two}})
	if err != nil || len(resolved) != 1 || resolved[0].Name != "W" {
		t.Errorf("positional bind = %v, %v", resolved, err)
	}

	resolved, err = resolveBindings("test", names, []ast.ParamBinding{{Name: "T", Value: two}})
	if err != nil || resolved[0].Name != "T" {
		t.Errorf("named bind = %v, %v", resolved, err)
	}

	if _, err := resolveBindings("test", names, []ast.ParamBinding{{Name: "nope", Value: two}}); err == nil {
		t.Error("unknown name should fail")
	}
	if _, err := resolveBindings("test", names, []ast.ParamBinding{{Value: two}, {Value: two}, {Value: two}}); err == nil {
		t.Error("too many positional bindings should fail")
	}
	if _, err := resolveBindings("test", names, []ast.ParamBinding{
		{Name: "W", Value: two}, {Value: two},
	}); err == nil {
		t.Error("positional after named should fail")
	}
}

func TestExprToType(t *testing.T) {
	got, ok := ExprToType(&ast.Ident{Name: "word_t"})
	if !ok || got.String() != "word_t" {
		t.Errorf("ident conversion = %v, %v", got, ok)
	}

	got, ok = ExprToType(&ast.PSIdent{Package: "P", Name: "t"})
	if !ok || got.String() != "P::t" {
		t.Errorf("ps conversion = %v, %v", got, ok)
	}

	got, ok = ExprToType(&ast.PartSelect{
		Base: &ast.Ident{Name: "base_t"},
		Mode: ast.PartColon,
		L:    &ast.Number{Text: "3"},
		R:    &ast.Number{Text: "0"},
	})
	if !ok || got.String() != "base_t [3:0]" {
		t.Errorf("ranged conversion = %v, %v", got, ok)
	}

	if _, ok := ExprToType(&ast.Number{Text: "5"}); ok {
		t.Error("a literal is not a type")
	}
}
