package scope

import (
	"testing"

	"sv2v/internal/ast"
)

func TestScopes_InsertLookup(t *testing.T) {
	sc := New[int]()
	sc.Enter("m")
	sc.Insert("x", 1)

	if entry, ok := sc.LookupLocal("x"); !ok || entry.Meta != 1 {
		t.Fatalf("LookupLocal(x) = (%v, %v), want meta 1", entry.Meta, ok)
	}

	// an inner frame shadows, and popping restores the outer binding
	sc.Enter("blk")
	sc.Insert("x", 2)
	if entry, ok := sc.Lookup("x"); !ok || entry.Meta != 2 {
		t.Fatalf("shadowed Lookup(x) = (%v, %v), want meta 2", entry.Meta, ok)
	}
	if entry, ok := sc.LookupLocal("x"); !ok || entry.Meta != 2 {
		t.Fatalf("inner LookupLocal(x) = (%v, %v), want meta 2", entry.Meta, ok)
	}
	sc.Exit()
	if entry, ok := sc.Lookup("x"); !ok || entry.Meta != 1 {
		t.Fatalf("after pop Lookup(x) = (%v, %v), want meta 1", entry.Meta, ok)
	}
}

func TestScopes_ReinsertReplaces(t *testing.T) {
	sc := New[string]()
	sc.Enter("m")
	sc.Insert("x", "first")
	sc.Insert("x", "second")
	entry, ok := sc.LookupLocal("x")
	if !ok || entry.Meta != "second" {
		t.Fatalf("LookupLocal(x) = (%v, %v), want second", entry.Meta, ok)
	}
}

func TestScopes_AccessPaths(t *testing.T) {
	sc := New[int]()
	sc.Enter("m")
	sc.Enter("gen")
	sc.Insert("x", 0)
	entry, _ := sc.LookupLocal("x")
	if got := AccessKey(entry.Accesses); got != "m.gen.x" {
		t.Errorf("AccessKey = %q, want %q", got, "m.gen.x")
	}
	sc.Exit()
	sc.Insert("x", 0)
	entry, _ = sc.LookupLocal("x")
	if got := AccessKey(entry.Accesses); got != "m.x" {
		t.Errorf("AccessKey = %q, want %q", got, "m.x")
	}
}

func TestScopes_WithinProcedure(t *testing.T) {
	sc := New[int]()
	sc.Enter("m")
	if sc.WithinProcedure() {
		t.Error("module scope should not be procedural")
	}
	sc.EnterProcedure("f")
	if !sc.WithinProcedure() {
		t.Error("function scope should be procedural")
	}
	sc.Enter("blk")
	if !sc.WithinProcedure() {
		t.Error("block inside a function should still be procedural")
	}
	sc.Exit()
	sc.Exit()
	if sc.WithinProcedure() {
		t.Error("procedural flag should clear after pop")
	}
}

func TestScopes_LookupExprPrefix(t *testing.T) {
	sc := New[int]()
	sc.Enter("m")
	sc.Insert("mem", 7)

	exprs := []ast.Expr{
		&ast.Ident{Name: "mem"},
		&ast.Bit{Base: &ast.Ident{Name: "mem"}, Index: &ast.Number{Text: "0"}},
		&ast.Dot{Base: &ast.Ident{Name: "mem"}, Field: "f"},
	}
	for _, e := range exprs {
		if entry, ok := sc.LookupExpr(e); !ok || entry.Meta != 7 {
			t.Errorf("LookupExpr(%v) = (%v, %v), want meta 7", e, entry.Meta, ok)
		}
	}

	if _, ok := sc.LookupExpr(&ast.Number{Text: "1"}); ok {
		t.Error("a literal has no identifier prefix")
	}
}

func TestScopes_InsertAt(t *testing.T) {
	sc := New[int]()
	sc.Enter("m")
	accesses := []Access{{Name: "pkg"}, {Name: "x"}}
	sc.InsertAt(accesses, "x", 9)
	entry, ok := sc.Lookup("x")
	if !ok || entry.Meta != 9 {
		t.Fatalf("Lookup after InsertAt = (%v, %v)", entry.Meta, ok)
	}
	if got := AccessKey(entry.Accesses); got != "pkg.x" {
		t.Errorf("explicit access path = %q, want %q", got, "pkg.x")
	}
}

func TestWalkPart_FramesFollowNesting(t *testing.T) {
	part := &ast.Part{
		Kind: ast.KwModule,
		Name: "m",
		Items: []ast.ModuleItem{
			&ast.Variable{Type: &ast.IntegerVector{Kind: ast.TLogic}, Name: "top"},
			&ast.Function{
				Name:  "f",
				Decls: []ast.Decl{&ast.Variable{Dir: ast.Input, Type: &ast.Implicit{}, Name: "arg"}},
			},
			&ast.Generate{Items: []ast.GenItem{
				&ast.GenBlock{Name: "g", Items: []ast.GenItem{
					&ast.Variable{Type: &ast.IntegerVector{Kind: ast.TLogic}, Name: "inner"},
				}},
			}},
		},
	}

	paths := map[string]string{}
	procedural := map[string]bool{}
	sc := New[struct{}]()
	_, err := WalkPart(sc, part, Visitor[struct{}]{
		Decl: func(sc *Scopes[struct{}], d ast.Decl) (ast.Decl, error) {
			if v, ok := d.(*ast.Variable); ok {
				sc.Insert(v.Name, struct{}{})
				entry, _ := sc.LookupLocal(v.Name)
				paths[v.Name] = AccessKey(entry.Accesses)
				procedural[v.Name] = sc.WithinProcedure()
			}
			return d, nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantPaths := map[string]string{
		"top":   "m.top",
		"arg":   "m.f.arg",
		"inner": "m.g.inner",
	}
	for name, want := range wantPaths {
		if paths[name] != want {
			t.Errorf("path of %s = %q, want %q", name, paths[name], want)
		}
	}
	if procedural["top"] || !procedural["arg"] || procedural["inner"] {
		t.Errorf("procedural flags = %v", procedural)
	}
}

func TestScopes_Mapping(t *testing.T) {
	sc := New[int]()
	sc.Enter("m")
	sc.Insert("a", 1)
	sc.Enter("inner")
	sc.Insert("a", 2)
	sc.Insert("b", 3)
	m := sc.Mapping()
	if m["a"] != 2 || m["b"] != 3 {
		t.Errorf("Mapping = %v", m)
	}
}
