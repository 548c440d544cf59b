package traverse

import (
	"sort"
	"testing"

	"sv2v/internal/ast"
)

func renameIdents(suffix string) ExprMapper {
	return func(e ast.Expr) ast.Expr {
		if id, ok := e.(*ast.Ident); ok {
			return &ast.Ident{Name: id.Name + suffix}
		}
		return e
	}
}

func TestExprs_BottomUpRebuild(t *testing.T) {
	in := &ast.BinOp{
		Op: ast.Add,
		L:  &ast.Ident{Name: "a"},
		R:  &ast.Bit{Base: &ast.Ident{Name: "b"}, Index: &ast.Ident{Name: "i"}},
	}
	out := Exprs(in, renameIdents("_x"))
	if got := out.String(); got != "a_x + b_x[i_x]" {
		t.Errorf("Exprs = %q", got)
	}
	// the input must be untouched
	if in.String() != "a + b[i]" {
		t.Errorf("input mutated: %q", in.String())
	}
}

func TestTypeExprs_ReachesRangesAndEnums(t *testing.T) {
	in := &ast.Enum{
		Items:  []ast.EnumItem{{Name: "A", Value: &ast.Ident{Name: "v"}}},
		Ranges: []ast.Range{{L: &ast.Ident{Name: "w"}, R: &ast.Number{Text: "0"}}},
	}
	out := TypeExprs(in, renameIdents("2"))
	if got := out.String(); got != "enum {A = v2} [w2:0]" {
		t.Errorf("TypeExprs = %q", got)
	}
}

func TestStmts_DeepRebuild(t *testing.T) {
	in := ast.Stmt(&ast.If{
		Cond: &ast.Ident{Name: "c"},
		Then: &ast.Asgn{Blocking: true, LHS: &ast.LHSIdent{Name: "x"}, Expr: &ast.Number{Text: "1"}},
	})
	count := 0
	Stmts(in, func(s ast.Stmt) ast.Stmt {
		count++
		return s
	})
	if count != 2 {
		t.Errorf("visited %d statements, want 2", count)
	}
}

func TestStmtExprs_ShallowOnly(t *testing.T) {
	inner := &ast.Asgn{Blocking: true, LHS: &ast.LHSIdent{Name: "x"}, Expr: &ast.Ident{Name: "y"}}
	in := &ast.If{Cond: &ast.Ident{Name: "c"}, Then: inner}
	out := StmtExprs(in, renameIdents("_r")).(*ast.If)
	if out.Cond.String() != "c_r" {
		t.Errorf("condition not mapped: %q", out.Cond.String())
	}
	if out.Then.(*ast.Asgn).Expr.String() != "y" {
		t.Error("child statement expressions must be left alone")
	}
}

func collectSorted(collect func(func(string))) []string {
	seen := map[string]bool{}
	collect(func(name string) { seen[name] = true })
	var names []string
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestIdentsInPackageItem(t *testing.T) {
	tests := []struct {
		name string
		item ast.PackageItem
		want []string
	}{
		{
			name: "param value and type",
			item: &ast.Param{
				Scope: ast.Parameter,
				Type:  &ast.Alias{Name: "word_t"},
				Name:  "W",
				Value: &ast.BinOp{Op: ast.Add, L: &ast.Ident{Name: "BASE"}, R: &ast.Number{Text: "1"}},
			},
			want: []string{"BASE", "word_t"},
		},
		{
			name: "typedef alias with ranged use",
			item: &ast.Typedef{
				Type: &ast.Alias{Name: "base_t", Ranges: []ast.Range{{L: &ast.Ident{Name: "W"}, R: &ast.Number{Text: "0"}}}},
				Name: "vec_t",
			},
			want: []string{"W", "base_t"},
		},
		{
			name: "function body",
			item: &ast.Function{
				Name:    "f",
				RetType: &ast.IntegerVector{Kind: ast.TLogic},
				Decls:   []ast.Decl{&ast.Variable{Dir: ast.Input, Type: &ast.Implicit{}, Name: "a"}},
				Stmts: []ast.Stmt{
					&ast.Asgn{Blocking: true, LHS: &ast.LHSIdent{Name: "f"}, Expr: &ast.Ident{Name: "K"}},
				},
			},
			want: []string{"K", "f"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectSorted(func(visit func(string)) {
				IdentsInPackageItem(tt.item, visit)
			})
			if len(got) != len(tt.want) {
				t.Fatalf("idents = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("idents = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
