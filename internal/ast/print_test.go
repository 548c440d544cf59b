package ast

import (
	"strings"
	"testing"
)

func TestDeclPrinting(t *testing.T) {
	tests := []struct {
		name string
		decl Decl
		want string
	}{
		{
			name: "output reg port",
			decl: &Variable{Dir: Output, Type: &IntegerVector{Kind: TReg}, Name: "o"},
			want: "output reg o;",
		},
		{
			name: "ranged wire",
			decl: &Variable{
				Type: &Net{Kind: TWire, Ranges: []Range{{L: &Number{Text: "7"}, R: &Number{Text: "0"}}}},
				Name: "w",
			},
			want: "wire [7:0] w;",
		},
		{
			name: "signed logic",
			decl: &Variable{
				Type: &IntegerVector{Kind: TLogic, Sign: Signed},
				Name: "s",
			},
			want: "logic signed s;",
		},
		{
			name: "variable with init and unpacked dims",
			decl: &Variable{
				Type: &IntegerVector{Kind: TReg},
				Name: "mem",
				Dims: []Range{{L: &Number{Text: "0"}, R: &Number{Text: "3"}}},
				Init: &Number{Text: "0"},
			},
			want: "reg mem [0:3] = 0;",
		},
		{
			name: "implicit parameter",
			decl: &Param{Scope: Parameter, Type: &Implicit{}, Name: "W", Value: &Number{Text: "5"}},
			want: "parameter W = 5;",
		},
		{
			name: "localparam with range",
			decl: &Param{
				Scope: Localparam,
				Type:  &Implicit{Ranges: []Range{{L: &Number{Text: "0"}, R: &Number{Text: "0"}}}},
				Name:  "LP",
				Value: &Number{Text: "1"},
			},
			want: "localparam [0:0] LP = 1;",
		},
		{
			name: "comment decl",
			decl: &CommentDecl{Comment: "removed package p"},
			want: "// removed package p",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decl.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExprPrinting(t *testing.T) {
	a := &Ident{Name: "a"}
	b := &Ident{Name: "b"}
	c := &Ident{Name: "c"}
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"precedence needs no parens", &BinOp{Op: Add, L: a, R: &BinOp{Op: Mul, L: b, R: c}}, "a + b * c"},
		{"low-precedence child is wrapped", &BinOp{Op: Mul, L: &BinOp{Op: Add, L: a, R: b}, R: c}, "(a + b) * c"},
		{"left assoc right child wrapped", &BinOp{Op: Sub, L: a, R: &BinOp{Op: Sub, L: b, R: c}}, "a - (b - c)"},
		{"ternary", &Mux{Cond: a, T: b, F: c}, "a ? b : c"},
		{"unary over select", &UniOp{Op: RedOr, Arg: &Bit{Base: a, Index: b}}, "|a[b]"},
		{"part select", &PartSelect{Base: a, Mode: PartColon, L: &Number{Text: "3"}, R: &Number{Text: "0"}}, "a[3:0]"},
		{"indexed part select", &PartSelect{Base: a, Mode: PartPlus, L: b, R: &Number{Text: "8"}}, "a[b+:8]"},
		{"concat", &Concat{Items: []Expr{a, b}}, "{a, b}"},
		{"repeat", &Repeat{Count: &Number{Text: "2"}, Items: []Expr{a}}, "{2{a}}"},
		{"package scoped", &PSIdent{Package: "P", Name: "x"}, "P::x"},
		{"call", &Call{Fn: &Ident{Name: "$clog2"}, Args: []Expr{a}}, "$clog2(a)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPartPrinting(t *testing.T) {
	part := &Part{
		Kind:  KwModule,
		Name:  "m",
		Ports: []string{"o"},
		Items: []ModuleItem{
			&Variable{Dir: Output, Type: &IntegerVector{Kind: TReg}, Name: "o"},
			&Assign{LHS: &LHSIdent{Name: "o"}, Expr: &Number{Text: "1'b0"}},
		},
	}
	want := "module m(o);\n" +
		"\toutput reg o;\n" +
		"\tassign o = 1'b0;\n" +
		"endmodule"
	if got := part.String(); got != want {
		t.Errorf("Part.String() =\n%s\nwant:\n%s", got, want)
	}
}

func TestEnumAndTypedefPrinting(t *testing.T) {
	enum := &Enum{
		Items: []EnumItem{{Name: "A"}, {Name: "B", Value: &Number{Text: "3"}}},
	}
	if got := enum.String(); got != "enum {A, B = 3}" {
		t.Errorf("Enum.String() = %q", got)
	}

	td := &Typedef{
		Type: &IntegerVector{Kind: TLogic, Ranges: []Range{{L: &Number{Text: "1"}, R: &Number{Text: "0"}}}},
		Name: "pair_t",
	}
	if got := td.String(); got != "typedef logic [1:0] pair_t;" {
		t.Errorf("Typedef.String() = %q", got)
	}
}

func TestTypeRanges(t *testing.T) {
	vec := &IntegerVector{Kind: TLogic, Sign: Signed, Ranges: []Range{{L: &Number{Text: "7"}, R: &Number{Text: "0"}}}}
	rebuild, ranges := TypeRanges(vec)
	if len(ranges) != 1 {
		t.Fatalf("ranges = %v", ranges)
	}
	rebuilt := rebuild(nil)
	if got := rebuilt.String(); got != "logic signed" {
		t.Errorf("rebuilt = %q", got)
	}
}

func TestTypeRanges_AtomRejectsRanges(t *testing.T) {
	rebuild, ranges := TypeRanges(&IntegerAtom{Kind: TInt})
	if len(ranges) != 0 {
		t.Fatalf("atom should carry no ranges, got %v", ranges)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic when applying ranges to an atom")
		}
	}()
	rebuild([]Range{{L: &Number{Text: "1"}, R: &Number{Text: "0"}}})
}

func TestElaborateAtom(t *testing.T) {
	tests := []struct {
		name string
		kind IntegerAtomTy
		sign Signing
		want string
	}{
		{"int", TInt, Unspecified, "logic signed [31:0]"},
		{"byte", TByte, Unspecified, "logic signed [7:0]"},
		{"shortint", TShortint, Unspecified, "logic signed [15:0]"},
		{"longint", TLongint, Unspecified, "logic signed [63:0]"},
		{"unsigned int", TInt, Unsigned, "logic unsigned [31:0]"},
		{"integer", TInteger, Unspecified, "logic signed [31:0]"},
		{"time", TTime, Unspecified, "logic unsigned [63:0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElaborateAtom(tt.kind, tt.sign, nil).String(); got != tt.want {
				t.Errorf("ElaborateAtom = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShortHash_Deterministic(t *testing.T) {
	a := ShortHash("m.x", "expr")
	b := ShortHash("m.x", "expr")
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 8 || strings.ToLower(a) != a {
		t.Errorf("hash %q should be 8 lowercase hex digits", a)
	}
	if ShortHash("m.x", "other") == a {
		t.Error("different inputs should hash differently")
	}
}

func TestLHSExprRoundTrip(t *testing.T) {
	lhs := &LHSRange{
		Base: &LHSIdent{Name: "v"},
		Mode: PartColon,
		L:    &Number{Text: "3"},
		R:    &Number{Text: "0"},
	}
	expr := LHSToExpr(lhs)
	back, ok := ExprToLHS(expr)
	if !ok {
		t.Fatal("ExprToLHS failed")
	}
	if back.String() != lhs.String() {
		t.Errorf("round trip %q != %q", back.String(), lhs.String())
	}

	if _, ok := ExprToLHS(&BinOp{Op: Add, L: &Ident{Name: "a"}, R: &Ident{Name: "b"}}); ok {
		t.Error("a sum is not assignable")
	}
}
