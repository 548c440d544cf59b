package parser

import (
	"strings"
	"testing"

	"sv2v/internal/ast"
	"sv2v/internal/lexer"
	"sv2v/internal/source"
)

func parseSource(t *testing.T, src string) []ast.Description {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sv", []byte(src))
	tokens, err := lexer.Tokenize(fs.Get(id))
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	descs, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return descs
}

func onePart(t *testing.T, src string) *ast.Part {
	t.Helper()
	descs := parseSource(t, src)
	if len(descs) != 1 {
		t.Fatalf("got %d descriptions, want 1", len(descs))
	}
	part, ok := descs[0].(*ast.Part)
	if !ok {
		t.Fatalf("description is %T, want *ast.Part", descs[0])
	}
	return part
}

func TestParse_AnsiModule(t *testing.T) {
	part := onePart(t, "module m(input logic [7:0] a, output logic o);\nassign o = a[0];\nendmodule")
	if part.Name != "m" || len(part.Ports) != 2 {
		t.Fatalf("part = %s ports %v", part.Name, part.Ports)
	}
	if len(part.Items) != 3 {
		t.Fatalf("items = %d, want 3 (two port decls + assign)", len(part.Items))
	}
	a, ok := part.Items[0].(*ast.Variable)
	if !ok || a.Dir != ast.Input || a.Type.String() != "logic [7:0]" {
		t.Errorf("first port = %v", part.Items[0])
	}
	if _, ok := part.Items[2].(*ast.Assign); !ok {
		t.Errorf("third item = %T, want *ast.Assign", part.Items[2])
	}
}

func TestParse_NonAnsiPorts(t *testing.T) {
	part := onePart(t, "module m(a, b);\ninput a;\noutput reg b;\nendmodule")
	if len(part.Ports) != 2 || part.Ports[0] != "a" || part.Ports[1] != "b" {
		t.Fatalf("ports = %v", part.Ports)
	}
	b, ok := part.Items[1].(*ast.Variable)
	if !ok || b.Dir != ast.Output {
		t.Fatalf("output decl = %v", part.Items[1])
	}
	if vec, ok := b.Type.(*ast.IntegerVector); !ok || vec.Kind != ast.TReg {
		t.Errorf("output type = %v", b.Type)
	}
}

func TestParse_Package(t *testing.T) {
	descs := parseSource(t, "package A;\nparameter X = 5;\ntypedef logic [1:0] pair_t;\nendpackage")
	pkg, ok := descs[0].(*ast.PackageDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.PackageDecl", descs[0])
	}
	if pkg.Name != "A" || len(pkg.Items) != 2 {
		t.Fatalf("package = %s with %d items", pkg.Name, len(pkg.Items))
	}
	if p, ok := pkg.Items[0].(*ast.Param); !ok || p.Name != "X" {
		t.Errorf("first item = %v", pkg.Items[0])
	}
	if td, ok := pkg.Items[1].(*ast.Typedef); !ok || td.Name != "pair_t" {
		t.Errorf("second item = %v", pkg.Items[1])
	}
}

func TestParse_ClassWithParams(t *testing.T) {
	descs := parseSource(t,
		"class P #(parameter WIDTH = 1, parameter type BASE = logic);\n"+
			"typedef BASE [WIDTH-1:0] Unit;\nendclass")
	class, ok := descs[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.ClassDecl", descs[0])
	}
	if len(class.Params) != 2 {
		t.Fatalf("params = %d, want 2", len(class.Params))
	}
	if _, ok := class.Params[0].(*ast.Param); !ok {
		t.Errorf("first param = %T", class.Params[0])
	}
	if _, ok := class.Params[1].(*ast.ParamType); !ok {
		t.Errorf("second param = %T", class.Params[1])
	}
	td := class.Items[0].(*ast.Typedef)
	alias, ok := td.Type.(*ast.Alias)
	if !ok || alias.Name != "BASE" || len(alias.Ranges) != 1 {
		t.Errorf("typedef type = %v", td.Type)
	}
}

func TestParse_ClassScopedDecl(t *testing.T) {
	part := onePart(t, "module top;\nP#(2)::Unit b;\nendmodule")
	v, ok := part.Items[0].(*ast.Variable)
	if !ok {
		t.Fatalf("item = %T, want variable", part.Items[0])
	}
	cs, ok := v.Type.(*ast.CSAlias)
	if !ok || cs.Class != "P" || cs.Name != "Unit" || len(cs.Bindings) != 1 {
		t.Fatalf("type = %v", v.Type)
	}
}

func TestParse_Instance(t *testing.T) {
	part := onePart(t, "module m;\nsub #(.W(4)) u(.q(r), .clk(clk));\nendmodule")
	inst, ok := part.Items[0].(*ast.Instance)
	if !ok {
		t.Fatalf("item = %T, want instance", part.Items[0])
	}
	if inst.Module != "sub" || inst.Name != "u" {
		t.Errorf("instance = %s %s", inst.Module, inst.Name)
	}
	if len(inst.Params) != 1 || inst.Params[0].Name != "W" {
		t.Errorf("params = %v", inst.Params)
	}
	if len(inst.Ports) != 2 || inst.Ports[0].Name != "q" {
		t.Errorf("ports = %v", inst.Ports)
	}
}

func TestParse_ImportsAndExports(t *testing.T) {
	descs := parseSource(t, "package B;\nimport A::*, C::x;\nexport *::*;\nendpackage")
	pkg := descs[0].(*ast.PackageDecl)
	if len(pkg.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(pkg.Items))
	}
	wild := pkg.Items[0].(*ast.Import)
	if wild.Package != "A" || wild.Ident != "" {
		t.Errorf("wildcard import = %+v", wild)
	}
	explicit := pkg.Items[1].(*ast.Import)
	if explicit.Package != "C" || explicit.Ident != "x" {
		t.Errorf("explicit import = %+v", explicit)
	}
	exp := pkg.Items[2].(*ast.Export)
	if exp.Package != "" || exp.Ident != "" {
		t.Errorf("export = %+v", exp)
	}
}

func TestParse_GenerateFor(t *testing.T) {
	part := onePart(t,
		"module m;\ngenvar i;\ngenerate\nfor (i = 0; i < 4; i = i + 1) begin : g\n"+
			"wire w;\nend\nendgenerate\nendmodule")
	gen, ok := part.Items[1].(*ast.Generate)
	if !ok {
		t.Fatalf("item = %T, want generate", part.Items[1])
	}
	loop, ok := gen.Items[0].(*ast.GenFor)
	if !ok {
		t.Fatalf("generate item = %T, want for", gen.Items[0])
	}
	block, ok := loop.Body.(*ast.GenBlock)
	if !ok || block.Name != "g" {
		t.Fatalf("loop body = %v", loop.Body)
	}
}

func TestParse_AlwaysAndStatements(t *testing.T) {
	part := onePart(t,
		"module m(input clk, output logic q);\n"+
			"always_ff @(posedge clk)\nif (q)\nq <= 1'b0;\nelse\nq <= 1'b1;\n"+
			"endmodule")
	always, ok := part.Items[2].(*ast.AlwaysBlock)
	if !ok || always.Kind != ast.AlwaysFF {
		t.Fatalf("item = %v", part.Items[2])
	}
	timing, ok := always.Stmt.(*ast.Timing)
	if !ok || timing.Event.Star || len(timing.Event.Items) != 1 {
		t.Fatalf("stmt = %v", always.Stmt)
	}
	if timing.Event.Items[0].Edge != ast.Posedge {
		t.Errorf("edge = %v", timing.Event.Items[0].Edge)
	}
	ifStmt, ok := timing.Stmt.(*ast.If)
	if !ok || ifStmt.Else == nil {
		t.Fatalf("inner stmt = %v", timing.Stmt)
	}
	asgn := ifStmt.Then.(*ast.Asgn)
	if asgn.Blocking {
		t.Error("<= should parse as nonblocking")
	}
}

func TestParse_Function(t *testing.T) {
	descs := parseSource(t,
		"function automatic logic [3:0] inc(input logic [3:0] x);\n"+
			"return x + 1;\nendfunction")
	top, ok := descs[0].(*ast.TopItem)
	if !ok {
		t.Fatalf("got %T", descs[0])
	}
	fn, ok := top.Item.(*ast.Function)
	if !ok || fn.Name != "inc" || fn.Lifetime != ast.Automatic {
		t.Fatalf("function = %+v", top.Item)
	}
	if len(fn.Decls) != 1 || len(fn.Stmts) != 1 {
		t.Errorf("decls/stmts = %d/%d", len(fn.Decls), len(fn.Stmts))
	}
}

func TestParse_SyntaxError(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.sv", []byte("module m; wire ; endmodule"))
	tokens, err := lexer.Tokenize(fs.Get(id))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(tokens); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestParse_PrintRoundTrip(t *testing.T) {
	src := "module m(o);\n\toutput reg o;\n\tassign o = 1'b0;\nendmodule"
	descs := parseSource(t, src)
	printed := descs[0].String()
	if printed != src {
		t.Fatalf("print = %q, want %q", printed, src)
	}
	reparsed := parseSource(t, printed)
	if reparsed[0].String() != printed {
		t.Error("printing is not a fixed point under reparse")
	}
	if !strings.Contains(printed, "output reg o;") {
		t.Error("missing port decl")
	}
}
