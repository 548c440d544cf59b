package convert

import (
	"strings"
	"testing"

	"sv2v/internal/ast"
	"sv2v/internal/lexer"
	"sv2v/internal/parser"
	"sv2v/internal/source"
)

func parseInput(t *testing.T, src string) []ast.Description {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sv", []byte(src))
	tokens, err := lexer.Tokenize(fs.Get(id))
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	descs, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return descs
}

func convertSource(t *testing.T, src string) string {
	t.Helper()
	descs := parseInput(t, src)
	out, err := Run(descs)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	var sb strings.Builder
	for _, desc := range out {
		sb.WriteString(desc.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestLogic_ProceduralWriteBecomesReg(t *testing.T) {
	out := convertSource(t, "module m(output logic o);\nalways_comb\no = 1'b0;\nendmodule")
	if !strings.Contains(out, "output reg o;") {
		t.Errorf("expected reg conversion, got:\n%s", out)
	}
}

func TestLogic_ContinuousDriveBecomesWire(t *testing.T) {
	out := convertSource(t, "module m(output logic o);\nassign o = 1'b0;\nendmodule")
	if !strings.Contains(out, "output wire o;") {
		t.Errorf("expected wire conversion, got:\n%s", out)
	}
	if !strings.Contains(out, "assign o = 1'b0;") {
		t.Errorf("continuous assignment must survive, got:\n%s", out)
	}
}

func TestLogic_UndrivenBecomesWire(t *testing.T) {
	out := convertSource(t, "module m;\nlogic [3:0] w;\nendmodule")
	if !strings.Contains(out, "wire [3:0] w;") {
		t.Errorf("expected wire, got:\n%s", out)
	}
}

func TestLogic_ReadmemTargetBecomesReg(t *testing.T) {
	out := convertSource(t,
		"module m;\nlogic [7:0] mem [0:3];\ninitial\n$readmemh(\"f.hex\", mem);\nendmodule")
	if !strings.Contains(out, "reg [7:0] mem [0:3];") {
		t.Errorf("expected reg memory, got:\n%s", out)
	}
}

func TestLogic_FunctionLocalBecomesReg(t *testing.T) {
	out := convertSource(t,
		"module m;\nfunction logic f(input logic x);\nreturn x;\nendfunction\nendmodule")
	// both the port and the return type context stay procedural
	if !strings.Contains(out, "input reg x;") {
		t.Errorf("expected procedural reg conversion, got:\n%s", out)
	}
}

func TestLogic_InoutWriterDemotesToOutput(t *testing.T) {
	out := convertSource(t, "module m(inout logic io);\nalways_comb\nio = 1'b1;\nendmodule")
	if !strings.Contains(out, "output reg io;") {
		t.Errorf("expected inout demotion, got:\n%s", out)
	}
}

func TestLogic_ParamVectorCollapses(t *testing.T) {
	out := convertSource(t, "module m;\nparameter logic [3:0] P = 4'b0101;\nendmodule")
	if !strings.Contains(out, "parameter [3:0] P = 4'b0101;") {
		t.Errorf("expected implicit parameter type, got:\n%s", out)
	}

	out = convertSource(t, "module m;\nparameter logic Q = 1'b1;\nendmodule")
	if !strings.Contains(out, "parameter [0:0] Q = 1'b1;") {
		t.Errorf("expected default [0:0] range, got:\n%s", out)
	}
}

func TestLogic_BadContinuousAssignRepaired(t *testing.T) {
	out := convertSource(t,
		"module m(output logic o);\nalways_comb\no = 1'b0;\nassign o = 1'b1;\nendmodule")
	if !strings.Contains(out, "sv2v_tmp_") {
		t.Fatalf("expected a trampoline wire, got:\n%s", out)
	}
	if !strings.Contains(out, "always") || !strings.Contains(out, "generate") {
		t.Errorf("expected generate block with procedural copy, got:\n%s", out)
	}
	if strings.Contains(out, "assign o = 1'b1;") {
		t.Errorf("direct continuous assignment to a reg must be gone, got:\n%s", out)
	}
}

func TestLogic_RegDrivenOutputPort(t *testing.T) {
	out := convertSource(t,
		"module sub(output q);\nendmodule\n"+
			"module m;\nreg r;\nalways_comb\nr = 1'b0;\nsub u(.q(r));\nendmodule")
	if !strings.Contains(out, "sv2v_tmp_u_q") {
		t.Fatalf("expected redirect wire sv2v_tmp_u_q, got:\n%s", out)
	}
	if !strings.Contains(out, ".q(sv2v_tmp_u_q)") {
		t.Errorf("instance should bind the wire, got:\n%s", out)
	}
	if !strings.Contains(out, "r = sv2v_tmp_u_q;") {
		t.Errorf("expected copy-back into r, got:\n%s", out)
	}
}

func TestLogic_NonLHSOutputBindingFatal(t *testing.T) {
	descs := parseInput(t,
		"module sub(output q);\nendmodule\n"+
			"module m;\nreg r;\nalways_comb\nr = 1'b0;\nsub u(.q(r + 1));\nendmodule")
	if _, err := Run(descs); err == nil {
		t.Error("expected fatal error for non-assignable output binding")
	}
}

func TestLogic_WireDrivenOutputPortUntouched(t *testing.T) {
	out := convertSource(t,
		"module sub(output q);\nendmodule\n"+
			"module m;\nwire w;\nsub u(.q(w));\nendmodule")
	if strings.Contains(out, "sv2v_tmp_") {
		t.Errorf("wire-bound output needs no repair, got:\n%s", out)
	}
}

func TestAtoms_IntBecomesRangedLogic(t *testing.T) {
	out := convertSource(t, "module m;\nint i;\ninitial\ni = 0;\nendmodule")
	if !strings.Contains(out, "reg signed [31:0] i;") {
		t.Errorf("expected lowered signed 32-bit reg, got:\n%s", out)
	}
}

func TestAtoms_UnwrittenIntBecomesWire(t *testing.T) {
	out := convertSource(t, "module m;\nint i;\nendmodule")
	if !strings.Contains(out, "wire signed [31:0] i;") {
		t.Errorf("expected lowered signed 32-bit wire, got:\n%s", out)
	}
}
