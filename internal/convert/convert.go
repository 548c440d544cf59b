// Package convert holds the AST-level conversion passes that lower
// SystemVerilog constructs to their Verilog-2005 equivalents. Passes run
// in a fixed order over the full description list; the first fatal
// diagnostic aborts the run.
package convert

import (
	"sv2v/internal/ast"
	"sv2v/internal/diag"
)

// Pass transforms the whole description list.
type Pass struct {
	Name string
	Fn   func([]ast.Description) ([]ast.Description, error)
}

// Passes is the fixed pass order: package and class elaboration first,
// then integer atom lowering, then logic reclassification.
func Passes() []Pass {
	return []Pass{
		{Name: "elaborate", Fn: Elaborate},
		{Name: "atoms", Fn: LowerAtoms},
		{Name: "logic", Fn: ConvertLogic},
	}
}

// Run applies every pass in order.
func Run(descs []ast.Description) ([]ast.Description, error) {
	var err error
	for _, pass := range Passes() {
		descs, err = runPass(pass, descs)
		if err != nil {
			return nil, err
		}
	}
	return descs, nil
}

// runPass converts structural-error panics raised deep inside pure
// rewriters (see ast.TypeRanges) into ordinary pass failures.
func runPass(pass Pass, descs []ast.Description) (out []ast.Description, err error) {
	defer func() {
		if r := recover(); r != nil {
			if d, ok := r.(*diag.Diagnostic); ok {
				out, err = nil, d
				return
			}
			panic(r)
		}
	}()
	return pass.Fn(descs)
}
