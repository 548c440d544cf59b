package convert

import (
	"sv2v/internal/ast"
	"sv2v/internal/scope"
)

// LowerAtoms rewrites every integer atom type into an explicitly ranged
// logic vector, so the later logic pass sees one uniform vector form.
func LowerAtoms(descs []ast.Description) ([]ast.Description, error) {
	visitor := scope.Visitor[struct{}]{
		Type: func(_ *scope.Scopes[struct{}], t ast.Type) ast.Type {
			if atom, ok := t.(*ast.IntegerAtom); ok {
				return ast.ElaborateAtom(atom.Kind, atom.Sign, nil)
			}
			return t
		},
	}
	out := make([]ast.Description, len(descs))
	for i, desc := range descs {
		sc := scope.New[struct{}]()
		converted, err := scope.WalkDescription(sc, desc, visitor)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
