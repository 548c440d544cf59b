package convert

import (
	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/scope"
)

// processPart runs the elaboration scoper over a module or interface:
// imports bind, package- and class-scoped references flatten, and local
// declarations keep their names.
func (el *elaborator) processPart(part *ast.Part) (*ast.Part, error) {
	ctx := &itemsCtx{el: el, top: part.Name, pkg: "", sc: scope.New[identState]()}
	v := ctx.visitor()
	v.ModuleItem = ctx.moduleItem

	out, err := scope.WalkPart(ctx.sc, part, v)
	if err == nil {
		err = ctx.err
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ctx *itemsCtx) moduleItem(sc *scope.Scopes[identState], mi ast.ModuleItem) (ast.ModuleItem, error) {
	switch mi := mi.(type) {
	case *ast.Import:
		if err := ctx.handleImport(mi); err != nil {
			return nil, err
		}
		return &ast.CommentDecl{Comment: mi.String()}, nil
	case *ast.Export:
		return nil, diag.New(diag.ElabBadExport,
			"export of %s::%s outside of a package (in %s)",
			displayName(mi.Package), displayName(mi.Ident), ctx.top)
	case *ast.Typedef:
		newName, t, err := ctx.declare(mi.Name, mi.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Typedef{Type: t, Name: newName}, nil
	case *ast.Function:
		if _, err := ctx.declareName(mi.Name); err != nil {
			return nil, err
		}
		return mi, nil
	case *ast.Task:
		if _, err := ctx.declareName(mi.Name); err != nil {
			return nil, err
		}
		return mi, nil
	case *ast.Genvar:
		if _, err := ctx.declareName(mi.Name); err != nil {
			return nil, err
		}
		return mi, nil
	default:
		return mi, nil
	}
}
