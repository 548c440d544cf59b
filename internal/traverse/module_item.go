package traverse

import (
	"sv2v/internal/ast"
)

// GenItemMapper transforms a generate item.
type GenItemMapper func(ast.GenItem) ast.GenItem

// ModuleItemExprs maps f over the expressions occurring directly in a
// module item: continuous assignments and instantiation bindings.
// Declarations, subroutines, and procedural bodies are walked through
// their own families.
func ModuleItemExprs(mi ast.ModuleItem, f ExprMapper) ast.ModuleItem {
	switch mi := mi.(type) {
	case *ast.Assign:
		return &ast.Assign{LHS: LHSExprs(mi.LHS, f), Expr: Exprs(mi.Expr, f)}
	case *ast.Instance:
		ports := make([]ast.PortBinding, len(mi.Ports))
		for i, p := range mi.Ports {
			ports[i] = ast.PortBinding{Name: p.Name, Expr: Exprs(p.Expr, f)}
		}
		return &ast.Instance{
			Module: mi.Module,
			Params: bindingExprs(mi.Params, f),
			Name:   mi.Name,
			Ports:  ports,
		}
	default:
		return mi
	}
}

// GenItems maps f over g and every nested generate item, post-order.
// Module items reached through generate blocks are passed to f as-is.
func GenItems(g ast.GenItem, f GenItemMapper) ast.GenItem {
	if g == nil {
		return nil
	}
	switch g := g.(type) {
	case *ast.GenBlock:
		items := make([]ast.GenItem, len(g.Items))
		for i, item := range g.Items {
			items[i] = GenItems(item, f)
		}
		return f(&ast.GenBlock{Name: g.Name, Items: items})
	case *ast.GenIf:
		return f(&ast.GenIf{Cond: g.Cond, Then: GenItems(g.Then, f), Else: GenItems(g.Else, f)})
	case *ast.GenFor:
		return f(&ast.GenFor{
			InitName: g.InitName, InitExpr: g.InitExpr,
			Cond:     g.Cond,
			StepName: g.StepName, StepExpr: g.StepExpr,
			Body: GenItems(g.Body, f),
		})
	default:
		return f(g)
	}
}
