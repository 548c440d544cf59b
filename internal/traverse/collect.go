package traverse

import (
	"sv2v/internal/ast"
)

// The collectors below visit every plain identifier reference in a
// subtree, including typedef alias names. Package- and class-scoped
// references are not reported; they name symbols outside the local
// namespace.

func IdentsInExpr(e ast.Expr, visit func(string)) {
	Exprs(e, func(x ast.Expr) ast.Expr {
		if id, ok := x.(*ast.Ident); ok {
			visit(id.Name)
		}
		return x
	})
}

func IdentsInType(t ast.Type, visit func(string)) {
	Types(t, func(x ast.Type) ast.Type {
		if alias, ok := x.(*ast.Alias); ok {
			visit(alias.Name)
		}
		return x
	})
	TypeExprs(t, func(x ast.Expr) ast.Expr {
		if id, ok := x.(*ast.Ident); ok {
			visit(id.Name)
		}
		return x
	})
}

func IdentsInDecl(d ast.Decl, visit func(string)) {
	switch d := d.(type) {
	case *ast.Variable:
		IdentsInType(d.Type, visit)
		for _, r := range d.Dims {
			IdentsInExpr(r.L, visit)
			IdentsInExpr(r.R, visit)
		}
		if d.Init != nil {
			IdentsInExpr(d.Init, visit)
		}
	case *ast.Param:
		if d.Type != nil {
			IdentsInType(d.Type, visit)
		}
		if d.Value != nil {
			IdentsInExpr(d.Value, visit)
		}
	case *ast.ParamType:
		if d.Type != nil {
			IdentsInType(d.Type, visit)
		}
	}
}

func IdentsInLHS(l ast.LHS, visit func(string)) {
	if l == nil {
		return
	}
	switch l := l.(type) {
	case *ast.LHSIdent:
		visit(l.Name)
	case *ast.LHSBit:
		IdentsInLHS(l.Base, visit)
		IdentsInExpr(l.Index, visit)
	case *ast.LHSRange:
		IdentsInLHS(l.Base, visit)
		IdentsInExpr(l.L, visit)
		IdentsInExpr(l.R, visit)
	case *ast.LHSDot:
		IdentsInLHS(l.Base, visit)
	case *ast.LHSConcat:
		for _, item := range l.Items {
			IdentsInLHS(item, visit)
		}
	}
}

// IdentsInStmt walks the full statement tree, including block-local
// declarations.
func IdentsInStmt(s ast.Stmt, visit func(string)) {
	if s == nil {
		return
	}
	Stmts(s, func(st ast.Stmt) ast.Stmt {
		if blk, ok := st.(*ast.Block); ok {
			for _, d := range blk.Decls {
				IdentsInDecl(d, visit)
			}
		}
		StmtLHSs(st, func(l ast.LHS) ast.LHS {
			IdentsInLHS(l, visit)
			return l
		})
		StmtExprs(st, func(e ast.Expr) ast.Expr {
			if id, ok := e.(*ast.Ident); ok {
				visit(id.Name)
			}
			return e
		})
		return st
	})
}

// IdentsInPackageItem reports every identifier a package item references,
// in declarations, bodies, and types alike.
func IdentsInPackageItem(pi ast.PackageItem, visit func(string)) {
	switch pi := pi.(type) {
	case *ast.Function:
		if pi.RetType != nil {
			IdentsInType(pi.RetType, visit)
		}
		for _, d := range pi.Decls {
			IdentsInDecl(d, visit)
		}
		for _, s := range pi.Stmts {
			IdentsInStmt(s, visit)
		}
	case *ast.Task:
		for _, d := range pi.Decls {
			IdentsInDecl(d, visit)
		}
		for _, s := range pi.Stmts {
			IdentsInStmt(s, visit)
		}
	case *ast.Typedef:
		IdentsInType(pi.Type, visit)
	case ast.Decl:
		IdentsInDecl(pi, visit)
	}
}

// IdentsInModuleItem covers the module-item family, descending through
// generate regions and procedural bodies.
func IdentsInModuleItem(mi ast.ModuleItem, visit func(string)) {
	switch mi := mi.(type) {
	case *ast.Assign:
		IdentsInLHS(mi.LHS, visit)
		IdentsInExpr(mi.Expr, visit)
	case *ast.Instance:
		for _, b := range mi.Params {
			if b.Value.Expr != nil {
				IdentsInExpr(b.Value.Expr, visit)
			}
			if b.Value.Type != nil {
				IdentsInType(b.Value.Type, visit)
			}
		}
		for _, p := range mi.Ports {
			if p.Expr != nil {
				IdentsInExpr(p.Expr, visit)
			}
		}
	case *ast.AlwaysBlock:
		IdentsInStmt(mi.Stmt, visit)
	case *ast.Initial:
		IdentsInStmt(mi.Stmt, visit)
	case *ast.Generate:
		for _, g := range mi.Items {
			IdentsInGenItem(g, visit)
		}
	case ast.PackageItem:
		IdentsInPackageItem(mi, visit)
	}
}

func IdentsInGenItem(g ast.GenItem, visit func(string)) {
	if g == nil {
		return
	}
	switch g := g.(type) {
	case *ast.GenBlock:
		for _, item := range g.Items {
			IdentsInGenItem(item, visit)
		}
	case *ast.GenIf:
		IdentsInExpr(g.Cond, visit)
		IdentsInGenItem(g.Then, visit)
		IdentsInGenItem(g.Else, visit)
	case *ast.GenFor:
		IdentsInExpr(g.InitExpr, visit)
		IdentsInExpr(g.Cond, visit)
		IdentsInExpr(g.StepExpr, visit)
		IdentsInGenItem(g.Body, visit)
	case ast.ModuleItem:
		IdentsInModuleItem(g, visit)
	}
}
