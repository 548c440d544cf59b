package scope

import (
	"sv2v/internal/ast"
	"sv2v/internal/traverse"
)

// Visitor supplies the per-family callbacks of a scoped walk. Nil
// callbacks default to identity. The structural callbacks (Decl,
// PackageItem, ModuleItem, GenItem, Stmt) may fail; a non-nil error
// aborts the walk immediately, after which every opened frame is still
// popped. The leaf callbacks (Expr, Type, LHS) are pure rewriters applied
// bottom-up wherever the family occurs; record failures in pass state and
// surface them after the walk.
type Visitor[T any] struct {
	Decl        func(*Scopes[T], ast.Decl) (ast.Decl, error)
	PackageItem func(*Scopes[T], ast.PackageItem) (ast.PackageItem, error)
	ModuleItem  func(*Scopes[T], ast.ModuleItem) (ast.ModuleItem, error)
	GenItem     func(*Scopes[T], ast.GenItem) (ast.GenItem, error)
	Stmt        func(*Scopes[T], ast.Stmt) (ast.Stmt, error)
	Expr        func(*Scopes[T], ast.Expr) ast.Expr
	Type        func(*Scopes[T], ast.Type) ast.Type
	LHS         func(*Scopes[T], ast.LHS) ast.LHS
}

func (v *Visitor[T]) exprMapper(sc *Scopes[T]) traverse.ExprMapper {
	if v.Expr == nil {
		return func(e ast.Expr) ast.Expr { return e }
	}
	return func(e ast.Expr) ast.Expr { return v.Expr(sc, e) }
}

func (v *Visitor[T]) typeMapper(sc *Scopes[T]) traverse.TypeMapper {
	if v.Type == nil {
		return func(t ast.Type) ast.Type { return t }
	}
	return func(t ast.Type) ast.Type { return v.Type(sc, t) }
}

// WalkPart runs a scoped rewrite over a module or interface. The part
// frame is entered before any item and exited on every control path.
func WalkPart[T any](sc *Scopes[T], part *ast.Part, v Visitor[T]) (*ast.Part, error) {
	sc.Enter(part.Name)
	defer sc.Exit()

	items, err := walkModuleItems(sc, part.Items, v)
	if err != nil {
		return nil, err
	}
	out := *part
	out.Items = items
	return &out, nil
}

// WalkDescription dispatches a scoped rewrite over any top-level
// description.
func WalkDescription[T any](sc *Scopes[T], desc ast.Description, v Visitor[T]) (ast.Description, error) {
	switch desc := desc.(type) {
	case *ast.Part:
		return WalkPart(sc, desc, v)
	case *ast.PackageDecl:
		items, err := WalkItems(sc, desc.Name, desc.Items, v)
		if err != nil {
			return nil, err
		}
		return &ast.PackageDecl{Lifetime: desc.Lifetime, Name: desc.Name, Items: items}, nil
	case *ast.ClassDecl:
		sc.Enter(desc.Name)
		defer sc.Exit()
		params := make([]ast.Decl, 0, len(desc.Params))
		for _, p := range desc.Params {
			p2, err := walkDecl(sc, p, v)
			if err != nil {
				return nil, err
			}
			params = append(params, p2)
		}
		items, err := walkPackageItems(sc, desc.Items, v)
		if err != nil {
			return nil, err
		}
		return &ast.ClassDecl{Lifetime: desc.Lifetime, Name: desc.Name, Params: params, Items: items}, nil
	case *ast.TopItem:
		items, err := WalkItems(sc, "", []ast.PackageItem{desc.Item}, v)
		if err != nil {
			return nil, err
		}
		return &ast.TopItem{Item: items[0]}, nil
	}
	return desc, nil
}

// WalkItems runs a scoped rewrite over package-level items under a frame
// named scopeName (the package name, or a synthetic name for the root).
func WalkItems[T any](sc *Scopes[T], scopeName string, items []ast.PackageItem, v Visitor[T]) ([]ast.PackageItem, error) {
	sc.Enter(scopeName)
	defer sc.Exit()
	return walkPackageItems(sc, items, v)
}

// WalkItemsOpen walks package items in the currently open frame without
// pushing a new one; callers that need the final frame contents manage
// Enter and Exit themselves.
func WalkItemsOpen[T any](sc *Scopes[T], items []ast.PackageItem, v Visitor[T]) ([]ast.PackageItem, error) {
	return walkPackageItems(sc, items, v)
}

func walkPackageItems[T any](sc *Scopes[T], items []ast.PackageItem, v Visitor[T]) ([]ast.PackageItem, error) {
	out := make([]ast.PackageItem, 0, len(items))
	for _, item := range items {
		item2, err := walkPackageItem(sc, item, v)
		if err != nil {
			return nil, err
		}
		out = append(out, item2)
	}
	return out, nil
}

func walkPackageItem[T any](sc *Scopes[T], item ast.PackageItem, v Visitor[T]) (ast.PackageItem, error) {
	if v.PackageItem != nil {
		var err error
		item, err = v.PackageItem(sc, item)
		if err != nil {
			return nil, err
		}
	}
	switch item := item.(type) {
	case *ast.Function:
		return walkFunction(sc, item, v)
	case *ast.Task:
		return walkTask(sc, item, v)
	case *ast.Typedef:
		t := traverse.Types(item.Type, v.typeMapper(sc))
		t = traverse.TypeExprs(t, v.exprMapper(sc))
		return &ast.Typedef{Type: t, Name: item.Name}, nil
	case ast.Decl:
		return walkDecl(sc, item, v)
	default:
		return item, nil
	}
}

func walkDecl[T any](sc *Scopes[T], d ast.Decl, v Visitor[T]) (ast.Decl, error) {
	if v.Decl != nil {
		var err error
		d, err = v.Decl(sc, d)
		if err != nil {
			return nil, err
		}
	}
	d = traverse.DeclTypes(d, v.typeMapper(sc))
	d = traverse.DeclExprs(d, v.exprMapper(sc))
	return d, nil
}

func walkFunction[T any](sc *Scopes[T], fn *ast.Function, v Visitor[T]) (ast.PackageItem, error) {
	retType := fn.RetType
	if retType != nil {
		retType = traverse.Types(retType, v.typeMapper(sc))
		retType = traverse.TypeExprs(retType, v.exprMapper(sc))
	}

	sc.EnterProcedure(fn.Name)
	defer sc.Exit()

	decls, stmts, err := walkBody(sc, fn.Decls, fn.Stmts, v)
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Lifetime: fn.Lifetime,
		RetType:  retType,
		Name:     fn.Name,
		Decls:    decls,
		Stmts:    stmts,
	}, nil
}

func walkTask[T any](sc *Scopes[T], task *ast.Task, v Visitor[T]) (ast.PackageItem, error) {
	sc.EnterProcedure(task.Name)
	defer sc.Exit()

	decls, stmts, err := walkBody(sc, task.Decls, task.Stmts, v)
	if err != nil {
		return nil, err
	}
	return &ast.Task{Lifetime: task.Lifetime, Name: task.Name, Decls: decls, Stmts: stmts}, nil
}

func walkBody[T any](sc *Scopes[T], decls []ast.Decl, stmts []ast.Stmt, v Visitor[T]) ([]ast.Decl, []ast.Stmt, error) {
	outDecls := make([]ast.Decl, 0, len(decls))
	for _, d := range decls {
		d2, err := walkDecl(sc, d, v)
		if err != nil {
			return nil, nil, err
		}
		outDecls = append(outDecls, d2)
	}
	outStmts := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		s2, err := walkStmt(sc, s, v)
		if err != nil {
			return nil, nil, err
		}
		outStmts = append(outStmts, s2)
	}
	return outDecls, outStmts, nil
}

func walkStmt[T any](sc *Scopes[T], s ast.Stmt, v Visitor[T]) (ast.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	if v.Stmt != nil {
		var err error
		s, err = v.Stmt(sc, s)
		if err != nil {
			return nil, err
		}
	}
	s = traverse.StmtExprs(s, v.exprMapper(sc))
	if v.LHS != nil {
		s = traverse.StmtLHSs(s, func(l ast.LHS) ast.LHS { return v.LHS(sc, l) })
	}

	switch s := s.(type) {
	case *ast.Block:
		// unnamed blocks share their enclosing frame
		if s.Name != "" {
			sc.Enter(s.Name)
			defer sc.Exit()
		}
		decls, stmts, err := walkBody(sc, s.Decls, s.Stmts, v)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Par: s.Par, Name: s.Name, Decls: decls, Stmts: stmts}, nil
	case *ast.If:
		thenStmt, err := walkStmt(sc, s.Then, v)
		if err != nil {
			return nil, err
		}
		elseStmt, err := walkStmt(sc, s.Else, v)
		if err != nil {
			return nil, err
		}
		return &ast.If{Cond: s.Cond, Then: thenStmt, Else: elseStmt}, nil
	case *ast.Case:
		items := make([]ast.CaseItem, len(s.Items))
		for i, item := range s.Items {
			stmt, err := walkStmt(sc, item.Stmt, v)
			if err != nil {
				return nil, err
			}
			items[i] = ast.CaseItem{Exprs: item.Exprs, Stmt: stmt}
		}
		defaultStmt, err := walkStmt(sc, s.Default, v)
		if err != nil {
			return nil, err
		}
		return &ast.Case{Kind: s.Kind, Subject: s.Subject, Items: items, Default: defaultStmt}, nil
	case *ast.For:
		body, err := walkStmt(sc, s.Body, v)
		if err != nil {
			return nil, err
		}
		return &ast.For{Inits: s.Inits, Cond: s.Cond, Steps: s.Steps, Body: body}, nil
	case *ast.While:
		body, err := walkStmt(sc, s.Body, v)
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: s.Cond, Body: body}, nil
	case *ast.Timing:
		inner, err := walkStmt(sc, s.Stmt, v)
		if err != nil {
			return nil, err
		}
		return &ast.Timing{Event: s.Event, Stmt: inner}, nil
	default:
		return s, nil
	}
}

func walkModuleItems[T any](sc *Scopes[T], items []ast.ModuleItem, v Visitor[T]) ([]ast.ModuleItem, error) {
	out := make([]ast.ModuleItem, 0, len(items))
	for _, item := range items {
		item2, err := walkModuleItem(sc, item, v)
		if err != nil {
			return nil, err
		}
		out = append(out, item2)
	}
	return out, nil
}

func walkModuleItem[T any](sc *Scopes[T], mi ast.ModuleItem, v Visitor[T]) (ast.ModuleItem, error) {
	if v.ModuleItem != nil {
		var err error
		mi, err = v.ModuleItem(sc, mi)
		if err != nil {
			return nil, err
		}
	}
	mi = traverse.ModuleItemExprs(mi, v.exprMapper(sc))
	if v.Type != nil {
		if inst, ok := mi.(*ast.Instance); ok {
			params := make([]ast.ParamBinding, len(inst.Params))
			for i, b := range inst.Params {
				if b.Value.Type != nil {
					b.Value.Type = traverse.Types(b.Value.Type, v.typeMapper(sc))
				}
				params[i] = b
			}
			mi = &ast.Instance{Module: inst.Module, Params: params, Name: inst.Name, Ports: inst.Ports}
		}
	}

	switch mi := mi.(type) {
	case *ast.Generate:
		items := make([]ast.GenItem, len(mi.Items))
		for i, g := range mi.Items {
			g2, err := walkGenItem(sc, g, v)
			if err != nil {
				return nil, err
			}
			items[i] = g2
		}
		return &ast.Generate{Items: items}, nil
	case *ast.AlwaysBlock:
		stmt, err := walkStmt(sc, mi.Stmt, v)
		if err != nil {
			return nil, err
		}
		return &ast.AlwaysBlock{Kind: mi.Kind, Stmt: stmt}, nil
	case *ast.Initial:
		stmt, err := walkStmt(sc, mi.Stmt, v)
		if err != nil {
			return nil, err
		}
		return &ast.Initial{Stmt: stmt}, nil
	case *ast.Function:
		item, err := walkFunction(sc, mi, v)
		if err != nil {
			return nil, err
		}
		return item.(ast.ModuleItem), nil
	case *ast.Task:
		item, err := walkTask(sc, mi, v)
		if err != nil {
			return nil, err
		}
		return item.(ast.ModuleItem), nil
	case *ast.Typedef:
		t := traverse.Types(mi.Type, v.typeMapper(sc))
		t = traverse.TypeExprs(t, v.exprMapper(sc))
		return &ast.Typedef{Type: t, Name: mi.Name}, nil
	case ast.Decl:
		return walkDecl(sc, mi, v)
	default:
		return mi, nil
	}
}

func walkGenItem[T any](sc *Scopes[T], g ast.GenItem, v Visitor[T]) (ast.GenItem, error) {
	if g == nil {
		return nil, nil
	}
	if v.GenItem != nil {
		var err error
		g, err = v.GenItem(sc, g)
		if err != nil {
			return nil, err
		}
	}
	switch g := g.(type) {
	case *ast.GenBlock:
		if g.Name != "" {
			sc.Enter(g.Name)
			defer sc.Exit()
		}
		items := make([]ast.GenItem, len(g.Items))
		for i, item := range g.Items {
			item2, err := walkGenItem(sc, item, v)
			if err != nil {
				return nil, err
			}
			items[i] = item2
		}
		return &ast.GenBlock{Name: g.Name, Items: items}, nil
	case *ast.GenIf:
		cond := traverse.Exprs(g.Cond, v.exprMapper(sc))
		thenItem, err := walkGenItem(sc, g.Then, v)
		if err != nil {
			return nil, err
		}
		elseItem, err := walkGenItem(sc, g.Else, v)
		if err != nil {
			return nil, err
		}
		return &ast.GenIf{Cond: cond, Then: thenItem, Else: elseItem}, nil
	case *ast.GenFor:
		initExpr := traverse.Exprs(g.InitExpr, v.exprMapper(sc))
		cond := traverse.Exprs(g.Cond, v.exprMapper(sc))
		stepExpr := traverse.Exprs(g.StepExpr, v.exprMapper(sc))
		// a named loop body sees the genvar as its frame index
		if block, ok := g.Body.(*ast.GenBlock); ok && block.Name != "" {
			sc.Enter(block.Name)
			sc.SetIndex(&ast.Ident{Name: g.InitName})
			items := make([]ast.GenItem, len(block.Items))
			var err error
			for i, item := range block.Items {
				items[i], err = walkGenItem(sc, item, v)
				if err != nil {
					sc.Exit()
					return nil, err
				}
			}
			sc.Exit()
			return &ast.GenFor{
				InitName: g.InitName, InitExpr: initExpr,
				Cond:     cond,
				StepName: g.StepName, StepExpr: stepExpr,
				Body: &ast.GenBlock{Name: block.Name, Items: items},
			}, nil
		}
		body, err := walkGenItem(sc, g.Body, v)
		if err != nil {
			return nil, err
		}
		return &ast.GenFor{
			InitName: g.InitName, InitExpr: initExpr,
			Cond:     cond,
			StepName: g.StepName, StepExpr: stepExpr,
			Body: body,
		}, nil
	case ast.ModuleItem:
		mi, err := walkModuleItem(sc, g, v)
		if err != nil {
			return nil, err
		}
		// a rewrite may produce a generate wrapper; inside a generate
		// region its items stand on their own
		if gen, ok := mi.(*ast.Generate); ok {
			if len(gen.Items) == 1 {
				return gen.Items[0], nil
			}
			return &ast.GenBlock{Items: gen.Items}, nil
		}
		return mi.(ast.GenItem), nil
	default:
		return g, nil
	}
}
