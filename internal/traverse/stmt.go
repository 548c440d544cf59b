package traverse

import (
	"sv2v/internal/ast"
)

// Stmts maps f over every statement nested directly or indirectly inside
// s, post-order, rebuilding the statement tree. f also receives s itself.
func Stmts(s ast.Stmt, f StmtMapper) ast.Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *ast.Block:
		stmts := make([]ast.Stmt, len(s.Stmts))
		for i, st := range s.Stmts {
			stmts[i] = Stmts(st, f)
		}
		return f(&ast.Block{Par: s.Par, Name: s.Name, Decls: s.Decls, Stmts: stmts})
	case *ast.If:
		return f(&ast.If{Cond: s.Cond, Then: Stmts(s.Then, f), Else: Stmts(s.Else, f)})
	case *ast.Case:
		items := make([]ast.CaseItem, len(s.Items))
		for i, item := range s.Items {
			items[i] = ast.CaseItem{Exprs: item.Exprs, Stmt: Stmts(item.Stmt, f)}
		}
		return f(&ast.Case{Kind: s.Kind, Subject: s.Subject, Items: items, Default: Stmts(s.Default, f)})
	case *ast.For:
		return f(&ast.For{Inits: s.Inits, Cond: s.Cond, Steps: s.Steps, Body: Stmts(s.Body, f)})
	case *ast.While:
		return f(&ast.While{Cond: s.Cond, Body: Stmts(s.Body, f)})
	case *ast.Timing:
		return f(&ast.Timing{Event: s.Event, Stmt: Stmts(s.Stmt, f)})
	default:
		return f(s)
	}
}

// StmtExprs maps f over every expression occurring directly in this
// statement node, without recursing into child statements. Child
// statements keep their own expressions untouched; walk them separately.
func StmtExprs(s ast.Stmt, f ExprMapper) ast.Stmt {
	if s == nil {
		return nil
	}
	switch s := s.(type) {
	case *ast.Block:
		return s
	case *ast.If:
		return &ast.If{Cond: Exprs(s.Cond, f), Then: s.Then, Else: s.Else}
	case *ast.Asgn:
		return &ast.Asgn{Blocking: s.Blocking, LHS: LHSExprs(s.LHS, f), Expr: Exprs(s.Expr, f)}
	case *ast.Case:
		items := make([]ast.CaseItem, len(s.Items))
		for i, item := range s.Items {
			items[i] = ast.CaseItem{Exprs: exprList(item.Exprs, f), Stmt: item.Stmt}
		}
		return &ast.Case{Kind: s.Kind, Subject: Exprs(s.Subject, f), Items: items, Default: s.Default}
	case *ast.For:
		return &ast.For{Inits: asgnExprs(s.Inits, f), Cond: Exprs(s.Cond, f), Steps: asgnExprs(s.Steps, f), Body: s.Body}
	case *ast.While:
		return &ast.While{Cond: Exprs(s.Cond, f), Body: s.Body}
	case *ast.Timing:
		items := make([]ast.EventItem, len(s.Event.Items))
		for i, item := range s.Event.Items {
			items[i] = ast.EventItem{Edge: item.Edge, Expr: Exprs(item.Expr, f)}
		}
		return &ast.Timing{Event: ast.Event{Star: s.Event.Star, Items: items}, Stmt: s.Stmt}
	case *ast.Subroutine:
		return &ast.Subroutine{Fn: Exprs(s.Fn, f), Args: exprList(s.Args, f)}
	case *ast.Return:
		return &ast.Return{Expr: Exprs(s.Expr, f)}
	default:
		return s
	}
}

func asgnExprs(asgns []*ast.Asgn, f ExprMapper) []*ast.Asgn {
	if asgns == nil {
		return nil
	}
	out := make([]*ast.Asgn, len(asgns))
	for i, a := range asgns {
		out[i] = &ast.Asgn{Blocking: a.Blocking, LHS: LHSExprs(a.LHS, f), Expr: Exprs(a.Expr, f)}
	}
	return out
}

// StmtLHSs maps f over the assignment targets of this statement node,
// without recursing into child statements.
func StmtLHSs(s ast.Stmt, f LHSMapper) ast.Stmt {
	switch s := s.(type) {
	case *ast.Asgn:
		return &ast.Asgn{Blocking: s.Blocking, LHS: f(s.LHS), Expr: s.Expr}
	case *ast.For:
		return &ast.For{Inits: asgnLHSs(s.Inits, f), Cond: s.Cond, Steps: asgnLHSs(s.Steps, f), Body: s.Body}
	default:
		return s
	}
}

func asgnLHSs(asgns []*ast.Asgn, f LHSMapper) []*ast.Asgn {
	if asgns == nil {
		return nil
	}
	out := make([]*ast.Asgn, len(asgns))
	for i, a := range asgns {
		out[i] = &ast.Asgn{Blocking: a.Blocking, LHS: f(a.LHS), Expr: a.Expr}
	}
	return out
}

// DeclExprs maps f over every expression occurring inside a declaration,
// including those buried in its type.
func DeclExprs(d ast.Decl, f ExprMapper) ast.Decl {
	switch d := d.(type) {
	case *ast.Variable:
		return &ast.Variable{
			Dir:  d.Dir,
			Type: TypeExprs(d.Type, f),
			Name: d.Name,
			Dims: rangeExprs(d.Dims, f),
			Init: Exprs(d.Init, f),
		}
	case *ast.Param:
		return &ast.Param{Scope: d.Scope, Type: TypeExprs(d.Type, f), Name: d.Name, Value: Exprs(d.Value, f)}
	case *ast.ParamType:
		return &ast.ParamType{Scope: d.Scope, Name: d.Name, Type: TypeExprs(d.Type, f)}
	default:
		return d
	}
}

// DeclTypes maps f over the types of a declaration, deeply.
func DeclTypes(d ast.Decl, f TypeMapper) ast.Decl {
	switch d := d.(type) {
	case *ast.Variable:
		return &ast.Variable{Dir: d.Dir, Type: Types(d.Type, f), Name: d.Name, Dims: d.Dims, Init: d.Init}
	case *ast.Param:
		return &ast.Param{Scope: d.Scope, Type: Types(d.Type, f), Name: d.Name, Value: d.Value}
	case *ast.ParamType:
		return &ast.ParamType{Scope: d.Scope, Name: d.Name, Type: Types(d.Type, f)}
	default:
		return d
	}
}
