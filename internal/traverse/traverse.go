// Package traverse provides generic bottom-up walkers over the AST
// families. Mappers rebuild parent nodes from transformed children;
// collectors are identity mappers with side effects. All walkers are pure
// with respect to the input tree: nodes are reconstructed, never mutated.
package traverse

import (
	"sv2v/internal/ast"
)

type (
	ExprMapper func(ast.Expr) ast.Expr
	TypeMapper func(ast.Type) ast.Type
	StmtMapper func(ast.Stmt) ast.Stmt
	LHSMapper  func(ast.LHS) ast.LHS
)

// Exprs maps f over e and every nested subexpression, post-order.
func Exprs(e ast.Expr, f ExprMapper) ast.Expr {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *ast.CSIdent:
		return f(&ast.CSIdent{
			Class:    e.Class,
			Bindings: bindingExprs(e.Bindings, f),
			Name:     e.Name,
		})
	case *ast.Call:
		return f(&ast.Call{Fn: Exprs(e.Fn, f), Args: exprList(e.Args, f)})
	case *ast.UniOp:
		return f(&ast.UniOp{Op: e.Op, Arg: Exprs(e.Arg, f)})
	case *ast.BinOp:
		return f(&ast.BinOp{Op: e.Op, L: Exprs(e.L, f), R: Exprs(e.R, f)})
	case *ast.Mux:
		return f(&ast.Mux{Cond: Exprs(e.Cond, f), T: Exprs(e.T, f), F: Exprs(e.F, f)})
	case *ast.Bit:
		return f(&ast.Bit{Base: Exprs(e.Base, f), Index: Exprs(e.Index, f)})
	case *ast.PartSelect:
		return f(&ast.PartSelect{Base: Exprs(e.Base, f), Mode: e.Mode, L: Exprs(e.L, f), R: Exprs(e.R, f)})
	case *ast.Concat:
		return f(&ast.Concat{Items: exprList(e.Items, f)})
	case *ast.Repeat:
		return f(&ast.Repeat{Count: Exprs(e.Count, f), Items: exprList(e.Items, f)})
	case *ast.Dot:
		return f(&ast.Dot{Base: Exprs(e.Base, f), Field: e.Field})
	default:
		// Ident, PSIdent, Number, Str
		return f(e)
	}
}

func exprList(es []ast.Expr, f ExprMapper) []ast.Expr {
	if es == nil {
		return nil
	}
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = Exprs(e, f)
	}
	return out
}

func bindingExprs(bs []ast.ParamBinding, f ExprMapper) []ast.ParamBinding {
	if bs == nil {
		return nil
	}
	out := make([]ast.ParamBinding, len(bs))
	for i, b := range bs {
		v := b.Value
		if v.Expr != nil {
			v.Expr = Exprs(v.Expr, f)
		}
		if v.Type != nil {
			v.Type = TypeExprs(v.Type, f)
		}
		out[i] = ast.ParamBinding{Name: b.Name, Value: v}
	}
	return out
}

func rangeExprs(rs []ast.Range, f ExprMapper) []ast.Range {
	if rs == nil {
		return nil
	}
	out := make([]ast.Range, len(rs))
	for i, r := range rs {
		out[i] = ast.Range{L: Exprs(r.L, f), R: Exprs(r.R, f)}
	}
	return out
}

// TypeExprs maps f over every expression occurring inside a type.
func TypeExprs(t ast.Type, f ExprMapper) ast.Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *ast.IntegerVector:
		return &ast.IntegerVector{Kind: t.Kind, Sign: t.Sign, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.Net:
		return &ast.Net{Kind: t.Kind, Sign: t.Sign, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.Implicit:
		return &ast.Implicit{Sign: t.Sign, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.Alias:
		return &ast.Alias{Name: t.Name, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.PSAlias:
		return &ast.PSAlias{Package: t.Package, Name: t.Name, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.CSAlias:
		return &ast.CSAlias{Class: t.Class, Bindings: bindingExprs(t.Bindings, f), Name: t.Name, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.Enum:
		items := make([]ast.EnumItem, len(t.Items))
		for i, item := range t.Items {
			items[i] = ast.EnumItem{Name: item.Name, Value: Exprs(item.Value, f)}
		}
		return &ast.Enum{Base: TypeExprs(t.Base, f), Items: items, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.Struct:
		return &ast.Struct{Packed: t.Packed, Sign: t.Sign, Fields: fieldExprs(t.Fields, f), Ranges: rangeExprs(t.Ranges, f)}
	case *ast.Union:
		return &ast.Union{Packed: t.Packed, Sign: t.Sign, Fields: fieldExprs(t.Fields, f), Ranges: rangeExprs(t.Ranges, f)}
	case *ast.InterfaceT:
		return &ast.InterfaceT{Name: t.Name, Modport: t.Modport, Ranges: rangeExprs(t.Ranges, f)}
	case *ast.TypeOf:
		return &ast.TypeOf{Expr: Exprs(t.Expr, f)}
	case *ast.UnpackedType:
		return &ast.UnpackedType{Inner: TypeExprs(t.Inner, f), Unpacked: rangeExprs(t.Unpacked, f)}
	default:
		// IntegerAtom, NonInteger
		return t
	}
}

func fieldExprs(fields []ast.Field, f ExprMapper) []ast.Field {
	out := make([]ast.Field, len(fields))
	for i, fld := range fields {
		out[i] = ast.Field{Type: TypeExprs(fld.Type, f), Name: fld.Name}
	}
	return out
}

// Types maps f over t and every nested type, post-order.
func Types(t ast.Type, f TypeMapper) ast.Type {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *ast.Enum:
		return f(&ast.Enum{Base: Types(t.Base, f), Items: t.Items, Ranges: t.Ranges})
	case *ast.Struct:
		return f(&ast.Struct{Packed: t.Packed, Sign: t.Sign, Fields: fieldTypes(t.Fields, f), Ranges: t.Ranges})
	case *ast.Union:
		return f(&ast.Union{Packed: t.Packed, Sign: t.Sign, Fields: fieldTypes(t.Fields, f), Ranges: t.Ranges})
	case *ast.CSAlias:
		bindings := make([]ast.ParamBinding, len(t.Bindings))
		for i, b := range t.Bindings {
			v := b.Value
			if v.Type != nil {
				v.Type = Types(v.Type, f)
			}
			bindings[i] = ast.ParamBinding{Name: b.Name, Value: v}
		}
		return f(&ast.CSAlias{Class: t.Class, Bindings: bindings, Name: t.Name, Ranges: t.Ranges})
	case *ast.UnpackedType:
		return f(&ast.UnpackedType{Inner: Types(t.Inner, f), Unpacked: t.Unpacked})
	default:
		return f(t)
	}
}

func fieldTypes(fields []ast.Field, f TypeMapper) []ast.Field {
	out := make([]ast.Field, len(fields))
	for i, fld := range fields {
		out[i] = ast.Field{Type: Types(fld.Type, f), Name: fld.Name}
	}
	return out
}

// LHSExprs maps f over the expressions inside an assignment target.
func LHSExprs(l ast.LHS, f ExprMapper) ast.LHS {
	if l == nil {
		return nil
	}
	switch l := l.(type) {
	case *ast.LHSBit:
		return &ast.LHSBit{Base: LHSExprs(l.Base, f), Index: Exprs(l.Index, f)}
	case *ast.LHSRange:
		return &ast.LHSRange{Base: LHSExprs(l.Base, f), Mode: l.Mode, L: Exprs(l.L, f), R: Exprs(l.R, f)}
	case *ast.LHSDot:
		return &ast.LHSDot{Base: LHSExprs(l.Base, f), Field: l.Field}
	case *ast.LHSConcat:
		items := make([]ast.LHS, len(l.Items))
		for i, it := range l.Items {
			items[i] = LHSExprs(it, f)
		}
		return &ast.LHSConcat{Items: items}
	default:
		return l
	}
}
