package ast

import (
	"strings"
)

// LHS is the assignment target family.
type LHS interface {
	isLHS()
	String() string
}

type LHSIdent struct {
	Name string
}

type LHSBit struct {
	Base  LHS
	Index Expr
}

type LHSRange struct {
	Base LHS
	Mode PartMode
	L    Expr
	R    Expr
}

type LHSDot struct {
	Base  LHS
	Field string
}

type LHSConcat struct {
	Items []LHS
}

func (*LHSIdent) isLHS()  {}
func (*LHSBit) isLHS()    {}
func (*LHSRange) isLHS()  {}
func (*LHSDot) isLHS()    {}
func (*LHSConcat) isLHS() {}

func (l *LHSIdent) String() string { return l.Name }

func (l *LHSBit) String() string {
	return l.Base.String() + "[" + l.Index.String() + "]"
}

func (l *LHSRange) String() string {
	return l.Base.String() + "[" + l.L.String() + l.Mode.String() + l.R.String() + "]"
}

func (l *LHSDot) String() string {
	return l.Base.String() + "." + l.Field
}

func (l *LHSConcat) String() string {
	items := make([]string, len(l.Items))
	for i, it := range l.Items {
		items[i] = it.String()
	}
	return "{" + strings.Join(items, ", ") + "}"
}

// LHSToExpr rebuilds the expression form of an assignment target.
func LHSToExpr(l LHS) Expr {
	switch l := l.(type) {
	case *LHSIdent:
		return &Ident{Name: l.Name}
	case *LHSBit:
		return &Bit{Base: LHSToExpr(l.Base), Index: l.Index}
	case *LHSRange:
		return &PartSelect{Base: LHSToExpr(l.Base), Mode: l.Mode, L: l.L, R: l.R}
	case *LHSDot:
		return &Dot{Base: LHSToExpr(l.Base), Field: l.Field}
	case *LHSConcat:
		items := make([]Expr, len(l.Items))
		for i, it := range l.Items {
			items[i] = LHSToExpr(it)
		}
		return &Concat{Items: items}
	}
	return nil
}

// ExprToLHS converts an expression to an assignment target where possible.
func ExprToLHS(e Expr) (LHS, bool) {
	switch e := e.(type) {
	case *Ident:
		return &LHSIdent{Name: e.Name}, true
	case *Bit:
		base, ok := ExprToLHS(e.Base)
		if !ok {
			return nil, false
		}
		return &LHSBit{Base: base, Index: e.Index}, true
	case *PartSelect:
		base, ok := ExprToLHS(e.Base)
		if !ok {
			return nil, false
		}
		return &LHSRange{Base: base, Mode: e.Mode, L: e.L, R: e.R}, true
	case *Dot:
		base, ok := ExprToLHS(e.Base)
		if !ok {
			return nil, false
		}
		return &LHSDot{Base: base, Field: e.Field}, true
	case *Concat:
		items := make([]LHS, len(e.Items))
		for i, it := range e.Items {
			inner, ok := ExprToLHS(it)
			if !ok {
				return nil, false
			}
			items[i] = inner
		}
		return &LHSConcat{Items: items}, true
	}
	return nil, false
}
