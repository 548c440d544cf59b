package ast

import (
	"strings"
)

// Expr is the expression family.
type Expr interface {
	isExpr()
	String() string
}

// Ident is a plain identifier reference.
type Ident struct {
	Name string
}

// PSIdent is a package-scoped reference P::X.
type PSIdent struct {
	Package string
	Name    string
}

// CSIdent is a class-scoped reference C#(bindings)::X.
type CSIdent struct {
	Class    string
	Bindings []ParamBinding
	Name     string
}

// Number is a literal kept verbatim as written.
type Number struct {
	Text string
}

// Str is a string literal kept verbatim, including quotes.
type Str struct {
	Text string
}

// Call applies a function, task, or system task to arguments.
type Call struct {
	Fn   Expr
	Args []Expr
}

type UniOp struct {
	Op  UniOpTy
	Arg Expr
}

type BinOp struct {
	Op BinOpTy
	L  Expr
	R  Expr
}

// Mux is the ternary conditional.
type Mux struct {
	Cond Expr
	T    Expr
	F    Expr
}

// Bit is a single-bit or element select.
type Bit struct {
	Base  Expr
	Index Expr
}

// PartMode distinguishes constant, indexed-ascending, and
// indexed-descending part selects.
type PartMode uint8

const (
	PartColon PartMode = iota
	PartPlus
	PartMinus
)

func (m PartMode) String() string {
	switch m {
	case PartPlus:
		return "+:"
	case PartMinus:
		return "-:"
	}
	return ":"
}

// PartSelect is a part select base[l mode r].
type PartSelect struct {
	Base Expr
	Mode PartMode
	L    Expr
	R    Expr
}

type Concat struct {
	Items []Expr
}

// Repeat is a replicated concatenation {count{items}}.
type Repeat struct {
	Count Expr
	Items []Expr
}

// Dot is a hierarchical or member access base.field.
type Dot struct {
	Base  Expr
	Field string
}

func (*Ident) isExpr()      {}
func (*PSIdent) isExpr()    {}
func (*CSIdent) isExpr()    {}
func (*Number) isExpr()     {}
func (*Str) isExpr()        {}
func (*Call) isExpr()       {}
func (*UniOp) isExpr()      {}
func (*BinOp) isExpr()      {}
func (*Mux) isExpr()        {}
func (*Bit) isExpr()        {}
func (*PartSelect) isExpr() {}
func (*Concat) isExpr()     {}
func (*Repeat) isExpr()     {}
func (*Dot) isExpr()        {}

func (e *Ident) String() string   { return e.Name }
func (e *PSIdent) String() string { return e.Package + "::" + e.Name }

func (e *CSIdent) String() string {
	return e.Class + showParamBindings(e.Bindings) + "::" + e.Name
}

func (e *Number) String() string { return e.Text }
func (e *Str) String() string    { return e.Text }

func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Fn.String() + "(" + strings.Join(args, ", ") + ")"
}

func (e *UniOp) String() string {
	return e.Op.String() + showOperand(e.Arg, 13)
}

func (e *BinOp) String() string {
	prec := e.Op.precedence()
	// left-associative: parenthesize an equal-precedence right child
	return showOperand(e.L, prec) + " " + e.Op.String() + " " + showOperand(e.R, prec+1)
}

func (e *Mux) String() string {
	return showOperand(e.Cond, 2) + " ? " + showOperand(e.T, 2) + " : " + showOperand(e.F, 1)
}

func (e *Bit) String() string {
	return showSelectBase(e.Base) + "[" + e.Index.String() + "]"
}

func (e *PartSelect) String() string {
	return showSelectBase(e.Base) + "[" + e.L.String() + e.Mode.String() + e.R.String() + "]"
}

func (e *Concat) String() string {
	items := make([]string, len(e.Items))
	for i, it := range e.Items {
		items[i] = it.String()
	}
	return "{" + strings.Join(items, ", ") + "}"
}

func (e *Repeat) String() string {
	items := make([]string, len(e.Items))
	for i, it := range e.Items {
		items[i] = it.String()
	}
	return "{" + showOperand(e.Count, 13) + "{" + strings.Join(items, ", ") + "}}"
}

func (e *Dot) String() string {
	return showSelectBase(e.Base) + "." + e.Field
}

// exprPrecedence is the binding strength of an expression as a whole;
// primaries are 13.
func exprPrecedence(e Expr) int {
	switch e := e.(type) {
	case *Mux:
		return 1
	case *BinOp:
		return e.Op.precedence()
	case *UniOp:
		return 12
	default:
		return 13
	}
}

// showOperand parenthesizes e when it binds more loosely than its context.
func showOperand(e Expr, contextPrec int) string {
	if exprPrecedence(e) < contextPrec {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// showSelectBase parenthesizes select bases that are not themselves
// primaries.
func showSelectBase(e Expr) string {
	if exprPrecedence(e) < 13 {
		return "(" + e.String() + ")"
	}
	return e.String()
}
