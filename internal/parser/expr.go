package parser

import (
	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/token"
)

// binOps maps operator text to the AST operator and its binding power.
var binOps = map[string]struct {
	op   ast.BinOpTy
	prec int
}{
	"||":  {ast.LogicOr, 2},
	"&&":  {ast.LogicAnd, 3},
	"|":   {ast.BitOr, 4},
	"^":   {ast.BitXor, 5},
	"~^":  {ast.BitXnor, 5},
	"^~":  {ast.BitXnor, 5},
	"&":   {ast.BitAnd, 6},
	"==":  {ast.Eq, 7},
	"!=":  {ast.Ne, 7},
	"===": {ast.TEq, 7},
	"!==": {ast.TNe, 7},
	"<":   {ast.Lt, 8},
	"<=":  {ast.Le, 8},
	">":   {ast.Gt, 8},
	">=":  {ast.Ge, 8},
	"<<":  {ast.ShiftL, 9},
	">>":  {ast.ShiftR, 9},
	"<<<": {ast.ShiftAL, 9},
	">>>": {ast.ShiftAR, 9},
	"+":   {ast.Add, 10},
	"-":   {ast.Sub, 10},
	"*":   {ast.Mul, 11},
	"/":   {ast.Div, 11},
	"%":   {ast.Mod, 11},
	"**":  {ast.Pow, 12},
}

var uniOps = map[string]ast.UniOpTy{
	"!":  ast.LogicNot,
	"~":  ast.BitNot,
	"+":  ast.UniAdd,
	"-":  ast.UniSub,
	"&":  ast.RedAnd,
	"|":  ast.RedOr,
	"^":  ast.RedXor,
	"~&": ast.RedNand,
	"~|": ast.RedNor,
	"~^": ast.RedXnor,
}

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseTernary()
}

func (p *parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseBinary(2)
	if err != nil {
		return nil, err
	}
	if !p.eatSymbol("?") {
		return cond, nil
	}
	thenExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Mux{Cond: cond, T: thenExpr, F: elseExpr}, nil
}

func (p *parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != token.Symbol {
			return left, nil
		}
		entry, ok := binOps[tok.Text]
		if !ok || entry.prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(entry.prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Op: entry.op, L: left, R: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	tok := p.peek()
	if tok.Kind == token.Symbol {
		if op, ok := uniOps[tok.Text]; ok {
			// binary-capable symbols only act as prefixes here
			p.advance()
			arg, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &ast.UniOp{Op: op, Arg: arg}, nil
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atSymbol("("):
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Fn: expr, Args: args}
		case p.atSymbol("["):
			p.advance()
			first, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			mode := ast.PartColon
			switch {
			case p.eatSymbol(":"):
			case p.eatSymbol("+:"):
				mode = ast.PartPlus
			case p.eatSymbol("-:"):
				mode = ast.PartMinus
			default:
				if err := p.expectSymbol("]"); err != nil {
					return nil, err
				}
				expr = &ast.Bit{Base: expr, Index: first}
				continue
			}
			second, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol("]"); err != nil {
				return nil, err
			}
			expr = &ast.PartSelect{Base: expr, Mode: mode, L: first, R: second}
		case p.atSymbol("."):
			p.advance()
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			expr = &ast.Dot{Base: expr, Field: field}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseCallArgs() ([]ast.Expr, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if p.eatSymbol(")") {
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Number:
		p.advance()
		return &ast.Number{Text: tok.Text}, nil
	case token.Str:
		p.advance()
		return &ast.Str{Text: tok.Text}, nil
	case token.SysIdent:
		p.advance()
		return &ast.Ident{Name: tok.Text}, nil
	case token.Ident:
		return p.parseIdentExpr()
	}

	switch {
	case p.atSymbol("("):
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.atSymbol("{"):
		return p.parseConcat()
	}
	return nil, p.errorAt(diag.SynExpectExpression, "expected expression, found %s", p.describe())
}

// parseIdentExpr handles plain, package-scoped, and class-scoped
// references.
func (p *parser) parseIdentExpr() (ast.Expr, error) {
	name := p.advance().Text
	switch {
	case p.atSymbol("::"):
		p.advance()
		member, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.PSIdent{Package: name, Name: member}, nil
	case p.atSymbol("#") && p.peekAt(1).Kind == token.Symbol && p.peekAt(1).Text == "(":
		save := p.pos
		p.advance()
		bindings, err := p.parseParamBindings()
		if err != nil {
			return nil, err
		}
		if !p.eatSymbol("::") {
			// not a class scope after all
			p.pos = save
			return &ast.Ident{Name: name}, nil
		}
		member, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return &ast.CSIdent{Class: name, Bindings: bindings, Name: member}, nil
	default:
		return &ast.Ident{Name: name}, nil
	}
}

// parseConcat reads {a, b} concatenations and {n{a}} replications.
func (p *parser) parseConcat() (ast.Expr, error) {
	p.advance() // {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atSymbol("{") {
		p.advance()
		var items []ast.Expr
		for {
			item, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.eatSymbol(",") {
				continue
			}
			break
		}
		if err := p.expectSymbol("}"); err != nil {
			return nil, err
		}
		if err := p.expectSymbol("}"); err != nil {
			return nil, err
		}
		return &ast.Repeat{Count: first, Items: items}, nil
	}

	items := []ast.Expr{first}
	for p.eatSymbol(",") {
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	return &ast.Concat{Items: items}, nil
}
