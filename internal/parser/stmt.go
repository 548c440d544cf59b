package parser

import (
	"sv2v/internal/ast"
	"sv2v/internal/token"
)

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.atKeyword("begin") || p.atKeyword("fork"):
		return p.parseBlock()
	case p.atKeyword("if"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		thenStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		var elseStmt ast.Stmt
		if p.eatKeyword("else") {
			elseStmt, err = p.parseStmt()
			if err != nil {
				return nil, err
			}
		}
		return &ast.If{Cond: cond, Then: thenStmt, Else: elseStmt}, nil
	case p.atKeyword("case") || p.atKeyword("casex") || p.atKeyword("casez"):
		return p.parseCase()
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("while"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		body, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body}, nil
	case p.atSymbol("@"):
		event, err := p.parseEvent()
		if err != nil {
			return nil, err
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &ast.Timing{Event: event, Stmt: stmt}, nil
	case p.atKeyword("return"):
		p.advance()
		var expr ast.Expr
		if !p.atSymbol(";") {
			parsed, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			expr = parsed
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return &ast.Return{Expr: expr}, nil
	case p.eatSymbol(";"):
		return &ast.Null{}, nil
	case p.peek().Kind == token.SysIdent:
		fn := &ast.Ident{Name: p.advance().Text}
		var args []ast.Expr
		if p.atSymbol("(") {
			parsed, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			args = parsed
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return &ast.Subroutine{Fn: fn, Args: args}, nil
	default:
		return p.parseAssignOrCall()
	}
}

func (p *parser) parseBlock() (ast.Stmt, error) {
	par := p.peek().Text == "fork"
	p.advance()
	name := ""
	if p.eatSymbol(":") {
		parsed, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		name = parsed
	}

	var decls []ast.Decl
	for p.startsDecl() {
		dir := p.parseDirection()
		t, err := p.parseDeclType()
		if err != nil {
			return nil, err
		}
		parsed, err := p.parseDataDecl(dir, t)
		if err != nil {
			return nil, err
		}
		decls = append(decls, parsed...)
	}

	endKw := "end"
	if par {
		endKw = "join"
	}
	var stmts []ast.Stmt
	for !p.atKeyword(endKw) {
		if p.atEOF() {
			return nil, p.errExpected("'" + endKw + "'")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	if p.eatSymbol(":") {
		if _, err := p.expectIdent(); err != nil {
			return nil, err
		}
	}
	return &ast.Block{Par: par, Name: name, Decls: decls, Stmts: stmts}, nil
}

func (p *parser) parseCase() (ast.Stmt, error) {
	kind := map[string]ast.CaseKw{
		"case": ast.CaseN, "casex": ast.CaseX, "casez": ast.CaseZ,
	}[p.advance().Text]
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	subject, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}

	var items []ast.CaseItem
	var defaultStmt ast.Stmt
	for !p.atKeyword("endcase") {
		if p.atEOF() {
			return nil, p.errExpected("'endcase'")
		}
		if p.eatKeyword("default") {
			p.eatSymbol(":")
			stmt, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			defaultStmt = stmt
			continue
		}
		var exprs []ast.Expr
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, e)
			if p.eatSymbol(",") {
				continue
			}
			break
		}
		if err := p.expectSymbol(":"); err != nil {
			return nil, err
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		items = append(items, ast.CaseItem{Exprs: exprs, Stmt: stmt})
	}
	p.advance()
	return &ast.Case{Kind: kind, Subject: subject, Items: items, Default: defaultStmt}, nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	p.advance() // for
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	inits, err := p.parseAsgnList(";")
	if err != nil {
		return nil, err
	}
	var cond ast.Expr
	if !p.atSymbol(";") {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	steps, err := p.parseAsgnList(")")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.For{Inits: inits, Cond: cond, Steps: steps, Body: body}, nil
}

// parseAsgnList reads comma-separated blocking assignments up to (but
// not past) the given closing symbol, which it consumes.
func (p *parser) parseAsgnList(closing string) ([]*ast.Asgn, error) {
	var asgns []*ast.Asgn
	if p.eatSymbol(closing) {
		return asgns, nil
	}
	for {
		lhs, err := p.parseLHS()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		asgns = append(asgns, &ast.Asgn{Blocking: true, LHS: lhs, Expr: expr})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(closing); err != nil {
		return nil, err
	}
	return asgns, nil
}

func (p *parser) parseEvent() (ast.Event, error) {
	p.advance() // @
	if p.eatSymbol("*") {
		return ast.Event{Star: true}, nil
	}
	if err := p.expectSymbol("("); err != nil {
		return ast.Event{}, err
	}
	if p.eatSymbol("*") {
		if err := p.expectSymbol(")"); err != nil {
			return ast.Event{}, err
		}
		return ast.Event{Star: true}, nil
	}
	var items []ast.EventItem
	for {
		edge := ast.NoEdge
		switch {
		case p.eatKeyword("posedge"):
			edge = ast.Posedge
		case p.eatKeyword("negedge"):
			edge = ast.Negedge
		}
		expr, err := p.parseExpr()
		if err != nil {
			return ast.Event{}, err
		}
		items = append(items, ast.EventItem{Edge: edge, Expr: expr})
		if p.eatKeyword("or") || p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return ast.Event{}, err
	}
	return ast.Event{Items: items}, nil
}

// parseAssignOrCall handles statements led by an assignable reference:
// blocking/nonblocking assignments and task enables.
func (p *parser) parseAssignOrCall() (ast.Stmt, error) {
	if p.peek().Kind == token.Ident &&
		p.peekAt(1).Kind == token.Symbol && p.peekAt(1).Text == "(" {
		fn := &ast.Ident{Name: p.advance().Text}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return &ast.Subroutine{Fn: fn, Args: args}, nil
	}
	if p.peek().Kind == token.Ident &&
		p.peekAt(1).Kind == token.Symbol && p.peekAt(1).Text == ";" {
		fn := &ast.Ident{Name: p.advance().Text}
		p.advance() // ;
		return &ast.Subroutine{Fn: fn}, nil
	}

	lhs, err := p.parseLHS()
	if err != nil {
		return nil, err
	}
	blocking := true
	switch {
	case p.eatSymbol("="):
	case p.eatSymbol("<="):
		blocking = false
	default:
		return nil, p.errExpected("'=' or '<='")
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ast.Asgn{Blocking: blocking, LHS: lhs, Expr: expr}, nil
}

// parseLHS parses an assignment target.
func (p *parser) parseLHS() (ast.LHS, error) {
	if p.atSymbol("{") {
		p.advance()
		var items []ast.LHS
		for {
			item, err := p.parseLHS()
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
		return &ast.LHSConcat{Items: items}, nil
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var lhs ast.LHS = &ast.LHSIdent{Name: name}
	for {
		switch {
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
				lhs = &ast.LHSBit{Base: lhs, Index: first}
				continue
			}
			second, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol("]"); err != nil {
				return nil, err
			}
			lhs = &ast.LHSRange{Base: lhs, Mode: mode, L: first, R: second}
		case p.atSymbol(".") :
			p.advance()
			field, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			lhs = &ast.LHSDot{Base: lhs, Field: field}
		default:
			return lhs, nil
		}
	}
}
