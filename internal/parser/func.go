package parser

import (
	"sv2v/internal/ast"
	"sv2v/internal/token"
)

func (p *parser) parseFunction() (ast.PackageItem, error) {
	p.advance() // function
	lifetime := p.parseLifetime()

	var retType ast.Type
	switch {
	case p.eatKeyword("void"):
	case p.startsType():
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		retType = t
	case p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Ident:
		t, err := p.parseAliasType()
		if err != nil {
			return nil, err
		}
		retType = t
	case p.atSymbol("["):
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		retType = &ast.Implicit{Ranges: ranges}
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decls, err := p.parseRoutineHeaderPorts()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	bodyDecls, stmts, err := p.parseRoutineBody("endfunction")
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Lifetime: lifetime,
		RetType:  retType,
		Name:     name,
		Decls:    append(decls, bodyDecls...),
		Stmts:    stmts,
	}, nil
}

func (p *parser) parseTask() (ast.PackageItem, error) {
	p.advance() // task
	lifetime := p.parseLifetime()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	decls, err := p.parseRoutineHeaderPorts()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	bodyDecls, stmts, err := p.parseRoutineBody("endtask")
	if err != nil {
		return nil, err
	}
	return &ast.Task{
		Lifetime: lifetime,
		Name:     name,
		Decls:    append(decls, bodyDecls...),
		Stmts:    stmts,
	}, nil
}

// parseRoutineHeaderPorts parses an optional ANSI port list on a
// function or task header.
func (p *parser) parseRoutineHeaderPorts() ([]ast.Decl, error) {
	if !p.eatSymbol("(") {
		return nil, nil
	}
	var decls []ast.Decl
	if p.eatSymbol(")") {
		return decls, nil
	}
	dir := ast.Input
	var declType ast.Type = &ast.Implicit{}
	for {
		if newDir := p.parseDirection(); newDir != ast.DirNone {
			dir = newDir
			declType = &ast.Implicit{}
		}
		if p.startsType() {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			declType = t
		} else if p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Ident {
			t, err := p.parseAliasType()
			if err != nil {
				return nil, err
			}
			declType = t
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		dims, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		decls = append(decls, &ast.Variable{Dir: dir, Type: declType, Name: name, Dims: dims})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return decls, nil
}

// parseRoutineBody reads leading declarations and then statements until
// the closing keyword.
func (p *parser) parseRoutineBody(endKw string) ([]ast.Decl, []ast.Stmt, error) {
	var decls []ast.Decl
	for p.startsDecl() {
		dir := p.parseDirection()
		t, err := p.parseDeclType()
		if err != nil {
			return nil, nil, err
		}
		parsed, err := p.parseDataDecl(dir, t)
		if err != nil {
			return nil, nil, err
		}
		decls = append(decls, parsed...)
	}

	var stmts []ast.Stmt
	for !p.atKeyword(endKw) {
		if p.atEOF() {
			return nil, nil, p.errExpected("'" + endKw + "'")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance()
	if p.eatSymbol(":") {
		if _, err := p.expectIdent(); err != nil {
			return nil, nil, err
		}
	}
	return decls, stmts, nil
}

// startsDecl reports whether the next tokens begin a local declaration
// rather than a statement.
func (p *parser) startsDecl() bool {
	if p.atKeyword("input") || p.atKeyword("output") || p.atKeyword("inout") {
		return true
	}
	if p.startsType() {
		return true
	}
	return p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Ident
}
