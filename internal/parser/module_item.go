package parser

import (
	"sv2v/internal/ast"
	"sv2v/internal/token"
)

// parseModuleItem parses one syntactic module item, which may expand to
// several AST items (declarator lists, import lists).
func (p *parser) parseModuleItem() ([]ast.ModuleItem, error) {
	switch {
	case p.peek().Kind == token.Directive:
		tok := p.advance()
		return []ast.ModuleItem{&ast.Directive{Text: tok.Text}}, nil
	case p.atKeyword("import"):
		items, err := p.parseImports()
		if err != nil {
			return nil, err
		}
		return packageToModuleItems(items), nil
	case p.atKeyword("export"):
		items, err := p.parseExports()
		if err != nil {
			return nil, err
		}
		return packageToModuleItems(items), nil
	case p.atKeyword("typedef"):
		item, err := p.parseTypedef()
		if err != nil {
			return nil, err
		}
		return []ast.ModuleItem{item.(ast.ModuleItem)}, nil
	case p.atKeyword("parameter") || p.atKeyword("localparam"):
		decls, err := p.parseParamDecl()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return declsToModuleItems(decls), nil
	case p.atKeyword("function"):
		item, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		return []ast.ModuleItem{item.(ast.ModuleItem)}, nil
	case p.atKeyword("task"):
		item, err := p.parseTask()
		if err != nil {
			return nil, err
		}
		return []ast.ModuleItem{item.(ast.ModuleItem)}, nil
	case p.atKeyword("genvar"):
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return []ast.ModuleItem{&ast.Genvar{Name: name}}, nil
	case p.atKeyword("generate"):
		p.advance()
		var items []ast.GenItem
		for !p.atKeyword("endgenerate") {
			if p.atEOF() {
				return nil, p.errExpected("'endgenerate'")
			}
			parsed, err := p.parseGenItems()
			if err != nil {
				return nil, err
			}
			items = append(items, parsed...)
		}
		p.advance()
		return []ast.ModuleItem{&ast.Generate{Items: items}}, nil
	case p.atKeyword("assign"):
		p.advance()
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
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return []ast.ModuleItem{&ast.Assign{LHS: lhs, Expr: expr}}, nil
	case p.atKeyword("always") || p.atKeyword("always_comb") ||
		p.atKeyword("always_ff") || p.atKeyword("always_latch"):
		kw := map[string]ast.AlwaysKw{
			"always": ast.Always, "always_comb": ast.AlwaysComb,
			"always_ff": ast.AlwaysFF, "always_latch": ast.AlwaysLatch,
		}[p.advance().Text]
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return []ast.ModuleItem{&ast.AlwaysBlock{Kind: kw, Stmt: stmt}}, nil
	case p.atKeyword("initial"):
		p.advance()
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return []ast.ModuleItem{&ast.Initial{Stmt: stmt}}, nil
	case p.atKeyword("input") || p.atKeyword("output") || p.atKeyword("inout"):
		dir := p.parseDirection()
		t, err := p.parseDeclType()
		if err != nil {
			return nil, err
		}
		decls, err := p.parseDataDecl(dir, t)
		if err != nil {
			return nil, err
		}
		return declsToModuleItems(decls), nil
	case p.startsType():
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		decls, err := p.parseDataDecl(ast.DirNone, t)
		if err != nil {
			return nil, err
		}
		return declsToModuleItems(decls), nil
	case p.peek().Kind == token.Ident:
		return p.parseInstanceOrDecl()
	}
	return nil, p.errExpected("module item")
}

// parseDeclType parses the optional type of a directed declaration,
// allowing implicit types with ranges.
func (p *parser) parseDeclType() (ast.Type, error) {
	switch {
	case p.startsType():
		return p.parseType()
	case p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Ident:
		return p.parseAliasType()
	case p.atSymbol("["):
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.Implicit{Ranges: ranges}, nil
	case p.atKeyword("signed") || p.atKeyword("unsigned"):
		sign := p.parseSigning()
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.Implicit{Sign: sign, Ranges: ranges}, nil
	default:
		return &ast.Implicit{}, nil
	}
}

// parseInstanceOrDecl disambiguates a leading identifier between a
// module instantiation and a declaration with an alias type by looking
// for an instance name followed by a port list.
func (p *parser) parseInstanceOrDecl() ([]ast.ModuleItem, error) {
	save := p.pos
	module := p.advance().Text

	var params []ast.ParamBinding
	if p.eatSymbol("#") {
		if p.atSymbol("(") {
			bindings, err := p.parseParamBindings()
			if err != nil {
				p.pos = save
				return p.parseAliasDecl()
			}
			params = bindings
		}
	}

	if p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Symbol && p.peekAt(1).Text == "(" {
		name := p.advance().Text
		ports, err := p.parsePortBindings()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		return []ast.ModuleItem{&ast.Instance{Module: module, Params: params, Name: name, Ports: ports}}, nil
	}

	p.pos = save
	return p.parseAliasDecl()
}

func (p *parser) parseAliasDecl() ([]ast.ModuleItem, error) {
	t, err := p.parseAliasType()
	if err != nil {
		return nil, err
	}
	decls, err := p.parseDataDecl(ast.DirNone, t)
	if err != nil {
		return nil, err
	}
	return declsToModuleItems(decls), nil
}

// parseParamBindings parses a (...) binding list after #.
func (p *parser) parseParamBindings() ([]ast.ParamBinding, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var bindings []ast.ParamBinding
	if p.eatSymbol(")") {
		return bindings, nil
	}
	for {
		b, err := p.parseParamBinding()
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return bindings, nil
}

func (p *parser) parseParamBinding() (ast.ParamBinding, error) {
	if p.atSymbol(".") {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return ast.ParamBinding{}, err
		}
		if err := p.expectSymbol("("); err != nil {
			return ast.ParamBinding{}, err
		}
		value, err := p.parseTypeOrExpr()
		if err != nil {
			return ast.ParamBinding{}, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return ast.ParamBinding{}, err
		}
		return ast.ParamBinding{Name: name, Value: value}, nil
	}
	value, err := p.parseTypeOrExpr()
	if err != nil {
		return ast.ParamBinding{}, err
	}
	return ast.ParamBinding{Value: value}, nil
}

// parseTypeOrExpr reads a binding value: explicit type syntax becomes a
// type, everything else stays an expression.
func (p *parser) parseTypeOrExpr() (ast.TypeOrExpr, error) {
	if p.startsType() {
		t, err := p.parseType()
		if err != nil {
			return ast.TypeOrExpr{}, err
		}
		return ast.TypeOrExpr{Type: t}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return ast.TypeOrExpr{}, err
	}
	return ast.TypeOrExpr{Expr: e}, nil
}

func (p *parser) parsePortBindings() ([]ast.PortBinding, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var ports []ast.PortBinding
	if p.eatSymbol(")") {
		return ports, nil
	}
	for {
		if p.atSymbol(".") {
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			var expr ast.Expr
			if err := p.expectSymbol("("); err != nil {
				return nil, err
			}
			if !p.atSymbol(")") {
				expr, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
			ports = append(ports, ast.PortBinding{Name: name, Expr: expr})
		} else {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ports = append(ports, ast.PortBinding{Expr: expr})
		}
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return ports, nil
}

func (p *parser) parseGenItems() ([]ast.GenItem, error) {
	item, err := p.parseGenItem()
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (p *parser) parseGenItem() ([]ast.GenItem, error) {
	switch {
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
		thenItem, err := p.parseGenItemSingle()
		if err != nil {
			return nil, err
		}
		var elseItem ast.GenItem
		if p.eatKeyword("else") {
			elseItem, err = p.parseGenItemSingle()
			if err != nil {
				return nil, err
			}
		}
		return []ast.GenItem{&ast.GenIf{Cond: cond, Then: thenItem, Else: elseItem}}, nil
	case p.atKeyword("for"):
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		initName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		initExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		stepName, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		stepExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		body, err := p.parseGenItemSingle()
		if err != nil {
			return nil, err
		}
		return []ast.GenItem{&ast.GenFor{
			InitName: initName, InitExpr: initExpr,
			Cond:     cond,
			StepName: stepName, StepExpr: stepExpr,
			Body: body,
		}}, nil
	case p.atKeyword("begin"):
		block, err := p.parseGenBlock()
		if err != nil {
			return nil, err
		}
		return []ast.GenItem{block}, nil
	default:
		items, err := p.parseModuleItem()
		if err != nil {
			return nil, err
		}
		out := make([]ast.GenItem, len(items))
		for i, item := range items {
			gi, ok := item.(ast.GenItem)
			if !ok {
				return nil, p.errExpected("generate item")
			}
			out[i] = gi
		}
		return out, nil
	}
}

// parseGenItemSingle parses exactly one generate item, wrapping multiple
// expanded items in an unnamed block.
func (p *parser) parseGenItemSingle() (ast.GenItem, error) {
	items, err := p.parseGenItem()
	if err != nil {
		return nil, err
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return &ast.GenBlock{Items: items}, nil
}

func (p *parser) parseGenBlock() (ast.GenItem, error) {
	p.advance() // begin
	name := ""
	if p.eatSymbol(":") {
		parsed, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		name = parsed
	}
	var items []ast.GenItem
	for !p.atKeyword("end") {
		if p.atEOF() {
			return nil, p.errExpected("'end'")
		}
		parsed, err := p.parseGenItem()
		if err != nil {
			return nil, err
		}
		items = append(items, parsed...)
	}
	p.advance()
	if p.eatSymbol(":") {
		if _, err := p.expectIdent(); err != nil {
			return nil, err
		}
	}
	return &ast.GenBlock{Name: name, Items: items}, nil
}

func packageToModuleItems(items []ast.PackageItem) []ast.ModuleItem {
	out := make([]ast.ModuleItem, len(items))
	for i, item := range items {
		out[i] = item.(ast.ModuleItem)
	}
	return out
}

func declsToModuleItems(decls []ast.Decl) []ast.ModuleItem {
	out := make([]ast.ModuleItem, len(decls))
	for i, d := range decls {
		out[i] = d
	}
	return out
}
