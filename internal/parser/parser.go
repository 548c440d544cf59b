// Package parser builds the AST from a token stream with a hand-written
// recursive descent over the accepted SystemVerilog subset. Errors are
// fatal: the first syntax error aborts with a spanned diagnostic.
package parser

import (
	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/source"
	"sv2v/internal/token"
)

type parser struct {
	tokens []token.Token
	pos    int
}

// Parse consumes a full token stream into top-level descriptions.
func Parse(tokens []token.Token) ([]ast.Description, error) {
	p := &parser{tokens: tokens}
	var descs []ast.Description
	for !p.atEOF() {
		parsed, err := p.parseDescription()
		if err != nil {
			return nil, err
		}
		descs = append(descs, parsed...)
	}
	return descs, nil
}

func (p *parser) atEOF() bool {
	return p.peek().Kind == token.EOF
}

func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind token.Kind, text string) bool {
	tok := p.peek()
	return tok.Kind == kind && tok.Text == text
}

func (p *parser) atKeyword(kw string) bool {
	return p.at(token.Keyword, kw)
}

func (p *parser) atSymbol(sym string) bool {
	return p.at(token.Symbol, sym)
}

func (p *parser) eatKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) eatSymbol(sym string) bool {
	if p.atSymbol(sym) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.eatKeyword(kw) {
		return p.errExpected("'" + kw + "'")
	}
	return nil
}

func (p *parser) expectSymbol(sym string) error {
	if !p.eatSymbol(sym) {
		return p.errExpected("'" + sym + "'")
	}
	return nil
}

func (p *parser) expectIdent() (string, error) {
	if p.peek().Kind != token.Ident {
		return "", p.errorAt(diag.SynExpectIdentifier, "expected identifier, found %s", p.describe())
	}
	return p.advance().Text, nil
}

func (p *parser) describe() string {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return "end of input"
	}
	return "'" + tok.Text + "'"
}

func (p *parser) errExpected(what string) error {
	return p.errorAt(diag.SynUnexpectedToken, "expected %s, found %s", what, p.describe())
}

func (p *parser) errorAt(code diag.Code, format string, args ...any) error {
	return diag.NewAt(code, p.peek().Span, format, args...)
}

func (p *parser) span() source.Span {
	return p.peek().Span
}

// parseLifetime consumes an optional static/automatic keyword.
func (p *parser) parseLifetime() ast.Lifetime {
	switch {
	case p.eatKeyword("static"):
		return ast.Static
	case p.eatKeyword("automatic"):
		return ast.Automatic
	}
	return ast.LifetimeNone
}

func (p *parser) parseDescription() ([]ast.Description, error) {
	switch {
	case p.atKeyword("extern") || p.atKeyword("module") || p.atKeyword("interface"):
		desc, err := p.parsePart()
		if err != nil {
			return nil, err
		}
		return []ast.Description{desc}, nil
	case p.atKeyword("package"):
		desc, err := p.parsePackage()
		if err != nil {
			return nil, err
		}
		return []ast.Description{desc}, nil
	case p.atKeyword("class"):
		desc, err := p.parseClass()
		if err != nil {
			return nil, err
		}
		return []ast.Description{desc}, nil
	default:
		items, err := p.parsePackageItems()
		if err != nil {
			return nil, err
		}
		descs := make([]ast.Description, len(items))
		for i, item := range items {
			descs[i] = &ast.TopItem{Item: item}
		}
		return descs, nil
	}
}

func (p *parser) parsePart() (ast.Description, error) {
	extern := p.eatKeyword("extern")
	kind := ast.KwModule
	switch {
	case p.eatKeyword("module"):
	case p.eatKeyword("interface"):
		kind = ast.KwInterface
	default:
		return nil, p.errExpected("'module' or 'interface'")
	}
	lifetime := p.parseLifetime()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var items []ast.ModuleItem
	if p.eatSymbol("#") {
		params, err := p.parseParamPorts()
		if err != nil {
			return nil, err
		}
		items = append(items, params...)
	}

	var ports []string
	if p.eatSymbol("(") {
		ports, items, err = p.parsePortList(items)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	endKw := "endmodule"
	if kind == ast.KwInterface {
		endKw = "endinterface"
	}
	for !p.atKeyword(endKw) {
		if p.atEOF() {
			return nil, p.errExpected("'" + endKw + "'")
		}
		mis, err := p.parseModuleItem()
		if err != nil {
			return nil, err
		}
		items = append(items, mis...)
	}
	p.advance()
	// optional end label
	if p.eatSymbol(":") {
		if _, err := p.expectIdent(); err != nil {
			return nil, err
		}
	}

	return &ast.Part{
		Extern:   extern,
		Kind:     kind,
		Lifetime: lifetime,
		Name:     name,
		Ports:    ports,
		Items:    items,
	}, nil
}

// parseParamPorts parses a #(...) module parameter list into parameter
// items.
func (p *parser) parseParamPorts() ([]ast.ModuleItem, error) {
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var items []ast.ModuleItem
	if p.eatSymbol(")") {
		return items, nil
	}
	for {
		decls, err := p.parseParamDecl()
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			items = append(items, d)
		}
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return items, nil
}

// parsePortList handles both ANSI headers with inline declarations and
// plain name lists.
func (p *parser) parsePortList(items []ast.ModuleItem) ([]string, []ast.ModuleItem, error) {
	var ports []string
	if p.eatSymbol(")") {
		return ports, items, nil
	}

	ansi := p.atKeyword("input") || p.atKeyword("output") || p.atKeyword("inout") || p.startsType()
	if !ansi {
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, nil, err
			}
			ports = append(ports, name)
			if p.eatSymbol(",") {
				continue
			}
			break
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, nil, err
		}
		return ports, items, nil
	}

	dir := ast.DirNone
	var declType ast.Type = &ast.Implicit{}
	for {
		newDir := p.parseDirection()
		if newDir != ast.DirNone {
			dir = newDir
			declType = &ast.Implicit{}
		}
		if p.startsType() {
			t, err := p.parseType()
			if err != nil {
				return nil, nil, err
			}
			declType = t
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, nil, err
		}
		dims, err := p.parseRanges()
		if err != nil {
			return nil, nil, err
		}
		var init ast.Expr
		if p.eatSymbol("=") {
			init, err = p.parseExpr()
			if err != nil {
				return nil, nil, err
			}
		}
		ports = append(ports, name)
		items = append(items, &ast.Variable{Dir: dir, Type: declType, Name: name, Dims: dims, Init: init})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, nil, err
	}
	return ports, items, nil
}

func (p *parser) parseDirection() ast.Direction {
	switch {
	case p.eatKeyword("input"):
		return ast.Input
	case p.eatKeyword("output"):
		return ast.Output
	case p.eatKeyword("inout"):
		return ast.Inout
	}
	return ast.DirNone
}

func (p *parser) parsePackage() (ast.Description, error) {
	p.advance() // package
	lifetime := p.parseLifetime()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	var items []ast.PackageItem
	for !p.atKeyword("endpackage") {
		if p.atEOF() {
			return nil, p.errExpected("'endpackage'")
		}
		parsed, err := p.parsePackageItems()
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
	return &ast.PackageDecl{Lifetime: lifetime, Name: name, Items: items}, nil
}

func (p *parser) parseClass() (ast.Description, error) {
	p.advance() // class
	lifetime := p.parseLifetime()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var params []ast.Decl
	if p.eatSymbol("#") {
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		if !p.eatSymbol(")") {
			for {
				decls, err := p.parseParamDecl()
				if err != nil {
					return nil, err
				}
				params = append(params, decls...)
				if p.eatSymbol(",") {
					continue
				}
				break
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	var items []ast.PackageItem
	for !p.atKeyword("endclass") {
		if p.atEOF() {
			return nil, p.errExpected("'endclass'")
		}
		parsed, err := p.parsePackageItems()
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
	return &ast.ClassDecl{Lifetime: lifetime, Name: name, Params: params, Items: items}, nil
}
