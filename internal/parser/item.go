package parser

import (
	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/token"
)

// startsType reports whether the next token begins an explicit type.
// Alias types (plain identifiers) are handled by their callers, which
// have the context to disambiguate them from declarators.
func (p *parser) startsType() bool {
	if p.peek().Kind != token.Keyword {
		return false
	}
	switch p.peek().Text {
	case "logic", "bit", "reg",
		"byte", "shortint", "int", "longint", "integer", "time",
		"real", "shortreal", "realtime", "string", "event",
		"wire", "tri", "wand", "wor", "supply0", "supply1",
		"enum", "struct", "union", "type":
		return true
	}
	return false
}

func (p *parser) parseSigning() ast.Signing {
	switch {
	case p.eatKeyword("signed"):
		return ast.Signed
	case p.eatKeyword("unsigned"):
		return ast.Unsigned
	}
	return ast.Unspecified
}

// atRange reports whether the next tokens begin a [l:r] range rather
// than a plain select.
func (p *parser) atRange() bool {
	if !p.atSymbol("[") {
		return false
	}
	depth := 0
	for i := 0; ; i++ {
		tok := p.peekAt(i)
		switch {
		case tok.Kind == token.EOF:
			return false
		case tok.Kind == token.Symbol && tok.Text == "[":
			depth++
		case tok.Kind == token.Symbol && tok.Text == "]":
			depth--
			if depth == 0 {
				return false
			}
		case tok.Kind == token.Symbol && tok.Text == ":" && depth == 1:
			return true
		}
	}
}

func (p *parser) parseRange() (ast.Range, error) {
	if err := p.expectSymbol("["); err != nil {
		return ast.Range{}, err
	}
	l, err := p.parseExpr()
	if err != nil {
		return ast.Range{}, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return ast.Range{}, err
	}
	r, err := p.parseExpr()
	if err != nil {
		return ast.Range{}, err
	}
	if err := p.expectSymbol("]"); err != nil {
		return ast.Range{}, err
	}
	return ast.Range{L: l, R: r}, nil
}

func (p *parser) parseRanges() ([]ast.Range, error) {
	var ranges []ast.Range
	for p.atRange() {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func (p *parser) parseType() (ast.Type, error) {
	tok := p.peek()
	if tok.Kind == token.Ident {
		return p.parseAliasType()
	}
	if tok.Kind != token.Keyword {
		return nil, p.errorAt(diag.SynExpectType, "expected type, found %s", p.describe())
	}

	switch tok.Text {
	case "logic", "bit", "reg":
		p.advance()
		kind := map[string]ast.IntegerVectorTy{
			"bit": ast.TBit, "logic": ast.TLogic, "reg": ast.TReg,
		}[tok.Text]
		sign := p.parseSigning()
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.IntegerVector{Kind: kind, Sign: sign, Ranges: ranges}, nil
	case "byte", "shortint", "int", "longint", "integer", "time":
		p.advance()
		kind := map[string]ast.IntegerAtomTy{
			"byte": ast.TByte, "shortint": ast.TShortint, "int": ast.TInt,
			"longint": ast.TLongint, "integer": ast.TInteger, "time": ast.TTime,
		}[tok.Text]
		sign := p.parseSigning()
		return &ast.IntegerAtom{Kind: kind, Sign: sign}, nil
	case "real", "shortreal", "realtime", "string", "event":
		p.advance()
		kind := map[string]ast.NonIntegerTy{
			"shortreal": ast.TShortreal, "real": ast.TReal,
			"realtime": ast.TRealtime, "string": ast.TString, "event": ast.TEvent,
		}[tok.Text]
		return &ast.NonInteger{Kind: kind}, nil
	case "wire", "tri", "wand", "wor", "supply0", "supply1":
		p.advance()
		kind := map[string]ast.NetTy{
			"wire": ast.TWire, "tri": ast.TTri, "wand": ast.TWand,
			"wor": ast.TWor, "supply0": ast.TSupply0, "supply1": ast.TSupply1,
		}[tok.Text]
		sign := p.parseSigning()
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.Net{Kind: kind, Sign: sign, Ranges: ranges}, nil
	case "enum":
		return p.parseEnum()
	case "struct", "union":
		return p.parseStructUnion()
	case "type":
		p.advance()
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return &ast.TypeOf{Expr: e}, nil
	}
	return nil, p.errorAt(diag.SynExpectType, "expected type, found %s", p.describe())
}

// parseAliasType parses name, P::name, and C#(...)::name type
// references with trailing packed dimensions.
func (p *parser) parseAliasType() (ast.Type, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	switch {
	case p.eatSymbol("::"):
		member, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.PSAlias{Package: name, Name: member, Ranges: ranges}, nil
	case p.atSymbol("#"):
		p.advance()
		bindings, err := p.parseParamBindings()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("::"); err != nil {
			return nil, err
		}
		member, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.CSAlias{Class: name, Bindings: bindings, Name: member, Ranges: ranges}, nil
	default:
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		return &ast.Alias{Name: name, Ranges: ranges}, nil
	}
}

func (p *parser) parseEnum() (ast.Type, error) {
	p.advance() // enum
	var base ast.Type
	if p.startsType() {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		base = t
	} else if p.peek().Kind == token.Ident {
		t, err := p.parseAliasType()
		if err != nil {
			return nil, err
		}
		base = t
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	var items []ast.EnumItem
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		if p.eatSymbol("=") {
			value, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		items = append(items, ast.EnumItem{Name: name, Value: value})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol("}"); err != nil {
		return nil, err
	}
	ranges, err := p.parseRanges()
	if err != nil {
		return nil, err
	}
	return &ast.Enum{Base: base, Items: items, Ranges: ranges}, nil
}

func (p *parser) parseStructUnion() (ast.Type, error) {
	isUnion := p.peek().Text == "union"
	p.advance()
	packed := p.eatKeyword("packed")
	sign := ast.Unspecified
	if packed {
		sign = p.parseSigning()
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	var fields []ast.Field
	for !p.atSymbol("}") {
		var t ast.Type
		var err error
		if p.peek().Kind == token.Ident {
			t, err = p.parseAliasType()
		} else {
			t, err = p.parseType()
		}
		if err != nil {
			return nil, err
		}
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.Field{Type: t, Name: name})
			if p.eatSymbol(",") {
				continue
			}
			break
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
	}
	p.advance() // }
	ranges, err := p.parseRanges()
	if err != nil {
		return nil, err
	}
	if isUnion {
		return &ast.Union{Packed: packed, Sign: sign, Fields: fields, Ranges: ranges}, nil
	}
	return &ast.Struct{Packed: packed, Sign: sign, Fields: fields, Ranges: ranges}, nil
}

// parseParamDecl parses one parameter or localparam declaration with its
// comma-separated declarators. A comma followed by an identifier extends
// the current declaration; anything else ends it, so header lists hand
// control back to their caller between parameter keywords.
func (p *parser) parseParamDecl() ([]ast.Decl, error) {
	scope := ast.Parameter
	switch {
	case p.eatKeyword("parameter"):
	case p.eatKeyword("localparam"):
		scope = ast.Localparam
	default:
		return nil, p.errExpected("'parameter' or 'localparam'")
	}

	if p.eatKeyword("type") {
		var decls []ast.Decl
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			var t ast.Type
			if p.eatSymbol("=") {
				if p.peek().Kind == token.Ident {
					t, err = p.parseAliasType()
				} else {
					t, err = p.parseType()
				}
				if err != nil {
					return nil, err
				}
			}
			decls = append(decls, &ast.ParamType{Scope: scope, Name: name, Type: t})
			if p.continuesDeclarators() {
				p.advance() // comma
				continue
			}
			break
		}
		return decls, nil
	}

	var t ast.Type = &ast.Implicit{}
	if p.startsType() {
		parsed, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t = parsed
	} else if p.peek().Kind == token.Ident && p.peekAt(1).Kind == token.Ident {
		parsed, err := p.parseAliasType()
		if err != nil {
			return nil, err
		}
		t = parsed
	} else if p.atSymbol("[") {
		ranges, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		t = &ast.Implicit{Ranges: ranges}
	}

	var decls []ast.Decl
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		if p.eatSymbol("=") {
			value, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		decls = append(decls, &ast.Param{Scope: scope, Type: t, Name: name, Value: value})
		if p.continuesDeclarators() {
			p.advance() // comma
			continue
		}
		break
	}
	return decls, nil
}

// continuesDeclarators reports whether a comma extends the current
// declaration with another declarator instead of ending it.
func (p *parser) continuesDeclarators() bool {
	return p.atSymbol(",") && p.peekAt(1).Kind == token.Ident
}

// parseDataDecl parses one data declaration with a known direction and
// leading type, expanding the declarator list.
func (p *parser) parseDataDecl(dir ast.Direction, t ast.Type) ([]ast.Decl, error) {
	var decls []ast.Decl
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		dims, err := p.parseRanges()
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		if p.eatSymbol("=") {
			init, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		decls = append(decls, &ast.Variable{Dir: dir, Type: t, Name: name, Dims: dims, Init: init})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return decls, nil
}

func (p *parser) parseTypedef() (ast.PackageItem, error) {
	p.advance() // typedef
	var t ast.Type
	var err error
	if p.peek().Kind == token.Ident {
		t, err = p.parseAliasType()
	} else {
		t, err = p.parseType()
	}
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ast.Typedef{Type: t, Name: name}, nil
}

// parseImports parses an import declaration's comma-separated list.
func (p *parser) parseImports() ([]ast.PackageItem, error) {
	p.advance() // import
	var items []ast.PackageItem
	for {
		pkg, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("::"); err != nil {
			return nil, err
		}
		ident := ""
		if !p.eatSymbol("*") {
			ident, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
		}
		items = append(items, &ast.Import{Package: pkg, Ident: ident})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return items, nil
}

// parseExports parses an export declaration; *::* exports everything.
func (p *parser) parseExports() ([]ast.PackageItem, error) {
	p.advance() // export
	var items []ast.PackageItem
	for {
		pkg := ""
		var err error
		if !p.eatSymbol("*") {
			pkg, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expectSymbol("::"); err != nil {
			return nil, err
		}
		ident := ""
		if !p.eatSymbol("*") {
			ident, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
		}
		items = append(items, &ast.Export{Package: pkg, Ident: ident})
		if p.eatSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return items, nil
}

// parsePackageItems parses one syntactic item which may expand to
// several AST items.
func (p *parser) parsePackageItems() ([]ast.PackageItem, error) {
	switch {
	case p.peek().Kind == token.Directive:
		tok := p.advance()
		return []ast.PackageItem{&ast.Directive{Text: tok.Text}}, nil
	case p.atKeyword("import"):
		return p.parseImports()
	case p.atKeyword("export"):
		return p.parseExports()
	case p.atKeyword("typedef"):
		item, err := p.parseTypedef()
		if err != nil {
			return nil, err
		}
		return []ast.PackageItem{item}, nil
	case p.atKeyword("parameter") || p.atKeyword("localparam"):
		decls, err := p.parseParamDecl()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		items := make([]ast.PackageItem, len(decls))
		for i, d := range decls {
			items[i] = d
		}
		return items, nil
	case p.atKeyword("function"):
		item, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		return []ast.PackageItem{item}, nil
	case p.atKeyword("task"):
		item, err := p.parseTask()
		if err != nil {
			return nil, err
		}
		return []ast.PackageItem{item}, nil
	case p.startsType() || p.peek().Kind == token.Ident:
		var t ast.Type
		var err error
		if p.peek().Kind == token.Ident {
			t, err = p.parseAliasType()
		} else {
			t, err = p.parseType()
		}
		if err != nil {
			return nil, err
		}
		decls, err := p.parseDataDecl(ast.DirNone, t)
		if err != nil {
			return nil, err
		}
		items := make([]ast.PackageItem, len(decls))
		for i, d := range decls {
			items[i] = d
		}
		return items, nil
	}
	return nil, p.errorAt(diag.SynUnexpectedTopLevel, "unexpected %s", p.describe())
}
