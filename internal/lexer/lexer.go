// Package lexer turns preprocessed source text into a token stream.
package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"sv2v/internal/diag"
	"sv2v/internal/source"
	"sv2v/internal/token"
)

// symbols holds the punctuation the lexer recognizes, longest first.
var symbols = []string{
	"<<<", ">>>", "===", "!==", "~^", "^~", "~&", "~|",
	"::", "==", "!=", "<=", ">=", "<<", ">>", "&&", "||", "**",
	"+:", "-:",
	"(", ")", "[", "]", "{", "}", ";", ":", ",", ".", "#", "@", "?", "=",
	"<", ">", "+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "'",
}

type lexer struct {
	file *source.File
	src  []byte
	pos  int
}

// Tokenize scans the whole file into tokens, appending a trailing EOF.
func Tokenize(file *source.File) ([]token.Token, error) {
	lx := &lexer{file: file, src: file.Content}
	var tokens []token.Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) span(start int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("span start overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](lx.pos)
	if err != nil {
		panic(fmt.Errorf("span end overflow: %w", err))
	}
	return source.Span{File: lx.file.ID, Start: s, End: e}
}

func (lx *lexer) next() (token.Token, error) {
	if err := lx.skipTrivia(); err != nil {
		return token.Token{}, err
	}
	start := lx.pos
	if lx.pos >= len(lx.src) {
		return token.Token{Kind: token.EOF, Span: lx.span(start)}, nil
	}

	c := lx.src[lx.pos]
	switch {
	case c == '`':
		// a directive consumes the rest of its line
		for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
			lx.pos++
		}
		return token.Token{Kind: token.Directive, Text: string(lx.src[start:lx.pos]), Span: lx.span(start)}, nil
	case c == '"':
		return lx.lexString()
	case c == '$':
		lx.pos++
		for lx.pos < len(lx.src) && isIdentChar(lx.src[lx.pos]) {
			lx.pos++
		}
		return token.Token{Kind: token.SysIdent, Text: string(lx.src[start:lx.pos]), Span: lx.span(start)}, nil
	case isIdentStart(c):
		for lx.pos < len(lx.src) && isIdentChar(lx.src[lx.pos]) {
			lx.pos++
		}
		text := string(lx.src[start:lx.pos])
		kind := token.Ident
		if token.IsKeyword(text) {
			kind = token.Keyword
		}
		return token.Token{Kind: kind, Text: text, Span: lx.span(start)}, nil
	case isDigit(c):
		return lx.lexNumber()
	case c == '\'':
		// unsized based literal: '0, '1, 'x, 'hff, 'sb01
		if lx.pos+1 < len(lx.src) && isBasedStart(lx.src[lx.pos+1]) {
			return lx.lexBased(start)
		}
	}

	for _, sym := range symbols {
		if lx.hasPrefix(sym) {
			lx.pos += len(sym)
			return token.Token{Kind: token.Symbol, Text: sym, Span: lx.span(start)}, nil
		}
	}

	lx.pos++
	return token.Token{}, diag.NewAt(diag.LexUnknownChar, lx.span(start),
		"unexpected character %q", string(c))
}

func (lx *lexer) hasPrefix(s string) bool {
	if lx.pos+len(s) > len(lx.src) {
		return false
	}
	return string(lx.src[lx.pos:lx.pos+len(s)]) == s
}

// skipTrivia consumes whitespace, comments, and attribute instances.
func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			lx.pos++
		case lx.hasPrefix("//"):
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		case lx.hasPrefix("/*"):
			start := lx.pos
			lx.pos += 2
			for lx.pos < len(lx.src) && !lx.hasPrefix("*/") {
				lx.pos++
			}
			if lx.pos >= len(lx.src) {
				return diag.NewAt(diag.LexUnterminatedBlockComment, lx.span(start),
					"unterminated block comment")
			}
			lx.pos += 2
		case lx.hasPrefix("(*") && !lx.hasPrefix("(*)"):
			// attribute instances are accepted and dropped
			start := lx.pos
			lx.pos += 2
			for lx.pos < len(lx.src) && !lx.hasPrefix("*)") {
				lx.pos++
			}
			if lx.pos >= len(lx.src) {
				return diag.NewAt(diag.LexUnterminatedBlockComment, lx.span(start),
					"unterminated attribute instance")
			}
			lx.pos += 2
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) lexString() (token.Token, error) {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
			continue
		case '"':
			lx.pos++
			return token.Token{Kind: token.Str, Text: string(lx.src[start:lx.pos]), Span: lx.span(start)}, nil
		case '\n':
			return token.Token{}, diag.NewAt(diag.LexUnterminatedString, lx.span(start),
				"unterminated string literal")
		}
		lx.pos++
	}
	return token.Token{}, diag.NewAt(diag.LexUnterminatedString, lx.span(start),
		"unterminated string literal")
}

// lexNumber scans decimal, real, and sized based literals, keeping the
// text verbatim.
func (lx *lexer) lexNumber() (token.Token, error) {
	start := lx.pos
	for lx.pos < len(lx.src) && isNumChar(lx.src[lx.pos]) {
		lx.pos++
	}
	// fractional part
	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' && isDigit(lx.src[lx.pos+1]) {
		lx.pos++
		for lx.pos < len(lx.src) && isNumChar(lx.src[lx.pos]) {
			lx.pos++
		}
	}
	// based part of a sized literal: 4'b1010 (possibly spaced: 4 'b1010)
	save := lx.pos
	ws := lx.pos
	for ws < len(lx.src) && (lx.src[ws] == ' ' || lx.src[ws] == '\t') {
		ws++
	}
	if ws < len(lx.src) && lx.src[ws] == '\'' && ws+1 < len(lx.src) && isBasedStart(lx.src[ws+1]) {
		lx.pos = ws + 1
		for lx.pos < len(lx.src) && isBasedChar(lx.src[lx.pos]) {
			lx.pos++
		}
		return token.Token{Kind: token.Number, Text: string(lx.src[start:lx.pos]), Span: lx.span(start)}, nil
	}
	lx.pos = save
	return token.Token{Kind: token.Number, Text: string(lx.src[start:lx.pos]), Span: lx.span(start)}, nil
}

func (lx *lexer) lexBased(start int) (token.Token, error) {
	lx.pos++ // consume '
	for lx.pos < len(lx.src) && isBasedChar(lx.src[lx.pos]) {
		lx.pos++
	}
	return token.Token{Kind: token.Number, Text: string(lx.src[start:lx.pos]), Span: lx.span(start)}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isNumChar(c byte) bool {
	return isDigit(c) || c == '_'
}

func isBasedStart(c byte) bool {
	switch c {
	case 'b', 'B', 'o', 'O', 'd', 'D', 'h', 'H', 's', 'S', '0', '1', 'x', 'X', 'z', 'Z':
		return true
	}
	return false
}

func isBasedChar(c byte) bool {
	return isDigit(c) || c == '_' || c == '?' ||
		('a' <= c && c <= 'f') || ('A' <= c && c <= 'F') ||
		c == 'x' || c == 'X' || c == 'z' || c == 'Z' ||
		c == 's' || c == 'S' || c == 'b' || c == 'B' ||
		c == 'o' || c == 'O' || c == 'h' || c == 'H'
}
