package lexer

import (
	"testing"

	"sv2v/internal/source"
	"sv2v/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sv", []byte(src))
	tokens, err := Tokenize(fs.Get(id))
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", src, err)
	}
	return tokens
}

func kindsAndTexts(tokens []token.Token) ([]token.Kind, []string) {
	kinds := make([]token.Kind, 0, len(tokens))
	texts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}
	return kinds, texts
}

func TestTokenize_Basic(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []token.Kind
		texts []string
	}{
		{
			name:  "module header",
			src:   "module m;",
			kinds: []token.Kind{token.Keyword, token.Ident, token.Symbol},
			texts: []string{"module", "m", ";"},
		},
		{
			name:  "sized based literal",
			src:   "4'b10_10",
			kinds: []token.Kind{token.Number},
			texts: []string{"4'b10_10"},
		},
		{
			name:  "unsized based literal",
			src:   "'hFF",
			kinds: []token.Kind{token.Number},
			texts: []string{"'hFF"},
		},
		{
			name:  "real literal",
			src:   "1.5",
			kinds: []token.Kind{token.Number},
			texts: []string{"1.5"},
		},
		{
			name:  "scoped identifier",
			src:   "P::x",
			kinds: []token.Kind{token.Ident, token.Symbol, token.Ident},
			texts: []string{"P", "::", "x"},
		},
		{
			name:  "system identifier call",
			src:   "$readmemh(f, mem)",
			kinds: []token.Kind{token.SysIdent, token.Symbol, token.Ident, token.Symbol, token.Ident, token.Symbol},
			texts: []string{"$readmemh", "(", "f", ",", "mem", ")"},
		},
		{
			name:  "longest match operators",
			src:   "<<< <= ===",
			kinds: []token.Kind{token.Symbol, token.Symbol, token.Symbol},
			texts: []string{"<<<", "<=", "==="},
		},
		{
			name:  "comments are trivia",
			src:   "a // c\n/* b */ d",
			kinds: []token.Kind{token.Ident, token.Ident},
			texts: []string{"a", "d"},
		},
		{
			name:  "attributes are dropped",
			src:   "(* full_case *) x",
			kinds: []token.Kind{token.Ident},
			texts: []string{"x"},
		},
		{
			name:  "directive consumes line",
			src:   "`default_nettype none\nwire",
			kinds: []token.Kind{token.Directive, token.Keyword},
			texts: []string{"`default_nettype none", "wire"},
		},
		{
			name:  "string literal",
			src:   `"hi \" there"`,
			kinds: []token.Kind{token.Str},
			texts: []string{`"hi \" there"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kinds, texts := kindsAndTexts(tokenize(t, tt.src))
			if len(kinds) != len(tt.kinds) {
				t.Fatalf("got %d tokens (%v), want %d", len(kinds), texts, len(tt.kinds))
			}
			for i := range kinds {
				if kinds[i] != tt.kinds[i] || texts[i] != tt.texts[i] {
					t.Errorf("token %d = (%v, %q), want (%v, %q)",
						i, kinds[i], texts[i], tt.kinds[i], tt.texts[i])
				}
			}
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	fs := source.NewFileSet()
	for _, src := range []string{"\"unterminated", "/* open"} {
		id := fs.AddVirtual("bad.sv", []byte(src))
		if _, err := Tokenize(fs.Get(id)); err == nil {
			t.Errorf("Tokenize(%q) should fail", src)
		}
	}
}

func TestTokenize_Spans(t *testing.T) {
	tokens := tokenize(t, "ab cd")
	if tokens[0].Span.Start != 0 || tokens[0].Span.End != 2 {
		t.Errorf("first span = %v", tokens[0].Span)
	}
	if tokens[1].Span.Start != 3 || tokens[1].Span.End != 5 {
		t.Errorf("second span = %v", tokens[1].Span)
	}
}
