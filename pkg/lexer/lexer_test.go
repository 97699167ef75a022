package lexer

import (
	"testing"

	"charly/pkg/token"
)

func TestNextToken(t *testing.T) {
	input := `let a = 2 + 3 * 4
const b = "hi"
class A extends P, Q {
  property x
  func constructor(v) { self.x = v }
}
if (a < b) { break } else { a ** 2 % 3 }
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "a"},
		{token.ASSIGN, "="},
		{token.NUMBER, "2"},
		{token.PLUS, "+"},
		{token.NUMBER, "3"},
		{token.ASTERISK, "*"},
		{token.NUMBER, "4"},
		{token.CONST, "const"},
		{token.IDENT, "b"},
		{token.ASSIGN, "="},
		{token.STRING, "hi"},
		{token.CLASS, "class"},
		{token.IDENT, "A"},
		{token.EXTENDS, "extends"},
		{token.IDENT, "P"},
		{token.COMMA, ","},
		{token.IDENT, "Q"},
		{token.LBRACE, "{"},
		{token.PROPERTY, "property"},
		{token.IDENT, "x"},
		{token.FUNC, "func"},
		{token.IDENT, "constructor"},
		{token.LPAREN, "("},
		{token.IDENT, "v"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.SELF, "self"},
		{token.DOT, "."},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "v"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.LT, "<"},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.BREAK, "break"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.POW, "**"},
		{token.NUMBER, "2"},
		{token.PERCENT, "%"},
		{token.NUMBER, "3"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}
