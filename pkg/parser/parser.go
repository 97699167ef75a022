// Package parser implements a Pratt (precedence-climbing) recursive-descent
// parser that turns a token.Token stream into an *ast.Program.
//
// The parser is an external collaborator from the evaluator's point of view
// (spec.md §1): its concrete grammar decisions beyond the AST node set named
// in spec.md §6 are this repo's own and are not part of the evaluator's
// contract.
package parser

import (
	"fmt"
	"strconv"

	"charly/pkg/ast"
	"charly/pkg/lexer"
	"charly/pkg/token"
)

const (
	_ int = iota
	LOWEST
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SUM         // + -
	PRODUCT     // * / %
	POW         // **
	PREFIX      // -x !x
	CALL        // f(x)
	MEMBER      // x.y  x[y]
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.PERCENT:  PRODUCT,
	token.POW:      POW,
	token.LPAREN:   CALL,
	token.DOT:      MEMBER,
	token.LBRACKET: MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []string

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:     p.parseIdentifier,
		token.NUMBER:    p.parseNumericLiteral,
		token.STRING:    p.parseStringLiteral,
		token.TRUE:      p.parseBoolean,
		token.FALSE:     p.parseBoolean,
		token.NULL:      p.parseNull,
		token.NAN:       p.parseNan,
		token.SELF:      p.parseIdentifier,
		token.BANG:      p.parseUnaryExpression,
		token.MINUS:     p.parseUnaryExpression,
		token.LPAREN:    p.parseGroupedExpression,
		token.LBRACKET:  p.parseArrayLiteral,
		token.FUNC:      p.parseFunctionLiteral,
		token.CLASS:     p.parseClassLiteral,
		token.PRIMITIVE: p.parsePrimitiveClassLiteral,
		token.IF:        p.parseIfExpression,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.ASTERISK: p.parseBinaryExpression,
		token.PERCENT:  p.parseBinaryExpression,
		token.POW:      p.parseBinaryExpression,
		token.EQ:       p.parseComparisonExpression,
		token.NOT_EQ:   p.parseComparisonExpression,
		token.LT:       p.parseComparisonExpression,
		token.GT:       p.parseComparisonExpression,
		token.LTE:      p.parseComparisonExpression,
		token.GTE:      p.parseComparisonExpression,
		token.AND:      p.parseAnd,
		token.OR:       p.parseOr,
		token.LPAREN:   p.parseCallExpression,
		token.DOT:      p.parseMemberExpression,
		token.LBRACKET: p.parseIndexExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: expected next token to be %s, got %s (%q) instead",
		p.peekToken.Line, t, p.peekToken.Type, p.peekToken.Literal))
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: no prefix parse function for %s found", p.curToken.Line, t))
}

// skipTerminator consumes a single optional statement-terminating
// semicolon; statements are otherwise separated only by the grammar itself.
func (p *Parser) skipTerminator() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
}

// ParseProgram parses a whole source file into an *ast.Program. path is
// attached verbatim (spec.md §1: the source-file I/O layer hands the
// evaluator a path string, opaque to the parser itself).
func ParseProgram(path string, l *lexer.Lexer) (*ast.Program, []string) {
	p := New(l)
	block := &ast.Block{Token: p.curToken}
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return &ast.Program{Path: path, Tree: block}, p.errors
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseVariableInitialisation()
	case token.CONST:
		return p.parseConstantInitialisation()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.PROPERTY:
		return p.parsePropertyDeclaration()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.IF:
		stmt := p.parseIfStatement()
		if stmt == nil {
			return nil
		}
		return stmt
	default:
		return p.parseAssignmentOrExpressionStatement()
	}
}

func (p *Parser) parseVariableInitialisation() *ast.VariableInitialisation {
	stmt := &ast.VariableInitialisation{Token: p.curToken}
	if p.peekTokenIs(token.SELF) {
		p.nextToken()
	} else if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.skipTerminator()
	return stmt
}

func (p *Parser) parseConstantInitialisation() *ast.ConstantInitialisation {
	stmt := &ast.ConstantInitialisation{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.skipTerminator()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		p.skipTerminator()
		return stmt
	}
	p.nextToken()
	stmt.Expression = p.parseExpression(LOWEST)
	p.skipTerminator()
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Token: p.curToken}
	p.skipTerminator()
	return stmt
}

func (p *Parser) parsePropertyDeclaration() *ast.PropertyDeclaration {
	stmt := &ast.PropertyDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = p.curToken.Literal
	p.skipTerminator()
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequent = p.parseBlock()
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequent = p.parseBlock()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			stmt.Alternate = p.parseIfStatement()
		} else if p.expectPeek(token.LBRACE) {
			stmt.Alternate = p.parseBlock()
		}
	}
	return stmt
}

// parseAssignmentOrExpressionStatement disambiguates `ident = expr` and
// `member.expr = expr` from a bare expression statement by speculatively
// parsing the left-hand side first.
func (p *Parser) parseAssignmentOrExpressionStatement() ast.Statement {
	startToken := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if p.peekTokenIs(token.ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
			p.nextToken() // on '='
			p.nextToken() // on first token of value
			value := p.parseExpression(LOWEST)
			p.skipTerminator()
			return &ast.VariableAssignment{Token: startToken, Target: expr, Value: value}
		}
	}

	p.skipTerminator()
	return &ast.ExpressionStatement{Token: startToken, Expression: expr}
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
}

func (p *Parser) parseNumericLiteral() ast.Expression {
	lit := &ast.NumericLiteral{Token: p.curToken}
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("line %d: could not parse %q as a number", p.curToken.Line, p.curToken.Literal))
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseNan() ast.Expression {
	return &ast.NANLiteral{Token: p.curToken}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	arr.Elements = p.parseExpressionList(token.RBRACKET)
	return arr
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	expr := &ast.UnaryExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseComparisonExpression(left ast.Expression) ast.Expression {
	expr := &ast.ComparisonExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

func (p *Parser) parseAnd(left ast.Expression) ast.Expression {
	expr := &ast.And{Token: p.curToken, Left: left}
	p.nextToken()
	expr.Right = p.parseExpression(AND)
	return expr
}

func (p *Parser) parseOr(left ast.Expression) ast.Expression {
	expr := &ast.Or{Token: p.curToken, Left: left}
	p.nextToken()
	expr.Right = p.parseExpression(OR)
	return expr
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Token: p.curToken, Object: left}
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.SELF) {
		p.peekError(token.IDENT)
		return nil
	}
	p.nextToken()
	expr.Property = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	return expr
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Object: left}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Callee: callee}
	expr.Arguments = p.parseExpressionList(token.RPAREN)
	return expr
}

func (p *Parser) parseIfExpression() ast.Expression {
	return p.parseIfStatement()
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		name := p.curToken.Literal
		lit.Name = &name
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	lit.Parameters = p.parseFunctionParameters()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlock()
	return lit
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	var identifiers []*ast.Identifier
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers
	}
	p.nextToken()
	identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal})
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		identifiers = append(identifiers, &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal})
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return identifiers
}

func (p *Parser) parseClassLiteral() ast.Expression {
	lit := &ast.ClassLiteral{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	lit.Name = p.curToken.Literal

	if p.peekTokenIs(token.EXTENDS) {
		p.nextToken()
		p.nextToken()
		lit.Parents = append(lit.Parents, &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal})
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			lit.Parents = append(lit.Parents, &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal})
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlock()
	return lit
}

func (p *Parser) parsePrimitiveClassLiteral() ast.Expression {
	lit := &ast.PrimitiveClassLiteral{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	lit.Name = p.curToken.Literal
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlock()
	return lit
}
