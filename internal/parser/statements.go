package parser

import (
	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LAZY:
		if p.peekTokenIs(token.FUN) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	case token.FUN:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
		return p.parseExpressionStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseFunctionStatement parses [lazy] fun name(params) { body }.
// The exact declaration text is kept on the node.
func (p *Parser) parseFunctionStatement() ast.Statement {
	start := p.curToken
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if p.curTokenIs(token.LAZY) {
		stmt.Lazy = true
		if !p.expectPeek(token.FUN) {
			return nil
		}
	}
	if !p.peekTokenIs(token.IDENT) {
		p.addError(diagnostics.ErrP002, p.peekToken, "expected function name", p.peekToken.Lexeme)
		return nil
	}
	p.nextToken()
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	stmt.Parameters = params

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	stmt.Source = p.sourceBetween(start, p.curToken)
	return stmt
}

// parseFunctionParameters is called with curToken on '(' and leaves it on ')'.
func (p *Parser) parseFunctionParameters() ([]*ast.Parameter, bool) {
	params := []*ast.Parameter{}
	seen := map[string]bool{}

	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(token.RPAREN) {
		return params, true
	}

	for {
		param := &ast.Parameter{Token: p.curToken}
		if p.curTokenIs(token.ELLIPSIS) {
			param.IsVariadic = true
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			p.addError(diagnostics.ErrP002, p.curToken, "expected parameter name", p.curToken.Lexeme)
			return nil, false
		}
		name := p.curToken.Lexeme
		if seen[name] {
			p.addError(diagnostics.ErrP006, p.curToken, "duplicate parameter "+name)
			return nil, false
		}
		seen[name] = true
		param.Name = &ast.Identifier{Token: p.curToken, Value: name}

		if p.peekTokenIs(token.ASSIGN) {
			if param.IsVariadic {
				p.addError(diagnostics.ErrP006, p.peekToken, "variadic parameter cannot have a default")
				return nil, false
			}
			p.nextToken()
			p.nextToken()
			param.Default = p.parseExpression(ASSIGN)
			if param.Default == nil {
				return nil, false
			}
		}
		params = append(params, param)

		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		if param.IsVariadic {
			p.addError(diagnostics.ErrP006, p.peekToken, "variadic parameter must be last")
			return nil, false
		}
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseBlockStatement is called with curToken on '{' and leaves it on '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError(diagnostics.ErrP005, p.curToken, "unterminated block, expected }")
			return nil
		}
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
	return block
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	if stmt.ReturnValue == nil {
		return nil
	}
	return stmt
}

// for x in xs { ... }
func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if stmt.Iterable == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}
