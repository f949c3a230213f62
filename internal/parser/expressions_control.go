package parser

import (
	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/token"
)

// if cond { ... } else if cond { ... } else { ... }
func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlockStatement()
	if expression.Consequence == nil {
		return nil
	}

	// else may sit on the next line
	if p.peekTokenIs(token.NEWLINE) {
		next := p.stream.Peek(8)
		for _, tok := range next {
			if tok.Type == token.NEWLINE {
				continue
			}
			if tok.Type == token.ELSE {
				p.skipPeekNewlines()
			}
			break
		}
	}
	if !p.peekTokenIs(token.ELSE) {
		return expression
	}
	p.nextToken()

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		elseTok := p.curToken
		nested := p.parseIfExpression()
		if nested == nil {
			return nil
		}
		expression.Alternative = &ast.BlockStatement{
			Token:      elseTok,
			Statements: []ast.Statement{&ast.ExpressionStatement{Token: elseTok, Expression: nested}},
		}
		return expression
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Alternative = p.parseBlockStatement()
	if expression.Alternative == nil {
		return nil
	}
	return expression
}

// fun(a, b) { ... }
func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	lit.Parameters = params
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockStatement()
	if lit.Body == nil {
		return nil
	}
	return lit
}

// defer(expr)
func (p *Parser) parseDeferExpression() ast.Expression {
	exp := &ast.DeferExpression{Token: p.curToken}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()
	exp.Expression = p.parseExpression(LOWEST)
	if exp.Expression == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}
