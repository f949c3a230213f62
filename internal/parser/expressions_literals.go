package parser

import (
	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/token"
)

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, ok := p.curToken.Literal.(int64)
	if !ok {
		p.addError(diagnostics.ErrP007, p.curToken, "could not parse as integer", p.curToken.Lexeme)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, ok := p.curToken.Literal.(float64)
	if !ok {
		p.addError(diagnostics.ErrP007, p.curToken, "could not parse as float", p.curToken.Lexeme)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

// [a, b, c]
func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	elements, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	list.Elements = elements
	return list
}

// parseExpressionList is called with curToken on the opening delimiter and
// leaves it on end. Newlines and a trailing comma are allowed.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}
	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(end) {
		return list, true
	}

	for {
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		list = append(list, exp)

		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
		p.skipNewlines()
		if p.curTokenIs(end) {
			return list, true
		}
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

// {name: value, other: value}
func (p *Parser) parseRecordLiteral() ast.Expression {
	rec := &ast.RecordLiteral{Token: p.curToken}
	seen := map[string]bool{}

	p.nextToken()
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) {
		if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.STRING) {
			p.addError(diagnostics.ErrP002, p.curToken, "expected record field name", p.curToken.Lexeme)
			return nil
		}
		keyTok := p.curToken
		key := keyTok.Lexeme
		if keyTok.Type == token.STRING {
			key, _ = keyTok.Literal.(string)
		}
		if seen[key] {
			p.addError(diagnostics.ErrP006, keyTok, "duplicate record field "+key)
			return nil
		}
		seen[key] = true

		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		p.skipNewlines()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		rec.Fields = append(rec.Fields, &ast.RecordField{
			Key:   &ast.Identifier{Token: keyTok, Value: key},
			Value: value,
		})

		p.skipPeekNewlines()
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			p.skipNewlines()
			continue
		}
		if !p.expectPeek(token.RBRACE) {
			return nil
		}
		break
	}
	return rec
}
