package parser

import (
	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/token"
)

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

// parseCallArguments parses f(1, name: 2, ...rest, **opts).
// Positional arguments cannot follow named ones, and each spread form
// appears at most once.
func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}
	named := map[string]bool{}
	isNamedMode := false
	hasSpread, hasKwSpread := false, false

	// Move past LPAREN
	p.nextToken()
	p.skipNewlines()
	if p.curTokenIs(token.RPAREN) {
		return args, true
	}

	for {
		var arg ast.Expression
		switch {
		case p.curTokenIs(token.ELLIPSIS):
			if hasSpread {
				p.addError(diagnostics.ErrP006, p.curToken, "only one ... spread is allowed per call")
				return nil, false
			}
			hasSpread = true
			spread := &ast.SpreadExpression{Token: p.curToken}
			p.nextToken()
			spread.Expression = p.parseExpression(LOWEST)
			if spread.Expression == nil {
				return nil, false
			}
			arg = spread

		case p.curTokenIs(token.POWER):
			if hasKwSpread {
				p.addError(diagnostics.ErrP006, p.curToken, "only one ** spread is allowed per call")
				return nil, false
			}
			hasKwSpread = true
			spread := &ast.KeywordSpreadExpression{Token: p.curToken}
			p.nextToken()
			spread.Expression = p.parseExpression(LOWEST)
			if spread.Expression == nil {
				return nil, false
			}
			arg = spread

		case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON):
			isNamedMode = true
			name := p.curToken.Lexeme
			if named[name] {
				p.addError(diagnostics.ErrP006, p.curToken, "duplicate named argument "+name)
				return nil, false
			}
			named[name] = true
			na := &ast.NamedArgument{Token: p.curToken, Name: &ast.Identifier{Token: p.curToken, Value: name}}
			p.nextToken() // consume name
			p.nextToken() // consume :
			p.skipNewlines()
			na.Value = p.parseExpression(LOWEST)
			if na.Value == nil {
				return nil, false
			}
			arg = na

		default:
			if isNamedMode {
				p.addError(diagnostics.ErrP005, p.curToken, "positional argument cannot follow named arguments")
				return nil, false
			}
			arg = p.parseExpression(LOWEST)
			if arg == nil {
				return nil, false
			}
		}
		args = append(args, arg)

		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // move to comma
		p.nextToken() // move past comma
		p.skipNewlines()
		// trailing comma
		if p.curTokenIs(token.RPAREN) {
			return args, true
		}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return args, true
}
