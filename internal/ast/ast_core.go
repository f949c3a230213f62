package ast

import (
	"github.com/funvibe/lazex/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	Accept(v Visitor)
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }
func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) Accept(v Visitor)      { v.VisitExpressionStatement(es) }
func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// FunctionStatement is a named function declaration.
// lazy fun name(a, b = 1, ...rest) { ... }
type FunctionStatement struct {
	Token      token.Token // 'fun' or 'lazy'
	Name       *Identifier
	Parameters []*Parameter
	Body       *BlockStatement
	Lazy       bool
	// Source is the exact declaration text, from the first keyword to the closing brace.
	Source string
}

type Parameter struct {
	Token      token.Token
	Name       *Identifier
	IsVariadic bool
	Default    Expression // Optional default value (e.g., fun f(x, y = 10))
}

func (fs *FunctionStatement) Accept(v Visitor)      { v.VisitFunctionStatement(fs) }
func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }

// ParameterNames returns the declared names in order, variadic included.
func (fs *FunctionStatement) ParameterNames() []string {
	return parameterNames(fs.Parameters)
}

func parameterNames(params []*Parameter) []string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name.Value)
	}
	return names
}

type BlockStatement struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (bs *BlockStatement) Accept(v Visitor)      { v.VisitBlockStatement(bs) }
func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) expressionNode()       {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }

type ReturnStatement struct {
	Token       token.Token
	ReturnValue Expression // nil for bare return
}

func (rs *ReturnStatement) Accept(v Visitor)      { v.VisitReturnStatement(rs) }
func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

// ForStatement iterates over a list, a record's keys or a string's characters.
// for x in xs { ... }
type ForStatement struct {
	Token    token.Token
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fs *ForStatement) Accept(v Visitor)      { v.VisitForStatement(fs) }
func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) Accept(v Visitor)      { v.VisitBreakStatement(bs) }
func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) Accept(v Visitor)      { v.VisitContinueStatement(cs) }
func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }
