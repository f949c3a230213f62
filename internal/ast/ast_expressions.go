package ast

import (
	"github.com/funvibe/lazex/internal/token"
)

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) Accept(v Visitor)      { v.VisitIdentifier(i) }
func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) Accept(v Visitor)      { v.VisitIntegerLiteral(il) }
func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) Accept(v Visitor)      { v.VisitFloatLiteral(fl) }
func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) Accept(v Visitor)      { v.VisitStringLiteral(sl) }
func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) Accept(v Visitor)      { v.VisitBooleanLiteral(b) }
func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }

type NilLiteral struct {
	Token token.Token
}

func (n *NilLiteral) Accept(v Visitor)      { v.VisitNilLiteral(n) }
func (n *NilLiteral) expressionNode()       {}
func (n *NilLiteral) TokenLiteral() string  { return n.Token.Lexeme }
func (n *NilLiteral) GetToken() token.Token { return n.Token }

type ListLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (ll *ListLiteral) Accept(v Visitor)      { v.VisitListLiteral(ll) }
func (ll *ListLiteral) expressionNode()       {}
func (ll *ListLiteral) TokenLiteral() string  { return ll.Token.Lexeme }
func (ll *ListLiteral) GetToken() token.Token { return ll.Token }

// RecordField keeps fields in source order so rendering is stable.
type RecordField struct {
	Key   *Identifier
	Value Expression
}

type RecordLiteral struct {
	Token  token.Token // '{'
	Fields []*RecordField
}

func (rl *RecordLiteral) Accept(v Visitor)      { v.VisitRecordLiteral(rl) }
func (rl *RecordLiteral) expressionNode()       {}
func (rl *RecordLiteral) TokenLiteral() string  { return rl.Token.Lexeme }
func (rl *RecordLiteral) GetToken() token.Token { return rl.Token }

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) Accept(v Visitor)      { v.VisitPrefixExpression(pe) }
func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) Accept(v Visitor)      { v.VisitInfixExpression(ie) }
func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }

// AssignExpression binds a name in the current scope.
// x = 5
type AssignExpression struct {
	Token token.Token // '='
	Name  *Identifier
	Value Expression
}

func (ae *AssignExpression) Accept(v Visitor)      { v.VisitAssignExpression(ae) }
func (ae *AssignExpression) expressionNode()       {}
func (ae *AssignExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token { return ae.Token }

// CallExpression is f(args). Arguments may contain NamedArgument,
// SpreadExpression and KeywordSpreadExpression nodes.
type CallExpression struct {
	Token     token.Token // '('
	Function  Expression
	Arguments []Expression
	// Lazy is set by the rewriter: the call passes deferred handles and
	// evaluating it builds one scope snapshot over Free.
	Lazy bool
	Free []string
}

func (ce *CallExpression) Accept(v Visitor)      { v.VisitCallExpression(ce) }
func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// NamedArgument is name: value inside a call's argument list.
type NamedArgument struct {
	Token token.Token // the name
	Name  *Identifier
	Value Expression
}

func (na *NamedArgument) Accept(v Visitor)      { v.VisitNamedArgument(na) }
func (na *NamedArgument) expressionNode()       {}
func (na *NamedArgument) TokenLiteral() string  { return na.Token.Lexeme }
func (na *NamedArgument) GetToken() token.Token { return na.Token }

// SpreadExpression is ...expr in a call argument list.
type SpreadExpression struct {
	Token      token.Token // '...'
	Expression Expression
}

func (se *SpreadExpression) Accept(v Visitor)      { v.VisitSpreadExpression(se) }
func (se *SpreadExpression) expressionNode()       {}
func (se *SpreadExpression) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SpreadExpression) GetToken() token.Token { return se.Token }

// KeywordSpreadExpression is **expr in a call argument list. The value must be a record.
type KeywordSpreadExpression struct {
	Token      token.Token // '**'
	Expression Expression
}

func (ks *KeywordSpreadExpression) Accept(v Visitor)      { v.VisitKeywordSpreadExpression(ks) }
func (ks *KeywordSpreadExpression) expressionNode()       {}
func (ks *KeywordSpreadExpression) TokenLiteral() string  { return ks.Token.Lexeme }
func (ks *KeywordSpreadExpression) GetToken() token.Token { return ks.Token }

// DeferExpression is defer(expr). Evaluating it never evaluates Expression;
// it produces a handle over Text.
type DeferExpression struct {
	Token      token.Token // 'defer'
	Expression Expression
	// Text is the canonical rendering of Expression, filled by the rewriter.
	// When empty it is rendered on demand.
	Text string
}

func (de *DeferExpression) Accept(v Visitor)      { v.VisitDeferExpression(de) }
func (de *DeferExpression) expressionNode()       {}
func (de *DeferExpression) TokenLiteral() string  { return de.Token.Lexeme }
func (de *DeferExpression) GetToken() token.Token { return de.Token }

// MemberExpression is obj.name.
type MemberExpression struct {
	Token  token.Token // '.'
	Left   Expression
	Member *Identifier
}

func (me *MemberExpression) Accept(v Visitor)      { v.VisitMemberExpression(me) }
func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }

type IndexExpression struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) Accept(v Visitor)      { v.VisitIndexExpression(ie) }
func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }

type IfExpression struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement // else-if chains are nested blocks with a single IfExpression
}

func (ie *IfExpression) Accept(v Visitor)      { v.VisitIfExpression(ie) }
func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// FunctionLiteral represents an anonymous function.
// fun(x, y) { x + y }
type FunctionLiteral struct {
	Token      token.Token // The 'fun' token
	Parameters []*Parameter
	Body       *BlockStatement
}

func (fl *FunctionLiteral) Accept(v Visitor)      { v.VisitFunctionLiteral(fl) }
func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }

func (fl *FunctionLiteral) ParameterNames() []string {
	return parameterNames(fl.Parameters)
}
