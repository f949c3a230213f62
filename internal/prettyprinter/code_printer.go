package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/token"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter)
var operatorPrecedence = map[string]int{
	"=":  1,
	"||": 2,
	"&&": 3,
	"==": 4,
	"!=": 4,
	"<":  5,
	">":  5,
	"<=": 5,
	">=": 5,
	"++": 6,
	"+":  7,
	"-":  7,
	"*":  8,
	"/":  8,
	"%":  8,
}

const prefixPrecedence = 100

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10
}

type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
	column    int // current display column
	// canonical wraps every infix expression in parentheses and never
	// breaks argument lists. Deferred argument text is rendered this way.
	canonical bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: 100}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

// Render returns the canonical text of a node: infix expressions are always
// parenthesized, so `3 + int(5)` renders as `(3 + int(5))`.
func Render(node ast.Node) string {
	if node == nil {
		return ""
	}
	p := &CodePrinter{canonical: true}
	node.Accept(p)
	return p.String()
}

// Format pretty-prints source with minimal parentheses, breaking long
// argument lists at width.
func Format(node ast.Node, width int) string {
	p := NewCodePrinterWithWidth(width)
	node.Accept(p)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
	p.column = p.indent * 4
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	// Track column position
	if idx := strings.LastIndex(s, "\n"); idx != -1 {
		p.column = runewidth.StringWidth(s[idx+1:])
	} else {
		p.column += runewidth.StringWidth(s)
	}
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}

// flat renders an expression on one line with the same settings, for measuring.
func (p *CodePrinter) flat(expr ast.Expression) string {
	sub := &CodePrinter{canonical: p.canonical, indent: p.indent}
	p.printArg(sub, expr)
	return sub.String()
}

func (p *CodePrinter) printArg(target *CodePrinter, expr ast.Expression) {
	if expr == nil {
		target.write("<???>")
		return
	}
	target.printExpr(expr, 0, false)
}

// printExpr prints an expression, adding parentheses when needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.InfixExpression:
		prec := getPrecedence(e.Operator)
		needParens := p.canonical || prec < parentPrec || (prec == parentPrec && isRight)
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Left, prec, false)
		p.write(" " + e.Operator + " ")
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.AssignExpression:
		needParens := parentPrec > 0
		if needParens {
			p.write("(")
		}
		p.write(e.Name.Value)
		p.write(" = ")
		p.printExpr(e.Value, 0, true)
		if needParens {
			p.write(")")
		}
	case *ast.PrefixExpression:
		p.write(e.Operator)
		p.printExpr(e.Right, prefixPrecedence, false)
	default:
		expr.Accept(p)
	}
}

// printOperand prints the receiver of a call, member or index expression.
func (p *CodePrinter) printOperand(expr ast.Expression) {
	switch expr.(type) {
	case *ast.InfixExpression, *ast.PrefixExpression, *ast.AssignExpression, *ast.IfExpression, *ast.FunctionLiteral:
		if _, isInfix := expr.(*ast.InfixExpression); isInfix && p.canonical {
			p.printExpr(expr, 0, false)
			return
		}
		p.write("(")
		p.printExpr(expr, 0, false)
		p.write(")")
	default:
		p.printExpr(expr, prefixPrecedence, false)
	}
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for i, stmt := range n.Statements {
		if _, isFn := stmt.(*ast.FunctionStatement); isFn && i > 0 {
			p.writeln()
		}
		stmt.Accept(p)
		p.writeln()
		if _, isFn := stmt.(*ast.FunctionStatement); isFn && i < len(n.Statements)-1 {
			if _, nextFn := n.Statements[i+1].(*ast.FunctionStatement); !nextFn {
				p.writeln()
			}
		}
	}
}

func (p *CodePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.printExpr(n.Expression, 0, false)
}

func (p *CodePrinter) VisitFunctionStatement(n *ast.FunctionStatement) {
	if n.Lazy {
		p.write("lazy ")
	}
	p.write("fun ")
	p.write(n.Name.Value)
	p.printParameters(n.Parameters)
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) printParameters(params []*ast.Parameter) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		if param.IsVariadic {
			p.write("...")
		}
		p.write(param.Name.Value)
		if param.Default != nil {
			p.write(" = ")
			p.printExpr(param.Default, getPrecedence("="), true)
		}
	}
	p.write(")")
}

func (p *CodePrinter) VisitBlockStatement(n *ast.BlockStatement) {
	if n == nil {
		p.write("{}")
		return
	}
	if p.canonical && len(n.Statements) <= 1 {
		if len(n.Statements) == 0 {
			p.write("{}")
			return
		}
		p.write("{ ")
		n.Statements[0].Accept(p)
		p.write(" }")
		return
	}
	p.write("{\n")
	p.indent++
	for _, stmt := range n.Statements {
		p.writeIndent()
		stmt.Accept(p)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.write("return")
	if n.ReturnValue != nil {
		p.write(" ")
		p.printExpr(n.ReturnValue, 0, false)
	}
}

func (p *CodePrinter) VisitForStatement(n *ast.ForStatement) {
	p.write("for ")
	p.write(n.Variable.Value)
	p.write(" in ")
	p.printExpr(n.Iterable, 0, false)
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitBreakStatement(n *ast.BreakStatement) {
	p.write("break")
}

func (p *CodePrinter) VisitContinueStatement(n *ast.ContinueStatement) {
	p.write("continue")
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	if n == nil {
		p.write("nil")
		return
	}
	p.write(n.Value)
}

func (p *CodePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	if n.Token.Lexeme != "" {
		p.write(n.Token.Lexeme)
		return
	}
	p.write(strconv.FormatInt(n.Value, 10))
}

func (p *CodePrinter) VisitFloatLiteral(n *ast.FloatLiteral) {
	if n.Token.Lexeme != "" {
		p.write(n.Token.Lexeme)
		return
	}
	s := strconv.FormatFloat(n.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	p.write(s)
}

func (p *CodePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	if n.Token.Lexeme != "" {
		p.write(n.Token.Lexeme)
		return
	}
	p.write(strconv.Quote(n.Value))
}

func (p *CodePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	if n.Value {
		p.write("true")
	} else {
		p.write("false")
	}
}

func (p *CodePrinter) VisitNilLiteral(n *ast.NilLiteral) {
	p.write("nil")
}

func (p *CodePrinter) VisitListLiteral(n *ast.ListLiteral) {
	p.printList("[", "]", n.Elements)
}

// printList writes open, the comma separated items and close. In format
// mode items move to their own lines when the flat form would overflow.
func (p *CodePrinter) printList(open, close string, items []ast.Expression) {
	flatItems := make([]string, len(items))
	total := p.column + runewidth.StringWidth(open+close)
	for i, item := range items {
		flatItems[i] = p.flat(item)
		total += runewidth.StringWidth(flatItems[i]) + 2
	}
	multiline := !p.canonical && p.lineWidth > 0 && total > p.lineWidth && len(items) > 1

	p.write(open)
	if !multiline {
		for i := range items {
			if i > 0 {
				p.write(", ")
			}
			p.printArg(p, items[i])
		}
		p.write(close)
		return
	}

	p.writeln()
	p.indent++
	for i := range items {
		p.writeIndent()
		p.printArg(p, items[i])
		p.write(",")
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write(close)
}

func (p *CodePrinter) VisitRecordLiteral(n *ast.RecordLiteral) {
	if len(n.Fields) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	for i, f := range n.Fields {
		if i > 0 {
			p.write(", ")
		}
		p.write(recordKey(f.Key.Value))
		p.write(": ")
		p.printExpr(f.Value, 0, false)
	}
	p.write("}")
}

func recordKey(key string) string {
	if key == "" || token.IsKeyword(key) {
		return strconv.Quote(key)
	}
	for i, r := range key {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return strconv.Quote(key)
	}
	return key
}

func (p *CodePrinter) VisitPrefixExpression(n *ast.PrefixExpression) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitInfixExpression(n *ast.InfixExpression) {
	// When called directly (not via printExpr), use lowest precedence context
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitAssignExpression(n *ast.AssignExpression) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.printOperand(n.Function)
	p.printList("(", ")", n.Arguments)
}

func (p *CodePrinter) VisitNamedArgument(n *ast.NamedArgument) {
	p.write(n.Name.Value)
	p.write(": ")
	p.printExpr(n.Value, 0, false)
}

func (p *CodePrinter) VisitSpreadExpression(n *ast.SpreadExpression) {
	p.write("...")
	p.printExpr(n.Expression, prefixPrecedence, false)
}

func (p *CodePrinter) VisitKeywordSpreadExpression(n *ast.KeywordSpreadExpression) {
	p.write("**")
	p.printExpr(n.Expression, prefixPrecedence, false)
}

func (p *CodePrinter) VisitDeferExpression(n *ast.DeferExpression) {
	p.write("defer(")
	p.printExpr(n.Expression, 0, false)
	p.write(")")
}

func (p *CodePrinter) VisitMemberExpression(n *ast.MemberExpression) {
	p.printOperand(n.Left)
	p.write(".")
	p.write(n.Member.Value)
}

func (p *CodePrinter) VisitIndexExpression(n *ast.IndexExpression) {
	p.printOperand(n.Left)
	p.write("[")
	p.printExpr(n.Index, 0, false)
	p.write("]")
}

func (p *CodePrinter) VisitIfExpression(n *ast.IfExpression) {
	p.write("if ")
	p.printExpr(n.Condition, 0, false)
	p.write(" ")
	n.Consequence.Accept(p)
	if n.Alternative == nil {
		return
	}
	p.write(" else ")
	if len(n.Alternative.Statements) == 1 {
		if es, ok := n.Alternative.Statements[0].(*ast.ExpressionStatement); ok {
			if nested, ok := es.Expression.(*ast.IfExpression); ok {
				nested.Accept(p)
				return
			}
		}
	}
	n.Alternative.Accept(p)
}

func (p *CodePrinter) VisitFunctionLiteral(n *ast.FunctionLiteral) {
	p.write("fun")
	p.printParameters(n.Parameters)
	p.write(" ")
	n.Body.Accept(p)
}
