package lazy

import (
	"fmt"
	"log/slog"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/prettyprinter"
	"github.com/funvibe/lazex/internal/token"
)

// rewriter turns the arguments of calls to lazy functions into defer(...)
// constructions. Each node is visited once.
type rewriter struct {
	resolver Resolver
	scopes   []map[string]bool
	visited  map[ast.Node]bool
	calls    int
	// enterFunctions controls whether nested function statements are
	// rewritten. The main chunk leaves them to their own activation.
	enterFunctions bool
}

// Rewrite rewrites fn's body in place and returns fn. Parameters and
// names bound in the body shadow the resolver. Calls already marked lazy
// are skipped, so rewriting twice is a no-op.
func Rewrite(fn *ast.FunctionStatement, resolver Resolver) (*ast.FunctionStatement, error) {
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("rewrite: empty function declaration")
	}
	rw := &rewriter{resolver: resolver, visited: map[ast.Node]bool{}, enterFunctions: true}
	rw.push(fn.Parameters, fn.Body)
	rw.walk(fn.Body)
	slog.Debug("rewrote function", "name", fn.Name.Value, "calls", rw.calls)
	return fn, nil
}

// RewriteProgram rewrites top-level calls of a chunk in place and reports how
// many calls were rewritten. Function declarations are not entered.
func RewriteProgram(program *ast.Program, resolver Resolver) int {
	rw := &rewriter{resolver: resolver, visited: map[ast.Node]bool{}}
	// Declarations are what the resolver answers for; only assignments
	// and loop variables shadow them.
	top := map[string]bool{}
	for _, stmt := range program.Statements {
		if _, ok := stmt.(*ast.FunctionStatement); ok {
			continue
		}
		for name := range ast.LocalNames(stmt) {
			top[name] = true
		}
	}
	rw.scopes = append(rw.scopes, top)
	rw.walk(program)
	return rw.calls
}

func (rw *rewriter) push(params []*ast.Parameter, body *ast.BlockStatement) {
	scope := ast.LocalNames(body)
	for _, p := range params {
		scope[p.Name.Value] = true
	}
	rw.scopes = append(rw.scopes, scope)
}

func (rw *rewriter) pop() {
	rw.scopes = rw.scopes[:len(rw.scopes)-1]
}

func (rw *rewriter) shadowed(name string) bool {
	for _, s := range rw.scopes {
		if s[name] {
			return true
		}
	}
	return false
}

// walk rewrites children before parents, so nested lazy calls are handled
// innermost-first.
func (rw *rewriter) walk(n ast.Node) {
	if n == nil || rw.visited[n] {
		return
	}
	rw.visited[n] = true

	switch n := n.(type) {
	case *ast.FunctionStatement:
		if !rw.enterFunctions {
			return
		}
		rw.push(n.Parameters, n.Body)
		defer rw.pop()
	case *ast.FunctionLiteral:
		rw.push(n.Parameters, n.Body)
		defer rw.pop()
	}

	for _, c := range ast.Children(n) {
		rw.walk(c)
	}

	if call, ok := n.(*ast.CallExpression); ok && rw.qualifies(call) {
		rw.rewriteCall(call)
	}
}

// calleePath returns the identifier chain of a callee, or nil when the
// callee is not a plain name or dotted name.
func calleePath(e ast.Expression) []string {
	switch e := e.(type) {
	case *ast.Identifier:
		return []string{e.Value}
	case *ast.MemberExpression:
		left := calleePath(e.Left)
		if left == nil {
			return nil
		}
		return append(left, e.Member.Value)
	}
	return nil
}

func (rw *rewriter) qualifies(call *ast.CallExpression) bool {
	if call.Lazy {
		return false
	}
	path := calleePath(call.Function)
	if path == nil || rw.shadowed(path[0]) {
		return false
	}
	return rw.resolver != nil && rw.resolver.ResolveLazy(path)
}

func (rw *rewriter) rewriteCall(call *ast.CallExpression) {
	var deferred []ast.Node
	for i, arg := range call.Arguments {
		rewritten := rw.rewriteArgument(arg)
		call.Arguments[i] = rewritten
		if d := deferredOf(rewritten); d != nil {
			deferred = append(deferred, d.Expression)
		}
	}
	call.Lazy = true
	call.Free = ast.FreeVariables(deferred...)
	rw.calls++
}

// deferredOf returns the defer node carried by an argument, if any.
func deferredOf(arg ast.Expression) *ast.DeferExpression {
	switch a := arg.(type) {
	case *ast.DeferExpression:
		return a
	case *ast.SpreadExpression:
		d, _ := a.Expression.(*ast.DeferExpression)
		return d
	case *ast.KeywordSpreadExpression:
		d, _ := a.Expression.(*ast.DeferExpression)
		return d
	case *ast.NamedArgument:
		d, _ := a.Value.(*ast.DeferExpression)
		return d
	}
	return nil
}

func (rw *rewriter) rewriteArgument(arg ast.Expression) ast.Expression {
	switch a := arg.(type) {
	case *ast.DeferExpression:
		return a
	case *ast.SpreadExpression:
		if _, ok := a.Expression.(*ast.DeferExpression); !ok {
			a.Expression = deferNode(a.Expression)
		}
		return a
	case *ast.KeywordSpreadExpression:
		if _, ok := a.Expression.(*ast.DeferExpression); !ok {
			a.Expression = deferNode(a.Expression)
		}
		return a
	case *ast.NamedArgument:
		if _, ok := a.Value.(*ast.DeferExpression); !ok {
			a.Value = deferNode(a.Value)
		}
		return a
	}
	return deferNode(arg)
}

// deferNode wraps e. A nested lazy call is deferred whole: its own
// rewritten arguments stay in the text, so evaluating the handle runs the
// inner call and delivers whatever it returns, its handles included.
func deferNode(e ast.Expression) *ast.DeferExpression {
	tok := e.GetToken()
	return &ast.DeferExpression{
		Token:      token.Token{Type: token.DEFER, Lexeme: "defer", Line: tok.Line, Column: tok.Column},
		Expression: e,
		Text:       prettyprinter.Render(e),
	}
}
