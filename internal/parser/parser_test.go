package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/lexer"
	"github.com/funvibe/lazex/internal/parser"
	"github.com/funvibe/lazex/internal/pipeline"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.HasErrors() {
		for _, err := range ctx.Errors {
			t.Errorf("parser error: %s", err)
		}
		t.FailNow()
	}
	return ctx.AstRoot.(*ast.Program)
}

func TestFunctionStatementKeepsSource(t *testing.T) {
	input := "x = 1\n\nlazy fun foo(something, ham = nil, ...rest) {\n    return something.raw()\n}\nfoo(x)\n"
	program := parseProgram(t, input)

	if len(program.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(program.Statements))
	}
	fn, ok := program.Statements[1].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("expected FunctionStatement, got %T", program.Statements[1])
	}
	if !fn.Lazy {
		t.Error("expected lazy function")
	}
	if fn.Name.Value != "foo" {
		t.Errorf("expected name foo, got %s", fn.Name.Value)
	}
	want := "lazy fun foo(something, ham = nil, ...rest) {\n    return something.raw()\n}"
	if fn.Source != want {
		t.Errorf("source mismatch:\nwant %q\ngot  %q", want, fn.Source)
	}
	if got := strings.Join(fn.ParameterNames(), ","); got != "something,ham,rest" {
		t.Errorf("unexpected params %s", got)
	}
	if !fn.Parameters[2].IsVariadic {
		t.Error("expected rest to be variadic")
	}
	if fn.Parameters[1].Default == nil {
		t.Error("expected default for ham")
	}
}

func TestCallArguments(t *testing.T) {
	program := parseProgram(t, "foo(3 + int(5), ...xs, ham: str(4), **opts)")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected CallExpression, got %T", stmt.Expression)
	}
	if len(call.Arguments) != 4 {
		t.Fatalf("expected 4 arguments, got %d", len(call.Arguments))
	}
	if _, ok := call.Arguments[0].(*ast.InfixExpression); !ok {
		t.Errorf("arg 0: expected InfixExpression, got %T", call.Arguments[0])
	}
	if _, ok := call.Arguments[1].(*ast.SpreadExpression); !ok {
		t.Errorf("arg 1: expected SpreadExpression, got %T", call.Arguments[1])
	}
	na, ok := call.Arguments[2].(*ast.NamedArgument)
	if !ok || na.Name.Value != "ham" {
		t.Errorf("arg 2: expected named argument ham, got %T", call.Arguments[2])
	}
	if _, ok := call.Arguments[3].(*ast.KeywordSpreadExpression); !ok {
		t.Errorf("arg 3: expected KeywordSpreadExpression, got %T", call.Arguments[3])
	}
}

func TestPrecedence(t *testing.T) {
	program := parseProgram(t, "a = 1 + 2 * 3 == 7 && !b")
	assign := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression)
	and, ok := assign.Value.(*ast.InfixExpression)
	if !ok || and.Operator != "&&" {
		t.Fatalf("expected && at the top, got %T", assign.Value)
	}
	eq := and.Left.(*ast.InfixExpression)
	if eq.Operator != "==" {
		t.Fatalf("expected ==, got %s", eq.Operator)
	}
	sum := eq.Left.(*ast.InfixExpression)
	if sum.Operator != "+" {
		t.Fatalf("expected +, got %s", sum.Operator)
	}
	if prod := sum.Right.(*ast.InfixExpression); prod.Operator != "*" {
		t.Fatalf("expected *, got %s", prod.Operator)
	}
}

func TestControlFlow(t *testing.T) {
	input := `
fun f(xs) {
    total = 0
    for x in xs {
        if x > 2 {
            break
        } else if x == 1 {
            continue
        }
        else {
            total = total + x
        }
    }
    return total
}
g = fun(a) { a * 2 }
r = {spam: 2, "eggs": [1, 2,]}
r.spam
xs[0]
h = defer(x / 0)
`
	program := parseProgram(t, input)
	if len(program.Statements) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(program.Statements))
	}
	fn := program.Statements[0].(*ast.FunctionStatement)
	if fn.Lazy {
		t.Error("plain fun must not be lazy")
	}
	loop, ok := fn.Body.Statements[1].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", fn.Body.Statements[1])
	}
	ifExpr := loop.Body.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.IfExpression)
	if ifExpr.Alternative == nil {
		t.Fatal("expected else-if chain")
	}
	nested := ifExpr.Alternative.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.IfExpression)
	if nested.Alternative == nil {
		t.Error("expected else on a new line to attach to the nested if")
	}
	rec := program.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression).Value.(*ast.RecordLiteral)
	if len(rec.Fields) != 2 || rec.Fields[1].Key.Value != "eggs" {
		t.Errorf("unexpected record fields %v", rec.Fields)
	}
	d := program.Statements[5].(*ast.ExpressionStatement).Expression.(*ast.AssignExpression).Value
	if _, ok := d.(*ast.DeferExpression); !ok {
		t.Errorf("expected DeferExpression, got %T", d)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"positional_after_named", "f(a: 1, 2)", "positional argument cannot follow named arguments"},
		{"double_spread", "f(...a, ...b)", "only one ... spread"},
		{"double_kw_spread", "f(**a, **b)", "only one ** spread"},
		{"duplicate_named", "f(a: 1, a: 2)", "duplicate named argument a"},
		{"variadic_not_last", "fun f(...a, b) { a }", "variadic parameter must be last"},
		{"bad_assign", "1 = 2", "invalid assignment target"},
		{"unterminated", "fun f() { 1", "unterminated block"},
		{"lazy_without_fun", "lazy x", "expected fun or ( after lazy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseProgram(tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestParseFunctionAndExpression(t *testing.T) {
	fn, err := parser.ParseFunction("lazy fun bar() { return foo(x / 0) }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fn.Name.Value != "bar" || !fn.Lazy {
		t.Errorf("unexpected function %s lazy=%v", fn.Name.Value, fn.Lazy)
	}

	if _, err := parser.ParseFunction("x = 1"); err == nil {
		t.Error("expected error for non-function source")
	}

	expr, err := parser.ParseExpression("x+3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := expr.(*ast.InfixExpression); !ok {
		t.Errorf("expected InfixExpression, got %T", expr)
	}

	if _, err := parser.ParseExpression("x +"); err == nil {
		t.Error("expected error for incomplete expression")
	}
}
