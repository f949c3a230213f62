package evaluator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/lazy"
	"github.com/funvibe/lazex/internal/parser"
)

type testRun struct {
	eval   *Evaluator
	env    *Environment
	result Object
	out    string
}

func run(t *testing.T, src string) testRun {
	t.Helper()
	program, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	lazy.RewriteProgram(program, lazy.NewDeclResolver(program))

	var out bytes.Buffer
	e := New()
	e.Registry = lazy.NewRegistry()
	e.Out = &out
	env := e.NewGlobalEnvironment()
	result := e.Eval(program, env)
	return testRun{eval: e, env: env, result: result, out: out.String()}
}

func mustValue(t *testing.T, r testRun) Object {
	t.Helper()
	if errObj, ok := r.result.(*Error); ok {
		t.Fatalf("unexpected error: %s", errObj.Inspect())
	}
	return r.result
}

func mustError(t *testing.T, r testRun, want string) *Error {
	t.Helper()
	errObj, ok := r.result.(*Error)
	if !ok {
		t.Fatalf("expected error containing %q, got %s", want, r.result.Inspect())
	}
	if !strings.Contains(errObj.Message, want) {
		t.Fatalf("expected error containing %q, got %q", want, errObj.Message)
	}
	return errObj
}

func TestEvalBasics(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"arithmetic", "1 + 2 * 3", "7"},
		{"float", "7 / 2.0", "3.5"},
		{"concat", `"a" ++ "b"`, "ab"},
		{"list_concat", "[1] ++ [2]", "[1, 2]"},
		{"compare", "1 < 2 && 2 <= 2", "true"},
		{"short_circuit", "false && (1 / 0)", "false"},
		{"record", "r = {a: 1, b: \"x\"}\nr.b", "x"},
		{"index", "[10, 20, 30][-1]", "30"},
		{"if_else", "if 1 > 2 { 1 } else if 2 > 1 { 2 } else { 3 }", "2"},
		{"function", "fun add(a, b = 10) { return a + b }\nadd(1) + add(1, b: 2)", "14"},
		{"variadic", "fun f(a, ...rest) { return rest }\nf(1, 2, 3)", "[2, 3]"},
		{"spread_call", "fun f(a, b) { return a - b }\nf(...[5, 3])", "2"},
		{"kwspread_call", "fun f(a, b) { return a - b }\nf(**{b: 1, a: 4})", "3"},
		{"lambda_closure", "fun mk(n) { return fun(x) { x + n } }\nmk(2)(3)", "5"},
		{"for_loop", "s = 0\nfor i in range(5) {\n    if i == 3 { break }\n    s = s + i\n}\ns", "3"},
		{"hoisting", "r = later(1)\nfun later(x) { return x + 1 }\nr", "2"},
		{"builtins", "[len(\"héllo\"), str(12), int(\"7\"), type(1.5), contains(\"abc\", \"b\"), keys({x: 1})]",
			`[5, "12", 7, "Float", true, ["x"]]`},
		{"int_truncates", "[int(3.9), int(-2.5)]", "[3, -2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustValue(t, run(t, tt.input))
			if got.Inspect() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got.Inspect())
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"division", "1 / 0", "division by zero"},
		{"unknown_identifier", "nope", "identifier not found: nope"},
		{"missing_argument", "fun f(a) { return a }\nf()", "missing argument a"},
		{"unexpected_keyword", "fun f(a) { return a }\nf(1, z: 2)", "unexpected keyword argument z"},
		{"type_mismatch", `1 + "a"`, "type mismatch"},
		{"assert", `assert(1 == 2, "nope")`, "assertion failed: nope"},
		{"recursion", "fun r(n) { return r(n + 1) }\nr(0)", "maximum recursion depth exceeded"},
		{"break_outside", "break", "break outside of a loop"},
		{"int_out_of_range", "int(10000000000000000000000.0)", "to Int"},
		{"lazy_spread_not_list", "h = lazy(fun(a) { return a })\nh(...5)", "cannot spread Int"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustError(t, run(t, tt.input), tt.want)
		})
	}
}

func TestErrorLocation(t *testing.T) {
	r := run(t, "x = 1\ny = x / 0")
	errObj := mustError(t, r, "division by zero")
	if errObj.Line != 2 {
		t.Errorf("expected error on line 2, got %d", errObj.Line)
	}
}

func TestDeferredDivisionByZero(t *testing.T) {
	src := `
lazy fun foo(e) { return e }
lazy fun bar() {
    x = 3
    return foo(x / 0)
}
h = bar()
`
	r := run(t, src+"h.raw()")
	if got := mustValue(t, r).Inspect(); got != "(x / 0)" {
		t.Errorf("expected raw (x / 0), got %s", got)
	}

	r = run(t, src+"h.eval()")
	mustError(t, r, "division by zero")
}

func TestRawTextOfArguments(t *testing.T) {
	src := `
lazy fun foo(a, ham) { return [a.raw(), ham.raw(), a.eval(), ham.eval(), ham.name(), a.kind()] }
foo(3 + int(5), ham: str(4))
`
	got := mustValue(t, run(t, src)).Inspect()
	want := `["(3 + int(5))", "str(4)", 8, "4", "ham", "positional"]`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestNestedLazyCalls(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		result string
		out    string
	}{
		{
			"inner_handle_delivered_as_is",
			`
lazy fun inner(v) { return v }
lazy fun outer(w) { return w }
y = 5
h = outer(inner(y))
[type(h), h.raw(), type(h.eval()), h.eval().raw(), h.eval().eval()]
`,
			`["Deferred", "inner(defer(y))", "Deferred", "y", 5]`,
			"",
		},
		{
			"inner_plain_value_arrives_in_a_handle",
			`
lazy fun inner(a) { return 5 }
lazy fun outer(b) { return [type(b), b.raw(), b.eval()] }
outer(inner(1))
`,
			`["Deferred", "inner(defer(1))", 5]`,
			"",
		},
		{
			"inner_call_inside_expression",
			`
lazy fun inner(v) { return v.eval() }
lazy fun outer(w) { return [w.raw(), w.eval()] }
y = 2
outer(inner(y) + 1)
`,
			`["(inner(defer(y)) + 1)", 3]`,
			"",
		},
		{
			"inner_runs_only_when_evaluated",
			`
lazy fun inner(a) {
    print("inner ran")
    return a.eval()
}
lazy fun outer(b) {
    print("outer body")
    return b.eval()
}
outer(inner(1))
`,
			"1",
			"outer body\ninner ran\n",
		},
		{
			"inner_failure_waits_for_evaluation",
			`
lazy fun inner(a) { return a.eval() }
lazy fun outer(b) { return "untouched" }
x = 1
outer(inner(x / 0))
`,
			`untouched`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, tt.src)
			if got := mustValue(t, r).Inspect(); got != tt.result {
				t.Errorf("expected %s, got %s", tt.result, got)
			}
			if r.out != tt.out {
				t.Errorf("expected output %q, got %q", tt.out, r.out)
			}
		})
	}
}

func TestNestedLazyCallFailureSurfacesAtEvaluation(t *testing.T) {
	src := `
lazy fun inner(a) { return a.eval() }
lazy fun outer(b) {
    print("outer entered")
    return b.eval()
}
x = 1
outer(inner(x / 0))
`
	r := run(t, src)
	mustError(t, r, "division by zero")
	if r.out != "outer entered\n" {
		t.Errorf("outer must run before the failure, got output %q", r.out)
	}
}

func TestSelfRecursiveLazyFunction(t *testing.T) {
	program, err := parser.ParseProgram(`
lazy fun count(n) {
    v = n.eval()
    if v == 0 { return 0 }
    return 1 + count(v - 1)
}
count(5)
`)
	if err != nil {
		t.Fatal(err)
	}
	lazy.RewriteProgram(program, lazy.NewDeclResolver(program))

	e := New()
	e.Registry = lazy.NewRegistry()
	e.Out = &bytes.Buffer{}
	rewrites := 0
	var decl *ast.FunctionStatement
	e.OnRewrite = func(fn *Function, d *ast.FunctionStatement) {
		rewrites++
		decl = d
	}
	env := e.NewGlobalEnvironment()
	result := e.Eval(program, env)
	if isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}
	if result.Inspect() != "5" {
		t.Errorf("expected 5, got %s", result.Inspect())
	}
	if rewrites != 1 {
		t.Errorf("expected one rewrite, got %d", rewrites)
	}
	var recursive *ast.CallExpression
	ast.Inspect(decl, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpression); ok {
			if id, ok := call.Function.(*ast.Identifier); ok && id.Value == "count" {
				recursive = call
			}
		}
		return recursive == nil
	})
	if recursive == nil || !recursive.Lazy {
		t.Error("expected the recursive call to be rewritten")
	}
}

func TestEagerSpreadIntoLazyFunction(t *testing.T) {
	tests := []struct {
		name string
		call string
	}{
		{"positional", "h(...[1, 2])"},
		{"keyword", "h(**{b: 2, a: 1})"},
		{"mixed", "h(1, **{b: 2})"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "h = lazy(fun(a, b) { return [a.raw(), b.eval()] })\n" + tt.call
			if got := mustValue(t, run(t, src)).Inspect(); got != `["1", 2]` {
				t.Errorf("expected [\"1\", 2], got %s", got)
			}
		})
	}
}

func TestExpressionBuiltin(t *testing.T) {
	src := `
x = 7
ex = expression("x+3")
[ex.raw(), ex.eval(), type(ex.ast())]
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != `["x+3", 10, "Ast"]` {
		t.Errorf("unexpected result %s", got)
	}
}

func TestSpreadIsSeparateComponent(t *testing.T) {
	src := `
lazy fun f(first, ...rest) { return [first.eval(), rest.eval(), rest.spread().raw()] }
xs = [2, 3]
f(1, 9, ...xs)
`
	got := mustValue(t, run(t, src)).Inspect()
	want := `[1, [[9], {}, [2, 3], nil], "xs"]`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestEvaluationIsMemoized(t *testing.T) {
	src := `
fun tick() {
    print("tick")
    return 1
}
lazy fun twice(e) { return e.eval() + e.eval() }
twice(tick())
`
	r := run(t, src)
	if got := mustValue(t, r).Inspect(); got != "2" {
		t.Errorf("expected 2, got %s", got)
	}
	if strings.Count(r.out, "tick") != 1 {
		t.Errorf("expected tick once, got output %q", r.out)
	}
}

func TestRawDoesNotEvaluate(t *testing.T) {
	src := `
fun boom() {
    print("boom")
    return 1
}
lazy fun quiet(e) { return e.raw() }
quiet(boom())
`
	r := run(t, src)
	if got := mustValue(t, r).Inspect(); got != "boom()" {
		t.Errorf("expected boom(), got %s", got)
	}
	if r.out != "" {
		t.Errorf("raw evaluated the argument, output %q", r.out)
	}
}

func TestEagerCallerGetsResolvedHandles(t *testing.T) {
	src := `
lazy fun show(e) { return [type(e), e.raw(), e.eval()] }
fun plain() { return show(1 + 2) }
plain()
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != `["Deferred", "(1 + 2)", 3]` {
		t.Errorf("unexpected result %s", got)
	}
}

func TestCalleeLocalsWinOnTopUp(t *testing.T) {
	src := `
lazy fun g(e) {
    y = 100
    return e.eval("y")
}
y = 1
g(y)
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != "100" {
		t.Errorf("expected callee local 100, got %s", got)
	}
}

func TestValuesAreCapturedAtCallTime(t *testing.T) {
	src := `
lazy fun keep(e) { return e }
x = 1
h = keep(x + 1)
x = 50
h.eval()
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != "2" {
		t.Errorf("expected 2, got %s", got)
	}
}

func TestArgsBundleAccess(t *testing.T) {
	src := `
lazy fun kw(...args) {
    return [args.len(), args.names(), args[0].raw(), args["k"].raw(), args.eval("k"), args.raw(0), len(args)]
}
kw(1 + 1, k: 2 * 3)
`
	got := mustValue(t, run(t, src)).Inspect()
	want := `[1, ["k"], "(1 + 1)", "(2 * 3)", 6, "(1 + 1)", 1]`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestAdHocNameFallsBackToCapturedScope(t *testing.T) {
	src := `
lazy fun bar(...args) { return args.eval("x") }
lazy fun foo() {
    x = 7
    return bar(x + 4)
}
foo()
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}

func TestDefaultsBindPlainValues(t *testing.T) {
	src := `
lazy fun d(a, b = 10) { return [type(b), a.eval() + b] }
d(1)
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != `["Int", 11]` {
		t.Errorf("unexpected result %s", got)
	}
}

func TestLazyBindingErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spread_without_variadic", "lazy fun one(a) { return a }\none(...[1])", "spread argument requires a variadic parameter"},
		{"too_many", "lazy fun one(a) { return a }\none(1, 2)", "takes 1 arguments"},
		{"unknown_keyword", "lazy fun one(a) { return a }\none(1, b: 2)", "unexpected keyword argument b"},
		{"missing", "lazy fun two(a, b) { return a }\ntwo(1)", "missing argument b"},
		{"bad_selector", "lazy fun v(...a) { return a.raw(true) }\nv(1)", "selector must be Int or String"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustError(t, run(t, tt.input), tt.want)
		})
	}
}

func TestLazyBuiltinOnLambda(t *testing.T) {
	src := `
f = lazy(fun(e) { return e.raw() })
[isLazy(f), isLazy(print), f(1 + 1)]
`
	got := mustValue(t, run(t, src)).Inspect()
	if got != `[true, false, "(1 + 1)"]` {
		t.Errorf("unexpected result %s", got)
	}
}

func TestActivationRunsOnce(t *testing.T) {
	program, err := parser.ParseProgram(`
lazy fun id(e) { return e }
lazy fun caller() { return id(1 + 1) }
caller()
caller()
`)
	if err != nil {
		t.Fatal(err)
	}
	lazy.RewriteProgram(program, lazy.NewDeclResolver(program))

	e := New()
	e.Registry = lazy.NewRegistry()
	e.Out = &bytes.Buffer{}
	rewrites := map[string]int{}
	var callerDecl *ast.FunctionStatement
	e.OnRewrite = func(fn *Function, decl *ast.FunctionStatement) {
		rewrites[fn.Name]++
		if fn.Name == "caller" {
			callerDecl = decl
		}
	}
	env := e.NewGlobalEnvironment()
	if result := e.Eval(program, env); isError(result) {
		t.Fatalf("unexpected error: %s", result.Inspect())
	}

	if rewrites["caller"] != 1 || rewrites["id"] != 1 {
		t.Errorf("expected one rewrite each, got %v", rewrites)
	}
	obj, _ := env.Get("caller")
	if state := e.Registry.State(obj.(*Function)); state != lazy.Rewritten {
		t.Errorf("expected rewritten state, got %s", state)
	}
	if callerDecl == nil {
		t.Fatal("caller declaration not observed")
	}
	ret := callerDecl.Body.Statements[0].(*ast.ReturnStatement)
	call := ret.ReturnValue.(*ast.CallExpression)
	if !call.Lazy {
		t.Error("expected call to id to be rewritten")
	}
}

func TestRewriteErrorReachesCaller(t *testing.T) {
	e := New()
	e.Registry = lazy.NewRegistry()
	env := e.NewGlobalEnvironment()
	fn := &Function{Name: "broken", Source: "lazy fun broken( {", Env: env}
	e.Registry.Register(fn)

	for i := 0; i < 2; i++ {
		result := e.CallFunction(fn, nil, nil)
		errObj, ok := result.(*Error)
		if !ok {
			t.Fatalf("call %d: expected error, got %s", i, result.Inspect())
		}
		var rerr *lazy.RewriteError
		if !errors.As(errObj, &rerr) {
			t.Fatalf("call %d: expected RewriteError, got %v", i, errObj)
		}
		if rerr.Kind != lazy.SyntaxError || rerr.Function != "broken" {
			t.Errorf("call %d: unexpected rewrite error %+v", i, rerr)
		}
	}
	if state := e.Registry.State(fn); state != lazy.Registered {
		t.Errorf("expected function to stay registered, got %s", state)
	}
}

func TestEvaluationErrorCarriesText(t *testing.T) {
	src := `
lazy fun retry(e) {
    first = e.eval()
    return first
}
lazy fun outer() {
    d = 0
    return retry(10 / d)
}
outer()
`
	r := run(t, src)
	errObj := mustError(t, r, "division by zero")
	var evalErr *lazy.EvaluationError
	if !errors.As(errObj, &evalErr) {
		t.Fatalf("expected EvaluationError cause, got %v", errObj.Cause)
	}
	if evalErr.Text != "(10 / d)" {
		t.Errorf("unexpected text %q", evalErr.Text)
	}
}

func TestEnvResolver(t *testing.T) {
	reg := lazy.NewRegistry()
	env := NewEnvironment()
	lazyFn := &Function{Name: "l", Env: env}
	plainFn := &Function{Name: "p", Env: env}
	reg.Register(lazyFn)
	mod := NewRecord()
	mod.Set("l", lazyFn)
	env.Set("l", lazyFn)
	env.Set("p", plainFn)
	env.Set("mod", mod)
	env.Set("n", &Integer{Value: 1})

	r := EnvResolver{Env: env, Registry: reg}
	tests := []struct {
		path []string
		want bool
	}{
		{[]string{"l"}, true},
		{[]string{"p"}, false},
		{[]string{"mod", "l"}, true},
		{[]string{"mod", "x"}, false},
		{[]string{"n", "l"}, false},
		{[]string{"missing"}, false},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.path, "."), func(t *testing.T) {
			if got := r.ResolveLazy(tt.path); got != tt.want {
				t.Errorf("ResolveLazy(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
