package prettyprinter

import (
	"strings"
	"testing"

	"github.com/funvibe/lazex/internal/parser"
)

func TestRenderCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x / 0", "(x / 0)"},
		{"x/0", "(x / 0)"},
		{"3 + int(5)", "(3 + int(5))"},
		{"str(4)", "str(4)"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-x", "-x"},
		{"-(a + b)", "-(a + b)"},
		{"a.b(c)[0]", "a.b(c)[0]"},
		{"f(1, ham: x, ...xs, **m)", "f(1, ham: x, ...xs, **m)"},
		{"defer(x + 1)", "defer((x + 1))"},
		{`{spam: 2, "two words": 1}`, `{spam: 2, "two words": 1}`},
		{"[1, 2.5, \"s\", true, nil]", "[1, 2.5, \"s\", true, nil]"},
		{"fun(a, ...b) { a }", "fun(a, ...b) { a }"},
		{"if a { 1 } else if b { 2 } else { 3 }", "if a { 1 } else if b { 2 } else { 3 }"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := parser.ParseExpression(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if got := Render(expr); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"(a - (b - c))",
		"f(g(x), y: [1, 2])",
		"((a && b) || !c)",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			expr, err := parser.ParseExpression(input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			first := Render(expr)
			again, err := parser.ParseExpression(first)
			if err != nil {
				t.Fatalf("rendered text does not parse: %v", err)
			}
			if second := Render(again); second != first {
				t.Errorf("render is not stable: %q then %q", first, second)
			}
		})
	}
}

func TestFormatProgram(t *testing.T) {
	src := "x=1\nlazy fun foo(a,b=2,...rest){\nif a>b {return a-(b-1)}\nfor i in rest {print(i)}\n}\nfoo(x)\n"
	program, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := `x = 1

lazy fun foo(a, b = 2, ...rest) {
    if a > b {
        return a - (b - 1)
    }
    for i in rest {
        print(i)
    }
}

foo(x)
`
	if got := Format(program, 100); got != want {
		t.Errorf("format mismatch:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatBreaksLongCalls(t *testing.T) {
	expr, err := parser.ParseExpression(`report("first argument", "second argument", "third argument")`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	got := Format(expr, 40)
	if !strings.Contains(got, "(\n    \"first argument\",\n") {
		t.Errorf("expected one argument per line, got:\n%s", got)
	}
	if _, err := parser.ParseExpression(got); err != nil {
		t.Errorf("formatted output does not parse: %v", err)
	}
}

func TestColumnUsesDisplayWidth(t *testing.T) {
	p := NewCodePrinterWithWidth(0)
	p.write("\"日本\"")
	if p.column != 6 {
		t.Errorf("expected display width 6, got %d", p.column)
	}
}
