package ast

import (
	"reflect"
	"testing"
)

func ident(name string) *Identifier { return &Identifier{Value: name} }

func TestFreeVariables(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		expected []string
	}{
		{
			"infix",
			&InfixExpression{Left: ident("x"), Operator: "/", Right: &IntegerLiteral{Value: 0}},
			[]string{"x"},
		},
		{
			"call_with_named",
			&CallExpression{Function: ident("str"), Arguments: []Expression{
				&NamedArgument{Name: ident("ham"), Value: ident("y")},
			}},
			[]string{"str", "y"},
		},
		{
			"member_is_not_a_read",
			&MemberExpression{Left: ident("obj"), Member: ident("field")},
			[]string{"obj"},
		},
		{
			"lambda_binds_params",
			&FunctionLiteral{
				Parameters: []*Parameter{{Name: ident("a")}},
				Body: &BlockStatement{Statements: []Statement{
					&ExpressionStatement{Expression: &InfixExpression{Left: ident("a"), Operator: "+", Right: ident("b")}},
				}},
			},
			[]string{"b"},
		},
		{
			"record_keys",
			&RecordLiteral{Fields: []*RecordField{{Key: ident("spam"), Value: ident("v")}}},
			[]string{"v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeVariables(tt.node)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLocalNamesSkipsNestedFunctions(t *testing.T) {
	body := &BlockStatement{Statements: []Statement{
		&ExpressionStatement{Expression: &AssignExpression{Name: ident("x"), Value: &IntegerLiteral{Value: 1}}},
		&ForStatement{Variable: ident("i"), Iterable: ident("xs"), Body: &BlockStatement{}},
		&FunctionStatement{Name: ident("helper"), Body: &BlockStatement{Statements: []Statement{
			&ExpressionStatement{Expression: &AssignExpression{Name: ident("inner"), Value: &NilLiteral{}}},
		}}},
	}}

	names := LocalNames(body)
	for _, want := range []string{"x", "i", "helper"} {
		if !names[want] {
			t.Errorf("expected %q to be local", want)
		}
	}
	if names["inner"] {
		t.Error("names inside nested functions must not leak")
	}
}
