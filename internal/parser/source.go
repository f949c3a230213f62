package parser

import (
	"errors"
	"fmt"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/lexer"
	"github.com/funvibe/lazex/internal/pipeline"
)

func parseSource(src string) (*ast.Program, error) {
	ctx := &pipeline.PipelineContext{SourceCode: src}
	ctx.TokenStream = lexer.NewTokenStream(lexer.New(src))
	program := New(ctx.TokenStream, ctx).ParseProgram()
	if ctx.HasErrors() {
		errs := make([]error, len(ctx.Errors))
		for i, e := range ctx.Errors {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return program, nil
}

// ParseProgram parses a whole chunk of source.
func ParseProgram(src string) (*ast.Program, error) {
	return parseSource(src)
}

// ParseFunction parses source holding exactly one function declaration.
func ParseFunction(src string) (*ast.FunctionStatement, error) {
	program, err := parseSource(src)
	if err != nil {
		return nil, err
	}
	if len(program.Statements) != 1 {
		return nil, fmt.Errorf("expected a single function declaration, got %d statements", len(program.Statements))
	}
	fn, ok := program.Statements[0].(*ast.FunctionStatement)
	if !ok {
		return nil, fmt.Errorf("expected a function declaration, got %T", program.Statements[0])
	}
	return fn, nil
}

// ParseExpression parses source holding exactly one expression.
func ParseExpression(src string) (ast.Expression, error) {
	program, err := parseSource(src)
	if err != nil {
		return nil, err
	}
	if len(program.Statements) != 1 {
		return nil, fmt.Errorf("expected a single expression, got %d statements", len(program.Statements))
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, fmt.Errorf("expected an expression, got %T", program.Statements[0])
	}
	return stmt.Expression, nil
}
