package pipeline

import (
	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/token"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream is the lexer output consumed by the parser.
type TokenStream interface {
	Next() token.Token
	Peek(n int) []token.Token
}

// PipelineContext carries the state shared between stages.
type PipelineContext struct {
	FilePath    string
	SourceCode  string
	TokenStream TokenStream
	AstRoot     ast.Node
	Errors      []*diagnostics.DiagnosticError
}

func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}
