package evaluator

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/pipeline"
	"github.com/funvibe/lazex/internal/token"
)

// EvaluatorProcessor runs the program of a pipeline context. Evaluator and
// Env are created on first use when nil; Result holds the program value.
type EvaluatorProcessor struct {
	Evaluator *Evaluator
	Env       *Environment
	Result    Object
}

func (ep *EvaluatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}

	if ep.Evaluator == nil {
		ep.Evaluator = New()
	}
	eval := ep.Evaluator
	if ctx.FilePath != "" {
		eval.CurrentFile = filepath.Base(ctx.FilePath)
	} else {
		eval.CurrentFile = "<stdin>"
	}
	if ep.Env == nil {
		ep.Env = eval.NewGlobalEnvironment()
	}

	result := eval.Eval(ctx.AstRoot, ep.Env)
	ep.Result = result
	if err, ok := result.(*Error); ok {
		tok := token.Token{Line: err.Line, Column: err.Column}
		d := diagnostics.NewError(diagnostics.ErrR001, tok, runtimeMessage(err, ctx.FilePath))
		d.File = ctx.FilePath
		ctx.Errors = append(ctx.Errors, d)
	}
	return ctx
}

// runtimeMessage appends the stack trace, innermost call first.
func runtimeMessage(err *Error, file string) string {
	var b strings.Builder
	b.WriteString(err.Message)
	if len(err.StackTrace) > 0 {
		b.WriteString("\nStack trace:")
		for i := len(err.StackTrace) - 1; i >= 0; i-- {
			frame := err.StackTrace[i]
			f := frame.File
			if f == "" {
				f = file
			}
			b.WriteString("\n  at " + f + ":" + strconv.Itoa(frame.Line) + " (called " + frame.Name + ")")
		}
	}
	return b.String()
}
