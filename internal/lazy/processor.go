package lazy

import (
	"log/slog"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/pipeline"
)

// RewriteProcessor rewrites the top-level calls of a parsed chunk against
// the chunk's own `lazy fun` declarations. Calls counts rewritten calls.
type RewriteProcessor struct {
	// Fallback answers for callees the chunk does not declare, such as
	// functions a host registered before the chunk ran.
	Fallback Resolver
	Calls    int
}

func (rp *RewriteProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || ctx.HasErrors() {
		return ctx
	}
	program, ok := ctx.AstRoot.(*ast.Program)
	if !ok {
		return ctx
	}
	var resolver Resolver = NewDeclResolver(program)
	if rp.Fallback != nil {
		resolver = AnyResolver{resolver, rp.Fallback}
	}
	rp.Calls = RewriteProgram(program, resolver)
	slog.Debug("rewrote main chunk", "file", ctx.FilePath, "calls", rp.Calls)
	return ctx
}
