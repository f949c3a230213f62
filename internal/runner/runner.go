// Package runner drives a Lazex source through the lexer, parser, main-chunk
// rewriter and evaluator.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/config"
	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/evaluator"
	"github.com/funvibe/lazex/internal/lazy"
	"github.com/funvibe/lazex/internal/lexer"
	"github.com/funvibe/lazex/internal/parser"
	"github.com/funvibe/lazex/internal/pipeline"
	"github.com/funvibe/lazex/internal/prettyprinter"
)

// Options configures a run. Zero values fall back to config.Default(),
// os.Stdout and lazy.Default.
type Options struct {
	Config   *config.Config
	FilePath string
	Out      io.Writer
	// Trace receives each lazy function after its one-shot rewrite when
	// trace_rewrites is on and OnRewrite is nil.
	Trace     io.Writer
	OnRewrite evaluator.RewriteHook
	Registry  *lazy.Registry
}

// Result is the outcome of a run.
type Result struct {
	Value        evaluator.Object
	Errors       []*diagnostics.DiagnosticError
	RewrittenTop int
}

// Err joins the diagnostics of the run, or returns nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, d := range r.Errors {
		errs[i] = d
	}
	return errors.Join(errs...)
}

func (o Options) config() *config.Config {
	if o.Config == nil {
		return config.Default()
	}
	return o.Config
}

// NewEvaluator returns an evaluator set up from opts.
func NewEvaluator(ctx context.Context, opts Options) *evaluator.Evaluator {
	cfg := opts.config()
	eval := evaluator.New()
	eval.Context = ctx
	eval.MaxDepth = cfg.MaxDepth
	if opts.Out != nil {
		eval.Out = opts.Out
	}
	if opts.Registry != nil {
		eval.Registry = opts.Registry
	}
	eval.OnRewrite = opts.OnRewrite
	if eval.OnRewrite == nil && cfg.TraceRewrites && opts.Trace != nil {
		eval.OnRewrite = TraceHook(opts.Trace, cfg.PrintWidth)
	}
	return eval
}

// TraceHook prints every installed declaration to w.
func TraceHook(w io.Writer, width int) evaluator.RewriteHook {
	return func(fn *evaluator.Function, decl *ast.FunctionStatement) {
		fmt.Fprintf(w, "-- rewrote %s --\n%s\n", fn.LazyName(), prettyprinter.Format(decl, width))
	}
}

// Run executes source and returns the program value together with any
// diagnostics.
func Run(ctx context.Context, source string, opts Options) *Result {
	cfg := opts.config()
	initial := &pipeline.PipelineContext{FilePath: opts.FilePath, SourceCode: source}

	rewrite := &lazy.RewriteProcessor{}
	exec := &evaluator.EvaluatorProcessor{Evaluator: NewEvaluator(ctx, opts)}

	processors := []pipeline.Processor{&lexer.LexerProcessor{}, &parser.ParserProcessor{}}
	if cfg.ShouldRewriteMain() {
		processors = append(processors, rewrite)
	}
	processors = append(processors, exec)

	final := pipeline.New(processors...).Run(initial)
	slog.Debug("run finished", "file", opts.FilePath, "errors", len(final.Errors), "rewritten", rewrite.Calls)
	return &Result{Value: exec.Result, Errors: final.Errors, RewrittenTop: rewrite.Calls}
}

// RunFile reads path and runs it. A read failure is returned as an error;
// script failures are reported in the result.
func RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if opts.FilePath == "" {
		opts.FilePath = path
	}
	return Run(ctx, string(source), opts), nil
}

// Rewritten returns source as the runtime would install it: the main chunk
// rewritten against its `lazy fun` declarations (when rewrite_main is on)
// and every top-level lazy function rewritten once.
func Rewritten(source, filePath string, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	program, err := parser.ParseProgram(source)
	if err != nil {
		return "", fmt.Errorf("%s: %w", displayName(filePath), err)
	}
	resolver := lazy.NewDeclResolver(program)
	if cfg.ShouldRewriteMain() {
		lazy.RewriteProgram(program, resolver)
	}
	for _, stmt := range program.Statements {
		fn, ok := stmt.(*ast.FunctionStatement)
		if !ok || !fn.Lazy {
			continue
		}
		if _, err := lazy.Rewrite(fn, resolver); err != nil {
			return "", &lazy.RewriteError{Function: fn.Name.Value, Kind: lazy.SyntaxError, Err: err}
		}
	}
	return prettyprinter.Format(program, cfg.PrintWidth), nil
}

// Formatted pretty-prints source without rewriting it.
func Formatted(source, filePath string, width int) (string, error) {
	program, err := parser.ParseProgram(source)
	if err != nil {
		return "", fmt.Errorf("%s: %w", displayName(filePath), err)
	}
	return prettyprinter.Format(program, width), nil
}

func displayName(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return filepath.Base(path)
}
