package lazex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/funvibe/lazex/internal/config"
	"github.com/funvibe/lazex/internal/evaluator"
	"github.com/funvibe/lazex/internal/lazy"
	"github.com/funvibe/lazex/internal/lexer"
	"github.com/funvibe/lazex/internal/parser"
	"github.com/funvibe/lazex/internal/pipeline"
)

// VM is an embedded Lazex interpreter. Globals persist across Eval calls.
// A VM is not safe for concurrent use.
type VM struct {
	eval       *evaluator.Evaluator
	env        *evaluator.Environment
	marshaller *Marshaller
	cfg        *config.Config
}

// Option configures a VM.
type Option func(*VM)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(v *VM) { v.cfg = cfg }
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(v *VM) { v.eval.Out = w }
}

// WithRegistry gives the VM its own lazy-function registry instead of the
// process-wide one.
func WithRegistry(r *lazy.Registry) Option {
	return func(v *VM) { v.eval.Registry = r }
}

// WithContext cancels running scripts when ctx is done.
func WithContext(ctx context.Context) Option {
	return func(v *VM) { v.eval.Context = ctx }
}

// New creates a VM with the builtins installed.
func New(opts ...Option) *VM {
	eval := evaluator.New()
	v := &VM{
		eval:       eval,
		env:        eval.NewGlobalEnvironment(),
		marshaller: NewMarshaller(),
		cfg:        config.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	eval.MaxDepth = v.cfg.MaxDepth
	return v
}

// Set binds a Go value as a global. Functions become builtins.
func (v *VM) Set(name string, val interface{}) error {
	if rv := reflect.ValueOf(val); rv.Kind() == reflect.Func && !rv.IsNil() {
		v.env.Set(name, v.marshaller.hostCall(name, rv))
		return nil
	}
	obj, err := v.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	v.env.Set(name, obj)
	return nil
}

// Get retrieves a global as a Go value.
func (v *VM) Get(name string) (interface{}, error) {
	obj, ok := v.env.Get(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return v.marshaller.FromValue(obj, nil)
}

// MarkLazy opts the script function name into lazy arguments.
func (v *VM) MarkLazy(name string) error {
	obj, ok := v.env.Get(name)
	if !ok {
		return fmt.Errorf("function '%s' not found", name)
	}
	fn, ok := obj.(*evaluator.Function)
	if !ok {
		return fmt.Errorf("%s is a %s, not a script function", name, obj.RuntimeType())
	}
	v.registry().Register(fn)
	return nil
}

// IsLazy reports whether name is a registered lazy function.
func (v *VM) IsLazy(name string) bool {
	obj, ok := v.env.Get(name)
	if !ok {
		return false
	}
	fn, ok := obj.(*evaluator.Function)
	return ok && v.registry().IsRegistered(fn)
}

func (v *VM) registry() *lazy.Registry {
	if v.eval.Registry == nil {
		return lazy.Default
	}
	return v.eval.Registry
}

// Call calls a global function by name. A lazy callee receives handles
// whose raw text is the Lazex literal of each argument.
func (v *VM) Call(funcName string, args ...interface{}) (interface{}, error) {
	fnObj, ok := v.env.Get(funcName)
	if !ok {
		return nil, fmt.Errorf("function '%s' not found", funcName)
	}

	lazexArgs := make([]evaluator.Object, len(args))
	for i, arg := range args {
		obj, err := v.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		lazexArgs[i] = obj
	}

	result := v.eval.CallFunction(fnObj, lazexArgs, nil)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, errObj
	}
	return v.marshaller.FromValue(result, nil)
}

// Eval executes code and returns the value of its last statement.
func (v *VM) Eval(code string) (interface{}, error) {
	return v.run(code, "<eval>")
}

// LoadFile executes a script file in the VM's global scope.
func (v *VM) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = v.run(string(content), path)
	return err
}

func (v *VM) run(code, path string) (interface{}, error) {
	ctx := &pipeline.PipelineContext{FilePath: path, SourceCode: code}
	exec := &evaluator.EvaluatorProcessor{Evaluator: v.eval, Env: v.env}

	processors := []pipeline.Processor{&lexer.LexerProcessor{}, &parser.ParserProcessor{}}
	if v.cfg.ShouldRewriteMain() {
		// Functions marked from the host count as declarations too.
		processors = append(processors, &lazy.RewriteProcessor{
			Fallback: evaluator.EnvResolver{Env: v.env, Registry: v.registry()},
		})
	}
	processors = append(processors, exec)

	ctx = pipeline.New(processors...).Run(ctx)
	if len(ctx.Errors) > 0 {
		errs := make([]error, len(ctx.Errors))
		for i, e := range ctx.Errors {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return v.marshaller.FromValue(exec.Result, nil)
}

// hostCall adapts a Go function to the builtin calling convention. A
// trailing error result becomes a script error.
func (m *Marshaller) hostCall(name string, fn reflect.Value) *evaluator.Builtin {
	fnType := fn.Type()
	return &evaluator.Builtin{Name: name, Fn: func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
		numIn := fnType.NumIn()
		isVariadic := fnType.IsVariadic()
		if isVariadic {
			if len(args) < numIn-1 {
				return &evaluator.Error{Message: fmt.Sprintf("%s expects at least %d arguments, got %d", name, numIn-1, len(args))}
			}
		} else if len(args) != numIn {
			return &evaluator.Error{Message: fmt.Sprintf("%s expects %d arguments, got %d", name, numIn, len(args))}
		}

		goArgs := make([]reflect.Value, len(args))
		for i, arg := range args {
			var targetType reflect.Type
			if isVariadic && i >= numIn-1 {
				targetType = fnType.In(numIn - 1).Elem()
			} else {
				targetType = fnType.In(i)
			}
			val, err := m.FromValue(arg, targetType)
			if err != nil {
				return &evaluator.Error{Message: fmt.Sprintf("%s: argument %d: %v", name, i, err), Cause: err}
			}
			if val == nil {
				goArgs[i] = reflect.Zero(targetType)
				continue
			}
			rv := reflect.ValueOf(val)
			if !rv.Type().AssignableTo(targetType) {
				if !rv.Type().ConvertibleTo(targetType) {
					return &evaluator.Error{Message: fmt.Sprintf("%s: argument %d: cannot use %s as %s", name, i, arg.RuntimeType(), targetType)}
				}
				rv = rv.Convert(targetType)
			}
			goArgs[i] = rv
		}

		results := fn.Call(goArgs)
		if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
			if err, _ := results[n-1].Interface().(error); err != nil {
				return &evaluator.Error{Message: err.Error(), Cause: err}
			}
			results = results[:n-1]
		}

		switch len(results) {
		case 0:
			return evaluator.NIL
		case 1:
			obj, err := m.ToValue(results[0].Interface())
			if err != nil {
				return &evaluator.Error{Message: err.Error(), Cause: err}
			}
			return obj
		}
		elements := make([]evaluator.Object, len(results))
		for i, res := range results {
			obj, err := m.ToValue(res.Interface())
			if err != nil {
				return &evaluator.Error{Message: err.Error(), Cause: err}
			}
			elements[i] = obj
		}
		return &evaluator.List{Elements: elements}
	}}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
