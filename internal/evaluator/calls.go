package evaluator

import (
	"log/slog"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/lazy"
	"github.com/funvibe/lazex/internal/prettyprinter"
)

// callArg is one argument as it reaches the callee: either a handle built
// from a defer node or an already evaluated value.
type callArg struct {
	kind lazy.Kind
	name string
	// expr is the argument source, rendered as the raw text of eager values.
	expr   ast.Expression
	value  Object
	handle *lazy.Deferred
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	function := e.Eval(node.Function, env)
	if isError(function) {
		return function
	}

	var (
		args     []callArg
		snapshot *lazy.Snapshot
		errObj   *Error
	)
	if node.Lazy {
		snapshot = e.callSiteSnapshot(node, function, env)
		args, errObj = e.collectLazyArgs(node, env, snapshot)
	} else {
		args, errObj = e.collectArgs(node, env)
	}
	if errObj != nil {
		return errObj
	}
	return e.applyCall(function, args, snapshot, node, env)
}

// callSiteSnapshot binds the call's free variables to their current values,
// layered over the callee's defining scope.
func (e *Evaluator) callSiteSnapshot(node *ast.CallExpression, callee Object, env *Environment) *lazy.Snapshot {
	bindings := make(map[string]lazy.Value, len(node.Free))
	for _, name := range node.Free {
		if val, ok := env.Get(name); ok {
			bindings[name] = val
		}
	}
	outer := env
	if fn, ok := callee.(*Function); ok && fn.Env != nil {
		outer = fn.Env
	}
	return lazy.NewSnapshot(bindings, ScopeOf(outer))
}

func (e *Evaluator) collectLazyArgs(node *ast.CallExpression, env *Environment, snapshot *lazy.Snapshot) ([]callArg, *Error) {
	args := make([]callArg, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		var ca callArg
		var inner ast.Expression
		switch a := arg.(type) {
		case *ast.NamedArgument:
			ca = callArg{kind: lazy.Named, name: a.Name.Value}
			inner = a.Value
		case *ast.SpreadExpression:
			ca = callArg{kind: lazy.Spread}
			inner = a.Expression
		case *ast.KeywordSpreadExpression:
			ca = callArg{kind: lazy.KeywordSpread}
			inner = a.Expression
		default:
			ca = callArg{kind: lazy.Positional}
			inner = arg
		}
		ca.expr = inner

		if d, ok := inner.(*ast.DeferExpression); ok {
			ca.handle = lazy.NewDeferred(lazy.NewCapture(deferText(d), ca.kind, ca.name), snapshot, e)
		} else {
			val := e.Eval(inner, env)
			if errObj, ok := val.(*Error); ok {
				return nil, errObj
			}
			ca.value = val
		}
		args = append(args, ca)
	}
	return args, nil
}

func (e *Evaluator) collectArgs(node *ast.CallExpression, env *Environment) ([]callArg, *Error) {
	args := make([]callArg, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		ca := callArg{kind: lazy.Positional, expr: arg}
		switch a := arg.(type) {
		case *ast.NamedArgument:
			ca = callArg{kind: lazy.Named, name: a.Name.Value, expr: a.Value}
		case *ast.SpreadExpression:
			ca = callArg{kind: lazy.Spread, expr: a.Expression}
		case *ast.KeywordSpreadExpression:
			ca = callArg{kind: lazy.KeywordSpread, expr: a.Expression}
		}
		val := e.Eval(ca.expr, env)
		if errObj, ok := val.(*Error); ok {
			return nil, errObj
		}
		ca.value = val
		args = append(args, ca)
	}
	return args, nil
}

func deferText(d *ast.DeferExpression) string {
	if d.Text != "" {
		return d.Text
	}
	return prettyprinter.Render(d.Expression)
}

func (e *Evaluator) applyCall(function Object, args []callArg, snapshot *lazy.Snapshot, node *ast.CallExpression, env *Environment) Object {
	switch fn := function.(type) {
	case *Function:
		if e.registry().IsRegistered(fn) {
			if snapshot == nil {
				// Eager caller: ad hoc text evaluates in the caller's scope.
				snapshot = lazy.NewSnapshot(nil, ScopeOf(env))
			}
			return e.applyLazyFunction(fn, args, snapshot, node)
		}
		positional, named, errObj := e.resolveArgs(args)
		if errObj != nil {
			return errObj
		}
		return e.applyFunction(fn, positional, named, node)
	case *Builtin:
		positional, named, errObj := e.resolveArgs(args)
		if errObj != nil {
			return errObj
		}
		if len(named.Keys) > 0 {
			return newError("%s does not accept keyword arguments", fn.Name)
		}
		return fn.Fn(e, positional...)
	case *BoundMethod:
		positional, named, errObj := e.resolveArgs(args)
		if errObj != nil {
			return errObj
		}
		if len(named.Keys) > 0 {
			return newError("%s does not accept keyword arguments", fn.Name)
		}
		return fn.Fn(e, positional)
	}
	return newError("not a function: %s", function.RuntimeType())
}

// resolveArgs turns arguments into plain values for an eager callee.
// Handles are evaluated and spreads are expanded.
func (e *Evaluator) resolveArgs(args []callArg) ([]Object, *Record, *Error) {
	var positional []Object
	named := NewRecord()
	for _, a := range args {
		val := a.value
		if a.handle != nil {
			v, err := a.handle.Evaluate()
			if err != nil {
				return nil, nil, errorFrom(err)
			}
			val = v.(Object)
		}

		switch a.kind {
		case lazy.Positional:
			positional = append(positional, val)
		case lazy.Named:
			if _, dup := named.Get(a.name); dup {
				return nil, nil, newError("duplicate keyword argument %s", a.name)
			}
			named.Set(a.name, val)
		case lazy.Spread:
			list, ok := val.(*List)
			if !ok {
				return nil, nil, newError("cannot spread %s, expected List", val.RuntimeType())
			}
			positional = append(positional, list.Elements...)
		case lazy.KeywordSpread:
			rec, ok := val.(*Record)
			if !ok {
				return nil, nil, newError("cannot spread %s, expected Record", val.RuntimeType())
			}
			for _, k := range rec.Keys {
				if _, dup := named.Get(k); dup {
					return nil, nil, newError("duplicate keyword argument %s", k)
				}
				named.Set(k, rec.Fields[k])
			}
		}
	}
	return positional, named, nil
}

func splitParams(params []*ast.Parameter) ([]*ast.Parameter, *ast.Parameter) {
	if n := len(params); n > 0 && params[n-1].IsVariadic {
		return params[:n-1], params[n-1]
	}
	return params, nil
}

func findParam(params []*ast.Parameter, name string) int {
	for i, p := range params {
		if p.Name.Value == name {
			return i
		}
	}
	return -1
}

// applyFunction calls an ordinary function with plain values.
func (e *Evaluator) applyFunction(fn *Function, positional []Object, named *Record, node *ast.CallExpression) Object {
	fnEnv := NewEnclosedEnvironment(fn.Env)
	fixed, variadic := splitParams(fn.Parameters)

	if len(positional) > len(fixed) && variadic == nil {
		return newError("%s takes %d arguments, got %d", fn.LazyName(), len(fixed), len(positional))
	}
	filled := make([]bool, len(fixed))
	for i, p := range fixed {
		if i < len(positional) {
			fnEnv.bindParam(p.Name.Value, positional[i])
			filled[i] = true
		}
	}
	for _, k := range named.Keys {
		i := findParam(fixed, k)
		if i < 0 {
			return newError("%s got an unexpected keyword argument %s", fn.LazyName(), k)
		}
		if filled[i] {
			return newError("%s got multiple values for argument %s", fn.LazyName(), k)
		}
		fnEnv.bindParam(k, named.Fields[k])
		filled[i] = true
	}
	if errObj := e.bindDefaults(fn, fixed, filled, fnEnv); errObj != nil {
		return errObj
	}
	if variadic != nil {
		var rest []Object
		if len(positional) > len(fixed) {
			rest = append(rest, positional[len(fixed):]...)
		}
		fnEnv.bindParam(variadic.Name.Value, &List{Elements: rest})
	}

	return e.runBody(fn, fn.Body, fnEnv, node)
}

// applyLazyFunction activates fn on first use, then binds handles to its
// parameters. Anything without a parameter of its own goes to the variadic
// parameter as an Args bundle.
func (e *Evaluator) applyLazyFunction(fn *Function, args []callArg, snapshot *lazy.Snapshot, node *ast.CallExpression) Object {
	decl, errObj := e.activate(fn)
	if errObj != nil {
		return errObj
	}

	fnEnv := NewEnclosedEnvironment(fn.Env)
	fixed, variadic := splitParams(decl.Parameters)
	if variadic == nil {
		if args, errObj = expandSpreads(args); errObj != nil {
			return errObj
		}
	}
	filled := make([]bool, len(fixed))
	var extra []*lazy.Deferred
	next := 0

	for _, a := range args {
		switch a.kind {
		case lazy.Positional:
			if next < len(fixed) {
				fnEnv.bindParam(fixed[next].Name.Value, e.paramValue(a, snapshot))
				filled[next] = true
				next++
				continue
			}
			if variadic == nil {
				return newError("%s takes %d arguments, got more", fn.LazyName(), len(fixed))
			}
		case lazy.Named:
			if i := findParam(fixed, a.name); i >= 0 {
				if filled[i] {
					return newError("%s got multiple values for argument %s", fn.LazyName(), a.name)
				}
				fnEnv.bindParam(a.name, e.paramValue(a, snapshot))
				filled[i] = true
				continue
			}
			if variadic == nil {
				return newError("%s got an unexpected keyword argument %s", fn.LazyName(), a.name)
			}
		default:
			if variadic == nil {
				return newError("%s: spread argument requires a variadic parameter", fn.LazyName())
			}
		}
		extra = append(extra, e.handleFor(a, snapshot))
	}

	if errObj := e.bindDefaults(fn, fixed, filled, fnEnv); errObj != nil {
		return errObj
	}
	if variadic != nil {
		bundle, err := lazy.NewArgs(snapshot, e, extra...)
		if err != nil {
			return newError("%s: %v", fn.LazyName(), err)
		}
		fnEnv.bindParam(variadic.Name.Value, &ArgsBundle{Args: bundle})
	}
	snapshot.Attach(fnEnv)

	return e.runBody(fn, decl.Body, fnEnv, node)
}

// expandSpreads spreads already evaluated List and Record arguments into
// positional and named slots. Deferred spreads are left alone.
func expandSpreads(args []callArg) ([]callArg, *Error) {
	out := make([]callArg, 0, len(args))
	for _, a := range args {
		if a.handle != nil || (a.kind != lazy.Spread && a.kind != lazy.KeywordSpread) {
			out = append(out, a)
			continue
		}
		switch val := a.value.(type) {
		case *List:
			if a.kind != lazy.Spread {
				return nil, newError("cannot spread %s, expected Record", val.RuntimeType())
			}
			for _, el := range val.Elements {
				out = append(out, callArg{kind: lazy.Positional, value: el, expr: literalFor(el)})
			}
		case *Record:
			if a.kind != lazy.KeywordSpread {
				return nil, newError("cannot spread %s, expected List", val.RuntimeType())
			}
			for _, k := range val.Keys {
				out = append(out, callArg{kind: lazy.Named, name: k, value: val.Fields[k], expr: literalFor(val.Fields[k])})
			}
		default:
			return nil, newError("cannot spread %s", a.value.RuntimeType())
		}
	}
	return out, nil
}

// activate returns the installed declaration of a lazy function.
func (e *Evaluator) activate(fn *Function) (*ast.FunctionStatement, *Error) {
	reg := e.registry()
	first := reg.State(fn) != lazy.Rewritten
	decl, err := reg.Activate(fn, EnvResolver{Env: fn.Env, Registry: reg})
	if err != nil {
		return nil, errorFrom(err)
	}
	if first {
		slog.Debug("activated lazy function", "name", fn.LazyName())
		if e.OnRewrite != nil {
			e.OnRewrite(fn, decl)
		}
	}
	return decl, nil
}

// paramValue is what a named parameter receives. Handles are wrapped and
// eager values arrive as pre-resolved handles.
func (e *Evaluator) paramValue(a callArg, snapshot *lazy.Snapshot) Object {
	if a.handle != nil {
		return &Handle{Deferred: a.handle}
	}
	if _, ok := a.value.(*Handle); ok {
		return a.value
	}
	if _, ok := a.value.(*ArgsBundle); ok {
		return a.value
	}
	return &Handle{Deferred: e.handleFor(a, snapshot)}
}

// handleFor returns a handle for the slot a occupies. Existing handles are
// never wrapped again.
func (e *Evaluator) handleFor(a callArg, snapshot *lazy.Snapshot) *lazy.Deferred {
	if a.handle != nil {
		return a.handle
	}
	if h, ok := a.value.(*Handle); ok {
		return h.Deferred.As(a.kind, a.name)
	}
	capture := lazy.NewCapture(prettyprinter.Render(a.expr), a.kind, a.name)
	return lazy.NewResolved(capture, a.value, snapshot, e)
}

func (e *Evaluator) bindDefaults(fn *Function, fixed []*ast.Parameter, filled []bool, fnEnv *Environment) *Error {
	for i, p := range fixed {
		if filled[i] {
			continue
		}
		if p.Default == nil {
			return newError("%s missing argument %s", fn.LazyName(), p.Name.Value)
		}
		val := e.Eval(p.Default, fnEnv)
		if errObj, ok := val.(*Error); ok {
			return errObj
		}
		fnEnv.bindParam(p.Name.Value, val)
	}
	return nil
}

func (e *Evaluator) runBody(fn *Function, body *ast.BlockStatement, fnEnv *Environment, node *ast.CallExpression) Object {
	line, column := 0, 0
	if node != nil {
		line, column = node.Token.Line, node.Token.Column
	}
	e.PushCall(fn.LazyName(), e.CurrentFile, line, column)
	result := e.evalBlockStatement(body, fnEnv)
	if errObj, ok := result.(*Error); ok {
		e.attachStack(errObj)
	}
	e.PopCall()

	switch result.(type) {
	case *BreakSignal:
		return newError("break outside of a loop")
	case *ContinueSignal:
		return newError("continue outside of a loop")
	}
	return unwrapReturnValue(result)
}

// CallFunction applies a callable to plain values, for builtins and hosts.
func (e *Evaluator) CallFunction(function Object, positional []Object, named *Record) Object {
	args := make([]callArg, 0, len(positional))
	for _, v := range positional {
		args = append(args, callArg{kind: lazy.Positional, value: v, expr: literalFor(v)})
	}
	if named != nil {
		for _, k := range named.Keys {
			v := named.Fields[k]
			args = append(args, callArg{kind: lazy.Named, name: k, value: v, expr: literalFor(v)})
		}
	}
	env := e.CurrentEnv
	if env == nil {
		env = e.GlobalEnv
	}
	return e.applyCall(function, args, nil, nil, env)
}
