package evaluator

import (
	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/config"
	"github.com/funvibe/lazex/internal/lazy"
	"github.com/funvibe/lazex/internal/parser"
)

// Evaluate runs text under the bindings of scope. It makes the evaluator a
// lazy.Evaluator.
func (e *Evaluator) Evaluate(text string, scope *lazy.Snapshot) (lazy.Value, error) {
	expr, err := parser.ParseExpression(text)
	if err != nil {
		return nil, err
	}
	env := environmentFor(scope, e.GlobalEnv)
	result := e.Eval(expr, env)
	if errObj, ok := result.(*Error); ok {
		return nil, errObj
	}
	return result, nil
}

func (e *Evaluator) Parse(text string) (ast.Expression, error) {
	return parser.ParseExpression(text)
}

// EnvResolver answers the rewriter from a function's defining environment:
// a callee path is lazy when it names a registered function there.
type EnvResolver struct {
	Env      *Environment
	Registry *lazy.Registry
}

func (r EnvResolver) ResolveLazy(path []string) bool {
	if r.Env == nil || len(path) == 0 {
		return false
	}
	obj, ok := r.Env.Get(path[0])
	if !ok {
		return false
	}
	for _, member := range path[1:] {
		rec, ok := obj.(*Record)
		if !ok {
			return false
		}
		if obj, ok = rec.Get(member); !ok {
			return false
		}
	}
	fn, ok := obj.(*Function)
	if !ok {
		return false
	}
	reg := r.Registry
	if reg == nil {
		reg = lazy.Default
	}
	return reg.IsRegistered(fn)
}

// evalDeferExpression builds a free-standing handle over the current scope.
// Inside a lazy call the call itself turns defer nodes into handles.
func (e *Evaluator) evalDeferExpression(node *ast.DeferExpression, env *Environment) Object {
	bindings := make(map[string]lazy.Value)
	for _, name := range ast.FreeVariables(node.Expression) {
		if val, ok := env.Get(name); ok {
			bindings[name] = val
		}
	}
	snapshot := lazy.NewSnapshot(bindings, ScopeOf(env))
	capture := lazy.NewCapture(deferText(node), lazy.Positional, "")
	return &Handle{Deferred: lazy.NewDeferred(capture, snapshot, e)}
}

func method(receiver Object, name string, minArgs, maxArgs int, fn func(e *Evaluator, args []Object) Object) *BoundMethod {
	return &BoundMethod{
		Receiver: receiver,
		Name:     name,
		Fn: func(e *Evaluator, args []Object) Object {
			if len(args) < minArgs || len(args) > maxArgs {
				if minArgs == maxArgs {
					return newError("%s expects %d arguments, got %d", name, minArgs, len(args))
				}
				return newError("%s expects %d to %d arguments, got %d", name, minArgs, maxArgs, len(args))
			}
			return fn(e, args)
		},
	}
}

func stringArg(name string, arg Object) (string, *Error) {
	s, ok := arg.(*String)
	if !ok {
		return "", newError("%s expects a String, got %s", name, arg.RuntimeType())
	}
	return s.Value, nil
}

func valueResult(v lazy.Value, err error) Object {
	if err != nil {
		return errorFrom(err)
	}
	if obj, ok := v.(Object); ok {
		return obj
	}
	return NIL
}

func astResult(node ast.Expression, err error) Object {
	if err != nil {
		return errorFrom(err)
	}
	return &AstNode{Node: node}
}

func siteOf(s *lazy.Snapshot) Object {
	if s == nil {
		return NIL
	}
	return &String{Value: s.Token().String()}
}

func handleMethod(h *Handle, name string) Object {
	d := h.Deferred
	switch name {
	case config.RawMethod:
		return method(h, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return &String{Value: d.Raw()}
		})
	case config.EvalMethod:
		return method(h, name, 0, 1, func(e *Evaluator, args []Object) Object {
			if len(args) == 0 {
				return valueResult(d.Evaluate())
			}
			text, errObj := stringArg(name, args[0])
			if errObj != nil {
				return errObj
			}
			return valueResult(d.EvaluateText(text))
		})
	case config.AstMethod:
		return method(h, name, 0, 1, func(e *Evaluator, args []Object) Object {
			if len(args) == 0 {
				return astResult(d.Parse())
			}
			text, errObj := stringArg(name, args[0])
			if errObj != nil {
				return errObj
			}
			return astResult(d.ParseText(text))
		})
	case config.SiteMethod:
		return method(h, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return siteOf(d.Snapshot())
		})
	case config.NameMethod:
		return method(h, name, 0, 0, func(e *Evaluator, args []Object) Object {
			if d.Name() == "" {
				return NIL
			}
			return &String{Value: d.Name()}
		})
	case config.KindMethod:
		return method(h, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return &String{Value: d.Kind().String()}
		})
	}
	return newError("Deferred has no member %s", name)
}

// selector is either a positional index or a keyword name.
type selector struct {
	index   int
	name    string
	isIndex bool
}

func toSelector(arg Object, length int) (selector, *Error) {
	switch a := arg.(type) {
	case *String:
		return selector{name: a.Value}, nil
	case *Integer:
		i, errObj := toIndex(a, length)
		if errObj != nil {
			return selector{}, errObj
		}
		return selector{index: i, isIndex: true}, nil
	}
	return selector{}, newError("argument selector must be Int or String, got %s", arg.RuntimeType())
}

func optionalHandle(d *lazy.Deferred) Object {
	if d == nil {
		return NIL
	}
	return &Handle{Deferred: d}
}

func argsMethod(b *ArgsBundle, name string) Object {
	a := b.Args
	switch name {
	case config.RawMethod:
		return method(b, name, 1, 1, func(e *Evaluator, args []Object) Object {
			sel, errObj := toSelector(args[0], a.Len())
			if errObj != nil {
				return errObj
			}
			if sel.isIndex {
				raw, err := a.RawIndex(sel.index)
				if err != nil {
					return errorFrom(err)
				}
				return &String{Value: raw}
			}
			raw, ok := a.RawName(sel.name)
			if !ok {
				return newError("no keyword argument %s", sel.name)
			}
			return &String{Value: raw}
		})
	case config.EvalMethod:
		return method(b, name, 0, 1, func(e *Evaluator, args []Object) Object {
			if len(args) == 0 {
				return evaluatedToList(a.Evaluate())
			}
			sel, errObj := toSelector(args[0], a.Len())
			if errObj != nil {
				return errObj
			}
			if sel.isIndex {
				return valueResult(a.EvaluateIndex(sel.index))
			}
			return valueResult(a.EvaluateName(sel.name))
		})
	case config.AstMethod:
		return method(b, name, 1, 1, func(e *Evaluator, args []Object) Object {
			sel, errObj := toSelector(args[0], a.Len())
			if errObj != nil {
				return errObj
			}
			if sel.isIndex {
				return astResult(a.ParseIndex(sel.index))
			}
			return astResult(a.ParseName(sel.name))
		})
	case config.LenMethod:
		return method(b, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return &Integer{Value: int64(a.Len())}
		})
	case config.NamesMethod:
		return method(b, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return stringList(a.Names())
		})
	case config.SiteMethod:
		return method(b, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return siteOf(a.Snapshot())
		})
	case "spread":
		return method(b, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return optionalHandle(a.Spread())
		})
	case "kwspread":
		return method(b, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return optionalHandle(a.KeywordSpread())
		})
	}
	return newError("Args has no member %s", name)
}

// argsIndex implements args[0] and args["name"].
func argsIndex(b *ArgsBundle, index Object) Object {
	sel, errObj := toSelector(index, b.Args.Len())
	if errObj != nil {
		return errObj
	}
	if sel.isIndex {
		h, err := b.Args.Positional(sel.index)
		if err != nil {
			return errorFrom(err)
		}
		return &Handle{Deferred: h}
	}
	h, ok := b.Args.Named(sel.name)
	if !ok {
		return newError("no keyword argument %s", sel.name)
	}
	return &Handle{Deferred: h}
}

// evaluatedToList shapes a bundle evaluation as
// [positional, keywords, spread, kwspread].
func evaluatedToList(ev *lazy.Evaluated, err error) Object {
	if err != nil {
		return errorFrom(err)
	}
	positional := make([]Object, len(ev.Positional))
	for i, v := range ev.Positional {
		positional[i] = toObject(v)
	}
	keywords := NewRecord()
	for _, k := range ev.KeywordOrder {
		keywords.Set(k, toObject(ev.Keywords[k]))
	}
	return &List{Elements: []Object{
		&List{Elements: positional},
		keywords,
		toObject(ev.Spread),
		toObject(ev.KeywordSpread),
	}}
}

func toObject(v lazy.Value) Object {
	if obj, ok := v.(Object); ok && obj != nil {
		return obj
	}
	return NIL
}

func stringList(items []string) *List {
	elements := make([]Object, len(items))
	for i, s := range items {
		elements[i] = &String{Value: s}
	}
	return &List{Elements: elements}
}

func astMethod(n *AstNode, name string) Object {
	switch name {
	case config.KindMethod:
		return method(n, name, 0, 0, func(e *Evaluator, args []Object) Object {
			return &String{Value: typeName(n.Node)}
		})
	case "children":
		return method(n, name, 0, 0, func(e *Evaluator, args []Object) Object {
			var children []Object
			for _, c := range ast.Children(n.Node) {
				if expr, ok := c.(ast.Expression); ok {
					children = append(children, &AstNode{Node: expr})
				}
			}
			return &List{Elements: children}
		})
	}
	return newError("Ast has no member %s", name)
}

// literalFor renders a host value back to source, for the raw text of
// handles created without a call site.
func literalFor(v Object) ast.Expression {
	switch v := v.(type) {
	case *Integer:
		return &ast.IntegerLiteral{Value: v.Value}
	case *Float:
		return &ast.FloatLiteral{Value: v.Value}
	case *String:
		return &ast.StringLiteral{Value: v.Value}
	case *Boolean:
		return &ast.BooleanLiteral{Value: v.Value}
	case *Nil:
		return &ast.NilLiteral{}
	case *List:
		list := &ast.ListLiteral{}
		for _, el := range v.Elements {
			list.Elements = append(list.Elements, literalFor(el))
		}
		return list
	case *Record:
		rec := &ast.RecordLiteral{}
		for _, k := range v.Keys {
			rec.Fields = append(rec.Fields, &ast.RecordField{
				Key:   &ast.Identifier{Value: k},
				Value: literalFor(v.Fields[k]),
			})
		}
		return rec
	}
	return &ast.Identifier{Value: v.Inspect()}
}

var _ lazy.Evaluator = (*Evaluator)(nil)
