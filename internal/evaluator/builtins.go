package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/funvibe/lazex/internal/config"
	"github.com/funvibe/lazex/internal/lazy"
)

// Builtins is the table of native functions available to every script.
var Builtins = map[string]*Builtin{
	config.PrintFuncName:      {Name: config.PrintFuncName, Fn: builtinPrint},
	config.LenFuncName:        {Name: config.LenFuncName, Fn: builtinLen},
	config.StrFuncName:        {Name: config.StrFuncName, Fn: builtinStr},
	config.IntFuncName:        {Name: config.IntFuncName, Fn: builtinInt},
	config.FloatFuncName:      {Name: config.FloatFuncName, Fn: builtinFloat},
	config.TypeFuncName:       {Name: config.TypeFuncName, Fn: builtinType},
	config.PushFuncName:       {Name: config.PushFuncName, Fn: builtinPush},
	config.KeysFuncName:       {Name: config.KeysFuncName, Fn: builtinKeys},
	config.RangeFuncName:      {Name: config.RangeFuncName, Fn: builtinRange},
	config.ContainsFuncName:   {Name: config.ContainsFuncName, Fn: builtinContains},
	config.ExpressionFuncName: {Name: config.ExpressionFuncName, Fn: builtinExpression},
	config.LazyFuncName:       {Name: config.LazyFuncName, Fn: builtinLazy},
	config.IsLazyFuncName:     {Name: config.IsLazyFuncName, Fn: builtinIsLazy},
	config.AssertFuncName:     {Name: config.AssertFuncName, Fn: builtinAssert},
}

// RegisterBuiltins binds every builtin in env.
func RegisterBuiltins(env *Environment) {
	for name, b := range Builtins {
		env.Set(name, b)
	}
}

func arity(name string, args []Object, n int) *Error {
	if len(args) != n {
		return newError("%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func builtinPrint(e *Evaluator, args ...Object) Object {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.Inspect()
	}
	fmt.Fprintln(e.Out, strings.Join(parts, " "))
	return NIL
}

func builtinLen(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.LenFuncName, args, 1); errObj != nil {
		return errObj
	}
	switch arg := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len([]rune(arg.Value)))}
	case *List:
		return &Integer{Value: int64(len(arg.Elements))}
	case *Record:
		return &Integer{Value: int64(len(arg.Keys))}
	case *ArgsBundle:
		return &Integer{Value: int64(arg.Args.Len())}
	}
	return newError("len not supported for %s", args[0].RuntimeType())
}

func builtinStr(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.StrFuncName, args, 1); errObj != nil {
		return errObj
	}
	return &String{Value: args[0].Inspect()}
}

func builtinInt(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.IntFuncName, args, 1); errObj != nil {
		return errObj
	}
	switch arg := args[0].(type) {
	case *Integer:
		return arg
	case *Float:
		n, err := safecast.Truncate[int64](arg.Value)
		if err != nil {
			return newError("cannot convert %s to Int: %v", arg.Inspect(), err)
		}
		return &Integer{Value: n}
	case *String:
		n, err := strconv.ParseInt(strings.TrimSpace(arg.Value), 10, 64)
		if err != nil {
			return newError("cannot convert %q to Int", arg.Value)
		}
		return &Integer{Value: n}
	case *Boolean:
		if arg.Value {
			return &Integer{Value: 1}
		}
		return &Integer{Value: 0}
	}
	return newError("cannot convert %s to Int", args[0].RuntimeType())
}

func builtinFloat(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.FloatFuncName, args, 1); errObj != nil {
		return errObj
	}
	switch arg := args[0].(type) {
	case *Float:
		return arg
	case *Integer:
		return &Float{Value: float64(arg.Value)}
	case *String:
		f, err := strconv.ParseFloat(strings.TrimSpace(arg.Value), 64)
		if err != nil {
			return newError("cannot convert %q to Float", arg.Value)
		}
		return &Float{Value: f}
	}
	return newError("cannot convert %s to Float", args[0].RuntimeType())
}

func builtinType(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.TypeFuncName, args, 1); errObj != nil {
		return errObj
	}
	return &String{Value: args[0].RuntimeType()}
}

// push returns a new list; the argument is left untouched.
func builtinPush(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.PushFuncName, args, 2); errObj != nil {
		return errObj
	}
	list, ok := args[0].(*List)
	if !ok {
		return newError("push expects a List, got %s", args[0].RuntimeType())
	}
	elements := make([]Object, len(list.Elements), len(list.Elements)+1)
	copy(elements, list.Elements)
	return &List{Elements: append(elements, args[1])}
}

func builtinKeys(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.KeysFuncName, args, 1); errObj != nil {
		return errObj
	}
	switch arg := args[0].(type) {
	case *Record:
		return stringList(arg.Keys)
	case *ArgsBundle:
		return stringList(arg.Args.Names())
	}
	return newError("keys expects a Record, got %s", args[0].RuntimeType())
}

func builtinRange(e *Evaluator, args ...Object) Object {
	var start, end int64
	switch len(args) {
	case 1:
		n, ok := args[0].(*Integer)
		if !ok {
			return newError("range expects Int, got %s", args[0].RuntimeType())
		}
		end = n.Value
	case 2:
		a, ok1 := args[0].(*Integer)
		b, ok2 := args[1].(*Integer)
		if !ok1 || !ok2 {
			return newError("range expects Int arguments")
		}
		start, end = a.Value, b.Value
	default:
		return newError("range expects 1 or 2 arguments, got %d", len(args))
	}
	var elements []Object
	for i := start; i < end; i++ {
		elements = append(elements, &Integer{Value: i})
	}
	return &List{Elements: elements}
}

func builtinContains(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.ContainsFuncName, args, 2); errObj != nil {
		return errObj
	}
	switch hay := args[0].(type) {
	case *String:
		needle, ok := args[1].(*String)
		if !ok {
			return newError("contains on a String expects a String, got %s", args[1].RuntimeType())
		}
		return nativeBoolToBooleanObject(strings.Contains(hay.Value, needle.Value))
	case *List:
		for _, el := range hay.Elements {
			if objectsEqual(el, args[1]) {
				return TRUE
			}
		}
		return FALSE
	case *Record:
		key, ok := args[1].(*String)
		if !ok {
			return FALSE
		}
		_, found := hay.Get(key.Value)
		return nativeBoolToBooleanObject(found)
	}
	return newError("contains not supported for %s", args[0].RuntimeType())
}

// expression(text) is a handle over text in the caller's scope. Names are
// read when the handle is evaluated.
func builtinExpression(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.ExpressionFuncName, args, 1); errObj != nil {
		return errObj
	}
	text, errObj := stringArg(config.ExpressionFuncName, args[0])
	if errObj != nil {
		return errObj
	}
	if _, err := e.Parse(text); err != nil {
		return newError("expression: %v", err)
	}
	env := e.CurrentEnv
	if env == nil {
		env = e.GlobalEnv
	}
	snapshot := lazy.NewSnapshot(nil, ScopeOf(env))
	return &Handle{Deferred: lazy.NewDeferred(lazy.NewCapture(text, lazy.Positional, ""), snapshot, e)}
}

func builtinLazy(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.LazyFuncName, args, 1); errObj != nil {
		return errObj
	}
	fn, ok := args[0].(*Function)
	if !ok {
		return newError("lazy expects a Function, got %s", args[0].RuntimeType())
	}
	e.registry().Register(fn)
	return fn
}

func builtinIsLazy(e *Evaluator, args ...Object) Object {
	if errObj := arity(config.IsLazyFuncName, args, 1); errObj != nil {
		return errObj
	}
	fn, ok := args[0].(*Function)
	return nativeBoolToBooleanObject(ok && e.registry().IsRegistered(fn))
}

func builtinAssert(e *Evaluator, args ...Object) Object {
	if len(args) < 1 || len(args) > 2 {
		return newError("assert expects 1 or 2 arguments, got %d", len(args))
	}
	if isTruthy(args[0]) {
		return NIL
	}
	if len(args) == 2 {
		return newError("assertion failed: %s", args[1].Inspect())
	}
	return newError("assertion failed")
}
