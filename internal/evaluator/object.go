package evaluator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/lazy"
	"github.com/funvibe/lazex/internal/prettyprinter"
)

type ObjectType string

const (
	INTEGER_OBJ         = "INTEGER"
	FLOAT_OBJ           = "FLOAT"
	STRING_OBJ          = "STRING"
	BOOLEAN_OBJ         = "BOOLEAN"
	NIL_OBJ             = "NIL"
	LIST_OBJ            = "LIST"
	RECORD_OBJ          = "RECORD"
	FUNCTION_OBJ        = "FUNCTION"
	BUILTIN_OBJ         = "BUILTIN"
	BOUND_METHOD_OBJ    = "BOUND_METHOD"
	DEFERRED_OBJ        = "DEFERRED"
	ARGS_OBJ            = "ARGS"
	AST_OBJ             = "AST"
	ERROR_OBJ           = "ERROR"
	RETURN_VALUE_OBJ    = "RETURN_VALUE"
	BREAK_SIGNAL_OBJ    = "BREAK_SIGNAL"
	CONTINUE_SIGNAL_OBJ = "CONTINUE_SIGNAL"
)

// Runtime type names returned by type().
const (
	RUNTIME_TYPE_INT      = "Int"
	RUNTIME_TYPE_FLOAT    = "Float"
	RUNTIME_TYPE_STRING   = "String"
	RUNTIME_TYPE_BOOL     = "Bool"
	RUNTIME_TYPE_NIL      = "Nil"
	RUNTIME_TYPE_LIST     = "List"
	RUNTIME_TYPE_RECORD   = "Record"
	RUNTIME_TYPE_FUNCTION = "Function"
	RUNTIME_TYPE_DEFERRED = "Deferred"
	RUNTIME_TYPE_ARGS     = "Args"
	RUNTIME_TYPE_AST      = "Ast"
	RUNTIME_TYPE_ERROR    = "Error"
)

type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() string
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType    { return INTEGER_OBJ }
func (i *Integer) Inspect() string     { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) RuntimeType() string { return RUNTIME_TYPE_INT }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
func (f *Float) RuntimeType() string { return RUNTIME_TYPE_FLOAT }

type String struct {
	Value string
}

func (s *String) Type() ObjectType    { return STRING_OBJ }
func (s *String) Inspect() string     { return s.Value }
func (s *String) RuntimeType() string { return RUNTIME_TYPE_STRING }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType    { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string     { return strconv.FormatBool(b.Value) }
func (b *Boolean) RuntimeType() string { return RUNTIME_TYPE_BOOL }

type Nil struct{}

func (n *Nil) Type() ObjectType    { return NIL_OBJ }
func (n *Nil) Inspect() string     { return "nil" }
func (n *Nil) RuntimeType() string { return RUNTIME_TYPE_NIL }

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NIL   = &Nil{}
)

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, el := range l.Elements {
		parts[i] = inspectNested(el)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *List) RuntimeType() string { return RUNTIME_TYPE_LIST }

// Record keeps insertion order for printing and keys().
type Record struct {
	Fields map[string]Object
	Keys   []string
}

func NewRecord() *Record {
	return &Record{Fields: make(map[string]Object)}
}

func (r *Record) Set(key string, val Object) {
	if _, ok := r.Fields[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Fields[key] = val
}

func (r *Record) Get(key string) (Object, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	parts := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		parts[i] = k + ": " + inspectNested(r.Fields[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (r *Record) RuntimeType() string { return RUNTIME_TYPE_RECORD }

// SortedKeys returns record keys in lexical order.
func (r *Record) SortedKeys() []string {
	keys := append([]string(nil), r.Keys...)
	sort.Strings(keys)
	return keys
}

func inspectNested(obj Object) string {
	if s, ok := obj.(*String); ok {
		return strconv.Quote(s.Value)
	}
	return obj.Inspect()
}

// Function is a user-defined function or lambda.
type Function struct {
	Name       string
	Parameters []*ast.Parameter
	Body       *ast.BlockStatement
	Env        *Environment
	Line       int
	Column     int
	// Source is the declaration text handed to the lazy registry.
	Source string
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	name := f.Name
	if name == "" {
		name = "<lambda>"
	}
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Name.Value
		if p.IsVariadic {
			params[i] = "..." + params[i]
		}
	}
	return "fun " + name + "(" + strings.Join(params, ", ") + ")"
}
func (f *Function) RuntimeType() string { return RUNTIME_TYPE_FUNCTION }

func (f *Function) LazyName() string {
	if f.Name == "" {
		return "<lambda>"
	}
	return f.Name
}

// LazySource returns the declaration text. Lambdas have none and are
// rendered as an equivalent declaration.
func (f *Function) LazySource() string {
	if f.Source != "" {
		return f.Source
	}
	return prettyprinter.Render(&ast.FunctionStatement{
		Name:       &ast.Identifier{Value: "lambda"},
		Parameters: f.Parameters,
		Body:       f.Body,
		Lazy:       true,
	})
}

type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Fn   BuiltinFunction
	Name string
}

func (b *Builtin) Type() ObjectType    { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string     { return "builtin " + b.Name }
func (b *Builtin) RuntimeType() string { return RUNTIME_TYPE_FUNCTION }

// BoundMethod is a handle method looked up through member access.
type BoundMethod struct {
	Receiver Object
	Name     string
	Fn       func(e *Evaluator, args []Object) Object
}

func (bm *BoundMethod) Type() ObjectType { return BOUND_METHOD_OBJ }
func (bm *BoundMethod) Inspect() string {
	return fmt.Sprintf("method %s of %s", bm.Name, bm.Receiver.RuntimeType())
}
func (bm *BoundMethod) RuntimeType() string { return RUNTIME_TYPE_FUNCTION }

// Handle exposes a lazy.Deferred to scripts.
type Handle struct {
	Deferred *lazy.Deferred
}

func (h *Handle) Type() ObjectType    { return DEFERRED_OBJ }
func (h *Handle) Inspect() string     { return h.Deferred.String() }
func (h *Handle) RuntimeType() string { return RUNTIME_TYPE_DEFERRED }

// ArgsBundle exposes a lazy.Args to scripts.
type ArgsBundle struct {
	Args *lazy.Args
}

func (a *ArgsBundle) Type() ObjectType    { return ARGS_OBJ }
func (a *ArgsBundle) Inspect() string     { return a.Args.String() }
func (a *ArgsBundle) RuntimeType() string { return RUNTIME_TYPE_ARGS }

// AstNode is the parsed form of a deferred expression.
type AstNode struct {
	Node ast.Expression
}

func (a *AstNode) Type() ObjectType    { return AST_OBJ }
func (a *AstNode) Inspect() string     { return prettyprinter.Render(a.Node) }
func (a *AstNode) RuntimeType() string { return RUNTIME_TYPE_AST }

type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType    { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string     { return rv.Value.Inspect() }
func (rv *ReturnValue) RuntimeType() string { return rv.Value.RuntimeType() }

type BreakSignal struct{}

func (bs *BreakSignal) Type() ObjectType    { return BREAK_SIGNAL_OBJ }
func (bs *BreakSignal) Inspect() string     { return "break" }
func (bs *BreakSignal) RuntimeType() string { return "BreakSignal" }

type ContinueSignal struct{}

func (cs *ContinueSignal) Type() ObjectType    { return CONTINUE_SIGNAL_OBJ }
func (cs *ContinueSignal) Inspect() string     { return "continue" }
func (cs *ContinueSignal) RuntimeType() string { return "ContinueSignal" }

// Error is a runtime error value. It also satisfies the error interface so
// it can leave the interpreter unchanged.
type Error struct {
	Message    string
	Line       int
	Column     int
	StackTrace []StackFrame
	// Cause is the Go error this one was built from, if any.
	Cause error
}

// StackFrame for error stack traces
type StackFrame struct {
	Name   string
	File   string
	Line   int
	Column int
}

func (e *Error) Type() ObjectType    { return ERROR_OBJ }
func (e *Error) RuntimeType() string { return RUNTIME_TYPE_ERROR }
func (e *Error) Inspect() string {
	var result string
	if e.Line > 0 {
		result = fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Column, e.Message)
	} else {
		result = "ERROR: " + e.Message
	}

	// Innermost call first
	if len(e.StackTrace) > 0 {
		result += "\nStack trace:"
		for i := len(e.StackTrace) - 1; i >= 0; i-- {
			frame := e.StackTrace[i]
			result += fmt.Sprintf("\n  at %s:%d (called %s)", frame.File, frame.Line, frame.Name)
		}
	}
	return result
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }
