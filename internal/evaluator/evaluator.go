package evaluator

import (
	"context"
	"io"
	"os"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/config"
	"github.com/funvibe/lazex/internal/lazy"
)

// CallFrame represents a single frame in the call stack
type CallFrame struct {
	Name   string // Function name
	File   string // Source file
	Line   int    // Line number
	Column int    // Column number
}

// RewriteHook observes the installed declaration of a lazy function right
// after its one-shot rewrite.
type RewriteHook func(fn *Function, decl *ast.FunctionStatement)

type Evaluator struct {
	// Context for cancellation
	Context context.Context

	Out io.Writer
	// Registry tracks lazy functions. Defaults to lazy.Default.
	Registry *lazy.Registry
	// MaxDepth bounds Eval nesting. Zero means config.DefaultMaxDepth.
	MaxDepth int
	// OnRewrite, when set, is called once per lazy function activation.
	OnRewrite RewriteHook
	// CallStack for stack traces on errors
	CallStack []CallFrame
	// CurrentFile being evaluated
	CurrentFile string
	// GlobalEnv holds builtins and top-level bindings.
	GlobalEnv *Environment
	// CurrentEnv is the environment of the node being evaluated, read by
	// builtins that capture scope.
	CurrentEnv *Environment

	evalDepth int
}

func New() *Evaluator {
	return &Evaluator{
		Out:      os.Stdout,
		Registry: lazy.Default,
		MaxDepth: config.DefaultMaxDepth,
	}
}

// NewGlobalEnvironment returns an environment holding the builtins and
// makes it the evaluator's global scope.
func (e *Evaluator) NewGlobalEnvironment() *Environment {
	env := NewEnvironment()
	RegisterBuiltins(env)
	e.GlobalEnv = env
	return env
}

func (e *Evaluator) registry() *lazy.Registry {
	if e.Registry == nil {
		return lazy.Default
	}
	return e.Registry
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	// Check recursion depth to prevent Go stack overflow
	maxDepth := e.MaxDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxDepth
	}
	e.evalDepth++
	if e.evalDepth > maxDepth {
		e.evalDepth--
		return newError("maximum recursion depth exceeded")
	}

	// Check for cancellation
	if e.Context != nil {
		select {
		case <-e.Context.Done():
			e.evalDepth--
			return newError("execution cancelled: %v", e.Context.Err())
		default:
		}
	}

	oldEnv := e.CurrentEnv
	e.CurrentEnv = env
	defer func() {
		e.CurrentEnv = oldEnv
		e.evalDepth--
	}()

	obj := e.evalCore(node, env)
	if err, ok := obj.(*Error); ok {
		if err.Line == 0 && node != nil {
			if provider, ok := node.(ast.TokenProvider); ok {
				tok := provider.GetToken()
				err.Line = tok.Line
				err.Column = tok.Column
			}
		}
	}
	return obj
}

func (e *Evaluator) evalCore(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return e.evalProgram(node, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.FunctionStatement:
		return e.evalFunctionStatement(node, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, env)
	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return &ReturnValue{Value: NIL}
		}
		val := e.Eval(node.ReturnValue, env)
		if isError(val) {
			return val
		}
		return &ReturnValue{Value: val}
	case *ast.ForStatement:
		return e.evalForStatement(node, env)
	case *ast.BreakStatement:
		return &BreakSignal{}
	case *ast.ContinueStatement:
		return &ContinueSignal{}

	// Literals
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)
	case *ast.NilLiteral:
		return NIL
	case *ast.ListLiteral:
		return e.evalListLiteral(node, env)
	case *ast.RecordLiteral:
		return e.evalRecordLiteral(node, env)

	// Expressions
	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.AssignExpression:
		val := e.Eval(node.Value, env)
		if isError(val) {
			return val
		}
		return env.Set(node.Name.Value, val)
	case *ast.IfExpression:
		return e.evalIfExpression(node, env)
	case *ast.FunctionLiteral:
		return &Function{
			Parameters: node.Parameters,
			Body:       node.Body,
			Env:        env,
			Line:       node.Token.Line,
			Column:     node.Token.Column,
		}
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.DeferExpression:
		return e.evalDeferExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.NamedArgument:
		return newError("named argument %s outside of a call", node.Name.Value)
	case *ast.SpreadExpression, *ast.KeywordSpreadExpression:
		return newError("spread outside of a call")
	}

	if node == nil {
		return NIL
	}
	return newError("unknown node type: %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NIL
	e.hoistFunctions(program.Statements, env)

	for _, stmt := range program.Statements {
		result = e.Eval(stmt, env)
		switch result := result.(type) {
		case *ReturnValue:
			return result.Value
		case *Error:
			return result
		case *BreakSignal:
			return newErrorWithLocation(stmt.GetToken().Line, stmt.GetToken().Column, "break outside of a loop")
		case *ContinueSignal:
			return newErrorWithLocation(stmt.GetToken().Line, stmt.GetToken().Column, "continue outside of a loop")
		}
	}
	return result
}

// hoistFunctions declares every function statement of a block before the
// block runs, so declaration order does not matter.
func (e *Evaluator) hoistFunctions(stmts []ast.Statement, env *Environment) {
	for _, stmt := range stmts {
		if fs, ok := stmt.(*ast.FunctionStatement); ok {
			e.evalFunctionStatement(fs, env)
		}
	}
}

func (e *Evaluator) evalFunctionStatement(fs *ast.FunctionStatement, env *Environment) Object {
	if existing, ok := env.getLocal(fs.Name.Value); ok {
		if fn, ok := existing.(*Function); ok && fn.Body == fs.Body {
			return fn
		}
	}
	fn := &Function{
		Name:       fs.Name.Value,
		Parameters: fs.Parameters,
		Body:       fs.Body,
		Env:        env,
		Line:       fs.Token.Line,
		Column:     fs.Token.Column,
		Source:     fs.Source,
	}
	if fs.Lazy {
		e.registry().Register(fn)
	}
	env.Set(fs.Name.Value, fn)
	return fn
}

// evalBlockStatement runs statements in env itself. Only calls open scopes.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NIL
	if block == nil {
		return result
	}
	e.hoistFunctions(block.Statements, env)

	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if result != nil {
			switch result.Type() {
			case ERROR_OBJ, RETURN_VALUE_OBJ, BREAK_SIGNAL_OBJ, CONTINUE_SIGNAL_OBJ:
				return result
			}
		}
	}
	return result
}

func (e *Evaluator) evalForStatement(node *ast.ForStatement, env *Environment) Object {
	iterable := e.Eval(node.Iterable, env)
	if isError(iterable) {
		return iterable
	}

	var items []Object
	switch it := iterable.(type) {
	case *List:
		items = it.Elements
	case *String:
		for _, r := range it.Value {
			items = append(items, &String{Value: string(r)})
		}
	case *Record:
		for _, k := range it.Keys {
			items = append(items, &String{Value: k})
		}
	case *ArgsBundle:
		for i := 0; i < it.Args.Len(); i++ {
			h, err := it.Args.Positional(i)
			if err != nil {
				return newError("%v", err)
			}
			items = append(items, &Handle{Deferred: h})
		}
	default:
		return newError("cannot iterate over %s", iterable.RuntimeType())
	}

	for _, item := range items {
		env.Set(node.Variable.Value, item)
		result := e.evalBlockStatement(node.Body, env)
		switch result.(type) {
		case *Error, *ReturnValue:
			return result
		case *BreakSignal:
			return NIL
		}
	}
	return NIL
}

func (e *Evaluator) evalIfExpression(ie *ast.IfExpression, env *Environment) Object {
	condition := e.Eval(ie.Condition, env)
	if isError(condition) {
		return condition
	}
	if isTruthy(condition) {
		return e.evalBlockStatement(ie.Consequence, env)
	} else if ie.Alternative != nil {
		return e.evalBlockStatement(ie.Alternative, env)
	}
	return NIL
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	return newError("identifier not found: %s", node.Value)
}
