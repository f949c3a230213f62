package evaluator

import (
	"fmt"
	"math"
	"strings"

	"fortio.org/safecast"

	"github.com/funvibe/lazex/internal/ast"
)

func (e *Evaluator) evalListLiteral(node *ast.ListLiteral, env *Environment) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, el := range node.Elements {
		val := e.Eval(el, env)
		if isError(val) {
			return val
		}
		elements = append(elements, val)
	}
	return &List{Elements: elements}
}

func (e *Evaluator) evalRecordLiteral(node *ast.RecordLiteral, env *Environment) Object {
	rec := NewRecord()
	for _, field := range node.Fields {
		val := e.Eval(field.Value, env)
		if isError(val) {
			return val
		}
		rec.Set(field.Key.Value, val)
	}
	return rec
}

func (e *Evaluator) evalPrefixExpression(operator string, right Object) Object {
	switch operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		switch r := right.(type) {
		case *Integer:
			return &Integer{Value: -r.Value}
		case *Float:
			return &Float{Value: -r.Value}
		}
		return newError("unknown operator: -%s", right.RuntimeType())
	}
	return newError("unknown operator: %s%s", operator, right.RuntimeType())
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}

	// Short-circuit
	switch node.Operator {
	case "&&":
		if !isTruthy(left) {
			return FALSE
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	case "||":
		if isTruthy(left) {
			return TRUE
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return nativeBoolToBooleanObject(isTruthy(right))
	}

	right := e.Eval(node.Right, env)
	if isError(right) {
		return right
	}
	return e.evalBinary(node.Operator, left, right)
}

func (e *Evaluator) evalBinary(operator string, left, right Object) Object {
	switch operator {
	case "==":
		return nativeBoolToBooleanObject(objectsEqual(left, right))
	case "!=":
		return nativeBoolToBooleanObject(!objectsEqual(left, right))
	}

	switch l := left.(type) {
	case *Integer:
		switch r := right.(type) {
		case *Integer:
			return evalIntegerInfix(operator, l.Value, r.Value)
		case *Float:
			return evalFloatInfix(operator, float64(l.Value), r.Value)
		}
	case *Float:
		switch r := right.(type) {
		case *Integer:
			return evalFloatInfix(operator, l.Value, float64(r.Value))
		case *Float:
			return evalFloatInfix(operator, l.Value, r.Value)
		}
	case *String:
		if r, ok := right.(*String); ok {
			return evalStringInfix(operator, l.Value, r.Value)
		}
	case *List:
		if r, ok := right.(*List); ok && operator == "++" {
			elements := make([]Object, 0, len(l.Elements)+len(r.Elements))
			elements = append(elements, l.Elements...)
			elements = append(elements, r.Elements...)
			return &List{Elements: elements}
		}
	}

	if left.Type() != right.Type() {
		return newError("type mismatch: %s %s %s", left.RuntimeType(), operator, right.RuntimeType())
	}
	return newError("unknown operator: %s %s %s", left.RuntimeType(), operator, right.RuntimeType())
}

func evalIntegerInfix(operator string, l, r int64) Object {
	switch operator {
	case "+":
		return &Integer{Value: l + r}
	case "-":
		return &Integer{Value: l - r}
	case "*":
		return &Integer{Value: l * r}
	case "/":
		if r == 0 {
			return newError("division by zero")
		}
		return &Integer{Value: l / r}
	case "%":
		if r == 0 {
			return newError("division by zero")
		}
		return &Integer{Value: l % r}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case "<=":
		return nativeBoolToBooleanObject(l <= r)
	case ">=":
		return nativeBoolToBooleanObject(l >= r)
	}
	return newError("unknown operator: %s %s %s", RUNTIME_TYPE_INT, operator, RUNTIME_TYPE_INT)
}

func evalFloatInfix(operator string, l, r float64) Object {
	switch operator {
	case "+":
		return &Float{Value: l + r}
	case "-":
		return &Float{Value: l - r}
	case "*":
		return &Float{Value: l * r}
	case "/":
		if r == 0 {
			return newError("division by zero")
		}
		return &Float{Value: l / r}
	case "%":
		if r == 0 {
			return newError("division by zero")
		}
		return &Float{Value: math.Mod(l, r)}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case "<=":
		return nativeBoolToBooleanObject(l <= r)
	case ">=":
		return nativeBoolToBooleanObject(l >= r)
	}
	return newError("unknown operator: %s %s %s", RUNTIME_TYPE_FLOAT, operator, RUNTIME_TYPE_FLOAT)
}

func evalStringInfix(operator string, l, r string) Object {
	switch operator {
	case "+", "++":
		return &String{Value: l + r}
	case "<":
		return nativeBoolToBooleanObject(l < r)
	case ">":
		return nativeBoolToBooleanObject(l > r)
	case "<=":
		return nativeBoolToBooleanObject(l <= r)
	case ">=":
		return nativeBoolToBooleanObject(l >= r)
	}
	return newError("unknown operator: %s %s %s", RUNTIME_TYPE_STRING, operator, RUNTIME_TYPE_STRING)
}

func objectsEqual(a, b Object) bool {
	switch a := a.(type) {
	case *Integer:
		switch b := b.(type) {
		case *Integer:
			return a.Value == b.Value
		case *Float:
			return float64(a.Value) == b.Value
		}
		return false
	case *Float:
		switch b := b.(type) {
		case *Integer:
			return a.Value == float64(b.Value)
		case *Float:
			return a.Value == b.Value
		}
		return false
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !objectsEqual(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Record:
		b, ok := b.(*Record)
		if !ok || len(a.Fields) != len(b.Fields) {
			return false
		}
		for k, v := range a.Fields {
			bv, ok := b.Fields[k]
			if !ok || !objectsEqual(v, bv) {
				return false
			}
		}
		return true
	case *AstNode:
		b, ok := b.(*AstNode)
		return ok && a.Inspect() == b.Inspect()
	}
	return a == b
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	name := node.Member.Value

	switch obj := left.(type) {
	case *Record:
		if val, ok := obj.Get(name); ok {
			return val
		}
		return newError("record has no field %s", name)
	case *Handle:
		return handleMethod(obj, name)
	case *ArgsBundle:
		return argsMethod(obj, name)
	case *AstNode:
		return astMethod(obj, name)
	}
	return newError("%s has no member %s", left.RuntimeType(), name)
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}
	index := e.Eval(node.Index, env)
	if isError(index) {
		return index
	}

	switch obj := left.(type) {
	case *List:
		i, errObj := toIndex(index, len(obj.Elements))
		if errObj != nil {
			return errObj
		}
		return obj.Elements[i]
	case *String:
		runes := []rune(obj.Value)
		i, errObj := toIndex(index, len(runes))
		if errObj != nil {
			return errObj
		}
		return &String{Value: string(runes[i])}
	case *Record:
		key, ok := index.(*String)
		if !ok {
			return newError("record index must be String, got %s", index.RuntimeType())
		}
		if val, ok := obj.Get(key.Value); ok {
			return val
		}
		return newError("record has no field %s", key.Value)
	case *ArgsBundle:
		return argsIndex(obj, index)
	}
	return newError("index operator not supported: %s", left.RuntimeType())
}

// toIndex converts an Int object to a slice index. Negative indices count
// from the end.
func toIndex(index Object, length int) (int, *Error) {
	intObj, ok := index.(*Integer)
	if !ok {
		return 0, newError("index must be Int, got %s", index.RuntimeType())
	}
	i, err := safecast.Conv[int](intObj.Value)
	if err != nil {
		return 0, newError("index %d out of range", intObj.Value)
	}
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, newError("index %d out of range [0, %d)", intObj.Value, length)
	}
	return i, nil
}

// typeName strips the package qualifier from an AST node's Go type.
func typeName(node ast.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.")
}
