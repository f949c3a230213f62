package evaluator

import (
	"errors"
	"fmt"
)

func newError(format string, a ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

func newErrorWithLocation(line, column int, format string, a ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, a...),
		Line:    line,
		Column:  column,
	}
}

// errorFrom turns a Go error from the lazy layer into a script error. The
// original stays reachable through errors.As.
func errorFrom(err error) *Error {
	return &Error{Message: err.Error(), Cause: err}
}

// AsError converts a script error object to a Go error, or returns nil.
func AsError(obj Object) error {
	if errObj, ok := obj.(*Error); ok {
		return errObj
	}
	return nil
}

// Cause returns the innermost script error wrapped in err, if any.
func Cause(err error) *Error {
	var last *Error
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}
		last = e
		err = e.Cause
	}
	return last
}

// PushCall adds a call frame to the stack
func (e *Evaluator) PushCall(name string, file string, line, column int) {
	e.CallStack = append(e.CallStack, CallFrame{
		Name:   name,
		File:   file,
		Line:   line,
		Column: column,
	})
}

// PopCall removes the top call frame
func (e *Evaluator) PopCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

// attachStack records the current call stack on an error that has none.
func (e *Evaluator) attachStack(err *Error) {
	if err.StackTrace != nil || len(e.CallStack) == 0 {
		return
	}
	err.StackTrace = make([]StackFrame, len(e.CallStack))
	for i, frame := range e.CallStack {
		err.StackTrace[i] = StackFrame{
			Name:   frame.Name,
			File:   frame.File,
			Line:   frame.Line,
			Column: frame.Column,
		}
	}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// isTruthy: false and nil are falsy, everything else is truthy.
func isTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Boolean:
		return obj.Value
	case *Nil:
		return false
	}
	return obj != nil
}
