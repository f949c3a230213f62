package diagnostics

import (
	"fmt"

	"github.com/funvibe/lazex/internal/token"
)

type ErrorCode string

const (
	// Parser errors
	ErrP001 ErrorCode = "P001" // Unexpected token
	ErrP002 ErrorCode = "P002" // Expected identifier
	ErrP004 ErrorCode = "P004" // No prefix parse function
	ErrP005 ErrorCode = "P005" // Expected closing token
	ErrP006 ErrorCode = "P006" // Malformed construct
	ErrP007 ErrorCode = "P007" // Invalid literal

	// Lazy rewrite errors
	ErrL001 ErrorCode = "L001" // Function source cannot be parsed
	ErrL002 ErrorCode = "L002" // Misplaced spread argument

	// Runtime errors
	ErrR001 ErrorCode = "R001"
)

// DiagnosticError is a located error reported by the lexer, parser or rewriter.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: [%s] %s", loc, e.Code, e.Message)
}

// NewError builds a diagnostic. Extra args are appended to the message
// as "(got X)" context, matching how call sites pass the offending literal.
func NewError(code ErrorCode, tok token.Token, msg string, args ...interface{}) *DiagnosticError {
	if len(args) > 0 && args[0] != nil {
		msg = fmt.Sprintf("%s (got %v)", msg, args[0])
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}
