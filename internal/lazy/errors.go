package lazy

import "fmt"

// ErrorKind classifies rewrite failures.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	ResolveError
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case ResolveError:
		return "ResolveError"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RewriteError is fatal for the function it names. The function stays
// un-rewritten and every later call fails the same way.
type RewriteError struct {
	Function string
	Kind     ErrorKind
	Err      error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("lazy function %s: %s: %v", e.Function, e.Kind, e.Err)
}

func (e *RewriteError) Unwrap() error { return e.Err }

// EvaluationError is returned by the eval call that ran the failing text.
type EvaluationError struct {
	Text string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %s: %v", e.Text, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
