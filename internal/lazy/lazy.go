// Package lazy implements call-site lazy argument evaluation: the one-shot
// rewrite of lazy functions, the registry that tracks it, and the handles a
// lazy function receives in place of argument values.
package lazy

import "github.com/funvibe/lazex/internal/ast"

// Value is a runtime value of the host evaluator.
type Value = any

// Evaluator is the host expression evaluator.
type Evaluator interface {
	// Evaluate runs text under scope and returns its value.
	Evaluate(text string, scope *Snapshot) (Value, error)
	// Parse returns the structure of text without running it.
	Parse(text string) (ast.Expression, error)
}

// Resolver decides statically whether a callee path names a lazy function.
// Paths are identifier chains as written: foo, or mod.foo.
type Resolver interface {
	ResolveLazy(path []string) bool
}

// DeclResolver resolves single names declared with `lazy fun`.
type DeclResolver map[string]bool

func (d DeclResolver) ResolveLazy(path []string) bool {
	return len(path) == 1 && d[path[0]]
}

// AnyResolver answers true when any of its resolvers does.
type AnyResolver []Resolver

func (a AnyResolver) ResolveLazy(path []string) bool {
	for _, r := range a {
		if r != nil && r.ResolveLazy(path) {
			return true
		}
	}
	return false
}

// NewDeclResolver collects the top-level lazy declarations of a program.
func NewDeclResolver(program *ast.Program) DeclResolver {
	d := DeclResolver{}
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*ast.FunctionStatement); ok && fn.Lazy {
			d[fn.Name.Value] = true
		}
	}
	return d
}
