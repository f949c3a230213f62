package lazy

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/parser"
)

// State is the forward-only lifecycle of a lazy function.
type State int

const (
	Unregistered State = iota
	Registered
	Rewriting
	Rewritten
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registered:
		return "registered"
	case Rewriting:
		return "rewriting"
	case Rewritten:
		return "rewritten"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Function is what the registry needs from a host function object. Its
// identity is the registration key, so implementations must be pointers.
type Function interface {
	LazyName() string
	// LazySource is the exact declaration text, re-parsed on activation.
	LazySource() string
}

var ErrNotRegistered = errors.New("function is not registered as lazy")

type registration struct {
	key       string
	state     State
	installed *ast.FunctionStatement
}

// Registry is the process-wide set of lazy functions. There is no removal.
type Registry struct {
	mu      sync.RWMutex
	entries map[Function]*registration
	next    int
	group   singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Function]*registration)}
}

// Default is the registry shared by every evaluator that is not given one.
var Default = NewRegistry()

// Register opts fn in. Registering twice is a no-op.
func (r *Registry) Register(fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[fn]; ok {
		return
	}
	r.next++
	r.entries[fn] = &registration{key: strconv.Itoa(r.next), state: Registered}
	slog.Debug("registered lazy function", "name", fn.LazyName())
}

func (r *Registry) IsRegistered(fn Function) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[fn]
	return ok
}

func (r *Registry) State(fn Function) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[fn]; ok {
		return e.state
	}
	return Unregistered
}

// MarkRewritten flips fn to Rewritten. It never moves a state backwards.
func (r *Registry) MarkRewritten(fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[fn]; ok {
		e.state = Rewritten
	}
}

// Installed returns the rewritten declaration once fn is Rewritten.
func (r *Registry) Installed(fn Function) (*ast.FunctionStatement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[fn]
	if !ok || e.state != Rewritten {
		return nil, false
	}
	return e.installed, true
}

// Activate returns the installed body of fn, rewriting it on first use.
// Concurrent first calls share one rewrite. On failure nothing is installed
// and fn stays Registered, so the next call tries again.
func (r *Registry) Activate(fn Function, resolver Resolver) (*ast.FunctionStatement, error) {
	r.mu.RLock()
	e, ok := r.entries[fn]
	var state State
	var key string
	var installed *ast.FunctionStatement
	if ok {
		state, key, installed = e.state, e.key, e.installed
	}
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", fn.LazyName(), ErrNotRegistered)
	}
	if state == Rewritten {
		return installed, nil
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		r.mu.Lock()
		if e.state == Rewritten {
			r.mu.Unlock()
			return e.installed, nil
		}
		e.state = Rewriting
		r.mu.Unlock()

		rewritten, err := rewriteSource(fn, resolver)

		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			e.state = Registered
			slog.Debug("activation failed", "name", fn.LazyName(), "err", err)
			return nil, err
		}
		e.installed = rewritten
		e.state = Rewritten
		return rewritten, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ast.FunctionStatement), nil
}

func rewriteSource(fn Function, resolver Resolver) (*ast.FunctionStatement, error) {
	decl, err := parser.ParseFunction(fn.LazySource())
	if err != nil {
		return nil, &RewriteError{Function: fn.LazyName(), Kind: SyntaxError, Err: err}
	}
	rewritten, err := Rewrite(decl, resolver)
	if err != nil {
		var rerr *RewriteError
		if errors.As(err, &rerr) {
			return nil, err
		}
		return nil, &RewriteError{Function: fn.LazyName(), Kind: ResolveError, Err: err}
	}
	return rewritten, nil
}
