package evaluator

import (
	"sync"

	"github.com/funvibe/lazex/internal/lazy"
)

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Environment is one scope. Function calls open a new one; blocks do not.
type Environment struct {
	mu    sync.RWMutex
	store map[string]Object
	outer *Environment
	// params are excluded from Locals so a handle never shadows the
	// call-site value it stands for.
	params map[string]bool
}

func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	obj, ok := e.store[name]
	e.mu.RUnlock()
	if !ok && e.outer != nil {
		obj, ok = e.outer.Get(name)
	}
	return obj, ok
}

func (e *Environment) getLocal(name string) (Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	obj, ok := e.store[name]
	return obj, ok
}

func (e *Environment) Set(name string, val Object) Object {
	e.mu.Lock()
	e.store[name] = val
	e.mu.Unlock()
	return val
}

func (e *Environment) Update(name string, val Object) bool {
	e.mu.Lock()
	_, ok := e.store[name]
	if ok {
		e.store[name] = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()
	if e.outer != nil {
		return e.outer.Update(name, val)
	}
	return false
}

// GetStore returns a copy of the store
func (e *Environment) GetStore() map[string]Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	copy := make(map[string]Object)
	for k, v := range e.store {
		copy[k] = v
	}
	return copy
}

func (e *Environment) Outer() *Environment { return e.outer }

func (e *Environment) bindParam(name string, val Object) {
	e.mu.Lock()
	if e.params == nil {
		e.params = make(map[string]bool)
	}
	e.params[name] = true
	e.store[name] = val
	e.mu.Unlock()
}

// Locals returns the frame's own non-parameter bindings.
func (e *Environment) Locals() map[string]lazy.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]lazy.Value, len(e.store))
	for k, v := range e.store {
		if e.params[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// envScope adapts an Environment to lazy.Scope.
type envScope struct {
	env *Environment
}

func (s envScope) Get(name string) (lazy.Value, bool) {
	if s.env == nil {
		return nil, false
	}
	return s.env.Get(name)
}

// ScopeOf returns env as a lazy.Scope.
func ScopeOf(env *Environment) lazy.Scope {
	return envScope{env: env}
}

// environmentFor rebuilds an evaluation environment from a snapshot. The
// call-site layer becomes the innermost scope.
func environmentFor(s *lazy.Snapshot, fallback *Environment) *Environment {
	outer := fallback
	if es, ok := s.Outer().(envScope); ok && es.env != nil {
		outer = es.env
	}
	env := NewEnclosedEnvironment(outer)
	for name, v := range s.Bindings() {
		if obj, ok := v.(Object); ok {
			env.store[name] = obj
		}
	}
	return env
}
