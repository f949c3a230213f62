package lazy

import (
	"sort"

	"github.com/google/uuid"
)

// Scope is a read-only view of bindings, usually an evaluator environment.
type Scope interface {
	Get(name string) (Value, bool)
}

// Frame is the callee frame that received a call's handles.
type Frame interface {
	Locals() map[string]Value
}

// Snapshot holds the bindings a deferred expression is evaluated under:
// call-site values layered over the callee's defining scope. One snapshot
// is shared by every handle of a single call.
type Snapshot struct {
	token    uuid.UUID
	bindings map[string]Value
	outer    Scope
	frame    Frame
	toppedUp bool
}

// NewSnapshot takes ownership of bindings. outer may be nil.
func NewSnapshot(bindings map[string]Value, outer Scope) *Snapshot {
	if bindings == nil {
		bindings = make(map[string]Value)
	}
	return &Snapshot{token: uuid.New(), bindings: bindings, outer: outer}
}

// Token identifies the call that produced this snapshot. It is never reused.
func (s *Snapshot) Token() uuid.UUID { return s.token }

// Outer returns the layer below the call-site bindings.
func (s *Snapshot) Outer() Scope { return s.outer }

func (s *Snapshot) Get(name string) (Value, bool) {
	if v, ok := s.bindings[name]; ok {
		return v, true
	}
	if s.outer != nil {
		return s.outer.Get(name)
	}
	return nil, false
}

// Bindings returns a copy of the call-site layer.
func (s *Snapshot) Bindings() map[string]Value {
	out := make(map[string]Value, len(s.bindings))
	for k, v := range s.bindings {
		out[k] = v
	}
	return out
}

func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Attach records the frame whose locals are merged in on first evaluation.
// Only the first frame is kept.
func (s *Snapshot) Attach(f Frame) {
	if s.frame == nil {
		s.frame = f
	}
}

// topUp merges the attached frame's locals once. Callee-local values win
// over call-site values with the same name; nothing is ever removed.
func (s *Snapshot) topUp() {
	if s.toppedUp || s.frame == nil {
		return
	}
	s.toppedUp = true
	for k, v := range s.frame.Locals() {
		s.bindings[k] = v
	}
}
