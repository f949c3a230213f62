package lazy

import (
	"fmt"
	"strings"

	"github.com/funvibe/lazex/internal/ast"
)

// Args aggregates the captures of one call that did not bind to a named
// parameter: surplus positionals, unknown keywords and both spreads.
type Args struct {
	positional []*Deferred
	named      []*Deferred
	spread     *Deferred
	kwSpread   *Deferred

	snapshot  *Snapshot
	evaluator Evaluator
	memo      memo
}

// Evaluated is the result of evaluating every capture in a bundle.
type Evaluated struct {
	Positional    []Value
	Keywords      map[string]Value
	KeywordOrder  []string
	Spread        Value // nil when the call had no spread
	KeywordSpread Value // nil when the call had no keyword spread
}

// NewArgs sorts handles into their slots by kind. A second spread of the
// same kind is rejected.
func NewArgs(s *Snapshot, ev Evaluator, handles ...*Deferred) (*Args, error) {
	a := &Args{snapshot: s, evaluator: ev}
	for _, h := range handles {
		if err := a.Add(h); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Args) Add(h *Deferred) error {
	switch h.Kind() {
	case Positional:
		a.positional = append(a.positional, h)
	case Named:
		if _, ok := a.Named(h.Name()); ok {
			return fmt.Errorf("duplicate keyword %s", h.Name())
		}
		a.named = append(a.named, h)
	case Spread:
		if a.spread != nil {
			return fmt.Errorf("more than one spread capture")
		}
		a.spread = h
	case KeywordSpread:
		if a.kwSpread != nil {
			return fmt.Errorf("more than one keyword spread capture")
		}
		a.kwSpread = h
	}
	if a.snapshot == nil {
		a.snapshot = h.Snapshot()
	}
	return nil
}

// Len is the number of positional captures.
func (a *Args) Len() int { return len(a.positional) }

// Names returns keyword names in call order.
func (a *Args) Names() []string {
	names := make([]string, len(a.named))
	for i, h := range a.named {
		names[i] = h.Name()
	}
	return names
}

func (a *Args) Positional(i int) (*Deferred, error) {
	if i < 0 || i >= len(a.positional) {
		return nil, fmt.Errorf("positional index %d out of range [0, %d)", i, len(a.positional))
	}
	return a.positional[i], nil
}

func (a *Args) Named(name string) (*Deferred, bool) {
	for _, h := range a.named {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}

func (a *Args) Spread() *Deferred        { return a.spread }
func (a *Args) KeywordSpread() *Deferred { return a.kwSpread }
func (a *Args) Snapshot() *Snapshot      { return a.snapshot }

// Evaluate evaluates every capture. Spreads stay separate components.
func (a *Args) Evaluate() (*Evaluated, error) {
	out := &Evaluated{Keywords: make(map[string]Value, len(a.named))}
	for _, h := range a.positional {
		v, err := h.Evaluate()
		if err != nil {
			return nil, err
		}
		out.Positional = append(out.Positional, v)
	}
	for _, h := range a.named {
		v, err := h.Evaluate()
		if err != nil {
			return nil, err
		}
		out.Keywords[h.Name()] = v
		out.KeywordOrder = append(out.KeywordOrder, h.Name())
	}
	if a.spread != nil {
		v, err := a.spread.Evaluate()
		if err != nil {
			return nil, err
		}
		out.Spread = v
	}
	if a.kwSpread != nil {
		v, err := a.kwSpread.Evaluate()
		if err != nil {
			return nil, err
		}
		out.KeywordSpread = v
	}
	return out, nil
}

func (a *Args) EvaluateIndex(i int) (Value, error) {
	h, err := a.Positional(i)
	if err != nil {
		return nil, err
	}
	return h.Evaluate()
}

// EvaluateName evaluates the keyword capture called name. Without one,
// name is evaluated as ad hoc text under the captured scope.
func (a *Args) EvaluateName(name string) (Value, error) {
	if h, ok := a.Named(name); ok {
		return h.Evaluate()
	}
	return evaluateMemo(&a.memo, a.snapshot, a.evaluator, name)
}

func (a *Args) ParseIndex(i int) (ast.Expression, error) {
	h, err := a.Positional(i)
	if err != nil {
		return nil, err
	}
	return h.Parse()
}

func (a *Args) ParseName(name string) (ast.Expression, error) {
	if h, ok := a.Named(name); ok {
		return h.Parse()
	}
	return parseMemo(&a.memo, a.evaluator, name)
}

func (a *Args) RawIndex(i int) (string, error) {
	h, err := a.Positional(i)
	if err != nil {
		return "", err
	}
	return h.Raw(), nil
}

func (a *Args) RawName(name string) (string, bool) {
	if h, ok := a.Named(name); ok {
		return h.Raw(), true
	}
	return "", false
}

func (a *Args) String() string {
	var parts []string
	for _, h := range a.positional {
		parts = append(parts, h.Raw())
	}
	for _, h := range a.named {
		parts = append(parts, h.Name()+": "+h.Raw())
	}
	if a.spread != nil {
		parts = append(parts, "..."+a.spread.Raw())
	}
	if a.kwSpread != nil {
		parts = append(parts, "**"+a.kwSpread.Raw())
	}
	return "<args " + strings.Join(parts, ", ") + ">"
}
