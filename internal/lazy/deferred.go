package lazy

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/funvibe/lazex/internal/ast"
)

var errNoScope = errors.New("handle has no captured scope")

// Deferred stands in for one argument. Evaluation is memoized per text.
type Deferred struct {
	capture   *Capture
	snapshot  *Snapshot
	evaluator Evaluator
	memo      memo
}

func NewDeferred(c *Capture, s *Snapshot, ev Evaluator) *Deferred {
	return &Deferred{capture: c, snapshot: s, evaluator: ev}
}

// NewResolved builds a handle whose own text already has a value. Eager
// callers use it so lazy functions see the same API either way. Ad hoc text
// still evaluates under s when s is not nil.
func NewResolved(c *Capture, v Value, s *Snapshot, ev Evaluator) *Deferred {
	d := NewDeferred(c, s, ev)
	d.memo.put(resultValue, c.Text, v)
	return d
}

// As returns a handle over the same text and scope that sits in another
// slot of a call. Results already memoized are shared.
func (d *Deferred) As(kind Kind, name string) *Deferred {
	if d.capture.Kind == kind && d.capture.Name == name {
		return d
	}
	if d.memo.cells == nil {
		d.memo.cells = make(map[memoKey]any)
	}
	return &Deferred{
		capture:   NewCapture(d.capture.Text, kind, name),
		snapshot:  d.snapshot,
		evaluator: d.evaluator,
		memo:      d.memo,
	}
}

// Raw returns the argument text. It never evaluates.
func (d *Deferred) Raw() string { return d.capture.Text }

func (d *Deferred) Kind() Kind { return d.capture.Kind }

// Name is the keyword for named captures and "" otherwise.
func (d *Deferred) Name() string { return d.capture.Name }

func (d *Deferred) Snapshot() *Snapshot { return d.snapshot }

// Evaluate returns the argument's value, running it at most once.
func (d *Deferred) Evaluate() (Value, error) {
	return d.EvaluateText(d.capture.Text)
}

// EvaluateText evaluates any text under the captured scope.
func (d *Deferred) EvaluateText(text string) (Value, error) {
	return evaluateMemo(&d.memo, d.snapshot, d.evaluator, text)
}

// Parse returns the argument's structure without evaluating it.
func (d *Deferred) Parse() (ast.Expression, error) {
	return d.ParseText(d.capture.Text)
}

func (d *Deferred) ParseText(text string) (ast.Expression, error) {
	return parseMemo(&d.memo, d.evaluator, text)
}

func (d *Deferred) String() string {
	return fmt.Sprintf("<deferred %s>", d.capture.Text)
}

func evaluateMemo(m *memo, s *Snapshot, ev Evaluator, text string) (Value, error) {
	if v, ok := m.get(resultValue, text); ok {
		return v, nil
	}
	if s == nil || ev == nil {
		return nil, &EvaluationError{Text: text, Err: errNoScope}
	}
	s.topUp()
	v, err := ev.Evaluate(text, s)
	if err != nil {
		slog.Debug("deferred evaluation failed", "text", text, "site", s.Token(), "err", err)
		return nil, &EvaluationError{Text: text, Err: err}
	}
	slog.Debug("deferred evaluated", "text", text, "site", s.Token())
	m.put(resultValue, text, v)
	return v, nil
}

func parseMemo(m *memo, ev Evaluator, text string) (ast.Expression, error) {
	if v, ok := m.get(resultAST, text); ok {
		return v.(ast.Expression), nil
	}
	if ev == nil {
		return nil, &EvaluationError{Text: text, Err: errNoScope}
	}
	node, err := ev.Parse(text)
	if err != nil {
		return nil, &EvaluationError{Text: text, Err: err}
	}
	m.put(resultAST, text, node)
	return node, nil
}
