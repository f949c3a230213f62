package lazy

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/parser"
)

// fakeEvaluator resolves texts that are plain names against the scope and
// counts how often each text was evaluated.
type fakeEvaluator struct {
	calls map[string]int
}

func newFakeEvaluator() *fakeEvaluator {
	return &fakeEvaluator{calls: map[string]int{}}
}

func (f *fakeEvaluator) Evaluate(text string, scope *Snapshot) (Value, error) {
	f.calls[text]++
	if v, ok := scope.Get(text); ok {
		return v, nil
	}
	return nil, fmt.Errorf("undefined: %s", text)
}

func (f *fakeEvaluator) Parse(text string) (ast.Expression, error) {
	return parser.ParseExpression(text)
}

type mapScope map[string]Value

func (m mapScope) Get(name string) (Value, bool) {
	v, ok := m[name]
	return v, ok
}

type mapFrame map[string]Value

func (m mapFrame) Locals() map[string]Value { return m }

type testFunction struct {
	name   string
	source string
}

func (f *testFunction) LazyName() string   { return f.name }
func (f *testFunction) LazySource() string { return f.source }

func TestDeferredMemoization(t *testing.T) {
	ev := newFakeEvaluator()
	s := NewSnapshot(map[string]Value{"x": 7}, nil)
	d := NewDeferred(NewCapture("x", Positional, ""), s, ev)

	for i := 0; i < 3; i++ {
		v, err := d.Evaluate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 7 {
			t.Fatalf("expected 7, got %v", v)
		}
	}
	if ev.calls["x"] != 1 {
		t.Errorf("expected exactly one evaluation, got %d", ev.calls["x"])
	}

	// value and structure are cached separately
	if _, err := d.Parse(); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := d.Parse(); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.calls["x"] != 1 {
		t.Errorf("parse must not evaluate, got %d evaluations", ev.calls["x"])
	}
}

func TestRawNeverEvaluates(t *testing.T) {
	ev := newFakeEvaluator()
	d := NewDeferred(NewCapture("(x / 0)", Positional, ""), NewSnapshot(nil, nil), ev)
	if d.Raw() != "(x / 0)" {
		t.Errorf("unexpected raw %q", d.Raw())
	}
	if len(ev.calls) != 0 {
		t.Errorf("raw triggered evaluation: %v", ev.calls)
	}
}

func TestEvaluationFailureIsNotCached(t *testing.T) {
	ev := newFakeEvaluator()
	d := NewDeferred(NewCapture("missing", Positional, ""), NewSnapshot(nil, nil), ev)

	_, err := d.Evaluate()
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Text != "missing" {
		t.Errorf("unexpected text %q", evalErr.Text)
	}
	if _, err := d.Evaluate(); err == nil {
		t.Fatal("expected the second evaluation to fail too")
	}
	if ev.calls["missing"] != 2 {
		t.Errorf("expected failures to re-run, got %d evaluations", ev.calls["missing"])
	}
}

func TestAdHocTextUsesCapturedScope(t *testing.T) {
	ev := newFakeEvaluator()
	d := NewDeferred(NewCapture("y", Positional, ""), NewSnapshot(map[string]Value{"x": 8}, mapScope{"y": 1}), ev)

	v, err := d.EvaluateText("x")
	if err != nil || v != 8 {
		t.Fatalf("expected 8, got %v (%v)", v, err)
	}
	v, err = d.Evaluate()
	if err != nil || v != 1 {
		t.Fatalf("expected outer binding 1, got %v (%v)", v, err)
	}
}

func TestResolvedHandle(t *testing.T) {
	ev := newFakeEvaluator()
	d := NewResolved(NewCapture("(1 + 2)", Positional, ""), 3, nil, ev)
	v, err := d.Evaluate()
	if err != nil || v != 3 {
		t.Fatalf("expected 3, got %v (%v)", v, err)
	}
	if len(ev.calls) != 0 {
		t.Error("resolved handle must not call the evaluator")
	}
	if _, err := d.EvaluateText("z"); err == nil {
		t.Error("expected an error evaluating ad hoc text without a scope")
	}
}

func TestSnapshotTopUp(t *testing.T) {
	frame := mapFrame{"x": "callee", "loop": 3}
	s := NewSnapshot(map[string]Value{"x": "caller", "y": 1}, nil)
	s.Attach(frame)
	s.Attach(mapFrame{"other": true})

	first := NewSnapshot(nil, nil)
	if s.Token() == first.Token() {
		t.Fatal("tokens must be unique per snapshot")
	}

	ev := newFakeEvaluator()
	d := NewDeferred(NewCapture("x", Positional, ""), s, ev)
	v, err := d.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "callee" {
		t.Errorf("callee-local binding should win, got %v", v)
	}
	if got, _ := s.Get("y"); got != 1 {
		t.Errorf("top-up must not remove call-site bindings, got %v", got)
	}
	if got, _ := s.Get("loop"); got != 3 {
		t.Errorf("expected loop from callee frame, got %v", got)
	}
	if _, ok := s.Get("other"); ok {
		t.Error("only the first attached frame is used")
	}

	// the merge happens once
	frame["late"] = true
	if _, err := d.EvaluateText("late"); err == nil {
		t.Error("expected names added after the first evaluation to stay invisible")
	}
}

func TestArgsBundle(t *testing.T) {
	ev := newFakeEvaluator()
	s := NewSnapshot(map[string]Value{"a": 1, "b": 2, "rest": []int{3, 4}, "opts": "kw", "k": 5}, nil)
	mk := func(text string, kind Kind, name string) *Deferred {
		return NewDeferred(NewCapture(text, kind, name), s, ev)
	}
	args, err := NewArgs(s, ev,
		mk("a", Positional, ""),
		mk("b", Positional, ""),
		mk("rest", Spread, ""),
		mk("k", Named, "key"),
		mk("opts", KeywordSpread, ""),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if args.Len() != 2 {
		t.Errorf("expected 2 positional captures, got %d", args.Len())
	}
	if names := args.Names(); len(names) != 1 || names[0] != "key" {
		t.Errorf("unexpected names %v", names)
	}

	out, err := args.Evaluate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Positional) != 2 || out.Positional[0] != 1 || out.Positional[1] != 2 {
		t.Errorf("spread must not be flattened into positionals: %v", out.Positional)
	}
	if rest, ok := out.Spread.([]int); !ok || len(rest) != 2 {
		t.Errorf("expected spread as its own component, got %v", out.Spread)
	}
	if out.Keywords["key"] != 5 || out.KeywordSpread != "kw" {
		t.Errorf("unexpected keywords %v / %v", out.Keywords, out.KeywordSpread)
	}

	if v, err := args.EvaluateIndex(1); err != nil || v != 2 {
		t.Errorf("expected 2, got %v (%v)", v, err)
	}
	if _, err := args.EvaluateIndex(5); err == nil {
		t.Error("expected out of range error")
	}
	if v, err := args.EvaluateName("key"); err != nil || v != 5 {
		t.Errorf("expected keyword value 5, got %v (%v)", v, err)
	}
	// no keyword named b: falls back to ad hoc text
	if v, err := args.EvaluateName("b"); err != nil || v != 2 {
		t.Errorf("expected ad hoc value 2, got %v (%v)", v, err)
	}
	if raw, err := args.RawIndex(0); err != nil || raw != "a" {
		t.Errorf("unexpected raw %q (%v)", raw, err)
	}
	if _, err := NewArgs(s, ev, mk("x", Spread, ""), mk("y", Spread, "")); err == nil {
		t.Error("expected an error for two spreads")
	}
}

func TestRegistryStates(t *testing.T) {
	r := NewRegistry()
	fn := &testFunction{name: "foo", source: "lazy fun foo(something) { return something }"}

	if r.State(fn) != Unregistered || r.IsRegistered(fn) {
		t.Fatal("expected a fresh function to be unregistered")
	}
	r.Register(fn)
	r.Register(fn)
	if r.State(fn) != Registered {
		t.Fatalf("expected registered, got %s", r.State(fn))
	}

	installed, err := r.Activate(fn, DeclResolver{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State(fn) != Rewritten {
		t.Fatalf("expected rewritten, got %s", r.State(fn))
	}
	again, err := r.Activate(fn, DeclResolver{})
	if err != nil || again != installed {
		t.Error("a second activation must return the installed body")
	}
	if got, ok := r.Installed(fn); !ok || got != installed {
		t.Error("expected installed body to be retrievable")
	}
}

func TestActivateSyntaxErrorRetries(t *testing.T) {
	r := NewRegistry()
	fn := &testFunction{name: "broken", source: "lazy fun broken( {"}
	r.Register(fn)

	for i := 0; i < 2; i++ {
		_, err := r.Activate(fn, DeclResolver{})
		var rerr *RewriteError
		if !errors.As(err, &rerr) {
			t.Fatalf("attempt %d: expected RewriteError, got %v", i, err)
		}
		if rerr.Kind != SyntaxError || rerr.Function != "broken" {
			t.Errorf("unexpected error %+v", rerr)
		}
		if r.State(fn) != Registered {
			t.Errorf("failed activation must leave the function registered, got %s", r.State(fn))
		}
	}
}

func TestActivateUnregistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.Activate(&testFunction{name: "nope"}, DeclResolver{})
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
}

func TestActivateConcurrent(t *testing.T) {
	r := NewRegistry()
	fn := &testFunction{name: "bar", source: "lazy fun bar() { return foo(x / 0) }"}
	r.Register(fn)

	const n = 8
	results := make([]*ast.FunctionStatement, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := r.Activate(fn, DeclResolver{"foo": true})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent activations installed different bodies")
		}
	}
}
