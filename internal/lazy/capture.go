package lazy

// Kind says which slot of the call an argument came from.
type Kind int

const (
	Positional Kind = iota
	Named
	Spread
	KeywordSpread
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case Named:
		return "named"
	case Spread:
		return "spread"
	case KeywordSpread:
		return "keyword spread"
	}
	return "unknown"
}

// Capture is one argument's unevaluated form.
type Capture struct {
	Text string
	Kind Kind
	Name string // set for Named
}

func NewCapture(text string, kind Kind, name string) *Capture {
	return &Capture{Text: text, Kind: kind, Name: name}
}

type resultKind int

const (
	resultValue resultKind = iota
	resultAST
)

type memoKey struct {
	kind resultKind
	text string
}

// memo caches successful outcomes per (result kind, text).
type memo struct {
	cells map[memoKey]any
}

func (m *memo) get(kind resultKind, text string) (any, bool) {
	if m.cells == nil {
		return nil, false
	}
	v, ok := m.cells[memoKey{kind, text}]
	return v, ok
}

func (m *memo) put(kind resultKind, text string, v any) {
	if m.cells == nil {
		m.cells = make(map[memoKey]any)
	}
	m.cells[memoKey{kind, text}] = v
}
