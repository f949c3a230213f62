package ast

import "sort"

// FreeVariables returns the sorted names an expression reads that it does not
// bind itself. Member names, named-argument labels and record keys are not reads.
func FreeVariables(nodes ...Node) []string {
	seen := map[string]bool{}
	for _, n := range nodes {
		collectFree(n, map[string]bool{}, seen)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectFree(n Node, bound map[string]bool, free map[string]bool) {
	if n == nil || isNilNode(n) {
		return
	}
	switch n := n.(type) {
	case *Identifier:
		if !bound[n.Value] {
			free[n.Value] = true
		}
	case *MemberExpression:
		collectFree(n.Left, bound, free)
	case *NamedArgument:
		collectFree(n.Value, bound, free)
	case *RecordLiteral:
		for _, f := range n.Fields {
			collectFree(f.Value, bound, free)
		}
	case *AssignExpression:
		collectFree(n.Value, bound, free)
	case *FunctionLiteral:
		collectFunctionFree(n.Parameters, n.Body, bound, free)
	case *FunctionStatement:
		bound[n.Name.Value] = true
		collectFunctionFree(n.Parameters, n.Body, bound, free)
	case *ForStatement:
		collectFree(n.Iterable, bound, free)
		inner := copyBound(bound)
		inner[n.Variable.Value] = true
		collectFree(n.Body, inner, free)
	default:
		for _, c := range Children(n) {
			collectFree(c, bound, free)
		}
	}
}

func collectFunctionFree(params []*Parameter, body *BlockStatement, bound, free map[string]bool) {
	inner := copyBound(bound)
	for _, p := range params {
		if p.Default != nil {
			collectFree(p.Default, bound, free)
		}
		inner[p.Name.Value] = true
	}
	for name := range LocalNames(body) {
		inner[name] = true
	}
	collectFree(body, inner, free)
}

func copyBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound))
	for k, v := range bound {
		out[k] = v
	}
	return out
}

// LocalNames returns the names a body binds: assignment targets, loop
// variables and nested function names. Bodies of nested functions are not
// entered.
func LocalNames(body Node) map[string]bool {
	names := map[string]bool{}
	Inspect(body, func(n Node) bool {
		switch n := n.(type) {
		case *AssignExpression:
			names[n.Name.Value] = true
		case *ForStatement:
			names[n.Variable.Value] = true
		case *FunctionStatement:
			names[n.Name.Value] = true
			return false
		case *FunctionLiteral:
			return false
		}
		return true
	})
	return names
}
