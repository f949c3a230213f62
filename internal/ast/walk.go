package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *Program:
		for _, s := range n.Statements {
			add(s)
		}
	case *ExpressionStatement:
		add(n.Expression)
	case *FunctionStatement:
		add(n.Name)
		for _, p := range n.Parameters {
			add(p.Name, p.Default)
		}
		add(n.Body)
	case *FunctionLiteral:
		for _, p := range n.Parameters {
			add(p.Name, p.Default)
		}
		add(n.Body)
	case *BlockStatement:
		for _, s := range n.Statements {
			add(s)
		}
	case *ReturnStatement:
		add(n.ReturnValue)
	case *ForStatement:
		add(n.Variable, n.Iterable, n.Body)
	case *ListLiteral:
		for _, e := range n.Elements {
			add(e)
		}
	case *RecordLiteral:
		for _, f := range n.Fields {
			add(f.Key, f.Value)
		}
	case *PrefixExpression:
		add(n.Right)
	case *InfixExpression:
		add(n.Left, n.Right)
	case *AssignExpression:
		add(n.Name, n.Value)
	case *CallExpression:
		add(n.Function)
		for _, a := range n.Arguments {
			add(a)
		}
	case *NamedArgument:
		add(n.Name, n.Value)
	case *SpreadExpression:
		add(n.Expression)
	case *KeywordSpreadExpression:
		add(n.Expression)
	case *DeferExpression:
		add(n.Expression)
	case *MemberExpression:
		add(n.Left, n.Member)
	case *IndexExpression:
		add(n.Left, n.Index)
	case *IfExpression:
		add(n.Condition, n.Consequence, n.Alternative)
	}
	return out
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Identifier:
		return v == nil
	case *BlockStatement:
		return v == nil
	}
	return false
}

// Inspect traverses the tree depth-first. If f returns false the children
// of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
