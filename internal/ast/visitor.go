package ast

type Visitor interface {
	VisitProgram(n *Program)
	VisitExpressionStatement(n *ExpressionStatement)
	VisitFunctionStatement(n *FunctionStatement)
	VisitBlockStatement(n *BlockStatement)
	VisitReturnStatement(n *ReturnStatement)
	VisitForStatement(n *ForStatement)
	VisitBreakStatement(n *BreakStatement)
	VisitContinueStatement(n *ContinueStatement)

	VisitIdentifier(n *Identifier)
	VisitIntegerLiteral(n *IntegerLiteral)
	VisitFloatLiteral(n *FloatLiteral)
	VisitStringLiteral(n *StringLiteral)
	VisitBooleanLiteral(n *BooleanLiteral)
	VisitNilLiteral(n *NilLiteral)
	VisitListLiteral(n *ListLiteral)
	VisitRecordLiteral(n *RecordLiteral)
	VisitPrefixExpression(n *PrefixExpression)
	VisitInfixExpression(n *InfixExpression)
	VisitAssignExpression(n *AssignExpression)
	VisitCallExpression(n *CallExpression)
	VisitNamedArgument(n *NamedArgument)
	VisitSpreadExpression(n *SpreadExpression)
	VisitKeywordSpreadExpression(n *KeywordSpreadExpression)
	VisitDeferExpression(n *DeferExpression)
	VisitMemberExpression(n *MemberExpression)
	VisitIndexExpression(n *IndexExpression)
	VisitIfExpression(n *IfExpression)
	VisitFunctionLiteral(n *FunctionLiteral)
}
