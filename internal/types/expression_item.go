package types

import "strings"

// Expression operators shown between lhs and rhs.
const (
	OperatorDependency      = "="
	OperatorAliasDefinition = ":="
)

// ExpressionItem is one discovered cross-reference: an expression owned by
// ObjectName, assigning RHS to LHS.
type ExpressionItem struct {
	ObjectName string `json:"object"`
	LHS        string `json:"lhs"`
	RHS        string `json:"rhs"`
	Operator   string `json:"operator"`
}

// NewExpressionItem creates a plain dependency item.
func NewExpressionItem(objectName, lhs, rhs string) ExpressionItem {
	return ExpressionItem{ObjectName: objectName, LHS: lhs, RHS: rhs, Operator: OperatorDependency}
}

// DisplayText returns "lhs op rhs".
func (e ExpressionItem) DisplayText() string {
	op := e.Operator
	if op == "" {
		op = OperatorDependency
	}
	return e.LHS + " " + op + " " + e.RHS
}

// ParseExpressionItemObjectName extracts "Object" from display text such as
// "Object.Property = expr".
func ParseExpressionItemObjectName(text string) (string, bool) {
	left, _, _ := strings.Cut(text, "=")
	ref, ok := ParseParentChildRef(strings.TrimSpace(left))
	if !ok {
		return "", false
	}
	return ref.Parent, true
}
