package graph

// NamedExpression is an expression-engine entry together with its owning object.
type NamedExpression struct {
	Owner     Object
	OwnerName string
	LHS       string
	Expr      string
}

// ExpressionEntries returns an object's expression engine, or nil when unsupported.
func ExpressionEntries(obj Object) []ExpressionEntry {
	holder, ok := obj.(ExpressionHolder)
	if !ok {
		return nil
	}
	entries, _ := Try("ExpressionEngine", func() ([]ExpressionEntry, error) {
		return holder.ExpressionEngine(), nil
	})
	return entries
}

// Expressions walks every object of doc and returns each expression-engine entry.
// Objects without a name and entries without an lhs are skipped.
func (a *Access) Expressions(doc Document) []NamedExpression {
	var out []NamedExpression
	for _, obj := range a.Objects(doc) {
		name := Name(obj)
		if name == "" {
			continue
		}
		for _, entry := range ExpressionEntries(obj) {
			if entry.LHS == "" {
				continue
			}
			out = append(out, NamedExpression{
				Owner:     obj,
				OwnerName: name,
				LHS:       entry.LHS,
				Expr:      entry.Expr,
			})
		}
	}
	return out
}
