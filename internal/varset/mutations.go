package varset

import (
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/graph"
)

// RemoveVariable deletes a variable property from a VarSet. It reports false
// when the VarSet or property is missing, the host cannot remove properties,
// or the removal call fails.
func (q *Query) RemoveVariable(varsetName, variable string) bool {
	obj := q.varset(varsetName)
	if obj == nil {
		return false
	}
	if !graph.HasProperty(obj, variable) {
		return false
	}
	remover, ok := obj.(graph.PropertyRemover)
	if !ok {
		debug.LogMutation("%s cannot remove properties\n", varsetName)
		return false
	}
	ok = graph.TryDo("RemoveProperty("+variable+")", func() error {
		return remover.RemoveProperty(variable)
	})
	debug.LogMutation("remove %s.%s: %v\n", varsetName, variable, ok)
	return ok
}
