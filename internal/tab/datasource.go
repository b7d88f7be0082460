// Package tab holds the domain-agnostic controller shared by the VarSet and
// spreadsheet alias views.
package tab

import "github.com/standardbeagle/datamanager/internal/types"

// DataSource is everything a tab needs from one domain. Selections are
// canonical "parent.child" texts; entries that do not parse are skipped by
// read paths and reported as failed by RemoveUnusedChildren.
type DataSource interface {
	GetSortedParents(excludeDerived bool) []string
	GetChildRefs(selectedParents []string) []types.ParentChildRef
	GetExpressionItems(selected []string) ([]types.ExpressionItem, map[string]int)
	GetExpressionReferenceCounts(selected []string) map[string]int
	RemoveUnusedChildren(selected []string) types.RemoveUnusedResult
}
