package spreadsheet

import (
	"sort"
	"strings"

	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/refindex"
	"github.com/standardbeagle/datamanager/internal/types"
)

// DataSource exposes spreadsheet aliases to the generic tab controller.
type DataSource struct {
	query *Query
}

// NewDataSource wraps a spreadsheet query.
func NewDataSource(query *Query) *DataSource {
	return &DataSource{query: query}
}

// Query returns the underlying query.
func (ds *DataSource) Query() *Query {
	return ds.query
}

// GetSortedParents returns sorted spreadsheet names.
func (ds *DataSource) GetSortedParents(excludeDerived bool) []string {
	names := ds.query.Spreadsheets(excludeDerived)
	sort.Strings(names)
	return names
}

// GetChildRefs returns the aliases of the selected spreadsheets sorted by text.
func (ds *DataSource) GetChildRefs(selectedParents []string) []types.ParentChildRef {
	var refs []types.ParentChildRef
	for _, sheetName := range types.NormalizeSelection(selectedParents) {
		for _, alias := range ds.query.AliasNames(sheetName) {
			refs = append(refs, types.ParentChildRef{Parent: sheetName, Child: alias})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Text() < refs[j].Text()
	})
	return refs
}

// normalizeRHS trims an expression and drops one leading '='.
func normalizeRHS(rhs string) string {
	rhs = strings.TrimSpace(rhs)
	if strings.HasPrefix(rhs, "=") {
		rhs = strings.TrimSpace(rhs[1:])
	}
	return rhs
}

// isAliasDefinition reports whether a cell of the spreadsheet itself holds the
// alias name as text, the usual label next to an aliased value cell.
func isAliasDefinition(objectName, sheetName, alias, rhs string) bool {
	if objectName != sheetName || !strings.HasPrefix(rhs, "'") {
		return false
	}
	return strings.TrimLeft(rhs, "'") == alias
}

func toExpressionItem(ref types.ParentChildRef, key, rhs string) types.ExpressionItem {
	objectName := refindex.KeyObjectName(key)
	rhs = normalizeRHS(rhs)
	item := types.NewExpressionItem(objectName, key, rhs)
	if isAliasDefinition(objectName, ref.Parent, ref.Child, rhs) {
		item.Operator = types.OperatorAliasDefinition
	}
	return item
}

// GetExpressionItems returns every expression or cell referencing the
// selected aliases, sorted by display text, and per-alias reference counts.
func (ds *DataSource) GetExpressionItems(selected []string) ([]types.ExpressionItem, map[string]int) {
	var items []types.ExpressionItem
	counts := make(map[string]int)

	for _, text := range types.NormalizeSelection(selected) {
		ref, ok := types.ParseParentChildRef(text)
		if !ok {
			continue
		}
		refs := ds.query.References(ref.Parent, ref.Child)
		counts[text] = len(refs)
		for _, key := range refindex.SortedKeys(refs) {
			items = append(items, toExpressionItem(ref, key, refs[key]))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayText() < items[j].DisplayText()
	})
	return items, counts
}

// GetExpressionReferenceCounts returns the reference count of each selected alias.
func (ds *DataSource) GetExpressionReferenceCounts(selected []string) map[string]int {
	counts := make(map[string]int)
	for _, text := range types.NormalizeSelection(selected) {
		ref, ok := types.ParseParentChildRef(text)
		if !ok {
			continue
		}
		counts[text] = len(ds.query.References(ref.Parent, ref.Child))
	}
	return counts
}

// RemoveUnusedChildren clears the selected aliases that have no references,
// re-checking each one immediately before clearing it.
func (ds *DataSource) RemoveUnusedChildren(selected []string) types.RemoveUnusedResult {
	result := types.NewRemoveUnusedResult()

	for _, text := range types.NormalizeSelection(selected) {
		ref, ok := types.ParseParentChildRef(text)
		if !ok {
			result.Failed = append(result.Failed, text)
			continue
		}
		if len(ds.query.References(ref.Parent, ref.Child)) > 0 {
			result.StillUsed = append(result.StillUsed, text)
			continue
		}
		if ds.query.RemoveAlias(ref.Parent, ref.Child) {
			result.Removed = append(result.Removed, text)
		} else {
			result.Failed = append(result.Failed, text)
		}
	}

	debug.LogMutation("alias remove-unused: removed=%d still_used=%d failed=%d\n",
		len(result.Removed), len(result.StillUsed), len(result.Failed))
	return result
}
