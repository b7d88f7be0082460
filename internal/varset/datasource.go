package varset

import (
	"sort"
	"strings"

	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/refindex"
	"github.com/standardbeagle/datamanager/internal/types"
)

// DataSource exposes VarSets to the generic tab controller.
//
// A VarSet whose variables span more than one property group is listed once
// under its own name (all variables) and once per group as "{varset}.{group}"
// (only that group's variables).
type DataSource struct {
	query *Query
}

// NewDataSource wraps a VarSet query.
func NewDataSource(query *Query) *DataSource {
	return &DataSource{query: query}
}

// Query returns the underlying query.
func (ds *DataSource) Query() *Query {
	return ds.query
}

// GetSortedParents returns VarSet names, each followed by its virtual group
// parents when it has more than one group.
func (ds *DataSource) GetSortedParents(excludeDerived bool) []string {
	names := ds.query.VarSets(excludeDerived)
	sort.Strings(names)

	parents := make([]string, 0, len(names))
	for _, name := range names {
		parents = append(parents, name)
		groups := ds.query.GroupNames(name)
		if len(groups) <= 1 {
			continue
		}
		for _, group := range groups {
			parents = append(parents, name+"."+group)
		}
	}
	return parents
}

// splitVirtualParent resolves "{varset}.{group}" when the VarSet really has
// that group among several.
func (ds *DataSource) splitVirtualParent(parent string) (string, string, bool) {
	varsetName, group, found := strings.Cut(parent, ".")
	if !found || varsetName == "" || group == "" {
		return "", "", false
	}
	groups := ds.query.GroupNames(varsetName)
	if len(groups) <= 1 {
		return "", "", false
	}
	for _, g := range groups {
		if g == group {
			return varsetName, group, true
		}
	}
	return "", "", false
}

func (ds *DataSource) variablesForParent(parent string) (string, []string) {
	if varsetName, group, ok := ds.splitVirtualParent(parent); ok {
		return varsetName, ds.query.VariableNamesForGroup(varsetName, group)
	}
	return parent, ds.query.VariableNames(parent)
}

// GetChildRefs returns the variables of the selected parents sorted by text.
// A variable reachable through several selected parents is listed once.
func (ds *DataSource) GetChildRefs(selectedParents []string) []types.ParentChildRef {
	seen := make(map[string]struct{})
	var texts []string
	for _, parent := range selectedParents {
		varsetName, names := ds.variablesForParent(parent)
		for _, name := range names {
			text := varsetName + "." + name
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			texts = append(texts, text)
		}
	}
	sort.Strings(texts)

	refs := make([]types.ParentChildRef, 0, len(texts))
	for _, text := range texts {
		if ref, ok := types.ParseParentChildRef(text); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// GetExpressionItems returns every expression referencing the selected
// variables, sorted by display text, and the per-variable reference counts.
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
			items = append(items, types.NewExpressionItem(refindex.KeyObjectName(key), key, refs[key]))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DisplayText() < items[j].DisplayText()
	})
	return items, counts
}

// GetExpressionReferenceCounts returns the reference count of each selected variable.
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

// RemoveUnusedChildren removes the selected variables that have no
// references. References are re-checked immediately before each removal.
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
		if ds.query.RemoveVariable(ref.Parent, ref.Child) {
			result.Removed = append(result.Removed, text)
		} else {
			result.Failed = append(result.Failed, text)
		}
	}

	debug.LogMutation("varset remove-unused: removed=%d still_used=%d failed=%d\n",
		len(result.Removed), len(result.StillUsed), len(result.Failed))
	return result
}
