package tab

import (
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/types"
)

// ChildQuery selects the children shown in a tab.
type ChildQuery struct {
	Parents    []string
	Filter     string // applied to the child name only
	OnlyUnused bool   // keep children with zero references
}

// Controller implements filtering, the only-unused view and remove-unused
// orchestration on top of a DataSource. It holds no state of its own.
type Controller struct {
	source DataSource
}

// NewController creates a controller for one domain.
func NewController(source DataSource) *Controller {
	return &Controller{source: source}
}

// DataSource returns the wrapped data source.
func (c *Controller) DataSource() DataSource {
	return c.source
}

// ShouldEnableRemoveUnused is the remove-unused gate: the only-unused view
// must be active and at least one child selected.
func (c *Controller) ShouldEnableRemoveUnused(onlyUnused bool, selectedCount int) bool {
	return onlyUnused && selectedCount > 0
}

// CanRemoveUnused applies the gate to a concrete selection.
func (c *Controller) CanRemoveUnused(onlyUnused bool, selected []string) bool {
	return c.ShouldEnableRemoveUnused(onlyUnused, len(selected))
}

// GetSortedParents lists every parent, unfiltered.
func (c *Controller) GetSortedParents(excludeDerived bool) []string {
	return c.source.GetSortedParents(excludeDerived)
}

// GetFilteredParents lists the parents matching filterText.
func (c *Controller) GetFilteredParents(filterText string, excludeDerived bool) []string {
	return ParseFilter(filterText).Apply(c.source.GetSortedParents(excludeDerived))
}

// GetChildRefs lists every child of the selected parents, unfiltered.
func (c *Controller) GetChildRefs(parents []string) []types.ParentChildRef {
	return c.source.GetChildRefs(parents)
}

// GetFilteredChildItems lists the children of the selected parents whose
// name matches the filter, restricted to unreferenced children when asked.
func (c *Controller) GetFilteredChildItems(q ChildQuery) []types.ParentChildRef {
	filter := ParseFilter(q.Filter)
	refs := c.source.GetChildRefs(q.Parents)

	var counts map[string]int
	if q.OnlyUnused {
		counts = c.source.GetExpressionReferenceCounts(types.RefTexts(refs))
	}

	filtered := make([]types.ParentChildRef, 0, len(refs))
	for _, ref := range refs {
		if !filter.Match(ref.Child) {
			continue
		}
		if q.OnlyUnused && counts[ref.Text()] != 0 {
			continue
		}
		filtered = append(filtered, ref)
	}
	return filtered
}

// GetPostRemoveUnusedUpdate recomputes the child list after a removal.
func (c *Controller) GetPostRemoveUnusedUpdate(q ChildQuery) types.PostRemoveUpdate {
	return types.PostRemoveUpdate{
		ChildItems:       c.GetFilteredChildItems(q),
		ClearExpressions: true,
	}
}

// RemoveUnusedAndGetUpdate removes the unreferenced children of selected and
// returns the outcome together with the refreshed child list.
func (c *Controller) RemoveUnusedAndGetUpdate(selected []string, q ChildQuery) types.RemoveUnusedAndUpdateResult {
	result := c.source.RemoveUnusedChildren(selected)
	debug.LogMutation("remove-unused over %d selected: %d removed\n", len(selected), len(result.Removed))
	return types.RemoveUnusedAndUpdateResult{
		RemoveResult: result,
		Update:       c.GetPostRemoveUnusedUpdate(q),
	}
}

// GetExpressionItems delegates to the data source.
func (c *Controller) GetExpressionItems(selected []string) ([]types.ExpressionItem, map[string]int) {
	return c.source.GetExpressionItems(selected)
}

// GetExpressionReferenceCounts delegates to the data source.
func (c *Controller) GetExpressionReferenceCounts(selected []string) map[string]int {
	return c.source.GetExpressionReferenceCounts(selected)
}

// RemoveUnusedChildren delegates to the data source.
func (c *Controller) RemoveUnusedChildren(selected []string) types.RemoveUnusedResult {
	return c.source.RemoveUnusedChildren(selected)
}
