package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/types"
)

func TestNormalizeRHS(t *testing.T) {
	assert.Equal(t, "Width * 2", normalizeRHS("  =  Width * 2 "))
	assert.Equal(t, "'Width", normalizeRHS("'Width"))
	assert.Equal(t, "=x", normalizeRHS("==x"), "only one '=' is stripped")
	assert.Equal(t, "", normalizeRHS("="))
}

func TestIsAliasDefinition(t *testing.T) {
	assert.True(t, isAliasDefinition("Sheet", "Sheet", "Width", "'Width"))
	assert.True(t, isAliasDefinition("Sheet", "Sheet", "Width", "''Width"))
	assert.False(t, isAliasDefinition("Other", "Sheet", "Width", "'Width"))
	assert.False(t, isAliasDefinition("Sheet", "Sheet", "Width", "Width"))
	assert.False(t, isAliasDefinition("Sheet", "Sheet", "Width", "'Widths"))
}

func TestDataSourceParentsAndChildren(t *testing.T) {
	ds := NewDataSource(newQuery(memdoc.NewApp(buildDocument(t))))

	assert.Equal(t, []string{"Spreadsheet", "Spreadsheet001"}, ds.GetSortedParents(false))
	assert.Equal(t, []string{"Spreadsheet"}, ds.GetSortedParents(true))

	refs := ds.GetChildRefs([]string{"Spreadsheet", "Spreadsheet"})
	assert.Equal(t, []string{"Spreadsheet.Height", "Spreadsheet.Unused", "Spreadsheet.Width"}, types.RefTexts(refs))
}

func TestDataSourceExpressionItems(t *testing.T) {
	ds := NewDataSource(newQuery(memdoc.NewApp(buildDocument(t))))

	items, counts := ds.GetExpressionItems([]string{"Spreadsheet.Width", "Spreadsheet.Unused"})

	assert.Equal(t, map[string]int{"Spreadsheet.Width": 2, "Spreadsheet.Unused": 0}, counts)
	assert.Equal(t, []types.ExpressionItem{
		{ObjectName: "Spreadsheet", LHS: "Spreadsheet.A1", RHS: "'Width", Operator: types.OperatorAliasDefinition},
		{ObjectName: "Spreadsheet", LHS: "Spreadsheet.B2", RHS: "Width * 2", Operator: types.OperatorDependency},
	}, items)
	assert.Equal(t, "Spreadsheet.A1 := 'Width", items[0].DisplayText())
}

func TestDataSourceRemoveUnused(t *testing.T) {
	ds := NewDataSource(newQuery(memdoc.NewApp(buildDocument(t))))

	result := ds.RemoveUnusedChildren([]string{"Spreadsheet.Unused", "Spreadsheet.Height", "garbage", "Spreadsheet.Ghost"})

	assert.Equal(t, []string{"Spreadsheet.Unused"}, result.Removed)
	assert.Equal(t, []string{"Spreadsheet.Height"}, result.StillUsed)
	assert.Equal(t, []string{"garbage", "Spreadsheet.Ghost"}, result.Failed)

	assert.Equal(t, map[string]int{"Spreadsheet.Height": 2}, ds.GetExpressionReferenceCounts(result.StillUsed))
	assert.NotContains(t, types.RefTexts(ds.GetChildRefs([]string{"Spreadsheet"})), "Spreadsheet.Unused")
}
