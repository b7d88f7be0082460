package spreadsheet

import (
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/graph"
)

// resolveAliasCell finds the cell an alias is defined on, asking the host
// first and falling back to the alias map.
func (q *Query) resolveAliasCell(sheet graph.Object, alias string) string {
	if resolver, ok := sheet.(graph.CellFromAliasResolver); ok {
		cell, ok := graph.Try("GetCellFromAlias("+alias+")", func() (string, error) {
			return resolver.GetCellFromAlias(alias)
		})
		if !ok {
			return ""
		}
		if cell != "" {
			return cell
		}
	}
	if aliases, ok := q.aliases.Value(sheet); ok {
		return aliases[alias]
	}
	return ""
}

// clearAlias tries an empty SetAlias write, then the host's null write.
func clearAlias(sheet graph.Object, cell string) bool {
	if setter, ok := sheet.(graph.AliasSetter); ok {
		if graph.TryDo("SetAlias("+cell+", \"\")", func() error {
			return setter.SetAlias(cell, "")
		}) {
			return true
		}
	}
	if clearer, ok := sheet.(graph.AliasClearer); ok {
		return graph.TryDo("ClearAlias("+cell+")", func() error {
			return clearer.ClearAlias(cell)
		})
	}
	return false
}

// RemoveAlias clears an alias definition from its cell. The cell contents are
// kept. It reports false when the alias cannot be located or cleared.
func (q *Query) RemoveAlias(sheetName, alias string) bool {
	sheet := q.sheet(sheetName)
	if sheet == nil {
		return false
	}
	cell := q.resolveAliasCell(sheet, alias)
	if cell == "" {
		debug.LogMutation("alias %s.%s not found\n", sheetName, alias)
		return false
	}
	ok := clearAlias(sheet, cell)
	debug.LogMutation("clear alias %s.%s at %s: %v\n", sheetName, alias, cell, ok)
	return ok
}
