package spreadsheet

import (
	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/probe"
)

// aliasProperties are attribute names some host versions expose the alias map under.
var aliasProperties = []string{"Alias", "Aliases"}

func countCellLike(values []string) int {
	n := 0
	for _, v := range values {
		if IsCellAddress(v) {
			n++
		}
	}
	return n
}

// NormalizeAliasMap returns an alias -> cell map. Hosts disagree on the
// orientation of their alias maps; when more keys than values look like cell
// addresses the map is inverted. Normalizing an already normalized map is a
// no-op.
func NormalizeAliasMap(raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	keys := make([]string, 0, len(raw))
	values := make([]string, 0, len(raw))
	for k, v := range raw {
		keys = append(keys, k)
		values = append(values, v)
	}

	out := make(map[string]string, len(raw))
	if countCellLike(keys) > countCellLike(values) {
		for cell, alias := range raw {
			out[alias] = cell
		}
		return out
	}
	for alias, cell := range raw {
		out[alias] = cell
	}
	return out
}

func nonEmptyAliasMap(m map[string]string) (map[string]string, bool) {
	delete(m, "")
	return m, len(m) > 0
}

func (q *Query) newAliasChain() probe.Chain[graph.Object, map[string]string] {
	return probe.New("spreadsheet aliases",
		probe.Strategy[graph.Object, map[string]string]{Name: "GetAliases", Try: q.aliasesFromMapper},
		probe.Strategy[graph.Object, map[string]string]{Name: "alias property", Try: q.aliasesFromProperties},
		probe.Strategy[graph.Object, map[string]string]{Name: "GetAlias+GetCellFromAlias", Try: q.aliasesResolved},
		probe.Strategy[graph.Object, map[string]string]{Name: "GetAlias", Try: q.aliasesScanned},
	)
}

func (q *Query) aliasesFromMapper(sheet graph.Object) (map[string]string, bool) {
	mapper, ok := sheet.(graph.AliasMapper)
	if !ok {
		return nil, false
	}
	raw, ok := graph.Try("GetAliases", mapper.GetAliases)
	if !ok {
		return nil, false
	}
	return nonEmptyAliasMap(NormalizeAliasMap(raw))
}

func (q *Query) aliasesFromProperties(sheet graph.Object) (map[string]string, bool) {
	for _, prop := range aliasProperties {
		v, ok := graph.ReadProperty(sheet, prop)
		if !ok {
			continue
		}
		if m, ok := nonEmptyAliasMap(NormalizeAliasMap(graph.StringMap(v))); ok {
			return m, true
		}
	}
	return nil, false
}

// cellAliases probes GetAlias on every candidate cell and returns cell -> alias.
func (q *Query) cellAliases(sheet graph.Object) map[string]string {
	getter, ok := sheet.(graph.AliasGetter)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for _, cell := range q.candidateCells(sheet) {
		alias, ok := graph.Try("GetAlias("+cell+")", func() (string, error) {
			return getter.GetAlias(cell)
		})
		if ok && alias != "" {
			out[cell] = alias
		}
	}
	return out
}

func (q *Query) aliasesResolved(sheet graph.Object) (map[string]string, bool) {
	resolver, ok := sheet.(graph.CellFromAliasResolver)
	if !ok {
		return nil, false
	}
	out := make(map[string]string)
	for cell, alias := range q.cellAliases(sheet) {
		resolved, ok := graph.Try("GetCellFromAlias("+alias+")", func() (string, error) {
			return resolver.GetCellFromAlias(alias)
		})
		if ok && resolved != "" {
			out[alias] = resolved
		} else {
			out[alias] = cell
		}
	}
	return nonEmptyAliasMap(out)
}

func (q *Query) aliasesScanned(sheet graph.Object) (map[string]string, bool) {
	out := make(map[string]string)
	for cell, alias := range q.cellAliases(sheet) {
		out[alias] = cell
	}
	return nonEmptyAliasMap(out)
}

// AliasMap returns alias -> cell for a spreadsheet, using the first host API
// that yields a non-empty answer.
func (q *Query) AliasMap(sheetName string) map[string]string {
	sheet := q.sheet(sheetName)
	if sheet == nil {
		return map[string]string{}
	}
	m, ok := q.aliases.Value(sheet)
	if !ok {
		return map[string]string{}
	}
	return m
}
