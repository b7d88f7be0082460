// Package spreadsheet discovers spreadsheets and their cell aliases, finds
// expression references to aliases, and clears unused aliases.
//
// Host versions expose aliases through several incompatible APIs. Alias maps,
// cell listings and cell text are each obtained through an ordered chain of
// probes; the first one that answers wins.
package spreadsheet

import (
	"sort"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/probe"
	"github.com/standardbeagle/datamanager/internal/refindex"
)

// Query reads spreadsheets from the active document.
type Query struct {
	access  *graph.Access
	indexer *refindex.Indexer
	cfg     config.Spreadsheet
	clones  graph.CloneGroups
	cells   probe.Chain[graph.Object, []string]
	aliases probe.Chain[graph.Object, map[string]string]
}

// NewQuery creates a spreadsheet query over access.
func NewQuery(access *graph.Access, cfg config.Spreadsheet, clones config.CopyOnChange) *Query {
	if cfg.MaxColumns <= 0 {
		cfg.MaxColumns = config.DefaultMaxColumns
	}
	if cfg.MaxColumns > config.MaxColumnsLimit {
		cfg.MaxColumns = config.MaxColumnsLimit
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = config.DefaultMaxRows
	}
	q := &Query{
		access:  access,
		indexer: refindex.NewIndexer(access),
		cfg:     cfg,
		clones:  graph.CloneGroups{GroupName: clones.GroupName, LabelPrefix: clones.LabelPrefix},
		cells:   newCellChain(cfg.MaxColumns, cfg.MaxRows),
	}
	q.aliases = q.newAliasChain()
	return q
}

// TypeID returns the spreadsheet type tag this query matches.
func (q *Query) TypeID() string {
	return q.cfg.TypeID
}

// Spreadsheets returns spreadsheet names in document order, optionally
// leaving out copy-on-change clones.
func (q *Query) Spreadsheets(excludeDerived bool) []string {
	doc := q.access.ActiveDocument()
	if doc == nil {
		return nil
	}

	var excluded map[string]struct{}
	if excludeDerived {
		excluded = q.access.DerivedCloneNames(doc, q.cfg.TypeID, q.clones)
	}

	var names []string
	for _, obj := range q.access.ObjectsOfType(doc, q.cfg.TypeID) {
		name := graph.Name(obj)
		if name == "" {
			continue
		}
		if _, skip := excluded[name]; skip {
			continue
		}
		names = append(names, name)
	}
	return names
}

func (q *Query) sheet(name string) graph.Object {
	doc := q.access.ActiveDocument()
	if doc == nil {
		return nil
	}
	return q.access.TypedObject(doc, name, q.cfg.TypeID)
}

func (q *Query) candidateCells(sheet graph.Object) []string {
	cells, _ := q.cells.Value(sheet)
	return cells
}

// CandidateCells returns the cells worth probing on a spreadsheet: the host's
// own listing when it has one, otherwise the bounded coordinate block.
func (q *Query) CandidateCells(sheetName string) []string {
	sheet := q.sheet(sheetName)
	if sheet == nil {
		return nil
	}
	return q.candidateCells(sheet)
}

// AliasNames returns the sorted alias names of a spreadsheet.
func (q *Query) AliasNames(sheetName string) []string {
	aliases := q.AliasMap(sheetName)
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// References returns "Object.lhs" -> expression for expressions referencing
// the spreadsheet, or one alias of it. For an alias the spreadsheet's own
// cells are scanned too, keyed "Sheet.Cell".
//
// Decorated references use the spreadsheet label when it has one.
func (q *Query) References(sheetName, alias string) map[string]string {
	doc := q.access.ActiveDocument()
	if doc == nil {
		return map[string]string{}
	}
	sheet := q.access.TypedObject(doc, sheetName, q.cfg.TypeID)
	if sheet == nil {
		return map[string]string{}
	}

	search := refindex.NewSearch(graph.LabelOrName(sheet), alias)
	results := make(map[string]string)
	if alias != "" {
		q.addInternalRefs(sheet, search, results)
	}
	for key, expr := range q.indexer.Collect(doc, refindex.Query{
		Search:    search,
		OwnerName: sheetName,
		OwnerType: q.cfg.TypeID,
	}) {
		results[key] = expr
	}

	debug.LogQuery("alias references %s.%s: %d\n", sheetName, alias, len(results))
	return results
}

func (q *Query) addInternalRefs(sheet graph.Object, search refindex.Search, results map[string]string) {
	name := graph.Name(sheet)
	if name == "" {
		return
	}
	for _, cell := range q.candidateCells(sheet) {
		text, ok := cellText(sheet, cell)
		if !ok || text == "" {
			continue
		}
		if search.MatchesInternal(text) {
			results[name+"."+cell] = text
		}
	}
}
