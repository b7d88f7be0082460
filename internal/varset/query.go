// Package varset discovers VarSet containers and their variables, finds
// expression references to them, and removes unused variables.
package varset

import (
	"sort"
	"strings"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/probe"
	"github.com/standardbeagle/datamanager/internal/refindex"
)

// Query reads VarSets from the active document. It holds no state between
// calls; every method re-reads the live graph.
type Query struct {
	access   *graph.Access
	indexer  *refindex.Indexer
	cfg      config.VarSet
	clones   graph.CloneGroups
	excluded map[string]struct{}
	names    probe.Chain[graph.Object, []string]
}

// NewQuery creates a VarSet query over access.
func NewQuery(access *graph.Access, cfg config.VarSet, clones config.CopyOnChange) *Query {
	q := &Query{
		access:   access,
		indexer:  refindex.NewIndexer(access),
		cfg:      cfg,
		clones:   graph.CloneGroups{GroupName: clones.GroupName, LabelPrefix: clones.LabelPrefix},
		excluded: make(map[string]struct{}, len(cfg.ExcludedProperties)),
	}
	if q.cfg.DefaultGroup == "" {
		q.cfg.DefaultGroup = "Base"
	}
	for _, name := range cfg.ExcludedProperties {
		q.excluded[name] = struct{}{}
	}
	q.names = probe.New("varset variables",
		probe.Strategy[graph.Object, []string]{Name: "DynamicProperties", Try: q.dynamicVariables},
		probe.Strategy[graph.Object, []string]{Name: "PropertiesList", Try: q.listedVariables},
	)
	return q
}

// TypeID returns the VarSet type tag this query matches.
func (q *Query) TypeID() string {
	return q.cfg.TypeID
}

// DefaultGroup is the group reported for variables without one.
func (q *Query) DefaultGroup() string {
	return q.cfg.DefaultGroup
}

// VarSets returns VarSet names in document order. With excludeDerived set,
// VarSets reachable from a copy-on-change container are left out.
func (q *Query) VarSets(excludeDerived bool) []string {
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

func (q *Query) varset(name string) graph.Object {
	doc := q.access.ActiveDocument()
	if doc == nil {
		return nil
	}
	return q.access.TypedObject(doc, name, q.cfg.TypeID)
}

func (q *Query) isExcluded(prop string) bool {
	_, ok := q.excluded[prop]
	return ok
}

func (q *Query) filterVariables(props []string) []string {
	var names []string
	for _, prop := range props {
		if prop == "" || q.isExcluded(prop) {
			continue
		}
		names = append(names, prop)
	}
	return names
}

func (q *Query) dynamicVariables(obj graph.Object) ([]string, bool) {
	lister, ok := obj.(graph.DynamicPropertyLister)
	if !ok {
		return nil, false
	}
	props, ok := graph.Try("DynamicProperties", lister.DynamicProperties)
	if !ok {
		return nil, false
	}
	names := q.filterVariables(props)
	return names, len(names) > 0
}

func (q *Query) listedVariables(obj graph.Object) ([]string, bool) {
	names := q.filterVariables(graph.PropertyNames(obj))
	return names, len(names) > 0
}

// VariableNames returns the sorted variable names of a VarSet. Built-in
// properties are never reported.
func (q *Query) VariableNames(varsetName string) []string {
	obj := q.varset(varsetName)
	if obj == nil {
		return nil
	}
	names, _ := q.names.Value(obj)
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}

func (q *Query) propertyGroup(obj graph.Object, prop string) string {
	grouper, ok := obj.(graph.PropertyGrouper)
	if !ok {
		return q.cfg.DefaultGroup
	}
	group, ok := graph.Try("GroupOfProperty("+prop+")", func() (string, error) {
		return grouper.GroupOfProperty(prop)
	})
	group = strings.TrimSpace(group)
	if !ok || group == "" {
		return q.cfg.DefaultGroup
	}
	return group
}

// VariableGroups maps each variable of a VarSet to its property group.
func (q *Query) VariableGroups(varsetName string) map[string]string {
	obj := q.varset(varsetName)
	if obj == nil {
		return map[string]string{}
	}
	names, _ := q.names.Value(obj)
	groups := make(map[string]string, len(names))
	for _, name := range names {
		groups[name] = q.propertyGroup(obj, name)
	}
	return groups
}

// GroupNames returns the distinct groups used by a VarSet, sorted.
func (q *Query) GroupNames(varsetName string) []string {
	seen := make(map[string]struct{})
	for _, group := range q.VariableGroups(varsetName) {
		seen[group] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for group := range seen {
		out = append(out, group)
	}
	sort.Strings(out)
	return out
}

// VariableNamesForGroup returns the sorted variables of one group. An empty
// group returns every variable.
func (q *Query) VariableNamesForGroup(varsetName, group string) []string {
	names := q.VariableNames(varsetName)
	if group == "" {
		return names
	}
	wanted := strings.TrimSpace(group)
	if wanted == "" {
		wanted = q.cfg.DefaultGroup
	}
	groups := q.VariableGroups(varsetName)

	var out []string
	for _, name := range names {
		g, ok := groups[name]
		if !ok {
			g = q.cfg.DefaultGroup
		}
		if g == wanted {
			out = append(out, name)
		}
	}
	return out
}

// References returns "Object.lhs" -> expression for every expression that
// references the VarSet, or one of its variables when variable is set.
// Bare variable names only count inside the VarSet's own expressions.
func (q *Query) References(varsetName, variable string) map[string]string {
	doc := q.access.ActiveDocument()
	if doc == nil {
		return map[string]string{}
	}
	refs := q.indexer.Collect(doc, refindex.Query{
		Search:    refindex.NewSearch(varsetName, variable),
		OwnerName: varsetName,
		OwnerType: q.cfg.TypeID,
	})
	debug.LogQuery("varset references %s.%s: %d\n", varsetName, variable, len(refs))
	return refs
}
