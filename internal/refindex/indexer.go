package refindex

import (
	"sort"

	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/graph"
)

// Query describes one reference lookup.
type Query struct {
	Search Search
	// OwnerName and OwnerType identify the parent object. Bare-name matches
	// only count on entries owned by that object.
	OwnerName string
	OwnerType string
}

// Indexer scans a document's expression engines.
type Indexer struct {
	access *graph.Access
}

// NewIndexer creates an indexer over access.
func NewIndexer(access *graph.Access) *Indexer {
	return &Indexer{access: access}
}

// Access returns the underlying graph access.
func (ix *Indexer) Access() *graph.Access {
	return ix.access
}

// Collect returns "Object.lhs" -> expression text for every matching entry.
func (ix *Indexer) Collect(doc graph.Document, q Query) map[string]string {
	results := make(map[string]string)
	if graph.IsNil(doc) {
		return results
	}
	for _, entry := range ix.access.Expressions(doc) {
		if !q.matches(entry) {
			continue
		}
		results[ExpressionKey(entry.OwnerName, entry.LHS)] = entry.Expr
	}
	debug.LogQuery("references %v owner=%s: %d\n", q.Search.Patterns, q.OwnerName, len(results))
	return results
}

func (q Query) matches(entry graph.NamedExpression) bool {
	if q.Search.MatchesDecorated(entry.Expr) {
		return true
	}
	if q.Search.Internal == nil || entry.OwnerName != q.OwnerName {
		return false
	}
	if q.OwnerType != "" && graph.TypeID(entry.Owner) != q.OwnerType {
		return false
	}
	return q.Search.MatchesInternal(entry.Expr)
}

// SortedKeys returns the keys of refs in ascending order.
func SortedKeys(refs map[string]string) []string {
	keys := make([]string, 0, len(refs))
	for k := range refs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
