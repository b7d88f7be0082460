// Package metrics summarizes a document: how many entries each tab holds
// and how heavily they are referenced.
package metrics

import (
	"fmt"
	"io"
	"sort"

	"github.com/standardbeagle/datamanager/internal/panel"
)

// TabStats are the metrics of one tab.
type TabStats struct {
	Tab            panel.Kind
	TotalParents   int64
	DerivedParents int64 // Copy-on-change clones

	TotalChildren         int64
	TotalReferences       int64
	MaxReferencesPerChild int64
	OrphanChildren        int64 // Children with no references

	MostReferenced []ChildReferences
}

// ChildReferences is a child and its reference count.
type ChildReferences struct {
	Child      string
	References int64
}

// DocumentStats holds one TabStats per tab, in panel.Kinds order.
type DocumentStats struct {
	Tabs []TabStats
}

// DefaultTopN is how many most-referenced children are kept.
const DefaultTopN = 5

// Compute walks every tab of p.
func Compute(p *panel.Panel, topN int) *DocumentStats {
	ds := &DocumentStats{}
	for _, kind := range panel.Kinds {
		ds.Tabs = append(ds.Tabs, ComputeTab(p, kind, topN))
	}
	return ds
}

// ComputeTab computes the metrics of one tab.
func ComputeTab(p *panel.Panel, kind panel.Kind, topN int) TabStats {
	stats := TabStats{Tab: kind}

	all := p.GetSortedParents(kind, false)
	stats.TotalParents = int64(len(all))
	stats.DerivedParents = stats.TotalParents - int64(len(p.GetSortedParents(kind, true)))

	children := p.GetChildItems(kind, all)
	stats.TotalChildren = int64(len(children))
	counts := p.GetExpressionReferenceCounts(kind, children)

	ranked := make([]ChildReferences, 0, len(counts))
	for _, child := range children {
		n := int64(counts[child])
		stats.TotalReferences += n
		if n > stats.MaxReferencesPerChild {
			stats.MaxReferencesPerChild = n
		}
		if n == 0 {
			stats.OrphanChildren++
			continue
		}
		ranked = append(ranked, ChildReferences{Child: child, References: n})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].References > ranked[j].References
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	stats.MostReferenced = ranked
	return stats
}

// Tab returns the stats of kind, or false when not computed.
func (ds *DocumentStats) Tab(kind panel.Kind) (TabStats, bool) {
	for _, t := range ds.Tabs {
		if t.Tab == kind {
			return t, true
		}
	}
	return TabStats{}, false
}

// FormatAsJSON returns a JSON-ready view.
func (ds *DocumentStats) FormatAsJSON() map[string]interface{} {
	tabs := make([]map[string]interface{}, 0, len(ds.Tabs))
	for _, t := range ds.Tabs {
		top := make([]map[string]interface{}, 0, len(t.MostReferenced))
		for _, c := range t.MostReferenced {
			top = append(top, map[string]interface{}{
				"child":      c.Child,
				"references": c.References,
			})
		}
		tabs = append(tabs, map[string]interface{}{
			"tab": string(t.Tab),
			"parents": map[string]interface{}{
				"total":   t.TotalParents,
				"derived": t.DerivedParents,
			},
			"children": map[string]interface{}{
				"total":          t.TotalChildren,
				"references":     t.TotalReferences,
				"max_references": t.MaxReferencesPerChild,
				"orphans":        t.OrphanChildren,
			},
			"most_referenced": top,
		})
	}
	return map[string]interface{}{"tabs": tabs}
}

// WriteText prints a human-readable summary.
func (ds *DocumentStats) WriteText(w io.Writer) {
	for _, t := range ds.Tabs {
		fmt.Fprintf(w, "%s: %d parents (%d derived), %d children, %d unused, %d references (max %d)\n",
			t.Tab, t.TotalParents, t.DerivedParents, t.TotalChildren, t.OrphanChildren,
			t.TotalReferences, t.MaxReferencesPerChild)
		for _, c := range t.MostReferenced {
			fmt.Fprintf(w, "  %-30s %d\n", c.Child, c.References)
		}
	}
}
