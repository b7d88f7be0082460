package panel

import (
	"strings"

	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/tab"
	"github.com/standardbeagle/datamanager/internal/types"
)

// DisplayItem pairs the key a view selects by with the text it shows.
type DisplayItem struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

// ObjectLabel returns the label of a named object in the active document,
// or "" when the object is missing or has no label.
func (p *Panel) ObjectLabel(name string) string {
	doc := p.access.ActiveDocument()
	if doc == nil {
		return ""
	}
	return graph.Label(p.access.Object(doc, name))
}

// FormatObjectName renders an object name, or its label when useLabel is set.
// For a virtual "VarSet.Group" parent only the VarSet part is relabelled.
func (p *Panel) FormatObjectName(name string, useLabel bool) string {
	if !useLabel {
		return name
	}
	base, suffix, grouped := strings.Cut(name, ".")
	label := p.ObjectLabel(base)
	switch {
	case label == "":
		return name
	case grouped:
		return label + "." + suffix
	default:
		return label
	}
}

// FormatRef renders "parent.child", with the parent's label when useLabel is set.
func (p *Panel) FormatRef(ref types.ParentChildRef, useLabel bool) string {
	if !useLabel {
		return ref.Text()
	}
	return p.FormatObjectName(ref.Parent, true) + "." + ref.Child
}

// FormatRefs renders refs in order.
func (p *Panel) FormatRefs(refs []types.ParentChildRef, useLabel bool) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, p.FormatRef(ref, useLabel))
	}
	return out
}

// FormatExpressionItem renders an item's display text. With useLabel the
// owning object in the left-hand side is shown by its label.
func (p *Panel) FormatExpressionItem(item types.ExpressionItem, useLabel bool) string {
	if !useLabel || item.ObjectName == "" {
		return item.DisplayText()
	}
	label := p.ObjectLabel(item.ObjectName)
	if label == "" {
		return item.DisplayText()
	}
	if _, rest, ok := strings.Cut(item.LHS, "."); ok {
		item.LHS = label + "." + rest
	}
	return item.DisplayText()
}

// GetParentItems lists a tab's parents for display. With useLabel, parents
// are shown by label and filterText is matched against the label.
func (p *Panel) GetParentItems(kind Kind, filterText string, excludeDerived, useLabel bool) []DisplayItem {
	query := filterText
	if useLabel {
		query = ""
	}
	names := p.GetFilteredParents(kind, query, excludeDerived)

	items := make([]DisplayItem, 0, len(names))
	for _, name := range names {
		items = append(items, DisplayItem{Key: name, Display: p.FormatObjectName(name, useLabel)})
	}
	if !useLabel {
		return items
	}

	filter := tab.ParseFilter(filterText)
	out := items[:0]
	for _, item := range items {
		if filter.Match(item.Display) {
			out = append(out, item)
		}
	}
	return out
}
