package types

import "strings"

// ParentChildRef identifies a child attribute inside a named parent container,
// e.g. a VarSet variable or a Spreadsheet alias.
type ParentChildRef struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Text returns the canonical "parent.child" form.
func (r ParentChildRef) Text() string {
	return r.Parent + "." + r.Child
}

// String implements fmt.Stringer
func (r ParentChildRef) String() string {
	return r.Text()
}

// ParseParentChildRef splits text on its first '.'.
// Both segments must be non-empty. A child containing '.' is returned whole,
// but a parent containing '.' cannot be expressed in this form.
func ParseParentChildRef(text string) (ParentChildRef, bool) {
	parent, child, found := strings.Cut(text, ".")
	if !found || parent == "" || child == "" {
		return ParentChildRef{}, false
	}
	return ParentChildRef{Parent: parent, Child: child}, true
}

// RefTexts converts refs to their canonical text form, preserving order.
func RefTexts(refs []ParentChildRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Text())
	}
	return out
}

// NormalizeSelection removes duplicate entries while keeping first-seen order.
func NormalizeSelection(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
