package graph

import (
	"reflect"
	"strings"

	"github.com/standardbeagle/datamanager/internal/debug"
)

// CloneGroups names the container objects that hold copy-on-change derivatives.
type CloneGroups struct {
	// GroupName is looked up directly with GetObject.
	GroupName string
	// LabelPrefix matches any object whose label starts with it.
	LabelPrefix string
}

// DefaultCloneGroups matches the host's default copy-on-change container naming.
var DefaultCloneGroups = CloneGroups{
	GroupName:   "CopyOnChangeGroup",
	LabelPrefix: "CopyOnChangeGroup",
}

// CloneGroupObjects returns the copy-on-change containers of doc.
func (a *Access) CloneGroupObjects(doc Document, groups CloneGroups) []Object {
	var out []Object
	if groups.GroupName != "" {
		if direct := a.Object(doc, groups.GroupName); direct != nil {
			out = append(out, direct)
		}
	}
	if groups.LabelPrefix != "" {
		for _, obj := range a.Objects(doc) {
			if strings.HasPrefix(Label(obj), groups.LabelPrefix) {
				out = append(out, obj)
			}
		}
	}
	return out
}

// Children returns group children followed by out-references.
func Children(obj Object) []Object {
	var out []Object
	if holder, ok := obj.(GroupHolder); ok {
		if kids, ok := Try("GroupChildren", func() ([]Object, error) { return holder.GroupChildren(), nil }); ok {
			out = appendNonNil(out, kids)
		}
	}
	if lister, ok := obj.(OutLister); ok {
		if refs, ok := Try("OutList", func() ([]Object, error) { return lister.OutList(), nil }); ok {
			out = appendNonNil(out, refs)
		}
	}
	return out
}

func appendNonNil(dst, src []Object) []Object {
	for _, obj := range src {
		if !IsNil(obj) {
			dst = append(dst, obj)
		}
	}
	return dst
}

// identity returns a key that is stable for the lifetime of obj.
// Comparable dynamic types (pointers in practice) are their own key; anything
// else falls back to its type tag and name.
func identity(obj Object) any {
	if reflect.TypeOf(obj).Comparable() {
		return obj
	}
	return TypeID(obj) + "\x00" + Name(obj)
}

// DerivedCloneNames walks every copy-on-change container and collects the names
// of descendants whose type tag equals typeID. Traversal stops at a matching
// object and never revisits an object, so cyclic graphs terminate.
func (a *Access) DerivedCloneNames(doc Document, typeID string, groups CloneGroups) map[string]struct{} {
	names := make(map[string]struct{})
	visited := make(map[any]struct{})

	stack := a.CloneGroupObjects(doc, groups)
	for len(stack) > 0 {
		obj := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := identity(obj)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		if TypeID(obj) == typeID {
			if name := Name(obj); name != "" {
				names[name] = struct{}{}
			}
			continue
		}

		children := Children(obj)
		// Push in reverse so children are visited in declaration order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	debug.LogQuery("derived clones of %s: %d (visited %d)\n", typeID, len(names), len(visited))
	return names
}
