package graph

import (
	"fmt"
	"reflect"

	"github.com/standardbeagle/datamanager/internal/debug"
)

// Access is the engine's only door into the host graph. Every method tolerates
// missing capabilities and host failures by returning an empty result.
type Access struct {
	app App
}

// NewAccess wraps a host application.
func NewAccess(app App) *Access {
	return &Access{app: app}
}

// Try runs a host call, converting both returned errors and panics into ok=false.
func Try[T any](op string, fn func() (T, error)) (value T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogProbe("%s panicked: %v\n", op, r)
			var zero T
			value, ok = zero, false
		}
	}()
	v, err := fn()
	if err != nil {
		debug.LogProbe("%s failed: %v\n", op, err)
		var zero T
		return zero, false
	}
	return v, true
}

// TryDo is Try for calls that only return an error.
func TryDo(op string, fn func() error) bool {
	_, ok := Try(op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return ok
}

// IsNil reports whether v is nil or an interface wrapping a nil pointer.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// ActiveDocument returns the host's active document or nil.
func (a *Access) ActiveDocument() Document {
	if a == nil || IsNil(a.app) {
		return nil
	}
	doc, ok := Try("ActiveDocument", func() (Document, error) {
		return a.app.ActiveDocument(), nil
	})
	if !ok || IsNil(doc) {
		return nil
	}
	return doc
}

// Objects returns the document's objects with nil entries dropped.
func (a *Access) Objects(doc Document) []Object {
	if IsNil(doc) {
		return nil
	}
	objs, ok := Try("Objects", func() ([]Object, error) {
		return doc.Objects(), nil
	})
	if !ok {
		return nil
	}
	out := make([]Object, 0, len(objs))
	for _, obj := range objs {
		if !IsNil(obj) {
			out = append(out, obj)
		}
	}
	return out
}

// Object looks up an object by name.
func (a *Access) Object(doc Document, name string) Object {
	if IsNil(doc) || name == "" {
		return nil
	}
	obj, ok := Try("GetObject", func() (Object, error) {
		return doc.GetObject(name), nil
	})
	if !ok || IsNil(obj) {
		return nil
	}
	return obj
}

// TypedObject looks up an object by name and returns it only if its type tag matches.
func (a *Access) TypedObject(doc Document, name, typeID string) Object {
	obj := a.Object(doc, name)
	if obj == nil || TypeID(obj) != typeID {
		return nil
	}
	return obj
}

// ObjectsOfType returns all objects whose type tag equals typeID, in document order.
func (a *Access) ObjectsOfType(doc Document, typeID string) []Object {
	var out []Object
	for _, obj := range a.Objects(doc) {
		if TypeID(obj) == typeID {
			out = append(out, obj)
		}
	}
	return out
}

// Name returns the object's name, or "" if the host call fails.
func Name(obj Object) string {
	if IsNil(obj) {
		return ""
	}
	name, _ := Try("Name", func() (string, error) { return obj.Name(), nil })
	return name
}

// Label returns the object's label, or "" if the host call fails.
func Label(obj Object) string {
	if IsNil(obj) {
		return ""
	}
	label, _ := Try("Label", func() (string, error) { return obj.Label(), nil })
	return label
}

// TypeID returns the object's type tag, or "" if the host call fails.
func TypeID(obj Object) string {
	if IsNil(obj) {
		return ""
	}
	typeID, _ := Try("TypeID", func() (string, error) { return obj.TypeID(), nil })
	return typeID
}

// LabelOrName prefers a non-empty label.
func LabelOrName(obj Object) string {
	if label := Label(obj); label != "" {
		return label
	}
	return Name(obj)
}

// PropertyNames returns PropertiesList, or nil when unsupported.
func PropertyNames(obj Object) []string {
	lister, ok := obj.(PropertyLister)
	if !ok {
		return nil
	}
	names, _ := Try("PropertiesList", func() ([]string, error) {
		return lister.PropertiesList(), nil
	})
	return names
}

// HasProperty reports whether name is in PropertiesList.
func HasProperty(obj Object, name string) bool {
	for _, prop := range PropertyNames(obj) {
		if prop == name {
			return true
		}
	}
	return false
}

// ReadProperty reads a named attribute, or reports false when unsupported or absent.
func ReadProperty(obj Object, name string) (any, bool) {
	reader, ok := obj.(PropertyReader)
	if !ok {
		return nil, false
	}
	type result struct {
		v  any
		ok bool
	}
	r, ok := Try("Property("+name+")", func() (result, error) {
		v, found := reader.Property(name)
		return result{v, found}, nil
	})
	if !ok || !r.ok || r.v == nil {
		return nil, false
	}
	return r.v, true
}

// StringMap coerces a property value into map[string]string.
// Anything that is not a string-keyed map yields nil.
func StringMap(v any) map[string]string {
	switch m := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = fmt.Sprint(val)
		}
		return out
	}
	return nil
}
