// Package memdoc is an in-memory host document. It implements every graph
// capability, can emulate older host APIs through profiles, and round-trips
// through JSON or TOML snapshot files.
package memdoc

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/datamanager/internal/graph"
)

// Profile selects which host API surface objects expose.
type Profile string

const (
	// ProfileFull exposes every capability.
	ProfileFull Profile = "full"
	// ProfileLegacy hides bulk alias/cell listing, alias resolution, null
	// writes, property groups and attribute reads, as older hosts did.
	ProfileLegacy Profile = "legacy"
)

// Well-known type tags.
const (
	TypeVarSet      = "App::VarSet"
	TypeSpreadsheet = "Spreadsheet::Sheet"
	TypeGroup       = "App::DocumentObjectGroup"
	TypePart        = "Part::Feature"
)

// builtinProperties are present on every object.
var builtinProperties = []string{"Label", "Label2", "ExpressionEngine", "Visibility"}

// Document is a mutable in-memory document.
type Document struct {
	name       string
	profile    Profile
	objects    []*Object
	byName     map[string]*Object
	views      map[*Object]graph.Object
	recomputes int
}

// New creates an empty document using the full profile.
func New(name string) *Document {
	return &Document{
		name:    name,
		profile: ProfileFull,
		byName:  make(map[string]*Object),
		views:   make(map[*Object]graph.Object),
	}
}

// Name returns the document name.
func (d *Document) Name() string { return d.name }

// Profile returns the active API profile.
func (d *Document) Profile() Profile { return d.profile }

// SetProfile switches the API profile. Cached views are rebuilt.
func (d *Document) SetProfile(p Profile) error {
	switch p {
	case "", ProfileFull:
		p = ProfileFull
	case ProfileLegacy:
	default:
		return fmt.Errorf("unknown profile %q", p)
	}
	d.profile = p
	d.views = make(map[*Object]graph.Object)
	return nil
}

// AddObject creates an object. The label defaults to the name.
func (d *Document) AddObject(typeID, name string) (*Object, error) {
	if name == "" {
		return nil, fmt.Errorf("object name cannot be empty")
	}
	if _, exists := d.byName[name]; exists {
		return nil, fmt.Errorf("object %q already exists", name)
	}
	obj := &Object{
		doc:    d,
		name:   name,
		label:  name,
		typeID: typeID,
		props:  make(map[string]*property),
		cells:  make(map[string]*cell),
	}
	for _, p := range builtinProperties {
		obj.addProperty(p, "Base", "", true)
	}
	d.objects = append(d.objects, obj)
	d.byName[name] = obj
	return obj, nil
}

// MustAddObject is AddObject for fixtures; it panics on error.
func (d *Document) MustAddObject(typeID, name string) *Object {
	obj, err := d.AddObject(typeID, name)
	if err != nil {
		panic(err)
	}
	return obj
}

// RemoveObject deletes an object and any links pointing at it.
func (d *Document) RemoveObject(name string) bool {
	obj, ok := d.byName[name]
	if !ok {
		return false
	}
	delete(d.byName, name)
	delete(d.views, obj)
	for i, o := range d.objects {
		if o == obj {
			d.objects = append(d.objects[:i], d.objects[i+1:]...)
			break
		}
	}
	for _, o := range d.objects {
		o.group = removeName(o.group, name)
		o.outList = removeName(o.outList, name)
	}
	return true
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// Lookup returns the concrete object for name.
func (d *Document) Lookup(name string) (*Object, bool) {
	obj, ok := d.byName[name]
	return obj, ok
}

// Objects implements graph.Document.
func (d *Document) Objects() []graph.Object {
	out := make([]graph.Object, 0, len(d.objects))
	for _, obj := range d.objects {
		out = append(out, d.view(obj))
	}
	return out
}

// GetObject implements graph.Document. A missing object is a nil interface.
func (d *Document) GetObject(name string) graph.Object {
	obj, ok := d.byName[name]
	if !ok {
		return nil
	}
	return d.view(obj)
}

// view returns the profile-specific facade for obj, cached so identity is stable.
func (d *Document) view(obj *Object) graph.Object {
	if d.profile != ProfileLegacy {
		return obj
	}
	if v, ok := d.views[obj]; ok {
		return v
	}
	v := &legacyObject{obj: obj}
	d.views[obj] = v
	return v
}

func (d *Document) resolve(names []string) []graph.Object {
	out := make([]graph.Object, 0, len(names))
	for _, n := range names {
		if obj, ok := d.byName[n]; ok {
			out = append(out, d.view(obj))
		}
	}
	return out
}

// Recompute records a document recompute.
func (d *Document) Recompute() {
	d.recomputes++
}

// Recomputes returns how many times Recompute ran.
func (d *Document) Recomputes() int {
	return d.recomputes
}

// ObjectNames returns all object names sorted.
func (d *Document) ObjectNames() []string {
	names := make([]string, 0, len(d.byName))
	for n := range d.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// App hosts a single active document.
type App struct {
	doc *Document
}

// NewApp returns an App whose active document is doc (may be nil).
func NewApp(doc *Document) *App {
	return &App{doc: doc}
}

// ActiveDocument implements graph.App.
func (a *App) ActiveDocument() graph.Document {
	if a.doc == nil {
		return nil
	}
	return a.doc
}

// Document returns the concrete active document.
func (a *App) Document() *Document {
	return a.doc
}

// SetDocument swaps the active document.
func (a *App) SetDocument(doc *Document) {
	a.doc = doc
}

// Refresh recomputes the active document.
func (a *App) Refresh() {
	if a.doc != nil {
		a.doc.Recompute()
	}
}
