package memdoc

import "github.com/standardbeagle/datamanager/internal/graph"

// legacyObject exposes the reduced API of older hosts: aliases are read and
// written one cell at a time, cells cannot be listed, and property groups
// are unknown.
type legacyObject struct {
	obj *Object
}

func (l *legacyObject) Name() string   { return l.obj.name }
func (l *legacyObject) Label() string  { return l.obj.label }
func (l *legacyObject) TypeID() string { return l.obj.typeID }

func (l *legacyObject) PropertiesList() []string { return l.obj.PropertiesList() }

func (l *legacyObject) RemoveProperty(name string) error { return l.obj.RemoveProperty(name) }

func (l *legacyObject) ExpressionEngine() []graph.ExpressionEntry { return l.obj.ExpressionEngine() }

func (l *legacyObject) GroupChildren() []graph.Object { return l.obj.GroupChildren() }

func (l *legacyObject) OutList() []graph.Object { return l.obj.OutList() }

func (l *legacyObject) GetAlias(address string) (string, error) { return l.obj.GetAlias(address) }

func (l *legacyObject) SetAlias(address, alias string) error { return l.obj.SetAlias(address, alias) }

func (l *legacyObject) GetContents(address string) (string, error) {
	return l.obj.GetContents(address)
}
