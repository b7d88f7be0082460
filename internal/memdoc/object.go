package memdoc

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/datamanager/internal/graph"
)

type property struct {
	name    string
	group   string
	value   string
	builtin bool
}

type cell struct {
	contents string
	alias    string
}

// Object is an in-memory document object. VarSets use properties,
// spreadsheets use cells; any object may hold expressions and links.
type Object struct {
	doc         *Document
	name        string
	label       string
	typeID      string
	props       map[string]*property
	propOrder   []string
	expressions []graph.ExpressionEntry
	group       []string
	outList     []string
	cells       map[string]*cell
}

// Name implements graph.Object.
func (o *Object) Name() string { return o.name }

// Label implements graph.Object.
func (o *Object) Label() string { return o.label }

// TypeID implements graph.Object.
func (o *Object) TypeID() string { return o.typeID }

// SetLabel changes the user-visible label.
func (o *Object) SetLabel(label string) *Object {
	o.label = label
	return o
}

func (o *Object) addProperty(name, group, value string, builtin bool) {
	if _, exists := o.props[name]; !exists {
		o.propOrder = append(o.propOrder, name)
	}
	o.props[name] = &property{name: name, group: group, value: value, builtin: builtin}
}

// AddProperty adds (or replaces) a user property in group.
func (o *Object) AddProperty(name, group, value string) *Object {
	o.addProperty(name, group, value, false)
	return o
}

// AddBuiltinProperty adds a host-defined property that cannot be removed.
func (o *Object) AddBuiltinProperty(name string) *Object {
	o.addProperty(name, "Base", "", true)
	return o
}

// PropertiesList implements graph.PropertyLister.
func (o *Object) PropertiesList() []string {
	out := make([]string, len(o.propOrder))
	copy(out, o.propOrder)
	return out
}

// DynamicProperties implements graph.DynamicPropertyLister.
func (o *Object) DynamicProperties() ([]string, error) {
	var out []string
	for _, name := range o.propOrder {
		if !o.props[name].builtin {
			out = append(out, name)
		}
	}
	return out, nil
}

// Property implements graph.PropertyReader.
func (o *Object) Property(name string) (any, bool) {
	p, ok := o.props[name]
	if !ok {
		return nil, false
	}
	return p.value, true
}

// GroupOfProperty implements graph.PropertyGrouper.
func (o *Object) GroupOfProperty(name string) (string, error) {
	p, ok := o.props[name]
	if !ok {
		return "", fmt.Errorf("property %q not found on %s", name, o.name)
	}
	return p.group, nil
}

// RemoveProperty implements graph.PropertyRemover.
func (o *Object) RemoveProperty(name string) error {
	p, ok := o.props[name]
	if !ok {
		return fmt.Errorf("property %q not found on %s", name, o.name)
	}
	if p.builtin {
		return fmt.Errorf("property %q is built-in and cannot be removed", name)
	}
	delete(o.props, name)
	for i, n := range o.propOrder {
		if n == name {
			o.propOrder = append(o.propOrder[:i], o.propOrder[i+1:]...)
			break
		}
	}
	return nil
}

// SetExpression binds lhs to expr, replacing an existing binding.
// An empty expr removes the binding.
func (o *Object) SetExpression(lhs, expr string) *Object {
	for i, e := range o.expressions {
		if e.LHS == lhs {
			if expr == "" {
				o.expressions = append(o.expressions[:i], o.expressions[i+1:]...)
			} else {
				o.expressions[i].Expr = expr
			}
			return o
		}
	}
	if expr != "" {
		o.expressions = append(o.expressions, graph.ExpressionEntry{LHS: lhs, Expr: expr})
	}
	return o
}

// ExpressionEngine implements graph.ExpressionHolder.
func (o *Object) ExpressionEngine() []graph.ExpressionEntry {
	out := make([]graph.ExpressionEntry, len(o.expressions))
	copy(out, o.expressions)
	return out
}

// AddToGroup appends group children by name.
func (o *Object) AddToGroup(names ...string) *Object {
	o.group = append(o.group, names...)
	return o
}

// LinkTo appends out-references by name.
func (o *Object) LinkTo(names ...string) *Object {
	o.outList = append(o.outList, names...)
	return o
}

// GroupChildren implements graph.GroupHolder.
func (o *Object) GroupChildren() []graph.Object {
	return o.doc.resolve(o.group)
}

// OutList implements graph.OutLister.
func (o *Object) OutList() []graph.Object {
	return o.doc.resolve(o.outList)
}

// SetCell writes cell contents, keeping any alias.
func (o *Object) SetCell(address, contents string) *Object {
	c := o.cellAt(address)
	c.contents = contents
	o.dropEmptyCell(address)
	return o
}

// DefineAlias names a cell without validation; intended for building fixtures.
func (o *Object) DefineAlias(address, alias string) *Object {
	o.cellAt(address).alias = alias
	o.dropEmptyCell(address)
	return o
}

func (o *Object) cellAt(address string) *cell {
	c, ok := o.cells[address]
	if !ok {
		c = &cell{}
		o.cells[address] = c
	}
	return c
}

// GetAliases implements graph.AliasMapper. Like the host it reports cell -> alias.
func (o *Object) GetAliases() (map[string]string, error) {
	out := make(map[string]string)
	for addr, c := range o.cells {
		if c.alias != "" {
			out[addr] = c.alias
		}
	}
	return out, nil
}

// GetAlias implements graph.AliasGetter.
func (o *Object) GetAlias(address string) (string, error) {
	if c, ok := o.cells[address]; ok {
		return c.alias, nil
	}
	return "", nil
}

// GetCellFromAlias implements graph.CellFromAliasResolver.
func (o *Object) GetCellFromAlias(alias string) (string, error) {
	for addr, c := range o.cells {
		if c.alias == alias {
			return addr, nil
		}
	}
	return "", nil
}

// SetAlias implements graph.AliasSetter. An empty alias clears the cell's alias.
func (o *Object) SetAlias(address, alias string) error {
	if o.typeID != TypeSpreadsheet {
		return fmt.Errorf("%s is not a spreadsheet", o.name)
	}
	if alias != "" {
		for addr, c := range o.cells {
			if addr != address && c.alias == alias {
				return fmt.Errorf("alias %q already defined at %s", alias, addr)
			}
		}
	}
	o.cellAt(address).alias = alias
	o.dropEmptyCell(address)
	return nil
}

// ClearAlias implements graph.AliasClearer.
func (o *Object) ClearAlias(address string) error {
	return o.SetAlias(address, "")
}

func (o *Object) dropEmptyCell(address string) {
	if c, ok := o.cells[address]; ok && c.alias == "" && c.contents == "" {
		delete(o.cells, address)
	}
}

// UsedCells implements graph.UsedCellLister.
func (o *Object) UsedCells() ([]string, error) {
	out := make([]string, 0, len(o.cells))
	for addr := range o.cells {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out, nil
}

// NonEmptyCells implements graph.NonEmptyCellLister.
func (o *Object) NonEmptyCells() ([]string, error) {
	var out []string
	for addr, c := range o.cells {
		if c.contents != "" {
			out = append(out, addr)
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetContents implements graph.ContentsReader.
func (o *Object) GetContents(address string) (string, error) {
	if c, ok := o.cells[address]; ok {
		return c.contents, nil
	}
	return "", nil
}

// Get implements graph.CellGetter.
func (o *Object) Get(address string) (any, error) {
	c, ok := o.cells[address]
	if !ok {
		return nil, fmt.Errorf("cell %s is empty", address)
	}
	return c.contents, nil
}
