// Package graph is the narrow read/write surface over the host document graph.
//
// The host is version-skewed: objects expose different subsets of methods
// depending on the host release. Each optional method is modelled as its own
// single-method interface and probed with a type assertion. Callers never
// assume a capability exists.
package graph

// App is the host application. ActiveDocument returns nil when no document is open.
type App interface {
	ActiveDocument() Document
}

// Document is a host document.
type Document interface {
	Objects() []Object
	GetObject(name string) Object
}

// Object is any object living in a Document.
type Object interface {
	Name() string
	Label() string
	TypeID() string
}

// ExpressionEntry is one (lhs, expression text) pair of an object's expression engine.
type ExpressionEntry struct {
	LHS  string
	Expr string
}

// ExpressionHolder exposes an object's expression engine.
type ExpressionHolder interface {
	ExpressionEngine() []ExpressionEntry
}

// PropertyLister lists every property name, built-ins included.
type PropertyLister interface {
	PropertiesList() []string
}

// PropertyReader reads a named attribute.
type PropertyReader interface {
	Property(name string) (any, bool)
}

// DynamicPropertyLister lists only user-added properties.
type DynamicPropertyLister interface {
	DynamicProperties() ([]string, error)
}

// PropertyRemover removes a user-added property.
type PropertyRemover interface {
	RemoveProperty(name string) error
}

// PropertyGrouper reports the property group a property belongs to.
type PropertyGrouper interface {
	GroupOfProperty(name string) (string, error)
}

// GroupHolder exposes group children (container objects).
type GroupHolder interface {
	GroupChildren() []Object
}

// OutLister exposes generic outgoing references.
type OutLister interface {
	OutList() []Object
}

// AliasMapper returns every alias at once. Depending on the host version the map
// is keyed by alias or by cell.
type AliasMapper interface {
	GetAliases() (map[string]string, error)
}

// AliasGetter returns the alias of a single cell, or "" when none.
type AliasGetter interface {
	GetAlias(cell string) (string, error)
}

// CellFromAliasResolver resolves an alias to its cell address.
type CellFromAliasResolver interface {
	GetCellFromAlias(alias string) (string, error)
}

// AliasSetter writes an alias onto a cell. An empty alias clears it.
type AliasSetter interface {
	SetAlias(cell, alias string) error
}

// AliasClearer clears a cell's alias with a null write.
type AliasClearer interface {
	ClearAlias(cell string) error
}

// UsedCellLister lists cells that have ever been written.
type UsedCellLister interface {
	UsedCells() ([]string, error)
}

// NonEmptyCellLister lists cells that currently hold content.
type NonEmptyCellLister interface {
	NonEmptyCells() ([]string, error)
}

// CellLister lists all known cells.
type CellLister interface {
	Cells() ([]string, error)
}

// ContentsReader returns the raw text of a cell (formula included).
type ContentsReader interface {
	GetContents(cell string) (string, error)
}

// CellGetter returns the evaluated value of a cell.
type CellGetter interface {
	Get(cell string) (any, error)
}
