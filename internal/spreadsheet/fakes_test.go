package spreadsheet

import (
	"errors"
	"sort"

	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/memdoc"
)

// fakeSheet carries spreadsheet data but exposes no optional capability.
// Wrapper types below add the method sets of individual host versions.
type fakeSheet struct {
	name    string
	label   string
	aliases map[string]string // cell -> alias
	cleared []string
}

func newFakeSheet(name string, aliases map[string]string) *fakeSheet {
	return &fakeSheet{name: name, label: name, aliases: aliases}
}

func (s *fakeSheet) Name() string   { return s.name }
func (s *fakeSheet) Label() string  { return s.label }
func (s *fakeSheet) TypeID() string { return memdoc.TypeSpreadsheet }

func (s *fakeSheet) cellOf(alias string) string {
	for cell, a := range s.aliases {
		if a == alias {
			return cell
		}
	}
	return ""
}

// propertySheet exposes the alias map as an attribute keyed by cell.
type propertySheet struct{ *fakeSheet }

func (s propertySheet) Property(name string) (any, bool) {
	if name != "Alias" {
		return nil, false
	}
	out := make(map[string]any, len(s.aliases))
	for cell, alias := range s.aliases {
		out[cell] = alias
	}
	return out, true
}

// resolvingSheet only supports per-cell alias access.
type resolvingSheet struct{ *fakeSheet }

func (s resolvingSheet) UsedCells() ([]string, error) {
	cells := make([]string, 0, len(s.aliases))
	for cell := range s.aliases {
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	return cells, nil
}

func (s resolvingSheet) GetAlias(cell string) (string, error) {
	return s.aliases[cell], nil
}

func (s resolvingSheet) GetCellFromAlias(alias string) (string, error) {
	return s.cellOf(alias), nil
}

// clearOnlySheet rejects empty SetAlias writes but supports a null write.
type clearOnlySheet struct{ *fakeSheet }

func (s clearOnlySheet) GetCellFromAlias(alias string) (string, error) {
	return s.cellOf(alias), nil
}

func (s clearOnlySheet) SetAlias(string, string) error {
	return errors.New("empty alias rejected")
}

func (s clearOnlySheet) ClearAlias(cell string) error {
	delete(s.aliases, cell)
	s.cleared = append(s.cleared, cell)
	return nil
}

// panickySheet blows up on every write.
type panickySheet struct{ *fakeSheet }

func (s panickySheet) GetCellFromAlias(alias string) (string, error) {
	return s.cellOf(alias), nil
}

func (s panickySheet) SetAlias(string, string) error {
	panic("host crashed")
}

// brokenListingSheet fails its cell listings so the coordinate scan is used.
type brokenListingSheet struct{ *fakeSheet }

func (s brokenListingSheet) UsedCells() ([]string, error) {
	return nil, errors.New("not available")
}

func (s brokenListingSheet) NonEmptyCells() ([]string, error) {
	return []string{}, nil
}

func (s brokenListingSheet) GetAlias(cell string) (string, error) {
	return s.aliases[cell], nil
}

type fakeDoc struct {
	objects []graph.Object
}

func (d *fakeDoc) Objects() []graph.Object { return d.objects }

func (d *fakeDoc) GetObject(name string) graph.Object {
	for _, obj := range d.objects {
		if obj.Name() == name {
			return obj
		}
	}
	return nil
}

type fakeApp struct {
	doc *fakeDoc
}

func (a *fakeApp) ActiveDocument() graph.Document { return a.doc }
