package memdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pelletier/go-toml/v2"

	dmerrors "github.com/standardbeagle/datamanager/internal/errors"
)

// Snapshot is the on-disk form of a Document.
type Snapshot struct {
	Name    string           `json:"name" toml:"name"`
	Profile string           `json:"profile,omitempty" toml:"profile,omitempty"`
	Objects []ObjectSnapshot `json:"objects" toml:"objects"`
}

// ObjectSnapshot is the on-disk form of an Object.
type ObjectSnapshot struct {
	Name        string               `json:"name" toml:"name"`
	Label       string               `json:"label,omitempty" toml:"label,omitempty"`
	Type        string               `json:"type" toml:"type"`
	Properties  []PropertySnapshot   `json:"properties,omitempty" toml:"properties,omitempty"`
	Expressions []ExpressionSnapshot `json:"expressions,omitempty" toml:"expressions,omitempty"`
	Group       []string             `json:"group,omitempty" toml:"group,omitempty"`
	OutList     []string             `json:"out_list,omitempty" toml:"out_list,omitempty"`
	Cells       []CellSnapshot       `json:"cells,omitempty" toml:"cells,omitempty"`
}

// PropertySnapshot is one user or built-in property.
type PropertySnapshot struct {
	Name    string `json:"name" toml:"name"`
	Group   string `json:"group,omitempty" toml:"group,omitempty"`
	Value   string `json:"value,omitempty" toml:"value,omitempty"`
	Builtin bool   `json:"builtin,omitempty" toml:"builtin,omitempty"`
}

// ExpressionSnapshot is one expression binding.
type ExpressionSnapshot struct {
	LHS  string `json:"lhs" toml:"lhs"`
	Expr string `json:"expr" toml:"expr"`
}

// CellSnapshot is one spreadsheet cell.
type CellSnapshot struct {
	Address  string `json:"address" toml:"address"`
	Contents string `json:"contents,omitempty" toml:"contents,omitempty"`
	Alias    string `json:"alias,omitempty" toml:"alias,omitempty"`
}

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatForPath picks the encoding from the file extension; JSON is the default.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// FromSnapshot builds a Document. Links to unknown objects are kept and
// silently skipped on traversal, matching a host with dangling links.
func FromSnapshot(s Snapshot) (*Document, error) {
	doc := New(s.Name)
	if err := doc.SetProfile(Profile(s.Profile)); err != nil {
		return nil, err
	}
	for _, objSnap := range s.Objects {
		obj, err := doc.AddObject(objSnap.Type, objSnap.Name)
		if err != nil {
			return nil, err
		}
		if objSnap.Label != "" {
			obj.label = objSnap.Label
		}
		for _, p := range objSnap.Properties {
			if p.Builtin {
				obj.AddBuiltinProperty(p.Name)
				continue
			}
			group := p.Group
			if group == "" {
				group = "Base"
			}
			obj.AddProperty(p.Name, group, p.Value)
		}
		for _, e := range objSnap.Expressions {
			obj.SetExpression(e.LHS, e.Expr)
		}
		obj.group = append(obj.group, objSnap.Group...)
		obj.outList = append(obj.outList, objSnap.OutList...)
		for _, c := range objSnap.Cells {
			if c.Address == "" {
				return nil, fmt.Errorf("object %s: cell without address", objSnap.Name)
			}
			obj.SetCell(c.Address, c.Contents)
			if c.Alias != "" {
				obj.DefineAlias(c.Address, c.Alias)
			}
		}
	}
	return doc, nil
}

// Snapshot captures the document state. Built-in properties that every object
// carries are omitted.
func (d *Document) Snapshot() Snapshot {
	s := Snapshot{Name: d.name}
	if d.profile != ProfileFull {
		s.Profile = string(d.profile)
	}
	implicit := make(map[string]struct{}, len(builtinProperties))
	for _, p := range builtinProperties {
		implicit[p] = struct{}{}
	}
	for _, obj := range d.objects {
		objSnap := ObjectSnapshot{Name: obj.name, Type: obj.typeID}
		if obj.label != obj.name {
			objSnap.Label = obj.label
		}
		for _, name := range obj.propOrder {
			p := obj.props[name]
			if p.builtin {
				if _, skip := implicit[name]; skip {
					continue
				}
				objSnap.Properties = append(objSnap.Properties, PropertySnapshot{Name: name, Builtin: true})
				continue
			}
			objSnap.Properties = append(objSnap.Properties, PropertySnapshot{Name: name, Group: p.group, Value: p.value})
		}
		for _, e := range obj.expressions {
			objSnap.Expressions = append(objSnap.Expressions, ExpressionSnapshot{LHS: e.LHS, Expr: e.Expr})
		}
		objSnap.Group = append(objSnap.Group, obj.group...)
		objSnap.OutList = append(objSnap.OutList, obj.outList...)
		addrs := make([]string, 0, len(obj.cells))
		for addr := range obj.cells {
			addrs = append(addrs, addr)
		}
		sort.Strings(addrs)
		for _, addr := range addrs {
			c := obj.cells[addr]
			objSnap.Cells = append(objSnap.Cells, CellSnapshot{Address: addr, Contents: c.contents, Alias: c.alias})
		}
		s.Objects = append(s.Objects, objSnap)
	}
	return s
}

// Decode parses a snapshot in the given format.
func Decode(data []byte, format Format) (*Document, error) {
	var s Snapshot
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse TOML snapshot: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse JSON snapshot: %w", err)
		}
	}
	return FromSnapshot(s)
}

// Encode serializes the document in the given format.
func (d *Document) Encode(format Format) ([]byte, error) {
	s := d.Snapshot()
	switch format {
	case FormatTOML:
		return toml.Marshal(s)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// LoadFile reads a snapshot file; the format follows the extension.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dmerrors.NewSnapshotError("load", path, err)
	}
	doc, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, dmerrors.NewSnapshotError("load", path, err)
	}
	return doc, nil
}

// SaveFile writes the document to path atomically (write temp file, rename).
func (d *Document) SaveFile(path string) error {
	data, err := d.Encode(FormatForPath(path))
	if err != nil {
		return dmerrors.NewSnapshotError("save", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return dmerrors.NewSnapshotError("save", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return dmerrors.NewSnapshotError("save", path, err)
	}
	return nil
}

// Fingerprint hashes the document's canonical JSON form. Two documents with
// the same state have the same fingerprint.
func (d *Document) Fingerprint() uint64 {
	data, err := json.Marshal(d.Snapshot())
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// FileFingerprint hashes raw snapshot bytes.
func FileFingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
