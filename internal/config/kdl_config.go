package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads dir/.datamanager.kdl. A missing file yields (nil, nil).
func LoadKDL(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(path)
}

// LoadKDLFile parses a config file. A relative document path is resolved
// against the file's directory.
func LoadKDLFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.Document.Path != "" && !filepath.IsAbs(cfg.Document.Path) {
		cfg.Document.Path = filepath.Clean(filepath.Join(filepath.Dir(path), cfg.Document.Path))
	}
	cfg.Source = path
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "version":
			if v, ok := firstIntArg(n); ok {
				cfg.Version = v
			}
		case "document":
			for _, cn := range n.Children {
				assignSimpleString(cn, "path", func(v string) { cfg.Document.Path = v })
				assignSimpleString(cn, "profile", func(v string) { cfg.Document.Profile = v })
			}
		case "varset":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "type_id":
					if s, ok := firstStringArg(cn); ok {
						cfg.VarSet.TypeID = s
					}
				case "default_group":
					if s, ok := firstStringArg(cn); ok {
						cfg.VarSet.DefaultGroup = s
					}
				case "excluded_properties":
					if names := collectStringArgs(cn); len(names) > 0 {
						cfg.VarSet.ExcludedProperties = names
					}
				}
			}
		case "spreadsheet":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "type_id":
					if s, ok := firstStringArg(cn); ok {
						cfg.Spreadsheet.TypeID = s
					}
				case "max_columns":
					if v, ok := firstIntArg(cn); ok {
						cfg.Spreadsheet.MaxColumns = v
					}
				case "max_rows":
					if v, ok := firstIntArg(cn); ok {
						cfg.Spreadsheet.MaxRows = v
					}
				}
			}
		case "copy_on_change":
			for _, cn := range n.Children {
				assignSimpleString(cn, "group_name", func(v string) { cfg.CopyOnChange.GroupName = v })
				assignSimpleString(cn, "label_prefix", func(v string) { cfg.CopyOnChange.LabelPrefix = v })
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		default:
			log.Printf("WARNING: unknown node '%s' in %s ignored", nodeName(n), FileName)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		log.Printf("WARNING: invalid integer value for '%s' in KDL config, got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both `name "a" "b"` and `name { "a"; "b" }`.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
