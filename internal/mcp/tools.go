package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var tabSchema = &jsonschema.Schema{
	Type:        "string",
	Description: "Tab: 'varsets' (VarSet variables) or 'aliases' (spreadsheet aliases). Default varsets.",
	Enum:        []any{"varsets", "aliases"},
}

var useLabelSchema = &jsonschema.Schema{
	Type:        "boolean",
	Description: "Show objects by label; parent filters then match labels",
}

func stringList(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "list_parents",
		Description: "List VarSets or spreadsheets. Virtual 'VarSet.Group' parents appear for VarSets with several property groups.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tab": tabSchema,
				"filter": {
					Type:        "string",
					Description: "Substring, or glob when it contains * ? [ ]",
				},
				"exclude_derived": {
					Type:        "boolean",
					Description: "Hide copy-on-change clones",
				},
				"use_label": useLabelSchema,
			},
		},
	}, s.handleListParents)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_children",
		Description: "List variables or aliases of the given parents as parent/child pairs.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"parents"},
			Properties: map[string]*jsonschema.Schema{
				"tab":     tabSchema,
				"parents": stringList("Parent names as returned by list_parents"),
				"filter": {
					Type:        "string",
					Description: "Filter applied to child names",
				},
				"only_unused": {
					Type:        "boolean",
					Description: "Only children no expression references",
				},
				"use_label": useLabelSchema,
			},
		},
	}, s.handleListChildren)

	s.server.AddTool(&mcp.Tool{
		Name:        "expressions",
		Description: "Show the expressions that reference the selected 'Parent.Child' entries, with per-entry counts.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"selected"},
			Properties: map[string]*jsonschema.Schema{
				"tab":      tabSchema,
				"selected": stringList("Entries in 'Parent.Child' form"),
				"use_label": useLabelSchema,
			},
		},
	}, s.handleExpressions)

	s.server.AddTool(&mcp.Tool{
		Name:        "remove_unused",
		Description: "Remove the selected entries that nothing references. Referenced entries are reported as still_used and kept.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"selected"},
			Properties: map[string]*jsonschema.Schema{
				"tab":      tabSchema,
				"selected": stringList("Entries in 'Parent.Child' form"),
				"parents":  stringList("Parents whose refreshed child list is returned"),
				"filter": {
					Type:        "string",
					Description: "Filter for the refreshed child list",
				},
			},
		},
	}, s.handleRemoveUnused)

	s.server.AddTool(&mcp.Tool{
		Name:        "suggest_parents",
		Description: "Suggest parent names similar to a possibly misspelled name.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"name"},
			Properties: map[string]*jsonschema.Schema{
				"tab":  tabSchema,
				"name": {Type: "string", Description: "Name to match"},
				"max":  {Type: "integer", Description: "Maximum suggestions (default 5)"},
			},
		},
	}, s.handleSuggestParents)

	s.server.AddTool(&mcp.Tool{
		Name:        "stats",
		Description: "Per-tab totals: parents, derived clones, children, unused children and reference counts.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"top": {Type: "integer", Description: "Most referenced children to list per tab (default 5)"},
			},
		},
	}, s.handleStats)
}
