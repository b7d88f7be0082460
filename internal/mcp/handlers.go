package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/datamanager/internal/metrics"
	"github.com/standardbeagle/datamanager/internal/panel"
	"github.com/standardbeagle/datamanager/internal/tab"
	"github.com/standardbeagle/datamanager/internal/types"
)

const defaultSuggestions = 5

// ListParentsParams are the list_parents arguments.
type ListParentsParams struct {
	Tab            string `json:"tab,omitempty"`
	Filter         string `json:"filter,omitempty"`
	ExcludeDerived bool   `json:"exclude_derived,omitempty"`
	UseLabel       bool   `json:"use_label,omitempty"`
}

// ListParentsResponse lists parent names. Display holds the matching labels
// when use_label is set; Suggestions is filled only when nothing matched.
type ListParentsResponse struct {
	Tab         string   `json:"tab"`
	Parents     []string `json:"parents"`
	Display     []string `json:"display,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ListChildrenParams are the list_children arguments.
type ListChildrenParams struct {
	Tab        string   `json:"tab,omitempty"`
	Parents    []string `json:"parents"`
	Filter     string   `json:"filter,omitempty"`
	OnlyUnused bool     `json:"only_unused,omitempty"`
	UseLabel   bool     `json:"use_label,omitempty"`
}

// ListChildrenResponse lists parent/child pairs, with labelled display
// texts in the same order when use_label is set.
type ListChildrenResponse struct {
	Tab      string                 `json:"tab"`
	Children []types.ParentChildRef `json:"children"`
	Display  []string               `json:"display,omitempty"`
}

// ExpressionsParams are the expressions arguments.
type ExpressionsParams struct {
	Tab      string   `json:"tab,omitempty"`
	Selected []string `json:"selected"`
	UseLabel bool     `json:"use_label,omitempty"`
}

// ExpressionView is an expression item with its rendered text.
type ExpressionView struct {
	types.ExpressionItem
	Display string `json:"display"`
}

// ExpressionsResponse holds the referencing expressions and per-entry counts.
type ExpressionsResponse struct {
	Tab    string           `json:"tab"`
	Items  []ExpressionView `json:"items"`
	Counts map[string]int   `json:"counts"`
}

// RemoveUnusedParams are the remove_unused arguments. Parents and Filter
// shape the refreshed child list in the response.
type RemoveUnusedParams struct {
	Tab      string   `json:"tab,omitempty"`
	Selected []string `json:"selected"`
	Parents  []string `json:"parents,omitempty"`
	Filter   string   `json:"filter,omitempty"`
}

// RemoveUnusedResponse reports the removal and whether the document file
// was written back.
type RemoveUnusedResponse struct {
	Tab string `json:"tab"`
	types.RemoveUnusedAndUpdateResult
	Saved     bool   `json:"saved"`
	SaveError string `json:"save_error,omitempty"`
}

// StatsParams are the stats arguments.
type StatsParams struct {
	Top int `json:"top,omitempty"`
}

// SuggestParentsParams are the suggest_parents arguments.
type SuggestParentsParams struct {
	Tab  string `json:"tab,omitempty"`
	Name string `json:"name"`
	Max  int    `json:"max,omitempty"`
}

// SuggestParentsResponse lists similar parent names, most similar first.
type SuggestParentsResponse struct {
	Tab         string   `json:"tab"`
	Suggestions []string `json:"suggestions"`
}

func decodeParams(req *mcp.CallToolRequest, dst interface{}) error {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, dst); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func parseTab(s string) (panel.Kind, error) {
	if s == "" {
		return panel.VarSets, nil
	}
	return panel.ParseKind(s)
}

func (s *Server) handleListParents(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withPanel("list_parents", func(p *panel.Panel) (*mcp.CallToolResult, error) {
		var params ListParentsParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		kind, err := parseTab(params.Tab)
		if err != nil {
			return nil, err
		}

		items := p.GetParentItems(kind, params.Filter, params.ExcludeDerived, params.UseLabel)
		resp := ListParentsResponse{Tab: string(kind), Parents: make([]string, 0, len(items))}
		for _, item := range items {
			resp.Parents = append(resp.Parents, item.Key)
			if params.UseLabel {
				resp.Display = append(resp.Display, item.Display)
			}
		}
		if len(resp.Parents) == 0 && !tab.ParseFilter(params.Filter).IsEmpty() {
			resp.Suggestions = p.SuggestParents(kind, params.Filter, defaultSuggestions)
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleListChildren(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withPanel("list_children", func(p *panel.Panel) (*mcp.CallToolResult, error) {
		var params ListChildrenParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		kind, err := parseTab(params.Tab)
		if err != nil {
			return nil, err
		}
		if len(params.Parents) == 0 {
			return nil, fmt.Errorf("parents is required")
		}

		resp := ListChildrenResponse{
			Tab: string(kind),
			Children: p.GetFilteredChildItems(kind, tab.ChildQuery{
				Parents:    params.Parents,
				Filter:     params.Filter,
				OnlyUnused: params.OnlyUnused,
			}),
		}
		if params.UseLabel {
			resp.Display = p.FormatRefs(resp.Children, true)
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleExpressions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withPanel("expressions", func(p *panel.Panel) (*mcp.CallToolResult, error) {
		var params ExpressionsParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		kind, err := parseTab(params.Tab)
		if err != nil {
			return nil, err
		}

		items, counts := p.GetExpressionItems(kind, params.Selected)
		views := make([]ExpressionView, 0, len(items))
		for _, item := range items {
			views = append(views, ExpressionView{ExpressionItem: item, Display: p.FormatExpressionItem(item, params.UseLabel)})
		}
		return createJSONResponse(ExpressionsResponse{Tab: string(kind), Items: views, Counts: counts})
	})
}

func (s *Server) handleRemoveUnused(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withPanel("remove_unused", func(p *panel.Panel) (*mcp.CallToolResult, error) {
		var params RemoveUnusedParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		kind, err := parseTab(params.Tab)
		if err != nil {
			return nil, err
		}

		result, err := p.RemoveUnusedAndGetUpdate(kind, params.Selected, tab.ChildQuery{
			Parents:    params.Parents,
			Filter:     params.Filter,
			OnlyUnused: true,
		})
		if err != nil {
			return nil, err
		}

		resp := RemoveUnusedResponse{Tab: string(kind), RemoveUnusedAndUpdateResult: result}
		if len(result.RemoveResult.Removed) > 0 {
			saved, err := s.save()
			resp.Saved = saved
			if err != nil {
				resp.SaveError = err.Error()
			}
		}
		return createJSONResponse(resp)
	})
}

func (s *Server) handleSuggestParents(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withPanel("suggest_parents", func(p *panel.Panel) (*mcp.CallToolResult, error) {
		var params SuggestParentsParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		kind, err := parseTab(params.Tab)
		if err != nil {
			return nil, err
		}
		limit := params.Max
		if limit <= 0 {
			limit = defaultSuggestions
		}

		suggestions := p.SuggestParents(kind, params.Name, limit)
		if suggestions == nil {
			suggestions = []string{}
		}
		return createJSONResponse(SuggestParentsResponse{Tab: string(kind), Suggestions: suggestions})
	})
}

func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withPanel("stats", func(p *panel.Panel) (*mcp.CallToolResult, error) {
		var params StatsParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		top := params.Top
		if top <= 0 {
			top = metrics.DefaultTopN
		}
		return createJSONResponse(metrics.Compute(p, top).FormatAsJSON())
	})
}
