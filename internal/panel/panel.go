// Package panel is the facade a front end (CLI, MCP server, GUI) talks to.
// It owns one tab controller per domain and the refresh boundary that runs
// after a removal changes the document.
package panel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/debug"
	dmerrors "github.com/standardbeagle/datamanager/internal/errors"
	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/spreadsheet"
	"github.com/standardbeagle/datamanager/internal/tab"
	"github.com/standardbeagle/datamanager/internal/types"
	"github.com/standardbeagle/datamanager/internal/varset"
)

// Kind selects a tab.
type Kind string

const (
	// VarSets is the tab listing VarSet variables.
	VarSets Kind = "varsets"
	// Aliases is the tab listing spreadsheet cell aliases.
	Aliases Kind = "aliases"
)

// Kinds lists every tab in display order.
var Kinds = []Kind{VarSets, Aliases}

// ParseKind accepts a tab name, case-insensitively, plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "varsets", "varset", "variables":
		return VarSets, nil
	case "aliases", "alias", "spreadsheets", "spreadsheet":
		return Aliases, nil
	}
	return "", fmt.Errorf("unknown tab %q (want %q or %q)", s, VarSets, Aliases)
}

// ErrRemoveUnusedDisabled is returned when removal is requested outside the
// only-unused view or with nothing selected.
var ErrRemoveUnusedDisabled = errors.New("remove unused requires the only-unused view and a non-empty selection")

// Refresher recomputes the document and repaints views after a mutation.
type Refresher interface {
	Refresh()
}

// Selector selects an object in the host's views.
type Selector interface {
	SelectObject(objectName string) error
}

// Options are the panel's collaborators. Both may be nil.
type Options struct {
	Refresher Refresher
	Selector  Selector
}

// Panel is the long-lived controller facade. Create one per host
// application and share it.
type Panel struct {
	access      *graph.Access
	controllers map[Kind]*tab.Controller
	varsets     *varset.DataSource
	aliases     *spreadsheet.DataSource
	refresher   Refresher
	selector    Selector
}

var (
	_ tab.DataSource = (*varset.DataSource)(nil)
	_ tab.DataSource = (*spreadsheet.DataSource)(nil)
)

// New builds a panel over the host application.
func New(app graph.App, cfg *config.Config, opts Options) *Panel {
	if cfg == nil {
		cfg = config.Default()
	}
	access := graph.NewAccess(app)
	varsets := varset.NewDataSource(varset.NewQuery(access, cfg.VarSet, cfg.CopyOnChange))
	aliases := spreadsheet.NewDataSource(spreadsheet.NewQuery(access, cfg.Spreadsheet, cfg.CopyOnChange))

	return &Panel{
		access: access,
		controllers: map[Kind]*tab.Controller{
			VarSets: tab.NewController(varsets),
			Aliases: tab.NewController(aliases),
		},
		varsets:   varsets,
		aliases:   aliases,
		refresher: opts.Refresher,
		selector:  opts.Selector,
	}
}

// Controller returns the tab controller for kind. An unknown kind falls back
// to the VarSets tab.
func (p *Panel) Controller(kind Kind) *tab.Controller {
	if c, ok := p.controllers[kind]; ok {
		return c
	}
	return p.controllers[VarSets]
}

// VarSetQuery exposes VarSet discovery beyond the tab surface.
func (p *Panel) VarSetQuery() *varset.Query {
	return p.varsets.Query()
}

// SpreadsheetQuery exposes spreadsheet discovery beyond the tab surface.
func (p *Panel) SpreadsheetQuery() *spreadsheet.Query {
	return p.aliases.Query()
}

// RefreshDocument runs the refresh collaborator, swallowing host panics.
func (p *Panel) RefreshDocument() {
	if p.refresher == nil {
		return
	}
	graph.TryDo("Refresh", func() error {
		p.refresher.Refresh()
		return nil
	})
}

// ShouldEnableRemoveUnused reports whether the remove-unused action is allowed.
func (p *Panel) ShouldEnableRemoveUnused(kind Kind, onlyUnused bool, selectedCount int) bool {
	return p.Controller(kind).ShouldEnableRemoveUnused(onlyUnused, selectedCount)
}

// CanRemoveUnused applies the remove-unused gate to a selection.
func (p *Panel) CanRemoveUnused(kind Kind, onlyUnused bool, selected []string) bool {
	return p.Controller(kind).CanRemoveUnused(onlyUnused, selected)
}

// GetSortedParents lists every parent of a tab.
func (p *Panel) GetSortedParents(kind Kind, excludeDerived bool) []string {
	return p.Controller(kind).GetSortedParents(excludeDerived)
}

// GetFilteredParents lists the parents matching filterText.
func (p *Panel) GetFilteredParents(kind Kind, filterText string, excludeDerived bool) []string {
	return p.Controller(kind).GetFilteredParents(filterText, excludeDerived)
}

// GetChildItems returns "parent.child" texts for the selected parents.
func (p *Panel) GetChildItems(kind Kind, parents []string) []string {
	return types.RefTexts(p.Controller(kind).GetChildRefs(parents))
}

// GetFilteredChildItems lists the children matching q.
func (p *Panel) GetFilteredChildItems(kind Kind, q tab.ChildQuery) []types.ParentChildRef {
	return p.Controller(kind).GetFilteredChildItems(q)
}

// GetExpressionItems returns the expressions referencing the selection and
// per-child reference counts.
func (p *Panel) GetExpressionItems(kind Kind, selected []string) ([]types.ExpressionItem, map[string]int) {
	return p.Controller(kind).GetExpressionItems(selected)
}

// GetExpressionReferenceCounts returns per-child reference counts.
func (p *Panel) GetExpressionReferenceCounts(kind Kind, selected []string) map[string]int {
	return p.Controller(kind).GetExpressionReferenceCounts(selected)
}

// GetPostRemoveUnusedUpdate computes the child list a view shows after removal.
func (p *Panel) GetPostRemoveUnusedUpdate(kind Kind, q tab.ChildQuery) types.PostRemoveUpdate {
	return p.Controller(kind).GetPostRemoveUnusedUpdate(q)
}

// RemoveUnusedAndGetUpdate removes the unreferenced children of selected,
// refreshes the document when anything was removed and returns the
// refreshed child list. It refuses to run unless q.OnlyUnused is set and
// selected is non-empty.
func (p *Panel) RemoveUnusedAndGetUpdate(kind Kind, selected []string, q tab.ChildQuery) (types.RemoveUnusedAndUpdateResult, error) {
	c := p.Controller(kind)
	if !c.CanRemoveUnused(q.OnlyUnused, selected) {
		return types.RemoveUnusedAndUpdateResult{}, dmerrors.NewSelectionError(selected, ErrRemoveUnusedDisabled)
	}

	result := c.RemoveUnusedAndGetUpdate(selected, q)
	if len(result.RemoveResult.Removed) > 0 {
		p.RefreshDocument()
	}

	debug.LogMutation("%s remove-unused: removed=%v still_used=%v failed=%v\n",
		kind, result.RemoveResult.Removed, result.RemoveResult.StillUsed, result.RemoveResult.Failed)
	return result, nil
}

// SelectExpressionItem selects the object owning an expression, given an
// item's display text ("Object.Property = expr").
func (p *Panel) SelectExpressionItem(displayText string) error {
	name, ok := types.ParseExpressionItemObjectName(displayText)
	if !ok {
		return dmerrors.NewSelectionError([]string{displayText}, errors.New("cannot parse object name"))
	}
	return p.SelectObject(name)
}

// SelectObject selects a named object of the active document.
func (p *Panel) SelectObject(name string) error {
	if p.selector == nil {
		return dmerrors.NewDocumentError("select", errors.New("no selector configured")).WithObject(name)
	}
	doc := p.access.ActiveDocument()
	if doc == nil {
		return dmerrors.NewDocumentError("select", errors.New("no active document")).WithObject(name)
	}
	if p.access.Object(doc, name) == nil {
		return dmerrors.NewDocumentError("select", fmt.Errorf("cannot find object %q", name)).WithObject(name)
	}
	if err := p.selector.SelectObject(name); err != nil {
		return dmerrors.NewDocumentError("select", err).WithObject(name)
	}
	return nil
}

// suggestionThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestionThreshold = 0.7

// SuggestParents returns up to limit parent names similar to text, most
// similar first. It is meant for "did you mean" hints when a filter or a
// parent name matches nothing.
func (p *Panel) SuggestParents(kind Kind, text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float32
	}
	var candidates []scored
	for _, name := range p.GetSortedParents(kind, false) {
		score, err := edlib.StringsSimilarity(strings.ToLower(text), strings.ToLower(name), edlib.JaroWinkler)
		if err != nil || score < suggestionThreshold {
			continue
		}
		candidates = append(candidates, scored{name, score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.name)
	}
	return out
}
