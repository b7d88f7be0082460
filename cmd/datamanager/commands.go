package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/datamanager/internal/display"
	"github.com/standardbeagle/datamanager/internal/metrics"
	"github.com/standardbeagle/datamanager/internal/panel"
	"github.com/standardbeagle/datamanager/internal/tab"
	"github.com/standardbeagle/datamanager/internal/types"
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func parentsCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	filter := c.String("filter")
	useLabel := c.Bool("use-label")
	items := s.panel.GetParentItems(s.kind, filter, c.Bool("exclude-derived"), useLabel)

	var suggestions []string
	if len(items) == 0 && !tab.ParseFilter(filter).IsEmpty() {
		suggestions = s.panel.SuggestParents(s.kind, filter, 5)
	}

	parents := make([]string, 0, len(items))
	shown := make([]string, 0, len(items))
	for _, item := range items {
		parents = append(parents, item.Key)
		shown = append(shown, item.Display)
	}

	if c.Bool("json") {
		out := map[string]interface{}{
			"parents":     parents,
			"suggestions": nonNil(suggestions),
		}
		if useLabel {
			out["display"] = shown
		}
		return printJSON(c.App.Writer, out)
	}
	printLines(c.App.Writer, shown)
	if len(suggestions) > 0 {
		fmt.Fprintf(c.App.ErrWriter, "no match for %q; did you mean: %s\n", filter, strings.Join(suggestions, ", "))
	}
	return nil
}

func childrenCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("children needs at least one PARENT")
	}
	refs := s.panel.GetFilteredChildItems(s.kind, tab.ChildQuery{
		Parents:    c.Args().Slice(),
		Filter:     c.String("filter"),
		OnlyUnused: c.Bool("only-unused"),
	})

	useLabel := c.Bool("use-label")
	if c.Bool("json") {
		if !useLabel {
			return printJSON(c.App.Writer, refs)
		}
		items := make([]panel.DisplayItem, 0, len(refs))
		for _, ref := range refs {
			items = append(items, panel.DisplayItem{Key: ref.Text(), Display: s.panel.FormatRef(ref, true)})
		}
		return printJSON(c.App.Writer, items)
	}
	printLines(c.App.Writer, s.panel.FormatRefs(refs, useLabel))
	return nil
}

func refsCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return fmt.Errorf("refs needs at least one PARENT.CHILD")
	}
	items, counts := s.panel.GetExpressionItems(s.kind, c.Args().Slice())

	if c.Bool("json") {
		return printJSON(c.App.Writer, map[string]interface{}{
			"items":  items,
			"counts": counts,
		})
	}
	for _, entry := range c.Args().Slice() {
		if n, ok := counts[entry]; ok {
			fmt.Fprintf(c.App.Writer, "%s: %d\n", entry, n)
		}
	}
	for _, item := range items {
		fmt.Fprintf(c.App.Writer, "  %s\n", s.panel.FormatExpressionItem(item, c.Bool("use-label")))
	}
	return nil
}

func removeUnusedCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	selected := c.Args().Slice()
	parents := make([]string, 0, len(selected))
	for _, text := range selected {
		if ref, ok := types.ParseParentChildRef(text); ok {
			parents = append(parents, ref.Parent)
		}
	}
	parents = types.NormalizeSelection(parents)

	result, err := s.panel.RemoveUnusedAndGetUpdate(s.kind, selected, tab.ChildQuery{
		Parents:    parents,
		OnlyUnused: true,
	})
	if err != nil {
		return err
	}

	if len(result.RemoveResult.Removed) > 0 && !c.Bool("no-save") {
		if err := s.app.Document().SaveFile(s.docPath); err != nil {
			return err
		}
	}

	if c.Bool("json") {
		return printJSON(c.App.Writer, result)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "removed: %s\n", strings.Join(result.RemoveResult.Removed, ", "))
	fmt.Fprintf(w, "still used: %s\n", strings.Join(result.RemoveResult.StillUsed, ", "))
	if len(result.RemoveResult.Failed) > 0 {
		fmt.Fprintf(w, "failed: %s\n", strings.Join(result.RemoveResult.Failed, ", "))
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return fmt.Errorf("suggest needs exactly one NAME")
	}
	suggestions := s.panel.SuggestParents(s.kind, c.Args().First(), c.Int("max"))
	if c.Bool("json") {
		return printJSON(c.App.Writer, nonNil(suggestions))
	}
	printLines(c.App.Writer, suggestions)
	return nil
}

func treeCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	parents := c.Args().Slice()
	if len(parents) == 0 {
		parents = s.panel.GetSortedParents(s.kind, c.Bool("exclude-derived"))
	}
	refs := s.panel.GetFilteredChildItems(s.kind, tab.ChildQuery{
		Parents:    parents,
		OnlyUnused: c.Bool("only-unused"),
	})
	counts := s.panel.GetExpressionReferenceCounts(s.kind, types.RefTexts(refs))

	format := c.String("format")
	if c.Bool("json") {
		format = "json"
	}
	formatter := display.NewTreeFormatter(display.FormatterOptions{Format: format, ShowCounts: true})
	fmt.Fprint(c.App.Writer, formatter.Format(display.BuildTree(refs, counts)))
	return nil
}

func statsCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	stats := metrics.Compute(s.panel, c.Int("top"))
	if c.Bool("json") {
		return printJSON(c.App.Writer, stats.FormatAsJSON())
	}
	stats.WriteText(c.App.Writer)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
